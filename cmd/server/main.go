package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gyaneshwarpardhi/chainflow/internal/action/loyalty"
	"github.com/gyaneshwarpardhi/chainflow/internal/api"
	"github.com/gyaneshwarpardhi/chainflow/internal/config"
	"github.com/gyaneshwarpardhi/chainflow/internal/dag"
	"github.com/gyaneshwarpardhi/chainflow/internal/editor"
	"github.com/gyaneshwarpardhi/chainflow/internal/engine"
	"github.com/gyaneshwarpardhi/chainflow/internal/logging"
)

func main() {
	addr := flag.String("addr", "", "HTTP listen address (overrides server.addr)")
	cfgPath := flag.String("config", "configs/workspace.yaml", "Path to workspace YAML")
	flag.Parse()

	// ── Load workspace ───────────────────────────────────────────────────────
	loader, err := config.NewLoader(*cfgPath)
	if err != nil {
		slog.Error("failed to load workspace", "err", err)
		os.Exit(1)
	}
	ws := loader.Workspace()
	if err := config.Validate(ws); err != nil {
		slog.Error("workspace validation failed", "err", err)
		os.Exit(1)
	}

	logger, err := logging.New(ws.Log.Level, ws.Log.Format)
	if err != nil {
		slog.Error("invalid log settings", "err", err)
		os.Exit(1)
	}
	slog.SetDefault(logger)
	slog.Info("workspace loaded", "path", loader.Path(), "version", ws.Version)

	if *addr == "" {
		*addr = ws.Server.Addr
	}

	// ── Build initial chain ──────────────────────────────────────────────────
	g := dag.Build(ws.Chain)
	slog.Info("chain loaded", "blocks", g.NodeCount(), "connections", g.EdgeCount(), "triggers", len(g.Triggers()))
	for _, conn := range config.DanglingConnections(ws.Chain) {
		slog.Warn("connection references a missing block", "source", conn.SourceID, "target", conn.TargetID)
	}
	for _, verr := range g.Validate() {
		slog.Warn("chain is not valid yet", "block", verr.BlockID, "err", verr.Message)
	}

	// ── Effect describers ────────────────────────────────────────────────────
	reg := loyalty.NewRegistry()

	// ── Engine ────────────────────────────────────────────────────────────────
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	session := editor.NewSession(ws.Chain)
	eng := engine.New(ctx, session.Snapshot(), reg, ws.Engine, ws.Simulation.Event)

	// ── Hot-reload watcher ────────────────────────────────────────────────────
	loader.OnChange(func(newWs *config.Workspace) {
		if err := api.ApplyWorkspace(eng, session, newWs); err != nil {
			slog.Warn("hot-reload skipped: workspace invalid", "err", err)
			return
		}
		slog.Info("chain hot-reloaded", "version", newWs.Version, "blocks", len(newWs.Chain.Blocks))
	})
	stopWatch, err := loader.Watch()
	if err != nil {
		slog.Warn("workspace watcher unavailable (hot-reload disabled)", "err", err)
	} else {
		defer stopWatch()
	}

	// ── HTTP server ───────────────────────────────────────────────────────────
	srv := &http.Server{
		Addr:         *addr,
		Handler:      api.New(eng, session, reg, loader),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", *addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	// ── Graceful shutdown ─────────────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutting down…")

	shutCtx, shutCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutCancel()
	_ = srv.Shutdown(shutCtx)
	cancel() // stop worker pools
	eng.Shutdown()
	slog.Info("goodbye")
}
