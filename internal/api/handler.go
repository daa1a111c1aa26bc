package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gyaneshwarpardhi/chainflow/internal/action"
	"github.com/gyaneshwarpardhi/chainflow/internal/chain"
	"github.com/gyaneshwarpardhi/chainflow/internal/condition"
	"github.com/gyaneshwarpardhi/chainflow/internal/config"
	"github.com/gyaneshwarpardhi/chainflow/internal/editor"
	"github.com/gyaneshwarpardhi/chainflow/internal/engine"
	"github.com/gyaneshwarpardhi/chainflow/internal/event"
	"github.com/gyaneshwarpardhi/chainflow/internal/metrics"
)

const (
	maxBatchSize = 100
	maxBodyBytes = 1 << 20
)

// Handler holds all HTTP handler dependencies.
type Handler struct {
	eng      *engine.Engine
	session  *editor.Session
	registry *action.Registry
	loader   *config.Loader
}

// New creates an HTTP handler and registers all routes. loader may be nil,
// in which case the reload endpoint reports 404.
func New(eng *engine.Engine, session *editor.Session, reg *action.Registry, loader *config.Loader) http.Handler {
	h := &Handler{eng: eng, session: session, registry: reg, loader: loader}

	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware)
	r.Use(middleware.Recoverer)

	r.Route("/v1/chain", func(r chi.Router) {
		r.Get("/", h.getChain)
		r.Put("/", h.putChain)
		r.Get("/mermaid", h.mermaid)
		r.Post("/validate", h.validate)
		r.Post("/simulate", h.simulate)
		r.Post("/simulate/batch", h.simulateBatch)
		r.Post("/reload", h.reload)
		r.Post("/undo", h.undo)
		r.Post("/redo", h.redo)

		r.Post("/blocks", h.addBlock)
		r.Post("/blocks/{id}/next", h.addNext)
		r.Patch("/blocks/{id}", h.updateBlock)
		r.Delete("/blocks/{id}", h.deleteBlock)
		r.Post("/connections", h.connect)
	})
	r.Get("/v1/blocks/defaults/{type}", h.defaults)
	r.Post("/v1/conditions/evaluate", h.evaluateCondition)
	r.Post("/v1/actions/describe", h.describeAction)

	r.Get("/healthz", h.healthz)
	r.Get("/readyz", h.readyz)
	r.Handle("/metrics", promhttp.Handler())

	return r
}

// ApplyWorkspace makes ws the active workspace: its chain replaces the
// edited chain and the engine's chain, and its simulation event becomes
// the default. An invalid workspace is rejected and nothing changes.
func ApplyWorkspace(eng *engine.Engine, session *editor.Session, ws *config.Workspace) error {
	if err := config.Validate(ws); err != nil {
		return err
	}
	session.Replace(ws.Chain)
	eng.SwapChain(session.Snapshot())
	eng.SetDefaultEvent(ws.Simulation.Event)
	return nil
}

// publish pushes the edited chain to the engine.
func (h *Handler) publish() {
	g := h.eng.SwapChain(h.session.Snapshot())
	slog.Debug("chain updated", "blocks", g.NodeCount(), "connections", g.EdgeCount())
}

// GET /v1/chain — current chain document; ?format=yaml for YAML.
func (h *Handler) getChain(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("format") == string(chain.FormatYAML) {
		var buf bytes.Buffer
		if err := h.session.Export(&buf, chain.FormatYAML); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write(buf.Bytes())
		return
	}
	writeJSON(w, http.StatusOK, h.session.Snapshot())
}

// PUT /v1/chain — import a whole chain document (JSON, or YAML by Content-Type).
func (h *Handler) putChain(w http.ResponseWriter, r *http.Request) {
	f := chain.FormatJSON
	if strings.Contains(r.Header.Get("Content-Type"), "yaml") {
		f = chain.FormatYAML
	}
	c, err := chain.Decode(http.MaxBytesReader(w, r.Body, maxBodyBytes), f)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if errs := config.ValidateChain(c); len(errs) > 0 {
		writeError(w, http.StatusUnprocessableEntity, "invalid chain document", errs...)
		return
	}
	h.session.Replace(c)
	h.publish()
	writeJSON(w, http.StatusOK, h.eng.Validate())
}

// GET /v1/chain/mermaid — flowchart source for the current chain.
func (h *Handler) mermaid(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, chain.Mermaid(h.eng.Chain()))
}

// POST /v1/chain/validate
func (h *Handler) validate(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.eng.Validate())
}

// POST /v1/chain/simulate — body is an optional event; empty uses the default.
func (h *Handler) simulate(w http.ResponseWriter, r *http.Request) {
	ev, err := decodeOptionalEvent(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := h.eng.Simulate(r.Context(), ev)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// POST /v1/chain/simulate/batch — up to 100 events, simulated in parallel.
func (h *Handler) simulateBatch(w http.ResponseWriter, r *http.Request) {
	var events []*event.Event
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&events); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %s", err))
		return
	}
	if len(events) == 0 {
		writeError(w, http.StatusBadRequest, "batch must contain at least one event")
		return
	}
	if len(events) > maxBatchSize {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("batch size %d exceeds max %d", len(events), maxBatchSize))
		return
	}

	items, err := h.eng.SimulateBatch(r.Context(), events)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	failed := 0
	for _, it := range items {
		if it.Error != "" {
			failed++
		}
	}
	status := http.StatusOK
	if failed == len(items) {
		status = http.StatusTooManyRequests
	}
	writeJSON(w, status, map[string]interface{}{
		"total":   len(items),
		"failed":  failed,
		"results": items,
	})
}

// POST /v1/chain/reload — re-read the workspace file from disk and apply it
// once. Load skips the loader's OnChange callbacks, which would apply it again.
func (h *Handler) reload(w http.ResponseWriter, r *http.Request) {
	if h.loader == nil {
		writeError(w, http.StatusNotFound, "no workspace file configured")
		return
	}
	ws, err := h.loader.Load()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := ApplyWorkspace(h.eng, h.session, ws); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"reloaded": true,
		"version":  ws.Version,
		"blocks":   len(ws.Chain.Blocks),
	})
}

func (h *Handler) undo(w http.ResponseWriter, r *http.Request) {
	h.history(w, h.session.Undo(), "nothing to undo")
}

func (h *Handler) redo(w http.ResponseWriter, r *http.Request) {
	h.history(w, h.session.Redo(), "nothing to redo")
}

func (h *Handler) history(w http.ResponseWriter, ok bool, msg string) {
	if !ok {
		writeError(w, http.StatusConflict, msg)
		return
	}
	h.publish()
	writeJSON(w, http.StatusOK, h.session.Snapshot())
}

type addBlockRequest struct {
	Type  chain.BlockType `json:"type"`
	Label string          `json:"label"`
}

// POST /v1/chain/blocks — add a block with the default configuration.
func (h *Handler) addBlock(w http.ResponseWriter, r *http.Request) {
	var req addBlockRequest
	if !decodeBody(w, r, &req) {
		return
	}
	b, err := h.session.AddBlock(req.Type, req.Label)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.publish()
	writeJSON(w, http.StatusCreated, b)
}

// POST /v1/chain/blocks/{id}/next — append and connect the following block.
func (h *Handler) addNext(w http.ResponseWriter, r *http.Request) {
	b, err := h.session.AddNext(chi.URLParam(r, "id"))
	if err != nil {
		writeEditorError(w, err)
		return
	}
	h.publish()
	writeJSON(w, http.StatusCreated, b)
}

type updateBlockRequest struct {
	Label  *string                `json:"label"`
	Config map[string]interface{} `json:"config"`
}

// PATCH /v1/chain/blocks/{id} — replace label and config; omitted fields keep
// their current value.
func (h *Handler) updateBlock(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req updateBlockRequest
	if !decodeBody(w, r, &req) {
		return
	}
	cur, ok := h.session.Snapshot().Block(id)
	if !ok {
		writeEditorError(w, fmt.Errorf("%w: %s", editor.ErrBlockNotFound, id))
		return
	}
	var cfg chain.Config
	if req.Config != nil {
		var err error
		if cfg, err = chain.DecodeConfig(cur.Type, req.Config); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	label := cur.Label
	if req.Label != nil {
		label = *req.Label
	}
	b, err := h.session.UpdateBlock(id, label, cfg)
	if err != nil {
		writeEditorError(w, err)
		return
	}
	h.publish()
	writeJSON(w, http.StatusOK, b)
}

// DELETE /v1/chain/blocks/{id}
func (h *Handler) deleteBlock(w http.ResponseWriter, r *http.Request) {
	if err := h.session.DeleteBlock(chi.URLParam(r, "id")); err != nil {
		writeEditorError(w, err)
		return
	}
	h.publish()
	w.WriteHeader(http.StatusNoContent)
}

// POST /v1/chain/connections
func (h *Handler) connect(w http.ResponseWriter, r *http.Request) {
	var req chain.Connection
	if !decodeBody(w, r, &req) {
		return
	}
	conn, err := h.session.Connect(req.SourceID, req.TargetID, req.Branch)
	if err != nil {
		writeEditorError(w, err)
		return
	}
	h.publish()
	writeJSON(w, http.StatusCreated, conn)
}

// GET /v1/blocks/defaults/{type}
func (h *Handler) defaults(w http.ResponseWriter, r *http.Request) {
	t := chain.BlockType(chi.URLParam(r, "type"))
	cfg := chain.DefaultConfig(t)
	if cfg == nil {
		writeError(w, http.StatusNotFound, fmt.Sprintf("unknown block type %q", t))
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

type evaluateRequest struct {
	Condition map[string]interface{} `json:"condition"`
	Event     *event.Event           `json:"event"`
}

// POST /v1/conditions/evaluate — evaluate one condition config against an event.
func (h *Handler) evaluateCondition(w http.ResponseWriter, r *http.Request) {
	var req evaluateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	cfg, err := chain.DecodeConfig(chain.TypeCondition, req.Condition)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	cond := cfg.(*chain.ConditionConfig)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"passed":  condition.Evaluate(cond, req.Event),
		"summary": chain.Summary(chain.Block{Type: chain.TypeCondition, Config: cond}),
	})
}

type describeRequest struct {
	Type   chain.BlockType        `json:"type"`
	Config map[string]interface{} `json:"config"`
	Event  *event.Event           `json:"event"`
}

// POST /v1/actions/describe — render the effect of an action or communication.
func (h *Handler) describeAction(w http.ResponseWriter, r *http.Request) {
	var req describeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Type == "" {
		req.Type = chain.TypeAction
	}
	if !req.Type.Terminal() {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("type must be %s or %s", chain.TypeAction, chain.TypeCommunication))
		return
	}
	cfg, err := chain.DecodeConfig(req.Type, req.Config)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"effect":  h.registry.Describe(cfg, req.Event),
		"summary": chain.Summary(chain.Block{Type: req.Type, Config: cfg}),
	})
}

// GET /healthz — always 200 (liveness check).
func (h *Handler) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GET /readyz — 503 if the batch queue is more than 80% full.
func (h *Handler) readyz(w http.ResponseWriter, r *http.Request) {
	util := h.eng.QueueUtilization()
	metrics.QueueUtilization.Set(util)
	if util > 0.8 {
		writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":            "overloaded",
			"queue_utilization": util,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":            "ready",
		"queue_utilization": util,
	})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %s", err))
		return false
	}
	return true
}

func decodeOptionalEvent(body io.Reader) (*event.Event, error) {
	data, err := io.ReadAll(io.LimitReader(body, maxBodyBytes))
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	var ev event.Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, fmt.Errorf("invalid JSON: %s", err)
	}
	return &ev, nil
}

func writeEditorError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, editor.ErrBlockNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, editor.ErrInvalidConnection),
		errors.Is(err, editor.ErrNoNextBlock),
		errors.Is(err, editor.ErrConfigMismatch):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
