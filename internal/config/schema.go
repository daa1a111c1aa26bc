package config

import (
	"github.com/gyaneshwarpardhi/chainflow/internal/chain"
	"github.com/gyaneshwarpardhi/chainflow/internal/event"
)

// Workspace is the top-level YAML structure: service settings plus the
// chain being edited.
type Workspace struct {
	Version    string         `yaml:"version"`
	Server     ServerConf     `yaml:"server"`
	Log        LogConf        `yaml:"log"`
	Engine     EngineConf     `yaml:"engine"`
	Simulation SimulationConf `yaml:"simulation"`
	Chain      chain.Chain    `yaml:"chain"`
}

// ServerConf holds HTTP listener settings.
type ServerConf struct {
	Addr string `yaml:"addr"`
}

// LogConf selects the slog handler.
type LogConf struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// EngineConf holds tunable concurrency settings for batch simulation.
type EngineConf struct {
	Workers    int `yaml:"workers"`
	QueueDepth int `yaml:"queue_depth"`
	TimeoutMs  int `yaml:"timeout_ms"`
}

// SimulationConf holds the event used when a simulation request carries none.
type SimulationConf struct {
	Event *event.Event `yaml:"event"`
}
