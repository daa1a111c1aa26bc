package engine

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/gyaneshwarpardhi/chainflow/internal/chain"
	"github.com/gyaneshwarpardhi/chainflow/internal/config"
	"github.com/gyaneshwarpardhi/chainflow/internal/dag"
	"github.com/gyaneshwarpardhi/chainflow/internal/event"
	"github.com/gyaneshwarpardhi/chainflow/internal/metrics"
)

// ErrQueueFull is reported for batch items that could not be enqueued.
var ErrQueueFull = errors.New("simulation queue full")

// Result is the outcome of simulating one event.
type Result struct {
	Event      *event.Event `json:"event"`
	DurationMs float64      `json:"duration_ms"`
	*dag.Trace
}

// BatchItem is one entry of a batch simulation. Exactly one of Result and
// Error is set.
type BatchItem struct {
	Result *Result `json:"result,omitempty"`
	Error  string  `json:"error,omitempty"`
}

// ValidationReport is the outcome of validating the active chain.
type ValidationReport struct {
	Valid  bool                  `json:"valid"`
	Errors []dag.ValidationError `json:"errors"`
}

// snapshot pairs a chain with its prebuilt graph so a swap is atomic.
type snapshot struct {
	chain chain.Chain
	graph *dag.Graph
}

type batchWork struct {
	index int
	snap  *snapshot
	ev    *event.Event
}

type batchDone struct {
	index  int
	result *Result
}

// Engine simulates events against the active chain.
type Engine struct {
	current      atomic.Pointer[snapshot]
	defaultEvent atomic.Pointer[event.Event]
	sim          *dag.Simulator
	pool         *workerPool[*batchWork, batchDone]
	conf         config.EngineConf
}

// New creates an Engine for c and starts the batch worker pool. def is the
// event used when a simulation request carries none.
func New(ctx context.Context, c chain.Chain, d dag.EffectDescriber, conf config.EngineConf, def *event.Event) *Engine {
	if conf.Workers <= 0 {
		conf.Workers = 1
	}
	if conf.QueueDepth <= 0 {
		conf.QueueDepth = conf.Workers
	}
	e := &Engine{
		sim:  dag.NewSimulator(d),
		conf: conf,
	}
	e.store(c)
	e.SetDefaultEvent(def)

	e.pool = newWorkerPool[*batchWork, batchDone](
		ctx,
		conf.Workers,
		conf.QueueDepth,
		func(ctx context.Context, w *batchWork) (batchDone, error) {
			return batchDone{index: w.index, result: e.run(w.snap, w.ev)}, nil
		},
	)
	return e
}

func (e *Engine) store(c chain.Chain) *dag.Graph {
	c = c.Clone()
	g := dag.Build(c)
	e.current.Store(&snapshot{chain: c, graph: g})
	return g
}

// SwapChain atomically replaces the active chain (used on hot-reload and
// import). Simulations already running finish against the previous chain.
func (e *Engine) SwapChain(c chain.Chain) *dag.Graph {
	metrics.ChainSwaps.Inc()
	return e.store(c)
}

// Chain returns a copy of the active chain.
func (e *Engine) Chain() chain.Chain {
	return e.current.Load().chain.Clone()
}

// SetDefaultEvent replaces the event used for requests without one. A nil
// event restores the smoke-test event.
func (e *Engine) SetDefaultEvent(ev *event.Event) {
	if ev == nil {
		ev = event.SmokeTest()
	}
	cp := *ev
	e.defaultEvent.Store(&cp)
}

// DefaultEvent returns a copy of the event used for requests without one.
func (e *Engine) DefaultEvent() *event.Event {
	cp := *e.defaultEvent.Load()
	return &cp
}

// Validate checks the active chain.
func (e *Engine) Validate() ValidationReport {
	errs := e.current.Load().graph.Validate()
	metrics.ValidationsRun.Inc()
	metrics.ValidationErrors.Add(float64(len(errs)))
	return ValidationReport{Valid: len(errs) == 0, Errors: errs}
}

// Simulate runs ev (or the default event when ev is nil) against the
// active chain.
func (e *Engine) Simulate(ctx context.Context, ev *event.Event) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return e.run(e.current.Load(), ev), nil
}

// SimulateBatch runs every event through the worker pool against a single
// snapshot of the chain. Items that cannot be queued or that do not finish
// within the engine timeout carry an error instead of a result.
func (e *Engine) SimulateBatch(ctx context.Context, events []*event.Event) ([]BatchItem, error) {
	snap := e.current.Load()
	items := make([]BatchItem, len(events))
	done := make(chan outcome[batchDone], len(events))

	pending := 0
	for i, ev := range events {
		if e.pool.Submit(&batchWork{index: i, snap: snap, ev: ev}, done) {
			pending++
			continue
		}
		metrics.SimulationsDropped.Inc()
		items[i].Error = ErrQueueFull.Error()
	}
	metrics.QueueUtilization.Set(e.QueueUtilization())

	timeout := time.Duration(e.conf.TimeoutMs) * time.Millisecond
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for pending > 0 {
		select {
		case out := <-done:
			items[out.value.index].Result = out.value.result
			pending--
		case <-timer.C:
			markUnfinished(items, fmt.Sprintf("simulation timeout after %v", timeout))
			return items, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return items, nil
}

func markUnfinished(items []BatchItem, msg string) {
	for i := range items {
		if items[i].Result == nil && items[i].Error == "" {
			items[i].Error = msg
		}
	}
}

// QueueUtilization returns queue used / capacity (0-1).
func (e *Engine) QueueUtilization() float64 {
	if e.pool.QueueCap() == 0 {
		return 0
	}
	return float64(e.pool.QueueLen()) / float64(e.pool.QueueCap())
}

func (e *Engine) run(snap *snapshot, ev *event.Event) *Result {
	if ev == nil {
		ev = e.DefaultEvent()
	}
	start := time.Now()
	tr := e.sim.Run(snap.graph, ev)
	elapsed := float64(time.Since(start).Microseconds()) / 1000

	metrics.SimulationsRun.Inc()
	metrics.SimulationDuration.Observe(elapsed)
	for _, id := range tr.TriggersFired {
		metrics.TriggersFired.WithLabelValues(id).Inc()
	}
	metrics.ConditionOutcomes.WithLabelValues("passed").Add(float64(tr.ConditionsPassed))
	metrics.ConditionOutcomes.WithLabelValues("failed").Add(float64(tr.ConditionsFailed))
	metrics.CyclesDetected.Add(float64(tr.Cycles))

	return &Result{Event: ev, DurationMs: elapsed, Trace: tr}
}

// Shutdown drains the batch pool gracefully.
func (e *Engine) Shutdown() {
	e.pool.Drain()
}
