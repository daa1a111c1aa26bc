package dag

import (
	"fmt"

	"github.com/gyaneshwarpardhi/chainflow/internal/action/loyalty"
	"github.com/gyaneshwarpardhi/chainflow/internal/chain"
	"github.com/gyaneshwarpardhi/chainflow/internal/condition"
	"github.com/gyaneshwarpardhi/chainflow/internal/event"
)

// EffectDescriber renders what an action or communication step would do.
// *action.Registry implements it.
type EffectDescriber interface {
	Describe(cfg chain.Config, ev *event.Event) string
}

// Trace is the outcome of one simulation run.
type Trace struct {
	Log              []string `json:"log"`
	TriggersFired    []string `json:"triggers_fired"`
	ConditionsPassed int      `json:"conditions_passed"`
	ConditionsFailed int      `json:"conditions_failed"`
	Effects          int      `json:"effects"`
	Cycles           int      `json:"cycles"`
}

func (t *Trace) logf(prefix, format string, args ...interface{}) {
	t.Log = append(t.Log, prefix+fmt.Sprintf(format, args...))
}

// Simulator walks a chain for a synthetic event and records what would happen.
type Simulator struct {
	effects EffectDescriber
}

// NewSimulator creates a Simulator that renders effects with d.
func NewSimulator(d EffectDescriber) *Simulator {
	return &Simulator{effects: d}
}

// Simulate runs c against ev with the built-in loyalty describers and
// returns the ordered log.
func Simulate(c chain.Chain, ev *event.Event) []string {
	return NewSimulator(loyalty.NewRegistry()).Run(Build(c), ev).Log
}

// Run fires every trigger matching ev, in block order, and walks the graph
// depth-first from each one. It always completes: cycles, dead ends and
// unmatched events become log lines.
func (s *Simulator) Run(g *Graph, ev *event.Event) *Trace {
	tr := &Trace{Log: []string{}, TriggersFired: []string{}}
	if ev == nil {
		ev = &event.Event{}
	}

	var matched []chain.Block
	for _, trig := range g.Triggers() {
		if MatchTrigger(trig, ev) {
			matched = append(matched, trig)
		}
	}
	if len(matched) == 0 {
		tr.logf("", "No trigger matched event %s", ev.Kind)
		return tr
	}

	for _, trig := range matched {
		tr.TriggersFired = append(tr.TriggersFired, trig.ID)
		tr.logf("", "Starting chain from trigger %s", trig.ID)
		s.walk(g, tr, ev, trig, nil, "")
	}
	return tr
}

// walk visits b. onPath holds the blocks already visited on the current
// path only; each successor receives its own extension of it, so a block
// reached again through a different path is visited again.
func (s *Simulator) walk(g *Graph, tr *Trace, ev *event.Event, b chain.Block, onPath *path, prefix string) {
	if onPath.contains(b.ID) {
		tr.Cycles++
		tr.logf(prefix, "Cycle detected at block %s", b.ID)
		return
	}
	onPath = onPath.with(b.ID)

	out := g.Outgoing(b.ID)
	next := out
	switch b.Type {
	case chain.TypeTrigger:
		tr.logf(prefix, "Trigger %s fired", b.ID)
	case chain.TypeCondition:
		passed := condition.Evaluate(b.Condition(), ev)
		if passed {
			tr.ConditionsPassed++
			tr.logf(prefix, "Condition %s passed", b.ID)
		} else {
			tr.ConditionsFailed++
			tr.logf(prefix, "Condition %s failed", b.ID)
		}
		next = selectBranch(out, passed)
	case chain.TypeAction:
		tr.Effects++
		tr.logf(prefix, "Action %s executed: %s", b.ID, s.describe(b, ev))
	case chain.TypeCommunication:
		tr.Effects++
		tr.logf(prefix, "Communication %s executed: %s", b.ID, s.describe(b, ev))
	default:
		tr.logf(prefix, "Block %s has unknown type %q", b.ID, b.Type)
	}

	for _, conn := range next {
		child, ok := g.Block(conn.TargetID)
		if !ok {
			continue // dangling edge
		}
		s.walk(g, tr, ev, child, onPath, prefix+"  ")
	}
	if len(out) == 0 {
		tr.logf(prefix, "Block %s has no outgoing connections", b.ID)
	}
}

func (s *Simulator) describe(b chain.Block, ev *event.Event) string {
	if s.effects == nil {
		return "no effect describer configured"
	}
	return s.effects.Describe(b.Config, ev)
}

// selectBranch picks the connections followed after a condition evaluated
// to outcome. Untagged fan-out is unconditional. When tagged edges exist,
// only those matching the outcome are followed, or every tagged edge when
// none matches.
func selectBranch(out []chain.Connection, outcome bool) []chain.Connection {
	var tagged, matching []chain.Connection
	want := chain.BranchFor(outcome)
	for _, conn := range out {
		if !conn.Tagged() {
			continue
		}
		tagged = append(tagged, conn)
		if conn.Branch == want {
			matching = append(matching, conn)
		}
	}
	switch {
	case len(tagged) == 0:
		return out
	case len(matching) == 0:
		return tagged
	}
	return matching
}

// path is an immutable linked set of block ids visited on one DFS path.
type path struct {
	id     string
	parent *path
}

func (p *path) contains(id string) bool {
	for ; p != nil; p = p.parent {
		if p.id == id {
			return true
		}
	}
	return false
}

func (p *path) with(id string) *path {
	return &path{id: id, parent: p}
}
