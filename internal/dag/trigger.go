package dag

import (
	"slices"
	"time"

	"github.com/gyaneshwarpardhi/chainflow/internal/chain"
	"github.com/gyaneshwarpardhi/chainflow/internal/event"
)

// MatchTrigger reports whether a trigger block fires for ev.
// The trigger's event kind must equal ev.Kind. A time_based trigger also
// requires ev's weekday to be one of its days and ev's clock time to be at
// or after its configured time.
func MatchTrigger(b chain.Block, ev *event.Event) bool {
	cfg := b.Trigger()
	if cfg == nil || ev == nil || cfg.Event != ev.Kind {
		return false
	}
	if cfg.Event != chain.EventTimeBased {
		return true
	}
	return slices.Contains(cfg.DaysOfWeek, ev.DayOfWeek) && !clockBefore(ev.Time, cfg.Time)
}

// clockBefore compares two "HH:MM" times. Values that do not parse are
// compared as strings, which agrees with clock order for zero-padded input.
func clockBefore(a, b string) bool {
	ta, errA := time.Parse("15:04", a)
	tb, errB := time.Parse("15:04", b)
	if errA != nil || errB != nil {
		return a < b
	}
	return ta.Before(tb)
}
