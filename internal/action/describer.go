package action

import (
	"fmt"

	"github.com/gyaneshwarpardhi/chainflow/internal/chain"
	"github.com/gyaneshwarpardhi/chainflow/internal/event"
)

// GenericEffect is rendered for action kinds without a registered describer.
const GenericEffect = "Action performed"

// Describer renders what an action of one kind would do. Nothing is executed:
// the result is only a human-readable description.
type Describer interface {
	// Kind returns the action kind this describer is registered under.
	Kind() string
	// Describe renders the effect of cfg for ev.
	Describe(cfg *chain.ActionConfig, ev *event.Event) string
}

// DescriberFunc adapts a plain function to the Describer interface.
type DescriberFunc struct {
	ActionKind string
	Fn         func(cfg *chain.ActionConfig, ev *event.Event) string
}

func (d DescriberFunc) Kind() string { return d.ActionKind }

func (d DescriberFunc) Describe(cfg *chain.ActionConfig, ev *event.Event) string {
	return d.Fn(cfg, ev)
}

// Describe renders the effect of an action or communication step.
// Communication configs are described by channel; actions by the describer
// registered for their kind. Anything else yields GenericEffect.
func (r *Registry) Describe(cfg chain.Config, ev *event.Event) string {
	switch c := cfg.(type) {
	case *chain.CommunicationConfig:
		return fmt.Sprintf("Sent via %s: [%s] %s", c.Channel, c.Subject, c.Message)
	case *chain.ActionConfig:
		d, err := r.Get(c.Action)
		if err != nil {
			return GenericEffect
		}
		return d.Describe(c, ev)
	}
	return GenericEffect
}
