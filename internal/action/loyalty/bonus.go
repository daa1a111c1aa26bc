package loyalty

import (
	"strconv"

	"github.com/gyaneshwarpardhi/chainflow/internal/action"
	"github.com/gyaneshwarpardhi/chainflow/internal/chain"
	"github.com/gyaneshwarpardhi/chainflow/internal/event"
)

// BonusAction describes "bonus" actions: points credited to the customer.
type BonusAction struct{}

func (BonusAction) Kind() string { return chain.ActionBonus }

func (BonusAction) Describe(cfg *chain.ActionConfig, _ *event.Event) string {
	return "Bonus credited: " + strconv.FormatFloat(cfg.BonusAmount, 'f', -1, 64)
}

// TagAction describes "set_tag" actions.
type TagAction struct{}

func (TagAction) Kind() string { return chain.ActionSetTag }

func (TagAction) Describe(cfg *chain.ActionConfig, _ *event.Event) string {
	return "Tag set: " + cfg.TagName
}

// StatusAction describes "status_change" actions.
type StatusAction struct{}

func (StatusAction) Kind() string { return chain.ActionStatusChange }

func (StatusAction) Describe(cfg *chain.ActionConfig, _ *event.Event) string {
	return "Status changed: " + cfg.NewStatus
}

// Register adds every loyalty describer to reg.
func Register(reg *action.Registry) {
	reg.Register(BonusAction{})
	reg.Register(TagAction{})
	reg.Register(StatusAction{})
}

// NewRegistry returns a registry preloaded with the loyalty describers.
func NewRegistry() *action.Registry {
	reg := action.NewRegistry()
	Register(reg)
	return reg
}
