package condition

import (
	"github.com/gyaneshwarpardhi/chainflow/internal/chain"
	"github.com/gyaneshwarpardhi/chainflow/internal/event"
)

// Evaluate reports whether cfg holds for ev.
// It never fails: unknown kinds and operators evaluate to false.
func Evaluate(cfg *chain.ConditionConfig, ev *event.Event) bool {
	if cfg == nil || ev == nil {
		return false
	}
	if !cfg.Composite {
		return EvaluateSimple(cfg.SimpleCondition, ev)
	}
	left := EvaluateSimple(cfg.Subconditions[0], ev)
	right := EvaluateSimple(cfg.Subconditions[1], ev)
	switch cfg.LogicOperator {
	case chain.LogicAnd:
		return left && right
	case chain.LogicOr:
		return left || right
	}
	return false
}

// EvaluateSimple evaluates a single comparison, dispatching on its kind.
func EvaluateSimple(c chain.SimpleCondition, ev *event.Event) bool {
	if ev == nil {
		return false
	}
	op := Operator(c.Operator)
	switch c.ConditionType {
	case chain.CondPurchaseAmount:
		return compareNumbers(op, ev.Amount, c.Value)
	case chain.CondPurchaseCount:
		return compareNumbers(op, ev.Count, c.Count)
	case chain.CondPurchaseFrequency:
		return compareNumbers(op, ev.Frequency, c.Frequency)
	case chain.CondCategory:
		return matchText(op, ev.Category, c.Category)
	case chain.CondProduct:
		return matchText(op, ev.Product, c.Product)
	case chain.CondPointOfSale:
		return matchText(op, ev.PointOfSale, c.PointOfSale)
	case chain.CondRegion:
		return matchText(op, ev.Region, c.Region)
	case chain.CondVIPStatus:
		return ev.VIP == c.VIP
	}
	return false
}
