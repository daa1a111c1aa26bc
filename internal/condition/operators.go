package condition

import "strings"

// Operator represents a comparison operator.
type Operator string

const (
	OpEq         Operator = "=="
	OpNeq        Operator = "!="
	OpGt         Operator = ">"
	OpGte        Operator = ">="
	OpLt         Operator = "<"
	OpLte        Operator = "<="
	OpContains   Operator = "contains"
	OpExactMatch Operator = "exact_match"
)

// compareNumbers applies a relational operator to two numbers.
// Unknown operators never match.
func compareNumbers(op Operator, left, right float64) bool {
	switch op {
	case OpGt:
		return left > right
	case OpGte:
		return left >= right
	case OpLt:
		return left < right
	case OpLte:
		return left <= right
	case OpEq:
		return left == right
	case OpNeq:
		return left != right
	}
	return false
}

// matchText applies a textual operator. An empty event field never
// satisfies "contains".
func matchText(op Operator, field, want string) bool {
	switch op {
	case OpContains:
		return field != "" && strings.Contains(field, want)
	case OpExactMatch:
		return field == want
	}
	return false
}
