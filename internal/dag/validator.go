package dag

import (
	"fmt"

	"github.com/gyaneshwarpardhi/chainflow/internal/chain"
)

// ValidationError is a structural problem found in a chain.
// BlockID names the block to highlight; it is empty for chain-wide errors.
type ValidationError struct {
	BlockID string `json:"block_id,omitempty"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string { return e.Message }

// Validate checks the chain's structure. An empty result means the chain is
// valid. It never mutates c and returns the same errors for the same input.
func Validate(c chain.Chain) []ValidationError {
	return Build(c).Validate()
}

// Validate walks forward from every trigger along one connection at a time
// until it reaches an action or communication block. Branch tags are not
// evaluated: when several connections leave a block only the first one with
// an existing target is followed.
func (g *Graph) Validate() []ValidationError {
	errs := []ValidationError{}
	if len(g.triggers) == 0 {
		errs = append(errs, ValidationError{Message: "chain must start with a trigger"})
	}

	for _, trig := range g.triggers {
		visited := map[string]struct{}{trig.ID: {}}
		cur := trig
		for !cur.Type.Terminal() {
			next, ok := g.firstSuccessor(cur.ID)
			if !ok {
				errs = append(errs, ValidationError{
					BlockID: cur.ID,
					Message: fmt.Sprintf("block %s has no outgoing connection", cur.ID),
				})
				break
			}
			if _, seen := visited[next.ID]; seen {
				errs = append(errs, ValidationError{
					BlockID: trig.ID,
					Message: fmt.Sprintf("cycle detected in chain starting at block %s", trig.ID),
				})
				break
			}
			visited[next.ID] = struct{}{}
			cur = next
		}
	}
	return errs
}
