package dag

import "github.com/gyaneshwarpardhi/chainflow/internal/chain"

// Graph is a read-only index over a chain snapshot: blocks by id and
// outgoing connections by source, both in document order.
// It is immutable once built; the engine swaps in a new Graph on reload.
type Graph struct {
	blocks   map[string]chain.Block
	outgoing map[string][]chain.Connection
	triggers []chain.Block
	edges    int
}

// Build indexes c. When two blocks share an id the first one wins.
func Build(c chain.Chain) *Graph {
	g := &Graph{
		blocks:   make(map[string]chain.Block, len(c.Blocks)),
		outgoing: make(map[string][]chain.Connection),
	}
	for _, b := range c.Blocks {
		if _, dup := g.blocks[b.ID]; dup {
			continue
		}
		g.blocks[b.ID] = b
		if b.Type == chain.TypeTrigger {
			g.triggers = append(g.triggers, b)
		}
	}
	for _, conn := range c.Connections {
		g.outgoing[conn.SourceID] = append(g.outgoing[conn.SourceID], conn)
		g.edges++
	}
	return g
}

// Block returns a block by id.
func (g *Graph) Block(id string) (chain.Block, bool) {
	b, ok := g.blocks[id]
	return b, ok
}

// Outgoing returns every connection leaving id, including dangling ones.
func (g *Graph) Outgoing(id string) []chain.Connection {
	return g.outgoing[id]
}

// Triggers returns all trigger blocks (traversal entry points).
func (g *Graph) Triggers() []chain.Block {
	return g.triggers
}

// NodeCount returns the number of distinct blocks.
func (g *Graph) NodeCount() int {
	return len(g.blocks)
}

// EdgeCount returns the number of connections, dangling ones included.
func (g *Graph) EdgeCount() int {
	return g.edges
}

// firstSuccessor follows the first outgoing connection whose target exists.
func (g *Graph) firstSuccessor(id string) (chain.Block, bool) {
	for _, conn := range g.outgoing[id] {
		if b, ok := g.blocks[conn.TargetID]; ok {
			return b, true
		}
	}
	return chain.Block{}, false
}
