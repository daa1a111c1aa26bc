package chain

import "fmt"

// BlockType discriminates the four kinds of chain blocks.
type BlockType string

const (
	TypeTrigger       BlockType = "trigger"
	TypeCondition     BlockType = "condition"
	TypeAction        BlockType = "action"
	TypeCommunication BlockType = "communication"
)

// Valid reports whether t is one of the known block types.
func (t BlockType) Valid() bool {
	switch t {
	case TypeTrigger, TypeCondition, TypeAction, TypeCommunication:
		return true
	}
	return false
}

// Terminal reports whether a chain walk is complete once it reaches t.
func (t BlockType) Terminal() bool {
	return t == TypeAction || t == TypeCommunication
}

// Block is a single node in the automation graph.
// Config always holds the concrete configuration struct for Type.
type Block struct {
	ID     string
	Type   BlockType
	Label  string
	Config Config
}

// NewBlock builds a block, checking that cfg belongs to typ.
// A nil cfg is replaced by the default configuration for typ.
func NewBlock(id string, typ BlockType, label string, cfg Config) (Block, error) {
	if !typ.Valid() {
		return Block{}, fmt.Errorf("block %s: unknown type %q", id, typ)
	}
	if cfg == nil {
		cfg = DefaultConfig(typ)
	}
	if cfg.BlockType() != typ {
		return Block{}, fmt.Errorf("block %s: %s config cannot be used on a %s block", id, cfg.BlockType(), typ)
	}
	return Block{ID: id, Type: typ, Label: label, Config: cfg}, nil
}

// Trigger returns the trigger configuration, or nil when b is not a trigger.
func (b Block) Trigger() *TriggerConfig {
	c, _ := b.Config.(*TriggerConfig)
	return c
}

// Condition returns the condition configuration, or nil when b is not a condition.
func (b Block) Condition() *ConditionConfig {
	c, _ := b.Config.(*ConditionConfig)
	return c
}

// Branch selects which condition outcome an edge is followed on.
type Branch string

const (
	BranchNone  Branch = ""
	BranchTrue  Branch = "true"
	BranchFalse Branch = "false"
)

// BranchFor maps an evaluation outcome to its branch tag.
func BranchFor(outcome bool) Branch {
	if outcome {
		return BranchTrue
	}
	return BranchFalse
}

// Connection is a directed edge between two blocks.
type Connection struct {
	SourceID string `json:"sourceId" yaml:"sourceId"`
	TargetID string `json:"targetId" yaml:"targetId"`
	Branch   Branch `json:"branch,omitempty" yaml:"branch,omitempty"`
}

// Tagged reports whether the edge carries a branch tag.
func (c Connection) Tagged() bool { return c.Branch != BranchNone }

// Chain is a snapshot of blocks and connections.
// Connections may reference blocks that do not exist; readers treat such
// edges as absent.
type Chain struct {
	Blocks      []Block      `json:"blocks" yaml:"blocks"`
	Connections []Connection `json:"connections" yaml:"connections"`
}

// Clone returns a deep copy of c, including every block's configuration.
func (c Chain) Clone() Chain {
	out := Chain{
		Blocks:      make([]Block, len(c.Blocks)),
		Connections: make([]Connection, len(c.Connections)),
	}
	for i, b := range c.Blocks {
		if b.Config != nil {
			b.Config = b.Config.clone()
		}
		out.Blocks[i] = b
	}
	copy(out.Connections, c.Connections)
	return out
}

// Block returns the block with the given id.
func (c Chain) Block(id string) (Block, bool) {
	for _, b := range c.Blocks {
		if b.ID == id {
			return b, true
		}
	}
	return Block{}, false
}
