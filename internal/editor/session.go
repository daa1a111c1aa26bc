// Package editor holds the in-memory editing state of a chain: block and
// connection mutations with undo/redo history.
package editor

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"

	"github.com/gyaneshwarpardhi/chainflow/internal/chain"
)

var (
	ErrBlockNotFound     = errors.New("block not found")
	ErrInvalidConnection = errors.New("invalid connection")
	ErrNoNextBlock       = errors.New("no block type follows this one")
	ErrConfigMismatch    = errors.New("config does not match block type")
)

// progression is the block type AddNext appends after each type.
var progression = map[chain.BlockType]chain.BlockType{
	chain.TypeTrigger:   chain.TypeCondition,
	chain.TypeCondition: chain.TypeAction,
	chain.TypeAction:    chain.TypeCommunication,
}

// Session is a chain under edit. Every successful mutation records the
// previous state for Undo and clears the redo history.
type Session struct {
	mu      sync.Mutex
	current chain.Chain
	undo    []chain.Chain
	redo    []chain.Chain
	newID   func() string
}

// NewSession starts editing a copy of c.
func NewSession(c chain.Chain) *Session {
	c = c.Clone()
	if c.Blocks == nil {
		c.Blocks = []chain.Block{}
	}
	if c.Connections == nil {
		c.Connections = []chain.Connection{}
	}
	return &Session{current: c, newID: uuid.NewString}
}

// Snapshot returns a deep copy of the current chain.
func (s *Session) Snapshot() chain.Chain {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.Clone()
}

// History returns the number of available undo and redo steps.
func (s *Session) History() (undo, redo int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.undo), len(s.redo)
}

// commit must be called with mu held.
func (s *Session) commit(next chain.Chain) {
	s.undo = append(s.undo, s.current)
	s.redo = nil
	s.current = next
}

// AddBlock appends a block of type typ with its default configuration.
func (s *Session) AddBlock(typ chain.BlockType, label string) (chain.Block, error) {
	b, err := chain.NewBlock(s.newID(), typ, label, nil)
	if err != nil {
		return chain.Block{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.current.Clone()
	next.Blocks = append(next.Blocks, b)
	s.commit(next)
	return b, nil
}

// AddNext appends the block that naturally follows id and connects the two.
// The new edge is tagged "true" when id is a condition.
func (s *Session) AddNext(id string) (chain.Block, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	src, ok := s.current.Block(id)
	if !ok {
		return chain.Block{}, fmt.Errorf("%w: %s", ErrBlockNotFound, id)
	}
	typ, ok := progression[src.Type]
	if !ok {
		return chain.Block{}, fmt.Errorf("%w: %s block %s", ErrNoNextBlock, src.Type, id)
	}
	b, err := chain.NewBlock(s.newID(), typ, "", nil)
	if err != nil {
		return chain.Block{}, err
	}
	conn := chain.Connection{SourceID: id, TargetID: b.ID}
	if src.Type == chain.TypeCondition {
		conn.Branch = chain.BranchTrue
	}

	next := s.current.Clone()
	next.Blocks = append(next.Blocks, b)
	next.Connections = append(next.Connections, conn)
	s.commit(next)
	return b, nil
}

// Connect adds an edge from src to dst. Branch tags are only allowed on
// edges leaving a condition. Trigger to action and action to trigger edges
// are rejected, as are self-loops.
func (s *Session) Connect(src, dst string, branch chain.Branch) (chain.Connection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	from, ok := s.current.Block(src)
	if !ok {
		return chain.Connection{}, fmt.Errorf("%w: %s", ErrBlockNotFound, src)
	}
	to, ok := s.current.Block(dst)
	if !ok {
		return chain.Connection{}, fmt.Errorf("%w: %s", ErrBlockNotFound, dst)
	}
	if err := checkConnection(from, to, branch); err != nil {
		return chain.Connection{}, err
	}

	conn := chain.Connection{SourceID: src, TargetID: dst, Branch: branch}
	next := s.current.Clone()
	next.Connections = append(next.Connections, conn)
	s.commit(next)
	return conn, nil
}

func checkConnection(from, to chain.Block, branch chain.Branch) error {
	switch {
	case from.ID == to.ID:
		return fmt.Errorf("%w: block %s cannot connect to itself", ErrInvalidConnection, from.ID)
	case from.Type == chain.TypeTrigger && to.Type == chain.TypeAction:
		return fmt.Errorf("%w: a trigger cannot lead directly to an action, add a condition between them", ErrInvalidConnection)
	case from.Type == chain.TypeAction && to.Type == chain.TypeTrigger:
		return fmt.Errorf("%w: an action cannot lead back to a trigger", ErrInvalidConnection)
	}
	switch branch {
	case chain.BranchNone:
	case chain.BranchTrue, chain.BranchFalse:
		if from.Type != chain.TypeCondition {
			return fmt.Errorf("%w: branch %q on an edge leaving %s block %s", ErrInvalidConnection, branch, from.Type, from.ID)
		}
	default:
		return fmt.Errorf("%w: unknown branch %q", ErrInvalidConnection, branch)
	}
	return nil
}

// UpdateBlock replaces the label and configuration of block id. A nil cfg
// keeps the current configuration.
func (s *Session) UpdateBlock(id, label string, cfg chain.Config) (chain.Block, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.current.Clone()
	for i, b := range next.Blocks {
		if b.ID != id {
			continue
		}
		if cfg != nil {
			if cfg.BlockType() != b.Type {
				return chain.Block{}, fmt.Errorf("%w: %s config on %s block %s", ErrConfigMismatch, cfg.BlockType(), b.Type, id)
			}
			b.Config = cfg
		}
		b.Label = label
		next.Blocks[i] = b
		s.commit(next)
		return b, nil
	}
	return chain.Block{}, fmt.Errorf("%w: %s", ErrBlockNotFound, id)
}

// DeleteBlock removes block id and every connection touching it.
func (s *Session) DeleteBlock(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.current.Block(id); !ok {
		return fmt.Errorf("%w: %s", ErrBlockNotFound, id)
	}
	next := chain.Chain{
		Blocks:      make([]chain.Block, 0, len(s.current.Blocks)),
		Connections: make([]chain.Connection, 0, len(s.current.Connections)),
	}
	for _, b := range s.current.Blocks {
		if b.ID != id {
			next.Blocks = append(next.Blocks, b)
		}
	}
	for _, c := range s.current.Connections {
		if c.SourceID != id && c.TargetID != id {
			next.Connections = append(next.Connections, c)
		}
	}
	s.commit(next.Clone())
	return nil
}

// Undo restores the state before the last mutation. It reports false when
// there is nothing to undo.
func (s *Session) Undo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.undo) == 0 {
		return false
	}
	last := len(s.undo) - 1
	s.redo = append(s.redo, s.current)
	s.current = s.undo[last]
	s.undo = s.undo[:last]
	return true
}

// Redo re-applies the last undone mutation.
func (s *Session) Redo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.redo) == 0 {
		return false
	}
	last := len(s.redo) - 1
	s.undo = append(s.undo, s.current)
	s.current = s.redo[last]
	s.redo = s.redo[:last]
	return true
}

// Replace swaps in a whole chain as a single undoable step.
func (s *Session) Replace(c chain.Chain) {
	c = c.Clone()
	if c.Blocks == nil {
		c.Blocks = []chain.Block{}
	}
	if c.Connections == nil {
		c.Connections = []chain.Connection{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commit(c)
}

// Import replaces the chain with the document read from r. On a parse
// error the session is unchanged.
func (s *Session) Import(r io.Reader, f chain.Format) (chain.Chain, error) {
	c, err := chain.Decode(r, f)
	if err != nil {
		return chain.Chain{}, fmt.Errorf("import: %w", err)
	}
	s.Replace(c)
	return c, nil
}

// Export writes the current chain to w.
func (s *Session) Export(w io.Writer, f chain.Format) error {
	return chain.Encode(w, s.Snapshot(), f)
}
