package config

import (
	"fmt"
	"strings"

	"github.com/gyaneshwarpardhi/chainflow/internal/chain"
)

// Validate checks the workspace for:
//   - Required fields and known log settings
//   - Duplicate or missing block IDs
//   - Blocks whose config does not belong to their type
//   - Branch tags on edges that do not leave a condition
//
// Connections to missing blocks are legal (the chain core ignores them);
// use DanglingConnections to report them.
func Validate(ws *Workspace) error {
	if ws.Version == "" {
		return fmt.Errorf("workspace: version is required")
	}
	var errs []string

	switch ws.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Sprintf("log.level %q is not one of debug, info, warn, error", ws.Log.Level))
	}
	switch ws.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Sprintf("log.format %q is not one of text, json", ws.Log.Format))
	}
	if ws.Engine.Workers < 0 || ws.Engine.QueueDepth < 0 || ws.Engine.TimeoutMs < 0 {
		errs = append(errs, "engine settings must not be negative")
	}

	errs = append(errs, ValidateChain(ws.Chain)...)

	if len(errs) > 0 {
		return fmt.Errorf("workspace validation errors:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// ValidateChain returns document-level problems in c. These are distinct
// from the structural checks of the chain validator: a chain that passes
// here may still lack a trigger or contain cycles.
func ValidateChain(c chain.Chain) []string {
	var errs []string
	types := make(map[string]chain.BlockType, len(c.Blocks))

	for i, b := range c.Blocks {
		if b.ID == "" {
			errs = append(errs, fmt.Sprintf("blocks[%d]: id is required", i))
			continue
		}
		if _, dup := types[b.ID]; dup {
			errs = append(errs, fmt.Sprintf("duplicate block id %q", b.ID))
			continue
		}
		types[b.ID] = b.Type
		if !b.Type.Valid() {
			errs = append(errs, fmt.Sprintf("block %s: unknown type %q", b.ID, b.Type))
			continue
		}
		if b.Config == nil {
			errs = append(errs, fmt.Sprintf("block %s: config is required", b.ID))
			continue
		}
		if b.Config.BlockType() != b.Type {
			errs = append(errs, fmt.Sprintf("block %s: %s config on a %s block", b.ID, b.Config.BlockType(), b.Type))
		}
	}

	for i, conn := range c.Connections {
		if conn.SourceID == "" || conn.TargetID == "" {
			errs = append(errs, fmt.Sprintf("connections[%d]: sourceId and targetId are required", i))
			continue
		}
		switch conn.Branch {
		case chain.BranchNone:
		case chain.BranchTrue, chain.BranchFalse:
			if t, ok := types[conn.SourceID]; ok && t != chain.TypeCondition {
				errs = append(errs, fmt.Sprintf("connections[%d]: branch %q on an edge leaving %s block %s",
					i, conn.Branch, t, conn.SourceID))
			}
		default:
			errs = append(errs, fmt.Sprintf("connections[%d]: branch must be \"true\" or \"false\", got %q", i, conn.Branch))
		}
	}
	return errs
}

// DanglingConnections returns the connections whose source or target block
// does not exist.
func DanglingConnections(c chain.Chain) []chain.Connection {
	ids := make(map[string]struct{}, len(c.Blocks))
	for _, b := range c.Blocks {
		ids[b.ID] = struct{}{}
	}
	var out []chain.Connection
	for _, conn := range c.Connections {
		_, src := ids[conn.SourceID]
		_, dst := ids[conn.TargetID]
		if !src || !dst {
			out = append(out, conn)
		}
	}
	return out
}
