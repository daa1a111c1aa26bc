package chain

import (
	"fmt"
	"strings"
)

// Mermaid renders the chain as a Mermaid flowchart.
// Node shapes follow the block type: triggers are circles, conditions are
// rhombuses, communications are subroutines and actions are rectangles.
// Edges to missing blocks are skipped.
func Mermaid(c Chain) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	known := make(map[string]struct{}, len(c.Blocks))
	for _, b := range c.Blocks {
		known[b.ID] = struct{}{}

		opener, closer := "[", "]"
		switch b.Type {
		case TypeTrigger:
			opener, closer = "((", "))"
		case TypeCondition:
			opener, closer = "{", "}"
		case TypeCommunication:
			opener, closer = "[[", "]]"
		}
		text := b.Label
		if text == "" {
			text = Summary(b)
		}
		if text == "" {
			text = b.ID
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", mermaidID(b.ID), opener, escapeLabel(text), closer)
	}

	for _, conn := range c.Connections {
		if _, ok := known[conn.SourceID]; !ok {
			continue
		}
		if _, ok := known[conn.TargetID]; !ok {
			continue
		}
		arrow := "-->"
		if conn.Tagged() {
			arrow = fmt.Sprintf("-- \"%s\" -->", conn.Branch)
		}
		fmt.Fprintf(&sb, "    %s %s %s\n", mermaidID(conn.SourceID), arrow, mermaidID(conn.TargetID))
	}
	return sb.String()
}

func mermaidID(id string) string {
	r := strings.NewReplacer("-", "_", " ", "_", "/", "_", ".", "_")
	return "b_" + r.Replace(id)
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}
