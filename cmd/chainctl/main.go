// chainctl validates, simulates and renders automation chains from the
// command line.
//
// Usage:
//
//	# Check a chain document or workspace file
//	chainctl validate configs/workspace.yaml
//
//	# Simulate a purchase event
//	chainctl simulate chain.json --event purchase --amount 1500
//
//	# Print a Mermaid flowchart
//	chainctl graph chain.json
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
