package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gyaneshwarpardhi/chainflow/internal/config"
	"github.com/gyaneshwarpardhi/chainflow/internal/dag"
)

var errInvalid = errors.New("chain is not valid")

func newValidateCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Check that every trigger reaches an action or communication",
		Long: `Validate reports document problems (duplicate ids, misplaced branch tags,
connections to missing blocks) and structural problems: a chain without a
trigger, blocks without an outgoing connection and cycles.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := loadDocument(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}
			p := newPrinter(cmd.OutOrStdout(), root)

			failed := false
			if doc.workspace != nil {
				if err := config.Validate(doc.workspace); err != nil {
					p.fail("%v", err)
					failed = true
				}
			} else {
				for _, msg := range config.ValidateChain(doc.chain) {
					p.fail("%s", msg)
					failed = true
				}
			}
			for _, conn := range config.DanglingConnections(doc.chain) {
				p.warn("connection %s -> %s references a missing block", conn.SourceID, conn.TargetID)
			}

			errs := dag.Validate(doc.chain)
			for _, e := range errs {
				p.fail("%s", e.Message)
			}
			if failed || len(errs) > 0 {
				return fmt.Errorf("%s: %w", args[0], errInvalid)
			}
			p.ok("chain is valid (%d blocks, %d connections)", len(doc.chain.Blocks), len(doc.chain.Connections))
			return nil
		},
	}
}
