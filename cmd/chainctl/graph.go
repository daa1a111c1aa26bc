package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/gyaneshwarpardhi/chainflow/internal/chain"
)

func newGraphCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "graph <file>",
		Short: "Print the chain as a Mermaid flowchart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := loadDocument(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}
			_, err = io.WriteString(cmd.OutOrStdout(), chain.Mermaid(doc.chain))
			return err
		},
	}
}

func newDefaultsCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:       "defaults <type>",
		Short:     "Print the default configuration of a block type",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"trigger", "condition", "action", "communication"},
		RunE: func(cmd *cobra.Command, args []string) error {
			t := chain.BlockType(args[0])
			if !t.Valid() {
				return fmt.Errorf("unknown block type %q", args[0])
			}
			b := chain.Block{ID: string(t), Type: t, Config: chain.DefaultConfig(t)}
			return chain.Encode(cmd.OutOrStdout(), chain.Chain{Blocks: []chain.Block{b}}, chain.Format(format))
		},
	}
	cmd.Flags().StringVar(&format, "format", "yaml", "output format: yaml, json")
	return cmd
}
