package main

import (
	"encoding/json"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gyaneshwarpardhi/chainflow/internal/action/loyalty"
	"github.com/gyaneshwarpardhi/chainflow/internal/dag"
	"github.com/gyaneshwarpardhi/chainflow/internal/event"
)

type simulateOptions struct {
	ev      event.Event
	jsonOut bool
}

func newSimulateCmd(root *rootOptions) *cobra.Command {
	opts := &simulateOptions{}
	cmd := &cobra.Command{
		Use:   "simulate <file>",
		Short: "Walk the chain for an event and print what would happen",
		Long: `Simulate fires every trigger matching the event and prints the walk.
Without event flags the workspace's simulation event is used, or a Monday
08:00 time_based event for bare chain documents. When any event flag is set
the event is built from the flags alone.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := loadDocument(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}
			ev := doc.defaultEvent()
			if eventFlagsChanged(cmd) {
				ev = &opts.ev
			}

			tr := dag.NewSimulator(loyalty.NewRegistry()).Run(dag.Build(doc.chain), ev)
			if opts.jsonOut {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(tr)
			}

			p := newPrinter(cmd.OutOrStdout(), root)
			for _, line := range tr.Log {
				switch {
				case strings.HasSuffix(line, " passed"):
					p.ok("%s", line)
				case strings.HasSuffix(line, " failed"):
					p.fail("%s", line)
				case strings.Contains(line, "Cycle detected"), strings.HasPrefix(line, "No trigger matched"):
					p.warn("%s", line)
				default:
					p.plain("%s", line)
				}
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.ev.Kind, "event", "", "event kind (purchase, time_based, registration, ...)")
	f.StringVar(&opts.ev.DayOfWeek, "day", "", "day of week for time_based events")
	f.StringVar(&opts.ev.Time, "time", "", "clock time HH:MM for time_based events")
	f.Float64Var(&opts.ev.Amount, "amount", 0, "purchase amount")
	f.Float64Var(&opts.ev.Count, "count", 0, "purchase count")
	f.Float64Var(&opts.ev.Frequency, "frequency", 0, "purchase frequency")
	f.StringVar(&opts.ev.Product, "product", "", "product name")
	f.StringVar(&opts.ev.Category, "category", "", "product category")
	f.StringVar(&opts.ev.PointOfSale, "pos", "", "point of sale")
	f.StringVar(&opts.ev.Region, "region", "", "customer region")
	f.BoolVar(&opts.ev.VIP, "vip", false, "customer is VIP")
	f.BoolVar(&opts.jsonOut, "json", false, "print the full trace as JSON")
	return cmd
}

var eventFlags = []string{"event", "day", "time", "amount", "count", "frequency", "product", "category", "pos", "region", "vip"}

func eventFlagsChanged(cmd *cobra.Command) bool {
	for _, name := range eventFlags {
		if cmd.Flags().Changed(name) {
			return true
		}
	}
	return false
}
