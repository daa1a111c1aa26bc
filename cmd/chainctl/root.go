package main

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/gyaneshwarpardhi/chainflow/internal/chain"
	"github.com/gyaneshwarpardhi/chainflow/internal/config"
	"github.com/gyaneshwarpardhi/chainflow/internal/event"
)

type rootOptions struct {
	noColor bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "chainctl",
		Short: "Validate, simulate and render loyalty automation chains",
		Long: `chainctl works on chain documents (JSON or YAML with "blocks" and
"connections") and on full workspace files (YAML with a "chain" section).

Examples:
  # Validate a chain
  chainctl validate chain.json

  # Simulate the workspace's default event
  chainctl simulate configs/workspace.yaml

  # Simulate a specific event
  chainctl simulate chain.yaml --event time_based --day monday --time 08:00`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().BoolVar(&opts.noColor, "no-color", false, "disable colored output")

	cmd.AddCommand(
		newValidateCmd(opts),
		newSimulateCmd(opts),
		newGraphCmd(),
		newDefaultsCmd(),
	)
	return cmd
}

// printer writes colored status lines.
type printer struct {
	out *termenv.Output
}

func newPrinter(w io.Writer, opts *rootOptions) *printer {
	if opts.noColor {
		return &printer{out: termenv.NewOutput(w, termenv.WithProfile(termenv.Ascii))}
	}
	return &printer{out: termenv.NewOutput(w)}
}

func (p *printer) line(color, format string, args ...interface{}) {
	s := fmt.Sprintf(format, args...)
	if color != "" {
		s = p.out.String(s).Foreground(p.out.Color(color)).String()
	}
	fmt.Fprintln(p.out, s)
}

func (p *printer) ok(format string, args ...interface{})   { p.line("#22c55e", format, args...) }
func (p *printer) fail(format string, args ...interface{}) { p.line("#ef4444", format, args...) }
func (p *printer) warn(format string, args ...interface{}) { p.line("#eab308", format, args...) }
func (p *printer) plain(format string, args ...interface{}) {
	p.line("", format, args...)
}

// document is a loaded input file: always a chain, plus the workspace when
// the file was a workspace.
type document struct {
	chain     chain.Chain
	workspace *config.Workspace
}

// defaultEvent returns the workspace simulation event, or the smoke-test
// event for bare chain documents.
func (d *document) defaultEvent() *event.Event {
	if d.workspace != nil && d.workspace.Simulation.Event != nil {
		return d.workspace.Simulation.Event
	}
	return event.SmokeTest()
}

// loadDocument reads path ("-" for stdin) as a workspace when it has a
// top-level "chain" key, otherwise as a chain document.
func loadDocument(path string, stdin io.Reader) (*document, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var top map[string]interface{}
	if err := yaml.Unmarshal(data, &top); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if _, ok := top["chain"]; ok {
		ws, err := config.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("parse workspace %s: %w", path, err)
		}
		return &document{chain: ws.Chain, workspace: ws}, nil
	}

	f := chain.FormatFromPath(path)
	if path == "-" {
		f = chain.FormatYAML
	}
	c, err := chain.Decode(bytes.NewReader(data), f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &document{chain: c}, nil
}
