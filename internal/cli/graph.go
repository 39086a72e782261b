package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/nprs/pkg/pipeline"
)

// graphCommand creates the graph command for drawing a script's pass graph.
func (c *CLI) graphCommand() *cobra.Command {
	var (
		format  string
		output  string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "graph SCRIPT [NAME=EXPR...]",
		Short: "Draw a script's pass graph",
		Long: `Draw a script's pass graph.

The graph is built but not verified, so scripts that fail 'check' can still
be inspected. The display pass is drawn with a heavy border and every edge
is labelled with its dependency slot.

Formats: dot (Graphviz source), svg (rendered with Graphviz), json.`,
		Args:              cobra.MinimumNArgs(1),
		ValidArgsFunction: completeScriptArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := pipeline.ValidateDiagramFormat(format); err != nil {
				return err
			}
			return c.runGraph(cmd.Context(), args[0], args[1:], format, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", pipeline.DiagramDOT, "output format: dot, svg, json")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runGraph(ctx context.Context, scriptPath string, args []string, format, output string, noCache bool) error {
	script, err := os.ReadFile(scriptPath)
	if err != nil {
		return fmt.Errorf("read script: %w", err)
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts := pipeline.Options{
		Script:     string(script),
		ScriptName: filepath.Base(scriptPath),
		Args:       c.Config.withArgs(args),
	}

	if output == "" {
		data, _, err := runner.Diagram(ctx, opts, format)
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(data)
		return err
	}

	spin := newSpinner(ctx, fmt.Sprintf("Drawing %s as %s...", filepath.Base(scriptPath), format))
	spin.Start()
	data, cached, err := runner.Diagram(ctx, opts, format)
	if err != nil {
		spin.StopWithError("Drawing failed")
		return err
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		spin.StopWithError("Write failed")
		return fmt.Errorf("write %s: %w", output, err)
	}
	spin.StopWithSuccess("Graph written")
	printStats(0, 0, cached)
	printFile(output)
	return nil
}
