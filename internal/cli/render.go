package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/nprs/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	format  string // output format; inferred from the output path when empty
	noCache bool   // bypass the cache entirely
	refresh bool   // skip cache lookup but store the fresh result
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render SCRIPT INPUT OUTPUT [NAME=EXPR...]",
		Short: "Render an image through a script",
		Long: `Render an image through a script.

The script is compiled with the given argument overrides, its graph is
verified and rendered over INPUT, and the display pass is written to OUTPUT.
Overrides replace '@NAME' arguments in the script, for example:

  nprs render bloom.nprs photo.jpg out.png sigma=4.0 'mode=Overlay(Rec709)'

Results are cached, keyed by the compiled graph, the input bytes and the
output format. Nothing is written when any stage fails.`,
		Args:              cobra.MinimumNArgs(3),
		ValidArgsFunction: completeRenderArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd.Context(), args[0], args[1], args[2], args[3:], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format: png, jpeg, gif, tiff, bmp (default: from OUTPUT extension)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "ignore cached results and render again")

	return cmd
}

// runRender executes the pipeline and writes the output file.
func (c *CLI) runRender(ctx context.Context, scriptPath, inputPath, outputPath string, args []string, opts renderOpts) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	script, err := os.ReadFile(scriptPath)
	if err != nil {
		return fmt.Errorf("read script: %w", err)
	}
	input, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	format := opts.format
	if format == "" {
		format = formatFromPath(outputPath)
	}
	if err := pipeline.ValidateFormat(format); err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spin := newSpinner(ctx, fmt.Sprintf("Rendering %s through %s...", filepath.Base(inputPath), filepath.Base(scriptPath)))
	spin.Start()

	result, err := runner.Execute(ctx, pipeline.Options{
		Script:     string(script),
		ScriptName: filepath.Base(scriptPath),
		Args:       c.Config.withArgs(args),
		Format:     format,
		Refresh:    opts.refresh,
		Input:      input,
		Logger:     logger,
	})
	if err != nil {
		if spin.Cancelled() {
			spin.StopWithError("Render interrupted")
		} else {
			spin.StopWithError("Render failed")
		}
		return err
	}
	elapsed := spin.Elapsed()
	spin.Stop()

	if err := os.WriteFile(outputPath, result.Output, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	prog.done("Rendered " + outputPath)

	printSuccess("Rendered %s %s", filepath.Base(scriptPath), StyleDim.Render(formatElapsed(elapsed)))
	printStats(result.Stats.PassCount, result.Stats.EdgeCount, result.CacheInfo.RenderHit)
	printFile(outputPath)
	printDetail("run %s · %dx%d", result.RunID, result.Stats.Width, result.Stats.Height)
	return nil
}

// formatFromPath returns the format named by path's extension, or the
// default format when it has none.
func formatFromPath(path string) string {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return pipeline.DefaultFormat
	}
	return strings.ToLower(ext)
}
