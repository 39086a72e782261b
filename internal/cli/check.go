package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/nprs/pkg/pipeline"
)

// checkCommand creates the check command.
func (c *CLI) checkCommand() *cobra.Command {
	var input string

	cmd := &cobra.Command{
		Use:   "check SCRIPT [NAME=EXPR...]",
		Short: "Compile and verify a script without rendering",
		Long: `Compile and verify a script without rendering.

check runs every stage up to rendering: parsing, interpretation with the
given overrides, graph construction and verification. Pass --input to
verify against a real image instead of a 1x1 placeholder.`,
		Args:              cobra.MinimumNArgs(1),
		ValidArgsFunction: completeScriptArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runCheck(cmd.Context(), args[0], args[1:], input)
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "input image to verify against")

	return cmd
}

func (c *CLI) runCheck(ctx context.Context, scriptPath string, args []string, inputPath string) error {
	script, err := os.ReadFile(scriptPath)
	if err != nil {
		return fmt.Errorf("read script: %w", err)
	}

	var input []byte
	if inputPath != "" {
		if input, err = os.ReadFile(inputPath); err != nil {
			return fmt.Errorf("read input: %w", err)
		}
	}

	runner := pipeline.NewRunner(nil, nil, c.Logger)
	compiled, err := runner.Check(ctx, pipeline.Options{
		Script:     string(script),
		ScriptName: filepath.Base(scriptPath),
		Args:       c.Config.withArgs(args),
		Input:      input,
	})
	if err != nil {
		printError("%s", filepath.Base(scriptPath))
		return err
	}

	printSuccess("%s is valid", filepath.Base(scriptPath))
	printKeyValue("passes", strconv.Itoa(compiled.Graph.Len()-1))
	printKeyValue("edges", strconv.Itoa(compiled.EdgeCount()))
	printKeyValue("display", compiled.Graph.Name(compiled.Display))
	printKeyValue("hash", compiled.Hash[:12])
	printNewline()
	printNextStep("Render it", fmt.Sprintf("%s render %s INPUT OUTPUT", appName, scriptPath))
	return nil
}
