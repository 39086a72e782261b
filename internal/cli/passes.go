package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/nprs/pkg/passes"
)

// passesCommand creates the passes command listing the built-in passes.
func (c *CLI) passesCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "passes",
		Short: "List the built-in passes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog := passes.Catalog()
			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(catalog)
			}
			printPasses(catalog)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the catalog as JSON")

	return cmd
}

func printPasses(catalog []passes.Info) {
	fmt.Println(StyleTitle.Render("Built-in passes"))
	for _, info := range catalog {
		printKeyValue(info.Name, info.Summary)
		printDetail("depends on: %s", strings.Join(info.Dependencies, ", "))
		if info.Fields != "" {
			printDetail("fields: %s", info.Fields)
		}
	}
}
