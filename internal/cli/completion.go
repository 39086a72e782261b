package cli

import (
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/nprs/pkg/dsl"
)

var imageExtensions = []string{"png", "jpg", "jpeg", "gif", "tif", "tiff", "bmp"}

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for nprs.

Completions cover subcommands and flags, .nprs scripts and input images for
render, check and graph, and the '@NAME' overrides a script reads, offered
as NAME=.

Bash:
  $ source <(nprs completion bash)

Zsh:
  $ nprs completion zsh > "${fpath[1]}/_nprs"

Fish:
  $ nprs completion fish > ~/.config/fish/completions/nprs.fish

PowerShell:
  PS> nprs completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(out, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}

	return cmd
}

// completeScriptArgs completes SCRIPT followed by NAME=EXPR overrides.
func completeScriptArgs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) == 0 {
		return []string{"nprs"}, cobra.ShellCompDirectiveFilterFileExt
	}
	return completeOverrides(args[0], args[1:], toComplete)
}

// completeRenderArgs completes SCRIPT INPUT OUTPUT followed by overrides.
func completeRenderArgs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	switch len(args) {
	case 0:
		return []string{"nprs"}, cobra.ShellCompDirectiveFilterFileExt
	case 1, 2:
		return imageExtensions, cobra.ShellCompDirectiveFilterFileExt
	}
	return completeOverrides(args[0], args[3:], toComplete)
}

func completeOverrides(scriptPath string, given []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	src, err := os.ReadFile(scriptPath)
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	set := make(map[string]bool, len(given))
	for _, a := range given {
		name, _, _ := strings.Cut(a, "=")
		set[name] = true
	}

	var out []string
	for _, name := range scriptArguments(string(src)) {
		if set[name] || !strings.HasPrefix(name, toComplete) {
			continue
		}
		out = append(out, name+"=")
	}
	return out, cobra.ShellCompDirectiveNoFileComp | cobra.ShellCompDirectiveNoSpace
}

// scriptArguments returns the sorted '@NAME' arguments src reads. Lexing
// stops at the first illegal token.
func scriptArguments(src string) []string {
	var names []string
	lx := dsl.NewLexer(src)
	for {
		tok := lx.NextToken()
		if tok.Type == dsl.TokEOF || tok.Type == dsl.TokIllegal {
			break
		}
		if tok.Type == dsl.TokArg && !slices.Contains(names, tok.Lexeme) {
			names = append(names, tok.Lexeme)
		}
	}
	slices.Sort(names)
	return names
}
