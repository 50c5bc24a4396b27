package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var promptsCmd = &cobra.Command{
	Use:   "prompts",
	Short: "Inspect and reset prompt templates",
	Long: `Prompt templates live as text files in ~/.prepkit/prompts and are
reloaded when they change. Edit a file to customise a prompt; reset it to
restore the built-in template.`,
	RunE: runPromptsList,
}

var promptsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List prompt templates",
	Args:  cobra.NoArgs,
	RunE:  runPromptsList,
}

var promptsShowCmd = &cobra.Command{
	Use:   "show [name]",
	Short: "Print a prompt template",
	Args:  cobra.ExactArgs(1),
	RunE:  runPromptsShow,
}

var promptsResetCmd = &cobra.Command{
	Use:   "reset [name]",
	Short: "Restore the built-in template",
	Args:  cobra.ExactArgs(1),
	RunE:  runPromptsReset,
}

func init() {
	promptsCmd.AddCommand(promptsListCmd, promptsShowCmd, promptsResetCmd)
	rootCmd.AddCommand(promptsCmd)
}

func runPromptsList(cmd *cobra.Command, _ []string) error {
	if promptService == nil {
		return errors.New("prompt service not configured")
	}
	prompts, err := promptService.List()
	if err != nil {
		return fmt.Errorf("failed to list prompts: %w", err)
	}

	cmd.Println(headingStyle.Sprint("Prompts"))
	for _, p := range prompts {
		state := mutedStyle.Sprint("default")
		if p.Customised {
			state = successStyle.Sprint("customised")
		}
		cmd.Printf("  %-12s %s", p.Name, state)
		if p.Path != "" {
			cmd.Printf("  %s", mutedStyle.Sprint(p.Path))
		}
		cmd.Println()
	}
	return nil
}

func runPromptsShow(cmd *cobra.Command, args []string) error {
	if promptService == nil {
		return errors.New("prompt service not configured")
	}
	text, err := promptService.Show(args[0])
	if err != nil {
		return fmt.Errorf("prompt %q: %w", args[0], err)
	}
	cmd.Println(text)
	return nil
}

func runPromptsReset(cmd *cobra.Command, args []string) error {
	if promptService == nil {
		return errors.New("prompt service not configured")
	}
	if err := promptService.Reset(args[0]); err != nil {
		return fmt.Errorf("prompt %q: %w", args[0], err)
	}
	cmd.Printf("Prompt %s restored to the default.\n", args[0])
	return nil
}
