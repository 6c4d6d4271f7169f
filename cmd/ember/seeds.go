package main

import (
	"fmt"
	"strings"

	"github.com/sandevgo/ember/internal/service/seed"
	"github.com/sandevgo/ember/internal/service/ui"
	"github.com/spf13/cobra"
)

var seedsCmd = &cobra.Command{
	Use:   "seeds",
	Short: "List the builtin seed profiles",
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, name := range seed.Names() {
			profile, err := seed.Builtin(name)
			if err != nil {
				return err
			}

			tools := ""
			if profile.HasToolBlock() {
				tools = " (with tools)"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s%s\n  %s\n",
				ui.UsageStyle.Render(name),
				ui.FlagStyle.Render(tools),
				ui.DescStyle.Render(firstLine(profile.CoreText)))
		}
		return nil
	},
}

// firstLine skips the tool header so the preview shows the personality
// text itself.
func firstLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || trimmed == "---" ||
			strings.HasPrefix(trimmed, "Available tools:") ||
			strings.HasPrefix(trimmed, "- [TOOL:") ||
			strings.HasPrefix(trimmed, "You may use") {
			continue
		}
		return trimmed
	}
	return ""
}

func init() {
	rootCmd.AddCommand(seedsCmd)
}
