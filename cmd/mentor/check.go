package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/steveyegge/mentor/internal/admission"
)

var checkCmd = &cobra.Command{
	Use:   "check <file>",
	Short: "Run a one-shot admission decision for a file",
	Long:  `Classify a file's current content and print whether an analysis call would run.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		table, err := loadTable()
		if err != nil {
			return err
		}
		ctrl, err := admission.NewController(admission.LoadFromEnv(), table)
		if err != nil {
			return err
		}

		change, err := changeFromFile(args[0], "")
		if err != nil {
			return err
		}

		decision := ctrl.ShouldTrigger(change, sessionID)
		printDecision(args[0], decision)

		gray := color.New(color.FgHiBlack).SprintFunc()
		if rule := table.MatchRule(change); rule != nil {
			fmt.Printf("%s\n", gray(fmt.Sprintf("matched rule %s: %s", rule.ID, rule.Description)))
		} else {
			fmt.Printf("%s\n", gray("no rule matched, classified by size/kind heuristics"))
		}

		status := ctrl.Status()
		fmt.Printf("%s\n", gray(fmt.Sprintf("tokens %d/%d", status.Tokens, status.TokenCapacity)))
		return nil
	},
}

// printDecision renders one admission decision with color
func printDecision(path string, d admission.Decision) {
	green := color.New(color.FgGreen).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()

	icon := yellow("○")
	if d.Trigger {
		icon = green("●")
	} else if d.UseCache {
		icon = cyan("◆")
	}
	fmt.Printf("%s %s [%s] %s\n", icon, path, d.Priority, d.Reason)
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
