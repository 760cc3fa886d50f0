package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Print the active trigger rule table",
	RunE: func(cmd *cobra.Command, args []string) error {
		table, err := loadTable()
		if err != nil {
			return err
		}

		cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
		yellow := color.New(color.FgYellow).SprintFunc()
		gray := color.New(color.FgHiBlack).SprintFunc()

		fmt.Printf("\n%s\n\n", cyan("=== Trigger Rules (evaluation order) ==="))
		for _, r := range table.Rules() {
			fmt.Printf("%s [%s] cooldown %v\n", yellow(r.ID), r.Priority, r.Cooldown)
			fmt.Printf("  %s\n", r.Description)
			fmt.Printf("  %s\n\n", gray("triggers: "+strings.Join(r.Triggers, ", ")))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(rulesCmd)
}
