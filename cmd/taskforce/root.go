package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "taskforce",
	Short: "Agent task orchestrator",
	Long: `Taskforce runs independent fixer agents, each owning an ordered list of
prioritized, dependency-gated tasks, under one of three execution strategies:

  sequential  one task at a time in priority order
  parallel    independent tasks in concurrent batches, dependents afterward
  ultrathink  iterative re-runs of failed tasks until confidence converges

Agents and tasks are defined in a YAML manifest; each task's real work is a
caller-supplied command the scheduler treats as opaque.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(versionCmd)
}
