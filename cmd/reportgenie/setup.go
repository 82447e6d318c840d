package main

import "github.com/spf13/cobra"

func newSetupCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Choose a model provider and store its API key",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(flags, true)
		},
	}
}
