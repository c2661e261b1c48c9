package main

import (
	"fmt"

	"github.com/Harshitk-cp/sahai/internal/buildconfig"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), buildconfig.String())
	},
}
