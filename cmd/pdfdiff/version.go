package main

import (
	"github.com/spf13/cobra"

	"github.com/benedoc-inc/pdfdiff"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Printf("pdfdiff version %s\n", pdfdiff.Version())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
