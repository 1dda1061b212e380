package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/sentinel"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of sentinel",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "sentinel version %s\n", strings.TrimSpace(sentinel.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
