package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/sentinel/internal/cli"
	"github.com/aretw0/sentinel/internal/presentation/graph"
	"github.com/aretw0/sentinel/pkg/config"
)

// rulesCmd prints the active tables.
var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Print the active chat rules and terminal commands",
	Long: `Prints the tables in the tables-file format (YAML), or as a Mermaid diagram.
With --probe, the diagram highlights the path the given message takes.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		mermaid, _ := cmd.Flags().GetBool("mermaid")
		commands, _ := cmd.Flags().GetBool("commands")
		probe, _ := cmd.Flags().GetString("probe")

		app, err := loadApp(cmd, cli.StoreMemory)
		if err != nil {
			return err
		}
		defer app.Close()
		p := app.Engine.Profile()
		out := cmd.OutOrStdout()

		switch {
		case mermaid && commands:
			fmt.Fprint(out, graph.GenerateCommandsMermaid(p.Commands))
		case mermaid:
			var overlay *graph.Overlay
			if cmd.Flags().Changed("probe") {
				overlay = &graph.Overlay{Probe: probe}
			}
			fmt.Fprint(out, graph.GenerateMermaid(p, overlay))
		default:
			data, err := config.Dump(p)
			if err != nil {
				return err
			}
			fmt.Fprint(out, string(data))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(rulesCmd)
	rulesCmd.Flags().Bool("mermaid", false, "Output a Mermaid flowchart instead of YAML")
	rulesCmd.Flags().Bool("commands", false, "With --mermaid, draw the terminal commands instead of the chat rules")
	rulesCmd.Flags().String("probe", "", "With --mermaid, highlight the rule this message hits")
}
