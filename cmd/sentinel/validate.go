package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/sentinel/pkg/config"
	"github.com/aretw0/sentinel/pkg/profile"
)

var validateCmd = &cobra.Command{
	Use:   "validate <tables-file>",
	Short: "Check a tables file for errors and shadowed keywords",
	Long: `Loads the tables file over the built-in profile and reports keywords that
can never match because an earlier rule catches every input containing them.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := config.LoadProfile(args[0], profile.Waseeq())
		if err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}

		out := cmd.OutOrStdout()
		for _, s := range p.Shadowed() {
			fmt.Fprintf(out, "warning: rule %d keyword %q is shadowed by rule %d\n", s.Rule, s.Keyword, s.By)
		}
		if dead := p.Unreachable(); len(dead) > 0 {
			return fmt.Errorf("validation failed: unreachable rules %v", dead)
		}
		fmt.Fprintf(out, "Tables are valid: %d rules, %d commands.\n", p.Rules.Len(), len(p.Commands.Tokens()))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
