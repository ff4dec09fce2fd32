package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/procisocity/seedminer/pkg/mining/expr"
)

var exprCmd = &cobra.Command{
	Use:   "expr",
	Short: "Inspect and validate score expressions",
}

var exprHelpCmd = &cobra.Command{
	Use:   "help",
	Args:  cobra.NoArgs,
	Short: "Print supported score-expression variables and functions",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println(expr.HelpText())
		return nil
	},
}

var exprCheckCmd = &cobra.Command{
	Use:   "check <expression>",
	Args:  cobra.ExactArgs(1),
	Short: "Compile a score expression and report any syntax error",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := expr.Compile(args[0]); err != nil {
			return fmt.Errorf("expression is invalid: %w", err)
		}
		fmt.Println("ok")
		return nil
	},
}

func init() {
	exprCmd.AddCommand(exprHelpCmd)
	exprCmd.AddCommand(exprCheckCmd)
}
