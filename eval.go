package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"stackcalc/core/evaluator"
	"stackcalc/core/rewriter"
)

var evalCmd = &cobra.Command{
	Use:   "eval <expression>",
	Short: "Evaluate one expression and print the result",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, err := modeFlag(cmd)
		if err != nil {
			return err
		}

		res := evaluator.NewEvaluator().Evaluate(strings.Join(args, " "), mode)
		fmt.Fprintln(cmd.OutOrStdout(), res.String())
		if !res.OK() {
			return res.Err
		}
		return nil
	},
}

var rewriteCmd = &cobra.Command{
	Use:   "rewrite <expression>",
	Short: "Print the canonical form of an expression",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, err := modeFlag(cmd)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), rewriter.Rewrite(strings.Join(args, " "), mode))
		return nil
	},
}

func modeFlag(cmd *cobra.Command) (rewriter.AngleMode, error) {
	value, _ := cmd.Flags().GetString("mode")
	return rewriter.ParseAngleMode(value)
}

func init() {
	rootCmd.AddCommand(evalCmd, rewriteCmd)
	for _, c := range []*cobra.Command{evalCmd, rewriteCmd} {
		c.Flags().StringP("mode", "m", "DEG", "Angle mode: DEG or RAD")
	}
}
