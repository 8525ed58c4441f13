package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"tacsim/internal/eval"
)

var evalCmd = &cobra.Command{
	Use:   "eval <expr>",
	Short: "Evaluate one TAC right-hand side",
	Example: `  tacsim eval "(int) a / 2" --var a=7
  tacsim eval "x <= 3" --var x=3`,
	Args: cobra.ExactArgs(1),
	RunE: runEval,
}

func init() {
	evalCmd.Flags().StringArray("var", nil, "bind a variable (name=expr), may repeat")
}

func runEval(cmd *cobra.Command, args []string) error {
	bindings, err := cmd.Flags().GetStringArray("var")
	if err != nil {
		return fmt.Errorf("failed to get var flag: %w", err)
	}
	env := make(eval.Env, len(bindings))
	for _, b := range bindings {
		name, expr, ok := strings.Cut(b, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return fmt.Errorf("invalid --var %q (expected name=expr)", b)
		}
		v, ok := eval.Evaluate(expr, env)
		if !ok {
			return fmt.Errorf("--var %s: %q is not computable", name, strings.TrimSpace(expr))
		}
		env[name] = v
	}

	v, ok := eval.Evaluate(args[0], env)
	if !ok {
		return fmt.Errorf("%q is not computable", args[0])
	}
	fmt.Fprintln(cmd.OutOrStdout(), v)
	return nil
}
