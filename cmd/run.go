// File: cmd/run.go
package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/xkilldash9x/mimic-cli/internal/codegen"
	"github.com/xkilldash9x/mimic-cli/internal/config"
	"github.com/xkilldash9x/mimic-cli/internal/observability"
	"github.com/xkilldash9x/mimic-cli/internal/runner"
)

// newRunCmd creates and configures the `run` command.
func newRunCmd(v *viper.Viper) *cobra.Command {
	runCmd := &cobra.Command{
		Use:   "run <script.py>",
		Short: "Executes a generated automation script",
		Long: `Run executes a generated Python script with the configured interpreter.
Before launching it the script is parsed, so syntax errors from manual edits
surface immediately instead of minutes into a replay. Parameter values are
passed with --param and reach the script through MIMIC_PARAM_* environment
variables, which keeps credentials out of the process argument list.`,
		Args: cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if err := v.BindPFlag("runner.python_bin", cmd.Flags().Lookup("python")); err != nil {
				return err
			}
			return v.BindPFlag("runner.timeout", cmd.Flags().Lookup("timeout"))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := observability.GetLogger()

			cfg, err := config.NewConfigFromViper(v)
			if err != nil {
				return fmt.Errorf("failed to resolve config with flag overrides: %w", err)
			}

			paramFlags, _ := cmd.Flags().GetStringArray("param")
			params, err := parseParams(paramFlags)
			if err != nil {
				return err
			}

			scriptPath := args[0]
			source, err := os.ReadFile(scriptPath)
			if err != nil {
				return fmt.Errorf("reading script: %w", err)
			}

			skipCheck, _ := cmd.Flags().GetBool("skip-check")
			if cfg.Runner.CheckSyntax && !skipCheck {
				if err := runner.Validate(ctx, string(source)); err != nil {
					return err
				}
				reportExtraImports(cmd, string(source))
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Running %s with %s (timeout %s)...\n", scriptPath, cfg.Runner.PythonBin, cfg.Runner.Timeout)

			start := time.Now()
			if err := runner.Run(ctx, cfg.Runner, scriptPath, params, logger); err != nil {
				return err
			}

			logger.Info("Script finished.",
				zap.String("script", scriptPath),
				zap.Duration("duration", time.Since(start).Round(time.Millisecond)),
			)
			fmt.Fprintf(out, "Script finished in %s.\n", time.Since(start).Round(time.Millisecond))
			return nil
		},
	}

	runCmd.Flags().StringArrayP("param", "p", nil, "Parameter value as key=value (repeatable), e.g. --param password=secret")
	runCmd.Flags().String("python", "", "Python interpreter to run the script with. (Overrides config/env)")
	runCmd.Flags().Duration("timeout", 0, "Hard limit on script runtime, e.g. 5m. (Overrides config/env)")
	runCmd.Flags().Bool("skip-check", false, "Skip the pre-run syntax check.")

	return runCmd
}

// reportExtraImports warns about top-level imports beyond the frameworks'
// own packages, which usually means a hand-edited script needs an extra
// pip install before it will run.
func reportExtraImports(cmd *cobra.Command, source string) {
	declared := []string{}
	for _, info := range codegen.Frameworks() {
		declared = append(declared, info.PythonDeps...)
	}

	extra, err := runner.MissingImports(cmd.Context(), source, declared)
	if err != nil || len(extra) == 0 {
		return
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Note: the script imports modules outside the framework install line: %s\n",
		strings.Join(extra, ", "))
}

// parseParams turns repeated key=value flags into the parameter map handed to
// the runner. Values may contain '='; only the first one splits.
func parseParams(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	params := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, found := strings.Cut(pair, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("invalid --param %q: expected key=value", pair)
		}
		params[key] = value
	}
	return params, nil
}
