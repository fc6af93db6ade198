// File: cmd/generate.go
package cmd

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/xkilldash9x/mimic-cli/internal/codegen"
	"github.com/xkilldash9x/mimic-cli/internal/config"
	"github.com/xkilldash9x/mimic-cli/internal/observability"
	"github.com/xkilldash9x/mimic-cli/internal/runner"
	"github.com/xkilldash9x/mimic-cli/internal/store"
)

// newGenerateCmd creates and configures the `generate` command.
func newGenerateCmd(v *viper.Viper) *cobra.Command {
	generateCmd := &cobra.Command{
		Use:   "generate <workflow-id>",
		Short: "Compiles an analyzed workflow into a runnable automation script",
		Long: `Generate renders the analyzed action sequence of a workflow as a Python
automation script for the selected framework. The script is written to the
output directory and syntax-checked before it lands. Unsupported actions are
kept as inline comments so nothing from the recording is silently lost.

Run 'mimic frameworks' to list the available frameworks and their options.`,
		Args: cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if err := v.BindPFlag("generate.framework", cmd.Flags().Lookup("framework")); err != nil {
				return err
			}
			return v.BindPFlag("generate.output_dir", cmd.Flags().Lookup("output-dir"))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := observability.GetLogger()

			cfg, err := config.NewConfigFromViper(v)
			if err != nil {
				return fmt.Errorf("failed to resolve config with flag overrides: %w", err)
			}

			optFlags, _ := cmd.Flags().GetStringArray("opt")
			overrides, err := parseOptions(optFlags)
			if err != nil {
				return err
			}
			// Config-file options first, --opt flags on top.
			options := make(codegen.Options, len(cfg.Generate.Options)+len(overrides))
			for key, value := range cfg.Generate.Options {
				options[key] = value
			}
			for key, value := range overrides {
				options[key] = value
			}

			generator, err := codegen.New(cfg.Generate.Framework, options)
			if err != nil {
				return err
			}

			workflowID := args[0]
			workflowStore := store.New(cfg.Workflows.BaseDir, logger)
			seq, err := workflowStore.LoadSequence(workflowID)
			if err != nil {
				return err
			}

			source := generator.Generate(seq)

			if check, _ := cmd.Flags().GetBool("check"); check {
				if err := runner.Validate(ctx, source); err != nil {
					return fmt.Errorf("generated script failed its syntax check: %w", err)
				}
			}

			outPath := filepath.Join(cfg.Generate.OutputDir, codegen.ScriptFileName(seq.WorkflowName, generator.Name()))
			path, err := generator.Save(source, outPath)
			if err != nil {
				return err
			}

			logger.Info("Script generated.",
				zap.String("workflow_id", workflowID),
				zap.String("framework", generator.Name()),
				zap.String("path", path),
				zap.Int("actions", len(seq.Actions)),
			)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Generated %s script: %s\n", generator.Name(), path)
			reportMissingDependencies(cmd, cfg, generator.Name())
			fmt.Fprintf(out, "Run it with: mimic run %s\n", path)
			return nil
		},
	}

	generateCmd.Flags().StringP("framework", "f", "", "Target framework: playwright, selenium, or pyautogui. (Overrides config/env)")
	generateCmd.Flags().StringP("output-dir", "o", "", "Directory the script is written to. (Overrides config/env)")
	generateCmd.Flags().Bool("check", true, "Syntax-check the generated script before writing it.")
	generateCmd.Flags().StringArray("opt", nil, "Framework option override as key=value (repeatable), e.g. --opt headless=true")

	return generateCmd
}

// reportMissingDependencies probes the local Python installation for the
// framework's packages and prints an install hint when something is absent.
// The probe is advisory; generation already succeeded.
func reportMissingDependencies(cmd *cobra.Command, cfg *config.Config, framework string) {
	logger := observability.GetLogger()

	if _, err := exec.LookPath(cfg.Runner.PythonBin); err != nil {
		logger.Debug("Python interpreter not found; skipping dependency probe.",
			zap.String("python_bin", cfg.Runner.PythonBin))
		return
	}

	missing, err := codegen.MissingDependencies(cmd.Context(), cfg.Runner.PythonBin, framework)
	if err != nil {
		logger.Debug("Dependency probe failed.", zap.Error(err))
		return
	}
	if len(missing) == 0 {
		return
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Note: %s cannot import %s yet.\n", cfg.Runner.PythonBin, strings.Join(missing, ", "))
	for _, info := range codegen.Frameworks() {
		if info.Name == framework {
			fmt.Fprintf(out, "Install with: %s\n", info.Install)
			return
		}
	}
}

// parseOptions turns repeated key=value flags into typed generator options.
// Values are coerced in order int, float, bool, string, matching how the
// generators read them back. Numbers are tried first so "0" and "1" stay
// integers instead of collapsing into booleans.
func parseOptions(pairs []string) (codegen.Options, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	opts := make(codegen.Options, len(pairs))
	for _, pair := range pairs {
		key, raw, found := strings.Cut(pair, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("invalid --opt %q: expected key=value", pair)
		}
		opts[key] = coerceOptionValue(raw)
	}
	return opts, nil
}

func coerceOptionValue(raw string) any {
	if i, err := strconv.Atoi(raw); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(raw); err == nil {
		return b
	}
	return raw
}
