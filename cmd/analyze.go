// File: cmd/analyze.go
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/xkilldash9x/mimic-cli/api/schemas"
	"github.com/xkilldash9x/mimic-cli/internal/config"
	"github.com/xkilldash9x/mimic-cli/internal/inference"
	"github.com/xkilldash9x/mimic-cli/internal/observability"
	"github.com/xkilldash9x/mimic-cli/internal/store"
	"github.com/xkilldash9x/mimic-cli/internal/vision"
)

// newAnalyzeCmd creates and configures the `analyze` command.
func newAnalyzeCmd(v *viper.Viper) *cobra.Command {
	analyzeCmd := &cobra.Command{
		Use:   "analyze <workflow-id>",
		Short: "Reconstructs the actions between a recorded workflow's screenshots",
		Long: `Analyze feeds every adjacent screenshot pair of a recorded workflow to the
configured vision model and converts its answers into a canonical action
sequence. Every transition contributes at least one action: pairs the model
cannot explain degrade to a low-confidence placeholder instead of being
dropped. The resulting sequence is stored next to the workflow bundle.`,
		Args: cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			// Bind flags to their Viper keys so they override the config
			// file and environment with the right precedence.
			return v.BindPFlag("vision.model", cmd.Flags().Lookup("model"))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := observability.GetLogger()

			// Re-resolve the config now that PreRunE has bound the flags.
			cfg, err := config.NewConfigFromViper(v)
			if err != nil {
				return fmt.Errorf("failed to resolve config with flag overrides: %w", err)
			}
			if cfg.Vision.APIKey == "" {
				return fmt.Errorf("a vision API key is required: set MIMIC_VISION_API_KEY")
			}

			workflowID := args[0]
			workflowStore := store.New(cfg.Workflows.BaseDir, logger)
			workflow, err := workflowStore.LoadWorkflow(workflowID)
			if err != nil {
				return err
			}

			client, err := vision.New(ctx, cfg.Vision, logger)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			engine, err := inference.NewEngine(client, logger, inference.WithProgress(func(current, total int) {
				fmt.Fprintf(out, "\rAnalyzing transition %d/%d...", current, total)
			}))
			if err != nil {
				return err
			}

			seq, classification, err := engine.Analyze(ctx, workflow)
			fmt.Fprintln(out)
			if err != nil {
				return err
			}

			seqPath, err := workflowStore.SaveSequence(workflowID, seq)
			if err != nil {
				return err
			}

			logger.Info("Analysis stored.",
				zap.String("workflow_id", workflowID),
				zap.String("path", seqPath),
				zap.String("classification", string(classification)),
			)

			fmt.Fprintf(out, "\nAnalysis %s: %d actions from %d transitions (model %s).\n",
				classification, len(seq.Actions), seq.TotalTransitions, seq.ModelUsed)
			switch classification {
			case schemas.RunPartial:
				fmt.Fprintln(out, "Some transitions could not be inferred and were replaced by placeholders.")
				fmt.Fprintln(out, "Review the reasoning fields in actions.json before generating a script.")
			case schemas.RunFailed:
				fmt.Fprintln(out, "No transition could be inferred. Check the API key, model name, and network,")
				fmt.Fprintln(out, "then re-run the analysis; the saved sequence contains only placeholders.")
			}
			fmt.Fprintf(out, "Next, run: mimic generate %s\n", workflowID)
			return nil
		},
	}

	analyzeCmd.Flags().StringP("model", "m", "", "Vision model to use. (Overrides config/env)")

	return analyzeCmd
}
