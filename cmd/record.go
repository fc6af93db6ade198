// File: cmd/record.go
package cmd

import (
	"bufio"
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/mimic-cli/internal/capture"
	"github.com/xkilldash9x/mimic-cli/internal/observability"
	"github.com/xkilldash9x/mimic-cli/internal/store"
)

// newRecordCmd creates and configures the `record` command. It has no
// config-backed flags, so it reads the context copy of the configuration
// instead of re-resolving from viper.
func newRecordCmd() *cobra.Command {
	recordCmd := &cobra.Command{
		Use:   "record <url>",
		Short: "Opens a browser and captures a screenshot after every action you describe",
		Long: `Record opens a real browser on the given URL and captures the initial page
state. From then on it alternates with you: perform one action in the browser
(click, type, scroll), then describe it on the prompt. Each description
triggers a screenshot of the result. An empty line ends the session and
writes the workflow bundle to the store.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := observability.GetLogger()

			cfg, err := configFromCommand(cmd)
			if err != nil {
				return err
			}

			target := normalizeTargetURL(args[0])
			parsed, err := url.Parse(target)
			if err != nil || parsed.Host == "" {
				return fmt.Errorf("invalid target URL %q", args[0])
			}

			name, _ := cmd.Flags().GetString("name")
			if name == "" {
				name = parsed.Host + " workflow"
			}
			description, _ := cmd.Flags().GetString("description")

			logger.Info("Starting recording session.",
				zap.String("url", target),
				zap.String("workflow", name),
				zap.Bool("headless", cfg.Capture.Headless),
			)

			session, err := capture.NewSession(ctx, cfg.Capture, logger)
			if err != nil {
				return fmt.Errorf("failed to start capture session: %w", err)
			}
			defer session.Close()

			if err := session.Navigate(ctx, target); err != nil {
				return err
			}
			if _, err := session.CaptureStep(ctx, "Initial state"); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "\nRecording %q at %s\n", name, target)
			fmt.Fprintln(out, "Perform one action in the browser, then describe it here.")
			fmt.Fprintln(out, "Press Enter on an empty line to finish.")

			scanner := bufio.NewScanner(cmd.InOrStdin())
			for {
				if ctx.Err() != nil {
					fmt.Fprintln(out, "\nRecording interrupted; saving captured steps.")
					break
				}

				fmt.Fprintf(out, "\n[step %d] > ", len(session.Steps()))
				if !scanner.Scan() {
					break
				}
				desc := strings.TrimSpace(scanner.Text())
				if desc == "" {
					break
				}

				step, err := session.CaptureStep(ctx, desc)
				if err != nil {
					return fmt.Errorf("failed to capture step: %w", err)
				}
				fmt.Fprintf(out, "Captured step %d (%s).\n", step.Number, step.URL)
			}
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("reading step descriptions: %w", err)
			}

			workflow := session.Workflow(name, description)
			if workflow.TransitionCount() == 0 {
				return fmt.Errorf("recording ended with no transitions; describe at least one action")
			}

			workflowStore := store.New(cfg.Workflows.BaseDir, logger)
			dir, err := workflowStore.SaveWorkflow(workflow)
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "\nWorkflow saved. ID: %s\n", workflow.ID)
			fmt.Fprintf(out, "Bundle: %s\n", dir)
			fmt.Fprintf(out, "Next, run: mimic analyze %s\n", workflow.ID)
			return nil
		},
	}

	recordCmd.Flags().StringP("name", "n", "", "Workflow name. Defaults to the target host.")
	recordCmd.Flags().StringP("description", "d", "", "Optional description stored with the workflow.")

	return recordCmd
}

// normalizeTargetURL defaults bare hosts to https.
func normalizeTargetURL(target string) string {
	if !strings.HasPrefix(target, "http://") && !strings.HasPrefix(target, "https://") {
		return "https://" + target
	}
	return target
}
