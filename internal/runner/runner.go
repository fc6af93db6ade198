// File: internal/runner/runner.go
package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sort"

	"go.uber.org/zap"

	"github.com/xkilldash9x/mimic-cli/internal/codegen"
	"github.com/xkilldash9x/mimic-cli/internal/config"
)

// Run executes a generated script under the configured interpreter with
// stdio passed through, so interactive prompts still work. Parameters are
// injected as MIMIC_PARAM_* environment variables, which generated mains
// consult before prompting.
func Run(ctx context.Context, cfg config.RunnerConfig, scriptPath string, params map[string]string, logger *zap.Logger) error {
	log := logger.Named("runner")

	pythonBin := cfg.PythonBin
	if pythonBin == "" {
		pythonBin = "python3"
	}

	runCtx := ctx
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, pythonBin, scriptPath)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Env = append(os.Environ(), paramEnv(params)...)

	log.Info("Running script.",
		zap.String("script", scriptPath),
		zap.String("python", pythonBin),
		zap.Int("params", len(params)))

	if err := cmd.Run(); err != nil {
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("runner: script timed out after %s", cfg.Timeout)
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return fmt.Errorf("runner: script exited with status %d", exitErr.ExitCode())
		}
		return fmt.Errorf("runner: failed to start %s: %w", pythonBin, err)
	}

	log.Info("Script finished.", zap.String("script", scriptPath))
	return nil
}

// paramEnv renders parameters in the form generated scripts read, in sorted
// order so runs are reproducible.
func paramEnv(params map[string]string) []string {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]string, 0, len(names))
	for _, name := range names {
		out = append(out, codegen.ParamEnvName(name)+"="+params[name])
	}
	return out
}
