// File: internal/runner/runner_test.go
package runner

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xkilldash9x/mimic-cli/internal/config"
)

func TestParamEnvMatchesGeneratedLookups(t *testing.T) {
	env := paramEnv(map[string]string{
		"password":  "hunter2",
		"user name": "jo",
	})

	// Sorted by parameter name, upper-cased the same way generated scripts
	// spell their os.environ lookups.
	assert.Equal(t, []string{
		"MIMIC_PARAM_PASSWORD=hunter2",
		"MIMIC_PARAM_USER_NAME=jo",
	}, env)
}

func TestParamEnvEmpty(t *testing.T) {
	assert.Empty(t, paramEnv(nil))
}

func TestRunReportsMissingInterpreter(t *testing.T) {
	cfg := config.RunnerConfig{PythonBin: "definitely-not-a-python-binary"}

	err := Run(context.Background(), cfg, "script.py", nil, zap.NewNop())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to start definitely-not-a-python-binary")
}
