// File: internal/vision/factory.go
package vision

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/xkilldash9x/mimic-cli/api/schemas"
	"github.com/xkilldash9x/mimic-cli/internal/config"
)

// New builds the vision client selected by the configuration.
func New(ctx context.Context, cfg config.VisionConfig, logger *zap.Logger) (schemas.VisionClient, error) {
	switch cfg.Provider {
	case config.ProviderGemini:
		return NewGeminiClient(ctx, cfg, logger)
	default:
		return nil, fmt.Errorf("vision: unknown provider %q (supported: %s)", cfg.Provider, config.ProviderGemini)
	}
}
