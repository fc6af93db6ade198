// File: cmd/root.go
package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/xkilldash9x/mimic-cli/internal/config"
	"github.com/xkilldash9x/mimic-cli/internal/observability"
)

// ctxKey is private so no other package can collide with our context keys.
type ctxKey int

// configKey carries the resolved *config.Config from the root command's
// PersistentPreRunE to subcommand RunE functions.
const configKey ctxKey = iota

// NewRootCommand assembles the full mimic command tree. A fresh command and a
// fresh viper instance are built on every call so tests and repeated
// executions never share flag or config state.
func NewRootCommand() *cobra.Command {
	var cfgFile string
	v := viper.New()

	rootCmd := &cobra.Command{
		Use:   "mimic",
		Short: "Record a browser workflow once, replay it as a generated automation script.",
		Long: `Mimic watches you perform a workflow in a real browser, captures a
screenshot after every action you describe, and then uses a vision model to
reconstruct what happened between each pair of screenshots. The reconstructed
action sequence is compiled into a runnable Python automation script
(Playwright, Selenium, or PyAutoGUI).

The usual session is:

  mimic record https://example.com/login --name "Login Flow"
  mimic analyze <workflow-id>
  mimic generate <workflow-id>
  mimic run generated/login_flow_playwright.py`,
		// Version is dynamically set at build time. See cmd/version.go.
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			config.SetDefaults(v)
			if err := initializeConfig(v, cfgFile); err != nil {
				return err
			}

			cfg, err := config.NewConfigFromViper(v)
			if err != nil {
				// Initialize a fallback logger so the failure is still visible.
				observability.InitializeLogger(config.LoggerConfig{Level: "info", Format: "console", ServiceName: "mimic"})
				return fmt.Errorf("failed to load config: %w", err)
			}

			observability.InitializeLogger(cfg.Logger)
			observability.GetLogger().Info("Starting mimic.", zap.String("version", Version))

			// Subcommands without config-backed flags read this copy; the
			// ones with flag overrides re-resolve from v in their RunE after
			// PreRunE has bound the flags.
			cmd.SetContext(context.WithValue(cmd.Context(), configKey, cfg))
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is ./mimic.yaml)")

	rootCmd.AddCommand(newRecordCmd())
	rootCmd.AddCommand(newAnalyzeCmd(v))
	rootCmd.AddCommand(newGenerateCmd(v))
	rootCmd.AddCommand(newRunCmd(v))
	rootCmd.AddCommand(newFrameworksCmd())

	return rootCmd
}

// Execute builds the command tree and runs it under the given signal-aware
// context. It is the entry point used by main.
func Execute(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}

// initializeConfig wires the viper instance to its file and environment
// sources. Flag bindings are layered on later, by each subcommand's PreRunE.
func initializeConfig(v *viper.Viper, cfgFile string) error {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.mimic")
		v.SetConfigName("mimic")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("MIMIC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
		// No config file; defaults and environment variables apply.
	}
	return nil
}

// configFromCommand returns the configuration the root PersistentPreRunE
// stored on the command context.
func configFromCommand(cmd *cobra.Command) (*config.Config, error) {
	cfg, ok := cmd.Context().Value(configKey).(*config.Config)
	if !ok || cfg == nil {
		return nil, fmt.Errorf("configuration missing from command context")
	}
	return cfg, nil
}
