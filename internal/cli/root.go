package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ppiankov/kubekeeper/internal/config"
	"github.com/ppiankov/kubekeeper/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "kubekeeper-admin",
	Short: "Inspect and manage the kubekeeper kubectl guard",
	Long: "kubekeeper asks for confirmation before kubectl touches a sensitive context.\n" +
		"This tool dry-runs its decisions, shows or clears the remembered validation,\n" +
		"writes the default rules file and inspects the decision audit log.",
	SilenceUsage: true,
}

// Execute runs the admin command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig returns the environment configuration. A malformed value is
// reported and the defaults are used instead.
func loadConfig() config.Config {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "kubekeeper: %v (using defaults)\n", err)
	}
	return cfg
}

func newLogger(cfg config.Config) *zap.Logger {
	return logging.New(cfg.DebugEnabled())
}
