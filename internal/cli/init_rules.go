package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ppiankov/kubekeeper/internal/rules"
)

var initRulesForce bool

func init() {
	rootCmd.AddCommand(initRulesCmd)
	initRulesCmd.Flags().BoolVar(&initRulesForce, "force", false, "Overwrite an existing rules file")
}

var initRulesCmd = &cobra.Command{
	Use:   "init-rules",
	Short: "Generate the default rules.yaml with comments",
	Long:  "Creates ~/.kubekeeper/rules.yaml (or $KUBEKEEPER_RULES) with the built-in include and exclude lists.\nEdit this file to customize which contexts and commands need validation.",
	Args:  cobra.NoArgs,
	RunE:  runInitRules,
}

func runInitRules(cmd *cobra.Command, args []string) error {
	path := loadConfig().RulesPath
	if path == "" {
		path = rules.DefaultPath()
		if path == "" {
			return fmt.Errorf("cannot determine home directory")
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("cannot create config directory: %w", err)
	}

	if _, err := os.Stat(path); err == nil && !initRulesForce {
		return fmt.Errorf("rules file already exists at %s (use --force to overwrite)", path)
	}

	if err := os.WriteFile(path, []byte(rules.DefaultYAML()), 0644); err != nil {
		return fmt.Errorf("failed to write rules file: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", path)
	return nil
}
