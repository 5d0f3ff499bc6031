package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ppiankov/kubekeeper/internal/cmdguard"
)

var checkKubeContext string

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().StringVar(&checkKubeContext, "kube-context", "", "Decide for this context instead of kubectl's current one")
}

var checkCmd = &cobra.Command{
	Use:   "check [flags] -- <kubectl args...>",
	Short: "Show what kubekeeper would do for a kubectl command",
	Long: "Evaluates the rules and the freshness record for the given kubectl arguments\n" +
		"and prints the decision as JSON. Never prompts, records or runs kubectl's command.",
	RunE: runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	logger := newLogger(cfg)
	defer logger.Sync()

	guard, err := cmdguard.NewFromConfig(cfg, logger)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	var plan *cmdguard.Plan
	if cmd.Flags().Changed("kube-context") {
		plan, err = guard.CheckContext(ctx, checkKubeContext, args)
	} else {
		plan, err = guard.Check(ctx, args)
	}
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(plan, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}
