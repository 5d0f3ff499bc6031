package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/ppiankov/kubekeeper/internal/freshness"
)

func init() {
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(forgetCmd)
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the remembered context validation",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

var forgetCmd = &cobra.Command{
	Use:   "forget",
	Short: "Forget the remembered validation so the next command prompts again",
	Args:  cobra.NoArgs,
	RunE:  runForget,
}

func newCache() *freshness.Cache {
	cfg := loadConfig()
	return freshness.New(cfg.CachePath(), cfg.Window())
}

func runStatus(cmd *cobra.Command, args []string) error {
	cache := newCache()
	out := cmd.OutOrStdout()

	rec, err := cache.Status()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(out, "No validation recorded (%s)\n", cache.Path())
			return nil
		}
		return fmt.Errorf("failed to read %s: %w", cache.Path(), err)
	}

	fresh := "no"
	if cache.IsFresh(rec.Context) {
		fresh = "yes"
	}

	fmt.Fprintf(out, "Context:   %s\n", rec.Context)
	fmt.Fprintf(out, "Validated: %s (%s)\n", humanize.Time(rec.ValidatedAt), rec.ValidatedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(out, "Window:    %s\n", cache.Window())
	fmt.Fprintf(out, "Fresh:     %s\n", fresh)
	fmt.Fprintf(out, "Record:    %s\n", cache.Path())
	return nil
}

func runForget(cmd *cobra.Command, args []string) error {
	cache := newCache()
	if err := cache.Forget(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Forgot validation record %s\n", cache.Path())
	return nil
}
