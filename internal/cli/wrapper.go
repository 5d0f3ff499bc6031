package cli

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/ppiankov/kubekeeper/internal/cmdguard"
)

// Exit codes of the kubectl wrapper. On success the process becomes kubectl
// and exits with kubectl's own code.
const (
	exitFailure = 1
)

// RunWrapper guards one kubectl invocation. args are the arguments after the
// program name and belong entirely to kubectl, which is why the wrapper does
// not parse flags (and does not use cobra, whose completion hooks would
// swallow kubectl's __complete requests). It returns an exit code only when
// kubectl was not started.
func RunWrapper(args []string) int {
	cfg := loadConfig()
	logger := newLogger(cfg)
	defer logger.Sync()

	guard, err := cmdguard.NewFromConfig(cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "kubekeeper: %v\n", err)
		return exitFailure
	}

	// SIGINT keeps its default action so Ctrl-C at the prompt aborts.
	err = guard.Run(context.Background(), args)
	if err == nil {
		return 0
	}
	if cmdguard.IsAborted(err) {
		logger.Debug("Validation failed", zap.Error(err))
		fmt.Fprintln(os.Stderr, err.Error())
		return exitFailure
	}
	fmt.Fprintf(os.Stderr, "kubekeeper: %v\n", err)
	return exitFailure
}
