// kubekeeper wraps kubectl. Install it as `kubectl` earlier in PATH (or
// alias it) and point KUBEKEEPER_KUBECTL at the real binary if needed.
//
// Environment variables:
//
//	KUBEKEEPER_CHECK_INTERVAL  seconds a confirmed context stays validated (default: 900)
//	KUBEKEEPER_PIDFILE         freshness record, relative to the temp dir (default: kubekeeper.pid)
//	KUBEKEEPER_RULES           rules file (default: ~/.kubekeeper/rules.yaml)
//	KUBEKEEPER_AUDIT_LOG       append decisions to this hash-chained JSONL log
//	KUBEKEEPER_KUBECTL         wrapped binary (default: kubectl)
//	KUBEKEEPER_DEBUG           print debug logs to stderr when non-empty
package main

import (
	"os"

	"github.com/ppiankov/kubekeeper/internal/cli"
)

func main() {
	os.Exit(cli.RunWrapper(os.Args[1:]))
}
