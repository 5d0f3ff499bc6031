// Package kubectl runs the wrapped kubectl binary.
package kubectl

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"syscall"
)

// DefaultBinary is the kubectl executable looked up in PATH.
const DefaultBinary = "kubectl"

// DefaultNamespace is reported when the current context sets none.
const DefaultNamespace = "default"

// Client invokes kubectl. Calls are not bounded by a timeout: a hung
// kubectl hangs the caller unless ctx is cancelled.
type Client struct {
	Binary string
}

// New creates a Client for binary, or for kubectl if binary is empty.
func New(binary string) *Client {
	if binary == "" {
		binary = DefaultBinary
	}
	return &Client{Binary: binary}
}

// Command builds the exec.Cmd for kubectl with args.
func (c *Client) Command(ctx context.Context, args ...string) *exec.Cmd {
	return exec.CommandContext(ctx, c.Binary, args...)
}

// output returns kubectl's stdout. A non-zero exit is not an error: kubectl
// prints nothing useful then, and callers treat empty output accordingly.
// Failing to start kubectl is an error.
func (c *Client) output(ctx context.Context, args ...string) (string, error) {
	cmd := c.Command(ctx, args...)
	var stdout bytes.Buffer
	cmd.Stdout = &stdout

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return "", fmt.Errorf("failed to execute %s: %w", c.Binary, err)
		}
	}
	return stdout.String(), nil
}

// CurrentContext returns the trimmed current kubeconfig context, or "" if none is set.
func (c *Client) CurrentContext(ctx context.Context) (string, error) {
	out, err := c.output(ctx, "config", "current-context")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// CurrentNamespace returns the namespace of the current context, or "default".
func (c *Client) CurrentNamespace(ctx context.Context) (string, error) {
	out, err := c.output(ctx, "config", "view", "--minify", "--output=jsonpath={..namespace}")
	if err != nil {
		return "", err
	}
	if out == "" {
		return DefaultNamespace, nil
	}
	return out, nil
}

// NativeCommands returns kubectl's raw completion listing of its subcommands.
// The output ends with cobra's directive line (e.g. ":4").
func (c *Client) NativeCommands(ctx context.Context) (string, error) {
	return c.output(ctx, "__completeNoDesc", "")
}

// IsNative reports whether name is a built-in kubectl subcommand as opposed
// to a plugin.
func (c *Client) IsNative(ctx context.Context, name string) (bool, error) {
	listing, err := c.NativeCommands(ctx)
	if err != nil {
		return false, err
	}
	return completionListsCommand(listing, name), nil
}

// completionListsCommand searches the completion listing for name as a plain
// substring. This over-matches (a name contained in a longer subcommand or in
// the trailing directive counts), which only errs toward amending.
func completionListsCommand(listing, name string) bool {
	return strings.Contains(listing, name)
}

// Argv returns the argument vector for running kubectl with args, prefixed
// with --context=<kubeContext> when amend is set. An empty context still
// produces the flag, which kubectl treats as the current context.
func (c *Client) Argv(kubeContext string, args []string, amend bool) []string {
	argv := make([]string, 0, len(args)+2)
	argv = append(argv, c.Binary)
	if amend {
		argv = append(argv, "--context="+kubeContext)
	}
	return append(argv, args...)
}

// Exec replaces the current process with kubectl. It only returns on error.
func (c *Client) Exec(kubeContext string, args []string, amend bool) error {
	path, err := exec.LookPath(c.Binary)
	if err != nil {
		return fmt.Errorf("failed to find %s: %w", c.Binary, err)
	}
	argv := c.Argv(kubeContext, args, amend)
	if err := syscall.Exec(path, argv, os.Environ()); err != nil {
		return fmt.Errorf("failed to exec %s: %w", path, err)
	}
	return nil
}
