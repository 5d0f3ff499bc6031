// Package prompt asks the operator to confirm the target context.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Confirm asks on stderr whether the command should really run in
// kubeContext:namespace. On a terminal a single key press answers; otherwise
// one line is read from stdin. Only "y" approves.
func Confirm(kubeContext, namespace string) (bool, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return ConfirmWithIO(os.Stdin, os.Stderr, kubeContext, namespace)
	}

	writeQuestion(os.Stderr, kubeContext, namespace)

	state, err := term.MakeRaw(fd)
	if err != nil {
		// Raw mode is unavailable; fall back to line input.
		return readLine(os.Stdin)
	}
	key := make([]byte, 1)
	_, readErr := os.Stdin.Read(key)
	if err := term.Restore(fd, state); err != nil {
		return false, fmt.Errorf("failed to restore terminal: %w", err)
	}
	if readErr != nil {
		return false, readErr
	}

	if key[0] != '\r' && key[0] != '\n' {
		fmt.Fprintln(os.Stderr)
	}
	return key[0] == 'y', nil
}

// ConfirmWithIO asks on out and reads one line from in.
func ConfirmWithIO(in io.Reader, out io.Writer, kubeContext, namespace string) (bool, error) {
	writeQuestion(out, kubeContext, namespace)
	return readLine(in)
}

func writeQuestion(out io.Writer, kubeContext, namespace string) {
	target := lipgloss.NewRenderer(out).NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("11")).
		Render(kubeContext + ":" + namespace)

	fmt.Fprintf(out, "Really run command in %s? ", target)
	fmt.Fprint(out, `Press "y" to continue. Anything else will exit. `)
}

func readLine(in io.Reader) (bool, error) {
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return false, err
	}
	return strings.TrimSpace(line) == "y", nil
}
