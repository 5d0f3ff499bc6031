// Package decide turns the current context and kubectl arguments into the
// actions the wrapper must take: validate the context with the operator,
// record the validation, and amend the command with an explicit --context.
package decide

import (
	"context"
	"fmt"
	"strings"

	"github.com/ppiankov/kubekeeper/internal/rules"
)

const (
	// CompletionPrefix starts every cobra dynamic completion request.
	CompletionPrefix = "__complete"
	// ContextFlag selects the kubeconfig context explicitly.
	ContextFlag = "--context"
)

// Reasons explaining each decision.
const (
	ReasonEmptyCommand        = "command is empty"
	ReasonCompletion          = "command is cobra dynamic completion"
	ReasonContextProvided     = "context option is already provided"
	ReasonIncludedContext     = "context is included and command is not excluded"
	ReasonIncludedContextSafe = "context is included and command is excluded"
	ReasonIncludedCommand     = "command is included and context is not excluded"
	ReasonIncludedCommandSafe = "command is included and context is excluded"
	ReasonExcludedContext     = "context is excluded and command is not included"
	ReasonExcludedCommand     = "command is excluded and context is not included"
	ReasonRecentlyValidated   = "context has already been validated earlier"
	ReasonFallback            = "fallback to default behavior"
)

// Decision is the outcome of evaluating one invocation.
type Decision struct {
	Validate bool   `json:"validate"`
	Record   bool   `json:"record"`
	Amend    bool   `json:"amend"`
	Reason   string `json:"reason"`
}

// Input describes one kubectl invocation.
type Input struct {
	// Context is the current kubeconfig context.
	Context string
	// Command is Args joined by single spaces.
	Command string
	// Args are the arguments the wrapper was invoked with, without the program name.
	Args []string
}

// NewInput builds an Input from the current context and the raw arguments.
func NewInput(kubeContext string, args []string) Input {
	return Input{
		Context: kubeContext,
		Command: strings.Join(args, " "),
		Args:    args,
	}
}

// NativeDetector tells built-in kubectl subcommands apart from plugins.
type NativeDetector interface {
	IsNative(ctx context.Context, name string) (bool, error)
}

// FreshnessChecker reports whether a context was validated recently.
type FreshnessChecker interface {
	IsFresh(context string) bool
}

// Engine evaluates invocations against a rule set.
type Engine struct {
	rules  rules.RuleSet
	fresh  FreshnessChecker
	native NativeDetector
}

// NewEngine creates an Engine.
func NewEngine(rs rules.RuleSet, fresh FreshnessChecker, native NativeDetector) *Engine {
	return &Engine{rules: rs, fresh: fresh, native: native}
}

// Decide evaluates in against the rule set. The only error is a failure to
// tell whether the subcommand is native, which the caller must surface.
func (e *Engine) Decide(ctx context.Context, in Input) (Decision, error) {
	command := in.Command
	kubeContext := strings.TrimSpace(in.Context)

	if command == "" {
		return Decision{Reason: ReasonEmptyCommand}, nil
	}
	if strings.HasPrefix(command, CompletionPrefix) {
		return Decision{Reason: ReasonCompletion}, nil
	}
	for _, arg := range in.Args {
		if strings.HasPrefix(arg, ContextFlag) {
			return Decision{Reason: ReasonContextProvided}, nil
		}
	}

	amend, err := e.amendment(ctx, in)
	if err != nil {
		return Decision{}, err
	}

	d := e.evaluate(kubeContext, command)
	d.Amend = amend
	return d, nil
}

// amendment reports whether --context can be prepended to the command.
// kubectl only accepts global flags in front of native subcommands, so plugin
// invocations must be left untouched.
func (e *Engine) amendment(ctx context.Context, in Input) (bool, error) {
	// A leading flag is a global option, which plugins cannot receive.
	if strings.HasPrefix(in.Command, "-") {
		return true, nil
	}

	name := firstToken(in)
	native, err := e.native.IsNative(ctx, name)
	if err != nil {
		return false, fmt.Errorf("cannot tell whether %q is a native kubectl command: %w", name, err)
	}
	return native, nil
}

func (e *Engine) evaluate(kubeContext, command string) Decision {
	include, exclude := e.rules.Include, e.rules.Exclude

	if rules.ContextIn(kubeContext, include.Context) {
		if rules.CommandIn(command, exclude.Command) {
			return Decision{Reason: ReasonIncludedContextSafe}
		}
		return Decision{Validate: true, Record: true, Reason: ReasonIncludedContext}
	}

	if rules.CommandIn(command, include.Command) {
		if rules.ContextIn(kubeContext, exclude.Context) {
			return Decision{Reason: ReasonIncludedCommandSafe}
		}
		return Decision{Validate: true, Record: true, Reason: ReasonIncludedCommand}
	}

	if rules.ContextIn(kubeContext, exclude.Context) {
		return Decision{Reason: ReasonExcludedContext}
	}
	if rules.CommandIn(command, exclude.Command) {
		return Decision{Reason: ReasonExcludedCommand}
	}

	if e.fresh != nil && e.fresh.IsFresh(kubeContext) {
		return Decision{Record: true, Reason: ReasonRecentlyValidated}
	}

	return Decision{Validate: true, Record: true, Reason: ReasonFallback}
}

func firstToken(in Input) string {
	if len(in.Args) > 0 {
		return in.Args[0]
	}
	if i := strings.IndexByte(in.Command, ' '); i >= 0 {
		return in.Command[:i]
	}
	return in.Command
}
