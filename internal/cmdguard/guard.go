// Package cmdguard sits between the operator and kubectl: it decides what
// the invocation needs, confirms the context when required, remembers the
// confirmation, and finally hands the process over to kubectl.
package cmdguard

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/ppiankov/kubekeeper/internal/audit"
	"github.com/ppiankov/kubekeeper/internal/config"
	"github.com/ppiankov/kubekeeper/internal/decide"
	"github.com/ppiankov/kubekeeper/internal/freshness"
	"github.com/ppiankov/kubekeeper/internal/kubectl"
	"github.com/ppiankov/kubekeeper/internal/prompt"
	"github.com/ppiankov/kubekeeper/internal/rules"
)

// Kubectl is the subset of the kubectl client the guard drives.
type Kubectl interface {
	CurrentContext(ctx context.Context) (string, error)
	CurrentNamespace(ctx context.Context) (string, error)
	IsNative(ctx context.Context, name string) (bool, error)
	Exec(kubeContext string, args []string, amend bool) error
}

// Cache is the freshness record the guard reads and refreshes.
type Cache interface {
	IsFresh(context string) bool
	Record(context string) error
}

// ConfirmFunc asks the operator whether to proceed in context:namespace.
type ConfirmFunc func(kubeContext, namespace string) (bool, error)

// AbortedError is returned when the operator did not confirm the context.
type AbortedError struct {
	Context string
	Err     error
}

func (e *AbortedError) Error() string {
	return "Failed to validate context. Abort."
}

func (e *AbortedError) Unwrap() error { return e.Err }

// Plan is everything the guard knows before acting.
type Plan struct {
	Context   string          `json:"context"`
	Namespace string          `json:"namespace,omitempty"`
	Command   string          `json:"command"`
	Decision  decide.Decision `json:"decision"`
}

// Guard wires the decision engine to its collaborators.
type Guard struct {
	kube    Kubectl
	cache   Cache
	engine  *decide.Engine
	confirm ConfirmFunc
	audit   *audit.Log
	log     *zap.Logger
}

// Options configures a Guard. Zero values select the production collaborators.
type Options struct {
	Kubectl Kubectl
	Cache   Cache
	Rules   rules.RuleSet
	Confirm ConfirmFunc
	Audit   *audit.Log
	Logger  *zap.Logger
}

// New creates a Guard from explicit collaborators.
func New(opts Options) *Guard {
	if opts.Confirm == nil {
		opts.Confirm = prompt.Confirm
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Guard{
		kube:    opts.Kubectl,
		cache:   opts.Cache,
		engine:  decide.NewEngine(opts.Rules, opts.Cache, opts.Kubectl),
		confirm: opts.Confirm,
		audit:   opts.Audit,
		log:     opts.Logger,
	}
}

// NewFromConfig creates a Guard backed by the real kubectl, the rule file and
// the freshness record described by cfg.
func NewFromConfig(cfg config.Config, logger *zap.Logger) (*Guard, error) {
	rs, err := rules.Load(cfg.RulesPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load rules: %w", err)
	}

	var auditLog *audit.Log
	if cfg.AuditLog != "" {
		auditLog, err = audit.Open(cfg.AuditLog)
		if err != nil {
			// Auditing is opt-in bookkeeping; it never blocks kubectl.
			logger.Warn("Audit log disabled", zap.String("path", cfg.AuditLog), zap.Error(err))
			auditLog = nil
		}
	}

	return New(Options{
		Kubectl: kubectl.New(cfg.Kubectl),
		Cache:   freshness.New(cfg.CachePath(), cfg.Window()),
		Rules:   rs,
		Audit:   auditLog,
		Logger:  logger,
	}), nil
}

// Check reads the current context and decides, without prompting, recording
// or running anything.
func (g *Guard) Check(ctx context.Context, args []string) (*Plan, error) {
	kubeContext, err := g.kube.CurrentContext(ctx)
	if err != nil {
		return nil, err
	}
	return g.CheckContext(ctx, kubeContext, args)
}

// CheckContext decides for an explicit context.
func (g *Guard) CheckContext(ctx context.Context, kubeContext string, args []string) (*Plan, error) {
	in := decide.NewInput(kubeContext, args)
	g.log.Debug("Received command", zap.String("command", in.Command))

	d, err := g.engine.Decide(ctx, in)
	if err != nil {
		return nil, err
	}
	g.log.Debug("Decided",
		zap.Bool("validation", d.Validate),
		zap.Bool("record", d.Record),
		zap.Bool("amendment", d.Amend),
		zap.String("reason", d.Reason))

	return &Plan{Context: kubeContext, Command: in.Command, Decision: d}, nil
}

// Run decides for args, confirms and records as needed, then replaces the
// process with kubectl. It returns only on failure; an *AbortedError means
// the operator declined.
func (g *Guard) Run(ctx context.Context, args []string) error {
	plan, err := g.Check(ctx, args)
	if err != nil {
		return err
	}

	if plan.Decision.Validate {
		ns, err := g.kube.CurrentNamespace(ctx)
		if err != nil {
			return err
		}
		plan.Namespace = ns
		g.log.Debug("Found context", zap.String("context", plan.Context), zap.String("namespace", ns))

		ok, err := g.confirm(plan.Context, ns)
		if err != nil || !ok {
			g.record(plan, audit.OutcomeDeclined)
			g.closeAudit()
			return &AbortedError{Context: plan.Context, Err: err}
		}
	}

	if plan.Decision.Record {
		if err := g.cache.Record(plan.Context); err != nil {
			g.log.Debug("Failed to record context", zap.Error(err))
		}
	}

	g.record(plan, audit.OutcomeExecuted)
	g.closeAudit()

	return g.kube.Exec(plan.Context, args, plan.Decision.Amend)
}

func (g *Guard) record(plan *Plan, outcome string) {
	if g.audit == nil {
		return
	}
	err := g.audit.Record(audit.Entry{
		Context:   plan.Context,
		Namespace: plan.Namespace,
		Command:   plan.Command,
		Validate:  plan.Decision.Validate,
		Record:    plan.Decision.Record,
		Amend:     plan.Decision.Amend,
		Reason:    plan.Decision.Reason,
		Outcome:   outcome,
	})
	if err != nil {
		g.log.Debug("Failed to write audit entry", zap.Error(err))
	}
}

func (g *Guard) closeAudit() {
	if g.audit != nil {
		g.audit.Close()
	}
}

// IsAborted reports whether err is an operator abort.
func IsAborted(err error) bool {
	var aborted *AbortedError
	return errors.As(err, &aborted)
}
