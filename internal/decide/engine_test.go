package decide

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ppiankov/kubekeeper/internal/freshness"
	"github.com/ppiankov/kubekeeper/internal/rules"
)

// fakeNative treats every name in names as a native subcommand.
type fakeNative struct {
	names []string
	err   error
	calls []string
}

func (f *fakeNative) IsNative(_ context.Context, name string) (bool, error) {
	f.calls = append(f.calls, name)
	if f.err != nil {
		return false, f.err
	}
	for _, n := range f.names {
		if n == name {
			return true, nil
		}
	}
	return false, nil
}

type fakeFresh map[string]bool

func (f fakeFresh) IsFresh(context string) bool { return f[context] }

var kubectlNatives = []string{"apply", "delete", "edit", "get", "describe", "logs", "config", "rollout", "label", "scale", "exec"}

func newTestEngine(fresh FreshnessChecker) (*Engine, *fakeNative) {
	native := &fakeNative{names: kubectlNatives}
	return NewEngine(rules.Default(), fresh, native), native
}

func decide(t *testing.T, e *Engine, kubeContext, command string) Decision {
	t.Helper()
	d, err := e.Decide(context.Background(), NewInput(kubeContext, strings.Fields(command)))
	if err != nil {
		t.Fatalf("Decide(%q, %q) failed: %v", kubeContext, command, err)
	}
	return d
}

func TestShortCircuits(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		reason string
	}{
		{"empty command", nil, ReasonEmptyCommand},
		{"completion", []string{"__complete", "get", ""}, ReasonCompletion},
		{"completion no desc", []string{"__completeNoDesc", ""}, ReasonCompletion},
		{"context flag with equals", []string{"apply", "--context=prod", "-f", "x.yaml"}, ReasonContextProvided},
		{"context flag with space", []string{"--context", "prod", "delete", "pod", "x"}, ReasonContextProvided},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, native := newTestEngine(fakeFresh{"prod-east": true})
			d, err := e.Decide(context.Background(), NewInput("prod-east", tt.args))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			want := Decision{Reason: tt.reason}
			if diff := cmp.Diff(want, d); diff != "" {
				t.Errorf("decision mismatch (-want +got):\n%s", diff)
			}
			if len(native.calls) != 0 {
				t.Errorf("expected no native lookup, got %v", native.calls)
			}
		})
	}
}

func TestShortCircuitsIgnoreRules(t *testing.T) {
	everything := rules.RuleSet{
		Include: rules.Rules{Context: []string{"*"}, Command: []string{""}},
	}
	e := NewEngine(everything, fakeFresh{}, &fakeNative{})

	for _, args := range [][]string{nil, {"__complete", "apply"}} {
		d, err := e.Decide(context.Background(), NewInput("prod", args))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if d.Validate || d.Record || d.Amend {
			t.Errorf("args %v: expected all actions false, got %+v", args, d)
		}
	}
}

func TestBranches(t *testing.T) {
	tests := []struct {
		name    string
		context string
		command string
		fresh   fakeFresh
		want    Decision
	}{
		{
			name:    "included context, command not excluded",
			context: "prod-east",
			command: "rollout restart deploy/api",
			want:    Decision{Validate: true, Record: true, Amend: true, Reason: ReasonIncludedContext},
		},
		{
			name:    "included context, excluded command",
			context: "prod-east",
			command: "get pods",
			want:    Decision{Amend: true, Reason: ReasonIncludedContextSafe},
		},
		{
			name:    "included context beats freshness",
			context: "prod-east",
			command: "rollout restart deploy/api",
			fresh:   fakeFresh{"prod-east": true},
			want:    Decision{Validate: true, Record: true, Amend: true, Reason: ReasonIncludedContext},
		},
		{
			name:    "included command, context not excluded",
			context: "staging",
			command: "apply -f x.yaml",
			want:    Decision{Validate: true, Record: true, Amend: true, Reason: ReasonIncludedCommand},
		},
		{
			name:    "included command, excluded context",
			context: "kind-dev",
			command: "delete pod x",
			want:    Decision{Amend: true, Reason: ReasonIncludedCommandSafe},
		},
		{
			name:    "excluded context",
			context: "minikube",
			command: "rollout restart deploy/api",
			want:    Decision{Amend: true, Reason: ReasonExcludedContext},
		},
		{
			name:    "excluded command",
			context: "staging",
			command: "logs -f api",
			want:    Decision{Amend: true, Reason: ReasonExcludedCommand},
		},
		{
			name:    "recently validated",
			context: "staging",
			command: "rollout restart deploy/api",
			fresh:   fakeFresh{"staging": true},
			want:    Decision{Record: true, Amend: true, Reason: ReasonRecentlyValidated},
		},
		{
			name:    "fallback",
			context: "staging",
			command: "rollout restart deploy/api",
			want:    Decision{Validate: true, Record: true, Amend: true, Reason: ReasonFallback},
		},
		{
			name:    "fallback when another context is fresh",
			context: "staging",
			command: "rollout restart deploy/api",
			fresh:   fakeFresh{"qa": true},
			want:    Decision{Validate: true, Record: true, Amend: true, Reason: ReasonFallback},
		},
		{
			name:    "context is trimmed",
			context: "  prod-east\n",
			command: "get pods",
			want:    Decision{Amend: true, Reason: ReasonIncludedContextSafe},
		},
		{
			name:    "empty context falls through",
			context: "",
			command: "rollout restart deploy/api",
			want:    Decision{Validate: true, Record: true, Amend: true, Reason: ReasonFallback},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _ := newTestEngine(tt.fresh)
			got := decide(t, e, tt.context, tt.command)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("decision mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestAmendment(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		wantAmend  bool
		wantLookup bool
	}{
		{"native subcommand", []string{"apply", "-f", "x.yaml"}, true, true},
		{"plugin subcommand", []string{"ctx", "prod"}, false, true},
		{"leading global flag", []string{"-n", "kube-system", "rollout", "status", "ds/x"}, true, false},
		{"leading long flag", []string{"--namespace=kube-system", "ctx"}, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, native := newTestEngine(nil)
			d, err := e.Decide(context.Background(), NewInput("staging", tt.args))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if d.Amend != tt.wantAmend {
				t.Errorf("expected amend=%v, got %v", tt.wantAmend, d.Amend)
			}
			if got := len(native.calls) > 0; got != tt.wantLookup {
				t.Errorf("expected lookup=%v, got calls %v", tt.wantLookup, native.calls)
			}
			if tt.wantLookup && native.calls[0] != tt.args[0] {
				t.Errorf("expected lookup of %q, got %q", tt.args[0], native.calls[0])
			}
		})
	}
}

func TestNativeDetectionErrorIsSurfaced(t *testing.T) {
	boom := errors.New("kubectl: not found")
	e := NewEngine(rules.Default(), fakeFresh{}, &fakeNative{err: boom})

	_, err := e.Decide(context.Background(), NewInput("prod-east", []string{"apply", "-f", "x.yaml"}))
	if err == nil {
		t.Fatal("expected error when native detection fails")
	}
	if !errors.Is(err, boom) {
		t.Errorf("expected wrapped detector error, got %v", err)
	}
}

func TestFirstTokenFallsBackToCommand(t *testing.T) {
	e, native := newTestEngine(nil)
	in := Input{Context: "staging", Command: "apply -f x.yaml"}

	d, err := e.Decide(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !d.Amend {
		t.Error("expected apply to be amended")
	}
	if len(native.calls) != 1 || native.calls[0] != "apply" {
		t.Errorf("expected lookup of apply, got %v", native.calls)
	}
}

func TestDecideIsDeterministic(t *testing.T) {
	e, _ := newTestEngine(fakeFresh{"staging": true})
	first := decide(t, e, "staging", "rollout restart deploy/api")
	for i := 0; i < 5; i++ {
		if got := decide(t, e, "staging", "rollout restart deploy/api"); got != first {
			t.Fatalf("call %d: expected %+v, got %+v", i, first, got)
		}
	}
}

func TestFreshnessRoundTrip(t *testing.T) {
	cache := freshness.New(filepath.Join(t.TempDir(), "kubekeeper.pid"), freshness.DefaultWindow)
	e := NewEngine(rules.Default(), cache, &fakeNative{names: kubectlNatives})

	before := decide(t, e, "staging", "rollout restart deploy/api")
	if before.Reason != ReasonFallback || !before.Validate {
		t.Fatalf("expected fallback before record, got %+v", before)
	}

	if err := cache.Record("staging"); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	after := decide(t, e, "staging", "rollout restart deploy/api")
	want := Decision{Record: true, Amend: true, Reason: ReasonRecentlyValidated}
	if diff := cmp.Diff(want, after); diff != "" {
		t.Errorf("decision mismatch (-want +got):\n%s", diff)
	}

	other := decide(t, e, "qa", "rollout restart deploy/api")
	if !other.Validate {
		t.Errorf("expected a different context to need validation, got %+v", other)
	}
}

func TestIncludedContextIgnoresUnrelatedExclude(t *testing.T) {
	// A context that is both included and excluded still validates mutating commands.
	rs := rules.Default()
	rs.Exclude.Context = append(rs.Exclude.Context, "*-east")
	e := NewEngine(rs, fakeFresh{}, &fakeNative{names: kubectlNatives})

	got := decide(t, e, "prod-east", "apply -f x.yaml")
	if !got.Validate || got.Reason != ReasonIncludedContext {
		t.Errorf("expected included context to win, got %+v", got)
	}
}
