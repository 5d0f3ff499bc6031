package rules

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ppiankov/kubekeeper/internal/pattern"
)

// Rules holds the patterns for one table of the rule set.
// Context entries are glob patterns, Command entries are plain prefixes.
type Rules struct {
	Context []string `yaml:"context"`
	Command []string `yaml:"command"`
}

// RuleSet pairs the contexts/commands that always need validation (Include)
// with the ones that never do (Exclude).
type RuleSet struct {
	Include Rules `yaml:"include"`
	Exclude Rules `yaml:"exclude"`
}

// Default returns the built-in rule set.
func Default() RuleSet {
	return RuleSet{
		Include: Rules{
			Context: []string{"*fed*", "*prod*"},
			Command: []string{"apply", "delete", "edit", "label", "scale"},
		},
		Exclude: Rules{
			Context: []string{"kind-*", "minikube"},
			Command: []string{
				"api-resources",
				"api-versions",
				"cluster-info",
				"completion",
				"config current-context",
				"config get-clusters",
				"config get-contexts",
				"config view",
				"describe",
				"diff",
				"explain",
				"get",
				"help",
				"logs",
				"options",
				"top",
				"version",
			},
		},
	}
}

// ContextIn reports whether context matches at least one of patterns.
func ContextIn(context string, patterns []string) bool {
	return pattern.Any(context, patterns)
}

// CommandIn reports whether command starts with at least one of prefixes.
func CommandIn(command string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if strings.HasPrefix(command, prefix) {
			return true
		}
	}
	return false
}

// DefaultPath returns ~/.kubekeeper/rules.yaml, or "" if the home directory is unknown.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".kubekeeper", "rules.yaml")
}

// file mirrors RuleSet with pointer slices so that an omitted list can be
// told apart from an explicitly empty one.
type file struct {
	Include *fileRules `yaml:"include"`
	Exclude *fileRules `yaml:"exclude"`
}

type fileRules struct {
	Context *[]string `yaml:"context"`
	Command *[]string `yaml:"command"`
}

// Load reads a rule set from a YAML file.
// Empty path falls back to ~/.kubekeeper/rules.yaml.
// Missing file returns defaults. Lists present in the file replace the
// matching default list; omitted lists keep their defaults.
func Load(path string) (RuleSet, error) {
	if path == "" {
		path = DefaultPath()
		if path == "" {
			return Default(), nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return RuleSet{}, fmt.Errorf("failed to read rules: %w", err)
	}

	return Parse(data)
}

// Parse decodes YAML rule data on top of the defaults.
func Parse(data []byte) (RuleSet, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return RuleSet{}, fmt.Errorf("failed to parse rules: %w", err)
	}

	rs := Default()
	f.Include.apply(&rs.Include)
	f.Exclude.apply(&rs.Exclude)
	return rs, nil
}

func (fr *fileRules) apply(r *Rules) {
	if fr == nil {
		return
	}
	if fr.Context != nil {
		r.Context = *fr.Context
	}
	if fr.Command != nil {
		r.Command = *fr.Command
	}
}

// DefaultYAML returns a commented YAML rendering of the default rule set.
func DefaultYAML() string {
	return `# kubekeeper rules
# Generated by: kubekeeper-admin init-rules
#
# context entries are glob patterns: "*" matches any run of characters,
# everything else matches literally (case-sensitive, whole name).
# command entries are prefixes of the kubectl arguments joined by spaces.
#
# Evaluation order (first match wins):
#   1. context included        -> validate unless command is excluded
#   2. command included        -> validate unless context is excluded
#   3. context or command excluded -> skip validation
#   4. context validated within KUBEKEEPER_CHECK_INTERVAL -> skip validation
#   5. otherwise               -> validate
#
# Omitting a list keeps its built-in default; an empty list ([]) clears it.

# These contexts and/or commands always require validation.
include:
  context:
    - "*fed*"
    - "*prod*"
  command:
    - apply
    - delete
    - edit
    - label
    - scale

# These contexts and/or commands never require validation.
exclude:
  context:
    - "kind-*"
    - minikube
  command:
    - api-resources
    - api-versions
    - cluster-info
    - completion
    - config current-context
    - config get-clusters
    - config get-contexts
    - config view
    - describe
    - diff
    - explain
    - get
    - help
    - logs
    - options
    - top
    - version
`
}
