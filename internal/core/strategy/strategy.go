// Package strategy defines the prompt-construction strategies used to build instruction pairs
package strategy

import (
	"slices"
	"strings"

	perr "codecorpus/internal/platform/errors"
)

// Kind is a closed set of strategies; the zero value is not a valid strategy
type Kind uint8

// Strategy kinds in declaration order
const (
	_ Kind = iota
	Explanation
	Documentation
	Improvement
	Completion
	FunctionImplementation
	BugDetection
	Refactoring
	Summary
)

var names = [...]string{
	Explanation:            "code_explanation",
	Documentation:          "code_documentation",
	Improvement:            "code_improvement",
	Completion:             "code_completion",
	FunctionImplementation: "function_implementation",
	BugDetection:           "bug_detection",
	Refactoring:            "code_refactoring",
	Summary:                "code_summary",
}

// String returns the wire name
func (k Kind) String() string {
	if k == 0 || int(k) >= len(names) {
		return "invalid"
	}
	return names[k]
}

// Valid reports whether k is one of the declared kinds
func (k Kind) Valid() bool { return k > 0 && int(k) < len(names) }

// Parse maps a wire name back to its Kind
func Parse(s string) (Kind, error) {
	for i, n := range names {
		if i > 0 && n == s {
			return Kind(i), nil
		}
	}
	return 0, perr.WithField(perr.InvalidArgf("unknown strategy %q", s), "strategy")
}

var (
	defaultMenu = []Kind{Documentation, Completion, FunctionImplementation, Summary}
	fullMenu    = []Kind{Explanation, Documentation, Improvement, Completion, FunctionImplementation, BugDetection, Refactoring, Summary}
)

// DefaultMenu is the menu used unless the full menu is requested
func DefaultMenu() []Kind { return slices.Clone(defaultMenu) }

// FullMenu lists every strategy in declaration order
func FullMenu() []Kind { return slices.Clone(fullMenu) }

// CompletionCutoff is the share of lines kept for completion prompts
const CompletionCutoff = 0.7

// CompletionPrefix keeps the first int(lines*0.7) lines of code
func CompletionPrefix(code string) string {
	lines := strings.Split(code, "\n")
	cut := int(float64(len(lines)) * CompletionCutoff)
	return strings.Join(lines[:cut], "\n")
}

// Fence wraps code in a markdown fence tagged with lang (which may be empty)
func Fence(lang, code string) string {
	return "```" + lang + "\n" + code + "\n```"
}
