// lint/lint.go
package lint

import (
	"github.com/sourcegraph/conc/iter"
)

// Options controls a lint run.
type Options struct {
	// Rules replaces DefaultRules when non-nil.
	Rules []Rule

	// SkipShape disables the embedded schema check.
	SkipShape bool
}

// Result is the outcome of linting one file.
type Result struct {
	File         string           `json:"file"`
	Variables    []string         `json:"variables"`
	HasWorkflows bool             `json:"has_workflows"`
	Issues       []WorkflowIssues `json:"issues"`
	Categories   []Category       `json:"categories"`
	Warnings     []string         `json:"warnings,omitempty"`

	// Err is set when the file could not be loaded; nothing else is filled in.
	Err      error  `json:"-"`
	ErrorMsg string `json:"error,omitempty"`
}

// Failed reports whether r should fail the run. Load errors always fail;
// issues and schema warnings fail only when strict.
func (r Result) Failed(strict bool) bool {
	if r.Err != nil {
		return true
	}
	return strict && (len(r.Issues) > 0 || len(r.Warnings) > 0)
}

// Lint loads path and runs every check on it.
func Lint(path string, opts Options) Result {
	res := Result{File: path}

	doc, err := LoadFile(path)
	if err != nil {
		res.Err = err
		res.ErrorMsg = err.Error()
		return res
	}

	if !opts.SkipShape {
		warnings, err := CheckShape(doc)
		if err != nil {
			res.Err = err
			res.ErrorMsg = err.Error()
			return res
		}
		res.Warnings = warnings
	}

	rules := opts.Rules
	if rules == nil {
		rules = DefaultRules
	}

	res.Variables = ExtractVariables(doc)
	if workflows, ok := doc.Workflows(); ok {
		res.HasWorkflows = true
		res.Issues = ValidateWorkflows(workflows, rules)
	}
	res.Categories = Categorize(res.Variables)
	return res
}

// LintFiles lints paths concurrently. Results are in the order of paths.
func LintFiles(paths []string, opts Options) []Result {
	return iter.Map(paths, func(p *string) Result {
		return Lint(*p, opts)
	})
}

// AnyFailed reports whether any result fails under strict.
func AnyFailed(results []Result, strict bool) bool {
	for _, r := range results {
		if r.Failed(strict) {
			return true
		}
	}
	return false
}
