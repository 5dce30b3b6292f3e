// lint/rules.go
package lint

import (
	"slices"

	"gopkg.in/yaml.v3"
)

// Rule requires a variable in environment.vars of the named workflows.
type Rule struct {
	Workflows []string
	Var       string

	// Missing overrides the "Missing <Var>" message.
	Missing string

	// MustBeEmpty additionally requires the value to be the empty string;
	// NotEmpty is reported otherwise.
	MustBeEmpty bool
	NotEmpty    string
}

// DefaultRules is the checklist for the QuikApp Codemagic workflows. Issues
// are reported in rule order.
var DefaultRules = []Rule{
	{
		// Free builds ship without Firebase; the key must exist and be blank.
		Workflows:   []string{"android-free"},
		Var:         "FIREBASE_CONFIG_ANDROID",
		Missing:     "Missing FIREBASE_CONFIG_ANDROID (should be empty string)",
		MustBeEmpty: true,
		NotEmpty:    "FIREBASE_CONFIG_ANDROID should be empty string for free workflow",
	},
	{Workflows: []string{"android-paid", "android-publish", "combined"}, Var: "FIREBASE_CONFIG_ANDROID"},
	{Workflows: []string{"ios-workflow", "combined"}, Var: "FIREBASE_CONFIG_IOS"},
	{Workflows: []string{"android-free", "android-paid", "android-publish", "combined"}, Var: "PKG_NAME"},
	{Workflows: []string{"ios-workflow", "combined"}, Var: "BUNDLE_ID"},
}

// WorkflowIssues lists the problems found in one workflow.
type WorkflowIssues struct {
	Workflow string   `json:"workflow"`
	Line     int      `json:"line"`
	Issues   []string `json:"issues"`
}

// ValidateWorkflows applies rules to every workflow that has an
// environment.vars section. Workflows without issues are omitted; the rest
// keep file order.
func ValidateWorkflows(workflows []Workflow, rules []Rule) []WorkflowIssues {
	var out []WorkflowIssues
	for _, wf := range workflows {
		vars, ok := wf.VarsSection()
		if !ok {
			continue
		}

		var issues []string
		for _, r := range rules {
			if !slices.Contains(r.Workflows, wf.Name) {
				continue
			}
			if msg := r.check(vars); msg != "" {
				issues = append(issues, msg)
			}
		}
		if len(issues) > 0 {
			out = append(out, WorkflowIssues{Workflow: wf.Name, Line: wf.Line, Issues: issues})
		}
	}
	return out
}

func (r Rule) check(vars *yaml.Node) string {
	// A vars section that is not a mapping has no keys.
	v := lookup(vars, r.Var)
	if v == nil {
		if r.Missing != "" {
			return r.Missing
		}
		return "Missing " + r.Var
	}
	if r.MustBeEmpty {
		v = resolve(v)
		if !isString(v) || v.Value != "" {
			return r.NotEmpty
		}
	}
	return ""
}
