package lint

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// assertInOrder checks that each of parts occurs in s after the previous one.
func assertInOrder(t *testing.T, s string, parts ...string) {
	t.Helper()
	rest := s
	for _, p := range parts {
		i := strings.Index(rest, p)
		if !assert.GreaterOrEqual(t, i, 0, "missing or out of order: %q\n%s", p, s) {
			return
		}
		rest = rest[i+len(p):]
	}
}

func TestPrinter_WithIssues(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).Print([]Result{{
		File:         "codemagic_optimized.yaml",
		Variables:    []string{"BUNDLE_ID", "FIREBASE_CONFIG_IOS", "WEB_URL"},
		HasWorkflows: true,
		Issues: []WorkflowIssues{
			{Workflow: "ios-workflow", Line: 3, Issues: []string{"Missing FIREBASE_CONFIG_IOS", "Missing BUNDLE_ID"}},
		},
		Categories: []Category{
			{Name: "Firebase", Variables: []string{"FIREBASE_CONFIG_IOS"}},
			{Name: "Other", Variables: []string{"BUNDLE_ID", "WEB_URL"}},
		},
	}})

	out := buf.String()
	assert.NotContains(t, out, "\x1b[", "no colors for a non-terminal writer")
	assertInOrder(t, out,
		"Validating codemagic_optimized.yaml...",
		"Found 3 unique variable references",
		"Validation Issues Found:",
		"\n  ios-workflow:\n",
		"    - Missing FIREBASE_CONFIG_IOS\n",
		"    - Missing BUNDLE_ID\n",
		"Variable Categories Found:",
		"  Firebase: 1 variables\n",
		"  Other: 2 variables\n",
		"YAML validation completed!",
	)
	assert.NotContains(t, out, "No validation issues found!")
}

func TestPrinter_Clean(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).Print([]Result{{File: "a.yaml", HasWorkflows: true}})

	out := buf.String()
	assertInOrder(t, out, "Found 0 unique variable references", "No validation issues found!", "YAML validation completed!")
}

func TestPrinter_NoWorkflows(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).Print([]Result{{File: "a.yaml"}})

	out := buf.String()
	assert.NotContains(t, out, "No validation issues found!")
	assert.NotContains(t, out, "Validation Issues Found:")
	assertInOrder(t, out, "Variable Categories Found:", "YAML validation completed!")
}

func TestPrinter_WarningsAndErrors(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).Print([]Result{
		{File: "a.yaml", Warnings: []string{"at '/workflows': got array, want object"}},
		{File: "b.yaml", Err: errors.New("open b.yaml: no such file or directory")},
	})

	out := buf.String()
	assertInOrder(t, out,
		"Validating a.yaml...",
		"Structure Warnings:",
		"    - at '/workflows': got array, want object",
		"YAML validation completed!",
		"Validating b.yaml...",
		"Error loading YAML file: open b.yaml: no such file or directory",
	)
	assert.Equal(t, 1, strings.Count(out, "YAML validation completed!"))
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	err := WriteJSON(&buf, []Result{
		{File: "a.yaml", Variables: []string{"X"}, HasWorkflows: true, Issues: []WorkflowIssues{{Workflow: "combined", Line: 2, Issues: []string{"Missing PKG_NAME"}}}},
		{File: "b.yaml", Err: errors.New("boom"), ErrorMsg: "boom"},
	})
	require.NoError(t, err)

	var got []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "a.yaml", got[0]["file"])
	assert.Equal(t, true, got[0]["has_workflows"])
	assert.NotContains(t, got[0], "error")
	assert.Equal(t, "boom", got[1]["error"])

	issues := got[0]["issues"].([]any)
	first := issues[0].(map[string]any)
	assert.Equal(t, "combined", first["workflow"])
	assert.Equal(t, []any{"Missing PKG_NAME"}, first["issues"])
}
