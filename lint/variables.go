// lint/variables.go
package lint

import (
	"regexp"
	"sort"

	"gopkg.in/yaml.v3"
)

// variableRegex matches $NAME references; the capture is the name.
var variableRegex = regexp.MustCompile(`\$([A-Z_][A-Z0-9_]*)`)

// ExtractVariables returns the unique variable names referenced in string
// values of the document, sorted. Mapping keys are not scanned.
func ExtractVariables(d *Document) []string {
	seen := make(map[string]struct{})
	walkStrings(d.Root, make(map[*yaml.Node]bool), func(s string) {
		for _, m := range variableRegex.FindAllStringSubmatch(s, -1) {
			seen[m[1]] = struct{}{}
		}
	})

	vars := make([]string, 0, len(seen))
	for v := range seen {
		vars = append(vars, v)
	}
	sort.Strings(vars)
	return vars
}

// walkStrings calls fn for each string scalar reachable through mapping
// values, sequence items and aliases. visiting guards against alias cycles.
func walkStrings(n *yaml.Node, visiting map[*yaml.Node]bool, fn func(string)) {
	if n == nil || visiting[n] {
		return
	}
	switch n.Kind {
	case yaml.DocumentNode, yaml.SequenceNode:
		for _, c := range n.Content {
			walkStrings(c, visiting, fn)
		}
	case yaml.MappingNode:
		for i := 1; i < len(n.Content); i += 2 {
			walkStrings(n.Content[i], visiting, fn)
		}
	case yaml.AliasNode:
		visiting[n] = true
		walkStrings(n.Alias, visiting, fn)
		delete(visiting, n)
	case yaml.ScalarNode:
		if isString(n) {
			fn(n.Value)
		}
	}
}
