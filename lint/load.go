// lint/load.go

// Package lint checks Codemagic-style CI pipeline definitions: it collects
// every $VARIABLE reference in the file and verifies that known workflows
// define the variables their builds depend on.
package lint

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultFile is linted when no path is given.
const DefaultFile = "codemagic_optimized.yaml"

// Document is a parsed pipeline definition. Root keeps the YAML node tree so
// workflows come back in file order with line numbers.
type Document struct {
	Path string
	Root *yaml.Node // mapping, sequence, or scalar node; nil for an empty file
}

// LoadFile reads and parses path.
func LoadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(path, data)
}

// Parse parses data as a single YAML document.
func Parse(path string, data []byte) (*Document, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	d := &Document{Path: path}
	if doc.Kind == yaml.DocumentNode && len(doc.Content) > 0 {
		d.Root = doc.Content[0]
	}
	return d, nil
}

// Value decodes the document into plain Go values (maps, slices, scalars).
// An empty document decodes to an empty map.
func (d *Document) Value() (any, error) {
	if d.Root == nil {
		return map[string]any{}, nil
	}
	var v any
	if err := d.Root.Decode(&v); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return v, nil
}

// Workflow is one entry under the top-level workflows mapping.
type Workflow struct {
	Name string
	Line int
	Node *yaml.Node
}

// Workflows returns the entries under "workflows" in file order. Workflows
// pulled in through a "<<" merge key come first, as YAML loaders place them.
// ok is false when the document has no workflows key at all.
func (d *Document) Workflows() (workflows []Workflow, ok bool) {
	wf := lookup(d.Root, "workflows")
	if wf == nil {
		return nil, false
	}
	wf = resolve(wf)
	if wf.Kind != yaml.MappingNode {
		return nil, true
	}
	for _, e := range entries(wf) {
		workflows = append(workflows, Workflow{Name: e.key.Value, Line: e.key.Line, Node: e.value})
	}
	return workflows, true
}

// VarsSection returns the environment.vars node of a workflow. ok is false
// when the workflow has no environment mapping or no vars key.
func (w Workflow) VarsSection() (vars *yaml.Node, ok bool) {
	env := lookup(w.Node, "environment")
	if env == nil || resolve(env).Kind != yaml.MappingNode {
		return nil, false
	}
	vars = lookup(env, "vars")
	if vars == nil {
		return nil, false
	}
	return resolve(vars), true
}

// maxMergeDepth bounds nested "<<" chains.
const maxMergeDepth = 32

type entry struct {
	key, value *yaml.Node
}

// lookup returns the value node for key in a mapping node, or nil. Keys
// merged in with "<<" are found too; an explicit key wins over a merged one.
func lookup(n *yaml.Node, key string) *yaml.Node {
	for _, e := range entries(n) {
		if e.key.Value == key {
			return e.value
		}
	}
	return nil
}

// entries flattens a mapping node: merged keys first, then the mapping's own
// keys. A merge value may be a mapping or a sequence of mappings; earlier
// sources shadow later ones.
func entries(n *yaml.Node) []entry {
	return collectEntries(n, 0)
}

func collectEntries(n *yaml.Node, depth int) []entry {
	n = resolve(n)
	if n == nil || n.Kind != yaml.MappingNode || depth > maxMergeDepth {
		return nil
	}

	var merged, own []entry
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]
		if !isMergeKey(k) {
			own = append(own, entry{key: k, value: v})
			continue
		}
		src := resolve(v)
		if src != nil && src.Kind == yaml.SequenceNode {
			for _, item := range src.Content {
				merged = append(merged, collectEntries(item, depth+1)...)
			}
		} else {
			merged = append(merged, collectEntries(src, depth+1)...)
		}
	}
	if len(merged) == 0 {
		return own
	}

	seen := make(map[string]bool, len(own)+len(merged))
	for _, e := range own {
		seen[e.key.Value] = true
	}
	out := make([]entry, 0, len(own)+len(merged))
	for _, e := range merged {
		if seen[e.key.Value] {
			continue
		}
		seen[e.key.Value] = true
		out = append(out, e)
	}
	return append(out, own...)
}

func isMergeKey(k *yaml.Node) bool {
	return k.Kind == yaml.ScalarNode && k.ShortTag() == "!!merge"
}

// resolve follows alias nodes to their anchor.
func resolve(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	return n
}

func isString(n *yaml.Node) bool {
	return n != nil && n.Kind == yaml.ScalarNode && n.ShortTag() == "!!str"
}
