// Package inventory expands a two-level tier/location YAML inventory into
// the cross-referenced group graph consumed by Ansible as a dynamic
// inventory document.
package inventory

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
)

// Builder owns the group graph while it is being assembled. Groups are
// either aggregations (children) or leaves (hosts); the methods encode the
// merge rules explicitly: Put* overwrites, Append* grows, AppendChildUnique
// deduplicates.
type Builder struct {
	groups map[string]*group
}

type group struct {
	children []string
	hosts    []string
	leaf     bool
}

// NewBuilder returns a Builder seeded with an empty root aggregation group
// for the inventory name.
func NewBuilder(name string) *Builder {
	b := &Builder{groups: make(map[string]*group)}
	b.PutChildren(name)
	return b
}

// PutChildren creates or overwrites an aggregation group with the given
// children.
func (b *Builder) PutChildren(name string, children ...string) {
	b.groups[name] = &group{children: append([]string{}, children...)}
}

// EnsureGroup creates an empty aggregation group unless the name is already
// present.
func (b *Builder) EnsureGroup(name string) {
	if _, ok := b.groups[name]; !ok {
		b.PutChildren(name)
	}
}

// AppendChild appends a child to an aggregation group, creating the group
// first if needed. Duplicates are kept; callers that need idempotent
// membership use AppendChildUnique.
func (b *Builder) AppendChild(name, child string) {
	b.EnsureGroup(name)
	g := b.groups[name]
	g.children = append(g.children, child)
}

// AppendChildUnique appends a child only if the group does not already list
// it, preserving the position of the first appearance.
func (b *Builder) AppendChildUnique(name, child string) {
	b.EnsureGroup(name)
	g := b.groups[name]
	if !slices.Contains(g.children, child) {
		g.children = append(g.children, child)
	}
}

// PutHosts creates or overwrites a leaf group holding the given hosts. A
// recurring group name silently wins over the earlier write.
func (b *Builder) PutHosts(name string, hosts []string) {
	b.groups[name] = &group{hosts: hosts, leaf: true}
}

// Build materializes the graph as a generic mapping ready for
// serialization. The reserved _meta entry is written first, so a group that
// happens to be named "_meta" shadows it.
func (b *Builder) Build() map[string]any {
	out := make(map[string]any, len(b.groups)+1)
	out["_meta"] = map[string]any{"hostvars": map[string]any{}}
	for name, g := range b.groups {
		if g.leaf {
			out[name] = map[string]any{"hosts": g.hosts}
		} else {
			out[name] = map[string]any{"children": g.children}
		}
	}
	return out
}

// Render serializes a graph deterministically: keys sorted lexicographically
// at every nesting level, four-space indentation, no HTML escaping and no
// trailing newline. Byte-identical input yields byte-identical output.
func Render(graph map[string]any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(graph); err != nil {
		return nil, fmt.Errorf("failed to serialize group graph: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
