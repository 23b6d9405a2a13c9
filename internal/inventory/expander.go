package inventory

import (
	"errors"
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"gopkg.in/yaml.v3"
)

// Expand reads the inventory file at relPath inside the repository snapshot
// and returns the fully expanded group graph as deterministic JSON.
//
// The source maps tiers to locations to host lists. For inventory name n,
// tier t and location l the graph contains: the root group n (children = all
// tiers), t (children = its t-l groups), n-t (children = [t]), l (children =
// every n-l referencing it, deduplicated), n-l (children = all t-l under
// that location), the leaf t-l (hosts) and n-t-l (children = [t-l]).
//
// Group names are plain "-" joins of the segments. A segment that itself
// contains the delimiter can collide with a differently split pair, in which
// case the later write silently wins.
func Expand(fsys billy.Filesystem, relPath string) ([]byte, error) {
	name := inventoryName(relPath)

	fi, err := fsys.Stat(relPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &NotFoundError{Path: relPath}
		}
		return nil, fmt.Errorf("failed to stat inventory file %q: %w", relPath, err)
	}
	if fi.IsDir() {
		return nil, &NotFoundError{Path: relPath}
	}

	data, err := util.ReadFile(fsys, relPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read inventory file %q: %w", relPath, err)
	}

	tiers, err := parseTree(data)
	if err != nil {
		return nil, &ParseError{Path: relPath, Err: err}
	}

	b := NewBuilder(name)
	for _, tier := range tiers {
		expandTier(b, name, tier)
	}

	return Render(b.Build())
}

// inventoryName derives the inventory name from the file's base name: the
// part before the first dot, so "production.yml" becomes "production".
func inventoryName(relPath string) string {
	base := path.Base(relPath)
	if i := strings.Index(base, "."); i >= 0 {
		return base[:i]
	}
	return base
}

// expandTier performs the per-tier graph updates, then the five
// location-dependent updates for each location under the tier.
func expandTier(b *Builder, name string, tier tierEntry) {
	invTier := name + "-" + tier.name

	b.PutChildren(tier.name)
	b.PutChildren(invTier, tier.name)
	b.AppendChild(name, tier.name)

	for _, loc := range tier.locations {
		tierLoc := tier.name + "-" + loc.name
		invLoc := name + "-" + loc.name
		invTierLoc := name + "-" + tierLoc

		b.AppendChild(tier.name, tierLoc)
		// The location's membership under this inventory accumulates as more
		// tiers referencing it are processed.
		b.AppendChild(invLoc, tierLoc)
		b.AppendChildUnique(loc.name, invLoc)
		b.PutHosts(tierLoc, loc.hosts)
		b.PutChildren(invTierLoc, tierLoc)
	}
}

// tierEntry and locationEntry preserve the document order of the source
// mappings; iterating a Go map would randomize children ordering between
// runs.
type tierEntry struct {
	name      string
	locations []locationEntry
}

type locationEntry struct {
	name  string
	hosts []string
}

// parseTree decodes the source into ordered tier entries, rejecting any
// document whose top-level shape is not mapping -> mapping -> sequence.
func parseTree(data []byte) ([]tierEntry, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	root := resolveAlias(documentRoot(&doc))
	if root == nil || root.Kind != yaml.MappingNode {
		return nil, errors.New("top-level document must be a mapping of tiers")
	}

	tiers := make([]tierEntry, 0, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		tierNode := root.Content[i]
		tierVal := resolveAlias(root.Content[i+1])
		if tierVal == nil || tierVal.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("tier %q must map locations to host lists", tierNode.Value)
		}

		tier := tierEntry{name: tierNode.Value}
		for j := 0; j+1 < len(tierVal.Content); j += 2 {
			locNode := tierVal.Content[j]
			hosts, err := decodeHosts(resolveAlias(tierVal.Content[j+1]))
			if err != nil {
				return nil, fmt.Errorf("location %q under tier %q: %w", locNode.Value, tierNode.Value, err)
			}
			tier.locations = append(tier.locations, locationEntry{name: locNode.Value, hosts: hosts})
		}
		tiers = append(tiers, tier)
	}

	return tiers, nil
}

// decodeHosts returns the host identifiers of one location. Entries are
// treated as opaque strings, so per-host inline variables pass through
// unchanged. An empty location yields nil hosts, which renders as null.
func decodeHosts(node *yaml.Node) ([]string, error) {
	if node == nil || isNull(node) {
		return nil, nil
	}
	if node.Kind != yaml.SequenceNode {
		return nil, errors.New("expected a sequence of hosts")
	}

	var hosts []string
	if err := node.Decode(&hosts); err != nil {
		return nil, err
	}
	return hosts, nil
}

func documentRoot(doc *yaml.Node) *yaml.Node {
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil
	}
	return doc.Content[0]
}

func resolveAlias(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	return n
}

func isNull(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.Tag == "!!null"
}
