package inventory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder_AppendChildKeepsDuplicates(t *testing.T) {
	t.Parallel()
	b := NewBuilder("prod")
	b.AppendChild("web", "web-us")
	b.AppendChild("web", "web-us")

	graph := b.Build()
	assert.Equal(t, map[string]any{"children": []string{"web-us", "web-us"}}, graph["web"])
}

func TestBuilder_AppendChildUniqueDeduplicates(t *testing.T) {
	t.Parallel()
	b := NewBuilder("prod")
	b.AppendChildUnique("us", "prod-us")
	b.AppendChildUnique("us", "prod-us")
	b.AppendChildUnique("us", "stage-us")

	graph := b.Build()
	assert.Equal(t, map[string]any{"children": []string{"prod-us", "stage-us"}}, graph["us"])
}

func TestBuilder_PutChildrenOverwrites(t *testing.T) {
	t.Parallel()
	b := NewBuilder("prod")
	b.AppendChild("web", "stale")
	b.PutChildren("web")

	graph := b.Build()
	assert.Equal(t, map[string]any{"children": []string{}}, graph["web"])
}

func TestBuilder_PutHostsOverwrites(t *testing.T) {
	t.Parallel()
	b := NewBuilder("prod")
	b.PutHosts("web-us", []string{"h1"})
	b.PutHosts("web-us", []string{"h2", "h3"})

	graph := b.Build()
	assert.Equal(t, map[string]any{"hosts": []string{"h2", "h3"}}, graph["web-us"])
}

func TestBuilder_EnsureGroupIsIdempotent(t *testing.T) {
	t.Parallel()
	b := NewBuilder("prod")
	b.AppendChild("web", "web-us")
	b.EnsureGroup("web")

	graph := b.Build()
	assert.Equal(t, map[string]any{"children": []string{"web-us"}}, graph["web"])
}

func TestBuilder_BuildSeedsMetaAndRoot(t *testing.T) {
	t.Parallel()
	graph := NewBuilder("prod").Build()

	assert.Equal(t, map[string]any{"hostvars": map[string]any{}}, graph["_meta"])
	assert.Equal(t, map[string]any{"children": []string{}}, graph["prod"])
	assert.Len(t, graph, 2)
}

func TestBuilder_GroupNamedMetaShadowsReservedEntry(t *testing.T) {
	t.Parallel()
	b := NewBuilder("prod")
	b.PutChildren("_meta", "_meta-us")

	graph := b.Build()
	assert.Equal(t, map[string]any{"children": []string{"_meta-us"}}, graph["_meta"])
}

func TestRender_SortsKeysAndIndents(t *testing.T) {
	t.Parallel()
	doc, err := Render(map[string]any{
		"b": map[string]any{"children": []string{"x"}},
		"a": map[string]any{"hosts": []string{"h1"}},
	})
	require.NoError(t, err)

	want := `{
    "a": {
        "hosts": [
            "h1"
        ]
    },
    "b": {
        "children": [
            "x"
        ]
    }
}`
	assert.Equal(t, want, string(doc))
}

func TestRender_DoesNotEscapeHTML(t *testing.T) {
	t.Parallel()
	doc, err := Render(map[string]any{
		"web-us": map[string]any{"hosts": []string{"h1 ansible_ssh_common_args=<none>&"}},
	})
	require.NoError(t, err)

	assert.Contains(t, string(doc), "<none>&")
}
