package linejson_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biolink/kgx/config"
	"github.com/biolink/kgx/model"
	"github.com/biolink/kgx/sink/linejson"
)

func TestSink_WritesOneJSONObjectPerLine(t *testing.T) {
	dir := t.TempDir()
	nodesPath := filepath.Join(dir, "nodes.jsonl")
	edgesPath := filepath.Join(dir, "edges.jsonl")

	s, err := linejson.NewSink(config.Options{Filename: []string{nodesPath, edgesPath}})
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, s.WriteNode(ctx, model.NewNode("HGNC:1", "biolink:Gene")))
	require.NoError(t, s.WriteNode(ctx, model.NewNode("HGNC:2", "biolink:Gene")))
	require.NoError(t, s.WriteEdge(ctx, model.NewEdge("HGNC:1", "biolink:related_to", "HGNC:2")))
	require.NoError(t, s.Finalize(ctx))

	nodesRaw, err := os.ReadFile(nodesPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(nodesRaw), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "HGNC:1")

	edgesRaw, err := os.ReadFile(edgesPath)
	require.NoError(t, err)
	assert.Contains(t, string(edgesRaw), "biolink:related_to")
}
