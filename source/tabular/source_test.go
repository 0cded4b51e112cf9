package tabular_test

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biolink/kgx/config"
	kgxerrors "github.com/biolink/kgx/errors"
	"github.com/biolink/kgx/model"
	"github.com/biolink/kgx/source"
	"github.com/biolink/kgx/source/tabular"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestNewSource_RequiresExactlyTwoFilenames(t *testing.T) {
	_, err := tabular.NewSource(config.Options{Filename: []string{"only-one.tsv"}})
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, kgxerrors.ErrInvalidConfig))
}

func TestSource_ReadsNodesThenEdges(t *testing.T) {
	dir := t.TempDir()
	nodesPath := writeFile(t, dir, "nodes.tsv",
		"id\tcategory\tname\tsymbol\n"+
			"HGNC:1\tbiolink:Gene\tA1BG\tA1BG\n"+
			"HGNC:2\tbiolink:Gene|biolink:GenomicEntity\tA2M\tA2M\n")
	edgesPath := writeFile(t, dir, "edges.tsv",
		"id\tsubject\tpredicate\tobject\tprimary_knowledge_source\n"+
			"e1\tHGNC:1\tbiolink:related_to\tHGNC:2\tinfores:test\n")

	src, err := tabular.NewSource(config.Options{Filename: []string{nodesPath, edgesPath}})
	require.NoError(t, err)
	defer src.Close()

	ctx := context.Background()

	var nodes []*model.Node
	var edges []*model.Edge
	for {
		rec, err := src.Next(ctx)
		if stderrors.Is(err, kgxerrors.ErrSourceExhausted) {
			break
		}
		require.NoError(t, err)
		switch rec.Kind {
		case source.KindNode:
			nodes = append(nodes, rec.Node)
		case source.KindEdge:
			edges = append(edges, rec.Edge)
		}
	}

	require.Len(t, nodes, 2)
	assert.Equal(t, "HGNC:1", nodes[0].ID)
	assert.Equal(t, []string{"biolink:Gene"}, nodes[0].Category)
	assert.Equal(t, model.String("A1BG"), nodes[0].Properties["symbol"])
	assert.Equal(t, []string{"biolink:Gene", "biolink:GenomicEntity"}, nodes[1].Category)

	require.Len(t, edges, 1)
	assert.Equal(t, "HGNC:1", edges[0].Subject)
	assert.Equal(t, "HGNC:2", edges[0].Object)
	assert.Equal(t, "biolink:related_to", edges[0].Predicate)
	assert.Equal(t, "infores:test", edges[0].PrimaryKnowledgeSource)
}

func TestSource_SkipsRowsMissingRequiredColumns(t *testing.T) {
	dir := t.TempDir()
	nodesPath := writeFile(t, dir, "nodes.tsv",
		"id\tname\n"+
			"HGNC:1\tA1BG\n"+
			"\tMissingID\n")
	edgesPath := writeFile(t, dir, "edges.tsv", "id\tsubject\tpredicate\tobject\n")

	src, err := tabular.NewSource(config.Options{Filename: []string{nodesPath, edgesPath}})
	require.NoError(t, err)
	defer src.Close()

	ctx := context.Background()
	var nodes []*model.Node
	for {
		rec, err := src.Next(ctx)
		if stderrors.Is(err, kgxerrors.ErrSourceExhausted) {
			break
		}
		require.NoError(t, err)
		if rec.Kind == source.KindNode {
			nodes = append(nodes, rec.Node)
		}
	}
	require.Len(t, nodes, 1)
	assert.Equal(t, "HGNC:1", nodes[0].ID)
}

func TestSource_SkipsMalformedRows(t *testing.T) {
	dir := t.TempDir()
	// A row with an unterminated quote is malformed per encoding/csv.
	nodesPath := writeFile(t, dir, "nodes.tsv",
		"id\tname\n"+
			"HGNC:1\t\"unterminated\n"+
			"HGNC:2\tA2M\n")
	edgesPath := writeFile(t, dir, "edges.tsv", "id\tsubject\tpredicate\tobject\n")

	src, err := tabular.NewSource(config.Options{Filename: []string{nodesPath, edgesPath}})
	require.NoError(t, err)
	defer src.Close()

	ctx := context.Background()
	var nodes []*model.Node
	for {
		rec, err := src.Next(ctx)
		if stderrors.Is(err, kgxerrors.ErrSourceExhausted) {
			break
		}
		require.NoError(t, err)
		if rec.Kind == source.KindNode {
			nodes = append(nodes, rec.Node)
		}
	}
	require.Len(t, nodes, 1)
	assert.Equal(t, "HGNC:2", nodes[0].ID)
}

func TestSource_CSVFormatUsesCommaDelimiter(t *testing.T) {
	dir := t.TempDir()
	nodesPath := writeFile(t, dir, "nodes.csv", "id,name\nHGNC:1,A1BG\n")
	edgesPath := writeFile(t, dir, "edges.csv", "id,subject,predicate,object\n")

	src, err := tabular.NewSource(config.Options{Format: "csv", Filename: []string{nodesPath, edgesPath}})
	require.NoError(t, err)
	defer src.Close()

	rec, err := src.Next(context.Background())
	require.NoError(t, err)
	require.Equal(t, source.KindNode, rec.Kind)
	assert.Equal(t, "HGNC:1", rec.Node.ID)
	assert.Equal(t, "A1BG", rec.Node.Name)
}

func TestSource_ChunkedConcurrentParsingPreservesFileOrder(t *testing.T) {
	dir := t.TempDir()
	nodesContent := "id\tname\n"
	var want []string
	for i := 0; i < 37; i++ {
		id := "HGNC:" + string(rune('A'+i%26)) + strconv.Itoa(i)
		nodesContent += id + "\tname" + strconv.Itoa(i) + "\n"
		want = append(want, id)
	}
	nodesPath := writeFile(t, dir, "nodes.tsv", nodesContent)
	edgesPath := writeFile(t, dir, "edges.tsv", "id\tsubject\tpredicate\tobject\n")

	src, err := tabular.NewSource(config.Options{
		Filename:     []string{nodesPath, edgesPath},
		ChunkSize:    8,
		ChunkWorkers: 4,
	})
	require.NoError(t, err)
	defer src.Close()

	ctx := context.Background()
	var got []string
	for {
		rec, err := src.Next(ctx)
		if stderrors.Is(err, kgxerrors.ErrSourceExhausted) {
			break
		}
		require.NoError(t, err)
		if rec.Kind == source.KindNode {
			got = append(got, rec.Node.ID)
		}
	}
	assert.Equal(t, want, got)
}
