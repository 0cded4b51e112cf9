package ntriples_test

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biolink/kgx/config"
	kgxerrors "github.com/biolink/kgx/errors"
	"github.com/biolink/kgx/model"
	"github.com/biolink/kgx/source"
	"github.com/biolink/kgx/source/ntriples"
)

const prefixHGNC = "http://identifiers.org/hgnc/"

func writeNT(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestSource_DirectEdgeTriple(t *testing.T) {
	dir := t.TempDir()
	path := writeNT(t, dir, "graph.nt",
		`<http://identifiers.org/hgnc/1> <http://example.org/related_to> <http://identifiers.org/hgnc/2> .`+"\n")

	opts := config.Options{
		Filename:  []string{path},
		PrefixMap: map[string]string{"HGNC": prefixHGNC},
	}
	src, err := ntriples.NewSource(opts)
	require.NoError(t, err)
	defer src.Close()

	rec, err := src.Next(context.Background())
	require.NoError(t, err)
	require.Equal(t, source.KindEdge, rec.Kind)
	assert.Equal(t, "HGNC:1", rec.Edge.Subject)
	assert.Equal(t, "HGNC:2", rec.Edge.Object)
}

func TestSource_ReifiedEdge(t *testing.T) {
	dir := t.TempDir()
	stmt := "http://example.org/stmt/1"
	content := `<` + stmt + `> <http://www.w3.org/1999/02/22-rdf-syntax-ns#subject> <http://identifiers.org/hgnc/1> .` + "\n" +
		`<` + stmt + `> <http://www.w3.org/1999/02/22-rdf-syntax-ns#predicate> <http://example.org/related_to> .` + "\n" +
		`<` + stmt + `> <http://www.w3.org/1999/02/22-rdf-syntax-ns#object> <http://identifiers.org/hgnc/2> .` + "\n"
	path := writeNT(t, dir, "graph.nt", content)

	opts := config.Options{
		Filename:  []string{path},
		PrefixMap: map[string]string{"HGNC": prefixHGNC},
	}
	src, err := ntriples.NewSource(opts)
	require.NoError(t, err)
	defer src.Close()

	rec, err := src.Next(context.Background())
	require.NoError(t, err)
	require.Equal(t, source.KindEdge, rec.Kind)
	assert.Equal(t, "HGNC:1", rec.Edge.Subject)
	assert.Equal(t, "HGNC:2", rec.Edge.Object)

	_, err = src.Next(context.Background())
	assert.True(t, stderrors.Is(err, kgxerrors.ErrSourceExhausted))
}

func TestSource_NodePropertyPredicate(t *testing.T) {
	dir := t.TempDir()
	content := `<http://identifiers.org/hgnc/1> <http://example.org/symbol> "A1BG" .` + "\n"
	path := writeNT(t, dir, "graph.nt", content)

	opts := config.Options{
		Filename:               []string{path},
		PrefixMap:              map[string]string{"HGNC": prefixHGNC},
		NodePropertyPredicates: []string{"http://example.org/symbol"},
	}
	src, err := ntriples.NewSource(opts)
	require.NoError(t, err)
	defer src.Close()

	rec, err := src.Next(context.Background())
	require.NoError(t, err)
	require.Equal(t, source.KindNode, rec.Kind)
	assert.Equal(t, "HGNC:1", rec.Node.ID)
	assert.Equal(t, model.String("A1BG"), rec.Node.Properties["http://example.org/symbol"])
}
