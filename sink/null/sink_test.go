package null_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/biolink/kgx/model"
	"github.com/biolink/kgx/sink/null"
)

func TestSink_DiscardsEverything(t *testing.T) {
	s := null.NewSink()
	ctx := context.Background()
	require.NoError(t, s.WriteNode(ctx, model.NewNode("HGNC:1")))
	require.NoError(t, s.WriteEdge(ctx, model.NewEdge("HGNC:1", "biolink:related_to", "HGNC:2")))
	require.NoError(t, s.Finalize(ctx))
}
