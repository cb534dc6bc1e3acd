//go:build nvgraph && cgo

package graphiti

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/daniel-j-h/graphiti/pkg/nvgraph"
	"github.com/daniel-j-h/graphiti/pkg/sparse"
)

func nativeLibrary(t *testing.T) *Library {
	t.Helper()
	engine, err := nvgraph.Load(os.Getenv("NVGRAPH_LIBRARY"))
	if errors.Is(err, nvgraph.ErrLibraryUnavailable) {
		t.Skipf("native engine not available: %v", err)
	}
	require.NoError(t, err)
	return New(engine)
}

func TestNativeEndToEnd(t *testing.T) {
	lib := nativeLibrary(t)

	v, err := lib.Version()
	require.NoError(t, err)
	t.Logf("nvgraph version %v", v)

	err = WithSimpleGraph(context.Background(), lib, exampleMatrix(sparse.CSC), func(g *SimpleGraph[float32]) error {
		distances, err := g.ShortestPaths(1)
		if err != nil {
			return err
		}
		require.Equal(t, []float32{1, 0, 1}, distances)

		kind, err := g.Descriptor().TopologyKind()
		if err != nil {
			return err
		}
		require.Equal(t, nvgraph.CSC32, kind)

		weights, err := ReadEdgeData[float32](g.Descriptor(), 4, 0)
		if err != nil {
			return err
		}
		require.Equal(t, []float32{1, 1, 1, 1}, weights)
		return nil
	})
	require.NoError(t, err)
}

func TestNativeStatusStrings(t *testing.T) {
	lib := nativeLibrary(t)

	for s := nvgraph.StatusSuccess; s <= nvgraph.StatusGraphTypeNotSupported; s++ {
		require.NotEmpty(t, lib.Engine().StatusString(s), s.String())
	}
}
