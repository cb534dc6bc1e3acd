package graphiti

import (
	"context"
	"errors"

	"k8s.io/klog/v2"

	"github.com/daniel-j-h/graphiti/pkg/nvgraph"
	"github.com/daniel-j-h/graphiti/pkg/sparse"
)

// SimpleGraph is one sparse matrix held by the engine, with a single edge slot
// holding the matrix values and a single vertex slot receiving results.
type SimpleGraph[T Element] struct {
	handle     *Handle
	descriptor *Descriptor
	nvertices  int
}

// NewSimpleGraph acquires a handle and a descriptor, binds the topology of m
// and uploads its values as edge weights. On failure everything acquired so
// far is released before returning.
func NewSimpleGraph[T Element](ctx context.Context, lib *Library, m *sparse.Matrix[T]) (*SimpleGraph[T], error) {
	// Reject bad matrices before touching the engine.
	topology, err := TopologyFromMatrix(m)
	if err != nil {
		return nil, err
	}

	handle, err := lib.NewHandle(ctx)
	if err != nil {
		return nil, err
	}
	descriptor, err := handle.NewDescriptor(ctx)
	if err != nil {
		return nil, errors.Join(err, handle.Close())
	}

	g := &SimpleGraph[T]{
		handle:     handle,
		descriptor: descriptor,
	}
	if err := g.load(topology, m); err != nil {
		return nil, errors.Join(err, g.Close())
	}
	g.nvertices = descriptor.NumVertices()

	rows, _ := m.Dims()
	klog.FromContext(ctx).V(2).Info("loaded graph", "format", m.Format(), "vertices", rows, "edges", m.NNZ(), "kind", KindOf[T]())
	return g, nil
}

func (g *SimpleGraph[T]) load(topology nvgraph.Topology, m *sparse.Matrix[T]) error {
	d := g.descriptor
	if err := d.BindTopology(topology); err != nil {
		return err
	}
	kind := KindOf[T]()
	if err := d.AllocateVertexData(kind, 1); err != nil {
		return err
	}
	if err := d.AllocateEdgeData(kind, 1); err != nil {
		return err
	}
	return WriteEdgeData(d, 0, m.Data())
}

// WithSimpleGraph runs fn against a SimpleGraph built from m and releases it
// afterwards, whether fn returns an error, succeeds or panics. Release
// failures are joined with the error from fn rather than replacing it.
func WithSimpleGraph[T Element](ctx context.Context, lib *Library, m *sparse.Matrix[T], fn func(g *SimpleGraph[T]) error) (err error) {
	g, err := NewSimpleGraph(ctx, lib, m)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := g.Close(); closeErr != nil {
			err = errors.Join(err, closeErr)
		}
	}()
	return fn(g)
}

func (g *SimpleGraph[T]) NumVertices() int {
	return g.nvertices
}

// Descriptor exposes the underlying descriptor, e.g. to read edge data back.
func (g *SimpleGraph[T]) Descriptor() *Descriptor {
	return g.descriptor
}

// ShortestPaths returns the distance from source to every vertex. Vertices
// that cannot be reached hold the largest finite value of T.
func (g *SimpleGraph[T]) ShortestPaths(source int) ([]T, error) {
	return g.run(ShortestPath, source)
}

// WidestPaths returns the bottleneck capacity from source to every vertex.
func (g *SimpleGraph[T]) WidestPaths(source int) ([]T, error) {
	return g.run(WidestPath, source)
}

func (g *SimpleGraph[T]) Run(algorithm Algorithm, source int) ([]T, error) {
	return g.run(algorithm, source)
}

func (g *SimpleGraph[T]) run(algorithm Algorithm, source int) ([]T, error) {
	if err := g.descriptor.Run(algorithm, source, 0, 0); err != nil {
		return nil, err
	}
	return ReadVertexData[T](g.descriptor, g.nvertices, 0)
}

// Close releases the descriptor and then the handle. The handle release is
// attempted even if the descriptor release fails; both failures are returned.
func (g *SimpleGraph[T]) Close() error {
	var errs []error
	if err := g.descriptor.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := g.handle.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
