package graphiti

import (
	"time"

	"github.com/daniel-j-h/graphiti/pkg/nvgraph"
)

// Algorithm names a traversal the engine can run.
type Algorithm string

const (
	ShortestPath Algorithm = "sssp"
	WidestPath   Algorithm = "widest"
)

func ParseAlgorithm(s string) (Algorithm, error) {
	switch Algorithm(s) {
	case ShortestPath, WidestPath:
		return Algorithm(s), nil
	case "shortest":
		return ShortestPath, nil
	}
	return "", usageErrorf("parsing algorithm", "unknown algorithm %q", s)
}

// ShortestPaths computes single-source shortest path distances from source
// using the weights in edgeSlot, and stores them in vertexSlot.
func (d *Descriptor) ShortestPaths(source, edgeSlot, vertexSlot int) error {
	return d.traverse(ShortestPath, source, edgeSlot, vertexSlot)
}

// WidestPaths computes, for every vertex, the largest bottleneck capacity of
// a path from source using the capacities in edgeSlot, and stores it in
// vertexSlot.
func (d *Descriptor) WidestPaths(source, edgeSlot, vertexSlot int) error {
	return d.traverse(WidestPath, source, edgeSlot, vertexSlot)
}

// Run dispatches to ShortestPaths or WidestPaths.
func (d *Descriptor) Run(algorithm Algorithm, source, edgeSlot, vertexSlot int) error {
	return d.traverse(algorithm, source, edgeSlot, vertexSlot)
}

func (d *Descriptor) traverse(algorithm Algorithm, source, edgeSlot, vertexSlot int) error {
	op := "running " + string(algorithm)

	d.handle.mu.Lock()
	defer d.handle.mu.Unlock()

	if err := d.checkBound(op); err != nil {
		return err
	}
	if source < 0 || source >= d.nvertices {
		return usageErrorf(op, "source vertex %d outside [0, %d)", source, d.nvertices)
	}
	if edgeSlot < 0 || edgeSlot >= len(d.edgeKinds) {
		return usageErrorf(op, "edge slot %d out of range, %d allocated", edgeSlot, len(d.edgeKinds))
	}
	if !d.edgeWritten[edgeSlot] {
		return usageErrorf(op, "edge slot %d holds no weights", edgeSlot)
	}
	if vertexSlot < 0 || vertexSlot >= len(d.vertexKinds) {
		return usageErrorf(op, "vertex slot %d out of range, %d allocated", vertexSlot, len(d.vertexKinds))
	}

	var native string
	var fn func(h nvgraph.Handle, g nvgraph.GraphDescr, engine nvgraph.Engine) nvgraph.Status
	switch algorithm {
	case ShortestPath:
		native = "nvgraphSssp"
		fn = func(h nvgraph.Handle, g nvgraph.GraphDescr, engine nvgraph.Engine) nvgraph.Status {
			return engine.Sssp(h, g, edgeSlot, int32(source), vertexSlot)
		}
	case WidestPath:
		native = "nvgraphWidestPath"
		fn = func(h nvgraph.Handle, g nvgraph.GraphDescr, engine nvgraph.Engine) nvgraph.Status {
			return engine.WidestPath(h, g, edgeSlot, int32(source), vertexSlot)
		}
	default:
		return usageErrorf(op, "unknown algorithm %q", algorithm)
	}

	startedAt := time.Now()
	// Once the engine has been asked to traverse, the slot layout is frozen
	// even if the traversal fails.
	d.traversed = true
	if err := d.call(native, fn); err != nil {
		return err
	}
	d.handle.log.V(2).Info("traversal finished", "descriptor", d.d, "algorithm", algorithm, "source", source, "duration", time.Since(startedAt))
	return nil
}
