package graphiti

import (
	"github.com/daniel-j-h/graphiti/pkg/nvgraph"
	"github.com/daniel-j-h/graphiti/pkg/sparse"
)

// TopologyFromMatrix views a square sparse matrix as a graph topology: entry
// (i, j) is an edge from vertex i to vertex j. The matrix arrays are shared,
// not copied.
func TopologyFromMatrix[T Element](m *sparse.Matrix[T]) (nvgraph.Topology, error) {
	const op = "building topology"

	rows, cols := m.Dims()
	if !m.IsSquare() {
		return nil, usageErrorf(op, "adjacency matrix must be square, got %dx%d", rows, cols)
	}

	switch m.Format() {
	case sparse.CSR:
		return &nvgraph.CSRTopology32I{
			NVertices:          int32(rows),
			NEdges:             int32(m.NNZ()),
			SourceOffsets:      m.Indptr(),
			DestinationIndices: m.Indices(),
		}, nil
	case sparse.CSC:
		return &nvgraph.CSCTopology32I{
			NVertices:          int32(rows),
			NEdges:             int32(m.NNZ()),
			DestinationOffsets: m.Indptr(),
			SourceIndices:      m.Indices(),
		}, nil
	}
	return nil, usageErrorf(op, "unsupported sparse format %v", m.Format())
}

// validateTopology checks the shape invariants the engine relies on and
// returns the tag matching the concrete topology type.
func validateTopology(op string, topology nvgraph.Topology) (nvgraph.TopologyType, int, int, error) {
	var nvertices, nedges int32
	var offsets, indices []int32

	switch t := topology.(type) {
	case *nvgraph.CSRTopology32I:
		if t == nil {
			return 0, 0, 0, usageErrorf(op, "nil topology")
		}
		nvertices, nedges, offsets, indices = t.NVertices, t.NEdges, t.SourceOffsets, t.DestinationIndices
	case *nvgraph.CSCTopology32I:
		if t == nil {
			return 0, 0, 0, usageErrorf(op, "nil topology")
		}
		nvertices, nedges, offsets, indices = t.NVertices, t.NEdges, t.DestinationOffsets, t.SourceIndices
	default:
		return 0, 0, 0, usageErrorf(op, "unsupported topology type %T", topology)
	}

	if nvertices < 0 || nedges < 0 {
		return 0, 0, 0, usageErrorf(op, "negative vertex or edge count (%d, %d)", nvertices, nedges)
	}
	if len(offsets) != int(nvertices)+1 {
		return 0, 0, 0, usageErrorf(op, "offsets has %d entries, expected %d", len(offsets), nvertices+1)
	}
	if len(indices) != int(nedges) {
		return 0, 0, 0, usageErrorf(op, "indices has %d entries, expected %d", len(indices), nedges)
	}
	if offsets[0] != 0 || offsets[nvertices] != nedges {
		return 0, 0, 0, usageErrorf(op, "offsets must run from 0 to %d", nedges)
	}
	for i := 1; i < len(offsets); i++ {
		if offsets[i] < offsets[i-1] {
			return 0, 0, 0, usageErrorf(op, "offsets decrease at %d", i)
		}
	}
	for i, index := range indices {
		if index < 0 || index >= nvertices {
			return 0, 0, 0, usageErrorf(op, "index %d at position %d outside [0, %d)", index, i, nvertices)
		}
	}

	return topology.TopologyType(), int(nvertices), int(nedges), nil
}

// BindTopology sets the graph structure. It may be called once per descriptor.
func (d *Descriptor) BindTopology(topology nvgraph.Topology) error {
	const op = "binding topology"

	d.handle.mu.Lock()
	defer d.handle.mu.Unlock()

	if err := d.checkUsable(op); err != nil {
		return err
	}
	if d.bound {
		return usageErrorf(op, "topology already bound")
	}
	topologyType, nvertices, nedges, err := validateTopology(op, topology)
	if err != nil {
		return err
	}

	err = d.call("nvgraphSetGraphStructure", func(h nvgraph.Handle, g nvgraph.GraphDescr, engine nvgraph.Engine) nvgraph.Status {
		return engine.SetGraphStructure(h, g, topology, topologyType)
	})
	if err != nil {
		return err
	}

	d.bound = true
	d.topologyType = topologyType
	d.nvertices = nvertices
	d.nedges = nedges
	d.handle.log.V(2).Info("bound topology", "descriptor", d.d, "topology", topologyType, "vertices", nvertices, "edges", nedges)
	return nil
}

// BindMatrix binds the topology of a square sparse matrix.
func BindMatrix[T Element](d *Descriptor, m *sparse.Matrix[T]) error {
	topology, err := TopologyFromMatrix(m)
	if err != nil {
		return err
	}
	return d.BindTopology(topology)
}

// TopologyKind asks the engine which representation is bound.
func (d *Descriptor) TopologyKind() (nvgraph.TopologyType, error) {
	const op = "reading topology"

	d.handle.mu.Lock()
	defer d.handle.mu.Unlock()

	if err := d.checkBound(op); err != nil {
		return 0, err
	}

	var topologyType nvgraph.TopologyType
	err := d.call("nvgraphGetGraphStructure", func(h nvgraph.Handle, g nvgraph.GraphDescr, engine nvgraph.Engine) nvgraph.Status {
		var status nvgraph.Status
		topologyType, status = engine.GetGraphStructure(h, g)
		return status
	})
	return topologyType, err
}
