// Package nvgraph describes the native graph engine as a Go interface.
//
// The Engine interface is a one-to-one rendering of the C entry points the
// rest of the module depends on. Every method reports a Status and performs no
// validation beyond what the engine itself does; callers are expected to go
// through package graphiti, which enforces ordering and host-side invariants.
package nvgraph

import "unsafe"

type Engine interface {
	// Name identifies the implementation, e.g. "native" or "fallback".
	Name() string

	GetProperty(prop LibraryProperty) (int, Status)

	Create() (Handle, Status)
	Destroy(h Handle) Status

	CreateGraphDescr(h Handle) (GraphDescr, Status)
	DestroyGraphDescr(h Handle, d GraphDescr) Status

	SetGraphStructure(h Handle, d GraphDescr, topology Topology, topologyType TopologyType) Status
	GetGraphStructure(h Handle, d GraphDescr) (TopologyType, Status)

	AllocateVertexData(h Handle, d GraphDescr, types []CudaDataType) Status
	AllocateEdgeData(h Handle, d GraphDescr, types []CudaDataType) Status

	// The data pointers address host memory holding exactly one element per
	// vertex (or edge) of the bound topology, in the slot's declared type.
	SetVertexData(h Handle, d GraphDescr, data unsafe.Pointer, setnum int) Status
	GetVertexData(h Handle, d GraphDescr, data unsafe.Pointer, setnum int) Status
	SetEdgeData(h Handle, d GraphDescr, data unsafe.Pointer, setnum int) Status
	GetEdgeData(h Handle, d GraphDescr, data unsafe.Pointer, setnum int) Status

	Sssp(h Handle, d GraphDescr, weightIndex int, source int32, ssspIndex int) Status
	WidestPath(h Handle, d GraphDescr, weightIndex int, source int32, widestPathIndex int) Status

	StatusString(s Status) string
}
