// Package fallback is a host-memory implementation of nvgraph.Engine.
//
// It keeps every "device" buffer in Go memory and runs traversals on the CPU.
// It is used when the native library is not available, and by tests.
package fallback

import (
	"sync"
	"unsafe"

	"github.com/daniel-j-h/graphiti/pkg/nvgraph"
)

// Version is reported through GetProperty.
type Version struct {
	Major, Minor, Patch int
}

var DefaultVersion = Version{Major: 10, Minor: 2, Patch: 0}

type Engine struct {
	mu      sync.Mutex
	version Version
	next    uintptr
	handles map[nvgraph.Handle]*context
}

var _ nvgraph.Engine = (*Engine)(nil)

type context struct {
	graphs map[nvgraph.GraphDescr]*graph
}

type graph struct {
	topologyType nvgraph.TopologyType
	bound        bool
	nvertices    int
	nedges       int
	// offsets and indices are private copies of the bound topology.
	offsets []int32
	indices []int32

	vertexData []*slot
	edgeData   []*slot
}

type slot struct {
	dataType nvgraph.CudaDataType
	data     []byte
}

func NewEngine() *Engine {
	return NewEngineWithVersion(DefaultVersion)
}

func NewEngineWithVersion(version Version) *Engine {
	return &Engine{
		version: version,
		handles: make(map[nvgraph.Handle]*context),
	}
}

func (e *Engine) Name() string {
	return "fallback"
}

func (e *Engine) GetProperty(prop nvgraph.LibraryProperty) (int, nvgraph.Status) {
	switch prop {
	case nvgraph.MajorVersion:
		return e.version.Major, nvgraph.StatusSuccess
	case nvgraph.MinorVersion:
		return e.version.Minor, nvgraph.StatusSuccess
	case nvgraph.PatchLevel:
		return e.version.Patch, nvgraph.StatusSuccess
	}
	return 0, nvgraph.StatusInvalidValue
}

func (e *Engine) Create() (nvgraph.Handle, nvgraph.Status) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.next++
	h := nvgraph.Handle(e.next)
	e.handles[h] = &context{graphs: make(map[nvgraph.GraphDescr]*graph)}
	return h, nvgraph.StatusSuccess
}

// Destroy releases the context and every descriptor still attached to it.
func (e *Engine) Destroy(h nvgraph.Handle) nvgraph.Status {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.handles[h]; !ok {
		return nvgraph.StatusNotInitialized
	}
	delete(e.handles, h)
	return nvgraph.StatusSuccess
}

func (e *Engine) CreateGraphDescr(h nvgraph.Handle) (nvgraph.GraphDescr, nvgraph.Status) {
	e.mu.Lock()
	defer e.mu.Unlock()

	ctx, ok := e.handles[h]
	if !ok {
		return 0, nvgraph.StatusNotInitialized
	}
	e.next++
	d := nvgraph.GraphDescr(e.next)
	ctx.graphs[d] = &graph{}
	return d, nvgraph.StatusSuccess
}

func (e *Engine) DestroyGraphDescr(h nvgraph.Handle, d nvgraph.GraphDescr) nvgraph.Status {
	e.mu.Lock()
	defer e.mu.Unlock()

	ctx, ok := e.handles[h]
	if !ok {
		return nvgraph.StatusNotInitialized
	}
	if _, ok := ctx.graphs[d]; !ok {
		return nvgraph.StatusInvalidValue
	}
	delete(ctx.graphs, d)
	return nvgraph.StatusSuccess
}

// lookup must be called with e.mu held.
func (e *Engine) lookup(h nvgraph.Handle, d nvgraph.GraphDescr) (*graph, nvgraph.Status) {
	ctx, ok := e.handles[h]
	if !ok {
		return nil, nvgraph.StatusNotInitialized
	}
	g, ok := ctx.graphs[d]
	if !ok {
		return nil, nvgraph.StatusInvalidValue
	}
	return g, nvgraph.StatusSuccess
}

func (e *Engine) SetGraphStructure(h nvgraph.Handle, d nvgraph.GraphDescr, topology nvgraph.Topology, topologyType nvgraph.TopologyType) nvgraph.Status {
	e.mu.Lock()
	defer e.mu.Unlock()

	g, status := e.lookup(h, d)
	if status != nvgraph.StatusSuccess {
		return status
	}
	if g.bound {
		return nvgraph.StatusInvalidValue
	}

	var nvertices, nedges int32
	var offsets, indices []int32
	switch topologyType {
	case nvgraph.CSR32:
		t, ok := topology.(*nvgraph.CSRTopology32I)
		if !ok {
			return nvgraph.StatusInvalidValue
		}
		nvertices, nedges, offsets, indices = t.NVertices, t.NEdges, t.SourceOffsets, t.DestinationIndices
	case nvgraph.CSC32:
		t, ok := topology.(*nvgraph.CSCTopology32I)
		if !ok {
			return nvgraph.StatusInvalidValue
		}
		nvertices, nedges, offsets, indices = t.NVertices, t.NEdges, t.DestinationOffsets, t.SourceIndices
	default:
		return nvgraph.StatusGraphTypeNotSupported
	}

	if !validCompressed(nvertices, nedges, offsets, indices) {
		return nvgraph.StatusInvalidValue
	}

	g.topologyType = topologyType
	g.bound = true
	g.nvertices = int(nvertices)
	g.nedges = int(nedges)
	g.offsets = append([]int32(nil), offsets...)
	g.indices = append([]int32(nil), indices...)
	return nvgraph.StatusSuccess
}

func validCompressed(nvertices, nedges int32, offsets, indices []int32) bool {
	if nvertices < 0 || nedges < 0 {
		return false
	}
	if len(offsets) != int(nvertices)+1 || len(indices) != int(nedges) {
		return false
	}
	if offsets[0] != 0 || offsets[nvertices] != nedges {
		return false
	}
	for i := 1; i < len(offsets); i++ {
		if offsets[i] < offsets[i-1] {
			return false
		}
	}
	for _, index := range indices {
		if index < 0 || index >= nvertices {
			return false
		}
	}
	return true
}

func (e *Engine) GetGraphStructure(h nvgraph.Handle, d nvgraph.GraphDescr) (nvgraph.TopologyType, nvgraph.Status) {
	e.mu.Lock()
	defer e.mu.Unlock()

	g, status := e.lookup(h, d)
	if status != nvgraph.StatusSuccess {
		return 0, status
	}
	if !g.bound {
		return 0, nvgraph.StatusInvalidValue
	}
	return g.topologyType, nvgraph.StatusSuccess
}

func newSlots(types []nvgraph.CudaDataType, n int) ([]*slot, nvgraph.Status) {
	slots := make([]*slot, len(types))
	for i, t := range types {
		size := t.Size()
		if size == 0 {
			return nil, nvgraph.StatusTypeNotSupported
		}
		slots[i] = &slot{dataType: t, data: make([]byte, n*size)}
	}
	return slots, nvgraph.StatusSuccess
}

func (e *Engine) AllocateVertexData(h nvgraph.Handle, d nvgraph.GraphDescr, types []nvgraph.CudaDataType) nvgraph.Status {
	e.mu.Lock()
	defer e.mu.Unlock()

	g, status := e.lookup(h, d)
	if status != nvgraph.StatusSuccess {
		return status
	}
	if !g.bound {
		return nvgraph.StatusInvalidValue
	}
	slots, status := newSlots(types, g.nvertices)
	if status != nvgraph.StatusSuccess {
		return status
	}
	g.vertexData = slots
	return nvgraph.StatusSuccess
}

func (e *Engine) AllocateEdgeData(h nvgraph.Handle, d nvgraph.GraphDescr, types []nvgraph.CudaDataType) nvgraph.Status {
	e.mu.Lock()
	defer e.mu.Unlock()

	g, status := e.lookup(h, d)
	if status != nvgraph.StatusSuccess {
		return status
	}
	if !g.bound {
		return nvgraph.StatusInvalidValue
	}
	slots, status := newSlots(types, g.nedges)
	if status != nvgraph.StatusSuccess {
		return status
	}
	g.edgeData = slots
	return nvgraph.StatusSuccess
}

type direction int

const (
	hostToDevice direction = iota
	deviceToHost
)

func (e *Engine) transfer(h nvgraph.Handle, d nvgraph.GraphDescr, edges bool, dir direction, data unsafe.Pointer, setnum int) nvgraph.Status {
	e.mu.Lock()
	defer e.mu.Unlock()

	g, status := e.lookup(h, d)
	if status != nvgraph.StatusSuccess {
		return status
	}
	slots := g.vertexData
	if edges {
		slots = g.edgeData
	}
	if setnum < 0 || setnum >= len(slots) {
		return nvgraph.StatusInvalidValue
	}
	s := slots[setnum]
	if len(s.data) == 0 {
		return nvgraph.StatusSuccess
	}
	if data == nil {
		return nvgraph.StatusInvalidValue
	}

	host := unsafe.Slice((*byte)(data), len(s.data))
	if dir == hostToDevice {
		copy(s.data, host)
	} else {
		copy(host, s.data)
	}
	return nvgraph.StatusSuccess
}

func (e *Engine) SetVertexData(h nvgraph.Handle, d nvgraph.GraphDescr, data unsafe.Pointer, setnum int) nvgraph.Status {
	return e.transfer(h, d, false, hostToDevice, data, setnum)
}

func (e *Engine) GetVertexData(h nvgraph.Handle, d nvgraph.GraphDescr, data unsafe.Pointer, setnum int) nvgraph.Status {
	return e.transfer(h, d, false, deviceToHost, data, setnum)
}

func (e *Engine) SetEdgeData(h nvgraph.Handle, d nvgraph.GraphDescr, data unsafe.Pointer, setnum int) nvgraph.Status {
	return e.transfer(h, d, true, hostToDevice, data, setnum)
}

func (e *Engine) GetEdgeData(h nvgraph.Handle, d nvgraph.GraphDescr, data unsafe.Pointer, setnum int) nvgraph.Status {
	return e.transfer(h, d, true, deviceToHost, data, setnum)
}

var statusStrings = map[nvgraph.Status]string{
	nvgraph.StatusSuccess:               "Success",
	nvgraph.StatusNotInitialized:        "nvGRAPH not initialized",
	nvgraph.StatusAllocFailed:           "nvGRAPH alloc failed",
	nvgraph.StatusInvalidValue:          "nvGRAPH invalid value",
	nvgraph.StatusArchMismatch:          "nvGRAPH arch mismatch",
	nvgraph.StatusMappingError:          "nvGRAPH mapping error",
	nvgraph.StatusExecutionFailed:       "nvGRAPH execution failed",
	nvgraph.StatusInternalError:         "nvGRAPH internal error",
	nvgraph.StatusTypeNotSupported:      "nvGRAPH type not supported",
	nvgraph.StatusNotConverged:          "nvGRAPH algorithm failed to converge",
	nvgraph.StatusGraphTypeNotSupported: "nvGRAPH graph type not supported",
}

func (e *Engine) StatusString(s nvgraph.Status) string {
	if msg, ok := statusStrings[s]; ok {
		return msg
	}
	return "Unknown nvGRAPH Status"
}
