package graphiti

import (
	"sync"
	"unsafe"

	"github.com/daniel-j-h/graphiti/pkg/nvgraph"
	"github.com/daniel-j-h/graphiti/pkg/nvgraph/fallback"
)

// recordingEngine wraps the fallback engine, records every call by its
// native name and can be told to fail specific calls.
type recordingEngine struct {
	nvgraph.Engine

	mu    sync.Mutex
	calls []string
	fail  map[string]nvgraph.Status
}

func newRecordingEngine() *recordingEngine {
	return &recordingEngine{
		Engine: fallback.NewEngine(),
		fail:   make(map[string]nvgraph.Status),
	}
}

func (e *recordingEngine) failWith(call string, status nvgraph.Status) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.fail[call] = status
}

func (e *recordingEngine) Calls() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.calls...)
}

func (e *recordingEngine) called(call string) bool {
	for _, c := range e.Calls() {
		if c == call {
			return true
		}
	}
	return false
}

// record returns the injected status for call, if any.
func (e *recordingEngine) record(call string) (nvgraph.Status, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls = append(e.calls, call)
	status, ok := e.fail[call]
	return status, ok
}

func (e *recordingEngine) GetProperty(prop nvgraph.LibraryProperty) (int, nvgraph.Status) {
	if status, ok := e.record("nvgraphGetProperty"); ok {
		return 0, status
	}
	return e.Engine.GetProperty(prop)
}

func (e *recordingEngine) Create() (nvgraph.Handle, nvgraph.Status) {
	if status, ok := e.record("nvgraphCreate"); ok {
		return 0, status
	}
	return e.Engine.Create()
}

func (e *recordingEngine) Destroy(h nvgraph.Handle) nvgraph.Status {
	if status, ok := e.record("nvgraphDestroy"); ok {
		return status
	}
	return e.Engine.Destroy(h)
}

func (e *recordingEngine) CreateGraphDescr(h nvgraph.Handle) (nvgraph.GraphDescr, nvgraph.Status) {
	if status, ok := e.record("nvgraphCreateGraphDescr"); ok {
		return 0, status
	}
	return e.Engine.CreateGraphDescr(h)
}

func (e *recordingEngine) DestroyGraphDescr(h nvgraph.Handle, d nvgraph.GraphDescr) nvgraph.Status {
	if status, ok := e.record("nvgraphDestroyGraphDescr"); ok {
		return status
	}
	return e.Engine.DestroyGraphDescr(h, d)
}

func (e *recordingEngine) SetGraphStructure(h nvgraph.Handle, d nvgraph.GraphDescr, topology nvgraph.Topology, topologyType nvgraph.TopologyType) nvgraph.Status {
	if status, ok := e.record("nvgraphSetGraphStructure"); ok {
		return status
	}
	return e.Engine.SetGraphStructure(h, d, topology, topologyType)
}

func (e *recordingEngine) GetGraphStructure(h nvgraph.Handle, d nvgraph.GraphDescr) (nvgraph.TopologyType, nvgraph.Status) {
	if status, ok := e.record("nvgraphGetGraphStructure"); ok {
		return 0, status
	}
	return e.Engine.GetGraphStructure(h, d)
}

func (e *recordingEngine) AllocateVertexData(h nvgraph.Handle, d nvgraph.GraphDescr, types []nvgraph.CudaDataType) nvgraph.Status {
	if status, ok := e.record("nvgraphAllocateVertexData"); ok {
		return status
	}
	return e.Engine.AllocateVertexData(h, d, types)
}

func (e *recordingEngine) AllocateEdgeData(h nvgraph.Handle, d nvgraph.GraphDescr, types []nvgraph.CudaDataType) nvgraph.Status {
	if status, ok := e.record("nvgraphAllocateEdgeData"); ok {
		return status
	}
	return e.Engine.AllocateEdgeData(h, d, types)
}

func (e *recordingEngine) SetVertexData(h nvgraph.Handle, d nvgraph.GraphDescr, data unsafe.Pointer, setnum int) nvgraph.Status {
	if status, ok := e.record("nvgraphSetVertexData"); ok {
		return status
	}
	return e.Engine.SetVertexData(h, d, data, setnum)
}

func (e *recordingEngine) GetVertexData(h nvgraph.Handle, d nvgraph.GraphDescr, data unsafe.Pointer, setnum int) nvgraph.Status {
	if status, ok := e.record("nvgraphGetVertexData"); ok {
		return status
	}
	return e.Engine.GetVertexData(h, d, data, setnum)
}

func (e *recordingEngine) SetEdgeData(h nvgraph.Handle, d nvgraph.GraphDescr, data unsafe.Pointer, setnum int) nvgraph.Status {
	if status, ok := e.record("nvgraphSetEdgeData"); ok {
		return status
	}
	return e.Engine.SetEdgeData(h, d, data, setnum)
}

func (e *recordingEngine) GetEdgeData(h nvgraph.Handle, d nvgraph.GraphDescr, data unsafe.Pointer, setnum int) nvgraph.Status {
	if status, ok := e.record("nvgraphGetEdgeData"); ok {
		return status
	}
	return e.Engine.GetEdgeData(h, d, data, setnum)
}

func (e *recordingEngine) Sssp(h nvgraph.Handle, d nvgraph.GraphDescr, weightIndex int, source int32, ssspIndex int) nvgraph.Status {
	if status, ok := e.record("nvgraphSssp"); ok {
		return status
	}
	return e.Engine.Sssp(h, d, weightIndex, source, ssspIndex)
}

func (e *recordingEngine) WidestPath(h nvgraph.Handle, d nvgraph.GraphDescr, weightIndex int, source int32, widestPathIndex int) nvgraph.Status {
	if status, ok := e.record("nvgraphWidestPath"); ok {
		return status
	}
	return e.Engine.WidestPath(h, d, weightIndex, source, widestPathIndex)
}
