package fallback

import (
	"math"
	"testing"
	"unsafe"

	"github.com/daniel-j-h/graphiti/pkg/nvgraph"
)

// exampleCSC is the adjacency matrix [[0,1,0],[1,0,1],[1,0,0]] in CSC form.
func exampleCSC() *nvgraph.CSCTopology32I {
	return &nvgraph.CSCTopology32I{
		NVertices:          3,
		NEdges:             4,
		DestinationOffsets: []int32{0, 2, 3, 4},
		SourceIndices:      []int32{1, 2, 0, 1},
	}
}

func newGraph(t *testing.T, e *Engine, topology nvgraph.Topology, dataType nvgraph.CudaDataType) (nvgraph.Handle, nvgraph.GraphDescr) {
	t.Helper()

	h, status := e.Create()
	if status != nvgraph.StatusSuccess {
		t.Fatalf("Create: %v", status)
	}
	d, status := e.CreateGraphDescr(h)
	if status != nvgraph.StatusSuccess {
		t.Fatalf("CreateGraphDescr: %v", status)
	}
	if status := e.SetGraphStructure(h, d, topology, topology.TopologyType()); status != nvgraph.StatusSuccess {
		t.Fatalf("SetGraphStructure: %v", status)
	}
	if status := e.AllocateVertexData(h, d, []nvgraph.CudaDataType{dataType}); status != nvgraph.StatusSuccess {
		t.Fatalf("AllocateVertexData: %v", status)
	}
	if status := e.AllocateEdgeData(h, d, []nvgraph.CudaDataType{dataType}); status != nvgraph.StatusSuccess {
		t.Fatalf("AllocateEdgeData: %v", status)
	}
	return h, d
}

func TestSsspCSC(t *testing.T) {
	e := NewEngine()
	h, d := newGraph(t, e, exampleCSC(), nvgraph.CUDA_R_32F)

	weights := []float32{1, 1, 1, 1}
	if status := e.SetEdgeData(h, d, unsafe.Pointer(&weights[0]), 0); status != nvgraph.StatusSuccess {
		t.Fatalf("SetEdgeData: %v", status)
	}
	if status := e.Sssp(h, d, 0, 1, 0); status != nvgraph.StatusSuccess {
		t.Fatalf("Sssp: %v", status)
	}

	distances := make([]float32, 3)
	if status := e.GetVertexData(h, d, unsafe.Pointer(&distances[0]), 0); status != nvgraph.StatusSuccess {
		t.Fatalf("GetVertexData: %v", status)
	}
	expected := []float32{1, 0, 1}
	for i := range expected {
		if distances[i] != expected[i] {
			t.Errorf("expected %v, got %v", expected, distances)
			break
		}
	}
}

func TestSsspUnreachable(t *testing.T) {
	e := NewEngine()
	// 0 -> 1, vertex 2 is isolated.
	topology := &nvgraph.CSRTopology32I{
		NVertices:          3,
		NEdges:             1,
		SourceOffsets:      []int32{0, 1, 1, 1},
		DestinationIndices: []int32{1},
	}
	h, d := newGraph(t, e, topology, nvgraph.CUDA_R_64F)

	weights := []float64{2.5}
	if status := e.SetEdgeData(h, d, unsafe.Pointer(&weights[0]), 0); status != nvgraph.StatusSuccess {
		t.Fatalf("SetEdgeData: %v", status)
	}
	if status := e.Sssp(h, d, 0, 0, 0); status != nvgraph.StatusSuccess {
		t.Fatalf("Sssp: %v", status)
	}

	distances := make([]float64, 3)
	if status := e.GetVertexData(h, d, unsafe.Pointer(&distances[0]), 0); status != nvgraph.StatusSuccess {
		t.Fatalf("GetVertexData: %v", status)
	}
	if distances[0] != 0 || distances[1] != 2.5 || distances[2] != math.MaxFloat64 {
		t.Errorf("unexpected distances %v", distances)
	}
}

func TestWidestPath(t *testing.T) {
	e := NewEngine()
	// 0 -> 1 (5), 1 -> 2 (3), 0 -> 2 (1)
	topology := &nvgraph.CSRTopology32I{
		NVertices:          3,
		NEdges:             3,
		SourceOffsets:      []int32{0, 2, 3, 3},
		DestinationIndices: []int32{1, 2, 2},
	}
	h, d := newGraph(t, e, topology, nvgraph.CUDA_R_32F)

	capacities := []float32{5, 1, 3}
	if status := e.SetEdgeData(h, d, unsafe.Pointer(&capacities[0]), 0); status != nvgraph.StatusSuccess {
		t.Fatalf("SetEdgeData: %v", status)
	}
	if status := e.WidestPath(h, d, 0, 0, 0); status != nvgraph.StatusSuccess {
		t.Fatalf("WidestPath: %v", status)
	}

	widths := make([]float32, 3)
	if status := e.GetVertexData(h, d, unsafe.Pointer(&widths[0]), 0); status != nvgraph.StatusSuccess {
		t.Fatalf("GetVertexData: %v", status)
	}
	expected := []float32{math.MaxFloat32, 5, 3}
	for i := range expected {
		if widths[i] != expected[i] {
			t.Errorf("expected %v, got %v", expected, widths)
			break
		}
	}
}

func TestTraversalRejectsIntegerWeights(t *testing.T) {
	e := NewEngine()
	h, d := newGraph(t, e, exampleCSC(), nvgraph.CUDA_R_32I)

	if status := e.Sssp(h, d, 0, 0, 0); status != nvgraph.StatusTypeNotSupported {
		t.Errorf("expected %v, got %v", nvgraph.StatusTypeNotSupported, status)
	}
}

func TestSetGraphStructureValidates(t *testing.T) {
	e := NewEngine()
	h, _ := e.Create()
	d, _ := e.CreateGraphDescr(h)

	bad := &nvgraph.CSRTopology32I{
		NVertices:          2,
		NEdges:             1,
		SourceOffsets:      []int32{0, 1, 1},
		DestinationIndices: []int32{7},
	}
	if status := e.SetGraphStructure(h, d, bad, nvgraph.CSR32); status != nvgraph.StatusInvalidValue {
		t.Errorf("expected %v for out of range index, got %v", nvgraph.StatusInvalidValue, status)
	}
	if status := e.SetGraphStructure(h, d, exampleCSC(), nvgraph.CSR32); status != nvgraph.StatusInvalidValue {
		t.Errorf("expected %v for mismatched tag, got %v", nvgraph.StatusInvalidValue, status)
	}
	if status := e.SetGraphStructure(h, d, exampleCSC(), nvgraph.COO32); status != nvgraph.StatusGraphTypeNotSupported {
		t.Errorf("expected %v for COO, got %v", nvgraph.StatusGraphTypeNotSupported, status)
	}
	if _, status := e.GetGraphStructure(h, d); status != nvgraph.StatusInvalidValue {
		t.Errorf("expected %v before binding, got %v", nvgraph.StatusInvalidValue, status)
	}
}

func TestDestroyInvalidatesDescriptors(t *testing.T) {
	e := NewEngine()
	h, d := newGraph(t, e, exampleCSC(), nvgraph.CUDA_R_32F)

	if status := e.Destroy(h); status != nvgraph.StatusSuccess {
		t.Fatalf("Destroy: %v", status)
	}
	if status := e.DestroyGraphDescr(h, d); status != nvgraph.StatusNotInitialized {
		t.Errorf("expected %v, got %v", nvgraph.StatusNotInitialized, status)
	}
	if status := e.Destroy(h); status != nvgraph.StatusNotInitialized {
		t.Errorf("expected %v on double destroy, got %v", nvgraph.StatusNotInitialized, status)
	}
}

func TestGetProperty(t *testing.T) {
	e := NewEngineWithVersion(Version{Major: 1, Minor: 2, Patch: 3})
	for prop, want := range map[nvgraph.LibraryProperty]int{
		nvgraph.MajorVersion: 1,
		nvgraph.MinorVersion: 2,
		nvgraph.PatchLevel:   3,
	} {
		got, status := e.GetProperty(prop)
		if status != nvgraph.StatusSuccess || got != want {
			t.Errorf("GetProperty(%d) = %d, %v; want %d", prop, got, status, want)
		}
	}
}
