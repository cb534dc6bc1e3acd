package fallback

import (
	"container/heap"
	"encoding/binary"
	"math"

	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"

	"github.com/daniel-j-h/graphiti/pkg/nvgraph"
)

type edge struct {
	from, to int
	weight   float64
}

// edgeList expands the bound topology into (from, to) pairs in edge-index
// order, which is the order edge data is laid out in.
func (g *graph) edgeList(weights []float64) []edge {
	edges := make([]edge, 0, g.nedges)
	for v := 0; v < g.nvertices; v++ {
		for e := g.offsets[v]; e < g.offsets[v+1]; e++ {
			u := int(g.indices[e])
			var ed edge
			if g.topologyType == nvgraph.CSR32 {
				ed = edge{from: v, to: u}
			} else {
				ed = edge{from: u, to: v}
			}
			ed.weight = weights[e]
			edges = append(edges, ed)
		}
	}
	return edges
}

// traversalInputs validates the common preconditions of Sssp and WidestPath.
// Only real floating point slots can carry weights, as in the native engine.
func (e *Engine) traversalInputs(h nvgraph.Handle, d nvgraph.GraphDescr, weightIndex int, source int32, outIndex int) (*graph, []edge, *slot, nvgraph.Status) {
	g, status := e.lookup(h, d)
	if status != nvgraph.StatusSuccess {
		return nil, nil, nil, status
	}
	if !g.bound {
		return nil, nil, nil, nvgraph.StatusInvalidValue
	}
	if source < 0 || int(source) >= g.nvertices {
		return nil, nil, nil, nvgraph.StatusInvalidValue
	}
	if weightIndex < 0 || weightIndex >= len(g.edgeData) {
		return nil, nil, nil, nvgraph.StatusInvalidValue
	}
	if outIndex < 0 || outIndex >= len(g.vertexData) {
		return nil, nil, nil, nvgraph.StatusInvalidValue
	}

	weights := g.edgeData[weightIndex]
	out := g.vertexData[outIndex]
	if !isFloat(weights.dataType) || out.dataType != weights.dataType {
		return nil, nil, nil, nvgraph.StatusTypeNotSupported
	}

	return g, g.edgeList(decode(weights)), out, nvgraph.StatusSuccess
}

func isFloat(t nvgraph.CudaDataType) bool {
	return t == nvgraph.CUDA_R_32F || t == nvgraph.CUDA_R_64F
}

func (e *Engine) Sssp(h nvgraph.Handle, d nvgraph.GraphDescr, weightIndex int, source int32, ssspIndex int) nvgraph.Status {
	e.mu.Lock()
	defer e.mu.Unlock()

	g, edges, out, status := e.traversalInputs(h, d, weightIndex, source, ssspIndex)
	if status != nvgraph.StatusSuccess {
		return status
	}

	wg := simple.NewWeightedDirectedGraph(0, math.Inf(1))
	for v := 0; v < g.nvertices; v++ {
		wg.AddNode(simple.Node(v))
	}
	for _, ed := range edges {
		if math.IsNaN(ed.weight) || ed.weight < 0 {
			return nvgraph.StatusInvalidValue
		}
		// Self loops never shorten a path with non-negative weights.
		if ed.from == ed.to {
			continue
		}
		if existing := wg.WeightedEdge(int64(ed.from), int64(ed.to)); existing != nil && existing.Weight() <= ed.weight {
			continue
		}
		wg.SetWeightedEdge(wg.NewWeightedEdge(simple.Node(ed.from), simple.Node(ed.to), ed.weight))
	}

	shortest := path.DijkstraFrom(simple.Node(source), wg)

	distances := make([]float64, g.nvertices)
	for v := range distances {
		distances[v] = shortest.WeightTo(int64(v))
	}
	encode(out, distances)
	return nvgraph.StatusSuccess
}

func (e *Engine) WidestPath(h nvgraph.Handle, d nvgraph.GraphDescr, weightIndex int, source int32, widestPathIndex int) nvgraph.Status {
	e.mu.Lock()
	defer e.mu.Unlock()

	g, edges, out, status := e.traversalInputs(h, d, weightIndex, source, widestPathIndex)
	if status != nvgraph.StatusSuccess {
		return status
	}

	adjacency := make([][]edge, g.nvertices)
	for _, ed := range edges {
		if math.IsNaN(ed.weight) {
			return nvgraph.StatusInvalidValue
		}
		adjacency[ed.from] = append(adjacency[ed.from], ed)
	}

	widths := make([]float64, g.nvertices)
	for v := range widths {
		widths[v] = math.Inf(-1)
	}
	widths[source] = math.Inf(1)

	done := make([]bool, g.nvertices)
	queue := &widestQueue{{vertex: int(source), width: widths[source]}}
	for queue.Len() > 0 {
		item := heap.Pop(queue).(widestItem)
		if done[item.vertex] {
			continue
		}
		done[item.vertex] = true
		for _, ed := range adjacency[item.vertex] {
			width := math.Min(widths[item.vertex], ed.weight)
			if width > widths[ed.to] {
				widths[ed.to] = width
				heap.Push(queue, widestItem{vertex: ed.to, width: width})
			}
		}
	}

	encode(out, widths)
	return nvgraph.StatusSuccess
}

type widestItem struct {
	vertex int
	width  float64
}

// widestQueue is a max-heap on width.
type widestQueue []widestItem

func (q widestQueue) Len() int           { return len(q) }
func (q widestQueue) Less(i, j int) bool { return q[i].width > q[j].width }
func (q widestQueue) Swap(i, j int)      { q[i], q[j] = q[j], q[i] }
func (q *widestQueue) Push(x any)        { *q = append(*q, x.(widestItem)) }
func (q *widestQueue) Pop() any {
	old := *q
	item := old[len(old)-1]
	*q = old[:len(old)-1]
	return item
}

// decode reads a floating point slot. Slot memory is host byte order, which
// every platform the native engine ships on is little endian.
func decode(s *slot) []float64 {
	switch s.dataType {
	case nvgraph.CUDA_R_32F:
		values := make([]float64, len(s.data)/4)
		for i := range values {
			values[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(s.data[i*4:])))
		}
		return values
	case nvgraph.CUDA_R_64F:
		values := make([]float64, len(s.data)/8)
		for i := range values {
			values[i] = math.Float64frombits(binary.LittleEndian.Uint64(s.data[i*8:]))
		}
		return values
	}
	return nil
}

// encode writes values into a floating point slot, saturating infinities to
// the largest finite value of the slot type as the native engine does.
func encode(s *slot, values []float64) {
	switch s.dataType {
	case nvgraph.CUDA_R_32F:
		for i, v := range values {
			f := float32(math.Max(math.Min(v, math.MaxFloat32), -math.MaxFloat32))
			binary.LittleEndian.PutUint32(s.data[i*4:], math.Float32bits(f))
		}
	case nvgraph.CUDA_R_64F:
		for i, v := range values {
			f := math.Max(math.Min(v, math.MaxFloat64), -math.MaxFloat64)
			binary.LittleEndian.PutUint64(s.data[i*8:], math.Float64bits(f))
		}
	}
}
