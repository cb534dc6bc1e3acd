//go:build nvgraph && cgo

package nvgraph

// #cgo LDFLAGS: -ldl
// #include <dlfcn.h>
// #include <stdlib.h>
//
// typedef void* nvg_handle;
// typedef void* nvg_descr;
//
// struct nvg_csr_topology {
//   int nvertices;
//   int nedges;
//   int *source_offsets;
//   int *destination_indices;
// };
//
// struct nvg_csc_topology {
//   int nvertices;
//   int nedges;
//   int *destination_offsets;
//   int *source_indices;
// };
//
// enum {
//   NVG_GET_PROPERTY,
//   NVG_CREATE,
//   NVG_DESTROY,
//   NVG_CREATE_DESCR,
//   NVG_DESTROY_DESCR,
//   NVG_SET_STRUCTURE,
//   NVG_GET_STRUCTURE,
//   NVG_ALLOC_VERTEX,
//   NVG_ALLOC_EDGE,
//   NVG_SET_VERTEX,
//   NVG_GET_VERTEX,
//   NVG_SET_EDGE,
//   NVG_GET_EDGE,
//   NVG_SSSP,
//   NVG_WIDEST_PATH,
//   NVG_STATUS_STRING,
//   NVG_NUM_SYMBOLS
// };
//
// static const char *nvg_symbol_names[NVG_NUM_SYMBOLS] = {
//   "nvgraphGetProperty",
//   "nvgraphCreate",
//   "nvgraphDestroy",
//   "nvgraphCreateGraphDescr",
//   "nvgraphDestroyGraphDescr",
//   "nvgraphSetGraphStructure",
//   "nvgraphGetGraphStructure",
//   "nvgraphAllocateVertexData",
//   "nvgraphAllocateEdgeData",
//   "nvgraphSetVertexData",
//   "nvgraphGetVertexData",
//   "nvgraphSetEdgeData",
//   "nvgraphGetEdgeData",
//   "nvgraphSssp",
//   "nvgraphWidestPath",
//   "nvgraphStatusGetString",
// };
//
// static void *nvg_symbols[NVG_NUM_SYMBOLS];
//
// // Returns NULL on success, otherwise a description of what failed.
// static const char *nvg_load(const char *path) {
//   void *lib = dlopen(path, RTLD_NOW | RTLD_LOCAL);
//   if (lib == NULL) {
//     return dlerror();
//   }
//   for (int i = 0; i < NVG_NUM_SYMBOLS; i++) {
//     nvg_symbols[i] = dlsym(lib, nvg_symbol_names[i]);
//     if (nvg_symbols[i] == NULL) {
//       return nvg_symbol_names[i];
//     }
//   }
//   return NULL;
// }
//
// static int nvg_get_property(int prop, int *value) {
//   return ((int (*)(int, int *))nvg_symbols[NVG_GET_PROPERTY])(prop, value);
// }
// static int nvg_create(nvg_handle *h) {
//   return ((int (*)(nvg_handle *))nvg_symbols[NVG_CREATE])(h);
// }
// static int nvg_destroy(nvg_handle h) {
//   return ((int (*)(nvg_handle))nvg_symbols[NVG_DESTROY])(h);
// }
// static int nvg_create_descr(nvg_handle h, nvg_descr *d) {
//   return ((int (*)(nvg_handle, nvg_descr *))nvg_symbols[NVG_CREATE_DESCR])(h, d);
// }
// static int nvg_destroy_descr(nvg_handle h, nvg_descr d) {
//   return ((int (*)(nvg_handle, nvg_descr))nvg_symbols[NVG_DESTROY_DESCR])(h, d);
// }
// static int nvg_set_structure(nvg_handle h, nvg_descr d, void *topology, int type) {
//   return ((int (*)(nvg_handle, nvg_descr, void *, int))nvg_symbols[NVG_SET_STRUCTURE])(h, d, topology, type);
// }
// static int nvg_get_structure(nvg_handle h, nvg_descr d, void *topology, int *type) {
//   return ((int (*)(nvg_handle, nvg_descr, void *, int *))nvg_symbols[NVG_GET_STRUCTURE])(h, d, topology, type);
// }
// static int nvg_alloc_vertex(nvg_handle h, nvg_descr d, size_t n, int *types) {
//   return ((int (*)(nvg_handle, nvg_descr, size_t, int *))nvg_symbols[NVG_ALLOC_VERTEX])(h, d, n, types);
// }
// static int nvg_alloc_edge(nvg_handle h, nvg_descr d, size_t n, int *types) {
//   return ((int (*)(nvg_handle, nvg_descr, size_t, int *))nvg_symbols[NVG_ALLOC_EDGE])(h, d, n, types);
// }
// static int nvg_data(int which, nvg_handle h, nvg_descr d, void *data, size_t setnum) {
//   return ((int (*)(nvg_handle, nvg_descr, void *, size_t))nvg_symbols[which])(h, d, data, setnum);
// }
// static int nvg_traverse(int which, nvg_handle h, nvg_descr d, size_t weight_index, int source, size_t out_index) {
//   return ((int (*)(nvg_handle, nvg_descr, size_t, const int *, size_t))nvg_symbols[which])(h, d, weight_index, &source, out_index);
// }
// static const char *nvg_status_string(int status) {
//   return ((const char *(*)(int))nvg_symbols[NVG_STATUS_STRING])(status);
// }
import "C"

import (
	"fmt"
	"sync"
	"unsafe"
)

func loadNative(path string) (Engine, error) {
	path_cstr := C.CString(path)
	defer C.free(unsafe.Pointer(path_cstr))

	if msg := C.nvg_load(path_cstr); msg != nil {
		return nil, fmt.Errorf("%w: loading %q: %s", ErrLibraryUnavailable, path, C.GoString(msg))
	}
	return &nativeEngine{
		handles: make(map[Handle]C.nvg_handle),
		descrs:  make(map[GraphDescr]C.nvg_descr),
	}, nil
}

// nativeEngine maps the opaque Go tokens onto the pointers the library hands
// out, so that a stale token is reported instead of dereferenced.
type nativeEngine struct {
	mu      sync.Mutex
	next    uintptr
	handles map[Handle]C.nvg_handle
	descrs  map[GraphDescr]C.nvg_descr
}

var _ Engine = (*nativeEngine)(nil)

func (e *nativeEngine) Name() string {
	return "native"
}

func (e *nativeEngine) handle(h Handle) (C.nvg_handle, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	p, ok := e.handles[h]
	return p, ok
}

func (e *nativeEngine) handleAndDescr(h Handle, d GraphDescr) (C.nvg_handle, C.nvg_descr, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	hp, ok := e.handles[h]
	if !ok {
		return nil, nil, false
	}
	dp, ok := e.descrs[d]
	if !ok {
		return nil, nil, false
	}
	return hp, dp, true
}

func (e *nativeEngine) GetProperty(prop LibraryProperty) (int, Status) {
	var value C.int
	status := Status(C.nvg_get_property(C.int(prop), &value))
	return int(value), status
}

func (e *nativeEngine) Create() (Handle, Status) {
	var p C.nvg_handle
	status := Status(C.nvg_create(&p))
	if status != StatusSuccess {
		return 0, status
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.next++
	h := Handle(e.next)
	e.handles[h] = p
	return h, status
}

func (e *nativeEngine) Destroy(h Handle) Status {
	p, ok := e.handle(h)
	if !ok {
		return StatusNotInitialized
	}
	status := Status(C.nvg_destroy(p))
	if status == StatusSuccess {
		e.mu.Lock()
		delete(e.handles, h)
		e.mu.Unlock()
	}
	return status
}

func (e *nativeEngine) CreateGraphDescr(h Handle) (GraphDescr, Status) {
	hp, ok := e.handle(h)
	if !ok {
		return 0, StatusNotInitialized
	}
	var p C.nvg_descr
	status := Status(C.nvg_create_descr(hp, &p))
	if status != StatusSuccess {
		return 0, status
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.next++
	d := GraphDescr(e.next)
	e.descrs[d] = p
	return d, status
}

func (e *nativeEngine) DestroyGraphDescr(h Handle, d GraphDescr) Status {
	hp, dp, ok := e.handleAndDescr(h, d)
	if !ok {
		return StatusNotInitialized
	}
	status := Status(C.nvg_destroy_descr(hp, dp))
	if status == StatusSuccess {
		e.mu.Lock()
		delete(e.descrs, d)
		e.mu.Unlock()
	}
	return status
}

// copyInt32s copies values into C memory; topology structs handed to the
// library may not point into the Go heap.
func copyInt32s(values []int32) *C.int {
	if len(values) == 0 {
		return nil
	}
	p := (*C.int)(C.malloc(C.size_t(len(values)) * C.size_t(unsafe.Sizeof(C.int(0)))))
	copy(unsafe.Slice((*int32)(unsafe.Pointer(p)), len(values)), values)
	return p
}

func (e *nativeEngine) SetGraphStructure(h Handle, d GraphDescr, topology Topology, topologyType TopologyType) Status {
	hp, dp, ok := e.handleAndDescr(h, d)
	if !ok {
		return StatusNotInitialized
	}

	switch topologyType {
	case CSR32:
		t, ok := topology.(*CSRTopology32I)
		if !ok {
			return StatusInvalidValue
		}
		c := (*C.struct_nvg_csr_topology)(C.malloc(C.size_t(unsafe.Sizeof(C.struct_nvg_csr_topology{}))))
		defer C.free(unsafe.Pointer(c))
		c.nvertices = C.int(t.NVertices)
		c.nedges = C.int(t.NEdges)
		c.source_offsets = copyInt32s(t.SourceOffsets)
		defer C.free(unsafe.Pointer(c.source_offsets))
		c.destination_indices = copyInt32s(t.DestinationIndices)
		defer C.free(unsafe.Pointer(c.destination_indices))
		return Status(C.nvg_set_structure(hp, dp, unsafe.Pointer(c), C.int(topologyType)))

	case CSC32:
		t, ok := topology.(*CSCTopology32I)
		if !ok {
			return StatusInvalidValue
		}
		c := (*C.struct_nvg_csc_topology)(C.malloc(C.size_t(unsafe.Sizeof(C.struct_nvg_csc_topology{}))))
		defer C.free(unsafe.Pointer(c))
		c.nvertices = C.int(t.NVertices)
		c.nedges = C.int(t.NEdges)
		c.destination_offsets = copyInt32s(t.DestinationOffsets)
		defer C.free(unsafe.Pointer(c.destination_offsets))
		c.source_indices = copyInt32s(t.SourceIndices)
		defer C.free(unsafe.Pointer(c.source_indices))
		return Status(C.nvg_set_structure(hp, dp, unsafe.Pointer(c), C.int(topologyType)))

	default:
		return StatusGraphTypeNotSupported
	}
}

func (e *nativeEngine) GetGraphStructure(h Handle, d GraphDescr) (TopologyType, Status) {
	hp, dp, ok := e.handleAndDescr(h, d)
	if !ok {
		return 0, StatusNotInitialized
	}
	var t C.int
	status := Status(C.nvg_get_structure(hp, dp, nil, &t))
	return TopologyType(t), status
}

func (e *nativeEngine) allocate(which string, h Handle, d GraphDescr, types []CudaDataType) Status {
	hp, dp, ok := e.handleAndDescr(h, d)
	if !ok {
		return StatusNotInitialized
	}
	var p *C.int
	if len(types) != 0 {
		p = (*C.int)(unsafe.Pointer(unsafe.SliceData(types)))
	}
	if which == "vertex" {
		return Status(C.nvg_alloc_vertex(hp, dp, C.size_t(len(types)), p))
	}
	return Status(C.nvg_alloc_edge(hp, dp, C.size_t(len(types)), p))
}

func (e *nativeEngine) AllocateVertexData(h Handle, d GraphDescr, types []CudaDataType) Status {
	return e.allocate("vertex", h, d, types)
}

func (e *nativeEngine) AllocateEdgeData(h Handle, d GraphDescr, types []CudaDataType) Status {
	return e.allocate("edge", h, d, types)
}

func (e *nativeEngine) data(which C.int, h Handle, d GraphDescr, data unsafe.Pointer, setnum int) Status {
	hp, dp, ok := e.handleAndDescr(h, d)
	if !ok {
		return StatusNotInitialized
	}
	return Status(C.nvg_data(which, hp, dp, data, C.size_t(setnum)))
}

func (e *nativeEngine) SetVertexData(h Handle, d GraphDescr, data unsafe.Pointer, setnum int) Status {
	return e.data(C.NVG_SET_VERTEX, h, d, data, setnum)
}

func (e *nativeEngine) GetVertexData(h Handle, d GraphDescr, data unsafe.Pointer, setnum int) Status {
	return e.data(C.NVG_GET_VERTEX, h, d, data, setnum)
}

func (e *nativeEngine) SetEdgeData(h Handle, d GraphDescr, data unsafe.Pointer, setnum int) Status {
	return e.data(C.NVG_SET_EDGE, h, d, data, setnum)
}

func (e *nativeEngine) GetEdgeData(h Handle, d GraphDescr, data unsafe.Pointer, setnum int) Status {
	return e.data(C.NVG_GET_EDGE, h, d, data, setnum)
}

func (e *nativeEngine) traverse(which C.int, h Handle, d GraphDescr, weightIndex int, source int32, outIndex int) Status {
	hp, dp, ok := e.handleAndDescr(h, d)
	if !ok {
		return StatusNotInitialized
	}
	return Status(C.nvg_traverse(which, hp, dp, C.size_t(weightIndex), C.int(source), C.size_t(outIndex)))
}

func (e *nativeEngine) Sssp(h Handle, d GraphDescr, weightIndex int, source int32, ssspIndex int) Status {
	return e.traverse(C.NVG_SSSP, h, d, weightIndex, source, ssspIndex)
}

func (e *nativeEngine) WidestPath(h Handle, d GraphDescr, weightIndex int, source int32, widestPathIndex int) Status {
	return e.traverse(C.NVG_WIDEST_PATH, h, d, weightIndex, source, widestPathIndex)
}

func (e *nativeEngine) StatusString(s Status) string {
	msg := C.nvg_status_string(C.int(s))
	if msg == nil {
		return s.String()
	}
	return C.GoString(msg)
}
