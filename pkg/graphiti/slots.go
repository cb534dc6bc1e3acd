package graphiti

import (
	"runtime"
	"unsafe"

	"github.com/daniel-j-h/graphiti/pkg/nvgraph"
)

type role int

const (
	vertexRole role = iota
	edgeRole
)

func (r role) String() string {
	if r == edgeRole {
		return "edge"
	}
	return "vertex"
}

// AllocateVertexData reserves n vertex slots of the given kind, replacing any
// earlier vertex slots and their contents.
func (d *Descriptor) AllocateVertexData(kind Kind, n int) error {
	return d.allocate(vertexRole, kind, n)
}

// AllocateEdgeData reserves n edge slots of the given kind, replacing any
// earlier edge slots and their contents.
func (d *Descriptor) AllocateEdgeData(kind Kind, n int) error {
	return d.allocate(edgeRole, kind, n)
}

func (d *Descriptor) allocate(r role, kind Kind, n int) error {
	op := "allocating " + r.String() + " data"

	d.handle.mu.Lock()
	defer d.handle.mu.Unlock()

	if err := d.checkBound(op); err != nil {
		return err
	}
	if d.traversed {
		return usageErrorf(op, "slots cannot be reallocated after a traversal has run")
	}
	if n < 0 {
		return usageErrorf(op, "negative slot count %d", n)
	}
	dataType, err := kind.CudaDataType()
	if err != nil {
		return err
	}

	types := make([]nvgraph.CudaDataType, n)
	for i := range types {
		types[i] = dataType
	}

	native := "nvgraphAllocateVertexData"
	if r == edgeRole {
		native = "nvgraphAllocateEdgeData"
	}
	err = d.call(native, func(h nvgraph.Handle, g nvgraph.GraphDescr, engine nvgraph.Engine) nvgraph.Status {
		if r == edgeRole {
			return engine.AllocateEdgeData(h, g, types)
		}
		return engine.AllocateVertexData(h, g, types)
	})
	if err != nil {
		return err
	}

	kinds := make([]Kind, n)
	for i := range kinds {
		kinds[i] = kind
	}
	if r == edgeRole {
		d.edgeKinds = kinds
		d.edgeWritten = make([]bool, n)
	} else {
		d.vertexKinds = kinds
	}
	d.handle.log.V(2).Info("allocated slots", "descriptor", d.d, "role", r, "kind", kind, "count", n)
	return nil
}

// checkSlot must be called with d.handle.mu held. It validates the slot index,
// the element kind and the buffer length against the descriptor state.
func (d *Descriptor) checkSlot(op string, r role, slot int, kind Kind, n int) error {
	if err := d.checkBound(op); err != nil {
		return err
	}

	kinds, length := d.vertexKinds, d.nvertices
	if r == edgeRole {
		kinds, length = d.edgeKinds, d.nedges
	}
	if slot < 0 || slot >= len(kinds) {
		return usageErrorf(op, "%s slot %d out of range, %d allocated", r, slot, len(kinds))
	}
	if kinds[slot] != kind {
		return usageErrorf(op, "%s slot %d holds %v values, buffer holds %v", r, slot, kinds[slot], kind)
	}
	if n != length {
		return usageErrorf(op, "buffer has %d elements, graph has %d %ss", n, length, r)
	}
	return nil
}

func writeSlot[T Element](d *Descriptor, r role, slot int, data []T) error {
	op := "writing " + r.String() + " data"

	d.handle.mu.Lock()
	defer d.handle.mu.Unlock()

	if err := d.checkSlot(op, r, slot, KindOf[T](), len(data)); err != nil {
		return err
	}

	p := unsafe.Pointer(unsafe.SliceData(data))
	native := "nvgraphSetVertexData"
	if r == edgeRole {
		native = "nvgraphSetEdgeData"
	}
	err := d.call(native, func(h nvgraph.Handle, g nvgraph.GraphDescr, engine nvgraph.Engine) nvgraph.Status {
		if r == edgeRole {
			return engine.SetEdgeData(h, g, p, slot)
		}
		return engine.SetVertexData(h, g, p, slot)
	})
	runtime.KeepAlive(data)
	if err != nil {
		return err
	}

	if r == edgeRole {
		d.edgeWritten[slot] = true
	}
	return nil
}

func readSlot[T Element](d *Descriptor, r role, n int, slot int) ([]T, error) {
	op := "reading " + r.String() + " data"

	d.handle.mu.Lock()
	defer d.handle.mu.Unlock()

	if n < 0 {
		return nil, usageErrorf(op, "negative element count %d", n)
	}
	if err := d.checkSlot(op, r, slot, KindOf[T](), n); err != nil {
		return nil, err
	}

	out := make([]T, n)
	p := unsafe.Pointer(unsafe.SliceData(out))
	native := "nvgraphGetVertexData"
	if r == edgeRole {
		native = "nvgraphGetEdgeData"
	}
	err := d.call(native, func(h nvgraph.Handle, g nvgraph.GraphDescr, engine nvgraph.Engine) nvgraph.Status {
		if r == edgeRole {
			return engine.GetEdgeData(h, g, p, slot)
		}
		return engine.GetVertexData(h, g, p, slot)
	})
	runtime.KeepAlive(out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// WriteVertexData copies data, one element per vertex, into a vertex slot.
func WriteVertexData[T Element](d *Descriptor, slot int, data []T) error {
	return writeSlot(d, vertexRole, slot, data)
}

// WriteEdgeData copies data, one element per edge in topology order, into an
// edge slot.
func WriteEdgeData[T Element](d *Descriptor, slot int, data []T) error {
	return writeSlot(d, edgeRole, slot, data)
}

// ReadVertexData copies n elements out of a vertex slot. n must equal the
// vertex count.
func ReadVertexData[T Element](d *Descriptor, n int, slot int) ([]T, error) {
	return readSlot[T](d, vertexRole, n, slot)
}

// ReadEdgeData copies n elements out of an edge slot. n must equal the edge
// count.
func ReadEdgeData[T Element](d *Descriptor, n int, slot int) ([]T, error) {
	return readSlot[T](d, edgeRole, n, slot)
}
