package graphiti

import (
	"context"
	"fmt"

	"k8s.io/klog/v2"

	"github.com/daniel-j-h/graphiti/pkg/metrics"
	"github.com/daniel-j-h/graphiti/pkg/nvgraph"
)

// Descriptor owns one graph held by the engine under a Handle.
//
// The lifecycle is: BindTopology, then Allocate{Vertex,Edge}Data in either
// order, then writes, traversals and reads. Binding a second topology is
// refused, and so is reallocating slots once a traversal has run.
type Descriptor struct {
	handle *Handle
	d      nvgraph.GraphDescr

	// All fields below are guarded by handle.mu.
	released bool

	bound        bool
	topologyType nvgraph.TopologyType
	nvertices    int
	nedges       int

	vertexKinds []Kind
	edgeKinds   []Kind
	edgeWritten []bool

	traversed bool
}

// NewDescriptor creates a graph descriptor scoped to h.
func (h *Handle) NewDescriptor(ctx context.Context) (*Descriptor, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.checkLive("creating graph descriptor"); err != nil {
		return nil, err
	}

	var d nvgraph.GraphDescr
	err := h.lib.call(h.log, "nvgraphCreateGraphDescr", func() nvgraph.Status {
		var status nvgraph.Status
		d, status = h.lib.engine.CreateGraphDescr(h.h)
		return status
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEngineInit, err)
	}

	descriptor := &Descriptor{handle: h, d: d}
	h.live[descriptor] = struct{}{}
	metrics.LiveDescriptors.Inc()

	klog.FromContext(ctx).V(2).Info("created graph descriptor", "handle", h.h, "descriptor", d)
	return descriptor, nil
}

// Close destroys the descriptor. It must be called before the owning
// Handle is closed; closing twice is a *UsageError.
//
// Whatever the engine reports, the descriptor is detached from its handle so
// that the handle can still be released; an engine failure is returned as a
// *ReleaseError.
func (d *Descriptor) Close() error {
	h := d.handle
	h.mu.Lock()
	defer h.mu.Unlock()

	if d.released {
		return usageErrorf("releasing graph descriptor", "descriptor already released")
	}
	if err := h.checkLive("releasing graph descriptor"); err != nil {
		return err
	}

	d.released = true
	delete(h.live, d)
	metrics.LiveDescriptors.Dec()

	err := h.lib.call(h.log, "nvgraphDestroyGraphDescr", func() nvgraph.Status {
		return h.lib.engine.DestroyGraphDescr(h.h, d.d)
	})
	if err != nil {
		metrics.ReleaseFailuresTotal.WithLabelValues("descriptor").Inc()
		h.log.Error(err, "releasing graph descriptor", "handle", h.h, "descriptor", d.d)
		return &ReleaseError{Resource: "graph descriptor", Err: err}
	}

	h.log.V(2).Info("released graph descriptor", "handle", h.h, "descriptor", d.d)
	return nil
}

// NumVertices returns the vertex count of the bound topology, or 0.
func (d *Descriptor) NumVertices() int {
	d.handle.mu.Lock()
	defer d.handle.mu.Unlock()
	return d.nvertices
}

// NumEdges returns the edge count of the bound topology, or 0.
func (d *Descriptor) NumEdges() int {
	d.handle.mu.Lock()
	defer d.handle.mu.Unlock()
	return d.nedges
}

// checkUsable must be called with d.handle.mu held.
func (d *Descriptor) checkUsable(op string) error {
	if d.released {
		return usageErrorf(op, "graph descriptor already released")
	}
	return d.handle.checkLive(op)
}

// checkBound must be called with d.handle.mu held.
func (d *Descriptor) checkBound(op string) error {
	if err := d.checkUsable(op); err != nil {
		return err
	}
	if !d.bound {
		return usageErrorf(op, "no topology bound")
	}
	return nil
}

func (d *Descriptor) call(op string, fn func(h nvgraph.Handle, g nvgraph.GraphDescr, engine nvgraph.Engine) nvgraph.Status) error {
	h := d.handle
	return h.lib.call(h.log, op, func() nvgraph.Status {
		return fn(h.h, d.d, h.lib.engine)
	})
}
