package graphiti

import (
	"context"
	"fmt"
	"sync"

	"k8s.io/klog/v2"

	"github.com/daniel-j-h/graphiti/pkg/metrics"
	"github.com/daniel-j-h/graphiti/pkg/nvgraph"
)

// Handle owns one engine context.
//
// Native calls on a Handle and on its Descriptors are serialized: there is
// never more than one in flight per Handle.
type Handle struct {
	lib *Library
	log klog.Logger

	mu       sync.Mutex
	h        nvgraph.Handle
	released bool
	live     map[*Descriptor]struct{}
}

// NewHandle creates an engine context. The logger from ctx is used for every
// later call on the handle and its descriptors.
func (l *Library) NewHandle(ctx context.Context) (*Handle, error) {
	log := klog.FromContext(ctx)

	var h nvgraph.Handle
	err := l.call(log, "nvgraphCreate", func() nvgraph.Status {
		var status nvgraph.Status
		h, status = l.engine.Create()
		return status
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEngineInit, err)
	}

	metrics.LiveHandles.Inc()
	log.V(2).Info("created library handle", "engine", l.engine.Name(), "handle", h)

	return &Handle{
		lib:  l,
		log:  log,
		h:    h,
		live: make(map[*Descriptor]struct{}),
	}, nil
}

// LiveDescriptors returns the number of descriptors created under h that
// have not been closed.
func (h *Handle) LiveDescriptors() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.live)
}

// Close destroys the engine context.
//
// Closing a handle while descriptors are still live is refused with a
// *UsageError and leaves everything usable. Closing twice is a *UsageError.
// If the engine fails to destroy the context the handle is still considered
// released, and a *ReleaseError is returned.
func (h *Handle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.released {
		return usageErrorf("releasing library handle", "handle already released")
	}
	if n := len(h.live); n != 0 {
		return usageErrorf("releasing library handle", "%d graph descriptor(s) still live", n)
	}

	h.released = true
	metrics.LiveHandles.Dec()

	err := h.lib.call(h.log, "nvgraphDestroy", func() nvgraph.Status {
		return h.lib.engine.Destroy(h.h)
	})
	if err != nil {
		metrics.ReleaseFailuresTotal.WithLabelValues("handle").Inc()
		h.log.Error(err, "releasing library handle", "handle", h.h)
		return &ReleaseError{Resource: "library handle", Err: err}
	}

	h.log.V(2).Info("released library handle", "handle", h.h)
	return nil
}

// checkLive must be called with h.mu held.
func (h *Handle) checkLive(op string) error {
	if h.released {
		return usageErrorf(op, "library handle already released")
	}
	return nil
}
