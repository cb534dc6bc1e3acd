// Package graphiti manages graphs held by the native engine.
//
// Resources nest strictly: a Library hands out Handles, a Handle hands out
// Descriptors, and every Descriptor must be closed before its Handle. All
// host-side preconditions are checked before a native call is issued and
// surface as *UsageError; native failures surface as *StatusError.
//
// SimpleGraph composes the whole sequence for one sparse matrix and
// guarantees release in reverse order on every exit path.
package graphiti

import (
	"fmt"
	"time"

	"k8s.io/klog/v2"

	"github.com/daniel-j-h/graphiti/pkg/metrics"
	"github.com/daniel-j-h/graphiti/pkg/nvgraph"
)

type Library struct {
	engine nvgraph.Engine
	log    klog.Logger
}

type Option func(*Library)

// WithLogger sets the logger used for calls that are not tied to a handle.
func WithLogger(log klog.Logger) Option {
	return func(l *Library) {
		l.log = log
	}
}

func New(engine nvgraph.Engine, opts ...Option) *Library {
	l := &Library{
		engine: engine,
		log:    klog.Background(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Library) Engine() nvgraph.Engine {
	return l.engine
}

type Version struct {
	Major, Minor, Patch int
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Version reads the engine's version properties. It needs no handle.
func (l *Library) Version() (Version, error) {
	var v Version
	for _, p := range []struct {
		prop  nvgraph.LibraryProperty
		value *int
	}{
		{nvgraph.MajorVersion, &v.Major},
		{nvgraph.MinorVersion, &v.Minor},
		{nvgraph.PatchLevel, &v.Patch},
	} {
		err := l.call(l.log, "nvgraphGetProperty", func() nvgraph.Status {
			var status nvgraph.Status
			*p.value, status = l.engine.GetProperty(p.prop)
			return status
		})
		if err != nil {
			return Version{}, err
		}
	}
	return v, nil
}

// call issues one native call and translates its status. Every engine call in
// this package goes through here.
func (l *Library) call(log klog.Logger, op string, fn func() nvgraph.Status) error {
	startedAt := time.Now()
	status := fn()
	duration := time.Since(startedAt)

	metrics.NativeCallsTotal.WithLabelValues(op, status.String()).Inc()
	metrics.NativeCallDuration.WithLabelValues(op).Observe(duration.Seconds())
	log.V(4).Info("native call", "call", op, "status", status, "duration", duration)

	return translateStatus(l.engine, op, status)
}
