// Package paths answers traversal queries over matrix documents. It is the
// layer shared by the graphiti and pathserver commands.
package paths

import (
	"context"
	"errors"
	"math"

	"github.com/x448/float16"
	"k8s.io/klog/v2"

	"github.com/daniel-j-h/graphiti/pkg/graphiti"
	"github.com/daniel-j-h/graphiti/pkg/metrics"
	"github.com/daniel-j-h/graphiti/pkg/sparse"
)

type Query struct {
	Algorithm graphiti.Algorithm `json:"algorithm"`
	Source    int                `json:"source"`
}

type Result struct {
	Algorithm graphiti.Algorithm `json:"algorithm"`
	Source    int                `json:"source"`
	Kind      string             `json:"kind"`
	// Values holds one entry per vertex, converted to float64.
	Values []float64 `json:"values"`
	// Reachable is false for vertices the source cannot reach; their entry in
	// Values is the engine's sentinel for the kind.
	Reachable []bool `json:"reachable"`
}

// Run loads doc into the engine, runs q and releases everything again.
func Run(ctx context.Context, lib *graphiti.Library, doc *sparse.Document, q Query) (*Result, error) {
	log := klog.FromContext(ctx)

	result, err := dispatch(ctx, lib, doc, q)
	outcome := "ok"
	switch {
	case err == nil:
	case errors.Is(err, graphiti.ErrUsage):
		outcome = "usage_error"
	default:
		outcome = "engine_error"
	}
	metrics.PathQueriesTotal.WithLabelValues(string(q.Algorithm), outcome).Inc()
	if err != nil {
		return nil, err
	}

	log.V(2).Info("answered path query", "algorithm", q.Algorithm, "source", q.Source, "kind", doc.Kind, "vertices", len(result.Values))
	return result, nil
}

func dispatch(ctx context.Context, lib *graphiti.Library, doc *sparse.Document, q Query) (*Result, error) {
	switch doc.Kind {
	case "float16":
		return run[float16.Float16](ctx, lib, doc, q)
	case "float32":
		return run[float32](ctx, lib, doc, q)
	case "float64":
		return run[float64](ctx, lib, doc, q)
	case "int8":
		return run[int8](ctx, lib, doc, q)
	case "uint8":
		return run[uint8](ctx, lib, doc, q)
	case "int32":
		return run[int32](ctx, lib, doc, q)
	case "uint32":
		return run[uint32](ctx, lib, doc, q)
	}
	return nil, &graphiti.UsageError{Op: "answering path query", Reason: "unsupported element kind " + doc.Kind}
}

func run[T graphiti.Element](ctx context.Context, lib *graphiti.Library, doc *sparse.Document, q Query) (*Result, error) {
	m, err := sparse.DocumentMatrix[T](doc)
	if err != nil {
		return nil, &graphiti.UsageError{Op: "loading matrix document", Reason: err.Error()}
	}

	var values []T
	err = graphiti.WithSimpleGraph(ctx, lib, m, func(g *graphiti.SimpleGraph[T]) error {
		var err error
		values, err = g.Run(q.Algorithm, q.Source)
		return err
	})
	if err != nil {
		return nil, err
	}

	result := &Result{
		Algorithm: q.Algorithm,
		Source:    q.Source,
		Kind:      doc.Kind,
		Values:    make([]float64, len(values)),
		Reachable: make([]bool, len(values)),
	}
	unreachable, ok := unreachableValue[T](q.Algorithm)
	for i, v := range values {
		result.Values[i] = sparse.ToFloat64(v)
		result.Reachable[i] = !ok || result.Values[i] != unreachable
	}
	return result, nil
}

// unreachableValue is the value the engine stores for vertices the source
// cannot reach. Only floating point kinds have one.
func unreachableValue[T graphiti.Element](algorithm graphiti.Algorithm) (float64, bool) {
	var limit float64
	var zero T
	switch any(zero).(type) {
	case float16.Float16:
		limit = 65504
	case float32:
		limit = math.MaxFloat32
	case float64:
		limit = math.MaxFloat64
	default:
		return 0, false
	}
	if algorithm == graphiti.WidestPath {
		return -limit, true
	}
	return limit, true
}
