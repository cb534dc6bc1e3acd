package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"k8s.io/klog/v2"

	"github.com/daniel-j-h/graphiti/pkg/blobs"
	"github.com/daniel-j-h/graphiti/pkg/graphiti"
	"github.com/daniel-j-h/graphiti/pkg/paths"
	"github.com/daniel-j-h/graphiti/pkg/sparse"
)

// maxDocumentSize bounds uploaded and inline matrix documents.
const maxDocumentSize = 64 << 20

type server struct {
	lib     *graphiti.Library
	version graphiti.Version
	cache   *blobs.Cache
	limiter *rate.Limiter
}

// pathRequest names the matrix either by the hash of a stored document or
// inline as a YAML document.
type pathRequest struct {
	Algorithm string `json:"algorithm"`
	Source    int    `json:"source"`
	Hash      string `json:"hash,omitempty"`
	Document  string `json:"document,omitempty"`
}

func (s *server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /version", s.serveVersion)
	mux.HandleFunc("POST /paths", s.servePaths)
	mux.HandleFunc("PUT /blobs", s.servePUTBlob)
	mux.HandleFunc("GET /blobs/{hash}", s.serveGETBlob)
	mux.Handle("GET /metrics", promhttp.Handler())
	return withRequestLogger(mux)
}

// withRequestLogger puts a logger tagged with a request id into the request
// context.
func withRequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := klog.FromContext(r.Context()).WithValues("request", uuid.NewString())
		log.V(2).Info("handling request", "method", r.Method, "path", r.URL.Path)
		next.ServeHTTP(w, r.WithContext(klog.NewContext(r.Context(), log)))
	})
}

func (s *server) serveVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, map[string]string{
		"engine":  s.lib.Engine().Name(),
		"version": s.version.String(),
	})
}

func (s *server) servePaths(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if !s.limiter.Allow() {
		http.Error(w, "too many requests", http.StatusTooManyRequests)
		return
	}

	var req pathRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxDocumentSize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, r, status.Errorf(codes.InvalidArgument, "decoding request: %v", err))
		return
	}

	algorithm, err := graphiti.ParseAlgorithm(req.Algorithm)
	if err != nil {
		writeError(w, r, err)
		return
	}

	b := []byte(req.Document)
	switch {
	case req.Hash != "" && req.Document != "":
		writeError(w, r, status.Error(codes.InvalidArgument, "set either hash or document, not both"))
		return
	case req.Hash != "":
		b, err = s.cache.ReadFile(ctx, blobs.BlobInfo{Hash: req.Hash})
		if err != nil {
			writeError(w, r, err)
			return
		}
	case req.Document == "":
		writeError(w, r, status.Error(codes.InvalidArgument, "one of hash or document is required"))
		return
	}

	doc, err := sparse.ParseDocument(b)
	if err != nil {
		writeError(w, r, status.Errorf(codes.InvalidArgument, "%v", err))
		return
	}

	result, err := paths.Run(ctx, s.lib, doc, paths.Query{Algorithm: algorithm, Source: req.Source})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, result)
}

// servePUTBlob stores a matrix document and responds with its hash.
func (s *server) servePUTBlob(w http.ResponseWriter, r *http.Request) {
	b, err := io.ReadAll(io.LimitReader(r.Body, maxDocumentSize))
	if err != nil {
		writeError(w, r, fmt.Errorf("reading request body: %w", err))
		return
	}
	if _, err := sparse.ParseDocument(b); err != nil {
		writeError(w, r, status.Errorf(codes.InvalidArgument, "%v", err))
		return
	}

	info, err := s.cache.Put(r.Context(), b)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, r, map[string]string{"hash": info.Hash})
}

func (s *server) serveGETBlob(w http.ResponseWriter, r *http.Request) {
	f, err := s.cache.Get(r.Context(), blobs.BlobInfo{Hash: r.PathValue("hash")})
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "application/yaml")
	http.ServeFile(w, r, f.Name())
}

// classify maps errors onto gRPC codes. Errors that already carry a status
// keep it.
func classify(err error) codes.Code {
	if s, ok := status.FromError(err); ok {
		return s.Code()
	}
	switch {
	case errors.Is(err, graphiti.ErrUsage):
		return codes.InvalidArgument
	case errors.Is(err, graphiti.ErrTypeNotSupported), errors.Is(err, graphiti.ErrGraphTypeNotSupported):
		return codes.Unimplemented
	case errors.Is(err, graphiti.ErrEngineInit), errors.Is(err, graphiti.ErrAllocFailed):
		return codes.Unavailable
	case errors.Is(err, graphiti.ErrNotConverged):
		return codes.FailedPrecondition
	}
	return codes.Internal
}

var httpStatusForCode = map[codes.Code]int{
	codes.InvalidArgument:    http.StatusBadRequest,
	codes.NotFound:           http.StatusNotFound,
	codes.Unimplemented:      http.StatusNotImplemented,
	codes.Unavailable:        http.StatusServiceUnavailable,
	codes.FailedPrecondition: http.StatusUnprocessableEntity,
	codes.DataLoss:           http.StatusBadGateway,
	codes.DeadlineExceeded:   http.StatusGatewayTimeout,
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	log := klog.FromContext(r.Context())

	code := classify(err)
	httpStatus, ok := httpStatusForCode[code]
	if !ok {
		httpStatus = http.StatusInternalServerError
	}

	message := err.Error()
	if s, ok := status.FromError(err); ok {
		message = s.Message()
	}
	if httpStatus == http.StatusInternalServerError {
		log.Error(err, "handling request")
		message = "internal server error"
	} else {
		log.V(2).Info("request failed", "code", code, "err", err)
	}

	http.Error(w, message, httpStatus)
}

func writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	if w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", "application/json")
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		klog.FromContext(r.Context()).Error(err, "writing response")
	}
}
