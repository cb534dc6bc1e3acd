package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/daniel-j-h/graphiti/pkg/blobs"
	"github.com/daniel-j-h/graphiti/pkg/graphiti"
	"github.com/daniel-j-h/graphiti/pkg/nvgraph/fallback"
	"github.com/daniel-j-h/graphiti/pkg/paths"
)

const exampleDocument = `format: csc
dense:
  - [0, 1, 0]
  - [1, 0, 1]
  - [1, 0, 0]
`

func newTestServer(t *testing.T, limit rate.Limit) *httptest.Server {
	t.Helper()

	cache, err := blobs.NewCache(t.TempDir(), nil, nil)
	require.NoError(t, err)

	lib := graphiti.New(fallback.NewEngine())
	version, err := lib.Version()
	require.NoError(t, err)

	s := &server{
		lib:     lib,
		version: version,
		cache:   cache,
		limiter: rate.NewLimiter(limit, 1),
	}
	srv := httptest.NewServer(s.routes())
	t.Cleanup(srv.Close)
	return srv
}

func postPaths(t *testing.T, srv *httptest.Server, req pathRequest) *http.Response {
	t.Helper()
	b, err := json.Marshal(req)
	require.NoError(t, err)
	resp, err := srv.Client().Post(srv.URL+"/paths", "application/json", bytes.NewReader(b))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestVersion(t *testing.T) {
	srv := newTestServer(t, rate.Inf)

	resp, err := srv.Client().Get(srv.URL + "/version")
	require.NoError(t, err)
	defer resp.Body.Close()

	var got map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	require.Equal(t, map[string]string{"engine": "fallback", "version": "10.2.0"}, got)
}

func TestInlinePaths(t *testing.T) {
	srv := newTestServer(t, rate.Inf)

	resp := postPaths(t, srv, pathRequest{Algorithm: "sssp", Source: 1, Document: exampleDocument})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result paths.Result
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	require.Equal(t, []float64{1, 0, 1}, result.Values)
	require.Equal(t, graphiti.ShortestPath, result.Algorithm)
}

func TestStoredPaths(t *testing.T) {
	srv := newTestServer(t, rate.Inf)
	client := srv.Client()

	req, err := http.NewRequest(http.MethodPut, srv.URL+"/blobs", strings.NewReader(exampleDocument))
	require.NoError(t, err)
	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	hash := created["hash"]
	require.Equal(t, blobs.InfoForBytes([]byte(exampleDocument)).Hash, hash)

	blob, err := client.Get(srv.URL + "/blobs/" + hash)
	require.NoError(t, err)
	defer blob.Body.Close()
	b, err := io.ReadAll(blob.Body)
	require.NoError(t, err)
	require.Equal(t, exampleDocument, string(b))

	resp = postPaths(t, srv, pathRequest{Algorithm: "widest", Source: 0, Hash: hash})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var result paths.Result
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	require.Equal(t, []bool{true, true, true}, result.Reachable)
}

func TestErrorStatus(t *testing.T) {
	srv := newTestServer(t, rate.Inf)

	for _, tc := range []struct {
		name string
		req  pathRequest
		want int
	}{
		{"unknown algorithm", pathRequest{Algorithm: "pagerank", Document: exampleDocument}, http.StatusBadRequest},
		{"source out of range", pathRequest{Algorithm: "sssp", Source: 3, Document: exampleDocument}, http.StatusBadRequest},
		{"no matrix", pathRequest{Algorithm: "sssp"}, http.StatusBadRequest},
		{"both", pathRequest{Algorithm: "sssp", Hash: strings.Repeat("a", 64), Document: exampleDocument}, http.StatusBadRequest},
		{"bad document", pathRequest{Algorithm: "sssp", Document: "format: coo\n"}, http.StatusBadRequest},
		{"bad hash", pathRequest{Algorithm: "sssp", Hash: "../../etc/passwd"}, http.StatusBadRequest},
		{"unknown hash", pathRequest{Algorithm: "sssp", Hash: strings.Repeat("a", 64)}, http.StatusNotFound},
		{"integer weights", pathRequest{Algorithm: "sssp", Document: "format: csr\nkind: int32\ndense: [[0, 1], [1, 0]]\n"}, http.StatusNotImplemented},
	} {
		t.Run(tc.name, func(t *testing.T) {
			resp := postPaths(t, srv, tc.req)
			require.Equal(t, tc.want, resp.StatusCode)
		})
	}

	blob, err := srv.Client().Get(srv.URL + "/blobs/" + strings.Repeat("b", 64))
	require.NoError(t, err)
	defer blob.Body.Close()
	require.Equal(t, http.StatusNotFound, blob.StatusCode)
}

func TestRateLimit(t *testing.T) {
	srv := newTestServer(t, rate.Every(1<<62))

	req := pathRequest{Algorithm: "sssp", Source: 0, Document: exampleDocument}
	require.Equal(t, http.StatusOK, postPaths(t, srv, req).StatusCode)
	require.Equal(t, http.StatusTooManyRequests, postPaths(t, srv, req).StatusCode)
}

func TestMetrics(t *testing.T) {
	srv := newTestServer(t, rate.Inf)
	postPaths(t, srv, pathRequest{Algorithm: "sssp", Document: exampleDocument})

	resp, err := srv.Client().Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(b), `graphiti_path_queries_total{algorithm="sssp",result="ok"}`)
	require.Contains(t, string(b), `graphiti_native_calls_total{call="nvgraphSssp",status="NVGRAPH_STATUS_SUCCESS"}`)
}
