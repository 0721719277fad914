package main

import (
	"bytes"
	"encoding/json"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/gofung/internal/metrics"
	"github.com/njchilds90/gofung/internal/service"
)

func newTestServer(t *testing.T, m *metrics.Metrics) *httptest.Server {
	t.Helper()
	s := &server{
		svc:          service.New(zerolog.Nop()),
		metrics:      m,
		log:          zerolog.Nop(),
		maxBodyBytes: 1024,
	}
	srv := httptest.NewServer(s.routes())
	t.Cleanup(srv.Close)
	return srv
}

func postTool(t *testing.T, url, body string) (int, map[string]any) {
	t.Helper()
	resp, err := http.Post(url+"/tool", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestHealth(t *testing.T) {
	var logs bytes.Buffer
	s := &server{svc: service.New(zerolog.Nop()), log: zerolog.New(&logs), maxBodyBytes: 1024}

	rec := httptest.NewRecorder()
	s.routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	var out map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "ok", out["status"])
	assert.NotEmpty(t, out["time"])

	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(logs.Bytes()), &line))
	assert.Equal(t, "/health", line["path"])
	assert.Equal(t, float64(http.StatusOK), line["status"])
	assert.NotEmpty(t, line["request_id"])
}

func TestTool_Evaluate(t *testing.T) {
	srv := newTestServer(t, nil)

	status, out := postTool(t, srv.URL, `{
		"tool": "evaluate",
		"params": {
			"expr": {"type": "exp", "arg": {"type": "var", "id": 0, "value": 0}},
			"directions": [{"id": 0, "delta": 2}]
		}
	}`)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, out["error"])
	assert.Equal(t, "exp(x0)", out["string"])

	result := out["result"].(map[string]any)
	assert.Equal(t, 1.0, result["value"])
	assert.Equal(t, 2.0, result["derivative"])
	assert.Equal(t, 1.0, result["order"])
	assert.Equal(t, true, result["present"])
}

func TestTool_ErrorsInResponse(t *testing.T) {
	srv := newTestServer(t, nil)

	status, out := postTool(t, srv.URL, `{"tool": "evaluate", "params": {"expr": {"type": "gamma"}}}`)
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, out["error"], "unknown expression type")
	assert.NotContains(t, out, "result")
}

func TestTool_NotFiniteIsAnError(t *testing.T) {
	srv := newTestServer(t, nil)

	status, out := postTool(t, srv.URL, `{
		"tool": "evaluate",
		"params": {
			"expr": {"type": "sqrt", "arg": {"type": "var", "id": 0, "value": 0}},
			"directions": [{"id": 0, "delta": 1}]
		}
	}`)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "sqrt(x0): derivative +Inf is not finite", out["error"])
	assert.NotContains(t, out, "result")
}

func TestWriteJSON_EncodeFailure(t *testing.T) {
	rec := httptest.NewRecorder()
	writeJSON(rec, http.StatusOK, map[string]float64{"x": math.Inf(1)})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var out map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	assert.Contains(t, out["error"], "encode response")
}

func TestTool_BadRequests(t *testing.T) {
	srv := newTestServer(t, nil)

	tests := []struct {
		name string
		body string
		msg  string
	}{
		{"malformed", `{"tool": `, "unexpected EOF"},
		{"unknown field", `{"tool": "types", "verbose": true}`, "unknown field"},
		{"trailing data", `{"tool": "types"} {"tool": "types"}`, "trailing data"},
		{"too large", `{"tool": "types", "params": {"pad": "` + strings.Repeat("x", 2048) + `"}}`, "too large"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, out := postTool(t, srv.URL, tt.body)
			assert.Equal(t, http.StatusBadRequest, status)
			assert.Contains(t, out["error"], tt.msg)
		})
	}
}

func TestTool_MethodNotAllowed(t *testing.T) {
	srv := newTestServer(t, nil)
	resp, err := http.Get(srv.URL + "/tool")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestSchema(t *testing.T) {
	srv := newTestServer(t, nil)
	resp, err := http.Get(srv.URL + "/schema")
	require.NoError(t, err)
	defer resp.Body.Close()

	var out struct {
		Tools []map[string]any `json:"tools"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Len(t, out.Tools, 5)
}

func TestMetrics(t *testing.T) {
	srv := newTestServer(t, metrics.New("fung"))

	postTool(t, srv.URL, `{"tool": "types"}`)
	postTool(t, srv.URL, `{"tool": "integrate"}`)

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), `fung_tool_calls_total{status="ok",tool="types"} 1`)
	assert.Contains(t, string(body), `fung_tool_calls_total{status="error",tool="integrate"} 1`)
}

func TestMetrics_Disabled(t *testing.T) {
	srv := newTestServer(t, nil)
	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRecoverer(t *testing.T) {
	var logs bytes.Buffer
	s := &server{log: zerolog.New(&logs)}
	h := s.recoverer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") }))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, logs.String(), `"panic":"boom"`)
}
