package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserve(t *testing.T) {
	m := New("fung")
	m.Observe("evaluate", true, time.Millisecond)
	m.Observe("evaluate", true, 2*time.Millisecond)
	m.Observe("evaluate", false, time.Millisecond)
	m.Observe("model", true, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.calls.WithLabelValues("evaluate", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.calls.WithLabelValues("evaluate", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.calls.WithLabelValues("model", "ok")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.duration))
}

func TestObserve_Nil(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() { m.Observe("evaluate", true, time.Second) })

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler(t *testing.T) {
	m := New("fung")
	m.Observe("types", true, time.Microsecond)

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `fung_tool_calls_total{status="ok",tool="types"} 1`)
	assert.Contains(t, string(body), "fung_tool_call_duration_seconds_bucket")
}
