package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveAndServe(t *testing.T) {
	m := New()
	m.Observe("minimize", time.Now(), 3, nil)
	m.Observe("minimize", time.Now(), -1, errors.New("not a DFA"))
	m.Observe("convert", time.Now(), 4, nil)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, `fa_operations_total{op="minimize",outcome="ok"} 1`)
	assert.Contains(t, body, `fa_operations_total{op="minimize",outcome="error"} 1`)
	assert.Contains(t, body, `fa_operations_total{op="convert",outcome="ok"} 1`)
	assert.Contains(t, body, `fa_states_count{op="minimize"} 1`)
	assert.Contains(t, body, `fa_operation_duration_seconds_count{op="minimize"} 2`)
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() { m.Observe("classify", time.Now(), 1, nil) })
}

func TestSeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		New()
		New()
	})
}
