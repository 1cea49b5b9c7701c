package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ha1tch/fa-toolkit/internal/logging"
	"github.com/ha1tch/fa-toolkit/internal/metrics"
	"github.com/ha1tch/fa-toolkit/internal/workbench"
	"github.com/ha1tch/fa-toolkit/pkg/fafile"
	"github.com/ha1tch/fa-toolkit/pkg/store"
	"github.com/ha1tch/fa-toolkit/pkg/store/memory"
)

func newHandler(t *testing.T) http.Handler {
	t.Helper()
	m := metrics.New()
	return NewHandler(&Server{
		Bench:   workbench.New(memory.New(), workbench.WithMetrics(m)),
		Metrics: m,
		Log:     logging.NewNop(),
	})
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

var nfaForm = &fafile.Form{
	States:      "q0,q1,q2",
	Alphabet:    "a,b",
	Start:       "q0",
	Final:       "q2",
	Transitions: "q0,a,{q0,q1}; q0,b,q0; q1,b,q2",
}

var dfaForm = &fafile.Form{
	States:      "s0,s1",
	Alphabet:    "0,1",
	Start:       "s0",
	Final:       "s1",
	Transitions: "s0,0,s0; s0,1,s1; s1,0,s0; s1,1,s1",
}

func TestClassify(t *testing.T) {
	h := newHandler(t)

	w := do(t, h, http.MethodPost, "/classify", AutomatonRequest{Form: nfaForm})
	require.Equal(t, http.StatusOK, w.Code)
	var resp ClassifyResponse
	decodeBody(t, w, &resp)
	assert.False(t, resp.DFA)
	assert.Equal(t, []string{"transition from q0 on a leads to multiple states"}, resp.Violations)

	w = do(t, h, http.MethodPost, "/classify", AutomatonRequest{Form: dfaForm})
	require.Equal(t, http.StatusOK, w.Code)
	decodeBody(t, w, &resp)
	assert.True(t, resp.DFA)
	assert.Empty(t, resp.Violations)
}

func TestOperationErrors(t *testing.T) {
	h := newHandler(t)

	w := do(t, h, http.MethodPost, "/classify", AutomatonRequest{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	req := httptest.NewRequest(http.MethodPost, "/convert", strings.NewReader("{"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	bad := *dfaForm
	bad.Start = "nowhere"
	w = do(t, h, http.MethodPost, "/accept", AutomatonRequest{Form: &bad})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "nowhere")

	w = do(t, h, http.MethodPost, "/minimize", AutomatonRequest{Form: nfaForm})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var e errorResponse
	decodeBody(t, w, &e)
	assert.NotEmpty(t, e.Violations)
}

func TestConvertAndMinimize(t *testing.T) {
	h := newHandler(t)

	w := do(t, h, http.MethodPost, "/convert", AutomatonRequest{Form: nfaForm})
	require.Equal(t, http.StatusOK, w.Code)
	var dfa fafile.Document
	decodeBody(t, w, &dfa)
	assert.Equal(t, "dfa", dfa.Kind)
	assert.Equal(t, []string{"{q0}", "{q0,q1}", "{q0,q2}"}, dfa.States)

	w = do(t, h, http.MethodPost, "/minimize", AutomatonRequest{Automaton: &dfa})
	require.Equal(t, http.StatusOK, w.Code)
	var minimal fafile.Document
	decodeBody(t, w, &minimal)
	assert.Len(t, minimal.States, 3)
}

func TestAccept(t *testing.T) {
	h := newHandler(t)
	for input, want := range map[string]bool{"aab": true, "aba": false, "": false, "bab": true} {
		w := do(t, h, http.MethodPost, "/accept", AutomatonRequest{Form: nfaForm, Input: input})
		require.Equal(t, http.StatusOK, w.Code)
		var resp AcceptResponse
		decodeBody(t, w, &resp)
		assert.Equal(t, want, resp.Accepted, input)
	}

	w := do(t, h, http.MethodPost, "/accept", AutomatonRequest{Form: dfaForm, Input: "0 1", Separator: " "})
	var resp AcceptResponse
	decodeBody(t, w, &resp)
	assert.True(t, resp.Accepted)
}

func TestRecordLifecycle(t *testing.T) {
	h := newHandler(t)

	w := do(t, h, http.MethodPost, "/records", AutomatonRequest{Form: nfaForm})
	require.Equal(t, http.StatusCreated, w.Code)
	var created RecordResponse
	decodeBody(t, w, &created)
	assert.Equal(t, 1, created.Record.ID)
	assert.True(t, created.Record.FromNFA)
	assert.False(t, created.Classification.DFA)

	w = do(t, h, http.MethodPost, "/records/1/minimize", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(t, h, http.MethodPost, "/records/1/convert", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var rec store.Record
	decodeBody(t, w, &rec)
	assert.Equal(t, "dfa", rec.Automaton.Kind)
	assert.NotNil(t, rec.Original)

	w = do(t, h, http.MethodPost, "/records/1/convert", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(t, h, http.MethodPost, "/records/1/minimize", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeBody(t, w, &rec)
	assert.NotNil(t, rec.Minimized)

	w = do(t, h, http.MethodPost, "/records/1/test", AutomatonRequest{Input: "ab"})
	require.Equal(t, http.StatusOK, w.Code)
	var res store.TestResult
	decodeBody(t, w, &res)
	assert.True(t, res.Accepted)

	w = do(t, h, http.MethodGet, "/records/1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeBody(t, w, &rec)
	assert.Len(t, rec.Tests, 1)

	w = do(t, h, http.MethodGet, "/records", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []store.Record
	decodeBody(t, w, &list)
	assert.Len(t, list, 1)

	w = do(t, h, http.MethodDelete, "/records/1", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, h, http.MethodGet, "/records/1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = do(t, h, http.MethodDelete, "/records/1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = do(t, h, http.MethodGet, "/records/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateRecordFromDocument(t *testing.T) {
	h := newHandler(t)
	a, err := fafile.ParseForm(*dfaForm)
	require.NoError(t, err)

	w := do(t, h, http.MethodPost, "/records", AutomatonRequest{Automaton: fafile.NewDocument(a)})
	require.Equal(t, http.StatusCreated, w.Code)
	var created RecordResponse
	decodeBody(t, w, &created)
	assert.True(t, created.Classification.DFA)
	assert.Nil(t, created.Record.Input)
}

func TestCORSAndMetrics(t *testing.T) {
	h := newHandler(t)

	w := do(t, h, http.MethodOptions, "/classify", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	do(t, h, http.MethodPost, "/classify", AutomatonRequest{Form: dfaForm})
	w = do(t, h, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `fa_operations_total{op="classify",outcome="ok"} 1`)
}

var errBackend = errors.New("connection refused")

// brokenStore fails every operation the way an unreachable backend does.
type brokenStore struct{}

func (brokenStore) Create(context.Context, *store.Record) (int, error) { return 0, errBackend }
func (brokenStore) Save(context.Context, *store.Record) error           { return errBackend }
func (brokenStore) Load(context.Context, int) (*store.Record, error)    { return nil, errBackend }
func (brokenStore) Delete(context.Context, int) error                   { return errBackend }
func (brokenStore) List(context.Context) ([]*store.Record, error)       { return nil, errBackend }
func (brokenStore) NextID(context.Context) (int, error)                 { return 0, errBackend }

func TestStoreFailuresAreServerErrors(t *testing.T) {
	var logs bytes.Buffer
	h := NewHandler(&Server{
		Bench: workbench.New(brokenStore{}),
		Log:   logging.NewWriter(&logs, slog.LevelInfo),
	})

	tests := []struct {
		name   string
		method string
		path   string
		body   any
	}{
		{"list", http.MethodGet, "/records", nil},
		{"create", http.MethodPost, "/records", AutomatonRequest{Form: dfaForm}},
		{"get", http.MethodGet, "/records/1", nil},
		{"delete", http.MethodDelete, "/records/1", nil},
		{"convert", http.MethodPost, "/records/1/convert", nil},
		{"minimize", http.MethodPost, "/records/1/minimize", nil},
		{"test", http.MethodPost, "/records/1/test", AutomatonRequest{Input: "01"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logs.Reset()
			w := do(t, h, tt.method, tt.path, tt.body)
			assert.Equal(t, http.StatusInternalServerError, w.Code)
			assert.Contains(t, w.Body.String(), "connection refused")
			assert.Contains(t, logs.String(), "level=ERROR")
		})
	}

	// Client mistakes stay 4xx even with a broken store.
	w := do(t, h, http.MethodPost, "/records", AutomatonRequest{Form: &fafile.Form{States: "a"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = do(t, h, http.MethodGet, "/records/0", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = do(t, h, http.MethodPost, "/records", AutomatonRequest{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCorruptStoredRecordIsServerError(t *testing.T) {
	s := memory.New()
	rec := storedDFA(t)
	rec.Automaton.Start = "missing"
	require.NoError(t, s.Save(context.Background(), rec))
	h := NewHandler(&Server{Bench: workbench.New(s), Log: logging.NewNop()})

	w := do(t, h, http.MethodPost, "/records/1/test", AutomatonRequest{Input: "0"})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func storedDFA(t *testing.T) *store.Record {
	t.Helper()
	a, err := fafile.ParseForm(*dfaForm)
	require.NoError(t, err)
	return &store.Record{ID: 1, Automaton: fafile.NewDocument(a)}
}
