// Package httpapi serves the automaton operations and the saved-record
// workbench over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ha1tch/fa-toolkit/internal/metrics"
	"github.com/ha1tch/fa-toolkit/internal/workbench"
	"github.com/ha1tch/fa-toolkit/pkg/fa"
	"github.com/ha1tch/fa-toolkit/pkg/fafile"
	"github.com/ha1tch/fa-toolkit/pkg/store"
)

// maxBody bounds request bodies.
const maxBody = 1 << 20

// Server holds the handlers' dependencies.
type Server struct {
	Bench   *workbench.Workbench
	Metrics *metrics.Metrics
	Log     *slog.Logger
}

// AutomatonRequest carries an automaton either as a document or as the
// text form. Input and Separator are used by the accept and test routes.
type AutomatonRequest struct {
	Automaton *fafile.Document `json:"automaton,omitempty"`
	Form      *fafile.Form     `json:"form,omitempty"`
	Input     string           `json:"input,omitempty"`
	Separator string           `json:"separator,omitempty"`
}

// ClassifyResponse is the body returned by POST /classify.
type ClassifyResponse struct {
	DFA        bool     `json:"dfa"`
	Violations []string `json:"violations"`
}

// AcceptResponse is the body returned by POST /accept.
type AcceptResponse struct {
	Accepted bool `json:"accepted"`
}

// RecordResponse is returned when a record is created.
type RecordResponse struct {
	Record         *store.Record    `json:"record"`
	Classification ClassifyResponse `json:"classification"`
}

// requestError marks a failure caused by the request rather than the
// server.
type requestError struct {
	err error
}

func (e *requestError) Error() string { return e.err.Error() }
func (e *requestError) Unwrap() error { return e.err }

func badRequest(err error) error {
	return &requestError{err: err}
}

type errorResponse struct {
	Error      string   `json:"error"`
	Violations []string `json:"violations,omitempty"`
}

// NewHandler builds the router.
func NewHandler(s *Server) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)

	r.Post("/classify", s.Classify)
	r.Post("/convert", s.Convert)
	r.Post("/minimize", s.Minimize)
	r.Post("/accept", s.Accept)

	r.Route("/records", func(r chi.Router) {
		r.Get("/", s.ListRecords)
		r.Post("/", s.CreateRecord)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.GetRecord)
			r.Delete("/", s.DeleteRecord)
			r.Post("/convert", s.ConvertRecord)
			r.Post("/minimize", s.MinimizeRecord)
			r.Post("/test", s.TestRecord)
		})
	})

	if s.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.Metrics.Handler())
	}
	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) logger() *slog.Logger {
	if s.Log == nil {
		return slog.Default()
	}
	return s.Log
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response encode failed", "error", err)
	}
}

// writeError maps err onto a status code. Errors not attributed to the
// request are server failures.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		nd  *fa.NotDeterministicError
		req *requestError
	)
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, store.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, workbench.ErrAlreadyDFA), errors.Is(err, workbench.ErrNotDFA):
		status = http.StatusConflict
	case errors.As(err, &nd):
		status = http.StatusUnprocessableEntity
	case errors.As(err, &req), errors.Is(err, workbench.ErrInvalidAutomaton):
		status = http.StatusBadRequest
	}

	resp := errorResponse{Error: err.Error()}
	if errors.As(err, &nd) {
		resp.Violations = nd.Violations
	}
	if status >= http.StatusInternalServerError {
		s.logger().Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	} else {
		s.logger().Debug("request rejected", "path", r.URL.Path, "status", status, "error", err)
	}
	writeJSON(w, status, resp)
}

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return badRequest(fmt.Errorf("invalid request body: %w", err))
	}
	return nil
}

// automaton decodes the request and builds its automaton.
func (s *Server) automaton(w http.ResponseWriter, r *http.Request) (*AutomatonRequest, *fa.Automaton, error) {
	var req AutomatonRequest
	if err := decode(w, r, &req); err != nil {
		return nil, nil, err
	}
	var (
		a   *fa.Automaton
		err error
	)
	switch {
	case req.Automaton != nil:
		a, err = req.Automaton.Automaton()
	case req.Form != nil:
		a, err = fafile.ParseForm(*req.Form)
	default:
		err = errors.New("request needs an automaton or a form")
	}
	if err != nil {
		return nil, nil, badRequest(err)
	}
	return &req, a, nil
}

func classification(cl fa.Classification) ClassifyResponse {
	v := cl.Violations
	if v == nil {
		v = []string{}
	}
	return ClassifyResponse{DFA: cl.IsDFA, Violations: v}
}

// Classify handles POST /classify.
func (s *Server) Classify(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	_, a, err := s.automaton(w, r)
	if err != nil {
		s.Metrics.Observe("classify", start, -1, err)
		s.writeError(w, r, err)
		return
	}
	cl := fa.Classify(a)
	s.Metrics.Observe("classify", start, a.NumStates(), nil)
	writeJSON(w, http.StatusOK, classification(cl))
}

// Convert handles POST /convert. Any automaton is accepted; a DFA comes
// back as an equivalent subset DFA.
func (s *Server) Convert(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	_, a, err := s.automaton(w, r)
	if err != nil {
		s.Metrics.Observe("convert", start, -1, err)
		s.writeError(w, r, err)
		return
	}
	dfa := fa.ToDFA(a)
	s.Metrics.Observe("convert", start, dfa.NumStates(), nil)
	writeJSON(w, http.StatusOK, fafile.NewDocument(dfa))
}

// Minimize handles POST /minimize.
func (s *Server) Minimize(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	_, a, err := s.automaton(w, r)
	if err == nil {
		a, err = fa.Minimize(a)
	}
	if err != nil {
		s.Metrics.Observe("minimize", start, -1, err)
		s.writeError(w, r, err)
		return
	}
	s.Metrics.Observe("minimize", start, a.NumStates(), nil)
	writeJSON(w, http.StatusOK, fafile.NewDocument(a))
}

// Accept handles POST /accept.
func (s *Server) Accept(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	req, a, err := s.automaton(w, r)
	if err != nil {
		s.Metrics.Observe("accept", start, -1, err)
		s.writeError(w, r, err)
		return
	}
	ok := fa.Accepts(a, fa.SplitInput(req.Input, req.Separator))
	s.Metrics.Observe("accept", start, -1, nil)
	writeJSON(w, http.StatusOK, AcceptResponse{Accepted: ok})
}

func recordID(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, badRequest(fmt.Errorf("invalid record id %q", raw))
	}
	return id, nil
}

// ListRecords handles GET /records.
func (s *Server) ListRecords(w http.ResponseWriter, r *http.Request) {
	records, err := s.Bench.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

// CreateRecord handles POST /records. A form is stored along with the
// automaton it describes.
func (s *Server) CreateRecord(w http.ResponseWriter, r *http.Request) {
	var req AutomatonRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	var (
		rec *store.Record
		cl  fa.Classification
		err error
	)
	switch {
	case req.Form != nil:
		rec, cl, err = s.Bench.AddForm(r.Context(), *req.Form)
	case req.Automaton != nil:
		var a *fa.Automaton
		if a, err = req.Automaton.Automaton(); err != nil {
			err = badRequest(err)
		} else {
			rec, cl, err = s.Bench.Add(r.Context(), a)
		}
	default:
		err = badRequest(errors.New("request needs an automaton or a form"))
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, RecordResponse{Record: rec, Classification: classification(cl)})
}

// GetRecord handles GET /records/{id}.
func (s *Server) GetRecord(w http.ResponseWriter, r *http.Request) {
	id, err := recordID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	rec, err := s.Bench.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// DeleteRecord handles DELETE /records/{id}.
func (s *Server) DeleteRecord(w http.ResponseWriter, r *http.Request) {
	id, err := recordID(r)
	if err == nil {
		err = s.Bench.Delete(r.Context(), id)
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ConvertRecord handles POST /records/{id}/convert.
func (s *Server) ConvertRecord(w http.ResponseWriter, r *http.Request) {
	s.recordOp(w, r, s.Bench.Convert)
}

// MinimizeRecord handles POST /records/{id}/minimize.
func (s *Server) MinimizeRecord(w http.ResponseWriter, r *http.Request) {
	s.recordOp(w, r, s.Bench.Minimize)
}

func (s *Server) recordOp(w http.ResponseWriter, r *http.Request, op func(context.Context, int) (*store.Record, error)) {
	id, err := recordID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	rec, err := op(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// TestRecord handles POST /records/{id}/test.
func (s *Server) TestRecord(w http.ResponseWriter, r *http.Request) {
	id, err := recordID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req AutomatonRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.Bench.Test(r.Context(), id, req.Input, req.Separator)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
