// Package httpapi implements an HTTP REST surface: GET for idempotent
// single-analysis queries, POST with a JSON body for the compound
// deep-context analysis, both wrapped in the
// {data|error, meta:{elapsed_ms, cache_hit_rate}} envelope. Routing uses
// plain net/http and http.ServeMux — no web framework.
package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/standardbeagle/tdgraph/internal/config"
	"github.com/standardbeagle/tdgraph/internal/errors"
	"github.com/standardbeagle/tdgraph/internal/obslog"
	"github.com/standardbeagle/tdgraph/internal/pipeline"
	"github.com/standardbeagle/tdgraph/internal/types"
)

// Server serves the HTTP REST surface over one Pipeline.
type Server struct {
	Pipeline *pipeline.Pipeline
	Logger   *obslog.Logger
}

// NewServer builds a Server.
func NewServer(p *pipeline.Pipeline, logger *obslog.Logger) *Server {
	if logger == nil {
		logger = obslog.Discard()
	}
	return &Server{Pipeline: p, Logger: logger}
}

// Handler builds the ServeMux routing every recognised endpoint.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/analyze/complexity", s.analysisHandler(func(dc *types.DeepContext) interface{} { return dc.Complexity }))
	mux.HandleFunc("/analyze/dag", s.analysisHandler(func(dc *types.DeepContext) interface{} { return dc.Dag }))
	mux.HandleFunc("/analyze/satd", s.analysisHandler(func(dc *types.DeepContext) interface{} { return dc.Satd }))
	mux.HandleFunc("/analyze/dead-code", s.analysisHandler(func(dc *types.DeepContext) interface{} { return dc.DeadCode }))
	mux.HandleFunc("/analyze/tdg", s.analysisHandler(func(dc *types.DeepContext) interface{} { return dc.Tdg }))
	mux.HandleFunc("/analyze/duplicates", s.analysisHandler(func(dc *types.DeepContext) interface{} { return dc.Duplicates }))
	mux.HandleFunc("/analyze/deep-context", s.analysisHandler(func(dc *types.DeepContext) interface{} { return dc }))
	mux.HandleFunc("/context", s.analysisHandler(func(dc *types.DeepContext) interface{} {
		return struct {
			Summary types.ProjectSummary `json:"summary"`
			Files   []types.FileContext  `json:"files"`
		}{dc.Summary, dc.Files}
	}))
	return mux
}

// envelope is every response's outer shape.
type envelope struct {
	Data  interface{}  `json:"data,omitempty"`
	Error *envelopeErr `json:"error,omitempty"`
	Meta  envelopeMeta `json:"meta"`
}

type envelopeErr struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type envelopeMeta struct {
	ElapsedMs    int64   `json:"elapsed_ms"`
	CacheHitRate float64 `json:"cache_hit_rate"`
}

func (s *Server) analysisHandler(extract func(*types.DeepContext) interface{}) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodPost {
			writeEnvelope(w, http.StatusMethodNotAllowed, envelope{
				Error: &envelopeErr{Code: "method_not_allowed", Message: "only GET and POST are supported"},
			})
			return
		}

		root, cfg, err := requestParams(r)
		if err != nil {
			writeEnvelope(w, http.StatusBadRequest, envelope{Error: &envelopeErr{Code: "bad_request", Message: err.Error()}})
			return
		}

		start := time.Now()
		dc, err := s.Pipeline.AnalyzeDeepContext(r.Context(), root, cfg)
		elapsed := time.Since(start)
		if err != nil {
			writeEnvelope(w, statusForErr(err), envelope{
				Error: &envelopeErr{Code: codeForErr(err), Message: err.Error()},
				Meta:  envelopeMeta{ElapsedMs: elapsed.Milliseconds()},
			})
			return
		}

		writeEnvelope(w, http.StatusOK, envelope{
			Data: extract(dc),
			Meta: envelopeMeta{ElapsedMs: elapsed.Milliseconds(), CacheHitRate: dc.CacheHitRate},
		})
	}
}

type requestBody struct {
	Root    string   `json:"root"`
	Include []string `json:"include,omitempty"`
	Exclude []string `json:"exclude,omitempty"`
}

func requestParams(r *http.Request) (string, *config.Config, error) {
	cfg := config.Default()
	if r.Method == http.MethodPost {
		var body requestBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			return "", nil, err
		}
		cfg.Include = body.Include
		cfg.Exclude = body.Exclude
		return body.Root, cfg, nil
	}

	q := r.URL.Query()
	root := q.Get("root")
	if root == "" {
		return "", nil, errMissingRoot
	}
	if include := q["include"]; len(include) > 0 {
		cfg.Include = include
	}
	if exclude := q["exclude"]; len(exclude) > 0 {
		cfg.Exclude = exclude
	}
	return root, cfg, nil
}

var errMissingRoot = httpError("root query parameter is required")

type httpError string

func (e httpError) Error() string { return string(e) }

func writeEnvelope(w http.ResponseWriter, status int, env envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(env)
}

func statusForErr(err error) int {
	if tdErr, ok := err.(*errors.Error); ok {
		switch tdErr.Kind {
		case errors.KindConfig, errors.KindDiscovery:
			return http.StatusBadRequest
		case errors.KindCancellation:
			return http.StatusGatewayTimeout
		}
	}
	return http.StatusInternalServerError
}

func codeForErr(err error) string {
	if tdErr, ok := err.(*errors.Error); ok {
		return string(tdErr.Kind)
	}
	return "unknown"
}

// Serve is a convenience wrapper running an http.Server bound to addr
// until ctx is cancelled.
func Serve(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{Addr: addr, Handler: handler}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}
