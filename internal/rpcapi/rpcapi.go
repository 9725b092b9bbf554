// Package rpcapi implements a JSON-RPC 2.0 stdio surface: one request per
// line over stdin/stdout, no Content-Length framing, methods mirroring
// the seven analyses (analyze_complexity, analyze_dag, analyze_satd,
// analyze_dead_code, analyze_tdg, analyze_duplicates,
// analyze_deep_context). Analysis errors carry both the JSON-RPC 2.0
// error code and the application error kind in error.data.code; protocol
// errors (parse, invalid request or params, unknown method) carry only
// the JSON-RPC code.
package rpcapi

import (
	"bufio"
	"context"
	"encoding/json"
	"io"

	"github.com/standardbeagle/tdgraph/internal/config"
	"github.com/standardbeagle/tdgraph/internal/errors"
	"github.com/standardbeagle/tdgraph/internal/obslog"
	"github.com/standardbeagle/tdgraph/internal/pipeline"
	"github.com/standardbeagle/tdgraph/internal/types"
)

// Request is one JSON-RPC 2.0 call.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  RequestParams   `json:"params"`
}

// RequestParams is every method's shared parameter shape: the project
// root to analyze plus an optional config override.
type RequestParams struct {
	Root   string         `json:"root"`
	Config *configOverride `json:"config,omitempty"`
}

type configOverride struct {
	Include []string `json:"include,omitempty"`
	Exclude []string `json:"exclude,omitempty"`
}

// Response is one JSON-RPC 2.0 reply: exactly one of Result/Error is set.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Result  interface{}     `json:"result,omitempty"`
	Error   *ResponseError  `json:"error,omitempty"`
}

// ResponseError follows JSON-RPC 2.0's error object shape, with the
// application error kind carried in Data.Code.
type ResponseError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    *ErrorData  `json:"data,omitempty"`
}

type ErrorData struct {
	Code string `json:"code"`
}

const (
	codeParseError     = -32700
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeInternalError  = -32603
)

// Server dispatches JSON-RPC requests against one Pipeline.
type Server struct {
	Pipeline *pipeline.Pipeline
	Logger   *obslog.Logger
}

// NewServer builds a Server. logger is set to quiet mode for the
// lifetime of Serve, so no ambient log line can interleave with the
// framed stdout stream even if it's misconfigured to write there.
func NewServer(p *pipeline.Pipeline, logger *obslog.Logger) *Server {
	if logger == nil {
		logger = obslog.Discard()
	}
	return &Server{Pipeline: p, Logger: logger}
}

// Serve reads newline-delimited JSON-RPC requests from r and writes
// newline-delimited responses to w until r is exhausted or ctx is
// cancelled. One malformed line produces a parse-error response for
// that line and continues; it does not terminate the session.
func (s *Server) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	s.Logger.SetQuiet(true)
	defer s.Logger.SetQuiet(false)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 8*1024*1024)
	enc := json.NewEncoder(w)

	for scanner.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		resp := s.handleLine(ctx, line)
		if err := enc.Encode(resp); err != nil {
			return err
		}
	}
	return scanner.Err()
}

func (s *Server) handleLine(ctx context.Context, line []byte) Response {
	var req Request
	if err := json.Unmarshal(line, &req); err != nil {
		return errorResponse(nil, codeParseError, "parse error", "")
	}
	if req.JSONRPC != "2.0" || req.Method == "" {
		return errorResponse(req.ID, codeInvalidRequest, "invalid request", "")
	}
	if req.Params.Root == "" {
		return errorResponse(req.ID, codeInvalidParams, "params.root is required", "")
	}

	cfg := config.Default()
	if req.Params.Config != nil {
		cfg.Include = req.Params.Config.Include
		cfg.Exclude = req.Params.Config.Exclude
	}

	dc, err := s.Pipeline.AnalyzeDeepContext(ctx, req.Params.Root, cfg)
	if err != nil {
		return errorResponseFromErr(req.ID, err)
	}

	result, ok := selectResult(req.Method, dc)
	if !ok {
		return errorResponse(req.ID, codeMethodNotFound, "method not found: "+req.Method, "")
	}
	return Response{JSONRPC: "2.0", ID: req.ID, Result: result}
}

func selectResult(method string, dc *types.DeepContext) (interface{}, bool) {
	switch method {
	case "analyze_complexity":
		return dc.Complexity, true
	case "analyze_dag":
		return dc.Dag, true
	case "analyze_satd":
		return dc.Satd, true
	case "analyze_dead_code":
		return dc.DeadCode, true
	case "analyze_tdg":
		return dc.Tdg, true
	case "analyze_duplicates":
		return dc.Duplicates, true
	case "analyze_deep_context":
		return dc, true
	default:
		return nil, false
	}
}

func errorResponse(id json.RawMessage, code int, message, appCode string) Response {
	var data *ErrorData
	if appCode != "" {
		data = &ErrorData{Code: appCode}
	}
	return Response{JSONRPC: "2.0", ID: id, Error: &ResponseError{Code: code, Message: message, Data: data}}
}

func errorResponseFromErr(id json.RawMessage, err error) Response {
	appCode := "unknown"
	if tdErr, ok := err.(*errors.Error); ok {
		appCode = string(tdErr.Kind)
	}
	return errorResponse(id, codeInternalError, err.Error(), appCode)
}
