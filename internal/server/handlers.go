package server

import (
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/chartdir/pkg/buildinfo"
	"github.com/matzehuels/chartdir/pkg/command"
	"github.com/matzehuels/chartdir/pkg/errors"
)

// ScriptExt is the extension of scripts served under /run/{name}.
const ScriptExt = ".chart"

// ExecRequest is the JSON body of POST /exec. Exactly one of Args and
// Script is set.
type ExecRequest struct {
	Args   []string          `json:"args,omitempty"`
	Script string            `json:"script,omitempty"`
	Vars   map[string]string `json:"vars,omitempty"`
}

// ExecResponse is the JSON reply of the command endpoints.
type ExecResponse struct {
	Result *command.Result `json:"result,omitempty"`
	Error  *ErrorBody      `json:"error,omitempty"`
}

// ErrorBody describes a failed command.
type ErrorBody struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

// ChartInfo is one entry of GET /charts.
type ChartInfo struct {
	ID         uint64    `json:"id"`
	AccessTime time.Time `json:"access_time"`
}

// responder sends the image of a return command as the HTTP response. Only
// the first image is written.
type responder struct {
	mu      sync.Mutex
	w       http.ResponseWriter
	written bool
}

func (r *responder) Respond(data []byte, contentType string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.written {
		return errors.New(errors.ErrCodeNoConnection, "response already sent")
	}
	r.written = true
	r.w.Header().Set("Content-Type", contentType)
	r.w.WriteHeader(http.StatusOK)
	_, err := r.w.Write(data)
	return err
}

func (r *responder) sent() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.written
}

func (s *Server) handleExec(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBody))
	if err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "read request body"))
		return
	}

	var req ExecRequest
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct == "text/plain" {
		req.Script = string(body)
	} else if err := json.Unmarshal(body, &req); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request"))
		return
	}

	resp := &responder{w: w}
	ctx := command.WithResponder(r.Context(), resp)
	var res command.Result
	switch {
	case len(req.Args) > 0:
		res, err = s.in.Exec(ctx, req.Args)
	case req.Script != "":
		res, err = s.in.RunScript(ctx, req.Script, req.Vars)
	default:
		err = errors.New(errors.ErrCodeInvalidInput, "request needs args or a script")
	}
	s.finish(w, resp, res, err)
}

// finish writes the result unless a return command already sent an image.
func (s *Server) finish(w http.ResponseWriter, resp *responder, res command.Result, err error) {
	if resp.sent() {
		if err != nil {
			s.logger.Warn("script failed after return", "error", err)
		}
		return
	}
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ExecResponse{Result: &res})
}

func (s *Server) handleCharts(w http.ResponseWriter, r *http.Request) {
	entries, err := s.in.Registry().Charts(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	out := make([]ChartInfo, len(entries))
	for i, e := range entries {
		out[i] = ChartInfo{ID: e.ID, AccessTime: e.AccessTime}
	}
	writeJSON(w, http.StatusOK, map[string][]ChartInfo{"charts": out})
}

func (s *Server) handleDestroy(w http.ResponseWriter, r *http.Request) {
	if _, err := s.in.Exec(r.Context(), []string{"destroy", chi.URLParam(r, "id")}); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleImage(w http.ResponseWriter, r *http.Request) {
	res, err := s.in.Exec(r.Context(), []string{"image", chi.URLParam(r, "id"), chi.URLParam(r, "format")})
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", res.ContentType)
	w.Header().Set("Cache-Control", "no-store")
	w.Write(res.Bytes)
}

func (s *Server) handleGC(w http.ResponseWriter, r *http.Request) {
	res, err := s.in.Exec(r.Context(), []string{"gc"})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ExecResponse{Result: &res})
}

// handleRun executes <script_dir>/<name>.chart with the query parameters
// bound as variables.
func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	if s.scriptDir == "" {
		s.writeError(w, errors.New(errors.ErrCodeNotFound, "script pages are disabled"))
		return
	}
	name := strings.TrimSuffix(chi.URLParam(r, "name"), ScriptExt)
	if err := errors.ValidateName(name); err != nil {
		s.writeError(w, err)
		return
	}
	src, err := os.ReadFile(filepath.Join(s.scriptDir, name+ScriptExt))
	if os.IsNotExist(err) {
		s.writeError(w, errors.New(errors.ErrCodeFileNotFound, "no script %q", name))
		return
	}
	if err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "read script %q", name))
		return
	}

	vars := make(map[string]string)
	for k, v := range r.URL.Query() {
		if len(v) > 0 {
			vars[k] = v[0]
		}
	}
	resp := &responder{w: w}
	res, err := s.in.RunScript(command.WithResponder(r.Context(), resp), string(src), vars)
	s.finish(w, resp, res, err)
}

func (s *Server) handleVersion(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"version": buildinfo.Version,
		"commit":  buildinfo.Commit,
		"date":    buildinfo.Date,
	})
}

// =============================================================================
// Responses
// =============================================================================

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
	}
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	writeJSON(w, status, ExecResponse{Error: &ErrorBody{Code: code, Message: errors.UserMessage(err)}})
}

// statusFor maps an error code to an HTTP status.
func statusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeNotFound, errors.ErrCodeChartNotFound, errors.ErrCodeFileNotFound:
		return http.StatusNotFound
	case errors.ErrCodeNoLayerSlots:
		return http.StatusConflict
	case errors.ErrCodeWrongType, errors.ErrCodeInvalidLayer:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	case errors.ErrCodeRender, errors.ErrCodeStore, errors.ErrCodeInternal, "":
		return http.StatusInternalServerError
	}
	return http.StatusBadRequest
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
