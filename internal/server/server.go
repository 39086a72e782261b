// Package server exposes the nprs pipeline over HTTP.
//
// Routes:
//
//	POST /render   multipart form (script, image, arg...) -> encoded image
//	POST /check    multipart or url-encoded form (script, arg...) -> JSON summary
//	POST /graph    form (script, arg..., format) -> dot, svg or json diagram
//	GET  /passes   JSON catalog of the passes scripts may use
//	GET  /healthz  liveness and build info
//
// Every request compiles its own graph; the [pipeline.Runner] and its cache
// are the only shared state.
package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/nprs/pkg/buildinfo"
	"github.com/matzehuels/nprs/pkg/errors"
	"github.com/matzehuels/nprs/pkg/observability"
	"github.com/matzehuels/nprs/pkg/pass"
	"github.com/matzehuels/nprs/pkg/passes"
	"github.com/matzehuels/nprs/pkg/pipeline"
)

// Response headers set on render results.
const (
	HeaderRunID     = "X-Run-ID"
	HeaderGraphHash = "X-Graph-Hash"
	HeaderCache     = "X-Cache"
)

// Options configures a [Server].
type Options struct {
	// Timeout bounds each request. 0 disables the limit.
	Timeout time.Duration

	// MaxUploadBytes limits the size of a request body.
	MaxUploadBytes int64

	// Args are applied before the overrides sent with each request.
	Args []string

	// Registry resolves pass types in request scripts. Defaults to
	// [passes.Sandboxed], which cannot read server files.
	Registry *pass.Registry
}

// Option changes one field of [Options].
type Option func(*Options)

// WithTimeout bounds the handling time of each request.
func WithTimeout(d time.Duration) Option { return func(o *Options) { o.Timeout = d } }

// WithMaxUploadBytes limits request bodies to n bytes.
func WithMaxUploadBytes(n int64) Option { return func(o *Options) { o.MaxUploadBytes = n } }

// WithDefaultArgs sets argument overrides applied to every request.
// Overrides sent with a request take precedence.
func WithDefaultArgs(args ...string) Option { return func(o *Options) { o.Args = args } }

// WithRegistry replaces the pass registry used for request scripts.
func WithRegistry(r *pass.Registry) Option { return func(o *Options) { o.Registry = r } }

// Server handles HTTP requests with a shared pipeline runner.
type Server struct {
	runner *pipeline.Runner
	logger *log.Logger
	opt    Options
}

// New returns a server rendering through runner.
func New(runner *pipeline.Runner, logger *log.Logger, opts ...Option) *Server {
	op := Options{Timeout: time.Minute, MaxUploadBytes: 32 << 20}
	for _, f := range opts {
		f(&op)
	}
	if op.Registry == nil {
		op.Registry = passes.Sandboxed()
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Server{runner: runner, logger: logger, opt: op}
}

// Handler returns the router serving all routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	if s.opt.Timeout > 0 {
		r.Use(middleware.Timeout(s.opt.Timeout))
	}

	r.Get("/healthz", s.handleHealthz)
	r.Get("/passes", s.handlePasses)
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequestSize(s.opt.MaxUploadBytes))
		r.Post("/render", s.handleRender)
		r.Post("/check", s.handleCheck)
		r.Post("/graph", s.handleGraph)
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info("shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return ctx.Err()
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		hooks := observability.Server()
		hooks.OnRequest(r.Context(), r.Method, r.URL.Path)
		start := time.Now()
		next.ServeHTTP(ww, r)
		hooks.OnResponse(r.Context(), r.Method, r.URL.Path, ww.Status(), time.Since(start))
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"request_id", middleware.GetReqID(r.Context()),
			"duration", time.Since(start).Round(time.Millisecond))
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, struct {
		Status string `json:"status"`
		buildinfo.Info
	}{"ok", buildinfo.Get()})
}

func (s *Server) handlePasses(w http.ResponseWriter, r *http.Request) {
	available := []passes.Info{}
	for _, info := range passes.Catalog() {
		if _, err := s.opt.Registry.Lookup(info.Name); err == nil {
			available = append(available, info)
		}
	}
	writeJSON(w, http.StatusOK, available)
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	if err := errors.ValidateUploadSize(r.ContentLength, s.opt.MaxUploadBytes); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := r.ParseMultipartForm(s.opt.MaxUploadBytes); err != nil {
		s.fail(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse form"))
		return
	}
	script, err := formScript(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	input, err := formFile(r, "image")
	if err != nil {
		s.fail(w, r, err)
		return
	}

	result, err := s.runner.Execute(r.Context(), pipeline.Options{
		Script:     script,
		ScriptName: "request",
		Args:       s.args(r),
		Registry:   s.opt.Registry,
		Format:     r.FormValue("format"),
		Input:      input,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}

	cacheStatus := "miss"
	if result.CacheInfo.RenderHit {
		cacheStatus = "hit"
	}
	w.Header().Set("Content-Type", contentType(result.Format))
	w.Header().Set(HeaderRunID, result.RunID)
	w.Header().Set(HeaderGraphHash, result.GraphHash)
	w.Header().Set(HeaderCache, cacheStatus)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Output)
}

// CheckResponse is the body returned by POST /check.
type CheckResponse struct {
	Passes  int    `json:"passes"`
	Edges   int    `json:"edges"`
	Display string `json:"display"`
	Hash    string `json:"hash"`
}

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(r, s.opt.MaxUploadBytes); err != nil {
		s.fail(w, r, err)
		return
	}
	script, err := formScript(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	compiled, err := s.runner.Check(r.Context(), pipeline.Options{
		Script:     script,
		ScriptName: "request",
		Args:       s.args(r),
		Registry:   s.opt.Registry,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, CheckResponse{
		Passes:  compiled.Graph.Len() - 1,
		Edges:   compiled.EdgeCount(),
		Display: compiled.Graph.Name(compiled.Display),
		Hash:    compiled.Hash,
	})
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(r, s.opt.MaxUploadBytes); err != nil {
		s.fail(w, r, err)
		return
	}
	script, err := formScript(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	format := r.FormValue("format")
	if format == "" {
		format = pipeline.DiagramSVG
	}
	if err := pipeline.ValidateDiagramFormat(format); err != nil {
		s.fail(w, r, err)
		return
	}

	data, hit, err := s.runner.Diagram(r.Context(), pipeline.Options{
		Script:     script,
		ScriptName: "request",
		Args:       s.args(r),
		Registry:   s.opt.Registry,
	}, format)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	cacheStatus := "miss"
	if hit {
		cacheStatus = "hit"
	}
	w.Header().Set("Content-Type", diagramContentType(format))
	w.Header().Set(HeaderCache, cacheStatus)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// args merges the configured defaults with the request's overrides. Later
// entries win when names repeat.
func (s *Server) args(r *http.Request) []string {
	out := append([]string(nil), s.opt.Args...)
	if r.MultipartForm != nil {
		out = append(out, r.MultipartForm.Value["arg"]...)
		return append(out, r.MultipartForm.Value["arg[]"]...)
	}
	out = append(out, r.PostForm["arg"]...)
	return append(out, r.PostForm["arg[]"]...)
}

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	reqID := middleware.GetReqID(r.Context())
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "request_id", reqID, "err", err)
	} else {
		s.logger.Debug("request rejected", "request_id", reqID, "err", err)
	}
	writeJSON(w, status, ErrorResponse{
		Error:     errors.UserMessage(err),
		Code:      string(errors.GetCode(err)),
		RequestID: reqID,
	})
}

// statusFor maps error codes to HTTP statuses. Input problems are 400,
// scripts that fail to compile or verify are 422.
func statusFor(err error) int {
	if stderrors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout
	}
	switch errors.GetCode(err) {
	case "", errors.ErrCodeInternal:
		return http.StatusInternalServerError
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidArgument:
		return http.StatusBadRequest
	default:
		return http.StatusUnprocessableEntity
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func parseForm(r *http.Request, maxMemory int64) error {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		if err := r.ParseMultipartForm(maxMemory); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "parse form")
		}
		return nil
	}
	if err := r.ParseForm(); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "parse form")
	}
	return nil
}

// formScript reads the script from a "script" file part or field.
func formScript(r *http.Request) (string, error) {
	if r.MultipartForm != nil && len(r.MultipartForm.File["script"]) > 0 {
		data, err := formFile(r, "script")
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
	script := r.FormValue("script")
	if strings.TrimSpace(script) == "" {
		return "", errors.New(errors.ErrCodeInvalidInput, "missing form field 'script'")
	}
	return script, nil
}

func formFile(r *http.Request, field string) ([]byte, error) {
	f, _, err := r.FormFile(field)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "missing form file '%s'", field)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read form file '%s'", field)
	}
	return data, nil
}

func contentType(format string) string {
	if t := mime.TypeByExtension("." + strings.ToLower(format)); t != "" {
		return t
	}
	return "application/octet-stream"
}

func diagramContentType(format string) string {
	switch format {
	case pipeline.DiagramSVG:
		return "image/svg+xml"
	case pipeline.DiagramJSON:
		return "application/json"
	default:
		return "text/vnd.graphviz; charset=utf-8"
	}
}
