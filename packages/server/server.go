// Package server exposes the reqline pipeline over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/abdul-hamid-achik/reqline/packages/core/apperr"
	"github.com/abdul-hamid-achik/reqline/packages/core/parser"
	"github.com/abdul-hamid-achik/reqline/packages/core/runner"
	reqhttp "github.com/abdul-hamid-achik/reqline/packages/http"
	"github.com/abdul-hamid-achik/reqline/packages/logging"
)

// MaxBodyBytes caps inbound request bodies
const MaxBodyBytes = 1 << 20

// Executor runs one reqline statement
type Executor interface {
	Run(ctx context.Context, reqline string) (*runner.Report, error)
}

// Server is the inbound boundary of the pipeline
type Server struct {
	executor      Executor
	router        chi.Router
	logger        logrus.FieldLogger
	addr          string
	failureStatus int
}

// Option is a functional option for Server
type Option func(*Server)

// WithAddr sets the listen address
func WithAddr(addr string) Option {
	return func(s *Server) {
		s.addr = addr
	}
}

// WithLogger sets the request logger
func WithLogger(logger logrus.FieldLogger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithExecutionFailureStatus sets the status returned when the outbound call fails
func WithExecutionFailureStatus(status int) Option {
	return func(s *Server) {
		s.failureStatus = status
	}
}

// NewServer creates a server dispatching to executor
func NewServer(executor Executor, opts ...Option) *Server {
	s := &Server{
		executor:      executor,
		router:        chi.NewRouter(),
		logger:        logging.Discard(),
		addr:          ":8080",
		failureStatus: http.StatusBadGateway,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.routes()
	return s
}

func (s *Server) routes() {
	r := s.router

	r.Use(requestID)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Post("/", s.handleRun)
	r.Post("/parse", s.handleParse)
	r.Get("/healthz", s.handleHealth)
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Addr returns the configured listen address
func (s *Server) Addr() string {
	return s.addr
}

// StartWithContext serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) StartWithContext(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	s.logger.WithField("addr", s.addr).Info("reqline server listening")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

type errorBody struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
}

type parseBody struct {
	*parser.Descriptor
	FullURL string `json:"full_url"`
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	reqline, err := readReqline(r)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}

	report, err := s.executor.Run(r.Context(), reqline)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	reqline, err := readReqline(r)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}

	d, err := parser.Parse(reqline)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, parseBody{
		Descriptor: d,
		FullURL:    reqhttp.BuildURL(d.URL, d.Query),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func readReqline(r *http.Request) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r.Body, MaxBodyBytes+1))
	if err != nil {
		return "", apperr.Validation("failed to read request body")
	}
	if len(data) > MaxBodyBytes {
		return "", apperr.Validation("request body exceeds %d bytes", MaxBodyBytes)
	}
	return DecodeInput(data)
}

// writeFailure maps classified errors to statuses. Caller faults expose their
// message; anything unclassified is logged and hidden.
func (s *Server) writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	log := s.logger.WithField("request_id", w.Header().Get(RequestIDHeader))

	kind, ok := apperr.KindOf(err)
	switch {
	case ok && (kind == apperr.KindMalformedInput || kind == apperr.KindOuterValidation):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: true, Message: err.Error()})
	case ok && kind == apperr.KindExecutionFailure:
		log.WithError(errors.Unwrap(err)).Warn("reqline execution failed")
		writeJSON(w, s.failureStatus, errorBody{Error: true, Message: err.Error()})
	default:
		log.WithError(err).WithField("path", r.URL.Path).Error("unhandled error")
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: true, Message: http.StatusText(http.StatusInternalServerError)})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}
