// Package httpapi serves the chatbot over HTTP for the web widget.
//
//	GET /?query=<text>[&session=<id>]  -> {"response": "<text>"}
//	GET /healthz                       -> {"status": "ok", "chunks": N}
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/cors"

	"github.com/custodia-labs/bookbot/internal/core/domain"
	"github.com/custodia-labs/bookbot/internal/core/ports/driving"
	"github.com/custodia-labs/bookbot/internal/logger"
)

// DefaultQuery is answered when the query parameter is absent.
const DefaultQuery = "Varsayılan metin"

// SessionHeader carries the cart session when no session parameter is given.
const SessionHeader = "X-Session-ID"

const contentTypeJSON = "application/json; charset=utf-8"

// Server is the HTTP facade over the chat service.
type Server struct {
	chat    driving.ChatService
	index   driving.IndexService
	handler http.Handler
}

// NewServer builds the handler tree. index may be nil, in which case
// /healthz reports zero chunks.
func NewServer(chat driving.ChatService, index driving.IndexService) (*Server, error) {
	if chat == nil {
		return nil, errors.New("httpapi: chat service is required")
	}

	s := &Server{chat: chat, index: index}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleAsk)
	mux.HandleFunc("/healthz", s.handleHealth)

	s.handler = cors.AllowAll().Handler(logRequests(mux))
	return s, nil
}

// Handler returns the root handler, CORS and request logging included.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run listens on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx) //nolint:errcheck
	}()

	logger.Info("Listening on http://%s", addr)
	err := httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

type askResponse struct {
	Response string `json:"response"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type healthResponse struct {
	Status string `json:"status"`
	Chunks int    `json:"chunks"`
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
		return
	}
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
		return
	}

	params := r.URL.Query()
	// The default applies only when the parameter is absent; "?query=" is
	// passed through as an empty message.
	query := DefaultQuery
	if params.Has("query") {
		query = params.Get("query")
	}
	session := params.Get("session")
	if session == "" {
		session = r.Header.Get(SessionHeader)
	}

	reply, err := s.chat.Ask(r.Context(), domain.NormaliseSession(session), query)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, domain.ErrProvider) || errors.Is(err, domain.ErrRateLimited) {
			status = http.StatusBadGateway
		}
		logger.Warn("Ask failed: %v", err)
		writeJSON(w, status, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, askResponse{Response: reply.Text})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
		return
	}

	chunks := 0
	if s.index != nil {
		n, err := s.index.Count(r.Context())
		if err != nil {
			writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: err.Error()})
			return
		}
		chunks = n
	}
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Chunks: chunks})
}

// writeJSON encodes v without HTML escaping so Turkish text and emoji
// reach the client verbatim.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		logger.Warn("Write response: %v", err)
	}
}

// statusRecorder captures the status code for the request log.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Info("%s %s %d %s", r.Method, r.URL.RequestURI(), rec.status, formatDuration(time.Since(start)))
	})
}

func formatDuration(d time.Duration) string {
	return fmt.Sprintf("%.1fms", float64(d.Microseconds())/1000)
}
