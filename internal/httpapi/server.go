package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/xaenox/cafe-bot/internal/business"
	"github.com/xaenox/cafe-bot/internal/session"
	"go.uber.org/zap"
)

// SessionHeader carries the visitor's session ID. Requests without a valid
// one get a new ID in the response header.
const SessionHeader = "X-Session-ID"

var validate = validator.New()

type ctxKey struct{}

// Server exposes the café widgets as a JSON API.
type Server struct {
	sessions *session.Manager
	panel    *business.Panel
	logger   *zap.Logger
	now      func() time.Time
}

func NewServer(sessions *session.Manager, panel *business.Panel, logger *zap.Logger) *Server {
	return &Server{
		sessions: sessions,
		panel:    panel,
		logger:   logger,
		now:      time.Now,
	}
}

// RegisterRoutes wires the API routes onto r.
func (s *Server) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", s.healthHandler).Methods(http.MethodGet)
	r.HandleFunc("/info", s.infoHandler).Methods(http.MethodGet)
	r.HandleFunc("/menu", s.menuHandler).Methods(http.MethodGet)

	api := r.NewRoute().Subrouter()
	api.Use(s.sessionMiddleware)
	api.HandleFunc("/gallery", s.galleryHandler).Methods(http.MethodGet)
	api.HandleFunc("/gallery/{id}/like", s.likeHandler).Methods(http.MethodPost)
	api.HandleFunc("/loyalty", s.loyaltyHandler).Methods(http.MethodGet)
	api.HandleFunc("/loyalty/spin", s.spinHandler).Methods(http.MethodPost)
	api.HandleFunc("/chat", s.transcriptHandler).Methods(http.MethodGet)
	api.HandleFunc("/chat", s.chatHandler).Methods(http.MethodPost)
	api.HandleFunc("/uploads/validate", s.uploadHandler).Methods(http.MethodPost)
}

// Handler returns the router with request logging.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(s.loggingMiddleware)
	s.RegisterRoutes(r)
	return r
}

func (s *Server) sessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(SessionHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.New().String()
		}
		w.Header().Set(SessionHeader, id)

		visitor := s.sessions.Get(id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, visitor)))
	})
}

func visitorFrom(r *http.Request) *session.Visitor {
	return r.Context().Value(ctxKey{}).(*session.Visitor)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug("HTTP request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)))
	})
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

const maxBodyBytes = 1 << 16

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// decode reads a JSON body into v and validates its struct tags.
func decode(w http.ResponseWriter, r *http.Request, v any) error {
	if err := decodeJSON(w, r, v); err != nil {
		return err
	}
	return validate.Struct(v)
}
