// Package http exposes the assistant to the storefront widget.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/xeipuuv/gojsonschema"

	"smartshopper/internal/assistant/intent"
	"smartshopper/internal/assistant/session"
	"smartshopper/internal/catalog"
	commonerrors "smartshopper/internal/common/errors"
	"smartshopper/internal/common/logger"
	"smartshopper/internal/models"
)

const maxBodyBytes = 16 * 1024

var chatRequestSchema = gojsonschema.NewStringLoader(`{
	"type": "object",
	"properties": {
		"sessionId": {"type": "string", "maxLength": 64},
		"message": {"type": "string", "maxLength": 2000}
	},
	"required": ["message"],
	"additionalProperties": false
}`)

// HealthChecker pings one backing dependency.
type HealthChecker func(ctx context.Context) error

type Config struct {
	AllowedOrigins []string
}

// Server routes widget traffic to the session engine. Each request loads the
// session from the store, runs exactly one turn, and saves the new state; no
// conversation state lives in the process.
type Server struct {
	router *chi.Mux
	engine *session.Engine
	store  session.Store
	checks map[string]HealthChecker
	logger logger.Logger
}

func NewServer(cfg *Config, engine *session.Engine, store session.Store, checks map[string]HealthChecker, log logger.Logger) *Server {
	if cfg == nil {
		cfg = &Config{}
	}

	s := &Server{
		router: chi.NewRouter(),
		engine: engine,
		store:  store,
		checks: checks,
		logger: log.WithFields(map[string]interface{}{"component": "transport.http"}),
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Recoverer)

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Requested-With"},
		ExposedHeaders: []string{"X-Session-Id"},
		MaxAge:         300,
	}))

	s.router.Post("/api/chat", s.handleChat)
	s.router.Get("/healthz", s.handleHealth)
	s.router.Handle("/metrics", promhttp.Handler())

	return s
}

// Handler returns the root http.Handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

type chatRequest struct {
	SessionID string `json:"sessionId"`
	Message   string `json:"message"`
}

type chatResponse struct {
	SessionID string           `json:"sessionId"`
	Reply     string           `json:"reply"`
	Products  []models.Product `json:"products,omitempty"`
	Intent    intent.Intent    `json:"intent"`
	FollowUp  string           `json:"followUp,omitempty"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, commonerrors.NewInvalidUtteranceError("failed to read request body"))
		return
	}

	result, err := gojsonschema.Validate(chatRequestSchema, gojsonschema.NewBytesLoader(body))
	if err != nil || !result.Valid() {
		s.writeError(w, http.StatusBadRequest, commonerrors.NewInvalidUtteranceError(validationDetails(result)))
		return
	}

	var req chatRequest
	if err := json.Unmarshal(body, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, commonerrors.NewInvalidUtteranceError(err.Error()))
		return
	}

	ctx := r.Context()
	sess, fresh := s.loadSession(ctx, req.SessionID)

	// A brand-new conversation opened with an empty message just gets the
	// greeting; there is nothing to plan yet.
	if fresh && strings.TrimSpace(req.Message) == "" {
		s.saveSession(ctx, sess)
		s.writeChatResponse(w, sess.ID, &session.TurnResult{Reply: s.engine.Greeting(), Intent: sess.Intent})
		return
	}

	next, turn, err := s.engine.HandleTurn(ctx, sess, req.Message)
	if err != nil {
		// Only cancellation/timeout reaches here; the session was not advanced.
		s.logger.WithError(err).Warn("turn aborted", map[string]interface{}{"sessionId": sess.ID})
		if errors.Is(err, catalog.ErrSearchTimeout) {
			s.writeError(w, http.StatusServiceUnavailable, commonerrors.NewSearchTimeoutError("catalog query timed out"))
		} else {
			s.writeError(w, http.StatusServiceUnavailable, commonerrors.NewCatalogQueryFailedError(err))
		}
		return
	}

	s.saveSession(ctx, next)
	s.writeChatResponse(w, next.ID, turn)
}

// loadSession fetches the session for the given id, or starts a fresh one
// when the id is missing, unknown, or the store is unavailable. The second
// return reports whether the session is new.
func (s *Server) loadSession(ctx context.Context, id string) (models.ChatSession, bool) {
	if id == "" {
		return s.engine.NewSession(), true
	}

	sess, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			s.logger.WithError(commonerrors.NewSessionNotFoundError(id)).Debug("session expired or unknown, starting fresh", nil)
		} else {
			s.logger.WithError(err).Warn("session load failed, starting fresh", map[string]interface{}{
				"sessionId": id,
			})
		}
		return s.engine.NewSession(), true
	}

	return *sess, false
}

func (s *Server) saveSession(ctx context.Context, sess models.ChatSession) {
	if err := s.store.Save(ctx, &sess); err != nil {
		s.logger.WithError(commonerrors.NewSessionStoreFailedError(err)).Error("failed to save session", map[string]interface{}{
			"sessionId": sess.ID,
		})
	}
}

func (s *Server) writeChatResponse(w http.ResponseWriter, sessionID string, turn *session.TurnResult) {
	w.Header().Set("X-Session-Id", sessionID)
	s.writeJSON(w, http.StatusOK, chatResponse{
		SessionID: sessionID,
		Reply:     turn.Reply,
		Products:  turn.Products,
		Intent:    turn.Intent,
		FollowUp:  turn.FollowUp,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	statuses := make(map[string]string, len(s.checks))
	healthy := true
	for name, check := range s.checks {
		if err := check(ctx); err != nil {
			statuses[name] = err.Error()
			healthy = false
		} else {
			statuses[name] = "ok"
		}
	}

	code := http.StatusOK
	status := "ok"
	if !healthy {
		code = http.StatusServiceUnavailable
		status = "degraded"
	}
	s.writeJSON(w, code, map[string]interface{}{
		"status": status,
		"checks": statuses,
	})
}

func (s *Server) writeError(w http.ResponseWriter, code int, stdErr *commonerrors.StandardError) {
	s.writeJSON(w, code, map[string]interface{}{"error": stdErr})
}

// validationDetails flattens schema violations into one line for the error
// payload.
func validationDetails(result *gojsonschema.Result) string {
	if result == nil {
		return "malformed JSON"
	}
	parts := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		parts = append(parts, desc.String())
	}
	return strings.Join(parts, "; ")
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.WithError(err).Error("failed to encode response", nil)
	}
}
