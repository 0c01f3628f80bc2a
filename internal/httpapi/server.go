package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/antoniostano/rtgate/internal/config"
	"github.com/antoniostano/rtgate/internal/grants"
	"github.com/antoniostano/rtgate/internal/observability"
	"github.com/antoniostano/rtgate/internal/realtime"
)

// SessionMinter creates sessions upstream. *realtime.Client satisfies it.
type SessionMinter interface {
	CreateSession(ctx context.Context, cfg realtime.SessionRequest) (*realtime.Session, error)
}

type Server struct {
	cfg     config.Config
	minter  SessionMinter
	store   grants.Store
	metrics *observability.Metrics
}

func New(cfg config.Config, minter SessionMinter, store grants.Store, metrics *observability.Metrics) *Server {
	return &Server{
		cfg:     cfg,
		minter:  minter,
		store:   store,
		metrics: metrics,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		observability.MetricsHandler().ServeHTTP(w, r)
	})

	r.Post("/v1/realtime/grants", s.handleMintGrant)
	r.Get("/v1/realtime/grants", s.handleListGrants)
	r.Get("/v1/realtime/grants/{id}", s.handleGetGrant)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"status": "ready"})
}

// mintRequest is the caller-facing subset of the session configuration.
// Everything is optional; unset fields fall back to service defaults.
type mintRequest struct {
	Model           string                    `json:"model,omitempty"`
	Voice           string                    `json:"voice,omitempty"`
	Instructions    *string                   `json:"instructions,omitempty"`
	Modalities      []string                  `json:"modalities,omitempty"`
	Temperature     *float64                  `json:"temperature,omitempty"`
	MaxOutputTokens *realtime.MaxOutputTokens `json:"max_response_output_tokens,omitempty"`
	TurnDetection   *realtime.TurnDetection   `json:"turn_detection,omitempty"`
	Tools           []realtime.Tool           `json:"tools,omitempty"`
}

type mintResponse struct {
	grants.Grant
	ClientSecret string `json:"client_secret"`
}

func (s *Server) handleMintGrant(w http.ResponseWriter, r *http.Request) {
	var req mintRequest
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, errEmptyBody) {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	sreq := s.sessionRequest(req)

	start := time.Now()
	sess, err := s.minter.CreateSession(r.Context(), sreq)
	s.metrics.ObserveMintLatency(time.Since(start))
	if err != nil {
		var decErr *realtime.DecodeError
		if errors.As(err, &decErr) {
			s.metrics.UpstreamErrors.WithLabelValues("decode").Inc()
			respondError(w, http.StatusBadGateway, "upstream_decode", decErr.Error())
			return
		}
		s.metrics.UpstreamErrors.WithLabelValues("transport").Inc()
		respondError(w, http.StatusBadGateway, "upstream_unavailable", err.Error())
		return
	}

	grant := grants.Grant{
		ID:        uuid.NewString(),
		SessionID: sess.ID,
		Model:     sess.Model,
		Voice:     sess.Voice,
		Status:    grants.StatusActive,
		Secret:    sess.ClientSecret.Value,
		ExpiresAt: sess.ClientSecret.ExpiresAt,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.Record(r.Context(), grant); err != nil {
		respondError(w, http.StatusInternalServerError, "store_error", err.Error())
		return
	}
	s.metrics.GrantsMinted.WithLabelValues(sess.Model).Inc()

	respondJSON(w, http.StatusCreated, mintResponse{
		Grant:        grant,
		ClientSecret: sess.ClientSecret.Value,
	})
}

func (s *Server) sessionRequest(req mintRequest) realtime.SessionRequest {
	model := strings.TrimSpace(req.Model)
	if model == "" {
		model = s.cfg.RealtimeModel
	}
	voice := strings.TrimSpace(req.Voice)
	if voice == "" {
		voice = s.cfg.DefaultVoice
	}
	modalities := req.Modalities
	if modalities == nil {
		modalities = s.cfg.DefaultModalities
	}

	sreq := realtime.SessionRequest{
		Model:                   model,
		Voice:                   realtime.String(voice),
		Modalities:              modalities,
		Instructions:            req.Instructions,
		Temperature:             req.Temperature,
		MaxResponseOutputTokens: req.MaxOutputTokens,
		TurnDetection:           req.TurnDetection,
		Tools:                   req.Tools,
	}
	if sreq.Instructions == nil && s.cfg.DefaultInstructions != "" {
		sreq.Instructions = realtime.String(s.cfg.DefaultInstructions)
	}
	return sreq
}

func (s *Server) handleListGrants(w http.ResponseWriter, r *http.Request) {
	list, err := s.store.List(r.Context(), s.cfg.GrantListLimit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "store_error", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"grants": list,
		"count":  len(list),
	})
}

func (s *Server) handleGetGrant(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	grant, err := s.store.Get(r.Context(), id)
	if errors.Is(err, grants.ErrNotFound) {
		respondError(w, http.StatusNotFound, "not_found", "no such grant")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "store_error", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, grant)
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

var errEmptyBody = errors.New("empty body")

func decodeJSON(r *http.Request, out any) error {
	if r.Body == nil {
		return errEmptyBody
	}
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(out); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "eof") {
			return errEmptyBody
		}
		return err
	}
	return nil
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorResponse{Error: message, Code: code})
}
