// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/crowdguess/internal/domain/types"
	"github.com/okian/crowdguess/pkg/logger"
)

// Default leaderboard limits.
const (
	DefaultLeaderboardLimit = 10
	DefaultMaxLimit         = 100
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	SessionDependencies
	LeaderboardDependencies
	RankDependencies
	BadgeDependencies
}

// Option configures the Server.
type Option func(*Server)

// WithLimits sets the default and maximum leaderboard page sizes.
func WithLimits(defaultLimit, maxLimit int) Option {
	return func(s *Server) {
		if maxLimit > 0 {
			s.maxLimit = maxLimit
		}
		if defaultLimit > 0 {
			s.defaultLimit = defaultLimit
		}
	}
}

// WithLogger sets the logger used by streaming handlers.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// Server wires HTTP routes for the game API.
type Server struct {
	maxLimit     int
	defaultLimit int
	logger       logger.Logger

	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	sessionsHandler    *SessionsHandler
	leaderboardHandler *LeaderboardHandler
	rankHandler        *RankHandler
	badgesHandler      *BadgesHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{
		maxLimit:     DefaultMaxLimit,
		defaultLimit: DefaultLeaderboardLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("api")
	}
	if s.defaultLimit > s.maxLimit {
		s.defaultLimit = s.maxLimit
	}

	s.healthHandler = NewHealthHandler()
	s.statsHandler = NewStatsHandler(statsProvider)
	s.sessionsHandler = NewSessionsHandler(deps, s.logger)
	s.leaderboardHandler = NewLeaderboardHandler(deps, s.defaultLimit, s.maxLimit)
	s.rankHandler = NewRankHandler(deps)
	s.badgesHandler = NewBadgesHandler(deps)
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/sessions", MetricsMiddleware(s.sessionsHandler.HandleCreate, "sessions"))
	mux.HandleFunc("/sessions/{id}", MetricsMiddleware(s.sessionsHandler.HandleGet, "session"))
	mux.HandleFunc("/sessions/{id}/guesses", MetricsMiddleware(s.sessionsHandler.HandleGuess, "guesses"))
	mux.HandleFunc("/sessions/{id}/next", MetricsMiddleware(s.sessionsHandler.HandleNext, "next"))
	mux.HandleFunc("/sessions/{id}/ws", s.sessionsHandler.HandleStream)
	mux.HandleFunc("/leaderboard", MetricsMiddleware(s.leaderboardHandler.HandleGetLeaderboard, "leaderboard"))
	mux.HandleFunc("/rank/{player_id}", MetricsMiddleware(s.rankHandler.HandleGetRank, "rank"))
	mux.HandleFunc("/players/{id}/badges", MetricsMiddleware(s.badgesHandler.HandleList, "badges"))
}

type errorResponse struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Session *types.SessionSnapshot `json:"session,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	writeErrorWithSession(w, err, nil)
}

func writeErrorWithSession(w http.ResponseWriter, err error, snap *types.SessionSnapshot) {
	status, code := classify(err)
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg, Session: snap})
}
