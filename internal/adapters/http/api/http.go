// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/stadio-ml/stadio/internal/adapters/auth"
	"github.com/stadio-ml/stadio/internal/app"
	"github.com/stadio-ml/stadio/internal/domain/rank"
)

// apiKeyHeader carries the caller's credential on every authenticated route.
const apiKeyHeader = "X-API-Key"

// Dependencies bundles the service operations the handlers need. Using an
// interface bundle keeps the handler layer loosely coupled to the app
// package.
type Dependencies interface {
	Submit(ctx context.Context, userID, filename string, payload []byte) (*app.Receipt, error)
	SelectPrivate(ctx context.Context, userID string, checks map[uint]bool) error
	PublicLeaderboard(ctx context.Context) ([]rank.Entry, error)
	PrivateLeaderboard(ctx context.Context, userID string) ([]rank.Entry, error)
	History(ctx context.Context, userID string) ([]app.HistoryEntry, error)
	StageNow() app.StageInfo
	GetStats(ctx context.Context) (*app.Stats, error)
}

// Entry mirrors the read shape returned by leaderboard queries.
type Entry = rank.Entry

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	submissionsHandler *SubmissionsHandler
	leaderboardHandler *LeaderboardHandler
	selectionsHandler  *SelectionsHandler
	stageHandler       *StageHandler
}

// NewServer creates the API server with all handlers. resolver maps API
// keys to user identities; maxUploadBytes bounds multipart uploads.
func NewServer(deps Dependencies, resolver auth.Resolver, maxUploadBytes int64) *Server {
	return &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(deps),
		submissionsHandler: NewSubmissionsHandler(deps, resolver, maxUploadBytes),
		leaderboardHandler: NewLeaderboardHandler(deps, resolver),
		selectionsHandler:  NewSelectionsHandler(deps, resolver),
		stageHandler:       NewStageHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/stage", MetricsMiddleware(s.stageHandler.HandleStage, "stage"))
	mux.HandleFunc("/submissions", MetricsMiddleware(s.submissionsHandler.HandleSubmissions, "submissions"))
	mux.HandleFunc("/selections", MetricsMiddleware(s.selectionsHandler.HandlePostSelections, "selections"))
	mux.HandleFunc("/leaderboard", MetricsMiddleware(s.leaderboardHandler.HandleGetLeaderboard, "leaderboard"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// identify resolves the caller's API key. An empty header resolves to the
// anonymous identity without error when required is false.
func identify(r *http.Request, resolver auth.Resolver, required bool) (string, error) {
	key := r.Header.Get(apiKeyHeader)
	if key == "" {
		if required {
			return "", auth.ErrInvalidKey
		}
		return "", nil
	}
	return resolver.Resolve(key)
}
