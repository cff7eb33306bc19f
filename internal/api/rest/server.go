package rest

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/gridrank/gridrank/internal/service"
)

// Server is the REST API server exposing computed rankings.
type Server struct {
	port    string
	server  *http.Server
	handler *Handler
}

// NewServer creates a new REST API server.
func NewServer(port string, rankings *service.RankingService, defaultSeason int) *Server {
	handler := NewHandler(rankings, defaultSeason)

	router := mux.NewRouter()

	// Apply middleware
	router.Use(RecoveryMiddleware)
	router.Use(LoggingMiddleware)
	router.Use(CORSMiddleware)

	// Health check
	router.HandleFunc("/health", handler.HealthCheck).Methods("GET")

	// API v1 routes
	api := router.PathPrefix("/api/v1").Subrouter()

	// Rankings
	api.HandleFunc("/rankings", handler.GetRankings).Methods("GET")
	api.HandleFunc("/rankings/sources", handler.GetRankingSources).Methods("GET")
	api.HandleFunc("/rankings/projected", handler.GetProjectedRankings).Methods("GET")

	// Teams
	api.HandleFunc("/teams", handler.GetTeams).Methods("GET")
	api.HandleFunc("/teams/{team}/schedule", handler.GetTeamSchedule).Methods("GET")
	api.HandleFunc("/teams/{team}/record", handler.GetTeamRecord).Methods("GET")

	return &Server{
		port:    port,
		handler: handler,
		server: &http.Server{
			Addr:    fmt.Sprintf(":%s", port),
			Handler: router,
		},
	}
}

// Start starts the REST API server.
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
