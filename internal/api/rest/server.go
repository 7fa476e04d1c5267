package rest

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/fortuna/apex/internal/season"
)

// Server represents the REST API server
type Server struct {
	port    string
	server  *http.Server
	handler *Handler
}

// NewServer creates a new REST API server
func NewServer(port string, orchestrator *season.Orchestrator) *Server {
	handler := NewHandler(orchestrator)

	router := mux.NewRouter()

	// Apply middleware
	router.Use(RecoveryMiddleware)
	router.Use(LoggingMiddleware)
	router.Use(CORSMiddleware)

	// Health check
	router.HandleFunc("/health", handler.HealthCheck).Methods("GET")

	// API v1 routes
	api := router.PathPrefix("/api/v1").Subrouter()

	// Calendar
	api.HandleFunc("/calendar", handler.GetCalendar).Methods("GET")

	// Per-round analytics
	api.HandleFunc("/rounds/{round}/results", handler.GetRoundResults).Methods("GET")
	api.HandleFunc("/rounds/{round}/progression", handler.GetRoundProgression).Methods("GET")
	api.HandleFunc("/rounds/{round}/gaps", handler.GetRoundGaps).Methods("GET")

	// Standings
	api.HandleFunc("/standings/final", handler.GetFinalStandings).Methods("GET")
	api.HandleFunc("/standings/{round}", handler.GetStandings).Methods("GET")

	// Fold control
	api.HandleFunc("/season/process", handler.ProcessSeason).Methods("POST")

	return &Server{
		port:    port,
		handler: handler,
		server: &http.Server{
			Addr:    fmt.Sprintf(":%s", port),
			Handler: router,
		},
	}
}

// Start starts the REST API server
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
