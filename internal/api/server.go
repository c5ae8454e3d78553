// Package api exposes the recital planner over HTTP.
package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mmynk/recitals/internal/apperr"
	"github.com/mmynk/recitals/internal/middleware"
	"github.com/mmynk/recitals/internal/respond"
	"github.com/mmynk/recitals/internal/service"
	"github.com/mmynk/recitals/internal/storage"
)

// Deps are the collaborators the HTTP layer needs.
type Deps struct {
	Store    storage.Store
	Auth     *service.AuthService
	Recitals *service.RecitalService
	Songs    *service.SongService
	Users    *service.UserService
	Verifier middleware.TokenVerifier

	// CORSOrigin is sent as Access-Control-Allow-Origin.
	CORSOrigin string
	// Limiter throttles registration and login. Nil disables it.
	Limiter *middleware.RateLimiter
}

// Server routes HTTP requests to the services.
type Server struct {
	deps   Deps
	router *mux.Router
}

// NewServer builds the router for deps.
func NewServer(deps Deps) *Server {
	if deps.CORSOrigin == "" {
		deps.CORSOrigin = "*"
	}
	s := &Server{deps: deps, router: mux.NewRouter()}
	s.setupRoutes()
	return s
}

// Handler returns the complete handler chain.
func (s *Server) Handler() http.Handler {
	return middleware.CORS(s.deps.CORSOrigin)(middleware.Logging(s.router))
}

func (s *Server) setupRoutes() {
	r := s.router
	r.NotFoundHandler = middleware.Metrics(http.HandlerFunc(routeNotFound))
	r.MethodNotAllowedHandler = middleware.Metrics(http.HandlerFunc(methodNotAllowed))
	r.Use(middleware.Metrics)

	r.HandleFunc("/ping", s.ping).Methods(http.MethodGet)
	r.HandleFunc("/health", s.health).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	// Public
	users := r.PathPrefix("/users").Subrouter()
	if s.deps.Limiter != nil {
		users.Use(s.deps.Limiter.Middleware)
	}
	users.HandleFunc("/register", s.register).Methods(http.MethodPost)
	users.HandleFunc("/login", s.login).Methods(http.MethodPost)

	r.HandleFunc("/songs", s.listSongs).Methods(http.MethodGet)

	requireAuth := middleware.RequireAuth(s.deps.Verifier, s.deps.Store)

	// Authenticated users
	authed := r.PathPrefix("/auth").Subrouter()
	authed.Use(requireAuth)
	authed.HandleFunc("/me", s.me).Methods(http.MethodGet)

	recitals := authed.PathPrefix("/recitals").Subrouter()
	recitals.HandleFunc("", s.createRecital).Methods(http.MethodPost)
	recitals.HandleFunc("", s.listRecitals).Methods(http.MethodGet)
	recitals.HandleFunc("/{id}", s.getRecital).Methods(http.MethodGet)
	recitals.HandleFunc("/{id}", s.replaceRecital).Methods(http.MethodPut)
	recitals.HandleFunc("/{id}", s.patchRecital).Methods(http.MethodPatch)
	recitals.HandleFunc("/{id}", s.deleteRecital).Methods(http.MethodDelete)
	recitals.HandleFunc("/{id}/songs", s.listProgram).Methods(http.MethodGet)
	recitals.HandleFunc("/{id}/songs", s.reorderProgram).Methods(http.MethodPut)
	recitals.HandleFunc("/{id}/songs/{songId}", s.addToProgram).Methods(http.MethodPost)
	recitals.HandleFunc("/{id}/songs/{songId}", s.removeFromProgram).Methods(http.MethodDelete)

	// Admins
	admin := r.PathPrefix("/admin").Subrouter()
	admin.Use(requireAuth, middleware.RequireAdmin)
	admin.HandleFunc("/songs", s.listSongs).Methods(http.MethodGet)
	admin.HandleFunc("/songs", s.createSong).Methods(http.MethodPost)
	admin.HandleFunc("/songs/{songId}", s.getSong).Methods(http.MethodGet)
	admin.HandleFunc("/songs/{songId}", s.patchSong).Methods(http.MethodPatch)
	admin.HandleFunc("/songs/{songId}", s.deleteSong).Methods(http.MethodDelete)
	admin.HandleFunc("/users", s.listUsers).Methods(http.MethodGet)
	admin.HandleFunc("/users/{userId}", s.patchUser).Methods(http.MethodPatch)
	admin.HandleFunc("/users/{userId}", s.deleteUser).Methods(http.MethodDelete)
	admin.HandleFunc("/recitals", s.listAllRecitals).Methods(http.MethodGet)
}

func (s *Server) ping(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, respond.Message{Message: "pong"})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Store.Ping(r.Context()); err != nil {
		slog.Error("Health check failed", "error", err)
		respond.Error(w, r, apperr.Internal("database unreachable", err))
		return
	}
	respond.JSON(w, http.StatusOK, map[string]string{"database": "ok"})
}

func routeNotFound(w http.ResponseWriter, r *http.Request) {
	respond.Fail(w, http.StatusNotFound, "Route not found")
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	respond.Fail(w, http.StatusMethodNotAllowed, "Method not allowed")
}
