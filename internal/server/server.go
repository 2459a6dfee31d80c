// Package server exposes the services over JSON HTTP. Handlers decode,
// delegate and encode; all business rules live in the service layer.
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/grouptab/grouptab/internal/auth"
	"github.com/grouptab/grouptab/internal/middleware"
	"github.com/grouptab/grouptab/internal/service"
)

// Server holds the services behind the HTTP API.
type Server struct {
	authService    *service.AuthService
	groupService   *service.GroupService
	expenseService *service.ExpenseService
	jwtManager     *auth.JWTManager
}

// New creates a Server.
func New(authService *service.AuthService, groupService *service.GroupService, expenseService *service.ExpenseService, jwtManager *auth.JWTManager) *Server {
	return &Server{
		authService:    authService,
		groupService:   groupService,
		expenseService: expenseService,
		jwtManager:     jwtManager,
	}
}

// Router builds the chi router with all routes and middleware attached.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Metrics)
	r.Use(middleware.Logging)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/register", s.handleRegister)
		r.Post("/auth/login", s.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(s.jwtManager))

			r.Get("/auth/me", s.handleMe)

			r.Route("/groups", func(r chi.Router) {
				r.Post("/", s.handleCreateGroup)
				r.Get("/", s.handleListGroups)

				r.Route("/{groupID}", func(r chi.Router) {
					r.Get("/", s.handleGetGroup)
					r.Delete("/", s.handleDeleteGroup)

					r.Post("/members", s.handleAddMember)
					r.Get("/members", s.handleListMembers)

					r.Post("/expenses", s.handleCreateExpense)
					r.Get("/expenses", s.handleListExpenses)

					r.Get("/summary", s.handleGroupSummary)
				})
			})
		})
	})

	return r
}

// HTTPServer wraps the router in an http.Server with sane timeouts.
func (s *Server) HTTPServer(addr string) *http.Server {
	return &http.Server{
		Addr:         addr,
		Handler:      s.Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}
