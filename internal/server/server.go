// Package server is the composition root: it probes the durable store,
// selects the backing repositories, wires services and handlers into the
// route tree, and runs the HTTP server with graceful shutdown.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/SENODROOM/PublicBoard-Backend/internal/auth"
	"github.com/SENODROOM/PublicBoard-Backend/internal/config"
	"github.com/SENODROOM/PublicBoard-Backend/internal/handler"
	"github.com/SENODROOM/PublicBoard-Backend/internal/middleware"
	"github.com/SENODROOM/PublicBoard-Backend/internal/repository"
	"github.com/SENODROOM/PublicBoard-Backend/internal/repository/memstore"
	sqliteRepo "github.com/SENODROOM/PublicBoard-Backend/internal/repository/sqlite"
	"github.com/SENODROOM/PublicBoard-Backend/internal/service"
)

// Server owns the router, the selected stores, and the durable connection
// when one was opened.
type Server struct {
	router *chi.Mux
	cfg    config.Config
	logger *slog.Logger
	stores *repository.Stores
	db     *sqliteRepo.DB // nil in fallback mode
	auth   *service.AuthService
}

// New builds the full dependency tree. The durable store is probed exactly
// once here: if it cannot be opened the seeded in-memory fallback takes over
// for the life of the process, and only a restart re-probes.
func New(cfg config.Config, logger *slog.Logger) (*Server, error) {
	s := &Server{
		router: chi.NewRouter(),
		cfg:    cfg,
		logger: logger,
	}

	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		logger.Warn("durable store unavailable, using in-memory fallback",
			slog.String("db_path", cfg.DBPath),
			slog.String("error", err.Error()),
		)
		mem := memstore.New()
		s.stores = &repository.Stores{
			Mode:      repository.ModeFallback,
			Issues:    mem,
			Users:     mem,
			Donations: mem,
		}
	} else {
		s.db = db
		s.stores = &repository.Stores{
			Mode:      repository.ModeDurable,
			Issues:    db,
			Users:     db,
			Donations: db,
			Reports:   db,
		}
		logger.Info("durable store selected", slog.String("db_path", cfg.DBPath))
	}

	if err := s.setupRoutes(); err != nil {
		if s.db != nil {
			s.db.Close()
		}
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	tokens, err := auth.NewTokenService(s.cfg.JWTSecret)
	if err != nil {
		return err
	}
	passwords := auth.NewPasswordService()

	authService := service.NewAuthService(s.stores.Users, tokens, passwords, s.cfg.AdminEmail, s.logger)
	issueService := service.NewIssueService(s.stores.Issues, s.logger)
	userService := service.NewUserService(s.stores.Users, s.stores.Issues, s.logger)
	donationService := service.NewDonationService(s.stores.Donations, s.logger)
	reportService := service.NewReportService(s.stores.Reports, s.logger)
	s.auth = authService

	healthHandler := handler.NewHealthHandler(s.stores)
	authHandler := handler.NewAuthHandler(authService, s.logger)
	issueHandler := handler.NewIssueHandler(issueService, reportService, s.logger)
	donationHandler := handler.NewDonationHandler(donationService, s.logger)
	adminHandler := handler.NewAdminHandler(issueService, userService, donationService, reportService, s.logger)

	requirePrincipal := auth.RequirePrincipal(tokens, s.stores.Users)
	optionalPrincipal := auth.OptionalPrincipal(tokens, s.stores.Users)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/health", healthHandler.HandleHealth)

		r.Post("/auth/register", authHandler.HandleRegister)
		r.Post("/auth/login", authHandler.HandleLogin)
		r.With(requirePrincipal).Get("/auth/me", authHandler.HandleMe)

		r.Get("/issues", issueHandler.HandleList)
		r.Get("/issues/stats", issueHandler.HandleStats)
		r.Get("/issues/{id}", issueHandler.HandleGet)
		r.With(optionalPrincipal).Post("/issues", issueHandler.HandleCreate)
		r.With(requirePrincipal).Post("/issues/{id}/support", issueHandler.HandleSupport)
		r.With(requirePrincipal).Patch("/issues/{id}/status", issueHandler.HandleUpdateStatus)

		r.Get("/donations", donationHandler.HandleList)
		r.Get("/donations/stats", donationHandler.HandleStats)
		r.With(optionalPrincipal).Post("/donations", donationHandler.HandleCreate)

		r.Route("/admin", func(r chi.Router) {
			r.Use(requirePrincipal)
			r.Use(auth.RequireAdmin)

			r.Get("/overview", adminHandler.HandleOverview)

			r.Get("/users", adminHandler.HandleListUsers)
			r.Get("/users/{id}", adminHandler.HandleGetUser)
			r.Patch("/users/{id}/role", adminHandler.HandleChangeRole)
			r.Delete("/users/{id}", adminHandler.HandleDeleteUser)

			r.Get("/issues", adminHandler.HandleListIssues)
			r.Patch("/issues/{id}", adminHandler.HandlePatchIssue)
			r.Delete("/issues/{id}", adminHandler.HandleDeleteIssue)
			r.Post("/issues/bulk-status", adminHandler.HandleBulkStatus)
			r.Post("/issues/bulk-delete", adminHandler.HandleBulkDelete)

			r.Get("/donations", adminHandler.HandleListDonations)
		})
	})

	return nil
}

// SeedAdmin ensures the configured admin account exists in whichever store
// was selected.
func (s *Server) SeedAdmin(ctx context.Context) error {
	return s.auth.SeedAdmin(ctx, s.cfg.AdminName, s.cfg.AdminEmail, s.cfg.AdminPassword)
}

// Start runs the server until SIGINT or SIGTERM, then drains in-flight
// requests for up to 30 seconds and closes the durable store.
func (s *Server) Start() error {
	if s.db != nil {
		defer s.db.Close()
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.cfg.Port),
			slog.String("store", s.stores.Mode),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
