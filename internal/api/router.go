package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"lifeline/internal/api/handlers/http/patient"
	"lifeline/internal/api/handlers/http/system"
	"lifeline/internal/api/handlers/http/volunteer"
	"lifeline/internal/config"
	"lifeline/internal/middleware"
	"lifeline/internal/service"
)

type Server struct {
	logger *slog.Logger
	router *chi.Mux
	cfg    config.Config
}

func NewServer(cfg *config.Config, logger *slog.Logger, svc *service.Service) *Server {
	patientHandler := patient.NewHandler(logger, svc.PatientService)
	volunteerHandler := volunteer.NewHandler(logger, svc.VolunteerService)
	systemHandler := system.NewHandler(logger)

	r := InitRouter(patientHandler, volunteerHandler, systemHandler, logger)

	return &Server{
		logger: logger,
		router: r,
		cfg:    *cfg,
	}
}

func InitRouter(patientHandler *patient.Handler, volunteerHandler *volunteer.Handler, systemHandler *system.Handler, logger *slog.Logger) *chi.Mux {
	r := chi.NewMux()

	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Logger)

	r.Route("/api/v1", func(api chi.Router) {
		// PATIENT
		api.Route("/alerts", func(ar chi.Router) {
			ar.Use(middleware.Limit(10, 20, 5*time.Minute, logger))

			ar.Post("/", patientHandler.SubmitAlert)
			ar.Route("/{id}", func(ir chi.Router) {
				ir.Get("/", patientHandler.IncidentStatus)
				ir.Post("/cancel", patientHandler.CancelAlert)
			})
		})

		// VOLUNTEER
		api.Route("/volunteers/{id}", func(vr chi.Router) {
			vr.Use(middleware.Limit(30, 60, 5*time.Minute, logger))

			vr.Post("/status", volunteerHandler.SetStatus)
			vr.Post("/position", volunteerHandler.UpdatePosition)
			vr.Post("/respond", volunteerHandler.RespondToOffer)
			vr.Post("/resolve", volunteerHandler.ResolveIncident)
			vr.Post("/withdraw", volunteerHandler.Withdraw)
			vr.Get("/offers/next", volunteerHandler.NextOffer)
			vr.Get("/assignment", volunteerHandler.CurrentAssignment)
		})

		// SYSTEM
		api.Get("/health", systemHandler.SystemHealth)
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}

func (s *Server) Run(ctx context.Context) error {
	port := s.cfg.Http.Port
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}

	srv := &http.Server{
		Addr:         port,
		Handler:      s.router,
		ReadTimeout:  s.cfg.Http.ReadTimeout,
		WriteTimeout: s.cfg.Http.WriteTimeout,
		IdleTimeout:  30 * time.Second,
	}

	errChan := make(chan error, 1)

	go func() {
		s.logger.Info("starting HTTP server",
			slog.String("addr", srv.Addr),
			slog.Duration("read_timeout", s.cfg.Http.ReadTimeout),
			slog.Duration("write_timeout", s.cfg.Http.WriteTimeout),
		)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("ListenAndServe error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("shutting down HTTP server", slog.String("reason", ctx.Err().Error()))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Http.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("server shutdown failed", slog.Any("error", err))
			return err
		}
		return nil

	case err := <-errChan:
		return err
	}
}
