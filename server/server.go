package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"

	"studyrace/service"
)

// Services bundles what the HTTP API calls into
type Services struct {
	Users    service.UserService
	Study    service.StudyService
	Subjects service.SubjectService
	Races    service.RaceService
	Betting  service.BettingService
	Clock    service.Clock
}

// Server exposes the study and race operations as JSON over HTTP
type Server struct {
	svc     Services
	metrics http.Handler
}

// New creates a server. metrics may be nil, in which case /metrics is not mounted.
func New(svc Services, metrics http.Handler) *Server {
	if svc.Clock == nil {
		svc.Clock = service.SystemClock{}
	}
	return &Server{svc: svc, metrics: metrics}
}

// Router returns the HTTP handler with every route mounted
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(requestLogger)
	r.Use(chiMiddleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics)
	}

	r.Route("/v1", func(r chi.Router) {
		r.Get("/leaderboard", s.leaderboard)
		r.Get("/subjects", s.listSubjects)

		r.Route("/users", func(r chi.Router) {
			r.Post("/", s.registerUser)
			r.Route("/{userID}", func(r chi.Router) {
				r.Get("/", s.getUser)
				r.Get("/balance-history", s.balanceHistory)
				r.Get("/bets", s.listBets)
				r.Get("/sessions", s.listSessions)
				r.Post("/sessions", s.recordSession)
				r.Get("/progress", s.periodProgress)
				r.Put("/goal", s.updateGoal)
				r.Get("/subjects", s.listUserSubjects)
				r.Put("/subjects", s.replaceUserSubjects)
			})
		})

		r.Route("/races", func(r chi.Router) {
			r.Post("/", s.createRace)
			r.Get("/", s.listRaces)
			r.Route("/{raceID}", func(r chi.Router) {
				r.Get("/", s.getRace)
				r.Post("/participants", s.enrollParticipant)
				r.Get("/standings", s.standings)
				r.Post("/odds", s.refreshOdds)
				r.Post("/bets", s.placeBet)
			})
		})
	})

	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", addr).Info("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		log.WithFields(log.Fields{
			"method":    r.Method,
			"path":      r.URL.Path,
			"status":    ww.Status(),
			"bytes":     ww.BytesWritten(),
			"duration":  time.Since(start),
			"requestID": chiMiddleware.GetReqID(r.Context()),
		}).Debug("HTTP request")
	})
}
