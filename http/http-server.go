package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/austrian-olympiad-informatics/aoi-portal/httpjson"
	"github.com/austrian-olympiad-informatics/aoi-portal/logger"
	"github.com/austrian-olympiad-informatics/aoi-portal/score/scorehttp"
	"github.com/austrian-olympiad-informatics/aoi-portal/score/scoresrvc"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v2"
)

type Options struct {
	AllowedOrigins []string
	LogLevel       slog.Level
	LogJson        bool
	Version        string
	JwtKey         []byte
}

type HttpServer struct {
	router *chi.Mux
	stats  *statsLogger
}

func NewHttpServer(scoreSrvc *scoresrvc.ScoreSrvc, opts Options) *HttpServer {
	router := chi.NewRouter()

	reqLogger := httplog.NewLogger("aoi-scores", httplog.Options{
		LogLevel:         opts.LogLevel,
		JSON:             opts.LogJson,
		Concise:          true,
		RequestHeaders:   false,
		MessageFieldName: "message",
		QuietDownRoutes:  []string{"/healthz"},
		QuietDownPeriod:  time.Minute,
		Tags: map[string]string{
			"version": opts.Version,
		},
	})

	stats := newStatsLogger(5 * time.Second)

	router.Use(logger.RequestIDMiddleware)
	router.Use(httplog.RequestLogger(reqLogger))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{logger.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           3000,
	}))
	router.Use(stats.middleware)

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httpjson.WriteSuccessJson(w, "ok")
	})
	scorehttp.NewScoreHttpHandler(scoreSrvc).RegisterRoutes(router, opts.JwtKey)

	return &HttpServer{
		router: router,
		stats:  stats,
	}
}

func (s *HttpServer) Handler() http.Handler {
	return s.router
}

// Start serves on address until ctx is cancelled, then drains in-flight
// requests for up to ten seconds.
func (s *HttpServer) Start(ctx context.Context, address string) error {
	srv := &http.Server{
		Addr:              address,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	statsCtx, stopStats := context.WithCancel(ctx)
	defer stopStats()
	go s.stats.run(statsCtx)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting http server", "address", address)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server stopped: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down http server: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
