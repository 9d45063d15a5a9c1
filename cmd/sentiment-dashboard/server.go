package main

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/theimaginaryfoundation/brand-sentiment/sentiment"
	"github.com/theimaginaryfoundation/brand-sentiment/sentiment/fileutils"
	"github.com/theimaginaryfoundation/brand-sentiment/sentiment/logging"
)

type recordLoader interface {
	Load(ctx context.Context) ([]sentiment.Record, error)
}

type dashboard struct {
	source recordLoader
	opts   sentiment.AggregateOptions
	logger *zap.Logger
}

// newRouter serves read-only JSON views over the records file. The file is reloaded on every
// request; a load failure is served as an empty report.
func newRouter(source recordLoader, opts sentiment.AggregateOptions, corsOrigins []string, logger *zap.Logger) http.Handler {
	d := dashboard{source: source, opts: opts, logger: logging.OrNop(logger)}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(requestLogger(d.logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: corsOrigins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	router.Route("/api", func(r chi.Router) {
		r.Get("/summary", d.getSummary)
		r.Get("/report", d.getReport)
	})
	return router
}

func (d dashboard) report(ctx context.Context) sentiment.Report {
	records, err := d.source.Load(ctx)
	if err != nil {
		d.logger.Warn("load records failed; serving empty report", zap.Error(err))
		records = nil
	}
	return sentiment.Aggregate(records, d.opts)
}

func (d dashboard) getSummary(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, d.report(r.Context()).Summary)
}

func (d dashboard) getReport(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, d.report(r.Context()))
}

func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, err := fileutils.MarshalJSON(payload, false)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("Failed to marshal response"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Info("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("elapsed", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())))
		})
	}
}
