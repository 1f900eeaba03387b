package web

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/AlexGustafsson/lyrebird/internal/generator"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type Options struct {
	// Metrics is served on /metrics if set.
	Metrics http.Handler
}

// NewRouter returns the HTTP handler of the web UI and API.
func NewRouter(generator *generator.Generator, options *Options) http.Handler {
	if options == nil {
		options = &Options{}
	}

	handler := NewHandler(generator)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/", handler.Index)
	r.Post("/generate", handler.Generate)
	r.Post("/download", handler.Download)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("ok"))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/generate", handler.GenerateJSON)
	})

	if options.Metrics != nil {
		r.Handle("/metrics", options.Metrics)
	}

	return r
}

// requestLogger logs each request once it has been served.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		slog.Debug("Handled request",
			slog.String("requestId", middleware.GetReqID(r.Context())),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.Status()),
			slog.Int("bytes", ww.BytesWritten()),
			slog.Duration("duration", time.Since(start)),
		)
	})
}
