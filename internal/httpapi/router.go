// Package httpapi wires the reel HTTP API.
package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"reel/internal/httpapi/handlers"
	"reel/internal/httpkit"
	"reel/internal/pkg/logger"
	"reel/internal/pkg/middleware"
)

type Deps struct {
	Handlers       handlers.Deps
	AllowedOrigins []string
	Log            *logger.Logger
}

func NewRouter(d Deps) http.Handler {
	log := d.Log
	if log == nil {
		log = logger.Discard()
	}
	if d.Handlers.Log == nil {
		d.Handlers.Log = log
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging(log))
	r.Use(middleware.Recovery(log))
	r.Use(httpkit.CORS(httpkit.CORSOptions{
		AllowedOrigins: d.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader},
		MaxAgeSeconds:  600,
	}))

	h := handlers.New(d.Handlers)
	wrap := func(fn middleware.ErrorHandlerFunc) http.HandlerFunc {
		return middleware.WrapHandler(log, fn)
	}

	// ---- HEALTH ----
	r.Get("/health", h.Health)
	r.Get("/help", wrap(h.Help))

	// ---- RENDERS (synchronous, this process) ----
	r.Post("/renders", wrap(h.PostRender))
	r.Get("/renders", wrap(h.ListRenders))
	r.Delete("/renders", wrap(h.DeleteRenders))
	r.Post("/scenes", wrap(h.PostScenes))
	r.Get("/output", wrap(h.GetOutput))

	// ---- JOBS (queued, worker) ----
	r.Post("/jobs", wrap(h.PostJob))
	r.Get("/jobs", wrap(h.ListJobs))
	r.Get("/jobs/{jobId}", wrap(h.GetJob))
	r.Get("/jobs/{jobId}/artifact", wrap(h.GetJobArtifact))

	return r
}
