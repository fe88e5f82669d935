package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"imageserver/internal/http/handlers"
	"imageserver/internal/middleware"
)

// Options tune the transport-level middleware around the tool surface.
type Options struct {
	RateLimitPerMin int
	StaticDir       string
}

// NewRouter assembles the HTTP surface: health, tool invocation, artifact
// browsing and static serving of the images root.
func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()
	r.Use(
		chimw.RealIP,
		chimw.Recoverer,
		middleware.RequestID,
		middleware.Logger(app.Logger),
	)
	if opts.RateLimitPerMin > 0 {
		r.Use(middleware.RateLimit(opts.RateLimitPerMin, time.Minute))
	}

	r.Get("/v1/healthz", app.Health)

	r.Route("/v1/tools", func(r chi.Router) {
		r.Get("/", app.ToolsList)
		r.Post("/{name}", app.ToolsInvoke)
	})

	r.Route("/v1/artifacts", func(r chi.Router) {
		r.Get("/", app.ArtifactsList)
		r.Get("/{key}", app.ArtifactGet)
		r.Get("/{key}/archive", app.ArtifactArchive)
	})

	if opts.StaticDir != "" {
		fs := http.StripPrefix("/static/", http.FileServer(http.Dir(opts.StaticDir)))
		r.Get("/static/*", fs.ServeHTTP)
	}

	return r
}
