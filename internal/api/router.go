// Package api serves the POS catalog over HTTP.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/sells-group/pos-catalog/internal/model"
)

// Catalog is the set of catalog operations the API exposes.
type Catalog interface {
	ImportFromOsmNode(ctx context.Context, nodeID int64) (*model.Pos, error)
	List(ctx context.Context) ([]model.Pos, error)
	Get(ctx context.Context, id string) (*model.Pos, error)
	Upsert(ctx context.Context, p *model.Pos) (*model.Pos, error)
	Clear(ctx context.Context) (int, error)
}

// Options configures the router.
type Options struct {
	// AllowedOrigins lists CORS origins. Empty disables CORS headers.
	AllowedOrigins []string
}

// NewRouter builds the HTTP handler for the catalog.
func NewRouter(c Catalog, opts Options) http.Handler {
	h := &handler{catalog: c}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	if len(opts.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: opts.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}))
	}

	r.Get("/health", h.health)
	r.Route("/api/pos", func(r chi.Router) {
		r.Get("/", h.listPos)
		r.Put("/", h.upsertPos)
		r.Delete("/", h.clearPos)
		r.Get("/{id}", h.getPos)
		r.Post("/import/osm/{nodeId}", h.importOsmNode)
	})

	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		zap.L().Debug("api: request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}
