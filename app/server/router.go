// Package server wires the HTTP handlers into a router and runs it.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/mytheresa/go-shop-catalog/app/admin"
	"github.com/mytheresa/go-shop-catalog/app/api"
	"github.com/mytheresa/go-shop-catalog/app/catalog"
	"github.com/mytheresa/go-shop-catalog/app/categories"
	"github.com/mytheresa/go-shop-catalog/app/metrics"
	"github.com/mytheresa/go-shop-catalog/app/middleware"
	"github.com/mytheresa/go-shop-catalog/app/properties"
)

// Routes holds everything the router dispatches to.
type Routes struct {
	Catalog    *catalog.CatalogHandler
	Categories *categories.CategoryHandler
	Properties *properties.PropertyHandler
	Admin      *admin.ProductHandler

	// Health reports whether the backing services are reachable.
	Health func(ctx context.Context) error

	// MediaURL and MediaRoot, when both set, serve stored images from the local disk.
	MediaURL  string
	MediaRoot string
}

func NewRouter(routes Routes, log *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.StripSlashes)
	r.Use(metrics.Middleware)
	r.Use(middleware.Logger(log))
	r.Use(middleware.Recovery)

	r.Get("/healthz", healthHandler(routes.Health))
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Get("/products", routes.Catalog.HandleGet)
	r.Get("/products/{sku}", routes.Catalog.HandleGetProduct)

	r.Get("/categories", routes.Categories.HandleGetAll)
	r.Post("/categories", routes.Categories.HandleCreate)
	r.Delete("/categories/{slug}", routes.Categories.HandleDelete)

	r.Get("/properties", routes.Properties.HandleGetAll)
	r.Post("/properties", routes.Properties.HandleCreate)
	r.Post("/properties/{code}/values", routes.Properties.HandleCreateValue)
	r.Delete("/properties/{code}", routes.Properties.HandleDelete)

	r.Post("/admin/products", routes.Admin.HandleSave)

	if routes.MediaURL != "" && routes.MediaRoot != "" && strings.HasPrefix(routes.MediaURL, "/") {
		prefix := strings.TrimRight(routes.MediaURL, "/")
		r.Handle(prefix+"/*", http.StripPrefix(prefix+"/", http.FileServer(http.Dir(routes.MediaRoot))))
	}

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		api.Error(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		api.Error(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	return r
}

func healthHandler(check func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			if err := check(r.Context()); err != nil {
				api.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
				return
			}
		}
		api.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
