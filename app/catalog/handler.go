package catalog

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/mytheresa/go-shop-catalog/app/api"
	"github.com/mytheresa/go-shop-catalog/app/logger"
	"github.com/mytheresa/go-shop-catalog/models"
)

// TotalCountHeader carries the number of products matching a listing before pagination.
const TotalCountHeader = "X-Total-Count"

const maxLimit = 100

type ProductProvider interface {
	GetFilteredProducts(ctx context.Context, filters models.ProductFilters) ([]models.Product, int64, error)
	GetBySKU(ctx context.Context, sku string) (*models.Product, error)
}

type CatalogHandler struct {
	repo ProductProvider
	urls ImageURLer
}

func NewCatalogHandler(r ProductProvider, urls ImageURLer) *CatalogHandler {
	return &CatalogHandler{
		repo: r,
		urls: urls,
	}
}

// HandleGet lists products ordered by title. Without a limit every matching
// product is returned.
func (h *CatalogHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var filters models.ProductFilters

	if s := q.Get("status"); s != "" {
		status, err := models.ParseProductStatus(s)
		if err != nil {
			api.Error(w, http.StatusBadRequest, "invalid status")
			return
		}
		filters.Status = &status
	}
	filters.Search = strings.TrimSpace(q.Get("search"))

	// Parse pagination query params
	if lStr := q.Get("limit"); lStr != "" {
		if l, err := strconv.Atoi(lStr); err == nil {
			filters.Limit = min(max(l, 1), maxLimit)
		}
	}
	if oStr := q.Get("offset"); oStr != "" && filters.Limit > 0 {
		if o, err := strconv.Atoi(oStr); err == nil && o >= 0 {
			filters.Offset = o
		}
	}

	res, total, err := h.repo.GetFilteredProducts(r.Context(), filters)
	if err != nil {
		logger.WithCtx(r.Context()).Error("failed to list products", "error", err)
		api.Error(w, http.StatusInternalServerError, "failed to get products")
		return
	}

	products := make([]Product, len(res))
	for i, p := range res {
		products[i] = NewProduct(p, h.urls)
	}

	w.Header().Set(TotalCountHeader, strconv.FormatInt(total, 10))
	api.JSON(w, http.StatusOK, products)
}

func (h *CatalogHandler) HandleGetProduct(w http.ResponseWriter, r *http.Request) {
	sku := r.PathValue("sku")

	product, err := h.repo.GetBySKU(r.Context(), sku)
	if err != nil {
		if errors.Is(err, models.ErrProductNotFound) {
			api.Error(w, http.StatusNotFound, "Product not found")
			return
		}
		logger.WithCtx(r.Context()).Error("failed to retrieve product", "sku", sku, "error", err)
		api.Error(w, http.StatusInternalServerError, "Failed to retrieve product")
		return
	}

	api.JSON(w, http.StatusOK, NewProduct(*product, h.urls))
}
