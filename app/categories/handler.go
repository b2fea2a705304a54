package categories

import (
	"context"
	"errors"
	"net/http"

	"github.com/mytheresa/go-shop-catalog/app/api"
	"github.com/mytheresa/go-shop-catalog/app/logger"
	"github.com/mytheresa/go-shop-catalog/models"
)

type CategoryResponse struct {
	Slug       string   `json:"slug"`
	Title      string   `json:"title"`
	Properties []string `json:"properties"`
}

type CategoryProvider interface {
	GetAllCategories(ctx context.Context) ([]models.Category, error)
	CreateCategory(ctx context.Context, category *models.Category, propertyCodes []string) error
	DeleteCategory(ctx context.Context, slug string) error
}

type CategoryHandler struct {
	repo CategoryProvider
}

func NewCategoryHandler(r CategoryProvider) *CategoryHandler {
	return &CategoryHandler{repo: r}
}

func newCategoryResponse(c models.Category) CategoryResponse {
	return CategoryResponse{
		Slug:       c.Slug,
		Title:      c.Title,
		Properties: c.PropertyCodes(),
	}
}

func (h *CategoryHandler) HandleGetAll(w http.ResponseWriter, r *http.Request) {
	categories, err := h.repo.GetAllCategories(r.Context())
	if err != nil {
		logger.WithCtx(r.Context()).Error("failed to fetch categories", "error", err)
		api.Error(w, http.StatusInternalServerError, "failed to fetch categories")
		return
	}

	response := make([]CategoryResponse, len(categories))
	for i, c := range categories {
		response[i] = newCategoryResponse(c)
	}

	api.JSON(w, http.StatusOK, response)
}

func (h *CategoryHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Slug       string   `json:"slug" validate:"required,max=255,slug"`
		Title      string   `json:"title" validate:"required,max=255"`
		Properties []string `json:"properties" validate:"dive,required"`
	}

	if err := api.DecodeJSON(r, &input); err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	category := &models.Category{
		Slug:  input.Slug,
		Title: input.Title,
	}

	if err := h.repo.CreateCategory(r.Context(), category, input.Properties); err != nil {
		switch {
		case errors.Is(err, models.ErrPropertyObjectNotFound):
			api.Error(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, models.ErrCategoryExists):
			api.Error(w, http.StatusConflict, err.Error())
		default:
			logger.WithCtx(r.Context()).Error("failed to create category", "slug", input.Slug, "error", err)
			api.Error(w, http.StatusInternalServerError, "Failed to create category")
		}
		return
	}

	logger.WithCtx(r.Context()).Info("category created", "slug", category.Slug)
	api.JSON(w, http.StatusCreated, newCategoryResponse(*category))
}

// HandleDelete removes a category. Categories that still have products are kept.
func (h *CategoryHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")

	err := h.repo.DeleteCategory(r.Context(), slug)
	switch {
	case err == nil:
		logger.WithCtx(r.Context()).Info("category deleted", "slug", slug)
		api.NoContent(w)
	case errors.Is(err, models.ErrCategoryNotFound):
		api.Error(w, http.StatusNotFound, "Category not found")
	case errors.Is(err, models.ErrCategoryInUse):
		api.Error(w, http.StatusConflict, models.ErrCategoryInUse.Error())
	default:
		logger.WithCtx(r.Context()).Error("failed to delete category", "slug", slug, "error", err)
		api.Error(w, http.StatusInternalServerError, "Failed to delete category")
	}
}
