// Package admin implements the administrative write endpoints of the catalog.
package admin

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/gosimple/slug"

	"github.com/mytheresa/go-shop-catalog/app/api"
	"github.com/mytheresa/go-shop-catalog/app/catalog"
	"github.com/mytheresa/go-shop-catalog/app/logger"
	"github.com/mytheresa/go-shop-catalog/app/media"
	"github.com/mytheresa/go-shop-catalog/app/storage"
	"github.com/mytheresa/go-shop-catalog/models"
)

// MaxImageSize is the largest accepted product image upload.
const MaxImageSize = 5 << 20

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

type CategoryFinder interface {
	GetBySlug(ctx context.Context, slug string) (*models.Category, error)
}

type ProductFinder interface {
	GetBySKU(ctx context.Context, sku string) (*models.Product, error)
}

type ProductSaver interface {
	Save(ctx context.Context, product *models.Product) error
}

type ProductForm struct {
	Title    string `form:"title" validate:"required,max=255"`
	SKU      string `form:"sku" validate:"required,max=255"`
	Price    string `form:"price" validate:"omitempty,decimal"`
	Status   string `form:"status" validate:"omitempty,oneof=in_stock on_order expected out_of_stock not_produced"`
	Slug     string `form:"slug" validate:"omitempty,max=255,slug"`
	Category string `form:"category" validate:"required"`
}

type ProductHandler struct {
	categories CategoryFinder
	finder     ProductFinder
	products   ProductSaver
	disk       storage.Disk
}

func NewProductHandler(categories CategoryFinder, finder ProductFinder, products ProductSaver, disk storage.Disk) *ProductHandler {
	return &ProductHandler{
		categories: categories,
		finder:     finder,
		products:   products,
		disk:       disk,
	}
}

// HandleSave creates or replaces the product identified by the submitted SKU.
// The optional image upload is stored under the image directory before the
// product is saved; a failure to derive its variant rejects the request.
// Without an upload an existing product keeps its current image.
func (h *ProductHandler) HandleSave(w http.ResponseWriter, r *http.Request) {
	log := logger.WithCtx(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, MaxImageSize+1<<20)
	if err := r.ParseMultipartForm(MaxImageSize); err != nil {
		api.Error(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	form := ProductForm{
		Title:    strings.TrimSpace(r.PostFormValue("title")),
		SKU:      strings.TrimSpace(r.PostFormValue("sku")),
		Price:    strings.TrimSpace(r.PostFormValue("price")),
		Status:   strings.TrimSpace(r.PostFormValue("status")),
		Slug:     strings.TrimSpace(r.PostFormValue("slug")),
		Category: strings.TrimSpace(r.PostFormValue("category")),
	}
	if err := api.Validate(&form); err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	price, err := models.ParsePrice(form.Price)
	if err != nil {
		api.Error(w, http.StatusBadRequest, "price must be between 0 and "+models.MaxPrice.StringFixed(2)+" with at most 2 decimal places")
		return
	}

	category, err := h.categories.GetBySlug(r.Context(), form.Category)
	if err != nil {
		if errors.Is(err, models.ErrCategoryNotFound) {
			api.Error(w, http.StatusBadRequest, "Unknown category")
			return
		}
		log.Error("failed to fetch category", "slug", form.Category, "error", err)
		api.Error(w, http.StatusInternalServerError, "Failed to save product")
		return
	}

	product := &models.Product{
		Title:      form.Title,
		SKU:        form.SKU,
		Status:     models.ProductStatus(form.Status),
		Slug:       form.Slug,
		Price:      price,
		CategoryID: category.ID,
		Category:   *category,
	}
	if product.Slug == "" {
		product.Slug = slug.Make(form.Title)
	}

	var uploaded string
	file, header, err := r.FormFile("image")
	switch {
	case errors.Is(err, http.ErrMissingFile):
		existing, err := h.finder.GetBySKU(r.Context(), product.SKU)
		switch {
		case err == nil:
			product.Image = existing.Image
			product.ImageVariant = existing.ImageVariant
		case !errors.Is(err, models.ErrProductNotFound):
			log.Error("failed to fetch product", "sku", product.SKU, "error", err)
			api.Error(w, http.StatusInternalServerError, "Failed to save product")
			return
		}
	case err != nil:
		api.Error(w, http.StatusBadRequest, "Invalid image upload")
		return
	default:
		defer file.Close()
		name, status, msg := h.storeImage(r.Context(), file, header)
		if status != 0 {
			api.Error(w, status, msg)
			return
		}
		product.Image = name
		uploaded = name
	}

	if err := h.products.Save(r.Context(), product); err != nil {
		if uploaded != "" {
			if derr := h.disk.Delete(context.WithoutCancel(r.Context()), uploaded); derr != nil {
				log.Warn("failed to remove rejected upload", "image", uploaded, "error", derr)
			}
		}

		var perr *media.ImageProcessingError
		switch {
		case errors.As(err, &perr):
			log.Warn("image processing failed", "sku", product.SKU, "error", err)
			api.Error(w, http.StatusUnprocessableEntity, "image processing failed")
		case errors.Is(err, models.ErrInvalidStatus):
			api.Error(w, http.StatusBadRequest, "invalid status")
		case errors.Is(err, models.ErrInvalidPrice):
			api.Error(w, http.StatusBadRequest, "invalid price")
		default:
			log.Error("failed to save product", "sku", product.SKU, "error", err)
			api.Error(w, http.StatusInternalServerError, "Failed to save product")
		}
		return
	}

	log.Info("product saved", "sku", product.SKU, "image", product.Image, "variant", product.ImageVariant)

	// Reload for the property values the product already carries.
	saved, err := h.finder.GetBySKU(r.Context(), product.SKU)
	if err != nil {
		log.Warn("failed to reload saved product", "sku", product.SKU, "error", err)
		saved = product
	}
	api.JSON(w, http.StatusCreated, catalog.NewProduct(*saved, h.disk))
}

// storeImage writes the upload under the image directory. A non-zero status
// reports a rejected upload.
func (h *ProductHandler) storeImage(ctx context.Context, file multipart.File, header *multipart.FileHeader) (name string, status int, msg string) {
	if header.Size > MaxImageSize {
		return "", http.StatusBadRequest, fmt.Sprintf("Image must not exceed %d MiB", MaxImageSize>>20)
	}

	filename := path.Base(strings.ReplaceAll(header.Filename, `\`, "/"))
	ext := strings.ToLower(path.Ext(filename))
	if !imageExtensions[ext] || filename == ext {
		return "", http.StatusBadRequest, "Unsupported image type"
	}

	name, err := h.availableName(ctx, models.ImageName(filename))
	if err != nil {
		logger.WithCtx(ctx).Error("failed to check image name", "image", filename, "error", err)
		return "", http.StatusInternalServerError, "Failed to store image"
	}

	if err := h.disk.Put(ctx, name, io.LimitReader(file, MaxImageSize+1)); err != nil {
		logger.WithCtx(ctx).Error("failed to store image", "image", name, "error", err)
		return "", http.StatusInternalServerError, "Failed to store image"
	}
	return name, 0, ""
}

// availableName returns name, or name with a random suffix when a file or a
// derived variant already occupies it.
func (h *ProductHandler) availableName(ctx context.Context, name string) (string, error) {
	candidate := name
	for {
		taken, err := h.occupied(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		base, ext := models.SplitImageName(name)
		candidate = base + "_" + uuid.NewString()[:7] + "." + ext
	}
}

func (h *ProductHandler) occupied(ctx context.Context, name string) (bool, error) {
	if ok, err := h.disk.Exists(ctx, name); err != nil || ok {
		return ok, err
	}
	variant, ok := models.VariantName(name)
	if !ok {
		return false, nil
	}
	return h.disk.Exists(ctx, variant)
}
