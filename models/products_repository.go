package models

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProductsRepository struct {
	db *gorm.DB
}

var (
	// ErrProductNotFound is returned when a product is not found.
	ErrProductNotFound = errors.New("product not found")
	// ErrImageReplaced is returned when a variant result arrives for an image
	// the product no longer references.
	ErrImageReplaced = errors.New("product image was replaced")
)

// ProductFilters narrows a product listing.
// A zero Limit means no pagination: every matching product is returned.
type ProductFilters struct {
	Status *ProductStatus
	Search string
	Offset int
	Limit  int
}

func NewProductsRepository(db *gorm.DB) *ProductsRepository {
	return &ProductsRepository{
		db: db,
	}
}

func withRelations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Category").
		Preload("Properties", func(db *gorm.DB) *gorm.DB {
			return db.Order("value_string, value_decimal")
		}).
		Preload("Properties.PropertyObject")
}

// GetFilteredProducts returns the products matching filters ordered by title,
// along with the number of matching products before pagination.
func (r *ProductsRepository) GetFilteredProducts(ctx context.Context, filters ProductFilters) ([]Product, int64, error) {
	var products []Product
	var total int64

	query := r.db.WithContext(ctx).Model(&Product{})

	if filters.Status != nil {
		query = query.Where("products.status = ?", *filters.Status)
	}
	like := likeOperator(r.db)
	for _, term := range SearchTerms(filters.Search) {
		pattern := "%" + escapeLike(strings.ToLower(term)) + "%"
		query = query.Where("(LOWER(products.sku) "+like+" OR LOWER(products.title) "+like+")", pattern, pattern)
	}

	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.
		Scopes(withRelations).
		Order("products.title ASC, products.id ASC")
	if filters.Limit > 0 {
		query = query.Offset(filters.Offset).Limit(filters.Limit)
	}

	if err := query.Find(&products).Error; err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

func (r *ProductsRepository) GetBySKU(ctx context.Context, sku string) (*Product, error) {
	var product Product
	if err := r.db.WithContext(ctx).
		Scopes(withRelations).
		Where("sku = ?", sku).
		First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err // Other DB error
	}
	return &product, nil
}

// GetByVariantStatus returns the products whose derived image is in one of statuses.
func (r *ProductsRepository) GetByVariantStatus(ctx context.Context, statuses ...VariantStatus) ([]Product, error) {
	var products []Product
	if err := r.db.WithContext(ctx).
		Where("image_variant IN ?", statuses).
		Order("id").
		Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// SaveProduct inserts the product or, when a product with the same SKU exists,
// overwrites it. beforeWrite, when not nil, runs inside the same transaction
// just before the row is written; an error from it aborts the whole save.
func (r *ProductsRepository) SaveProduct(ctx context.Context, product *Product, beforeWrite func(p *Product) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing Product
		err := tx.Select("id").
			Where("sku = ?", product.SKU).
			First(&existing).Error
		switch {
		case err == nil:
			product.ID = existing.ID
		case errors.Is(err, gorm.ErrRecordNotFound):
			product.ID = 0
		default:
			return err
		}

		if product.CategoryID == 0 {
			product.CategoryID = product.Category.ID
		}
		if product.Status == "" {
			product.Status = StatusInStock
		}
		if !product.Status.Valid() {
			return fmt.Errorf("%w: %q", ErrInvalidStatus, product.Status)
		}
		if product.Price.Valid && !ValidPrice(product.Price.Decimal) {
			return fmt.Errorf("%w: %s", ErrInvalidPrice, product.Price.Decimal)
		}

		if beforeWrite != nil {
			if err := beforeWrite(product); err != nil {
				return err
			}
		}
		if product.ImageVariant == "" {
			product.ImageVariant = VariantNone
		}

		return tx.Omit(clause.Associations).Save(product).Error
	})
}

// SetImageVariant records the state of the derived image for the product with
// the given SKU, provided the product still references image. A product whose
// image was replaced in the meantime is left untouched and ErrImageReplaced
// is returned.
func (r *ProductsRepository) SetImageVariant(ctx context.Context, sku, image string, status VariantStatus) error {
	db := r.db.WithContext(ctx)
	res := db.Model(&Product{}).
		Where("sku = ? AND image = ?", sku, image).
		Update("image_variant", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}

	// MySQL reports zero affected rows when the status is already set.
	var current Product
	if err := db.Select("image").Where("sku = ?", sku).First(&current).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductNotFound
		}
		return err
	}
	if current.Image != image {
		return ErrImageReplaced
	}
	return nil
}

// SearchTerms splits a search query on whitespace and commas. A product
// matches the query when every term occurs in its SKU or title.
func SearchTerms(search string) []string {
	return strings.FieldsFunc(search, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// likeOperator returns a LIKE operator using backslash as escape character.
// Postgres and MySQL default to it; SQLite needs it spelled out.
func likeOperator(db *gorm.DB) string {
	if db.Dialector.Name() == "sqlite" {
		return `LIKE ? ESCAPE '\'`
	}
	return "LIKE ?"
}
