package models

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrCategoryNotFound is returned when a category is not found.
	ErrCategoryNotFound = errors.New("category not found")
	// ErrCategoryInUse is returned when deleting a category that products still reference.
	ErrCategoryInUse = errors.New("category still has products")
	// ErrCategoryExists is returned when creating a category whose slug is taken.
	ErrCategoryExists = errors.New("category already exists")
)

type CategoriesRepository struct {
	db *gorm.DB
}

func NewCategoriesRepository(db *gorm.DB) *CategoriesRepository {
	return &CategoriesRepository{db: db}
}

func (r *CategoriesRepository) GetAllCategories(ctx context.Context) ([]Category, error) {
	var categories []Category
	if err := r.db.WithContext(ctx).
		Preload("PropertyObjects", func(db *gorm.DB) *gorm.DB {
			return db.Order("title")
		}).
		Order("title").
		Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *CategoriesRepository) GetBySlug(ctx context.Context, slug string) (*Category, error) {
	var category Category
	if err := r.db.WithContext(ctx).
		Where("slug = ?", slug).
		First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return &category, nil
}

// CreateCategory inserts the category and attaches the property objects with the given codes.
// Every code must name an existing property object.
func (r *CategoriesRepository) CreateCategory(ctx context.Context, category *Category, propertyCodes []string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var taken int64
		if err := tx.Model(&Category{}).Where("slug = ?", category.Slug).Count(&taken).Error; err != nil {
			return err
		}
		if taken > 0 {
			return ErrCategoryExists
		}

		if len(propertyCodes) > 0 {
			var objects []PropertyObject
			if err := tx.Where("code IN ?", propertyCodes).Find(&objects).Error; err != nil {
				return err
			}
			if missing := missingCodes(propertyCodes, objects); len(missing) > 0 {
				return fmt.Errorf("%w: %v", ErrPropertyObjectNotFound, missing)
			}
			category.PropertyObjects = objects
		}

		return tx.Omit("PropertyObjects.*").Create(category).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrCategoryExists
	}
	return err
}

// DeleteCategory removes the category with the given slug.
// It is rejected with ErrCategoryInUse while any product belongs to the category.
func (r *CategoriesRepository) DeleteCategory(ctx context.Context, slug string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var category Category
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("slug = ?", slug).
			First(&category).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCategoryNotFound
			}
			return err
		}

		var products int64
		if err := tx.Model(&Product{}).Where("category_id = ?", category.ID).Count(&products).Error; err != nil {
			return err
		}
		if products > 0 {
			return ErrCategoryInUse
		}

		if err := tx.Model(&category).Association("PropertyObjects").Clear(); err != nil {
			return err
		}
		return tx.Delete(&category).Error
	})
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return ErrCategoryInUse
	}
	return err
}

func missingCodes(codes []string, objects []PropertyObject) []string {
	found := make(map[string]bool, len(objects))
	for _, o := range objects {
		found[o.Code] = true
	}
	var missing []string
	for _, c := range codes {
		if !found[c] {
			missing = append(missing, c)
		}
	}
	return missing
}
