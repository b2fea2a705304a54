package models

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	// ErrPropertyObjectNotFound is returned when a property object is not found.
	ErrPropertyObjectNotFound = errors.New("property object not found")
	// ErrPropertyObjectInUse is returned when deleting a property object that values still reference.
	ErrPropertyObjectInUse = errors.New("property object still has values")
	// ErrPropertyObjectExists is returned when creating a property object whose code is taken.
	ErrPropertyObjectExists = errors.New("property object already exists")
)

type PropertiesRepository struct {
	db *gorm.DB
}

func NewPropertiesRepository(db *gorm.DB) *PropertiesRepository {
	return &PropertiesRepository{db: db}
}

func (r *PropertiesRepository) GetAllPropertyObjects(ctx context.Context) ([]PropertyObject, error) {
	var objects []PropertyObject
	if err := r.db.WithContext(ctx).Order("title").Find(&objects).Error; err != nil {
		return nil, err
	}
	return objects, nil
}

func (r *PropertiesRepository) GetPropertyObject(ctx context.Context, code string) (*PropertyObject, error) {
	var object PropertyObject
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&object).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPropertyObjectNotFound
		}
		return nil, err
	}
	return &object, nil
}

func (r *PropertiesRepository) CreatePropertyObject(ctx context.Context, object *PropertyObject) error {
	if _, err := ParseValueType(string(object.ValueType)); err != nil {
		return err
	}
	var taken int64
	if err := r.db.WithContext(ctx).Model(&PropertyObject{}).Where("code = ?", object.Code).Count(&taken).Error; err != nil {
		return err
	}
	if taken > 0 {
		return ErrPropertyObjectExists
	}
	err := r.db.WithContext(ctx).Create(object).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrPropertyObjectExists
	}
	return err
}

// DeletePropertyObject removes the property object with the given code.
// It is rejected with ErrPropertyObjectInUse while any value references it.
func (r *PropertiesRepository) DeletePropertyObject(ctx context.Context, code string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var object PropertyObject
		if err := tx.Where("code = ?", code).First(&object).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPropertyObjectNotFound
			}
			return err
		}

		var values int64
		if err := tx.Model(&PropertyValue{}).Where("property_object_id = ?", object.ID).Count(&values).Error; err != nil {
			return err
		}
		if values > 0 {
			return ErrPropertyObjectInUse
		}

		if err := tx.Exec("DELETE FROM category_property_objects WHERE property_object_id = ?", object.ID).Error; err != nil {
			return err
		}
		return tx.Delete(&object).Error
	})
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return ErrPropertyObjectInUse
	}
	return err
}

// GetValues returns the values of the property objects with the given codes,
// or of every property object when no code is given, ordered by their string
// then decimal column.
func (r *PropertiesRepository) GetValues(ctx context.Context, codes ...string) ([]PropertyValue, error) {
	var values []PropertyValue
	db := r.db.WithContext(ctx)
	query := db.Preload("PropertyObject").Order("value_string, value_decimal")
	if len(codes) > 0 {
		query = query.Where("property_object_id IN (?)", db.Model(&PropertyObject{}).Select("id").Where("code IN ?", codes))
	}
	if err := query.Find(&values).Error; err != nil {
		return nil, err
	}
	return values, nil
}

// CreatePropertyValue inserts value for the property object it references and
// links it to the products with the given SKUs. Every SKU must exist.
func (r *PropertiesRepository) CreatePropertyValue(ctx context.Context, value *PropertyValue, productSKUs []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if value.PropertyObjectID == 0 {
			value.PropertyObjectID = value.PropertyObject.ID
		}

		if len(productSKUs) > 0 {
			var products []Product
			if err := tx.Where("sku IN ?", productSKUs).Find(&products).Error; err != nil {
				return err
			}
			if len(products) != len(uniqueStrings(productSKUs)) {
				return fmt.Errorf("%w: one of %v", ErrProductNotFound, productSKUs)
			}
			value.Products = products
		}

		return tx.Omit("PropertyObject", "Products.*").Create(value).Error
	})
}

func uniqueStrings(in []string) map[string]struct{} {
	out := make(map[string]struct{}, len(in))
	for _, s := range in {
		out[s] = struct{}{}
	}
	return out
}
