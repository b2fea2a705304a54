package models

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// MaxPrice is the largest price the decimal(6,2) column holds.
var MaxPrice = decimal.New(999999, -2)

// ErrInvalidPrice is returned for a price the price column cannot store.
var ErrInvalidPrice = errors.New("invalid price")

// ParsePrice parses a price between 0 and MaxPrice with at most two decimal
// places. An empty string is no price.
func ParsePrice(raw string) (decimal.NullDecimal, error) {
	if raw == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("%w: %q is not a decimal number", ErrInvalidPrice, raw)
	}
	if !ValidPrice(d) {
		return decimal.NullDecimal{}, fmt.Errorf("%w: must be between 0 and %s with at most 2 decimal places", ErrInvalidPrice, MaxPrice.StringFixed(2))
	}
	return decimal.NewNullDecimal(d), nil
}

// ValidPrice reports whether d fits the price column.
func ValidPrice(d decimal.Decimal) bool {
	return !d.IsNegative() && d.LessThanOrEqual(MaxPrice) && d.Equal(d.Truncate(2))
}

// Product represents a product in the catalog.
// It is identified externally by its SKU and belongs to exactly one category.
type Product struct {
	ID           uint                `gorm:"primaryKey"`
	Title        string              `gorm:"size:255;not null;index"`
	SKU          string              `gorm:"column:sku;size:255;uniqueIndex;not null"`
	Price        decimal.NullDecimal `gorm:"type:decimal(6,2)"`
	Status       ProductStatus       `gorm:"size:20;not null;default:in_stock;index"`
	Image        string              `gorm:"size:255"`
	ImageVariant VariantStatus       `gorm:"size:10;not null;default:none"`
	Slug         string              `gorm:"size:255;not null"`
	CategoryID   uint                `gorm:"not null"`
	Category     Category            `gorm:"foreignKey:CategoryID;constraint:OnDelete:RESTRICT"`
	Properties   []PropertyValue     `gorm:"many2many:property_value_products"`
}

func (p *Product) TableName() string {
	return "products"
}

// ImageFormats lists the formats the product image is available in: the
// uploaded one first, then the derived variant once it is ready.
// A product without image has no formats.
func (p *Product) ImageFormats() []string {
	if p.Image == "" {
		return nil
	}
	_, ext := SplitImageName(p.Image)
	formats := []string{}
	if ext != "" {
		formats = append(formats, ext)
	}
	if p.ImageVariant == VariantReady && IsDerivable(ext) {
		formats = append(formats, VariantFormat)
	}
	return formats
}
