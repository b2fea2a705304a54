package models

import (
	"errors"
	"fmt"
)

// ErrInvalidStatus is returned when a product status is outside the known set.
var ErrInvalidStatus = errors.New("invalid product status")

// ProductStatus is the stock status of a product.
type ProductStatus string

const (
	StatusInStock     ProductStatus = "in_stock"
	StatusOnOrder     ProductStatus = "on_order"
	StatusExpected    ProductStatus = "expected"
	StatusOutOfStock  ProductStatus = "out_of_stock"
	StatusNotProduced ProductStatus = "not_produced"
)

// ProductStatuses lists every status in display order.
var ProductStatuses = []ProductStatus{
	StatusInStock,
	StatusOnOrder,
	StatusExpected,
	StatusOutOfStock,
	StatusNotProduced,
}

// ParseProductStatus maps a raw value onto a ProductStatus.
func ParseProductStatus(s string) (ProductStatus, error) {
	status := ProductStatus(s)
	if !status.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
	return status, nil
}

func (s ProductStatus) Valid() bool {
	return s.Label() != ""
}

// Label is the human readable form of the status, empty for unknown values.
func (s ProductStatus) Label() string {
	switch s {
	case StatusInStock:
		return "in stock"
	case StatusOnOrder:
		return "on order"
	case StatusExpected:
		return "expected to arrive"
	case StatusOutOfStock:
		return "out of stock"
	case StatusNotProduced:
		return "not produced"
	}
	return ""
}

// VariantStatus records whether the derived image variant of a product is available.
type VariantStatus string

const (
	// VariantNone means the product image has no derivable variant, or there is no image.
	VariantNone    VariantStatus = "none"
	VariantPending VariantStatus = "pending"
	VariantReady   VariantStatus = "ready"
	VariantFailed  VariantStatus = "failed"
)

func (s VariantStatus) Valid() bool {
	switch s {
	case VariantNone, VariantPending, VariantReady, VariantFailed:
		return true
	}
	return false
}
