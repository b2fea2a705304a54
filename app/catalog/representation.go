package catalog

import (
	"github.com/mytheresa/go-shop-catalog/models"
)

// ImageURLer turns a stored media path into a public URL.
type ImageURLer interface {
	URL(path string) string
}

type Category struct {
	Slug  string `json:"slug"`
	Title string `json:"title"`
}

type Image struct {
	// Path is the public URL of the image without its extension; clients
	// append one of Formats.
	Path    string   `json:"path"`
	Formats []string `json:"formats"`
}

type Property struct {
	Code      string `json:"code"`
	Title     string `json:"title"`
	ValueType string `json:"value_type"`
	Value     string `json:"value"`
}

type Product struct {
	Title       string     `json:"title"`
	SKU         string     `json:"sku"`
	Price       *string    `json:"price"`
	Status      string     `json:"status"`
	StatusLabel string     `json:"status_label"`
	Slug        string     `json:"slug"`
	Image       *Image     `json:"image"`
	Category    Category   `json:"category"`
	Properties  []Property `json:"properties"`
}

// NewProduct maps a stored product onto its API representation.
func NewProduct(p models.Product, urls ImageURLer) Product {
	out := Product{
		Title:       p.Title,
		SKU:         p.SKU,
		Status:      string(p.Status),
		StatusLabel: p.Status.Label(),
		Slug:        p.Slug,
		Category: Category{
			Slug:  p.Category.Slug,
			Title: p.Category.Title,
		},
		Properties: make([]Property, 0, len(p.Properties)),
	}

	if p.Price.Valid {
		price := p.Price.Decimal.StringFixed(2)
		out.Price = &price
	}

	if p.Image != "" {
		base, _ := models.SplitImageName(p.Image)
		out.Image = &Image{
			Path:    urls.URL(base),
			Formats: p.ImageFormats(),
		}
	}

	for _, v := range p.Properties {
		out.Properties = append(out.Properties, Property{
			Code:      v.PropertyObject.Code,
			Title:     v.PropertyObject.Title,
			ValueType: string(v.PropertyObject.ValueType),
			Value:     v.String(),
		})
	}

	return out
}
