package main

import (
	"context"
	"fmt"

	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v3"
	"gorm.io/gorm"

	"github.com/mytheresa/go-shop-catalog/models"
)

type seedProduct struct {
	sku      string
	title    string
	price    string
	status   models.ProductStatus
	category string
	values   map[string]string
}

var (
	seedProperties = []models.PropertyObject{
		{Code: "color", Title: "Color", ValueType: models.ValueTypeString},
		{Code: "material", Title: "Material", ValueType: models.ValueTypeString},
		{Code: "heel-height", Title: "Heel height (cm)", ValueType: models.ValueTypeDecimal},
	}

	seedCategories = []struct {
		slug, title string
		properties  []string
	}{
		{"clothing", "Clothing", []string{"color", "material"}},
		{"shoes", "Shoes", []string{"color", "heel-height"}},
		{"accessories", "Accessories", []string{"color"}},
	}

	seedProducts = []seedProduct{
		{"PROD001", "Linen shirt", "10.99", models.StatusInStock, "clothing", map[string]string{"color": "white", "material": "linen"}},
		{"PROD002", "Wool coat", "12.49", models.StatusInStock, "clothing", map[string]string{"color": "black", "material": "wool"}},
		{"PROD003", "Silk dress", "8.75", models.StatusOutOfStock, "clothing", map[string]string{"color": "red", "material": "silk"}},
		{"PROD004", "Leather pumps", "15.00", models.StatusInStock, "shoes", map[string]string{"color": "black", "heel-height": "8.5"}},
		{"PROD005", "Suede loafers", "", models.StatusExpected, "shoes", map[string]string{"color": "brown", "heel-height": "1.5"}},
		{"PROD006", "Canvas tote", "13.50", models.StatusInStock, "accessories", map[string]string{"color": "white"}},
		{"PROD007", "Silk scarf", "20.00", models.StatusInStock, "accessories", map[string]string{"color": "red"}},
	}
)

func seed(ctx context.Context, cmd *cli.Command) error {
	e, err := bootstrap(ctx, cmd)
	if err != nil {
		return err
	}
	defer e.close()

	n, err := seedCatalog(ctx, e.db)
	if err != nil {
		return err
	}
	if n == 0 {
		e.log.Info("catalog already has data, nothing seeded")
		return nil
	}
	e.log.Info("catalog seeded", "products", n)
	return nil
}

// seedCatalog inserts the sample catalog into an empty database and returns
// the number of products created. It does nothing when categories exist.
func seedCatalog(ctx context.Context, db *gorm.DB) (int, error) {
	categoriesRepo := models.NewCategoriesRepository(db)
	propertiesRepo := models.NewPropertiesRepository(db)
	productsRepo := models.NewProductsRepository(db)

	existing, err := categoriesRepo.GetAllCategories(ctx)
	if err != nil {
		return 0, fmt.Errorf("seed: list categories: %w", err)
	}
	if len(existing) > 0 {
		return 0, nil
	}

	objects := make(map[string]models.PropertyObject, len(seedProperties))
	for _, o := range seedProperties {
		if err := propertiesRepo.CreatePropertyObject(ctx, &o); err != nil {
			return 0, fmt.Errorf("seed: property %s: %w", o.Code, err)
		}
		objects[o.Code] = o
	}

	categories := make(map[string]models.Category, len(seedCategories))
	for _, c := range seedCategories {
		category := models.Category{Slug: c.slug, Title: c.title}
		if err := categoriesRepo.CreateCategory(ctx, &category, c.properties); err != nil {
			return 0, fmt.Errorf("seed: category %s: %w", c.slug, err)
		}
		categories[c.slug] = category
	}

	// value code -> SKUs sharing it, per property
	links := make(map[string]map[string][]string)
	for _, sp := range seedProducts {
		product := models.Product{
			SKU:      sp.sku,
			Title:    sp.title,
			Slug:     slug.Make(sp.title),
			Status:   sp.status,
			Category: categories[sp.category],
		}
		if sp.price != "" {
			product.Price = decimal.NewNullDecimal(decimal.RequireFromString(sp.price))
		}
		if err := productsRepo.SaveProduct(ctx, &product, nil); err != nil {
			return 0, fmt.Errorf("seed: product %s: %w", sp.sku, err)
		}

		for code, raw := range sp.values {
			if links[code] == nil {
				links[code] = make(map[string][]string)
			}
			links[code][raw] = append(links[code][raw], sp.sku)
		}
	}

	for _, o := range seedProperties {
		for raw, skus := range links[o.Code] {
			parsed, err := models.ParseValue(o.ValueType, raw)
			if err != nil {
				return 0, fmt.Errorf("seed: value %s=%s: %w", o.Code, raw, err)
			}
			value := &models.PropertyValue{
				PropertyObjectID: objects[o.Code].ID,
				PropertyObject:   objects[o.Code],
				Code:             slug.Make(o.Code + " " + raw),
			}
			value.SetValue(parsed)
			if err := propertiesRepo.CreatePropertyValue(ctx, value, skus); err != nil {
				return 0, fmt.Errorf("seed: value %s=%s: %w", o.Code, raw, err)
			}
		}
	}

	return len(seedProducts), nil
}
