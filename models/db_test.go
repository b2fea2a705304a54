package models

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "shop.db") + "?_foreign_keys=on"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&PropertyObject{}, &Category{}, &Product{}, &PropertyValue{}))
	return db
}

type fixture struct {
	db         *gorm.DB
	products   *ProductsRepository
	categories *CategoriesRepository
	properties *PropertiesRepository
}

func newFixture(t *testing.T) *fixture {
	db := newTestDB(t)
	return &fixture{
		db:         db,
		products:   NewProductsRepository(db),
		categories: NewCategoriesRepository(db),
		properties: NewPropertiesRepository(db),
	}
}

func (f *fixture) category(t *testing.T, slug string, codes ...string) *Category {
	t.Helper()
	c := &Category{Slug: slug, Title: slug}
	require.NoError(t, f.categories.CreateCategory(context.Background(), c, codes))
	return c
}

func (f *fixture) product(t *testing.T, c *Category, sku, title string, status ProductStatus) *Product {
	t.Helper()
	p := &Product{
		SKU:      sku,
		Title:    title,
		Slug:     sku,
		Status:   status,
		Price:    decimal.NewNullDecimal(decimal.RequireFromString("10")),
		Category: *c,
	}
	require.NoError(t, f.products.SaveProduct(context.Background(), p, nil))
	return p
}

func (f *fixture) propertyObject(t *testing.T, code string, vt ValueType) *PropertyObject {
	t.Helper()
	o := &PropertyObject{Code: code, Title: code, ValueType: vt}
	require.NoError(t, f.properties.CreatePropertyObject(context.Background(), o))
	return o
}
