package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mytheresa/go-shop-catalog/app/database"
	"github.com/mytheresa/go-shop-catalog/models"
)

func TestSeedCatalog(t *testing.T) {
	db, err := database.Open("sqlite", filepath.Join(t.TempDir(), "seed.db"))
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	ctx := context.Background()

	n, err := seedCatalog(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, len(seedProducts), n)

	repo := models.NewProductsRepository(db)
	products, total, err := repo.GetFilteredProducts(ctx, models.ProductFilters{})
	require.NoError(t, err)
	assert.EqualValues(t, len(seedProducts), total)
	assert.Len(t, products, len(seedProducts))

	pumps, err := repo.GetBySKU(ctx, "PROD004")
	require.NoError(t, err)
	assert.Equal(t, "shoes", pumps.Category.Slug)
	assert.Equal(t, "leather-pumps", pumps.Slug)
	require.Len(t, pumps.Properties, 2)

	values := map[string]string{}
	for _, v := range pumps.Properties {
		values[v.PropertyObject.Code] = v.String()
	}
	assert.Equal(t, map[string]string{"color": "black", "heel-height": "8.50"}, values)

	loafers, err := repo.GetBySKU(ctx, "PROD005")
	require.NoError(t, err)
	assert.False(t, loafers.Price.Valid)

	t.Run("second run is a no-op", func(t *testing.T) {
		n, err := seedCatalog(ctx, db)
		require.NoError(t, err)
		assert.Zero(t, n)

		_, total, err := repo.GetFilteredProducts(ctx, models.ProductFilters{})
		require.NoError(t, err)
		assert.EqualValues(t, len(seedProducts), total)
	})
}
