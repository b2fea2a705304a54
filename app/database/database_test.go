package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mytheresa/go-shop-catalog/models"
)

func TestOpenUnsupportedDriver(t *testing.T) {
	_, err := Open("oracle", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unsupported DB_DRIVER "oracle"`)
}

func TestWithForeignKeys(t *testing.T) {
	assert.Equal(t, "shop.db?_foreign_keys=on", withForeignKeys("shop.db"))
	assert.Equal(t, "shop.db?cache=shared&_foreign_keys=on", withForeignKeys("shop.db?cache=shared"))
}

func TestMigrateSQLite(t *testing.T) {
	db, err := Open("sqlite", filepath.Join(t.TempDir(), "shop.db"))
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	for _, table := range []string{"products", "categories", "property_objects", "property_values", "category_property_objects", "property_value_products"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}

	t.Run("foreign keys are enforced", func(t *testing.T) {
		err := db.Create(&models.Product{SKU: "ORPHAN", Title: "Orphan", Slug: "orphan", CategoryID: 42}).Error
		assert.ErrorIs(t, err, gorm.ErrForeignKeyViolated)
	})
}
