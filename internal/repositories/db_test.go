package repositories

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"wooshop/internal/models"
)

// newTestDB opens a private in-memory sqlite database with every table
// migrated. One connection keeps the memory database alive and serialises
// transactions.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := OpenDB("sqlite", "file:"+uuid.NewString()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, Migrate(db))
	return db
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func stockedProduct(name, price string, qty int) *models.Product {
	p := models.DeriveProduct(models.Product{
		Name:          name,
		RegularPrice:  dec(price),
		Purchasable:   true,
		ManageStock:   true,
		StockQuantity: qty,
	})
	return &p
}
