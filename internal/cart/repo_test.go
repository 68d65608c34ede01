package cart

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/sokoplace/sokoplace-backend/pkg/db/models"
	"github.com/sokoplace/sokoplace-backend/pkg/enums"
)

func setupCartTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	cartRecords := `
CREATE TABLE IF NOT EXISTS cart_records (
  id TEXT PRIMARY KEY,
  buyer_user_id TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'active',
  converted_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	cartItems := `
CREATE TABLE IF NOT EXISTS cart_items (
  id TEXT PRIMARY KEY,
  cart_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  product_name TEXT NOT NULL,
  vendor_email TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  unit_price_minor INTEGER NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(cartRecords).Error)
	require.NoError(t, db.Exec(cartItems).Error)
	return db
}

func TestRepositoryFindOrCreateActive(t *testing.T) {
	db := setupCartTestDB(t)
	repo := NewRepository(db)
	buyer := uuid.New()

	created, err := repo.FindOrCreateActive(context.Background(), buyer)
	require.NoError(t, err)
	assert.Equal(t, enums.CartStatusActive, created.Status)
	assert.Equal(t, buyer, created.BuyerUserID)

	again, err := repo.FindOrCreateActive(context.Background(), buyer)
	require.NoError(t, err)
	assert.Equal(t, created.ID, again.ID)
}

func TestRepositoryUpsertItem(t *testing.T) {
	db := setupCartTestDB(t)
	repo := NewRepository(db)
	buyer := uuid.New()

	record, err := repo.FindOrCreateActive(context.Background(), buyer)
	require.NoError(t, err)

	productID := uuid.New()
	first, err := repo.UpsertItem(context.Background(), record.ID, models.CartItem{
		ProductID:      productID,
		ProductName:    "Solar Lantern",
		VendorEmail:    "vendor@sokoplace.test",
		Quantity:       2,
		UnitPriceMinor: 150000,
	})
	require.NoError(t, err)

	// Same product again replaces the line rather than adding a second one.
	second, err := repo.UpsertItem(context.Background(), record.ID, models.CartItem{
		ProductID:      productID,
		ProductName:    "Solar Lantern",
		VendorEmail:    "vendor@sokoplace.test",
		Quantity:       5,
		UnitPriceMinor: 140000,
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 5, second.Quantity)
	assert.Equal(t, int64(140000), second.UnitPriceMinor)

	refreshed, err := repo.FindActiveByBuyer(context.Background(), buyer)
	require.NoError(t, err)
	require.Len(t, refreshed.Items, 1)
	assert.Equal(t, int64(700000), refreshed.SubtotalMinor())
}

func TestRepositoryRemoveItem(t *testing.T) {
	db := setupCartTestDB(t)
	repo := NewRepository(db)
	buyer := uuid.New()

	record, err := repo.FindOrCreateActive(context.Background(), buyer)
	require.NoError(t, err)

	keep := uuid.New()
	drop := uuid.New()
	for _, p := range []uuid.UUID{keep, drop} {
		_, err := repo.UpsertItem(context.Background(), record.ID, models.CartItem{
			ProductID:      p,
			ProductName:    "Item",
			VendorEmail:    "vendor@sokoplace.test",
			Quantity:       1,
			UnitPriceMinor: 1000,
		})
		require.NoError(t, err)
	}

	require.NoError(t, repo.RemoveItem(context.Background(), record.ID, drop))

	refreshed, err := repo.FindActiveByBuyer(context.Background(), buyer)
	require.NoError(t, err)
	require.Len(t, refreshed.Items, 1)
	assert.Equal(t, keep, refreshed.Items[0].ProductID)
}

func TestRepositoryMarkConverted(t *testing.T) {
	db := setupCartTestDB(t)
	repo := NewRepository(db)
	buyer := uuid.New()

	record, err := repo.FindOrCreateActive(context.Background(), buyer)
	require.NoError(t, err)

	require.NoError(t, repo.MarkConverted(context.Background(), record.ID))

	_, err = repo.FindActiveByBuyer(context.Background(), buyer)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	var stored models.CartRecord
	require.NoError(t, db.First(&stored, "id = ?", record.ID).Error)
	assert.Equal(t, enums.CartStatusConverted, stored.Status)
	assert.NotNil(t, stored.ConvertedAt)
}
