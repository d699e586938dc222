package database

import (
	"context"
	"testing"

	"fitclub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupBarMenu(t *testing.T, db *DB) (*models.BarCategory, *models.BarItem, *models.BarItem) {
	t.Helper()
	ctx := context.Background()

	category := &models.BarCategory{Slug: "drinks", Name: models.LocalizedText{Ru: "Напитки"}, IsActive: true}
	require.NoError(t, db.CreateBarCategory(ctx, category))

	shake := &models.BarItem{
		CategoryID:  category.ID,
		Name:        models.LocalizedText{Ru: "Протеиновый коктейль", Uz: "Protein kokteyli"},
		Price:       25000,
		Volume:      "300 мл",
		Calories:    180,
		Proteins:    25,
		IsAvailable: true,
	}
	require.NoError(t, db.CreateBarItem(ctx, shake))

	water := &models.BarItem{
		CategoryID:  category.ID,
		Name:        models.LocalizedText{Ru: "Вода"},
		Price:       5000,
		IsAvailable: true,
	}
	require.NoError(t, db.CreateBarItem(ctx, water))

	return category, shake, water
}

func TestBarMenu(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	category, shake, _ := setupBarMenu(t, db)

	items, err := db.ListBarItems(ctx, category.ID, true)
	require.NoError(t, err)
	assert.Len(t, items, 2)

	shake.IsAvailable = false
	require.NoError(t, db.UpdateBarItem(ctx, shake))

	available, err := db.ListBarItems(ctx, category.ID, true)
	require.NoError(t, err)
	require.Len(t, available, 1)
	assert.Equal(t, "Вода", available[0].Name.Ru)
}

func TestCreateBarOrder(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	_, shake, water := setupBarMenu(t, db)
	user := createTestUser(t, db, "1001", "998901234567")

	order, err := db.CreateBarOrder(ctx, user.ID, []models.OrderLine{
		{ItemID: shake.ID, Quantity: 2},
		{ItemID: water.ID, Quantity: 1},
	})
	require.NoError(t, err)

	// Сумма по текущим ценам: 2*25000 + 5000
	assert.Equal(t, int64(55000), order.Total)
	assert.Equal(t, models.BarOrderStatusPending, order.Status)
	require.Len(t, order.Items, 2)
	assert.Equal(t, int64(25000), order.Items[0].Price)

	// Цена в заказе зафиксирована: подорожание меню её не меняет
	shake.Price = 30000
	require.NoError(t, db.UpdateBarItem(ctx, shake))

	got, err := db.GetBarOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(55000), got.Total)
	assert.Equal(t, int64(25000), got.Items[0].Price)
}

func TestCreateBarOrder_UnavailableItem(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	_, shake, _ := setupBarMenu(t, db)
	user := createTestUser(t, db, "1001", "998901234567")

	shake.IsAvailable = false
	require.NoError(t, db.UpdateBarItem(ctx, shake))

	_, err := db.CreateBarOrder(ctx, user.ID, []models.OrderLine{{ItemID: shake.ID, Quantity: 1}})
	assert.ErrorIs(t, err, ErrBarItemNotFound)

	// Отказ не оставил осиротевшего заказа
	orders, err := db.ListUserBarOrders(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestBarOrderStatusFlow(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	_, shake, _ := setupBarMenu(t, db)
	user := createTestUser(t, db, "1001", "998901234567")

	order, err := db.CreateBarOrder(ctx, user.ID, []models.OrderLine{{ItemID: shake.ID, Quantity: 1}})
	require.NoError(t, err)

	for _, status := range []string{
		models.BarOrderStatusPreparing,
		models.BarOrderStatusReady,
		models.BarOrderStatusCompleted,
	} {
		require.NoError(t, db.UpdateBarOrderStatus(ctx, order.ID, status))
	}

	got, err := db.GetBarOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BarOrderStatusCompleted, got.Status)

	pending, err := db.ListBarOrdersByStatus(ctx, models.BarOrderStatusPending)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestGetPendingCounts(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	service := createTestService(t, db)
	slot := createTestSlot(t, db, service.ID, 5)
	_, shake, _ := setupBarMenu(t, db)
	user := createTestUser(t, db, "1001", "998901234567")

	require.NoError(t, db.CreateBooking(ctx, &models.Booking{UserID: user.ID, SlotID: slot.ID}))
	_, err := db.CreateBarOrder(ctx, user.ID, []models.OrderLine{{ItemID: shake.ID, Quantity: 1}})
	require.NoError(t, err)

	counts, err := db.GetPendingCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts.PendingBookings)
	assert.Equal(t, int64(1), counts.PendingOrders)
}
