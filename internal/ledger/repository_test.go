package ledger

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/openretail/poscore/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestRepo(t *testing.T) *GormRepository {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(domain.Tables...))
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		_ = sqlDB.Close()
	})
	return NewGormRepository(db)
}

func TestCreateBillStartsEmpty(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	id, err := r.CreateBill(ctx, "C1")
	require.NoError(t, err)
	require.NotZero(t, id)

	bill, err := r.GetBill(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, bill)
	assert.Equal(t, "C1", bill.CustomerID)
	assert.Zero(t, bill.Total)
	assert.Empty(t, bill.Items)
}

func TestInsertAndIncrementKeepTotalConsistent(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	id, err := r.CreateBill(ctx, "C1")
	require.NoError(t, err)

	_, err = r.InsertBillItem(ctx, id, 1, 2, 0.50)
	require.NoError(t, err)
	require.NoError(t, r.IncrementBillTotal(ctx, id, 1.00))
	_, err = r.InsertBillItem(ctx, id, 2, 1, 2.00)
	require.NoError(t, err)
	require.NoError(t, r.IncrementBillTotal(ctx, id, 2.00))

	bill, err := r.GetBill(ctx, id)
	require.NoError(t, err)
	require.Len(t, bill.Items, 2)
	assert.InDelta(t, 3.00, bill.Total, 1e-9)

	var sum float64
	for _, item := range bill.Items {
		sum += item.Quantity * item.Price
	}
	assert.InDelta(t, bill.Total, sum, 1e-9)
}

func TestDeleteItemsAndResetTotalAreIdempotent(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	id, err := r.CreateBill(ctx, "C1")
	require.NoError(t, err)
	_, err = r.InsertBillItem(ctx, id, 1, 1, 5.00)
	require.NoError(t, err)
	require.NoError(t, r.IncrementBillTotal(ctx, id, 5.00))

	for i := 0; i < 2; i++ {
		require.NoError(t, r.DeleteBillItems(ctx, id))
		require.NoError(t, r.ResetBillTotal(ctx, id))
	}

	bill, err := r.GetBill(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, bill.Items)
	assert.Zero(t, bill.Total)
}

func TestGetMissingBillReturnsNil(t *testing.T) {
	r := newTestRepo(t)
	bill, err := r.GetBill(context.Background(), 404)
	require.NoError(t, err)
	assert.Nil(t, bill)
}

func TestListBillsNewestFirst(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	first, err := r.CreateBill(ctx, "C1")
	require.NoError(t, err)
	second, err := r.CreateBill(ctx, "C2")
	require.NoError(t, err)

	bills, err := r.ListBills(ctx)
	require.NoError(t, err)
	require.Len(t, bills, 2)
	assert.Equal(t, second, bills[0].ID)
	assert.Equal(t, first, bills[1].ID)
}

func TestRemoveItemAdjustsTotal(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	id, err := r.CreateBill(ctx, "C1")
	require.NoError(t, err)
	itemID, err := r.InsertBillItem(ctx, id, 1, 2, 3.00)
	require.NoError(t, err)
	require.NoError(t, r.IncrementBillTotal(ctx, id, 6.00))

	existed, err := r.RemoveItem(ctx, itemID)
	require.NoError(t, err)
	assert.True(t, existed)

	bill, err := r.GetBill(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, bill.Items)
	assert.Zero(t, bill.Total)

	existed, err = r.RemoveItem(ctx, itemID)
	require.NoError(t, err)
	assert.False(t, existed)
}

func TestDeleteBillRemovesItems(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	id, err := r.CreateBill(ctx, "C1")
	require.NoError(t, err)
	_, err = r.InsertBillItem(ctx, id, 1, 1, 1.00)
	require.NoError(t, err)

	existed, err := r.DeleteBill(ctx, id)
	require.NoError(t, err)
	assert.True(t, existed)

	bill, err := r.GetBill(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, bill)

	var count int64
	require.NoError(t, r.db.Model(&domain.BillItem{}).Where("bill_id = ?", id).Count(&count).Error)
	assert.Zero(t, count)

	existed, err = r.DeleteBill(ctx, id)
	require.NoError(t, err)
	assert.False(t, existed)
}

func TestTotalsSinceFiltersByCreation(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	old := domain.Bill{CustomerID: "C1", Total: 5, CreatedAt: time.Now().Add(-48 * time.Hour)}
	require.NoError(t, r.db.Create(&old).Error)

	id, err := r.CreateBill(ctx, "C1")
	require.NoError(t, err)
	require.NoError(t, r.IncrementBillTotal(ctx, id, 7))

	totals, err := r.TotalsSince(ctx, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	require.Len(t, totals, 1)
	assert.InDelta(t, 7, totals[0], 1e-9)
}
