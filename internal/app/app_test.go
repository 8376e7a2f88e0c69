package app

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/openretail/poscore/config"
	"github.com/openretail/poscore/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestApp(t *testing.T) *Application {
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

	cfg := *config.DefaultAppConfig
	a := NewApplication(&cfg)
	a.OverrideDB(db)
	require.NoError(t, a.initComponents(&cfg))
	t.Cleanup(a.Release)
	return a
}

func TestApplicationWiresEngine(t *testing.T) {
	a := newTestApp(t)

	require.NotNil(t, a.DB())
	require.NotNil(t, a.Bus())
	require.NotNil(t, a.Scheduler())
	require.NotNil(t, a.Sessions())
	require.NotNil(t, a.Selector())
	require.NotNil(t, a.Committer())
	require.NotNil(t, a.Reorderer())
	require.NotNil(t, a.Catalog())
	require.NotNil(t, a.Ledger())
	require.NotNil(t, a.Scale())

	assert.Equal(t, config.DefaultAppConfig.Billing.Customers, a.Sessions().Labels())
}

func TestCommitThroughApplication(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()

	p := &domain.Product{Name: "Apple", Price: 0.50, Unit: domain.UnitCounted}
	require.NoError(t, a.Catalog().Create(ctx, p))

	_, err := a.Sessions().AddItem("C1", "Apple", 2, 0.50)
	require.NoError(t, err)

	billID, err := a.Committer().CommitSession(ctx, "C1")
	require.NoError(t, err)

	bill, err := a.Ledger().GetBill(ctx, billID)
	require.NoError(t, err)
	require.NotNil(t, bill)
	assert.InDelta(t, 1.00, bill.Total, 1e-9)
}

func TestDailySalesSummaryHandlesEmptyAndBusyDays(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()

	// no bills yet
	a.SchedDailySalesSummary()

	for i := 0; i < 3; i++ {
		id, err := a.Ledger().CreateBill(ctx, "C1")
		require.NoError(t, err)
		require.NoError(t, a.Ledger().IncrementBillTotal(ctx, id, float64(i+1)))
	}
	a.SchedDailySalesSummary()
}
