package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func orderOf(t *testing.T, r *GormRepository, category string) []string {
	t.Helper()
	rows, err := r.ListByCategory(context.Background(), category)
	require.NoError(t, err)
	names := make([]string, len(rows))
	for i, p := range rows {
		names[i] = p.Name
	}
	return names
}

func TestSwapExchangesOrderIndexes(t *testing.T) {
	db := newTestDB(t)
	r := NewGormRepository(db)
	s := NewReorderer(db)
	ctx := context.Background()

	a := seed(t, r, "Apple", "fruit", "")
	b := seed(t, r, "Banana", "fruit", "")
	seed(t, r, "Cherry", "fruit", "")

	require.Equal(t, []string{"Apple", "Banana", "Cherry"}, orderOf(t, r, "fruit"))

	require.NoError(t, s.Swap(ctx, a.ID, b.ID))
	assert.Equal(t, []string{"Banana", "Apple", "Cherry"}, orderOf(t, r, "fruit"))

	gotA, err := r.FindByID(ctx, a.ID)
	require.NoError(t, err)
	gotB, err := r.FindByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, b.OrderIndex, gotA.OrderIndex)
	assert.Equal(t, a.OrderIndex, gotB.OrderIndex)
}

func TestSwapTwiceIsInvolution(t *testing.T) {
	db := newTestDB(t)
	r := NewGormRepository(db)
	s := NewReorderer(db)
	ctx := context.Background()

	a := seed(t, r, "Apple", "fruit", "")
	b := seed(t, r, "Banana", "fruit", "")
	before := orderOf(t, r, "fruit")

	require.NoError(t, s.Swap(ctx, a.ID, b.ID))
	require.NoError(t, s.Swap(ctx, a.ID, b.ID))

	assert.Equal(t, before, orderOf(t, r, "fruit"))
}

func TestSwapMissingProductRollsBack(t *testing.T) {
	db := newTestDB(t)
	r := NewGormRepository(db)
	s := NewReorderer(db)
	ctx := context.Background()

	a := seed(t, r, "Apple", "fruit", "")

	err := s.Swap(ctx, a.ID, 404)
	require.Error(t, err)

	// the first product's index must be untouched
	got, err := r.FindByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.OrderIndex, got.OrderIndex)
}
