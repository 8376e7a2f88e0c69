package catalog

import (
	"context"

	"github.com/openretail/poscore/internal/domain"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Reorderer implements manual drag-style catalog reordering by swapping
// the order index of two products. Swapping the same pair twice restores
// the original order.
type Reorderer struct {
	db *gorm.DB
}

func NewReorderer(db *gorm.DB) *Reorderer {
	return &Reorderer{db: db}
}

// Swap exchanges the order indexes of two products as one atomic unit.
// Whether the two products share a category is the caller's concern; the
// UI only offers adjacent-in-list swaps.
func (s *Reorderer) Swap(ctx context.Context, idA, idB int64) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var a, b domain.Product
		if err := tx.Select("id", "order_index").First(&a, idA).Error; err != nil {
			return errors.Wrapf(err, "load product %d", idA)
		}
		if err := tx.Select("id", "order_index").First(&b, idB).Error; err != nil {
			return errors.Wrapf(err, "load product %d", idB)
		}
		if err := tx.Model(&domain.Product{}).
			Where("id = ?", a.ID).
			Update("order_index", b.OrderIndex).Error; err != nil {
			return err
		}
		return tx.Model(&domain.Product{}).
			Where("id = ?", b.ID).
			Update("order_index", a.OrderIndex).Error
	})
	if err != nil {
		zap.L().Error("catalog swap failed",
			zap.Int64("product_a", idA),
			zap.Int64("product_b", idB),
			zap.Error(err),
		)
		return err
	}
	return nil
}
