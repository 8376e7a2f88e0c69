package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/openretail/poscore/internal/domain"
	"gorm.io/gorm"
)

// Repository is the Ledger Store contract.
type Repository interface {
	// CreateBill inserts an empty bill for a customer label and returns its id
	CreateBill(ctx context.Context, customerLabel string) (int64, error)

	// DeleteBillItems removes every item of a bill
	DeleteBillItems(ctx context.Context, billID int64) error

	// ResetBillTotal sets a bill's total back to zero
	ResetBillTotal(ctx context.Context, billID int64) error

	// InsertBillItem appends one persisted line to a bill
	InsertBillItem(ctx context.Context, billID, productID int64, qty, price float64) (int64, error)

	// IncrementBillTotal adds an amount to a bill's running total
	IncrementBillTotal(ctx context.Context, billID int64, amount float64) error

	// GetBill retrieves a bill with its items, or (nil, nil) if absent
	GetBill(ctx context.Context, billID int64) (*domain.Bill, error)

	// ListBills retrieves all bills ordered newest-first, without items
	ListBills(ctx context.Context) ([]domain.Bill, error)

	// DeleteBill removes a bill and its items, reporting whether it existed
	DeleteBill(ctx context.Context, billID int64) (bool, error)

	// RemoveItem deletes one bill item and decrements the owning bill's
	// total, reporting whether the item existed
	RemoveItem(ctx context.Context, itemID int64) (bool, error)

	// TotalsSince retrieves the totals of bills created at or after t
	TotalsSince(ctx context.Context, t time.Time) ([]float64, error)

	// WithTx rebinds the repository to a transaction handle
	WithTx(tx *gorm.DB) Repository
}

// GormRepository is the GORM implementation of Repository.
type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) WithTx(tx *gorm.DB) Repository {
	return &GormRepository{db: tx}
}

func (r *GormRepository) CreateBill(ctx context.Context, customerLabel string) (int64, error) {
	bill := domain.Bill{
		CustomerID: customerLabel,
		Total:      0,
		CreatedAt:  time.Now(),
	}
	if err := r.db.WithContext(ctx).Create(&bill).Error; err != nil {
		return 0, err
	}
	return bill.ID, nil
}

func (r *GormRepository) DeleteBillItems(ctx context.Context, billID int64) error {
	return r.db.WithContext(ctx).
		Where("bill_id = ?", billID).
		Delete(&domain.BillItem{}).Error
}

func (r *GormRepository) ResetBillTotal(ctx context.Context, billID int64) error {
	return r.db.WithContext(ctx).
		Model(&domain.Bill{}).
		Where("id = ?", billID).
		Update("total", 0).Error
}

func (r *GormRepository) InsertBillItem(ctx context.Context, billID, productID int64, qty, price float64) (int64, error) {
	item := domain.BillItem{
		BillID:    billID,
		ProductID: productID,
		Quantity:  qty,
		Price:     price,
	}
	if err := r.db.WithContext(ctx).Create(&item).Error; err != nil {
		return 0, err
	}
	return item.ID, nil
}

func (r *GormRepository) IncrementBillTotal(ctx context.Context, billID int64, amount float64) error {
	return r.db.WithContext(ctx).
		Model(&domain.Bill{}).
		Where("id = ?", billID).
		Update("total", gorm.Expr("total + ?", amount)).Error
}

func (r *GormRepository) GetBill(ctx context.Context, billID int64) (*domain.Bill, error) {
	var bill domain.Bill
	err := r.db.WithContext(ctx).First(&bill, billID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	err = r.db.WithContext(ctx).
		Where("bill_id = ?", billID).
		Order("id").
		Find(&bill.Items).Error
	if err != nil {
		return nil, err
	}
	return &bill, nil
}

func (r *GormRepository) ListBills(ctx context.Context) ([]domain.Bill, error) {
	var bills []domain.Bill
	err := r.db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Find(&bills).Error
	return bills, err
}

func (r *GormRepository) DeleteBill(ctx context.Context, billID int64) (bool, error) {
	existed := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("bill_id = ?", billID).Delete(&domain.BillItem{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&domain.Bill{}, billID)
		existed = res.RowsAffected > 0
		return res.Error
	})
	return existed, err
}

func (r *GormRepository) RemoveItem(ctx context.Context, itemID int64) (bool, error) {
	existed := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var item domain.BillItem
		err := tx.First(&item, itemID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := tx.Model(&domain.Bill{}).
			Where("id = ?", item.BillID).
			Update("total", gorm.Expr("total - ?", item.Quantity*item.Price)).Error; err != nil {
			return err
		}
		if err := tx.Delete(&domain.BillItem{}, itemID).Error; err != nil {
			return err
		}
		existed = true
		return nil
	})
	return existed, err
}

func (r *GormRepository) TotalsSince(ctx context.Context, t time.Time) ([]float64, error) {
	var totals []float64
	err := r.db.WithContext(ctx).
		Model(&domain.Bill{}).
		Where("created_at >= ?", t).
		Order("created_at").
		Pluck("total", &totals).Error
	return totals, err
}
