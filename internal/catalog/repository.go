package catalog

import (
	"context"
	"errors"

	"github.com/openretail/poscore/internal/domain"
	"gorm.io/gorm"
)

// Repository is the Catalog Store contract. Lookup misses return (nil, nil):
// billing lines are free text and a miss is a normal outcome, not an error.
type Repository interface {
	// ListAll retrieves every product ordered by (order_index, name)
	ListAll(ctx context.Context) ([]domain.Product, error)

	// ListByCategory retrieves one category ordered by (order_index, name)
	ListByCategory(ctx context.Context, category string) ([]domain.Product, error)

	// FindByName retrieves a product by exact name match
	FindByName(ctx context.Context, name string) (*domain.Product, error)

	// FindByID retrieves a product by id
	FindByID(ctx context.Context, id int64) (*domain.Product, error)

	// FindByBarcode retrieves a product by barcode for scanning
	FindByBarcode(ctx context.Context, code string) (*domain.Product, error)

	// Create inserts a product and assigns its manual order slot
	Create(ctx context.Context, p *domain.Product) error

	// Update applies the given column values to a product
	Update(ctx context.Context, id int64, fields map[string]interface{}) error

	// UpdateOrderIndex writes a product's manual sort position
	UpdateOrderIndex(ctx context.Context, id int64, value int64) error

	// Delete removes a product by id, reporting whether a row existed
	Delete(ctx context.Context, id int64) (bool, error)

	// DeleteByName removes a product by name, reporting whether a row existed
	DeleteByName(ctx context.Context, name string) (bool, error)
}

// GormRepository is the GORM implementation of Repository.
type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) ListAll(ctx context.Context) ([]domain.Product, error) {
	var rows []domain.Product
	err := r.db.WithContext(ctx).
		Order("order_index, name").
		Find(&rows).Error
	return rows, err
}

func (r *GormRepository) ListByCategory(ctx context.Context, category string) ([]domain.Product, error) {
	var rows []domain.Product
	err := r.db.WithContext(ctx).
		Where("category = ?", category).
		Order("order_index, name").
		Find(&rows).Error
	return rows, err
}

func (r *GormRepository) FindByName(ctx context.Context, name string) (*domain.Product, error) {
	var p domain.Product
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *GormRepository) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	var p domain.Product
	err := r.db.WithContext(ctx).First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *GormRepository) FindByBarcode(ctx context.Context, code string) (*domain.Product, error) {
	var p domain.Product
	err := r.db.WithContext(ctx).Where("barcode = ?", code).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create inserts the product and seeds order_index with the new id, which
// places fresh products at the end of the manual order.
func (r *GormRepository) Create(ctx context.Context, p *domain.Product) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if p.Category == "" {
			p.Category = "manual"
		}
		if err := tx.Create(p).Error; err != nil {
			return err
		}
		p.OrderIndex = p.ID
		return tx.Model(&domain.Product{}).
			Where("id = ?", p.ID).
			Update("order_index", p.ID).Error
	})
}

func (r *GormRepository) Update(ctx context.Context, id int64, fields map[string]interface{}) error {
	allowed := map[string]bool{
		"name": true, "price": true, "barcode": true, "unit": true,
		"image": true, "order_index": true, "category": true,
	}
	updates := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		if allowed[k] {
			updates[k] = v
		}
	}
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&domain.Product{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *GormRepository) UpdateOrderIndex(ctx context.Context, id int64, value int64) error {
	return r.db.WithContext(ctx).
		Model(&domain.Product{}).
		Where("id = ?", id).
		Update("order_index", value).Error
}

func (r *GormRepository) Delete(ctx context.Context, id int64) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&domain.Product{}, id)
	return res.RowsAffected > 0, res.Error
}

func (r *GormRepository) DeleteByName(ctx context.Context, name string) (bool, error) {
	res := r.db.WithContext(ctx).Where("name = ?", name).Delete(&domain.Product{})
	return res.RowsAffected > 0, res.Error
}
