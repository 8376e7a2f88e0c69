package domain

import "time"

// Bill is one committed customer tab. Total is denormalized and always
// equals the sum of its BillItem totals.
type Bill struct {
	ID         int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	CustomerID string     `gorm:"size:32;index" json:"customer_id"`
	Total      float64    `json:"total"`
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`
	Items      []BillItem `gorm:"-" json:"items,omitempty"`
}

// BillItem is one persisted line of a bill. Rows are only ever created or
// deleted as part of a commit or a bill deletion, never mutated in place.
type BillItem struct {
	ID        int64   `gorm:"primaryKey;autoIncrement" json:"id"`
	BillID    int64   `gorm:"index" json:"bill_id"`
	ProductID int64   `gorm:"index" json:"product_id"`
	Quantity  float64 `json:"quantity"`
	Price     float64 `json:"price"`
}
