package domain

import "time"

// Product units. Weighed products take fractional quantities fed by the
// scale; counted products take whole quantities.
const (
	UnitWeighed = "weighed"
	UnitCounted = "counted"
)

// Product is one catalog entry. OrderIndex defines the manual sort order
// within the catalog grid; ties are broken by name.
type Product struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name       string    `gorm:"index" json:"name"`
	Price      float64   `json:"price"` // price in main currency units
	Barcode    string    `gorm:"size:64;index" json:"barcode"`
	Unit       string    `gorm:"size:16" json:"unit"` // 'weighed' or 'counted'
	Image      string    `gorm:"size:1024" json:"image"` // path or blob key (optional)
	Category   string    `gorm:"size:64;index;default:manual" json:"category"`
	OrderIndex int64     `gorm:"index" json:"order_index"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
