// Package catalog holds the storefront domain: categories, the vendor
// directory, and products with filtered listings.
package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Category groups products for browsing
type Category struct {
	bun.BaseModel `bun:"table:categories,alias:cat"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id"`
	Name          string     `bun:"name,notnull,unique" json:"name"`
	IsDeleted     bool       `bun:"is_deleted" json:"is_deleted"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// Vendor is a public directory entry for a seller storefront
type Vendor struct {
	bun.BaseModel `bun:"table:vendors,alias:vnd"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id"`
	Name          string     `bun:"name,notnull,unique" json:"name"`
	IsDeleted     bool       `bun:"is_deleted" json:"is_deleted"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// Product is a sellable item. PictureKeys holds object-store keys, not
// URLs, so the storage backend can move without rewriting rows.
type Product struct {
	bun.BaseModel `bun:"table:products,alias:prd"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id"`
	PictureKeys   []string   `bun:"picture_keys,type:jsonb" json:"picture_keys"`
	Name          string     `bun:"name,notnull" json:"name"`
	Description   string     `bun:"description,nullzero" json:"description,omitempty"`
	Sku           string     `bun:"sku,notnull" json:"sku"`
	Stock         int        `bun:"stock,notnull" json:"stock"`
	Price         float64    `bun:"price,notnull" json:"price"`
	SalePrice     float64    `bun:"sale_price,nullzero" json:"sale_price,omitempty"`
	CategoryID    uuid.UUID  `bun:"category_id,nullzero,type:uuid" json:"category_id,omitempty"`
	VendorID      uuid.UUID  `bun:"vendor_id,nullzero,type:uuid" json:"vendor_id,omitempty"`
	IsDeleted     bool       `bun:"is_deleted" json:"is_deleted"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// ProductFilter narrows and pages a product listing. Nil pointer fields
// mean "no constraint"; IsDeleted defaults to excluding deleted rows.
type ProductFilter struct {
	Name       string
	MinStock   *int
	MinPrice   *float64
	MaxPrice   *float64
	IsDeleted  *bool
	CategoryID uuid.UUID
	VendorID   uuid.UUID
	Page       int
	Limit      int
}

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Normalize clamps paging to sane bounds
func (f *ProductFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = defaultPageSize
	}
	if f.Limit > maxPageSize {
		f.Limit = maxPageSize
	}
}

// Offset returns the row offset for the current page
func (f *ProductFilter) Offset() int {
	return (f.Page - 1) * f.Limit
}
