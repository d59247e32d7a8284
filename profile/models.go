// Package profile holds the role-scoped profile extensions that hang off an
// identity. Each role carries its own attribute set in its own table; the
// primary key is the identity id, so a profile is strictly 1:1.
package profile

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// AdminProfile is the operator profile
type AdminProfile struct {
	bun.BaseModel `bun:"table:admin_profiles,alias:adp"`
	AuthID        uuid.UUID  `bun:"auth_id,pk,type:uuid" json:"auth_id"`
	Name          string     `bun:"name,notnull" json:"name"`
	Phone         string     `bun:"phone,notnull" json:"phone"`
	PictureKey    string     `bun:"picture_key,nullzero" json:"picture_key,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// VendorProfile is the seller profile with fulfillment details
type VendorProfile struct {
	bun.BaseModel `bun:"table:vendor_profiles,alias:vdp"`
	AuthID        uuid.UUID  `bun:"auth_id,pk,type:uuid" json:"auth_id"`
	Name          string     `bun:"name,notnull" json:"name"`
	Phone         string     `bun:"phone,notnull" json:"phone"`
	PictureKey    string     `bun:"picture_key,nullzero" json:"picture_key,omitempty"`
	Description   string     `bun:"description,nullzero" json:"description,omitempty"`
	PostalCode    string     `bun:"postal_code,nullzero" json:"postal_code,omitempty"`
	City          string     `bun:"city,nullzero" json:"city,omitempty"`
	PickupAddress string     `bun:"pickup_address,nullzero" json:"pickup_address,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// UserProfile is the buyer profile with delivery details
type UserProfile struct {
	bun.BaseModel   `bun:"table:user_profiles,alias:usp"`
	AuthID          uuid.UUID  `bun:"auth_id,pk,type:uuid" json:"auth_id"`
	Name            string     `bun:"name,notnull" json:"name"`
	Phone           string     `bun:"phone,notnull" json:"phone"`
	PictureKey      string     `bun:"picture_key,nullzero" json:"picture_key,omitempty"`
	PostalCode      string     `bun:"postal_code,nullzero" json:"postal_code,omitempty"`
	City            string     `bun:"city,nullzero" json:"city,omitempty"`
	DeliveryAddress string     `bun:"delivery_address,nullzero" json:"delivery_address,omitempty"`
	CreatedAt       *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt       *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}
