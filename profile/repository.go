package profile

import (
	"context"
	"database/sql"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Profiles is the storage adapter for the three role-scoped profile tables
type Profiles interface {
	GetAdmin(ctx context.Context, authID uuid.UUID) (*AdminProfile, error)
	GetVendor(ctx context.Context, authID uuid.UUID) (*VendorProfile, error)
	GetUser(ctx context.Context, authID uuid.UUID) (*UserProfile, error)

	CreateAdminTx(ctx context.Context, tx bun.IDB, record *AdminProfile) error
	CreateVendorTx(ctx context.Context, tx bun.IDB, record *VendorProfile) error
	CreateUserTx(ctx context.Context, tx bun.IDB, record *UserProfile) error

	UpdateAdmin(ctx context.Context, record *AdminProfile) error
	UpdateVendor(ctx context.Context, record *VendorProfile) error
	UpdateUser(ctx context.Context, record *UserProfile) error
}

type profiles struct {
	db *bun.DB
}

var _ Profiles = (*profiles)(nil)

// NewProfilesRepository wires the profile store over bun
func NewProfilesRepository(db *bun.DB) Profiles {
	return &profiles{db: db}
}

func (r *profiles) GetAdmin(ctx context.Context, authID uuid.UUID) (*AdminProfile, error) {
	record := &AdminProfile{}
	return record, r.getByAuthID(ctx, record, authID)
}

func (r *profiles) GetVendor(ctx context.Context, authID uuid.UUID) (*VendorProfile, error) {
	record := &VendorProfile{}
	return record, r.getByAuthID(ctx, record, authID)
}

func (r *profiles) GetUser(ctx context.Context, authID uuid.UUID) (*UserProfile, error) {
	record := &UserProfile{}
	return record, r.getByAuthID(ctx, record, authID)
}

func (r *profiles) getByAuthID(ctx context.Context, model any, authID uuid.UUID) error {
	err := r.db.NewSelect().
		Model(model).
		Where("?TableAlias.auth_id = ?", authID).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrProfileNotFound
		}
		return errors.Wrap(err, errors.CategoryInternal, "profile lookup failed")
	}

	return nil
}

func (r *profiles) CreateAdminTx(ctx context.Context, tx bun.IDB, record *AdminProfile) error {
	return r.insert(ctx, tx, record)
}

func (r *profiles) CreateVendorTx(ctx context.Context, tx bun.IDB, record *VendorProfile) error {
	return r.insert(ctx, tx, record)
}

func (r *profiles) CreateUserTx(ctx context.Context, tx bun.IDB, record *UserProfile) error {
	return r.insert(ctx, tx, record)
}

func (r *profiles) insert(ctx context.Context, tx bun.IDB, model any) error {
	if _, err := tx.NewInsert().Model(model).Exec(ctx); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "could not create profile")
	}
	return nil
}

func (r *profiles) UpdateAdmin(ctx context.Context, record *AdminProfile) error {
	now := time.Now()
	record.UpdatedAt = &now
	return r.update(ctx, record, record.AuthID)
}

func (r *profiles) UpdateVendor(ctx context.Context, record *VendorProfile) error {
	now := time.Now()
	record.UpdatedAt = &now
	return r.update(ctx, record, record.AuthID)
}

func (r *profiles) UpdateUser(ctx context.Context, record *UserProfile) error {
	now := time.Now()
	record.UpdatedAt = &now
	return r.update(ctx, record, record.AuthID)
}

func (r *profiles) update(ctx context.Context, model any, authID uuid.UUID) error {
	res, err := r.db.NewUpdate().
		Model(model).
		ExcludeColumn("auth_id", "created_at").
		Where("auth_id = ?", authID).
		Exec(ctx)

	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "could not update profile")
	}

	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return ErrProfileNotFound
	}

	return nil
}
