package catalog

import (
	"context"
	"database/sql"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Vendors is the vendor directory storage adapter
type Vendors interface {
	List(ctx context.Context, includeDeleted bool) ([]Vendor, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Vendor, error)
	Create(ctx context.Context, record *Vendor) (*Vendor, error)
	Update(ctx context.Context, record *Vendor) (*Vendor, error)
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

type vendors struct {
	db *bun.DB
}

var _ Vendors = (*vendors)(nil)

// NewVendorsRepository wires the vendor directory over bun
func NewVendorsRepository(db *bun.DB) Vendors {
	return &vendors{db: db}
}

func (r *vendors) List(ctx context.Context, includeDeleted bool) ([]Vendor, error) {
	records := []Vendor{}

	q := r.db.NewSelect().
		Model(&records).
		Order("name ASC")

	if !includeDeleted {
		q = q.Where("?TableAlias.is_deleted = ?", false)
	}

	if err := q.Scan(ctx); err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "vendor listing failed")
	}

	return records, nil
}

func (r *vendors) GetByID(ctx context.Context, id uuid.UUID) (*Vendor, error) {
	record := &Vendor{}
	err := r.db.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrVendorNotFound
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "vendor lookup failed")
	}

	return record, nil
}

func (r *vendors) Create(ctx context.Context, record *Vendor) (*Vendor, error) {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}

	if _, err := r.db.NewInsert().Model(record).Exec(ctx); err != nil {
		return nil, errors.Wrap(err, errors.CategoryConflict, ErrNameTaken.Message).
			WithTextCode(ErrNameTaken.TextCode)
	}

	return record, nil
}

func (r *vendors) Update(ctx context.Context, record *Vendor) (*Vendor, error) {
	now := time.Now()
	record.UpdatedAt = &now

	res, err := r.db.NewUpdate().
		Model(record).
		ExcludeColumn("id", "created_at").
		Where("id = ?", record.ID).
		Exec(ctx)

	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "could not update vendor")
	}

	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return nil, ErrVendorNotFound
	}

	return record, nil
}

func (r *vendors) SoftDelete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.NewUpdate().
		Model((*Vendor)(nil)).
		Set("is_deleted = ?", true).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", id).
		Exec(ctx)

	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "could not delete vendor")
	}

	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return ErrVendorNotFound
	}

	return nil
}
