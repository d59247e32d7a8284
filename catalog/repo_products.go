package catalog

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Products is the product storage adapter. List applies every constraint
// the filter carries and returns the page plus the unpaged total.
type Products interface {
	List(ctx context.Context, filter ProductFilter) ([]Product, int, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Product, error)
	Create(ctx context.Context, record *Product) (*Product, error)
	Update(ctx context.Context, record *Product) (*Product, error)
	SoftDelete(ctx context.Context, id uuid.UUID) error
	AddPictures(ctx context.Context, id uuid.UUID, keys []string) (*Product, error)
}

type products struct {
	db *bun.DB
}

var _ Products = (*products)(nil)

// NewProductsRepository wires the product store over bun
func NewProductsRepository(db *bun.DB) Products {
	return &products{db: db}
}

func (r *products) List(ctx context.Context, filter ProductFilter) ([]Product, int, error) {
	filter.Normalize()

	records := []Product{}

	q := r.db.NewSelect().Model(&records)
	q = applyProductFilter(q, filter)

	total, err := q.
		Order("created_at DESC").
		Limit(filter.Limit).
		Offset(filter.Offset()).
		ScanAndCount(ctx)

	if err != nil {
		return nil, 0, errors.Wrap(err, errors.CategoryInternal, "product listing failed")
	}

	return records, total, nil
}

func applyProductFilter(q *bun.SelectQuery, filter ProductFilter) *bun.SelectQuery {
	if filter.Name != "" {
		q = q.Where("LOWER(?TableAlias.name) LIKE ?", "%"+strings.ToLower(filter.Name)+"%")
	}
	if filter.MinStock != nil {
		q = q.Where("?TableAlias.stock >= ?", *filter.MinStock)
	}
	if filter.MinPrice != nil {
		q = q.Where("?TableAlias.price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		q = q.Where("?TableAlias.price <= ?", *filter.MaxPrice)
	}
	if filter.CategoryID != uuid.Nil {
		q = q.Where("?TableAlias.category_id = ?", filter.CategoryID)
	}
	if filter.VendorID != uuid.Nil {
		q = q.Where("?TableAlias.vendor_id = ?", filter.VendorID)
	}

	if filter.IsDeleted != nil {
		q = q.Where("?TableAlias.is_deleted = ?", *filter.IsDeleted)
	} else {
		q = q.Where("?TableAlias.is_deleted = ?", false)
	}

	return q
}

func (r *products) GetByID(ctx context.Context, id uuid.UUID) (*Product, error) {
	record := &Product{}
	err := r.db.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "product lookup failed")
	}

	return record, nil
}

func (r *products) Create(ctx context.Context, record *Product) (*Product, error) {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if record.PictureKeys == nil {
		record.PictureKeys = []string{}
	}

	if _, err := r.db.NewInsert().Model(record).Exec(ctx); err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "could not create product")
	}

	return record, nil
}

func (r *products) Update(ctx context.Context, record *Product) (*Product, error) {
	now := time.Now()
	record.UpdatedAt = &now

	res, err := r.db.NewUpdate().
		Model(record).
		ExcludeColumn("id", "created_at").
		Where("id = ?", record.ID).
		Exec(ctx)

	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "could not update product")
	}

	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return nil, ErrProductNotFound
	}

	return record, nil
}

func (r *products) SoftDelete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.NewUpdate().
		Model((*Product)(nil)).
		Set("is_deleted = ?", true).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", id).
		Exec(ctx)

	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "could not delete product")
	}

	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return ErrProductNotFound
	}

	return nil
}

func (r *products) AddPictures(ctx context.Context, id uuid.UUID, keys []string) (*Product, error) {
	record, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	record.PictureKeys = append(record.PictureKeys, keys...)

	return r.Update(ctx, record)
}
