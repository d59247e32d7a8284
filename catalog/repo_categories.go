package catalog

import (
	"context"
	"database/sql"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Categories is the category storage adapter. Deletion is a flag flip so
// products keep a resolvable category reference.
type Categories interface {
	List(ctx context.Context, includeDeleted bool) ([]Category, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Category, error)
	Create(ctx context.Context, record *Category) (*Category, error)
	Update(ctx context.Context, record *Category) (*Category, error)
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

type categories struct {
	db *bun.DB
}

var _ Categories = (*categories)(nil)

// NewCategoriesRepository wires the category store over bun
func NewCategoriesRepository(db *bun.DB) Categories {
	return &categories{db: db}
}

func (r *categories) List(ctx context.Context, includeDeleted bool) ([]Category, error) {
	records := []Category{}

	q := r.db.NewSelect().
		Model(&records).
		Order("name ASC")

	if !includeDeleted {
		q = q.Where("?TableAlias.is_deleted = ?", false)
	}

	if err := q.Scan(ctx); err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "category listing failed")
	}

	return records, nil
}

func (r *categories) GetByID(ctx context.Context, id uuid.UUID) (*Category, error) {
	record := &Category{}
	err := r.db.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "category lookup failed")
	}

	return record, nil
}

func (r *categories) Create(ctx context.Context, record *Category) (*Category, error) {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}

	if _, err := r.db.NewInsert().Model(record).Exec(ctx); err != nil {
		return nil, errors.Wrap(err, errors.CategoryConflict, ErrNameTaken.Message).
			WithTextCode(ErrNameTaken.TextCode)
	}

	return record, nil
}

func (r *categories) Update(ctx context.Context, record *Category) (*Category, error) {
	now := time.Now()
	record.UpdatedAt = &now

	res, err := r.db.NewUpdate().
		Model(record).
		ExcludeColumn("id", "created_at").
		Where("id = ?", record.ID).
		Exec(ctx)

	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "could not update category")
	}

	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return nil, ErrCategoryNotFound
	}

	return record, nil
}

func (r *categories) SoftDelete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.NewUpdate().
		Model((*Category)(nil)).
		Set("is_deleted = ?", true).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", id).
		Exec(ctx)

	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "could not delete category")
	}

	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return ErrCategoryNotFound
	}

	return nil
}
