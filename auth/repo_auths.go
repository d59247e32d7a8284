package auth

import (
	"context"
	"database/sql"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Auths is the identity store adapter. Lookups never return soft-deleted
// records; bun applies the deleted_at filter through the model tag.
type Auths interface {
	GetByEmail(ctx context.Context, email string) (*Auth, error)
	GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*Auth, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Auth, error)
	GetByIDTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (*Auth, error)

	Register(ctx context.Context, record *Auth) (*Auth, error)
	RegisterTx(ctx context.Context, tx bun.IDB, record *Auth) (*Auth, error)

	SetVerified(ctx context.Context, id uuid.UUID) error
	SetVerifiedTx(ctx context.Context, tx bun.IDB, id uuid.UUID) error

	SetRole(ctx context.Context, id uuid.UUID, role Role) error
	SetRoleTx(ctx context.Context, tx bun.IDB, id uuid.UUID, role Role) error

	ResetPassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	ResetPasswordTx(ctx context.Context, tx bun.IDB, id uuid.UUID, passwordHash string) error
}

type auths struct {
	db *bun.DB
}

var _ Auths = (*auths)(nil)

// NewAuthsRepository wires the identity store adapter over bun
func NewAuthsRepository(db *bun.DB) Auths {
	return &auths{db: db}
}

func (a *auths) GetByEmail(ctx context.Context, email string) (*Auth, error) {
	return a.GetByEmailTx(ctx, a.db, email)
}

func (a *auths) GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*Auth, error) {
	record := &Auth{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.email = ?", NormalizeEmail(email)).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrIdentityNotFound
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "identity lookup failed")
	}

	return record, nil
}

func (a *auths) GetByID(ctx context.Context, id uuid.UUID) (*Auth, error) {
	return a.GetByIDTx(ctx, a.db, id)
}

func (a *auths) GetByIDTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (*Auth, error) {
	record := &Auth{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrIdentityNotFound
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "identity lookup failed")
	}

	return record, nil
}

func (a *auths) Register(ctx context.Context, record *Auth) (*Auth, error) {
	return a.RegisterTx(ctx, a.db, record)
}

func (a *auths) RegisterTx(ctx context.Context, tx bun.IDB, record *Auth) (*Auth, error) {
	prepareAuthDefaults(record)

	if _, err := tx.NewInsert().Model(record).Exec(ctx); err != nil {
		return nil, errors.Wrap(err, errors.CategoryConflict, "could not create identity")
	}

	return record, nil
}

func (a *auths) SetVerified(ctx context.Context, id uuid.UUID) error {
	return a.SetVerifiedTx(ctx, a.db, id)
}

func (a *auths) SetVerifiedTx(ctx context.Context, tx bun.IDB, id uuid.UUID) error {
	return a.updateColumn(ctx, tx, id, "is_verified", true)
}

func (a *auths) SetRole(ctx context.Context, id uuid.UUID, role Role) error {
	return a.SetRoleTx(ctx, a.db, id, role)
}

func (a *auths) SetRoleTx(ctx context.Context, tx bun.IDB, id uuid.UUID, role Role) error {
	return a.updateColumn(ctx, tx, id, "role", role)
}

func (a *auths) ResetPassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	return a.ResetPasswordTx(ctx, a.db, id, passwordHash)
}

func (a *auths) ResetPasswordTx(ctx context.Context, tx bun.IDB, id uuid.UUID, passwordHash string) error {
	return a.updateColumn(ctx, tx, id, "password_hash", passwordHash)
}

func (a *auths) updateColumn(ctx context.Context, tx bun.IDB, id uuid.UUID, column string, value any) error {
	res, err := tx.NewUpdate().
		Model((*Auth)(nil)).
		Set("? = ?", bun.Ident(column), value).
		Set("updated_at = ?", time.Now()).
		Where("?TableAlias.id = ?", id).
		Exec(ctx)

	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "identity update failed")
	}

	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return ErrIdentityNotFound
	}

	return nil
}

func prepareAuthDefaults(record *Auth) {
	if record == nil {
		return
	}

	record.Email = NormalizeEmail(record.Email)

	if record.Role == "" {
		record.Role = RoleUnspecified
	}

	if record.ID == uuid.Nil {
		// Deterministic id from the unique email; fall back to random.
		if id, err := hashid.NewUUID(record.Email); err == nil {
			record.ID = id
		} else {
			record.ID = uuid.New()
		}
	}
}
