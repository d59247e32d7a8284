package auth

import (
	"context"
	"database/sql"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Otps stores one live code per (identity, purpose) pair. Issuance is an
// idempotent overwrite keyed on that pair, so concurrent re-sends converge
// to a single live code.
type Otps interface {
	Upsert(ctx context.Context, record *Otp) (*Otp, error)
	UpsertTx(ctx context.Context, tx bun.IDB, record *Otp) (*Otp, error)

	Find(ctx context.Context, authID uuid.UUID, purpose OtpPurpose) (*Otp, error)
	FindTx(ctx context.Context, tx bun.IDB, authID uuid.UUID, purpose OtpPurpose) (*Otp, error)

	Delete(ctx context.Context, authID uuid.UUID, purpose OtpPurpose) error
	DeleteTx(ctx context.Context, tx bun.IDB, authID uuid.UUID, purpose OtpPurpose) error
}

type otps struct {
	db *bun.DB
}

var _ Otps = (*otps)(nil)

// NewOtpsRepository wires the OTP store over bun
func NewOtpsRepository(db *bun.DB) Otps {
	return &otps{db: db}
}

func (r *otps) Upsert(ctx context.Context, record *Otp) (*Otp, error) {
	return r.UpsertTx(ctx, r.db, record)
}

func (r *otps) UpsertTx(ctx context.Context, tx bun.IDB, record *Otp) (*Otp, error) {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	now := time.Now()
	record.UpdatedAt = &now

	_, err := tx.NewInsert().
		Model(record).
		On("CONFLICT (auth_id, purpose) DO UPDATE").
		Set("code = EXCLUDED.code").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)

	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "could not persist otp")
	}

	return record, nil
}

func (r *otps) Find(ctx context.Context, authID uuid.UUID, purpose OtpPurpose) (*Otp, error) {
	return r.FindTx(ctx, r.db, authID, purpose)
}

func (r *otps) FindTx(ctx context.Context, tx bun.IDB, authID uuid.UUID, purpose OtpPurpose) (*Otp, error) {
	record := &Otp{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.auth_id = ? AND ?TableAlias.purpose = ?", authID, purpose).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidOtp
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "otp lookup failed")
	}

	return record, nil
}

func (r *otps) Delete(ctx context.Context, authID uuid.UUID, purpose OtpPurpose) error {
	return r.DeleteTx(ctx, r.db, authID, purpose)
}

func (r *otps) DeleteTx(ctx context.Context, tx bun.IDB, authID uuid.UUID, purpose OtpPurpose) error {
	_, err := tx.NewDelete().
		Model((*Otp)(nil)).
		Where("auth_id = ? AND purpose = ?", authID, purpose).
		Exec(ctx)

	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "could not delete otp")
	}

	return nil
}
