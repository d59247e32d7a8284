package auth

import (
	"context"
	"crypto/rand"
	"math/big"

	"github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

const (
	otpAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	otpLength   = 6
)

// GenerateOtpCode builds a short uppercase alphanumeric code from a CSPRNG
func GenerateOtpCode() (string, error) {
	max := big.NewInt(int64(len(otpAlphabet)))
	code := make([]byte, otpLength)
	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", errors.Wrap(err, errors.CategoryInternal, "could not generate otp")
		}
		code[i] = otpAlphabet[n.Int64()]
	}
	return string(code), nil
}

// OtpSender delivers a code to an identity out of band, e.g. over email
type OtpSender interface {
	SendOtp(ctx context.Context, to, code string) error
}

// OtpIssuer mints, stores, and consumes one-time passcodes. Issuing for a
// pair that already holds a live code replaces it, so only the most recent
// code ever verifies.
type OtpIssuer struct {
	repo   RepositoryManager
	sender OtpSender
	logger Logger
}

// NewOtpIssuer wires an issuer; the sender may be nil in tests that only
// exercise storage semantics.
func NewOtpIssuer(repo RepositoryManager, sender OtpSender, logger Logger) *OtpIssuer {
	if logger == nil {
		logger = defLogger{}
	}
	return &OtpIssuer{
		repo:   repo,
		sender: sender,
		logger: logger,
	}
}

// Issue generates a fresh code for the identity and purpose, overwrites any
// prior live code, and dispatches it. Delivery failure is reported in logs
// but does not fail the flow: the caller already committed the code, and
// the identity can always request a re-send.
func (o *OtpIssuer) Issue(ctx context.Context, identity *Auth, purpose OtpPurpose) (*Otp, error) {
	if identity == nil {
		return nil, ErrIdentityNotFound
	}

	if !IsValidOtpPurpose(purpose) {
		return nil, errors.New("unknown otp purpose", errors.CategoryBadInput).
			WithTextCode("INVALID_OTP_PURPOSE")
	}

	code, err := GenerateOtpCode()
	if err != nil {
		return nil, err
	}

	record, err := o.repo.Otps().Upsert(ctx, &Otp{
		AuthID:  identity.ID,
		Purpose: purpose,
		Code:    code,
	})
	if err != nil {
		return nil, err
	}

	if o.sender != nil {
		if err := o.sender.SendOtp(ctx, identity.Email, code); err != nil {
			o.logger.Error("otp delivery to %s failed: %v", identity.Email, err)
		}
	}

	return record, nil
}

// Verify consumes a code. A match deletes the record so the code is single
// use, and a verify-email match flips the identity's verified flag in the
// same transaction.
func (o *OtpIssuer) Verify(ctx context.Context, identity *Auth, purpose OtpPurpose, code string) error {
	if identity == nil {
		return ErrIdentityNotFound
	}

	record, err := o.repo.Otps().Find(ctx, identity.ID, purpose)
	if err != nil {
		return err
	}

	if record.Code != code {
		return ErrInvalidOtp
	}

	return o.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if purpose == OtpPurposeVerifyEmail && !identity.IsVerified {
			if err := o.repo.Auths().SetVerifiedTx(ctx, tx, identity.ID); err != nil {
				return err
			}
		}
		return o.repo.Otps().DeleteTx(ctx, tx, identity.ID, purpose)
	})
}
