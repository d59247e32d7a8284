package auth_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecobuilt/api/auth"
)

type captureSender struct {
	to    []string
	codes []string
	err   error
}

func (s *captureSender) SendOtp(_ context.Context, to, code string) error {
	s.to = append(s.to, to)
	s.codes = append(s.codes, code)
	return s.err
}

func TestGenerateOtpCode(t *testing.T) {
	const alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

	seen := map[string]bool{}

	for i := 0; i < 50; i++ {
		code, err := auth.GenerateOtpCode()

		require.NoError(t, err)
		require.Len(t, code, 6)

		for _, c := range code {
			assert.True(t, strings.ContainsRune(alphabet, c), "unexpected character %q", c)
		}

		seen[code] = true
	}

	// 50 draws from a 36^6 space colliding down to a handful would mean
	// the generator is broken
	assert.Greater(t, len(seen), 40)
}

func TestOtpIssuer_Issue(t *testing.T) {
	db := newTestDB(t)
	repo := auth.NewRepositoryManager(db)
	ctx := context.Background()

	identity, err := repo.Auths().Register(ctx, &auth.Auth{
		Email:        "user@example.com",
		PasswordHash: "hash",
	})
	require.NoError(t, err)

	t.Run("stores and delivers a code", func(t *testing.T) {
		sender := &captureSender{}
		issuer := auth.NewOtpIssuer(repo, sender, nil)

		record, err := issuer.Issue(ctx, identity, auth.OtpPurposeVerifyEmail)

		require.NoError(t, err)
		require.Len(t, sender.codes, 1)
		assert.Equal(t, []string{"user@example.com"}, sender.to)
		assert.Equal(t, record.Code, sender.codes[0])
		assert.Len(t, record.Code, 6)
	})

	t.Run("re-issuing overwrites the previous code", func(t *testing.T) {
		sender := &captureSender{}
		issuer := auth.NewOtpIssuer(repo, sender, nil)

		first, err := issuer.Issue(ctx, identity, auth.OtpPurposeVerifyEmail)
		require.NoError(t, err)

		second, err := issuer.Issue(ctx, identity, auth.OtpPurposeVerifyEmail)
		require.NoError(t, err)

		// the old code no longer verifies
		if first.Code != second.Code {
			err = issuer.Verify(ctx, identity, auth.OtpPurposeVerifyEmail, first.Code)
			assert.ErrorIs(t, err, auth.ErrInvalidOtp)
		}

		assert.NoError(t, issuer.Verify(ctx, identity, auth.OtpPurposeVerifyEmail, second.Code))
	})

	t.Run("purposes hold independent codes", func(t *testing.T) {
		issuer := auth.NewOtpIssuer(repo, &captureSender{}, nil)

		verify, err := issuer.Issue(ctx, identity, auth.OtpPurposeVerifyEmail)
		require.NoError(t, err)

		reset, err := issuer.Issue(ctx, identity, auth.OtpPurposeResetPassword)
		require.NoError(t, err)

		assert.NoError(t, issuer.Verify(ctx, identity, auth.OtpPurposeVerifyEmail, verify.Code))
		assert.NoError(t, issuer.Verify(ctx, identity, auth.OtpPurposeResetPassword, reset.Code))
	})

	t.Run("delivery failure does not fail issuance", func(t *testing.T) {
		sender := &captureSender{err: assert.AnError}
		issuer := auth.NewOtpIssuer(repo, sender, nil)

		record, err := issuer.Issue(ctx, identity, auth.OtpPurposeVerifyEmail)

		require.NoError(t, err)
		assert.NotEmpty(t, record.Code)
	})

	t.Run("unknown purpose is rejected", func(t *testing.T) {
		issuer := auth.NewOtpIssuer(repo, &captureSender{}, nil)

		_, err := issuer.Issue(ctx, identity, "SOMETHING_ELSE")
		assert.Error(t, err)
	})
}

func TestOtpIssuer_Verify(t *testing.T) {
	db := newTestDB(t)
	repo := auth.NewRepositoryManager(db)
	issuer := auth.NewOtpIssuer(repo, &captureSender{}, nil)
	ctx := context.Background()

	identity, err := repo.Auths().Register(ctx, &auth.Auth{
		Email:        "user@example.com",
		PasswordHash: "hash",
	})
	require.NoError(t, err)

	t.Run("wrong code is rejected", func(t *testing.T) {
		_, err := issuer.Issue(ctx, identity, auth.OtpPurposeVerifyEmail)
		require.NoError(t, err)

		err = issuer.Verify(ctx, identity, auth.OtpPurposeVerifyEmail, "WRONG1")
		assert.ErrorIs(t, err, auth.ErrInvalidOtp)
	})

	t.Run("verify-email match flips the verified flag and consumes the code", func(t *testing.T) {
		record, err := issuer.Issue(ctx, identity, auth.OtpPurposeVerifyEmail)
		require.NoError(t, err)

		require.NoError(t, issuer.Verify(ctx, identity, auth.OtpPurposeVerifyEmail, record.Code))

		found, err := repo.Auths().GetByID(ctx, identity.ID)
		require.NoError(t, err)
		assert.True(t, found.IsVerified)

		// single use: replaying the same code fails
		err = issuer.Verify(ctx, identity, auth.OtpPurposeVerifyEmail, record.Code)
		assert.ErrorIs(t, err, auth.ErrInvalidOtp)
	})

	t.Run("reset match consumes the code without touching verification", func(t *testing.T) {
		other, err := repo.Auths().Register(ctx, &auth.Auth{
			Email:        "other@example.com",
			PasswordHash: "hash",
		})
		require.NoError(t, err)

		record, err := issuer.Issue(ctx, other, auth.OtpPurposeResetPassword)
		require.NoError(t, err)

		require.NoError(t, issuer.Verify(ctx, other, auth.OtpPurposeResetPassword, record.Code))

		found, err := repo.Auths().GetByID(ctx, other.ID)
		require.NoError(t, err)
		assert.False(t, found.IsVerified)

		err = issuer.Verify(ctx, other, auth.OtpPurposeResetPassword, record.Code)
		assert.ErrorIs(t, err, auth.ErrInvalidOtp)
	})
}
