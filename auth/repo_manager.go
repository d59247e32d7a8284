package auth

import (
	"context"
	"database/sql"
	"errors"
	"log"

	"github.com/uptrace/bun"
)

// RepositoryManager exposes all repositories
type RepositoryManager interface {
	Validate() error
	MustValidate()
	RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error
	Auths() Auths
	Otps() Otps
}

type mngr struct {
	db    *bun.DB
	auths Auths
	otps  Otps
}

// NewRepositoryManager builds the default repository set over one bun handle
func NewRepositoryManager(db *bun.DB) RepositoryManager {
	return &mngr{
		db:    db,
		auths: NewAuthsRepository(db),
		otps:  NewOtpsRepository(db),
	}
}

func (m mngr) Validate() error {
	if m.auths == nil {
		return errors.New("repository auths should be initialized")
	}

	if m.otps == nil {
		return errors.New("repository otps should be initialized")
	}

	return nil
}

func (m mngr) MustValidate() {
	if err := m.Validate(); err != nil {
		log.Panic(err)
	}
}

func (m mngr) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return m.db.RunInTx(ctx, opts, f)
	}
}

func (m mngr) Auths() Auths {
	return m.auths
}

func (m mngr) Otps() Otps {
	return m.otps
}
