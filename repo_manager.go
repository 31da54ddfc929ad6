package auth

import (
	"context"
	"database/sql"
	"errors"
	"log"

	"github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

// RepositoryManager exposes all repositories
type RepositoryManager interface {
	repository.Validator
	repository.TransactionManager
	DB() *bun.DB
	Users() Users
	RefreshTokens() RefreshTokens
	Schedulings() *Store[*Scheduling]
}

type mngr struct {
	db            *bun.DB
	users         Users
	refreshTokens RefreshTokens
	schedulings   *Store[*Scheduling]
}

func NewRepositoryManager(db *bun.DB) RepositoryManager {
	return &mngr{
		db:            db,
		users:         NewUsersRepository(db),
		refreshTokens: NewRefreshTokensRepository(db),
		schedulings:   NewSchedulingsRepository(db),
	}
}

// NewSchedulingsRepository returns the soft delete store for schedulings
func NewSchedulingsRepository(db *bun.DB) *Store[*Scheduling] {
	return NewStore(db, "scheduling", func() *Scheduling { return &Scheduling{} })
}

func (m mngr) Validate() error {
	if m.db == nil {
		return errors.New("repository manager requires a database")
	}

	if m.users == nil {
		return errors.New("repository users should be initialized")
	}

	if m.refreshTokens == nil {
		return errors.New("repository refreshTokens should be initialized")
	}

	if m.schedulings == nil {
		return errors.New("repository schedulings should be initialized")
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

func (m mngr) DB() *bun.DB {
	return m.db
}

func (m mngr) Users() Users {
	return m.users
}

func (m mngr) RefreshTokens() RefreshTokens {
	return m.refreshTokens
}

func (m mngr) Schedulings() *Store[*Scheduling] {
	return m.schedulings
}
