package auth

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

const (
	userColumnLogin      = "login"
	userColumnEmail      = "email"
	userColumnIdentifier = "person_identifier"
)

// Users is the user repository. It only ever sees active users.
type Users interface {
	EntityStore[*User]
	UserDirectory

	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByLogin(ctx context.Context, login string) (*User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

type users struct {
	*Store[*User]
}

var (
	_ Users         = (*users)(nil)
	_ UserDirectory = (*users)(nil)
)

func NewUsersRepository(db *bun.DB) Users {
	return &users{
		Store: NewStore(db, "user", func() *User { return &User{} }).
			WithUniqueColumn(userColumnLogin, "login", func(u *User) string { return u.Login }).
			WithUniqueColumn(userColumnEmail, "email", func(u *User) string { return u.Email }).
			WithUniqueColumn(userColumnIdentifier, "identifier", func(u *User) string { return u.Person.Identifier }),
	}
}

func (u *users) FindByLogin(ctx context.Context, login string) (*User, error) {
	return u.FindByLoginTx(ctx, u.db, login)
}

func (u *users) FindByLoginTx(ctx context.Context, tx IDB, login string) (*User, error) {
	return u.FindOneByTx(ctx, tx, userColumnLogin, strings.TrimSpace(login))
}

func (u *users) FindByEmailTx(ctx context.Context, tx IDB, email string) (*User, error) {
	return u.FindOneByTx(ctx, tx, userColumnEmail, strings.TrimSpace(email))
}

func (u *users) ExistsByLoginTx(ctx context.Context, tx IDB, login string) (bool, error) {
	return u.ExistsByTx(ctx, tx, userColumnLogin, login)
}

func (u *users) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return u.ExistsByEmailTx(ctx, u.db, email)
}

func (u *users) ExistsByEmailTx(ctx context.Context, tx IDB, email string) (bool, error) {
	return u.ExistsByTx(ctx, tx, userColumnEmail, email)
}

func (u *users) ExistsByIdentifierTx(ctx context.Context, tx IDB, identifier string) (bool, error) {
	return u.ExistsByTx(ctx, tx, userColumnIdentifier, identifier)
}
