package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Logger is the logging contract used across the package. Arguments after
// the message are key/value pairs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Config holds auth options
type Config interface {
	GetSigningKey() string
	GetAccessTokenTTL() time.Duration
	GetRefreshTokenTTL() time.Duration
	GetRefreshWindow() time.Duration
	GetPasswordCost() int
}

// PasswordHasher hashes and verifies credentials
type PasswordHasher interface {
	HashPassword(password string) (string, error)
	ComparePasswordAndHash(password, hash string) error
}

// UserDirectory is the user lookup surface used by the token manager
// and the user validator. Lookups only ever see active users.
type UserDirectory interface {
	GetByIDTx(ctx context.Context, tx IDB, id uuid.UUID) (*User, error)
	FindByLoginTx(ctx context.Context, tx IDB, login string) (*User, error)
	FindByEmailTx(ctx context.Context, tx IDB, email string) (*User, error)
	ExistsByLoginTx(ctx context.Context, tx IDB, login string) (bool, error)
	ExistsByEmailTx(ctx context.Context, tx IDB, email string) (bool, error)
	ExistsByIdentifierTx(ctx context.Context, tx IDB, identifier string) (bool, error)
}

// RefreshTokenStore persists refresh token records
type RefreshTokenStore interface {
	CreateTx(ctx context.Context, tx IDB, record *RefreshToken) (*RefreshToken, error)
	FindByTokenTx(ctx context.Context, tx IDB, token string) (*RefreshToken, error)
	InvalidateByOwnerTx(ctx context.Context, tx IDB, userID uuid.UUID) (int64, error)
	ClaimTx(ctx context.Context, tx IDB, token string) (bool, error)
}

type defLogger struct{}

func (d defLogger) Error(msg string, args ...any) {
	fmt.Printf("[ERR] AUTH %s%s\n", msg, formatArgs(args))
}

func (d defLogger) Warn(msg string, args ...any) {
	fmt.Printf("[WRN] AUTH %s%s\n", msg, formatArgs(args))
}

func (d defLogger) Info(msg string, args ...any) {
	fmt.Printf("[INF] AUTH %s%s\n", msg, formatArgs(args))
}

func (d defLogger) Debug(msg string, args ...any) {
	fmt.Printf("[DBG] AUTH %s%s\n", msg, formatArgs(args))
}

func formatArgs(args []any) string {
	out := ""
	for i := 0; i < len(args); i += 2 {
		if i+1 < len(args) {
			out += fmt.Sprintf(" %v=%v", args[i], args[i+1])
			continue
		}
		out += fmt.Sprintf(" %v", args[i])
	}
	return out
}

// NoopLogger discards everything
type NoopLogger struct{}

func (NoopLogger) Debug(string, ...any) {}
func (NoopLogger) Info(string, ...any)  {}
func (NoopLogger) Warn(string, ...any)  {}
func (NoopLogger) Error(string, ...any) {}

func normalizeLogger(l Logger) Logger {
	if l == nil {
		return defLogger{}
	}
	return l
}
