package auth

import (
	"context"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

// TokenPair is the result of a successful authenticate or refresh
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// TokenManager issues and rotates token pairs. It holds no per session
// state and is safe for concurrent use.
type TokenManager struct {
	txm           repository.TransactionManager
	db            IDB
	users         UserDirectory
	tokens        RefreshTokenStore
	codec         *TokenCodec
	hasher        PasswordHasher
	refreshWindow time.Duration
	now           func() time.Time
	logger        Logger
	activitySink  ActivitySink
}

// NewTokenManager wires the manager on top of repos
func NewTokenManager(repos RepositoryManager, codec *TokenCodec) *TokenManager {
	return &TokenManager{
		txm:           repos,
		db:            repos.DB(),
		users:         repos.Users(),
		tokens:        repos.RefreshTokens(),
		codec:         codec,
		hasher:        BcryptHasher{},
		refreshWindow: DefaultRefreshWindow,
		now:           func() time.Time { return time.Now().UTC() },
		logger:        defLogger{},
		activitySink:  noopActivitySink{},
	}
}

func (m *TokenManager) WithLogger(logger Logger) *TokenManager {
	m.logger = normalizeLogger(logger)
	return m
}

// WithActivitySink configures an ActivitySink for emitting auth events.
func (m *TokenManager) WithActivitySink(sink ActivitySink) *TokenManager {
	m.activitySink = normalizeActivitySink(sink)
	return m
}

func (m *TokenManager) WithHasher(hasher PasswordHasher) *TokenManager {
	if hasher != nil {
		m.hasher = hasher
	}
	return m
}

// WithRefreshWindow sets how long a stored refresh record stays valid
func (m *TokenManager) WithRefreshWindow(window time.Duration) *TokenManager {
	if window > 0 {
		m.refreshWindow = window
	}
	return m
}

// WithClock sets the time source used for refresh records
func (m *TokenManager) WithClock(now func() time.Time) *TokenManager {
	if now != nil {
		m.now = now
	}
	return m
}

// Codec returns the codec used to sign tokens
func (m *TokenManager) Codec() *TokenCodec {
	return m.codec
}

// Authenticate verifies the credentials and starts a new session,
// superseding every refresh token previously issued to the user.
func (m *TokenManager) Authenticate(ctx context.Context, login, password string) (*TokenPair, error) {
	var pair *TokenPair
	var user *User

	err := m.txm.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var err error
		user, err = m.users.FindByLoginTx(ctx, tx, login)
		if err != nil {
			if IsNotFound(err) {
				return ErrInvalidCredentials
			}
			return err
		}

		if err := m.hasher.ComparePasswordAndHash(password, user.PasswordHash); err != nil {
			if !IsInvalidCredentials(err) {
				m.logger.Error("authenticate compare password error", "error", err)
			}
			return ErrInvalidCredentials
		}

		pair, err = m.issueTx(ctx, tx, user)
		return err
	})

	if err != nil {
		m.logger.Warn("authenticate failed", "login", login, "error", err)
		emitActivity(ctx, m.activitySink, m.logger, ActivityEvent{
			EventType: ActivityEventLoginFailure,
			Actor:     actorUnknown,
			Metadata: map[string]any{
				"login": login,
				"kind":  ErrorKind(err),
			},
		})
		return nil, passthrough(err, "failed to authenticate")
	}

	emitActivity(ctx, m.activitySink, m.logger, ActivityEvent{
		EventType: ActivityEventLoginSuccess,
		Actor:     actorFromUser(user),
		UserID:    user.ID.String(),
		Metadata:  map[string]any{"login": login},
	})

	return pair, nil
}

// Refresh exchanges a refresh token for a new pair. The presented record
// is claimed atomically so concurrent callers with the same token cannot
// both succeed.
func (m *TokenManager) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	var pair *TokenPair
	var user *User
	reason := ""

	err := m.txm.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		subject, err := m.codec.ExtractSubject(refreshToken)
		if err != nil {
			reason = ErrorKind(err)
			return ErrTokenInvalid
		}

		user, err = m.users.FindByLoginTx(ctx, tx, subject)
		if err != nil {
			if IsNotFound(err) {
				reason = "unknown_subject"
				return ErrTokenInvalid
			}
			return err
		}

		record, err := m.tokens.FindByTokenTx(ctx, tx, refreshToken)
		if err != nil {
			if IsNotFound(err) {
				reason = "unknown_token"
				return ErrTokenInvalid
			}
			return err
		}

		if record.UserID != user.ID {
			reason = "owner_mismatch"
			return ErrTokenInvalid
		}

		if !record.IsValid(m.now(), m.refreshWindow) {
			reason = "stale_or_used"
			return ErrTokenInvalid
		}

		claimed, err := m.tokens.ClaimTx(ctx, tx, refreshToken)
		if err != nil {
			return err
		}

		if !claimed {
			reason = "already_claimed"
			return ErrTokenInvalid
		}

		pair, err = m.issueTx(ctx, tx, user)
		return err
	})

	if err != nil {
		if IsTokenInvalid(err) {
			m.logger.Warn("refresh rejected", "reason", reason)
			emitActivity(ctx, m.activitySink, m.logger, ActivityEvent{
				EventType: ActivityEventRefreshRejected,
				Actor:     actorFromUser(user),
				Metadata:  map[string]any{"reason": reason},
			})
		} else {
			m.logger.Error("refresh failed", "error", err)
		}
		return nil, passthrough(err, "failed to refresh token")
	}

	emitActivity(ctx, m.activitySink, m.logger, ActivityEvent{
		EventType: ActivityEventTokenRefreshed,
		Actor:     actorFromUser(user),
		UserID:    user.ID.String(),
	})

	return pair, nil
}

// VerifyAccessToken checks an access token against the active user it
// names and returns its claims.
func (m *TokenManager) VerifyAccessToken(ctx context.Context, accessToken string) (*AccessClaims, error) {
	claims, err := m.codec.ParseAccessClaims(accessToken)
	if err != nil {
		return nil, err
	}

	user, err := m.users.FindByLoginTx(ctx, m.db, claims.Login())
	if err != nil {
		if IsNotFound(err) {
			return nil, ErrUnknownSubject
		}
		return nil, passthrough(err, "failed to verify access token")
	}

	if !m.codec.IsCurrentlyValid(accessToken, user.Login) {
		return nil, ErrTokenExpired
	}

	return claims, nil
}

// issueTx supersedes every outstanding refresh record of user, signs a
// new pair and stores the new refresh record.
func (m *TokenManager) issueTx(ctx context.Context, tx IDB, user *User) (*TokenPair, error) {
	if _, err := m.tokens.InvalidateByOwnerTx(ctx, tx, user.ID); err != nil {
		return nil, err
	}

	access, err := m.codec.AccessToken(user)
	if err != nil {
		return nil, err
	}

	refresh, err := m.codec.RefreshToken(user)
	if err != nil {
		return nil, err
	}

	if _, err := m.tokens.CreateTx(ctx, tx, NewRefreshToken(refresh, user.ID, m.now())); err != nil {
		return nil, err
	}

	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
