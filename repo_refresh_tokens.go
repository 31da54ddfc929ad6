package auth

import (
	"context"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ClaimRefreshTokenSQL marks a record as used only if nobody did it first
var ClaimRefreshTokenSQL = `UPDATE "refresh_tokens"
SET
	"used" = TRUE
WHERE
	"token" = ?
AND
	"used" = FALSE;`

// RefreshTokens is the refresh token repository
type RefreshTokens interface {
	RefreshTokenStore

	FindByToken(ctx context.Context, token string) (*RefreshToken, error)
	ListByOwnerTx(ctx context.Context, tx IDB, userID uuid.UUID) ([]*RefreshToken, error)
}

type refreshTokens struct {
	repo repository.Repository[*RefreshToken]
	db   *bun.DB
}

var _ RefreshTokens = (*refreshTokens)(nil)

func NewRefreshTokensRepository(db *bun.DB) RefreshTokens {
	repo := repository.NewRepository[*RefreshToken](db, repository.ModelHandlers[*RefreshToken]{
		NewRecord: func() *RefreshToken { return &RefreshToken{} },
		GetID: func(r *RefreshToken) uuid.UUID {
			if r == nil {
				return uuid.Nil
			}
			return r.ID
		},
		SetID: func(r *RefreshToken, id uuid.UUID) {
			if r != nil {
				r.ID = id
			}
		},
		GetIdentifier: func() string {
			return "token"
		},
	})
	return &refreshTokens{repo: repo, db: db}
}

func (r *refreshTokens) CreateTx(ctx context.Context, tx IDB, record *RefreshToken) (*RefreshToken, error) {
	return r.repo.CreateTx(ctx, tx, record)
}

func (r *refreshTokens) FindByToken(ctx context.Context, token string) (*RefreshToken, error) {
	return r.FindByTokenTx(ctx, r.db, token)
}

func (r *refreshTokens) FindByTokenTx(ctx context.Context, tx IDB, token string) (*RefreshToken, error) {
	record, err := r.repo.GetTx(ctx, tx, repository.SelectBy("token", "=", token))
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, NewNotFoundError("refresh_token", nil)
		}
		return nil, err
	}
	return record, nil
}

func (r *refreshTokens) ListByOwnerTx(ctx context.Context, tx IDB, userID uuid.UUID) ([]*RefreshToken, error) {
	records := []*RefreshToken{}
	err := tx.NewSelect().
		Model(&records).
		Where("?TableAlias.user_id = ?", userID).
		OrderExpr("?TableAlias.created_at ASC").
		Scan(ctx)
	if err != nil && !repository.IsRecordNotFound(err) {
		return nil, err
	}
	return records, nil
}

// InvalidateByOwnerTx marks every unused record of the user as used
func (r *refreshTokens) InvalidateByOwnerTx(ctx context.Context, tx IDB, userID uuid.UUID) (int64, error) {
	res, err := tx.NewUpdate().
		Model((*RefreshToken)(nil)).
		Set("used = ?", true).
		Where("user_id = ?", userID).
		Where("used = ?", false).
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ClaimTx flips used on the given token. It returns true only for the
// caller that performed the transition.
func (r *refreshTokens) ClaimTx(ctx context.Context, tx IDB, token string) (bool, error) {
	res, err := tx.NewRaw(ClaimRefreshTokenSQL, token).Exec(ctx)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
