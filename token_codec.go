package auth

import (
	"encoding/base64"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

const (
	// DefaultAccessTokenTTL is the lifetime of an access token
	DefaultAccessTokenTTL = 24 * time.Minute
	// DefaultRefreshTokenTTL is the signed lifetime of a refresh token
	DefaultRefreshTokenTTL = 24 * time.Hour
	// DefaultRefreshWindow is how long a stored refresh record stays exchangeable
	DefaultRefreshWindow = 5 * time.Minute
	// MinSigningKeyLength is the minimum decoded key size for HS256
	MinSigningKeyLength = 32
)

var signingMethod = jwt.SigningMethodHS256

// TokenCodec signs and verifies HS256 tokens
type TokenCodec struct {
	signingKey []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
	logger     Logger
}

// NewTokenCodec builds a codec from a base64 encoded secret. The decoded
// key must be at least MinSigningKeyLength bytes.
func NewTokenCodec(secret string, accessTTL, refreshTTL time.Duration) (*TokenCodec, error) {
	key, err := DecodeSigningKey(secret)
	if err != nil {
		return nil, err
	}

	if accessTTL <= 0 {
		accessTTL = DefaultAccessTokenTTL
	}

	if refreshTTL <= 0 {
		refreshTTL = DefaultRefreshTokenTTL
	}

	return &TokenCodec{
		signingKey: key,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        func() time.Time { return time.Now().UTC() },
		logger:     defLogger{},
	}, nil
}

// NewTokenCodecFromConfig reads key and lifetimes from cfg
func NewTokenCodecFromConfig(cfg Config) (*TokenCodec, error) {
	return NewTokenCodec(cfg.GetSigningKey(), cfg.GetAccessTokenTTL(), cfg.GetRefreshTokenTTL())
}

// DecodeSigningKey decodes a standard base64 secret
func DecodeSigningKey(secret string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(secret)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryBadInput, "signing key must be base64 encoded").
			WithTextCode(TextCodeBadRequest).
			WithCode(goerrors.CodeBadRequest)
	}

	if len(key) < MinSigningKeyLength {
		return nil, NewBadRequestError("signing key is too short", map[string]any{
			"length":  len(key),
			"minimum": MinSigningKeyLength,
		})
	}

	return key, nil
}

// WithClock sets the time source used to stamp and verify tokens
func (c *TokenCodec) WithClock(now func() time.Time) *TokenCodec {
	if now != nil {
		c.now = now
	}
	return c
}

func (c *TokenCodec) WithLogger(logger Logger) *TokenCodec {
	c.logger = normalizeLogger(logger)
	return c
}

func (c *TokenCodec) AccessTTL() time.Duration {
	return c.accessTTL
}

func (c *TokenCodec) RefreshTTL() time.Duration {
	return c.refreshTTL
}

// Sign produces a token with the given extra claims. Registered claims
// sub, iat, exp and jti always win over extras.
func (c *TokenCodec) Sign(claims map[string]any, subject string, ttl time.Duration) (string, error) {
	if subject == "" {
		return "", NewBadRequestError("token subject is required", nil)
	}

	if ttl <= 0 {
		return "", NewBadRequestError("token ttl must be positive", map[string]any{"ttl": ttl.String()})
	}

	now := c.now()
	mc := jwt.MapClaims{}
	for k, v := range claims {
		mc[k] = v
	}
	mc["sub"] = subject
	mc["iat"] = jwt.NewNumericDate(now)
	mc["exp"] = jwt.NewNumericDate(now.Add(ttl))
	mc["jti"] = uuid.NewString()

	signed, err := jwt.NewWithClaims(signingMethod, mc).SignedString(c.signingKey)
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to sign JWT").
			WithTextCode(TextCodeInternal).
			WithCode(goerrors.CodeInternal)
	}
	return signed, nil
}

// AccessToken signs the access token of user
func (c *TokenCodec) AccessToken(user *User) (string, error) {
	return c.Sign(userClaims(user), user.Login, c.accessTTL)
}

// RefreshToken signs a refresh token for user, it only carries the subject
func (c *TokenCodec) RefreshToken(user *User) (string, error) {
	return c.Sign(nil, user.Login, c.refreshTTL)
}

// Parse verifies signature, structure and expiry and returns the claims
func (c *TokenCodec) Parse(token string) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	if _, err := jwt.ParseWithClaims(token, claims, c.keyFunc, c.parserOptions()...); err != nil {
		return nil, c.mapError(err)
	}
	return claims, nil
}

// ParseAccessClaims is Parse projected onto AccessClaims
func (c *TokenCodec) ParseAccessClaims(token string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if _, err := jwt.ParseWithClaims(token, claims, c.keyFunc, c.parserOptions()...); err != nil {
		return nil, c.mapError(err)
	}
	return claims, nil
}

// ExtractClaim returns a single claim of a verified token
func (c *TokenCodec) ExtractClaim(token, name string) (any, error) {
	claims, err := c.Parse(token)
	if err != nil {
		return nil, err
	}
	return claims[name], nil
}

// ExtractSubject returns the subject of a verified token
func (c *TokenCodec) ExtractSubject(token string) (string, error) {
	claims, err := c.Parse(token)
	if err != nil {
		return "", err
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return "", c.malformed(fmt.Errorf("token has no subject"))
	}
	return sub, nil
}

// IsCurrentlyValid reports whether token verifies, belongs to subject
// and has not expired.
func (c *TokenCodec) IsCurrentlyValid(token, subject string) bool {
	claims, err := c.Parse(token)
	if err != nil {
		return false
	}

	sub, err := claims.GetSubject()
	if err != nil || sub != subject {
		return false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Time.After(c.now())
}

func (c *TokenCodec) keyFunc(t *jwt.Token) (any, error) {
	if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
		c.logger.Error("token codec encountered unexpected signing method", "alg", t.Header["alg"])
		return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
	}
	return c.signingKey, nil
}

func (c *TokenCodec) parserOptions() []jwt.ParserOption {
	return []jwt.ParserOption{
		jwt.WithValidMethods([]string{signingMethod.Alg()}),
		jwt.WithTimeFunc(c.now),
		jwt.WithExpirationRequired(),
	}
}

func (c *TokenCodec) mapError(err error) error {
	if goerrors.Is(err, jwt.ErrTokenExpired) {
		return ErrTokenExpired
	}
	return c.malformed(err)
}

func (c *TokenCodec) malformed(err error) error {
	return goerrors.Wrap(err, ErrTokenMalformed.Category, ErrTokenMalformed.Message).
		WithTextCode(ErrTokenMalformed.TextCode).
		WithCode(ErrTokenMalformed.Code)
}
