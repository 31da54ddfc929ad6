package auth_test

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auth "github.com/goliatone/go-petcare-auth"
)

func newTestCodec(t *testing.T, clock *fakeClock) *auth.TokenCodec {
	t.Helper()
	codec, err := auth.NewTokenCodec(testSigningKey, 0, 0)
	require.NoError(t, err)
	codec.WithLogger(auth.NoopLogger{})
	if clock != nil {
		codec.WithClock(clock.Now)
	}
	return codec
}

func codecUser() *auth.User {
	user := &auth.User{
		Person: auth.Person{Name: "Jane Doe"},
		Login:  "jdoe",
		Email:  "jdoe@example.com",
		Role:   auth.RoleDoctor,
	}
	user.ID = uuid.New()
	return user
}

func TestNewTokenCodecDefaults(t *testing.T) {
	codec := newTestCodec(t, nil)

	assert.Equal(t, 24*time.Minute, codec.AccessTTL())
	assert.Equal(t, 24*time.Hour, codec.RefreshTTL())
}

func TestNewTokenCodecRejectsBadKeys(t *testing.T) {
	t.Run("short key", func(t *testing.T) {
		short := base64.StdEncoding.EncodeToString([]byte("too-short"))
		_, err := auth.NewTokenCodec(short, time.Minute, time.Hour)
		require.Error(t, err)
		assert.True(t, auth.IsBadRequest(err))
	})

	t.Run("not base64", func(t *testing.T) {
		_, err := auth.NewTokenCodec("%%% not base64 %%%", time.Minute, time.Hour)
		require.Error(t, err)
		assert.True(t, auth.IsBadRequest(err))
	})
}

func TestTokenCodecAccessTokenClaims(t *testing.T) {
	clock := newFakeClock()
	codec := newTestCodec(t, clock)
	user := codecUser()

	token, err := codec.AccessToken(user)
	require.NoError(t, err)

	claims, err := codec.ParseAccessClaims(token)
	require.NoError(t, err)

	assert.Equal(t, "jdoe", claims.Login())
	assert.Equal(t, user.ID.String(), claims.UserID())
	assert.Equal(t, "Jane Doe", claims.Name)
	assert.Equal(t, "jdoe@example.com", claims.Email)
	assert.Equal(t, []string{"ROLE_DOCTOR"}, claims.Authorities())
	assert.True(t, claims.HasRole(auth.RoleDoctor))
	assert.False(t, claims.HasRole(auth.RoleAdmin))
	assert.True(t, clock.Now().Equal(claims.IssuedAt()))
	assert.True(t, clock.Now().Add(24*time.Minute).Equal(claims.Expires()))
	assert.NotEmpty(t, claims.ID)
}

func TestTokenCodecRefreshTokenOnlyCarriesSubject(t *testing.T) {
	codec := newTestCodec(t, newFakeClock())

	token, err := codec.RefreshToken(codecUser())
	require.NoError(t, err)

	claims, err := codec.Parse(token)
	require.NoError(t, err)

	assert.Equal(t, "jdoe", claims["sub"])
	assert.NotContains(t, claims, "role")
	assert.NotContains(t, claims, "email")

	subject, err := codec.ExtractSubject(token)
	require.NoError(t, err)
	assert.Equal(t, "jdoe", subject)
}

func TestTokenCodecTokensAreUniqueWithinTheSameSecond(t *testing.T) {
	codec := newTestCodec(t, newFakeClock())
	user := codecUser()

	first, err := codec.RefreshToken(user)
	require.NoError(t, err)
	second, err := codec.RefreshToken(user)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestTokenCodecExpiredToken(t *testing.T) {
	clock := newFakeClock()
	codec := newTestCodec(t, clock)

	token, err := codec.AccessToken(codecUser())
	require.NoError(t, err)

	clock.Advance(25 * time.Minute)

	_, err = codec.Parse(token)
	require.Error(t, err)
	assert.True(t, auth.IsTokenExpiredError(err))
	assert.Equal(t, auth.TextCodeTokenExpired, auth.ErrorKind(err))
}

func TestTokenCodecRejectsTamperedToken(t *testing.T) {
	codec := newTestCodec(t, newFakeClock())

	token, err := codec.AccessToken(codecUser())
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	replacement := "A"
	if parts[2][0] == 'A' {
		replacement = "B"
	}
	parts[2] = replacement + parts[2][1:]
	tampered := strings.Join(parts, ".")

	_, err = codec.Parse(tampered)
	require.Error(t, err)
	assert.True(t, auth.IsMalformedError(err))
}

func TestTokenCodecRejectsForeignKey(t *testing.T) {
	codec := newTestCodec(t, nil)

	otherKey := base64.StdEncoding.EncodeToString([]byte("another-signing-key-with-32-bytes!!"))
	other, err := auth.NewTokenCodec(otherKey, 0, 0)
	require.NoError(t, err)

	token, err := other.AccessToken(codecUser())
	require.NoError(t, err)

	_, err = codec.Parse(token)
	require.Error(t, err)
	assert.True(t, auth.IsMalformedError(err))
}

func TestTokenCodecRejectsUnsignedToken(t *testing.T) {
	codec := newTestCodec(t, nil)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub": "jdoe",
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = codec.Parse(unsigned)
	require.Error(t, err)
	assert.True(t, auth.IsMalformedError(err))
}

func TestTokenCodecRequiresExpiry(t *testing.T) {
	codec := newTestCodec(t, nil)
	key, err := auth.DecodeSigningKey(testSigningKey)
	require.NoError(t, err)

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "jdoe"}).SignedString(key)
	require.NoError(t, err)

	_, err = codec.Parse(noExp)
	require.Error(t, err)
}

func TestTokenCodecIsCurrentlyValid(t *testing.T) {
	clock := newFakeClock()
	codec := newTestCodec(t, clock)

	token, err := codec.AccessToken(codecUser())
	require.NoError(t, err)

	assert.True(t, codec.IsCurrentlyValid(token, "jdoe"))
	assert.False(t, codec.IsCurrentlyValid(token, "someone-else"))
	assert.False(t, codec.IsCurrentlyValid("garbage", "jdoe"))

	clock.Advance(24*time.Minute + time.Second)
	assert.False(t, codec.IsCurrentlyValid(token, "jdoe"))
}

func TestTokenCodecExtractClaim(t *testing.T) {
	codec := newTestCodec(t, nil)
	user := codecUser()

	token, err := codec.AccessToken(user)
	require.NoError(t, err)

	value, err := codec.ExtractClaim(token, "email")
	require.NoError(t, err)
	assert.Equal(t, user.Email, value)

	_, err = codec.ExtractClaim("not.a.token", "email")
	assert.Error(t, err)
}

func TestTokenCodecSignValidatesInput(t *testing.T) {
	codec := newTestCodec(t, nil)

	_, err := codec.Sign(nil, "", time.Minute)
	assert.True(t, auth.IsBadRequest(err))

	_, err = codec.Sign(nil, "jdoe", 0)
	assert.True(t, auth.IsBadRequest(err))
}

func TestTokenCodecRegisteredClaimsWinOverExtras(t *testing.T) {
	codec := newTestCodec(t, nil)

	token, err := codec.Sign(map[string]any{"sub": "intruder", "custom": "value"}, "jdoe", time.Minute)
	require.NoError(t, err)

	claims, err := codec.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "jdoe", claims["sub"])
	assert.Equal(t, "value", claims["custom"])
}
