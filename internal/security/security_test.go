package security

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	hash, err := h.Hash("correct horse")
	require.NoError(t, err)
	require.NotEqual(t, "correct horse", hash)

	require.True(t, h.Verify("correct horse", hash))
	require.False(t, h.Verify("wrong horse", hash))
	require.False(t, h.Verify("correct horse", "not-a-bcrypt-hash"))
}

func TestNewBcryptHasher_ClampsCost(t *testing.T) {
	require.Equal(t, bcrypt.DefaultCost, NewBcryptHasher(0).cost)
	require.Equal(t, bcrypt.MinCost, NewBcryptHasher(2).cost)
	require.Equal(t, bcrypt.MaxCost, NewBcryptHasher(99).cost)
}

func TestJWTService_RoundTrip(t *testing.T) {
	svc := NewJWTService("secret", "membership-api")

	token, expiresAt, err := svc.Issue(42, "alice@x.com", time.Minute)
	require.NoError(t, err)
	require.WithinDuration(t, time.Now().Add(time.Minute), expiresAt, 5*time.Second)

	claims, err := svc.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "alice@x.com", claims.Email)

	userID, err := claims.UserID()
	require.NoError(t, err)
	require.Equal(t, uint64(42), userID)
}

func TestJWTService_Rejects(t *testing.T) {
	svc := NewJWTService("secret", "membership-api")

	t.Run("expired", func(t *testing.T) {
		token, _, err := svc.Issue(1, "a@x.com", time.Minute)
		require.NoError(t, err)

		later := NewJWTService("secret", "membership-api")
		later.now = func() time.Time { return time.Now().Add(time.Hour) }
		_, err = later.Verify(token)
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		token, _, err := NewJWTService("other", "membership-api").Issue(1, "a@x.com", time.Minute)
		require.NoError(t, err)
		_, err = svc.Verify(token)
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		token, _, err := NewJWTService("secret", "someone-else").Issue(1, "a@x.com", time.Minute)
		require.NoError(t, err)
		_, err = svc.Verify(token)
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("none algorithm", func(t *testing.T) {
		unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
			Subject:   "1",
			Issuer:    "membership-api",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		})
		token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = svc.Verify(token)
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := svc.Verify("not.a.token")
		require.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestClaims_UserID_Invalid(t *testing.T) {
	c := &Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "abc"}}
	_, err := c.UserID()
	require.ErrorIs(t, err, ErrInvalidToken)
}
