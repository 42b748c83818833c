package tokens

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-jwt-secret")

func TestCreateAccessToken_SetsExpectedClaims(t *testing.T) {
	t.Parallel()

	exp := time.Now().Add(15 * time.Minute).UTC()
	token, issued, err := CreateAccessToken(testSecret, 42, "attendant", exp)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := AccessClaimsFromToken(token, testSecret)
	require.NoError(t, err)

	assert.Equal(t, "attendant", claims.Role)
	assert.Equal(t, "42", claims.Subject)
	assert.Equal(t, issued.ID, claims.ID)
	assert.NotEmpty(t, claims.ID)
	require.NotNil(t, claims.ExpiresAt)
	assert.WithinDuration(t, exp, claims.ExpiresAt.Time, time.Second)

	id, err := claims.UserID()
	require.NoError(t, err)
	assert.EqualValues(t, 42, id)
}

func TestCreateAccessToken_UniqueJTI(t *testing.T) {
	t.Parallel()

	exp := time.Now().Add(time.Minute)
	_, a, err := CreateAccessToken(testSecret, 1, "admin", exp)
	require.NoError(t, err)
	_, b, err := CreateAccessToken(testSecret, 1, "admin", exp)
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestAccessClaimsFromToken_Rejects(t *testing.T) {
	t.Parallel()

	valid, _, err := CreateAccessToken(testSecret, 1, "admin", time.Now().Add(time.Minute))
	require.NoError(t, err)
	expired, _, err := CreateAccessToken(testSecret, 1, "admin", time.Now().Add(-time.Minute))
	require.NoError(t, err)

	t.Run("wrong secret", func(t *testing.T) {
		_, err := AccessClaimsFromToken(valid, []byte("other"))
		require.Error(t, err)
	})
	t.Run("expired", func(t *testing.T) {
		_, err := AccessClaimsFromToken(expired, testSecret)
		require.Error(t, err)
		assert.True(t, errors.Is(err, jwt.ErrTokenExpired))
	})
	t.Run("garbage", func(t *testing.T) {
		_, err := AccessClaimsFromToken("not-a-jwt", testSecret)
		require.Error(t, err)
	})
}

func TestUserID_BadSubject(t *testing.T) {
	c := &AccessClaims{RegisteredClaims: jwt.RegisteredClaims{Subject: "bob"}}
	_, err := c.UserID()
	require.Error(t, err)
}
