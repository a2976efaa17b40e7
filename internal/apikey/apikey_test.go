package apikey

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-for-unit-tests"

func TestIssueVerify(t *testing.T) {
	for _, role := range []Role{RoleAnon, RoleService} {
		key, err := Issue(testSecret, role, 0)
		require.NoError(t, err)

		got, err := Verify(testSecret, key)
		require.NoError(t, err)
		assert.Equal(t, role, got)
	}
}

func TestVerifyRejects(t *testing.T) {
	key, err := Issue(testSecret, RoleAnon, time.Hour)
	require.NoError(t, err)

	_, err = Verify("other-secret", key)
	assert.ErrorIs(t, err, ErrInvalid, "wrong secret")

	_, err = Verify(testSecret, "not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalid, "garbage")

	_, err = Verify(testSecret, "")
	assert.ErrorIs(t, err, ErrInvalid, "empty")

	past := time.Now().Add(-time.Hour)
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Issuer: Issuer, ExpiresAt: jwt.NewNumericDate(past)},
		Role:             RoleAnon,
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	_, err = Verify(testSecret, expired)
	assert.ErrorIs(t, err, ErrInvalid, "expired")

	foreign, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Issuer: "someone-else"},
		Role:             RoleAnon,
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	_, err = Verify(testSecret, foreign)
	assert.ErrorIs(t, err, ErrInvalid, "wrong issuer")

	unknownRole, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Issuer: Issuer},
		Role:             "admin",
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	_, err = Verify(testSecret, unknownRole)
	assert.ErrorIs(t, err, ErrInvalid, "unknown role")
}

func TestIssueEmptySecret(t *testing.T) {
	_, err := Issue("", RoleAnon, 0)
	assert.Error(t, err)
}

func TestRoleAllows(t *testing.T) {
	assert.True(t, RoleAnon.Allows(RoleAnon))
	assert.False(t, RoleAnon.Allows(RoleService))
	assert.True(t, RoleService.Allows(RoleAnon))
	assert.True(t, RoleService.Allows(RoleService))
}
