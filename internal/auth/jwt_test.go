package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"task-marketplace.com/task-marketplace/internal/constants"
	apperrors "task-marketplace.com/task-marketplace/internal/errors"
)

const secret = "0123456789abcdef0123456789abcdef"

func TestIssueAndParse(t *testing.T) {
	issuer := NewTokenIssuer(secret, time.Hour)

	tok, err := issuer.Issue("user-123", constants.RoleWorker)
	require.NoError(t, err)

	claims, err := issuer.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID)
	assert.Equal(t, constants.RoleWorker, claims.Role)
}

func TestParse_Expired(t *testing.T) {
	issuer := NewTokenIssuer(secret, time.Minute)
	issuer.now = func() time.Time { return time.Now().Add(-time.Hour) }

	tok, err := issuer.Issue("u1", constants.RoleSeeker)
	require.NoError(t, err)

	issuer.now = time.Now
	_, err = issuer.Parse(tok)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrUnauthorized))
	assert.Equal(t, "token expired", err.Error())
}

func TestParse_WrongSecret(t *testing.T) {
	tok, err := NewTokenIssuer(secret, time.Hour).Issue("u2", constants.RoleSeeker)
	require.NoError(t, err)

	_, err = NewTokenIssuer("another-secret-another-secret-xx", time.Hour).Parse(tok)
	assert.True(t, errors.Is(err, apperrors.ErrUnauthorized))
}

func TestParse_Malformed(t *testing.T) {
	_, err := NewTokenIssuer(secret, time.Hour).Parse("not.a.jwt")
	assert.True(t, errors.Is(err, apperrors.ErrUnauthorized))
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("secret1")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", hash)

	assert.NoError(t, ComparePassword(hash, "secret1"))
	assert.Error(t, ComparePassword(hash, "secret2"))
}
