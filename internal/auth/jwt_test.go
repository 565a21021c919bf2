package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)

	token, err := issuer.Generate("u-123", "admin")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := issuer.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "u-123", claims.UserID)
	assert.Equal(t, "admin", claims.Role)
}

func TestValidate_Expired(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", -time.Minute)

	token, err := issuer.Generate("u-123", "admin")
	require.NoError(t, err)

	_, err = issuer.Validate(token)
	assert.Error(t, err)
}

func TestValidate_WrongSecret(t *testing.T) {
	token, err := NewTokenIssuer("secret-a", time.Hour).Generate("u-123", "admin")
	require.NoError(t, err)

	_, err = NewTokenIssuer("secret-b", time.Hour).Validate(token)
	assert.Error(t, err)
}
