package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndParseAccessToken(t *testing.T) {
	raw, err := IssueAccessToken(42)
	require.NoError(t, err)
	require.NotEmpty(t, raw)

	userID, err := ParseAccessToken(raw)
	require.NoError(t, err)
	assert.Equal(t, uint(42), userID)
}

func TestIssueAndParseRefreshToken(t *testing.T) {
	raw, err := IssueRefreshToken(7)
	require.NoError(t, err)

	userID, err := ParseRefreshToken(raw)
	require.NoError(t, err)
	assert.Equal(t, uint(7), userID)
}

func TestAccessTokenRejectedAsRefresh(t *testing.T) {
	raw, err := IssueAccessToken(42)
	require.NoError(t, err)

	_, err = ParseRefreshToken(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefreshTokenRejectedAsAccess(t *testing.T) {
	raw, err := IssueRefreshToken(42)
	require.NoError(t, err)

	_, err = ParseAccessToken(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseGarbageToken(t *testing.T) {
	_, err := ParseAccessToken("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
