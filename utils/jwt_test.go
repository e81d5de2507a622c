package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	token, err := GenerateAccessToken(42)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userID, err := ParseAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, 42, userID)
}

func TestParseAccessTokenRejectsGarbage(t *testing.T) {
	userID, err := ParseAccessToken("不是token")
	assert.Error(t, err)
	assert.Zero(t, userID)

	userID, err = ParseAccessToken("")
	assert.Error(t, err)
	assert.Zero(t, userID)
}
