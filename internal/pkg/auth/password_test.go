package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("admin123")
	require.NoError(t, err)

	assert.NotEqual(t, "admin123", hash)
	assert.True(t, CheckPassword(hash, "admin123"))
	assert.False(t, CheckPassword(hash, "admin124"))
	assert.False(t, CheckPassword("not-a-hash", "admin123"))
}

func TestHashPasswordIsSalted(t *testing.T) {
	first, err := HashPassword("secreto")
	require.NoError(t, err)
	second, err := HashPassword("secreto")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}
