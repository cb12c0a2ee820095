package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPassword_RoundTrip(t *testing.T) {
	hashed, err := Password("Passw0rd!")
	require.NoError(t, err)
	assert.True(t, Verify("Passw0rd!", &hashed))
	assert.False(t, Verify("wrong", &hashed))
}

func TestPassword_Salted(t *testing.T) {
	h1, err := Password("Passw0rd!")
	require.NoError(t, err)
	h2, err := Password("Passw0rd!")
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)
}

func TestVerify_NilHash(t *testing.T) {
	assert.False(t, Verify("anything", nil))
	empty := ""
	assert.False(t, Verify("anything", &empty))
}
