package utils

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandomDigits(t *testing.T) {
	re := regexp.MustCompile(`^\d{20}$`)
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		s, err := RandomDigits(20)
		require.NoError(t, err)
		assert.Regexp(t, re, s)
		seen[s] = true
	}
	assert.Greater(t, len(seen), 95)

	empty, err := RandomDigits(0)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
