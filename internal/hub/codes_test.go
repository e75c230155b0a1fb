package hub

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCode(t *testing.T) {
	seen := map[string]bool{}
	for range 200 {
		code, err := GenerateCode()
		require.NoError(t, err)
		assert.True(t, ValidCode(code), code)
		seen[code] = true
	}
	assert.Greater(t, len(seen), 190)
}

func TestValidCode(t *testing.T) {
	for code, want := range map[string]bool{
		"default": true,
		"AB12CD":  true,
		"ab12cd":  false,
		"AB12C":   false,
		"AB12CDE": false,
		"AB-2CD":  false,
		"":        false,
	} {
		assert.Equal(t, want, ValidCode(code), code)
	}
}
