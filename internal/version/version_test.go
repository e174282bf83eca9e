package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLatest(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		versions []string
		expected string
	}{
		{"none", nil, "0.1"},
		{"only empty", []string{"", "  "}, "0.1"},
		{"numeric segments", []string{"1.9", "1.10", ""}, "1.10"},
		{"single", []string{"0.3"}, "0.3"},
		{"three segments", []string{"1.2.3", "1.2.10", "1.2"}, "1.2.10"},
		{"skips garbage", []string{"latest", "0.2"}, "0.2"},
		{"keeps spelling", []string{"v2.0", "1.99"}, "v2.0"},
		{"lower than default still wins", []string{"0.0.1"}, "0.0.1"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, Latest(tt.versions...))
		})
	}
}

func TestCompare(t *testing.T) {
	t.Parallel()

	c, err := Compare("1.10", "1.9")
	require.NoError(t, err)
	assert.Equal(t, 1, c)

	c, err = Compare("0.1", "0.1.0")
	require.NoError(t, err)
	assert.Equal(t, 0, c)

	c, err = Compare("0.1", "0.2")
	require.NoError(t, err)
	assert.Equal(t, -1, c)

	_, err = Compare("x", "0.1")
	assert.Error(t, err)
}

func TestValid(t *testing.T) {
	t.Parallel()

	assert.True(t, Valid("0.1"))
	assert.False(t, Valid(""))
	assert.False(t, Valid("one"))
}
