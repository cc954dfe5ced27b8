package intake

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractIdentifier(t *testing.T) {
	t.Run("finds standalone digit run", func(t *testing.T) {
		id, token, ok := ExtractIdentifier("assign to 123456789 please", DefaultMinIDDigits)
		require.True(t, ok)
		assert.Equal(t, int64(123456789), id)
		assert.Equal(t, "123456789", token)
	})

	t.Run("short runs do not qualify", func(t *testing.T) {
		_, _, ok := ExtractIdentifier("due in 2024 maybe", DefaultMinIDDigits)
		assert.False(t, ok)
	})

	t.Run("digits inside a word do not qualify", func(t *testing.T) {
		_, _, ok := ExtractIdentifier("ticket abc12345 is not an id", DefaultMinIDDigits)
		assert.False(t, ok)
	})

	t.Run("first of several runs wins", func(t *testing.T) {
		id, _, ok := ExtractIdentifier("11111 and 22222", DefaultMinIDDigits)
		require.True(t, ok)
		assert.Equal(t, int64(11111), id)
	})

	t.Run("punctuation is a token boundary", func(t *testing.T) {
		id, _, ok := ExtractIdentifier("ping (987654321), thanks", DefaultMinIDDigits)
		require.True(t, ok)
		assert.Equal(t, int64(987654321), id)
	})

	t.Run("minimum length is configurable", func(t *testing.T) {
		_, _, ok := ExtractIdentifier("user 1234", DefaultMinIDDigits)
		require.False(t, ok)

		id, _, ok := ExtractIdentifier("user 1234", 4)
		require.True(t, ok)
		assert.Equal(t, int64(1234), id)
	})

	t.Run("no digits at all", func(t *testing.T) {
		_, _, ok := ExtractIdentifier("no numbers here", DefaultMinIDDigits)
		assert.False(t, ok)
	})
}
