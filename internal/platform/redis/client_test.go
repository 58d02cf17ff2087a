package redis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"idgate/internal/platform/config"
)

func TestNew(t *testing.T) {
	t.Run("empty url means not configured", func(t *testing.T) {
		c, err := New(t.Context(), config.RedisConfig{})
		require.NoError(t, err)
		assert.Nil(t, c)
	})

	t.Run("malformed url is rejected before dialing", func(t *testing.T) {
		_, err := New(t.Context(), config.RedisConfig{URL: "mysql://nope"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parse redis URL")
	})
}
