package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parallelpaths/game-companion/config"
)

func TestNew_UnconfiguredReturnsNil(t *testing.T) {
	db, err := New(nil)
	require.NoError(t, err)
	assert.Nil(t, db)

	db, err = New(&config.RedisConfig{})
	require.NoError(t, err)
	assert.Nil(t, db)
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "game-companion:session:abc:state", sessionKey("abc"))
	assert.Equal(t, "game-companion:session:abc:transcripts", transcriptKey("abc"))
}
