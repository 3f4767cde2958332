package minerid

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestStateString(t *testing.T) {
	assert.Equal(t, "current", StateCurrent.String())
	assert.Equal(t, "rotated", StateRotated.String())
	assert.Equal(t, "revoked", StateRevoked.String())
	assert.Equal(t, "unknown", State(99).String())
}

func TestRecentBlockHasMiner(t *testing.T) {
	withMiner := RecentBlock{MinerUUID: uuid.New()}
	assert.True(t, withMiner.HasMiner())

	withoutMiner := RecentBlock{MinerUUID: uuid.Nil}
	assert.False(t, withoutMiner.HasMiner())
}
