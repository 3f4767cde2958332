package minerid

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func baseConfig() ReputationConfig {
	return ReputationConfig{
		WindowN:     10,
		BaselineM:   3,
		MScale:      2.0,
		DecayPeriod: time.Hour,
	}
}

func TestCheckGoodVoidIsNeverGood(t *testing.T) {
	rep := Reputation{Void: true, M: 0}
	assert.False(t, CheckGood(rep, 100))
}

func TestCheckGoodThreshold(t *testing.T) {
	rep := Reputation{Void: false, M: 3}
	assert.True(t, CheckGood(rep, 3))
	assert.True(t, CheckGood(rep, 4))
	assert.False(t, CheckGood(rep, 2))
}

func TestApplyRecoveryClearsVoidAndScalesM(t *testing.T) {
	cfg := baseConfig()
	now := time.Now()
	rep := Reputation{Void: true, VoidingID: [33]byte{0x02, 0x01}, M: 0}

	ApplyRecovery(&rep, cfg, now)

	assert.False(t, rep.Void)
	assert.Equal(t, [33]byte{}, rep.VoidingID)
	assert.Equal(t, uint32(6), rep.M) // ceil(3 * 2.0)
	assert.Equal(t, now, rep.MIncreasedAt)
}

func TestApplyDecayNoopBelowBaseline(t *testing.T) {
	cfg := baseConfig()
	rep := Reputation{M: cfg.BaselineM, MIncreasedAt: time.Now().Add(-2 * time.Hour)}

	ApplyDecay(&rep, cfg, time.Now())

	assert.Equal(t, cfg.BaselineM, rep.M)
}

func TestApplyDecayNoopBeforePeriodElapses(t *testing.T) {
	cfg := baseConfig()
	last := time.Now()
	rep := Reputation{M: cfg.BaselineM + 2, MIncreasedAt: last}

	ApplyDecay(&rep, cfg, last.Add(time.Minute))

	assert.Equal(t, cfg.BaselineM+2, rep.M)
	assert.Equal(t, last, rep.MIncreasedAt)
}

func TestApplyDecayDecrementsAfterPeriod(t *testing.T) {
	cfg := baseConfig()
	last := time.Now()
	rep := Reputation{M: cfg.BaselineM + 2, MIncreasedAt: last}

	now := last.Add(cfg.DecayPeriod + time.Second)
	ApplyDecay(&rep, cfg, now)

	assert.Equal(t, cfg.BaselineM+1, rep.M)
	assert.Equal(t, now, rep.MIncreasedAt)
}
