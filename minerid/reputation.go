package minerid

import (
	"math"
	"time"
)

// ReputationConfig carries the operator-configured baseline M, the window
// size N, the scaling factor applied on recovery from a void, and the decay
// period — mirrored from settings.MinerIDSettings.
type ReputationConfig struct {
	WindowN     int
	BaselineM   uint32
	MScale      float64
	DecayPeriod time.Duration
}

// CheckGood implements check_reputation: a miner's reputation is good iff
// its entry isn't void and it produced at least reputation.m of the last N
// recent blocks.
func CheckGood(rep Reputation, recentBlocksForMiner int) bool {
	if rep.Void {
		return false
	}
	return uint32(recentBlocksForMiner) >= rep.M
}

// ApplyRecovery implements the reputation-recovery rule: when a voided
// miner performs a partial-revocation rotation to a fresh id, its void flag
// clears and M is scaled up, so the miner must earn back a stricter ratio
// before being considered good again.
func ApplyRecovery(rep *Reputation, cfg ReputationConfig, now time.Time) {
	rep.Void = false
	rep.VoidingID = [33]byte{}
	scaled := math.Ceil(float64(cfg.BaselineM) * cfg.MScale)
	rep.M = uint32(scaled)
	rep.MIncreasedAt = now
}

// ApplyDecay implements the "M decay" rule in prune(): once per call, if M
// is above the configured baseline and DecayPeriod has elapsed since it was
// last bumped, decrement M by one and reset the clock.
func ApplyDecay(rep *Reputation, cfg ReputationConfig, now time.Time) {
	if rep.M <= cfg.BaselineM {
		return
	}
	if now.Sub(rep.MIncreasedAt) < cfg.DecayPeriod {
		return
	}
	rep.M--
	rep.MIncreasedAt = now
}
