// Package settings centralizes configuration the way the teacher's
// *settings.Settings parameter does: read once from gocore.Config() at
// startup, then threaded explicitly through constructors. Apart from
// ulogger.New, which reads the PRETTY_LOGS switch itself, no component in
// this module reads gocore.Config() directly.
package settings

import (
	"strconv"
	"time"

	"github.com/ordishs/gocore"
)

type MinerIDSettings struct {
	// DBPath is the directory backing the miner-ID key-value store.
	DBPath string
	// WindowSize is N, the rolling recent-block window used for reputation.
	WindowSize int
	// ReputationM is the default M-of-N threshold.
	ReputationM uint32
	// ReputationMScale multiplies M after a void recovers via partial
	// revocation (spec.md §4.I, "Reputation recovery after void").
	ReputationMScale float64
	// NumIDsToKeep is a retention depth for ROTATED ids per miner, the kind
	// of count DB.Prune takes as its argument; nothing in this module passes
	// this value to DB.Prune.
	NumIDsToKeep int
	// MDecayPeriod is how long between automatic M decrements (spec.md
	// calls for 24h).
	MDecayPeriod time.Duration
}

type DataRefSettings struct {
	DBPath string
}

type P2PSettings struct {
	// MaxMessagePayload is a bound on a single P2P message payload. No
	// netparser type reads it; the parsers do not bound payload size.
	MaxMessagePayload uint64
	// ShortIDSegmentSize is a count of 6-byte short-IDs per
	// fixed_len_multi_parser segment (spec.md default: 1000). CmpctblockParser
	// does not read it; it packs a fixed 1000 short-IDs per segment.
	ShortIDSegmentSize int
}

type RPCSettings struct {
	ListenAddress string
}

type Settings struct {
	DataDir string
	MinerID MinerIDSettings
	DataRef DataRefSettings
	P2P     P2PSettings
	RPC     RPCSettings
}

// NewSettings builds Settings from gocore.Config(), with the same
// get-with-default idiom the teacher uses throughout its own settings
// construction (util/logger.go: Get/GetBool with a fallback value).
func NewSettings() *Settings {
	cfg := gocore.Config()

	dataDir := getString(cfg, "dataDir", "./data")

	return &Settings{
		DataDir: dataDir,
		MinerID: MinerIDSettings{
			DBPath:           getString(cfg, "minerid_dbPath", dataDir+"/minerid"),
			WindowSize:       getInt(cfg, "minerid_windowSize", 4320),
			ReputationM:      uint32(getInt(cfg, "minerid_reputationM", 1)),
			ReputationMScale: getFloat(cfg, "minerid_reputationMScale", 1.5),
			NumIDsToKeep:     getInt(cfg, "minerid_numIdsToKeep", 10),
			MDecayPeriod:     getDuration(cfg, "minerid_mDecayPeriod", 24*time.Hour),
		},
		DataRef: DataRefSettings{
			DBPath: getString(cfg, "minerid_datarefDbPath", dataDir+"/dataref"),
		},
		P2P: P2PSettings{
			MaxMessagePayload:  uint64(getInt(cfg, "p2p_maxMessagePayload", 32*1024*1024)),
			ShortIDSegmentSize: getInt(cfg, "p2p_shortIDSegmentSize", 1000),
		},
		RPC: RPCSettings{
			ListenAddress: getString(cfg, "rpc_listenAddress", "127.0.0.1:8332"),
		},
	}
}

func getString(cfg *gocore.Settings, key, def string) string {
	if v, ok := cfg.Get(key); ok {
		return v
	}
	return def
}

func getInt(cfg *gocore.Settings, key string, def int) int {
	v, ok := cfg.Get(key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getFloat(cfg *gocore.Settings, key string, def float64) float64 {
	v, ok := cfg.Get(key)
	if !ok {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func getDuration(cfg *gocore.Settings, key string, def time.Duration) time.Duration {
	v, ok := cfg.Get(key)
	if !ok {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
