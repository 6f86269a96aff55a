package clotho

import (
	"time"

	"github.com/Fantom-foundation/clotho-base/inter/idx"
	"github.com/Fantom-foundation/clotho-base/utils/cachescale"
)

// Config is the clotho engine options.
type Config struct {
	// CachedRounds is the number of rounds of every authority kept in memory
	// beyond its committed round. Uncommitted blocks are never evicted
	// regardless of this option.
	CachedRounds idx.Round
	// IndexedRounds is the number of fully committed rounds kept in the
	// per-round index.
	IndexedRounds idx.Round
	// MaxLeaderWait is how long a proposal may wait for the missing leader
	// block after its round has reached quorum.
	MaxLeaderWait time.Duration
	// ProposeCheckInterval is the delay before the next proposal attempt
	// when no round is ready.
	ProposeCheckInterval time.Duration
	// CommitsPerSchedule is the length of one reputation window, in commits.
	// The leader schedule is re-evaluated at the end of every window.
	CommitsPerSchedule idx.Commit
	// BadStakeThreshold is the percent of the total weight which may be
	// swapped out of the leader schedule. Must not exceed
	// election.MaxBadStakeThreshold.
	BadStakeThreshold uint64
	// RoundRobinLeaders replaces the weighted leader schedule with a strict
	// round-robin. For tests.
	RoundRobinLeaders bool
}

// DefaultConfig returns default config for livenet.
func DefaultConfig(scale cachescale.Func) Config {
	return Config{
		CachedRounds:         idx.Round(scale.U64(500)),
		IndexedRounds:        idx.Round(scale.U64(100)),
		MaxLeaderWait:        200 * time.Millisecond,
		ProposeCheckInterval: 100 * time.Millisecond,
		CommitsPerSchedule:   300,
		BadStakeThreshold:    20,
	}
}

// LiteConfig returns config for tests or inmemory.
func LiteConfig() Config {
	cfg := DefaultConfig(cachescale.Ratio{Base: 10, Target: 1})
	cfg.CommitsPerSchedule = 10
	cfg.RoundRobinLeaders = true
	return cfg
}

// StoreConfig is a config for the storage.
type StoreConfig struct {
	// Cache sizes.
	Caches StoreCacheConfig
}

// StoreCacheConfig is a cache config for the store.
type StoreCacheConfig struct {
	// BlocksNum is the maximum number of decoded blocks kept in the read
	// cache.
	BlocksNum int
}

// DefaultStoreConfig for livenet.
func DefaultStoreConfig(scale cachescale.Func) StoreConfig {
	return StoreConfig{
		Caches: StoreCacheConfig{
			BlocksNum: scale.I(5000),
		},
	}
}

// LiteStoreConfig is for tests or inmemory.
func LiteStoreConfig() StoreConfig {
	return DefaultStoreConfig(cachescale.Ratio{Base: 100, Target: 1})
}
