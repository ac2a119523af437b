package governance

import (
	"time"

	"boscoin.io/govern/lib/common"
	"boscoin.io/govern/lib/errors"
	"boscoin.io/govern/lib/storage"
)

const (
	DefaultVotingPeriod = 3 * 24 * time.Hour
	DefaultCacheSize    = 1024

	configKey = "gc-config"
)

// 500,000 tokens and one base unit: a strict majority of a 1,000,000 supply.
var DefaultQuorum = common.MustAmountFromString("500000000000000000000001")

type Config struct {
	Quorum       common.Amount `json:"quorum" yaml:"quorum"`
	VotingPeriod time.Duration `json:"voting_period" yaml:"voting_period"`
	CacheSize    int           `json:"cache_size" yaml:"cache_size"`
}

func NewDefaultConfig() Config {
	return Config{
		Quorum:       DefaultQuorum,
		VotingPeriod: DefaultVotingPeriod,
		CacheSize:    DefaultCacheSize,
	}
}

func (c Config) Validate() error {
	if c.Quorum.IsZero() {
		return errors.InvalidQuorum.Clone().SetData("quorum", c.Quorum.String())
	}
	if c.VotingPeriod <= 0 {
		return errors.InvalidConfig.Clone().SetData("voting_period", c.VotingPeriod.String())
	}
	if c.CacheSize < 0 {
		return errors.InvalidConfig.Clone().SetData("cache_size", c.CacheSize)
	}

	return nil
}

// SaveConfig stores the config next to the governance state, so every
// later run uses the quorum and voting period chosen at genesis.
func SaveConfig(st *storage.LevelDBBackend, c Config) error {
	if err := c.Validate(); err != nil {
		return err
	}

	return st.Put(configKey, c)
}

func LoadConfig(st *storage.LevelDBBackend) (c Config, err error) {
	err = st.Get(configKey, &c)
	return
}
