package config

import (
	"fmt"

	sdkmath "cosmossdk.io/math"

	"github.com/babylonchain/staking-ledger/types"
)

const (
	defaultRewardRate   = uint64(10)
	defaultMinimumStake = "100"
	defaultLockPeriod   = uint64(7 * 24 * 60 * 60)
)

// PoolConfig holds the pool parameters the ledger is initialized with. They
// are only read the first time the ledger is created, later changes go
// through the update-pool command.
type PoolConfig struct {
	RewardRate   uint64 `long:"rewardrate" description:"Reward accrual in basis points per year"`
	MinimumStake string `long:"minimumstake" description:"The minimum amount accepted by a single stake"`
	LockPeriod   uint64 `long:"lockperiod" description:"Seconds the most recently staked funds stay locked"`
}

func (cfg *PoolConfig) Validate() error {
	if _, err := sdkmath.ParseUint(cfg.MinimumStake); err != nil {
		return fmt.Errorf("invalid minimum stake %q: %w", cfg.MinimumStake, err)
	}

	return nil
}

// ToParams converts the config into the ledger pool parameters
func (cfg *PoolConfig) ToParams() (types.PoolParams, error) {
	minStake, err := sdkmath.ParseUint(cfg.MinimumStake)
	if err != nil {
		return types.PoolParams{}, fmt.Errorf("invalid minimum stake %q: %w", cfg.MinimumStake, err)
	}

	return types.PoolParams{
		RewardRate:         cfg.RewardRate,
		MinimumStakeAmount: minStake,
		LockPeriod:         cfg.LockPeriod,
	}, nil
}

func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		RewardRate:   defaultRewardRate,
		MinimumStake: defaultMinimumStake,
		LockPeriod:   defaultLockPeriod,
	}
}
