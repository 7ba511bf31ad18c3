package types

import (
	sdkmath "cosmossdk.io/math"
)

const (
	// BasisPoints is the denominator of RewardRate
	BasisPoints = uint64(10000)
	// SecondsPerYear is the length of the year the reward rate is quoted over
	SecondsPerYear = uint64(31536000)
)

// PoolParams holds the tunables the administrator replaces atomically
type PoolParams struct {
	// Reward accrual in basis points, annualised over SecondsPerYear
	RewardRate uint64 `json:"reward_rate"`
	// Floor for any single stake call
	MinimumStakeAmount sdkmath.Uint `json:"minimum_stake_amount"`
	// Seconds the most recently staked funds stay locked
	LockPeriod uint64 `json:"lock_period"`
}

type PoolConfig struct {
	PoolParams

	// Sum of the staked amounts of every account
	TotalStaked sdkmath.Uint `json:"total_staked"`
}

// NewPoolConfig returns a pool with the given parameters and nothing staked
func NewPoolConfig(params PoolParams) PoolConfig {
	if params.MinimumStakeAmount.IsNil() {
		params.MinimumStakeAmount = sdkmath.ZeroUint()
	}

	return PoolConfig{
		PoolParams:  params,
		TotalStaked: sdkmath.ZeroUint(),
	}
}

// PoolInfo is the read-only projection of the pool
type PoolInfo struct {
	TotalStaked        sdkmath.Uint `json:"total_staked"`
	RewardRate         uint64       `json:"reward_rate"`
	MinimumStakeAmount sdkmath.Uint `json:"minimum_stake_amount"`
	LockPeriod         uint64       `json:"lock_period"`
}
