package types

import (
	sdkmath "cosmossdk.io/math"
)

// Account identifies a depositor or the administrator
type Account string

func (a Account) String() string {
	return string(a)
}

type StakerRecord struct {
	// The principal currently deposited, in the smallest value unit
	StakedAmount sdkmath.Uint `json:"staked_amount"`
	// Unix time of the most recent stake, the lock period runs from here
	LastStakeTime uint64 `json:"last_stake_time"`
	// Unix time of the most recent reward settlement (stake, unstake or claim),
	// it is the start of the accrual window
	LastClaimTime uint64 `json:"last_claim_time"`
	// Cumulative rewards ever paid out to the account, never decreases
	TotalRewardsClaimed sdkmath.Uint `json:"total_rewards_claimed"`
}

// NewStakerRecord returns the zeroed record an account starts from
func NewStakerRecord() StakerRecord {
	return StakerRecord{
		StakedAmount:        sdkmath.ZeroUint(),
		TotalRewardsClaimed: sdkmath.ZeroUint(),
	}
}

// HasStake returns whether the record holds any principal
func (r *StakerRecord) HasStake() bool {
	return !r.StakedAmount.IsNil() && !r.StakedAmount.IsZero()
}

// StakerInfo is the read-only projection of a StakerRecord together with
// the live pending reward and the time the principal unlocks
type StakerInfo struct {
	StakedAmount        sdkmath.Uint `json:"staked_amount"`
	LastStakeTime       uint64       `json:"last_stake_time"`
	LastClaimTime       uint64       `json:"last_claim_time"`
	TotalRewardsClaimed sdkmath.Uint `json:"total_rewards_claimed"`
	PendingReward       sdkmath.Uint `json:"pending_reward"`
	UnlockTime          uint64       `json:"unlock_time"`
}
