package types

import (
	sdkmath "cosmossdk.io/math"
)

type EventKind string

const (
	EventStaked             EventKind = "staked"
	EventUnstaked           EventKind = "unstaked"
	EventRewardClaimed      EventKind = "reward_claimed"
	EventPoolUpdated        EventKind = "pool_updated"
	EventRewardFundsAdded   EventKind = "reward_funds_added"
	EventFundsReceived      EventKind = "funds_received"
	EventEmergencyWithdrawn EventKind = "emergency_withdrawn"
	EventAdminTransferred   EventKind = "admin_transferred"
)

// Event is the notification published after a mutating call commits
type Event struct {
	Kind    EventKind    `json:"kind"`
	Account Account      `json:"account"`
	Amount  sdkmath.Uint `json:"amount"`
	// Reward paid or compounded by the call, zero for events without one
	Reward sdkmath.Uint `json:"reward"`
	// Only set for EventPoolUpdated
	Params *PoolParams `json:"params,omitempty"`
	// Only set for EventAdminTransferred
	NewAdmin Account `json:"new_admin,omitempty"`
	Time     uint64  `json:"time"`
}
