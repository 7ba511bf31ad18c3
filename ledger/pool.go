package ledger

import (
	sdkmath "cosmossdk.io/math"
	"go.uber.org/zap"

	"github.com/babylonchain/staking-ledger/types"
)

// UpdatePool replaces the reward rate, the minimum stake and the lock period
// in one step. The new values apply to every account from now on, including
// stakes already in flight.
func (e *Engine) UpdatePool(caller types.Account, params types.PoolParams) error {
	const op = "update_pool"

	release, err := e.guard.enter()
	if err != nil {
		return e.reject(op, caller, err)
	}
	defer release()

	now := e.clock.Now()
	c := e.begin(caller)

	if err := checkAdmin(c, caller); err != nil {
		return e.reject(op, caller, err)
	}
	if params.MinimumStakeAmount.IsNil() {
		params.MinimumStakeAmount = sdkmath.ZeroUint()
	}
	c.pool.PoolParams = params

	e.commit(c)

	e.logger.Info("pool parameters updated",
		zap.Uint64("reward_rate", params.RewardRate),
		zap.String("minimum_stake_amount", params.MinimumStakeAmount.String()),
		zap.Uint64("lock_period", params.LockPeriod),
	)
	e.publish(types.Event{
		Kind:    types.EventPoolUpdated,
		Account: caller,
		Amount:  sdkmath.NewUint(params.RewardRate),
		Params:  &params,
		Time:    now,
	})

	return nil
}
