package ledger

import (
	errorsmod "cosmossdk.io/errors"
	sdkmath "cosmossdk.io/math"
	"go.uber.org/zap"

	"github.com/babylonchain/staking-ledger/types"
)

func checkAdmin(c *change, caller types.Account) error {
	if caller != c.admin {
		return errorsmod.Wrapf(ErrNotAuthorized, "caller %s", caller)
	}
	return nil
}

// AddRewardFunds takes amount into the reserve without crediting any
// account
func (e *Engine) AddRewardFunds(caller types.Account, amount sdkmath.Uint) error {
	const op = "add_reward_funds"

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
	if c.reserve, err = addUint(c.reserve, amount); err != nil {
		return e.reject(op, caller, err)
	}

	e.commit(c)

	e.logger.Info("reward funds added",
		zap.String("amount", amount.String()),
		zap.String("reserve", c.reserve.String()),
	)
	e.publish(types.Event{
		Kind:    types.EventRewardFundsAdded,
		Account: caller,
		Amount:  amount,
		Time:    now,
	})

	return nil
}

// Receive accepts unsolicited value from any sender. Like AddRewardFunds it
// only tops up the reserve.
func (e *Engine) Receive(from types.Account, amount sdkmath.Uint) error {
	const op = "receive"

	release, err := e.guard.enter()
	if err != nil {
		return e.reject(op, from, err)
	}
	defer release()

	now := e.clock.Now()
	c := e.begin(from)

	if c.reserve, err = addUint(c.reserve, amount); err != nil {
		return e.reject(op, from, err)
	}

	e.commit(c)

	e.logger.Info("funds received",
		zap.String("from", from.String()),
		zap.String("amount", amount.String()),
	)
	e.publish(types.Event{
		Kind:    types.EventFundsReceived,
		Account: from,
		Amount:  amount,
		Time:    now,
	})

	return nil
}

// EmergencyWithdraw sends amount of the reserve to the administrator without
// touching any staker record. It can leave the reserve short of the staked
// principal.
func (e *Engine) EmergencyWithdraw(caller types.Account, amount sdkmath.Uint) error {
	const op = "emergency_withdraw"

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
	if amount.GT(c.reserve) {
		return e.reject(op, caller, errorsmod.Wrapf(ErrInsufficientBalance,
			"requested %s, reserve %s", amount, c.reserve))
	}
	if err := e.transfer(c, caller, amount); err != nil {
		return e.reject(op, caller, err)
	}

	e.commit(c)

	e.logger.Warn("emergency withdrawal",
		zap.String("to", caller.String()),
		zap.String("amount", amount.String()),
		zap.String("reserve", c.reserve.String()),
		zap.String("total_staked", c.pool.TotalStaked.String()),
	)
	e.publish(types.Event{
		Kind:    types.EventEmergencyWithdrawn,
		Account: caller,
		Amount:  amount,
		Time:    now,
	})

	return nil
}

// TransferAdmin hands the administrator capability to next. The caller
// loses it in the same step.
func (e *Engine) TransferAdmin(caller, next types.Account) error {
	const op = "transfer_admin"

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
	if next == "" {
		return e.reject(op, caller, errorsmod.Wrap(ErrNotAuthorized, "the new administrator should not be empty"))
	}
	c.admin = next

	e.commit(c)

	e.logger.Info("administrator transferred",
		zap.String("from", caller.String()),
		zap.String("to", next.String()),
	)
	e.publish(types.Event{
		Kind:     types.EventAdminTransferred,
		Account:  caller,
		NewAdmin: next,
		Time:     now,
	})

	return nil
}
