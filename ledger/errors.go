package ledger

import (
	errorsmod "cosmossdk.io/errors"
)

// ModuleName is the codespace of the ledger errors
const ModuleName = "ledger"

// business errors, every one aborts the call without any state change
var (
	ErrInsufficientAmount  = errorsmod.Register(ModuleName, 2, "amount is below the minimum stake")
	ErrInsufficientBalance = errorsmod.Register(ModuleName, 3, "amount exceeds the available balance")
	ErrStillLocked         = errorsmod.Register(ModuleName, 4, "stake is still locked")
	ErrNoStake             = errorsmod.Register(ModuleName, 5, "account has no stake")
	ErrNothingToClaim      = errorsmod.Register(ModuleName, 6, "no reward to claim")
	ErrNotAuthorized       = errorsmod.Register(ModuleName, 7, "caller is not the administrator")
	ErrTransferFailed      = errorsmod.Register(ModuleName, 8, "outbound transfer failed")
	ErrReentrant           = errorsmod.Register(ModuleName, 9, "reentrant call")
)

// ErrArithmeticOverflow is raised when an amount leaves the 256-bit unsigned
// range. It signals a broken ledger rather than a rejected request.
var ErrArithmeticOverflow = errorsmod.Register(ModuleName, 100, "arithmetic overflow")
