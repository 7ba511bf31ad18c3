package hostcontroller

import (
	sdkmath "cosmossdk.io/math"

	"github.com/babylonchain/staking-ledger/types"
)

// HostController is the environment the ledger runs in. The ledger only
// ever asks it to move value out; value coming in is reported by the caller
// of the ledger operation.
type HostController interface {
	// Transfer sends amount to the given account. It is all-or-nothing: on
	// error no value has left the host.
	// The recipient may run arbitrary code, including calls back into the
	// ledger, before Transfer returns.
	Transfer(to types.Account, amount sdkmath.Uint) error
}
