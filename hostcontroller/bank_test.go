package hostcontroller_test

import (
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/babylonchain/staking-ledger/hostcontroller"
	"github.com/babylonchain/staking-ledger/types"
)

func TestBankTransfer(t *testing.T) {
	bank, err := hostcontroller.NewBank(map[types.Account]sdkmath.Uint{
		"bob": sdkmath.NewUint(7),
	}, zap.NewNop())
	require.NoError(t, err)

	require.NoError(t, bank.Transfer("alice", sdkmath.NewUint(10)))
	require.NoError(t, bank.Transfer("alice", sdkmath.NewUint(5)))
	require.NoError(t, bank.Transfer("bob", sdkmath.NewUint(3)))
	require.Error(t, bank.Transfer("", sdkmath.NewUint(1)))

	require.True(t, bank.Balance("alice").Equal(sdkmath.NewUint(15)))
	require.True(t, bank.Balance("bob").Equal(sdkmath.NewUint(10)))
	require.True(t, bank.Balance("carol").IsZero())
	require.Equal(t, []types.Account{"alice", "bob"}, bank.Accounts())

	balances := bank.Balances()
	balances["alice"] = sdkmath.ZeroUint()
	require.True(t, bank.Balance("alice").Equal(sdkmath.NewUint(15)))
}

func TestNewBankRejectsEmptyAccount(t *testing.T) {
	_, err := hostcontroller.NewBank(map[types.Account]sdkmath.Uint{
		"": sdkmath.NewUint(1),
	}, zap.NewNop())
	require.Error(t, err)
}
