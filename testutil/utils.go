package testutil

import (
	"sync"
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/golang/mock/gomock"

	"github.com/babylonchain/staking-ledger/testutil/mocks"
	"github.com/babylonchain/staking-ledger/types"
)

// TransferLog records what the mocked host was asked to pay
type TransferLog struct {
	mu    sync.Mutex
	Paid  map[types.Account]sdkmath.Uint
	Calls int
}

func (l *TransferLog) record(to types.Account, amount sdkmath.Uint) {
	l.mu.Lock()
	defer l.mu.Unlock()
	bal, ok := l.Paid[to]
	if !ok {
		bal = sdkmath.ZeroUint()
	}
	l.Paid[to] = bal.Add(amount)
	l.Calls++
}

// PaidTo returns the total transferred to acc
func (l *TransferLog) PaidTo(acc types.Account) sdkmath.Uint {
	l.mu.Lock()
	defer l.mu.Unlock()
	bal, ok := l.Paid[acc]
	if !ok {
		return sdkmath.ZeroUint()
	}
	return bal
}

// PrepareMockedHostController returns a host mock whose transfers always
// succeed and are recorded in the returned log
func PrepareMockedHostController(t *testing.T) (*mocks.MockHostController, *TransferLog) {
	ctl := gomock.NewController(t)
	mockHostController := mocks.NewMockHostController(ctl)

	transfers := &TransferLog{Paid: make(map[types.Account]sdkmath.Uint)}
	mockHostController.EXPECT().Transfer(gomock.Any(), gomock.Any()).
		DoAndReturn(func(to types.Account, amount sdkmath.Uint) error {
			transfers.record(to, amount)
			return nil
		}).AnyTimes()

	return mockHostController, transfers
}
