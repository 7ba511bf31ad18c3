package hostcontroller

import (
	"fmt"
	"sort"
	"sync"

	sdkmath "cosmossdk.io/math"
	"go.uber.org/zap"

	"github.com/babylonchain/staking-ledger/types"
)

var _ HostController = &Bank{}

// Bank is an in-process host that credits every outbound transfer to the
// recipient's wallet balance
type Bank struct {
	mu       sync.RWMutex
	balances map[types.Account]sdkmath.Uint
	logger   *zap.Logger
}

func NewBank(balances map[types.Account]sdkmath.Uint, logger *zap.Logger) (*Bank, error) {
	b := &Bank{
		balances: make(map[types.Account]sdkmath.Uint, len(balances)),
		logger:   logger,
	}
	for acc, bal := range balances {
		if acc == "" {
			return nil, fmt.Errorf("empty account in the bank balances")
		}
		if bal.IsNil() {
			bal = sdkmath.ZeroUint()
		}
		b.balances[acc] = bal
	}

	return b, nil
}

func (b *Bank) Transfer(to types.Account, amount sdkmath.Uint) error {
	if to == "" {
		return fmt.Errorf("empty recipient")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	bal, ok := b.balances[to]
	if !ok {
		bal = sdkmath.ZeroUint()
	}
	b.balances[to] = bal.Add(amount)

	b.logger.Debug("bank transfer",
		zap.String("to", to.String()),
		zap.String("amount", amount.String()),
	)

	return nil
}

// Balance returns the value received by the account so far
func (b *Bank) Balance(acc types.Account) sdkmath.Uint {
	b.mu.RLock()
	defer b.mu.RUnlock()

	bal, ok := b.balances[acc]
	if !ok {
		return sdkmath.ZeroUint()
	}
	return bal
}

// Balances returns a copy of every wallet balance
func (b *Bank) Balances() map[types.Account]sdkmath.Uint {
	b.mu.RLock()
	defer b.mu.RUnlock()

	res := make(map[types.Account]sdkmath.Uint, len(b.balances))
	for acc, bal := range b.balances {
		res[acc] = bal
	}
	return res
}

// Accounts returns the accounts holding a balance in lexical order
func (b *Bank) Accounts() []types.Account {
	b.mu.RLock()
	defer b.mu.RUnlock()

	accs := make([]types.Account, 0, len(b.balances))
	for acc := range b.balances {
		accs = append(accs, acc)
	}
	sort.Slice(accs, func(i, j int) bool { return accs[i] < accs[j] })
	return accs
}
