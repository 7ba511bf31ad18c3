package testutil

import (
	"fmt"
	"math/rand"
	"sync"
	"testing"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/brianvoe/gofakeit/v6"

	"github.com/babylonchain/staking-ledger/types"
)

func AddRandomSeedsToFuzzer(f *testing.F, num uint) {
	// Seed based on the current time
	r := rand.New(rand.NewSource(time.Now().Unix()))
	var idx uint
	for idx = 0; idx < num; idx++ {
		f.Add(r.Int63())
	}
}

// GenRandomAccounts returns num distinct account names
func GenRandomAccounts(r *rand.Rand, num int) []types.Account {
	faker := gofakeit.New(r.Int63())
	accs := make([]types.Account, 0, num)
	for i := 0; i < num; i++ {
		accs = append(accs, types.Account(fmt.Sprintf("%s-%d", faker.Username(), i)))
	}
	return accs
}

// GenRandomAmount returns an amount in [min, max]
func GenRandomAmount(r *rand.Rand, min, max uint64) sdkmath.Uint {
	return sdkmath.NewUint(min + uint64(r.Int63n(int64(max-min+1))))
}

func GenRandomParams(r *rand.Rand) types.PoolParams {
	return types.PoolParams{
		RewardRate:         uint64(r.Int63n(5000)) + 1,
		MinimumStakeAmount: GenRandomAmount(r, 1, 1000),
		LockPeriod:         uint64(r.Int63n(30 * 24 * 60 * 60)),
	}
}

// ManualClock is a clock that only moves when told to
type ManualClock struct {
	mu  sync.Mutex
	now uint64
}

func NewManualClock(now uint64) *ManualClock {
	return &ManualClock{now: now}
}

func (c *ManualClock) Now() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *ManualClock) Set(now uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

func (c *ManualClock) Advance(seconds uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now += seconds
}
