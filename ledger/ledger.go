package ledger

import (
	"fmt"
	"sort"
	"sync"
	"time"

	errorsmod "cosmossdk.io/errors"
	sdkmath "cosmossdk.io/math"
	"go.uber.org/zap"

	"github.com/babylonchain/staking-ledger/hostcontroller"
	"github.com/babylonchain/staking-ledger/types"
)

// Clock supplies the current unix time in seconds
type Clock interface {
	Now() uint64
}

type systemClock struct{}

func (systemClock) Now() uint64 {
	return uint64(time.Now().Unix())
}

// EventSink receives the notifications of committed calls
type EventSink interface {
	Publish(ev types.Event)
}

// State is the full ledger state, used to persist and restore an Engine
type State struct {
	Admin   types.Account                        `json:"admin"`
	Pool    types.PoolConfig                     `json:"pool"`
	Reserve sdkmath.Uint                         `json:"reserve"`
	Stakers map[types.Account]types.StakerRecord `json:"stakers"`
}

type Option func(*Engine)

func WithClock(c Clock) Option {
	return func(e *Engine) {
		e.clock = c
	}
}

func WithEventSink(s EventSink) Option {
	return func(e *Engine) {
		e.sink = s
	}
}

// Engine owns the pool and every staker record. It is the only writer of
// both.
type Engine struct {
	guard callGuard

	// mu protects the fields below. Writers hold it only while committing,
	// never across an outbound transfer.
	mu      sync.RWMutex
	admin   types.Account
	pool    types.PoolConfig
	reserve sdkmath.Uint
	stakers map[types.Account]types.StakerRecord

	host   hostcontroller.HostController
	clock  Clock
	sink   EventSink
	logger *zap.Logger
}

// New initializes a ledger with the given administrator and pool
// parameters. Any parameter value, zero included, is accepted.
func New(
	admin types.Account,
	params types.PoolParams,
	host hostcontroller.HostController,
	logger *zap.Logger,
	opts ...Option,
) (*Engine, error) {
	return Restore(State{
		Admin:   admin,
		Pool:    types.NewPoolConfig(params),
		Reserve: sdkmath.ZeroUint(),
	}, host, logger, opts...)
}

// Restore rebuilds a ledger from a previously taken snapshot. The snapshot
// is rejected if the pool total does not match the staker records.
func Restore(
	state State,
	host hostcontroller.HostController,
	logger *zap.Logger,
	opts ...Option,
) (*Engine, error) {
	if state.Admin == "" {
		return nil, fmt.Errorf("the administrator should not be empty")
	}
	if host == nil {
		return nil, fmt.Errorf("the host controller should not be nil")
	}

	pool := state.Pool
	if pool.MinimumStakeAmount.IsNil() {
		pool.MinimumStakeAmount = sdkmath.ZeroUint()
	}
	if pool.TotalStaked.IsNil() {
		pool.TotalStaked = sdkmath.ZeroUint()
	}
	reserve := state.Reserve
	if reserve.IsNil() {
		reserve = sdkmath.ZeroUint()
	}

	sum := sdkmath.ZeroUint()
	stakers := make(map[types.Account]types.StakerRecord, len(state.Stakers))
	for acc, rec := range state.Stakers {
		if rec.StakedAmount.IsNil() {
			rec.StakedAmount = sdkmath.ZeroUint()
		}
		if rec.TotalRewardsClaimed.IsNil() {
			rec.TotalRewardsClaimed = sdkmath.ZeroUint()
		}
		var err error
		if sum, err = addUint(sum, rec.StakedAmount); err != nil {
			return nil, err
		}
		stakers[acc] = rec
	}
	if !sum.Equal(pool.TotalStaked) {
		return nil, fmt.Errorf("total staked %s does not match the sum of staker records %s",
			pool.TotalStaked, sum)
	}

	e := &Engine{
		admin:   state.Admin,
		pool:    pool,
		reserve: reserve,
		stakers: stakers,
		host:    host,
		clock:   systemClock{},
		logger:  logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.recordMetricsPool(pool.TotalStaked, reserve)

	return e, nil
}

// Snapshot returns a copy of the full ledger state
func (e *Engine) Snapshot() State {
	e.mu.RLock()
	defer e.mu.RUnlock()

	stakers := make(map[types.Account]types.StakerRecord, len(e.stakers))
	for acc, rec := range e.stakers {
		stakers[acc] = rec
	}

	return State{
		Admin:   e.admin,
		Pool:    e.pool,
		Reserve: e.reserve,
		Stakers: stakers,
	}
}

// change is the working copy a mutating call stages its effects on. It is
// committed only once every check and the outbound transfer have succeeded.
type change struct {
	account types.Account
	record  types.StakerRecord
	touched bool

	admin   types.Account
	pool    types.PoolConfig
	reserve sdkmath.Uint
}

func (e *Engine) begin(acc types.Account) *change {
	e.mu.RLock()
	defer e.mu.RUnlock()

	rec, ok := e.stakers[acc]
	if !ok {
		rec = types.NewStakerRecord()
	}

	return &change{
		account: acc,
		record:  rec,
		admin:   e.admin,
		pool:    e.pool,
		reserve: e.reserve,
	}
}

func (e *Engine) commit(c *change) {
	e.mu.Lock()
	if c.touched {
		e.stakers[c.account] = c.record
	}
	e.admin = c.admin
	e.pool = c.pool
	e.reserve = c.reserve
	e.mu.Unlock()

	e.recordMetricsPool(c.pool.TotalStaked, c.reserve)
}

// transfer pays amount out of the staged reserve through the host
func (e *Engine) transfer(c *change, to types.Account, amount sdkmath.Uint) error {
	if amount.IsZero() {
		return nil
	}
	if amount.GT(c.reserve) {
		e.recordMetricsFailedTransfer()
		return errorsmod.Wrapf(ErrTransferFailed, "reserve %s cannot cover %s", c.reserve, amount)
	}
	if err := e.host.Transfer(to, amount); err != nil {
		e.recordMetricsFailedTransfer()
		return errorsmod.Wrapf(ErrTransferFailed, "%s to %s: %v", amount, to, err)
	}

	c.reserve = c.reserve.Sub(amount)
	return nil
}

func (e *Engine) publish(ev types.Event) {
	if ev.Amount.IsNil() {
		ev.Amount = sdkmath.ZeroUint()
	}
	if ev.Reward.IsNil() {
		ev.Reward = sdkmath.ZeroUint()
	}
	e.recordMetricsOperation(ev.Kind)
	if e.sink != nil {
		e.sink.Publish(ev)
	}
}

func (e *Engine) reject(op string, acc types.Account, err error) error {
	e.logger.Debug("ledger call rejected",
		zap.String("operation", op),
		zap.String("account", acc.String()),
		zap.Error(err),
	)
	e.recordMetricsRejected(op)
	return err
}

// Stake deposits amount for acc. A pending reward on an existing balance is
// compounded into the principal, and the accrual window and the lock both
// restart from now.
func (e *Engine) Stake(acc types.Account, amount sdkmath.Uint) error {
	const op = "stake"

	release, err := e.guard.enter()
	if err != nil {
		return e.reject(op, acc, err)
	}
	defer release()

	now := e.clock.Now()
	c := e.begin(acc)

	if amount.LT(c.pool.MinimumStakeAmount) {
		return e.reject(op, acc, errorsmod.Wrapf(ErrInsufficientAmount, "got %s, minimum %s", amount, c.pool.MinimumStakeAmount))
	}

	reward, err := pendingReward(&c.record, c.pool.RewardRate, now)
	if err != nil {
		return e.reject(op, acc, err)
	}
	credit, err := addUint(reward, amount)
	if err != nil {
		return e.reject(op, acc, err)
	}
	if c.record.StakedAmount, err = addUint(c.record.StakedAmount, credit); err != nil {
		return e.reject(op, acc, err)
	}
	if c.pool.TotalStaked, err = addUint(c.pool.TotalStaked, credit); err != nil {
		return e.reject(op, acc, err)
	}
	if c.reserve, err = addUint(c.reserve, amount); err != nil {
		return e.reject(op, acc, err)
	}
	c.record.LastStakeTime = now
	c.record.LastClaimTime = now
	c.touched = true

	e.commit(c)

	e.logger.Info("staked",
		zap.String("account", acc.String()),
		zap.String("amount", amount.String()),
		zap.String("compounded_reward", reward.String()),
		zap.String("staked_amount", c.record.StakedAmount.String()),
	)
	e.publish(types.Event{
		Kind:    types.EventStaked,
		Account: acc,
		Amount:  amount,
		Reward:  reward,
		Time:    now,
	})

	return nil
}

// Unstake withdraws amount of principal together with the reward accrued
// since the last settlement. The lock runs from the most recent stake, and
// unstaking does not move it.
func (e *Engine) Unstake(acc types.Account, amount sdkmath.Uint) (sdkmath.Uint, error) {
	const op = "unstake"

	release, err := e.guard.enter()
	if err != nil {
		return sdkmath.Uint{}, e.reject(op, acc, err)
	}
	defer release()

	now := e.clock.Now()
	c := e.begin(acc)

	if amount.IsZero() {
		return sdkmath.Uint{}, e.reject(op, acc, errorsmod.Wrap(ErrInsufficientAmount, "cannot unstake zero"))
	}
	if amount.GT(c.record.StakedAmount) {
		return sdkmath.Uint{}, e.reject(op, acc, errorsmod.Wrapf(ErrInsufficientBalance, "requested %s, staked %s", amount, c.record.StakedAmount))
	}
	unlockTime, err := addTime(c.record.LastStakeTime, c.pool.LockPeriod)
	if err != nil {
		return sdkmath.Uint{}, e.reject(op, acc, err)
	}
	if now < unlockTime {
		return sdkmath.Uint{}, e.reject(op, acc, errorsmod.Wrapf(ErrStillLocked, "unlocks at %d, now %d", unlockTime, now))
	}

	reward, err := pendingReward(&c.record, c.pool.RewardRate, now)
	if err != nil {
		return sdkmath.Uint{}, e.reject(op, acc, err)
	}
	if c.record.StakedAmount, err = subUint(c.record.StakedAmount, amount); err != nil {
		return sdkmath.Uint{}, e.reject(op, acc, err)
	}
	if c.pool.TotalStaked, err = subUint(c.pool.TotalStaked, amount); err != nil {
		return sdkmath.Uint{}, e.reject(op, acc, err)
	}
	if c.record.TotalRewardsClaimed, err = addUint(c.record.TotalRewardsClaimed, reward); err != nil {
		return sdkmath.Uint{}, e.reject(op, acc, err)
	}
	c.record.LastClaimTime = now
	c.touched = true

	payout, err := addUint(amount, reward)
	if err != nil {
		return sdkmath.Uint{}, e.reject(op, acc, err)
	}
	if err := e.transfer(c, acc, payout); err != nil {
		return sdkmath.Uint{}, e.reject(op, acc, err)
	}

	e.commit(c)

	e.logger.Info("unstaked",
		zap.String("account", acc.String()),
		zap.String("amount", amount.String()),
		zap.String("reward", reward.String()),
		zap.String("staked_amount", c.record.StakedAmount.String()),
	)
	e.publish(types.Event{
		Kind:    types.EventUnstaked,
		Account: acc,
		Amount:  amount,
		Reward:  reward,
		Time:    now,
	})

	return reward, nil
}

// ClaimRewards pays out the reward accrued since the last settlement and
// leaves the principal untouched
func (e *Engine) ClaimRewards(acc types.Account) (sdkmath.Uint, error) {
	const op = "claim_rewards"

	release, err := e.guard.enter()
	if err != nil {
		return sdkmath.Uint{}, e.reject(op, acc, err)
	}
	defer release()

	now := e.clock.Now()
	c := e.begin(acc)

	if !c.record.HasStake() {
		return sdkmath.Uint{}, e.reject(op, acc, ErrNoStake)
	}
	reward, err := pendingReward(&c.record, c.pool.RewardRate, now)
	if err != nil {
		return sdkmath.Uint{}, e.reject(op, acc, err)
	}
	if reward.IsZero() {
		return sdkmath.Uint{}, e.reject(op, acc, ErrNothingToClaim)
	}

	if c.record.TotalRewardsClaimed, err = addUint(c.record.TotalRewardsClaimed, reward); err != nil {
		return sdkmath.Uint{}, e.reject(op, acc, err)
	}
	c.record.LastClaimTime = now
	c.touched = true

	if err := e.transfer(c, acc, reward); err != nil {
		return sdkmath.Uint{}, e.reject(op, acc, err)
	}

	e.commit(c)

	e.logger.Info("reward claimed",
		zap.String("account", acc.String()),
		zap.String("reward", reward.String()),
	)
	e.publish(types.Event{
		Kind:    types.EventRewardClaimed,
		Account: acc,
		Amount:  reward,
		Reward:  reward,
		Time:    now,
	})

	return reward, nil
}

// CalculateReward returns the reward acc would receive if it settled now
func (e *Engine) CalculateReward(acc types.Account) (sdkmath.Uint, error) {
	now := e.clock.Now()

	e.mu.RLock()
	defer e.mu.RUnlock()

	rec, ok := e.stakers[acc]
	if !ok {
		return sdkmath.ZeroUint(), nil
	}
	return pendingReward(&rec, e.pool.RewardRate, now)
}

// StakerInfo returns the record of acc with its live pending reward and the
// time its principal unlocks. An account that never staked gets a zeroed
// projection.
func (e *Engine) StakerInfo(acc types.Account) (*types.StakerInfo, error) {
	now := e.clock.Now()

	e.mu.RLock()
	defer e.mu.RUnlock()

	rec, ok := e.stakers[acc]
	if !ok {
		rec = types.NewStakerRecord()
	}
	reward, err := pendingReward(&rec, e.pool.RewardRate, now)
	if err != nil {
		return nil, err
	}
	unlockTime, err := addTime(rec.LastStakeTime, e.pool.LockPeriod)
	if err != nil {
		return nil, err
	}

	return &types.StakerInfo{
		StakedAmount:        rec.StakedAmount,
		LastStakeTime:       rec.LastStakeTime,
		LastClaimTime:       rec.LastClaimTime,
		TotalRewardsClaimed: rec.TotalRewardsClaimed,
		PendingReward:       reward,
		UnlockTime:          unlockTime,
	}, nil
}

func (e *Engine) PoolInfo() types.PoolInfo {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return types.PoolInfo{
		TotalStaked:        e.pool.TotalStaked,
		RewardRate:         e.pool.RewardRate,
		MinimumStakeAmount: e.pool.MinimumStakeAmount,
		LockPeriod:         e.pool.LockPeriod,
	}
}

// Reserve returns the value held by the ledger, backing both principal and
// future rewards
func (e *Engine) Reserve() sdkmath.Uint {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.reserve
}

func (e *Engine) Admin() types.Account {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.admin
}

// Stakers returns every account holding a record, in lexical order
func (e *Engine) Stakers() []types.Account {
	e.mu.RLock()
	defer e.mu.RUnlock()

	accs := make([]types.Account, 0, len(e.stakers))
	for acc := range e.stakers {
		accs = append(accs, acc)
	}
	sort.Slice(accs, func(i, j int) bool { return accs[i] < accs[j] })
	return accs
}
