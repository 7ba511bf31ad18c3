package store

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	sdkmath "cosmossdk.io/math"
	"github.com/avast/retry-go/v4"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"
	"go.uber.org/zap"

	"github.com/babylonchain/staking-ledger/config"
	"github.com/babylonchain/staking-ledger/ledger"
	"github.com/babylonchain/staking-ledger/types"
)

var (
	keyAdmin   = []byte("state/admin")
	keyPool    = []byte("state/pool")
	keyReserve = []byte("state/reserve")
	keyEventSq = []byte("state/event-seq")

	prefixStaker  = []byte("staker/")
	prefixBalance = []byte("balance/")
	prefixEvent   = []byte("event/")
)

// ErrNotInitialized is returned by LoadState on an empty database
var ErrNotInitialized = errors.New("ledger state is not initialized")

// Store persists the ledger state, the host wallet balances and the event
// journal in a leveldb database
type Store struct {
	db     *leveldb.DB
	mu     sync.Mutex
	logger *zap.Logger
}

// Open opens the database under cfg.DBDir. leveldb holds an exclusive file
// lock, so opening is retried while another process still holds it.
func Open(cfg *config.StoreConfig, logger *zap.Logger) (*Store, error) {
	var db *leveldb.DB
	err := retry.Do(func() error {
		var err error
		db, err = leveldb.OpenFile(cfg.DBDir, nil)
		return err
	},
		retry.Attempts(cfg.OpenAttempts),
		retry.Delay(cfg.OpenDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			logger.Debug("failed to open the ledger database",
				zap.String("dir", cfg.DBDir),
				zap.Uint("attempt", n+1),
				zap.Uint("max_attempts", cfg.OpenAttempts),
				zap.Error(err),
			)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open the ledger database at %s: %w", cfg.DBDir, err)
	}

	return &Store{
		db:     db,
		logger: logger,
	}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// LoadState reads the full ledger state
func (s *Store) LoadState() (*ledger.State, error) {
	state := &ledger.State{
		Stakers: make(map[types.Account]types.StakerRecord),
	}

	admin, err := s.db.Get(keyAdmin, nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, ErrNotInitialized
	}
	if err != nil {
		return nil, err
	}
	state.Admin = types.Account(admin)

	if err := s.getJSON(keyPool, &state.Pool); err != nil {
		return nil, fmt.Errorf("failed to load the pool: %w", err)
	}
	if err := s.getJSON(keyReserve, &state.Reserve); err != nil {
		return nil, fmt.Errorf("failed to load the reserve: %w", err)
	}

	iter := s.db.NewIterator(util.BytesPrefix(prefixStaker), nil)
	defer iter.Release()
	for iter.Next() {
		var rec types.StakerRecord
		if err := json.Unmarshal(iter.Value(), &rec); err != nil {
			return nil, fmt.Errorf("failed to decode staker record %s: %w", iter.Key(), err)
		}
		acc := types.Account(iter.Key()[len(prefixStaker):])
		state.Stakers[acc] = rec
	}
	if err := iter.Error(); err != nil {
		return nil, err
	}

	return state, nil
}

// LoadBalances reads the wallet balances of the in-process bank
func (s *Store) LoadBalances() (map[types.Account]sdkmath.Uint, error) {
	balances := make(map[types.Account]sdkmath.Uint)

	iter := s.db.NewIterator(util.BytesPrefix(prefixBalance), nil)
	defer iter.Release()
	for iter.Next() {
		var bal sdkmath.Uint
		if err := json.Unmarshal(iter.Value(), &bal); err != nil {
			return nil, fmt.Errorf("failed to decode balance %s: %w", iter.Key(), err)
		}
		balances[types.Account(iter.Key()[len(prefixBalance):])] = bal
	}
	if err := iter.Error(); err != nil {
		return nil, err
	}

	return balances, nil
}

// Save writes the ledger state, the wallet balances and the given events in
// one atomic batch
func (s *Store) Save(state ledger.State, balances map[types.Account]sdkmath.Uint, events []types.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	batch := new(leveldb.Batch)

	batch.Put(keyAdmin, []byte(state.Admin))
	if err := putJSON(batch, keyPool, state.Pool); err != nil {
		return err
	}
	if err := putJSON(batch, keyReserve, state.Reserve); err != nil {
		return err
	}
	for acc, rec := range state.Stakers {
		if err := putJSON(batch, prefixed(prefixStaker, acc), rec); err != nil {
			return err
		}
	}
	for acc, bal := range balances {
		if err := putJSON(batch, prefixed(prefixBalance, acc), bal); err != nil {
			return err
		}
	}

	if len(events) > 0 {
		seq, err := s.eventSeq()
		if err != nil {
			return err
		}
		for _, ev := range events {
			seq++
			if err := putJSON(batch, eventKey(seq), ev); err != nil {
				return err
			}
		}
		batch.Put(keyEventSq, seqBytes(seq))
	}

	if err := s.db.Write(batch, nil); err != nil {
		return fmt.Errorf("failed to write the ledger state: %w", err)
	}

	s.logger.Debug("ledger state saved",
		zap.Int("stakers", len(state.Stakers)),
		zap.Int("events", len(events)),
	)

	return nil
}

// Events returns up to limit journaled events, oldest first, starting after
// the given sequence number. A zero limit returns all of them.
func (s *Store) Events(after uint64, limit uint64) ([]types.Event, error) {
	events := make([]types.Event, 0)

	iter := s.db.NewIterator(&util.Range{Start: eventKey(after + 1), Limit: util.BytesPrefix(prefixEvent).Limit}, nil)
	defer iter.Release()
	for iter.Next() {
		var ev types.Event
		if err := json.Unmarshal(iter.Value(), &ev); err != nil {
			return nil, fmt.Errorf("failed to decode event %x: %w", iter.Key(), err)
		}
		events = append(events, ev)
		if limit != 0 && uint64(len(events)) >= limit {
			break
		}
	}
	if err := iter.Error(); err != nil {
		return nil, err
	}

	return events, nil
}

func (s *Store) eventSeq() (uint64, error) {
	v, err := s.db.Get(keyEventSq, nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if len(v) != 8 {
		return 0, fmt.Errorf("corrupted event sequence")
	}
	return binary.BigEndian.Uint64(v), nil
}

func (s *Store) getJSON(key []byte, v interface{}) error {
	data, err := s.db.Get(key, nil)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

func putJSON(batch *leveldb.Batch, key []byte, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	batch.Put(key, data)
	return nil
}

func prefixed(prefix []byte, acc types.Account) []byte {
	key := make([]byte, 0, len(prefix)+len(acc))
	key = append(key, prefix...)
	return append(key, acc...)
}

func seqBytes(seq uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, seq)
	return b
}

func eventKey(seq uint64) []byte {
	return append(append([]byte{}, prefixEvent...), seqBytes(seq)...)
}
