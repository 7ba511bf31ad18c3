package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/urfave/cli"
	"go.uber.org/zap"

	slcfg "github.com/babylonchain/staking-ledger/config"
	"github.com/babylonchain/staking-ledger/hostcontroller"
	"github.com/babylonchain/staking-ledger/ledger"
	"github.com/babylonchain/staking-ledger/log"
	"github.com/babylonchain/staking-ledger/store"
	"github.com/babylonchain/staking-ledger/types"
	"github.com/babylonchain/staking-ledger/util"
)

var homeCliFlag = cli.StringFlag{
	Name:  homeFlag,
	Usage: "The path to the ledger home directory",
	Value: slcfg.DefaultStkdDir,
}

// session is a ledger restored from the home directory for the duration of
// one command
type session struct {
	cfg       *slcfg.Config
	logger    *zap.Logger
	logCloser io.Closer

	store    *store.Store
	bank     *hostcontroller.Bank
	recorder *store.EventRecorder
	engine   *ledger.Engine
}

func openSession(ctx *cli.Context) (*session, error) {
	homePath, err := filepath.Abs(ctx.String(homeFlag))
	if err != nil {
		return nil, err
	}
	homePath = util.CleanAndExpandPath(homePath)

	cfg, err := slcfg.LoadConfig(homePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config at %s: %w", homePath, err)
	}

	logger, logCloser, err := log.NewRootLoggerWithFile(slcfg.LogFile(homePath), cfg.LogFormat, cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to load the logger: %w", err)
	}

	s := &session{
		cfg:       cfg,
		logger:    logger,
		logCloser: logCloser,
		recorder:  store.NewEventRecorder(),
	}
	if err := s.restore(); err != nil {
		s.Close()
		return nil, err
	}

	return s, nil
}

func (s *session) restore() error {
	var err error
	s.store, err = store.Open(s.cfg.Store, s.logger)
	if err != nil {
		return err
	}

	balances, err := s.store.LoadBalances()
	if err != nil {
		return fmt.Errorf("failed to load the bank balances: %w", err)
	}
	s.bank, err = hostcontroller.NewBank(balances, s.logger)
	if err != nil {
		return err
	}

	state, err := s.store.LoadState()
	switch {
	case errors.Is(err, store.ErrNotInitialized):
		params, err := s.cfg.Pool.ToParams()
		if err != nil {
			return err
		}
		s.logger.Info("initializing a new ledger",
			zap.String("admin", s.cfg.Admin),
			zap.Uint64("reward_rate", params.RewardRate),
			zap.String("minimum_stake_amount", params.MinimumStakeAmount.String()),
			zap.Uint64("lock_period", params.LockPeriod),
		)
		s.engine, err = ledger.New(types.Account(s.cfg.Admin), params, s.bank, s.logger,
			ledger.WithEventSink(s.recorder))
		if err != nil {
			return fmt.Errorf("failed to initialize the ledger: %w", err)
		}
	case err != nil:
		return fmt.Errorf("failed to load the ledger state: %w", err)
	default:
		s.engine, err = ledger.Restore(*state, s.bank, s.logger, ledger.WithEventSink(s.recorder))
		if err != nil {
			return fmt.Errorf("failed to restore the ledger: %w", err)
		}
	}

	return nil
}

// commit persists the ledger state, the bank balances and the events of
// the command
func (s *session) commit() error {
	return s.store.Save(s.engine.Snapshot(), s.bank.Balances(), s.recorder.Drain())
}

func (s *session) Close() {
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			s.logger.Error("failed to close the ledger database", zap.Error(err))
		}
	}
	_ = s.logger.Sync()
	_ = s.logCloser.Close()
}

// runMutation executes fn against the restored ledger and persists the
// result only if fn succeeds
func runMutation(ctx *cli.Context, fn func(s *session) (interface{}, error)) error {
	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	resp, err := fn(s)
	if err != nil {
		return err
	}
	if err := s.commit(); err != nil {
		return err
	}

	printRespJSON(resp)
	return nil
}

// runQuery executes fn against the restored ledger without persisting
// anything
func runQuery(ctx *cli.Context, fn func(s *session) (interface{}, error)) error {
	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	resp, err := fn(s)
	if err != nil {
		return err
	}

	printRespJSON(resp)
	return nil
}

func requiredAccount(ctx *cli.Context, name string) (types.Account, error) {
	acc := ctx.String(name)
	if acc == "" {
		return "", fmt.Errorf("--%s is required", name)
	}
	return types.Account(acc), nil
}

func printRespJSON(resp interface{}) {
	jsonBytes, err := json.MarshalIndent(resp, "", "    ")
	if err != nil {
		fmt.Println("unable to decode response: ", err)
		return
	}

	fmt.Printf("%s\n", jsonBytes)
}
