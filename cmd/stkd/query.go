package main

import (
	sdkmath "cosmossdk.io/math"
	"github.com/urfave/cli"

	"github.com/babylonchain/staking-ledger/types"
	"github.com/babylonchain/staking-ledger/util"
)

type rewardResp struct {
	Account       types.Account `json:"account"`
	PendingReward sdkmath.Uint  `json:"pending_reward"`
}

type poolResp struct {
	types.PoolInfo
	AnnualPercentage string        `json:"annual_percentage"`
	Reserve          sdkmath.Uint  `json:"reserve"`
	Admin            types.Account `json:"admin"`
}

func newPoolResp(info types.PoolInfo, reserve sdkmath.Uint, admin types.Account) *poolResp {
	return &poolResp{
		PoolInfo:         info,
		AnnualPercentage: util.AnnualPercentage(info.RewardRate),
		Reserve:          reserve,
		Admin:            admin,
	}
}

type balanceResp struct {
	Account types.Account `json:"account"`
	Balance sdkmath.Uint  `json:"balance"`
}

type eventResp struct {
	Seq uint64 `json:"seq"`
	types.Event
}

var queryCommands = []cli.Command{
	{
		Name:  "reward",
		Usage: "Show the reward an account has accrued since its last settlement.",
		Flags: []cli.Flag{
			homeCliFlag,
			cli.StringFlag{
				Name:     accountFlag,
				Usage:    "The staking account",
				Required: true,
			},
		},
		Action: queryReward,
	},
	{
		Name:  "staker-info",
		Usage: "Show the record of a staking account.",
		Flags: []cli.Flag{
			homeCliFlag,
			cli.StringFlag{
				Name:     accountFlag,
				Usage:    "The staking account",
				Required: true,
			},
		},
		Action: queryStakerInfo,
	},
	{
		Name:   "pool-info",
		Usage:  "Show the pool parameters, the total stake and the reserve.",
		Flags:  []cli.Flag{homeCliFlag},
		Action: queryPoolInfo,
	},
	{
		Name:  "balance",
		Usage: "Show the bank balance of an account, or of every account if none is given.",
		Flags: []cli.Flag{
			homeCliFlag,
			cli.StringFlag{
				Name:  accountFlag,
				Usage: "The account to look up",
			},
		},
		Action: queryBalance,
	},
	{
		Name:  "events",
		Usage: "List the persisted ledger events in commit order.",
		Flags: []cli.Flag{
			homeCliFlag,
			cli.Uint64Flag{
				Name:  afterFlag,
				Usage: "Only list events with a sequence number above this one",
			},
			cli.Uint64Flag{
				Name:  limitFlag,
				Usage: "The maximum number of events to list",
				Value: defaultEventsLim,
			},
		},
		Action: queryEvents,
	},
}

func queryReward(ctx *cli.Context) error {
	acc, err := requiredAccount(ctx, accountFlag)
	if err != nil {
		return err
	}

	return runQuery(ctx, func(s *session) (interface{}, error) {
		reward, err := s.engine.CalculateReward(acc)
		if err != nil {
			return nil, err
		}
		return &rewardResp{Account: acc, PendingReward: reward}, nil
	})
}

func queryStakerInfo(ctx *cli.Context) error {
	acc, err := requiredAccount(ctx, accountFlag)
	if err != nil {
		return err
	}

	return runQuery(ctx, func(s *session) (interface{}, error) {
		return s.engine.StakerInfo(acc)
	})
}

func queryPoolInfo(ctx *cli.Context) error {
	return runQuery(ctx, func(s *session) (interface{}, error) {
		return newPoolResp(s.engine.PoolInfo(), s.engine.Reserve(), s.engine.Admin()), nil
	})
}

func queryBalance(ctx *cli.Context) error {
	acc := types.Account(ctx.String(accountFlag))

	return runQuery(ctx, func(s *session) (interface{}, error) {
		if acc != "" {
			return &balanceResp{Account: acc, Balance: s.bank.Balance(acc)}, nil
		}

		accounts := s.bank.Accounts()
		resp := make([]*balanceResp, 0, len(accounts))
		for _, a := range accounts {
			resp = append(resp, &balanceResp{Account: a, Balance: s.bank.Balance(a)})
		}
		return resp, nil
	})
}

func queryEvents(ctx *cli.Context) error {
	after := ctx.Uint64(afterFlag)
	limit := ctx.Uint64(limitFlag)

	return runQuery(ctx, func(s *session) (interface{}, error) {
		events, err := s.store.Events(after, limit)
		if err != nil {
			return nil, err
		}

		resp := make([]*eventResp, 0, len(events))
		for i, ev := range events {
			resp = append(resp, &eventResp{Seq: after + uint64(i) + 1, Event: ev})
		}
		return resp, nil
	})
}
