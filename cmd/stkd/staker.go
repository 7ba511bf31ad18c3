package main

import (
	sdkmath "cosmossdk.io/math"
	"github.com/urfave/cli"

	"github.com/babylonchain/staking-ledger/types"
	"github.com/babylonchain/staking-ledger/util"
)

type payoutResp struct {
	Account types.Account     `json:"account"`
	Reward  sdkmath.Uint      `json:"reward"`
	Staker  *types.StakerInfo `json:"staker"`
}

var stakerCommands = []cli.Command{
	{
		Name:  "stake",
		Usage: "Lock funds into the pool, compounding any pending reward.",
		Flags: []cli.Flag{
			homeCliFlag,
			cli.StringFlag{
				Name:     accountFlag,
				Usage:    "The staking account",
				Required: true,
			},
			cli.StringFlag{
				Name:     amountFlag,
				Usage:    "The amount to stake",
				Required: true,
			},
		},
		Action: stake,
	},
	{
		Name:  "unstake",
		Usage: "Withdraw staked funds together with the pending reward.",
		Flags: []cli.Flag{
			homeCliFlag,
			cli.StringFlag{
				Name:     accountFlag,
				Usage:    "The staking account",
				Required: true,
			},
			cli.StringFlag{
				Name:     amountFlag,
				Usage:    "The amount to withdraw",
				Required: true,
			},
		},
		Action: unstake,
	},
	{
		Name:  "claim",
		Usage: "Pay out the pending reward without touching the stake.",
		Flags: []cli.Flag{
			homeCliFlag,
			cli.StringFlag{
				Name:     accountFlag,
				Usage:    "The staking account",
				Required: true,
			},
		},
		Action: claim,
	},
	{
		Name:  "deposit",
		Usage: "Send funds to the ledger reserve from any account.",
		Flags: []cli.Flag{
			homeCliFlag,
			cli.StringFlag{
				Name:     accountFlag,
				Usage:    "The sending account",
				Required: true,
			},
			cli.StringFlag{
				Name:     amountFlag,
				Usage:    "The amount to deposit",
				Required: true,
			},
		},
		Action: deposit,
	},
}

func stake(ctx *cli.Context) error {
	acc, err := requiredAccount(ctx, accountFlag)
	if err != nil {
		return err
	}
	amount, err := util.ParseAmount(ctx.String(amountFlag))
	if err != nil {
		return err
	}

	return runMutation(ctx, func(s *session) (interface{}, error) {
		if err := s.engine.Stake(acc, amount); err != nil {
			return nil, err
		}
		return s.engine.StakerInfo(acc)
	})
}

func unstake(ctx *cli.Context) error {
	acc, err := requiredAccount(ctx, accountFlag)
	if err != nil {
		return err
	}
	amount, err := util.ParseAmount(ctx.String(amountFlag))
	if err != nil {
		return err
	}

	return runMutation(ctx, func(s *session) (interface{}, error) {
		reward, err := s.engine.Unstake(acc, amount)
		if err != nil {
			return nil, err
		}
		info, err := s.engine.StakerInfo(acc)
		if err != nil {
			return nil, err
		}
		return &payoutResp{Account: acc, Reward: reward, Staker: info}, nil
	})
}

func claim(ctx *cli.Context) error {
	acc, err := requiredAccount(ctx, accountFlag)
	if err != nil {
		return err
	}

	return runMutation(ctx, func(s *session) (interface{}, error) {
		reward, err := s.engine.ClaimRewards(acc)
		if err != nil {
			return nil, err
		}
		info, err := s.engine.StakerInfo(acc)
		if err != nil {
			return nil, err
		}
		return &payoutResp{Account: acc, Reward: reward, Staker: info}, nil
	})
}

func deposit(ctx *cli.Context) error {
	acc, err := requiredAccount(ctx, accountFlag)
	if err != nil {
		return err
	}
	amount, err := util.ParseAmount(ctx.String(amountFlag))
	if err != nil {
		return err
	}

	return runMutation(ctx, func(s *session) (interface{}, error) {
		if err := s.engine.Receive(acc, amount); err != nil {
			return nil, err
		}
		return &reserveResp{Reserve: s.engine.Reserve()}, nil
	})
}
