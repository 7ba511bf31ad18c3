package main

import (
	"fmt"

	sdkmath "cosmossdk.io/math"
	"github.com/urfave/cli"

	"github.com/babylonchain/staking-ledger/types"
	"github.com/babylonchain/staking-ledger/util"
)

type reserveResp struct {
	Reserve sdkmath.Uint `json:"reserve"`
}

type adminResp struct {
	Admin types.Account `json:"admin"`
}

var callerCliFlag = cli.StringFlag{
	Name:     callerFlag,
	Usage:    "The account issuing the call, which should hold the administrator capability",
	Required: true,
}

var adminCommands = []cli.Command{
	{
		Name:  "update-pool",
		Usage: "Replace the pool parameters. Parameters that are not given keep their current value.",
		Flags: []cli.Flag{
			homeCliFlag,
			callerCliFlag,
			cli.Uint64Flag{
				Name:  rewardRateFlag,
				Usage: "The annual reward rate in basis points",
			},
			cli.StringFlag{
				Name:  minStakeFlag,
				Usage: "The minimum amount of a single stake",
			},
			cli.Uint64Flag{
				Name:  lockPeriodFlag,
				Usage: "The lock period in seconds",
			},
		},
		Action: updatePool,
	},
	{
		Name:  "fund",
		Usage: "Add reward funds to the ledger reserve.",
		Flags: []cli.Flag{
			homeCliFlag,
			callerCliFlag,
			cli.StringFlag{
				Name:     amountFlag,
				Usage:    "The amount to add",
				Required: true,
			},
		},
		Action: fund,
	},
	{
		Name:  "emergency-withdraw",
		Usage: "Move funds out of the ledger reserve to the administrator.",
		Flags: []cli.Flag{
			homeCliFlag,
			callerCliFlag,
			cli.StringFlag{
				Name:     amountFlag,
				Usage:    "The amount to withdraw",
				Required: true,
			},
		},
		Action: emergencyWithdraw,
	},
	{
		Name:  "transfer-admin",
		Usage: "Hand the administrator capability to another account.",
		Flags: []cli.Flag{
			homeCliFlag,
			callerCliFlag,
			cli.StringFlag{
				Name:     newAdminFlag,
				Usage:    "The account receiving the capability",
				Required: true,
			},
		},
		Action: transferAdmin,
	},
}

func updatePool(ctx *cli.Context) error {
	caller, err := requiredAccount(ctx, callerFlag)
	if err != nil {
		return err
	}

	var minStake *sdkmath.Uint
	if ctx.IsSet(minStakeFlag) {
		amount, err := util.ParseAmount(ctx.String(minStakeFlag))
		if err != nil {
			return err
		}
		minStake = &amount
	}

	return runMutation(ctx, func(s *session) (interface{}, error) {
		current := s.engine.PoolInfo()
		params := types.PoolParams{
			RewardRate:         current.RewardRate,
			MinimumStakeAmount: current.MinimumStakeAmount,
			LockPeriod:         current.LockPeriod,
		}
		if ctx.IsSet(rewardRateFlag) {
			params.RewardRate = ctx.Uint64(rewardRateFlag)
		}
		if minStake != nil {
			params.MinimumStakeAmount = *minStake
		}
		if ctx.IsSet(lockPeriodFlag) {
			params.LockPeriod = ctx.Uint64(lockPeriodFlag)
		}

		if err := s.engine.UpdatePool(caller, params); err != nil {
			return nil, err
		}
		return newPoolResp(s.engine.PoolInfo(), s.engine.Reserve(), s.engine.Admin()), nil
	})
}

func fund(ctx *cli.Context) error {
	caller, err := requiredAccount(ctx, callerFlag)
	if err != nil {
		return err
	}
	amount, err := util.ParseAmount(ctx.String(amountFlag))
	if err != nil {
		return err
	}

	return runMutation(ctx, func(s *session) (interface{}, error) {
		if err := s.engine.AddRewardFunds(caller, amount); err != nil {
			return nil, err
		}
		return &reserveResp{Reserve: s.engine.Reserve()}, nil
	})
}

func emergencyWithdraw(ctx *cli.Context) error {
	caller, err := requiredAccount(ctx, callerFlag)
	if err != nil {
		return err
	}
	amount, err := util.ParseAmount(ctx.String(amountFlag))
	if err != nil {
		return err
	}

	return runMutation(ctx, func(s *session) (interface{}, error) {
		if err := s.engine.EmergencyWithdraw(caller, amount); err != nil {
			return nil, err
		}
		return &reserveResp{Reserve: s.engine.Reserve()}, nil
	})
}

func transferAdmin(ctx *cli.Context) error {
	caller, err := requiredAccount(ctx, callerFlag)
	if err != nil {
		return err
	}
	next, err := requiredAccount(ctx, newAdminFlag)
	if err != nil {
		return err
	}
	if caller == next {
		return fmt.Errorf("%s already holds the administrator capability", caller)
	}

	return runMutation(ctx, func(s *session) (interface{}, error) {
		if err := s.engine.TransferAdmin(caller, next); err != nil {
			return nil, err
		}
		return &adminResp{Admin: s.engine.Admin()}, nil
	})
}
