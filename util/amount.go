package util

import (
	"fmt"
	"math/big"

	sdkmath "cosmossdk.io/math"
	"github.com/shopspring/decimal"

	"github.com/babylonchain/staking-ledger/types"
)

// ParseAmount parses a base-10 amount in the smallest value unit
func ParseAmount(s string) (sdkmath.Uint, error) {
	if s == "" {
		return sdkmath.Uint{}, fmt.Errorf("empty amount")
	}
	amount, err := sdkmath.ParseUint(s)
	if err != nil {
		return sdkmath.Uint{}, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return amount, nil
}

// AnnualPercentage renders a reward rate in basis points as a yearly
// percentage, e.g. 10 -> "0.1"
func AnnualPercentage(rewardRate uint64) string {
	rate := decimal.NewFromBigInt(new(big.Int).SetUint64(rewardRate), 0)
	return rate.Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromBigInt(new(big.Int).SetUint64(types.BasisPoints), 0)).
		String()
}
