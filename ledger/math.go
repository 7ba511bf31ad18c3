package ledger

import (
	"math/big"

	sdkmath "cosmossdk.io/math"
)

// maxUintBitLen is the width of sdkmath.Uint
const maxUintBitLen = 256

func toUint(i *big.Int) (sdkmath.Uint, error) {
	if i.Sign() < 0 || i.BitLen() > maxUintBitLen {
		return sdkmath.Uint{}, ErrArithmeticOverflow
	}
	return sdkmath.NewUintFromBigInt(i), nil
}

func addUint(a, b sdkmath.Uint) (sdkmath.Uint, error) {
	return toUint(new(big.Int).Add(a.BigInt(), b.BigInt()))
}

func subUint(a, b sdkmath.Uint) (sdkmath.Uint, error) {
	return toUint(new(big.Int).Sub(a.BigInt(), b.BigInt()))
}

func addTime(t, d uint64) (uint64, error) {
	sum := t + d
	if sum < t {
		return 0, ErrArithmeticOverflow
	}
	return sum, nil
}
