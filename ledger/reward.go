package ledger

import (
	"math/big"

	sdkmath "cosmossdk.io/math"

	"github.com/babylonchain/staking-ledger/types"
)

var (
	basisPoints    = new(big.Int).SetUint64(types.BasisPoints)
	secondsPerYear = new(big.Int).SetUint64(types.SecondsPerYear)
)

// pendingReward computes the reward accrued by the record since its last
// settlement:
//
//	staked * rate * elapsed / BasisPoints / SecondsPerYear
//
// Both divisions truncate, so the remainder is never paid out. A record with
// no principal or that has never been settled accrues nothing. A clock that
// reads earlier than the last settlement yields an empty window.
func pendingReward(rec *types.StakerRecord, rewardRate uint64, now uint64) (sdkmath.Uint, error) {
	if !rec.HasStake() || rec.LastClaimTime == 0 || now <= rec.LastClaimTime {
		return sdkmath.ZeroUint(), nil
	}
	elapsed := now - rec.LastClaimTime

	// every intermediate product has to stay in range
	product, err := toUint(new(big.Int).Mul(rec.StakedAmount.BigInt(), new(big.Int).SetUint64(rewardRate)))
	if err != nil {
		return sdkmath.Uint{}, err
	}
	product, err = toUint(new(big.Int).Mul(product.BigInt(), new(big.Int).SetUint64(elapsed)))
	if err != nil {
		return sdkmath.Uint{}, err
	}

	reward := product.BigInt()
	reward.Quo(reward, basisPoints)
	reward.Quo(reward, secondsPerYear)

	return sdkmath.NewUintFromBigInt(reward), nil
}
