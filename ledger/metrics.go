package ledger

import (
	"math/big"

	sdkmath "cosmossdk.io/math"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/babylonchain/staking-ledger/types"
)

var (
	// Prometheus metrics
	totalOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sl_total_operations",
			Help: "Total number of committed ledger operations",
		},
		[]string{"event"},
	)
	rejectedOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sl_total_rejected_operations",
			Help: "Total number of rejected ledger operations",
		},
		[]string{"operation"},
	)
	failedTransfers = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sl_total_failed_transfers",
		Help: "Total number of outbound transfers that did not succeed",
	})
	totalStaked = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sl_total_staked",
		Help: "The principal currently staked in the pool",
	})
	reserveFunds = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sl_reserve",
		Help: "The value held by the ledger",
	})
)

func uintToFloat(u sdkmath.Uint) float64 {
	f, _ := new(big.Float).SetInt(u.BigInt()).Float64()
	return f
}

func (e *Engine) recordMetricsOperation(kind types.EventKind) {
	totalOperations.WithLabelValues(string(kind)).Inc()
}

func (e *Engine) recordMetricsRejected(op string) {
	rejectedOperations.WithLabelValues(op).Inc()
}

func (e *Engine) recordMetricsFailedTransfer() {
	failedTransfers.Inc()
}

func (e *Engine) recordMetricsPool(staked, reserve sdkmath.Uint) {
	totalStaked.Set(uintToFloat(staked))
	reserveFunds.Set(uintToFloat(reserve))
}
