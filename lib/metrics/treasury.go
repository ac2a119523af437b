package metrics

import (
	"github.com/go-kit/kit/metrics"
	"github.com/go-kit/kit/metrics/discard"
	prometheus "github.com/go-kit/kit/metrics/prometheus"
	stdprometheus "github.com/prometheus/client_golang/prometheus"
)

type TreasuryMetrics struct {
	Balance     metrics.Gauge
	Disbursed   metrics.Counter
	TransferErr metrics.Counter
}

// SetBalance records the treasury balance in whole tokens.
func (m *TreasuryMetrics) SetBalance(tokens float64) {
	m.Balance.Set(tokens)
}

func (m *TreasuryMetrics) AddDisbursed(tokens float64) {
	m.Disbursed.Add(tokens)
}

func (m *TreasuryMetrics) AddTransferError() {
	m.TransferErr.Add(1)
}

func PromTreasuryMetrics() *TreasuryMetrics {
	return &TreasuryMetrics{
		Balance: prometheus.NewGaugeFrom(stdprometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: TreasurySubsystem,
			Name:      "balance_tokens",
			Help:      "Treasury balance, in tokens.",
		}, []string{}),
		Disbursed: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: TreasurySubsystem,
			Name:      "disbursed_tokens_total",
			Help:      "Funds released by finalized proposals, in tokens.",
		}, []string{}),
		TransferErr: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: TreasurySubsystem,
			Name:      "transfer_errors_total",
			Help:      "Number of failed treasury transfers.",
		}, []string{}),
	}
}

func NopTreasuryMetrics() *TreasuryMetrics {
	return &TreasuryMetrics{
		Balance:     discard.NewGauge(),
		Disbursed:   discard.NewCounter(),
		TransferErr: discard.NewCounter(),
	}
}
