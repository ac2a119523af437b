package metrics

import (
	"strconv"

	"github.com/go-kit/kit/metrics"
	"github.com/go-kit/kit/metrics/discard"
	prometheus "github.com/go-kit/kit/metrics/prometheus"
	stdprometheus "github.com/prometheus/client_golang/prometheus"
)

type GovernanceMetrics struct {
	Proposals     metrics.Counter
	Votes         metrics.Counter
	VotesWeight   metrics.Counter
	Finalizations metrics.Counter
	Rejections    metrics.Counter
	OpenProposals metrics.Gauge
	EventHeight   metrics.Gauge
}

func (m *GovernanceMetrics) AddProposal() {
	m.Proposals.Add(1)
	m.OpenProposals.Add(1)
}

// AddVote counts one vote; `weight` is in whole tokens.
func (m *GovernanceMetrics) AddVote(voteType string, weight float64) {
	m.Votes.With(LabelVoteType, voteType).Add(1)
	m.VotesWeight.With(LabelVoteType, voteType).Add(weight)
}

func (m *GovernanceMetrics) AddFinalization() {
	m.Finalizations.Add(1)
	m.OpenProposals.Add(-1)
}

func (m *GovernanceMetrics) AddRejection(command string, code uint) {
	m.Rejections.With(LabelCommand, command, LabelCode, strconv.FormatUint(uint64(code), 10)).Add(1)
}

func (m *GovernanceMetrics) SetEventHeight(seq uint64) {
	m.EventHeight.Set(float64(seq))
}

func PromGovernanceMetrics() *GovernanceMetrics {
	return &GovernanceMetrics{
		Proposals: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: GovernanceSubsystem,
			Name:      "proposals_total",
			Help:      "Number of created proposals.",
		}, []string{}),
		Votes: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: GovernanceSubsystem,
			Name:      "votes_total",
			Help:      "Number of accepted votes.",
		}, []string{LabelVoteType}),
		VotesWeight: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: GovernanceSubsystem,
			Name:      "votes_weight_tokens_total",
			Help:      "Voting power counted, in tokens.",
		}, []string{LabelVoteType}),
		Finalizations: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: GovernanceSubsystem,
			Name:      "finalizations_total",
			Help:      "Number of finalized proposals.",
		}, []string{}),
		Rejections: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: GovernanceSubsystem,
			Name:      "rejections_total",
			Help:      "Number of rejected commands.",
		}, []string{LabelCommand, LabelCode}),
		OpenProposals: prometheus.NewGaugeFrom(stdprometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: GovernanceSubsystem,
			Name:      "open_proposals",
			Help:      "Number of proposals not finalized yet.",
		}, []string{}),
		EventHeight: prometheus.NewGaugeFrom(stdprometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: GovernanceSubsystem,
			Name:      "event_height",
			Help:      "Sequence of the last governance event.",
		}, []string{}),
	}
}

func NopGovernanceMetrics() *GovernanceMetrics {
	return &GovernanceMetrics{
		Proposals:     discard.NewCounter(),
		Votes:         discard.NewCounter(),
		VotesWeight:   discard.NewCounter(),
		Finalizations: discard.NewCounter(),
		Rejections:    discard.NewCounter(),
		OpenProposals: discard.NewGauge(),
		EventHeight:   discard.NewGauge(),
	}
}
