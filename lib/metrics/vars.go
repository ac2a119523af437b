package metrics

var (
	Governance = NopGovernanceMetrics()
	Treasury   = NopTreasuryMetrics()
)
