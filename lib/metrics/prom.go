package metrics

import "sync"

var initOnce sync.Once

// InitPrometheusMetrics swaps the no-op metrics for ones registered in the
// default prometheus registry. Calling it more than once is harmless.
func InitPrometheusMetrics() {
	initOnce.Do(func() {
		Version = PromVersion()
		Governance = PromGovernanceMetrics()
		Treasury = PromTreasuryMetrics()
	})
}
