package governance

import (
	"boscoin.io/govern/lib/common"
	"boscoin.io/govern/lib/errors"
)

// QuorumPolicy decides whether a proposal gathered enough "for" weight.
// Against and abstain weights never count.
type QuorumPolicy struct {
	threshold common.Amount
}

func NewQuorumPolicy(threshold common.Amount) (QuorumPolicy, error) {
	if threshold.IsZero() {
		return QuorumPolicy{}, errors.InvalidQuorum.Clone().SetData("quorum", threshold.String())
	}

	return QuorumPolicy{threshold: threshold}, nil
}

func (q QuorumPolicy) Threshold() common.Amount {
	return q.threshold
}

func (q QuorumPolicy) Met(votesFor common.Amount) bool {
	return votesFor.Cmp(q.threshold) >= 0
}
