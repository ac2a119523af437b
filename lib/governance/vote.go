package governance

import (
	"fmt"
	"strings"
	"time"

	"boscoin.io/govern/lib/common"
	"boscoin.io/govern/lib/errors"
)

type VoteType uint8

const (
	VoteFor VoteType = iota
	VoteAgainst
	VoteAbstain
)

func (v VoteType) IsValid() bool {
	return v <= VoteAbstain
}

func (v VoteType) String() string {
	switch v {
	case VoteFor:
		return "for"
	case VoteAgainst:
		return "against"
	case VoteAbstain:
		return "abstain"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(v))
	}
}

// ParseVoteType accepts the names ("for", "against", "abstain") and the
// numeric forms ("0", "1", "2").
func ParseVoteType(s string) (VoteType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "for", "0":
		return VoteFor, nil
	case "against", "1":
		return VoteAgainst, nil
	case "abstain", "2":
		return VoteAbstain, nil
	default:
		return 0, errors.InvalidVoteType.Clone().SetData("vote_type", s)
	}
}

// VoteRecord is written once per (proposal, voter) and never changes.
type VoteRecord struct {
	ProposalID uint64         `json:"proposal_id"`
	Voter      common.Address `json:"voter"`
	Type       VoteType       `json:"type"`
	Weight     common.Amount  `json:"weight"`
	CastAt     time.Time      `json:"cast_at"`
}
