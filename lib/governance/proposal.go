package governance

import (
	"time"

	"boscoin.io/govern/lib/common"
	"boscoin.io/govern/lib/errors"
)

type Status string

const (
	StatusOpen      Status = "open"
	StatusExpired   Status = "expired"
	StatusFinalized Status = "finalized"
)

// Proposal asks the treasury to pay `Amount` to `Recipient`. Everything but
// the vote accumulators and the finalization fields is fixed at creation.
type Proposal struct {
	ID           uint64         `json:"id"`
	Name         string         `json:"name"`
	Amount       common.Amount  `json:"amount"`
	Recipient    common.Address `json:"recipient"`
	Creator      common.Address `json:"creator"`
	VotesFor     common.Amount  `json:"votes_for"`
	VotesAgainst common.Amount  `json:"votes_against"`
	VotesAbstain common.Amount  `json:"votes_abstain"`
	CreatedAt    time.Time      `json:"created_at"`
	Deadline     time.Time      `json:"deadline"`
	Finalized    bool           `json:"finalized"`
	FinalizedAt  time.Time      `json:"finalized_at"`
}

func (p *Proposal) Clone() *Proposal {
	c := *p
	return &c
}

func (p *Proposal) String() string {
	return string(common.MustMarshalJSON(p))
}

// Status is for display only; an expired proposal can still be finalized.
func (p *Proposal) Status(now time.Time) Status {
	switch {
	case p.Finalized:
		return StatusFinalized
	case now.After(p.Deadline):
		return StatusExpired
	default:
		return StatusOpen
	}
}

// IsVotingOpen is true until and including the deadline.
func (p *Proposal) IsVotingOpen(now time.Time) bool {
	return !now.After(p.Deadline)
}

func (p *Proposal) Remaining(now time.Time) time.Duration {
	if d := p.Deadline.Sub(now); d > 0 {
		return d
	}
	return 0
}

// TotalVotes is the sum of the three accumulators.
func (p *Proposal) TotalVotes() common.Amount {
	return p.VotesFor.MustAdd(p.VotesAgainst).MustAdd(p.VotesAbstain)
}

// addVote returns the accumulators after counting `weight` for `voteType`;
// `p` is left untouched.
func (p *Proposal) addVote(voteType VoteType, weight common.Amount) (*Proposal, error) {
	n := p.Clone()

	var err error
	switch voteType {
	case VoteFor:
		n.VotesFor, err = p.VotesFor.Add(weight)
	case VoteAgainst:
		n.VotesAgainst, err = p.VotesAgainst.Add(weight)
	case VoteAbstain:
		n.VotesAbstain, err = p.VotesAbstain.Add(weight)
	default:
		return nil, errors.InvalidVoteType.Clone().SetData("vote_type", uint8(voteType))
	}
	if err != nil {
		return nil, err
	}

	return n, nil
}
