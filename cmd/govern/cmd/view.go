package cmd

import (
	"boscoin.io/govern/lib/common"
	"boscoin.io/govern/lib/governance"
)

// ProposalView is a proposal as printed by the commands, with what is
// derived from the current time and the ledgers.
type ProposalView struct {
	*governance.Proposal

	Status          governance.Status        `json:"status"`
	Remaining       string                   `json:"remaining"`
	Quorum          common.Amount            `json:"quorum"`
	QuorumMet       bool                     `json:"quorum_met"`
	RecipientTokens common.Amount            `json:"recipient_tokens"`
	HasVoted        *bool                    `json:"has_voted,omitempty"`
	Votes           []*governance.VoteRecord `json:"votes,omitempty"`
}

type BalanceView struct {
	Address  common.Address `json:"address"`
	Tokens   common.Amount  `json:"tokens"`
	Coins    common.Amount  `json:"coins"`
	Treasury bool           `json:"treasury,omitempty"`
}

type TreasuryView struct {
	Address common.Address `json:"address"`
	Balance common.Amount  `json:"balance"`
}

func (s *state) proposalView(p *governance.Proposal, voter *common.Address, withVotes bool) (*ProposalView, error) {
	now := s.now()

	view := &ProposalView{
		Proposal:  p,
		Status:    p.Status(now),
		Remaining: common.FormatRemaining(now, p.Deadline),
		Quorum:    s.engine.Quorum(),
		QuorumMet: p.VotesFor.Cmp(s.engine.Quorum()) >= 0,
	}
	if p.Finalized {
		view.Remaining = ""
	}

	var err error
	if view.RecipientTokens, err = s.token.BalanceOf(p.Recipient); err != nil {
		return nil, err
	}

	if voter != nil {
		var voted bool
		if voted, err = s.engine.HasVoted(*voter, p.ID); err != nil {
			return nil, err
		}
		view.HasVoted = &voted
	}

	if withVotes {
		if view.Votes, err = s.engine.ListVotes(p.ID); err != nil {
			return nil, err
		}
	}

	return view, nil
}

func (s *state) balanceView(address common.Address) (view BalanceView, err error) {
	view.Address = address
	view.Treasury = address == s.treasury.Address()

	if view.Tokens, err = s.token.BalanceOf(address); err != nil {
		return
	}
	view.Coins, err = s.coin.BalanceOf(address)

	return
}

func (s *state) treasuryView() (view TreasuryView, err error) {
	view.Address = s.treasury.Address()
	view.Balance, err = s.treasury.Balance()

	return
}
