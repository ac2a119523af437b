package governance

import (
	"strings"
	"sync"
	"time"

	"github.com/GianlucaGuarini/go-observable"

	"boscoin.io/govern/lib/common"
	"boscoin.io/govern/lib/common/observer"
	"boscoin.io/govern/lib/errors"
	"boscoin.io/govern/lib/metrics"
	"boscoin.io/govern/lib/storage"
)

const (
	CommandCreate   = "create"
	CommandVote     = "vote"
	CommandFinalize = "finalize"
)

// Engine runs the proposal lifecycle: creation, token weighted voting until
// the deadline, and finalization paying the treasury out to the recipient.
//
// Commands hold the write lock for their whole duration, the treasury
// transfer included; queries share the read lock.
type Engine struct {
	sync.RWMutex

	config   Config
	quorum   QuorumPolicy
	store    *Store
	power    VotingPower
	treasury Treasury
	clock    common.Clock
	observer *observable.Observable
}

func NewEngine(st *storage.LevelDBBackend, power VotingPower, treasury Treasury, config Config) (*Engine, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	quorum, err := NewQuorumPolicy(config.Quorum)
	if err != nil {
		return nil, err
	}

	store, err := NewStore(st, config.CacheSize)
	if err != nil {
		return nil, err
	}

	return &Engine{
		config:   config,
		quorum:   quorum,
		store:    store,
		power:    power,
		treasury: treasury,
		clock:    common.SystemClock{},
		observer: observer.GovernanceObserver,
	}, nil
}

func (e *Engine) SetClock(clock common.Clock) *Engine {
	e.Lock()
	defer e.Unlock()

	e.clock = clock
	return e
}

// SetObserver replaces `observer.GovernanceObserver`. Subscribers are called
// while the engine still holds its write lock, so they must not call back
// into the engine; the event and the resulting proposal are passed to them.
func (e *Engine) SetObserver(o *observable.Observable) *Engine {
	e.Lock()
	defer e.Unlock()

	e.observer = o
	return e
}

func (e *Engine) now() time.Time {
	return e.clock.Now().UTC()
}

func (e *Engine) reject(command string, err error, ctx ...interface{}) error {
	metrics.Governance.AddRejection(command, errors.Code(err))
	log.Debug("command rejected", append([]interface{}{"command", command, "error", err}, ctx...)...)

	return err
}

// checkInvestor returns the voting power of `caller`, which must be positive.
func (e *Engine) checkInvestor(caller common.Address) (common.Amount, error) {
	power, err := e.power.BalanceOf(caller)
	if err != nil {
		return common.ZeroAmount, err
	}
	if power.IsZero() {
		return common.ZeroAmount, errors.NotAnInvestor.Clone().SetData("address", caller.Hex())
	}

	return power, nil
}

func (e *Engine) commit(p *Proposal, event *Event, vote *VoteRecord) (err error) {
	var tx *StoreTx
	if tx, err = e.store.Begin(); err != nil {
		return
	}

	defer func() {
		if err != nil {
			tx.Discard()
		}
	}()

	if p.ID == 0 {
		if err = tx.NewProposal(p); err != nil {
			return
		}
		event.ProposalID = p.ID
	} else if err = tx.UpdateProposal(p); err != nil {
		return
	}

	if vote != nil {
		if err = tx.NewVote(vote); err != nil {
			return
		}
	}

	if err = tx.AppendEvent(event); err != nil {
		return
	}

	err = tx.Commit()
	return
}

func (e *Engine) publish(event *Event, p *Proposal) {
	metrics.Governance.SetEventHeight(event.Seq)

	if e.observer == nil {
		return
	}

	e.observer.Trigger(
		observer.Names(string(event.Kind), observer.ProposalEvent(p.ID)),
		event,
		p.Clone(),
	)
}

func (e *Engine) updateTreasuryMetrics() {
	if balance, err := e.treasury.Balance(); err == nil {
		metrics.Treasury.SetBalance(balance.TokensFloat())
	}
}

// CreateProposal opens a new proposal asking the treasury for `amount` to be
// paid to `recipient`.
func (e *Engine) CreateProposal(caller common.Address, name string, amount common.Amount, recipient common.Address) (*Proposal, error) {
	e.Lock()
	defer e.Unlock()

	if _, err := e.checkInvestor(caller); err != nil {
		return nil, e.reject(CommandCreate, err, "caller", caller)
	}

	if len(strings.TrimSpace(name)) < 1 {
		return nil, e.reject(CommandCreate, errors.InvalidProposal.Clone().SetData("reason", "empty name"))
	}
	if amount.IsZero() {
		return nil, e.reject(CommandCreate, errors.InvalidProposal.Clone().SetData("reason", "zero amount"))
	}
	if common.IsZeroAddress(recipient) {
		return nil, e.reject(CommandCreate, errors.InvalidProposal.Clone().SetData("reason", "zero recipient"))
	}

	balance, err := e.treasury.Balance()
	if err != nil {
		return nil, e.reject(CommandCreate, err)
	}
	if amount.Cmp(balance) > 0 {
		return nil, e.reject(
			CommandCreate,
			errors.InvalidProposal.Clone().
				SetData("reason", "amount exceeds treasury balance").
				SetData("amount", amount.String()).
				SetData("balance", balance.String()),
		)
	}

	now := e.now()
	p := &Proposal{
		Name:         name,
		Amount:       amount,
		Recipient:    recipient,
		Creator:      caller,
		VotesFor:     common.ZeroAmount,
		VotesAgainst: common.ZeroAmount,
		VotesAbstain: common.ZeroAmount,
		CreatedAt:    now,
		Deadline:     now.Add(e.config.VotingPeriod),
	}

	event := &Event{
		Kind:      EventProposed,
		Amount:    amount,
		Recipient: recipient,
		Creator:   caller,
		Time:      now,
	}

	if err = e.commit(p, event, nil); err != nil {
		log.Error("failed to store new proposal", "error", err)
		return nil, e.reject(CommandCreate, err)
	}

	log.Info(
		"proposal created",
		"id", p.ID,
		"name", p.Name,
		"amount", p.Amount,
		"recipient", p.Recipient,
		"creator", caller,
		"deadline", p.Deadline,
	)
	metrics.Governance.AddProposal()
	e.publish(event, p)

	return p.Clone(), nil
}

// Vote adds the current voting power of `caller` to one of the accumulators
// of proposal `id`. Votes are accepted until the deadline, inclusive.
func (e *Engine) Vote(caller common.Address, id uint64, voteType VoteType) (*Proposal, error) {
	e.Lock()
	defer e.Unlock()

	if !voteType.IsValid() {
		return nil, e.reject(CommandVote, errors.InvalidVoteType.Clone().SetData("vote_type", uint8(voteType)))
	}

	power, err := e.checkInvestor(caller)
	if err != nil {
		return nil, e.reject(CommandVote, err, "caller", caller)
	}

	p, err := e.store.GetProposal(id)
	if err != nil {
		return nil, e.reject(CommandVote, err, "id", id)
	}

	voted, err := e.store.HasVoted(id, caller)
	if err != nil {
		return nil, e.reject(CommandVote, err)
	}
	if voted {
		return nil, e.reject(
			CommandVote,
			errors.AlreadyVoted.Clone().SetData("id", id).SetData("voter", caller.Hex()),
		)
	}

	now := e.now()
	if !p.IsVotingOpen(now) {
		return nil, e.reject(
			CommandVote,
			errors.VotingClosed.Clone().SetData("id", id).SetData("deadline", common.FormatISO8601(p.Deadline)),
		)
	}

	updated, err := p.addVote(voteType, power)
	if err != nil {
		return nil, e.reject(CommandVote, err)
	}

	record := &VoteRecord{
		ProposalID: id,
		Voter:      caller,
		Type:       voteType,
		Weight:     power,
		CastAt:     now,
	}
	event := &Event{
		Kind:       EventVoted,
		ProposalID: id,
		Voter:      caller,
		VoteType:   voteType,
		Weight:     power,
		Time:       now,
	}

	if err = e.commit(updated, event, record); err != nil {
		log.Error("failed to store vote", "id", id, "voter", caller, "error", err)
		return nil, e.reject(CommandVote, err)
	}

	log.Info("voted", "id", id, "voter", caller, "type", voteType, "weight", power)
	metrics.Governance.AddVote(voteType.String(), power.TokensFloat())
	e.publish(event, updated)

	return updated.Clone(), nil
}

// FinalizeProposal pays the proposal out once "for" votes reach the quorum.
// The deadline does not matter here. The treasury transfer happens first;
// the proposal is flagged only when it succeeded.
func (e *Engine) FinalizeProposal(caller common.Address, id uint64) (*Proposal, error) {
	e.Lock()
	defer e.Unlock()

	if _, err := e.checkInvestor(caller); err != nil {
		return nil, e.reject(CommandFinalize, err, "caller", caller)
	}

	p, err := e.store.GetProposal(id)
	if err != nil {
		return nil, e.reject(CommandFinalize, err, "id", id)
	}

	if p.Finalized {
		return nil, e.reject(CommandFinalize, errors.AlreadyFinalized.Clone().SetData("id", id))
	}

	if !e.quorum.Met(p.VotesFor) {
		return nil, e.reject(
			CommandFinalize,
			errors.QuorumNotMet.Clone().
				SetData("id", id).
				SetData("votes_for", p.VotesFor.String()).
				SetData("quorum", e.quorum.Threshold().String()),
		)
	}

	if err = e.treasury.Transfer(p.Recipient, p.Amount); err != nil {
		metrics.Treasury.AddTransferError()
		log.Error("treasury transfer failed", "id", id, "recipient", p.Recipient, "amount", p.Amount, "error", err)
		return nil, e.reject(CommandFinalize, errors.TransferFailed.Wrap(err).SetData("id", id))
	}

	now := e.now()
	finalized := p.Clone()
	finalized.Finalized = true
	finalized.FinalizedAt = now

	event := &Event{
		Kind:       EventFinalized,
		ProposalID: id,
		Amount:     p.Amount,
		Recipient:  p.Recipient,
		Time:       now,
	}

	if err = e.commit(finalized, event, nil); err != nil {
		log.Crit(
			"treasury paid but proposal could not be flagged as finalized",
			"id", id,
			"recipient", p.Recipient,
			"amount", p.Amount,
			"error", err,
		)
		return nil, e.reject(CommandFinalize, err)
	}

	log.Info("proposal finalized", "id", id, "recipient", p.Recipient, "amount", p.Amount, "by", caller)
	metrics.Governance.AddFinalization()
	metrics.Treasury.AddDisbursed(p.Amount.TokensFloat())
	e.updateTreasuryMetrics()
	e.publish(event, finalized)

	return finalized.Clone(), nil
}

func (e *Engine) GetProposal(id uint64) (*Proposal, error) {
	e.RLock()
	defer e.RUnlock()

	return e.store.GetProposal(id)
}

func (e *Engine) ListProposals() ([]*Proposal, error) {
	e.RLock()
	defer e.RUnlock()

	return e.store.ListProposals()
}

func (e *Engine) ProposalCount() (uint64, error) {
	e.RLock()
	defer e.RUnlock()

	return e.store.ProposalCount()
}

func (e *Engine) HasVoted(voter common.Address, id uint64) (bool, error) {
	e.RLock()
	defer e.RUnlock()

	return e.store.HasVoted(id, voter)
}

func (e *Engine) GetVote(voter common.Address, id uint64) (*VoteRecord, error) {
	e.RLock()
	defer e.RUnlock()

	return e.store.GetVote(id, voter)
}

func (e *Engine) ListVotes(id uint64) ([]*VoteRecord, error) {
	e.RLock()
	defer e.RUnlock()

	if _, err := e.store.GetProposal(id); err != nil {
		return nil, err
	}

	return e.store.ListVotes(id)
}

func (e *Engine) Quorum() common.Amount {
	return e.quorum.Threshold()
}

func (e *Engine) VotingPeriod() time.Duration {
	return e.config.VotingPeriod
}

func (e *Engine) TreasuryBalance() (common.Amount, error) {
	e.RLock()
	defer e.RUnlock()

	return e.treasury.Balance()
}

// Now is the engine's idea of the current time, the one deadlines are
// checked against.
func (e *Engine) Now() time.Time {
	e.RLock()
	defer e.RUnlock()

	return e.now()
}

// Events returns up to `limit` events after seq `cursor`; 0 means no limit.
func (e *Engine) Events(cursor, limit uint64) ([]*Event, error) {
	e.RLock()
	defer e.RUnlock()

	return e.store.Events(cursor, limit)
}

func (e *Engine) EventCount() (uint64, error) {
	e.RLock()
	defer e.RUnlock()

	return e.store.EventCount()
}

// VerifyEvents walks the whole event log and checks the hash chain.
func (e *Engine) VerifyEvents() error {
	e.RLock()
	defer e.RUnlock()

	events, err := e.store.Events(0, 0)
	if err != nil {
		return err
	}

	count, err := e.store.EventCount()
	if err != nil {
		return err
	}
	if uint64(len(events)) != count {
		return errors.InvalidEventChain.Clone().SetData("reason", "event count mismatch")
	}

	return VerifyEventChain("", events)
}
