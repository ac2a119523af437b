package governance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"boscoin.io/govern/lib/common"
	"boscoin.io/govern/lib/errors"
	"boscoin.io/govern/lib/storage"
)

func TestCreateProposal(t *testing.T) {
	env := newTestEnv(t)

	for i := 1; i <= 3; i++ {
		p := env.propose(t, common.Tokens(10))
		require.Equal(t, uint64(i), p.ID)
		require.Equal(t, env.investors[0], p.Creator)
		require.Equal(t, env.recipient, p.Recipient)
		require.Equal(t, common.Tokens(10), p.Amount)
		require.True(t, p.VotesFor.IsZero())
		require.True(t, p.VotesAgainst.IsZero())
		require.True(t, p.VotesAbstain.IsZero())
		require.False(t, p.Finalized)
		require.Equal(t, testStartTime, p.CreatedAt)
		require.Equal(t, testStartTime.Add(DefaultVotingPeriod), p.Deadline)
		require.Equal(t, StatusOpen, p.Status(env.engine.Now()))
	}

	count, err := env.engine.ProposalCount()
	require.NoError(t, err)
	require.Equal(t, uint64(3), count)

	proposals, err := env.engine.ListProposals()
	require.NoError(t, err)
	require.Len(t, proposals, 3)
	for i, p := range proposals {
		require.Equal(t, uint64(i+1), p.ID)
	}

	require.Equal(t, uint64(3), env.eventCount(t))

	// treasury balance is not reserved by proposals
	balance, err := env.engine.TreasuryBalance()
	require.NoError(t, err)
	require.Equal(t, common.Tokens(100), balance)
}

func TestCreateProposalRejections(t *testing.T) {
	env := newTestEnv(t)
	investor := env.investors[0]

	cases := []struct {
		name      string
		caller    common.Address
		title     string
		amount    common.Amount
		recipient common.Address
		expected  *errors.Error
	}{
		{"not an investor", common.NamedAddress("stranger"), "x", common.Tokens(1), env.recipient, errors.NotAnInvestor},
		{"empty name", investor, "", common.Tokens(1), env.recipient, errors.InvalidProposal},
		{"blank name", investor, "  \t ", common.Tokens(1), env.recipient, errors.InvalidProposal},
		{"zero amount", investor, "x", common.ZeroAmount, env.recipient, errors.InvalidProposal},
		{"zero recipient", investor, "x", common.Tokens(1), common.ZeroAddress, errors.InvalidProposal},
		{"exceeds treasury", investor, "x", common.Tokens(100).MustAdd(common.NewAmount(1)), env.recipient, errors.InvalidProposal},
		{"investor check comes first", common.NamedAddress("stranger"), "", common.ZeroAmount, common.ZeroAddress, errors.NotAnInvestor},
	}

	for _, c := range cases {
		_, err := env.engine.CreateProposal(c.caller, c.title, c.amount, c.recipient)
		require.Error(t, err, c.name)
		require.ErrorIs(t, err, c.expected, c.name)
	}

	count, err := env.engine.ProposalCount()
	require.NoError(t, err)
	require.Equal(t, uint64(0), count)
	require.Equal(t, uint64(0), env.eventCount(t))

	// the whole treasury can be requested
	p := env.propose(t, common.Tokens(100))
	require.Equal(t, uint64(1), p.ID)
}

func TestVote(t *testing.T) {
	env := newTestEnv(t)
	p := env.propose(t, common.Tokens(10))

	env.vote(t, 0, p.ID, VoteFor)
	env.vote(t, 1, p.ID, VoteAgainst)
	env.vote(t, 2, p.ID, VoteAbstain)
	updated := env.vote(t, 3, p.ID, VoteFor)

	require.Equal(t, common.Tokens(400000), updated.VotesFor)
	require.Equal(t, common.Tokens(200000), updated.VotesAgainst)
	require.Equal(t, common.Tokens(200000), updated.VotesAbstain)
	require.Equal(t, common.Tokens(800000), updated.TotalVotes())

	fetched, err := env.engine.GetProposal(p.ID)
	require.NoError(t, err)
	require.Equal(t, updated, fetched)

	voted, err := env.engine.HasVoted(env.investors[1], p.ID)
	require.NoError(t, err)
	require.True(t, voted)

	voted, err = env.engine.HasVoted(env.investors[4], p.ID)
	require.NoError(t, err)
	require.False(t, voted)

	record, err := env.engine.GetVote(env.investors[1], p.ID)
	require.NoError(t, err)
	require.Equal(t, VoteAgainst, record.Type)
	require.Equal(t, common.Tokens(200000), record.Weight)
	require.Equal(t, testStartTime, record.CastAt)

	_, err = env.engine.GetVote(env.investors[4], p.ID)
	require.ErrorIs(t, err, errors.VoteNotFound)

	votes, err := env.engine.ListVotes(p.ID)
	require.NoError(t, err)
	require.Len(t, votes, 4)

	// 1 proposed + 4 voted
	require.Equal(t, uint64(5), env.eventCount(t))
}

func TestVoteWeightIsCurrentBalance(t *testing.T) {
	env := newTestEnv(t)
	p := env.propose(t, common.Tokens(10))

	require.NoError(t, env.token.Transfer(env.investors[1], env.investors[0], common.Tokens(50000)))

	updated := env.vote(t, 0, p.ID, VoteFor)
	require.Equal(t, common.Tokens(250000), updated.VotesFor)
}

func TestVoteRejections(t *testing.T) {
	env := newTestEnv(t)
	p := env.propose(t, common.Tokens(10))
	env.vote(t, 0, p.ID, VoteFor)

	cases := []struct {
		name     string
		caller   common.Address
		id       uint64
		voteType VoteType
		expected *errors.Error
	}{
		{"invalid vote type", env.investors[1], p.ID, VoteType(3), errors.InvalidVoteType},
		{"invalid vote type first", common.NamedAddress("stranger"), 99, VoteType(255), errors.InvalidVoteType},
		{"not an investor", common.NamedAddress("stranger"), p.ID, VoteFor, errors.NotAnInvestor},
		{"unknown proposal", env.investors[1], 99, VoteFor, errors.ProposalNotFound},
		{"already voted", env.investors[0], p.ID, VoteFor, errors.AlreadyVoted},
		{"already voted other type", env.investors[0], p.ID, VoteAgainst, errors.AlreadyVoted},
	}

	for _, c := range cases {
		_, err := env.engine.Vote(c.caller, c.id, c.voteType)
		require.Error(t, err, c.name)
		require.ErrorIs(t, err, c.expected, c.name)
	}

	fetched, err := env.engine.GetProposal(p.ID)
	require.NoError(t, err)
	require.Equal(t, common.Tokens(200000), fetched.VotesFor)
	require.True(t, fetched.VotesAgainst.IsZero())
	require.Equal(t, uint64(2), env.eventCount(t))
}

// A stranger's vote changes nothing.
func TestScenarioNonHolderVote(t *testing.T) {
	env := newTestEnv(t)
	p := env.propose(t, common.Tokens(100))

	_, err := env.engine.Vote(common.NamedAddress("stranger"), p.ID, VoteFor)
	require.ErrorIs(t, err, errors.NotAnInvestor)

	fetched, err := env.engine.GetProposal(p.ID)
	require.NoError(t, err)
	require.True(t, fetched.TotalVotes().IsZero())

	voted, err := env.engine.HasVoted(common.NamedAddress("stranger"), p.ID)
	require.NoError(t, err)
	require.False(t, voted)
}

// One investor votes, time passes the deadline, the next vote is refused and
// the first one is kept.
func TestScenarioVoteAfterDeadline(t *testing.T) {
	env := newTestEnv(t)
	p := env.propose(t, common.Tokens(100))

	env.vote(t, 0, p.ID, VoteFor)

	env.clock.Add(DefaultVotingPeriod + time.Second)

	_, err := env.engine.Vote(env.investors[1], p.ID, VoteFor)
	require.ErrorIs(t, err, errors.VotingClosed)
	require.Equal(t, "voting period has ended", errors.VotingClosed.Message)

	fetched, err := env.engine.GetProposal(p.ID)
	require.NoError(t, err)
	require.Equal(t, common.Tokens(200000), fetched.VotesFor)
	require.Equal(t, StatusExpired, fetched.Status(env.engine.Now()))
}

func TestVoteDeadlineIsInclusive(t *testing.T) {
	env := newTestEnv(t)
	p := env.propose(t, common.Tokens(100))

	env.clock.Set(p.Deadline.Add(-time.Nanosecond))
	env.vote(t, 0, p.ID, VoteFor)

	env.clock.Set(p.Deadline)
	env.vote(t, 1, p.ID, VoteFor)

	env.clock.Set(p.Deadline.Add(time.Nanosecond))
	_, err := env.engine.Vote(env.investors[2], p.ID, VoteFor)
	require.ErrorIs(t, err, errors.VotingClosed)
}

func TestVoteOrderDoesNotMatter(t *testing.T) {
	types := []VoteType{VoteFor, VoteAgainst, VoteFor, VoteAbstain, VoteAgainst}

	run := func(order []int) *Proposal {
		env := newTestEnv(t)
		require.NoError(t, env.token.Mint(env.investors[2], common.NewAmount(7)))

		p := env.propose(t, common.Tokens(1))
		for _, i := range order {
			p = env.vote(t, i, p.ID, types[i])
		}
		return p
	}

	a := run([]int{0, 1, 2, 3, 4})
	b := run([]int{4, 2, 0, 3, 1})

	require.Equal(t, a.VotesFor, b.VotesFor)
	require.Equal(t, a.VotesAgainst, b.VotesAgainst)
	require.Equal(t, a.VotesAbstain, b.VotesAbstain)
	require.Equal(t, common.Tokens(400000).MustAdd(common.NewAmount(7)), a.VotesFor)
}

// Three investors out of five vote for; finalization pays the recipient.
func TestScenarioFinalizeWithQuorum(t *testing.T) {
	env := newTestEnv(t)
	p := env.propose(t, common.Tokens(100))

	for i := 0; i < 3; i++ {
		env.vote(t, i, p.ID, VoteFor)
	}

	before := env.coinBalance(t, env.recipient)
	treasuryBefore := env.coinBalance(t, env.treasury.Address())

	finalized, err := env.engine.FinalizeProposal(env.investors[4], p.ID)
	require.NoError(t, err)
	require.True(t, finalized.Finalized)
	require.Equal(t, testStartTime, finalized.FinalizedAt)
	require.Equal(t, StatusFinalized, finalized.Status(env.engine.Now()))

	require.Equal(t, before.MustAdd(common.Tokens(100)), env.coinBalance(t, env.recipient))
	require.Equal(t, treasuryBefore.MustSub(common.Tokens(100)), env.coinBalance(t, env.treasury.Address()))

	fetched, err := env.engine.GetProposal(p.ID)
	require.NoError(t, err)
	require.True(t, fetched.Finalized)

	_, err = env.engine.FinalizeProposal(env.investors[0], p.ID)
	require.ErrorIs(t, err, errors.AlreadyFinalized)

	// paid once
	require.Equal(t, before.MustAdd(common.Tokens(100)), env.coinBalance(t, env.recipient))
}

// One investor votes for; 200,000 is below the quorum.
func TestScenarioFinalizeWithoutQuorum(t *testing.T) {
	env := newTestEnv(t)
	p := env.propose(t, common.Tokens(100))
	env.vote(t, 0, p.ID, VoteFor)

	events := env.eventCount(t)

	_, err := env.engine.FinalizeProposal(env.investors[0], p.ID)
	require.ErrorIs(t, err, errors.QuorumNotMet)

	fetched, err := env.engine.GetProposal(p.ID)
	require.NoError(t, err)
	require.False(t, fetched.Finalized)
	require.True(t, env.coinBalance(t, env.recipient).IsZero())
	require.Equal(t, events, env.eventCount(t))
}

func TestFinalizeIgnoresAgainstAndAbstain(t *testing.T) {
	env := newTestEnv(t)
	p := env.propose(t, common.Tokens(100))

	env.vote(t, 0, p.ID, VoteFor)
	env.vote(t, 1, p.ID, VoteFor)
	env.vote(t, 2, p.ID, VoteAgainst)
	env.vote(t, 3, p.ID, VoteAbstain)
	env.vote(t, 4, p.ID, VoteAbstain)

	_, err := env.engine.FinalizeProposal(env.investors[0], p.ID)
	require.ErrorIs(t, err, errors.QuorumNotMet)
}

func TestFinalizeAfterDeadline(t *testing.T) {
	env := newTestEnv(t)
	p := env.propose(t, common.Tokens(100))
	for i := 0; i < 3; i++ {
		env.vote(t, i, p.ID, VoteFor)
	}

	env.clock.Add(30 * 24 * time.Hour)

	finalized, err := env.engine.FinalizeProposal(env.investors[0], p.ID)
	require.NoError(t, err)
	require.True(t, finalized.Finalized)
	require.Equal(t, common.Tokens(100), env.coinBalance(t, env.recipient))
}

func TestFinalizeRejections(t *testing.T) {
	env := newTestEnv(t)
	p := env.propose(t, common.Tokens(100))
	for i := 0; i < 3; i++ {
		env.vote(t, i, p.ID, VoteFor)
	}

	_, err := env.engine.FinalizeProposal(common.NamedAddress("stranger"), p.ID)
	require.ErrorIs(t, err, errors.NotAnInvestor)

	_, err = env.engine.FinalizeProposal(env.investors[0], 99)
	require.ErrorIs(t, err, errors.ProposalNotFound)

	fetched, err := env.engine.GetProposal(p.ID)
	require.NoError(t, err)
	require.False(t, fetched.Finalized)
}

func TestFinalizeTransferFailure(t *testing.T) {
	env := newTestEnv(t)
	p := env.propose(t, common.Tokens(100))
	for i := 0; i < 3; i++ {
		env.vote(t, i, p.ID, VoteFor)
	}

	events := env.eventCount(t)
	env.gateway.setFail(true)

	_, err := env.engine.FinalizeProposal(env.investors[0], p.ID)
	require.ErrorIs(t, err, errors.TransferFailed)
	require.Contains(t, err.(*errors.Error).Data["cause"], "refused")

	fetched, err := env.engine.GetProposal(p.ID)
	require.NoError(t, err)
	require.False(t, fetched.Finalized)
	require.Equal(t, events, env.eventCount(t))
	require.Equal(t, common.Tokens(100), env.coinBalance(t, env.treasury.Address()))

	// once the treasury works again the proposal can be finalized
	env.gateway.setFail(false)
	finalized, err := env.engine.FinalizeProposal(env.investors[0], p.ID)
	require.NoError(t, err)
	require.True(t, finalized.Finalized)
}

func TestFinalizeTreasuryDrainedMeanwhile(t *testing.T) {
	env := newTestEnv(t)
	first := env.propose(t, common.Tokens(80))
	second := env.propose(t, common.Tokens(80))

	for _, id := range []uint64{first.ID, second.ID} {
		for i := 0; i < 3; i++ {
			env.vote(t, i, id, VoteFor)
		}
	}

	_, err := env.engine.FinalizeProposal(env.investors[0], first.ID)
	require.NoError(t, err)

	_, err = env.engine.FinalizeProposal(env.investors[0], second.ID)
	require.ErrorIs(t, err, errors.TransferFailed)

	fetched, err := env.engine.GetProposal(second.ID)
	require.NoError(t, err)
	require.False(t, fetched.Finalized)
}

func TestConcurrentVotes(t *testing.T) {
	env := newTestEnv(t)
	p := env.propose(t, common.Tokens(10))

	var g errgroup.Group
	for i := range env.investors {
		i := i
		g.Go(func() error {
			_, err := env.engine.Vote(env.investors[i], p.ID, VoteType(i%3))
			return err
		})
	}
	require.NoError(t, g.Wait())

	// everybody tries again, all rejected
	var again errgroup.Group
	for i := range env.investors {
		i := i
		again.Go(func() error {
			_, err := env.engine.Vote(env.investors[i], p.ID, VoteFor)
			return err
		})
	}
	require.ErrorIs(t, again.Wait(), errors.AlreadyVoted)

	fetched, err := env.engine.GetProposal(p.ID)
	require.NoError(t, err)
	require.Equal(t, common.Tokens(400000), fetched.VotesFor)     // investors 0, 3
	require.Equal(t, common.Tokens(400000), fetched.VotesAgainst) // investors 1, 4
	require.Equal(t, common.Tokens(200000), fetched.VotesAbstain) // investor 2

	require.NoError(t, env.engine.VerifyEvents())
	require.Equal(t, uint64(6), env.eventCount(t))
}

func TestPersistence(t *testing.T) {
	path := t.TempDir()
	defer storage.CleanDB(path)

	st, err := storage.NewTestFileLevelDBBackend(path)
	require.NoError(t, err)

	env := newTestEnvWithStorage(t, st, true)
	p := env.propose(t, common.Tokens(100))
	for i := 0; i < 3; i++ {
		env.vote(t, i, p.ID, VoteFor)
	}
	_, err = env.engine.FinalizeProposal(env.investors[0], p.ID)
	require.NoError(t, err)
	require.True(t, env.coinBalance(t, env.treasury.Address()).IsZero())

	// refill the drained treasury for the second proposal
	require.NoError(t, env.treasury.Fund(common.NamedAddress("funder"), common.Tokens(10)))
	second := env.propose(t, common.Tokens(1))
	require.Equal(t, uint64(2), second.ID)

	proposals, err := env.engine.ListProposals()
	require.NoError(t, err)
	events, err := env.engine.Events(0, 0)
	require.NoError(t, err)
	vote, err := env.engine.GetVote(env.investors[1], p.ID)
	require.NoError(t, err)

	require.NoError(t, st.Close())

	st, err = storage.NewTestFileLevelDBBackend(path)
	require.NoError(t, err)
	defer st.Close()

	reopened := newTestEnvWithStorage(t, st, false)

	reloadedProposals, err := reopened.engine.ListProposals()
	require.NoError(t, err)
	require.Equal(t, proposals, reloadedProposals)

	reloadedEvents, err := reopened.engine.Events(0, 0)
	require.NoError(t, err)
	require.Equal(t, events, reloadedEvents)

	reloadedVote, err := reopened.engine.GetVote(env.investors[1], p.ID)
	require.NoError(t, err)
	require.Equal(t, vote, reloadedVote)

	require.NoError(t, reopened.engine.VerifyEvents())

	// sequences continue where they stopped
	next, err := reopened.engine.CreateProposal(env.investors[0], "next", common.NewAmount(1), env.recipient)
	require.NoError(t, err)
	require.Equal(t, uint64(3), next.ID)
	require.NoError(t, reopened.engine.VerifyEvents())
}

func TestNewEngineInvalidConfig(t *testing.T) {
	st, _ := storage.NewTestMemoryLevelDBBackend()
	defer st.Close()

	config := NewDefaultConfig()
	config.Quorum = common.ZeroAmount

	_, err := NewEngine(st, nil, nil, config)
	require.ErrorIs(t, err, errors.InvalidQuorum)

	config = NewDefaultConfig()
	config.VotingPeriod = 0
	_, err = NewEngine(st, nil, nil, config)
	require.ErrorIs(t, err, errors.InvalidConfig)
}
