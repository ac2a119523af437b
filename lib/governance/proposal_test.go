package governance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"boscoin.io/govern/lib/common"
	"boscoin.io/govern/lib/errors"
	"boscoin.io/govern/lib/storage"
)

func TestQuorumPolicy(t *testing.T) {
	_, err := NewQuorumPolicy(common.ZeroAmount)
	require.ErrorIs(t, err, errors.InvalidQuorum)

	q, err := NewQuorumPolicy(DefaultQuorum)
	require.NoError(t, err)
	require.Equal(t, DefaultQuorum, q.Threshold())

	require.False(t, q.Met(common.Tokens(500000)))
	require.True(t, q.Met(DefaultQuorum))
	require.True(t, q.Met(common.Tokens(600000)))
	require.False(t, q.Met(common.ZeroAmount))
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, NewDefaultConfig().Validate())

	c := NewDefaultConfig()
	c.Quorum = common.ZeroAmount
	require.ErrorIs(t, c.Validate(), errors.InvalidQuorum)

	c = NewDefaultConfig()
	c.VotingPeriod = -time.Second
	require.ErrorIs(t, c.Validate(), errors.InvalidConfig)

	c = NewDefaultConfig()
	c.CacheSize = -1
	require.ErrorIs(t, c.Validate(), errors.InvalidConfig)

	c = NewDefaultConfig()
	c.CacheSize = 0
	require.NoError(t, c.Validate())
}

func TestSaveLoadConfig(t *testing.T) {
	st, _ := storage.NewTestMemoryLevelDBBackend()
	defer st.Close()

	_, err := LoadConfig(st)
	require.ErrorIs(t, err, errors.StorageRecordDoesNotExist)

	c := Config{Quorum: common.Tokens(10), VotingPeriod: time.Hour, CacheSize: 0}
	require.NoError(t, SaveConfig(st, c))

	loaded, err := LoadConfig(st)
	require.NoError(t, err)
	require.Equal(t, c, loaded)

	require.ErrorIs(t, SaveConfig(st, Config{}), errors.InvalidQuorum)
}

func TestParseVoteType(t *testing.T) {
	cases := map[string]VoteType{
		"for":     VoteFor,
		"FOR":     VoteFor,
		"0":       VoteFor,
		"against": VoteAgainst,
		" 1 ":     VoteAgainst,
		"abstain": VoteAbstain,
		"2":       VoteAbstain,
	}
	for input, expected := range cases {
		v, err := ParseVoteType(input)
		require.NoError(t, err, input)
		require.Equal(t, expected, v, input)
		require.True(t, v.IsValid())
	}

	for _, input := range []string{"", "3", "yes", "-1"} {
		_, err := ParseVoteType(input)
		require.ErrorIs(t, err, errors.InvalidVoteType, input)
	}

	require.False(t, VoteType(3).IsValid())
	require.Equal(t, "against", VoteAgainst.String())
	require.Equal(t, "unknown(7)", VoteType(7).String())
}

func TestProposalStatus(t *testing.T) {
	p := &Proposal{
		CreatedAt: testStartTime,
		Deadline:  testStartTime.Add(time.Hour),
	}

	require.Equal(t, StatusOpen, p.Status(testStartTime))
	require.Equal(t, StatusOpen, p.Status(p.Deadline))
	require.True(t, p.IsVotingOpen(p.Deadline))
	require.Equal(t, StatusExpired, p.Status(p.Deadline.Add(time.Nanosecond)))
	require.False(t, p.IsVotingOpen(p.Deadline.Add(time.Nanosecond)))

	require.Equal(t, time.Hour, p.Remaining(testStartTime))
	require.Equal(t, time.Duration(0), p.Remaining(p.Deadline.Add(time.Minute)))

	p.Finalized = true
	require.Equal(t, StatusFinalized, p.Status(testStartTime))
	require.Equal(t, StatusFinalized, p.Status(p.Deadline.Add(time.Hour)))
}

func TestProposalAddVote(t *testing.T) {
	p := &Proposal{ID: 1}

	n, err := p.addVote(VoteAgainst, common.Tokens(3))
	require.NoError(t, err)
	require.Equal(t, common.Tokens(3), n.VotesAgainst)
	require.True(t, p.VotesAgainst.IsZero())

	_, err = n.addVote(VoteType(9), common.Tokens(1))
	require.ErrorIs(t, err, errors.InvalidVoteType)

	require.Equal(t, common.Tokens(3), n.TotalVotes())
}

func TestStoreCacheReturnsCopies(t *testing.T) {
	st, _ := storage.NewTestMemoryLevelDBBackend()
	defer st.Close()

	for _, size := range []int{0, 2} {
		s, err := NewStore(st, size)
		require.NoError(t, err)

		tx, err := s.Begin()
		require.NoError(t, err)
		p := &Proposal{Name: "cached", Amount: common.Tokens(1)}
		require.NoError(t, tx.NewProposal(p))
		require.NoError(t, tx.Commit())

		fetched, err := s.GetProposal(p.ID)
		require.NoError(t, err)
		fetched.Name = "changed"

		again, err := s.GetProposal(p.ID)
		require.NoError(t, err)
		require.Equal(t, "cached", again.Name)

		// discarded updates never reach the cache
		tx, err = s.Begin()
		require.NoError(t, err)
		require.NoError(t, tx.UpdateProposal(fetched))
		require.NoError(t, tx.Discard())

		again, err = s.GetProposal(p.ID)
		require.NoError(t, err)
		require.Equal(t, "cached", again.Name)
	}
}
