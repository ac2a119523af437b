package governance

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/GianlucaGuarini/go-observable"
	"github.com/stretchr/testify/require"

	"boscoin.io/govern/lib/common"
	"boscoin.io/govern/lib/ledger"
	"boscoin.io/govern/lib/storage"
)

var testStartTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

type testEnv struct {
	st        *storage.LevelDBBackend
	token     *ledger.Ledger
	coin      *ledger.Ledger
	treasury  *ledger.Treasury
	gateway   *flakyTreasury
	clock     *common.ManualClock
	observer  *observable.Observable
	engine    *Engine
	investors []common.Address
	recipient common.Address
}

// flakyTreasury fails every transfer while `fail` is set.
type flakyTreasury struct {
	sync.Mutex
	Treasury

	fail bool
}

func (f *flakyTreasury) setFail(fail bool) {
	f.Lock()
	defer f.Unlock()

	f.fail = fail
}

func (f *flakyTreasury) Transfer(to common.Address, amount common.Amount) error {
	f.Lock()
	fail := f.fail
	f.Unlock()

	if fail {
		return fmt.Errorf("transfer to %s refused", to.Hex())
	}

	return f.Treasury.Transfer(to, amount)
}

// newTestEnv sets up five investors holding 200,000 tokens each (1,000,000
// total supply) and a treasury holding 100 coins.
func newTestEnv(t *testing.T) *testEnv {
	st, err := storage.NewTestMemoryLevelDBBackend()
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	return newTestEnvWithStorage(t, st, true)
}

func newTestEnvWithStorage(t *testing.T, st *storage.LevelDBBackend, genesis bool) *testEnv {
	env := &testEnv{
		st:        st,
		token:     ledger.NewLedger(st, ledger.AssetToken).SetObserver(observable.New()),
		coin:      ledger.NewLedger(st, ledger.AssetCoin).SetObserver(observable.New()),
		clock:     common.NewManualClock(testStartTime),
		observer:  observable.New(),
		recipient: common.NamedAddress("recipient"),
	}
	env.treasury = ledger.NewTreasury(env.coin, common.NamedAddress("treasury"))
	env.gateway = &flakyTreasury{Treasury: env.treasury}

	for i := 0; i < 5; i++ {
		env.investors = append(env.investors, common.NamedAddress(fmt.Sprintf("investor-%d", i)))
	}

	if genesis {
		for _, a := range env.investors {
			require.NoError(t, env.token.Mint(a, common.Tokens(200000)))
		}

		funder := common.NamedAddress("funder")
		require.NoError(t, env.coin.Mint(funder, common.Tokens(1000)))
		require.NoError(t, env.treasury.Fund(funder, common.Tokens(100)))
	}

	engine, err := NewEngine(st, env.token, env.gateway, NewDefaultConfig())
	require.NoError(t, err)
	env.engine = engine.SetClock(env.clock).SetObserver(env.observer)

	return env
}

func (env *testEnv) propose(t *testing.T, amount common.Amount) *Proposal {
	p, err := env.engine.CreateProposal(env.investors[0], "fund the recipient", amount, env.recipient)
	require.NoError(t, err)
	return p
}

func (env *testEnv) vote(t *testing.T, investor int, id uint64, voteType VoteType) *Proposal {
	p, err := env.engine.Vote(env.investors[investor], id, voteType)
	require.NoError(t, err)
	return p
}

func (env *testEnv) coinBalance(t *testing.T, a common.Address) common.Amount {
	balance, err := env.coin.BalanceOf(a)
	require.NoError(t, err)
	return balance
}

func (env *testEnv) eventCount(t *testing.T) uint64 {
	count, err := env.engine.EventCount()
	require.NoError(t, err)
	return count
}
