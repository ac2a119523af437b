package cmd

import (
	"time"

	"boscoin.io/govern/lib/common"
	"boscoin.io/govern/lib/common/observer"
	"boscoin.io/govern/lib/errors"
	"boscoin.io/govern/lib/governance"
	"boscoin.io/govern/lib/ledger"
	"boscoin.io/govern/lib/metrics"
	"boscoin.io/govern/lib/storage"
)

const genesisKey = "genesis"

// GenesisRecord is written once by `genesis`; every other command needs it.
type GenesisRecord struct {
	Treasury    common.Address    `json:"treasury" yaml:"treasury"`
	TokenSupply common.Amount     `json:"token_supply" yaml:"token_supply"`
	CoinSupply  common.Amount     `json:"coin_supply" yaml:"coin_supply"`
	Config      governance.Config `json:"config" yaml:"config"`
	AppliedAt   time.Time         `json:"applied_at" yaml:"applied_at"`
}

// state is everything a command works on, opened from `--storage`.
type state struct {
	st       *storage.LevelDBBackend
	genesis  GenesisRecord
	token    *ledger.Ledger
	coin     *ledger.Ledger
	treasury *ledger.Treasury
	engine   *governance.Engine
}

func openStorage(uri string) (*storage.LevelDBBackend, error) {
	config, err := storage.NewConfigFromString(uri)
	if err != nil {
		return nil, err
	}

	return storage.NewStorage(config)
}

func loadGenesisRecord(st *storage.LevelDBBackend) (record GenesisRecord, err error) {
	if err = st.Get(genesisKey, &record); err == errors.StorageRecordDoesNotExist {
		err = errors.GenesisNotApplied
	}

	return
}

// openState opens the storage and wires the ledgers, the treasury and the
// engine on top of it. The caller closes it.
func openState(uri string) (s *state, err error) {
	s = &state{}
	if s.st, err = openStorage(uri); err != nil {
		return nil, err
	}

	defer func() {
		if err != nil {
			s.st.Close()
			s = nil
		}
	}()

	if s.genesis, err = loadGenesisRecord(s.st); err != nil {
		return
	}

	var config governance.Config
	if config, err = governance.LoadConfig(s.st); err != nil {
		return
	}

	s.token = ledger.NewLedger(s.st, ledger.AssetToken)
	s.coin = ledger.NewLedger(s.st, ledger.AssetCoin)
	s.treasury = ledger.NewTreasury(s.coin, s.genesis.Treasury)

	var engine *governance.Engine
	if engine, err = governance.NewEngine(s.st, s.token, s.treasury, config); err != nil {
		return
	}
	s.engine = engine.SetClock(clock)

	if balance, berr := s.treasury.Balance(); berr == nil {
		metrics.Treasury.SetBalance(balance.TokensFloat())
	}

	return
}

func (s *state) Close() error {
	return s.st.Close()
}

func (s *state) now() time.Time {
	return s.engine.Now()
}

// logGovernanceEvent and logLedgerEvent are subscribed to several event
// names at once; the observer passes the matched name before the payload.
func logGovernanceEvent(name string, args ...interface{}) {
	if len(args) < 1 {
		return
	}
	if e, ok := args[0].(*governance.Event); ok {
		log.Debug("governance event", "name", name, "seq", e.Seq, "kind", e.Kind, "proposal", e.ProposalID, "hash", e.Hash)
	}
}

func logLedgerEvent(name string, args ...interface{}) {
	if len(args) < 1 {
		return
	}
	if e, ok := args[0].(ledger.TransferEvent); ok {
		log.Debug("ledger event", "name", name, "asset", e.Asset, "from", e.From, "to", e.To, "amount", e.Amount)
	}
}

func init() {
	observer.GovernanceObserver.On(
		observer.Names(observer.EventProposed, observer.EventVoted, observer.EventFinalized),
		logGovernanceEvent,
	)
	observer.LedgerObserver.On(
		observer.Names(observer.EventMinted, observer.EventTransfer),
		logLedgerEvent,
	)
}
