package ledger

import (
	"strings"
	"sync"

	"github.com/GianlucaGuarini/go-observable"

	"boscoin.io/govern/lib/common"
	"boscoin.io/govern/lib/common/observer"
	"boscoin.io/govern/lib/errors"
	"boscoin.io/govern/lib/storage"
)

const (
	// AssetToken is the governance token; its balances are the voting power.
	AssetToken = "token"
	// AssetCoin is the native coin held by the treasury.
	AssetCoin = "coin"
)

// Ledger keeps the balances of one asset. Every mutation is written in its
// own storage transaction.
type Ledger struct {
	sync.RWMutex

	st       *storage.LevelDBBackend
	asset    string
	observer *observable.Observable
}

// TransferEvent is passed to `observer.LedgerObserver` subscribers.
type TransferEvent struct {
	Asset  string
	From   common.Address
	To     common.Address
	Amount common.Amount
}

func NewLedger(st *storage.LevelDBBackend, asset string) *Ledger {
	return &Ledger{
		st:       st,
		asset:    strings.ToLower(strings.TrimSpace(asset)),
		observer: observer.LedgerObserver,
	}
}

// SetObserver replaces the default `observer.LedgerObserver`.
func (l *Ledger) SetObserver(o *observable.Observable) *Ledger {
	l.observer = o
	return l
}

func (l *Ledger) Asset() string {
	return l.asset
}

// BalanceOf returns zero for an address the ledger has never seen.
func (l *Ledger) BalanceOf(address common.Address) (common.Amount, error) {
	l.RLock()
	defer l.RUnlock()

	a, err := GetAccount(l.st, l.asset, address)
	if err != nil {
		if errors.Code(err) == errors.AccountNotFound.Code {
			return common.ZeroAmount, nil
		}
		return common.ZeroAmount, err
	}

	return a.Balance, nil
}

func (l *Ledger) TotalSupply() (supply common.Amount, err error) {
	l.RLock()
	defer l.RUnlock()

	return l.totalSupply(l.st)
}

func (l *Ledger) totalSupply(st *storage.LevelDBBackend) (supply common.Amount, err error) {
	if err = st.Get(TotalSupplyPrefix+l.asset, &supply); err == errors.StorageRecordDoesNotExist {
		err = nil
	}

	return
}

// Accounts lists every account of the asset in creation order.
func (l *Ledger) Accounts() (accounts []*Account, err error) {
	l.RLock()
	defer l.RUnlock()

	iterFunc, closeFunc := GetAccountsByCreated(l.st, l.asset, false)
	defer closeFunc()

	for {
		a, hasNext := iterFunc()
		if !hasNext {
			break
		}
		accounts = append(accounts, a)
	}

	return
}

func (l *Ledger) loadOrNew(st *storage.LevelDBBackend, address common.Address) (*Account, error) {
	a, err := GetAccount(st, l.asset, address)
	if err == nil {
		return a, nil
	}
	if errors.Code(err) != errors.AccountNotFound.Code {
		return nil, err
	}

	return NewAccount(l.asset, address), nil
}

func (l *Ledger) checkArgs(to common.Address, amount common.Amount) error {
	if common.IsZeroAddress(to) {
		return errors.InvalidAddress.Clone().SetData("address", to.Hex())
	}
	if amount.IsZero() {
		return errors.InvalidAmount.Clone().SetData("amount", amount.String())
	}

	return nil
}

// withTransaction joins the transaction of a ledger opened on one, which is
// then committed or discarded by its owner.
func (l *Ledger) withTransaction(fn func(ts *storage.LevelDBBackend) error) (err error) {
	if l.st.IsTransaction() {
		return fn(l.st)
	}

	var ts *storage.LevelDBBackend
	if ts, err = l.st.OpenTransaction(); err != nil {
		return
	}

	if err = fn(ts); err != nil {
		ts.Discard()
		return
	}

	return ts.Commit()
}

// Mint creates `amount` new units for `to` and grows the total supply.
func (l *Ledger) Mint(to common.Address, amount common.Amount) (err error) {
	if err = l.checkArgs(to, amount); err != nil {
		return
	}

	l.Lock()
	defer l.Unlock()

	err = l.withTransaction(func(ts *storage.LevelDBBackend) error {
		supply, err := l.totalSupply(ts)
		if err != nil {
			return err
		}
		if supply, err = supply.Add(amount); err != nil {
			return err
		}

		a, err := l.loadOrNew(ts, to)
		if err != nil {
			return err
		}
		if err = a.Deposit(amount); err != nil {
			return err
		}
		if err = a.Save(ts); err != nil {
			return err
		}

		return ts.Put(TotalSupplyPrefix+l.asset, supply)
	})
	if err != nil {
		log.Debug("failed to mint", "asset", l.asset, "to", to, "amount", amount, "error", err)
		return
	}

	log.Debug("minted", "asset", l.asset, "to", to, "amount", amount)
	l.trigger(observer.EventMinted, TransferEvent{Asset: l.asset, To: to, Amount: amount})

	return
}

// Transfer moves `amount` from `from` to `to`. Nothing is written when the
// source balance is short.
func (l *Ledger) Transfer(from, to common.Address, amount common.Amount) (err error) {
	if err = l.checkArgs(to, amount); err != nil {
		return
	}
	if from == to {
		return errors.SameSourceAndTarget.Clone().SetData("address", from.Hex())
	}

	l.Lock()
	defer l.Unlock()

	err = l.withTransaction(func(ts *storage.LevelDBBackend) error {
		source, err := GetAccount(ts, l.asset, from)
		if err != nil {
			return err
		}
		if err = source.Withdraw(amount); err != nil {
			return err
		}

		target, err := l.loadOrNew(ts, to)
		if err != nil {
			return err
		}
		if err = target.Deposit(amount); err != nil {
			return err
		}

		if err = source.Save(ts); err != nil {
			return err
		}
		return target.Save(ts)
	})
	if err != nil {
		log.Debug("failed to transfer", "asset", l.asset, "from", from, "to", to, "amount", amount, "error", err)
		return
	}

	log.Debug("transferred", "asset", l.asset, "from", from, "to", to, "amount", amount)
	l.trigger(observer.EventTransfer, TransferEvent{Asset: l.asset, From: from, To: to, Amount: amount})

	return
}

func (l *Ledger) trigger(kind string, e TransferEvent) {
	if l.observer == nil {
		return
	}

	names := []string{kind, observer.AccountEvent(e.To.Hex())}
	if !common.IsZeroAddress(e.From) {
		names = append(names, observer.AccountEvent(e.From.Hex()))
	}

	l.observer.Trigger(observer.Names(names...), e)
}
