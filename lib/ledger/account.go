package ledger

import (
	"fmt"

	"boscoin.io/govern/lib/common"
	"boscoin.io/govern/lib/errors"
	"boscoin.io/govern/lib/storage"
)

// Account is the balance of one address for one asset.
//
// Models:
//
//   - 'address': 'la-<asset>-<Account.Address>' holds the `Account`
//   - 'created': 'lc-<asset>-<sequence>' holds the `Account.Address`
type Account struct {
	Asset   string         `json:"asset"`
	Address common.Address `json:"address"`
	Balance common.Amount  `json:"balance"`
	Seq     uint64         `json:"seq"`
}

const (
	AccountPrefixAddress = "la-"
	AccountPrefixCreated = "lc-"
	AccountCountPrefix   = "ln-"
	TotalSupplyPrefix    = "ls-"
)

func NewAccount(asset string, address common.Address) *Account {
	return &Account{
		Asset:   asset,
		Address: address,
		Balance: common.ZeroAmount,
	}
}

func (a *Account) String() string {
	return string(common.MustMarshalJSON(a))
}

func (a *Account) GetBalance() common.Amount {
	return a.Balance
}

// Add fund to an account
//
// If the amount would make the account overflow, an `error` is returned.
func (a *Account) Deposit(fund common.Amount) error {
	if val, err := a.GetBalance().Add(fund); err != nil {
		return err
	} else {
		a.Balance = val
	}
	return nil
}

// Remove fund from an account
//
// If the amount would make the account go negative, an `error` is returned.
func (a *Account) Withdraw(fund common.Amount) error {
	if val, err := a.GetBalance().Sub(fund); err != nil {
		return errors.InsufficientBalance.Clone().
			SetData("address", a.Address.Hex()).
			SetData("balance", a.Balance.String()).
			SetData("amount", fund.String())
	} else {
		a.Balance = val
	}
	return nil
}

// Save stores the account; a new account also gets an entry in the created
// order index.
func (a *Account) Save(st *storage.LevelDBBackend) (err error) {
	key := GetAccountKey(a.Asset, a.Address)

	var exists bool
	if exists, err = st.Has(key); err != nil {
		return
	}

	if exists {
		return st.Set(key, a)
	}

	var count uint64
	if count, err = getAccountCount(st, a.Asset); err != nil {
		return
	}
	a.Seq = count + 1

	if err = st.New(key, a); err != nil {
		return
	}
	if err = st.New(GetAccountCreatedKey(a.Asset, a.Seq), a.Address); err != nil {
		return
	}

	return st.Put(AccountCountPrefix+a.Asset, a.Seq)
}

func GetAccountKey(asset string, address common.Address) string {
	return fmt.Sprintf("%s%s-%s", AccountPrefixAddress, asset, address.Hex())
}

func GetAccountCreatedKey(asset string, seq uint64) string {
	return fmt.Sprintf("%s%s-%020d", AccountPrefixCreated, asset, seq)
}

func getAccountCount(st *storage.LevelDBBackend, asset string) (count uint64, err error) {
	if err = st.Get(AccountCountPrefix+asset, &count); err == errors.StorageRecordDoesNotExist {
		err = nil
	}

	return
}

func ExistAccount(st *storage.LevelDBBackend, asset string, address common.Address) (bool, error) {
	return st.Has(GetAccountKey(asset, address))
}

func GetAccount(st *storage.LevelDBBackend, asset string, address common.Address) (a *Account, err error) {
	if err = st.Get(GetAccountKey(asset, address), &a); err != nil {
		if err == errors.StorageRecordDoesNotExist {
			err = errors.AccountNotFound.Clone().SetData("address", address.Hex())
		}
		return
	}

	return
}

// GetAccountsByCreated iterates the accounts of `asset` in the order they
// were created.
func GetAccountsByCreated(st *storage.LevelDBBackend, asset string, reverse bool) (func() (*Account, bool), func()) {
	iterFunc, closeFunc := st.GetIterator(
		AccountPrefixCreated+asset+"-",
		storage.NewDefaultListOptions(reverse, nil, 0),
	)

	return (func() (*Account, bool) {
			item, hasNext := iterFunc()
			if !hasNext {
				return nil, false
			}

			var address common.Address
			common.MustUnmarshalJSON(item.Value, &address)

			a, err := GetAccount(st, asset, address)
			if err != nil {
				log.Error("created index points to a missing account", "asset", asset, "address", address, "error", err)
				return nil, false
			}
			return a, true
		}), (func() {
			closeFunc()
		})
}
