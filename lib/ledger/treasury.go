package ledger

import (
	"boscoin.io/govern/lib/common"
)

// Treasury is the account holding the funds proposals pay out from.
type Treasury struct {
	ledger  *Ledger
	address common.Address
}

func NewTreasury(ledger *Ledger, address common.Address) *Treasury {
	return &Treasury{ledger: ledger, address: address}
}

func (t *Treasury) Address() common.Address {
	return t.address
}

func (t *Treasury) Asset() string {
	return t.ledger.Asset()
}

func (t *Treasury) Balance() (common.Amount, error) {
	return t.ledger.BalanceOf(t.address)
}

// Transfer pays `amount` out of the treasury.
func (t *Treasury) Transfer(to common.Address, amount common.Amount) error {
	return t.ledger.Transfer(t.address, to, amount)
}

// Fund moves `amount` from `from` into the treasury.
func (t *Treasury) Fund(from common.Address, amount common.Amount) error {
	return t.ledger.Transfer(from, t.address, amount)
}
