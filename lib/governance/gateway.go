package governance

import (
	"boscoin.io/govern/lib/common"
)

// VotingPower tells how much weight an address carries. Any positive
// balance makes the address an investor.
type VotingPower interface {
	BalanceOf(common.Address) (common.Amount, error)
}

// Treasury holds the funds proposals pay out from. `Transfer` either moves
// the whole amount or returns an error and moves nothing.
type Treasury interface {
	Balance() (common.Amount, error)
	Transfer(to common.Address, amount common.Amount) error
}
