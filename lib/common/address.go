package common

import (
	"strings"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"golang.org/x/crypto/sha3"

	"boscoin.io/govern/lib/errors"
)

// Address identifies an account holder or a treasury recipient.
type Address = ethcommon.Address

var ZeroAddress = Address{}

func IsZeroAddress(a Address) bool {
	return a == ZeroAddress
}

// NamedAddress derives a stable address from a human readable name, the
// same way an Ethereum address is derived from a public key.
func NamedAddress(name string) Address {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(name))
	return ethcommon.BytesToAddress(h.Sum(nil)[12:])
}

// ParseAddress accepts a 0x prefixed hex address. Anything that is not hex
// is treated as a name and goes through `NamedAddress`.
func ParseAddress(s string) (Address, error) {
	s = strings.TrimSpace(s)
	if len(s) < 1 {
		return ZeroAddress, errors.InvalidAddress
	}

	if ethcommon.IsHexAddress(s) {
		return ethcommon.HexToAddress(s), nil
	}

	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return ZeroAddress, errors.InvalidAddress.Clone().SetData("address", s)
	}

	return NamedAddress(s), nil
}
