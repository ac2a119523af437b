// Package common holds the types shared across the code base, starting with
// `Amount`, the token quantity.
//
// Quantities are expressed in base units, `Decimals` base units making one
// whole token (18, like ether and wei). The underlying value is an unsigned
// 256-bit integer so amounts compare and add exactly; no floating point is
// involved anywhere.
//
//   - `Add` / `Sub` do an addition / substraction and return an error object
//   - `MustAdd` / `MustSub` call `Add` / `Sub` and turn any `error` into a
//     `panic`. Those are provided for testing / quick prototyping and should
//     not be in production code.
package common

import (
	"fmt"
	"io"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"

	"boscoin.io/govern/lib/errors"
)

const (
	// Number of decimal places of one whole token
	Decimals = 18
)

var (
	// 10^18 base units == 1 token
	unitPerToken = new(uint256.Int).Exp(uint256.NewInt(10), uint256.NewInt(Decimals))

	ZeroAmount = Amount{}
)

// Amount is an immutable quantity of base units. The zero value is 0.
type Amount struct {
	v uint256.Int
}

func NewAmount(n uint64) Amount {
	var a Amount
	a.v.SetUint64(n)
	return a
}

// Tokens returns the amount of `n` whole tokens.
func Tokens(n uint64) Amount {
	var a Amount
	a.v.Mul(uint256.NewInt(n), unitPerToken)
	return a
}

func (a Amount) IsZero() bool {
	return a.v.IsZero()
}

// Cmp returns -1, 0 or +1 like `big.Int.Cmp`.
func (a Amount) Cmp(b Amount) int {
	return a.v.Cmp(&b.v)
}

func (a Amount) Equal(b Amount) bool {
	return a.v.Eq(&b.v)
}

func (a Amount) LessThan(b Amount) bool {
	return a.v.Lt(&b.v)
}

// Stringer interface implementation
func (a Amount) String() string {
	return a.v.Dec()
}

// Uint256 returns a copy of the underlying integer.
func (a Amount) Uint256() *uint256.Int {
	return a.v.Clone()
}

// Add an `Amount` to this `Amount`
//
// If the resulting value would overflow 256 bits, an error is returned
// along with the zero value.
func (a Amount) Add(added Amount) (n Amount, err error) {
	if _, overflow := n.v.AddOverflow(&a.v, &added.v); overflow {
		return ZeroAmount, errors.MaximumBalanceReached
	}
	return
}

// Counterpart of `Add` which panic instead of returning an error
// Useful for debugging and testing, should be avoided in regular code
func (a Amount) MustAdd(added Amount) Amount {
	if v, err := a.Add(added); err != nil {
		panic(err)
	} else {
		return v
	}
}

// Substract an `Amount` to this `Amount`
//
// If the resulting value would underflow, an error is returned,
// along with the zero value.
func (a Amount) Sub(sub Amount) (n Amount, err error) {
	if _, underflow := n.v.SubOverflow(&a.v, &sub.v); underflow {
		return ZeroAmount, errors.InsufficientBalance
	}
	return
}

// Counterpart of `Sub` which panic instead of returning an error
// Useful for debugging and testing, should be avoided in regular code
func (a Amount) MustSub(sub Amount) Amount {
	if v, err := a.Sub(sub); err != nil {
		panic(err)
	} else {
		return v
	}
}

// FormatTokens renders the amount as whole tokens with the trailing zeros of
// the fraction trimmed, eg. "100" or "0.5".
func (a Amount) FormatTokens() string {
	var whole, frac uint256.Int
	whole.DivMod(&a.v, unitPerToken, &frac)

	if frac.IsZero() {
		return whole.Dec()
	}

	f := frac.Dec()
	f = strings.Repeat("0", Decimals-len(f)) + f
	return whole.Dec() + "." + strings.TrimRight(f, "0")
}

// TokensFloat is the amount in whole tokens as a float. Only for display
// and metrics; never compare or add the result.
func (a Amount) TokensFloat() float64 {
	f, _ := new(big.Float).Quo(
		new(big.Float).SetInt(a.v.ToBig()),
		new(big.Float).SetInt(unitPerToken.ToBig()),
	).Float64()
	return f
}

// Implement JSON's Marshaler interface
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("\"%s\"", a.String())), nil
}

// Implement JSON's Unmarshaler interface
func (a *Amount) UnmarshalJSON(b []byte) (err error) {
	s := string(b)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}

	*a, err = AmountFromString(s)
	return
}

// Implement RLP's Encoder interface
func (a Amount) EncodeRLP(w io.Writer) error {
	return rlp.Encode(w, a.v.ToBig())
}

// Implement RLP's Decoder interface
func (a *Amount) DecodeRLP(s *rlp.Stream) error {
	b, err := s.BigInt()
	if err != nil {
		return err
	}
	if overflow := a.v.SetFromBig(b); overflow {
		return errors.MaximumBalanceReached
	}
	return nil
}

// Implement yaml.v2's Marshaler interface
func (a Amount) MarshalYAML() (interface{}, error) {
	return a.String(), nil
}

// Implement yaml.v2's Unmarshaler interface; both base units ("100") and
// token notation ("100tokens", "0.5tokens") are accepted.
func (a *Amount) UnmarshalYAML(unmarshal func(interface{}) error) (err error) {
	var s string
	if err = unmarshal(&s); err != nil {
		return
	}

	*a, err = ParseAmount(s)
	return
}

// AmountFromString parses an `Amount` from a string of base units, made
// only of digits. It returns the zero amount and an `error` for anything
// else.
func AmountFromString(str string) (Amount, error) {
	var a Amount
	if err := a.v.SetFromDecimal(str); err != nil {
		return ZeroAmount, errors.InvalidAmount.Wrap(err)
	}
	return a, nil
}

// Same as AmountFromString, except it `panic`s if an error happens
func MustAmountFromString(str string) Amount {
	if value, err := AmountFromString(str); err != nil {
		panic(err)
	} else {
		return value
	}
}

// ParseTokens parses a decimal token quantity like "100" or "12.5" into base
// units. More than `Decimals` fractional digits is an error.
func ParseTokens(str string) (Amount, error) {
	str = strings.TrimSpace(str)
	if len(str) < 1 {
		return ZeroAmount, errors.InvalidAmount
	}

	parts := strings.SplitN(str, ".", 2)
	whole, frac := parts[0], ""
	if len(parts) == 2 {
		frac = parts[1]
	}
	if len(frac) > Decimals {
		return ZeroAmount, errors.InvalidAmount.Clone().SetData("reason", "too many decimals")
	}
	if len(whole) < 1 {
		whole = "0"
	}

	digits := whole + frac + strings.Repeat("0", Decimals-len(frac))
	digits = strings.TrimLeft(digits, "0")
	if len(digits) < 1 {
		return ZeroAmount, nil
	}

	return AmountFromString(digits)
}

// ParseAmount accepts either base units ("1000") or a token quantity with
// the "tokens" suffix ("1.5tokens"). Commas and underscores are treated as
// digit separators.
func ParseAmount(input string) (Amount, error) {
	s := strings.TrimSpace(input)
	s = strings.Replace(s, ",", "", -1)
	s = strings.Replace(s, "_", "", -1)

	if strings.HasSuffix(s, "tokens") {
		return ParseTokens(strings.TrimSuffix(s, "tokens"))
	}

	return AmountFromString(s)
}
