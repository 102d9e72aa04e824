package types

import (
	"fmt"
	"math/big"

	"github.com/fxamacker/cbor/v2"
)

// BigInt is a big.Int wrapper which marshals JSON to a string representation
// of the big number. Token balances and supplies travel as BigInt.
type BigInt big.Int

// NewInt returns a BigInt holding x.
func NewInt(x int64) *BigInt {
	return (*BigInt)(big.NewInt(x))
}

// MathBigInt returns the underlying big.Int.
func (i *BigInt) MathBigInt() *big.Int {
	return (*big.Int)(i)
}

func (i BigInt) String() string {
	return (*big.Int)(&i).String()
}

// MarshalText implements the encoding.TextMarshaler interface, json uses it
// through the json string encoding.
func (i BigInt) MarshalText() ([]byte, error) {
	return (*big.Int)(&i).MarshalText()
}

// UnmarshalText implements the encoding.TextUnmarshaler interface.
func (i *BigInt) UnmarshalText(data []byte) error {
	if _, ok := (*big.Int)(i).SetString(string(data), 0); !ok {
		return fmt.Errorf("invalid big int: %q", data)
	}
	return nil
}

// MarshalCBOR encodes the number as a CBOR bignum.
func (i *BigInt) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal((*big.Int)(i))
}

// UnmarshalCBOR decodes a CBOR bignum or integer.
func (i *BigInt) UnmarshalCBOR(data []byte) error {
	n := new(big.Int)
	if err := cbor.Unmarshal(data, n); err != nil {
		return err
	}
	(*big.Int)(i).Set(n)
	return nil
}

// SetUint64 sets the value of x to the big number.
func (i *BigInt) SetUint64(x uint64) *BigInt {
	(*big.Int)(i).SetUint64(x)
	return i
}

// SetBigInt sets the value of x to the big number.
func (i *BigInt) SetBigInt(x *big.Int) *BigInt {
	(*big.Int)(i).Set(x)
	return i
}

// Add sets i to the sum x+y and returns i.
func (i *BigInt) Add(x, y *BigInt) *BigInt {
	(*big.Int)(i).Add((*big.Int)(x), (*big.Int)(y))
	return i
}

// Sub sets i to the difference x-y and returns i.
func (i *BigInt) Sub(x, y *BigInt) *BigInt {
	(*big.Int)(i).Sub((*big.Int)(x), (*big.Int)(y))
	return i
}

// Mul sets i to the product x*y and returns i.
func (i *BigInt) Mul(x, y *BigInt) *BigInt {
	(*big.Int)(i).Mul((*big.Int)(x), (*big.Int)(y))
	return i
}

// Cmp compares i and x, returning -1, 0 or +1.
func (i *BigInt) Cmp(x *BigInt) int {
	return (*big.Int)(i).Cmp((*big.Int)(x))
}

// Sign returns -1, 0 or +1 depending on the sign of i.
func (i *BigInt) Sign() int {
	return (*big.Int)(i).Sign()
}

// Bytes returns the absolute value of i as a big-endian byte slice.
func (i *BigInt) Bytes() []byte {
	return (*big.Int)(i).Bytes()
}

// SetBytes interprets buf as a big-endian unsigned integer.
func (i *BigInt) SetBytes(buf []byte) *BigInt {
	(*big.Int)(i).SetBytes(buf)
	return i
}

// Equal reports whether i and x hold the same value. Nil values are equal only
// to each other.
func (i *BigInt) Equal(x *BigInt) bool {
	if i == nil || x == nil {
		return i == x
	}
	return i.Cmp(x) == 0
}
