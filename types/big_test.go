package types

import (
	"encoding/json"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/fxamacker/cbor/v2"
)

func TestBigIntJSON(t *testing.T) {
	c := qt.New(t)

	data, err := json.Marshal(map[string]*BigInt{"supply": NewInt(1234567890)})
	c.Assert(err, qt.IsNil)
	c.Assert(string(data), qt.Equals, `{"supply":"1234567890"}`)

	var decoded map[string]*BigInt
	c.Assert(json.Unmarshal(data, &decoded), qt.IsNil)
	c.Assert(decoded["supply"].Equal(NewInt(1234567890)), qt.IsTrue)

	// hex input is accepted, garbage is not
	c.Assert(json.Unmarshal([]byte(`{"a":"0x10"}`), &decoded), qt.IsNil)
	c.Assert(decoded["a"].String(), qt.Equals, "16")
	c.Assert(json.Unmarshal([]byte(`{"a":"ten"}`), &decoded), qt.ErrorMatches, `.*invalid big int: "ten"`)
	c.Assert(new(BigInt).UnmarshalText([]byte("")), qt.ErrorMatches, `invalid big int: ""`)
}

func TestBigIntCBOR(t *testing.T) {
	c := qt.New(t)

	type balance struct {
		Amount *BigInt
	}
	data, err := cbor.Marshal(&balance{Amount: NewInt(42)})
	c.Assert(err, qt.IsNil)
	decoded := &balance{Amount: new(BigInt)}
	c.Assert(cbor.Unmarshal(data, decoded), qt.IsNil)
	c.Assert(decoded.Amount.String(), qt.Equals, "42")
}

func TestBigIntBytes(t *testing.T) {
	c := qt.New(t)

	for _, v := range []int64{0, 1, 255, 256, 1 << 40} {
		stored := NewInt(v).Bytes()
		got := new(BigInt).SetBytes(stored)
		c.Assert(got.Equal(NewInt(v)), qt.IsTrue, qt.Commentf("value %d", v))
	}
	// zero is stored as an empty value
	c.Assert(NewInt(0).Bytes(), qt.HasLen, 0)
	c.Assert(new(BigInt).SetBytes(nil).Sign(), qt.Equals, 0)
}

func TestBigIntArithmetic(t *testing.T) {
	c := qt.New(t)

	balance := NewInt(5)
	c.Assert(balance.Cmp(NewInt(6)), qt.Equals, -1)
	c.Assert(balance.Cmp(NewInt(5)), qt.Equals, 0)
	c.Assert(balance.Sub(balance, NewInt(5)).Sign(), qt.Equals, 0)
	c.Assert(NewInt(2).Sub(NewInt(2), NewInt(3)).Sign(), qt.Equals, -1)
	c.Assert(new(BigInt).Mul(NewInt(5), NewInt(3)).String(), qt.Equals, "15")
	c.Assert(new(BigInt).Add(NewInt(5), NewInt(3)).String(), qt.Equals, "8")

	var nilInt *BigInt
	c.Assert(nilInt.Equal(nil), qt.IsTrue)
	c.Assert(nilInt.Equal(NewInt(0)), qt.IsFalse)
}
