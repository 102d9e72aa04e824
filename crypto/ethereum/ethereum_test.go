package ethereum

import (
	"encoding/hex"
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestSignKeysGeneration(t *testing.T) {
	c := qt.New(t)
	t.Parallel()

	s := NewSignKeys()
	c.Assert(s.Generate(), qt.IsNil)

	pub, priv := s.HexString()
	c.Assert(pub, qt.Not(qt.Equals), "")
	c.Assert(priv, qt.Not(qt.Equals), "")

	// Test key import
	imported := NewSignKeys()
	c.Assert(imported.AddHexKey(priv), qt.IsNil)

	importedPub, importedPriv := imported.HexString()
	c.Assert(importedPub, qt.Equals, pub)
	c.Assert(importedPriv, qt.Equals, priv)
}

func TestEthereumSigning(t *testing.T) {
	c := qt.New(t)
	t.Parallel()

	s := NewSignKeys()
	c.Assert(s.AddHexKey("0xfad9c8855b740a0b7ed4c221dbad0f33a83a49cad6b3fe8d5817ac83d38b6a19"), qt.IsNil)
	_, priv := s.HexString()
	c.Assert(priv, qt.Equals, "fad9c8855b740a0b7ed4c221dbad0f33a83a49cad6b3fe8d5817ac83d38b6a19")

	payload := []byte(`{"voteId":"01","nonce":"a"}`)
	signature, err := s.SignEthereum(payload)
	c.Assert(err, qt.IsNil)
	c.Assert(signature, qt.HasLen, SignatureLength)

	// same key and payload, same signature (RFC6979)
	again, err := s.SignEthereum(payload)
	c.Assert(err, qt.IsNil)
	c.Assert(hex.EncodeToString(again), qt.Equals, hex.EncodeToString(signature))

	// V shifted to 27/28 still recovers the signer
	shifted := append([]byte{}, signature...)
	shifted[64] += 27
	addr, err := AddrFromSignature(payload, shifted)
	c.Assert(err, qt.IsNil)
	c.Assert(addr, qt.Equals, s.Address())

	// a tampered payload recovers someone else
	addr, err = AddrFromSignature([]byte(`{"voteId":"02","nonce":"a"}`), signature)
	c.Assert(err, qt.IsNil)
	c.Assert(addr, qt.Not(qt.Equals), s.Address())

	_, err = AddrFromSignature(payload, signature[:10])
	c.Assert(err, qt.IsNotNil)

	_, err = NewSignKeys().SignEthereum(payload)
	c.Assert(err, qt.IsNotNil)
}

func TestAddressRecovery(t *testing.T) {
	c := qt.New(t)
	t.Parallel()

	testCases := []struct {
		name    string
		message []byte
	}{
		{
			name:    "simple message",
			message: []byte("cast vote 1"),
		},
		{
			name:    "different message",
			message: []byte("update vote 1"),
		},
	}

	// Generate keys
	s := NewSignKeys()
	c.Assert(s.Generate(), qt.IsNil)

	// Get address from public key
	expectedAddr, err := AddrFromPublicKey(s.PublicKey())
	c.Assert(err, qt.IsNil)
	c.Assert(expectedAddr.String(), qt.Equals, s.AddressString())

	// Test address recovery from signatures of different messages
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c := qt.New(t)

			signature, err := s.SignEthereum(tc.message)
			c.Assert(err, qt.IsNil)

			recoveredAddr, err := AddrFromSignature(tc.message, signature)
			c.Assert(err, qt.IsNil)
			c.Assert(recoveredAddr, qt.Equals, expectedAddr)
		})
	}
}
