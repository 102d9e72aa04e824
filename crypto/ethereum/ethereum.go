// Package ethereum wraps secp256k1 keys the way Ethereum wallets use them, so
// requests signed with any wallet can be attributed to a principal address.
package ethereum

import (
	"crypto/ecdsa"
	"encoding/hex"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/vocdoni/ballotbox/util"
)

const (
	// SignatureLength is the size of a recoverable signature [R || S || V].
	SignatureLength = ethcrypto.SignatureLength
	// SigningPrefix is prepended to every signed payload (EIP-191).
	SigningPrefix = "\u0019Ethereum Signed Message:\n"
)

// SignKeys holds a secp256k1 key pair.
type SignKeys struct {
	Public  ecdsa.PublicKey
	Private ecdsa.PrivateKey
}

// NewSignKeys returns an empty SignKeys.
func NewSignKeys() *SignKeys {
	return &SignKeys{}
}

// Generate creates a new random key pair.
func (k *SignKeys) Generate() error {
	key, err := ethcrypto.GenerateKey()
	if err != nil {
		return err
	}
	k.Private = *key
	k.Public = key.PublicKey
	return nil
}

// AddHexKey imports a hex encoded private key, with or without 0x prefix.
func (k *SignKeys) AddHexKey(privHex string) error {
	key, err := ethcrypto.HexToECDSA(util.TrimHex(privHex))
	if err != nil {
		return err
	}
	k.Private = *key
	k.Public = key.PublicKey
	return nil
}

// HexString returns the compressed public key and the private key, hex
// encoded without prefix.
func (k *SignKeys) HexString() (string, string) {
	pub := hex.EncodeToString(ethcrypto.CompressPubkey(&k.Public))
	priv := hex.EncodeToString(ethcrypto.FromECDSA(&k.Private))
	return pub, priv
}

// PublicKey returns the compressed public key bytes.
func (k *SignKeys) PublicKey() []byte {
	return ethcrypto.CompressPubkey(&k.Public)
}

// Address returns the Ethereum address of the key pair.
func (k *SignKeys) Address() common.Address {
	return ethcrypto.PubkeyToAddress(k.Public)
}

// AddressString returns the checksummed address.
func (k *SignKeys) AddressString() string {
	return k.Address().String()
}

// SignEthereum signs message with the EIP-191 prefix. The returned signature
// carries V in {0,1}.
func (k *SignKeys) SignEthereum(message []byte) ([]byte, error) {
	if k.Private.D == nil {
		return nil, fmt.Errorf("no private key available")
	}
	return ethcrypto.Sign(HashRaw(message), &k.Private)
}

// HashRaw hashes data with the Ethereum signed message prefix.
func HashRaw(data []byte) []byte {
	return ethcrypto.Keccak256([]byte(fmt.Sprintf("%s%d%s", SigningPrefix, len(data), data)))
}

// AddrFromSignature recovers the signer address of message. Signatures with
// V in {27,28} are accepted as well.
func AddrFromSignature(message, signature []byte) (common.Address, error) {
	if len(signature) != SignatureLength {
		return common.Address{}, fmt.Errorf("invalid signature length %d", len(signature))
	}
	sig := make([]byte, SignatureLength)
	copy(sig, signature)
	if sig[64] >= 27 {
		sig[64] -= 27
	}
	pub, err := ethcrypto.SigToPub(HashRaw(message), sig)
	if err != nil {
		return common.Address{}, fmt.Errorf("cannot recover public key: %w", err)
	}
	return ethcrypto.PubkeyToAddress(*pub), nil
}

// AddrFromPublicKey returns the address of a compressed or uncompressed
// public key.
func AddrFromPublicKey(pub []byte) (common.Address, error) {
	var (
		key *ecdsa.PublicKey
		err error
	)
	if len(pub) == 33 {
		key, err = ethcrypto.DecompressPubkey(pub)
	} else {
		key, err = ethcrypto.UnmarshalPubkey(pub)
	}
	if err != nil {
		return common.Address{}, err
	}
	return ethcrypto.PubkeyToAddress(*key), nil
}
