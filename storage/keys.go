package storage

import (
	"encoding/binary"
)

var (
	// Prefixes for the keys in the database.
	NoncePrefix     = []byte("n/")
	KindPrefix      = []byte("k/")
	ElectionPrefix  = []byte("e/")
	BallotPrefix    = []byte("b/")
	PoolPrefix      = []byte("p/")
	TokenPrefix     = []byte("t/")
	AllowancePrefix = []byte("a/")

	PoolVotePrefix      = []byte("pv/")
	PoolVoteIndexPrefix = []byte("pi/")
	PoolNoncePrefix     = []byte("pj/")

	TokenBalancePrefix     = []byte("tb/")
	TokenUtilizationPrefix = []byte("tu/")
	TokenElectionPrefix    = []byte("te/")
	TokenClosedPrefix      = []byte("tc/")

	AllowanceBalancePrefix  = []byte("ab/")
	AllowanceElectionPrefix = []byte("ae/")
)

// Key concatenates the given parts into a single key.
func Key(parts ...[]byte) []byte {
	n := 0
	for _, p := range parts {
		n += len(p)
	}
	k := make([]byte, 0, n)
	for _, p := range parts {
		k = append(k, p...)
	}
	return k
}

// Uint64Key encodes v big-endian so keys sort numerically.
func Uint64Key(v uint64) []byte {
	return binary.BigEndian.AppendUint64(nil, v)
}

// Uint64FromKey decodes a key produced by Uint64Key.
func Uint64FromKey(k []byte) uint64 {
	if len(k) < 8 {
		return 0
	}
	return binary.BigEndian.Uint64(k[:8])
}
