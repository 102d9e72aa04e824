package types

import "fmt"

// Kind identifies the type of an entity stored in the ledger repository.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindElection
	KindBallot
	KindPool
	KindToken
	KindAllowance
)

func (k Kind) String() string {
	switch k {
	case KindElection:
		return "election"
	case KindBallot:
		return "ballot"
	case KindPool:
		return "pool"
	case KindToken:
		return "token"
	case KindAllowance:
		return "allowance"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(data []byte) error {
	for kind := KindUnknown; kind <= KindAllowance; kind++ {
		if kind.String() == string(data) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown kind %q", data)
}
