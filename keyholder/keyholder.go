// Package keyholder implements two-phase custody of an election key pair:
// the public key is published while votes are being collected, the private
// key only once the election is closed.
package keyholder

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/vocdoni/ballotbox/types"
)

// Holder stores the key pair published by the revealer.
type Holder struct {
	Revealer   common.Address
	PublicKey  []byte
	PrivateKey []byte
}

// New returns an empty Holder controlled by revealer.
func New(revealer common.Address) Holder {
	return Holder{Revealer: revealer}
}

// SetPublicKey stores the public key. Rejected once the phase is CLOSED.
func (h *Holder) SetPublicKey(caller common.Address, current types.Phase, key []byte) error {
	if err := h.requireRevealer(caller, key); err != nil {
		return err
	}
	if current == types.PhaseClosed {
		return fmt.Errorf("%w: public key cannot change once closed", types.ErrInvalidState)
	}
	h.PublicKey = append([]byte(nil), key...)
	return nil
}

// SetPrivateKey stores the private key. Only allowed when the phase is
// CLOSED.
func (h *Holder) SetPrivateKey(caller common.Address, current types.Phase, key []byte) error {
	if err := h.requireRevealer(caller, key); err != nil {
		return err
	}
	if current != types.PhaseClosed {
		return fmt.Errorf("%w: private key can only be released once closed, phase is %s",
			types.ErrInvalidState, current)
	}
	h.PrivateKey = append([]byte(nil), key...)
	return nil
}

func (h *Holder) requireRevealer(caller common.Address, key []byte) error {
	if caller != h.Revealer {
		return fmt.Errorf("%w: %s is not the revealer", types.ErrUnauthorized, caller.Hex())
	}
	if len(key) == 0 {
		return fmt.Errorf("%w: empty key", types.ErrInvalidInput)
	}
	return nil
}
