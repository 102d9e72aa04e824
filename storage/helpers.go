package storage

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

var encMode = func() cbor.EncMode {
	em, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("cbor encode mode: %v", err))
	}
	return em
}()

// Artifact encoding/decoding
func encodeArtifact(a any) ([]byte, error) {
	data, err := encMode.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("encode artifact: %w", err)
	}
	return data, nil
}

func decodeArtifact(data []byte, out any) error {
	if err := cbor.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode artifact: %w", err)
	}
	return nil
}

// DecodeArtifact decodes a raw value obtained through Tx.Iterate or
// Tx.GetRaw.
func DecodeArtifact(data []byte, out any) error {
	return decodeArtifact(data, out)
}
