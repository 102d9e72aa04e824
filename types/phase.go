package types

import "fmt"

// Phase is the lifecycle stage of an election, ballot or pool.
type Phase uint8

const (
	// PhaseBuilding is the initial phase, components are being wired.
	PhaseBuilding Phase = iota
	// PhaseVoting accepts votes.
	PhaseVoting
	// PhaseClosed no longer accepts votes; the private key may be released.
	PhaseClosed
	// PhaseAborted is terminal.
	PhaseAborted
)

var phaseNames = map[Phase]string{
	PhaseBuilding: "building",
	PhaseVoting:   "voting",
	PhaseClosed:   "closed",
	PhaseAborted:  "aborted",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return fmt.Sprintf("phase(%d)", uint8(p))
}

// MarshalText implements encoding.TextMarshaler.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Phase) UnmarshalText(data []byte) error {
	for phase, name := range phaseNames {
		if name == string(data) {
			*p = phase
			return nil
		}
	}
	return fmt.Errorf("%w: unknown phase %q", ErrInvalidInput, data)
}
