// Package game holds types shared by both adjudication protocols.
package game

import "strings"

// Identity is an opaque player or role identity. The engine never inspects
// its structure beyond equality; bindings into commitments use its raw bytes.
type Identity string

// Valid reports whether the identity carries any payload.
func (i Identity) Valid() bool {
	return strings.TrimSpace(string(i)) != ""
}

// Participants is the pair of identities jointly owning a session.
type Participants struct {
	P1 Identity
	P2 Identity
}

// Contains reports whether the caller is one of the two participants.
func (p Participants) Contains(caller Identity) bool {
	return caller == p.P1 || caller == p.P2
}

// Slot identifies which participant slot a caller occupies.
type Slot int

const (
	// SlotNone indicates the caller is not a participant.
	SlotNone Slot = iota
	// SlotP1 is the first participant slot.
	SlotP1
	// SlotP2 is the second participant slot.
	SlotP2
)

// SlotOf resolves the caller's participant slot.
func (p Participants) SlotOf(caller Identity) Slot {
	switch caller {
	case p.P1:
		return SlotP1
	case p.P2:
		return SlotP2
	default:
		return SlotNone
	}
}

// Stakes are the points each participant wagers at session start.
type Stakes struct {
	P1 int64
	P2 int64
}
