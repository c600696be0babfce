package types

import "fmt"

// Kind tags how a response script value is encoded.
type Kind int

const (
	KindHex Kind = iota
	KindText
)

// ParseKind maps a script tag to a Kind. ok is false for tags the loader
// should skip.
func ParseKind(tag string) (Kind, bool) {
	switch tag {
	case "hex":
		return KindHex, true
	case "string":
		return KindText, true
	}
	return 0, false
}

func (k Kind) String() string {
	switch k {
	case KindHex:
		return "hex"
	case KindText:
		return "string"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

type ResponseEntry struct {
	Index   int // as written in the script; ordering comes from position
	Kind    Kind
	Payload []byte
}

// Sequence is the ordered list of canned replies a scripted server walks
// through. It is built once at startup and never mutated afterwards.
type Sequence struct {
	entries []ResponseEntry
}

func NewSequence(entries []ResponseEntry) Sequence {
	cp := make([]ResponseEntry, len(entries))
	copy(cp, entries)
	return Sequence{entries: cp}
}

func (s Sequence) Len() int { return len(s.entries) }

func (s Sequence) Entry(i int) ResponseEntry { return s.entries[i] }

func (s Sequence) Payload(i int) []byte { return s.entries[i].Payload }

// Entries returns a copy of the entries.
func (s Sequence) Entries() []ResponseEntry {
	cp := make([]ResponseEntry, len(s.entries))
	copy(cp, s.entries)
	return cp
}

func (s Sequence) Payloads() [][]byte {
	out := make([][]byte, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.Payload
	}
	return out
}

type Protocol string

const (
	ProtocolTCP Protocol = "tcp"
	ProtocolUDP Protocol = "udp"
)

func ParseProtocol(s string) (Protocol, error) {
	switch Protocol(s) {
	case ProtocolTCP, ProtocolUDP:
		return Protocol(s), nil
	}
	return "", fmt.Errorf("unknown protocol %q (want tcp or udp)", s)
}

// InputMode selects where the client takes outbound messages from.
type InputMode int

const (
	InputInteractive InputMode = iota
	InputFile
)

// InputModeFor derives the mode from the presence of an input file only.
func InputModeFor(filePath string) InputMode {
	if filePath != "" {
		return InputFile
	}
	return InputInteractive
}

type SubMode int

const (
	SubModeScripted SubMode = iota
	SubModeEcho
)

func (m SubMode) String() string {
	if m == SubModeEcho {
		return "echo"
	}
	return "scripted"
}

// CursorScope controls how a UDP scripted server tracks its position in the
// sequence.
type CursorScope int

const (
	CursorGlobal CursorScope = iota
	CursorPerPeer
)

type PortStatus int

const (
	Closed PortStatus = iota
	Open
)

func (s PortStatus) String() string {
	if s == Open {
		return "open"
	}
	return "closed"
}
