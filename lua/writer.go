package lua

import (
	"encoding/hex"
	"fmt"
	"io"

	"github.com/samaelod/netprobe/types"
)

func WriteScript(w io.Writer, seq types.Sequence) error {
	bw := &errWriter{w: w}

	bw.println("local script = {}")
	bw.println()
	bw.println("-- RESPONSES ---------------------------------------")
	bw.println("script.responses = {")
	for i, e := range seq.Entries() {
		value := string(e.Payload)
		if e.Kind == types.KindHex {
			value = hex.EncodeToString(e.Payload)
		}
		bw.println("\t{")
		bw.printf("\t\tindex = %d,\n", i)
		bw.printf("\t\tkind = %q,\n", e.Kind.String())
		bw.printf("\t\tvalue = %s,\n", quote(value))
		bw.println("\t},")
	}
	bw.println("}")
	bw.println()
	bw.println("return script")

	return bw.err
}

type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, a ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, a...)
}

func (e *errWriter) println(a ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintln(e.w, a...)
}

// quote renders s as a Lua string literal. Non-printable bytes use decimal
// escapes so arbitrary payloads survive a round trip.
func quote(s string) string {
	out := make([]byte, 0, len(s)+2)
	out = append(out, '"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '"' || c == '\\':
			out = append(out, '\\', c)
		case c == '\n':
			out = append(out, '\\', 'n')
		case c < 0x20 || c == 0x7f:
			out = append(out, fmt.Sprintf("\\%03d", c)...)
		default:
			out = append(out, c)
		}
	}
	return string(append(out, '"'))
}
