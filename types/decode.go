package types

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

// DecodeEntry builds one entry from raw script fields. A non-numeric index
// is kept as -1 since ordering never depends on it.
func DecodeEntry(index string, kind Kind, value string) (ResponseEntry, error) {
	idx, err := strconv.Atoi(strings.TrimSpace(index))
	if err != nil {
		idx = -1
	}

	entry := ResponseEntry{Index: idx, Kind: kind}
	switch kind {
	case KindHex:
		payload, err := DecodeHex(value)
		if err != nil {
			return ResponseEntry{}, err
		}
		entry.Payload = payload
	case KindText:
		entry.Payload = []byte(value)
	}
	return entry, nil
}

// DecodeHex accepts whitespace between whole bytes ("48 65 6c") but not
// inside one ("4 8").
func DecodeHex(value string) ([]byte, error) {
	var out []byte
	for _, field := range strings.Fields(value) {
		b, err := hex.DecodeString(field)
		if err != nil {
			return nil, fmt.Errorf("%w %q: %v", ErrMalformedHex, value, err)
		}
		out = append(out, b...)
	}
	if out == nil {
		out = []byte{}
	}
	return out, nil
}
