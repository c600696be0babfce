// Package script turns response script files into a types.Sequence.
//
// The native format is CSV with three fields per row: index, kind, value.
// Kind is "hex" (value is hex encoded bytes) or "string" (value is sent as
// its UTF-8 bytes). Rows with any other kind are skipped. Lua scripts and
// packet captures are accepted too and picked by file extension.
package script

import (
	"encoding/csv"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/samaelod/netprobe/lua"
	"github.com/samaelod/netprobe/pcapreader"
	"github.com/samaelod/netprobe/types"
)

// Options only matter for capture files.
type Options struct {
	CapturePort     int
	CaptureProtocol types.Protocol
}

// Load reads the script at path. Every failure is returned as a
// *types.LoadError.
func Load(path string, opts Options) (types.Sequence, error) {
	var (
		entries []types.ResponseEntry
		err     error
	)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".lua":
		entries, err = lua.ReadScript(path)
	case ".pcap", ".pcapng", ".cap":
		entries, err = pcapreader.ReadPCAP(path, pcapreader.Options{
			Port:     opts.CapturePort,
			Protocol: opts.CaptureProtocol,
		})
	default:
		entries, err = LoadCSV(path)
	}
	if err != nil {
		var le *types.LoadError
		if errors.As(err, &le) {
			return types.Sequence{}, err
		}
		return types.Sequence{}, &types.LoadError{Path: path, Err: err}
	}

	return types.NewSequence(entries), nil
}

func LoadCSV(path string) ([]types.ResponseEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &types.LoadError{Path: path, Err: err}
	}
	defer f.Close()

	entries, err := ParseCSV(f)
	if err != nil {
		return nil, &types.LoadError{Path: path, Err: err}
	}
	return entries, nil
}

func ParseCSV(r io.Reader) ([]types.ResponseEntry, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var entries []types.ResponseEntry
	for row := 1; ; row++ {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(rec) != 3 {
			return nil, fmt.Errorf("row %d: %w: want 3 fields, got %d", row, types.ErrMalformedRow, len(rec))
		}

		kind, ok := types.ParseKind(rec[1])
		if !ok {
			continue
		}

		entry, err := types.DecodeEntry(rec[0], kind, rec[2])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

// WriteCSV writes seq in the format ParseCSV reads.
func WriteCSV(w io.Writer, seq types.Sequence) error {
	cw := csv.NewWriter(w)
	for i, e := range seq.Entries() {
		value := string(e.Payload)
		if e.Kind == types.KindHex {
			value = hex.EncodeToString(e.Payload)
		}
		if err := cw.Write([]string{strconv.Itoa(i), e.Kind.String(), value}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
