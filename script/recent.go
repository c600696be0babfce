package script

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/samaelod/netprobe/lua"
	"github.com/samaelod/netprobe/types"
)

type Format string

const (
	FormatLua Format = "lua"
	FormatCSV Format = "csv"
)

func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case "", FormatLua:
		return FormatLua, nil
	case FormatCSV:
		return FormatCSV, nil
	}
	return "", fmt.Errorf("unknown script format %q (want lua or csv)", s)
}

// Write encodes seq in the given format.
func Write(w io.Writer, seq types.Sequence, format Format) error {
	if format == FormatCSV {
		return WriteCSV(w, seq)
	}
	return lua.WriteScript(w, seq)
}

// WriteFile writes seq to path, creating parent directories.
func WriteFile(path string, seq types.Sequence, format Format) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create script file: %w", err)
	}
	defer f.Close()

	if err := Write(f, seq, format); err != nil {
		return fmt.Errorf("failed to write script: %w", err)
	}
	return f.Close()
}

// SaveToRecent writes seq into recentDir under the source file's base name
// with an incrementing suffix: capture.pcap becomes capture_1.lua, then
// capture_2.lua, and so on. It returns the new path.
func SaveToRecent(seq types.Sequence, recentDir, originalPath string, format Format) (string, error) {
	if recentDir == "" {
		recentDir = "recent"
	}

	if err := os.MkdirAll(recentDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create recent directory: %w", err)
	}

	baseName := filepath.Base(originalPath)
	nameWithoutExt := strings.TrimSuffix(baseName, filepath.Ext(baseName))

	counter := 1
	var newPath string
	for {
		newPath = filepath.Join(recentDir, fmt.Sprintf("%s_%d.%s", nameWithoutExt, counter, format))
		if _, err := os.Stat(newPath); os.IsNotExist(err) {
			break
		}
		counter++
	}

	if err := WriteFile(newPath, seq, format); err != nil {
		return "", err
	}
	return newPath, nil
}
