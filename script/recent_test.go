package script

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/samaelod/netprobe/types"
)

func TestSaveToRecent(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "recent")
	seq := types.NewSequence([]types.ResponseEntry{
		{Kind: types.KindText, Payload: []byte("PONG")},
		{Kind: types.KindHex, Payload: []byte("Hello")},
	})

	first, err := SaveToRecent(seq, dir, "/captures/trace.pcap", FormatLua)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "trace_1.lua"), first)

	second, err := SaveToRecent(seq, dir, "/captures/trace.pcap", FormatLua)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "trace_2.lua"), second)

	csvPath, err := SaveToRecent(seq, dir, "trace.pcap", FormatCSV)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "trace_1.csv"), csvPath)

	for _, p := range []string{first, csvPath} {
		loaded, err := Load(p, Options{})
		require.NoError(t, err)
		require.Equal(t, seq.Payloads(), loaded.Payloads())
	}

	data, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	require.Equal(t, "0,string,PONG\n1,hex,48656c6c6f\n", string(data))
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatLua, false},
		{"LUA", FormatLua, false},
		{"csv", FormatCSV, false},
		{"yaml", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}
