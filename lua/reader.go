package lua

import (
	"fmt"

	"github.com/yuin/gluamapper"
	lua "github.com/yuin/gopher-lua"

	"github.com/samaelod/netprobe/types"
)

// Script is the table a Lua response script returns:
//
//	return {
//		responses = {
//			{ kind = "string", value = "PONG" },
//			{ kind = "hex", value = "48656c6c6f" },
//		},
//	}
type Script struct {
	Responses []Response
}

type Response struct {
	Index int
	Kind  string
	Value string
}

func ReadScript(path string) ([]types.ResponseEntry, error) {
	L := lua.NewState()
	defer L.Close()

	// Execute Lua file
	if err := L.DoFile(path); err != nil {
		return nil, err
	}

	// Lua file returns script table
	lv := L.Get(-1)
	table, ok := lv.(*lua.LTable)
	if !ok {
		return nil, fmt.Errorf("lua file did not return a table")
	}

	var sc Script
	if err := gluamapper.Map(table, &sc); err != nil {
		return nil, err
	}

	return sc.Entries()
}

// Entries decodes the script rows in order, skipping unknown kinds the same
// way the CSV loader does.
func (s *Script) Entries() ([]types.ResponseEntry, error) {
	entries := make([]types.ResponseEntry, 0, len(s.Responses))
	for i, r := range s.Responses {
		kind, ok := types.ParseKind(r.Kind)
		if !ok {
			continue
		}
		entry, err := types.DecodeEntry(fmt.Sprint(r.Index), kind, r.Value)
		if err != nil {
			return nil, fmt.Errorf("response %d: %w", i+1, err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
