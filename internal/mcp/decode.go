package mcp

import (
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/etlefig/Bootschappenbot/internal/item"
)

// decode unmarshals MCP request arguments into a typed struct.
func decode[T any](req mcp.CallToolRequest) (T, error) {
	var result T
	args := req.GetArguments()
	b, err := json.Marshal(args)
	if err != nil {
		return result, fmt.Errorf("marshal args: %w", err)
	}
	if err := json.Unmarshal(b, &result); err != nil {
		return result, fmt.Errorf("unmarshal args: %w", err)
	}
	return result, nil
}

// listArg maps a tool's list argument onto a list. Aliases ("menu",
// "boodschappen") are accepted; anything else is passed through so the
// operation rejects it.
func listArg(raw string) item.List {
	if raw == "" {
		return item.ListDefault
	}
	if l, ok := item.ParseList(raw); ok {
		return l
	}
	return item.List(raw)
}

// optionalListArg is listArg for arguments where absence means "every list".
func optionalListArg(raw string) *item.List {
	if raw == "" {
		return nil
	}
	l := listArg(raw)
	return &l
}
