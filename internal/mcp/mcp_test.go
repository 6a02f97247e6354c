package mcp

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/etlefig/Bootschappenbot/internal/config"
	"github.com/etlefig/Bootschappenbot/internal/db"
	"github.com/etlefig/Bootschappenbot/internal/errors"
	"github.com/etlefig/Bootschappenbot/internal/item"
	"github.com/etlefig/Bootschappenbot/internal/ops"
)

// testSetup creates a temporary database and handlers for testing.
func testSetup(t *testing.T) (*sql.DB, *config.Config, *Handlers) {
	t.Helper()

	tmpDir := t.TempDir()
	database, err := db.Init(tmpDir)
	if err != nil {
		t.Fatalf("failed to init db: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	cfg := config.DefaultConfig()
	return database, cfg, NewHandlers(database, cfg, filepath.Join(tmpDir, "exports"), nil)
}

// makeRequest creates a CallToolRequest with the given arguments.
func makeRequest(args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: args,
		},
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if result == nil || len(result.Content) == 0 {
		t.Fatal("empty tool result")
	}
	tc, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content[0] is %T, want TextContent", result.Content[0])
	}
	return tc.Text
}

func decodeResult(t *testing.T, result *mcp.CallToolResult, v any) {
	t.Helper()
	if result.IsError {
		t.Fatalf("unexpected error result: %s", resultText(t, result))
	}
	if err := json.Unmarshal([]byte(resultText(t, result)), v); err != nil {
		t.Fatalf("decode result: %v", err)
	}
}

func errorCode(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if !result.IsError {
		t.Fatalf("expected error result, got %s", resultText(t, result))
	}
	var payload struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal([]byte(resultText(t, result)), &payload); err != nil {
		t.Fatalf("decode error payload: %v", err)
	}
	return payload.Error.Code
}

func call(t *testing.T, handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]any) *mcp.CallToolResult {
	t.Helper()
	result, err := handler(context.Background(), makeRequest(args))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	return result
}

func TestHandleMessage(t *testing.T) {
	_, _, h := testSetup(t)

	var out MessageResult
	decodeResult(t, call(t, h.HandleMessage, map[string]any{"text": "menu: lasagne", "author": "Anna"}), &out)
	if out.Reply != "Toegevoegd aan Weekmenu." {
		t.Errorf("reply = %q", out.Reply)
	}
	if len(out.Changed) != 1 || out.Changed[0] != item.ListWeekmenu {
		t.Errorf("changed = %v", out.Changed)
	}

	decodeResult(t, call(t, h.HandleMessage, map[string]any{"text": "/list weekmenu"}), &out)
	if !strings.Contains(out.Reply, "lasagne — Anna") {
		t.Errorf("list reply = %q", out.Reply)
	}
}

func TestHandleMessage_SessionCategoryPerConversation(t *testing.T) {
	database, _, h := testSetup(t)

	call(t, h.HandleMessage, map[string]any{"text": "cat: Dranken", "conversation_id": "a", "user_id": "1"})
	call(t, h.HandleMessage, map[string]any{"text": "melk", "conversation_id": "a", "user_id": "1"})
	call(t, h.HandleMessage, map[string]any{"text": "kaas", "conversation_id": "b", "user_id": "1"})

	items, err := ops.Query(context.Background(), database, item.ListDefault)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("items = %d, want 2", len(items))
	}
	if items[0].Category != "Dranken" {
		t.Errorf("melk category = %q, want session category Dranken", items[0].Category)
	}
	if items[1].Category != "Zuivel & Eieren" {
		t.Errorf("kaas category = %q, want classifier result", items[1].Category)
	}
}

func TestHandleMessage_Silent(t *testing.T) {
	_, _, h := testSetup(t)

	var out MessageResult
	decodeResult(t, call(t, h.HandleMessage, map[string]any{"text": "  "}), &out)
	if !out.Silent || out.Reply != "" {
		t.Errorf("out = %+v, want silent", out)
	}
}

func TestHandleAdd(t *testing.T) {
	_, _, h := testSetup(t)

	var out ops.AddOutput
	decodeResult(t, call(t, h.HandleAdd, map[string]any{"text": "sambal", "list": "toko", "who": "Budi"}), &out)
	if out.Item.List != item.ListToko || out.Item.Category != "Toko" || !out.Classified {
		t.Errorf("item = %+v classified = %v", out.Item, out.Classified)
	}

	decodeResult(t, call(t, h.HandleAdd, map[string]any{"text": "melk", "category": "dranken"}), &out)
	if out.Item.Category != "Dranken" || out.Classified {
		t.Errorf("explicit category: item = %+v classified = %v", out.Item, out.Classified)
	}
}

func TestHandleAdd_Errors(t *testing.T) {
	_, _, h := testSetup(t)

	tests := []struct {
		name string
		args map[string]any
		code string
	}{
		{"empty text", map[string]any{"text": "  "}, string(errors.ErrEmptyInput)},
		{"bad category", map[string]any{"text": "melk", "category": "Bakker"}, string(errors.ErrInvalidCategory)},
		{"bad list", map[string]any{"text": "melk", "list": "bakker"}, string(errors.ErrInvalidRequest)},
		{"wrong type", map[string]any{"text": 12}, string(errors.ErrInvalidRequest)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if code := errorCode(t, call(t, h.HandleAdd, tt.args)); code != tt.code {
				t.Errorf("code = %q, want %q", code, tt.code)
			}
		})
	}
}

func TestHandleList(t *testing.T) {
	_, _, h := testSetup(t)
	call(t, h.HandleAdd, map[string]any{"text": "appels", "who": "Anna"})
	call(t, h.HandleAdd, map[string]any{"text": "melk", "who": "Anna"})

	var out ListResult
	decodeResult(t, call(t, h.HandleList, map[string]any{}), &out)
	if out.List != item.ListDefault || out.Title != "Boodschappen" {
		t.Errorf("list = %q title = %q", out.List, out.Title)
	}
	if len(out.Items) != 2 || out.Items[0].Text != "appels" {
		t.Errorf("items = %+v", out.Items)
	}
	if !strings.HasPrefix(out.Text, "Boodschappen\n\nGroente & Fruit\n1. appels — Anna") {
		t.Errorf("text = %q", out.Text)
	}

	decodeResult(t, call(t, h.HandleList, map[string]any{"list": "menu"}), &out)
	if out.List != item.ListWeekmenu || len(out.Items) != 0 || out.Text != "Weekmenu is leeg." {
		t.Errorf("alias list = %+v", out)
	}
}

func TestHandleOverview(t *testing.T) {
	_, _, h := testSetup(t)
	call(t, h.HandleAdd, map[string]any{"text": "sambal", "list": "toko"})

	var out struct {
		Lists []ops.ListCount `json:"lists"`
	}
	decodeResult(t, call(t, h.HandleOverview, nil), &out)
	if len(out.Lists) != 3 || out.Lists[2].List != item.ListToko || out.Lists[2].Total != 1 {
		t.Errorf("lists = %+v", out.Lists)
	}
}

func TestHandleDone(t *testing.T) {
	_, _, h := testSetup(t)
	call(t, h.HandleAdd, map[string]any{"text": "sambal", "list": "toko"})
	call(t, h.HandleAdd, map[string]any{"text": "halfvolle melk"})

	var out ops.MarkDoneOutput
	decodeResult(t, call(t, h.HandleDone, map[string]any{"match": "SAMBAL"}), &out)
	if out.Item.Text != "sambal" || !out.Item.Done || out.Item.List != item.ListToko {
		t.Errorf("item = %+v", out.Item)
	}

	if code := errorCode(t, call(t, h.HandleDone, map[string]any{"match": "melk", "list": "toko"})); code != string(errors.ErrNoMatch) {
		t.Errorf("scoped miss code = %q, want NO_MATCH", code)
	}
	if code := errorCode(t, call(t, h.HandleDone, map[string]any{"match": "sambal"})); code != string(errors.ErrNoMatch) {
		t.Errorf("done item matched again: code = %q", code)
	}
}

func TestHandleDone_ListScopeConfig(t *testing.T) {
	_, cfg, h := testSetup(t)
	cfg.DoneScope = config.DoneScopeList
	call(t, h.HandleAdd, map[string]any{"text": "sambal", "list": "toko"})

	if code := errorCode(t, call(t, h.HandleDone, map[string]any{"match": "sambal"})); code != string(errors.ErrNoMatch) {
		t.Errorf("code = %q, want NO_MATCH outside the primary list", code)
	}
}

func TestHandleClear(t *testing.T) {
	database, _, h := testSetup(t)
	call(t, h.HandleAdd, map[string]any{"text": "melk"})
	call(t, h.HandleAdd, map[string]any{"text": "brood"})
	call(t, h.HandleAdd, map[string]any{"text": "sambal", "list": "toko"})
	call(t, h.HandleDone, map[string]any{"match": "melk"})
	call(t, h.HandleDone, map[string]any{"match": "sambal"})

	var out ops.ClearOutput
	decodeResult(t, call(t, h.HandleClear, map[string]any{"done_only": true}), &out)
	if out.Removed != 2 {
		t.Errorf("removed = %d, want 2 across lists", out.Removed)
	}

	decodeResult(t, call(t, h.HandleClear, map[string]any{}), &out)
	if out.Removed != 1 || out.List != item.ListDefault {
		t.Errorf("clear default = %+v", out)
	}

	items, _ := ops.Query(context.Background(), database, item.ListDefault)
	if len(items) != 0 {
		t.Errorf("default list has %d items after clear", len(items))
	}
}

func TestHandleSetCategoryAndRemove(t *testing.T) {
	_, _, h := testSetup(t)
	call(t, h.HandleAdd, map[string]any{"text": "melk"})
	call(t, h.HandleAdd, map[string]any{"text": "kokosmelk"})

	var out ops.ItemOutput
	decodeResult(t, call(t, h.HandleSetCategory, map[string]any{"position": 2, "category": "Toko"}), &out)
	if out.Item.Text != "kokosmelk" || out.Item.Category != "Toko" {
		t.Errorf("set category item = %+v", out.Item)
	}

	if code := errorCode(t, call(t, h.HandleSetCategory, map[string]any{"position": 5, "category": "Toko"})); code != string(errors.ErrNotFound) {
		t.Errorf("out of range code = %q", code)
	}
	if code := errorCode(t, call(t, h.HandleSetCategory, map[string]any{"position": 1, "category": "Bakker"})); code != string(errors.ErrInvalidCategory) {
		t.Errorf("bad category code = %q", code)
	}

	decodeResult(t, call(t, h.HandleRemove, map[string]any{"position": 1}), &out)
	if out.Item.Text != "melk" {
		t.Errorf("removed = %+v", out.Item)
	}

	var list ListResult
	decodeResult(t, call(t, h.HandleList, nil), &list)
	if len(list.Items) != 1 || list.Items[0].Text != "kokosmelk" {
		t.Errorf("remaining = %+v", list.Items)
	}
}

func TestHandleExportImport(t *testing.T) {
	_, _, h := testSetup(t)
	call(t, h.HandleAdd, map[string]any{"text": "melk"})
	call(t, h.HandleAdd, map[string]any{"text": "sambal", "list": "toko"})

	path := filepath.Join(t.TempDir(), "lijst.jsonl")
	var exp ops.ExportOutput
	decodeResult(t, call(t, h.HandleExport, map[string]any{"path": path}), &exp)
	if exp.Count != 2 || exp.Path != path {
		t.Errorf("export = %+v", exp)
	}

	// Same ids already exist, so nothing is imported again.
	var imp ops.ImportOutput
	decodeResult(t, call(t, h.HandleImport, map[string]any{"path": path}), &imp)
	if imp.Imported != 0 || imp.Skipped != 2 {
		t.Errorf("reimport = %+v", imp)
	}

	// Into a fresh store.
	_, _, h2 := testSetup(t)
	decodeResult(t, call(t, h2.HandleImport, map[string]any{"path": path}), &imp)
	if imp.Imported != 2 {
		t.Errorf("import = %+v", imp)
	}
}

func TestHandleExport_DefaultDir(t *testing.T) {
	_, _, h := testSetup(t)
	call(t, h.HandleAdd, map[string]any{"text": "lasagne", "list": "weekmenu"})

	var exp ops.ExportOutput
	decodeResult(t, call(t, h.HandleExport, map[string]any{"list": "weekmenu"}), &exp)
	if filepath.Dir(exp.Path) != h.exportDir {
		t.Errorf("path = %q, want inside %q", exp.Path, h.exportDir)
	}
	if !strings.HasPrefix(filepath.Base(exp.Path), "weekmenu-") {
		t.Errorf("file name = %q", filepath.Base(exp.Path))
	}
}

func TestHandleImport_TinyDB(t *testing.T) {
	_, _, h := testSetup(t)

	path := filepath.Join(t.TempDir(), "db.json")
	data := `{"_default": {"1": {"text": "melk", "who": "Anna"}, "2": {"text": "brood", "who": "Budi"}}}`
	if err := os.WriteFile(path, []byte(data), 0600); err != nil {
		t.Fatalf("write: %v", err)
	}

	var imp ops.ImportOutput
	decodeResult(t, call(t, h.HandleImport, map[string]any{"path": path}), &imp)
	if imp.Imported != 2 {
		t.Fatalf("import = %+v", imp)
	}

	var list ListResult
	decodeResult(t, call(t, h.HandleList, nil), &list)
	if len(list.Items) != 2 || list.Items[0].Text != "melk" || list.Items[1].Who != "Budi" {
		t.Errorf("items = %+v", list.Items)
	}
}

func TestHandleImport_MissingFile(t *testing.T) {
	_, _, h := testSetup(t)

	path := filepath.Join(t.TempDir(), "missing.jsonl")
	if code := errorCode(t, call(t, h.HandleImport, map[string]any{"path": path})); code != string(errors.ErrFileNotFound) {
		t.Errorf("code = %q, want FILE_NOT_FOUND", code)
	}
}

func TestServerRegistration(t *testing.T) {
	database, cfg, _ := testSetup(t)

	s := NewServer(database, cfg, t.TempDir(), "test", nil)
	tools := s.ListTools()
	if tools == nil {
		t.Fatal("expected tools to be registered, got nil")
	}

	expectedTools := []string{
		"shopping_message",
		"shopping_add",
		"shopping_list",
		"shopping_overview",
		"shopping_done",
		"shopping_clear",
		"shopping_set_category",
		"shopping_remove",
		"shopping_export",
		"shopping_import",
	}

	if len(tools) != len(expectedTools) {
		t.Errorf("registered tool count = %d, want %d", len(tools), len(expectedTools))
	}
	for _, name := range expectedTools {
		if _, ok := tools[name]; !ok {
			t.Errorf("missing registered tool: %s", name)
		}
	}
}

func TestServerRegistration_WithDisabledTools(t *testing.T) {
	database, cfg, _ := testSetup(t)

	cfg.DisabledTools = []string{"shopping_clear", "shopping_import", "shopping_import"}
	s := NewServer(database, cfg, t.TempDir(), "test", nil)
	tools := s.ListTools()

	if len(tools) != len(toolRegistry)-2 {
		t.Errorf("registered tool count = %d, want %d", len(tools), len(toolRegistry)-2)
	}
	for _, name := range []string{"shopping_clear", "shopping_import"} {
		if _, ok := tools[name]; ok {
			t.Errorf("disabled tool %q should not be registered", name)
		}
	}
}

func TestServerRegistration_AllToolsDisabled(t *testing.T) {
	database, cfg, _ := testSetup(t)

	cfg.DisabledTools = AllToolNames()
	s := NewServer(database, cfg, t.TempDir(), "test", nil)
	if tools := s.ListTools(); len(tools) != 0 {
		t.Errorf("registered tool count = %d, want 0 (all disabled)", len(tools))
	}
}

func TestValidateDisabledTools(t *testing.T) {
	unknown := ValidateDisabledTools([]string{"shopping_add", "shopping_purge", "shopping_list", "nope"})
	sort.Strings(unknown)
	if len(unknown) != 2 || unknown[0] != "nope" || unknown[1] != "shopping_purge" {
		t.Errorf("unknown = %v", unknown)
	}
	if got := ValidateDisabledTools(nil); len(got) != 0 {
		t.Errorf("nil input: unknown = %v", got)
	}
}

func TestAllToolNames(t *testing.T) {
	names := AllToolNames()
	if len(names) != len(toolRegistry) {
		t.Fatalf("AllToolNames() = %d names, want %d", len(names), len(toolRegistry))
	}
	if !sort.StringsAreSorted(names) {
		t.Errorf("names not sorted: %v", names)
	}
	for _, n := range names {
		if !strings.HasPrefix(n, "shopping_") {
			t.Errorf("tool %q lacks the shopping_ prefix", n)
		}
	}
}

func TestErrorResult_InternalDoesNotExposeDetails(t *testing.T) {
	result := errorResult(errors.NewInternal(os.ErrPermission))
	text := resultText(t, result)
	if strings.Contains(text, "permission") {
		t.Errorf("internal details leaked: %s", text)
	}
	if code := errorCode(t, result); code != "INTERNAL" {
		t.Errorf("code = %q", code)
	}

	plain := errorResult(os.ErrClosed)
	if code := errorCode(t, plain); code != "INTERNAL" {
		t.Errorf("non-bot error code = %q", code)
	}
}
