package ops

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/etlefig/Bootschappenbot/internal/errors"
	"github.com/etlefig/Bootschappenbot/internal/item"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestImport_TinyDB(t *testing.T) {
	database := setupDB(t)
	ctx := context.Background()

	// Doc ids sort numerically: 2 before 10.
	path := writeFile(t, "list.json", `{"_default": {
		"10": {"text": "brood", "who": "Bram"},
		"2": {"text": " melk ", "who": "Anna"},
		"3": {"text": "sambal", "who": "Anna", "list": "toko", "done": true},
		"4": {"text": "   ", "who": "Anna"}
	}}`)

	out, err := Import(ctx, database, ImportInput{Path: path})
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if out.Imported != 3 || out.Skipped != 1 {
		t.Errorf("Import = %+v, want 3 imported, 1 skipped", out)
	}

	items, err := Query(ctx, database, item.ListDefault)
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(items) != 2 || items[0].Text != "melk" || items[1].Text != "brood" {
		t.Fatalf("default list = %+v, want [melk brood]", items)
	}
	if items[0].Who != "Anna" || items[0].Category != "Zuivel & Eieren" || items[0].ID == "" {
		t.Errorf("imported item = %+v", items[0])
	}

	toko, _ := Query(ctx, database, item.ListToko)
	if len(toko) != 1 || !toko[0].Done {
		t.Errorf("toko list = %+v, want one done item", toko)
	}
}

func TestImport_InvalidTinyDB(t *testing.T) {
	database := setupDB(t)

	path := writeFile(t, "list.json", `[1, 2, 3]`)
	_, err := Import(context.Background(), database, ImportInput{Path: path})
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("got %v, want INVALID_REQUEST", err)
	}
}

func TestImport_JSONL(t *testing.T) {
	database := setupDB(t)
	ctx := context.Background()

	path := writeFile(t, "backup.jsonl", `{"_boodschappen_export":true,"schema_version":"1.0","exported_at":1}
{"id":"01AAA","list":"weekmenu","text":"lasagne","who":"Bram","category":"Overig","done":false,"created_at":100,"updated_at":100}
not json
{"id":"01BBB","list":"kerst","text":"kalkoen","who":"Bram","category":"Vlees & Vis"}
{"id":"01CCC","list":"default","text":"melk","who":"Anna","category":"Zuivel"}
`)

	out, err := Import(ctx, database, ImportInput{Path: path})
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if out.Imported != 2 || out.Skipped != 2 || len(out.Errors) != 2 {
		t.Errorf("Import = %+v, want 2 imported, 2 skipped", out)
	}

	menu, _ := Query(ctx, database, item.ListWeekmenu)
	if len(menu) != 1 || menu[0].ID != "01AAA" || menu[0].CreatedAt != 100 {
		t.Errorf("weekmenu = %+v", menu)
	}

	// Unknown category is reclassified
	def, _ := Query(ctx, database, item.ListDefault)
	if len(def) != 1 || def[0].Category != "Zuivel & Eieren" {
		t.Errorf("default = %+v", def)
	}
}

func TestImport_RoundTripSkipsExistingIDs(t *testing.T) {
	database := setupDB(t)
	ctx := context.Background()

	mustAdd(t, database, AddInput{Text: "melk", Who: "Anna"})
	mustAdd(t, database, AddInput{Text: "tempeh", List: item.ListToko})

	path := filepath.Join(t.TempDir(), "backup.jsonl")
	if _, err := Export(ctx, database, ExportInput{Path: path}); err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	out, err := Import(ctx, database, ImportInput{Path: path})
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if out.Imported != 0 || out.Skipped != 2 {
		t.Errorf("re-import = %+v, want everything skipped", out)
	}
	for _, e := range out.Errors {
		if e.Code != "ID_COLLISION" {
			t.Errorf("error code = %q, want ID_COLLISION", e.Code)
		}
	}

	fresh := setupDB(t)
	out, err = Import(ctx, fresh, ImportInput{Path: path})
	if err != nil {
		t.Fatalf("Import into fresh db failed: %v", err)
	}
	if out.Imported != 2 {
		t.Errorf("Imported = %d, want 2", out.Imported)
	}
	items, _ := Query(ctx, fresh, item.ListDefault)
	if len(items) != 1 || items[0].Text != "melk" || items[0].Who != "Anna" {
		t.Errorf("fresh default list = %+v", items)
	}
}

func TestImport_FileNotFound(t *testing.T) {
	database := setupDB(t)

	_, err := Import(context.Background(), database, ImportInput{
		Path: filepath.Join(t.TempDir(), "missing.jsonl"),
	})
	if !errors.Is(err, errors.ErrFileNotFound) {
		t.Errorf("got %v, want FILE_NOT_FOUND", err)
	}
}
