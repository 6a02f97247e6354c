package ops

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/etlefig/Bootschappenbot/internal/db"
	"github.com/etlefig/Bootschappenbot/internal/errors"
	"github.com/etlefig/Bootschappenbot/internal/item"
)

// ExportSchemaVersion is written into every export header.
const ExportSchemaVersion = "1.0"

// ExportInput contains parameters for the Export operation.
type ExportInput struct {
	Path string     // optional, default: <Dir>/<list|all>-<timestamp>.jsonl
	Dir  string     // directory for the default path; required when Path is empty
	List *item.List // optional filter by list
}

// ExportOutput contains the result of the Export operation.
type ExportOutput struct {
	Path       string `json:"path"`
	Count      int    `json:"count"`
	ExportedAt int64  `json:"exported_at"`
}

// ExportHeader is the first line of a JSONL export file.
type ExportHeader struct {
	BoodschappenExport bool   `json:"_boodschappen_export"`
	SchemaVersion      string `json:"schema_version"`
	ExportedAt         int64  `json:"exported_at"`
}

// ExportRecord is one item line in a JSONL export file.
type ExportRecord struct {
	ID        string `json:"id"`
	List      string `json:"list"`
	Text      string `json:"text"`
	Who       string `json:"who"`
	Category  string `json:"category"`
	Done      bool   `json:"done"`
	CreatedAt int64  `json:"created_at"`
	UpdatedAt int64  `json:"updated_at"`
}

func toExportRecord(it item.Item) ExportRecord {
	return ExportRecord{
		ID:        it.ID,
		List:      string(it.List),
		Text:      it.Text,
		Who:       it.Who,
		Category:  it.Category,
		Done:      it.Done,
		CreatedAt: it.CreatedAt,
		UpdatedAt: it.UpdatedAt,
	}
}

// Export writes items to a JSONL file in store order.
func Export(ctx context.Context, database *sql.DB, input ExportInput) (*ExportOutput, error) {
	now := time.Now()
	exportedAt := now.Unix()

	var scope *item.List
	if input.List != nil {
		l, err := resolveList(*input.List)
		if err != nil {
			return nil, err
		}
		scope = &l
	}

	exportPath := input.Path
	if exportPath == "" {
		if input.Dir == "" {
			return nil, errors.NewInvalidRequest("path is required")
		}
		exportPath = defaultExportPath(input.Dir, scope, now)
	}

	if err := ValidatePath(exportPath, PathCheckWrite); err != nil {
		return nil, err
	}

	var (
		items []item.Item
		err   error
	)
	if scope != nil {
		items, err = db.ListByList(ctx, database, *scope)
	} else {
		items, err = db.ListAll(ctx, database)
	}
	if err != nil {
		return nil, err
	}

	dir := filepath.Dir(exportPath)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to create export directory: %w", err))
	}

	// Write to temp file first, then atomic rename to preserve existing file on failure
	randBytes := make([]byte, 8)
	if _, err := rand.Read(randBytes); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to generate temp file name: %w", err))
	}
	tempPath := exportPath + "." + hex.EncodeToString(randBytes) + ".tmp"
	file, err := openFileNoFollow(tempPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to create export file: %w", err))
	}

	success := false
	defer func() {
		if file != nil {
			file.Close()
		}
		if !success {
			os.Remove(tempPath)
		}
	}()

	enc := json.NewEncoder(file)
	enc.SetEscapeHTML(false)

	header := ExportHeader{
		BoodschappenExport: true,
		SchemaVersion:      ExportSchemaVersion,
		ExportedAt:         exportedAt,
	}
	if err := enc.Encode(header); err != nil {
		return nil, errors.NewInternal(err)
	}

	for _, it := range items {
		if err := ctx.Err(); err != nil {
			return nil, errors.NewInternal(fmt.Errorf("export cancelled: %w", err))
		}
		if err := enc.Encode(toExportRecord(it)); err != nil {
			return nil, errors.NewInternal(err)
		}
	}

	if err := file.Sync(); err != nil {
		return nil, errors.NewInternal(err)
	}

	// Close before rename (required on Windows; fine elsewhere).
	if err := file.Close(); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to close export file: %w", err))
	}
	file = nil

	if info, err := os.Lstat(exportPath); err == nil && info.Mode()&os.ModeSymlink != 0 {
		return nil, errors.NewInternal(fmt.Errorf("export path is a symlink"))
	}

	// On Windows os.Rename fails when the destination exists; the existing
	// file is kept rather than replaced non-atomically.
	if err := os.Rename(tempPath, exportPath); err != nil {
		if runtime.GOOS == "windows" {
			if _, statErr := os.Stat(exportPath); statErr == nil {
				return nil, errors.NewInvalidRequest("export destination already exists; choose a new path")
			}
		}
		return nil, errors.NewInternal(fmt.Errorf("failed to finalize export: %w", err))
	}

	success = true
	return &ExportOutput{
		Path:       exportPath,
		Count:      len(items),
		ExportedAt: exportedAt,
	}, nil
}

// defaultExportPath builds <dir>/<list|all>-<timestamp>.jsonl.
func defaultExportPath(dir string, list *item.List, now time.Time) string {
	name := "all"
	if list != nil {
		name = SanitizeForFilename(string(*list))
	}
	timestamp := now.Format("2006-01-02T150405")
	return filepath.Join(dir, fmt.Sprintf("%s-%s.jsonl", name, timestamp))
}
