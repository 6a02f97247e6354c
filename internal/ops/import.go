package ops

import (
	"bufio"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/etlefig/Bootschappenbot/internal/category"
	"github.com/etlefig/Bootschappenbot/internal/db"
	"github.com/etlefig/Bootschappenbot/internal/errors"
	"github.com/etlefig/Bootschappenbot/internal/item"
)

// ImportInput contains parameters for the Import operation.
type ImportInput struct {
	Path string // required; .jsonl export or .json TinyDB list file
}

// ImportOutput contains the result of the Import operation.
type ImportOutput struct {
	Imported int           `json:"imported"`
	Skipped  int           `json:"skipped"`
	Errors   []ImportError `json:"errors"`
}

// ImportError describes one record that was not imported.
type ImportError struct {
	Line    int    `json:"line,omitempty"`
	DocID   string `json:"doc_id,omitempty"`
	ID      string `json:"id,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// tinyDoc is a document in a TinyDB list file. Only text and who exist in
// files written by the first bot; the rest are optional.
type tinyDoc struct {
	Text     string `json:"text"`
	Who      string `json:"who"`
	List     string `json:"list"`
	Category string `json:"category"`
	Done     bool   `json:"done"`
}

// Import reads items from a JSONL export or a TinyDB list file and inserts
// the valid ones in a single transaction. Invalid records are reported and
// skipped; ids already present in the store are skipped.
func Import(ctx context.Context, database *sql.DB, input ImportInput) (*ImportOutput, error) {
	if err := ValidatePath(input.Path, PathCheckRead); err != nil {
		return nil, err
	}

	file, err := openFileNoFollowRead(input.Path)
	if err != nil {
		if _, ok := errors.As(err); ok {
			return nil, err
		}
		return nil, errors.NewInternal(fmt.Errorf("failed to open import file: %w", err))
	}
	defer file.Close()

	var (
		records   []ExportRecord
		importErr []ImportError
	)
	if filepath.Ext(input.Path) == ".json" {
		records, importErr, err = parseTinyDB(file)
		if err != nil {
			return nil, err
		}
	} else {
		records, importErr = parseExportFile(file)
	}

	out := &ImportOutput{Errors: importErr}
	out.Skipped = len(importErr)

	now := time.Now().Unix()
	seen := make(map[string]bool)
	batch := make([]*item.Item, 0, len(records))
	for _, rec := range records {
		it, ierr := recordToItem(rec, now)
		if ierr != nil {
			out.Errors = append(out.Errors, *ierr)
			out.Skipped++
			continue
		}

		if rec.ID != "" {
			exists, err := db.ExistsByID(ctx, database, it.ID)
			if err != nil {
				return nil, err
			}
			if exists || seen[it.ID] {
				out.Errors = append(out.Errors, ImportError{
					ID:      it.ID,
					Code:    "ID_COLLISION",
					Message: fmt.Sprintf("item with id %q already exists", it.ID),
				})
				out.Skipped++
				continue
			}
		}
		seen[it.ID] = true
		batch = append(batch, it)
	}

	if len(batch) > 0 {
		if err := db.InsertBatch(ctx, database, batch); err != nil {
			return nil, err
		}
	}
	out.Imported = len(batch)
	if out.Errors == nil {
		out.Errors = []ImportError{}
	}
	return out, nil
}

// parseExportFile parses a JSONL export file into records.
func parseExportFile(r io.Reader) ([]ExportRecord, []ImportError) {
	var records []ExportRecord
	var parseErrors []ImportError

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var probe struct {
			Header bool `json:"_boodschappen_export"`
		}
		if err := json.Unmarshal(line, &probe); err != nil {
			parseErrors = append(parseErrors, ImportError{
				Line:    lineNum,
				Code:    "PARSE_ERROR",
				Message: fmt.Sprintf("invalid JSON: %v", err),
			})
			continue
		}
		if probe.Header {
			continue
		}

		var record ExportRecord
		if err := json.Unmarshal(line, &record); err != nil {
			parseErrors = append(parseErrors, ImportError{
				Line:    lineNum,
				Code:    "PARSE_ERROR",
				Message: fmt.Sprintf("invalid record: %v", err),
			})
			continue
		}
		records = append(records, record)
	}

	if err := scanner.Err(); err != nil {
		parseErrors = append(parseErrors, ImportError{
			Line:    lineNum,
			Code:    "READ_ERROR",
			Message: fmt.Sprintf("failed to read file: %v", err),
		})
	}

	return records, parseErrors
}

// parseTinyDB parses a TinyDB file: {"<table>": {"<doc id>": {...}}}.
// Documents are returned in doc id order, tables in name order.
func parseTinyDB(r io.Reader) ([]ExportRecord, []ImportError, error) {
	var tables map[string]map[string]json.RawMessage
	if err := json.NewDecoder(r).Decode(&tables); err != nil {
		return nil, nil, errors.NewInvalidRequest(fmt.Sprintf("invalid TinyDB file: %v", err))
	}

	tableNames := make([]string, 0, len(tables))
	for name := range tables {
		tableNames = append(tableNames, name)
	}
	sort.Strings(tableNames)

	var records []ExportRecord
	var parseErrors []ImportError
	for _, name := range tableNames {
		docs := tables[name]
		ids := make([]string, 0, len(docs))
		for id := range docs {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool { return docIDLess(ids[i], ids[j]) })

		for _, id := range ids {
			var doc tinyDoc
			if err := json.Unmarshal(docs[id], &doc); err != nil {
				parseErrors = append(parseErrors, ImportError{
					DocID:   id,
					Code:    "PARSE_ERROR",
					Message: fmt.Sprintf("invalid document: %v", err),
				})
				continue
			}
			records = append(records, ExportRecord{
				List:     doc.List,
				Text:     doc.Text,
				Who:      doc.Who,
				Category: doc.Category,
				Done:     doc.Done,
			})
		}
	}
	return records, parseErrors, nil
}

// docIDLess orders TinyDB doc ids numerically, falling back to string order.
func docIDLess(a, b string) bool {
	ai, aErr := strconv.Atoi(a)
	bi, bErr := strconv.Atoi(b)
	if aErr == nil && bErr == nil {
		return ai < bi
	}
	return a < b
}

// recordToItem validates a record and builds the item to insert. Unknown
// categories are reclassified; unknown lists are rejected.
func recordToItem(rec ExportRecord, now int64) (*item.Item, *ImportError) {
	text := item.Clean(rec.Text)
	if text == "" {
		return nil, &ImportError{ID: rec.ID, Code: "INVALID_RECORD", Message: "text is empty"}
	}

	list := item.ListDefault
	if rec.List != "" {
		list = item.List(rec.List)
		if !list.Valid() {
			return nil, &ImportError{
				ID:      rec.ID,
				Code:    "INVALID_RECORD",
				Message: fmt.Sprintf("unknown list %q", rec.List),
			}
		}
	}

	cat, ok := category.Lookup(rec.Category)
	if !ok {
		cat = category.Classify(text)
	}

	id := rec.ID
	if id == "" {
		var err error
		id, err = generateULID()
		if err != nil {
			return nil, &ImportError{Code: "INTERNAL", Message: err.Error()}
		}
	}

	created, updated := rec.CreatedAt, rec.UpdatedAt
	if created == 0 {
		created = now
	}
	if updated == 0 {
		updated = created
	}

	return &item.Item{
		ID:        id,
		Text:      text,
		TextNorm:  item.Fold(text),
		Who:       item.Clean(rec.Who),
		List:      list,
		Category:  cat,
		Done:      rec.Done,
		CreatedAt: created,
		UpdatedAt: updated,
	}, nil
}
