package ops

import (
	"context"
	"database/sql"
	"time"

	"github.com/etlefig/Bootschappenbot/internal/category"
	"github.com/etlefig/Bootschappenbot/internal/db"
	"github.com/etlefig/Bootschappenbot/internal/errors"
	"github.com/etlefig/Bootschappenbot/internal/item"
)

// AddInput contains parameters for the Add operation.
type AddInput struct {
	Text     string    // required
	Who      string    // optional author display name
	List     item.List // default: primary list
	Category string    // optional; classified from Text when empty
}

// AddOutput contains the result of the Add operation.
type AddOutput struct {
	Item       item.Item `json:"item"`
	Classified bool      `json:"classified"` // category came from the keyword classifier
}

// Add stores a new item.
func Add(ctx context.Context, database *sql.DB, input AddInput) (*AddOutput, error) {
	text := item.Clean(input.Text)
	if text == "" {
		return nil, errors.NewEmptyInput()
	}

	list, err := resolveList(input.List)
	if err != nil {
		return nil, err
	}

	cat, explicit, err := resolveCategory(input.Category)
	if err != nil {
		return nil, err
	}
	if !explicit {
		cat = category.Classify(text)
	}

	id, err := generateULID()
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	now := time.Now().Unix()
	it := &item.Item{
		ID:        id,
		Text:      text,
		TextNorm:  item.Fold(text),
		Who:       item.Clean(input.Who),
		List:      list,
		Category:  cat,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := db.Insert(ctx, database, it); err != nil {
		return nil, err
	}

	return &AddOutput{Item: *it, Classified: !explicit}, nil
}
