package ops

import (
	"context"
	"database/sql"

	"github.com/etlefig/Bootschappenbot/internal/db"
	"github.com/etlefig/Bootschappenbot/internal/errors"
	"github.com/etlefig/Bootschappenbot/internal/item"
)

// MarkDoneInput contains parameters for the MarkDone operation.
type MarkDoneInput struct {
	Match string     // required; case-insensitive substring
	List  *item.List // optional; nil searches every list
}

// MarkDoneOutput contains the result of the MarkDone operation.
type MarkDoneOutput struct {
	Item item.Item `json:"item"`
}

// MarkDone flags the first open item, in store order, whose text contains
// Match. Items that are already done are never matched again.
func MarkDone(ctx context.Context, database *sql.DB, input MarkDoneInput) (*MarkDoneOutput, error) {
	match := item.Fold(input.Match)
	if match == "" {
		return nil, errors.NewEmptyInput()
	}

	var scope *item.List
	if input.List != nil {
		l, err := resolveList(*input.List)
		if err != nil {
			return nil, err
		}
		scope = &l
	}

	it, err := db.MarkFirstDone(ctx, database, match, scope)
	if err != nil {
		if errors.Is(err, errors.ErrNoMatch) {
			return nil, errors.NewNoMatch(item.Clean(input.Match))
		}
		return nil, err
	}
	return &MarkDoneOutput{Item: *it}, nil
}
