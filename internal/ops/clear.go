package ops

import (
	"context"
	"database/sql"

	"github.com/etlefig/Bootschappenbot/internal/db"
	"github.com/etlefig/Bootschappenbot/internal/item"
)

// ClearOutput contains the result of ClearList and ClearDone.
// List is empty when every list was affected.
type ClearOutput struct {
	List    item.List `json:"list,omitempty"`
	Removed int       `json:"removed"`
}

// ClearList removes every item on a list. Clearing an empty list is a no-op.
func ClearList(ctx context.Context, database *sql.DB, list item.List) (*ClearOutput, error) {
	list, err := resolveList(list)
	if err != nil {
		return nil, err
	}
	n, err := db.DeleteByList(ctx, database, list)
	if err != nil {
		return nil, err
	}
	return &ClearOutput{List: list, Removed: n}, nil
}

// ClearDone removes done items from one list, or from every list when list is nil.
func ClearDone(ctx context.Context, database *sql.DB, list *item.List) (*ClearOutput, error) {
	if list == nil {
		n, err := db.DeleteDone(ctx, database, nil)
		if err != nil {
			return nil, err
		}
		return &ClearOutput{Removed: n}, nil
	}

	l, err := resolveList(*list)
	if err != nil {
		return nil, err
	}
	n, err := db.DeleteDone(ctx, database, &l)
	if err != nil {
		return nil, err
	}
	return &ClearOutput{List: l, Removed: n}, nil
}
