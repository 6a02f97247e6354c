package ops

import (
	"context"
	"database/sql"

	"github.com/etlefig/Bootschappenbot/internal/db"
	"github.com/etlefig/Bootschappenbot/internal/item"
)

// Query returns a list's items in insertion order.
func Query(ctx context.Context, database *sql.DB, list item.List) ([]item.Item, error) {
	list, err := resolveList(list)
	if err != nil {
		return nil, err
	}
	items, err := db.ListByList(ctx, database, list)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []item.Item{}
	}
	return items, nil
}

// Overview returns item counts for every list, in AllLists order.
func Overview(ctx context.Context, database *sql.DB) ([]ListCount, error) {
	counts, err := db.CountByList(ctx, database)
	if err != nil {
		return nil, err
	}

	out := make([]ListCount, 0, len(item.AllLists()))
	for _, l := range item.AllLists() {
		c := counts[l]
		out = append(out, ListCount{List: l, Title: l.Title(), Total: c[0], Done: c[1]})
	}
	return out, nil
}
