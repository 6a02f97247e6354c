package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/etlefig/Bootschappenbot/internal/errors"
	"github.com/etlefig/Bootschappenbot/internal/item"
)

const itemColumns = `seq, id, list, text, text_norm, who, category, done, created_at, updated_at`

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// Insert stores a new item and fills in its Seq.
func Insert(ctx context.Context, db *sql.DB, it *item.Item) error {
	query := `
		INSERT INTO items (id, list, text, text_norm, who, category, done, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := db.ExecContext(ctx, query,
		it.ID, string(it.List), it.Text, it.TextNorm, it.Who, it.Category,
		boolToInt(it.Done), it.CreatedAt, it.UpdatedAt,
	)
	if err != nil {
		return errors.NewInternal(err)
	}

	seq, err := result.LastInsertId()
	if err != nil {
		return errors.NewInternal(err)
	}
	it.Seq = seq

	return nil
}

// ListByList returns a list's items in insertion order.
func ListByList(ctx context.Context, db *sql.DB, list item.List) ([]item.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE list = ? ORDER BY seq ASC`
	return queryItems(ctx, db, query, string(list))
}

// ListAll returns every item across all lists in store order.
func ListAll(ctx context.Context, db *sql.DB) ([]item.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items ORDER BY seq ASC`
	return queryItems(ctx, db, query)
}

// ExistsByID reports whether an item with the given id is stored.
func ExistsByID(ctx context.Context, db *sql.DB, id string) (bool, error) {
	var exists int
	err := db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM items WHERE id = ?)`, id).Scan(&exists)
	if err != nil {
		return false, errors.NewInternal(err)
	}
	return exists == 1, nil
}

// CountByList returns the number of items, and of those the number done, per list.
func CountByList(ctx context.Context, db *sql.DB) (map[item.List][2]int, error) {
	rows, err := db.QueryContext(ctx, `SELECT list, COUNT(*), COALESCE(SUM(done), 0) FROM items GROUP BY list`)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	counts := make(map[item.List][2]int)
	for rows.Next() {
		var (
			list        string
			total, done int
		)
		if err := rows.Scan(&list, &total, &done); err != nil {
			return nil, errors.NewInternal(err)
		}
		counts[item.List(list)] = [2]int{total, done}
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return counts, nil
}

// DeleteByList removes every item on a list and returns how many were removed.
func DeleteByList(ctx context.Context, db *sql.DB, list item.List) (int, error) {
	return execCount(ctx, db, `DELETE FROM items WHERE list = ?`, string(list))
}

// DeleteDone removes done items on one list, or on every list when list is nil.
func DeleteDone(ctx context.Context, db *sql.DB, list *item.List) (int, error) {
	if list == nil {
		return execCount(ctx, db, `DELETE FROM items WHERE done = 1`)
	}
	return execCount(ctx, db, `DELETE FROM items WHERE done = 1 AND list = ?`, string(*list))
}

// MarkFirstDone flags the first open item, in store order, whose normalized
// text contains matchNorm. A nil list searches every list. The lookup and
// the update are one statement.
func MarkFirstDone(ctx context.Context, db *sql.DB, matchNorm string, list *item.List) (*item.Item, error) {
	now := time.Now().Unix()

	subquery := `SELECT seq FROM items WHERE done = 0 AND instr(text_norm, ?) > 0`
	args := []any{now, matchNorm}
	if list != nil {
		subquery += ` AND list = ?`
		args = append(args, string(*list))
	}
	subquery += ` ORDER BY seq ASC LIMIT 1`

	query := `UPDATE items SET done = 1, updated_at = ? WHERE seq = (` + subquery + `) RETURNING ` + itemColumns

	it, err := scanItem(db.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, errors.NewNoMatch(matchNorm)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return it, nil
}

// UpdateCategoryAt sets the category of the item at a 1-based position in a
// list's insertion order.
func UpdateCategoryAt(ctx context.Context, db *sql.DB, list item.List, position int, category string) (*item.Item, error) {
	if position < 1 {
		return nil, errors.NewNotFound(string(list), position)
	}
	now := time.Now().Unix()

	query := `
		UPDATE items SET category = ?, updated_at = ?
		WHERE seq = (SELECT seq FROM items WHERE list = ? ORDER BY seq ASC LIMIT 1 OFFSET ?)
		RETURNING ` + itemColumns

	it, err := scanItem(db.QueryRowContext(ctx, query, category, now, string(list), position-1))
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound(string(list), position)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return it, nil
}

// DeleteAt removes the item at a 1-based position in a list's insertion order.
func DeleteAt(ctx context.Context, db *sql.DB, list item.List, position int) (*item.Item, error) {
	if position < 1 {
		return nil, errors.NewNotFound(string(list), position)
	}

	query := `
		DELETE FROM items
		WHERE seq = (SELECT seq FROM items WHERE list = ? ORDER BY seq ASC LIMIT 1 OFFSET ?)
		RETURNING ` + itemColumns

	it, err := scanItem(db.QueryRowContext(ctx, query, string(list), position-1))
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound(string(list), position)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return it, nil
}

// InsertBatch inserts items in one transaction, filling in their Seq values.
func InsertBatch(ctx context.Context, db *sql.DB, items []*item.Item) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return errors.NewInternal(err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO items (id, list, text, text_norm, who, category, done, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return errors.NewInternal(err)
	}
	defer stmt.Close()

	for _, it := range items {
		result, err := stmt.ExecContext(ctx,
			it.ID, string(it.List), it.Text, it.TextNorm, it.Who, it.Category,
			boolToInt(it.Done), it.CreatedAt, it.UpdatedAt,
		)
		if err != nil {
			return errors.NewInternal(err)
		}
		seq, err := result.LastInsertId()
		if err != nil {
			return errors.NewInternal(err)
		}
		it.Seq = seq
	}

	if err := tx.Commit(); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

func queryItems(ctx context.Context, db *sql.DB, query string, args ...any) ([]item.Item, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	var items []item.Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		items = append(items, *it)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return items, nil
}

func execCount(ctx context.Context, db *sql.DB, query string, args ...any) (int, error) {
	result, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, errors.NewInternal(err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, errors.NewInternal(err)
	}
	return int(n), nil
}

// scanItem scans a single row into an Item.
func scanItem(row rowScanner) (*item.Item, error) {
	var (
		it   item.Item
		list string
		done int
	)
	err := row.Scan(
		&it.Seq, &it.ID, &list, &it.Text, &it.TextNorm, &it.Who,
		&it.Category, &done, &it.CreatedAt, &it.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	it.List = item.List(list)
	it.Done = done != 0
	return &it, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
