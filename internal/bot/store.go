package bot

import (
	"context"
	"database/sql"

	"github.com/etlefig/Bootschappenbot/internal/item"
	"github.com/etlefig/Bootschappenbot/internal/ops"
)

// Store is the list store the dispatcher mutates and queries.
type Store interface {
	Add(ctx context.Context, input ops.AddInput) (*ops.AddOutput, error)
	Query(ctx context.Context, list item.List) ([]item.Item, error)
	ClearList(ctx context.Context, list item.List) (*ops.ClearOutput, error)
	ClearDone(ctx context.Context, list *item.List) (*ops.ClearOutput, error)
	MarkDone(ctx context.Context, input ops.MarkDoneInput) (*ops.MarkDoneOutput, error)
	SetCategory(ctx context.Context, input ops.SetCategoryInput) (*ops.ItemOutput, error)
	Remove(ctx context.Context, input ops.RemoveInput) (*ops.ItemOutput, error)
}

// SQLStore implements Store on the SQLite database.
type SQLStore struct {
	DB *sql.DB
}

// NewSQLStore wraps an open database.
func NewSQLStore(database *sql.DB) *SQLStore {
	return &SQLStore{DB: database}
}

func (s *SQLStore) Add(ctx context.Context, input ops.AddInput) (*ops.AddOutput, error) {
	return ops.Add(ctx, s.DB, input)
}

func (s *SQLStore) Query(ctx context.Context, list item.List) ([]item.Item, error) {
	return ops.Query(ctx, s.DB, list)
}

func (s *SQLStore) ClearList(ctx context.Context, list item.List) (*ops.ClearOutput, error) {
	return ops.ClearList(ctx, s.DB, list)
}

func (s *SQLStore) ClearDone(ctx context.Context, list *item.List) (*ops.ClearOutput, error) {
	return ops.ClearDone(ctx, s.DB, list)
}

func (s *SQLStore) MarkDone(ctx context.Context, input ops.MarkDoneInput) (*ops.MarkDoneOutput, error) {
	return ops.MarkDone(ctx, s.DB, input)
}

func (s *SQLStore) SetCategory(ctx context.Context, input ops.SetCategoryInput) (*ops.ItemOutput, error) {
	return ops.SetCategory(ctx, s.DB, input)
}

func (s *SQLStore) Remove(ctx context.Context, input ops.RemoveInput) (*ops.ItemOutput, error) {
	return ops.Remove(ctx, s.DB, input)
}
