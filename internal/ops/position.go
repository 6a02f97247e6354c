package ops

import (
	"context"
	"database/sql"

	"github.com/etlefig/Bootschappenbot/internal/db"
	"github.com/etlefig/Bootschappenbot/internal/errors"
	"github.com/etlefig/Bootschappenbot/internal/item"
)

// SetCategoryInput contains parameters for the SetCategory operation.
type SetCategoryInput struct {
	List     item.List // default: primary list
	Position int       // 1-based position in Query order
	Category string    // required
}

// ItemOutput returns the item an operation touched.
type ItemOutput struct {
	Item item.Item `json:"item"`
}

// SetCategory overrides the category of the item at Position.
func SetCategory(ctx context.Context, database *sql.DB, input SetCategoryInput) (*ItemOutput, error) {
	list, err := resolveList(input.List)
	if err != nil {
		return nil, err
	}

	cat, ok, err := resolveCategory(input.Category)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.NewInvalidRequest("category is required")
	}

	it, err := db.UpdateCategoryAt(ctx, database, list, input.Position, cat)
	if err != nil {
		return nil, err
	}
	return &ItemOutput{Item: *it}, nil
}

// RemoveInput contains parameters for the Remove operation.
type RemoveInput struct {
	List     item.List // default: primary list
	Position int       // 1-based position in Query order
}

// Remove deletes the item at Position.
func Remove(ctx context.Context, database *sql.DB, input RemoveInput) (*ItemOutput, error) {
	list, err := resolveList(input.List)
	if err != nil {
		return nil, err
	}

	it, err := db.DeleteAt(ctx, database, list, input.Position)
	if err != nil {
		return nil, err
	}
	return &ItemOutput{Item: *it}, nil
}
