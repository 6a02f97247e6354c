package ops

import (
	"crypto/rand"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/etlefig/Bootschappenbot/internal/category"
	"github.com/etlefig/Bootschappenbot/internal/errors"
	"github.com/etlefig/Bootschappenbot/internal/item"
)

// ListCount summarizes one list.
type ListCount struct {
	List  item.List `json:"list"`
	Title string    `json:"title"`
	Total int       `json:"total"`
	Done  int       `json:"done"`
}

// resolveList defaults an empty list to the primary list and rejects
// anything outside the known set. Chat input goes through item.ParseList
// instead, which never fails.
func resolveList(list item.List) (item.List, error) {
	if list == "" {
		return item.ListDefault, nil
	}
	if !list.Valid() {
		return "", errors.NewInvalidRequest("list must be one of: default, weekmenu, toko")
	}
	return list, nil
}

// resolveCategory maps a user-supplied category name onto its canonical
// spelling. Empty input is reported via ok=false so callers can fall back
// to the classifier or the session category.
func resolveCategory(name string) (canonical string, ok bool, err error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", false, nil
	}
	canonical, found := category.Lookup(name)
	if !found {
		return "", false, errors.NewInvalidCategory(name, category.Names())
	}
	return canonical, true, nil
}

// generateULID generates a new ULID.
func generateULID() (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
