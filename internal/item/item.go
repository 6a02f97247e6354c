package item

import "strings"

// List names a partition of items.
type List string

const (
	ListDefault  List = "default"  // the grocery list
	ListWeekmenu List = "weekmenu" // the weekly menu
	ListToko     List = "toko"     // the specialty shop list
)

// AllLists returns every known list in display order.
func AllLists() []List {
	return []List{ListDefault, ListWeekmenu, ListToko}
}

// Title returns the human-readable list name used in replies and headers.
func (l List) Title() string {
	switch l {
	case ListWeekmenu:
		return "Weekmenu"
	case ListToko:
		return "Toko"
	default:
		return "Boodschappen"
	}
}

// Valid reports whether l is one of the known lists.
func (l List) Valid() bool {
	switch l {
	case ListDefault, ListWeekmenu, ListToko:
		return true
	}
	return false
}

// listAliases maps accepted spellings to lists.
var listAliases = map[string]List{
	"default":      ListDefault,
	"boodschappen": ListDefault,
	"weekmenu":     ListWeekmenu,
	"menu":         ListWeekmenu,
	"toko":         ListToko,
}

// ParseList resolves a user-supplied list name. Unknown or empty names fall
// back to the primary list; ok reports whether the name was recognized.
func ParseList(s string) (l List, ok bool) {
	if l, ok := listAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return l, true
	}
	return ListDefault, false
}

// Item is a single entry on a list.
type Item struct {
	// ID is a ULID that uniquely identifies this item
	ID string `json:"id"`

	// Seq is the store-wide insertion counter; queries order by it
	Seq int64 `json:"seq"`

	// Text is the item as typed, whitespace-normalized, case preserved
	Text string `json:"text"`

	// TextNorm is the case-folded text used for substring matching
	TextNorm string `json:"-"`

	// Who is the author's display name
	Who string `json:"who"`

	List     List   `json:"list"`
	Category string `json:"category"`
	Done     bool   `json:"done"`

	// CreatedAt and UpdatedAt are Unix timestamps
	CreatedAt int64 `json:"created_at"`
	UpdatedAt int64 `json:"updated_at"`
}
