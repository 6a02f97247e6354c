// Package parse turns a raw chat line into an Intent.
//
// Prefix forms are tried in a fixed order: done-marker, item with a
// trailing "cat:" suffix, bare "cat:" setter, list prefixes, then plain add.
package parse

import (
	"regexp"

	"github.com/etlefig/Bootschappenbot/internal/item"
)

// Kind identifies what a line asks for.
type Kind int

const (
	// KindNone means the line carried no actionable text.
	KindNone Kind = iota
	// KindAddToList adds Text to List, optionally with an explicit Category.
	KindAddToList
	// KindSetSessionCategory sets (or clears, when Category is empty) the
	// sender's current category.
	KindSetSessionCategory
	// KindMarkDone flags the first open item containing Text as done.
	KindMarkDone
	// KindPlainAdd adds Text to the primary list using the session category
	// or the classifier.
	KindPlainAdd
)

func (k Kind) String() string {
	switch k {
	case KindAddToList:
		return "add_to_list"
	case KindSetSessionCategory:
		return "set_session_category"
	case KindMarkDone:
		return "mark_done"
	case KindPlainAdd:
		return "plain_add"
	default:
		return "none"
	}
}

// Intent is the parsed form of a line. Category is the raw user spelling;
// callers validate it against the category table.
type Intent struct {
	Kind     Kind
	Text     string
	List     item.List
	Category string
}

var (
	doneRegex      = regexp.MustCompile(`(?i)^done:\s*(.*)$`)
	catSuffixRegex = regexp.MustCompile(`(?i)^(.+?)\s+cat:\s*(.*)$`)
	catSetRegex    = regexp.MustCompile(`(?i)^cat:\s*(.*)$`)
	listRegex      = regexp.MustCompile(`(?i)^(menu|toko):\s*(.*)$`)
)

// Parse classifies a raw line. Whitespace is normalized first; prefixes are
// case-insensitive while the item text keeps its case.
func Parse(raw string) Intent {
	line := item.Clean(raw)
	if line == "" {
		return Intent{Kind: KindNone}
	}

	if m := doneRegex.FindStringSubmatch(line); m != nil {
		if m[1] == "" {
			return Intent{Kind: KindNone}
		}
		return Intent{Kind: KindMarkDone, Text: m[1]}
	}

	if m := catSuffixRegex.FindStringSubmatch(line); m != nil && !catSetRegex.MatchString(line) {
		text, list := splitListPrefix(m[1])
		if text == "" {
			return Intent{Kind: KindNone}
		}
		return Intent{Kind: KindAddToList, Text: text, List: list, Category: m[2]}
	}

	if m := catSetRegex.FindStringSubmatch(line); m != nil {
		return Intent{Kind: KindSetSessionCategory, Category: m[1]}
	}

	if m := listRegex.FindStringSubmatch(line); m != nil {
		if m[2] == "" {
			return Intent{Kind: KindNone}
		}
		return Intent{Kind: KindAddToList, Text: m[2], List: prefixList(m[1])}
	}

	return Intent{Kind: KindPlainAdd, Text: line, List: item.ListDefault}
}

// splitListPrefix strips a leading "menu:"/"toko:" prefix, returning the
// remaining text and the list it names (the primary list when absent).
func splitListPrefix(s string) (string, item.List) {
	if m := listRegex.FindStringSubmatch(s); m != nil {
		return m[2], prefixList(m[1])
	}
	return s, item.ListDefault
}

func prefixList(prefix string) item.List {
	l, _ := item.ParseList(prefix)
	return l
}
