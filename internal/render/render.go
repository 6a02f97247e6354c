// Package render formats a list's items grouped by category.
//
// Both formats are pure functions of the items passed in; callers re-query
// the store before every render.
package render

import (
	"fmt"
	"strings"

	"github.com/etlefig/Bootschappenbot/internal/category"
	"github.com/etlefig/Bootschappenbot/internal/item"
)

// DoneMark prefixes done items in plain-text listings.
const DoneMark = "✔"

// Entry is an item with its 1-based position in the list's insertion order.
type Entry struct {
	Position int
	Item     item.Item
}

// Section is one category heading and its entries, open entries first.
type Section struct {
	Category string
	Entries  []Entry
}

// Empty returns the reply for a list without items.
func Empty(list item.List) string {
	return list.Title() + " is leeg."
}

// Group buckets items (in insertion order) by category in table order,
// skipping empty categories. Items with an unknown category are shown
// under the fallback. Within a section open items precede done items and
// insertion order is kept.
func Group(items []item.Item) []Section {
	names := category.Names()
	buckets := make([][]Entry, len(names))
	for i, it := range items {
		idx := category.Index(it.Category)
		buckets[idx] = append(buckets[idx], Entry{Position: i + 1, Item: it})
	}

	sections := make([]Section, 0, len(names))
	for i, entries := range buckets {
		if len(entries) == 0 {
			continue
		}
		ordered := make([]Entry, 0, len(entries))
		for _, e := range entries {
			if !e.Item.Done {
				ordered = append(ordered, e)
			}
		}
		for _, e := range entries {
			if e.Item.Done {
				ordered = append(ordered, e)
			}
		}
		sections = append(sections, Section{Category: names[i], Entries: ordered})
	}
	return sections
}

// Text renders a plain-text listing for chat replies.
func Text(list item.List, items []item.Item) string {
	if len(items) == 0 {
		return Empty(list)
	}

	var b strings.Builder
	b.WriteString(list.Title())
	for _, s := range Group(items) {
		b.WriteString("\n\n")
		b.WriteString(s.Category)
		for _, e := range s.Entries {
			b.WriteString("\n")
			fmt.Fprintf(&b, "%d. ", e.Position)
			if e.Item.Done {
				b.WriteString(DoneMark + " ")
			}
			b.WriteString(e.Item.Text)
			if e.Item.Who != "" {
				b.WriteString(" — " + e.Item.Who)
			}
		}
	}
	return b.String()
}

// Markdown renders the listing as CommonMark with GFM strikethrough for
// done items.
func Markdown(list item.List, items []item.Item) string {
	if len(items) == 0 {
		return Empty(list)
	}

	var b strings.Builder
	b.WriteString("# " + escapeMarkdown(list.Title()) + "\n")
	for _, s := range Group(items) {
		b.WriteString("\n## " + escapeMarkdown(s.Category) + "\n\n")
		for _, e := range s.Entries {
			text := escapeMarkdown(e.Item.Text)
			if e.Item.Done {
				text = "~~" + text + "~~"
			}
			fmt.Fprintf(&b, "- **%d.** %s", e.Position, text)
			if e.Item.Who != "" {
				b.WriteString(" — _" + escapeMarkdown(e.Item.Who) + "_")
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	"`", "\\`",
	"*", `\*`,
	"_", `\_`,
	"~", `\~`,
	"[", `\[`,
	"]", `\]`,
	"<", `\<`,
	">", `\>`,
	"#", `\#`,
	"|", `\|`,
)

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}
