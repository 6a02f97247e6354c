// Package category holds the fixed, ordered category table and the
// keyword classifier that maps free text onto it.
//
// Table order is significant: keywords overlap between categories and the
// first matching category wins. Matching is substring-based, so short
// keywords also hit inside longer words ("ei" in "reiger"). "rijst" and
// "kokosmelk" are listed under Toko but are always claimed earlier.
package category

import (
	"strings"

	"github.com/etlefig/Bootschappenbot/internal/item"
)

// Fallback is the category assigned when no keyword matches.
const Fallback = "Overig"

// Category is one entry of the table.
type Category struct {
	Name     string
	Keywords []string // lowercase substrings
}

// table is ordered; never iterate a map for classification.
var table = []Category{
	{Name: "Groente & Fruit", Keywords: []string{
		"appel", "banan", "peer", "mandarijn", "citroen", "limoen", "druif", "druiven",
		"aardbei", "framboos", "blauwe bes", "kiwi", "mango", "meloen", "avocado",
		"tomaat", "tomaten", "komkommer", "paprika", "kropsla", "ijsbergsla", "veldsla",
		"rucola", "spinazie", "andijvie", "broccoli", "bloemkool", "courgette", "aubergine",
		"wortel", "winterpeen", "prei", "uien", "rode ui", "knoflook", "gember", "champignon",
		"aardappel", "sperziebonen", "boerenkool", "radijs", "selderij", "groente", "fruit",
	}},
	{Name: "Zuivel & Eieren", Keywords: []string{
		"melk", "yoghurt", "kwark", "vla", "kaas", "boter", "room", "creme fraiche",
		"crème fraîche", "ei", "eieren",
	}},
	{Name: "Vlees & Vis", Keywords: []string{
		"kip", "gehakt", "biefstuk", "rundvlees", "varkens", "spek", "worst", "salami",
		"vlees", "vis", "zalm", "tonijn", "kabeljauw", "garnalen", "haring",
	}},
	{Name: "Brood & Bakkerij", Keywords: []string{
		"brood", "bolletje", "croissant", "beschuit", "crackers", "knäckebröd",
		"ontbijtkoek", "wrap", "pita",
	}},
	{Name: "Huishouden & Verzorging", Keywords: []string{
		"wc-papier", "toiletpapier", "keukenrol", "afwas", "wasmiddel", "wasverzachter",
		"schoonmaak", "vuilniszak", "zeep", "shampoo", "douchegel", "tandpasta",
		"deodorant", "luiers", "batterij",
	}},
	{Name: "Pasta, Rijst & Granen", Keywords: []string{
		"pasta", "spaghetti", "macaroni", "penne", "fusilli", "noedels", "rijst",
		"couscous", "bulgur", "quinoa", "havermout", "muesli", "cornflakes", "bloem", "meel",
	}},
	{Name: "Conserven & Sauzen", Keywords: []string{
		"passata", "saus", "ketchup", "mayonaise", "mosterd", "bouillon", "olie", "azijn",
		"jam", "hagelslag", "honing", "blik", "peulvruchten", "kikkererwten", "kruiden",
		"peper", "zout", "suiker",
	}},
	{Name: "Diepvries", Keywords: []string{
		"diepvries", "ijs", "pizza", "friet", "patat",
	}},
	{Name: "Snacks & Snoep", Keywords: []string{
		"chips", "koek", "chocola", "snoep", "drop", "noten", "pinda", "popcorn",
	}},
	{Name: "Dranken", Keywords: []string{
		"koffie", "thee", "sap", "water", "frisdrank", "cola", "limonade", "ranja",
		"bier", "wijn", "prosecco",
	}},
	{Name: "Toko", Keywords: []string{
		"sambal", "ketjap", "kecap", "trassi", "tempeh", "tofu", "nori", "miso",
		"sriracha", "kokosmelk", "santen", "pandan", "rijst", "mie", "bapao",
		"kroepoek", "sereh", "laos", "djeroek", "gochujang",
	}},
}

// Classify returns the first category, in table order, with a keyword that
// occurs in text. Texts matching nothing get Fallback.
func Classify(text string) string {
	folded := item.Fold(text)
	if folded == "" {
		return Fallback
	}
	for _, c := range table {
		for _, kw := range c.Keywords {
			if strings.Contains(folded, kw) {
				return c.Name
			}
		}
	}
	return Fallback
}

// Lookup resolves a user-supplied category name (case-insensitive, whitespace
// normalized) to its canonical spelling.
func Lookup(name string) (string, bool) {
	folded := item.Fold(name)
	if folded == "" {
		return "", false
	}
	for _, n := range Names() {
		if item.Fold(n) == folded {
			return n, true
		}
	}
	return "", false
}

// Valid reports whether name is a canonical category name.
func Valid(name string) bool {
	for _, n := range Names() {
		if n == name {
			return true
		}
	}
	return false
}

// Names returns every category name in table order, Fallback last.
func Names() []string {
	names := make([]string, 0, len(table)+1)
	for _, c := range table {
		names = append(names, c.Name)
	}
	return append(names, Fallback)
}

// Index returns the display position of a category; unknown names sort with Fallback.
func Index(name string) int {
	for i, c := range table {
		if c.Name == name {
			return i
		}
	}
	return len(table)
}

// Table returns a copy of the table for display.
func Table() []Category {
	out := make([]Category, len(table))
	for i, c := range table {
		out[i] = Category{Name: c.Name, Keywords: append([]string(nil), c.Keywords...)}
	}
	return out
}
