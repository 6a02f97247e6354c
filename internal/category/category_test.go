package category

import (
	"strings"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"melk", "Zuivel & Eieren"},
		{"Halfvolle MELK", "Zuivel & Eieren"},
		{"bananen", "Groente & Fruit"},
		{"kipfilet", "Vlees & Vis"},
		{"volkoren brood", "Brood & Bakkerij"},
		{"afwasmiddel", "Huishouden & Verzorging"},
		{"spaghetti", "Pasta, Rijst & Granen"},
		{"mosterd", "Conserven & Sauzen"},
		{"friet", "Diepvries"},
		{"chips paprika", "Groente & Fruit"}, // paprika is checked before chips
		{"chocola", "Snacks & Snoep"},
		{"koffie", "Dranken"},
		{"sambal oelek", "Toko"},
		{"tofu", "Toko"},
		{"lasagne", Fallback},
		{"eggs", Fallback},
		{"", Fallback},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			if got := Classify(tt.text); got != tt.want {
				t.Errorf("Classify(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestClassify_FirstMatchInTableOrderWins(t *testing.T) {
	// "rijst" is a keyword of both Pasta, Rijst & Granen and Toko.
	if got := Classify("pandanrijst"); got != "Pasta, Rijst & Granen" {
		t.Errorf("Classify(pandanrijst) = %q, want grains category", got)
	}
	// "kokosmelk" is listed under Toko but "melk" belongs to an earlier category.
	if got := Classify("kokosmelk"); got != "Zuivel & Eieren" {
		t.Errorf("Classify(kokosmelk) = %q, want Zuivel & Eieren", got)
	}
}

func TestClassify_SubstringSemantics(t *testing.T) {
	// Short keywords match inside unrelated words.
	if got := Classify("reiger"); got != "Zuivel & Eieren" {
		t.Errorf("Classify(reiger) = %q, want Zuivel & Eieren (\"ei\" substring)", got)
	}
}

func TestClassify_EveryKeywordClassifiesSomewhere(t *testing.T) {
	// Each keyword lands in its own category or an earlier one, never a later one.
	for i, c := range table {
		for _, kw := range c.Keywords {
			got := Classify(kw)
			if Index(got) > i {
				t.Errorf("Classify(%q) = %q, which comes after %q", kw, got, c.Name)
			}
		}
	}
}

func TestKeywordsAreLowercase(t *testing.T) {
	for _, c := range table {
		for _, kw := range c.Keywords {
			if kw != strings.ToLower(kw) {
				t.Errorf("keyword %q in %q is not lowercase", kw, c.Name)
			}
		}
	}
}

func TestLookup(t *testing.T) {
	tests := []struct {
		input  string
		want   string
		wantOK bool
	}{
		{"Zuivel & Eieren", "Zuivel & Eieren", true},
		{"zuivel   &  eieren", "Zuivel & Eieren", true},
		{"TOKO", "Toko", true},
		{"overig", Fallback, true},
		{"Snoepgoed", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, ok := Lookup(tt.input)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("Lookup(%q) = (%q, %v), want (%q, %v)", tt.input, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestNames(t *testing.T) {
	names := Names()
	if len(names) != len(table)+1 {
		t.Fatalf("len(Names()) = %d, want %d", len(names), len(table)+1)
	}
	if names[0] != "Groente & Fruit" {
		t.Errorf("Names()[0] = %q, want Groente & Fruit", names[0])
	}
	if names[len(names)-1] != Fallback {
		t.Errorf("last name = %q, want %q", names[len(names)-1], Fallback)
	}
	for _, n := range names {
		if !Valid(n) {
			t.Errorf("Valid(%q) = false", n)
		}
	}
	if Valid("zuivel & eieren") {
		t.Error("Valid() should require canonical spelling")
	}
}

func TestIndex(t *testing.T) {
	if Index("Groente & Fruit") != 0 {
		t.Errorf("Index(Groente & Fruit) = %d, want 0", Index("Groente & Fruit"))
	}
	if Index(Fallback) != len(table) {
		t.Errorf("Index(Fallback) = %d, want %d", Index(Fallback), len(table))
	}
	if Index("unknown") != len(table) {
		t.Errorf("Index(unknown) = %d, want %d", Index("unknown"), len(table))
	}
}
