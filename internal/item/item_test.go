package item

import "testing"

func TestClean(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty", "", ""},
		{"whitespace only", " \t\n ", ""},
		{"trim", "  Melk  ", "Melk"},
		{"collapse", "Volle   melk\t2  liter", "Volle melk 2 liter"},
		{"case preserved", "Jonge Kaas", "Jonge Kaas"},
		{"no-break space", "\u00a0halfvolle\u00a0\u00a0melk\u00a0", "halfvolle melk"},
		{"vertical tab", "melk\vkaas", "melk kaas"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clean(tt.input); got != tt.expected {
				t.Errorf("Clean(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestFold(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"MELK", "melk"},
		{"  Jonge   KAAS ", "jonge kaas"},
		{"CRÈME FRAÎCHE", "crème fraîche"},
		{"IJsbergsla", "ijsbergsla"},
	}
	for _, tt := range tests {
		if got := Fold(tt.input); got != tt.expected {
			t.Errorf("Fold(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestParseList(t *testing.T) {
	tests := []struct {
		input  string
		want   List
		wantOK bool
	}{
		{"", ListDefault, false},
		{"default", ListDefault, true},
		{"Boodschappen", ListDefault, true},
		{"weekmenu", ListWeekmenu, true},
		{"MENU", ListWeekmenu, true},
		{" toko ", ListToko, true},
		{"kerst", ListDefault, false},
	}
	for _, tt := range tests {
		got, ok := ParseList(tt.input)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ParseList(%q) = (%q, %v), want (%q, %v)", tt.input, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestListTitle(t *testing.T) {
	if ListDefault.Title() != "Boodschappen" {
		t.Errorf("ListDefault.Title() = %q", ListDefault.Title())
	}
	if ListWeekmenu.Title() != "Weekmenu" {
		t.Errorf("ListWeekmenu.Title() = %q", ListWeekmenu.Title())
	}
	if ListToko.Title() != "Toko" {
		t.Errorf("ListToko.Title() = %q", ListToko.Title())
	}
	if List("bogus").Valid() {
		t.Error("List(bogus).Valid() = true")
	}
	for _, l := range AllLists() {
		if !l.Valid() {
			t.Errorf("%q.Valid() = false", l)
		}
	}
}
