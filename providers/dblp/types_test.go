package dblp

import (
	"encoding/json"
	"testing"
)

func TestAuthorListAcceptsList(t *testing.T) {
	raw := `{"author": [{"text": "Ada Lovelace"}, {"text": "Alan Turing"}]}`
	var list AuthorList
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	names := list.Names()
	if len(names) != 2 || names[0] != "Ada Lovelace" || names[1] != "Alan Turing" {
		t.Fatalf("unexpected names: %v", names)
	}
}

func TestAuthorListAcceptsSingleObject(t *testing.T) {
	// DBLP liefert bei genau einem Autor ein Objekt statt einer Liste.
	raw := `{"author": {"text": "Ada Lovelace"}}`
	var list AuthorList
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	names := list.Names()
	if len(names) != 1 || names[0] != "Ada Lovelace" {
		t.Fatalf("unexpected names: %v", names)
	}
}

func TestAuthorListUnknownShape(t *testing.T) {
	raw := `{"author": "Ada Lovelace"}`
	var list AuthorList
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if names := list.Names(); len(names) != 0 {
		t.Fatalf("expected no names, got %v", names)
	}
}

func TestNamesDropsEntriesWithoutText(t *testing.T) {
	raw := `{"author": [{"text": "Ada Lovelace"}, {}]}`
	var list AuthorList
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	names := list.Names()
	if len(names) != 1 || names[0] != "Ada Lovelace" {
		t.Fatalf("unexpected names: %v", names)
	}
}

func TestCleanTitle(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"A Study of Things.", "A Study of Things"},
		{"No Trailing Dot", "No Trailing Dot"},
		{"", "Unknown Title"},
		{"...", "Unknown Title"},
	}
	for _, c := range cases {
		info := Info{Title: c.in}
		if got := info.CleanTitle(); got != c.want {
			t.Errorf("CleanTitle(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestYearInt(t *testing.T) {
	if got := (&Info{Year: "2021"}).YearInt(); got != 2021 {
		t.Errorf("YearInt = %d, want 2021", got)
	}
	if got := (&Info{Year: "n/a"}).YearInt(); got != 0 {
		t.Errorf("YearInt for non-numeric = %d, want 0", got)
	}
	if got := (&Info{}).YearInt(); got != 0 {
		t.Errorf("YearInt for missing = %d, want 0", got)
	}
}

func TestBestVenue(t *testing.T) {
	if got := (&Info{Venue: "ICML"}).BestVenue(); got != "ICML" {
		t.Errorf("BestVenue = %q", got)
	}
	if got := (&Info{}).BestVenue(); got != "Unknown" {
		t.Errorf("BestVenue for missing = %q, want Unknown", got)
	}
}
