package crossref

import "testing"

func TestBestTitleDefault(t *testing.T) {
	if got := (&Item{Title: []string{"Deep Learning"}}).BestTitle(); got != "Deep Learning" {
		t.Errorf("BestTitle = %q", got)
	}
	if got := (&Item{}).BestTitle(); got != "Unknown Title" {
		t.Errorf("BestTitle for missing = %q, want Unknown Title", got)
	}
	if got := (&Item{Title: []string{"  "}}).BestTitle(); got != "Unknown Title" {
		t.Errorf("BestTitle for blank = %q, want Unknown Title", got)
	}
}

func TestBestVenueDefault(t *testing.T) {
	if got := (&Item{ContainerTitle: []string{"Nature"}}).BestVenue(); got != "Nature" {
		t.Errorf("BestVenue = %q", got)
	}
	if got := (&Item{}).BestVenue(); got != "Unknown Venue" {
		t.Errorf("BestVenue for missing = %q, want Unknown Venue", got)
	}
}

func TestBestYearFallbackChain(t *testing.T) {
	item := &Item{
		PublishedPrint:  &PartialDate{DateParts: [][]int{{2019, 4}}},
		PublishedOnline: &PartialDate{DateParts: [][]int{{2018, 12}}},
		Created:         &PartialDate{DateParts: [][]int{{2017}}},
	}
	if got := item.BestYear(); got != 2019 {
		t.Errorf("BestYear = %d, want published-print 2019", got)
	}

	item.PublishedPrint = nil
	if got := item.BestYear(); got != 2018 {
		t.Errorf("BestYear = %d, want published-online 2018", got)
	}

	item.PublishedOnline = nil
	if got := item.BestYear(); got != 2017 {
		t.Errorf("BestYear = %d, want created 2017", got)
	}

	item.Created = nil
	if got := item.BestYear(); got != 0 {
		t.Errorf("BestYear without dates = %d, want 0", got)
	}
}

func TestPartialDateNilSafe(t *testing.T) {
	var d *PartialDate
	if got := d.Year(); got != 0 {
		t.Errorf("Year on nil = %d, want 0", got)
	}
	if got := (&PartialDate{DateParts: [][]int{{}}}).Year(); got != 0 {
		t.Errorf("Year on empty parts = %d, want 0", got)
	}
}

func TestAuthorNamesDropsEntriesWithoutFamily(t *testing.T) {
	item := &Item{Author: []Author{
		{Given: "Ada", Family: "Lovelace"},
		{Given: "Orphan"},
		{Family: "Turing"},
	}}
	names := item.AuthorNames()
	if len(names) != 2 || names[0] != "Ada Lovelace" || names[1] != "Turing" {
		t.Fatalf("unexpected names: %v", names)
	}
}
