package dblp

import (
	"encoding/json"
	"strconv"
	"strings"
)

// SearchResponse ist die Top-Level-Struktur der DBLP-Such-API.
type SearchResponse struct {
	Result struct {
		Hits struct {
			Hit []Hit `json:"hit"`
		} `json:"hits"`
	} `json:"result"`
}

// Hit repräsentiert einen einzelnen Treffer.
type Hit struct {
	ID   string `json:"@id"`
	Info Info   `json:"info"`
}

// Info enthält die eigentlichen Publikations-Metadaten.
type Info struct {
	Title   string     `json:"title"`
	Authors AuthorList `json:"authors"`
	Year    string     `json:"year"`
	Venue   string     `json:"venue"`
	DOI     string     `json:"doi"`
}

// Author ist ein einzelner Autoren-Eintrag; DBLP liefert den Namen im text-Feld.
type Author struct {
	Text string `json:"text"`
}

// AuthorList kapselt die DBLP-Eigenheit, dass authors.author bei genau einem
// Autor ein Objekt und sonst eine Liste ist.
type AuthorList struct {
	Author authorItems `json:"author"`
}

type authorItems []Author

// UnmarshalJSON akzeptiert sowohl ein einzelnes Autoren-Objekt als auch eine Liste.
func (a *authorItems) UnmarshalJSON(data []byte) error {
	var list []Author
	if err := json.Unmarshal(data, &list); err == nil {
		*a = list
		return nil
	}
	var single Author
	if err := json.Unmarshal(data, &single); err == nil {
		*a = authorItems{single}
		return nil
	}
	// Unbekannte Form (z.B. String): keine Autoren statt Abbruch.
	*a = nil
	return nil
}

// Names liefert die Autorennamen; Einträge ohne text-Feld werden verworfen.
func (a AuthorList) Names() []string {
	names := []string{}
	for _, author := range a.Author {
		if author.Text == "" {
			continue
		}
		names = append(names, author.Text)
	}
	return names
}

// CleanTitle entfernt den abschließenden Punkt, den DBLP an Titel anhängt.
func (i *Info) CleanTitle() string {
	title := strings.Trim(i.Title, ".")
	if strings.TrimSpace(title) == "" {
		return "Unknown Title"
	}
	return title
}

// YearInt koerziert das Jahr-Feld; nicht-numerische Werte werden zu 0.
func (i *Info) YearInt() int {
	year, err := strconv.Atoi(strings.TrimSpace(i.Year))
	if err != nil {
		return 0
	}
	return year
}

// BestVenue gibt den Venue-Namen zurück, sonst den Sentinel-Wert.
func (i *Info) BestVenue() string {
	if strings.TrimSpace(i.Venue) == "" {
		return "Unknown"
	}
	return i.Venue
}
