package crossref

import "strings"

// WorksResponse ist die Top-Level-Struktur der Crossref /works-Antwort.
type WorksResponse struct {
	Message struct {
		Items []Item `json:"items"`
	} `json:"message"`
}

// Item repräsentiert ein einzelnes Werk in der API-Antwort. Praktisch jedes
// Feld kann fehlen; die Extraktions-Helfer liefern dann dokumentierte Defaults.
type Item struct {
	DOI             string       `json:"DOI"`
	Title           []string     `json:"title"`
	Author          []Author     `json:"author"`
	ContainerTitle  []string     `json:"container-title"`
	PublishedPrint  *PartialDate `json:"published-print"`
	PublishedOnline *PartialDate `json:"published-online"`
	Created         *PartialDate `json:"created"`
}

// Author trennt Vor- und Nachnamen; Einträge ohne family werden verworfen.
type Author struct {
	Given  string `json:"given"`
	Family string `json:"family"`
}

// PartialDate ist das date-parts-Format von Crossref: [[Jahr, Monat, Tag]].
type PartialDate struct {
	DateParts [][]int `json:"date-parts"`
}

// Year liefert das Jahr oder 0, wenn keines vorhanden ist. Nil-sicher, damit
// die Fallback-Kette published-print → published-online → created ohne
// Guards ausgedrückt werden kann.
func (d *PartialDate) Year() int {
	if d == nil || len(d.DateParts) == 0 || len(d.DateParts[0]) == 0 {
		return 0
	}
	return d.DateParts[0][0]
}

// BestTitle gibt den ersten Titel zurück, sonst den Sentinel-Wert.
func (i *Item) BestTitle() string {
	if len(i.Title) > 0 && strings.TrimSpace(i.Title[0]) != "" {
		return i.Title[0]
	}
	return "Unknown Title"
}

// BestVenue gibt den ersten Container-Titel zurück, sonst den Sentinel-Wert.
func (i *Item) BestVenue() string {
	if len(i.ContainerTitle) > 0 && strings.TrimSpace(i.ContainerTitle[0]) != "" {
		return i.ContainerTitle[0]
	}
	return "Unknown Venue"
}

// BestYear probiert die Datumsquellen in dokumentierter Reihenfolge durch.
func (i *Item) BestYear() int {
	if y := i.PublishedPrint.Year(); y != 0 {
		return y
	}
	if y := i.PublishedOnline.Year(); y != 0 {
		return y
	}
	return i.Created.Year()
}

// AuthorNames baut "given family"-Namen; Einträge ohne family werden verworfen.
func (i *Item) AuthorNames() []string {
	names := []string{}
	for _, a := range i.Author {
		if a.Family == "" {
			continue
		}
		names = append(names, strings.TrimSpace(a.Given+" "+a.Family))
	}
	return names
}
