package models

import (
	"time"
)

// Paper ist das vereinheitlichte Format für eine Publikation aus allen Quellen.
// Identität ist das Natural-Key-Paar (source_id, source_name); der Unique-Index
// darauf ist der einzige Dedup-Mechanismus beim Ingest.
type Paper struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	SourceID   string `json:"source_id" gorm:"column:source_id;uniqueIndex:idx_papers_source;not null"`
	SourceName string `json:"source_name" gorm:"column:source_name;uniqueIndex:idx_papers_source;not null;index"`

	Title   string   `json:"title"`
	Authors []string `json:"authors" gorm:"column:authors_json;serializer:json"`
	Year    int      `json:"year"`
	Venue   string   `json:"venue"`
	DOI     string   `json:"doi,omitempty" gorm:"column:doi;index"`
}

// TableName erzwingt den Tabellennamen aus dem bestehenden Schema.
func (Paper) TableName() string { return "papers" }
