package models

import (
	"time"
)

// Org ist eine geteilte Organisations-Dimension. Natural Key ist (name, city),
// wobei city IS NULL beim Lookup jede Stadt matcht. Dimensionszeilen wachsen
// nur; sie werden nie aktualisiert oder gelöscht.
type Org struct {
	ID          int64     `json:"id" gorm:"primaryKey;autoIncrement:false"`
	Name        string    `json:"name" gorm:"index;not null"`
	City        *string   `json:"city"`
	Region      *string   `json:"region"`
	CountryID   *int64    `json:"country_id" gorm:"column:country_id"`
	DateCreated time.Time `json:"date_created"`
}

func (Org) TableName() string { return "org" }

// Country ist die Länder-Dimension, Natural Key ist der ISO-2-Code.
type Country struct {
	ID       int64  `json:"id" gorm:"primaryKey"`
	ISO2Code string `json:"iso2_code" gorm:"column:iso2_code;uniqueIndex"`
}

func (Country) TableName() string { return "country" }

// WorkType ist die Publikationstyp-Dimension (journal-article, book, ...).
type WorkType struct {
	ID       int64  `json:"id" gorm:"primaryKey"`
	WorkType string `json:"work_type" gorm:"column:work_type;uniqueIndex"`
}

func (WorkType) TableName() string { return "work_type" }

// ExternalIDRelationship ist die Relationship-Dimension für Work-External-IDs.
// Die relationship-Spalte ist im vorgegebenen Schema BIGINT, obwohl die Daten
// Text sind ("self", "part-of"); gespeichert wird deshalb ein 63-Bit-Hash des
// Labels. Hash-Kollisionen gelten als identisch und werden nicht erkannt.
type ExternalIDRelationship struct {
	ID           int64 `json:"id" gorm:"primaryKey"`
	Relationship int64 `json:"relationship" gorm:"column:relationship;uniqueIndex"`
}

func (ExternalIDRelationship) TableName() string { return "external_id_relationship" }
