package models

import (
	"time"
)

// Work ist eine Publikation innerhalb eines ORCID-Profils. Der Put-Code der
// API ist nur pro Profil eindeutig und wird deshalb nicht als Primärschlüssel
// übernommen; bei jedem Sync wird eine frische zufällige 63-Bit-ID vergeben.
// Work-Zeilen haben damit keine stabile Identität über Syncs hinweg.
type Work struct {
	WorkID       int64     `json:"work_id" gorm:"column:work_id;primaryKey;autoIncrement:false"`
	Orcid        string    `json:"orcid" gorm:"column:orcid;index"`
	Title        *string   `json:"title"`
	JournalTitle *string   `json:"journal_title" gorm:"column:journal_title"`
	WorkTypeID   *int64    `json:"work_type_id" gorm:"column:work_type_id"`
	LastModified time.Time `json:"last_modified"`
}

func (Work) TableName() string { return "work" }

// WorkExternalIdentifier ist ein externer Identifier (DOI, ISBN, ...) eines Works.
// relationship_id verweist auf die gehashte RelationshipKind-Dimension.
type WorkExternalIdentifier struct {
	ID             int64   `json:"id" gorm:"primaryKey"`
	WorkID         int64   `json:"work_id" gorm:"column:work_id;index"`
	Type           *string `json:"type" gorm:"column:type"`
	Value          *string `json:"value"`
	URL            *string `json:"url" gorm:"column:url"`
	RelationshipID *int64  `json:"relationship_id" gorm:"column:relationship_id"`
}

func (WorkExternalIdentifier) TableName() string { return "work_external_identifier" }

// WorkContributor bleibt im aktuellen Umfang unbefüllt, wird beim
// Replace-on-Sync aber mit abgeräumt.
type WorkContributor struct {
	ID         int64   `json:"id" gorm:"primaryKey"`
	WorkID     int64   `json:"work_id" gorm:"column:work_id;index"`
	CreditName *string `json:"credit_name"`
}

func (WorkContributor) TableName() string { return "work_contributor" }
