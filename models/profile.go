package models

import (
	"time"
)

// Profile ist die Wurzel-Entität eines ORCID-Datensatzes. Alle Kind-Tabellen
// hängen über die orcid-Spalte daran und werden bei jedem Sync vollständig
// ersetzt (replace-on-sync, kein Merge).
type Profile struct {
	Orcid        string    `json:"orcid" gorm:"column:orcid;primaryKey"`
	LastModified time.Time `json:"last_modified"`
}

func (Profile) TableName() string { return "profile" }

// RecordName speichert die Namensbestandteile eines Profils (0 oder 1 pro Profil).
type RecordName struct {
	ID           int64     `json:"id" gorm:"primaryKey;autoIncrement:false"`
	Orcid        string    `json:"orcid" gorm:"column:orcid;index"`
	GivenNames   *string   `json:"given_names"`
	FamilyName   *string   `json:"family_name"`
	CreditName   *string   `json:"credit_name"`
	LastModified time.Time `json:"last_modified"`
}

func (RecordName) TableName() string { return "record_name" }

// Biography speichert den Freitext-Lebenslauf (0 oder 1 pro Profil).
type Biography struct {
	ID           int64     `json:"id" gorm:"primaryKey;autoIncrement:false"`
	Orcid        string    `json:"orcid" gorm:"column:orcid;index"`
	Biography    string    `json:"biography" gorm:"type:text"`
	LastModified time.Time `json:"last_modified"`
}

func (Biography) TableName() string { return "biography" }

// Email ist eine von beliebig vielen E-Mail-Adressen eines Profils.
type Email struct {
	EmailID      int64     `json:"email_id" gorm:"column:email_id;primaryKey;autoIncrement:false"`
	Orcid        string    `json:"orcid" gorm:"column:orcid;index"`
	Email        string    `json:"email"`
	LastModified time.Time `json:"last_modified"`
}

func (Email) TableName() string { return "email" }

// OtherName ist ein alternativer Anzeigename eines Profils.
type OtherName struct {
	OtherNameID  int64     `json:"other_name_id" gorm:"column:other_name_id;primaryKey;autoIncrement:false"`
	Orcid        string    `json:"orcid" gorm:"column:orcid;index"`
	DisplayName  string    `json:"display_name"`
	LastModified time.Time `json:"last_modified"`
}

func (OtherName) TableName() string { return "other_name" }

// ResearcherURL ist ein vom Forscher hinterlegter Link.
type ResearcherURL struct {
	ID           int64     `json:"id" gorm:"primaryKey;autoIncrement:false"`
	Orcid        string    `json:"orcid" gorm:"column:orcid;index"`
	URL          *string   `json:"url" gorm:"column:url"`
	URLName      *string   `json:"url_name" gorm:"column:url_name"`
	LastModified time.Time `json:"last_modified"`
}

func (ResearcherURL) TableName() string { return "researcher_url" }

// ProfileKeyword ist ein Schlagwort eines Profils.
type ProfileKeyword struct {
	ID           int64     `json:"id" gorm:"primaryKey;autoIncrement:false"`
	Orcid        string    `json:"orcid" gorm:"column:orcid;index"`
	KeywordsName string    `json:"keywords_name" gorm:"column:keywords_name"`
	LastModified time.Time `json:"last_modified"`
}

func (ProfileKeyword) TableName() string { return "profile_keyword" }

// Address verweist auf das Land eines Profils (Country-Dimension).
type Address struct {
	ID           int64     `json:"id" gorm:"primaryKey;autoIncrement:false"`
	Orcid        string    `json:"orcid" gorm:"column:orcid;index"`
	CountryID    *int64    `json:"country_id" gorm:"column:country_id"`
	LastModified time.Time `json:"last_modified"`
}

func (Address) TableName() string { return "address" }

// ProfileExternalIdentifier ist ein externer Identifier auf Profil-Ebene
// (z.B. Scopus Author ID).
type ProfileExternalIdentifier struct {
	ID                  int64     `json:"id" gorm:"primaryKey;autoIncrement:false"`
	Orcid               string    `json:"orcid" gorm:"column:orcid;index"`
	ExternalIDReference *string   `json:"external_id_reference" gorm:"column:external_id_reference"`
	ExternalIDURL       *string   `json:"external_id_url" gorm:"column:external_id_url"`
	LastModified        time.Time `json:"last_modified"`
}

func (ProfileExternalIdentifier) TableName() string { return "profile_external_identifier" }
