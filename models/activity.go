package models

import (
	"time"
)

// OrgAffiliationRelation ist eine Anstellung oder Ausbildung eines Profils.
// Die Organisation ist Pflicht; ein Eintrag ohne auflösbare Organisation wird
// beim Sync verworfen.
type OrgAffiliationRelation struct {
	ID           int64     `json:"id" gorm:"primaryKey;autoIncrement:false"`
	Orcid        string    `json:"orcid" gorm:"column:orcid;index"`
	OrgID        *int64    `json:"org_id" gorm:"column:org_id;not null"`
	StartYear    *int      `json:"start_year"`
	EndYear      *int      `json:"end_year"`
	Title        *string   `json:"org_affiliation_relation_title" gorm:"column:org_affiliation_relation_title"`
	Department   *string   `json:"department"`
	LastModified time.Time `json:"last_modified"`
}

func (OrgAffiliationRelation) TableName() string { return "org_affiliation_relation" }

// OrgAffiliationRelationExternalIdentifier ist die (derzeit unbefüllte)
// Kind-Tabelle einer Affiliation. Der Tippfehler im Tabellennamen stammt aus
// dem vorgegebenen SQL-Schema und muss erhalten bleiben.
type OrgAffiliationRelationExternalIdentifier struct {
	ID                       int64  `json:"id" gorm:"primaryKey;autoIncrement:false"`
	OrgAffiliationRelationID int64  `json:"org_affilaition_relation_id" gorm:"column:org_affilaition_relation_id;index"`
	Value                    string `json:"value"`
}

func (OrgAffiliationRelationExternalIdentifier) TableName() string {
	return "org_affilaition_relation_external_identifier"
}

// ProfileFunding ist eine Förderung (Grant) eines Profils.
type ProfileFunding struct {
	ID            int64     `json:"id" gorm:"primaryKey;autoIncrement:false"`
	Orcid         string    `json:"orcid" gorm:"column:orcid;index"`
	Title         *string   `json:"title"`
	Type          *string   `json:"type" gorm:"column:type"`
	StartYear     *int      `json:"start_year"`
	NumericAmount *float64  `json:"numeric_amount" gorm:"column:numeric_amount"`
	CurrencyCode  *string   `json:"currency_code" gorm:"column:currency_code"`
	OrgID         *int64    `json:"org_id" gorm:"column:org_id;not null"`
	LastModified  time.Time `json:"last_modified"`
}

func (ProfileFunding) TableName() string { return "profile_funding" }

// ProfileFundingContributor bleibt im aktuellen Umfang unbefüllt, muss aber
// beim Replace-on-Sync mit gelöscht werden (kein ON DELETE CASCADE im Schema).
type ProfileFundingContributor struct {
	ID               int64   `json:"id" gorm:"primaryKey;autoIncrement:false"`
	ProfileFundingID int64   `json:"profile_funding_id" gorm:"column:profile_funding_id;index"`
	CreditName       *string `json:"credit_name"`
}

func (ProfileFundingContributor) TableName() string { return "profile_funding_contributor" }

// ProfileFundingExternalIdentifier ist die External-ID-Kind-Tabelle einer Förderung.
type ProfileFundingExternalIdentifier struct {
	ID               int64   `json:"id" gorm:"primaryKey;autoIncrement:false"`
	ProfileFundingID int64   `json:"profile_funding_id" gorm:"column:profile_funding_id;index"`
	Value            *string `json:"value"`
}

func (ProfileFundingExternalIdentifier) TableName() string {
	return "profile_funding_external_identifier"
}

// PeerReview ist eine Gutachter-Tätigkeit; die ausrichtende Organisation ist Pflicht.
type PeerReview struct {
	ID           int64     `json:"id" gorm:"primaryKey;autoIncrement:false"`
	Orcid        string    `json:"orcid" gorm:"column:orcid;index"`
	OrgID        *int64    `json:"org_id" gorm:"column:org_id;not null"`
	SubjectName  string    `json:"subject_name" gorm:"column:subject_name;size:1000"`
	LastModified time.Time `json:"last_modified"`
}

func (PeerReview) TableName() string { return "peer_review" }

// PeerReviewExternalIdentifier ist die External-ID-Kind-Tabelle einer Gutachter-Tätigkeit.
type PeerReviewExternalIdentifier struct {
	ID           int64   `json:"id" gorm:"primaryKey;autoIncrement:false"`
	PeerReviewID int64   `json:"peer_review_id" gorm:"column:peer_review_id;index"`
	Value        *string `json:"value"`
}

func (PeerReviewExternalIdentifier) TableName() string { return "peer_review_external_identifier" }

// ResearchResource ist eine Forschungsressource; im aktuellen Umfang nur der Titel.
type ResearchResource struct {
	ID           int64     `json:"id" gorm:"primaryKey;autoIncrement:false"`
	Orcid        string    `json:"orcid" gorm:"column:orcid;index"`
	Title        *string   `json:"title"`
	LastModified time.Time `json:"last_modified"`
}

func (ResearchResource) TableName() string { return "research_resource" }

// ResearchResourceItem ist die (unbefüllte) Item-Kind-Tabelle einer Ressource.
type ResearchResourceItem struct {
	ID                 int64   `json:"id" gorm:"primaryKey;autoIncrement:false"`
	ResearchResourceID int64   `json:"research_resource_id" gorm:"column:research_resource_id;index"`
	Name               *string `json:"name"`
}

func (ResearchResourceItem) TableName() string { return "research_resource_item" }

// ResearchResourceExternalIdentifier ist die External-ID-Kind-Tabelle einer Ressource.
type ResearchResourceExternalIdentifier struct {
	ID                 int64   `json:"id" gorm:"primaryKey;autoIncrement:false"`
	ResearchResourceID int64   `json:"research_resource_id" gorm:"column:research_resource_id;index"`
	Value              *string `json:"value"`
}

func (ResearchResourceExternalIdentifier) TableName() string {
	return "research_resource_external_identifier"
}
