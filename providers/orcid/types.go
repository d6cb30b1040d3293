package orcid

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Die ORCID v3 API liefert einen tief verschachtelten Baum, in dem praktisch
// jeder Knoten null sein kann. Jede Ebene wird hier als expliziter Pointer-Typ
// modelliert; die Text()/Year()-Helfer sind nil-sicher, so dass der Syncer
// ohne get-or-default-Ketten auskommt.

// Value ist der allgegenwärtige {"value": "..."}-Wrapper der ORCID-API.
type Value struct {
	Value string `json:"value"`
}

// Text liefert den Inhalt oder "" bei fehlendem Knoten.
func (v *Value) Text() string {
	if v == nil {
		return ""
	}
	return v.Value
}

// SearchResponse ist die Antwort des /search-Endpunkts.
type SearchResponse struct {
	Result []struct {
		OrcidIdentifier struct {
			Path string `json:"path"`
		} `json:"orcid-identifier"`
	} `json:"result"`
}

// Person ist der /person-Abschnitt eines Profils.
type Person struct {
	Name                *Name                `json:"name"`
	Biography           *Biography           `json:"biography"`
	Emails              *Emails              `json:"emails"`
	OtherNames          *OtherNames          `json:"other-names"`
	ResearcherURLs      *ResearcherURLs      `json:"researcher-urls"`
	Keywords            *Keywords            `json:"keywords"`
	Addresses           *Addresses           `json:"addresses"`
	ExternalIdentifiers *ExternalIdentifiers `json:"external-identifiers"`
}

type Name struct {
	GivenNames *Value `json:"given-names"`
	FamilyName *Value `json:"family-name"`
	CreditName *Value `json:"credit-name"`
}

// DisplayName baut den bestmöglichen Anzeigenamen: credit-name vor
// "given family"; "" wenn kein Namensbestandteil vorhanden ist.
func (n *Name) DisplayName() string {
	if n == nil {
		return ""
	}
	if credit := n.CreditName.Text(); credit != "" {
		return credit
	}
	return strings.TrimSpace(n.GivenNames.Text() + " " + n.FamilyName.Text())
}

type Biography struct {
	Content string `json:"content"`
}

type Emails struct {
	Email []struct {
		Email string `json:"email"`
	} `json:"email"`
}

type OtherNames struct {
	OtherName []struct {
		Content string `json:"content"`
	} `json:"other-name"`
}

type ResearcherURLs struct {
	ResearcherURL []struct {
		URL     *Value  `json:"url"`
		URLName *string `json:"url-name"`
	} `json:"researcher-url"`
}

type Keywords struct {
	Keyword []struct {
		Content string `json:"content"`
	} `json:"keyword"`
}

type Addresses struct {
	Address []struct {
		Country *Value `json:"country"`
	} `json:"address"`
}

type ExternalIdentifiers struct {
	ExternalIdentifier []ExternalID `json:"external-identifier"`
}

// ExternalID ist die gemeinsame External-ID-Form auf Profil- und Work-Ebene.
type ExternalID struct {
	Type         string `json:"external-id-type"`
	Value        string `json:"external-id-value"`
	URL          *Value `json:"external-id-url"`
	Relationship string `json:"external-id-relationship"`
}

// FuzzyDate ist das Teil-Datum der ORCID-API; jedes Feld kann fehlen.
type FuzzyDate struct {
	Year  *Value `json:"year"`
	Month *Value `json:"month"`
	Day   *Value `json:"day"`
}

// YearInt liefert (jahr, true) oder (0, false) bei fehlendem Jahr. Ein
// vorhandener, aber nicht-numerischer Wert gilt als Koerzierungsfehler.
func (d *FuzzyDate) YearInt() (int, bool, error) {
	if d == nil {
		return 0, false, nil
	}
	raw := strings.TrimSpace(d.Year.Text())
	if raw == "" {
		return 0, false, nil
	}
	year, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false, err
	}
	if year == 0 {
		return 0, false, nil
	}
	return year, true, nil
}

// TitleWrap ist der doppelt verschachtelte Titel-Knoten (title.title.value).
type TitleWrap struct {
	Title *Value `json:"title"`
}

// Text liefert den Titel oder "".
func (t *TitleWrap) Text() string {
	if t == nil {
		return ""
	}
	return t.Title.Text()
}

// Organization ist die eingebettete Organisations-Referenz einer Aktivität.
type Organization struct {
	Name    string `json:"name"`
	Address *struct {
		City    *string `json:"city"`
		Region  *string `json:"region"`
		Country *string `json:"country"`
	} `json:"address"`
}

// Affiliations ist die Antwort von /employments bzw. /educations.
type Affiliations struct {
	AffiliationGroup []AffiliationGroup `json:"affiliation-group"`
}

type AffiliationGroup struct {
	Summaries []AffiliationSummary `json:"summaries"`
}

// AffiliationSummary enthält je nach Endpunkt entweder ein employment-summary
// oder ein education-summary.
type AffiliationSummary struct {
	EmploymentSummary *AffiliationDetail `json:"employment-summary"`
	EducationSummary  *AffiliationDetail `json:"education-summary"`
}

// Detail liefert den jeweils gesetzten Summary-Knoten (oder nil).
func (s *AffiliationSummary) Detail() *AffiliationDetail {
	if s.EmploymentSummary != nil {
		return s.EmploymentSummary
	}
	return s.EducationSummary
}

type AffiliationDetail struct {
	Organization   *Organization `json:"organization"`
	StartDate      *FuzzyDate    `json:"start-date"`
	EndDate        *FuzzyDate    `json:"end-date"`
	RoleTitle      *string       `json:"role-title"`
	DepartmentName *string       `json:"department-name"`
}

// Fundings ist die Antwort von /fundings.
type Fundings struct {
	Group []FundingGroup `json:"group"`
}

type FundingGroup struct {
	FundingSummary []FundingSummary `json:"funding-summary"`
}

type FundingSummary struct {
	Title        *TitleWrap    `json:"title"`
	Type         *string       `json:"type"`
	StartDate    *FuzzyDate    `json:"start-date"`
	Amount       *Amount       `json:"amount"`
	Organization *Organization `json:"organization"`
}

type Amount struct {
	Value        string `json:"value"`
	CurrencyCode string `json:"currency-code"`
}

// PeerReviews ist die Antwort von /peer-reviews.
type PeerReviews struct {
	Group []PeerReviewGroup `json:"group"`
}

type PeerReviewGroup struct {
	PeerReviewSummary []PeerReviewSummary `json:"peer-review-summary"`
}

type PeerReviewSummary struct {
	ConveningOrganization *Organization `json:"convening-organization"`
	ReviewGroupID         string        `json:"review-group-id"`
}

// ResearchResources ist die Antwort von /research-resources.
type ResearchResources struct {
	Group []ResearchResourceGroup `json:"group"`
}

type ResearchResourceGroup struct {
	ResearchResourceSummary []ResearchResourceSummary `json:"research-resource-summary"`
}

type ResearchResourceSummary struct {
	Title *TitleWrap `json:"title"`
}

// Works ist die Antwort von /works.
type Works struct {
	Group []WorkGroup `json:"group"`
}

type WorkGroup struct {
	WorkSummary []WorkSummary `json:"work-summary"`
}

type WorkSummary struct {
	PutCode         int64        `json:"put-code"`
	Title           *TitleWrap   `json:"title"`
	JournalTitle    *Value       `json:"journal-title"`
	Type            *string      `json:"type"`
	PublicationDate *FuzzyDate   `json:"publication-date"`
	ExternalIDs     *ExternalIDs `json:"external-ids"`
}

type ExternalIDs struct {
	ExternalID []ExternalID `json:"external-id"`
}

// DOI sucht den ersten DOI-typisierten External Identifier eines Works.
func (w *WorkSummary) DOI() string {
	if w.ExternalIDs == nil {
		return ""
	}
	for _, eid := range w.ExternalIDs.ExternalID {
		if strings.EqualFold(eid.Type, "doi") && eid.Value != "" {
			return eid.Value
		}
	}
	return ""
}

// FullProfile bündelt alle Abschnitte eines Profils. Abschnitte, deren Abruf
// fehlschlug, sind nil und werden vom Syncer wie leere Mengen behandelt.
type FullProfile struct {
	Orcid             string             `json:"orcid"`
	Person            *Person            `json:"person"`
	Works             *Works             `json:"works"`
	Fundings          *Fundings          `json:"fundings"`
	Employments       *Affiliations      `json:"employments"`
	Educations        *Affiliations      `json:"educations"`
	PeerReviews       *PeerReviews       `json:"peer_reviews"`
	ResearchResources *ResearchResources `json:"research_resources"`

	// Raw hält die unveränderten Antworten pro Endpunkt für die Archivierung.
	Raw map[string]json.RawMessage `json:"-"`
}

// RawDocument baut das Archiv-Dokument aus den unveränderten API-Antworten.
func (p *FullProfile) RawDocument() ([]byte, error) {
	doc := map[string]json.RawMessage{
		"orcid": json.RawMessage(strconv.Quote(p.Orcid)),
	}
	for endpoint, raw := range p.Raw {
		doc[endpoint] = raw
	}
	return json.Marshal(doc)
}
