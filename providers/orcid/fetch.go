package orcid

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"scholar-sync/config"
	"scholar-sync/models"
)

var httpClient = &http.Client{Timeout: 60 * time.Second}

// Fetcher kapselt die Interaktion mit der öffentlichen ORCID v3 API. Er
// bedient sowohl den Paper-Modus (Provider-Interface) als auch den vollen
// Profil-Abruf für den Profile Synchronizer.
type Fetcher struct {
	Config *config.Config
	Logger *zap.Logger
}

// NewFetcher erstellt einen neuen ORCID-Fetcher.
func NewFetcher(cfg *config.Config, logger *zap.Logger) *Fetcher {
	return &Fetcher{Config: cfg, Logger: logger}
}

// Name gibt den Namen des Providers zurück.
func (f *Fetcher) Name() string {
	return "orcid"
}

// SearchID sucht eine Person und gibt ihre ORCID iD zurück ("" wenn nicht
// gefunden oder bei Transportfehlern).
func (f *Fetcher) SearchID(query string) string {
	log := f.Logger.With(zap.String("query", query))
	log.Info("Suche ORCID-Profil.")

	searchURL := fmt.Sprintf("%s/search?q=%s&rows=1", f.Config.OrcidBaseURL, url.QueryEscape(query))
	raw := f.get(searchURL)
	if raw == nil {
		return ""
	}

	var searchResp SearchResponse
	if err := json.Unmarshal(raw, &searchResp); err != nil {
		log.Warn("Fehler beim Parsen der ORCID-Suchantwort", zap.Error(err))
		return ""
	}
	if len(searchResp.Result) == 0 {
		log.Info("Kein ORCID-Profil gefunden.")
		return ""
	}
	return searchResp.Result[0].OrcidIdentifier.Path
}

// FetchFullProfile holt alle vom Schema benötigten Abschnitte, einen Endpunkt
// pro Aufruf. Jeder Abschnitt degradiert bei Fehlern zu nil.
func (f *Fetcher) FetchFullProfile(orcidID string) *FullProfile {
	log := f.Logger.With(zap.String("orcid", orcidID))
	log.Info("Lade vollständiges Profil von der ORCID API.")

	profile := &FullProfile{
		Orcid: orcidID,
		Raw:   map[string]json.RawMessage{},
	}

	fetchSection := func(endpoint string, target any) bool {
		raw := f.get(fmt.Sprintf("%s/%s/%s", f.Config.OrcidBaseURL, orcidID, endpoint))
		if raw == nil {
			log.Warn("Abschnitt konnte nicht geladen werden", zap.String("endpoint", endpoint))
			return false
		}
		// Rohdaten auch bei Parse-Fehlern behalten, das Archiv ist unkritisch.
		profile.Raw[endpoint] = raw
		if err := json.Unmarshal(raw, target); err != nil {
			log.Warn("Abschnitt konnte nicht geparst werden",
				zap.String("endpoint", endpoint), zap.Error(err))
			return false
		}
		return true
	}

	person := &Person{}
	works := &Works{}
	fundings := &Fundings{}
	employments := &Affiliations{}
	educations := &Affiliations{}
	peerReviews := &PeerReviews{}
	resources := &ResearchResources{}

	// Die person-Sektion steuert, ob der Kernbereich überhaupt gespeichert
	// wird; ein Parse-Fehler zählt deshalb wie ein fehlgeschlagener Abruf,
	// sonst würde ein leerer Person-Knoten den Kernbestand abräumen.
	if fetchSection("person", person) {
		profile.Person = person
	}
	fetchSection("works", works)
	fetchSection("fundings", fundings)
	fetchSection("employments", employments)
	fetchSection("educations", educations)
	fetchSection("peer-reviews", peerReviews)
	fetchSection("research-resources", resources)

	profile.Works = works
	profile.Fundings = fundings
	profile.Employments = employments
	profile.Educations = educations
	profile.PeerReviews = peerReviews
	profile.ResearchResources = resources
	return profile
}

// Search implementiert den Paper-Modus: Profil per Query auflösen und die
// Works-Sektion auf das gemeinsame Paper-Modell abbilden.
func (f *Fetcher) Search(term string) ([]*models.Paper, error) {
	log := f.Logger.With(zap.String("term", term))

	orcidID := f.SearchID(term)
	if orcidID == "" {
		return []*models.Paper{}, nil
	}
	log = log.With(zap.String("orcid", orcidID))

	var displayName string
	if raw := f.get(fmt.Sprintf("%s/%s/person", f.Config.OrcidBaseURL, orcidID)); raw != nil {
		var person Person
		if err := json.Unmarshal(raw, &person); err == nil {
			displayName = person.Name.DisplayName()
		}
	}

	raw := f.get(fmt.Sprintf("%s/%s/works", f.Config.OrcidBaseURL, orcidID))
	if raw == nil {
		return []*models.Paper{}, nil
	}
	var works Works
	if err := json.Unmarshal(raw, &works); err != nil {
		log.Warn("Fehler beim Parsen der Works-Sektion", zap.Error(err))
		return []*models.Paper{}, nil
	}

	papers := mapWorks(orcidID, displayName, &works)
	log.Info("Suche auf ORCID abgeschlossen", zap.Int("found_papers", len(papers)))
	return papers, nil
}

// mapWorks bildet Work-Summaries auf das Paper-Modell ab. Der Put-Code ist nur
// pro Profil eindeutig, daher wird die Source-ID als orcid/put-code gebildet.
func mapWorks(orcidID, displayName string, works *Works) []*models.Paper {
	papers := []*models.Paper{}
	for _, group := range works.Group {
		for i := range group.WorkSummary {
			s := &group.WorkSummary[i]

			title := s.Title.Text()
			if title == "" {
				title = "Unknown Title"
			}
			venue := s.JournalTitle.Text()
			if venue == "" {
				venue = "Unknown Venue"
			}
			year, ok, err := s.PublicationDate.YearInt()
			if !ok || err != nil {
				year = 0
			}
			authors := []string{}
			if displayName != "" {
				authors = append(authors, displayName)
			}

			papers = append(papers, &models.Paper{
				SourceID:   fmt.Sprintf("%s/%d", orcidID, s.PutCode),
				SourceName: "orcid",
				Title:      title,
				Authors:    authors,
				Year:       year,
				Venue:      venue,
				DOI:        s.DOI(),
			})
		}
	}
	return papers
}

// get führt einen GET mit identifizierendem Client-Header aus. Transport-
// Fehler und nicht-200-Antworten degradieren zu nil.
func (f *Fetcher) get(rawURL string) json.RawMessage {
	req, err := http.NewRequest(http.MethodGet, rawURL, nil)
	if err != nil {
		f.Logger.Error("Konnte ORCID-Request nicht bauen", zap.String("url", rawURL), zap.Error(err))
		return nil
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", f.Config.UserAgent())

	resp, err := httpClient.Do(req)
	if err != nil {
		f.Logger.Warn("ORCID-Anfrage fehlgeschlagen", zap.String("url", rawURL), zap.Error(err))
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		f.Logger.Warn("ORCID hat nicht-200-Status zurückgegeben",
			zap.String("url", rawURL), zap.Int("status", resp.StatusCode))
		return nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		f.Logger.Warn("Fehler beim Lesen der ORCID-Antwort", zap.String("url", rawURL), zap.Error(err))
		return nil
	}
	return body
}
