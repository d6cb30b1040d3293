package dblp

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"scholar-sync/config"
	"scholar-sync/models"
)

var httpClient = &http.Client{Timeout: 60 * time.Second}

// Fetcher implementiert das Provider-Interface für die DBLP-Such-API.
type Fetcher struct {
	Config *config.Config
	Logger *zap.Logger
}

// NewFetcher erstellt einen neuen DBLP-Fetcher.
func NewFetcher(cfg *config.Config, logger *zap.Logger) *Fetcher {
	return &Fetcher{Config: cfg, Logger: logger}
}

// Name gibt den Namen des Providers zurück.
func (f *Fetcher) Name() string {
	return "dblp"
}

// Search führt die Suche auf DBLP aus. Transport- oder Parse-Fehler
// degradieren zu einer leeren Ergebnisliste.
func (f *Fetcher) Search(term string) ([]*models.Paper, error) {
	log := f.Logger.With(zap.String("term", term))
	log.Info("Starte Suche auf DBLP.")

	// Der .json-Endpunkt ist stabiler als der generische mit format-Parameter.
	searchURL := fmt.Sprintf("%s/search/publ/api.json?q=%s&h=%d",
		f.Config.DBLPBaseURL, url.QueryEscape(term), f.Config.SearchRows)
	log.Debug("Rufe DBLP API auf", zap.String("url", searchURL))

	req, err := http.NewRequest(http.MethodGet, searchURL, nil)
	if err != nil {
		log.Error("Konnte DBLP-Request nicht bauen", zap.Error(err))
		return []*models.Paper{}, nil
	}
	// Ohne identifizierenden User-Agent blockt DBLP anonyme Clients.
	req.Header.Set("User-Agent", f.Config.UserAgent())

	resp, err := httpClient.Do(req)
	if err != nil {
		log.Warn("DBLP-Anfrage fehlgeschlagen", zap.Error(err))
		return []*models.Paper{}, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Warn("DBLP hat nicht-200-Status zurückgegeben", zap.Int("status", resp.StatusCode))
		return []*models.Paper{}, nil
	}

	var searchResp SearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
		log.Warn("Fehler beim Parsen der DBLP-Antwort", zap.Error(err))
		return []*models.Paper{}, nil
	}

	hits := searchResp.Result.Hits.Hit
	if len(hits) == 0 {
		log.Info("Keine Treffer auf DBLP gefunden.")
		return []*models.Paper{}, nil
	}

	papers := mapHits(hits)
	log.Info("Suche auf DBLP abgeschlossen", zap.Int("found_papers", len(papers)))
	return papers, nil
}

// mapHits konvertiert DBLP-Treffer in unser internes Paper-Modell.
func mapHits(hits []Hit) []*models.Paper {
	papers := make([]*models.Paper, 0, len(hits))
	for i := range hits {
		hit := &hits[i]
		papers = append(papers, &models.Paper{
			SourceID:   hit.ID, // DBLP-Key des Eintrags
			SourceName: "dblp",
			Title:      hit.Info.CleanTitle(),
			Authors:    hit.Info.Authors.Names(),
			Year:       hit.Info.YearInt(),
			Venue:      hit.Info.BestVenue(),
			DOI:        hit.Info.DOI,
		})
	}
	return papers
}
