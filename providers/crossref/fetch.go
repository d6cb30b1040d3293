package crossref

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

// Fetcher implementiert das Provider-Interface für die Crossref REST API.
type Fetcher struct {
	Config *config.Config
	Logger *zap.Logger
}

// NewFetcher erstellt einen neuen Crossref-Fetcher.
func NewFetcher(cfg *config.Config, logger *zap.Logger) *Fetcher {
	return &Fetcher{Config: cfg, Logger: logger}
}

// Name gibt den Namen des Providers zurück.
func (f *Fetcher) Name() string {
	return "crossref"
}

// Search führt die Suche auf Crossref aus. Transport- oder Parse-Fehler
// degradieren zu einer leeren Ergebnisliste.
func (f *Fetcher) Search(term string) ([]*models.Paper, error) {
	log := f.Logger.With(zap.String("term", term))
	log.Info("Starte Suche auf Crossref.")

	searchURL := fmt.Sprintf("%s/works?query=%s&rows=%d&filter=%s",
		f.Config.CrossrefBaseURL,
		url.QueryEscape(term),
		f.Config.SearchRows,
		url.QueryEscape("type:journal-article,type:proceedings-article"))
	log.Debug("Rufe Crossref API auf", zap.String("url", searchURL))

	req, err := http.NewRequest(http.MethodGet, searchURL, nil)
	if err != nil {
		log.Error("Konnte Crossref-Request nicht bauen", zap.Error(err))
		return []*models.Paper{}, nil
	}
	// Crossref "Polite Pool": Client identifiziert sich per User-Agent.
	req.Header.Set("User-Agent", f.Config.UserAgent())

	resp, err := httpClient.Do(req)
	if err != nil {
		log.Warn("Crossref-Anfrage fehlgeschlagen", zap.Error(err))
		return []*models.Paper{}, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Warn("Crossref hat nicht-200-Status zurückgegeben", zap.Int("status", resp.StatusCode))
		return []*models.Paper{}, nil
	}

	var worksResp WorksResponse
	if err := json.NewDecoder(resp.Body).Decode(&worksResp); err != nil {
		log.Warn("Fehler beim Parsen der Crossref-Antwort", zap.Error(err))
		return []*models.Paper{}, nil
	}

	papers := mapItems(worksResp.Message.Items)
	log.Info("Suche auf Crossref abgeschlossen", zap.Int("found_papers", len(papers)))
	return papers, nil
}

// mapItems konvertiert Crossref-Items in unser internes Paper-Modell.
// Fehlende Felder degradieren zu Defaults, niemals zu einem Fehler.
func mapItems(items []Item) []*models.Paper {
	papers := make([]*models.Paper, 0, len(items))
	for i := range items {
		item := &items[i]
		papers = append(papers, &models.Paper{
			SourceID:   item.DOI, // Crossref nutzt die DOI als primäre ID
			SourceName: "crossref",
			Title:      item.BestTitle(),
			Authors:    item.AuthorNames(),
			Year:       item.BestYear(),
			Venue:      item.BestVenue(),
			DOI:        item.DOI,
		})
	}
	return papers
}
