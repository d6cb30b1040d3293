package services

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"scholar-sync/config"
	"scholar-sync/models"
	"scholar-sync/providers"
)

// IngestService orchestriert den Paper-Ingest: Suche bei den aktivierten
// Providern, dann zeilenweiser Insert mit Natural-Key-Dedup.
type IngestService struct {
	Config    *config.Config
	DB        *gorm.DB
	Logger    *zap.Logger
	Providers []providers.Provider
}

// NewIngestService erstellt eine neue Instanz des IngestService.
func NewIngestService(cfg *config.Config, db *gorm.DB, logger *zap.Logger, provs []providers.Provider) *IngestService {
	return &IngestService{Config: cfg, DB: db, Logger: logger, Providers: provs}
}

// Run führt die Suche für alle angeforderten Quellen sequenziell aus und
// speichert die Treffer. Eine leere Quellen-Liste bedeutet: alle Provider.
// Provider-Fehler kosten nur die jeweilige Quelle; Store-Fehler beenden den Run.
func (s *IngestService) Run(ctx context.Context, query string, sources []string) (int, int, error) {
	log := s.Logger.With(zap.String("query", query))
	log.Info("Starte Paper-Ingest.")

	wanted := map[string]bool{}
	for _, src := range sources {
		wanted[src] = true
	}

	totalSaved, totalSkipped := 0, 0
	for _, provider := range s.Providers {
		if len(wanted) > 0 && !wanted[provider.Name()] {
			continue
		}
		if err := ctx.Err(); err != nil {
			return totalSaved, totalSkipped, err
		}

		papers, err := provider.Search(query)
		if err != nil {
			log.Error("Provider-Suche fehlgeschlagen", zap.String("provider", provider.Name()), zap.Error(err))
			continue
		}
		log.Info("Provider hat Ergebnisse geliefert",
			zap.String("provider", provider.Name()), zap.Int("count", len(papers)))

		saved, skipped, err := s.SavePapers(papers)
		if err != nil {
			return totalSaved, totalSkipped, err
		}
		totalSaved += saved
		totalSkipped += skipped
	}

	log.Info("Paper-Ingest abgeschlossen",
		zap.Int("saved", totalSaved), zap.Int("skipped_duplicates", totalSkipped))
	return totalSaved, totalSkipped, nil
}

// SavePapers speichert Paper zeilenweise. Eine Natural-Key-Kollision
// (source_id, source_name) zählt still als übersprungenes Duplikat; bestehende
// Zeilen werden nie aktualisiert.
func (s *IngestService) SavePapers(papers []*models.Paper) (int, int, error) {
	saved, skipped := 0, 0
	for _, paper := range papers {
		res := s.DB.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "source_id"}, {Name: "source_name"}},
			DoNothing: true,
		}).Create(paper)
		if res.Error != nil {
			return saved, skipped, res.Error
		}
		if res.RowsAffected == 0 {
			skipped++
		} else {
			saved++
		}
	}
	s.Logger.Info("Paper gespeichert", zap.Int("new", saved), zap.Int("skipped_duplicates", skipped))
	return saved, skipped, nil
}
