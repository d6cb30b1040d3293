package services

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"scholar-sync/config"
	"scholar-sync/models"
	"scholar-sync/providers"
)

// stubProvider liefert eine feste Trefferliste oder einen Fehler.
type stubProvider struct {
	name   string
	papers []*models.Paper
	err    error
}

func (p *stubProvider) Name() string { return p.name }

func (p *stubProvider) Search(term string) ([]*models.Paper, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.papers, nil
}

func samplePaper(sourceID, sourceName string) *models.Paper {
	return &models.Paper{
		SourceID:   sourceID,
		SourceName: sourceName,
		Title:      "A Study of Things",
		Authors:    []string{"Ada Lovelace"},
		Year:       2021,
		Venue:      "ICML",
	}
}

func TestSavePapersSkipsNaturalKeyDuplicates(t *testing.T) {
	db := newTestDB(t)
	svc := NewIngestService(&config.Config{}, db, zap.NewNop(), nil)

	saved, skipped, err := svc.SavePapers([]*models.Paper{
		samplePaper("10.1000/a", "crossref"),
		samplePaper("10.1000/b", "crossref"),
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if saved != 2 || skipped != 0 {
		t.Fatalf("first save: saved=%d skipped=%d", saved, skipped)
	}

	// Erneuter Ingest derselben Quelle: alles Duplikate, keine Updates.
	saved, skipped, err = svc.SavePapers([]*models.Paper{
		samplePaper("10.1000/a", "crossref"),
		samplePaper("10.1000/b", "crossref"),
	})
	if err != nil {
		t.Fatalf("re-save: %v", err)
	}
	if saved != 0 || skipped != 2 {
		t.Fatalf("re-save: saved=%d skipped=%d", saved, skipped)
	}

	var count int64
	db.Model(&models.Paper{}).Count(&count)
	if count != 2 {
		t.Fatalf("expected 2 paper rows, got %d", count)
	}
}

func TestSavePapersSameIDFromDifferentSources(t *testing.T) {
	db := newTestDB(t)
	svc := NewIngestService(&config.Config{}, db, zap.NewNop(), nil)

	saved, skipped, err := svc.SavePapers([]*models.Paper{
		samplePaper("10.1000/a", "crossref"),
		samplePaper("10.1000/a", "dblp"),
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if saved != 2 || skipped != 0 {
		t.Fatalf("saved=%d skipped=%d, want both rows", saved, skipped)
	}
}

func TestRunContinuesAfterProviderError(t *testing.T) {
	db := newTestDB(t)
	provs := []providers.Provider{
		&stubProvider{name: "crossref", err: errors.New("upstream down")},
		&stubProvider{name: "dblp", papers: []*models.Paper{samplePaper("conf/x/1", "dblp")}},
	}
	svc := NewIngestService(&config.Config{}, db, zap.NewNop(), provs)

	saved, skipped, err := svc.Run(context.Background(), "lovelace", nil)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if saved != 1 || skipped != 0 {
		t.Fatalf("saved=%d skipped=%d, want 1/0", saved, skipped)
	}
}

func TestRunFiltersRequestedSources(t *testing.T) {
	db := newTestDB(t)
	provs := []providers.Provider{
		&stubProvider{name: "crossref", papers: []*models.Paper{samplePaper("10.1000/a", "crossref")}},
		&stubProvider{name: "dblp", papers: []*models.Paper{samplePaper("conf/x/1", "dblp")}},
	}
	svc := NewIngestService(&config.Config{}, db, zap.NewNop(), provs)

	saved, _, err := svc.Run(context.Background(), "lovelace", []string{"dblp"})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if saved != 1 {
		t.Fatalf("saved=%d, want only the dblp hit", saved)
	}

	var count int64
	db.Model(&models.Paper{}).Where("source_name = ?", "crossref").Count(&count)
	if count != 0 {
		t.Fatalf("crossref must not have been queried, got %d rows", count)
	}
}
