package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"scholar-sync/config"
	"scholar-sync/models"
	"scholar-sync/providers/orcid"
	"scholar-sync/storage"
)

// ErrProfileNotFound meldet, dass die ORCID-Suche keinen Treffer geliefert hat.
var ErrProfileNotFound = errors.New("orcid profile not found")

// ProfileSyncService bildet ein vollständiges ORCID-Profil auf das relationale
// Schema ab. Ein Sync ist auf Profil-Ebene alles-oder-nichts: eine Transaktion,
// voller Rollback bei Fehlern im Kernbereich. Einzelne Affiliations, Fundings,
// Peer Reviews, Ressourcen und Works laufen dagegen jeweils in einem eigenen
// Savepoint, damit ein kaputtes Einzel-Item nicht das ganze Profil kostet.
//
// Alle Kind-Mengen eines Profils werden bei jedem Sync vollständig ersetzt:
// erst Abräumen des Bestands (Kinder vor Eltern, das Schema kaskadiert nicht),
// dann Neu-Einfügen des aktuellen Abrufs. Der letzte Abruf gewinnt immer —
// liefert ein Endpunkt nichts, ist die zugehörige Menge danach leer.
type ProfileSyncService struct {
	Config   *config.Config
	DB       *gorm.DB
	S3Client *s3.Client
	Logger   *zap.Logger
	Client   *orcid.Fetcher
	Resolver *ReferenceResolver
	IDs      IDGenerator
}

// NewProfileSyncService erstellt eine neue Instanz des ProfileSyncService.
func NewProfileSyncService(cfg *config.Config, db *gorm.DB, s3Client *s3.Client, logger *zap.Logger, client *orcid.Fetcher, ids IDGenerator) *ProfileSyncService {
	return &ProfileSyncService{
		Config:   cfg,
		DB:       db,
		S3Client: s3Client,
		Logger:   logger,
		Client:   client,
		Resolver: NewReferenceResolver(ids, logger),
		IDs:      ids,
	}
}

// SyncByQuery löst eine Freitext-Suche zu einer ORCID iD auf und synchronisiert
// das gefundene Profil. Gibt die iD zurück, oder ErrProfileNotFound.
func (s *ProfileSyncService) SyncByQuery(ctx context.Context, query string) (string, int, error) {
	orcidID := s.Client.SearchID(query)
	if orcidID == "" {
		return "", 0, ErrProfileNotFound
	}
	s.Logger.Info("ORCID-Profil gefunden", zap.String("query", query), zap.String("orcid", orcidID))
	skipped, err := s.SyncProfile(ctx, orcidID)
	return orcidID, skipped, err
}

// SyncProfile holt das vollständige Profil, archiviert die Rohdaten und
// schreibt das Ergebnis in den Store.
func (s *ProfileSyncService) SyncProfile(ctx context.Context, orcidID string) (int, error) {
	profile := s.Client.FetchFullProfile(orcidID)
	s.archiveRaw(ctx, profile)
	return s.SaveFullProfile(profile)
}

// ResyncAll synchronisiert alle bereits gespeicherten Profile neu; gedacht für
// den Cron-Job. Fehler kosten nur das jeweilige Profil.
func (s *ProfileSyncService) ResyncAll(ctx context.Context) (int, error) {
	var orcids []string
	if err := s.DB.Model(&models.Profile{}).Pluck("orcid", &orcids).Error; err != nil {
		return 0, err
	}

	synced := 0
	for _, orcidID := range orcids {
		if err := ctx.Err(); err != nil {
			return synced, err
		}
		if _, err := s.SyncProfile(ctx, orcidID); err != nil {
			s.Logger.Error("Profil-Resync fehlgeschlagen", zap.String("orcid", orcidID), zap.Error(err))
			continue
		}
		synced++
	}
	s.Logger.Info("Profil-Resync abgeschlossen", zap.Int("synced", synced), zap.Int("total", len(orcids)))
	return synced, nil
}

// SaveFullProfile schreibt ein Profil in einer Transaktion. Rückgabewert ist
// die Anzahl übersprungener Einzel-Items.
func (s *ProfileSyncService) SaveFullProfile(p *orcid.FullProfile) (int, error) {
	log := s.Logger.With(zap.String("orcid", p.Orcid))
	log.Info("Speichere Profildaten.")
	ts := time.Now()

	skipped := 0
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		// Kernbereich: jeder Fehler hier ist fatal für den ganzen Sync.
		if err := s.saveCore(tx, p.Orcid, p.Person, ts); err != nil {
			return err
		}

		// Employments und Educations landen in derselben Tabelle.
		var affiliationGroups []orcid.AffiliationGroup
		if p.Employments != nil {
			affiliationGroups = append(affiliationGroups, p.Employments.AffiliationGroup...)
		}
		if p.Educations != nil {
			affiliationGroups = append(affiliationGroups, p.Educations.AffiliationGroup...)
		}

		n, err := s.saveAffiliations(tx, log, p.Orcid, affiliationGroups, ts)
		if err != nil {
			return err
		}
		skipped += n

		n, err = s.saveFundings(tx, log, p.Orcid, p.Fundings, ts)
		if err != nil {
			return err
		}
		skipped += n

		n, err = s.savePeerReviews(tx, log, p.Orcid, p.PeerReviews, ts)
		if err != nil {
			return err
		}
		skipped += n

		n, err = s.saveResearchResources(tx, log, p.Orcid, p.ResearchResources, ts)
		if err != nil {
			return err
		}
		skipped += n

		n, err = s.saveWorks(tx, log, p.Orcid, p.Works, ts)
		if err != nil {
			return err
		}
		skipped += n

		return nil
	})
	if err != nil {
		log.Error("Profil-Sync fehlgeschlagen, Transaktion zurückgerollt", zap.Error(err))
		return 0, err
	}

	log.Info("Profildaten erfolgreich committed.", zap.Int("skipped_items", skipped))
	return skipped, nil
}

// saveCore schreibt den Kernbereich (Profilzeile, Name, Biographie, E-Mails,
// Aliase, Links, Keywords, Adressen, External Identifiers). Fehlt die
// person-Sektion komplett, bleibt der Kernbereich unangetastet.
func (s *ProfileSyncService) saveCore(tx *gorm.DB, orcidID string, person *orcid.Person, ts time.Time) error {
	if person == nil {
		return nil
	}

	// Profilzeile: Upsert per Primärschlüssel, einziges UPDATE im System.
	profile := models.Profile{Orcid: orcidID, LastModified: ts}
	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "orcid"}},
		DoUpdates: clause.AssignmentColumns([]string{"last_modified"}),
	}).Create(&profile).Error; err != nil {
		return fmt.Errorf("profile upsert: %w", err)
	}

	if person.Name != nil {
		if err := tx.Where("orcid = ?", orcidID).Delete(&models.RecordName{}).Error; err != nil {
			return err
		}
		name := models.RecordName{
			ID:           s.IDs.NextID(),
			Orcid:        orcidID,
			GivenNames:   optText(person.Name.GivenNames),
			FamilyName:   optText(person.Name.FamilyName),
			CreditName:   optText(person.Name.CreditName),
			LastModified: ts,
		}
		if err := tx.Create(&name).Error; err != nil {
			return fmt.Errorf("record name: %w", err)
		}
	}

	if person.Biography != nil && person.Biography.Content != "" {
		if err := tx.Where("orcid = ?", orcidID).Delete(&models.Biography{}).Error; err != nil {
			return err
		}
		bio := models.Biography{
			ID:           s.IDs.NextID(),
			Orcid:        orcidID,
			Biography:    person.Biography.Content,
			LastModified: ts,
		}
		if err := tx.Create(&bio).Error; err != nil {
			return fmt.Errorf("biography: %w", err)
		}
	}

	if err := tx.Where("orcid = ?", orcidID).Delete(&models.Email{}).Error; err != nil {
		return err
	}
	if person.Emails != nil {
		for _, em := range person.Emails.Email {
			if em.Email == "" {
				continue
			}
			row := models.Email{EmailID: s.IDs.NextID(), Orcid: orcidID, Email: em.Email, LastModified: ts}
			if err := tx.Create(&row).Error; err != nil {
				return fmt.Errorf("email: %w", err)
			}
		}
	}

	if err := tx.Where("orcid = ?", orcidID).Delete(&models.OtherName{}).Error; err != nil {
		return err
	}
	if person.OtherNames != nil {
		for _, on := range person.OtherNames.OtherName {
			if on.Content == "" {
				continue
			}
			row := models.OtherName{OtherNameID: s.IDs.NextID(), Orcid: orcidID, DisplayName: on.Content, LastModified: ts}
			if err := tx.Create(&row).Error; err != nil {
				return fmt.Errorf("other name: %w", err)
			}
		}
	}

	if err := tx.Where("orcid = ?", orcidID).Delete(&models.ResearcherURL{}).Error; err != nil {
		return err
	}
	if person.ResearcherURLs != nil {
		for _, u := range person.ResearcherURLs.ResearcherURL {
			if u.URL == nil {
				continue
			}
			row := models.ResearcherURL{
				ID:           s.IDs.NextID(),
				Orcid:        orcidID,
				URL:          optText(u.URL),
				URLName:      u.URLName,
				LastModified: ts,
			}
			if err := tx.Create(&row).Error; err != nil {
				return fmt.Errorf("researcher url: %w", err)
			}
		}
	}

	if err := tx.Where("orcid = ?", orcidID).Delete(&models.ProfileKeyword{}).Error; err != nil {
		return err
	}
	if person.Keywords != nil {
		for _, kw := range person.Keywords.Keyword {
			if kw.Content == "" {
				continue
			}
			row := models.ProfileKeyword{ID: s.IDs.NextID(), Orcid: orcidID, KeywordsName: kw.Content, LastModified: ts}
			if err := tx.Create(&row).Error; err != nil {
				return fmt.Errorf("keyword: %w", err)
			}
		}
	}

	if err := tx.Where("orcid = ?", orcidID).Delete(&models.Address{}).Error; err != nil {
		return err
	}
	if person.Addresses != nil {
		for _, addr := range person.Addresses.Address {
			countryID := s.Resolver.CountryID(tx, optText(addr.Country))
			row := models.Address{ID: s.IDs.NextID(), Orcid: orcidID, CountryID: countryID, LastModified: ts}
			if err := tx.Create(&row).Error; err != nil {
				return fmt.Errorf("address: %w", err)
			}
		}
	}

	if err := tx.Where("orcid = ?", orcidID).Delete(&models.ProfileExternalIdentifier{}).Error; err != nil {
		return err
	}
	if person.ExternalIdentifiers != nil {
		for _, eid := range person.ExternalIdentifiers.ExternalIdentifier {
			row := models.ProfileExternalIdentifier{
				ID:                  s.IDs.NextID(),
				Orcid:               orcidID,
				ExternalIDReference: strPtrOrNil(eid.Value),
				ExternalIDURL:       optText(eid.URL),
				LastModified:        ts,
			}
			if err := tx.Create(&row).Error; err != nil {
				return fmt.Errorf("external identifier: %w", err)
			}
		}
	}

	return nil
}

// saveAffiliations ersetzt alle Anstellungen und Ausbildungen des Profils.
func (s *ProfileSyncService) saveAffiliations(tx *gorm.DB, log *zap.Logger, orcidID string, groups []orcid.AffiliationGroup, ts time.Time) (int, error) {
	var existingIDs []int64
	if err := tx.Model(&models.OrgAffiliationRelation{}).Where("orcid = ?", orcidID).Pluck("id", &existingIDs).Error; err != nil {
		return 0, err
	}
	if len(existingIDs) > 0 {
		if err := tx.Where("org_affilaition_relation_id IN ?", existingIDs).
			Delete(&models.OrgAffiliationRelationExternalIdentifier{}).Error; err != nil {
			return 0, err
		}
		if err := tx.Where("orcid = ?", orcidID).Delete(&models.OrgAffiliationRelation{}).Error; err != nil {
			return 0, err
		}
	}

	skipped := 0
	for _, group := range groups {
		for i := range group.Summaries {
			detail := group.Summaries[i].Detail()
			if detail == nil {
				continue
			}
			tx.SavePoint("aff_sp")
			if err := s.insertAffiliation(tx, orcidID, detail, ts); err != nil {
				log.Warn("Überspringe Affiliation", zap.Error(err))
				tx.RollbackTo("aff_sp")
				skipped++
			}
		}
	}
	return skipped, nil
}

func (s *ProfileSyncService) insertAffiliation(tx *gorm.DB, orcidID string, detail *orcid.AffiliationDetail, ts time.Time) error {
	orgID, err := s.Resolver.OrgID(tx, detail.Organization)
	if err != nil {
		return err
	}
	if orgID == nil {
		return errors.New("affiliation ohne auflösbare Organisation")
	}

	startYear, err := optYear(detail.StartDate)
	if err != nil {
		return err
	}
	endYear, err := optYear(detail.EndDate)
	if err != nil {
		return err
	}

	row := models.OrgAffiliationRelation{
		ID:           s.IDs.NextID(),
		Orcid:        orcidID,
		OrgID:        orgID,
		StartYear:    startYear,
		EndYear:      endYear,
		Title:        detail.RoleTitle,
		Department:   detail.DepartmentName,
		LastModified: ts,
	}
	return tx.Create(&row).Error
}

// saveFundings ersetzt alle Förderungen des Profils.
func (s *ProfileSyncService) saveFundings(tx *gorm.DB, log *zap.Logger, orcidID string, fundings *orcid.Fundings, ts time.Time) (int, error) {
	var existingIDs []int64
	if err := tx.Model(&models.ProfileFunding{}).Where("orcid = ?", orcidID).Pluck("id", &existingIDs).Error; err != nil {
		return 0, err
	}
	if len(existingIDs) > 0 {
		if err := tx.Where("profile_funding_id IN ?", existingIDs).
			Delete(&models.ProfileFundingContributor{}).Error; err != nil {
			return 0, err
		}
		if err := tx.Where("profile_funding_id IN ?", existingIDs).
			Delete(&models.ProfileFundingExternalIdentifier{}).Error; err != nil {
			return 0, err
		}
		if err := tx.Where("orcid = ?", orcidID).Delete(&models.ProfileFunding{}).Error; err != nil {
			return 0, err
		}
	}

	if fundings == nil {
		return 0, nil
	}

	skipped := 0
	for _, group := range fundings.Group {
		for i := range group.FundingSummary {
			summary := &group.FundingSummary[i]
			tx.SavePoint("fund_sp")
			if err := s.insertFunding(tx, orcidID, summary, ts); err != nil {
				log.Warn("Überspringe Funding", zap.Error(err))
				tx.RollbackTo("fund_sp")
				skipped++
			}
		}
	}
	return skipped, nil
}

func (s *ProfileSyncService) insertFunding(tx *gorm.DB, orcidID string, summary *orcid.FundingSummary, ts time.Time) error {
	startYear, err := optYear(summary.StartDate)
	if err != nil {
		return err
	}

	var amount *float64
	var currency *string
	if summary.Amount != nil {
		if summary.Amount.Value != "" {
			parsed, err := strconv.ParseFloat(summary.Amount.Value, 64)
			if err != nil {
				return fmt.Errorf("funding amount %q: %w", summary.Amount.Value, err)
			}
			amount = &parsed
		}
		currency = strPtrOrNil(summary.Amount.CurrencyCode)
	}

	orgID, err := s.Resolver.OrgID(tx, summary.Organization)
	if err != nil {
		return err
	}
	if orgID == nil {
		return errors.New("funding ohne auflösbare Organisation")
	}

	row := models.ProfileFunding{
		ID:            s.IDs.NextID(),
		Orcid:         orcidID,
		Title:         strPtrOrNil(summary.Title.Text()),
		Type:          summary.Type,
		StartYear:     startYear,
		NumericAmount: amount,
		CurrencyCode:  currency,
		OrgID:         orgID,
		LastModified:  ts,
	}
	return tx.Create(&row).Error
}

// savePeerReviews ersetzt alle Gutachter-Tätigkeiten des Profils.
func (s *ProfileSyncService) savePeerReviews(tx *gorm.DB, log *zap.Logger, orcidID string, reviews *orcid.PeerReviews, ts time.Time) (int, error) {
	var existingIDs []int64
	if err := tx.Model(&models.PeerReview{}).Where("orcid = ?", orcidID).Pluck("id", &existingIDs).Error; err != nil {
		return 0, err
	}
	if len(existingIDs) > 0 {
		if err := tx.Where("peer_review_id IN ?", existingIDs).
			Delete(&models.PeerReviewExternalIdentifier{}).Error; err != nil {
			return 0, err
		}
		if err := tx.Where("orcid = ?", orcidID).Delete(&models.PeerReview{}).Error; err != nil {
			return 0, err
		}
	}

	if reviews == nil {
		return 0, nil
	}

	skipped := 0
	for _, group := range reviews.Group {
		for i := range group.PeerReviewSummary {
			summary := &group.PeerReviewSummary[i]
			tx.SavePoint("peer_sp")
			if err := s.insertPeerReview(tx, orcidID, summary, ts); err != nil {
				log.Warn("Überspringe Peer Review", zap.Error(err))
				tx.RollbackTo("peer_sp")
				skipped++
			}
		}
	}
	return skipped, nil
}

func (s *ProfileSyncService) insertPeerReview(tx *gorm.DB, orcidID string, summary *orcid.PeerReviewSummary, ts time.Time) error {
	orgID, err := s.Resolver.OrgID(tx, summary.ConveningOrganization)
	if err != nil {
		return err
	}
	if orgID == nil {
		return errors.New("peer review ohne auflösbare Organisation")
	}

	row := models.PeerReview{
		ID:           s.IDs.NextID(),
		Orcid:        orcidID,
		OrgID:        orgID,
		SubjectName:  truncate(summary.ReviewGroupID, 1000),
		LastModified: ts,
	}
	return tx.Create(&row).Error
}

// saveResearchResources ersetzt alle Forschungsressourcen des Profils.
func (s *ProfileSyncService) saveResearchResources(tx *gorm.DB, log *zap.Logger, orcidID string, resources *orcid.ResearchResources, ts time.Time) (int, error) {
	var existingIDs []int64
	if err := tx.Model(&models.ResearchResource{}).Where("orcid = ?", orcidID).Pluck("id", &existingIDs).Error; err != nil {
		return 0, err
	}
	if len(existingIDs) > 0 {
		if err := tx.Where("research_resource_id IN ?", existingIDs).
			Delete(&models.ResearchResourceItem{}).Error; err != nil {
			return 0, err
		}
		if err := tx.Where("research_resource_id IN ?", existingIDs).
			Delete(&models.ResearchResourceExternalIdentifier{}).Error; err != nil {
			return 0, err
		}
		if err := tx.Where("orcid = ?", orcidID).Delete(&models.ResearchResource{}).Error; err != nil {
			return 0, err
		}
	}

	if resources == nil {
		return 0, nil
	}

	skipped := 0
	for _, group := range resources.Group {
		for i := range group.ResearchResourceSummary {
			summary := &group.ResearchResourceSummary[i]
			tx.SavePoint("res_sp")
			row := models.ResearchResource{
				ID:           s.IDs.NextID(),
				Orcid:        orcidID,
				Title:        strPtrOrNil(summary.Title.Text()),
				LastModified: ts,
			}
			if err := tx.Create(&row).Error; err != nil {
				log.Warn("Überspringe Research Resource", zap.Error(err))
				tx.RollbackTo("res_sp")
				skipped++
			}
		}
	}
	return skipped, nil
}

// saveWorks ersetzt alle Works des Profils. Der Put-Code der API wird bewusst
// nicht als Primärschlüssel übernommen (nur pro Profil eindeutig); jede Zeile
// bekommt eine frische 63-Bit-ID, externe Referenzen auf Work-IDs sind nach
// jedem Sync ungültig.
func (s *ProfileSyncService) saveWorks(tx *gorm.DB, log *zap.Logger, orcidID string, works *orcid.Works, ts time.Time) (int, error) {
	var existingIDs []int64
	if err := tx.Model(&models.Work{}).Where("orcid = ?", orcidID).Pluck("work_id", &existingIDs).Error; err != nil {
		return 0, err
	}
	if len(existingIDs) > 0 {
		if err := tx.Where("work_id IN ?", existingIDs).Delete(&models.WorkExternalIdentifier{}).Error; err != nil {
			return 0, err
		}
		if err := tx.Where("work_id IN ?", existingIDs).Delete(&models.WorkContributor{}).Error; err != nil {
			return 0, err
		}
		if err := tx.Where("orcid = ?", orcidID).Delete(&models.Work{}).Error; err != nil {
			return 0, err
		}
	}

	if works == nil {
		return 0, nil
	}

	skipped := 0
	for _, group := range works.Group {
		for i := range group.WorkSummary {
			summary := &group.WorkSummary[i]
			tx.SavePoint("work_sp")
			if err := s.insertWork(tx, orcidID, summary, ts); err != nil {
				log.Warn("Überspringe Work", zap.Int64("put_code", summary.PutCode), zap.Error(err))
				tx.RollbackTo("work_sp")
				skipped++
			}
		}
	}
	return skipped, nil
}

func (s *ProfileSyncService) insertWork(tx *gorm.DB, orcidID string, summary *orcid.WorkSummary, ts time.Time) error {
	workID := s.IDs.NextID()

	row := models.Work{
		WorkID:       workID,
		Orcid:        orcidID,
		Title:        strPtrOrNil(summary.Title.Text()),
		JournalTitle: optText(summary.JournalTitle),
		WorkTypeID:   s.Resolver.WorkTypeID(tx, summary.Type),
		LastModified: ts,
	}
	if err := tx.Create(&row).Error; err != nil {
		return err
	}

	if summary.ExternalIDs == nil {
		return nil
	}
	for _, eid := range summary.ExternalIDs.ExternalID {
		relName := eid.Relationship
		if relName == "" {
			relName = "self"
		}
		child := models.WorkExternalIdentifier{
			WorkID:         workID,
			Type:           strPtrOrNil(eid.Type),
			Value:          strPtrOrNil(eid.Value),
			URL:            optText(eid.URL),
			RelationshipID: s.Resolver.RelationshipID(tx, relName),
		}
		if err := tx.Create(&child).Error; err != nil {
			return err
		}
	}
	return nil
}

// archiveRaw legt die unveränderten API-Antworten im S3-Archiv ab, sofern
// konfiguriert. Archiv-Fehler sind nie fatal.
func (s *ProfileSyncService) archiveRaw(ctx context.Context, profile *orcid.FullProfile) {
	if s.S3Client == nil || !s.Config.ArchiveEnabled() {
		return
	}
	doc, err := profile.RawDocument()
	if err != nil {
		s.Logger.Warn("Konnte Archiv-Dokument nicht bauen", zap.String("orcid", profile.Orcid), zap.Error(err))
		return
	}
	key := fmt.Sprintf("orcid/%s/%s.json", profile.Orcid, time.Now().UTC().Format("2006-01-02T15-04-05Z"))
	if _, err := storage.UploadObject(ctx, s.S3Client, s.Config.StratoS3Bucket, key, doc); err != nil {
		s.Logger.Warn("Rohdaten-Archivierung fehlgeschlagen", zap.String("key", key), zap.Error(err))
		return
	}
	s.Logger.Info("Rohdaten archiviert", zap.String("key", key))
}

// optText liefert einen Pointer auf den Wrapper-Inhalt, nil bei leerem Knoten.
func optText(v *orcid.Value) *string {
	if v == nil || v.Value == "" {
		return nil
	}
	return &v.Value
}

func strPtrOrNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// optYear extrahiert ein optionales Jahr; ein nicht-numerischer Wert ist ein
// Koerzierungsfehler und damit ein Item-Fehler.
func optYear(d *orcid.FuzzyDate) (*int, error) {
	year, ok, err := d.YearInt()
	if err != nil {
		return nil, fmt.Errorf("jahr nicht numerisch: %w", err)
	}
	if !ok {
		return nil, nil
	}
	return &year, nil
}

// truncate kürzt auf maximal n Runen (Store-Limit der subject_name-Spalte).
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
