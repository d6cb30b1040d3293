package services

import (
	"strings"
	"testing"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"scholar-sync/config"
	"scholar-sync/models"
	"scholar-sync/providers/orcid"
)

func newSyncService(db *gorm.DB) *ProfileSyncService {
	ids := &seqIDGenerator{}
	return &ProfileSyncService{
		Config:   &config.Config{},
		DB:       db,
		Logger:   zap.NewNop(),
		Resolver: NewReferenceResolver(ids, zap.NewNop()),
		IDs:      ids,
	}
}

func val(s string) *orcid.Value { return &orcid.Value{Value: s} }

func title(s string) *orcid.TitleWrap { return &orcid.TitleWrap{Title: val(s)} }

func namedOrg(name string) *orcid.Organization { return &orcid.Organization{Name: name} }

func workSummary(putCode int64, workTitle string) orcid.WorkSummary {
	return orcid.WorkSummary{
		PutCode: putCode,
		Title:   title(workTitle),
		Type:    strPtr("journal-article"),
		ExternalIDs: &orcid.ExternalIDs{ExternalID: []orcid.ExternalID{
			{Type: "doi", Value: "10.1000/" + workTitle, Relationship: "self"},
		}},
	}
}

func worksOf(summaries ...orcid.WorkSummary) *orcid.Works {
	return &orcid.Works{Group: []orcid.WorkGroup{{WorkSummary: summaries}}}
}

func TestSaveFullProfileCoreSections(t *testing.T) {
	db := newTestDB(t)
	svc := newSyncService(db)

	profile := &orcid.FullProfile{
		Orcid: "0000-0001-0000-0001",
		Person: &orcid.Person{
			Name:      &orcid.Name{GivenNames: val("Ada"), FamilyName: val("Lovelace")},
			Biography: &orcid.Biography{Content: "Mathematician."},
			Emails: &orcid.Emails{Email: []struct {
				Email string `json:"email"`
			}{{Email: "ada@example.org"}, {Email: "a.lovelace@example.org"}}},
			Keywords: &orcid.Keywords{Keyword: []struct {
				Content string `json:"content"`
			}{{Content: "computing"}}},
			Addresses: &orcid.Addresses{Address: []struct {
				Country *orcid.Value `json:"country"`
			}{{Country: val("GB")}}},
		},
	}

	skipped, err := svc.SaveFullProfile(profile)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if skipped != 0 {
		t.Fatalf("skipped=%d, want 0", skipped)
	}

	counts := map[string]interface{}{
		"profile":   &models.Profile{},
		"name":      &models.RecordName{},
		"biography": &models.Biography{},
		"keyword":   &models.ProfileKeyword{},
		"address":   &models.Address{},
	}
	for label, model := range counts {
		var n int64
		db.Model(model).Count(&n)
		if n != 1 {
			t.Errorf("%s rows = %d, want 1", label, n)
		}
	}

	var emails int64
	db.Model(&models.Email{}).Count(&emails)
	if emails != 2 {
		t.Errorf("email rows = %d, want 2", emails)
	}

	// Die Adresse muss auf die Country-Dimension aufgelöst sein.
	var addr models.Address
	if err := db.First(&addr).Error; err != nil || addr.CountryID == nil {
		t.Fatalf("address country not resolved: %+v err=%v", addr, err)
	}
}

func TestSaveFullProfileSkipsCoreWhenPersonMissing(t *testing.T) {
	db := newTestDB(t)
	svc := newSyncService(db)

	profile := &orcid.FullProfile{
		Orcid: "0000-0001-0000-0002",
		Works: worksOf(workSummary(1, "a")),
	}
	if _, err := svc.SaveFullProfile(profile); err != nil {
		t.Fatalf("save: %v", err)
	}

	var profiles, works int64
	db.Model(&models.Profile{}).Count(&profiles)
	db.Model(&models.Work{}).Count(&works)
	if profiles != 0 {
		t.Errorf("profile rows = %d, want 0 (no person section)", profiles)
	}
	if works != 1 {
		t.Errorf("work rows = %d, want 1", works)
	}
}

func TestSaveFullProfileReplacesWorks(t *testing.T) {
	db := newTestDB(t)
	svc := newSyncService(db)
	person := &orcid.Person{Name: &orcid.Name{CreditName: val("Ada Lovelace")}}

	first := &orcid.FullProfile{
		Orcid:  "0000-0001-0000-0003",
		Person: person,
		Works:  worksOf(workSummary(1, "a"), workSummary(2, "b")),
	}
	if _, err := svc.SaveFullProfile(first); err != nil {
		t.Fatalf("first sync: %v", err)
	}

	var works, eids int64
	db.Model(&models.Work{}).Count(&works)
	db.Model(&models.WorkExternalIdentifier{}).Count(&eids)
	if works != 2 || eids != 2 {
		t.Fatalf("after first sync: works=%d eids=%d, want 2/2", works, eids)
	}

	// Zweiter Sync mit geschrumpfter Works-Liste: der letzte Abruf gewinnt.
	second := &orcid.FullProfile{
		Orcid:  "0000-0001-0000-0003",
		Person: person,
		Works:  worksOf(workSummary(1, "a")),
	}
	if _, err := svc.SaveFullProfile(second); err != nil {
		t.Fatalf("second sync: %v", err)
	}

	db.Model(&models.Work{}).Count(&works)
	db.Model(&models.WorkExternalIdentifier{}).Count(&eids)
	if works != 1 || eids != 1 {
		t.Fatalf("after second sync: works=%d eids=%d, want 1/1", works, eids)
	}

	var profiles int64
	db.Model(&models.Profile{}).Count(&profiles)
	if profiles != 1 {
		t.Fatalf("profile rows = %d, want 1 (upsert)", profiles)
	}
}

func TestSaveFullProfileSkipsMalformedItems(t *testing.T) {
	db := newTestDB(t)
	svc := newSyncService(db)

	profile := &orcid.FullProfile{
		Orcid:  "0000-0001-0000-0004",
		Person: &orcid.Person{Name: &orcid.Name{CreditName: val("Ada Lovelace")}},
		Employments: &orcid.Affiliations{AffiliationGroup: []orcid.AffiliationGroup{{
			Summaries: []orcid.AffiliationSummary{
				// Organisation ohne Namen ist nicht auflösbar.
				{EmploymentSummary: &orcid.AffiliationDetail{Organization: &orcid.Organization{}}},
				{EmploymentSummary: &orcid.AffiliationDetail{
					Organization: namedOrg("University of London"),
					RoleTitle:    strPtr("Lecturer"),
				}},
			},
		}}},
		Fundings: &orcid.Fundings{Group: []orcid.FundingGroup{{FundingSummary: []orcid.FundingSummary{{
			Title:        title("Engine Grant"),
			Organization: namedOrg("Royal Society"),
			Amount:       &orcid.Amount{Value: "10000.50", CurrencyCode: "GBP"},
		}}}}},
	}

	skipped, err := svc.SaveFullProfile(profile)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if skipped != 1 {
		t.Fatalf("skipped=%d, want 1 (the unnamed org)", skipped)
	}

	var affiliations, fundings int64
	db.Model(&models.OrgAffiliationRelation{}).Count(&affiliations)
	db.Model(&models.ProfileFunding{}).Count(&fundings)
	if affiliations != 1 {
		t.Errorf("affiliation rows = %d, want 1", affiliations)
	}
	if fundings != 1 {
		t.Errorf("funding rows = %d, want 1", fundings)
	}

	var funding models.ProfileFunding
	if err := db.First(&funding).Error; err != nil {
		t.Fatalf("load funding: %v", err)
	}
	if funding.NumericAmount == nil || *funding.NumericAmount != 10000.50 {
		t.Errorf("amount = %v, want 10000.50", funding.NumericAmount)
	}
}

func TestSaveFullProfileSkipsNonNumericYear(t *testing.T) {
	db := newTestDB(t)
	svc := newSyncService(db)

	profile := &orcid.FullProfile{
		Orcid:  "0000-0001-0000-0005",
		Person: &orcid.Person{Name: &orcid.Name{CreditName: val("Ada Lovelace")}},
		Employments: &orcid.Affiliations{AffiliationGroup: []orcid.AffiliationGroup{{
			Summaries: []orcid.AffiliationSummary{{EmploymentSummary: &orcid.AffiliationDetail{
				Organization: namedOrg("University of London"),
				StartDate:    &orcid.FuzzyDate{Year: val("n.d.")},
			}}},
		}}},
	}

	skipped, err := svc.SaveFullProfile(profile)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if skipped != 1 {
		t.Fatalf("skipped=%d, want 1", skipped)
	}

	var affiliations int64
	db.Model(&models.OrgAffiliationRelation{}).Count(&affiliations)
	if affiliations != 0 {
		t.Fatalf("affiliation rows = %d, want 0", affiliations)
	}
}

func TestSaveFullProfileTruncatesPeerReviewSubject(t *testing.T) {
	db := newTestDB(t)
	svc := newSyncService(db)

	profile := &orcid.FullProfile{
		Orcid:  "0000-0001-0000-0006",
		Person: &orcid.Person{Name: &orcid.Name{CreditName: val("Ada Lovelace")}},
		PeerReviews: &orcid.PeerReviews{Group: []orcid.PeerReviewGroup{{
			PeerReviewSummary: []orcid.PeerReviewSummary{{
				ConveningOrganization: namedOrg("Royal Society"),
				ReviewGroupID:         strings.Repeat("x", 1500),
			}},
		}}},
	}
	if _, err := svc.SaveFullProfile(profile); err != nil {
		t.Fatalf("save: %v", err)
	}

	var review models.PeerReview
	if err := db.First(&review).Error; err != nil {
		t.Fatalf("load review: %v", err)
	}
	if len(review.SubjectName) != 1000 {
		t.Fatalf("subject length = %d, want 1000", len(review.SubjectName))
	}
}

func TestSaveFullProfileRollsBackOnCoreFailure(t *testing.T) {
	db := newTestDB(t)
	svc := newSyncService(db)
	person := &orcid.Person{Name: &orcid.Name{CreditName: val("Ada Lovelace")}}

	first := &orcid.FullProfile{
		Orcid:  "0000-0001-0000-0007",
		Person: person,
		Works:  worksOf(workSummary(1, "a")),
	}
	if _, err := svc.SaveFullProfile(first); err != nil {
		t.Fatalf("first sync: %v", err)
	}

	// Kernbereich kaputt machen: ohne record_name-Tabelle ist der zweite Sync
	// ein Fatal und muss vollständig zurückgerollt werden.
	if err := db.Migrator().DropTable(&models.RecordName{}); err != nil {
		t.Fatalf("drop table: %v", err)
	}

	second := &orcid.FullProfile{
		Orcid:  "0000-0001-0000-0007",
		Person: person,
		Works:  worksOf(workSummary(1, "a"), workSummary(2, "b")),
	}
	if _, err := svc.SaveFullProfile(second); err == nil {
		t.Fatal("expected error from broken core section")
	}

	// Der Bestand des ersten Syncs bleibt unangetastet.
	var works int64
	db.Model(&models.Work{}).Count(&works)
	if works != 1 {
		t.Fatalf("work rows = %d, want 1 from the first sync", works)
	}
}
