package services

import (
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"scholar-sync/models"
	"scholar-sync/providers/orcid"
)

// ReferenceResolver löst geteilte Dimensionszeilen (Organisation, Land,
// Work-Typ, Relationship) per Natural Key auf und legt sie beim ersten
// Auftreten an. Dimensionszeilen wachsen nur; Updates und Deletes gibt es
// nicht. Alle Methoden arbeiten auf der Transaktion des Aufrufers.
//
// Der Insert läuft in einem Savepoint: schlägt er fehl (typisch: eine
// parallele Synchronisation hat denselben Natural Key gerade angelegt), wird
// nur der Savepoint zurückgerollt und per Natural Key nachgeschlagen statt
// den Fehler zu propagieren.
type ReferenceResolver struct {
	IDs    IDGenerator
	Logger *zap.Logger
}

// NewReferenceResolver erstellt einen neuen Resolver.
func NewReferenceResolver(ids IDGenerator, logger *zap.Logger) *ReferenceResolver {
	return &ReferenceResolver{IDs: ids, Logger: logger}
}

// OrgID löst eine Organisations-Referenz auf. Natural Key ist (name, city),
// wobei eine Zeile ohne city jede Stadt matcht — bewusst so belassen, siehe
// DESIGN.md. Ohne Namen gibt es keine Organisation (nil, nil).
func (r *ReferenceResolver) OrgID(tx *gorm.DB, org *orcid.Organization) (*int64, error) {
	if org == nil || org.Name == "" {
		return nil, nil
	}

	var city, region, country *string
	if org.Address != nil {
		city = org.Address.City
		region = org.Address.Region
		country = org.Address.Country
	}
	countryID := r.CountryID(tx, country)

	var existing models.Org
	err := tx.Where("name = ? AND (city = ? OR city IS NULL)", org.Name, city).First(&existing).Error
	if err == nil {
		return &existing.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	newOrg := models.Org{
		ID:          r.IDs.NextID(),
		Name:        org.Name,
		City:        city,
		Region:      region,
		CountryID:   countryID,
		DateCreated: time.Now(),
	}
	tx.SavePoint("org_insert")
	if createErr := tx.Create(&newOrg).Error; createErr != nil {
		tx.RollbackTo("org_insert")
		// Vermutlich hat ein paralleler Sync dieselbe Organisation angelegt.
		if err := tx.Where("name = ? AND (city = ? OR city IS NULL)", org.Name, city).First(&existing).Error; err == nil {
			return &existing.ID, nil
		}
		return nil, createErr
	}
	return &newOrg.ID, nil
}

// CountryID löst einen ISO-2-Ländercode auf. Fehler werden verschluckt und
// geloggt; das Land ist überall optional.
func (r *ReferenceResolver) CountryID(tx *gorm.DB, iso2 *string) *int64 {
	if iso2 == nil || *iso2 == "" {
		return nil
	}

	var existing models.Country
	if err := tx.Where("iso2_code = ?", *iso2).First(&existing).Error; err == nil {
		return &existing.ID
	}

	created := models.Country{ISO2Code: *iso2}
	tx.SavePoint("country_insert")
	if err := tx.Create(&created).Error; err != nil {
		tx.RollbackTo("country_insert")
		if err := tx.Where("iso2_code = ?", *iso2).First(&existing).Error; err == nil {
			return &existing.ID
		}
		r.Logger.Warn("Konnte Country-Dimension nicht auflösen", zap.String("iso2", *iso2), zap.Error(err))
		return nil
	}
	return &created.ID
}

// WorkTypeID löst ein Publikationstyp-Label auf.
func (r *ReferenceResolver) WorkTypeID(tx *gorm.DB, workType *string) *int64 {
	if workType == nil || *workType == "" {
		return nil
	}

	var existing models.WorkType
	if err := tx.Where("work_type = ?", *workType).First(&existing).Error; err == nil {
		return &existing.ID
	}

	created := models.WorkType{WorkType: *workType}
	tx.SavePoint("work_type_insert")
	if err := tx.Create(&created).Error; err != nil {
		tx.RollbackTo("work_type_insert")
		if err := tx.Where("work_type = ?", *workType).First(&existing).Error; err == nil {
			return &existing.ID
		}
		r.Logger.Warn("Konnte WorkType-Dimension nicht auflösen", zap.String("work_type", *workType), zap.Error(err))
		return nil
	}
	return &created.ID
}

// RelationshipID löst ein Relationship-Label auf. Gespeichert und
// nachgeschlagen wird der 63-Bit-Hash des Labels, nicht der Text selbst
// (siehe StringToBigint).
func (r *ReferenceResolver) RelationshipID(tx *gorm.DB, relName string) *int64 {
	if relName == "" {
		return nil
	}
	hashed := StringToBigint(relName)

	var existing models.ExternalIDRelationship
	if err := tx.Where("relationship = ?", hashed).First(&existing).Error; err == nil {
		return &existing.ID
	}

	created := models.ExternalIDRelationship{Relationship: hashed}
	tx.SavePoint("rel_insert")
	if err := tx.Create(&created).Error; err != nil {
		tx.RollbackTo("rel_insert")
		if err := tx.Where("relationship = ?", hashed).First(&existing).Error; err == nil {
			return &existing.ID
		}
		r.Logger.Warn("Konnte Relationship-Dimension nicht auflösen", zap.String("relationship", relName), zap.Error(err))
		return nil
	}
	return &created.ID
}
