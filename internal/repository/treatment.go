package repository

import (
	"context"
	"strings"

	"github.com/gavinschriver/whereithurts-server/internal/models"

	"gorm.io/gorm"
)

// treatmentDetailSelect counts the healings linked to each treatment in the
// same query.
const treatmentDetailSelect = "treatments.*, " +
	"(SELECT COUNT(*) FROM healing_treatments ht WHERE ht.treatment_id = treatments.id) AS healing_count"

// TreatmentFilter narrows and orders the treatment list. Visibility is not a
// filter; every treatment query is scoped to rows the viewer may see.
type TreatmentFilter struct {
	PatientID       *uint
	HurtID          *uint
	BodypartID      *uint
	TreatmentTypeID *uint
	Search          string
	OrderBy         string
	Direction       string
}

// TreatmentRepository defines the interface for treatment data operations.
type TreatmentRepository interface {
	Create(ctx context.Context, treatment *models.Treatment, hurtIDs []uint) error
	GetByID(ctx context.Context, viewerID, id uint) (*models.Treatment, error)
	List(ctx context.Context, viewerID uint, filter TreatmentFilter) ([]*models.Treatment, error)
	ListByHurt(ctx context.Context, viewerID, hurtID uint) ([]*models.Treatment, error)
	ListByHealing(ctx context.Context, viewerID, healingID uint) ([]*models.Treatment, error)
	ListLinkedToHealings(ctx context.Context, viewerID uint, healingIDs []uint) ([]*models.Treatment, error)
	Update(ctx context.Context, treatment *models.Treatment, hurtIDs []uint) error
	Delete(ctx context.Context, id uint) error
	TagHurt(ctx context.Context, treatmentID, hurtID uint) error
	UntagHurt(ctx context.Context, treatmentID, hurtID uint) error
	ResolveMany(ctx context.Context, ids []uint) ([]*models.Treatment, error)
}

type treatmentRepository struct {
	db *gorm.DB
}

// NewTreatmentRepository creates a new treatment repository.
func NewTreatmentRepository(db *gorm.DB) TreatmentRepository {
	return &treatmentRepository{db: db}
}

// visibleTo scopes the query to treatments the viewer owns plus public ones.
func (r *treatmentRepository) visibleTo(db *gorm.DB, viewerID uint) *gorm.DB {
	return db.Model(&models.Treatment{}).
		Select(treatmentDetailSelect).
		Where("treatments.added_by_id = ? OR treatments.public = ?", viewerID, true).
		Preload("Bodypart").
		Preload("Treatmenttype").
		Preload("Links").
		Preload("AddedBy.User")
}

// Create saves the treatment, its links and its hurt bridge rows atomically.
// hurtIDs must already be resolved.
func (r *treatmentRepository) Create(ctx context.Context, treatment *models.Treatment, hurtIDs []uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(treatment).Error; err != nil {
			return err
		}
		return syncBridgeRows(tx, "hurt_treatments", "treatment_id", "hurt_id", treatment.ID, hurtIDs)
	})
}

func (r *treatmentRepository) GetByID(ctx context.Context, viewerID, id uint) (*models.Treatment, error) {
	var treatment models.Treatment
	if err := r.visibleTo(r.db.WithContext(ctx), viewerID).First(&treatment, id).Error; err != nil {
		return nil, err
	}
	return &treatment, nil
}

func (r *treatmentRepository) List(ctx context.Context, viewerID uint, filter TreatmentFilter) ([]*models.Treatment, error) {
	db := r.visibleTo(r.db.WithContext(ctx), viewerID)

	if filter.PatientID != nil {
		db = db.Where("treatments.added_by_id = ?", *filter.PatientID)
	}
	if filter.HurtID != nil {
		db = db.Where("EXISTS (SELECT 1 FROM hurt_treatments ht WHERE ht.treatment_id = treatments.id AND ht.hurt_id = ?)", *filter.HurtID)
	}
	if filter.BodypartID != nil {
		db = db.Where("treatments.bodypart_id = ?", *filter.BodypartID)
	}
	if filter.TreatmentTypeID != nil {
		db = db.Where("treatments.treatmenttype_id = ?", *filter.TreatmentTypeID)
	}
	if filter.Search != "" {
		like := "%" + strings.ToLower(filter.Search) + "%"
		db = db.Where("LOWER(treatments.name) LIKE ? OR LOWER(treatments.notes) LIKE ?", like, like)
	}

	dir := "DESC"
	if strings.EqualFold(filter.Direction, "asc") {
		dir = "ASC"
	}
	switch filter.OrderBy {
	case "name":
		db = db.Order("treatments.name " + dir)
	case "healing_count":
		db = db.Order("healing_count " + dir)
	default:
		db = db.Order("treatments.added_on " + dir)
	}

	var treatments []*models.Treatment
	err := db.Find(&treatments).Error
	return treatments, err
}

func (r *treatmentRepository) ListByHurt(ctx context.Context, viewerID, hurtID uint) ([]*models.Treatment, error) {
	var treatments []*models.Treatment
	err := r.visibleTo(r.db.WithContext(ctx), viewerID).
		Where("EXISTS (SELECT 1 FROM hurt_treatments ht WHERE ht.treatment_id = treatments.id AND ht.hurt_id = ?)", hurtID).
		Order("treatments.added_on DESC").
		Find(&treatments).Error
	return treatments, err
}

func (r *treatmentRepository) ListByHealing(ctx context.Context, viewerID, healingID uint) ([]*models.Treatment, error) {
	var treatments []*models.Treatment
	err := r.visibleTo(r.db.WithContext(ctx), viewerID).
		Where("EXISTS (SELECT 1 FROM healing_treatments ht WHERE ht.treatment_id = treatments.id AND ht.healing_id = ?)", healingID).
		Order("treatments.added_on DESC").
		Find(&treatments).Error
	return treatments, err
}

// ListLinkedToHealings returns the distinct visible treatments tied to any of
// the given healings.
func (r *treatmentRepository) ListLinkedToHealings(ctx context.Context, viewerID uint, healingIDs []uint) ([]*models.Treatment, error) {
	if len(healingIDs) == 0 {
		return []*models.Treatment{}, nil
	}
	var treatments []*models.Treatment
	err := r.visibleTo(r.db.WithContext(ctx), viewerID).
		Where("EXISTS (SELECT 1 FROM healing_treatments ht WHERE ht.treatment_id = treatments.id AND ht.healing_id IN ?)", healingIDs).
		Order("treatments.added_on DESC").
		Find(&treatments).Error
	return treatments, err
}

// Update saves the treatment's mutable fields, replaces its links wholesale
// and reconciles its hurt bridge rows, all atomically.
func (r *treatmentRepository) Update(ctx context.Context, treatment *models.Treatment, hurtIDs []uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		fields := map[string]interface{}{
			"name":             treatment.Name,
			"notes":            treatment.Notes,
			"public":           treatment.Public,
			"bodypart_id":      treatment.BodypartID,
			"treatmenttype_id": treatment.TreatmenttypeID,
		}
		if err := tx.Model(&models.Treatment{}).Where("id = ?", treatment.ID).Updates(fields).Error; err != nil {
			return err
		}
		if err := tx.Where("treatment_id = ?", treatment.ID).Delete(&models.TreatmentLink{}).Error; err != nil {
			return err
		}
		for i := range treatment.Links {
			treatment.Links[i].ID = 0
			treatment.Links[i].TreatmentID = treatment.ID
			if err := tx.Create(&treatment.Links[i]).Error; err != nil {
				return err
			}
		}
		return syncBridgeRows(tx, "hurt_treatments", "treatment_id", "hurt_id", treatment.ID, hurtIDs)
	})
}

// Delete removes the treatment together with its links and bridge rows.
func (r *treatmentRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := deleteBridgeRows(tx, "hurt_treatments", "treatment_id", id); err != nil {
			return err
		}
		if err := deleteBridgeRows(tx, "healing_treatments", "treatment_id", id); err != nil {
			return err
		}
		if err := tx.Where("treatment_id = ?", id).Delete(&models.TreatmentLink{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Treatment{}, id).Error
	})
}

// TagHurt links the treatment to the hurt; tagging twice is a no-op.
func (r *treatmentRepository) TagHurt(ctx context.Context, treatmentID, hurtID uint) error {
	db := r.db.WithContext(ctx)
	var count int64
	err := db.Model(&models.HurtTreatment{}).
		Where("treatment_id = ? AND hurt_id = ?", treatmentID, hurtID).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	return db.Create(&models.HurtTreatment{TreatmentID: treatmentID, HurtID: hurtID}).Error
}

// UntagHurt unlinks the treatment from the hurt; untagging an absent link is
// a no-op.
func (r *treatmentRepository) UntagHurt(ctx context.Context, treatmentID, hurtID uint) error {
	return r.db.WithContext(ctx).
		Where("treatment_id = ? AND hurt_id = ?", treatmentID, hurtID).
		Delete(&models.HurtTreatment{}).Error
}

func (r *treatmentRepository) ResolveMany(ctx context.Context, ids []uint) ([]*models.Treatment, error) {
	return resolveMany[models.Treatment](ctx, r.db, ids, "treatment")
}
