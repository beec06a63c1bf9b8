package repository

import (
	"context"
	"strings"
	"time"

	"github.com/gavinschriver/whereithurts-server/internal/models"

	"gorm.io/gorm"
)

// HealingFilter narrows and orders the healing list.
type HealingFilter struct {
	PatientID *uint
	HurtID    *uint
	Search    string
	OrderBy   string
	Direction string
}

// HealingRepository defines the interface for healing data operations.
type HealingRepository interface {
	Create(ctx context.Context, healing *models.Healing, treatmentIDs, hurtIDs []uint) error
	GetByID(ctx context.Context, id uint) (*models.Healing, error)
	List(ctx context.Context, filter HealingFilter) ([]*models.Healing, error)
	ListByPatient(ctx context.Context, patientID uint) ([]*models.Healing, error)
	ListByHurt(ctx context.Context, hurtID uint) ([]*models.Healing, error)
	ListRecentByPatient(ctx context.Context, patientID uint, since time.Time) ([]*models.Healing, error)
	Update(ctx context.Context, healing *models.Healing, treatmentIDs, hurtIDs []uint) error
	Delete(ctx context.Context, id uint) error
}

type healingRepository struct {
	db *gorm.DB
}

// NewHealingRepository creates a new healing repository.
func NewHealingRepository(db *gorm.DB) HealingRepository {
	return &healingRepository{db: db}
}

func (r *healingRepository) withAssociations(db *gorm.DB) *gorm.DB {
	return db.Preload("Patient.User")
}

// Create saves the healing and both bridge sets atomically. treatmentIDs and
// hurtIDs must already be resolved.
func (r *healingRepository) Create(ctx context.Context, healing *models.Healing, treatmentIDs, hurtIDs []uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(healing).Error; err != nil {
			return err
		}
		if err := syncBridgeRows(tx, "healing_treatments", "healing_id", "treatment_id", healing.ID, treatmentIDs); err != nil {
			return err
		}
		return syncBridgeRows(tx, "hurt_healings", "healing_id", "hurt_id", healing.ID, hurtIDs)
	})
}

func (r *healingRepository) GetByID(ctx context.Context, id uint) (*models.Healing, error) {
	var healing models.Healing
	if err := r.withAssociations(r.db.WithContext(ctx)).First(&healing, id).Error; err != nil {
		return nil, err
	}
	return &healing, nil
}

func (r *healingRepository) List(ctx context.Context, filter HealingFilter) ([]*models.Healing, error) {
	db := r.withAssociations(r.db.WithContext(ctx)).Model(&models.Healing{})

	if filter.PatientID != nil {
		db = db.Where("healings.patient_id = ?", *filter.PatientID)
	}
	if filter.HurtID != nil {
		db = db.Where("EXISTS (SELECT 1 FROM hurt_healings hh WHERE hh.healing_id = healings.id AND hh.hurt_id = ?)", *filter.HurtID)
	}
	if filter.Search != "" {
		db = db.Where("LOWER(healings.notes) LIKE ?", "%"+strings.ToLower(filter.Search)+"%")
	}

	dir := "DESC"
	if strings.EqualFold(filter.Direction, "asc") {
		dir = "ASC"
	}
	switch filter.OrderBy {
	case "duration":
		db = db.Order("healings.duration " + dir)
	case "intensity":
		db = db.Order("healings.intensity " + dir)
	default:
		db = db.Order("healings.added_on " + dir)
	}

	var healings []*models.Healing
	err := db.Find(&healings).Error
	return healings, err
}

func (r *healingRepository) ListByPatient(ctx context.Context, patientID uint) ([]*models.Healing, error) {
	var healings []*models.Healing
	err := r.withAssociations(r.db.WithContext(ctx)).
		Where("patient_id = ?", patientID).
		Order("added_on DESC").
		Find(&healings).Error
	return healings, err
}

func (r *healingRepository) ListByHurt(ctx context.Context, hurtID uint) ([]*models.Healing, error) {
	var healings []*models.Healing
	err := r.withAssociations(r.db.WithContext(ctx)).
		Where("EXISTS (SELECT 1 FROM hurt_healings hh WHERE hh.healing_id = healings.id AND hh.hurt_id = ?)", hurtID).
		Order("added_on DESC").
		Find(&healings).Error
	return healings, err
}

func (r *healingRepository) ListRecentByPatient(ctx context.Context, patientID uint, since time.Time) ([]*models.Healing, error) {
	var healings []*models.Healing
	err := r.withAssociations(r.db.WithContext(ctx)).
		Where("patient_id = ? AND added_on >= ?", patientID, since).
		Order("added_on DESC").
		Find(&healings).Error
	return healings, err
}

// Update saves the healing's mutable fields and reconciles both bridge sets
// atomically.
func (r *healingRepository) Update(ctx context.Context, healing *models.Healing, treatmentIDs, hurtIDs []uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		fields := map[string]interface{}{
			"notes":     healing.Notes,
			"duration":  healing.Duration,
			"intensity": healing.Intensity,
		}
		if err := tx.Model(&models.Healing{}).Where("id = ?", healing.ID).Updates(fields).Error; err != nil {
			return err
		}
		if err := syncBridgeRows(tx, "healing_treatments", "healing_id", "treatment_id", healing.ID, treatmentIDs); err != nil {
			return err
		}
		return syncBridgeRows(tx, "hurt_healings", "healing_id", "hurt_id", healing.ID, hurtIDs)
	})
}

// Delete removes the healing together with its bridge rows.
func (r *healingRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := deleteBridgeRows(tx, "healing_treatments", "healing_id", id); err != nil {
			return err
		}
		if err := deleteBridgeRows(tx, "hurt_healings", "healing_id", id); err != nil {
			return err
		}
		return tx.Delete(&models.Healing{}, id).Error
	})
}
