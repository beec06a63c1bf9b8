package repository

import (
	"context"
	"strings"
	"time"

	"github.com/gavinschriver/whereithurts-server/internal/models"

	"gorm.io/gorm"
)

// hurtDetailSelect materializes the derived hurt fields from its updates in a
// single query. The founding update is the earliest by added_on, id as
// tiebreak.
const hurtDetailSelect = "hurts.*, " +
	"(SELECT u.notes FROM updates u WHERE u.hurt_id = hurts.id ORDER BY u.added_on ASC, u.id ASC LIMIT 1) AS notes, " +
	"(SELECT u.pain_level FROM updates u WHERE u.hurt_id = hurts.id ORDER BY u.added_on ASC, u.id ASC LIMIT 1) AS pain_level, " +
	"(SELECT u.id FROM updates u WHERE u.hurt_id = hurts.id ORDER BY u.added_on ASC, u.id ASC LIMIT 1) AS first_update_id, " +
	"(SELECT u.added_on FROM updates u WHERE u.hurt_id = hurts.id ORDER BY u.added_on DESC, u.id DESC LIMIT 1) AS last_update_on"

// HurtFilter narrows and orders the hurt list. Pagination happens in memory
// afterwards so counts cover the whole filtered collection.
type HurtFilter struct {
	PatientID  *uint
	BodypartID *uint
	ActiveOnly bool
	Search     string
	OrderBy    string
	Direction  string
}

// HurtRepository defines the interface for hurt data operations.
type HurtRepository interface {
	Create(ctx context.Context, hurt *models.Hurt, firstUpdate *models.Update, treatmentIDs []uint) error
	GetByID(ctx context.Context, id uint) (*models.Hurt, error)
	List(ctx context.Context, filter HurtFilter) ([]*models.Hurt, error)
	ListByPatient(ctx context.Context, patientID uint) ([]*models.Hurt, error)
	ListByHealing(ctx context.Context, healingID uint) ([]*models.Hurt, error)
	ListByTreatment(ctx context.Context, treatmentID uint) ([]*models.Hurt, error)
	ListRecentByPatient(ctx context.Context, patientID uint, since time.Time) ([]*models.Hurt, error)
	Update(ctx context.Context, hurt *models.Hurt, firstUpdate *models.Update, treatmentIDs []uint) error
	Delete(ctx context.Context, id uint) error
	ResolveMany(ctx context.Context, ids []uint) ([]*models.Hurt, error)
}

type hurtRepository struct {
	db *gorm.DB
}

// NewHurtRepository creates a new hurt repository.
func NewHurtRepository(db *gorm.DB) HurtRepository {
	return &hurtRepository{db: db}
}

// applyHurtDetails adds subqueries computing the derived fields in a single
// query.
func (r *hurtRepository) applyHurtDetails(db *gorm.DB) *gorm.DB {
	return db.Model(&models.Hurt{}).Select(hurtDetailSelect).Preload("Bodypart").Preload("Patient.User")
}

// Create saves the hurt, its founding update and its treatment bridge rows
// atomically. treatmentIDs must already be resolved.
func (r *hurtRepository) Create(ctx context.Context, hurt *models.Hurt, firstUpdate *models.Update, treatmentIDs []uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(hurt).Error; err != nil {
			return err
		}
		firstUpdate.HurtID = hurt.ID
		if err := tx.Create(firstUpdate).Error; err != nil {
			return err
		}
		return syncBridgeRows(tx, "hurt_treatments", "hurt_id", "treatment_id", hurt.ID, treatmentIDs)
	})
}

func (r *hurtRepository) GetByID(ctx context.Context, id uint) (*models.Hurt, error) {
	var hurt models.Hurt
	if err := r.applyHurtDetails(r.db.WithContext(ctx)).First(&hurt, id).Error; err != nil {
		return nil, err
	}
	return &hurt, nil
}

func (r *hurtRepository) List(ctx context.Context, filter HurtFilter) ([]*models.Hurt, error) {
	db := r.applyHurtDetails(r.db.WithContext(ctx))

	if filter.PatientID != nil {
		db = db.Where("hurts.patient_id = ?", *filter.PatientID)
	}
	if filter.BodypartID != nil {
		db = db.Where("hurts.bodypart_id = ?", *filter.BodypartID)
	}
	if filter.ActiveOnly {
		db = db.Where("hurts.is_active = ?", true)
	}
	if filter.Search != "" {
		like := "%" + strings.ToLower(filter.Search) + "%"
		db = db.Where(
			"LOWER(hurts.name) LIKE ? OR "+
				"LOWER((SELECT u.notes FROM updates u WHERE u.hurt_id = hurts.id ORDER BY u.added_on ASC, u.id ASC LIMIT 1)) LIKE ? OR "+
				"LOWER((SELECT b.name FROM bodyparts b WHERE b.id = hurts.bodypart_id)) LIKE ?",
			like, like, like,
		)
	}

	var hurts []*models.Hurt
	err := r.applyHurtSort(db, filter.OrderBy, filter.Direction).Find(&hurts).Error
	return hurts, err
}

// applyHurtSort orders by a whitelisted column. recently_updated is the
// virtual field backed by the last_update_on select alias.
func (r *hurtRepository) applyHurtSort(db *gorm.DB, orderBy, direction string) *gorm.DB {
	dir := "DESC"
	if strings.EqualFold(direction, "asc") {
		dir = "ASC"
	}
	switch orderBy {
	case "name":
		return db.Order("hurts.name " + dir)
	case "pain_level":
		return db.Order("pain_level " + dir)
	case "recently_updated":
		return db.Order("last_update_on " + dir)
	default: // "added_on" and anything unrecognized
		return db.Order("hurts.added_on " + dir)
	}
}

func (r *hurtRepository) ListByPatient(ctx context.Context, patientID uint) ([]*models.Hurt, error) {
	var hurts []*models.Hurt
	err := r.applyHurtDetails(r.db.WithContext(ctx)).
		Where("hurts.patient_id = ?", patientID).
		Order("hurts.added_on DESC").
		Find(&hurts).Error
	return hurts, err
}

func (r *hurtRepository) ListByHealing(ctx context.Context, healingID uint) ([]*models.Hurt, error) {
	var hurts []*models.Hurt
	err := r.applyHurtDetails(r.db.WithContext(ctx)).
		Where("EXISTS (SELECT 1 FROM hurt_healings hh WHERE hh.hurt_id = hurts.id AND hh.healing_id = ?)", healingID).
		Order("hurts.added_on DESC").
		Find(&hurts).Error
	return hurts, err
}

func (r *hurtRepository) ListByTreatment(ctx context.Context, treatmentID uint) ([]*models.Hurt, error) {
	var hurts []*models.Hurt
	err := r.applyHurtDetails(r.db.WithContext(ctx)).
		Where("EXISTS (SELECT 1 FROM hurt_treatments ht WHERE ht.hurt_id = hurts.id AND ht.treatment_id = ?)", treatmentID).
		Order("hurts.added_on DESC").
		Find(&hurts).Error
	return hurts, err
}

func (r *hurtRepository) ListRecentByPatient(ctx context.Context, patientID uint, since time.Time) ([]*models.Hurt, error) {
	var hurts []*models.Hurt
	err := r.applyHurtDetails(r.db.WithContext(ctx)).
		Where("hurts.patient_id = ? AND hurts.added_on >= ?", patientID, since).
		Order("hurts.added_on DESC").
		Find(&hurts).Error
	return hurts, err
}

// Update saves the hurt's mutable fields, rewrites the founding update's
// pain_level/notes and reconciles the treatment bridge rows, all atomically.
func (r *hurtRepository) Update(ctx context.Context, hurt *models.Hurt, firstUpdate *models.Update, treatmentIDs []uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		fields := map[string]interface{}{
			"name":        hurt.Name,
			"is_active":   hurt.IsActive,
			"bodypart_id": hurt.BodypartID,
		}
		if err := tx.Model(&models.Hurt{}).Where("id = ?", hurt.ID).Updates(fields).Error; err != nil {
			return err
		}
		if firstUpdate != nil {
			updateFields := map[string]interface{}{
				"pain_level": firstUpdate.PainLevel,
				"notes":      firstUpdate.Notes,
			}
			if err := tx.Model(&models.Update{}).Where("id = ?", firstUpdate.ID).Updates(updateFields).Error; err != nil {
				return err
			}
		}
		return syncBridgeRows(tx, "hurt_treatments", "hurt_id", "treatment_id", hurt.ID, treatmentIDs)
	})
}

// Delete removes the hurt together with its updates and bridge rows.
func (r *hurtRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := deleteBridgeRows(tx, "hurt_treatments", "hurt_id", id); err != nil {
			return err
		}
		if err := deleteBridgeRows(tx, "hurt_healings", "hurt_id", id); err != nil {
			return err
		}
		if err := tx.Where("hurt_id = ?", id).Delete(&models.Update{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Hurt{}, id).Error
	})
}

func (r *hurtRepository) ResolveMany(ctx context.Context, ids []uint) ([]*models.Hurt, error) {
	return resolveMany[models.Hurt](ctx, r.db, ids, "hurt")
}
