package repository

import (
	"context"
	"errors"

	"github.com/gavinschriver/whereithurts-server/internal/models"

	"gorm.io/gorm"
)

// UpdateRepository defines the interface for hurt update data operations.
type UpdateRepository interface {
	Create(ctx context.Context, update *models.Update) error
	GetByID(ctx context.Context, id uint) (*models.Update, error)
	ListByHurt(ctx context.Context, hurtID uint) ([]*models.Update, error)
	ListByPatient(ctx context.Context, patientID uint) ([]*models.Update, error)
	FirstForHurt(ctx context.Context, hurtID uint) (*models.Update, error)
	PreviousFor(ctx context.Context, update *models.Update) (*models.Update, error)
	Save(ctx context.Context, update *models.Update) error
	Delete(ctx context.Context, id uint) error
}

type updateRepository struct {
	db *gorm.DB
}

// NewUpdateRepository creates a new update repository.
func NewUpdateRepository(db *gorm.DB) UpdateRepository {
	return &updateRepository{db: db}
}

func (r *updateRepository) Create(ctx context.Context, update *models.Update) error {
	return r.db.WithContext(ctx).Create(update).Error
}

func (r *updateRepository) GetByID(ctx context.Context, id uint) (*models.Update, error) {
	var update models.Update
	if err := r.db.WithContext(ctx).Preload("Hurt.Patient.User").First(&update, id).Error; err != nil {
		return nil, err
	}
	return &update, nil
}

// ListByHurt returns every update for the hurt oldest first, so the founding
// update always leads.
func (r *updateRepository) ListByHurt(ctx context.Context, hurtID uint) ([]*models.Update, error) {
	var updates []*models.Update
	err := r.db.WithContext(ctx).
		Where("hurt_id = ?", hurtID).
		Order("added_on ASC, id ASC").
		Find(&updates).Error
	return updates, err
}

// ListByPatient returns the patient's follow-up updates newest first, leaving
// out each hurt's founding update.
func (r *updateRepository) ListByPatient(ctx context.Context, patientID uint) ([]*models.Update, error) {
	var updates []*models.Update
	err := r.db.WithContext(ctx).
		Preload("Hurt").
		Where("hurt_id IN (SELECT id FROM hurts WHERE patient_id = ?)", patientID).
		Where("id NOT IN (SELECT u.id FROM updates u WHERE u.id = (SELECT u2.id FROM updates u2 WHERE u2.hurt_id = u.hurt_id ORDER BY u2.added_on ASC, u2.id ASC LIMIT 1))").
		Order("added_on DESC, id DESC").
		Find(&updates).Error
	return updates, err
}

// FirstForHurt returns the hurt's founding update.
func (r *updateRepository) FirstForHurt(ctx context.Context, hurtID uint) (*models.Update, error) {
	var update models.Update
	err := r.db.WithContext(ctx).
		Where("hurt_id = ?", hurtID).
		Order("added_on ASC, id ASC").
		First(&update).Error
	if err != nil {
		return nil, err
	}
	return &update, nil
}

// PreviousFor returns the update immediately preceding the given one on the
// same hurt, or nil when it is the first.
func (r *updateRepository) PreviousFor(ctx context.Context, update *models.Update) (*models.Update, error) {
	var prev models.Update
	err := r.db.WithContext(ctx).
		Where("hurt_id = ? AND (added_on < ? OR (added_on = ? AND id < ?))",
			update.HurtID, update.AddedOn, update.AddedOn, update.ID).
		Order("added_on DESC, id DESC").
		First(&prev).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &prev, nil
}

func (r *updateRepository) Save(ctx context.Context, update *models.Update) error {
	fields := map[string]interface{}{
		"pain_level": update.PainLevel,
		"notes":      update.Notes,
	}
	return r.db.WithContext(ctx).Model(&models.Update{}).Where("id = ?", update.ID).Updates(fields).Error
}

func (r *updateRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Update{}, id).Error
}
