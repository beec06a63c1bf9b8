package repository

import (
	"context"
	"errors"

	"github.com/gavinschriver/whereithurts-server/internal/models"

	"gorm.io/gorm"
)

// ReferenceRepository serves the admin-defined lookup entities.
type ReferenceRepository interface {
	ListBodyparts(ctx context.Context) ([]*models.Bodypart, error)
	ListTreatmentTypes(ctx context.Context) ([]*models.TreatmentType, error)
	GetBodypart(ctx context.Context, id uint) (*models.Bodypart, error)
	GetTreatmentType(ctx context.Context, id uint) (*models.TreatmentType, error)
}

type referenceRepository struct {
	db *gorm.DB
}

// NewReferenceRepository creates a new reference repository.
func NewReferenceRepository(db *gorm.DB) ReferenceRepository {
	return &referenceRepository{db: db}
}

func (r *referenceRepository) ListBodyparts(ctx context.Context) ([]*models.Bodypart, error) {
	var bodyparts []*models.Bodypart
	err := r.db.WithContext(ctx).Order("name ASC").Find(&bodyparts).Error
	return bodyparts, err
}

func (r *referenceRepository) ListTreatmentTypes(ctx context.Context) ([]*models.TreatmentType, error) {
	var types []*models.TreatmentType
	err := r.db.WithContext(ctx).Order("name ASC").Find(&types).Error
	return types, err
}

// GetBodypart reports a miss as a reference error so handlers can reject the
// submitted id with 422.
func (r *referenceRepository) GetBodypart(ctx context.Context, id uint) (*models.Bodypart, error) {
	var bodypart models.Bodypart
	err := r.db.WithContext(ctx).First(&bodypart, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NewMissingReferenceError("bodypart")
	}
	if err != nil {
		return nil, err
	}
	return &bodypart, nil
}

func (r *referenceRepository) GetTreatmentType(ctx context.Context, id uint) (*models.TreatmentType, error) {
	var treatmentType models.TreatmentType
	err := r.db.WithContext(ctx).First(&treatmentType, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NewMissingReferenceError("treatmenttype")
	}
	if err != nil {
		return nil, err
	}
	return &treatmentType, nil
}
