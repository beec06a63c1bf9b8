package repository

import (
	"context"
	"errors"

	"github.com/gavinschriver/whereithurts-server/internal/models"

	"gorm.io/gorm"
)

// PatientRepository defines the interface for patient and account data
// operations.
type PatientRepository interface {
	Register(ctx context.Context, user *models.User) (*models.Patient, error)
	GetByID(ctx context.Context, id uint) (*models.Patient, error)
	GetByUserID(ctx context.Context, userID uint) (*models.Patient, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	AccountExists(ctx context.Context, username, email string) (bool, error)
}

type patientRepository struct {
	db *gorm.DB
}

// NewPatientRepository creates a new patient repository.
func NewPatientRepository(db *gorm.DB) PatientRepository {
	return &patientRepository{db: db}
}

// Register creates the account and its patient together; they are 1:1 for the
// lifetime of the system.
func (r *patientRepository) Register(ctx context.Context, user *models.User) (*models.Patient, error) {
	patient := &models.Patient{}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		patient.UserID = user.ID
		return tx.Create(patient).Error
	})
	if err != nil {
		return nil, err
	}
	patient.User = *user
	return patient, nil
}

func (r *patientRepository) GetByID(ctx context.Context, id uint) (*models.Patient, error) {
	var patient models.Patient
	if err := r.db.WithContext(ctx).Preload("User").First(&patient, id).Error; err != nil {
		return nil, err
	}
	return &patient, nil
}

func (r *patientRepository) GetByUserID(ctx context.Context, userID uint) (*models.Patient, error) {
	var patient models.Patient
	if err := r.db.WithContext(ctx).Preload("User").Where("user_id = ?", userID).First(&patient).Error; err != nil {
		return nil, err
	}
	return &patient, nil
}

// GetUserByUsername returns nil without error when no such account exists.
func (r *patientRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *patientRepository) AccountExists(ctx context.Context, username, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("username = ? OR email = ?", username, email).
		Count(&count).Error
	return count > 0, err
}
