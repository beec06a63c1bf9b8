package models

import (
	"time"
)

// Hurt is a tracked injury or condition belonging to a patient. Every Hurt
// has at least one Update: the founding one created together with it.
type Hurt struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	PatientID  uint      `gorm:"not null;index" json:"patient_id"`
	Patient    Patient   `gorm:"foreignKey:PatientID" json:"-"`
	BodypartID uint      `gorm:"not null" json:"bodypart_id"`
	Bodypart   Bodypart  `gorm:"foreignKey:BodypartID" json:"bodypart"`
	Name       string    `gorm:"size:100;not null" json:"name"`
	AddedOn    time.Time `json:"added_on"`
	IsActive   bool      `json:"is_active"`

	// Derived from the hurt's updates at query time
	// (see repository.applyHurtDetails); never stored.
	Notes         string     `gorm:"->;-:migration" json:"notes"`
	PainLevel     int        `gorm:"->;-:migration" json:"pain_level"`
	FirstUpdateID uint       `gorm:"->;-:migration" json:"first_update_id"`
	LastUpdateOn  *time.Time `gorm:"->;-:migration" json:"last_update_on,omitempty"`
}
