package models

import (
	"fmt"
	"time"
)

// Healing is a recovery session with a duration in seconds and an intensity
// between 0 and 100.
type Healing struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PatientID uint      `gorm:"not null;index" json:"patient_id"`
	Patient   Patient   `gorm:"foreignKey:PatientID" json:"-"`
	Notes     string    `gorm:"size:300" json:"notes"`
	Duration  int       `gorm:"not null" json:"duration"`
	Intensity int       `gorm:"default:0" json:"intensity"`
	AddedOn   time.Time `json:"added_on"`
}

// IntensityScore rounds the intensity to the nearest 10. It is derived, never
// stored.
func (h *Healing) IntensityScore() int {
	return (h.Intensity + 5) / 10 * 10
}

// Validate checks field-level constraints before a save.
func (h *Healing) Validate() error {
	if h.Intensity < 0 || h.Intensity > 100 {
		return fmt.Errorf("intensity must be between 0 and 100, got %d", h.Intensity)
	}
	if h.Duration < 0 {
		return fmt.Errorf("duration must not be negative, got %d", h.Duration)
	}
	return nil
}
