package models

import (
	"time"
)

// Update is a timestamped pain-level/notes check-in against a Hurt. The
// earliest update for a hurt (id as tiebreak) is its founding update and
// cannot be deleted on its own.
type Update struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	HurtID    uint      `gorm:"not null;index" json:"hurt_id"`
	Hurt      *Hurt     `gorm:"foreignKey:HurtID;constraint:OnDelete:CASCADE" json:"-"`
	AddedOn   time.Time `json:"added_on"`
	PainLevel int       `gorm:"not null" json:"pain_level"`
	Notes     string    `gorm:"size:300" json:"notes"`
}
