package models

// Bridge rows are pure many-to-many associations with no identity beyond the
// pair. Deleting either side removes the row.

// HurtTreatment associates a Hurt with a Treatment.
type HurtTreatment struct {
	ID          uint `gorm:"primaryKey" json:"id"`
	HurtID      uint `gorm:"not null;uniqueIndex:idx_hurt_treatment" json:"hurt_id"`
	TreatmentID uint `gorm:"not null;uniqueIndex:idx_hurt_treatment" json:"treatment_id"`
}

// HealingTreatment associates a Healing with a Treatment.
type HealingTreatment struct {
	ID          uint `gorm:"primaryKey" json:"id"`
	HealingID   uint `gorm:"not null;uniqueIndex:idx_healing_treatment" json:"healing_id"`
	TreatmentID uint `gorm:"not null;uniqueIndex:idx_healing_treatment" json:"treatment_id"`
}

// HurtHealing associates a Hurt with a Healing.
type HurtHealing struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	HurtID    uint `gorm:"not null;uniqueIndex:idx_hurt_healing" json:"hurt_id"`
	HealingID uint `gorm:"not null;uniqueIndex:idx_hurt_healing" json:"healing_id"`
}
