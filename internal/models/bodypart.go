package models

// Bodypart is an admin-defined reference entity used to tag Hurts and
// Treatments.
type Bodypart struct {
	ID             uint   `gorm:"primaryKey" json:"id"`
	Name           string `gorm:"size:50;not null" json:"name"`
	HurtImage      string `json:"hurt_image"`
	TreatmentImage string `json:"treatment_image"`
}

// TreatmentType is an admin-defined reference entity used to tag Treatments.
type TreatmentType struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:50;not null" json:"name"`
}
