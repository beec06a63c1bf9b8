package models

import (
	"time"
)

// Treatment is an activity or remedy a patient logs, optionally shared with
// everyone via the public flag.
type Treatment struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	AddedByID       uint            `gorm:"not null;index" json:"added_by_id"`
	AddedBy         Patient         `gorm:"foreignKey:AddedByID" json:"-"`
	BodypartID      uint            `gorm:"not null" json:"bodypart_id"`
	Bodypart        Bodypart        `gorm:"foreignKey:BodypartID" json:"bodypart"`
	TreatmenttypeID uint            `gorm:"not null" json:"treatmenttype_id"`
	Treatmenttype   TreatmentType   `gorm:"foreignKey:TreatmenttypeID" json:"treatmenttype"`
	Name            string          `gorm:"size:75;not null" json:"name"`
	AddedOn         time.Time       `json:"added_on"`
	Notes           string          `gorm:"size:400" json:"notes"`
	Public          bool            `gorm:"default:false" json:"public"`
	Links           []TreatmentLink `gorm:"foreignKey:TreatmentID" json:"links"`

	// HealingCount is not persisted; computed at query time.
	HealingCount int `gorm:"->;-:migration" json:"healing_count"`
}

// TreatmentLink is a titled URL attached to a Treatment. Links are replaced
// wholesale whenever their treatment is updated.
type TreatmentLink struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	TreatmentID uint   `gorm:"not null;index" json:"treatment_id"`
	LinkText    string `gorm:"size:75;column:linktext" json:"linktext"`
	LinkURL     string `gorm:"size:150;column:linkurl" json:"linkurl"`
}
