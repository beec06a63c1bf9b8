// Package serializer builds the JSON view models returned by the API. Views
// carry request-scoped annotations (the owner flag, derived labels) that never
// live on the stored entities.
package serializer

import (
	"time"

	"github.com/gavinschriver/whereithurts-server/internal/authz"
	"github.com/gavinschriver/whereithurts-server/internal/models"
)

// DateAddedLayout renders timestamps as M/DD/YYYY with no zero-padded month.
const DateAddedLayout = "1/02/2006"

// DateAdded formats a timestamp for the date_added field.
func DateAdded(t time.Time) string {
	return t.Format(DateAddedLayout)
}

// PatientRef is the embedded patient reference on owned resources.
type PatientRef struct {
	ID       uint   `json:"id"`
	FullName string `json:"full_name"`
}

// NewPatientRef requires the patient's User to be preloaded.
func NewPatientRef(p *models.Patient) PatientRef {
	return PatientRef{ID: p.ID, FullName: p.FullName()}
}

// BodypartView mirrors the Bodypart lookup row.
type BodypartView struct {
	ID             uint   `json:"id"`
	Name           string `json:"name"`
	HurtImage      string `json:"hurt_image"`
	TreatmentImage string `json:"treatment_image"`
}

func NewBodypartView(b *models.Bodypart) BodypartView {
	return BodypartView{ID: b.ID, Name: b.Name, HurtImage: b.HurtImage, TreatmentImage: b.TreatmentImage}
}

// TreatmentTypeView mirrors the TreatmentType lookup row.
type TreatmentTypeView struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

func NewTreatmentTypeView(t *models.TreatmentType) TreatmentTypeView {
	return TreatmentTypeView{ID: t.ID, Name: t.Name}
}

// Difference labels for an update measured against the previous one on the
// same hurt.
const (
	DifferenceUp       = "Up"
	DifferenceDown     = "Down"
	DifferenceNoChange = "No change"
)

// DifferenceLabel compares an update's pain level with its predecessor's. A
// founding update has no predecessor and reads as no change.
func DifferenceLabel(update, previous *models.Update) string {
	if previous == nil {
		return DifferenceNoChange
	}
	switch {
	case update.PainLevel > previous.PainLevel:
		return DifferenceUp
	case update.PainLevel < previous.PainLevel:
		return DifferenceDown
	default:
		return DifferenceNoChange
	}
}

// UpdateView is the serialized form of a pain check-in.
type UpdateView struct {
	ID            uint      `json:"id"`
	HurtID        uint      `json:"hurt_id"`
	AddedOn       time.Time `json:"added_on"`
	DateAdded     string    `json:"date_added"`
	PainLevel     int       `json:"pain_level"`
	Notes         string    `json:"notes"`
	IsFirstUpdate bool      `json:"is_first_update"`
	Difference    string    `json:"difference"`
	Owner         bool      `json:"owner"`
}

// NewUpdateView builds an update view. firstUpdateID identifies the hurt's
// founding update; previous may be nil; ownerID is the owning patient of the
// update's hurt.
func NewUpdateView(u *models.Update, firstUpdateID uint, previous *models.Update, requesterID, ownerID uint) UpdateView {
	return UpdateView{
		ID:            u.ID,
		HurtID:        u.HurtID,
		AddedOn:       u.AddedOn,
		DateAdded:     DateAdded(u.AddedOn),
		PainLevel:     u.PainLevel,
		Notes:         u.Notes,
		IsFirstUpdate: u.ID == firstUpdateID,
		Difference:    DifferenceLabel(u, previous),
		Owner:         authz.Owns(requesterID, ownerID),
	}
}

// HurtView is the serialized form of a hurt, including the fields derived from
// its updates.
type HurtView struct {
	ID            uint         `json:"id"`
	Patient       PatientRef   `json:"patient"`
	Bodypart      BodypartView `json:"bodypart"`
	Name          string       `json:"name"`
	AddedOn       time.Time    `json:"added_on"`
	DateAdded     string       `json:"date_added"`
	IsActive      bool         `json:"is_active"`
	Notes         string       `json:"notes"`
	PainLevel     int          `json:"pain_level"`
	FirstUpdateID uint         `json:"first_update_id"`
	LastUpdateOn  *time.Time   `json:"last_update_on,omitempty"`
	Owner         bool         `json:"owner"`
}

// NewHurtView requires Patient.User and Bodypart to be preloaded and the
// derived fields populated.
func NewHurtView(h *models.Hurt, requesterID uint) HurtView {
	return HurtView{
		ID:            h.ID,
		Patient:       NewPatientRef(&h.Patient),
		Bodypart:      NewBodypartView(&h.Bodypart),
		Name:          h.Name,
		AddedOn:       h.AddedOn,
		DateAdded:     DateAdded(h.AddedOn),
		IsActive:      h.IsActive,
		Notes:         h.Notes,
		PainLevel:     h.PainLevel,
		FirstUpdateID: h.FirstUpdateID,
		LastUpdateOn:  h.LastUpdateOn,
		Owner:         authz.Owns(requesterID, h.PatientID),
	}
}

// NewHurtViews maps a hurt list for one requester.
func NewHurtViews(hurts []*models.Hurt, requesterID uint) []HurtView {
	views := make([]HurtView, 0, len(hurts))
	for _, h := range hurts {
		views = append(views, NewHurtView(h, requesterID))
	}
	return views
}

// HurtDetail embeds the hurt's collections and merged history.
type HurtDetail struct {
	HurtView
	Treatments []TreatmentView `json:"treatments"`
	Updates    []UpdateView    `json:"updates"`
	Healings   []HealingView   `json:"healings"`
	History    []HistoryEntry  `json:"history"`
}

// HealingView is the serialized form of a recovery session.
type HealingView struct {
	ID             uint       `json:"id"`
	Patient        PatientRef `json:"patient"`
	Notes          string     `json:"notes"`
	Duration       int        `json:"duration"`
	Intensity      int        `json:"intensity"`
	IntensityScore int        `json:"intensity_score"`
	AddedOn        time.Time  `json:"added_on"`
	DateAdded      string     `json:"date_added"`
	Owner          bool       `json:"owner"`
}

// NewHealingView requires Patient.User to be preloaded.
func NewHealingView(h *models.Healing, requesterID uint) HealingView {
	return HealingView{
		ID:             h.ID,
		Patient:        NewPatientRef(&h.Patient),
		Notes:          h.Notes,
		Duration:       h.Duration,
		Intensity:      h.Intensity,
		IntensityScore: h.IntensityScore(),
		AddedOn:        h.AddedOn,
		DateAdded:      DateAdded(h.AddedOn),
		Owner:          authz.Owns(requesterID, h.PatientID),
	}
}

// NewHealingViews maps a healing list for one requester.
func NewHealingViews(healings []*models.Healing, requesterID uint) []HealingView {
	views := make([]HealingView, 0, len(healings))
	for _, h := range healings {
		views = append(views, NewHealingView(h, requesterID))
	}
	return views
}

// HealingDetail embeds the healing's associated treatments and hurts.
type HealingDetail struct {
	HealingView
	Treatments []TreatmentView `json:"treatments"`
	Hurts      []HurtView      `json:"hurts"`
}

// TreatmentLinkView is a titled URL on a treatment.
type TreatmentLinkView struct {
	ID       uint   `json:"id"`
	LinkText string `json:"linktext"`
	LinkURL  string `json:"linkurl"`
}

// TreatmentView is the serialized form of a treatment.
type TreatmentView struct {
	ID            uint                `json:"id"`
	AddedBy       PatientRef          `json:"added_by"`
	Bodypart      BodypartView        `json:"bodypart"`
	Treatmenttype TreatmentTypeView   `json:"treatmenttype"`
	Name          string              `json:"name"`
	Notes         string              `json:"notes"`
	Public        bool                `json:"public"`
	AddedOn       time.Time           `json:"added_on"`
	DateAdded     string              `json:"date_added"`
	Links         []TreatmentLinkView `json:"links"`
	HealingCount  int                 `json:"healing_count"`
	Owner         bool                `json:"owner"`
}

// NewTreatmentView requires AddedBy.User, Bodypart, Treatmenttype and Links to
// be preloaded and HealingCount populated.
func NewTreatmentView(t *models.Treatment, requesterID uint) TreatmentView {
	links := make([]TreatmentLinkView, 0, len(t.Links))
	for _, l := range t.Links {
		links = append(links, TreatmentLinkView{ID: l.ID, LinkText: l.LinkText, LinkURL: l.LinkURL})
	}
	return TreatmentView{
		ID:            t.ID,
		AddedBy:       NewPatientRef(&t.AddedBy),
		Bodypart:      NewBodypartView(&t.Bodypart),
		Treatmenttype: NewTreatmentTypeView(&t.Treatmenttype),
		Name:          t.Name,
		Notes:         t.Notes,
		Public:        t.Public,
		AddedOn:       t.AddedOn,
		DateAdded:     DateAdded(t.AddedOn),
		Links:         links,
		HealingCount:  t.HealingCount,
		Owner:         authz.Owns(requesterID, t.AddedByID),
	}
}

// NewTreatmentViews maps a treatment list for one requester.
func NewTreatmentViews(treatments []*models.Treatment, requesterID uint) []TreatmentView {
	views := make([]TreatmentView, 0, len(treatments))
	for _, t := range treatments {
		views = append(views, NewTreatmentView(t, requesterID))
	}
	return views
}

// TreatmentDetail embeds the hurts the treatment is tagged against.
type TreatmentDetail struct {
	TreatmentView
	Hurts []HurtView `json:"hurts"`
}

// PatientProfile is the full patient detail payload.
type PatientProfile struct {
	ID             uint            `json:"id"`
	FullName       string          `json:"full_name"`
	FirstName      string          `json:"first_name"`
	LastName       string          `json:"last_name"`
	Username       string          `json:"username"`
	Email          string          `json:"email"`
	Bio            string          `json:"bio"`
	IsStaff        bool            `json:"is_staff"`
	Owner          bool            `json:"owner"`
	Hurts          []HurtView      `json:"hurts"`
	Healings       []HealingView   `json:"healings"`
	Treatments     []TreatmentView `json:"treatments"`
	Updates        []UpdateView    `json:"updates"`
	RecentActivity []ActivityEntry `json:"recent_activity"`
}

// NewPatientProfile builds the profile header; collections and the activity
// feed are attached by the handler.
func NewPatientProfile(p *models.Patient, requesterID uint) PatientProfile {
	return PatientProfile{
		ID:        p.ID,
		FullName:  p.FullName(),
		FirstName: p.User.FirstName,
		LastName:  p.User.LastName,
		Username:  p.User.Username,
		Email:     p.User.Email,
		Bio:       p.User.Bio,
		IsStaff:   p.User.IsStaff,
		Owner:     authz.Owns(requesterID, p.ID),
	}
}
