package serializer

import (
	"sort"
	"time"

	"github.com/gavinschriver/whereithurts-server/internal/models"
)

// History feed tags.
const (
	HistoryCreatedOn = "Created on"
	HistoryUpdate    = "Update"
	HistoryHealing   = "Healing"
)

// HistoryEntry is one row of a hurt's merged timeline.
type HistoryEntry struct {
	HistoryType    string    `json:"history_type"`
	ID             uint      `json:"id"`
	AddedOn        time.Time `json:"added_on"`
	DateAdded      string    `json:"date_added"`
	Notes          string    `json:"notes"`
	PainLevel      int       `json:"pain_level,omitempty"`
	Duration       int       `json:"duration,omitempty"`
	IntensityScore int       `json:"intensity_score,omitempty"`
}

// BuildHistory merges a hurt's updates and healings into one timeline. The
// founding update is tagged "Created on", later updates "Update", healings
// "Healing". Default order is newest first; oldestFirst reverses it. Entries
// sharing a timestamp keep updates ahead of healings either way.
func BuildHistory(hurt *models.Hurt, updates []*models.Update, healings []*models.Healing, oldestFirst bool) []HistoryEntry {
	entries := make([]HistoryEntry, 0, len(updates)+len(healings))

	for _, u := range updates {
		tag := HistoryUpdate
		if u.ID == hurt.FirstUpdateID {
			tag = HistoryCreatedOn
		}
		entries = append(entries, HistoryEntry{
			HistoryType: tag,
			ID:          u.ID,
			AddedOn:     u.AddedOn,
			DateAdded:   DateAdded(u.AddedOn),
			Notes:       u.Notes,
			PainLevel:   u.PainLevel,
		})
	}
	for _, h := range healings {
		entries = append(entries, HistoryEntry{
			HistoryType:    HistoryHealing,
			ID:             h.ID,
			AddedOn:        h.AddedOn,
			DateAdded:      DateAdded(h.AddedOn),
			Notes:          h.Notes,
			Duration:       h.Duration,
			IntensityScore: h.IntensityScore(),
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if oldestFirst {
			return entries[i].AddedOn.Before(entries[j].AddedOn)
		}
		return entries[i].AddedOn.After(entries[j].AddedOn)
	})
	return entries
}

// Activity feed tags.
const (
	ActivityUpdate    = "Update"
	ActivityHurt      = "Hurt"
	ActivityHealing   = "Healing"
	ActivityTreatment = "Treatment"
)

// RecentActivityLimit caps the patient activity feed.
const RecentActivityLimit = 5

// ActivityEntry is one row of a patient's recent-activity feed.
type ActivityEntry struct {
	ActivityType string    `json:"activity_type"`
	ID           uint      `json:"id"`
	AddedOn      time.Time `json:"added_on"`
	DateAdded    string    `json:"date_added"`
	Name         string    `json:"name,omitempty"`
	Notes        string    `json:"notes,omitempty"`
}

// BuildRecentActivity merges a patient's records into one descending feed and
// keeps the most recent entries up to RecentActivityLimit. Entries sharing a
// timestamp keep the merge order: updates, hurts, healings, treatments.
func BuildRecentActivity(updates []*models.Update, hurts []*models.Hurt, healings []*models.Healing, treatments []*models.Treatment) []ActivityEntry {
	entries := make([]ActivityEntry, 0, len(updates)+len(hurts)+len(healings)+len(treatments))

	for _, u := range updates {
		entries = append(entries, ActivityEntry{
			ActivityType: ActivityUpdate,
			ID:           u.ID,
			AddedOn:      u.AddedOn,
			DateAdded:    DateAdded(u.AddedOn),
			Notes:        u.Notes,
		})
	}
	for _, h := range hurts {
		entries = append(entries, ActivityEntry{
			ActivityType: ActivityHurt,
			ID:           h.ID,
			AddedOn:      h.AddedOn,
			DateAdded:    DateAdded(h.AddedOn),
			Name:         h.Name,
		})
	}
	for _, h := range healings {
		entries = append(entries, ActivityEntry{
			ActivityType: ActivityHealing,
			ID:           h.ID,
			AddedOn:      h.AddedOn,
			DateAdded:    DateAdded(h.AddedOn),
			Notes:        h.Notes,
		})
	}
	for _, t := range treatments {
		entries = append(entries, ActivityEntry{
			ActivityType: ActivityTreatment,
			ID:           t.ID,
			AddedOn:      t.AddedOn,
			DateAdded:    DateAdded(t.AddedOn),
			Name:         t.Name,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].AddedOn.After(entries[j].AddedOn)
	})
	if len(entries) > RecentActivityLimit {
		entries = entries[:RecentActivityLimit]
	}
	return entries
}

// SnapshotWindow is how far back the profile snapshot reaches.
const SnapshotWindow = 7 * 24 * time.Hour

// SnapshotHealing is the trimmed healing row in a snapshot.
type SnapshotHealing struct {
	ID        uint   `json:"id"`
	Duration  int    `json:"duration"`
	DateAdded string `json:"date_added"`
}

// SnapshotTreatment is the trimmed treatment row in a snapshot.
type SnapshotTreatment struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// SnapshotHurt is the trimmed hurt row in a snapshot.
type SnapshotHurt struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// Snapshot summarizes a patient's last seven days.
type Snapshot struct {
	PatientID         uint                `json:"patient_id"`
	RecentHealings    []SnapshotHealing   `json:"recent_healings"`
	RecentTreatments  []SnapshotTreatment `json:"recent_treatments"`
	RecentHurts       []SnapshotHurt      `json:"recent_hurts"`
	RecentHealingTime int                 `json:"recent_healing_time"`
}

// BuildSnapshot assembles the seven-day summary. treatments are the ones
// linked to the window's healings; hurts the ones added in the window.
func BuildSnapshot(patientID uint, healings []*models.Healing, treatments []*models.Treatment, hurts []*models.Hurt) Snapshot {
	snap := Snapshot{
		PatientID:        patientID,
		RecentHealings:   make([]SnapshotHealing, 0, len(healings)),
		RecentTreatments: make([]SnapshotTreatment, 0, len(treatments)),
		RecentHurts:      make([]SnapshotHurt, 0, len(hurts)),
	}
	for _, h := range healings {
		snap.RecentHealings = append(snap.RecentHealings, SnapshotHealing{
			ID:        h.ID,
			Duration:  h.Duration,
			DateAdded: DateAdded(h.AddedOn),
		})
		snap.RecentHealingTime += h.Duration
	}
	for _, t := range treatments {
		snap.RecentTreatments = append(snap.RecentTreatments, SnapshotTreatment{ID: t.ID, Name: t.Name})
	}
	for _, h := range hurts {
		snap.RecentHurts = append(snap.RecentHurts, SnapshotHurt{ID: h.ID, Name: h.Name})
	}
	return snap
}

// TotalHealingTime sums durations over the whole filtered collection, before
// pagination.
func TotalHealingTime(healings []*models.Healing) int {
	total := 0
	for _, h := range healings {
		total += h.Duration
	}
	return total
}
