package server

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/gavinschriver/whereithurts-server/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetPatientProfile(t *testing.T) {
	env := newTestEnv(t)
	bp := env.seedBodypart("Knee")
	tt := env.seedTreatmentType("Stretching")
	token, patientID := env.registerPatient("profiled")

	hurtID := env.createHurt(token, bp.ID, "Runner's knee", 6, "founding notes")
	env.createTreatment(token, bp.ID, tt.ID, "Couch stretch", false)
	env.createHealing(token, 900, 40, []uint{hurtID})
	addUpdate(t, env, token, hurtID, 4, "follow-up")

	resp := env.request(http.MethodGet, fmt.Sprintf("/patients/%d", patientID), token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)

	assert.Equal(t, "Avery Example", body["full_name"])
	assert.Equal(t, "profiled", body["username"])
	assert.Equal(t, true, body["owner"])
	assert.Equal(t, false, body["is_staff"])

	assert.Len(t, body["hurts"].([]any), 1)
	assert.Len(t, body["healings"].([]any), 1)
	assert.Len(t, body["treatments"].([]any), 1)

	// the founding update never appears in the profile's update list
	updates := body["updates"].([]any)
	require.Len(t, updates, 1)
	assert.Equal(t, "follow-up", updates[0].(map[string]any)["notes"])

	// one record of each kind plus the follow-up, newest first
	activity := body["recent_activity"].([]any)
	require.Len(t, activity, 4)
	first := activity[0].(map[string]any)
	assert.Equal(t, "Update", first["activity_type"])
	assert.Equal(t, "follow-up", first["notes"])
}

func TestGetPatientProfileNotOwner(t *testing.T) {
	env := newTestEnv(t)
	_, patientID := env.registerPatient("viewee")
	otherToken, _ := env.registerPatient("viewer")

	resp := env.request(http.MethodGet, fmt.Sprintf("/patients/%d", patientID), otherToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, false, body["owner"])

	resp = env.request(http.MethodGet, "/patients/999", otherToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestRecentActivityTopFive(t *testing.T) {
	env := newTestEnv(t)
	bp := env.seedBodypart("Knee")
	token, patientID := env.registerPatient("busypatient")

	hurtID := env.createHurt(token, bp.ID, "Runner's knee", 6, "founding")
	for i := 0; i < 6; i++ {
		addUpdate(t, env, token, hurtID, 4, fmt.Sprintf("check-in %d", i))
	}

	resp := env.request(http.MethodGet, fmt.Sprintf("/patients/%d", patientID), token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)

	activity := body["recent_activity"].([]any)
	require.Len(t, activity, 5)
	newest := activity[0].(map[string]any)
	assert.Equal(t, "Update", newest["activity_type"])
	assert.Equal(t, "check-in 5", newest["notes"])
}

func TestGetSnapshotAuthz(t *testing.T) {
	env := newTestEnv(t)
	_, patientID := env.registerPatient("snapowner")
	otherToken, otherID := env.registerPatient("snapother")

	path := fmt.Sprintf("/profiles/%d/snapshot", patientID)

	resp := env.request(http.MethodGet, path, otherToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "only staff or the patient with this id can access this snapshot", body["message"])

	env.makeStaff(otherID)
	resp = env.request(http.MethodGet, path, otherToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body = decodeBody(t, resp)
	assert.Equal(t, float64(patientID), body["patient_id"])
}

func TestGetSnapshotSevenDayWindow(t *testing.T) {
	env := newTestEnv(t)
	bp := env.seedBodypart("Knee")
	tt := env.seedTreatmentType("Ice")
	token, patientID := env.registerPatient("snapshotted")

	hurtID := env.createHurt(token, bp.ID, "Fresh hurt", 6, "notes")
	treatmentID := env.createTreatment(token, bp.ID, tt.ID, "Ice pack", false)

	resp := env.request(http.MethodPost, "/healings", token, map[string]any{
		"notes":         "recent session",
		"duration":      1200,
		"intensity":     30,
		"treatment_ids": []uint{treatmentID},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	_ = resp.Body.Close()

	// records older than the window are written directly so their timestamps
	// land outside it
	old := time.Now().UTC().Add(-8 * 24 * time.Hour)
	require.NoError(t, env.db.Create(&models.Healing{
		PatientID: patientID,
		Notes:     "stale session",
		Duration:  5000,
		Intensity: 50,
		AddedOn:   old,
	}).Error)
	require.NoError(t, env.db.Create(&models.Hurt{
		PatientID:  patientID,
		BodypartID: bp.ID,
		Name:       "Stale hurt",
		AddedOn:    old,
		IsActive:   true,
	}).Error)

	resp = env.request(http.MethodGet, fmt.Sprintf("/profiles/%d/snapshot", patientID), token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)

	healings := body["recent_healings"].([]any)
	require.Len(t, healings, 1)
	assert.Equal(t, float64(1200), healings[0].(map[string]any)["duration"])
	assert.Equal(t, float64(1200), body["recent_healing_time"])

	hurts := body["recent_hurts"].([]any)
	require.Len(t, hurts, 1)
	assert.Equal(t, float64(hurtID), hurts[0].(map[string]any)["id"])
	assert.Equal(t, "Fresh hurt", hurts[0].(map[string]any)["name"])

	treatments := body["recent_treatments"].([]any)
	require.Len(t, treatments, 1)
	assert.Equal(t, "Ice pack", treatments[0].(map[string]any)["name"])
}
