package server

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gavinschriver/whereithurts-server/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateHealingAllOrNothing(t *testing.T) {
	env := newTestEnv(t)
	token, patientID := env.registerPatient("healer")

	resp := env.request(http.MethodPost, "/healings", token, map[string]any{
		"notes":         "icing session",
		"duration":      600,
		"intensity":     40,
		"treatment_ids": []uint{999},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "request contains a treatment id for a non-existent treatment", body["message"])

	// nothing was written
	var count int64
	require.NoError(t, env.db.Model(&models.Healing{}).Count(&count).Error)
	assert.Zero(t, count)

	resp = env.request(http.MethodGet, fmt.Sprintf("/healings?patient_id=%d", patientID), token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decodeBody(t, resp)
	assert.Equal(t, float64(0), list["count"])
}

func TestHealingIntensityScore(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.registerPatient("scorer")

	cases := []struct {
		intensity int
		score     float64
	}{
		{77, 80},
		{47, 50},
		{45, 50},
		{44, 40},
		{0, 0},
		{100, 100},
	}
	for _, tc := range cases {
		resp := env.request(http.MethodPost, "/healings", token, map[string]any{
			"notes":     "session",
			"duration":  300,
			"intensity": tc.intensity,
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		body := decodeBody(t, resp)
		assert.Equal(t, float64(tc.intensity), body["intensity"])
		assert.Equal(t, tc.score, body["intensity_score"], "intensity %d", tc.intensity)
	}
}

func TestHealingValidation(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.registerPatient("validator")

	resp := env.request(http.MethodPost, "/healings", token, map[string]any{
		"notes":     "session",
		"duration":  300,
		"intensity": 150,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Contains(t, body["reason"], "intensity must be between 0 and 100")

	resp = env.request(http.MethodPost, "/healings", token, map[string]any{
		"notes":    "session",
		"duration": -5,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body = decodeBody(t, resp)
	assert.Contains(t, body["reason"], "duration must not be negative")
}

func TestGetHealingsTotalsOverFullCollection(t *testing.T) {
	env := newTestEnv(t)
	token, patientID := env.registerPatient("totals")

	for i := 0; i < 3; i++ {
		env.createHealing(token, 1000, 50, nil)
	}

	resp := env.request(http.MethodGet,
		fmt.Sprintf("/healings?patient_id=%d&page_size=2", patientID), token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)

	// count and total_healing_time cover the whole collection, not the page
	assert.Equal(t, float64(3), body["count"])
	assert.Equal(t, float64(3000), body["total_healing_time"])
	assert.Len(t, body["healings"].([]any), 2)

	resp = env.request(http.MethodGet,
		fmt.Sprintf("/healings?patient_id=%d&page_size=2&page=2", patientID), token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body = decodeBody(t, resp)
	assert.Equal(t, float64(3000), body["total_healing_time"])
	assert.Len(t, body["healings"].([]any), 1)
}

func TestGetHealingsStaffGate(t *testing.T) {
	env := newTestEnv(t)
	ownerToken, ownerID := env.registerPatient("healingsowner")
	otherToken, otherID := env.registerPatient("healingsother")
	env.createHealing(ownerToken, 600, 30, nil)

	resp := env.request(http.MethodGet, "/healings", otherToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "only staff can access a list of healings not specified by patient id", body["message"])

	resp = env.request(http.MethodGet, fmt.Sprintf("/healings?patient_id=%d", ownerID), otherToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	_ = resp.Body.Close()

	env.makeStaff(otherID)
	resp = env.request(http.MethodGet, "/healings", otherToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body = decodeBody(t, resp)
	assert.Equal(t, float64(1), body["count"])
}

func TestHealingDetailAssociations(t *testing.T) {
	env := newTestEnv(t)
	bp := env.seedBodypart("Knee")
	tt := env.seedTreatmentType("Ice")
	token, _ := env.registerPatient("associated")

	hurtID := env.createHurt(token, bp.ID, "Runner's knee", 6, "notes")
	treatmentID := env.createTreatment(token, bp.ID, tt.ID, "Ice pack", false)

	resp := env.request(http.MethodPost, "/healings", token, map[string]any{
		"notes":         "iced the knee",
		"duration":      900,
		"intensity":     20,
		"treatment_ids": []uint{treatmentID},
		"hurt_ids":      []uint{hurtID},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	body := decodeBody(t, resp)

	treatments := body["treatments"].([]any)
	require.Len(t, treatments, 1)
	assert.Equal(t, "Ice pack", treatments[0].(map[string]any)["name"])

	hurts := body["hurts"].([]any)
	require.Len(t, hurts, 1)
	assert.Equal(t, float64(hurtID), hurts[0].(map[string]any)["id"])
}

func TestHealingOwnershipOnMutation(t *testing.T) {
	env := newTestEnv(t)
	ownerToken, _ := env.registerPatient("healmutowner")
	otherToken, _ := env.registerPatient("healmutother")
	healingID := env.createHealing(ownerToken, 600, 30, nil)

	resp := env.request(http.MethodPut, fmt.Sprintf("/healings/%d", healingID), otherToken, map[string]any{
		"notes":     "hijacked",
		"duration":  1,
		"intensity": 1,
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "only the patient who owns this healing can modify it", body["message"])

	resp = env.request(http.MethodPut, fmt.Sprintf("/healings/%d", healingID), ownerToken, map[string]any{
		"notes":     "longer session",
		"duration":  1200,
		"intensity": 35,
	})
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	_ = resp.Body.Close()

	resp = env.request(http.MethodGet, fmt.Sprintf("/healings/%d", healingID), ownerToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body = decodeBody(t, resp)
	assert.Equal(t, float64(1200), body["duration"])

	resp = env.request(http.MethodDelete, fmt.Sprintf("/healings/%d", healingID), otherToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	_ = resp.Body.Close()

	resp = env.request(http.MethodDelete, fmt.Sprintf("/healings/%d", healingID), ownerToken, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	_ = resp.Body.Close()

	resp = env.request(http.MethodGet, fmt.Sprintf("/healings/%d", healingID), ownerToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	_ = resp.Body.Close()
}
