package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gavinschriver/whereithurts-server/internal/config"
	"github.com/gavinschriver/whereithurts-server/internal/database"
	"github.com/gavinschriver/whereithurts-server/internal/models"
	"github.com/gavinschriver/whereithurts-server/internal/repository"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testEnv bundles a Server wired to an in-memory sqlite DB with a Fiber app
// carrying the full route table.
type testEnv struct {
	t   *testing.T
	app *fiber.App
	srv *Server
	db  *gorm.DB
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	t.Setenv("APP_ENV", "test")

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(database.AllModels()...))

	s := &Server{
		config:        &config.Config{JWTSecret: "test_secret", Env: "test"},
		db:            db,
		patientRepo:   repository.NewPatientRepository(db),
		hurtRepo:      repository.NewHurtRepository(db),
		updateRepo:    repository.NewUpdateRepository(db),
		treatmentRepo: repository.NewTreatmentRepository(db),
		healingRepo:   repository.NewHealingRepository(db),
		referenceRepo: repository.NewReferenceRepository(db),
	}

	app := fiber.New()
	s.SetupRoutes(app)

	return &testEnv{t: t, app: app, srv: s, db: db}
}

// request performs an in-process HTTP call. A non-empty token is sent as a
// bearer credential.
func (e *testEnv) request(method, path, token string, body any) *http.Response {
	e.t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(e.t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(e.t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

// registerPatient creates an account through the public endpoints and returns
// a token plus the new patient id.
func (e *testEnv) registerPatient(username string) (string, uint) {
	e.t.Helper()

	resp := e.request(http.MethodPost, "/register", "", map[string]string{
		"username":   username,
		"email":      username + "@example.com",
		"password":   "password123",
		"first_name": "Avery",
		"last_name":  "Example",
		"bio":        "test account",
	})
	require.Equal(e.t, http.StatusCreated, resp.StatusCode)
	_ = resp.Body.Close()

	resp = e.request(http.MethodPost, "/login", "", map[string]string{
		"username": username,
		"password": "password123",
	})
	require.Equal(e.t, http.StatusOK, resp.StatusCode)
	body := decodeBody(e.t, resp)
	require.Equal(e.t, true, body["valid"])

	token, _ := body["token"].(string)
	require.NotEmpty(e.t, token)
	return token, uint(body["patient_id"].(float64))
}

// makeStaff flips the staff flag on the account behind a patient.
func (e *testEnv) makeStaff(patientID uint) {
	e.t.Helper()
	var patient models.Patient
	require.NoError(e.t, e.db.First(&patient, patientID).Error)
	require.NoError(e.t, e.db.Model(&models.User{}).
		Where("id = ?", patient.UserID).
		Update("is_staff", true).Error)
}

func (e *testEnv) seedBodypart(name string) *models.Bodypart {
	e.t.Helper()
	bp := &models.Bodypart{Name: name, HurtImage: "hurt.png", TreatmentImage: "treatment.png"}
	require.NoError(e.t, e.db.Create(bp).Error)
	return bp
}

func (e *testEnv) seedTreatmentType(name string) *models.TreatmentType {
	e.t.Helper()
	tt := &models.TreatmentType{Name: name}
	require.NoError(e.t, e.db.Create(tt).Error)
	return tt
}

// createHurt drives POST /hurts and returns the new hurt's id.
func (e *testEnv) createHurt(token string, bodypartID uint, name string, painLevel int, notes string) uint {
	e.t.Helper()
	resp := e.request(http.MethodPost, "/hurts", token, map[string]any{
		"name":        name,
		"bodypart_id": bodypartID,
		"is_active":   true,
		"pain_level":  painLevel,
		"notes":       notes,
	})
	require.Equal(e.t, http.StatusCreated, resp.StatusCode)
	body := decodeBody(e.t, resp)
	return uint(body["id"].(float64))
}

// createTreatment drives POST /treatments and returns the new treatment's id.
func (e *testEnv) createTreatment(token string, bodypartID, treatmenttypeID uint, name string, public bool) uint {
	e.t.Helper()
	resp := e.request(http.MethodPost, "/treatments", token, map[string]any{
		"name":             name,
		"bodypart_id":      bodypartID,
		"treatmenttype_id": treatmenttypeID,
		"notes":            "treatment notes",
		"public":           public,
	})
	require.Equal(e.t, http.StatusCreated, resp.StatusCode)
	body := decodeBody(e.t, resp)
	return uint(body["id"].(float64))
}

// createHealing drives POST /healings and returns the new healing's id.
func (e *testEnv) createHealing(token string, duration, intensity int, hurtIDs []uint) uint {
	e.t.Helper()
	payload := map[string]any{
		"notes":     "healing notes",
		"duration":  duration,
		"intensity": intensity,
	}
	if hurtIDs != nil {
		payload["hurt_ids"] = hurtIDs
	}
	resp := e.request(http.MethodPost, "/healings", token, payload)
	require.Equal(e.t, http.StatusCreated, resp.StatusCode)
	body := decodeBody(e.t, resp)
	return uint(body["id"].(float64))
}

func TestLivenessCheck(t *testing.T) {
	env := newTestEnv(t)

	resp := env.request(http.MethodGet, "/health/live", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "up", body["status"])
}

func TestReadinessCheck(t *testing.T) {
	env := newTestEnv(t)

	resp := env.request(http.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "healthy", body["status"])

	checks := body["checks"].(map[string]any)
	assert.Equal(t, "healthy", checks["database"])
	assert.Equal(t, "unavailable", checks["redis"])
}

func TestAuthRequired(t *testing.T) {
	env := newTestEnv(t)

	t.Run("missing token", func(t *testing.T) {
		resp := env.request(http.MethodGet, "/hurts", "", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		body := decodeBody(t, resp)
		assert.Equal(t, "Authorization required", body["message"])
	})

	t.Run("garbage token", func(t *testing.T) {
		resp := env.request(http.MethodGet, "/hurts", "not-a-jwt", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		body := decodeBody(t, resp)
		assert.Equal(t, "Invalid or expired token", body["message"])
	})

	t.Run("valid token passes", func(t *testing.T) {
		token, patientID := env.registerPatient("authcheck")
		resp := env.request(http.MethodGet, fmt.Sprintf("/hurts?patient_id=%d", patientID), token, nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		_ = resp.Body.Close()
	})
}

func TestReferenceData(t *testing.T) {
	env := newTestEnv(t)
	env.seedBodypart("Knee")
	env.seedBodypart("Elbow")
	env.seedTreatmentType("Stretching")
	token, _ := env.registerPatient("refdata")

	resp := env.request(http.MethodGet, "/bodyparts", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	bodyparts := body["bodyparts"].([]any)
	require.Len(t, bodyparts, 2)
	first := bodyparts[0].(map[string]any)
	assert.Equal(t, "Elbow", first["name"])
	assert.Equal(t, "hurt.png", first["hurt_image"])

	resp = env.request(http.MethodGet, "/treatmenttypes", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body = decodeBody(t, resp)
	require.Len(t, body["treatmenttypes"].([]any), 1)
}
