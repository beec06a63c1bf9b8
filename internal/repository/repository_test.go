package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/gavinschriver/whereithurts-server/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupRepoDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Patient{},
		&models.Bodypart{},
		&models.TreatmentType{},
		&models.Hurt{},
		&models.Update{},
		&models.Treatment{},
		&models.TreatmentLink{},
		&models.Healing{},
		&models.HurtTreatment{},
		&models.HealingTreatment{},
		&models.HurtHealing{},
	))
	return db
}

func seedPatient(t *testing.T, db *gorm.DB, username string) *models.Patient {
	t.Helper()

	user := &models.User{
		Username:  username,
		Email:     username + "@example.com",
		Password:  "notahash",
		FirstName: "Test",
		LastName:  "Patient",
	}
	require.NoError(t, db.Create(user).Error)

	patient := &models.Patient{UserID: user.ID}
	require.NoError(t, db.Create(patient).Error)
	patient.User = *user
	return patient
}

func seedBodypart(t *testing.T, db *gorm.DB, name string) *models.Bodypart {
	t.Helper()
	bp := &models.Bodypart{Name: name}
	require.NoError(t, db.Create(bp).Error)
	return bp
}

func seedTreatmentType(t *testing.T, db *gorm.DB, name string) *models.TreatmentType {
	t.Helper()
	tt := &models.TreatmentType{Name: name}
	require.NoError(t, db.Create(tt).Error)
	return tt
}

func seedTreatment(t *testing.T, db *gorm.DB, owner *models.Patient, name string, public bool) *models.Treatment {
	t.Helper()

	bp := seedBodypart(t, db, "part for "+name)
	tt := seedTreatmentType(t, db, "type for "+name)
	treatment := &models.Treatment{
		AddedByID:       owner.ID,
		BodypartID:      bp.ID,
		TreatmenttypeID: tt.ID,
		Name:            name,
		AddedOn:         time.Now(),
		Public:          public,
	}
	require.NoError(t, db.Create(treatment).Error)
	return treatment
}

func TestHurtCreateDerivesFromFoundingUpdate(t *testing.T) {
	db := setupRepoDB(t)
	repo := NewHurtRepository(db)
	ctx := context.Background()

	patient := seedPatient(t, db, "derive")
	bp := seedBodypart(t, db, "Knee")

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	hurt := &models.Hurt{
		PatientID:  patient.ID,
		BodypartID: bp.ID,
		Name:       "Runner's knee",
		AddedOn:    base,
		IsActive:   true,
	}
	first := &models.Update{AddedOn: base, PainLevel: 7, Notes: "Sharp pain going downstairs"}
	require.NoError(t, repo.Create(ctx, hurt, first, nil))

	later := base.Add(48 * time.Hour)
	require.NoError(t, db.Create(&models.Update{
		HurtID:    hurt.ID,
		AddedOn:   later,
		PainLevel: 4,
		Notes:     "Improving with rest",
	}).Error)

	got, err := repo.GetByID(ctx, hurt.ID)
	require.NoError(t, err)
	assert.Equal(t, "Sharp pain going downstairs", got.Notes)
	assert.Equal(t, 7, got.PainLevel)
	assert.Equal(t, first.ID, got.FirstUpdateID)
	require.NotNil(t, got.LastUpdateOn)
	assert.True(t, got.LastUpdateOn.Equal(later))
	assert.Equal(t, "Knee", got.Bodypart.Name)
}

func TestSyncBridgeRowsReconciles(t *testing.T) {
	db := setupRepoDB(t)
	repo := NewHurtRepository(db)
	ctx := context.Background()

	patient := seedPatient(t, db, "bridges")
	bp := seedBodypart(t, db, "Shoulder")
	t1 := seedTreatment(t, db, patient, "Ice", false)
	t2 := seedTreatment(t, db, patient, "Stretching", false)
	t3 := seedTreatment(t, db, patient, "Massage", false)

	hurt := &models.Hurt{PatientID: patient.ID, BodypartID: bp.ID, Name: "Impingement", AddedOn: time.Now(), IsActive: true}
	first := &models.Update{AddedOn: time.Now(), PainLevel: 5, Notes: "initial"}
	require.NoError(t, repo.Create(ctx, hurt, first, []uint{t1.ID, t2.ID}))

	var keptRow models.HurtTreatment
	require.NoError(t, db.Where("hurt_id = ? AND treatment_id = ?", hurt.ID, t2.ID).First(&keptRow).Error)

	hurt.Name = "Impingement"
	require.NoError(t, repo.Update(ctx, hurt, first, []uint{t2.ID, t3.ID}))

	var rows []models.HurtTreatment
	require.NoError(t, db.Where("hurt_id = ?", hurt.ID).Order("treatment_id ASC").Find(&rows).Error)
	require.Len(t, rows, 2)
	assert.Equal(t, t2.ID, rows[0].TreatmentID)
	assert.Equal(t, t3.ID, rows[1].TreatmentID)
	// the unchanged association kept its row
	assert.Equal(t, keptRow.ID, rows[0].ID)

	// resubmitting the same set changes nothing
	require.NoError(t, repo.Update(ctx, hurt, first, []uint{t2.ID, t3.ID}))
	var count int64
	require.NoError(t, db.Model(&models.HurtTreatment{}).Where("hurt_id = ?", hurt.ID).Count(&count).Error)
	assert.EqualValues(t, 2, count)
}

func TestResolveManyRejectsUnknownIDs(t *testing.T) {
	db := setupRepoDB(t)
	repo := NewTreatmentRepository(db)
	ctx := context.Background()

	patient := seedPatient(t, db, "resolver")
	tr := seedTreatment(t, db, patient, "Heat", false)

	resolved, err := repo.ResolveMany(ctx, []uint{tr.ID, tr.ID})
	require.NoError(t, err)
	assert.Len(t, resolved, 1)

	_, err = repo.ResolveMany(ctx, []uint{tr.ID, 9999})
	var missing *models.MissingReferenceError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "treatment", missing.Kind)
}

func TestTreatmentVisibility(t *testing.T) {
	db := setupRepoDB(t)
	repo := NewTreatmentRepository(db)
	ctx := context.Background()

	owner := seedPatient(t, db, "owner")
	other := seedPatient(t, db, "other")
	private := seedTreatment(t, db, owner, "Private stretches", false)
	public := seedTreatment(t, db, owner, "Public foam rolling", true)

	_, err := repo.GetByID(ctx, other.ID, private.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	got, err := repo.GetByID(ctx, other.ID, public.ID)
	require.NoError(t, err)
	assert.Equal(t, public.ID, got.ID)

	mine, err := repo.List(ctx, owner.ID, TreatmentFilter{})
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	theirs, err := repo.List(ctx, other.ID, TreatmentFilter{})
	require.NoError(t, err)
	require.Len(t, theirs, 1)
	assert.Equal(t, public.ID, theirs[0].ID)
}

func TestTreatmentHealingCount(t *testing.T) {
	db := setupRepoDB(t)
	treatments := NewTreatmentRepository(db)
	healings := NewHealingRepository(db)
	ctx := context.Background()

	patient := seedPatient(t, db, "counter")
	tr := seedTreatment(t, db, patient, "Ultrasound", false)

	for i := 0; i < 3; i++ {
		h := &models.Healing{
			PatientID: patient.ID,
			Notes:     fmt.Sprintf("session %d", i+1),
			Duration:  600,
			Intensity: 50,
			AddedOn:   time.Now(),
		}
		require.NoError(t, healings.Create(ctx, h, []uint{tr.ID}, nil))
	}

	got, err := treatments.GetByID(ctx, patient.ID, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.HealingCount)
}

func TestTagHurtIsIdempotent(t *testing.T) {
	db := setupRepoDB(t)
	treatments := NewTreatmentRepository(db)
	hurts := NewHurtRepository(db)
	ctx := context.Background()

	patient := seedPatient(t, db, "tagger")
	bp := seedBodypart(t, db, "Back")
	tr := seedTreatment(t, db, patient, "Yoga", false)

	hurt := &models.Hurt{PatientID: patient.ID, BodypartID: bp.ID, Name: "Lower back pain", AddedOn: time.Now(), IsActive: true}
	require.NoError(t, hurts.Create(ctx, hurt, &models.Update{AddedOn: time.Now(), PainLevel: 6, Notes: "ow"}, nil))

	require.NoError(t, treatments.TagHurt(ctx, tr.ID, hurt.ID))
	require.NoError(t, treatments.TagHurt(ctx, tr.ID, hurt.ID))

	var count int64
	require.NoError(t, db.Model(&models.HurtTreatment{}).Where("hurt_id = ? AND treatment_id = ?", hurt.ID, tr.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	require.NoError(t, treatments.UntagHurt(ctx, tr.ID, hurt.ID))
	require.NoError(t, treatments.UntagHurt(ctx, tr.ID, hurt.ID))
	require.NoError(t, db.Model(&models.HurtTreatment{}).Where("hurt_id = ?", hurt.ID).Count(&count).Error)
	assert.Zero(t, count)
}

func TestHurtDeleteRemovesDependents(t *testing.T) {
	db := setupRepoDB(t)
	repo := NewHurtRepository(db)
	ctx := context.Background()

	patient := seedPatient(t, db, "deleter")
	bp := seedBodypart(t, db, "Ankle")
	tr := seedTreatment(t, db, patient, "Brace", false)

	hurt := &models.Hurt{PatientID: patient.ID, BodypartID: bp.ID, Name: "Sprain", AddedOn: time.Now(), IsActive: true}
	require.NoError(t, repo.Create(ctx, hurt, &models.Update{AddedOn: time.Now(), PainLevel: 8, Notes: "rolled it"}, []uint{tr.ID}))

	require.NoError(t, repo.Delete(ctx, hurt.ID))

	var updates, bridges int64
	require.NoError(t, db.Model(&models.Update{}).Where("hurt_id = ?", hurt.ID).Count(&updates).Error)
	require.NoError(t, db.Model(&models.HurtTreatment{}).Where("hurt_id = ?", hurt.ID).Count(&bridges).Error)
	assert.Zero(t, updates)
	assert.Zero(t, bridges)

	_, err := repo.GetByID(ctx, hurt.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestUpdateListByPatientExcludesFounding(t *testing.T) {
	db := setupRepoDB(t)
	hurts := NewHurtRepository(db)
	updates := NewUpdateRepository(db)
	ctx := context.Background()

	patient := seedPatient(t, db, "historian")
	bp := seedBodypart(t, db, "Wrist")

	base := time.Date(2026, 4, 10, 12, 0, 0, 0, time.UTC)
	hurt := &models.Hurt{PatientID: patient.ID, BodypartID: bp.ID, Name: "Tendonitis", AddedOn: base, IsActive: true}
	require.NoError(t, hurts.Create(ctx, hurt, &models.Update{AddedOn: base, PainLevel: 5, Notes: "founding"}, nil))

	for i := 1; i <= 2; i++ {
		require.NoError(t, updates.Create(ctx, &models.Update{
			HurtID:    hurt.ID,
			AddedOn:   base.Add(time.Duration(i) * 24 * time.Hour),
			PainLevel: 5 - i,
			Notes:     fmt.Sprintf("followup %d", i),
		}))
	}

	got, err := updates.ListByPatient(ctx, patient.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "followup 2", got[0].Notes)
	assert.Equal(t, "followup 1", got[1].Notes)

	first, err := updates.FirstForHurt(ctx, hurt.ID)
	require.NoError(t, err)
	assert.Equal(t, "founding", first.Notes)

	prev, err := updates.PreviousFor(ctx, got[0])
	require.NoError(t, err)
	require.NotNil(t, prev)
	assert.Equal(t, "followup 1", prev.Notes)

	prev, err = updates.PreviousFor(ctx, first)
	require.NoError(t, err)
	assert.Nil(t, prev)
}

func TestHurtListFiltersAndSearch(t *testing.T) {
	db := setupRepoDB(t)
	repo := NewHurtRepository(db)
	ctx := context.Background()

	patient := seedPatient(t, db, "searcher")
	knee := seedBodypart(t, db, "Knee")
	elbow := seedBodypart(t, db, "Elbow")

	base := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	active := &models.Hurt{PatientID: patient.ID, BodypartID: knee.ID, Name: "Jumper's knee", AddedOn: base, IsActive: true}
	require.NoError(t, repo.Create(ctx, active, &models.Update{AddedOn: base, PainLevel: 6, Notes: "after basketball"}, nil))

	healed := &models.Hurt{PatientID: patient.ID, BodypartID: elbow.ID, Name: "Tennis elbow", AddedOn: base.Add(time.Hour), IsActive: false}
	require.NoError(t, repo.Create(ctx, healed, &models.Update{AddedOn: base.Add(time.Hour), PainLevel: 3, Notes: "old injury"}, nil))

	all, err := repo.List(ctx, HurtFilter{PatientID: &patient.ID})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	activeOnly, err := repo.List(ctx, HurtFilter{PatientID: &patient.ID, ActiveOnly: true})
	require.NoError(t, err)
	require.Len(t, activeOnly, 1)
	assert.Equal(t, active.ID, activeOnly[0].ID)

	// matches the bodypart name, case-insensitively
	byPart, err := repo.List(ctx, HurtFilter{PatientID: &patient.ID, Search: "ELBOW"})
	require.NoError(t, err)
	require.Len(t, byPart, 1)
	assert.Equal(t, healed.ID, byPart[0].ID)

	// matches the founding update's notes
	byNotes, err := repo.List(ctx, HurtFilter{PatientID: &patient.ID, Search: "basketball"})
	require.NoError(t, err)
	require.Len(t, byNotes, 1)
	assert.Equal(t, active.ID, byNotes[0].ID)
}

func TestTreatmentUpdateReplacesLinks(t *testing.T) {
	db := setupRepoDB(t)
	repo := NewTreatmentRepository(db)
	ctx := context.Background()

	patient := seedPatient(t, db, "linker")
	tr := seedTreatment(t, db, patient, "PT exercises", false)
	require.NoError(t, db.Create(&models.TreatmentLink{TreatmentID: tr.ID, LinkText: "old", LinkURL: "https://example.com/old"}).Error)

	tr.Links = []models.TreatmentLink{
		{LinkText: "routine", LinkURL: "https://example.com/routine"},
		{LinkText: "video", LinkURL: "https://example.com/video"},
	}
	require.NoError(t, repo.Update(ctx, tr, nil))

	got, err := repo.GetByID(ctx, patient.ID, tr.ID)
	require.NoError(t, err)
	require.Len(t, got.Links, 2)
	texts := []string{got.Links[0].LinkText, got.Links[1].LinkText}
	assert.ElementsMatch(t, []string{"routine", "video"}, texts)
}
