// Package seed provides database seeding utilities for development and
// testing.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/gavinschriver/whereithurts-server/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumPatients  int
	HurtsPerUser int
	ShouldClean  bool
}

var bodypartNames = []string{
	"Neck", "Shoulder", "Upper back", "Lower back", "Elbow", "Wrist",
	"Hand", "Hip", "Knee", "Ankle", "Foot", "Head",
}

var treatmentTypeNames = []string{
	"Stretching", "Strength", "Massage", "Ice", "Heat", "Rest",
	"Physical therapy", "Medication",
}

var hurtTemplates = []string{
	"Dull ache in %s", "Sharp pain near %s", "Stiff %s in the morning",
	"Tweaked %s lifting", "Sore %s after running", "Tight %s",
}

var treatmentTemplates = []string{
	"%s routine", "Daily %s", "%s before bed", "Post-workout %s",
	"%s with resistance band",
}

// Seeder builds demo entities and persists them to the database.
type Seeder struct {
	db *gorm.DB
	r  *rand.Rand
}

// NewSeeder creates a Seeder bound to the provided Gorm DB.
func NewSeeder(db *gorm.DB) *Seeder {
	gofakeit.Seed(time.Now().UnixNano())
	return &Seeder{
		db: db,
		//nolint:gosec // Weak random number generator is fine for seeding
		r: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// ClearAll wipes every domain table so a fresh seed starts from identity 1.
func (s *Seeder) ClearAll() error {
	log.Println("🗑️  Clearing existing data...")
	sql := `TRUNCATE TABLE hurt_healings, healing_treatments, hurt_treatments,
		treatment_links, treatments, healings, updates, hurts,
		treatment_types, bodyparts, patients, users RESTART IDENTITY CASCADE;`
	return s.db.Exec(sql).Error
}

// Run populates the database with reference data plus a mesh of patients,
// hurts, updates, treatments and healings.
func (s *Seeder) Run(opts Options) error {
	log.Printf("🌱 Starting database seeding with %d patients...", opts.NumPatients)

	if opts.ShouldClean {
		if err := s.ClearAll(); err != nil {
			log.Println("⚠️  Warning: Could not clear all existing data, but continuing anyway...")
		}
	}

	bodyparts, treatmentTypes, err := s.SeedReferenceData()
	if err != nil {
		return fmt.Errorf("failed to seed reference data: %w", err)
	}
	log.Printf("✓ %d bodyparts, %d treatment types available", len(bodyparts), len(treatmentTypes))

	patients, err := s.SeedPatients(opts.NumPatients)
	if err != nil {
		return fmt.Errorf("failed to create patients: %w", err)
	}
	log.Printf("✓ %d patients created", len(patients))

	hurtsPerUser := opts.HurtsPerUser
	if hurtsPerUser <= 0 {
		hurtsPerUser = 3
	}

	for _, patient := range patients {
		treatments, terr := s.seedTreatments(patient, bodyparts, treatmentTypes)
		if terr != nil {
			return fmt.Errorf("failed to create treatments for patient %d: %w", patient.ID, terr)
		}
		hurts, herr := s.seedHurts(patient, bodyparts, treatments, hurtsPerUser)
		if herr != nil {
			return fmt.Errorf("failed to create hurts for patient %d: %w", patient.ID, herr)
		}
		if err := s.seedHealings(patient, hurts, treatments); err != nil {
			return fmt.Errorf("failed to create healings for patient %d: %w", patient.ID, err)
		}
	}

	log.Println("🎉 Database seeding completed successfully!")
	log.Println("📧 All seeded patients have the password: password123")
	return nil
}

// SeedReferenceData upserts the bodypart and treatment-type catalogs.
func (s *Seeder) SeedReferenceData() ([]models.Bodypart, []models.TreatmentType, error) {
	bodyparts := make([]models.Bodypart, 0, len(bodypartNames))
	for _, name := range bodypartNames {
		var bp models.Bodypart
		err := s.db.Where(models.Bodypart{Name: name}).
			Attrs(models.Bodypart{
				HurtImage:      fmt.Sprintf("https://picsum.photos/seed/hurt-%s/200/200", name),
				TreatmentImage: fmt.Sprintf("https://picsum.photos/seed/treatment-%s/200/200", name),
			}).
			FirstOrCreate(&bp).Error
		if err != nil {
			return nil, nil, err
		}
		bodyparts = append(bodyparts, bp)
	}

	treatmentTypes := make([]models.TreatmentType, 0, len(treatmentTypeNames))
	for _, name := range treatmentTypeNames {
		var tt models.TreatmentType
		if err := s.db.Where(models.TreatmentType{Name: name}).FirstOrCreate(&tt).Error; err != nil {
			return nil, nil, err
		}
		treatmentTypes = append(treatmentTypes, tt)
	}

	return bodyparts, treatmentTypes, nil
}

// SeedPatients creates count user accounts each wrapped by a patient. A few
// fixed usernames come first so local logins stay predictable across reseeds.
func (s *Seeder) SeedPatients(count int) ([]*models.Patient, error) {
	patients := make([]*models.Patient, 0, count)
	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)

	baseUsers := []string{"gavin", "admin", "test"}
	for i, username := range baseUsers {
		if len(patients) >= count {
			break
		}
		user := models.User{
			Username:  username,
			Email:     fmt.Sprintf("%s@example.com", username),
			Password:  string(hashedPassword),
			FirstName: gofakeit.FirstName(),
			LastName:  gofakeit.LastName(),
			Bio:       gofakeit.Sentence(8),
			IsStaff:   i == 1,
		}
		patient, err := s.createPatient(&user)
		if err != nil {
			log.Printf("Failed to create base user %s: %v", username, err)
			continue
		}
		patients = append(patients, patient)
	}

	for i := len(patients); i < count; i++ {
		username := fmt.Sprintf("%s%d", gofakeit.Username(), gofakeit.Number(100, 999))
		user := models.User{
			Username:  username,
			Email:     fmt.Sprintf("%s@example.com", username),
			Password:  string(hashedPassword),
			FirstName: gofakeit.FirstName(),
			LastName:  gofakeit.LastName(),
			Bio:       gofakeit.Sentence(8),
		}
		patient, err := s.createPatient(&user)
		if err != nil {
			log.Printf("Failed to create user %s: %v", username, err)
			continue
		}
		patients = append(patients, patient)
	}

	return patients, nil
}

func (s *Seeder) createPatient(user *models.User) (*models.Patient, error) {
	if err := s.db.Create(user).Error; err != nil {
		return nil, err
	}
	patient := &models.Patient{UserID: user.ID}
	if err := s.db.Create(patient).Error; err != nil {
		return nil, err
	}
	return patient, nil
}

// pastTime returns a timestamp spread over the last maxDays days so lists and
// the seven-day snapshot have something to show.
func (s *Seeder) pastTime(maxDays int) time.Time {
	daysBack := s.r.Intn(maxDays)
	hoursBack := s.r.Intn(24)
	minsBack := s.r.Intn(60)
	return time.Now().UTC().Add(-time.Duration(daysBack)*24*time.Hour -
		time.Duration(hoursBack)*time.Hour - time.Duration(minsBack)*time.Minute)
}

func (s *Seeder) seedTreatments(patient *models.Patient, bodyparts []models.Bodypart, treatmentTypes []models.TreatmentType) ([]*models.Treatment, error) {
	count := s.r.Intn(3) + 1
	treatments := make([]*models.Treatment, 0, count)

	for i := 0; i < count; i++ {
		tt := treatmentTypes[s.r.Intn(len(treatmentTypes))]
		template := treatmentTemplates[s.r.Intn(len(treatmentTemplates))]

		treatment := &models.Treatment{
			AddedByID:       patient.ID,
			BodypartID:      bodyparts[s.r.Intn(len(bodyparts))].ID,
			TreatmenttypeID: tt.ID,
			Name:            fmt.Sprintf(template, tt.Name),
			Notes:           gofakeit.Sentence(12),
			Public:          s.r.Float32() < 0.4,
			AddedOn:         s.pastTime(60),
		}
		if s.r.Float32() < 0.3 {
			treatment.Links = []models.TreatmentLink{{
				LinkText: gofakeit.Sentence(3),
				LinkURL:  gofakeit.URL(),
			}}
		}
		if err := s.db.Create(treatment).Error; err != nil {
			return nil, err
		}
		treatments = append(treatments, treatment)
	}

	return treatments, nil
}

func (s *Seeder) seedHurts(patient *models.Patient, bodyparts []models.Bodypart, treatments []*models.Treatment, count int) ([]*models.Hurt, error) {
	hurts := make([]*models.Hurt, 0, count)

	for i := 0; i < count; i++ {
		bp := bodyparts[s.r.Intn(len(bodyparts))]
		addedOn := s.pastTime(45)

		hurt := &models.Hurt{
			PatientID:  patient.ID,
			BodypartID: bp.ID,
			Name:       fmt.Sprintf(hurtTemplates[s.r.Intn(len(hurtTemplates))], bp.Name),
			AddedOn:    addedOn,
			IsActive:   s.r.Float32() < 0.7,
		}
		if err := s.db.Create(hurt).Error; err != nil {
			return nil, err
		}

		// founding update plus a handful of follow-ups
		pain := s.r.Intn(8) + 2
		followUps := s.r.Intn(4)
		for u := 0; u <= followUps; u++ {
			update := &models.Update{
				HurtID:    hurt.ID,
				AddedOn:   addedOn.Add(time.Duration(u) * 36 * time.Hour),
				PainLevel: clampPain(pain + s.r.Intn(5) - 2),
				Notes:     gofakeit.Sentence(10),
			}
			if err := s.db.Create(update).Error; err != nil {
				return nil, err
			}
		}

		if len(treatments) > 0 && s.r.Float32() < 0.6 {
			bridge := &models.HurtTreatment{
				HurtID:      hurt.ID,
				TreatmentID: treatments[s.r.Intn(len(treatments))].ID,
			}
			if err := s.db.Create(bridge).Error; err != nil {
				return nil, err
			}
		}
		hurts = append(hurts, hurt)
	}

	return hurts, nil
}

func (s *Seeder) seedHealings(patient *models.Patient, hurts []*models.Hurt, treatments []*models.Treatment) error {
	count := s.r.Intn(4) + 1

	for i := 0; i < count; i++ {
		healing := &models.Healing{
			PatientID: patient.ID,
			Notes:     gofakeit.Sentence(10),
			Duration:  (s.r.Intn(12) + 1) * 300,
			Intensity: s.r.Intn(101),
			AddedOn:   s.pastTime(14),
		}
		if err := s.db.Create(healing).Error; err != nil {
			return err
		}

		if len(hurts) > 0 {
			bridge := &models.HurtHealing{
				HurtID:    hurts[s.r.Intn(len(hurts))].ID,
				HealingID: healing.ID,
			}
			if err := s.db.Create(bridge).Error; err != nil {
				return err
			}
		}
		if len(treatments) > 0 && s.r.Float32() < 0.5 {
			bridge := &models.HealingTreatment{
				HealingID:   healing.ID,
				TreatmentID: treatments[s.r.Intn(len(treatments))].ID,
			}
			if err := s.db.Create(bridge).Error; err != nil {
				return err
			}
		}
	}

	return nil
}

func clampPain(level int) int {
	if level < 1 {
		return 1
	}
	if level > 10 {
		return 10
	}
	return level
}
