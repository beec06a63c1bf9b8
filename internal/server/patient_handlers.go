package server

import (
	"errors"

	"github.com/gavinschriver/whereithurts-server/internal/authz"
	"github.com/gavinschriver/whereithurts-server/internal/models"
	"github.com/gavinschriver/whereithurts-server/internal/repository"
	"github.com/gavinschriver/whereithurts-server/internal/serializer"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// GetPatient handles GET /patients/:id. The profile embeds the patient's
// collections and a recent-activity feed of their five newest records.
func (s *Server) GetPatient(c *fiber.Ctx) error {
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}
	requesterID := requester(c)

	patient, err := s.patientRepo.GetByID(c.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.RespondWithError(c, fiber.StatusNotFound,
				models.NewNotFoundError("Patient", id))
		}
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	hurts, err := s.hurtRepo.ListByPatient(c.Context(), id)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	healings, err := s.healingRepo.ListByPatient(c.Context(), id)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	treatments, err := s.treatmentRepo.List(c.Context(), requesterID, repository.TreatmentFilter{PatientID: &id})
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	updates, err := s.updateRepo.ListByPatient(c.Context(), id)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	// follow-up updates are never founding ones, so each view only needs its
	// predecessor for the difference label.
	updateViews := make([]serializer.UpdateView, 0, len(updates))
	for _, u := range updates {
		prev, prevErr := s.updateRepo.PreviousFor(c.Context(), u)
		if prevErr != nil {
			return models.RespondWithError(c, fiber.StatusInternalServerError, prevErr)
		}
		updateViews = append(updateViews, serializer.NewUpdateView(u, 0, prev, requesterID, id))
	}

	profile := serializer.NewPatientProfile(patient, requesterID)
	profile.Hurts = serializer.NewHurtViews(hurts, requesterID)
	profile.Healings = serializer.NewHealingViews(healings, requesterID)
	profile.Treatments = serializer.NewTreatmentViews(treatments, requesterID)
	profile.Updates = updateViews
	profile.RecentActivity = serializer.BuildRecentActivity(updates, hurts, healings, treatments)

	return c.JSON(profile)
}

// GetSnapshot handles GET /profiles/:id/snapshot: the patient's last seven
// days of healings, the treatments linked to them, the hurts added in the
// window, and the summed healing time. Staff or the patient only.
func (s *Server) GetSnapshot(c *fiber.Ctx) error {
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}
	requesterID := requester(c)

	patient, err := s.patientRepo.GetByID(c.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.RespondWithError(c, fiber.StatusNotFound,
				models.NewNotFoundError("Patient", id))
		}
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	staff, err := s.isStaffByPatientID(c.Context(), requesterID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if !staff && !authz.Owns(requesterID, patient.ID) {
		return respondForbidden(c, "only staff or the patient with this id can access this snapshot")
	}

	since := nowUTC().Add(-serializer.SnapshotWindow)

	healings, err := s.healingRepo.ListRecentByPatient(c.Context(), id, since)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	healingIDs := make([]uint, 0, len(healings))
	for _, h := range healings {
		healingIDs = append(healingIDs, h.ID)
	}

	treatments, err := s.treatmentRepo.ListLinkedToHealings(c.Context(), requesterID, healingIDs)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	hurts, err := s.hurtRepo.ListRecentByPatient(c.Context(), id, since)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(serializer.BuildSnapshot(id, healings, treatments, hurts))
}
