package server

import (
	"errors"

	"github.com/gavinschriver/whereithurts-server/internal/authz"
	"github.com/gavinschriver/whereithurts-server/internal/models"
	"github.com/gavinschriver/whereithurts-server/internal/query"
	"github.com/gavinschriver/whereithurts-server/internal/repository"
	"github.com/gavinschriver/whereithurts-server/internal/serializer"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type healingRequest struct {
	Notes        string `json:"notes"`
	Duration     int    `json:"duration"`
	Intensity    int    `json:"intensity"`
	TreatmentIDs []uint `json:"treatment_ids"`
	HurtIDs      []uint `json:"hurt_ids"`
}

// GetHealings handles GET /healings. The response reports count and
// total_healing_time over the whole filtered collection, not just the
// returned page.
func (s *Server) GetHealings(c *fiber.Ctx) error {
	requesterID := requester(c)
	staff, err := s.isStaffByPatientID(c.Context(), requesterID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	params := query.ParseListParams(c)
	if decision := authz.CanListPatientScoped(requesterID, staff, params.PatientID, "healings"); !decision.Allowed {
		return respondForbidden(c, decision.Reason)
	}

	healings, err := s.healingRepo.List(c.Context(), repository.HealingFilter{
		PatientID: params.PatientID,
		HurtID:    params.HurtID,
		Search:    params.Search,
		OrderBy:   params.OrderBy,
		Direction: params.Direction,
	})
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	totalHealingTime := serializer.TotalHealingTime(healings)
	page, count := query.Paginate(healings, params.Page, params.PageSize)

	return c.JSON(fiber.Map{
		"healings":           serializer.NewHealingViews(page, requesterID),
		"count":              count,
		"total_healing_time": totalHealingTime,
	})
}

// GetHealing handles GET /healings/:id
func (s *Server) GetHealing(c *fiber.Ctx) error {
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}

	healing, err := s.healingRepo.GetByID(c.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.RespondWithError(c, fiber.StatusNotFound,
				models.NewNotFoundError("Healing", id))
		}
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return s.respondHealingDetail(c, fiber.StatusOK, healing)
}

// CreateHealing handles POST /healings. Every submitted treatment and hurt id
// is resolved before any row is written.
func (s *Server) CreateHealing(c *fiber.Ctx) error {
	requesterID := requester(c)

	var req healingRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if _, err := s.treatmentRepo.ResolveMany(c.Context(), req.TreatmentIDs); err != nil {
		return respondReferenceError(c, err)
	}
	if _, err := s.hurtRepo.ResolveMany(c.Context(), req.HurtIDs); err != nil {
		return respondReferenceError(c, err)
	}

	healing := &models.Healing{
		PatientID: requesterID,
		Notes:     req.Notes,
		Duration:  req.Duration,
		Intensity: req.Intensity,
		AddedOn:   nowUTC(),
	}
	if err := healing.Validate(); err != nil {
		return models.RespondWithReason(c, fiber.StatusBadRequest, err.Error())
	}

	if err := s.healingRepo.Create(c.Context(), healing, req.TreatmentIDs, req.HurtIDs); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	created, err := s.healingRepo.GetByID(c.Context(), healing.ID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return s.respondHealingDetail(c, fiber.StatusCreated, created)
}

// UpdateHealing handles PUT /healings/:id
func (s *Server) UpdateHealing(c *fiber.Ctx) error {
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}

	healing, err := s.healingRepo.GetByID(c.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.RespondWithError(c, fiber.StatusNotFound,
				models.NewNotFoundError("Healing", id))
		}
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	if decision := authz.CanMutate(requester(c), healing.PatientID, "healing"); !decision.Allowed {
		return respondForbidden(c, decision.Reason)
	}

	var req healingRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if _, err := s.treatmentRepo.ResolveMany(c.Context(), req.TreatmentIDs); err != nil {
		return respondReferenceError(c, err)
	}
	if _, err := s.hurtRepo.ResolveMany(c.Context(), req.HurtIDs); err != nil {
		return respondReferenceError(c, err)
	}

	healing.Notes = req.Notes
	healing.Duration = req.Duration
	healing.Intensity = req.Intensity
	if err := healing.Validate(); err != nil {
		return models.RespondWithReason(c, fiber.StatusBadRequest, err.Error())
	}

	if err := s.healingRepo.Update(c.Context(), healing, req.TreatmentIDs, req.HurtIDs); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// DeleteHealing handles DELETE /healings/:id
func (s *Server) DeleteHealing(c *fiber.Ctx) error {
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}

	healing, err := s.healingRepo.GetByID(c.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.RespondWithError(c, fiber.StatusNotFound,
				models.NewNotFoundError("Healing", id))
		}
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	if decision := authz.CanMutate(requester(c), healing.PatientID, "healing"); !decision.Allowed {
		return respondForbidden(c, decision.Reason)
	}

	if err := s.healingRepo.Delete(c.Context(), id); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// respondHealingDetail writes the full healing payload with its associated
// treatments and hurts.
func (s *Server) respondHealingDetail(c *fiber.Ctx, status int, healing *models.Healing) error {
	requesterID := requester(c)

	treatments, err := s.treatmentRepo.ListByHealing(c.Context(), requesterID, healing.ID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	hurts, err := s.hurtRepo.ListByHealing(c.Context(), healing.ID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.Status(status).JSON(serializer.HealingDetail{
		HealingView: serializer.NewHealingView(healing, requesterID),
		Treatments:  serializer.NewTreatmentViews(treatments, requesterID),
		Hurts:       serializer.NewHurtViews(hurts, requesterID),
	})
}
