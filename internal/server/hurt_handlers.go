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

type hurtRequest struct {
	Name         string `json:"name"`
	BodypartID   uint   `json:"bodypart_id"`
	IsActive     bool   `json:"is_active"`
	PainLevel    int    `json:"pain_level"`
	Notes        string `json:"notes"`
	TreatmentIDs []uint `json:"treatment_ids"`
}

// GetHurts handles GET /hurts. show_inactive=false narrows to active hurts;
// q matches name, founding-update notes and bodypart name.
func (s *Server) GetHurts(c *fiber.Ctx) error {
	requesterID := requester(c)
	staff, err := s.isStaffByPatientID(c.Context(), requesterID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	params := query.ParseListParams(c)
	if decision := authz.CanListPatientScoped(requesterID, staff, params.PatientID, "hurts"); !decision.Allowed {
		return respondForbidden(c, decision.Reason)
	}

	hurts, err := s.hurtRepo.List(c.Context(), repository.HurtFilter{
		PatientID:  params.PatientID,
		BodypartID: params.BodypartID,
		ActiveOnly: !params.ShowInactive,
		Search:     params.Search,
		OrderBy:    params.OrderBy,
		Direction:  params.Direction,
	})
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	page, count := query.Paginate(hurts, params.Page, params.PageSize)

	return c.JSON(fiber.Map{
		"hurts": serializer.NewHurtViews(page, requesterID),
		"count": count,
	})
}

// GetHurt handles GET /hurts/:id. The payload embeds the hurt's treatments,
// updates, healings and a merged history timeline; order_history=oldest
// reverses the default newest-first order.
func (s *Server) GetHurt(c *fiber.Ctx) error {
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}
	requesterID := requester(c)

	hurt, err := s.hurtRepo.GetByID(c.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.RespondWithError(c, fiber.StatusNotFound,
				models.NewNotFoundError("Hurt", id))
		}
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	treatments, err := s.treatmentRepo.ListByHurt(c.Context(), requesterID, id)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	updates, err := s.updateRepo.ListByHurt(c.Context(), id)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	healings, err := s.healingRepo.ListByHurt(c.Context(), id)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	// updates come back oldest first, so each one's predecessor is the
	// previous element.
	updateViews := make([]serializer.UpdateView, 0, len(updates))
	var prev *models.Update
	for _, u := range updates {
		updateViews = append(updateViews,
			serializer.NewUpdateView(u, hurt.FirstUpdateID, prev, requesterID, hurt.PatientID))
		prev = u
	}

	oldestFirst := c.Query("order_history") == "oldest"
	history := serializer.BuildHistory(hurt, updates, healings, oldestFirst)

	return c.JSON(serializer.HurtDetail{
		HurtView:   serializer.NewHurtView(hurt, requesterID),
		Treatments: serializer.NewTreatmentViews(treatments, requesterID),
		Updates:    updateViews,
		Healings:   serializer.NewHealingViews(healings, requesterID),
		History:    history,
	})
}

// CreateHurt handles POST /hurts. The founding update is created from
// pain_level/notes in the same transaction as the hurt itself.
func (s *Server) CreateHurt(c *fiber.Ctx) error {
	requesterID := requester(c)

	var req hurtRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.Name == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Field `name` is required."))
	}

	if _, err := s.referenceRepo.GetBodypart(c.Context(), req.BodypartID); err != nil {
		return respondReferenceError(c, err)
	}
	if _, err := s.treatmentRepo.ResolveMany(c.Context(), req.TreatmentIDs); err != nil {
		return respondReferenceError(c, err)
	}

	now := nowUTC()
	hurt := &models.Hurt{
		PatientID:  requesterID,
		BodypartID: req.BodypartID,
		Name:       req.Name,
		AddedOn:    now,
		IsActive:   req.IsActive,
	}
	firstUpdate := &models.Update{
		AddedOn:   now,
		PainLevel: req.PainLevel,
		Notes:     req.Notes,
	}

	if err := s.hurtRepo.Create(c.Context(), hurt, firstUpdate, req.TreatmentIDs); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	created, err := s.hurtRepo.GetByID(c.Context(), hurt.ID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.Status(fiber.StatusCreated).JSON(serializer.NewHurtView(created, requesterID))
}

// UpdateHurt handles PUT /hurts/:id. Besides the hurt's own fields it rewrites
// the founding update's pain_level/notes and reconciles the treatment set.
func (s *Server) UpdateHurt(c *fiber.Ctx) error {
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}

	hurt, err := s.hurtRepo.GetByID(c.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.RespondWithError(c, fiber.StatusNotFound,
				models.NewNotFoundError("Hurt", id))
		}
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	if decision := authz.CanMutate(requester(c), hurt.PatientID, "hurt"); !decision.Allowed {
		return respondForbidden(c, decision.Reason)
	}

	var req hurtRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.Name == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Field `name` is required."))
	}

	if _, err := s.referenceRepo.GetBodypart(c.Context(), req.BodypartID); err != nil {
		return respondReferenceError(c, err)
	}
	if _, err := s.treatmentRepo.ResolveMany(c.Context(), req.TreatmentIDs); err != nil {
		return respondReferenceError(c, err)
	}

	firstUpdate, err := s.updateRepo.FirstForHurt(c.Context(), id)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	firstUpdate.PainLevel = req.PainLevel
	firstUpdate.Notes = req.Notes

	hurt.Name = req.Name
	hurt.IsActive = req.IsActive
	hurt.BodypartID = req.BodypartID

	if err := s.hurtRepo.Update(c.Context(), hurt, firstUpdate, req.TreatmentIDs); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// DeleteHurt handles DELETE /hurts/:id. Deleting a hurt removes its updates
// and bridge rows with it.
func (s *Server) DeleteHurt(c *fiber.Ctx) error {
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}

	hurt, err := s.hurtRepo.GetByID(c.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.RespondWithError(c, fiber.StatusNotFound,
				models.NewNotFoundError("Hurt", id))
		}
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	if decision := authz.CanMutate(requester(c), hurt.PatientID, "hurt"); !decision.Allowed {
		return respondForbidden(c, decision.Reason)
	}

	if err := s.hurtRepo.Delete(c.Context(), id); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
