package server

import (
	"errors"

	"github.com/gavinschriver/whereithurts-server/internal/authz"
	"github.com/gavinschriver/whereithurts-server/internal/models"
	"github.com/gavinschriver/whereithurts-server/internal/query"
	"github.com/gavinschriver/whereithurts-server/internal/serializer"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type updateRequest struct {
	HurtID    uint   `json:"hurt_id"`
	PainLevel int    `json:"pain_level"`
	Notes     string `json:"notes"`
}

// GetUpdates handles GET /updates?hurt_id=N. The hurt's updates are visible to
// staff and to the hurt's owner, oldest first.
func (s *Server) GetUpdates(c *fiber.Ctx) error {
	requesterID := requester(c)
	params := query.ParseListParams(c)

	if params.HurtID == nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Field `hurt_id` is required."))
	}

	hurt, err := s.hurtRepo.GetByID(c.Context(), *params.HurtID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.RespondWithError(c, fiber.StatusNotFound,
				models.NewNotFoundError("Hurt", *params.HurtID))
		}
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	staff, err := s.isStaffByPatientID(c.Context(), requesterID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if !staff && !authz.Owns(requesterID, hurt.PatientID) {
		return respondForbidden(c, "only staff or the patient who owns this hurt can access its updates")
	}

	updates, err := s.updateRepo.ListByHurt(c.Context(), hurt.ID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	views := make([]serializer.UpdateView, 0, len(updates))
	var prev *models.Update
	for _, u := range updates {
		views = append(views,
			serializer.NewUpdateView(u, hurt.FirstUpdateID, prev, requesterID, hurt.PatientID))
		prev = u
	}

	page, count := query.Paginate(views, params.Page, params.PageSize)

	return c.JSON(fiber.Map{
		"updates": page,
		"count":   count,
	})
}

// GetUpdate handles GET /updates/:id
func (s *Server) GetUpdate(c *fiber.Ctx) error {
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}
	requesterID := requester(c)

	update, err := s.updateRepo.GetByID(c.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.RespondWithError(c, fiber.StatusNotFound,
				models.NewNotFoundError("Update", id))
		}
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	first, err := s.updateRepo.FirstForHurt(c.Context(), update.HurtID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	prev, err := s.updateRepo.PreviousFor(c.Context(), update)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	var ownerID uint
	if update.Hurt != nil {
		ownerID = update.Hurt.PatientID
	}
	return c.JSON(serializer.NewUpdateView(update, first.ID, prev, requesterID, ownerID))
}

// CreateUpdate handles POST /updates. Only the hurt's owner can log a
// check-in against it.
func (s *Server) CreateUpdate(c *fiber.Ctx) error {
	requesterID := requester(c)

	var req updateRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.HurtID == 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Field `hurt_id` is required."))
	}

	hurt, err := s.hurtRepo.GetByID(c.Context(), req.HurtID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.RespondWithError(c, fiber.StatusUnprocessableEntity,
				models.NewMissingReferenceError("hurt"))
		}
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	if decision := authz.CanMutate(requesterID, hurt.PatientID, "hurt"); !decision.Allowed {
		return respondForbidden(c, decision.Reason)
	}

	update := &models.Update{
		HurtID:    hurt.ID,
		AddedOn:   nowUTC(),
		PainLevel: req.PainLevel,
		Notes:     req.Notes,
	}
	if err := s.updateRepo.Create(c.Context(), update); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	prev, err := s.updateRepo.PreviousFor(c.Context(), update)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.Status(fiber.StatusCreated).JSON(
		serializer.NewUpdateView(update, hurt.FirstUpdateID, prev, requesterID, hurt.PatientID))
}

// UpdateUpdate handles PUT /updates/:id, editing notes and pain_level.
func (s *Server) UpdateUpdate(c *fiber.Ctx) error {
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}

	update, err := s.updateRepo.GetByID(c.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.RespondWithError(c, fiber.StatusNotFound,
				models.NewNotFoundError("Update", id))
		}
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	var ownerID uint
	if update.Hurt != nil {
		ownerID = update.Hurt.PatientID
	}
	if decision := authz.CanMutate(requester(c), ownerID, "update"); !decision.Allowed {
		return respondForbidden(c, decision.Reason)
	}

	var req updateRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	update.PainLevel = req.PainLevel
	update.Notes = req.Notes
	if err := s.updateRepo.Save(c.Context(), update); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// DeleteUpdate handles DELETE /updates/:id. A hurt always keeps its founding
// update; deleting it on its own is refused.
func (s *Server) DeleteUpdate(c *fiber.Ctx) error {
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}

	update, err := s.updateRepo.GetByID(c.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.RespondWithError(c, fiber.StatusNotFound,
				models.NewNotFoundError("Update", id))
		}
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	var ownerID uint
	if update.Hurt != nil {
		ownerID = update.Hurt.PatientID
	}
	if decision := authz.CanMutate(requester(c), ownerID, "update"); !decision.Allowed {
		return respondForbidden(c, decision.Reason)
	}

	first, err := s.updateRepo.FirstForHurt(c.Context(), update.HurtID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if first.ID == update.ID {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Cannot delete the first update for a hurt"))
	}

	if err := s.updateRepo.Delete(c.Context(), id); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
