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

type treatmentLinkRequest struct {
	LinkText string `json:"linktext"`
	LinkURL  string `json:"linkurl"`
}

type treatmentRequest struct {
	Name            string                 `json:"name"`
	BodypartID      uint                   `json:"bodypart_id"`
	TreatmenttypeID uint                   `json:"treatmenttype_id"`
	Notes           string                 `json:"notes"`
	Public          bool                   `json:"public"`
	Links           []treatmentLinkRequest `json:"treatment_links"`
	HurtIDs         []uint                 `json:"hurt_ids"`
}

type tagHurtRequest struct {
	HurtID uint `json:"hurt_id"`
}

// GetTreatments handles GET /treatments. The list is always narrowed to
// treatments the requester owns plus public ones; no staff gate applies.
func (s *Server) GetTreatments(c *fiber.Ctx) error {
	requesterID := requester(c)
	params := query.ParseListParams(c)

	treatments, err := s.treatmentRepo.List(c.Context(), requesterID, repository.TreatmentFilter{
		PatientID:       params.PatientID,
		HurtID:          params.HurtID,
		BodypartID:      params.BodypartID,
		TreatmentTypeID: params.TreatmentTypeID,
		Search:          params.Search,
		OrderBy:         params.OrderBy,
		Direction:       params.Direction,
	})
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	page, count := query.Paginate(treatments, params.Page, params.PageSize)

	return c.JSON(fiber.Map{
		"treatments": serializer.NewTreatmentViews(page, requesterID),
		"count":      count,
	})
}

// GetTreatment handles GET /treatments/:id. A private treatment owned by
// someone else is indistinguishable from a missing one.
func (s *Server) GetTreatment(c *fiber.Ctx) error {
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}

	treatment, err := s.treatmentRepo.GetByID(c.Context(), requester(c), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.RespondWithError(c, fiber.StatusNotFound,
				models.NewNotFoundError("Treatment", id))
		}
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return s.respondTreatmentDetail(c, fiber.StatusOK, treatment)
}

// CreateTreatment handles POST /treatments
func (s *Server) CreateTreatment(c *fiber.Ctx) error {
	requesterID := requester(c)

	var req treatmentRequest
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
	if _, err := s.referenceRepo.GetTreatmentType(c.Context(), req.TreatmenttypeID); err != nil {
		return respondReferenceError(c, err)
	}
	if _, err := s.hurtRepo.ResolveMany(c.Context(), req.HurtIDs); err != nil {
		return respondReferenceError(c, err)
	}

	treatment := &models.Treatment{
		AddedByID:       requesterID,
		BodypartID:      req.BodypartID,
		TreatmenttypeID: req.TreatmenttypeID,
		Name:            req.Name,
		Notes:           req.Notes,
		Public:          req.Public,
		AddedOn:         nowUTC(),
		Links:           linkModels(req.Links),
	}

	if err := s.treatmentRepo.Create(c.Context(), treatment, req.HurtIDs); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	created, err := s.treatmentRepo.GetByID(c.Context(), requesterID, treatment.ID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return s.respondTreatmentDetail(c, fiber.StatusCreated, created)
}

// UpdateTreatment handles PUT /treatments/:id. Links are replaced wholesale;
// the hurt set is reconciled against hurt_ids.
func (s *Server) UpdateTreatment(c *fiber.Ctx) error {
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}
	requesterID := requester(c)

	treatment, err := s.treatmentRepo.GetByID(c.Context(), requesterID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.RespondWithError(c, fiber.StatusNotFound,
				models.NewNotFoundError("Treatment", id))
		}
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	if decision := authz.CanMutate(requesterID, treatment.AddedByID, "treatment"); !decision.Allowed {
		return respondForbidden(c, decision.Reason)
	}

	var req treatmentRequest
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
	if _, err := s.referenceRepo.GetTreatmentType(c.Context(), req.TreatmenttypeID); err != nil {
		return respondReferenceError(c, err)
	}
	if _, err := s.hurtRepo.ResolveMany(c.Context(), req.HurtIDs); err != nil {
		return respondReferenceError(c, err)
	}

	treatment.Name = req.Name
	treatment.Notes = req.Notes
	treatment.Public = req.Public
	treatment.BodypartID = req.BodypartID
	treatment.TreatmenttypeID = req.TreatmenttypeID
	treatment.Links = linkModels(req.Links)

	if err := s.treatmentRepo.Update(c.Context(), treatment, req.HurtIDs); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// DeleteTreatment handles DELETE /treatments/:id
func (s *Server) DeleteTreatment(c *fiber.Ctx) error {
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}
	requesterID := requester(c)

	treatment, err := s.treatmentRepo.GetByID(c.Context(), requesterID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.RespondWithError(c, fiber.StatusNotFound,
				models.NewNotFoundError("Treatment", id))
		}
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	if decision := authz.CanMutate(requesterID, treatment.AddedByID, "treatment"); !decision.Allowed {
		return respondForbidden(c, decision.Reason)
	}

	if err := s.treatmentRepo.Delete(c.Context(), id); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// TagHurt handles POST /treatments/:id/tag_hurt. Tagging the same hurt twice
// is a no-op; the requester must own the hurt being tagged.
func (s *Server) TagHurt(c *fiber.Ctx) error {
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}
	requesterID := requester(c)

	treatment, err := s.treatmentRepo.GetByID(c.Context(), requesterID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.RespondWithError(c, fiber.StatusNotFound,
				models.NewNotFoundError("Treatment", id))
		}
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	hurt, werr := s.tagTarget(c)
	if werr != nil {
		return nil
	}
	if decision := authz.CanMutate(requesterID, hurt.PatientID, "hurt"); !decision.Allowed {
		return respondForbidden(c, decision.Reason)
	}

	if err := s.treatmentRepo.TagHurt(c.Context(), treatment.ID, hurt.ID); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return s.respondTreatmentDetail(c, fiber.StatusCreated, treatment)
}

// UntagHurt handles DELETE /treatments/:id/tag_hurt. Untagging an absent link
// is a no-op.
func (s *Server) UntagHurt(c *fiber.Ctx) error {
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}
	requesterID := requester(c)

	treatment, err := s.treatmentRepo.GetByID(c.Context(), requesterID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.RespondWithError(c, fiber.StatusNotFound,
				models.NewNotFoundError("Treatment", id))
		}
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	hurt, werr := s.tagTarget(c)
	if werr != nil {
		return nil
	}
	if decision := authz.CanMutate(requesterID, hurt.PatientID, "hurt"); !decision.Allowed {
		return respondForbidden(c, decision.Reason)
	}

	if err := s.treatmentRepo.UntagHurt(c.Context(), treatment.ID, hurt.ID); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// tagTarget parses the tag_hurt body and resolves the hurt. On failure the
// response is already written and errResponseWritten is returned.
func (s *Server) tagTarget(c *fiber.Ctx) (*models.Hurt, error) {
	var req tagHurtRequest
	if err := c.BodyParser(&req); err != nil || req.HurtID == 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Field `hurt_id` is required."))
		return nil, errResponseWritten
	}

	hurt, err := s.hurtRepo.GetByID(c.Context(), req.HurtID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			_ = models.RespondWithError(c, fiber.StatusUnprocessableEntity,
				models.NewMissingReferenceError("hurt"))
		} else {
			_ = models.RespondWithError(c, fiber.StatusInternalServerError, err)
		}
		return nil, errResponseWritten
	}
	return hurt, nil
}

// respondTreatmentDetail writes the full treatment payload with its tagged
// hurts.
func (s *Server) respondTreatmentDetail(c *fiber.Ctx, status int, treatment *models.Treatment) error {
	requesterID := requester(c)

	hurts, err := s.hurtRepo.ListByTreatment(c.Context(), treatment.ID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.Status(status).JSON(serializer.TreatmentDetail{
		TreatmentView: serializer.NewTreatmentView(treatment, requesterID),
		Hurts:         serializer.NewHurtViews(hurts, requesterID),
	})
}

func linkModels(links []treatmentLinkRequest) []models.TreatmentLink {
	out := make([]models.TreatmentLink, 0, len(links))
	for _, l := range links {
		out = append(out, models.TreatmentLink{LinkText: l.LinkText, LinkURL: l.LinkURL})
	}
	return out
}
