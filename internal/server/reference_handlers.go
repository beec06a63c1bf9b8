package server

import (
	"github.com/gavinschriver/whereithurts-server/internal/models"
	"github.com/gavinschriver/whereithurts-server/internal/serializer"

	"github.com/gofiber/fiber/v2"
)

// GetBodyparts handles GET /bodyparts
func (s *Server) GetBodyparts(c *fiber.Ctx) error {
	bodyparts, err := s.referenceRepo.ListBodyparts(c.Context())
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	views := make([]serializer.BodypartView, 0, len(bodyparts))
	for _, b := range bodyparts {
		views = append(views, serializer.NewBodypartView(b))
	}
	return c.JSON(fiber.Map{"bodyparts": views})
}

// GetTreatmentTypes handles GET /treatmenttypes
func (s *Server) GetTreatmentTypes(c *fiber.Ctx) error {
	types, err := s.referenceRepo.ListTreatmentTypes(c.Context())
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	views := make([]serializer.TreatmentTypeView, 0, len(types))
	for _, t := range types {
		views = append(views, serializer.NewTreatmentTypeView(t))
	}
	return c.JSON(fiber.Map{"treatmenttypes": views})
}
