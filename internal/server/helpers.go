package server

import (
	"context"
	"errors"
	"time"

	"github.com/gavinschriver/whereithurts-server/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper.  Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// parseID extracts the :id route parameter as a positive uint.
// On failure it writes a 400 JSON response and returns errResponseWritten.
// Callers should check: if err != nil { return nil }
func (s *Server) parseID(c *fiber.Ctx) (uint, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid ID"))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// requester returns the authenticated patient id set by AuthRequired.
func requester(c *fiber.Ctx) uint {
	if pid, ok := c.Locals("patientID").(uint); ok {
		return pid
	}
	return 0
}

// isStaffByPatientID reports whether the patient's account carries the staff
// flag.
func (s *Server) isStaffByPatientID(ctx context.Context, patientID uint) (bool, error) {
	var patient models.Patient
	err := s.db.WithContext(ctx).Preload("User").First(&patient, patientID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return patient.User.IsStaff, nil
}

// respondForbidden writes the uniform 403 envelope for a denied check.
func respondForbidden(c *fiber.Ctx, reason string) error {
	return models.RespondWithError(c, fiber.StatusForbidden,
		models.NewAuthorizationError(reason))
}

// respondReferenceError maps id-resolution failures to 422 and everything else
// to 500.
func respondReferenceError(c *fiber.Ctx, err error) error {
	var missing *models.MissingReferenceError
	if errors.As(err, &missing) {
		return models.RespondWithError(c, fiber.StatusUnprocessableEntity, missing)
	}
	return models.RespondWithError(c, fiber.StatusInternalServerError,
		models.NewInternalError(err))
}

func nowUTC() time.Time {
	return time.Now().UTC()
}
