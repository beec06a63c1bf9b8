// Package query parses list query parameters and applies pagination to
// in-memory collections. Filtering and sorting translate to repository
// clauses; pagination is a pure slice transform so counts and aggregates can
// be computed over the full filtered collection first.
package query

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 10
)

// ListParams holds every query parameter a list endpoint understands. Absent
// id filters are nil.
type ListParams struct {
	PatientID       *uint
	HurtID          *uint
	BodypartID      *uint
	TreatmentTypeID *uint
	// ShowInactive narrows to active hurts only when explicitly "false".
	ShowInactive bool
	Search       string
	OrderBy      string
	Direction    string
	Page         int
	PageSize     int
}

// ParseListParams extracts the shared list parameters from the request.
// Invalid or non-numeric page values fall back to the defaults.
func ParseListParams(c *fiber.Ctx) ListParams {
	return ListParams{
		PatientID:       parseIDParam(c, "patient_id"),
		HurtID:          parseIDParam(c, "hurt_id"),
		BodypartID:      parseIDParam(c, "bodypart_id"),
		TreatmentTypeID: parseIDParam(c, "treatmenttype_id"),
		ShowInactive:    c.Query("show_inactive") != "false",
		Search:          c.Query("q"),
		OrderBy:         c.Query("order_by"),
		Direction:       NormalizeDirection(c.Query("direction")),
		Page:            parsePositiveInt(c.Query("page"), DefaultPage),
		PageSize:        parsePositiveInt(c.Query("page_size"), DefaultPageSize),
	}
}

func parseIDParam(c *fiber.Ctx, name string) *uint {
	raw := c.Query(name)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return nil
	}
	id := uint(v)
	return &id
}

func parsePositiveInt(raw string, fallback int) int {
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return fallback
	}
	return v
}

// NormalizeDirection maps anything that is not "asc" to "desc".
func NormalizeDirection(direction string) string {
	if strings.EqualFold(direction, "asc") {
		return "asc"
	}
	return "desc"
}

// Paginate returns the 1-based page slice [(page-1)*size : page*size] of the
// collection together with the total count of the unpaginated collection.
func Paginate[T any](items []T, page, pageSize int) ([]T, int) {
	count := len(items)
	if page < 1 {
		page = DefaultPage
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}

	start := (page - 1) * pageSize
	if start >= count {
		return []T{}, count
	}
	end := start + pageSize
	if end > count {
		end = count
	}
	return items[start:end], count
}
