package query

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func paramsFor(t *testing.T, target string) ListParams {
	t.Helper()

	app := fiber.New()
	var got ListParams
	app.Get("/things", func(c *fiber.Ctx) error {
		got = ParseListParams(c)
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest("GET", target, nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	return got
}

func TestParseListParamsDefaults(t *testing.T) {
	p := paramsFor(t, "/things")

	assert.Nil(t, p.PatientID)
	assert.Nil(t, p.HurtID)
	assert.True(t, p.ShowInactive)
	assert.Equal(t, DefaultPage, p.Page)
	assert.Equal(t, DefaultPageSize, p.PageSize)
	assert.Equal(t, "desc", p.Direction)
}

func TestParseListParamsValues(t *testing.T) {
	p := paramsFor(t, "/things?patient_id=4&hurt_id=9&bodypart_id=2&treatmenttype_id=3&show_inactive=false&q=knee&order_by=name&direction=asc&page=3&page_size=25")

	require.NotNil(t, p.PatientID)
	assert.Equal(t, uint(4), *p.PatientID)
	require.NotNil(t, p.HurtID)
	assert.Equal(t, uint(9), *p.HurtID)
	require.NotNil(t, p.BodypartID)
	assert.Equal(t, uint(2), *p.BodypartID)
	require.NotNil(t, p.TreatmentTypeID)
	assert.Equal(t, uint(3), *p.TreatmentTypeID)
	assert.False(t, p.ShowInactive)
	assert.Equal(t, "knee", p.Search)
	assert.Equal(t, "name", p.OrderBy)
	assert.Equal(t, "asc", p.Direction)
	assert.Equal(t, 3, p.Page)
	assert.Equal(t, 25, p.PageSize)
}

func TestParseListParamsInvalidNumbers(t *testing.T) {
	p := paramsFor(t, "/things?page=banana&page_size=-2&patient_id=notanid")

	assert.Equal(t, DefaultPage, p.Page)
	assert.Equal(t, DefaultPageSize, p.PageSize)
	assert.Nil(t, p.PatientID)
}

func TestPaginate(t *testing.T) {
	items := make([]int, 25)
	for i := range items {
		items[i] = i + 1
	}

	page, count := Paginate(items, 2, 10)
	assert.Equal(t, 25, count)
	require.Len(t, page, 10)
	assert.Equal(t, 11, page[0])
	assert.Equal(t, 20, page[9])

	page, count = Paginate(items, 3, 10)
	assert.Equal(t, 25, count)
	assert.Len(t, page, 5)

	page, count = Paginate(items, 9, 10)
	assert.Equal(t, 25, count)
	assert.Empty(t, page)

	page, count = Paginate([]int{}, 1, 10)
	assert.Zero(t, count)
	assert.Empty(t, page)
}
