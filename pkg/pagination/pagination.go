package pagination

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Params holds pagination parameters extracted from a request.
type Params struct {
	Limit  int
	Offset int
}

// FromContext reads limit/offset, or the FHIR-style _count/_offset, clamping
// the limit to MaxLimit.
func FromContext(c echo.Context) Params {
	limit := firstInt(c, "_count", "limit")
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	offset := firstInt(c, "_offset", "offset")
	if offset < 0 {
		offset = 0
	}
	return Params{Limit: limit, Offset: offset}
}

func firstInt(c echo.Context, names ...string) int {
	for _, name := range names {
		if n, err := strconv.Atoi(c.QueryParam(name)); err == nil && n != 0 {
			return n
		}
	}
	return 0
}

// Response wraps a paginated API response.
type Response struct {
	Data    interface{} `json:"data"`
	Total   int         `json:"total"`
	Limit   int         `json:"limit"`
	Offset  int         `json:"offset"`
	HasMore bool        `json:"has_more"`
}

func NewResponse(data interface{}, total int, p Params) *Response {
	return &Response{
		Data:    data,
		Total:   total,
		Limit:   p.Limit,
		Offset:  p.Offset,
		HasMore: p.HasNext(total),
	}
}

// HasNext reports whether results remain after the current page.
func (p Params) HasNext(total int) bool {
	return p.Offset+p.Limit < total
}
