package params

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type QueryParams struct {
	PageNumber int
	PageSize   int
}

// FromContext reads page/page_size query parameters with sane defaults.
func FromContext(c echo.Context) QueryParams {
	p := QueryParams{PageNumber: 1, PageSize: DefaultPageSize}

	if raw := c.QueryParam("page"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			p.PageNumber = n
		}
	}
	if raw := c.QueryParam("page_size"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			p.PageSize = n
		}
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	return p
}
