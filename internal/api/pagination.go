package api

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// parsePagination parses page and limit from query parameters.
// Invalid or missing values yield 0, which the store replaces with its
// defaults (page 1, limit 20); the store also caps limit.
func parsePagination(c echo.Context) (page, limit int) {
	if p := c.QueryParam("page"); p != "" {
		if parsed, err := strconv.Atoi(p); err == nil && parsed > 0 {
			page = parsed
		}
	}
	if l := c.QueryParam("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	return page, limit
}

// pathID reads a numeric path parameter.
func pathID(c echo.Context, name string) (uint, error) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 0)
	if err != nil || id == 0 {
		return 0, BadRequestError("Invalid ID format", name+" must be a positive integer. Got: "+raw)
	}
	return uint(id), nil
}

// queryID reads an optional numeric query parameter; nil when absent.
func queryID(c echo.Context, name string) (*uint, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseUint(raw, 10, 0)
	if err != nil || v == 0 {
		return nil, BadRequestError("Invalid query parameter", name+" must be a positive integer. Got: "+raw)
	}
	u := uint(v)
	return &u, nil
}
