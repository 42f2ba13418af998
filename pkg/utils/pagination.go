package utils

import (
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

const (
	DefaultLimit = 100
	MaxLimit     = 500
)

// GetLimitParam reads the "limit" query parameter, clamped to (0, MaxLimit].
func GetLimitParam(c echo.Context) int {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// GetListParam splits a comma separated query parameter, dropping blank entries.
func GetListParam(c echo.Context, name string) []string {
	return SplitList(c.QueryParam(name))
}

func SplitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
