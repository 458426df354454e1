package httputil

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	DefaultPageLimit = 50
	MaxPageLimit     = 100
)

// Page is an offset/limit window over an in-memory result set.
type Page struct {
	Offset int
	Limit  int
}

// ParsePage reads ?offset and ?limit. Offset defaults to 0 and limit to
// DefaultPageLimit; a limit above MaxPageLimit is rejected.
func ParsePage(c *gin.Context) (Page, error) {
	offset, err := queryInt(c, "offset", 0)
	if err != nil || offset < 0 {
		return Page{}, fmt.Errorf("offset must be a non-negative integer")
	}

	limit, err := queryInt(c, "limit", DefaultPageLimit)
	if err != nil || limit < 1 || limit > MaxPageLimit {
		return Page{}, fmt.Errorf("limit must be between 1 and %d", MaxPageLimit)
	}

	return Page{Offset: offset, Limit: limit}, nil
}

func queryInt(c *gin.Context, name string, fallback int) (int, error) {
	raw, ok := c.GetQuery(name)
	if !ok {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}

// Slice returns the part of items covered by the page, never nil.
func Slice[T any](items []T, p Page) []T {
	if p.Offset >= len(items) {
		return []T{}
	}
	end := min(p.Offset+p.Limit, len(items))
	return items[p.Offset:end]
}
