package pagination

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const MaxLimit = 500

var ErrInvalidLimit = errors.New("limit must be a positive integer")

// Window is an offset/limit slice of a list endpoint.
type Window struct {
	Skip  int
	Limit int
}

// FromContext reads ?skip= and ?limit= from the request. Missing or malformed
// values fall back to 0 and defaultLimit; limit is capped at MaxLimit.
func FromContext(c *gin.Context, defaultLimit int) Window {
	skip := parseIntOr(c.Query("skip"), 0)
	limit := parseIntOr(c.Query("limit"), defaultLimit)

	if skip < 0 {
		skip = 0
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return Window{Skip: skip, Limit: limit}
}

// LimitFromQuery reads ?limit= for endpoints that take no offset. Unlike
// FromContext it rejects malformed values.
func LimitFromQuery(c *gin.Context, defaultLimit int) (int, error) {
	raw := c.Query("limit")
	if raw == "" {
		return defaultLimit, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return 0, ErrInvalidLimit
	}
	return min(v, MaxLimit), nil
}

// Apply adds OFFSET/LIMIT to a GORM query.
func (w Window) Apply(db *gorm.DB) *gorm.DB {
	if w.Skip > 0 {
		db = db.Offset(w.Skip)
	}
	if w.Limit > 0 {
		db = db.Limit(w.Limit)
	}
	return db
}

// ParseBool reads an optional boolean query parameter. The second result is
// false when the parameter is absent or malformed.
func ParseBool(c *gin.Context, key string) (bool, bool) {
	raw, ok := c.GetQuery(key)
	if !ok || raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}

func parseIntOr(s string, def int) int {
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}
