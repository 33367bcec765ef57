// Package utils provides utility functions for the application.
package utils

import (
	"math"
	"strings"

	"github.com/google/uuid"
)

func ToPtr[T any](v T) *T {
	return &v
}

func IsTrue(b *bool) bool {
	return b != nil && *b
}

// Deref returns the pointed value or the zero value of T
func Deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

// ParseUUIDPtr parses s into a UUID pointer. Empty input yields nil.
func ParseUUIDPtr(s string) (*uuid.UUID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// ClampLimit normalizes a limit against a default and an upper bound
func ClampLimit(limit, def, max int) int {
	if limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}

// PageOffset returns index*limit, or false when the page window would not fit in an int
func PageOffset(index, limit int) (int, bool) {
	if index < 0 || limit <= 0 {
		return 0, index >= 0
	}
	if index > (math.MaxInt-limit)/limit {
		return 0, false
	}
	return index * limit, true
}
