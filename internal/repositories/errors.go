package repositories

import (
	"github.com/go-faster/errors"
	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique constraint would be violated.
	ErrDuplicate = errors.New("duplicate record")
	// ErrStockConflict is returned by conditional stock updates when the
	// product no longer has enough stock.
	ErrStockConflict = errors.New("insufficient stock")
	// ErrLimitReached is returned when a coupon has no uses left.
	ErrLimitReached = errors.New("usage limit reached")
)

// translate maps gorm sentinel errors onto repository errors.
func translate(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	default:
		return err
	}
}

// Page describes a 1-based page request.
type Page struct {
	Page    int
	PerPage int
}

// Offset returns the number of records to skip.
func (p Page) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.PerPage
}

// Limit returns the page size, or -1 (no limit) when unset.
func (p Page) Limit() int {
	if p.PerPage <= 0 {
		return -1
	}
	return p.PerPage
}

// window slices an in-memory result according to p.
func window[T any](items []T, p Page) []T {
	start := p.Offset()
	if start >= len(items) {
		return []T{}
	}
	end := len(items)
	if l := p.Limit(); l > 0 && start+l < end {
		end = start + l
	}
	return items[start:end]
}
