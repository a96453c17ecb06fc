package store

import (
	"errors"
	"fmt"

	"github.com/icedo724/WoW-Auction/internal/domain"
)

// ErrNotFound is returned when a backing file does not exist yet.
var ErrNotFound = errors.New("not found")

// ErrEmptyName is returned when an item is catalogued without a display name.
var ErrEmptyName = errors.New("empty item name")

// NameCollisionError reports two distinct items that would share one display
// name, and therefore one history row.
type NameCollisionError struct {
	Name     string
	IDs      []domain.ItemID
	Existing string // set when an id is being renamed
}

func (e *NameCollisionError) Error() string {
	if e.Existing != "" {
		return fmt.Sprintf("item %d is already named %q, refusing %q", e.IDs[0], e.Existing, e.Name)
	}
	return fmt.Sprintf("items %v share the display name %q", e.IDs, e.Name)
}

// FormatError reports a malformed backing file.
type FormatError struct {
	Path string
	Line int
	Err  error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%s:%d: %v", e.Path, e.Line, e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }
