// Package directory exposes read-only lookups against the member and
// tree records owned by the main application.
package directory

import (
	"context"
	"net/http"

	"github.com/grovekeep/grove/pkg/errx"
	"github.com/grovekeep/grove/pkg/kernel"
)

// ============================================================================
// Error Registry
// ============================================================================

var ErrRegistry = errx.NewRegistry("DIRECTORY")

var (
	CodeUserNotFound = ErrRegistry.Register("USER_NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "User not found")
	CodeLookupFailed = ErrRegistry.Register("LOOKUP_FAILED", errx.TypeInternal, http.StatusInternalServerError, "Directory lookup failed")
)

// Helper functions
func ErrUserNotFound() *errx.Error {
	return ErrRegistry.New(CodeUserNotFound)
}

func ErrLookupFailed(cause error) *errx.Error {
	return ErrRegistry.NewWithCause(CodeLookupFailed, cause)
}

// UserProfile is the contact surface of a member.
type UserProfile struct {
	ID          kernel.UserID `db:"id" json:"id"`
	DisplayName string        `db:"display_name" json:"display_name"`
	Email       string        `db:"email" json:"email"`
	Phone       string        `db:"phone" json:"phone"`
}

// HasEmail reports whether the member can receive email.
func (p *UserProfile) HasEmail() bool {
	return p.Email != ""
}

// HasPhone reports whether the member can receive SMS.
func (p *UserProfile) HasPhone() bool {
	return p.Phone != ""
}

// Directory looks up members and trees.
type Directory interface {
	UserExists(ctx context.Context, id kernel.UserID) (bool, error)
	TreeExists(ctx context.Context, id kernel.TreeID) (bool, error)
	GetContact(ctx context.Context, id kernel.UserID) (*UserProfile, error)
}
