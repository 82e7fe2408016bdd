package directoryinfra

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/grovekeep/grove/pkg/directory"
	"github.com/grovekeep/grove/pkg/kernel"
)

// PostgresDirectory implements directory.Directory against the profiles
// and trees tables.
type PostgresDirectory struct {
	db *sqlx.DB
}

// NewPostgresDirectory creates a new directory backed by Postgres.
func NewPostgresDirectory(db *sqlx.DB) directory.Directory {
	return &PostgresDirectory{
		db: db,
	}
}

// UserExists reports whether a member profile exists.
func (r *PostgresDirectory) UserExists(ctx context.Context, id kernel.UserID) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM profiles WHERE id = $1)`

	if err := r.db.GetContext(ctx, &exists, query, id.String()); err != nil {
		return false, directory.ErrLookupFailed(err).WithDetail("user_id", id.String())
	}
	return exists, nil
}

// TreeExists reports whether a tree exists.
func (r *PostgresDirectory) TreeExists(ctx context.Context, id kernel.TreeID) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM trees WHERE id = $1)`

	if err := r.db.GetContext(ctx, &exists, query, id.String()); err != nil {
		return false, directory.ErrLookupFailed(err).WithDetail("tree_id", id.String())
	}
	return exists, nil
}

// GetContact loads a member's contact details.
func (r *PostgresDirectory) GetContact(ctx context.Context, id kernel.UserID) (*directory.UserProfile, error) {
	var profile directory.UserProfile
	query := `
		SELECT id, display_name, COALESCE(email, '') AS email, COALESCE(phone, '') AS phone
		FROM profiles
		WHERE id = $1`

	if err := r.db.GetContext(ctx, &profile, query, id.String()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, directory.ErrUserNotFound().WithDetail("user_id", id.String())
		}
		return nil, directory.ErrLookupFailed(err).WithDetail("user_id", id.String())
	}
	return &profile, nil
}
