package ingestinfra

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/grovekeep/grove/pkg/directory"
	"github.com/grovekeep/grove/pkg/ingest"
	"github.com/grovekeep/grove/pkg/kernel"
)

// PostgresLeafStore persists leaves after verifying the resolved target
// exists in the directory.
type PostgresLeafStore struct {
	db  *sqlx.DB
	dir directory.Directory
}

// NewPostgresLeafStore creates a new leaf store.
func NewPostgresLeafStore(db *sqlx.DB, dir directory.Directory) ingest.LeafStore {
	return &PostgresLeafStore{
		db:  db,
		dir: dir,
	}
}

// leafRow adapts ingest.Leaf for Postgres array columns.
type leafRow struct {
	ID        string         `db:"id"`
	AuthorID  string         `db:"author_id"`
	LeafType  string         `db:"leaf_type"`
	Content   string         `db:"content"`
	MediaURLs pq.StringArray `db:"media_urls"`
	Tags      pq.StringArray `db:"tags"`
	AICaption string         `db:"ai_caption"`
	CreatedAt time.Time      `db:"created_at"`
}

// CreateLeaf verifies the target exists, then inserts the leaf.
func (r *PostgresLeafStore) CreateLeaf(ctx context.Context, leaf *ingest.Leaf, target ingest.ResolvedTarget) error {
	exists, err := r.targetExists(ctx, target)
	if err != nil {
		return ingest.ErrPersistFailed(err).WithDetail("target_id", target.ID)
	}
	if !exists {
		return ingest.ErrTargetNotFound().
			WithDetail("target_kind", string(target.Kind)).
			WithDetail("target_id", target.ID)
	}

	query := `
		INSERT INTO leaves (
			id, author_id, leaf_type, content, media_urls, tags, ai_caption, created_at
		) VALUES (
			:id, :author_id, :leaf_type, :content, :media_urls, :tags, :ai_caption, :created_at
		)`

	row := leafRow{
		ID:        leaf.ID.String(),
		AuthorID:  leaf.AuthorID,
		LeafType:  string(leaf.LeafType),
		Content:   leaf.Content,
		MediaURLs: pq.StringArray(leaf.MediaURLs),
		Tags:      pq.StringArray(leaf.Tags),
		AICaption: leaf.AICaption,
		CreatedAt: leaf.CreatedAt,
	}

	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		return ingest.ErrPersistFailed(err).WithDetail("leaf_id", leaf.ID.String())
	}
	return nil
}

func (r *PostgresLeafStore) targetExists(ctx context.Context, target ingest.ResolvedTarget) (bool, error) {
	switch target.Kind {
	case ingest.TargetUser:
		return r.dir.UserExists(ctx, kernel.NewUserID(target.ID))
	case ingest.TargetTree:
		return r.dir.TreeExists(ctx, kernel.NewTreeID(target.ID))
	default:
		return false, nil
	}
}
