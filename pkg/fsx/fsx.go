package fsx

import (
	"context"
	"time"
)

// FileInfo represents information about a stored file
type FileInfo struct {
	Name        string            // Base name of the file
	Size        int64             // File size in bytes
	ModTime     time.Time         // Modification time
	ContentType string            // MIME type (when available)
	Metadata    map[string]string // Additional metadata
}

// FileReader provides read-only operations
type FileReader interface {
	ReadFile(ctx context.Context, path string) ([]byte, error)
	Stat(ctx context.Context, path string) (FileInfo, error)
	Exists(ctx context.Context, path string) (bool, error)
}

// FileWriter provides write operations. The content type travels with the
// bytes so backends that serve files directly can set response headers.
type FileWriter interface {
	WriteFile(ctx context.Context, path string, data []byte, contentType string) error
}

// FileDeleter provides deletion operations
type FileDeleter interface {
	DeleteFile(ctx context.Context, path string) error
}

// PathOperations provides path manipulation functionality
type PathOperations interface {
	Join(elem ...string) string
}

// PublicURLResolver maps a storage path to the durable, publicly
// reachable URL it is served from.
type PublicURLResolver interface {
	PublicURL(path string) string
}

// FileStore combines the basic file operations
type FileStore interface {
	FileReader
	FileWriter
	FileDeleter
	PathOperations
}

// MediaStore is a FileStore whose contents are publicly addressable.
type MediaStore interface {
	FileStore
	PublicURLResolver
}
