package fsxlocal

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/grovekeep/grove/pkg/fsx"
)

// LocalFileStore implements fsx.MediaStore on local disk. Used in
// development; the public URL is served by the app itself.
type LocalFileStore struct {
	basePath      string
	publicBaseURL string
}

// NewLocalFileStore creates a local store rooted at basePath.
func NewLocalFileStore(basePath, publicBaseURL string) (*LocalFileStore, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}

	absPath, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve absolute path: %w", err)
	}

	return &LocalFileStore{
		basePath:      absPath,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}, nil
}

// GetBasePath returns the resolved root directory.
func (fs *LocalFileStore) GetBasePath() string {
	return fs.basePath
}

func (fs *LocalFileStore) fullPath(path string) string {
	// Clean relative to the base so ".." segments cannot escape it.
	clean := filepath.Clean("/" + path)
	return filepath.Join(fs.basePath, clean)
}

// WriteFile writes the bytes, creating parent directories as needed.
// The content type is ignored; local files are typed by extension.
func (fs *LocalFileStore) WriteFile(ctx context.Context, path string, data []byte, _ string) error {
	fullPath := fs.fullPath(path)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(fullPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

// ReadFile reads the whole file.
func (fs *LocalFileStore) ReadFile(ctx context.Context, path string) ([]byte, error) {
	data, err := os.ReadFile(fs.fullPath(path))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file not found: %s", path)
		}
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return data, nil
}

// Stat returns file metadata.
func (fs *LocalFileStore) Stat(ctx context.Context, path string) (fsx.FileInfo, error) {
	fullPath := fs.fullPath(path)
	info, err := os.Stat(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fsx.FileInfo{}, fmt.Errorf("file not found: %s", path)
		}
		return fsx.FileInfo{}, fmt.Errorf("failed to stat file: %w", err)
	}

	return fsx.FileInfo{
		Name:        info.Name(),
		Size:        info.Size(),
		ModTime:     info.ModTime(),
		ContentType: mime.TypeByExtension(filepath.Ext(fullPath)),
		Metadata:    make(map[string]string),
	}, nil
}

// Exists reports whether the file is present.
func (fs *LocalFileStore) Exists(ctx context.Context, path string) (bool, error) {
	_, err := os.Stat(fs.fullPath(path))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat file: %w", err)
	}
	return true, nil
}

// DeleteFile removes the file.
func (fs *LocalFileStore) DeleteFile(ctx context.Context, path string) error {
	if err := os.Remove(fs.fullPath(path)); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("file not found: %s", path)
		}
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// Join joins path elements with forward slashes so paths stay portable
// across storage backends.
func (fs *LocalFileStore) Join(elem ...string) string {
	parts := make([]string, 0, len(elem))
	for _, e := range elem {
		if e = strings.Trim(e, "/"); e != "" {
			parts = append(parts, e)
		}
	}
	return strings.Join(parts, "/")
}

// PublicURL maps the storage path onto the configured public base URL.
func (fs *LocalFileStore) PublicURL(path string) string {
	return fs.publicBaseURL + "/" + strings.TrimLeft(path, "/")
}

var _ fsx.MediaStore = (*LocalFileStore)(nil)
