// Package uploads provides file storage for record attachments. It defines
// the Store interface, a disk-backed implementation, and an Echo handler for
// retrieving stored files. Files are stored under a timestamped name so that
// repeated uploads of the same filename never collide.
package uploads

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

var (
	ErrFileNotFound    = errors.New("uploaded file not found")
	ErrDisallowedType  = errors.New("only jpeg, jpg, png and pdf files are allowed")
	ErrMissingFileName = errors.New("file name is required")
	ErrFileTooLarge    = errors.New("file exceeds maximum allowed size")
)

// MaxFileSize is the maximum allowed upload size in bytes (20 MB).
const MaxFileSize = 20 * 1024 * 1024

// allowedExtensions is the attachment allow-list.
var allowedExtensions = map[string]bool{
	".jpeg": true,
	".jpg":  true,
	".png":  true,
	".pdf":  true,
}

// AllowedExtension reports whether the filename carries an accepted extension.
func AllowedExtension(filename string) bool {
	return allowedExtensions[strings.ToLower(filepath.Ext(filename))]
}

// Store is the contract for attachment storage backends. Save returns the
// opaque path string persisted on the record; Open resolves such a path back
// to the file content.
type Store interface {
	Save(ctx context.Context, file *multipart.FileHeader) (string, error)
	Open(ctx context.Context, storedPath string) (io.ReadCloser, error)
}

// DiskStore stores attachments on the local filesystem under Dir. Stored
// paths have the form "uploads/<unix-millis>-<basename>".
type DiskStore struct {
	dir string
	// now is swappable for tests
	now func() time.Time
}

// NewDiskStore creates the upload directory if needed and returns a DiskStore.
func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload directory %s: %w", dir, err)
	}
	return &DiskStore{dir: dir, now: time.Now}, nil
}

// Save validates the extension, writes the file under a timestamped name, and
// returns the stored path. The write completes before Save returns; there is
// no asynchronous finalize step.
func (s *DiskStore) Save(_ context.Context, file *multipart.FileHeader) (string, error) {
	if file == nil || file.Filename == "" {
		return "", ErrMissingFileName
	}
	if !AllowedExtension(file.Filename) {
		return "", ErrDisallowedType
	}
	if file.Size > MaxFileSize {
		return "", ErrFileTooLarge
	}

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("open uploaded file: %w", err)
	}
	defer src.Close()

	name := fmt.Sprintf("%d-%s", s.now().UnixMilli(), sanitizeName(file.Filename))
	dst, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("create stored file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, io.LimitReader(src, MaxFileSize)); err != nil {
		return "", fmt.Errorf("write stored file: %w", err)
	}

	return "uploads/" + name, nil
}

// Open resolves a stored path string produced by Save.
func (s *DiskStore) Open(_ context.Context, storedPath string) (io.ReadCloser, error) {
	name := sanitizeName(path.Base(storedPath))
	f, err := os.Open(filepath.Join(s.dir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrFileNotFound
		}
		return nil, fmt.Errorf("open stored file: %w", err)
	}
	return f, nil
}

// sanitizeName strips path separators so a stored name can never escape the
// upload directory.
func sanitizeName(name string) string {
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "..", "")
	return name
}

// Handler serves stored uploads over HTTP.
type Handler struct {
	store Store
}

func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

// RegisterRoutes mounts the download route on the supplied Echo group.
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/uploads/:name", h.handleDownload)
}

func (h *Handler) handleDownload(c echo.Context) error {
	name := c.Param("name")

	rc, err := h.store.Open(c.Request().Context(), name)
	if err != nil {
		if errors.Is(err, ErrFileNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to read file"})
	}
	defer rc.Close()

	contentType := contentTypeFor(name)
	c.Response().Header().Set("Content-Disposition", fmt.Sprintf(`inline; filename=%q`, path.Base(name)))
	return c.Stream(http.StatusOK, contentType, rc)
}

func contentTypeFor(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpeg", ".jpg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".pdf":
		return "application/pdf"
	default:
		return "application/octet-stream"
	}
}
