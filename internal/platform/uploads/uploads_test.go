package uploads

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

// multipartFile builds a *multipart.FileHeader the way an HTTP request would.
func multipartFile(t *testing.T, fieldName, fileName, content string) *multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile(fieldName, fileName)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := io.Copy(fw, strings.NewReader(content)); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	w.Close()

	req := httptest.NewRequest(http.MethodPost, "/", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if err := req.ParseMultipartForm(32 << 20); err != nil {
		t.Fatalf("parse multipart: %v", err)
	}
	return req.MultipartForm.File[fieldName][0]
}

func newTestStore(t *testing.T) *DiskStore {
	t.Helper()
	store, err := NewDiskStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewDiskStore: %v", err)
	}
	return store
}

func TestDiskStore_SaveAndOpen(t *testing.T) {
	store := newTestStore(t)
	store.now = func() time.Time { return time.UnixMilli(1700000000000) }

	fh := multipartFile(t, "testFile", "scan.png", "png-bytes")
	storedPath, err := store.Save(context.Background(), fh)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if storedPath != "uploads/1700000000000-scan.png" {
		t.Errorf("unexpected stored path %q", storedPath)
	}

	rc, err := store.Open(context.Background(), storedPath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	if string(data) != "png-bytes" {
		t.Errorf("unexpected content %q", data)
	}
}

func TestDiskStore_RejectsDisallowedExtension(t *testing.T) {
	store := newTestStore(t)
	fh := multipartFile(t, "testFile", "notes.docx", "doc")

	_, err := store.Save(context.Background(), fh)
	if !errors.Is(err, ErrDisallowedType) {
		t.Fatalf("expected ErrDisallowedType, got %v", err)
	}
}

func TestDiskStore_RejectsMissingName(t *testing.T) {
	store := newTestStore(t)
	if _, err := store.Save(context.Background(), nil); !errors.Is(err, ErrMissingFileName) {
		t.Fatalf("expected ErrMissingFileName, got %v", err)
	}
}

func TestAllowedExtension(t *testing.T) {
	cases := map[string]bool{
		"a.jpeg": true,
		"a.JPG":  true,
		"a.png":  true,
		"a.pdf":  true,
		"a.gif":  false,
		"a.exe":  false,
		"a":      false,
	}
	for name, want := range cases {
		if got := AllowedExtension(name); got != want {
			t.Errorf("AllowedExtension(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestDiskStore_OpenMissingFile(t *testing.T) {
	store := newTestStore(t)
	_, err := store.Open(context.Background(), "uploads/1-nope.png")
	if !errors.Is(err, ErrFileNotFound) {
		t.Fatalf("expected ErrFileNotFound, got %v", err)
	}
}

func TestHandler_Download(t *testing.T) {
	store := newTestStore(t)
	store.now = func() time.Time { return time.UnixMilli(42) }
	fh := multipartFile(t, "testFile", "report.pdf", "%PDF-1.4 fake")
	storedPath, err := store.Save(context.Background(), fh)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	h := NewHandler(store)
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("name")
	c.SetParamValues(strings.TrimPrefix(storedPath, "uploads/"))

	if err := h.handleDownload(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get(echo.HeaderContentType); ct != "application/pdf" {
		t.Errorf("expected application/pdf, got %s", ct)
	}
}

func TestHandler_DownloadNotFound(t *testing.T) {
	h := NewHandler(newTestStore(t))
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("name")
	c.SetParamValues("1-missing.png")

	if err := h.handleDownload(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}
