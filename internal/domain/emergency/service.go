// Package emergency mints QR-encoded emergency links and serves their
// dereference path. A link is never stored: it is recomputed from the public
// base URL and the record id, so reissuing is always safe.
package emergency

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/google/uuid"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/medivault/medivault/internal/domain/record"
)

// qrSize is the pixel edge of the generated QR image.
const qrSize = 256

// RecordSource is the slice of the record repository the issuer needs.
type RecordSource interface {
	GetByOwner(ctx context.Context, ownerID, id uuid.UUID) (*record.Record, error)
	GetByID(ctx context.Context, id uuid.UUID) (*record.Record, error)
}

// Renderer projects a record into a PDF document.
type Renderer interface {
	Render(r *record.Record) ([]byte, error)
}

// Link is an issued emergency locator: the stable URL and its QR encoding as
// a PNG data URL.
type Link struct {
	URL    string `json:"url"`
	QRCode string `json:"qr_code"`
}

type Service struct {
	records  RecordSource
	renderer Renderer
	baseURL  string
}

func NewService(records RecordSource, renderer Renderer, baseURL string) *Service {
	return &Service{records: records, renderer: renderer, baseURL: baseURL}
}

// URLFor returns the emergency locator for a record id. Identical inputs
// always yield the same URL.
func (s *Service) URLFor(recordID uuid.UUID) string {
	return s.baseURL + "/emergency/records/" + recordID.String() + "/pdf"
}

// Issue validates that the record belongs to the caller and returns the
// emergency link for it. The ownership check goes through the owner-scoped
// lookup, so a foreign record is indistinguishable from an absent one.
func (s *Service) Issue(ctx context.Context, ownerID, recordID uuid.UUID) (*Link, error) {
	if _, err := s.records.GetByOwner(ctx, ownerID, recordID); err != nil {
		return nil, err
	}

	url := s.URLFor(recordID)
	png, err := qrcode.Encode(url, qrcode.Medium, qrSize)
	if err != nil {
		return nil, fmt.Errorf("encode QR for record %s: %w", recordID, err)
	}

	return &Link{
		URL:    url,
		QRCode: "data:image/png;base64," + base64.StdEncoding.EncodeToString(png),
	}, nil
}

// Render serves the emergency dereference path. It deliberately skips the
// ownership check: a locked emergency document defeats its purpose. The path
// exposes only the rendered PDF, never the record data itself.
func (s *Service) Render(ctx context.Context, recordID uuid.UUID) ([]byte, error) {
	r, err := s.records.GetByID(ctx, recordID)
	if err != nil {
		return nil, err
	}
	return s.renderer.Render(r)
}
