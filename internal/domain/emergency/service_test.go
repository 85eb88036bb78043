package emergency

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/medivault/medivault/internal/domain/record"
)

type fakeSource struct {
	records map[uuid.UUID]*record.Record
}

func newFakeSource(records ...*record.Record) *fakeSource {
	m := make(map[uuid.UUID]*record.Record, len(records))
	for _, r := range records {
		m[r.ID] = r
	}
	return &fakeSource{records: m}
}

func (f *fakeSource) GetByOwner(ctx context.Context, ownerID, id uuid.UUID) (*record.Record, error) {
	r, ok := f.records[id]
	if !ok || r.OwnerID != ownerID {
		return nil, record.ErrNotFound
	}
	return r, nil
}

func (f *fakeSource) GetByID(ctx context.Context, id uuid.UUID) (*record.Record, error) {
	r, ok := f.records[id]
	if !ok {
		return nil, record.ErrNotFound
	}
	return r, nil
}

type fakeRenderer struct{}

func (fakeRenderer) Render(r *record.Record) ([]byte, error) {
	return []byte("%PDF-1.3 " + r.FullName), nil
}

func TestService_URLFor(t *testing.T) {
	svc := NewService(newFakeSource(), fakeRenderer{}, "https://medivault.example.com")
	id := uuid.MustParse("a3bb189e-8bf9-3888-9912-ace4e6543002")

	url := svc.URLFor(id)
	want := "https://medivault.example.com/emergency/records/a3bb189e-8bf9-3888-9912-ace4e6543002/pdf"
	if url != want {
		t.Errorf("URLFor = %q, want %q", url, want)
	}
	if !strings.HasSuffix(url, "/records/"+id.String()+"/pdf") {
		t.Errorf("URL %q does not end with the record dereference path", url)
	}

	// Same input, same URL.
	if again := svc.URLFor(id); again != url {
		t.Errorf("URLFor not deterministic: %q vs %q", url, again)
	}
}

func TestService_Issue(t *testing.T) {
	ownerID := uuid.New()
	r := &record.Record{ID: uuid.New(), OwnerID: ownerID, FullName: "Asha Patel"}
	svc := NewService(newFakeSource(r), fakeRenderer{}, "http://localhost:8000")

	link, err := svc.Issue(context.Background(), ownerID, r.ID)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if link.URL != svc.URLFor(r.ID) {
		t.Errorf("link URL = %q, want %q", link.URL, svc.URLFor(r.ID))
	}
	if !strings.HasPrefix(link.QRCode, "data:image/png;base64,") {
		t.Errorf("QR code is not a PNG data URL: %.40q", link.QRCode)
	}

	// Reissuing yields the identical URL.
	again, err := svc.Issue(context.Background(), ownerID, r.ID)
	if err != nil {
		t.Fatalf("reissue failed: %v", err)
	}
	if again.URL != link.URL {
		t.Errorf("reissued URL differs: %q vs %q", link.URL, again.URL)
	}
}

func TestService_Issue_ForeignRecord(t *testing.T) {
	r := &record.Record{ID: uuid.New(), OwnerID: uuid.New(), FullName: "Asha Patel"}
	svc := NewService(newFakeSource(r), fakeRenderer{}, "http://localhost:8000")

	_, err := svc.Issue(context.Background(), uuid.New(), r.ID)
	if !errors.Is(err, record.ErrNotFound) {
		t.Errorf("expected ErrNotFound for a foreign record, got %v", err)
	}
}

func TestService_Render_SkipsOwnershipCheck(t *testing.T) {
	r := &record.Record{ID: uuid.New(), OwnerID: uuid.New(), FullName: "Asha Patel"}
	svc := NewService(newFakeSource(r), fakeRenderer{}, "http://localhost:8000")

	// No owner in play at all: the dereference path renders for anyone
	// holding the link.
	pdf, err := svc.Render(context.Background(), r.ID)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if !strings.Contains(string(pdf), "Asha Patel") {
		t.Error("rendered document missing record data")
	}
}

func TestService_Render_AbsentRecord(t *testing.T) {
	svc := NewService(newFakeSource(), fakeRenderer{}, "http://localhost:8000")

	_, err := svc.Render(context.Background(), uuid.New())
	if !errors.Is(err, record.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
