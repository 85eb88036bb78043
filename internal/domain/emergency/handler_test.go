package emergency

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/medivault/medivault/internal/domain/record"
	"github.com/medivault/medivault/internal/platform/auth"
)

func newTestHandler(records ...*record.Record) *Handler {
	svc := NewService(newFakeSource(records...), fakeRenderer{}, "http://localhost:8000")
	return NewHandler(svc)
}

func httpStatus(t *testing.T, err error) int {
	t.Helper()
	var he *echo.HTTPError
	if !errors.As(err, &he) {
		t.Fatalf("expected *echo.HTTPError, got %v", err)
	}
	return he.Code
}

func TestHandler_IssueLink(t *testing.T) {
	ownerID := uuid.New()
	r := &record.Record{ID: uuid.New(), OwnerID: ownerID, FullName: "Asha Patel"}
	h := newTestHandler(r)

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/qr", strings.NewReader(`{"record_id":"`+r.ID.String()+`"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req = req.WithContext(auth.WithOwnerID(req.Context(), ownerID))
	rec := httptest.NewRecorder()

	if err := h.IssueLink(e.NewContext(req, rec)); err != nil {
		t.Fatalf("IssueLink failed: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var link Link
	if err := json.Unmarshal(rec.Body.Bytes(), &link); err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(link.URL, "/records/"+r.ID.String()+"/pdf") {
		t.Errorf("URL = %q", link.URL)
	}
	if !strings.HasPrefix(link.QRCode, "data:image/png;base64,") {
		t.Errorf("QR code prefix wrong: %.40q", link.QRCode)
	}
}

func TestHandler_IssueLink_Unauthenticated(t *testing.T) {
	h := newTestHandler()

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/qr", strings.NewReader(`{"record_id":"`+uuid.NewString()+`"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	if code := httpStatus(t, h.IssueLink(e.NewContext(req, rec))); code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", code, http.StatusUnauthorized)
	}
}

func TestHandler_IssueLink_ForeignRecord(t *testing.T) {
	r := &record.Record{ID: uuid.New(), OwnerID: uuid.New(), FullName: "Asha Patel"}
	h := newTestHandler(r)

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/qr", strings.NewReader(`{"record_id":"`+r.ID.String()+`"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req = req.WithContext(auth.WithOwnerID(req.Context(), uuid.New()))
	rec := httptest.NewRecorder()

	if code := httpStatus(t, h.IssueLink(e.NewContext(req, rec))); code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", code, http.StatusNotFound)
	}
}

func TestHandler_IssueLink_BadRequest(t *testing.T) {
	h := newTestHandler()
	ownerID := uuid.New()

	for name, body := range map[string]string{
		"missing id": `{}`,
		"invalid id": `{"record_id":"abc"}`,
	} {
		t.Run(name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodPost, "/api/v1/qr", strings.NewReader(body))
			req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			req = req.WithContext(auth.WithOwnerID(req.Context(), ownerID))
			rec := httptest.NewRecorder()

			if code := httpStatus(t, h.IssueLink(e.NewContext(req, rec))); code != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", code, http.StatusBadRequest)
			}
		})
	}
}

func TestHandler_RenderPDF_NoAuthRequired(t *testing.T) {
	r := &record.Record{ID: uuid.New(), OwnerID: uuid.New(), FullName: "Asha Patel"}
	h := newTestHandler(r)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/emergency/records/"+r.ID.String()+"/pdf", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(r.ID.String())

	if err := h.RenderPDF(c); err != nil {
		t.Fatalf("RenderPDF failed: %v", err)
	}
	if ct := rec.Header().Get(echo.HeaderContentType); ct != "application/pdf" {
		t.Errorf("content type = %q", ct)
	}
	if !strings.HasPrefix(rec.Body.String(), "%PDF") {
		t.Error("body does not look like a PDF")
	}
}

func TestHandler_RenderPDF_AbsentRecord(t *testing.T) {
	h := newTestHandler()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(uuid.NewString())

	if code := httpStatus(t, h.RenderPDF(c)); code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", code, http.StatusNotFound)
	}
}
