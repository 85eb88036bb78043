package record

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/medivault/medivault/internal/platform/auth"
	"github.com/medivault/medivault/pkg/pagination"
)

// dateLayout is the fixed calendar format used on the wire and in rendered
// documents. Locale-dependent formatting is deliberately avoided.
const dateLayout = "2006-01-02"

// Renderer projects a record into a PDF document.
type Renderer interface {
	Render(r *Record) ([]byte, error)
}

type Handler struct {
	svc      *Service
	renderer Renderer
}

func NewHandler(svc *Service, renderer Renderer) *Handler {
	return &Handler{svc: svc, renderer: renderer}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/records", h.CreateRecord)
	api.GET("/records", h.ListRecords)
	api.GET("/records/:id", h.GetRecord)
	api.GET("/records/:id/pdf", h.GetRecordPDF)
	api.PUT("/records/:id", h.UpdateRecord)
	api.DELETE("/records/:id", h.DeleteRecord)
	api.POST("/dedup-intake", h.DedupIntake)
}

func (h *Handler) CreateRecord(c echo.Context) error {
	ownerID, ok := auth.OwnerIDFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}

	r, err := recordFromForm(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	saved, err := h.svc.Create(c.Request().Context(), ownerID, r, formFiles(c))
	if err != nil {
		if errors.Is(err, ErrValidation) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to create record")
	}
	return c.JSON(http.StatusCreated, saved)
}

func (h *Handler) ListRecords(c echo.Context) error {
	ownerID, ok := auth.OwnerIDFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}

	pg := pagination.FromContext(c)
	items, total, err := h.svc.List(c.Request().Context(), ownerID, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to fetch records")
	}
	if items == nil {
		items = []*Record{}
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) GetRecord(c echo.Context) error {
	ownerID, ok := auth.OwnerIDFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	r, err := h.svc.Get(c.Request().Context(), ownerID, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "record not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to fetch record")
	}
	return c.JSON(http.StatusOK, r)
}

func (h *Handler) GetRecordPDF(c echo.Context) error {
	ownerID, ok := auth.OwnerIDFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	r, err := h.svc.Get(c.Request().Context(), ownerID, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "record not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to fetch record")
	}

	pdf, err := h.renderer.Render(r)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to generate PDF")
	}

	c.Response().Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=record_%s.pdf", r.ID))
	return c.Blob(http.StatusOK, "application/pdf", pdf)
}

func (h *Handler) UpdateRecord(c echo.Context) error {
	ownerID, ok := auth.OwnerIDFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	r, err := recordFromForm(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	updated, err := h.svc.Update(c.Request().Context(), ownerID, id, r, formFiles(c))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "record not found")
		case errors.Is(err, ErrValidation):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, "failed to update record")
		}
	}
	return c.JSON(http.StatusOK, updated)
}

func (h *Handler) DeleteRecord(c echo.Context) error {
	ownerID, ok := auth.OwnerIDFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	if err := h.svc.Delete(c.Request().Context(), ownerID, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "record not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to delete record")
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "record deleted"})
}

// intakeRequest is the simplified record-intake payload. The date travels as
// a fixed-format calendar string.
type intakeRequest struct {
	RecordType  string `json:"type"`
	Description string `json:"description"`
	Date        string `json:"date"`
	FullName    string `json:"full_name"`
}

func (h *Handler) DedupIntake(c echo.Context) error {
	ownerID, ok := auth.OwnerIDFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}

	var req intakeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "date must be in YYYY-MM-DD form")
	}

	saved, err := h.svc.CheckAndSave(c.Request().Context(), ownerID, Intake{
		RecordType:  req.RecordType,
		Description: req.Description,
		RecordDate:  date,
		FullName:    req.FullName,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrDuplicate):
			// A duplicate is a normal outcome of this path, not an error.
			return c.JSON(http.StatusOK, map[string]interface{}{
				"saved":   false,
				"message": "duplicate record found, not saved",
			})
		case errors.Is(err, ErrValidation):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, "failed to save record")
		}
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{
		"saved":  true,
		"record": saved,
	})
}

// recordFromForm builds a Record from multipart form fields. Absent fields
// stay nil; BMI fields from the form are ignored since they are derived.
func recordFromForm(c echo.Context) (*Record, error) {
	r := &Record{FullName: c.FormValue("full_name")}

	r.Gender = optStr(c, "gender")
	r.BloodGroup = optStr(c, "blood_group")
	r.ContactNumber = optStr(c, "contact_number")
	r.Email = optStr(c, "email")
	r.Address = optStr(c, "address")
	r.EmergencyContactName = optStr(c, "emergency_contact_name")
	r.EmergencyContactRelation = optStr(c, "emergency_contact_relation")
	r.EmergencyContactPhone = optStr(c, "emergency_contact_phone")
	r.Allergies = optStr(c, "allergies")
	r.ChronicConditions = optStr(c, "chronic_conditions")
	r.PastSurgeries = optStr(c, "past_surgeries")
	r.Vaccinations = optStr(c, "vaccinations")
	r.FamilyHistory = optStr(c, "family_history")
	r.MedicationName = optStr(c, "medication_name")
	r.Dosage = optStr(c, "dosage")
	r.Frequency = optStr(c, "frequency")
	r.PrescribingDoctor = optStr(c, "prescribing_doctor")
	r.TestName = optStr(c, "test_name")
	r.TestResults = optStr(c, "test_results")
	r.LabName = optStr(c, "lab_name")
	r.PrescriptionName = optStr(c, "prescription_name")
	r.PrescriptionDoctor = optStr(c, "prescription_doctor")
	r.BloodPressure = optStr(c, "blood_pressure")
	r.HeartRate = optStr(c, "heart_rate")
	r.SugarLevel = optStr(c, "sugar_level")
	r.Cholesterol = optStr(c, "cholesterol")
	r.InsuranceProvider = optStr(c, "insurance_provider")
	r.PolicyNumber = optStr(c, "policy_number")
	r.RecordType = optStr(c, "record_type")
	r.Description = optStr(c, "description")

	var err error
	if r.DateOfBirth, err = optDate(c, "date_of_birth"); err != nil {
		return nil, err
	}
	if r.MedStartDate, err = optDate(c, "med_start_date"); err != nil {
		return nil, err
	}
	if r.MedEndDate, err = optDate(c, "med_end_date"); err != nil {
		return nil, err
	}
	if r.TestDate, err = optDate(c, "test_date"); err != nil {
		return nil, err
	}
	if r.PrescriptionDate, err = optDate(c, "prescription_date"); err != nil {
		return nil, err
	}
	if r.ValidTill, err = optDate(c, "valid_till"); err != nil {
		return nil, err
	}
	if r.RecordDate, err = optDate(c, "record_date"); err != nil {
		return nil, err
	}
	if r.Height, err = optFloat(c, "height"); err != nil {
		return nil, err
	}
	if r.Weight, err = optFloat(c, "weight"); err != nil {
		return nil, err
	}

	return r, nil
}

// formFiles pulls the two attachment slots out of the multipart form.
// A missing slot is simply absent; transport-level validation happens when
// the file is stored.
func formFiles(c echo.Context) FileUploads {
	var files FileUploads
	if fh, err := c.FormFile("testFile"); err == nil {
		files.TestFile = fh
	}
	if fh, err := c.FormFile("prescriptionFile"); err == nil {
		files.PrescriptionFile = fh
	}
	return files
}

func optStr(c echo.Context, name string) *string {
	v := c.FormValue(name)
	if v == "" {
		return nil
	}
	return &v
}

func optDate(c echo.Context, name string) (*time.Time, error) {
	v := c.FormValue(name)
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, v)
	if err != nil {
		return nil, fmt.Errorf("%s must be in YYYY-MM-DD form", name)
	}
	return &t, nil
}

func optFloat(c echo.Context, name string) (*float64, error) {
	v := c.FormValue(name)
	if v == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil, fmt.Errorf("%s must be a number", name)
	}
	return &f, nil
}
