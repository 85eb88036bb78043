// Package render projects a stored health record into a PDF document. The
// output is deterministic: document metadata is pinned, stream compression is
// off, and dates use a fixed calendar format, so rendering the same record
// twice yields byte-identical documents.
package render

import (
	"bytes"
	"fmt"
	"strconv"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/medivault/medivault/internal/domain/record"
)

// dateLayout is the fixed date format used in rendered documents.
const dateLayout = "2006-01-02"

// placeholder substitutes any absent field.
const placeholder = "N/A"

// pinnedDate keeps the PDF metadata identical across renders.
var pinnedDate = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

// Renderer emits the emergency health record document.
type Renderer struct{}

func NewRenderer() *Renderer { return &Renderer{} }

// Render produces the full document for one record. Missing data never
// fails; only encoding faults do. The renderer either emits a complete
// document or none.
func (rd *Renderer) Render(r *record.Record) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCreationDate(pinnedDate)
	pdf.SetModificationDate(pinnedDate)
	pdf.SetCompression(false)
	pdf.SetCatalogSort(true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 20)
	pdf.CellFormat(0, 12, "Emergency Health Record", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	line := func(label, value string) {
		pdf.SetFont("Helvetica", "", 12)
		pdf.CellFormat(0, 7, label+": "+value, "", 1, "L", false, 0, "")
	}
	section := func(title string) {
		pdf.Ln(3)
		pdf.SetFont("Helvetica", "B", 14)
		pdf.CellFormat(0, 9, title, "", 1, "L", false, 0, "")
	}

	line("Full Name", orNA(&r.FullName))
	line("DOB", dateOrNA(r.DateOfBirth))
	line("Gender", orNA(r.Gender))
	line("Blood Group", orNA(r.BloodGroup))
	line("Phone", orNA(r.ContactNumber))
	line("Email", orNA(r.Email))
	line("Address", orNA(r.Address))

	section("Emergency Contact")
	line("Name", orNA(r.EmergencyContactName))
	line("Phone", orNA(r.EmergencyContactPhone))
	line("Relation", orNA(r.EmergencyContactRelation))

	section("Medical History")
	line("Allergies", orNA(r.Allergies))
	line("Chronic Conditions", orNA(r.ChronicConditions))
	line("Past Surgeries", orNA(r.PastSurgeries))
	line("Vaccinations", orNA(r.Vaccinations))
	line("Family History", orNA(r.FamilyHistory))

	section("Current Medications")
	line("Medication", orNA(r.MedicationName))
	line("Dosage", orNA(r.Dosage))
	line("Frequency", orNA(r.Frequency))
	line("Start Date", dateOrNA(r.MedStartDate))
	line("End Date", dateOrNA(r.MedEndDate))
	line("Prescribing Doctor", orNA(r.PrescribingDoctor))

	section("Test Details")
	line("Test Name", orNA(r.TestName))
	line("Date", dateOrNA(r.TestDate))
	line("Results", orNA(r.TestResults))
	line("Lab", orNA(r.LabName))

	section("Health Metrics")
	line("Height", floatOrNA(r.Height))
	line("Weight", floatOrNA(r.Weight))
	line("BMI", bmiLine(r.BMI, r.BMICategory))
	line("Blood Pressure", orNA(r.BloodPressure))
	line("Heart Rate", orNA(r.HeartRate))
	line("Sugar Levels", orNA(r.SugarLevel))
	line("Cholesterol", orNA(r.Cholesterol))

	section("Insurance Information")
	line("Provider", orNA(r.InsuranceProvider))
	line("Policy Number", orNA(r.PolicyNumber))
	line("Valid Till", dateOrNA(r.ValidTill))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render record %s: %w", r.ID, err)
	}
	return buf.Bytes(), nil
}

func orNA(s *string) string {
	if s == nil || *s == "" {
		return placeholder
	}
	return *s
}

func dateOrNA(t *time.Time) string {
	if t == nil {
		return placeholder
	}
	return t.Format(dateLayout)
}

func floatOrNA(f *float64) string {
	if f == nil {
		return placeholder
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}

func bmiLine(bmi *float64, category *string) string {
	if bmi == nil {
		return placeholder + " (" + placeholder + ")"
	}
	return fmt.Sprintf("%.2f (%s)", *bmi, orNA(category))
}
