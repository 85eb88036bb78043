package record

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// Record maps to the health_record table. One row is a full health-record
// snapshot for a single owner; every field except the identity columns is
// optional.
type Record struct {
	ID      uuid.UUID `db:"id" json:"id"`
	OwnerID uuid.UUID `db:"owner_id" json:"owner_id"`

	// Personal information
	FullName      string     `db:"full_name" json:"full_name"`
	DateOfBirth   *time.Time `db:"date_of_birth" json:"date_of_birth,omitempty"`
	Gender        *string    `db:"gender" json:"gender,omitempty"`
	BloodGroup    *string    `db:"blood_group" json:"blood_group,omitempty"`
	ContactNumber *string    `db:"contact_number" json:"contact_number,omitempty"`
	Email         *string    `db:"email" json:"email,omitempty"`
	Address       *string    `db:"address" json:"address,omitempty"`

	// Emergency contact
	EmergencyContactName     *string `db:"emergency_contact_name" json:"emergency_contact_name,omitempty"`
	EmergencyContactRelation *string `db:"emergency_contact_relation" json:"emergency_contact_relation,omitempty"`
	EmergencyContactPhone    *string `db:"emergency_contact_phone" json:"emergency_contact_phone,omitempty"`

	// Medical history
	Allergies         *string `db:"allergies" json:"allergies,omitempty"`
	ChronicConditions *string `db:"chronic_conditions" json:"chronic_conditions,omitempty"`
	PastSurgeries     *string `db:"past_surgeries" json:"past_surgeries,omitempty"`
	Vaccinations      *string `db:"vaccinations" json:"vaccinations,omitempty"`
	FamilyHistory     *string `db:"family_history" json:"family_history,omitempty"`

	// Current medications
	MedicationName    *string    `db:"medication_name" json:"medication_name,omitempty"`
	Dosage            *string    `db:"dosage" json:"dosage,omitempty"`
	Frequency         *string    `db:"frequency" json:"frequency,omitempty"`
	MedStartDate      *time.Time `db:"med_start_date" json:"med_start_date,omitempty"`
	MedEndDate        *time.Time `db:"med_end_date" json:"med_end_date,omitempty"`
	PrescribingDoctor *string    `db:"prescribing_doctor" json:"prescribing_doctor,omitempty"`

	// Lab tests
	TestName    *string    `db:"test_name" json:"test_name,omitempty"`
	TestDate    *time.Time `db:"test_date" json:"test_date,omitempty"`
	TestResults *string    `db:"test_results" json:"test_results,omitempty"`
	LabName     *string    `db:"lab_name" json:"lab_name,omitempty"`
	TestFile    *string    `db:"test_file" json:"test_file,omitempty"`

	// Prescriptions
	PrescriptionName   *string    `db:"prescription_name" json:"prescription_name,omitempty"`
	PrescriptionDoctor *string    `db:"prescription_doctor" json:"prescription_doctor,omitempty"`
	PrescriptionDate   *time.Time `db:"prescription_date" json:"prescription_date,omitempty"`
	PrescriptionFile   *string    `db:"prescription_file" json:"prescription_file,omitempty"`

	// Health metrics. BMI and BMICategory are derived from height and weight
	// and never accepted from the caller.
	Height        *float64 `db:"height" json:"height,omitempty"`
	Weight        *float64 `db:"weight" json:"weight,omitempty"`
	BMI           *float64 `db:"bmi" json:"bmi,omitempty"`
	BMICategory   *string  `db:"bmi_category" json:"bmi_category,omitempty"`
	BloodPressure *string  `db:"blood_pressure" json:"blood_pressure,omitempty"`
	HeartRate     *string  `db:"heart_rate" json:"heart_rate,omitempty"`
	SugarLevel    *string  `db:"sugar_level" json:"sugar_level,omitempty"`
	Cholesterol   *string  `db:"cholesterol" json:"cholesterol,omitempty"`

	// Insurance
	InsuranceProvider *string    `db:"insurance_provider" json:"insurance_provider,omitempty"`
	PolicyNumber      *string    `db:"policy_number" json:"policy_number,omitempty"`
	ValidTill         *time.Time `db:"valid_till" json:"valid_till,omitempty"`

	// Simplified intake fields, also the duplicate-check key together with
	// the owner.
	RecordType  *string    `db:"record_type" json:"record_type,omitempty"`
	Description *string    `db:"description" json:"description,omitempty"`
	RecordDate  *time.Time `db:"record_date" json:"record_date,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// BMI categories.
const (
	BMIUnderweight = "Underweight"
	BMINormal      = "Normal"
	BMIOverweight  = "Overweight"
	BMIObese       = "Obese"
)

// ComputeBMI returns the body mass index for a weight in kilograms and a
// height in centimetres, rounded to two decimals, with its category. The
// category boundaries are inclusive on the upper edge: 24.9 is still Normal
// and 29.9 is still Overweight.
func ComputeBMI(weightKg, heightCm float64) (float64, string) {
	heightM := heightCm / 100
	bmi := weightKg / (heightM * heightM)
	bmi = math.Round(bmi*100) / 100

	var category string
	switch {
	case bmi < 18.5:
		category = BMIUnderweight
	case bmi <= 24.9:
		category = BMINormal
	case bmi <= 29.9:
		category = BMIOverweight
	default:
		category = BMIObese
	}
	return bmi, category
}

// DeriveMetrics recomputes BMI and its category from the record's height and
// weight. Both derived fields are cleared when either input is absent or not
// positive.
func (r *Record) DeriveMetrics() {
	if r.Height == nil || r.Weight == nil || *r.Height <= 0 || *r.Weight <= 0 {
		r.BMI = nil
		r.BMICategory = nil
		return
	}
	bmi, category := ComputeBMI(*r.Weight, *r.Height)
	r.BMI = &bmi
	r.BMICategory = &category
}
