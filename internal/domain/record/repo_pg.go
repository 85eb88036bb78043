package record

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

const recordCols = `id, owner_id, full_name, date_of_birth, gender, blood_group, contact_number,
	email, address, emergency_contact_name, emergency_contact_relation, emergency_contact_phone,
	allergies, chronic_conditions, past_surgeries, vaccinations, family_history,
	medication_name, dosage, frequency, med_start_date, med_end_date, prescribing_doctor,
	test_name, test_date, test_results, lab_name, test_file,
	prescription_name, prescription_doctor, prescription_date, prescription_file,
	height, weight, bmi, bmi_category, blood_pressure, heart_rate, sugar_level, cholesterol,
	insurance_provider, policy_number, valid_till, record_type, description, record_date,
	created_at, updated_at`

func scanRecord(row pgx.Row) (*Record, error) {
	var r Record
	err := row.Scan(&r.ID, &r.OwnerID, &r.FullName, &r.DateOfBirth, &r.Gender, &r.BloodGroup, &r.ContactNumber,
		&r.Email, &r.Address, &r.EmergencyContactName, &r.EmergencyContactRelation, &r.EmergencyContactPhone,
		&r.Allergies, &r.ChronicConditions, &r.PastSurgeries, &r.Vaccinations, &r.FamilyHistory,
		&r.MedicationName, &r.Dosage, &r.Frequency, &r.MedStartDate, &r.MedEndDate, &r.PrescribingDoctor,
		&r.TestName, &r.TestDate, &r.TestResults, &r.LabName, &r.TestFile,
		&r.PrescriptionName, &r.PrescriptionDoctor, &r.PrescriptionDate, &r.PrescriptionFile,
		&r.Height, &r.Weight, &r.BMI, &r.BMICategory, &r.BloodPressure, &r.HeartRate, &r.SugarLevel, &r.Cholesterol,
		&r.InsuranceProvider, &r.PolicyNumber, &r.ValidTill, &r.RecordType, &r.Description, &r.RecordDate,
		&r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (p *repoPG) Create(ctx context.Context, r *Record) error {
	r.ID = uuid.New()
	row := p.pool.QueryRow(ctx, `
		INSERT INTO health_record (id, owner_id, full_name, date_of_birth, gender, blood_group, contact_number,
			email, address, emergency_contact_name, emergency_contact_relation, emergency_contact_phone,
			allergies, chronic_conditions, past_surgeries, vaccinations, family_history,
			medication_name, dosage, frequency, med_start_date, med_end_date, prescribing_doctor,
			test_name, test_date, test_results, lab_name, test_file,
			prescription_name, prescription_doctor, prescription_date, prescription_file,
			height, weight, bmi, bmi_category, blood_pressure, heart_rate, sugar_level, cholesterol,
			insurance_provider, policy_number, valid_till, record_type, description, record_date)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,
			$24,$25,$26,$27,$28,$29,$30,$31,$32,$33,$34,$35,$36,$37,$38,$39,$40,$41,$42,$43,$44,$45,$46)
		RETURNING created_at, updated_at`,
		r.ID, r.OwnerID, r.FullName, r.DateOfBirth, r.Gender, r.BloodGroup, r.ContactNumber,
		r.Email, r.Address, r.EmergencyContactName, r.EmergencyContactRelation, r.EmergencyContactPhone,
		r.Allergies, r.ChronicConditions, r.PastSurgeries, r.Vaccinations, r.FamilyHistory,
		r.MedicationName, r.Dosage, r.Frequency, r.MedStartDate, r.MedEndDate, r.PrescribingDoctor,
		r.TestName, r.TestDate, r.TestResults, r.LabName, r.TestFile,
		r.PrescriptionName, r.PrescriptionDoctor, r.PrescriptionDate, r.PrescriptionFile,
		r.Height, r.Weight, r.BMI, r.BMICategory, r.BloodPressure, r.HeartRate, r.SugarLevel, r.Cholesterol,
		r.InsuranceProvider, r.PolicyNumber, r.ValidTill, r.RecordType, r.Description, r.RecordDate)
	return row.Scan(&r.CreatedAt, &r.UpdatedAt)
}

func (p *repoPG) GetByOwner(ctx context.Context, ownerID, id uuid.UUID) (*Record, error) {
	r, err := scanRecord(p.pool.QueryRow(ctx,
		`SELECT `+recordCols+` FROM health_record WHERE id = $1 AND owner_id = $2`, id, ownerID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return r, err
}

func (p *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Record, error) {
	r, err := scanRecord(p.pool.QueryRow(ctx,
		`SELECT `+recordCols+` FROM health_record WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return r, err
}

func (p *repoPG) ListByOwner(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*Record, int, error) {
	var total int
	if err := p.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM health_record WHERE owner_id = $1`, ownerID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := p.pool.Query(ctx,
		`SELECT `+recordCols+` FROM health_record WHERE owner_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		ownerID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, r)
	}
	return items, total, rows.Err()
}

func (p *repoPG) Update(ctx context.Context, ownerID uuid.UUID, r *Record) error {
	tag, err := p.pool.Exec(ctx, `
		UPDATE health_record SET full_name=$3, date_of_birth=$4, gender=$5, blood_group=$6, contact_number=$7,
			email=$8, address=$9, emergency_contact_name=$10, emergency_contact_relation=$11, emergency_contact_phone=$12,
			allergies=$13, chronic_conditions=$14, past_surgeries=$15, vaccinations=$16, family_history=$17,
			medication_name=$18, dosage=$19, frequency=$20, med_start_date=$21, med_end_date=$22, prescribing_doctor=$23,
			test_name=$24, test_date=$25, test_results=$26, lab_name=$27, test_file=$28,
			prescription_name=$29, prescription_doctor=$30, prescription_date=$31, prescription_file=$32,
			height=$33, weight=$34, bmi=$35, bmi_category=$36, blood_pressure=$37, heart_rate=$38, sugar_level=$39, cholesterol=$40,
			insurance_provider=$41, policy_number=$42, valid_till=$43, record_type=$44, description=$45, record_date=$46,
			updated_at=NOW()
		WHERE id = $1 AND owner_id = $2`,
		r.ID, ownerID, r.FullName, r.DateOfBirth, r.Gender, r.BloodGroup, r.ContactNumber,
		r.Email, r.Address, r.EmergencyContactName, r.EmergencyContactRelation, r.EmergencyContactPhone,
		r.Allergies, r.ChronicConditions, r.PastSurgeries, r.Vaccinations, r.FamilyHistory,
		r.MedicationName, r.Dosage, r.Frequency, r.MedStartDate, r.MedEndDate, r.PrescribingDoctor,
		r.TestName, r.TestDate, r.TestResults, r.LabName, r.TestFile,
		r.PrescriptionName, r.PrescriptionDoctor, r.PrescriptionDate, r.PrescriptionFile,
		r.Height, r.Weight, r.BMI, r.BMICategory, r.BloodPressure, r.HeartRate, r.SugarLevel, r.Cholesterol,
		r.InsuranceProvider, r.PolicyNumber, r.ValidTill, r.RecordType, r.Description, r.RecordDate)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *repoPG) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	tag, err := p.pool.Exec(ctx,
		`DELETE FROM health_record WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *repoPG) FindDuplicate(ctx context.Context, ownerID uuid.UUID, recordType, description string, date time.Time) (*Record, error) {
	r, err := scanRecord(p.pool.QueryRow(ctx,
		`SELECT `+recordCols+` FROM health_record
		 WHERE owner_id = $1 AND record_type = $2 AND description = $3 AND record_date = $4
		 LIMIT 1`,
		ownerID, recordType, description, date))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return r, err
}
