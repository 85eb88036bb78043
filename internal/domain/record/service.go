package record

import (
	"context"
	"fmt"
	"mime/multipart"
	"time"

	"github.com/google/uuid"

	"github.com/medivault/medivault/internal/platform/uploads"
)

// FileUploads carries the two multipart attachment slots accepted by the
// create and update paths.
type FileUploads struct {
	TestFile         *multipart.FileHeader
	PrescriptionFile *multipart.FileHeader
}

// Intake is the simplified record-intake payload checked by the
// deduplication gate before saving.
type Intake struct {
	RecordType  string    `json:"record_type"`
	Description string    `json:"description"`
	RecordDate  time.Time `json:"record_date"`
	FullName    string    `json:"full_name"`
}

type Service struct {
	repo  Repository
	files uploads.Store
}

func NewService(repo Repository, files uploads.Store) *Service {
	return &Service{repo: repo, files: files}
}

// Create validates the record, stores any attachments, derives the BMI
// fields, and persists. The attachment writes complete before the record row
// is written, so a stored record never references a missing file.
func (s *Service) Create(ctx context.Context, ownerID uuid.UUID, r *Record, files FileUploads) (*Record, error) {
	if ownerID == uuid.Nil {
		return nil, fmt.Errorf("%w: owner is required", ErrValidation)
	}
	if r.FullName == "" {
		return nil, fmt.Errorf("%w: full_name is required", ErrValidation)
	}

	if err := s.storeFiles(ctx, r, files); err != nil {
		return nil, err
	}

	r.OwnerID = ownerID
	r.DeriveMetrics()
	if err := s.repo.Create(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *Service) Get(ctx context.Context, ownerID, id uuid.UUID) (*Record, error) {
	return s.repo.GetByOwner(ctx, ownerID, id)
}

func (s *Service) List(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*Record, int, error) {
	return s.repo.ListByOwner(ctx, ownerID, limit, offset)
}

// Update replaces the record's mutable fields with the submitted ones, keeps
// existing attachment references when no replacement file was uploaded, and
// re-derives the BMI fields.
func (s *Service) Update(ctx context.Context, ownerID, id uuid.UUID, r *Record, files FileUploads) (*Record, error) {
	existing, err := s.repo.GetByOwner(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if r.FullName == "" {
		return nil, fmt.Errorf("%w: full_name is required", ErrValidation)
	}

	// Carry over file references unless a new upload replaces them.
	r.TestFile = existing.TestFile
	r.PrescriptionFile = existing.PrescriptionFile
	if err := s.storeFiles(ctx, r, files); err != nil {
		return nil, err
	}

	r.ID = existing.ID
	r.OwnerID = existing.OwnerID
	r.CreatedAt = existing.CreatedAt
	r.DeriveMetrics()
	if err := s.repo.Update(ctx, ownerID, r); err != nil {
		return nil, err
	}
	return s.repo.GetByOwner(ctx, ownerID, id)
}

func (s *Service) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	return s.repo.Delete(ctx, ownerID, id)
}

// CheckAndSave is the deduplication gate for the simplified intake path. It
// performs a single exact-match lookup on (owner, type, description, date)
// and persists only on a miss. The check and the save are not one
// transaction; two concurrent identical submissions may both pass, which is
// an accepted limit of the design.
func (s *Service) CheckAndSave(ctx context.Context, ownerID uuid.UUID, in Intake) (*Record, error) {
	if ownerID == uuid.Nil {
		return nil, fmt.Errorf("%w: owner is required", ErrValidation)
	}
	if in.RecordType == "" || in.Description == "" {
		return nil, fmt.Errorf("%w: record_type and description are required", ErrValidation)
	}
	if in.RecordDate.IsZero() {
		return nil, fmt.Errorf("%w: record_date is required", ErrValidation)
	}

	dup, err := s.repo.FindDuplicate(ctx, ownerID, in.RecordType, in.Description, in.RecordDate)
	if err != nil {
		return nil, err
	}
	if dup != nil {
		return nil, ErrDuplicate
	}

	fullName := in.FullName
	if fullName == "" {
		fullName = in.Description
	}
	r := &Record{
		OwnerID:     ownerID,
		FullName:    fullName,
		RecordType:  &in.RecordType,
		Description: &in.Description,
		RecordDate:  &in.RecordDate,
	}
	if err := s.repo.Create(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *Service) storeFiles(ctx context.Context, r *Record, files FileUploads) error {
	if files.TestFile != nil {
		path, err := s.files.Save(ctx, files.TestFile)
		if err != nil {
			return fmt.Errorf("%w: testFile: %v", ErrValidation, err)
		}
		r.TestFile = &path
	}
	if files.PrescriptionFile != nil {
		path, err := s.files.Save(ctx, files.PrescriptionFile)
		if err != nil {
			return fmt.Errorf("%w: prescriptionFile: %v", ErrValidation, err)
		}
		r.PrescriptionFile = &path
	}
	return nil
}
