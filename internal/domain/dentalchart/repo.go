package dentalchart

import (
	"context"

	"github.com/google/uuid"
)

type ToothStatusRepository interface {
	// Upsert inserts or replaces the status for (PatientID, ToothNumber) and
	// fills in the stored id, version and timestamps.
	Upsert(ctx context.Context, s *ToothStatus) error
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*ToothStatus, error)
	Delete(ctx context.Context, patientID uuid.UUID, toothNumber int) error
}
