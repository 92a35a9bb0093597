package treatment

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dentalchart/dentalchart/internal/platform/metrics"
	"github.com/dentalchart/dentalchart/pkg/toothnotation"
)

type Service struct {
	repo    TreatmentRepository
	metrics *metrics.Metrics
	logger  zerolog.Logger
	now     func() time.Time
}

func NewService(repo TreatmentRepository) *Service {
	return &Service{repo: repo, logger: zerolog.Nop(), now: time.Now}
}

func (s *Service) SetMetrics(m *metrics.Metrics)   { s.metrics = m }
func (s *Service) SetLogger(logger zerolog.Logger) { s.logger = logger }

func invalidf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}

// ResolveTooth turns the free-text tooth field into an FDI code. Empty input
// means no specific tooth. A bare number only passes when it is a real FDI
// code.
func (s *Service) ResolveTooth(input string) (*int, error) {
	if strings.TrimSpace(input) == "" {
		return nil, nil
	}
	fdi, ok := toothnotation.PalmerToFDI(input)
	if ok && !toothnotation.ValidFDI(fdi) {
		ok = false
	}
	s.metrics.ObserveConversion("palmer_to_fdi", ok)
	if !ok {
		return nil, invalidf("tooth %q is not a Palmer label or FDI code", input)
	}
	return &fdi, nil
}

func (s *Service) apply(t *Treatment, in *Input) error {
	if strings.TrimSpace(in.Diagnosis) == "" {
		return invalidf("diagnosis is required")
	}
	if strings.TrimSpace(in.Procedure) == "" {
		return invalidf("procedure is required")
	}
	if in.Cost < 0 || in.Discount < 0 {
		return invalidf("cost and discount must not be negative")
	}
	if in.CanalCount != nil && *in.CanalCount < 0 {
		return invalidf("canal_count must not be negative")
	}
	tooth, err := s.ResolveTooth(in.Tooth)
	if err != nil {
		return err
	}

	t.ToothNumber = tooth
	t.Diagnosis = strings.TrimSpace(in.Diagnosis)
	t.Procedure = strings.TrimSpace(in.Procedure)
	t.Cost = in.Cost
	t.Discount = in.Discount
	t.CanalCount = in.CanalCount
	t.CanalLengths = in.CanalLengths
	t.Sessions = in.Sessions
	t.Complications = in.Complications
	t.Notes = in.Notes
	if in.Date != nil {
		t.TreatedAt = in.Date.UTC()
	} else if t.TreatedAt.IsZero() {
		t.TreatedAt = s.now().UTC()
	}
	return nil
}

func (s *Service) CreateTreatment(ctx context.Context, in *Input) (*Treatment, error) {
	if in.PatientID == uuid.Nil {
		return nil, invalidf("patient_id is required")
	}
	t := &Treatment{PatientID: in.PatientID}
	if err := s.apply(t, in); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}
	s.logger.Info().Str("treatment_id", t.ID.String()).Str("tooth", t.ToothPalmer()).Msg("treatment recorded")
	return t, nil
}

func (s *Service) GetTreatment(ctx context.Context, id uuid.UUID) (*Treatment, error) {
	return s.repo.GetByID(ctx, id)
}

// UpdateTreatment replaces the editable fields. The patient never changes.
func (s *Service) UpdateTreatment(ctx context.Context, id uuid.UUID, in *Input) (*Treatment, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(t, in); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Service) DeleteTreatment(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) ListTreatments(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Treatment, int, error) {
	return s.repo.ListByPatient(ctx, patientID, limit, offset)
}
