package dentalchart

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dentalchart/dentalchart/internal/platform/db"
	"github.com/dentalchart/dentalchart/internal/platform/metrics"
	"github.com/dentalchart/dentalchart/pkg/toothnotation"
)

type Service struct {
	repo    ToothStatusRepository
	cache   Cache
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

func NewService(repo ToothStatusRepository) *Service {
	return &Service{repo: repo, logger: zerolog.Nop()}
}

// SetCache enables read-through caching of patient charts.
func (s *Service) SetCache(c Cache)                { s.cache = c }
func (s *Service) SetMetrics(m *metrics.Metrics)   { s.metrics = m }
func (s *Service) SetLogger(logger zerolog.Logger) { s.logger = logger }

func invalidf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidStatus, fmt.Sprintf(format, args...))
}

// UpdateToothStatus records the condition of one tooth, replacing any
// earlier record for the same patient and FDI code.
func (s *Service) UpdateToothStatus(ctx context.Context, st *ToothStatus) error {
	if st.PatientID == uuid.Nil {
		return invalidf("patient_id is required")
	}
	if !toothnotation.ValidFDI(st.ToothNumber) {
		return invalidf("tooth_number %d is not an FDI tooth code", st.ToothNumber)
	}
	cond, ok := ParseCondition(string(st.Condition))
	if !ok {
		return invalidf("unknown condition %q", st.Condition)
	}
	st.Condition = cond

	if err := s.repo.Upsert(ctx, st); err != nil {
		return err
	}
	s.invalidate(ctx, st.PatientID)
	s.metrics.ObserveToothUpdate(string(st.Condition))
	return nil
}

// RecordClick handles a click on a charted tooth, which the chart identifies
// by Universal id. Unknown ids are rejected before anything is stored.
func (s *Service) RecordClick(ctx context.Context, patientID uuid.UUID, universal string, cond Condition, notes *string) (*ToothStatus, error) {
	fdi, err := toothnotation.ToFDI(universal)
	s.metrics.ObserveConversion("to_fdi", err == nil)
	if err != nil {
		return nil, err
	}
	st := &ToothStatus{PatientID: patientID, ToothNumber: fdi, Condition: cond, Notes: notes}
	if err := s.UpdateToothStatus(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}

func (s *Service) ListToothStatus(ctx context.Context, patientID uuid.UUID) ([]*ToothStatus, error) {
	tenant := db.TenantFromContext(ctx)
	var gen int64
	canStore := false
	if s.cache != nil {
		items, g, hit, err := s.cache.Get(ctx, tenant, patientID)
		if err != nil {
			s.logger.Warn().Err(err).Str("patient_id", patientID.String()).Msg("chart cache read failed")
		} else {
			gen, canStore = g, true
		}
		s.metrics.ObserveCacheLookup(hit)
		if hit {
			return items, nil
		}
	}

	items, err := s.repo.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if canStore {
		stored, err := s.cache.Set(ctx, tenant, patientID, gen, items)
		switch {
		case err != nil:
			s.logger.Warn().Err(err).Str("patient_id", patientID.String()).Msg("chart cache write failed")
		case !stored:
			s.logger.Debug().Str("patient_id", patientID.String()).Msg("chart changed while loading, not cached")
		}
	}
	return items, nil
}

func (s *Service) ClearToothStatus(ctx context.Context, patientID uuid.UUID, toothNumber int) error {
	if !toothnotation.ValidFDI(toothNumber) {
		return invalidf("tooth_number %d is not an FDI tooth code", toothNumber)
	}
	if err := s.repo.Delete(ctx, patientID, toothNumber); err != nil {
		return err
	}
	s.invalidate(ctx, patientID)
	return nil
}

// GetChart lays a patient's statuses over the adult or pediatric arch.
// Teeth without a record are Healthy; records for the other dentition are
// left off.
func (s *Service) GetChart(ctx context.Context, patientID uuid.UUID, pediatric bool) (*Chart, error) {
	items, err := s.ListToothStatus(ctx, patientID)
	if err != nil {
		return nil, err
	}
	byFDI := make(map[int]*ToothStatus, len(items))
	for _, it := range items {
		byFDI[it.ToothNumber] = it
	}

	layout := toothnotation.ArchLayout(pediatric)
	row := func(ids []string) ([]Cell, error) {
		cells := make([]Cell, 0, len(ids))
		for _, id := range ids {
			fdi, err := toothnotation.ToFDI(id)
			if err != nil {
				return nil, fmt.Errorf("chart layout: %w", err)
			}
			cell := Cell{
				Universal: id,
				FDI:       fdi,
				Palmer:    toothnotation.FDIToPalmer(fdi),
				Kind:      toothnotation.Kind(id, pediatric),
				Condition: ConditionHealthy,
			}
			if st, ok := byFDI[fdi]; ok {
				cell.Condition = st.Condition
				cell.Notes = st.Notes
			}
			cells = append(cells, cell)
		}
		return cells, nil
	}

	upper, err := row(layout.Upper())
	if err != nil {
		return nil, err
	}
	lower, err := row(layout.Lower())
	if err != nil {
		return nil, err
	}
	return &Chart{PatientID: patientID, Pediatric: pediatric, Upper: upper, Lower: lower}, nil
}

func (s *Service) invalidate(ctx context.Context, patientID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, db.TenantFromContext(ctx), patientID); err != nil {
		s.logger.Error().Err(err).Str("patient_id", patientID.String()).Msg("chart cache invalidation failed")
	}
}
