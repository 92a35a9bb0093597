package dentalchart

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dentalchart/dentalchart/internal/platform/db"
)

type toothStatusRepoPG struct{ pool db.Querier }

func NewToothStatusRepoPG(pool db.Querier) ToothStatusRepository {
	return &toothStatusRepoPG{pool: pool}
}

const tsCols = `id, patient_id, tooth_number, condition, notes, version_id, created_at, updated_at`

func scanStatus(row pgx.Row) (*ToothStatus, error) {
	var s ToothStatus
	err := row.Scan(&s.ID, &s.PatientID, &s.ToothNumber, &s.Condition, &s.Notes,
		&s.VersionID, &s.CreatedAt, &s.UpdatedAt)
	return &s, err
}

func (r *toothStatusRepoPG) Upsert(ctx context.Context, s *ToothStatus) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	row := db.Conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO tooth_status (id, patient_id, tooth_number, condition, notes)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (patient_id, tooth_number) DO UPDATE
		SET condition = EXCLUDED.condition, notes = EXCLUDED.notes,
			version_id = tooth_status.version_id + 1, updated_at = NOW()
		RETURNING id, version_id, created_at, updated_at`,
		s.ID, s.PatientID, s.ToothNumber, s.Condition, s.Notes)
	if err := row.Scan(&s.ID, &s.VersionID, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return fmt.Errorf("upsert tooth %d: %w", s.ToothNumber, err)
	}
	return nil
}

func (r *toothStatusRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*ToothStatus, error) {
	rows, err := db.Conn(ctx, r.pool).Query(ctx,
		`SELECT `+tsCols+` FROM tooth_status WHERE patient_id = $1 ORDER BY tooth_number`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*ToothStatus
	for rows.Next() {
		s, err := scanStatus(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}

func (r *toothStatusRepoPG) Delete(ctx context.Context, patientID uuid.UUID, toothNumber int) error {
	tag, err := db.Conn(ctx, r.pool).Exec(ctx,
		`DELETE FROM tooth_status WHERE patient_id = $1 AND tooth_number = $2`, patientID, toothNumber)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
