package treatment

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dentalchart/dentalchart/internal/platform/db"
)

type treatmentRepoPG struct{ pool db.Querier }

func NewTreatmentRepoPG(pool db.Querier) TreatmentRepository {
	return &treatmentRepoPG{pool: pool}
}

const trCols = `id, patient_id, tooth_number, diagnosis, procedure, cost, discount,
	canal_count, canal_lengths, sessions, complications, notes,
	treated_at, created_at, updated_at`

func scanTreatment(row pgx.Row) (*Treatment, error) {
	var t Treatment
	err := row.Scan(&t.ID, &t.PatientID, &t.ToothNumber, &t.Diagnosis, &t.Procedure, &t.Cost, &t.Discount,
		&t.CanalCount, &t.CanalLengths, &t.Sessions, &t.Complications, &t.Notes,
		&t.TreatedAt, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *treatmentRepoPG) Create(ctx context.Context, t *Treatment) error {
	t.ID = uuid.New()
	return db.Conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO treatments (id, patient_id, tooth_number, diagnosis, procedure, cost, discount,
			canal_count, canal_lengths, sessions, complications, notes, treated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		RETURNING created_at, updated_at`,
		t.ID, t.PatientID, t.ToothNumber, t.Diagnosis, t.Procedure, t.Cost, t.Discount,
		t.CanalCount, t.CanalLengths, t.Sessions, t.Complications, t.Notes, t.TreatedAt,
	).Scan(&t.CreatedAt, &t.UpdatedAt)
}

func (r *treatmentRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Treatment, error) {
	return scanTreatment(db.Conn(ctx, r.pool).QueryRow(ctx, `SELECT `+trCols+` FROM treatments WHERE id = $1`, id))
}

func (r *treatmentRepoPG) Update(ctx context.Context, t *Treatment) error {
	tag, err := db.Conn(ctx, r.pool).Exec(ctx, `
		UPDATE treatments SET tooth_number=$2, diagnosis=$3, procedure=$4, cost=$5, discount=$6,
			canal_count=$7, canal_lengths=$8, sessions=$9, complications=$10, notes=$11,
			treated_at=$12, updated_at=NOW()
		WHERE id = $1`,
		t.ID, t.ToothNumber, t.Diagnosis, t.Procedure, t.Cost, t.Discount,
		t.CanalCount, t.CanalLengths, t.Sessions, t.Complications, t.Notes, t.TreatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *treatmentRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := db.Conn(ctx, r.pool).Exec(ctx, `DELETE FROM treatments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *treatmentRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Treatment, int, error) {
	conn := db.Conn(ctx, r.pool)

	var total int
	if err := conn.QueryRow(ctx, `SELECT COUNT(*) FROM treatments WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := conn.Query(ctx, `SELECT `+trCols+` FROM treatments WHERE patient_id = $1
		ORDER BY treated_at DESC LIMIT $2 OFFSET $3`, patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Treatment
	for rows.Next() {
		t, err := scanTreatment(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, t)
	}
	return items, total, rows.Err()
}
