package dentalchart

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dentalchart/dentalchart/internal/platform/db"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func TestToothStatusRepoPG_Upsert(t *testing.T) {
	mock := newMock(t)
	repo := NewToothStatusRepoPG(mock)

	patient := uuid.New()
	storedID := uuid.New()
	now := time.Now()
	st := &ToothStatus{PatientID: patient, ToothNumber: 26, Condition: ConditionCrown}

	mock.ExpectQuery("INSERT INTO tooth_status").
		WithArgs(pgxmock.AnyArg(), patient, 26, ConditionCrown, st.Notes).
		WillReturnRows(pgxmock.NewRows([]string{"id", "version_id", "created_at", "updated_at"}).
			AddRow(storedID, 3, now, now))

	require.NoError(t, repo.Upsert(context.Background(), st))
	assert.Equal(t, storedID, st.ID, "conflicting row keeps its existing id")
	assert.Equal(t, 3, st.VersionID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestToothStatusRepoPG_UpsertError(t *testing.T) {
	mock := newMock(t)
	repo := NewToothStatusRepoPG(mock)

	patient := uuid.New()
	mock.ExpectQuery("INSERT INTO tooth_status").
		WithArgs(pgxmock.AnyArg(), patient, 11, ConditionHealthy, (*string)(nil)).
		WillReturnError(errors.New("relation does not exist"))

	err := repo.Upsert(context.Background(), &ToothStatus{PatientID: patient, ToothNumber: 11, Condition: ConditionHealthy})
	assert.ErrorContains(t, err, "upsert tooth 11")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestToothStatusRepoPG_ListByPatient(t *testing.T) {
	mock := newMock(t)
	repo := NewToothStatusRepoPG(mock)

	patient := uuid.New()
	now := time.Now()
	notes := "sensitive"
	cols := []string{"id", "patient_id", "tooth_number", "condition", "notes", "version_id", "created_at", "updated_at"}
	mock.ExpectQuery("SELECT .+ FROM tooth_status WHERE patient_id").
		WithArgs(patient).
		WillReturnRows(pgxmock.NewRows(cols).
			AddRow(uuid.New(), patient, 11, ConditionFilled, &notes, 1, now, now).
			AddRow(uuid.New(), patient, 36, ConditionRootCanal, (*string)(nil), 2, now, now))

	items, err := repo.ListByPatient(context.Background(), patient)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, 11, items[0].ToothNumber)
	assert.Equal(t, "sensitive", *items[0].Notes)
	assert.Equal(t, ConditionRootCanal, items[1].Condition)
	assert.Nil(t, items[1].Notes)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestToothStatusRepoPG_Delete(t *testing.T) {
	mock := newMock(t)
	repo := NewToothStatusRepoPG(mock)
	patient := uuid.New()

	mock.ExpectExec("DELETE FROM tooth_status").WithArgs(patient, 21).WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec("DELETE FROM tooth_status").WithArgs(patient, 22).WillReturnResult(pgxmock.NewResult("DELETE", 0))

	assert.NoError(t, repo.Delete(context.Background(), patient, 21))
	assert.ErrorIs(t, repo.Delete(context.Background(), patient, 22), ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestToothStatusRepoPG_UsesTenantConn(t *testing.T) {
	pool := newMock(t)
	tenantConn := newMock(t)
	repo := NewToothStatusRepoPG(pool)
	patient := uuid.New()

	tenantConn.ExpectExec("DELETE FROM tooth_status").WithArgs(patient, 11).WillReturnResult(pgxmock.NewResult("DELETE", 1))

	ctx := db.WithConn(context.Background(), tenantConn)
	require.NoError(t, repo.Delete(ctx, patient, 11))
	assert.NoError(t, tenantConn.ExpectationsWereMet())
	assert.NoError(t, pool.ExpectationsWereMet())
}
