package treatment

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/dentalchart/dentalchart/pkg/toothnotation"
)

var (
	ErrInvalid  = errors.New("invalid treatment")
	ErrNotFound = errors.New("treatment not found")
)

// Treatment maps to the treatments table. ToothNumber is an FDI code, or nil
// for whole-mouth work such as a cleaning.
type Treatment struct {
	ID            uuid.UUID `db:"id" json:"id"`
	PatientID     uuid.UUID `db:"patient_id" json:"patient_id"`
	ToothNumber   *int      `db:"tooth_number" json:"tooth_number"`
	Diagnosis     string    `db:"diagnosis" json:"diagnosis"`
	Procedure     string    `db:"procedure" json:"procedure"`
	Cost          float64   `db:"cost" json:"cost"`
	Discount      float64   `db:"discount" json:"discount"`
	CanalCount    *int      `db:"canal_count" json:"canal_count,omitempty"`
	CanalLengths  *string   `db:"canal_lengths" json:"canal_lengths,omitempty"`
	Sessions      *string   `db:"sessions" json:"sessions,omitempty"`
	Complications *string   `db:"complications" json:"complications,omitempty"`
	Notes         *string   `db:"notes" json:"notes,omitempty"`
	TreatedAt     time.Time `db:"treated_at" json:"date"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// ToothPalmer is the tooth as clinicians read it back, "-" when none.
func (t *Treatment) ToothPalmer() string {
	if t.ToothNumber == nil {
		return toothnotation.FDIToPalmer(0)
	}
	return toothnotation.FDIToPalmer(*t.ToothNumber)
}

func (t Treatment) MarshalJSON() ([]byte, error) {
	type plain Treatment
	return json.Marshal(struct {
		plain
		ToothPalmer string `json:"tooth_palmer"`
	}{plain(t), t.ToothPalmer()})
}

// Input is a create or update request. Tooth is free text in Palmer
// notation ("UR6", "LL E"); an FDI code is also accepted.
type Input struct {
	PatientID     uuid.UUID  `json:"patient_id"`
	Tooth         string     `json:"tooth"`
	Diagnosis     string     `json:"diagnosis"`
	Procedure     string     `json:"procedure"`
	Cost          float64    `json:"cost"`
	Discount      float64    `json:"discount"`
	CanalCount    *int       `json:"canal_count"`
	CanalLengths  *string    `json:"canal_lengths"`
	Sessions      *string    `json:"sessions"`
	Complications *string    `json:"complications"`
	Notes         *string    `json:"notes"`
	Date          *time.Time `json:"date"`
}
