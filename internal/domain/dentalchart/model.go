package dentalchart

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dentalchart/dentalchart/internal/platform/fhir"
	"github.com/dentalchart/dentalchart/pkg/toothnotation"
)

// ToothSystem is the FHIR code system for ISO 3950 (FDI) tooth numbers.
const ToothSystem = "http://terminology.hl7.org/CodeSystem/ex-tooth"

// ErrInvalidStatus marks a tooth status rejected before it reaches storage.
var ErrInvalidStatus = errors.New("invalid tooth status")

// ErrNotFound is returned when no status exists for a patient's tooth.
var ErrNotFound = errors.New("tooth status not found")

// Condition is the clinical state recorded for one tooth.
type Condition string

const (
	ConditionHealthy   Condition = "Healthy"
	ConditionDecayed   Condition = "Decayed"
	ConditionFilled    Condition = "Filled"
	ConditionMissing   Condition = "Missing"
	ConditionCrown     Condition = "Crown"
	ConditionRootCanal Condition = "RootCanal"
)

var conditions = []Condition{
	ConditionHealthy, ConditionDecayed, ConditionFilled,
	ConditionMissing, ConditionCrown, ConditionRootCanal,
}

// Conditions lists every known condition in chart legend order.
func Conditions() []Condition {
	out := make([]Condition, len(conditions))
	copy(out, conditions)
	return out
}

// ParseCondition matches s case-insensitively, ignoring spaces and
// underscores, so "root canal" and "root_canal" both yield RootCanal.
func ParseCondition(s string) (Condition, bool) {
	key := strings.NewReplacer(" ", "", "_", "", "-", "").Replace(strings.ToLower(s))
	for _, c := range conditions {
		if strings.ToLower(string(c)) == key {
			return c, true
		}
	}
	return "", false
}

// ToothStatus maps to the tooth_status table. ToothNumber is always FDI.
type ToothStatus struct {
	ID          uuid.UUID `db:"id" json:"id"`
	PatientID   uuid.UUID `db:"patient_id" json:"patient_id"`
	ToothNumber int       `db:"tooth_number" json:"tooth_number"`
	Condition   Condition `db:"condition" json:"condition"`
	Notes       *string   `db:"notes" json:"notes,omitempty"`
	VersionID   int       `db:"version_id" json:"version_id"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// ToFHIR renders the status as a BodyStructure located by FDI tooth code.
func (s *ToothStatus) ToFHIR() map[string]interface{} {
	code := strconv.Itoa(s.ToothNumber)
	result := map[string]interface{}{
		"resourceType": "BodyStructure",
		"id":           s.ID.String(),
		"active":       s.Condition != ConditionMissing,
		"patient":      fhir.Reference{Reference: fhir.FormatReference("Patient", s.PatientID.String())},
		"meta":         fhir.Meta{VersionID: strconv.Itoa(s.VersionID), LastUpdated: s.UpdatedAt},
		"location": fhir.CodeableConcept{
			Coding: []fhir.Coding{{System: ToothSystem, Code: code, Display: toothnotation.FDIToPalmer(s.ToothNumber)}},
		},
		"morphology": fhir.CodeableConcept{Text: string(s.Condition)},
	}
	if s.Notes != nil {
		result["description"] = *s.Notes
	}
	return result
}

// Cell is one tooth slot on the rendered chart.
type Cell struct {
	Universal string                  `json:"universal"`
	FDI       int                     `json:"fdi"`
	Palmer    string                  `json:"palmer"`
	Kind      toothnotation.ToothKind `json:"kind"`
	Condition Condition               `json:"condition"`
	Notes     *string                 `json:"notes,omitempty"`
}

// Chart is a patient's dentition laid out in charting order: the upper row
// runs UR back-to-front then UL front-to-back, the lower row LR then LL.
type Chart struct {
	PatientID uuid.UUID `json:"patient_id"`
	Pediatric bool      `json:"pediatric"`
	Upper     []Cell    `json:"upper"`
	Lower     []Cell    `json:"lower"`
}
