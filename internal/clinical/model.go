package clinical

import (
	"time"

	"github.com/google/uuid"
)

type ConfidenceLevel string

const (
	ConfidenceObserved   ConfidenceLevel = "observed"
	ConfidenceUsedIt     ConfidenceLevel = "used_it"
	ConfidenceCouldTeach ConfidenceLevel = "could_teach"
)

// DefaultConfidence is assigned to catalog references that arrive without a level.
const DefaultConfidence = ConfidenceUsedIt

// Rank orders confidence levels: observed < used_it < could_teach.
// Unknown values rank below observed.
func (c ConfidenceLevel) Rank() int {
	switch c {
	case ConfidenceObserved:
		return 1
	case ConfidenceUsedIt:
		return 2
	case ConfidenceCouldTeach:
		return 3
	default:
		return 0
	}
}

func (c ConfidenceLevel) Valid() bool {
	return c.Rank() > 0
}

// Max returns the higher of two confidence levels.
func (c ConfidenceLevel) Max(other ConfidenceLevel) ConfidenceLevel {
	if other.Rank() > c.Rank() {
		return other
	}
	return c
}

// ItemRef points into a medication, device or procedure catalog.
type ItemRef struct {
	CategoryID      string          `json:"categoryId"`
	ConfidenceLevel ConfidenceLevel `json:"confidenceLevel"`
}

// ClinicalEntry is one logged shift.
type ClinicalEntry struct {
	ID                 uuid.UUID `json:"id"`
	UserID             uuid.UUID `json:"userId"`
	ShiftDate          time.Time `json:"shiftDate"`
	PatientPopulations []string  `json:"patientPopulations"`
	CustomPopulations  []string  `json:"customPopulations"`
	Medications        []ItemRef `json:"medications"`
	Devices            []ItemRef `json:"devices"`
	Procedures         []ItemRef `json:"procedures"`
	CustomMedications  []string  `json:"customMedications"`
	CustomDevices      []string  `json:"customDevices"`
	CustomProcedures   []string  `json:"customProcedures"`
	Notes              string    `json:"notes"`
	PointsEarned       int       `json:"pointsEarned"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// FormData holds the user-editable fields of an entry, as submitted by a
// "log shift" or "edit" action.
type FormData struct {
	ShiftDate          time.Time `json:"shiftDate"`
	PatientPopulations []string  `json:"patientPopulations"`
	CustomPopulations  []string  `json:"customPopulations"`
	Medications        ItemRefs  `json:"medications"`
	Devices            ItemRefs  `json:"devices"`
	Procedures         ItemRefs  `json:"procedures"`
	CustomMedications  []string  `json:"customMedications"`
	CustomDevices      []string  `json:"customDevices"`
	CustomProcedures   []string  `json:"customProcedures"`
	Notes              string    `json:"notes"`
}

// NewEntry builds a fresh entry from normalized form data. ID, CreatedAt and
// PointsEarned are fixed here and never change afterwards.
func NewEntry(userID uuid.UUID, form FormData, points int, now time.Time) ClinicalEntry {
	e := ClinicalEntry{
		ID:           uuid.New(),
		UserID:       userID,
		PointsEarned: points,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	e.Apply(form)
	return e
}

// Apply replaces every mutable field with the values from form.
func (e *ClinicalEntry) Apply(form FormData) {
	form = Normalize(form)
	e.ShiftDate = form.ShiftDate
	e.PatientPopulations = form.PatientPopulations
	e.CustomPopulations = form.CustomPopulations
	e.Medications = form.Medications
	e.Devices = form.Devices
	e.Procedures = form.Procedures
	e.CustomMedications = form.CustomMedications
	e.CustomDevices = form.CustomDevices
	e.CustomProcedures = form.CustomProcedures
	e.Notes = form.Notes
}

const (
	EventEntryCreated      = "ENTRY_CREATED"
	EventEntryUpdated      = "ENTRY_UPDATED"
	EventEntryDeleted      = "ENTRY_DELETED"
	EventPointsAwardFailed = "POINTS_AWARD_FAILED"
	EventBadgeEarned       = "BADGE_EARNED"
	EventNudgeDue          = "NUDGE_DUE"
)

type EventLog struct {
	ID        int64
	EventType string
	UserID    uuid.UUID
	EntryID   *uuid.UUID
	Payload   []byte
	CreatedAt time.Time
}
