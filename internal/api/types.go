package api

import (
	"strings"
	"time"

	"github.com/hackgods/clinical-tracker/internal/clinical"
	"github.com/hackgods/clinical-tracker/internal/rewards"
)

// EntryRequest is the body of a create or edit call. ShiftDate accepts a
// plain date ("2026-10-15") or an RFC 3339 timestamp.
type EntryRequest struct {
	ShiftDate          string            `json:"shiftDate"`
	PatientPopulations []string          `json:"patientPopulations"`
	CustomPopulations  []string          `json:"customPopulations"`
	Medications        clinical.ItemRefs `json:"medications"`
	Devices            clinical.ItemRefs `json:"devices"`
	Procedures         clinical.ItemRefs `json:"procedures"`
	CustomMedications  []string          `json:"customMedications"`
	CustomDevices      []string          `json:"customDevices"`
	CustomProcedures   []string          `json:"customProcedures"`
	Notes              string            `json:"notes"`
}

func (req EntryRequest) toForm() (clinical.FormData, error) {
	form := clinical.FormData{
		PatientPopulations: req.PatientPopulations,
		CustomPopulations:  req.CustomPopulations,
		Medications:        req.Medications,
		Devices:            req.Devices,
		Procedures:         req.Procedures,
		CustomMedications:  req.CustomMedications,
		CustomDevices:      req.CustomDevices,
		CustomProcedures:   req.CustomProcedures,
		Notes:              req.Notes,
	}

	raw := strings.TrimSpace(req.ShiftDate)
	if raw == "" {
		return form, nil
	}
	if d, err := time.Parse(time.DateOnly, raw); err == nil {
		form.ShiftDate = d
		return form, nil
	}
	d, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return form, &clinical.ValidationError{Fields: map[string]string{
			"shiftDate": "shift date must be YYYY-MM-DD or RFC 3339",
		}}
	}
	form.ShiftDate = d
	return form, nil
}

type CreateEntryResponse struct {
	Entry         clinical.ClinicalEntry `json:"entry"`
	PointsAwarded int                    `json:"pointsAwarded"`
	Badge         *rewards.Badge         `json:"badge,omitempty"`
	Warning       string                 `json:"warning,omitempty"`
}

type ListEntriesResponse struct {
	Entries []clinical.ClinicalEntry `json:"entries"`
	Count   int                      `json:"count"`
}

type SnoozeRequest struct {
	Days int `json:"days"`
}

type ErrorResponse struct {
	Error   string            `json:"error"`
	Details string            `json:"details,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}
