package clinical

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// ItemRefs decodes catalog references stored either as bare category ids
// ("norepinephrine") or as objects ({"id": "...", "confidenceLevel": "..."}).
type ItemRefs []ItemRef

func (r *ItemRefs) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*r = ItemRefs{}
		return nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("item refs: %w", err)
	}

	out := make(ItemRefs, 0, len(raw))
	for i, msg := range raw {
		ref, err := decodeItemRef(msg)
		if err != nil {
			return fmt.Errorf("item refs[%d]: %w", i, err)
		}
		out = append(out, ref)
	}
	*r = out
	return nil
}

func decodeItemRef(msg json.RawMessage) (ItemRef, error) {
	var id string
	if err := json.Unmarshal(msg, &id); err == nil {
		return ItemRef{CategoryID: id}, nil
	}

	var obj struct {
		ID              string          `json:"id"`
		CategoryID      string          `json:"categoryId"`
		ConfidenceLevel ConfidenceLevel `json:"confidenceLevel"`
	}
	if err := json.Unmarshal(msg, &obj); err != nil {
		return ItemRef{}, err
	}
	ref := ItemRef{CategoryID: obj.CategoryID, ConfidenceLevel: obj.ConfidenceLevel}
	if ref.CategoryID == "" {
		ref.CategoryID = obj.ID
	}
	return ref, nil
}

// Normalize puts form data into the canonical shape the engines expect:
// no nil collections, trimmed labels, date-only shift dates, and every
// catalog reference carrying a valid confidence level.
func Normalize(form FormData) FormData {
	if !form.ShiftDate.IsZero() {
		form.ShiftDate = DateOnly(form.ShiftDate)
	}
	form.Notes = strings.TrimSpace(form.Notes)
	form.PatientPopulations = uniqueLabels(form.PatientPopulations)
	form.CustomPopulations = cleanLabels(form.CustomPopulations)
	form.CustomMedications = cleanLabels(form.CustomMedications)
	form.CustomDevices = cleanLabels(form.CustomDevices)
	form.CustomProcedures = cleanLabels(form.CustomProcedures)
	form.Medications = normalizeRefs(form.Medications)
	form.Devices = normalizeRefs(form.Devices)
	form.Procedures = normalizeRefs(form.Procedures)
	return form
}

// DateOnly truncates t to midnight UTC of its calendar date.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func cleanLabels(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

func uniqueLabels(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range cleanLabels(in) {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

// normalizeRefs fills default confidence and folds repeated category ids
// into one reference holding the highest level seen.
func normalizeRefs(in []ItemRef) []ItemRef {
	index := make(map[string]int, len(in))
	out := make([]ItemRef, 0, len(in))
	for _, ref := range in {
		ref.CategoryID = strings.TrimSpace(ref.CategoryID)
		if ref.CategoryID == "" {
			continue
		}
		if !ref.ConfidenceLevel.Valid() {
			ref.ConfidenceLevel = DefaultConfidence
		}
		if i, ok := index[ref.CategoryID]; ok {
			out[i].ConfidenceLevel = out[i].ConfidenceLevel.Max(ref.ConfidenceLevel)
			continue
		}
		index[ref.CategoryID] = len(out)
		out = append(out, ref)
	}
	return out
}
