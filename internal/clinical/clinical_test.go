package clinical

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestItemRefs_UnmarshalMixed(t *testing.T) {
	var refs ItemRefs
	data := `["norepinephrine", {"id": "ecmo", "confidenceLevel": "observed"}, {"categoryId": "iabp"}]`
	if err := json.Unmarshal([]byte(data), &refs); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(refs) != 3 {
		t.Fatalf("expected 3 refs, got %d", len(refs))
	}
	if refs[0].CategoryID != "norepinephrine" || refs[0].ConfidenceLevel != "" {
		t.Errorf("unexpected bare ref %+v", refs[0])
	}
	if refs[1].CategoryID != "ecmo" || refs[1].ConfidenceLevel != ConfidenceObserved {
		t.Errorf("unexpected object ref %+v", refs[1])
	}
	if refs[2].CategoryID != "iabp" {
		t.Errorf("expected categoryId key honoured, got %+v", refs[2])
	}
}

func TestItemRefs_UnmarshalNull(t *testing.T) {
	var refs ItemRefs
	if err := json.Unmarshal([]byte(`null`), &refs); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if refs == nil || len(refs) != 0 {
		t.Errorf("expected empty non-nil refs, got %#v", refs)
	}
}

func TestItemRefs_UnmarshalInvalid(t *testing.T) {
	var refs ItemRefs
	if err := json.Unmarshal([]byte(`[42]`), &refs); err == nil {
		t.Fatal("expected error for numeric ref")
	}
}

func TestNormalize(t *testing.T) {
	form := Normalize(FormData{
		ShiftDate:          time.Date(2026, 3, 4, 22, 15, 0, 0, time.UTC),
		PatientPopulations: []string{"trauma", " trauma ", "", "neuro"},
		CustomMedications:  []string{"  Cangrelor ", ""},
		Devices: ItemRefs{
			{CategoryID: "ecmo", ConfidenceLevel: ConfidenceObserved},
			{CategoryID: "ecmo", ConfidenceLevel: ConfidenceCouldTeach},
			{CategoryID: "iabp", ConfidenceLevel: "expert"},
			{CategoryID: "  "},
		},
		Notes: "  long night  ",
	})

	if !form.ShiftDate.Equal(time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("expected date-only shift date, got %v", form.ShiftDate)
	}
	if len(form.PatientPopulations) != 2 {
		t.Errorf("expected deduplicated populations, got %v", form.PatientPopulations)
	}
	if len(form.CustomMedications) != 1 || form.CustomMedications[0] != "Cangrelor" {
		t.Errorf("expected trimmed custom meds, got %v", form.CustomMedications)
	}
	if len(form.Devices) != 2 {
		t.Fatalf("expected 2 devices, got %+v", form.Devices)
	}
	if form.Devices[0].ConfidenceLevel != ConfidenceCouldTeach {
		t.Errorf("expected repeated ref folded to max level, got %q", form.Devices[0].ConfidenceLevel)
	}
	if form.Devices[1].ConfidenceLevel != DefaultConfidence {
		t.Errorf("expected unknown level replaced by default, got %q", form.Devices[1].ConfidenceLevel)
	}
	if form.Notes != "long night" {
		t.Errorf("expected trimmed notes, got %q", form.Notes)
	}
	if form.Procedures == nil || form.CustomDevices == nil {
		t.Error("expected empty collections instead of nil")
	}
}

func TestValidate(t *testing.T) {
	valid := FormData{ShiftDate: time.Now(), Notes: "ok"}
	if err := Validate(valid); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err := Validate(FormData{Notes: " "})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if _, ok := verr.Fields["shiftDate"]; !ok {
		t.Error("expected shiftDate error")
	}
	if _, ok := verr.Fields["notes"]; !ok {
		t.Error("expected notes error")
	}

	err = Validate(FormData{ShiftDate: time.Now(), Notes: "ok", Devices: ItemRefs{{CategoryID: "ecmo", ConfidenceLevel: "expert"}}})
	if !errors.As(err, &verr) || verr.Fields["devices"] == "" {
		t.Errorf("expected devices error, got %v", err)
	}
}

func TestConfidenceLevel_Max(t *testing.T) {
	if ConfidenceObserved.Max(ConfidenceCouldTeach) != ConfidenceCouldTeach {
		t.Error("expected could_teach")
	}
	if ConfidenceUsedIt.Max(ConfidenceObserved) != ConfidenceUsedIt {
		t.Error("expected used_it")
	}
}

func TestEntry_ApplyKeepsImmutableFields(t *testing.T) {
	now := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	e := NewEntry(uuid.New(), FormData{ShiftDate: now, Notes: "a"}, 10, now)
	id, created := e.ID, e.CreatedAt

	e.Apply(FormData{ShiftDate: now.AddDate(0, 0, -1), Notes: "b"})

	if e.ID != id || !e.CreatedAt.Equal(created) || e.PointsEarned != 10 {
		t.Errorf("immutable fields changed: %+v", e)
	}
	if e.Notes != "b" {
		t.Errorf("expected notes replaced, got %q", e.Notes)
	}
}

// -- MemoryRepository --

func TestMemoryRepository_ListOrder(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	user := uuid.New()
	base := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	older := NewEntry(user, FormData{ShiftDate: base, Notes: "x"}, 10, base)
	newerShift := NewEntry(user, FormData{ShiftDate: base.AddDate(0, 0, 2), Notes: "y"}, 10, base)
	sameDayLater := NewEntry(user, FormData{ShiftDate: base, Notes: "z"}, 10, base.Add(time.Hour))
	for _, e := range []ClinicalEntry{older, newerShift, sameDayLater} {
		if err := repo.Append(ctx, e); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	list, err := repo.List(ctx, user)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []uuid.UUID{newerShift.ID, sameDayLater.ID, older.ID}
	for i, id := range want {
		if list[i].ID != id {
			t.Errorf("position %d: expected %s, got %s", i, id, list[i].ID)
		}
	}
}

func TestMemoryRepository_ScopedByUser(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	a, b := uuid.New(), uuid.New()
	now := time.Now()
	e := NewEntry(a, FormData{ShiftDate: now, Notes: "x"}, 10, now)
	_ = repo.Append(ctx, e)

	if _, err := repo.Get(ctx, b, e.ID); !errors.Is(err, ErrEntryNotFound) {
		t.Errorf("expected ErrEntryNotFound for other user, got %v", err)
	}
	if err := repo.Remove(ctx, b, e.ID); !errors.Is(err, ErrEntryNotFound) {
		t.Errorf("expected ErrEntryNotFound on foreign remove, got %v", err)
	}
	if n, _ := repo.Count(ctx, a); n != 1 {
		t.Errorf("expected entry kept, got count %d", n)
	}

	users, _ := repo.ListUsers(ctx)
	if len(users) != 1 || users[0] != a {
		t.Errorf("unexpected users %v", users)
	}
}

func TestMemoryRepository_ReturnsCopies(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	user := uuid.New()
	now := time.Now()
	e := NewEntry(user, FormData{ShiftDate: now, Notes: "x", Devices: ItemRefs{{CategoryID: "ecmo"}}}, 10, now)
	_ = repo.Append(ctx, e)

	got, _ := repo.Get(ctx, user, e.ID)
	got.Devices[0].CategoryID = "mutated"
	got.Notes = "mutated"

	again, _ := repo.Get(ctx, user, e.ID)
	if again.Notes != "x" || again.Devices[0].CategoryID != "ecmo" {
		t.Error("expected stored entry unaffected by caller mutation")
	}
}
