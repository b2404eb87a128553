package acuity

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"

	"github.com/hackgods/clinical-tracker/internal/catalog"
	"github.com/hackgods/clinical-tracker/internal/clinical"
)

func newTestEngine() *Engine {
	return NewEngine(catalog.Default(), DefaultConfig())
}

func shift(day int) clinical.ClinicalEntry {
	return clinical.ClinicalEntry{
		ShiftDate: time.Date(2026, 5, day, 0, 0, 0, 0, time.UTC),
		Notes:     "shift notes",
	}
}

func ref(id string, c clinical.ConfidenceLevel) clinical.ItemRef {
	return clinical.ItemRef{CategoryID: id, ConfidenceLevel: c}
}

func blankShifts(n int) []clinical.ClinicalEntry {
	out := make([]clinical.ClinicalEntry, n)
	for i := range out {
		out[i] = shift(i + 1)
	}
	return out
}

func TestScore_BelowMinimumEntries(t *testing.T) {
	devices := []string{"arterial_line", "ventilator", "ecmo", "iabp"}
	meds := []string{"propofol", "fentanyl", "norepinephrine", "vasopressin"}

	var entries []clinical.ClinicalEntry
	for i := 0; i < 4; i++ {
		e := shift(i + 1)
		e.Devices = []clinical.ItemRef{ref(devices[i], clinical.ConfidenceCouldTeach)}
		e.Medications = []clinical.ItemRef{ref(meds[i], clinical.ConfidenceCouldTeach)}
		entries = append(entries, e)
	}

	s := newTestEngine().Score(entries)
	if s.EntryCount != 4 {
		t.Errorf("expected entryCount 4, got %d", s.EntryCount)
	}
	if s.TotalScore != 0 {
		t.Errorf("expected totalScore 0 below threshold, got %d", s.TotalScore)
	}
	for name, c := range s.Components {
		if c.Score != 0 {
			t.Errorf("expected %s score 0, got %d", name, c.Score)
		}
	}
	if len(s.Components) != len(Components) {
		t.Errorf("expected %d components, got %d", len(Components), len(s.Components))
	}
	if s.ReadinessLevel != LevelEmerging {
		t.Errorf("expected emerging, got %s", s.ReadinessLevel)
	}
	if len(s.Strengths) != 0 || len(s.Gaps) != 0 {
		t.Errorf("expected no strengths or gaps, got %v / %v", s.Strengths, s.Gaps)
	}
}

func TestScore_Empty(t *testing.T) {
	s := newTestEngine().Score(nil)
	if s.TotalScore != 0 || s.EntryCount != 0 {
		t.Errorf("expected zero score for no entries, got %+v", s)
	}
	if s.Strengths == nil || s.Gaps == nil {
		t.Error("expected non-nil strengths and gaps")
	}
}

func TestScore_WorkedExample(t *testing.T) {
	entries := blankShifts(5)
	entries[0].Devices = []clinical.ItemRef{ref("ecmo", clinical.ConfidenceUsedIt)}
	entries[1].Devices = []clinical.ItemRef{ref("iabp", clinical.ConfidenceObserved)}
	entries[0].Medications = []clinical.ItemRef{
		ref("norepinephrine", clinical.ConfidenceCouldTeach),
		ref("propofol", clinical.ConfidenceObserved),
	}
	entries[2].Medications = []clinical.ItemRef{ref("vasopressin", clinical.ConfidenceUsedIt)}
	entries[3].Procedures = []clinical.ItemRef{
		ref("intubation", clinical.ConfidenceCouldTeach),
		ref("code_blue", clinical.ConfidenceObserved),
	}
	entries[4].PatientPopulations = []string{"trauma", "neuro"}
	entries[4].CustomPopulations = []string{"Ortho"}

	s := newTestEngine().Score(entries)

	want := map[ComponentName]int{
		DeviceComplexity:       30,
		MedicationVariety:      24,
		ProcedureParticipation: 19,
		PopulationDiversity:    50,
		VasopressorDepth:       44,
	}
	for name, score := range want {
		if got := s.Components[name].Score; got != score {
			t.Errorf("%s: expected %d, got %d", name, score, got)
		}
	}
	if s.TotalScore != 31 {
		t.Errorf("expected total 31, got %d", s.TotalScore)
	}
	if s.ReadinessLevel != LevelEmerging {
		t.Errorf("expected emerging, got %s", s.ReadinessLevel)
	}
	wantGaps := []string{"Procedure Participation", "Medication Variety", "Device Complexity"}
	if fmt.Sprint(s.Gaps) != fmt.Sprint(wantGaps) {
		t.Errorf("expected gaps %v, got %v", wantGaps, s.Gaps)
	}
	if len(s.Strengths) != 0 {
		t.Errorf("expected no strengths, got %v", s.Strengths)
	}
}

func TestScore_StrengthsOrderedByScore(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PopulationCeiling = 2
	cfg.DeviceCeiling = 4
	eng := NewEngine(catalog.Default(), cfg)

	entries := blankShifts(5)
	entries[0].PatientPopulations = []string{"trauma", "burn"}
	entries[1].Devices = []clinical.ItemRef{ref("ecmo", clinical.ConfidenceUsedIt)}

	s := eng.Score(entries)
	if s.Components[PopulationDiversity].Score != 100 {
		t.Fatalf("expected population 100, got %d", s.Components[PopulationDiversity].Score)
	}
	if s.Components[DeviceComplexity].Score != 75 {
		t.Fatalf("expected device 75, got %d", s.Components[DeviceComplexity].Score)
	}
	want := []string{"Population Diversity", "Device Complexity"}
	if fmt.Sprint(s.Strengths) != fmt.Sprint(want) {
		t.Errorf("expected strengths %v, got %v", want, s.Strengths)
	}
}

func TestScore_DeviceComplexityIncreasesWithHighAcuityDevices(t *testing.T) {
	eng := newTestEngine()
	highAcuity := []string{"ventilator", "pa_catheter", "iabp", "impella", "ecmo", "lvad"}

	entries := blankShifts(5)
	prev := eng.Score(entries).Components[DeviceComplexity].Score
	for i, id := range highAcuity {
		e := shift(10 + i)
		e.Devices = []clinical.ItemRef{ref(id, clinical.ConfidenceUsedIt)}
		entries = append(entries, e)

		got := eng.Score(entries).Components[DeviceComplexity].Score
		if got <= prev && prev < 100 {
			t.Errorf("after %s: expected device score to rise above %d, got %d", id, prev, got)
		}
		prev = got
	}
}

func TestScore_DeviceComplexitySaturates(t *testing.T) {
	eng := newTestEngine()
	entries := blankShifts(5)
	for i, it := range catalog.Default().Devices.Items() {
		entries[i%5].Devices = append(entries[i%5].Devices, ref(it.ID, clinical.ConfidenceCouldTeach))
	}
	if got := eng.Score(entries).Components[DeviceComplexity].Score; got != 100 {
		t.Errorf("expected saturation at 100, got %d", got)
	}
}

func TestScore_MonotonicInBreadth(t *testing.T) {
	eng := newTestEngine()
	cats := catalog.Default()
	meds := cats.Medications.Items()
	devs := cats.Devices.Items()
	procs := cats.Procedures.Items()
	pops := cats.Populations.Items()

	entries := blankShifts(5)
	prev := eng.Score(entries).TotalScore
	for i := 0; i < 12; i++ {
		e := shift(10 + i)
		e.Medications = []clinical.ItemRef{ref(meds[i%len(meds)].ID, clinical.ConfidenceObserved)}
		e.Devices = []clinical.ItemRef{ref(devs[i%len(devs)].ID, clinical.ConfidenceObserved)}
		e.Procedures = []clinical.ItemRef{ref(procs[i%len(procs)].ID, clinical.ConfidenceObserved)}
		e.PatientPopulations = []string{pops[i%len(pops)].ID}
		entries = append(entries, e)

		got := eng.Score(entries).TotalScore
		if got < prev {
			t.Fatalf("step %d: score dropped from %d to %d", i, prev, got)
		}
		prev = got
	}
}

func TestScore_Bounds(t *testing.T) {
	eng := newTestEngine()
	cats := catalog.Default()

	entries := blankShifts(5)
	for i := range entries {
		for _, it := range cats.Medications.Items() {
			entries[i].Medications = append(entries[i].Medications, ref(it.ID, clinical.ConfidenceCouldTeach))
		}
		for _, it := range cats.Devices.Items() {
			entries[i].Devices = append(entries[i].Devices, ref(it.ID, clinical.ConfidenceCouldTeach))
		}
		for _, it := range cats.Procedures.Items() {
			entries[i].Procedures = append(entries[i].Procedures, ref(it.ID, clinical.ConfidenceCouldTeach))
		}
		for _, it := range cats.Populations.Items() {
			entries[i].PatientPopulations = append(entries[i].PatientPopulations, it.ID)
		}
		entries[i].CustomMedications = []string{fmt.Sprintf("custom-med-%d", i)}
	}

	s := eng.Score(entries)
	if s.TotalScore < 0 || s.TotalScore > 100 {
		t.Fatalf("total out of range: %d", s.TotalScore)
	}
	for name, c := range s.Components {
		if c.Score < 0 || c.Score > 100 {
			t.Errorf("%s out of range: %d", name, c.Score)
		}
	}
	if s.TotalScore != 100 {
		t.Errorf("expected full exposure to score 100, got %d", s.TotalScore)
	}
	if s.ReadinessLevel != LevelExceptional {
		t.Errorf("expected exceptional, got %s", s.ReadinessLevel)
	}
	if len(s.Strengths) != len(Components) {
		t.Errorf("expected every component as a strength, got %v", s.Strengths)
	}
}

func TestScore_MalformedEntriesTreatedAsEmpty(t *testing.T) {
	entries := blankShifts(5)
	entries[0].Medications = []clinical.ItemRef{{CategoryID: ""}, {CategoryID: "norepinephrine", ConfidenceLevel: "bogus"}}
	entries[1].Devices = nil
	entries[2].PatientPopulations = []string{""}

	s := newTestEngine().Score(entries)
	// bogus confidence falls back to used_it: 0.75 / 4 vasopressor ceiling
	if got := s.Components[VasopressorDepth].Score; got != 19 {
		t.Errorf("expected vasopressor 19, got %d", got)
	}
	if got := s.Components[PopulationDiversity].Score; got != 0 {
		t.Errorf("expected empty population label ignored, got %d", got)
	}
}

func TestLevelFor(t *testing.T) {
	tests := []struct {
		score int
		want  Level
	}{
		{0, LevelEmerging},
		{39, LevelEmerging},
		{40, LevelDeveloping},
		{59, LevelDeveloping},
		{60, LevelStrong},
		{79, LevelStrong},
		{80, LevelExceptional},
		{100, LevelExceptional},
	}
	for _, tt := range tests {
		if got := LevelFor(tt.score); got != tt.want {
			t.Errorf("LevelFor(%d) = %s, want %s", tt.score, got, tt.want)
		}
		if ReadinessFor(tt.want).Label == "" {
			t.Errorf("expected label for %s", tt.want)
		}
	}
}

func TestComponentWeightsSumToOne(t *testing.T) {
	var sum float64
	for _, c := range Components {
		sum += c.Weight
	}
	if sum < 0.999 || sum > 1.001 {
		t.Errorf("expected weights to sum to 1, got %v", sum)
	}
}

func TestConfigFromViper(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	content := `
scoring:
  device_ceiling: 10
  could_teach_bonus: 6
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		t.Fatalf("read: %v", err)
	}

	cfg, err := ConfigFromViper(v)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.DeviceCeiling != 10 {
		t.Errorf("expected device ceiling 10, got %v", cfg.DeviceCeiling)
	}
	if cfg.CouldTeachBonus != 6 {
		t.Errorf("expected bonus 6, got %v", cfg.CouldTeachBonus)
	}
	if cfg.MedicationCeiling != DefaultConfig().MedicationCeiling {
		t.Error("expected unspecified fields to keep defaults")
	}
}

func TestConfig_ValidateRejectsBadCeiling(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ProcedureCeiling = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for zero ceiling")
	}
}

func TestConfig_ValidateRejectsLowMinEntries(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinEntries = 1
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for min_entries below the scoring floor")
	}

	cfg.MinEntries = 8
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected raised min_entries accepted, got %v", err)
	}
}

func TestScore_FloorHoldsForUnvalidatedConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinEntries = 1
	engine := NewEngine(catalog.Default(), cfg)

	entries := make([]clinical.ClinicalEntry, MinScoredEntries-1)
	for i := range entries {
		e := shift(i + 1)
		e.Devices = []clinical.ItemRef{ref("ecmo", clinical.ConfidenceCouldTeach)}
		e.PatientPopulations = []string{"trauma"}
		entries[i] = e
	}
	if got := engine.Score(entries).TotalScore; got != 0 {
		t.Errorf("expected zero score below %d entries, got %d", MinScoredEntries, got)
	}
}
