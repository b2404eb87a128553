package stats

import (
	"fmt"
	"testing"
	"time"

	"github.com/hackgods/clinical-tracker/internal/catalog"
	"github.com/hackgods/clinical-tracker/internal/clinical"
)

func newTestAggregator() *Aggregator {
	return NewAggregator(catalog.Default())
}

func ref(id string, c clinical.ConfidenceLevel) clinical.ItemRef {
	return clinical.ItemRef{CategoryID: id, ConfidenceLevel: c}
}

func entry(day int) clinical.ClinicalEntry {
	return clinical.ClinicalEntry{
		ShiftDate: time.Date(2026, 3, day, 0, 0, 0, 0, time.UTC),
		Notes:     "shift",
	}
}

func TestAggregate_Empty(t *testing.T) {
	s := newTestAggregator().Aggregate(nil)
	if s.TopPopulation != nil || s.TopMedication != nil || s.TopDevice != nil || s.TopProcedure != nil {
		t.Errorf("expected all tops nil, got %+v", s)
	}
}

func TestAggregate_TopByCount(t *testing.T) {
	e1 := entry(1)
	e1.Devices = []clinical.ItemRef{ref("arterial_line", clinical.ConfidenceObserved)}
	e1.PatientPopulations = []string{"trauma"}
	e2 := entry(2)
	e2.Devices = []clinical.ItemRef{ref("ventilator", clinical.ConfidenceUsedIt), ref("arterial_line", clinical.ConfidenceUsedIt)}
	e2.PatientPopulations = []string{"neuro", "trauma"}

	s := newTestAggregator().Aggregate([]clinical.ClinicalEntry{e1, e2})

	if s.TopDevice == nil || s.TopDevice.CategoryID != "arterial_line" {
		t.Fatalf("expected top device arterial_line, got %+v", s.TopDevice)
	}
	if s.TopDevice.Count != 2 {
		t.Errorf("expected count 2, got %d", s.TopDevice.Count)
	}
	if s.TopDevice.Label != "Arterial Line" {
		t.Errorf("expected catalog label, got %q", s.TopDevice.Label)
	}
	if s.TopPopulation == nil || s.TopPopulation.CategoryID != "trauma" {
		t.Errorf("expected top population trauma, got %+v", s.TopPopulation)
	}
	if s.TopMedication != nil {
		t.Errorf("expected no top medication, got %+v", s.TopMedication)
	}
}

func TestRank_CountsOncePerEntry(t *testing.T) {
	e := entry(1)
	e.Medications = []clinical.ItemRef{ref("propofol", clinical.ConfidenceObserved), ref("propofol", clinical.ConfidenceCouldTeach)}
	e.CustomMedications = []string{"Bivalirudin", "Bivalirudin"}

	items := newTestAggregator().Rank([]clinical.ClinicalEntry{e}, KindMedication)
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	for _, it := range items {
		if it.Count != 1 {
			t.Errorf("expected %s counted once, got %d", it.Key, it.Count)
		}
	}
	if items[0].Confidence != clinical.ConfidenceCouldTeach {
		t.Errorf("expected highest confidence could_teach, got %q", items[0].Confidence)
	}
}

func TestRank_ConfidenceNeverLowers(t *testing.T) {
	e1 := entry(1)
	e1.Procedures = []clinical.ItemRef{ref("intubation", clinical.ConfidenceCouldTeach)}
	e2 := entry(2)
	e2.Procedures = []clinical.ItemRef{ref("intubation", clinical.ConfidenceObserved)}

	items := newTestAggregator().Rank([]clinical.ClinicalEntry{e1, e2}, KindProcedure)
	if items[0].Confidence != clinical.ConfidenceCouldTeach {
		t.Errorf("expected could_teach to stick, got %q", items[0].Confidence)
	}
}

func TestRank_CustomAndCatalogStayDistinct(t *testing.T) {
	e := entry(1)
	e.Devices = []clinical.ItemRef{ref("ecmo", clinical.ConfidenceUsedIt)}
	e.CustomDevices = []string{"ecmo"}

	items := newTestAggregator().Rank([]clinical.ClinicalEntry{e}, KindDevice)
	if len(items) != 2 {
		t.Fatalf("expected 2 distinct items, got %d", len(items))
	}
	if items[0].Custom == items[1].Custom {
		t.Error("expected one catalog and one custom item")
	}
	for _, it := range items {
		if it.Custom && it.Confidence != "" {
			t.Errorf("expected custom label to carry no confidence, got %q", it.Confidence)
		}
	}
}

func TestRank_TiesKeepFirstSeenOrder(t *testing.T) {
	e1 := entry(1)
	e1.PatientPopulations = []string{"burn", "neuro"}
	e2 := entry(2)
	e2.PatientPopulations = []string{"neuro", "burn", "pediatric"}

	items := newTestAggregator().Rank([]clinical.ClinicalEntry{e1, e2}, KindPopulation)
	want := []string{"burn", "neuro", "pediatric"}
	for i, id := range want {
		if items[i].CategoryID != id {
			t.Errorf("position %d: expected %s, got %s", i, id, items[i].CategoryID)
		}
	}
}

func TestBreakdown_TruncatesWithOverflow(t *testing.T) {
	e := entry(1)
	for i := 0; i < DisplayLimit+4; i++ {
		e.CustomProcedures = append(e.CustomProcedures, fmt.Sprintf("proc-%d", i))
	}

	b := newTestAggregator().Breakdown([]clinical.ClinicalEntry{e})
	if len(b.Procedures.Items) != DisplayLimit {
		t.Errorf("expected %d shown, got %d", DisplayLimit, len(b.Procedures.Items))
	}
	if b.Procedures.Overflow != 4 {
		t.Errorf("expected overflow 4, got %d", b.Procedures.Overflow)
	}
	if b.Procedures.Total != DisplayLimit+4 {
		t.Errorf("expected total %d, got %d", DisplayLimit+4, b.Procedures.Total)
	}
	if b.Devices.Items == nil || len(b.Devices.Items) != 0 || b.Devices.Overflow != 0 {
		t.Errorf("expected empty device list, got %+v", b.Devices)
	}
}
