// Package acuity turns a log of clinical entries into an Acuity Readiness
// Score: five weighted components, a readiness level, and the strengths and
// gaps that explain it.
package acuity

import (
	"math"
	"sort"

	"github.com/hackgods/clinical-tracker/internal/catalog"
	"github.com/hackgods/clinical-tracker/internal/clinical"
)

type ComponentName string

const (
	DeviceComplexity       ComponentName = "deviceComplexity"
	MedicationVariety      ComponentName = "medicationVariety"
	ProcedureParticipation ComponentName = "procedureParticipation"
	PopulationDiversity    ComponentName = "populationDiversity"
	VasopressorDepth       ComponentName = "vasopressorDepth"
)

// Components lists every component in display order with its weight.
var Components = []struct {
	Name   ComponentName
	Label  string
	Weight float64
}{
	{DeviceComplexity, "Device Complexity", 0.30},
	{MedicationVariety, "Medication Variety", 0.25},
	{ProcedureParticipation, "Procedure Participation", 0.20},
	{PopulationDiversity, "Population Diversity", 0.15},
	{VasopressorDepth, "Vasopressor Depth", 0.10},
}

type ComponentScore struct {
	Score  int     `json:"score"`
	Label  string  `json:"label"`
	Weight float64 `json:"weight"`
}

type Score struct {
	TotalScore     int                              `json:"totalScore"`
	Components     map[ComponentName]ComponentScore `json:"components"`
	ReadinessLevel Level                            `json:"readinessLevel"`
	Readiness      Readiness                        `json:"readiness"`
	Strengths      []string                         `json:"strengths"`
	Gaps           []string                         `json:"gaps"`
	EntryCount     int                              `json:"entryCount"`
}

type Engine struct {
	cats catalog.Catalogs
	cfg  Config
}

func NewEngine(cats catalog.Catalogs, cfg Config) *Engine {
	return &Engine{cats: cats, cfg: cfg}
}

// Score computes the readiness score. It never fails: with fewer than
// MinEntries entries it returns a zero score, and missing collections on an
// entry count as empty.
func (e *Engine) Score(entries []clinical.ClinicalEntry) Score {
	s := Score{
		Components: make(map[ComponentName]ComponentScore, len(Components)),
		Strengths:  []string{},
		Gaps:       []string{},
		EntryCount: len(entries),
	}
	for _, c := range Components {
		s.Components[c.Name] = ComponentScore{Label: c.Label, Weight: c.Weight}
	}

	if len(entries) < max(e.cfg.MinEntries, MinScoredEntries) {
		s.ReadinessLevel = LevelEmerging
		s.Readiness = ReadinessFor(LevelEmerging)
		return s
	}

	ex := collect(entries)
	raw := map[ComponentName]float64{
		DeviceComplexity:       e.deviceComplexity(ex),
		MedicationVariety:      e.medicationVariety(ex),
		ProcedureParticipation: e.procedureParticipation(ex),
		PopulationDiversity:    e.populationDiversity(ex),
		VasopressorDepth:       e.vasopressorDepth(ex),
	}

	var total float64
	for _, c := range Components {
		score := clamp(int(math.Round(raw[c.Name])))
		s.Components[c.Name] = ComponentScore{Score: score, Label: c.Label, Weight: c.Weight}
		total += float64(score) * c.Weight
	}

	s.TotalScore = clamp(int(math.Round(total)))
	s.ReadinessLevel = LevelFor(s.TotalScore)
	s.Readiness = ReadinessFor(s.ReadinessLevel)
	s.Strengths, s.Gaps = e.classify(s.Components)
	return s
}

func (e *Engine) deviceComplexity(ex exposure) float64 {
	var weighted float64
	for id := range ex.devices {
		weighted += e.cats.Devices.Weight(id)
	}
	weighted += float64(len(ex.customDevices)) * catalog.DefaultAcuityWeight
	return saturate(weighted, e.cfg.DeviceCeiling)
}

func (e *Engine) medicationVariety(ex exposure) float64 {
	distinct := float64(len(ex.medications) + len(ex.customMedications))
	couldTeach := 0
	for _, level := range ex.medications {
		if level == clinical.ConfidenceCouldTeach {
			couldTeach++
		}
	}
	return math.Min(100, saturate(distinct, e.cfg.MedicationCeiling)+float64(couldTeach)*e.cfg.CouldTeachBonus)
}

func (e *Engine) procedureParticipation(ex exposure) float64 {
	var weighted float64
	for _, level := range ex.procedures {
		weighted += e.cfg.multiplier(level)
	}
	weighted += float64(len(ex.customProcedures)) * e.cfg.multiplier(clinical.DefaultConfidence)
	return saturate(weighted, e.cfg.ProcedureCeiling)
}

func (e *Engine) populationDiversity(ex exposure) float64 {
	return saturate(float64(len(ex.populations)+len(ex.customPopulations)), e.cfg.PopulationCeiling)
}

func (e *Engine) vasopressorDepth(ex exposure) float64 {
	var weighted float64
	for id, level := range ex.medications {
		if e.cats.Medications.HasTag(id, catalog.TagVasopressor) {
			weighted += e.cfg.multiplier(level)
		}
	}
	return saturate(weighted, e.cfg.VasopressorCeiling)
}

func (e *Engine) classify(components map[ComponentName]ComponentScore) (strengths, gaps []string) {
	type ranked struct {
		order int
		label string
		score int
	}
	var strong, weak []ranked
	for i, c := range Components {
		cs := components[c.Name]
		switch {
		case cs.Score >= e.cfg.StrengthThreshold:
			strong = append(strong, ranked{i, c.Label, cs.Score})
		case cs.Score < e.cfg.GapThreshold:
			weak = append(weak, ranked{i, c.Label, cs.Score})
		}
	}
	sort.SliceStable(strong, func(i, j int) bool { return strong[i].score > strong[j].score })
	sort.SliceStable(weak, func(i, j int) bool { return weak[i].score < weak[j].score })

	strengths = make([]string, 0, len(strong))
	for _, r := range strong {
		strengths = append(strengths, r.label)
	}
	gaps = make([]string, 0, len(weak))
	for _, r := range weak {
		gaps = append(gaps, r.label)
	}
	return strengths, gaps
}

// exposure is the distinct set of items across all entries, each with the
// highest confidence level reached.
type exposure struct {
	populations       map[string]bool
	customPopulations map[string]bool
	medications       map[string]clinical.ConfidenceLevel
	devices           map[string]clinical.ConfidenceLevel
	procedures        map[string]clinical.ConfidenceLevel
	customMedications map[string]bool
	customDevices     map[string]bool
	customProcedures  map[string]bool
}

func collect(entries []clinical.ClinicalEntry) exposure {
	ex := exposure{
		populations:       make(map[string]bool),
		customPopulations: make(map[string]bool),
		medications:       make(map[string]clinical.ConfidenceLevel),
		devices:           make(map[string]clinical.ConfidenceLevel),
		procedures:        make(map[string]clinical.ConfidenceLevel),
		customMedications: make(map[string]bool),
		customDevices:     make(map[string]bool),
		customProcedures:  make(map[string]bool),
	}
	for _, e := range entries {
		addLabels(ex.populations, e.PatientPopulations)
		addLabels(ex.customPopulations, e.CustomPopulations)
		addLabels(ex.customMedications, e.CustomMedications)
		addLabels(ex.customDevices, e.CustomDevices)
		addLabels(ex.customProcedures, e.CustomProcedures)
		addRefs(ex.medications, e.Medications)
		addRefs(ex.devices, e.Devices)
		addRefs(ex.procedures, e.Procedures)
	}
	return ex
}

func addLabels(set map[string]bool, labels []string) {
	for _, l := range labels {
		if l != "" {
			set[l] = true
		}
	}
}

func addRefs(set map[string]clinical.ConfidenceLevel, refs []clinical.ItemRef) {
	for _, r := range refs {
		if r.CategoryID == "" {
			continue
		}
		level := r.ConfidenceLevel
		if !level.Valid() {
			level = clinical.DefaultConfidence
		}
		set[r.CategoryID] = set[r.CategoryID].Max(level)
	}
}

func saturate(value, ceiling float64) float64 {
	if ceiling <= 0 || value <= 0 {
		return 0
	}
	return math.Min(100, value/ceiling*100)
}

func clamp(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
