package clinical

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// MemoryRepository keeps entries in process memory. It backs tests and
// single-user tooling.
type MemoryRepository struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]ClinicalEntry
	events  []EventLog
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{entries: make(map[uuid.UUID]ClinicalEntry)}
}

func (r *MemoryRepository) Append(_ context.Context, entry ClinicalEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[entry.ID] = cloneEntry(entry)
	return nil
}

func (r *MemoryRepository) Replace(_ context.Context, id uuid.UUID, entry ClinicalEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.entries[id]
	if !ok || existing.UserID != entry.UserID {
		return ErrEntryNotFound
	}
	entry.ID = id
	r.entries[id] = cloneEntry(entry)
	return nil
}

func (r *MemoryRepository) Remove(_ context.Context, userID, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.entries[id]
	if !ok || existing.UserID != userID {
		return ErrEntryNotFound
	}
	delete(r.entries, id)
	return nil
}

func (r *MemoryRepository) Get(_ context.Context, userID, id uuid.UUID) (*ClinicalEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[id]
	if !ok || e.UserID != userID {
		return nil, ErrEntryNotFound
	}
	c := cloneEntry(e)
	return &c, nil
}

func (r *MemoryRepository) List(_ context.Context, userID uuid.UUID) ([]ClinicalEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []ClinicalEntry
	for _, e := range r.entries {
		if e.UserID == userID {
			result = append(result, cloneEntry(e))
		}
	}
	SortByRecency(result)
	return result, nil
}

func (r *MemoryRepository) Count(_ context.Context, userID uuid.UUID) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, e := range r.entries {
		if e.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (r *MemoryRepository) ListUsers(_ context.Context) ([]uuid.UUID, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := make(map[uuid.UUID]bool)
	var users []uuid.UUID
	for _, e := range r.entries {
		if !seen[e.UserID] {
			seen[e.UserID] = true
			users = append(users, e.UserID)
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].String() < users[j].String() })
	return users, nil
}

func (r *MemoryRepository) InsertEvent(_ context.Context, ev EventLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ev.ID = int64(len(r.events) + 1)
	r.events = append(r.events, ev)
	return nil
}

// Events returns a copy of the recorded event log.
func (r *MemoryRepository) Events() []EventLog {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]EventLog, len(r.events))
	copy(out, r.events)
	return out
}

// SortByRecency orders entries by shift date, newest first, falling back to
// creation time for shifts on the same day.
func SortByRecency(entries []ClinicalEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if !entries[i].ShiftDate.Equal(entries[j].ShiftDate) {
			return entries[i].ShiftDate.After(entries[j].ShiftDate)
		}
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})
}

func cloneEntry(e ClinicalEntry) ClinicalEntry {
	e.PatientPopulations = append([]string{}, e.PatientPopulations...)
	e.CustomPopulations = append([]string{}, e.CustomPopulations...)
	e.CustomMedications = append([]string{}, e.CustomMedications...)
	e.CustomDevices = append([]string{}, e.CustomDevices...)
	e.CustomProcedures = append([]string{}, e.CustomProcedures...)
	e.Medications = append([]ItemRef{}, e.Medications...)
	e.Devices = append([]ItemRef{}, e.Devices...)
	e.Procedures = append([]ItemRef{}, e.Procedures...)
	return e
}
