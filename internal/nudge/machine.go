// Package nudge decides when to remind a lapsed user to log a shift, and
// records how they responded (dismiss, snooze, or turn it off for good).
package nudge

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

var ErrInvalidSnooze = errors.New("snooze days must be positive")

const (
	// CatchUpID identifies the clinical catch-up reminder.
	CatchUpID = "clinical_catchup"

	// MinDaysInactive is the lowest message tier; below it no nudge shows.
	MinDaysInactive = 4

	// DismissCooldown suppresses a nudge after "dismiss until next session".
	DismissCooldown = 24 * time.Hour

	// PermanentDismissOfferAfter is the dismiss count at which callers
	// should offer the "don't show again" option.
	PermanentDismissOfferAfter = 5
)

// Visible is the pure visibility rule. A nil daysSinceLastEntry means the
// user has no entries and is never nudged.
func Visible(st State, now time.Time, daysSinceLastEntry *int) bool {
	if st.PermanentlyDismissed {
		return false
	}
	if st.SnoozeUntil != nil && now.Before(*st.SnoozeUntil) {
		return false
	}
	if st.LastDismissedAt != nil && now.Sub(*st.LastDismissedAt) < DismissCooldown {
		return false
	}
	if daysSinceLastEntry == nil {
		return false
	}
	return *daysSinceLastEntry >= MinDaysInactive
}

// CanPermanentlyDismiss reports whether the permanent option should be offered.
func CanPermanentlyDismiss(st State) bool {
	return !st.PermanentlyDismissed && st.DismissCount >= PermanentDismissOfferAfter
}

// Machine applies nudge transitions against a Store. States are cached for
// the session once read and written through on every mutation.
type Machine struct {
	store Store
	clock func() time.Time

	mu    sync.Mutex
	cache map[string]State
}

func NewMachine(store Store, clock func() time.Time) *Machine {
	if clock == nil {
		clock = time.Now
	}
	return &Machine{
		store: store,
		clock: clock,
		cache: make(map[string]State),
	}
}

// Load reads the given ids into the session cache.
func (m *Machine) Load(ctx context.Context, ids ...string) error {
	for _, id := range ids {
		st, err := m.store.Get(ctx, id)
		if err != nil {
			return fmt.Errorf("load nudge %s: %w", id, err)
		}
		m.remember(id, st)
	}
	return nil
}

// State returns the current state for id, reading the store on first use.
func (m *Machine) State(ctx context.Context, id string) (State, error) {
	m.mu.Lock()
	st, ok := m.cache[id]
	m.mu.Unlock()
	if ok {
		return st, nil
	}

	st, err := m.store.Get(ctx, id)
	if err != nil {
		return State{}, fmt.Errorf("get nudge %s: %w", id, err)
	}
	m.remember(id, st)
	return st, nil
}

func (m *Machine) ShouldShow(ctx context.Context, id string, now time.Time, daysSinceLastEntry *int) (bool, error) {
	st, err := m.State(ctx, id)
	if err != nil {
		return false, err
	}
	return Visible(st, now, daysSinceLastEntry), nil
}

// Dismiss hides the nudge for DismissCooldown and counts the dismissal.
func (m *Machine) Dismiss(ctx context.Context, id string) (State, error) {
	now := m.clock()
	return m.update(ctx, id, func(st *State) {
		st.LastDismissedAt = &now
		st.DismissCount++
	})
}

// Snooze hides the nudge for the given number of days.
func (m *Machine) Snooze(ctx context.Context, id string, days int) (State, error) {
	if days <= 0 {
		return State{}, fmt.Errorf("%w, got %d", ErrInvalidSnooze, days)
	}
	until := m.clock().Add(time.Duration(days) * 24 * time.Hour)
	return m.update(ctx, id, func(st *State) {
		st.SnoozeUntil = &until
	})
}

// PermanentlyDismiss turns the nudge off for good. There is no undo.
func (m *Machine) PermanentlyDismiss(ctx context.Context, id string) (State, error) {
	return m.update(ctx, id, func(st *State) {
		st.PermanentlyDismissed = true
	})
}

// Reset clears dismissals and snoozes after the user catches up. A
// permanent dismissal survives.
func (m *Machine) Reset(ctx context.Context, id string) (State, error) {
	return m.update(ctx, id, func(st *State) {
		st.DismissCount = 0
		st.LastDismissedAt = nil
		st.SnoozeUntil = nil
	})
}

func (m *Machine) update(ctx context.Context, id string, fn func(*State)) (State, error) {
	st, err := m.store.Update(ctx, id, fn)
	if err != nil {
		return State{}, fmt.Errorf("update nudge %s: %w", id, err)
	}
	m.remember(id, st)
	return st, nil
}

func (m *Machine) remember(id string, st State) {
	m.mu.Lock()
	m.cache[id] = st
	m.mu.Unlock()
}
