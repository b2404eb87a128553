package rewards

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

type MemoryLedger struct {
	mu         sync.Mutex
	milestones []Badge
	totals     map[uuid.UUID]int
	badges     map[uuid.UUID]map[string]Badge
}

func NewMemoryLedger(milestones []Badge) *MemoryLedger {
	if milestones == nil {
		milestones = DefaultMilestones
	}
	return &MemoryLedger{
		milestones: milestones,
		totals:     make(map[uuid.UUID]int),
		badges:     make(map[uuid.UUID]map[string]Badge),
	}
}

func (l *MemoryLedger) AwardPoints(_ context.Context, userID uuid.UUID, kind ActionKind, amount *int, _ map[string]any) (AwardResult, error) {
	if !kind.Valid() {
		return AwardResult{}, fmt.Errorf("unknown action kind %q", kind)
	}
	pts := resolveAmount(kind, amount)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.totals[userID] += pts
	return AwardResult{Success: true, PointsAwarded: pts, Total: l.totals[userID]}, nil
}

// CheckBadge awards every milestone reached at newEntryCount that the user
// does not hold yet and returns the highest of them, or nil.
func (l *MemoryLedger) CheckBadge(_ context.Context, userID uuid.UUID, newEntryCount int) (*Badge, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	held := l.badges[userID]
	if held == nil {
		held = make(map[string]Badge)
		l.badges[userID] = held
	}

	var newest *Badge
	for _, b := range crossed(l.milestones, newEntryCount) {
		if _, ok := held[b.ID]; ok {
			continue
		}
		held[b.ID] = b
		b := b
		newest = &b
	}
	return newest, nil
}

func (l *MemoryLedger) Total(_ context.Context, userID uuid.UUID) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.totals[userID], nil
}

func (l *MemoryLedger) Badges(_ context.Context, userID uuid.UUID) ([]Badge, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []Badge
	for _, b := range l.milestones {
		if _, ok := l.badges[userID][b.ID]; ok {
			out = append(out, b)
		}
	}
	return out, nil
}
