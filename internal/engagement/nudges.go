package engagement

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hackgods/clinical-tracker/internal/clinical"
	"github.com/hackgods/clinical-tracker/internal/nudge"
)

// NudgeView is everything the tracker screen needs to render a nudge.
type NudgeView struct {
	ID                    string         `json:"id"`
	Visible               bool           `json:"visible"`
	DaysSinceLastEntry    *int           `json:"daysSinceLastEntry"`
	Message               *nudge.Message `json:"message,omitempty"`
	DismissCount          int            `json:"dismissCount"`
	SnoozeUntil           *time.Time     `json:"snoozeUntil,omitempty"`
	PermanentlyDismissed  bool           `json:"permanentlyDismissed"`
	CanPermanentlyDismiss bool           `json:"canPermanentlyDismiss"`
}

func (s *Service) machine(userID uuid.UUID) *nudge.Machine {
	return nudge.NewMachine(nudge.Prefixed(s.nudges, userID.String()), s.clock)
}

func (s *Service) daysSinceLastEntry(ctx context.Context, userID uuid.UUID) (*int, error) {
	entries, err := s.ListEntries(ctx, userID)
	if err != nil {
		return nil, err
	}
	dates := make([]time.Time, 0, len(entries))
	for _, e := range entries {
		dates = append(dates, e.ShiftDate)
	}
	return nudge.DaysSince(dates, s.clock()), nil
}

// EvaluateNudge computes visibility and copy for nudgeID.
func (s *Service) EvaluateNudge(ctx context.Context, userID uuid.UUID, nudgeID string) (NudgeView, error) {
	days, err := s.daysSinceLastEntry(ctx, userID)
	if err != nil {
		return NudgeView{}, err
	}
	st, err := s.machine(userID).State(ctx, nudgeID)
	if err != nil {
		return NudgeView{}, err
	}
	return s.view(nudgeID, st, days), nil
}

func (s *Service) ShouldShowNudge(ctx context.Context, userID uuid.UUID, nudgeID string) (bool, error) {
	v, err := s.EvaluateNudge(ctx, userID, nudgeID)
	if err != nil {
		return false, err
	}
	return v.Visible, nil
}

func (s *Service) DismissNudge(ctx context.Context, userID uuid.UUID, nudgeID string) (NudgeView, error) {
	return s.transition(ctx, userID, nudgeID, func(m *nudge.Machine) (nudge.State, error) {
		return m.Dismiss(ctx, nudgeID)
	})
}

func (s *Service) SnoozeNudge(ctx context.Context, userID uuid.UUID, nudgeID string, days int) (NudgeView, error) {
	return s.transition(ctx, userID, nudgeID, func(m *nudge.Machine) (nudge.State, error) {
		return m.Snooze(ctx, nudgeID, days)
	})
}

func (s *Service) PermanentlyDismissNudge(ctx context.Context, userID uuid.UUID, nudgeID string) (NudgeView, error) {
	return s.transition(ctx, userID, nudgeID, func(m *nudge.Machine) (nudge.State, error) {
		return m.PermanentlyDismiss(ctx, nudgeID)
	})
}

func (s *Service) transition(ctx context.Context, userID uuid.UUID, nudgeID string, fn func(*nudge.Machine) (nudge.State, error)) (NudgeView, error) {
	st, err := fn(s.machine(userID))
	if err != nil {
		return NudgeView{}, err
	}
	days, err := s.daysSinceLastEntry(ctx, userID)
	if err != nil {
		return NudgeView{}, err
	}
	return s.view(nudgeID, st, days), nil
}

func (s *Service) view(nudgeID string, st nudge.State, days *int) NudgeView {
	v := NudgeView{
		ID:                    nudgeID,
		Visible:               nudge.Visible(st, s.clock(), days),
		DaysSinceLastEntry:    days,
		DismissCount:          st.DismissCount,
		SnoozeUntil:           st.SnoozeUntil,
		PermanentlyDismissed:  st.PermanentlyDismissed,
		CanPermanentlyDismiss: nudge.CanPermanentlyDismiss(st),
	}
	if v.Visible && days != nil {
		if msg, ok := nudge.MessageFor(*days); ok {
			v.Message = &msg
		}
	}
	return v
}

// SweepNudges evaluates the catch-up nudge for every user with entries and
// records a NUDGE_DUE event for each one that should see it. It returns
// the number of users due.
func (s *Service) SweepNudges(ctx context.Context) (int, error) {
	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return 0, fmt.Errorf("list users: %w", err)
	}

	due := 0
	for _, userID := range users {
		if err := ctx.Err(); err != nil {
			return due, err
		}
		v, err := s.EvaluateNudge(ctx, userID, nudge.CatchUpID)
		if err != nil {
			s.log.Error().Err(err).Str("user_id", userID.String()).Msg("nudge evaluation failed")
			continue
		}
		if !v.Visible {
			continue
		}
		due++
		payload := map[string]any{
			"nudge_id":              v.ID,
			"days_since_last_entry": *v.DaysSinceLastEntry,
		}
		if v.Message != nil {
			payload["tier"] = string(v.Message.Tier)
		}
		s.logEvent(ctx, userID, nil, clinical.EventNudgeDue, payload)
	}
	return due, nil
}
