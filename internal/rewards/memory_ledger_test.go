package rewards

import (
	"context"
	"testing"

	"github.com/google/uuid"
)

func TestAwardPoints_DefaultAndExplicitAmount(t *testing.T) {
	l := NewMemoryLedger(nil)
	ctx := context.Background()
	user := uuid.New()

	res, err := l.AwardPoints(ctx, user, ActionClinicalLog, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Success || res.PointsAwarded != DefaultAmounts[ActionClinicalLog] {
		t.Errorf("expected default award, got %+v", res)
	}

	amount := 7
	res, _ = l.AwardPoints(ctx, user, ActionClinicalLog, &amount, map[string]any{"entry_id": "x"})
	if res.PointsAwarded != 7 {
		t.Errorf("expected 7 points, got %d", res.PointsAwarded)
	}

	total, _ := l.Total(ctx, user)
	if total != DefaultAmounts[ActionClinicalLog]+7 {
		t.Errorf("unexpected total %d", total)
	}
}

func TestAwardPoints_UnknownAction(t *testing.T) {
	l := NewMemoryLedger(nil)
	if _, err := l.AwardPoints(context.Background(), uuid.New(), ActionKind("NOPE"), nil, nil); err == nil {
		t.Fatal("expected error for unknown action")
	}
}

func TestCheckBadge_OncePerMilestone(t *testing.T) {
	l := NewMemoryLedger(nil)
	ctx := context.Background()
	user := uuid.New()

	b, _ := l.CheckBadge(ctx, user, 1)
	if b == nil || b.ID != "first_shift" {
		t.Fatalf("expected first_shift badge, got %+v", b)
	}
	for count := 2; count < 20; count++ {
		b, _ = l.CheckBadge(ctx, user, count)
		if count == 10 {
			if b == nil || b.ID != "ten_shifts" {
				t.Errorf("expected ten_shifts at 10, got %+v", b)
			}
			continue
		}
		if b != nil {
			t.Errorf("unexpected badge %s at count %d", b.ID, count)
		}
	}

	b, _ = l.CheckBadge(ctx, user, 20)
	if b == nil || b.Milestone != 20 {
		t.Fatalf("expected 20 milestone badge, got %+v", b)
	}
	b, _ = l.CheckBadge(ctx, user, 20)
	if b != nil {
		t.Errorf("expected no second award for milestone 20, got %+v", b)
	}

	held, _ := l.Badges(ctx, user)
	if len(held) != 3 {
		t.Errorf("expected 3 badges held, got %d", len(held))
	}
}

func TestCheckBadge_JumpAwardsHighest(t *testing.T) {
	l := NewMemoryLedger(nil)
	ctx := context.Background()
	user := uuid.New()

	b, _ := l.CheckBadge(ctx, user, 25)
	if b == nil || b.ID != "twenty_shifts" {
		t.Fatalf("expected twenty_shifts, got %+v", b)
	}
	held, _ := l.Badges(ctx, user)
	if len(held) != 3 {
		t.Errorf("expected all crossed milestones recorded, got %d", len(held))
	}
}

func TestCheckBadge_UsersIsolated(t *testing.T) {
	l := NewMemoryLedger(nil)
	ctx := context.Background()

	_, _ = l.CheckBadge(ctx, uuid.New(), 1)
	b, _ := l.CheckBadge(ctx, uuid.New(), 1)
	if b == nil {
		t.Error("expected second user to earn their own first badge")
	}
}
