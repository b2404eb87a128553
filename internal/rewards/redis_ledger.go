package rewards

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisLedger keeps point totals in "points:<user>" with a per-action
// breakdown hash, and earned badge ids in the set "badges:<user>". SADD
// makes each milestone award happen at most once.
type RedisLedger struct {
	client     *redis.Client
	milestones []Badge
}

func NewRedisLedger(client *redis.Client, milestones []Badge) *RedisLedger {
	if milestones == nil {
		milestones = DefaultMilestones
	}
	return &RedisLedger{client: client, milestones: milestones}
}

func pointsKey(userID uuid.UUID) string  { return "points:" + userID.String() }
func actionsKey(userID uuid.UUID) string { return "points:" + userID.String() + ":by_action" }
func badgesKey(userID uuid.UUID) string  { return "badges:" + userID.String() }

func (l *RedisLedger) AwardPoints(ctx context.Context, userID uuid.UUID, kind ActionKind, amount *int, _ map[string]any) (AwardResult, error) {
	if !kind.Valid() {
		return AwardResult{}, fmt.Errorf("unknown action kind %q", kind)
	}
	pts := resolveAmount(kind, amount)

	var total *redis.IntCmd
	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		total = pipe.IncrBy(ctx, pointsKey(userID), int64(pts))
		pipe.HIncrBy(ctx, actionsKey(userID), string(kind), int64(pts))
		return nil
	})
	if err != nil {
		return AwardResult{}, fmt.Errorf("award points: %w", err)
	}

	return AwardResult{Success: true, PointsAwarded: pts, Total: int(total.Val())}, nil
}

func (l *RedisLedger) CheckBadge(ctx context.Context, userID uuid.UUID, newEntryCount int) (*Badge, error) {
	var newest *Badge
	for _, b := range crossed(l.milestones, newEntryCount) {
		added, err := l.client.SAdd(ctx, badgesKey(userID), b.ID).Result()
		if err != nil {
			return nil, fmt.Errorf("record badge %s: %w", b.ID, err)
		}
		if added == 1 {
			b := b
			newest = &b
		}
	}
	return newest, nil
}

func (l *RedisLedger) Total(ctx context.Context, userID uuid.UUID) (int, error) {
	n, err := l.client.Get(ctx, pointsKey(userID)).Int()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("get points total: %w", err)
	}
	return n, nil
}

func (l *RedisLedger) Badges(ctx context.Context, userID uuid.UUID) ([]Badge, error) {
	ids, err := l.client.SMembers(ctx, badgesKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("list badges: %w", err)
	}
	held := make(map[string]bool, len(ids))
	for _, id := range ids {
		held[id] = true
	}

	var out []Badge
	for _, b := range l.milestones {
		if held[b.ID] {
			out = append(out, b)
		}
	}
	return out, nil
}
