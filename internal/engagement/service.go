// Package engagement coordinates the Clinical Tracker: it writes entries,
// awards points and badges for new ones, and serves the derived stats,
// acuity score and catch-up nudge for a user.
package engagement

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hackgods/clinical-tracker/internal/acuity"
	"github.com/hackgods/clinical-tracker/internal/clinical"
	"github.com/hackgods/clinical-tracker/internal/events"
	"github.com/hackgods/clinical-tracker/internal/nudge"
	"github.com/hackgods/clinical-tracker/internal/rewards"
	"github.com/hackgods/clinical-tracker/internal/stats"
)

const (
	DefaultPointsPerEntry = 10
	DefaultAwardTimeout   = 5 * time.Second
	DefaultPublishTimeout = 2 * time.Second
)

// Rewards is the points and badges collaborator.
type Rewards interface {
	AwardPoints(ctx context.Context, userID uuid.UUID, kind rewards.ActionKind, amount *int, metadata map[string]any) (rewards.AwardResult, error)
	CheckBadge(ctx context.Context, userID uuid.UUID, newEntryCount int) (*rewards.Badge, error)
}

// RewardsReader is implemented by ledgers that can report balances.
type RewardsReader interface {
	Total(ctx context.Context, userID uuid.UUID) (int, error)
	Badges(ctx context.Context, userID uuid.UUID) ([]rewards.Badge, error)
}

// CollaboratorError reports a failed points or badge call. The entry
// mutation it accompanies has already been committed.
type CollaboratorError struct {
	Op  string
	Err error
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("rewards %s: %v", e.Op, e.Err)
}

func (e *CollaboratorError) Unwrap() error { return e.Err }

type Deps struct {
	Repo      clinical.Repository
	Rewards   Rewards
	Nudges    nudge.Store
	Stats     *stats.Aggregator
	Scorer    *acuity.Engine
	Publisher events.Publisher
	Logger    zerolog.Logger
	Clock     func() time.Time

	PointsPerEntry int
	AwardTimeout   time.Duration
	PublishTimeout time.Duration
}

type Service struct {
	repo      clinical.Repository
	rewards   Rewards
	nudges    nudge.Store
	stats     *stats.Aggregator
	scorer    *acuity.Engine
	publisher events.Publisher
	log       zerolog.Logger
	clock     func() time.Time

	pointsPerEntry int
	awardTimeout   time.Duration
	publishTimeout time.Duration
}

func NewService(d Deps) *Service {
	s := &Service{
		repo:           d.Repo,
		rewards:        d.Rewards,
		nudges:         d.Nudges,
		stats:          d.Stats,
		scorer:         d.Scorer,
		publisher:      d.Publisher,
		log:            d.Logger,
		clock:          d.Clock,
		pointsPerEntry: d.PointsPerEntry,
		awardTimeout:   d.AwardTimeout,
		publishTimeout: d.PublishTimeout,
	}
	if s.publisher == nil {
		s.publisher = events.NopPublisher{}
	}
	if s.clock == nil {
		s.clock = time.Now
	}
	if s.pointsPerEntry <= 0 {
		s.pointsPerEntry = DefaultPointsPerEntry
	}
	if s.awardTimeout <= 0 {
		s.awardTimeout = DefaultAwardTimeout
	}
	if s.publishTimeout <= 0 {
		s.publishTimeout = DefaultPublishTimeout
	}
	return s
}

// AddResult is the outcome of logging a shift. Warning is set when the
// entry was saved but points or badge feedback could not be delivered.
type AddResult struct {
	Entry         clinical.ClinicalEntry
	PointsAwarded int
	Badge         *rewards.Badge
	Warning       error
}

// AddEntry validates and stores a new shift, then awards points once and
// checks badge milestones against the post-insert entry count. Reward
// failures never undo the entry.
func (s *Service) AddEntry(ctx context.Context, userID uuid.UUID, form clinical.FormData) (*AddResult, error) {
	if err := clinical.Validate(form); err != nil {
		return nil, err
	}
	form = clinical.Normalize(form)

	entry := clinical.NewEntry(userID, form, s.pointsPerEntry, s.clock())
	if err := s.repo.Append(ctx, entry); err != nil {
		return nil, fmt.Errorf("append entry: %w", err)
	}

	s.logEvent(ctx, userID, &entry.ID, clinical.EventEntryCreated, map[string]any{
		"shift_date":    entry.ShiftDate.Format(time.DateOnly),
		"points_earned": entry.PointsEarned,
	})

	res := &AddResult{Entry: entry}
	var warnings []error

	awardCtx, cancel := context.WithTimeout(ctx, s.awardTimeout)
	defer cancel()

	points := entry.PointsEarned
	award, err := s.rewards.AwardPoints(awardCtx, userID, rewards.ActionClinicalLog, &points, map[string]any{
		"entry_id":   entry.ID.String(),
		"shift_date": entry.ShiftDate.Format(time.DateOnly),
	})
	switch {
	case err != nil:
		warnings = append(warnings, &CollaboratorError{Op: "award points", Err: err})
	case !award.Success:
		warnings = append(warnings, &CollaboratorError{Op: "award points", Err: errors.New("award rejected")})
	default:
		res.PointsAwarded = award.PointsAwarded
	}

	count, err := s.repo.Count(ctx, userID)
	if err != nil {
		warnings = append(warnings, fmt.Errorf("count entries: %w", err))
	} else {
		badge, err := s.rewards.CheckBadge(awardCtx, userID, count)
		if err != nil {
			warnings = append(warnings, &CollaboratorError{Op: "check badge", Err: err})
		} else if badge != nil {
			res.Badge = badge
			s.logEvent(ctx, userID, &entry.ID, clinical.EventBadgeEarned, map[string]any{
				"badge_id":    badge.ID,
				"entry_count": count,
			})
		}
	}

	if len(warnings) > 0 {
		res.Warning = errors.Join(warnings...)
		s.log.Warn().
			Err(res.Warning).
			Str("user_id", userID.String()).
			Str("entry_id", entry.ID.String()).
			Msg("entry saved without rewards feedback")
		s.logEvent(ctx, userID, &entry.ID, clinical.EventPointsAwardFailed, map[string]any{
			"error": res.Warning.Error(),
		})
	}

	return res, nil
}

// EditEntry replaces an entry's mutable fields. ID, CreatedAt and
// PointsEarned are kept, and no points are awarded.
func (s *Service) EditEntry(ctx context.Context, userID, id uuid.UUID, form clinical.FormData) (*clinical.ClinicalEntry, error) {
	if err := clinical.Validate(form); err != nil {
		return nil, err
	}
	form = clinical.Normalize(form)

	entry, err := s.repo.Get(ctx, userID, id)
	if err != nil {
		if errors.Is(err, clinical.ErrEntryNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load entry: %w", err)
	}

	entry.Apply(form)
	entry.UpdatedAt = s.clock()

	if err := s.repo.Replace(ctx, id, *entry); err != nil {
		if errors.Is(err, clinical.ErrEntryNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("replace entry: %w", err)
	}

	s.logEvent(ctx, userID, &entry.ID, clinical.EventEntryUpdated, map[string]any{
		"shift_date": entry.ShiftDate.Format(time.DateOnly),
	})

	return entry, nil
}

// DeleteEntry hard-deletes an entry. Points already awarded are kept.
func (s *Service) DeleteEntry(ctx context.Context, userID, id uuid.UUID) error {
	if err := s.repo.Remove(ctx, userID, id); err != nil {
		if errors.Is(err, clinical.ErrEntryNotFound) {
			return err
		}
		return fmt.Errorf("remove entry: %w", err)
	}

	s.logEvent(ctx, userID, &id, clinical.EventEntryDeleted, map[string]any{})
	return nil
}

func (s *Service) GetEntry(ctx context.Context, userID, id uuid.UUID) (*clinical.ClinicalEntry, error) {
	return s.repo.Get(ctx, userID, id)
}

// ListEntries returns a user's entries, most recent shift first.
func (s *Service) ListEntries(ctx context.Context, userID uuid.UUID) ([]clinical.ClinicalEntry, error) {
	entries, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	return entries, nil
}

func (s *Service) GetAcuityScore(ctx context.Context, userID uuid.UUID) (acuity.Score, error) {
	entries, err := s.ListEntries(ctx, userID)
	if err != nil {
		return acuity.Score{}, err
	}
	return s.scorer.Score(entries), nil
}

func (s *Service) GetStats(ctx context.Context, userID uuid.UUID) (stats.Summary, error) {
	entries, err := s.ListEntries(ctx, userID)
	if err != nil {
		return stats.Summary{}, err
	}
	return s.stats.Aggregate(entries), nil
}

func (s *Service) GetBreakdown(ctx context.Context, userID uuid.UUID) (stats.Breakdown, error) {
	entries, err := s.ListEntries(ctx, userID)
	if err != nil {
		return stats.Breakdown{}, err
	}
	return s.stats.Breakdown(entries), nil
}

type RewardsSummary struct {
	TotalPoints int             `json:"totalPoints"`
	Badges      []rewards.Badge `json:"badges"`
}

// GetRewards reports the user's balance when the collaborator supports it.
func (s *Service) GetRewards(ctx context.Context, userID uuid.UUID) (RewardsSummary, error) {
	reader, ok := s.rewards.(RewardsReader)
	if !ok {
		return RewardsSummary{Badges: []rewards.Badge{}}, nil
	}

	total, err := reader.Total(ctx, userID)
	if err != nil {
		return RewardsSummary{}, &CollaboratorError{Op: "total", Err: err}
	}
	badges, err := reader.Badges(ctx, userID)
	if err != nil {
		return RewardsSummary{}, &CollaboratorError{Op: "badges", Err: err}
	}
	if badges == nil {
		badges = []rewards.Badge{}
	}
	return RewardsSummary{TotalPoints: total, Badges: badges}, nil
}

func (s *Service) logEvent(ctx context.Context, userID uuid.UUID, entryID *uuid.UUID, eventType string, payload map[string]any) {
	now := s.clock()

	data, err := json.Marshal(payload)
	if err != nil {
		s.log.Error().Err(err).Str("event_type", eventType).Msg("failed to marshal event payload")
		data = nil
	}

	ev := clinical.EventLog{
		EventType: eventType,
		UserID:    userID,
		EntryID:   entryID,
		Payload:   data,
		CreatedAt: now,
	}
	if err := s.repo.InsertEvent(ctx, ev); err != nil {
		s.log.Error().Err(err).Str("event_type", eventType).Str("user_id", userID.String()).Msg("failed to insert event log")
	}

	pubCtx, cancel := context.WithTimeout(ctx, s.publishTimeout)
	defer cancel()
	err = s.publisher.Publish(pubCtx, events.Event{
		Type:    eventType,
		UserID:  userID,
		EntryID: entryID,
		Payload: payload,
		At:      now,
	})
	if err != nil {
		s.log.Warn().Err(err).Str("event_type", eventType).Msg("failed to publish event")
	}
}
