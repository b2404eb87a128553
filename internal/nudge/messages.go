package nudge

import (
	"math"
	"time"
)

type Tier string

const (
	TierNone     Tier = ""
	TierFewDays  Tier = "few_days"
	TierOneWeek  Tier = "one_week"
	TierTwoWeeks Tier = "two_weeks"
)

type Message struct {
	Tier  Tier   `json:"tier"`
	Title string `json:"title"`
	Body  string `json:"body"`
}

var messages = []struct {
	minDays int
	msg     Message
}{
	{14, Message{TierTwoWeeks, "It's been two weeks", "Your tracker misses you. Log even one recent shift to keep your experience record accurate for applications."}},
	{7, Message{TierOneWeek, "A week without a log", "Details fade fast. Take two minutes to capture the drips and devices from your last shift."}},
	{MinDaysInactive, Message{TierFewDays, "Worked a shift lately?", "Log it while it's fresh to keep building your acuity score."}},
}

// MessageFor picks the escalating copy for the number of inactive days.
// It returns false below the lowest tier.
func MessageFor(days int) (Message, bool) {
	for _, m := range messages {
		if days >= m.minDays {
			return m.msg, true
		}
	}
	return Message{}, false
}

// DaysSince returns whole days elapsed from the most recent shift date to
// now, floored, or nil when there are no shift dates. Future dates count
// as zero.
func DaysSince(shiftDates []time.Time, now time.Time) *int {
	var latest time.Time
	for _, d := range shiftDates {
		if d.After(latest) {
			latest = d
		}
	}
	if latest.IsZero() {
		return nil
	}
	days := int(math.Floor(now.Sub(latest).Hours() / 24))
	if days < 0 {
		days = 0
	}
	return &days
}
