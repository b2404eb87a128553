// Package rewards awards engagement points and milestone badges.
package rewards

import (
	"sort"
)

type ActionKind string

const (
	ActionClinicalLog        ActionKind = "CLINICAL_LOG"
	ActionCommunityPost      ActionKind = "COMMUNITY_POST"
	ActionCommunityReply     ActionKind = "COMMUNITY_REPLY"
	ActionOnboardingComplete ActionKind = "ONBOARDING_COMPLETE"
)

// DefaultAmounts is used when an award call passes no explicit amount.
var DefaultAmounts = map[ActionKind]int{
	ActionClinicalLog:        10,
	ActionCommunityPost:      5,
	ActionCommunityReply:     2,
	ActionOnboardingComplete: 25,
}

func (k ActionKind) Valid() bool {
	_, ok := DefaultAmounts[k]
	return ok
}

type AwardResult struct {
	Success       bool `json:"success"`
	PointsAwarded int  `json:"pointsAwarded"`
	Total         int  `json:"total"`
}

type Badge struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Milestone   int    `json:"milestone"`
}

// DefaultMilestones are clinical entry counts that earn a badge.
var DefaultMilestones = []Badge{
	{ID: "first_shift", Name: "First Shift Logged", Description: "Logged your first clinical shift.", Milestone: 1},
	{ID: "ten_shifts", Name: "Consistent Logger", Description: "Logged 10 clinical shifts.", Milestone: 10},
	{ID: "twenty_shifts", Name: "Clinical Chronicler", Description: "Logged 20 clinical shifts.", Milestone: 20},
	{ID: "fifty_shifts", Name: "ICU Veteran", Description: "Logged 50 clinical shifts.", Milestone: 50},
}

// crossed returns the milestones reached at count, lowest first.
func crossed(milestones []Badge, count int) []Badge {
	var out []Badge
	for _, b := range milestones {
		if count >= b.Milestone {
			out = append(out, b)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Milestone < out[j].Milestone })
	return out
}

func resolveAmount(kind ActionKind, amount *int) int {
	if amount != nil {
		return *amount
	}
	return DefaultAmounts[kind]
}
