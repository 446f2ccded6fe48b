package health

import (
	"strings"
	"time"

	"github.com/tartampluch/go-garden/internal/config"
)

// Importance is the per-contact priority tier of the importance scheme.
type Importance string

const (
	ImportanceHigh   Importance = "high"
	ImportanceMedium Importance = "medium"
	ImportanceLow    Importance = "low"
)

// ParseImportance maps free-form input to an Importance.
// Anything unrecognized, including the empty string, is medium.
func ParseImportance(s string) Importance {
	switch Importance(strings.ToLower(strings.TrimSpace(s))) {
	case ImportanceHigh:
		return ImportanceHigh
	case ImportanceLow:
		return ImportanceLow
	default:
		return ImportanceMedium
	}
}

// Status is a bucket of the frequency scheme, from healthiest to least healthy.
type Status string

const (
	StatusBlooming  Status = "BLOOMING"
	StatusNourished Status = "NOURISHED"
	StatusThirsty   Status = "THIRSTY"
	StatusFading    Status = "FADING"
)

// Severity orders statuses: 0 for BLOOMING up to 3 for FADING.
func (s Status) Severity() int {
	switch s {
	case StatusBlooming:
		return 0
	case StatusNourished:
		return 1
	case StatusThirsty:
		return 2
	default:
		return 3
	}
}

// Standing is the classification of the importance scheme.
type Standing string

const (
	StandingNurtured  Standing = "nurtured"
	StandingDrifting  Standing = "drifting"
	StandingNeglected Standing = "neglected"
	StandingNew       Standing = "new_contact"
	StandingMilestone Standing = "milestone"
)

// Milestone distinguishes a birthday today from one in the coming days.
type Milestone string

const (
	MilestoneNone     Milestone = ""
	MilestoneToday    Milestone = "today"
	MilestoneUpcoming Milestone = "upcoming"
)

// Contact is the normalized view of a contact record consumed by the evaluator.
type Contact struct {
	ID                  string     `json:"id"`
	Name                string     `json:"name"`
	LastContactDate     *time.Time `json:"last_contact_date,omitempty"`
	TargetFrequencyDays int        `json:"target_frequency_days"`
	Importance          Importance `json:"importance"`
	Birthday            *MonthDay  `json:"birthday,omitempty"`
}

// HealthResult is the outcome of the frequency scheme.
type HealthResult struct {
	Status    Status `json:"status"`
	DaysSince int    `json:"days_since"`
	Label     string `json:"label"`
	Color     string `json:"color"`
	MessageID string `json:"message_id"`
}

// StatusLabel is the outcome of the importance scheme.
type StatusLabel struct {
	Standing          Standing  `json:"standing"`
	Milestone         Milestone `json:"milestone,omitempty"`
	DaysAgo           int       `json:"days_ago"`
	DaysUntilBirthday int       `json:"days_until_birthday"`
	Threshold         int       `json:"threshold"`
	Label             string    `json:"label"`
	Color             string    `json:"color"`
	MessageID         string    `json:"message_id"`
}

// TemplateData returns the values the label message interpolates, or nil.
func (s StatusLabel) TemplateData() map[string]interface{} {
	switch {
	case s.Milestone == MilestoneUpcoming:
		return map[string]interface{}{config.TemplateKeyDays: s.DaysUntilBirthday}
	case s.Standing == StandingDrifting, s.Standing == StandingNeglected:
		return map[string]interface{}{config.TemplateKeyDays: s.DaysAgo}
	default:
		return nil
	}
}

// PluralCount returns the number driving plural forms of the label, or nil.
func (s StatusLabel) PluralCount() interface{} {
	if data := s.TemplateData(); data != nil {
		return data[config.TemplateKeyDays]
	}
	return nil
}
