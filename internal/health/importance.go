package health

import (
	"fmt"
	"time"

	"github.com/tartampluch/go-garden/internal/config"
)

// EvaluateByImportance classifies a contact with the default policy.
func EvaluateByImportance(lastContactDate *time.Time, importance Importance, birthday *MonthDay, now time.Time) StatusLabel {
	return DefaultPolicy().EvaluateByImportance(lastContactDate, importance, birthday, now)
}

// EvaluateByImportance applies, first match wins: birthday proximity, never
// contacted, neglected (threshold + buffer), drifting (threshold), up to date.
func (p Policy) EvaluateByImportance(lastContactDate *time.Time, importance Importance, birthday *MonthDay, now time.Time) StatusLabel {
	p = p.normalized()

	out := StatusLabel{
		DaysAgo:           config.NeverContactedDays,
		DaysUntilBirthday: config.NoMilestone,
		Threshold:         p.Threshold(importance),
	}
	if lastContactDate != nil {
		out.DaysAgo = elapsedDays(*lastContactDate, now)
	}

	if birthday != nil {
		if until := birthday.DaysUntil(now); until <= p.MilestoneWindowDays {
			out.Standing = StandingMilestone
			out.DaysUntilBirthday = until
			out.Color = config.ColorMilestone
			if until == 0 {
				out.Milestone = MilestoneToday
				out.MessageID = config.TKeyMilestoneToday
				out.Label = config.FallbackLabelBirthdayToday
			} else {
				out.Milestone = MilestoneUpcoming
				out.MessageID = config.TKeyMilestoneUpcoming
				out.Label = fmt.Sprintf(config.FallbackLabelBirthdaySoon, until)
			}
			return out
		}
	}

	switch {
	case lastContactDate == nil:
		out.Standing = StandingNew
		out.MessageID = config.TKeyStandingNew
		out.Label = config.FallbackLabelNew
		out.Color = config.ColorNew
	case out.DaysAgo >= out.Threshold+p.NeglectBufferDays:
		out.Standing = StandingNeglected
		out.MessageID = config.TKeyStandingNeglected
		out.Label = fmt.Sprintf(config.FallbackLabelNeglected, out.DaysAgo)
		out.Color = config.ColorNeglected
	case out.DaysAgo >= out.Threshold:
		out.Standing = StandingDrifting
		out.MessageID = config.TKeyStandingDrifting
		out.Label = fmt.Sprintf(config.FallbackLabelDrifting, out.DaysAgo)
		out.Color = config.ColorDrifting
	default:
		out.Standing = StandingNurtured
		out.MessageID = config.TKeyStandingNurtured
		out.Label = config.FallbackLabelNurtured
		out.Color = config.ColorNurtured
	}
	return out
}
