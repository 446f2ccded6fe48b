package health

import (
	"sort"
	"strings"
	"time"
)

// Assessment combines both classification schemes for one contact.
type Assessment struct {
	Contact      Contact      `json:"contact"`
	Frequency    HealthResult `json:"frequency"`
	Standing     StatusLabel  `json:"standing"`
	DueDate      time.Time    `json:"due_date"`
	NextBirthday *time.Time   `json:"next_birthday,omitempty"`
}

// NeedsCare reports whether either scheme asks for a reach-out.
func (a Assessment) NeedsCare() bool {
	switch a.Standing.Standing {
	case StandingDrifting, StandingNeglected, StandingNew:
		return true
	}
	return a.Frequency.Status == StatusThirsty || a.Frequency.Status == StatusFading
}

// Evaluator applies a Policy with an injected clock.
type Evaluator struct {
	Policy Policy
	Clock  Clock
}

// NewEvaluator returns an Evaluator; a nil clock means the real clock.
func NewEvaluator(policy Policy, clock Clock) *Evaluator {
	if clock == nil {
		clock = RealClock{}
	}
	return &Evaluator{Policy: policy.normalized(), Clock: clock}
}

func (e *Evaluator) now() time.Time {
	if e.Clock == nil {
		return time.Now()
	}
	return e.Clock.Now()
}

// Assess evaluates a single contact.
func (e *Evaluator) Assess(c Contact) Assessment {
	return e.Policy.Assess(c, e.now())
}

// AssessAll evaluates every contact against a single reading of the clock.
func (e *Evaluator) AssessAll(contacts []Contact) []Assessment {
	now := e.now()
	out := make([]Assessment, 0, len(contacts))
	for _, c := range contacts {
		out = append(out, e.Policy.Assess(c, now))
	}
	return out
}

// Assess runs both schemes for c at now and computes the next reach-out date.
func (p Policy) Assess(c Contact, now time.Time) Assessment {
	p = p.normalized()

	a := Assessment{
		Contact:   c,
		Frequency: p.EvaluateByFrequency(c.LastContactDate, c.TargetFrequencyDays, now),
		Standing:  p.EvaluateByImportance(c.LastContactDate, c.Importance, c.Birthday, now),
		DueDate:   p.DueDate(c.LastContactDate, c.TargetFrequencyDays, now),
	}
	if c.Birthday != nil {
		next := c.Birthday.Next(now)
		a.NextBirthday = &next
	}
	return a
}

// DueDate is the day the next contact is expected: last contact plus cadence,
// or today when the contact is overdue or was never reached.
func (p Policy) DueDate(lastContactDate *time.Time, targetFrequencyDays int, now time.Time) time.Time {
	today := startOfDay(now)
	if lastContactDate == nil {
		return today
	}
	due := startOfDay(lastContactDate.In(now.Location())).AddDate(0, 0, p.Cadence(targetFrequencyDays))
	if due.Before(today) {
		return today
	}
	return due
}

// SortByUrgency orders assessments from least to most healthy:
// FADING first, then by days since contact (descending), then by name.
func SortByUrgency(items []Assessment) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if sa, sb := a.Frequency.Status.Severity(), b.Frequency.Status.Severity(); sa != sb {
			return sa > sb
		}
		if a.Frequency.DaysSince != b.Frequency.DaysSince {
			return a.Frequency.DaysSince > b.Frequency.DaysSince
		}
		return strings.ToLower(a.Contact.Name) < strings.ToLower(b.Contact.Name)
	})
}

// Garden is the bucket view over a set of assessments.
type Garden struct {
	Total      int              `json:"total"`
	ByStatus   map[Status]int   `json:"by_status"`
	ByStanding map[Standing]int `json:"by_standing"`
	Milestones int              `json:"milestones"`
	NeedsCare  int              `json:"needs_care"`
}

// Summarize counts assessments per bucket. Every status and standing is present in the maps.
func Summarize(items []Assessment) Garden {
	g := Garden{
		Total: len(items),
		ByStatus: map[Status]int{
			StatusBlooming: 0, StatusNourished: 0, StatusThirsty: 0, StatusFading: 0,
		},
		ByStanding: map[Standing]int{
			StandingNurtured: 0, StandingDrifting: 0, StandingNeglected: 0, StandingNew: 0, StandingMilestone: 0,
		},
	}
	for _, a := range items {
		g.ByStatus[a.Frequency.Status]++
		g.ByStanding[a.Standing.Standing]++
		if a.Standing.Milestone != MilestoneNone {
			g.Milestones++
		}
		if a.NeedsCare() {
			g.NeedsCare++
		}
	}
	return g
}
