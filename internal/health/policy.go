package health

import (
	"time"

	"github.com/tartampluch/go-garden/internal/config"
)

// Policy holds the thresholds of both classification schemes.
// Zero or negative fields fall back to the built-in defaults, so a partially
// filled Policy is always usable.
type Policy struct {
	DefaultFrequencyDays int

	// Frequency scheme: upper bound (inclusive) of each bucket, in percent of the cadence.
	BloomingPercent  int
	NourishedPercent int
	ThirstyPercent   int

	// Importance scheme.
	HighThresholdDays   int
	MediumThresholdDays int
	LowThresholdDays    int
	NeglectBufferDays   int
	MilestoneWindowDays int
}

// DefaultPolicy returns the canonical thresholds (30 day cadence, 7/21/45 day
// buckets, 14/30/90 day importance thresholds, 30 day neglect buffer, 7 day
// birthday window).
func DefaultPolicy() Policy {
	return Policy{
		DefaultFrequencyDays: config.DefaultFrequencyDays,
		BloomingPercent:      config.DefaultBloomingPercent,
		NourishedPercent:     config.DefaultNourishedPercent,
		ThirstyPercent:       config.DefaultThirstyPercent,
		HighThresholdDays:    config.DefaultHighThresholdDays,
		MediumThresholdDays:  config.DefaultMediumThresholdDays,
		LowThresholdDays:     config.DefaultLowThresholdDays,
		NeglectBufferDays:    config.DefaultNeglectBufferDays,
		MilestoneWindowDays:  config.DefaultMilestoneWindowDays,
	}
}

// PolicyFromSettings converts the YAML overrides into a Policy.
func PolicyFromSettings(s config.PolicySettings) Policy {
	return Policy{
		DefaultFrequencyDays: s.DefaultFrequencyDays,
		BloomingPercent:      s.BloomingPercent,
		NourishedPercent:     s.NourishedPercent,
		ThirstyPercent:       s.ThirstyPercent,
		HighThresholdDays:    s.HighThresholdDays,
		MediumThresholdDays:  s.MediumThresholdDays,
		LowThresholdDays:     s.LowThresholdDays,
		NeglectBufferDays:    s.NeglectBufferDays,
		MilestoneWindowDays:  s.MilestoneWindowDays,
	}.normalized()
}

func (p Policy) normalized() Policy {
	def := DefaultPolicy()
	fill := func(v *int, d int) {
		if *v <= 0 {
			*v = d
		}
	}
	fill(&p.DefaultFrequencyDays, def.DefaultFrequencyDays)
	fill(&p.BloomingPercent, def.BloomingPercent)
	fill(&p.NourishedPercent, def.NourishedPercent)
	fill(&p.ThirstyPercent, def.ThirstyPercent)
	fill(&p.HighThresholdDays, def.HighThresholdDays)
	fill(&p.MediumThresholdDays, def.MediumThresholdDays)
	fill(&p.LowThresholdDays, def.LowThresholdDays)
	fill(&p.NeglectBufferDays, def.NeglectBufferDays)
	fill(&p.MilestoneWindowDays, def.MilestoneWindowDays)

	for _, v := range []*int{
		&p.DefaultFrequencyDays, &p.HighThresholdDays, &p.MediumThresholdDays,
		&p.LowThresholdDays, &p.NeglectBufferDays, &p.MilestoneWindowDays,
	} {
		*v = min(*v, config.MaxFrequencyDays)
	}
	for _, v := range []*int{&p.BloomingPercent, &p.NourishedPercent, &p.ThirstyPercent} {
		*v = min(*v, config.MaxPolicyPercent)
	}
	return p
}

// Cadence substitutes the default for missing or non-positive cadences and
// caps the rest at config.MaxFrequencyDays.
func (p Policy) Cadence(targetFrequencyDays int) int {
	if targetFrequencyDays <= 0 {
		return p.normalized().DefaultFrequencyDays
	}
	return min(targetFrequencyDays, config.MaxFrequencyDays)
}

// Threshold is the overdue threshold for an importance tier.
// It does not depend on the contact's cadence.
func (p Policy) Threshold(importance Importance) int {
	p = p.normalized()
	switch ParseImportance(string(importance)) {
	case ImportanceHigh:
		return p.HighThresholdDays
	case ImportanceLow:
		return p.LowThresholdDays
	default:
		return p.MediumThresholdDays
	}
}

// elapsedDays is floor((now - last) / 24h) measured in wall-clock time of
// now's location, so a DST shift between the two instants does not lose a day.
// Future dates clamp to zero.
func elapsedDays(last, now time.Time) int {
	_, lastOffset := last.In(now.Location()).Zone()
	_, nowOffset := now.Zone()

	d := now.Sub(last) + time.Duration(nowOffset-lastOffset)*time.Second
	if d <= 0 {
		return 0
	}
	return int(d / (config.HoursPerDay * time.Hour))
}
