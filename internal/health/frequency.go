package health

import (
	"time"

	"github.com/tartampluch/go-garden/internal/config"
)

type presentation struct {
	messageID string
	label     string
	color     string
}

var statusPresentation = map[Status]presentation{
	StatusBlooming:  {config.TKeyStatusBlooming, config.FallbackLabelBlooming, config.ColorBlooming},
	StatusNourished: {config.TKeyStatusNourished, config.FallbackLabelNourished, config.ColorNourished},
	StatusThirsty:   {config.TKeyStatusThirsty, config.FallbackLabelThirsty, config.ColorThirsty},
	StatusFading:    {config.TKeyStatusFading, config.FallbackLabelFading, config.ColorFading},
}

// EvaluateByFrequency classifies a contact with the default policy.
func EvaluateByFrequency(lastContactDate *time.Time, targetFrequencyDays int, now time.Time) HealthResult {
	return DefaultPolicy().EvaluateByFrequency(lastContactDate, targetFrequencyDays, now)
}

// EvaluateByFrequency buckets days-since-contact relative to the cadence.
// A nil lastContactDate is FADING with the NeverContactedDays sentinel.
func (p Policy) EvaluateByFrequency(lastContactDate *time.Time, targetFrequencyDays int, now time.Time) HealthResult {
	p = p.normalized()

	if lastContactDate == nil {
		return newHealthResult(StatusFading, config.NeverContactedDays)
	}

	days := elapsedDays(*lastContactDate, now)
	return newHealthResult(p.bucket(days, p.Cadence(targetFrequencyDays)), days)
}

// bucket compares in integer percent so that a 30 day cadence lands exactly on 7/21/45.
func (p Policy) bucket(days, cadence int) Status {
	scaled := days * config.PercentBase
	switch {
	case scaled <= cadence*p.BloomingPercent:
		return StatusBlooming
	case scaled <= cadence*p.NourishedPercent:
		return StatusNourished
	case scaled <= cadence*p.ThirstyPercent:
		return StatusThirsty
	default:
		return StatusFading
	}
}

func newHealthResult(status Status, days int) HealthResult {
	pres := statusPresentation[status]
	return HealthResult{
		Status:    status,
		DaysSince: days,
		Label:     pres.label,
		Color:     pres.color,
		MessageID: pres.messageID,
	}
}
