package engine

import (
	"bytes"
	"fmt"
	"time"

	"github.com/emersion/go-ical"
	"github.com/tartampluch/go-garden/internal/config"
)

// buildCalendar renders the nudge feed: one reach-out event per contact on its
// due date, and one event for each known upcoming birthday.
func (g *Generator) buildCalendar(report Report, reminderTrigger string) ([]byte, error) {
	if len(report.Entries) == 0 {
		// A valid empty VCALENDAR keeps subscribed clients from flagging the feed.
		return []byte(config.StubVCalendar), nil
	}

	cal := ical.NewCalendar()
	cal.Props.SetText(config.PropVersion, config.ICalVersion)
	cal.Props.SetText(config.PropProdid, config.ICalProdid)
	cal.Props.SetText(config.PropXWRCalName, config.ICalCalName)
	cal.Props.SetText(config.PropCalScale, config.ICalScale)
	cal.Props.SetText(config.PropMethod, config.ICalMethod)

	// RFC 7986 refresh hint
	refreshProp := ical.NewProp(config.PropRefresh)
	refreshProp.SetDuration(config.DefaultICalRefresh)
	cal.Props.Set(refreshProp)

	dtStampProp := ical.NewProp(config.PropDTStamp)
	dtStampProp.SetDateTime(report.GeneratedAt.UTC())

	for _, a := range report.Entries {
		summary := g.summary(config.TKeyEvtReachOut, config.FallbackSummaryReachOut, a.Contact.Name)
		reach := newDayEvent(a.Contact.ID, config.EventKindReachOut, summary, a.DueDate)
		reach.Props.SetText(config.PropDescription, a.Standing.Label)
		reach.Props.SetText(config.PropCategories, string(a.Frequency.Status))
		reach.Props.Set(dtStampProp)
		if reminderTrigger != "" {
			addAlarm(reach, reminderTrigger, summary)
		}
		cal.Children = append(cal.Children, reach.Component)

		if a.NextBirthday == nil {
			continue
		}
		summary = g.summary(config.TKeyEvtBirthday, config.FallbackSummaryBirthday, a.Contact.Name)
		bday := newDayEvent(a.Contact.ID, config.EventKindBirthday, summary, *a.NextBirthday)
		bday.Props.Set(dtStampProp)
		if reminderTrigger != "" {
			addAlarm(bday, reminderTrigger, summary)
		}
		cal.Children = append(cal.Children, bday.Component)
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrICalEncode, err)
	}
	return buf.Bytes(), nil
}

func (g *Generator) summary(messageID, fallback, name string) string {
	if g.FormatSummary != nil {
		return g.FormatSummary(messageID, name)
	}
	return fmt.Sprintf(fallback, name)
}

// newDayEvent creates an all-day event whose UID is stable for a contact and kind.
func newDayEvent(contactID, kind, summary string, day time.Time) *ical.Event {
	event := ical.NewEvent()
	event.Props.SetText(config.PropUID, fmt.Sprintf(config.FormatUID, contactID, kind, config.ICalDomain))
	event.Props.SetText(config.PropSummary, summary)

	dtStartProp := ical.NewProp(config.PropDTStart)
	dtStartProp.SetDate(day)
	event.Props.Set(dtStartProp)
	return event
}

// addAlarm appends a DISPLAY alarm (notification) to the event.
func addAlarm(event *ical.Event, trigger, description string) {
	alarm := ical.NewComponent(config.ICalComponent)
	alarm.Props.SetText(config.PropAction, config.ICalAction)
	alarm.Props.SetText(config.PropDescription, description)

	// Set trigger manually to avoid "VALUE=TEXT" param
	triggerProp := ical.NewProp(config.PropTrigger)
	triggerProp.Value = trigger
	alarm.Props.Set(triggerProp)

	event.Children = append(event.Children, alarm)
}
