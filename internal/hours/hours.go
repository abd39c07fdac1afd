// Package hours turns the shop's opening hours and the current wall-clock time into
// the advisory line shown under the open/closed badge.
package hours

import (
	"fmt"
	"time"
)

// DefaultZone is the shop's local time zone (UTC+05:30).
var DefaultZone = time.FixedZone("IST", 5*60*60+30*60)

// Default is the shop's regular schedule.
var Default = Schedule{
	Zone:            DefaultZone,
	MorningOpen:     7 * time.Hour,
	MorningClose:    11 * time.Hour,
	EveningOpen:     16*time.Hour + 30*time.Minute,
	EveningClose:    21 * time.Hour,
	ClosingSoonLead: 15 * time.Minute,
}

// Schedule holds the daily boundaries as offsets from local midnight.
type Schedule struct {
	Zone            *time.Location
	MorningOpen     time.Duration
	MorningClose    time.Duration
	EveningOpen     time.Duration
	EveningClose    time.Duration
	ClosingSoonLead time.Duration
}

// Message computes the advisory using the default schedule.
func Message(shopOpen bool, now time.Time) string {
	return Default.Message(shopOpen, now)
}

// Message returns the advisory for the given open flag at instant now.
// It has no side effects and is safe to call concurrently.
func (s Schedule) Message(shopOpen bool, now time.Time) string {
	local := now.In(s.zone())
	tod := timeOfDay(local)

	switch local.Weekday() {
	case time.Sunday:
		return ""
	case time.Saturday:
		if tod > s.EveningClose {
			return ""
		}
	}

	if shopOpen {
		if s.closingSoon(tod, s.MorningClose) {
			return closingSoonMessage(s.MorningClose)
		}
		if s.closingSoon(tod, s.EveningClose) {
			return closingSoonMessage(s.EveningClose)
		}
		return ""
	}

	switch {
	case tod > s.MorningClose && tod < s.EveningOpen:
		return opensAtMessage(s.EveningOpen)
	case tod > s.EveningClose || tod < s.MorningOpen:
		return opensAtMessage(s.MorningOpen)
	}
	return ""
}

// closingSoon reports whether tod falls in [close-lead, close].
func (s Schedule) closingSoon(tod, closeAt time.Duration) bool {
	return tod >= closeAt-s.ClosingSoonLead && tod <= closeAt
}

func (s Schedule) zone() *time.Location {
	if s.Zone == nil {
		return DefaultZone
	}
	return s.Zone
}

func timeOfDay(t time.Time) time.Duration {
	return time.Duration(t.Hour())*time.Hour +
		time.Duration(t.Minute())*time.Minute +
		time.Duration(t.Second())*time.Second +
		time.Duration(t.Nanosecond())
}

func clockLabel(d time.Duration) string {
	return time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC).Add(d).Format("3:04 PM")
}

func closingSoonMessage(closeAt time.Duration) string {
	return fmt.Sprintf("Closing soon! Orders close at %s", clockLabel(closeAt))
}

func opensAtMessage(openAt time.Duration) string {
	return fmt.Sprintf("Opens at %s", clockLabel(openAt))
}
