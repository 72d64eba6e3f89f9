package business

import (
	"fmt"
	"time"

	"github.com/xaenox/cafe-bot/internal/models"
)

const (
	Name    = "Artisan Café"
	Address = "123 Artisan Street, Coffee District, CA 94102"
	Phone   = "(415) 555-1234"
	Email   = "hello@artisancafe.com"
)

func hm(h, m int) time.Duration {
	return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute
}

var hours = []models.DaySchedule{
	{Day: time.Monday, Opens: hm(7, 0), Closes: hm(20, 0)},
	{Day: time.Tuesday, Opens: hm(7, 0), Closes: hm(20, 0)},
	{Day: time.Wednesday, Opens: hm(7, 0), Closes: hm(20, 0)},
	{Day: time.Thursday, Opens: hm(7, 0), Closes: hm(21, 0)},
	{Day: time.Friday, Opens: hm(7, 0), Closes: hm(21, 0)},
	{Day: time.Saturday, Opens: hm(8, 0), Closes: hm(21, 0)},
	{Day: time.Sunday, Opens: hm(8, 0), Closes: hm(19, 0)},
}

var amenities = []models.Amenity{
	{Name: "Free WiFi"},
	{Name: "Parking"},
	{Name: "Eco-Friendly"},
	{Name: "Pet Friendly"},
}

// Panel answers hours questions in the café's local time zone.
type Panel struct {
	loc *time.Location
}

// NewPanel returns a panel for loc. A nil loc means UTC.
func NewPanel(loc *time.Location) *Panel {
	if loc == nil {
		loc = time.UTC
	}
	return &Panel{loc: loc}
}

// Info returns the static business panel, Monday first.
func (p *Panel) Info() models.BusinessInfo {
	h := make([]models.DaySchedule, len(hours))
	copy(h, hours)
	a := make([]models.Amenity, len(amenities))
	copy(a, amenities)
	return models.BusinessInfo{
		Name:      Name,
		Address:   Address,
		Phone:     Phone,
		Email:     Email,
		Hours:     h,
		Amenities: a,
	}
}

// Today returns the schedule for the local weekday of t.
func (p *Panel) Today(t time.Time) models.DaySchedule {
	return scheduleFor(t.In(p.loc).Weekday())
}

// IsOpen reports whether the café is open at t.
func (p *Panel) IsOpen(t time.Time) bool {
	local := t.In(p.loc)
	day := scheduleFor(local.Weekday())
	// Wall-clock offset; elapsed time since midnight is off by an hour on
	// daylight saving changes.
	since := hm(local.Hour(), local.Minute()) + time.Duration(local.Second())*time.Second
	return since >= day.Opens && since < day.Closes
}

// Status is a one-line open/closed summary for t.
func (p *Panel) Status(t time.Time) string {
	day := p.Today(t)
	if p.IsOpen(t) {
		return fmt.Sprintf("Open now · today %s", FormatHours(day))
	}
	return fmt.Sprintf("Closed now · today %s", FormatHours(day))
}

func scheduleFor(d time.Weekday) models.DaySchedule {
	for _, s := range hours {
		if s.Day == d {
			return s
		}
	}
	return models.DaySchedule{Day: d}
}

// FormatHours renders a schedule as "7:00 AM - 8:00 PM".
func FormatHours(s models.DaySchedule) string {
	return clock(s.Opens) + " - " + clock(s.Closes)
}

func clock(d time.Duration) string {
	t := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC).Add(d)
	return t.Format("3:04 PM")
}
