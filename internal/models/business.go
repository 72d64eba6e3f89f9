package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// DaySchedule holds opening hours for one weekday. Opens and Closes are
// wall-clock offsets from local midnight.
type DaySchedule struct {
	Day    time.Weekday
	Opens  time.Duration
	Closes time.Duration
}

type dayScheduleJSON struct {
	Day    string `json:"day"`
	Opens  string `json:"opens"`
	Closes string `json:"closes"`
}

// MarshalJSON renders the schedule as {"day":"Monday","opens":"07:00","closes":"20:00"}.
func (d DaySchedule) MarshalJSON() ([]byte, error) {
	return json.Marshal(dayScheduleJSON{
		Day:    d.Day.String(),
		Opens:  clockString(d.Opens),
		Closes: clockString(d.Closes),
	})
}

func (d *DaySchedule) UnmarshalJSON(data []byte) error {
	var raw dayScheduleJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	day, err := parseWeekday(raw.Day)
	if err != nil {
		return err
	}
	opens, err := parseClock(raw.Opens)
	if err != nil {
		return fmt.Errorf("opens: %w", err)
	}
	closes, err := parseClock(raw.Closes)
	if err != nil {
		return fmt.Errorf("closes: %w", err)
	}

	*d = DaySchedule{Day: day, Opens: opens, Closes: closes}
	return nil
}

func clockString(d time.Duration) string {
	return fmt.Sprintf("%02d:%02d", int(d/time.Hour), int(d%time.Hour/time.Minute))
}

func parseClock(s string) (time.Duration, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q", s)
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

func parseWeekday(s string) (time.Weekday, error) {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if d.String() == s {
			return d, nil
		}
	}
	return 0, fmt.Errorf("invalid weekday %q", s)
}

type Amenity struct {
	Name string `json:"name"`
}

// BusinessInfo is the static contact and hours panel.
type BusinessInfo struct {
	Name      string        `json:"name"`
	Address   string        `json:"address"`
	Phone     string        `json:"phone"`
	Email     string        `json:"email"`
	Hours     []DaySchedule `json:"hours"`
	Amenities []Amenity     `json:"amenities"`
}
