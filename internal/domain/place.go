package domain

import "strings"

// TimeOfDay is a visitor's preferred time slot for a place.
type TimeOfDay int

const (
	TimeUnknown TimeOfDay = iota
	TimeMorning
	TimeAfternoon
	TimeEvening
	TimeAny
)

func (t TimeOfDay) String() string {
	switch t {
	case TimeMorning:
		return "morning"
	case TimeAfternoon:
		return "afternoon"
	case TimeEvening:
		return "evening"
	case TimeAny:
		return "any"
	}
	return "unknown"
}

// ParseTimeOfDay maps free-form metadata like "Morning" or
// "Evening (sunset)" to a TimeOfDay. Unrecognized input parses as TimeUnknown.
func ParseTimeOfDay(s string) TimeOfDay {
	s = strings.ToLower(strings.TrimSpace(s))
	switch {
	case strings.HasPrefix(s, "morning"):
		return TimeMorning
	case strings.HasPrefix(s, "afternoon"):
		return TimeAfternoon
	case strings.HasPrefix(s, "evening"), strings.HasPrefix(s, "night"):
		return TimeEvening
	case s == "any", s == "anytime", s == "all day":
		return TimeAny
	}
	return TimeUnknown
}

// Place is a named point of interest within a city.
// Coords stays nil until the geocoding pipeline resolves the name; once set
// it is never overwritten within a planning call.
type Place struct {
	Name      string
	Coords    *Coordinates
	Preferred TimeOfDay
}

// Resolved reports whether the place has usable coordinates.
func (p Place) Resolved() bool { return p.Coords != nil }

// Site is a curated point of interest stored per city, seeded offline.
type Site struct {
	Name        string
	City        string
	Category    string
	Description string
	Lat         float64
	Lng         float64
	BestTime    TimeOfDay
}

// ToPlace converts a stored site into a resolved Place.
func (s Site) ToPlace() Place {
	return Place{
		Name:      s.Name,
		Coords:    &Coordinates{Lat: s.Lat, Lng: s.Lng},
		Preferred: s.BestTime,
	}
}
