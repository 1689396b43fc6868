package domain

// RouteLeg is the routing result between two consecutive places in a day.
// When graph routing succeeds, Path holds the traversed network node IDs and
// Coordinates their positions. When it fails, Coordinates is the two raw
// input points and UsedFallback is set.
type RouteLeg struct {
	FromName     string
	ToName       string
	Coordinates  []Coordinates
	Path         []int64
	UsedFallback bool
}

// DayPlan is one day's slice of an itinerary: the places assigned to the
// day, the continuous drivable route joining them, and turn instructions.
// A day with fewer than two places carries an empty route and no
// instructions. Immutable after construction.
type DayPlan struct {
	Label        string
	Places       []Place
	Route        []Coordinates
	Legs         []RouteLeg
	Instructions []string
}

// Itinerary is the full plan for one city and one trip-length request.
// DroppedPlaces lists input names that could not be resolved to coordinates.
type Itinerary struct {
	City          string
	Days          []DayPlan
	DroppedPlaces []string
}
