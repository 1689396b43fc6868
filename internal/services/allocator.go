package services

import (
	"math/rand"
	"time"

	"trip-route-service/internal/domain"
)

// Allocator partitions an ordered set of places into daily buckets, ranking
// places by how well their preferred time-of-day matches the current one.
// The shuffle among equally-ranked places is intentional run-to-run
// variation; both the random source and the clock are injectable so tests
// can pin them.
type Allocator struct {
	Rand *rand.Rand
	Now  func() time.Time
}

func NewAllocator() *Allocator {
	return &Allocator{
		Rand: rand.New(rand.NewSource(time.Now().UnixNano())),
		Now:  time.Now,
	}
}

// Allocate splits places into max(1, dayCount) contiguous buckets. Earlier
// buckets take the ceil(total/dayCount) share, so sizes differ by at most
// one and trailing buckets may be smaller or empty. Within each
// preference-score group the order is shuffled; across groups the
// time-of-day ranking is preserved.
func (a *Allocator) Allocate(places []domain.Place, dayCount int) [][]domain.Place {
	if dayCount < 1 {
		dayCount = 1
	}

	ordered := a.rankPlaces(places)

	buckets := make([][]domain.Place, dayCount)
	base := len(ordered) / dayCount
	rem := len(ordered) % dayCount

	idx := 0
	for i := range buckets {
		size := base
		if i < rem {
			size++
		}
		buckets[i] = ordered[idx : idx+size]
		idx += size
	}
	return buckets
}

// rankPlaces orders places by preference score ascending, shuffling within
// each score group.
func (a *Allocator) rankPlaces(places []domain.Place) []domain.Place {
	current := currentTimeOfDay(a.now())

	groups := map[int][]domain.Place{}
	for _, p := range places {
		s := preferenceScore(p.Preferred, current)
		groups[s] = append(groups[s], p)
	}

	ordered := make([]domain.Place, 0, len(places))
	for _, score := range []int{0, 1, 2} {
		group := groups[score]
		a.shuffle(group)
		ordered = append(ordered, group...)
	}
	return ordered
}

func (a *Allocator) shuffle(group []domain.Place) {
	r := a.Rand
	if r == nil {
		r = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	r.Shuffle(len(group), func(i, j int) {
		group[i], group[j] = group[j], group[i]
	})
}

func (a *Allocator) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

// preferenceScore: 0 when the place's preferred slot matches the current
// one, 1 for flexible or unset preferences, 2 otherwise. Lower sorts first.
func preferenceScore(preferred, current domain.TimeOfDay) int {
	switch preferred {
	case current:
		return 0
	case domain.TimeAny, domain.TimeUnknown:
		return 1
	default:
		return 2
	}
}

// currentTimeOfDay buckets wall-clock time; late night collapses into
// Evening.
func currentTimeOfDay(t time.Time) domain.TimeOfDay {
	switch h := t.Hour(); {
	case h >= 5 && h < 12:
		return domain.TimeMorning
	case h >= 12 && h < 17:
		return domain.TimeAfternoon
	default:
		return domain.TimeEvening
	}
}
