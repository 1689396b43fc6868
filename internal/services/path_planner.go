package services

import (
	"container/heap"
	"log"
	"math"

	"trip-route-service/internal/domain"
)

// RouteResult is the outcome of routing an ordered place list: one
// continuous polyline plus the per-leg detail the instruction synthesizer
// consumes.
type RouteResult struct {
	Polyline []domain.Coordinates
	Legs     []domain.RouteLeg
}

// RoutePlaces computes a drivable route visiting places in their given
// order. Each leg is routed independently over the network; when graph
// routing fails for a leg, a straight-line two-point segment between the raw
// coordinates is substituted and the leg flagged as fallback. Fewer than two
// distinct places yields an empty result, which is a valid outcome, not an
// error.
func RoutePlaces(places []domain.Place, network *domain.RoadNetwork) RouteResult {
	return routePlaces(places, network, false)
}

// RouteLoop behaves like RoutePlaces but treats the first and last entries
// as loop anchors (e.g. a hotel) that survive coordinate de-duplication even
// when identical to each other.
func RouteLoop(places []domain.Place, network *domain.RoadNetwork) RouteResult {
	return routePlaces(places, network, true)
}

func routePlaces(places []domain.Place, network *domain.RoadNetwork, anchorLoop bool) RouteResult {
	places = DeduplicatePlaces(places, anchorLoop)
	if len(places) < 2 {
		return RouteResult{}
	}

	result := RouteResult{Legs: make([]domain.RouteLeg, 0, len(places)-1)}

	for i := 0; i < len(places)-1; i++ {
		leg := routeLeg(places[i], places[i+1], network)
		result.Legs = append(result.Legs, leg)

		// Drop a duplicated junction vertex where consecutive legs meet.
		coords := leg.Coordinates
		if len(result.Polyline) > 0 && len(coords) > 0 &&
			result.Polyline[len(result.Polyline)-1] == coords[0] {
			coords = coords[1:]
		}
		result.Polyline = append(result.Polyline, coords...)
	}

	return result
}

// DeduplicatePlaces removes places whose coordinates collide at 5-decimal
// precision, preserving order. With anchorLoop set, the first and last
// entries are always kept so a hotel loop can start and end at the same
// point. Unresolved places are dropped. Already-deduplicated input passes
// through unchanged.
func DeduplicatePlaces(places []domain.Place, anchorLoop bool) []domain.Place {
	seen := make(map[string]struct{}, len(places))
	out := make([]domain.Place, 0, len(places))

	for i, p := range places {
		if !p.Resolved() {
			continue
		}
		isAnchor := anchorLoop && (i == 0 || i == len(places)-1)
		key := p.Coords.Key()
		if _, dup := seen[key]; dup && !isAnchor {
			log.Printf("duplicate coordinates, skipping place name=%q", p.Name)
			continue
		}
		seen[key] = struct{}{}
		out = append(out, p)
	}
	return out
}

func routeLeg(from, to domain.Place, network *domain.RoadNetwork) domain.RouteLeg {
	leg := domain.RouteLeg{FromName: from.Name, ToName: to.Name}

	fallback := func() domain.RouteLeg {
		leg.Coordinates = []domain.Coordinates{*from.Coords, *to.Coords}
		leg.Path = nil
		leg.UsedFallback = true
		return leg
	}

	if network == nil || network.NodeCount() == 0 {
		return fallback()
	}

	origin, okO := nearestNode(network, *from.Coords)
	dest, okD := nearestNode(network, *to.Coords)
	if !okO || !okD {
		return fallback()
	}

	path := shortestPath(network, origin, dest)
	if len(path) == 0 {
		log.Printf("no network path leg=%q->%q, using direct segment", from.Name, to.Name)
		return fallback()
	}

	leg.Path = path
	leg.Coordinates = make([]domain.Coordinates, 0, len(path))
	for _, id := range path {
		leg.Coordinates = append(leg.Coordinates, network.Nodes[id].Coords())
	}
	return leg
}

// nearestNode linearly scans node coordinates for the closest match.
func nearestNode(network *domain.RoadNetwork, c domain.Coordinates) (int64, bool) {
	var bestID int64
	best := math.MaxFloat64
	found := false
	for id, n := range network.Nodes {
		d := domain.HaversineMeters(c, n.Coords())
		if d < best {
			best = d
			bestID = id
			found = true
		}
	}
	return bestID, found
}

type pqItem struct {
	node int64
	dist float64
}

type pq []pqItem

func (p pq) Len() int           { return len(p) }
func (p pq) Less(i, j int) bool { return p[i].dist < p[j].dist }
func (p pq) Swap(i, j int)      { p[i], p[j] = p[j], p[i] }
func (p *pq) Push(x any)        { *p = append(*p, x.(pqItem)) }

func (p *pq) Pop() any {
	old := *p
	n := len(old)
	item := old[n-1]
	*p = old[:n-1]
	return item
}

// shortestPath runs Dijkstra over edge lengths in meters and returns the
// node sequence from src to dst, or nil when dst is unreachable.
func shortestPath(network *domain.RoadNetwork, src, dst int64) []int64 {
	if src == dst {
		return []int64{src}
	}

	dist := map[int64]float64{src: 0}
	prev := map[int64]int64{}
	done := map[int64]bool{}

	queue := &pq{}
	heap.Push(queue, pqItem{node: src, dist: 0})

	for queue.Len() > 0 {
		cur := heap.Pop(queue).(pqItem)
		u := cur.node
		if done[u] {
			continue
		}
		done[u] = true

		if u == dst {
			break
		}

		for _, e := range network.Outgoing[u] {
			nd := dist[u] + e.LengthMeters
			old, found := dist[e.To]
			if !found || nd < old {
				dist[e.To] = nd
				prev[e.To] = u
				heap.Push(queue, pqItem{node: e.To, dist: nd})
			}
		}
	}

	if !done[dst] {
		return nil
	}

	path := []int64{}
	for cur := dst; cur != src; cur = prev[cur] {
		path = append(path, cur)
	}
	path = append(path, src)

	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
