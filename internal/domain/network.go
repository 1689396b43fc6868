package domain

import "strings"

// RoadName holds zero or more names attached to a road segment.
// Map data providers sometimes return a single name and sometimes a list;
// the variant is kept as-is and only flattened to a display string at the
// instruction-synthesis boundary.
type RoadName struct {
	Names []string `json:"names,omitempty"`
}

func SingleRoadName(name string) RoadName {
	name = strings.TrimSpace(name)
	if name == "" {
		return RoadName{}
	}
	return RoadName{Names: []string{name}}
}

func MultiRoadName(names []string) RoadName {
	kept := make([]string, 0, len(names))
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			kept = append(kept, n)
		}
	}
	return RoadName{Names: kept}
}

// Named reports whether the road carries at least one name.
func (r RoadName) Named() bool { return len(r.Names) > 0 }

// Display flattens the variant for human-readable output.
func (r RoadName) Display() string {
	if !r.Named() {
		return "Unnamed Road"
	}
	return strings.Join(r.Names, ", ")
}

// Node is a junction or way point in a road network.
type Node struct {
	ID  int64   `json:"id"`
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func (n Node) Coords() Coordinates { return Coordinates{Lat: n.Lat, Lng: n.Lng} }

// Edge is a directed drivable segment between two nodes.
type Edge struct {
	From         int64    `json:"from"`
	To           int64    `json:"to"`
	LengthMeters float64  `json:"length_meters"`
	Name         RoadName `json:"name"`
}

// RoadNetwork is the drivable road graph for one city.
// It is immutable once loaded; concurrent reads require no locking.
type RoadNetwork struct {
	Nodes    map[int64]Node
	Outgoing map[int64][]Edge
}

func NewRoadNetwork() *RoadNetwork {
	return &RoadNetwork{
		Nodes:    make(map[int64]Node),
		Outgoing: make(map[int64][]Edge),
	}
}

func (g *RoadNetwork) AddNode(n Node) { g.Nodes[n.ID] = n }

// AddEdge inserts a directed edge. Both endpoints must already exist.
func (g *RoadNetwork) AddEdge(e Edge) {
	if _, ok := g.Nodes[e.From]; !ok {
		return
	}
	if _, ok := g.Nodes[e.To]; !ok {
		return
	}
	g.Outgoing[e.From] = append(g.Outgoing[e.From], e)
}

func (g *RoadNetwork) NodeCount() int { return len(g.Nodes) }

func (g *RoadNetwork) EdgeCount() int {
	total := 0
	for _, edges := range g.Outgoing {
		total += len(edges)
	}
	return total
}

// EdgeBetween returns the shortest directed edge from u to v, if any.
// Parallel edges occur where a provider returns multiple ways joining the
// same pair of junctions.
func (g *RoadNetwork) EdgeBetween(u, v int64) (Edge, bool) {
	var best Edge
	found := false
	for _, e := range g.Outgoing[u] {
		if e.To != v {
			continue
		}
		if !found || e.LengthMeters < best.LengthMeters {
			best = e
			found = true
		}
	}
	return best, found
}

// LargestComponent reduces the graph to its largest strongly connected
// component, so any two retained nodes are mutually reachable. Routing
// failures are then limited to coordinates that snap outside the component.
func (g *RoadNetwork) LargestComponent() *RoadNetwork {
	if len(g.Nodes) == 0 {
		return NewRoadNetwork()
	}

	// Kosaraju: post-order over the graph, then assign components on the
	// transpose in reverse finishing order. Iterative to handle city-sized
	// graphs without blowing the stack.
	order := make([]int64, 0, len(g.Nodes))
	visited := make(map[int64]bool, len(g.Nodes))

	type frame struct {
		node int64
		next int
	}

	for id := range g.Nodes {
		if visited[id] {
			continue
		}
		stack := []frame{{node: id}}
		visited[id] = true
		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			edges := g.Outgoing[top.node]
			advanced := false
			for top.next < len(edges) {
				to := edges[top.next].To
				top.next++
				if !visited[to] {
					visited[to] = true
					stack = append(stack, frame{node: to})
					advanced = true
					break
				}
			}
			if !advanced && top.next >= len(edges) {
				order = append(order, top.node)
				stack = stack[:len(stack)-1]
			}
		}
	}

	incoming := make(map[int64][]int64, len(g.Nodes))
	for _, edges := range g.Outgoing {
		for _, e := range edges {
			incoming[e.To] = append(incoming[e.To], e.From)
		}
	}

	component := make(map[int64]int, len(g.Nodes))
	componentSize := make(map[int]int)
	current := 0
	for i := len(order) - 1; i >= 0; i-- {
		root := order[i]
		if _, ok := component[root]; ok {
			continue
		}
		current++
		stack := []int64{root}
		component[root] = current
		for len(stack) > 0 {
			u := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			componentSize[current]++
			for _, from := range incoming[u] {
				if _, ok := component[from]; !ok {
					component[from] = current
					stack = append(stack, from)
				}
			}
		}
	}

	largest, largestSize := 0, 0
	for id, size := range componentSize {
		if size > largestSize {
			largest, largestSize = id, size
		}
	}

	reduced := NewRoadNetwork()
	for id, n := range g.Nodes {
		if component[id] == largest {
			reduced.AddNode(n)
		}
	}
	for _, edges := range g.Outgoing {
		for _, e := range edges {
			if component[e.From] == largest && component[e.To] == largest {
				reduced.AddEdge(e)
			}
		}
	}
	return reduced
}
