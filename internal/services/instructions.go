package services

import (
	"fmt"

	"trip-route-service/internal/domain"
)

// Edges shorter than this with no road name are dropped from the
// instruction list; they are connector stubs, not streets anyone follows.
const minUnnamedEdgeMeters = 50

// instruction accumulates merged edges on the same road so the rendered
// distance can be rewritten in place instead of appending duplicate lines.
type instruction struct {
	roadName  string
	named     bool
	direction string
	meters    float64
	direct    bool
	target    string
}

func (in instruction) render() string {
	if in.direct {
		return fmt.Sprintf("Head directly to %s for %d m", in.target, int(in.meters))
	}
	if in.named {
		return fmt.Sprintf("Go %s on %s for %d m", in.direction, in.roadName, int(in.meters))
	}
	return fmt.Sprintf("%s – %d m", in.roadName, int(in.meters))
}

// SynthesizeInstructions walks the node-by-node paths of a day's legs and
// emits merged, human-readable turn instructions. Consecutive edges on the
// same road collapse into one line with their lengths summed. The list is
// bracketed with "Start at"/"Arrive at" lines only when at least one turn
// instruction was produced.
func SynthesizeInstructions(network *domain.RoadNetwork, legs []domain.RouteLeg) []string {
	if len(legs) == 0 {
		return []string{}
	}

	merged := []instruction{}

	appendOrMerge := func(next instruction) {
		if len(merged) > 0 {
			last := &merged[len(merged)-1]
			if !last.direct && !next.direct && last.roadName == next.roadName {
				last.meters += next.meters
				return
			}
		}
		merged = append(merged, next)
	}

	for _, leg := range legs {
		if leg.UsedFallback {
			if len(leg.Coordinates) == 2 {
				appendOrMerge(instruction{
					direct: true,
					target: leg.ToName,
					meters: domain.HaversineMeters(leg.Coordinates[0], leg.Coordinates[1]),
				})
			}
			continue
		}

		for i := 0; i < len(leg.Path)-1; i++ {
			edge, ok := network.EdgeBetween(leg.Path[i], leg.Path[i+1])
			if !ok {
				continue
			}
			if !edge.Name.Named() && edge.LengthMeters < minUnnamedEdgeMeters {
				continue
			}

			appendOrMerge(instruction{
				roadName:  edge.Name.Display(),
				named:     edge.Name.Named(),
				direction: cardinalDirection(network.Nodes[edge.From], network.Nodes[edge.To]),
				meters:    edge.LengthMeters,
			})
		}
	}

	if len(merged) == 0 {
		return []string{}
	}

	out := make([]string, 0, len(merged)+2)
	out = append(out, "Start at "+legs[0].FromName)
	for _, in := range merged {
		out = append(out, in.render())
	}
	out = append(out, "Arrive at "+legs[len(legs)-1].ToName)
	return out
}

// cardinalDirection picks north/south or east/west by whichever coordinate
// delta dominates, signed by direction of travel.
func cardinalDirection(from, to domain.Node) string {
	dLat := to.Lat - from.Lat
	dLng := to.Lng - from.Lng

	if abs(dLat) > abs(dLng) {
		if dLat > 0 {
			return "north"
		}
		return "south"
	}
	if dLng > 0 {
		return "east"
	}
	return "west"
}
