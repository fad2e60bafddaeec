package contingency

import (
	"sort"

	"github.com/wattline/gridrate/pkg/grid"
)

// DetectIslandedBuses finds buses with no path through active lines to any
// bus hosting a generator. The check is purely topological: a multi-source
// BFS seeded at every generator bus, ignoring real/reactive balance. A
// topology with zero generators reports every bus islanded. This never
// fails.
func DetectIslandedBuses(snap *grid.Snapshot) []IslandedBus {
	arena := snap.Arena()
	adj := snap.ActiveAdjacency()

	visited := make(map[string]bool, len(adj))
	var queue []string
	for _, b := range arena.GeneratorBuses() {
		if !visited[b] {
			visited[b] = true
			queue = append(queue, b)
		}
	}

	for len(queue) > 0 {
		bus := queue[0]
		queue = queue[1:]
		for _, nb := range adj[bus] {
			if !visited[nb] {
				visited[nb] = true
				queue = append(queue, nb)
			}
		}
	}

	var islanded []IslandedBus
	for _, id := range arena.BusIDs() {
		if visited[id] {
			continue
		}
		bus, _ := arena.Bus(id)
		islanded = append(islanded, IslandedBus{
			BusID:     bus.ID,
			Name:      bus.Name,
			VoltageKV: bus.VNomKV,
			X:         bus.X,
			Y:         bus.Y,
		})
	}
	sort.Slice(islanded, func(i, j int) bool { return islanded[i].BusID < islanded[j].BusID })
	return islanded
}
