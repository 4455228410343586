package sim

import (
	"slices"

	"github.com/feltnet/felt/state"
	"github.com/katalvlaran/lvlath/core"
	"github.com/katalvlaran/lvlath/dijkstra"
)

// Oracle knows the true shortest-path costs of a topology, computed
// independently of the routing protocol.
type Oracle struct {
	costs map[state.Addr]map[state.Addr]state.Cost
}

// NewOracle computes all-pairs shortest costs for the configured topology,
// minus any links listed in without. Costs at or past Infinity count as
// unreachable, matching the protocol's horizon.
func NewOracle(cfg state.CentralCfg, without ...state.Pair[state.Addr, state.Addr]) (*Oracle, error) {
	excluded := make([]state.Pair[state.Addr, state.Addr], 0, len(without))
	for _, p := range without {
		excluded = append(excluded, state.MakeSortedPair(p.V1, p.V2))
	}
	g, err := core.NewGraph(core.WithWeighted())
	if err != nil {
		return nil, err
	}
	for _, nc := range cfg.Nodes {
		g.AddVertex(string(nc.Id))
	}
	for _, lc := range cfg.Links {
		if slices.Contains(excluded, state.MakeSortedPair(lc.A, lc.B)) {
			continue
		}
		g.AddEdge(string(lc.A), string(lc.B), float64(lc.Cost))
	}

	o := &Oracle{costs: make(map[state.Addr]map[state.Addr]state.Cost, len(cfg.Nodes))}
	for _, nc := range cfg.Nodes {
		dist, err := dijkstra.Distances(g, string(nc.Id))
		if err != nil {
			return nil, err
		}
		row := make(map[state.Addr]state.Cost, len(cfg.Nodes))
		for _, other := range cfg.Nodes {
			d, ok := dist[string(other.Id)]
			if !ok || d >= float64(state.Infinity) {
				row[other.Id] = state.Infinity
			} else {
				row[other.Id] = state.Cost(d)
			}
		}
		o.costs[nc.Id] = row
	}
	return o, nil
}

// Cost returns the true cost between two nodes, Infinity when unreachable.
func (o *Oracle) Cost(from, to state.Addr) state.Cost {
	return o.costs[from][to]
}
