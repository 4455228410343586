package mock

import (
	"github.com/feltnet/felt/state"
)

// MockCfg returns a five node topology with one deliberately overpriced link,
// handy for tests and as a starter config.
func MockCfg() state.CentralCfg {
	names := []state.Addr{
		"bob",
		"jeb",
		"kat",
		"eve",
		"ada",
	}
	cfg := state.CentralCfg{}
	for _, node := range names {
		cfg.Nodes = append(cfg.Nodes, state.NodeCfg{Id: node})
	}
	weights := []state.Triple[state.Addr, state.Addr, state.Cost]{
		{V1: "bob", V2: "jeb", V3: 1},
		{V1: "bob", V2: "kat", V3: 1},
		{V1: "bob", V2: "eve", V3: 10},
		{V1: "jeb", V2: "kat", V3: 1},
		{V1: "kat", V2: "ada", V3: 1},
		{V1: "kat", V2: "eve", V3: 1},
		{V1: "eve", V2: "ada", V3: 2},
	}
	for _, w := range weights {
		cfg.Links = append(cfg.Links, state.LinkCfg{A: w.V1, B: w.V2, Cost: w.V3})
	}
	return cfg
}
