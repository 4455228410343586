//go:build integration

package integration

import (
	"log/slog"
	"testing"

	"github.com/feltnet/felt/core"
	"github.com/feltnet/felt/sim"
	"github.com/feltnet/felt/state"
)

// startNetwork builds and starts cfg, failing the test if any node refuses to
// come up.
func startNetwork(t *testing.T, cfg state.CentralCfg) (*sim.Network, chan error) {
	t.Helper()
	n := sim.NewNetwork(cfg, slog.LevelInfo)
	errs := n.Start()
	select {
	case err := <-errs:
		t.Fatal(err)
	default:
	}
	return n, errs
}

// converged reports whether every node's distance vector matches the oracle.
func converged(n *sim.Network, oracle *sim.Oracle) bool {
	for _, nc := range n.Central.Nodes {
		s := n.State(nc.Id)
		if s == nil || !s.Started.Load() {
			return false
		}
		tabs, err := core.SnapshotTables(s)
		if err != nil {
			return false
		}
		for _, other := range n.Central.Nodes {
			if other.Id == nc.Id {
				continue
			}
			want := oracle.Cost(nc.Id, other.Id)
			entry, ok := tabs.DV[other.Id]
			if want >= state.Infinity {
				if ok && entry.Cost < state.Infinity {
					return false
				}
				continue
			}
			if !ok || entry.Cost != want {
				return false
			}
		}
	}
	return true
}

// setCost reprices a configured link, so a fresh oracle reflects the change.
func setCost(cfg *state.CentralCfg, a, b state.Addr, cost state.Cost) {
	for i, l := range cfg.Links {
		if l.A == a && l.B == b || l.A == b && l.B == a {
			cfg.Links[i].Cost = cost
			return
		}
	}
	panic("no link between " + string(a) + " and " + string(b))
}
