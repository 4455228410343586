//go:build integration

package integration

import (
	"testing"
	"time"

	"github.com/feltnet/felt/mock"
	"github.com/feltnet/felt/sim"
	"github.com/feltnet/felt/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestLinkDownFailover(t *testing.T) {
	defer goleak.VerifyNone(t)
	cfg := mock.MockCfg()
	oracle, err := sim.NewOracle(cfg)
	require.NoError(t, err)

	n, _ := startNetwork(t, cfg)
	assert.Eventually(t, func() bool { return converged(n, oracle) },
		15*time.Second, 100*time.Millisecond, "mesh never converged")

	n.ApplyEvent(state.EventCfg{Op: "down", A: "bob", B: "kat"})
	repriced, err := sim.NewOracle(cfg, state.MakeSortedPair[state.Addr]("bob", "kat"))
	require.NoError(t, err)
	assert.Eventually(t, func() bool { return converged(n, repriced) },
		15*time.Second, 100*time.Millisecond, "mesh never recovered from the outage")

	// bob now reaches ada around the cut
	res := n.Tracer.Trace("bob", "ada")
	assert.True(t, res.Ok)
	assert.Equal(t, []state.Addr{"bob", "jeb", "kat", "ada"}, res.Hops)
	n.Stop()
}

func TestScheduledOutage(t *testing.T) {
	defer goleak.VerifyNone(t)
	cfg := mock.MockCfg()
	cfg.Events = []state.EventCfg{
		{At: 500 * time.Millisecond, Op: "down", A: "kat", B: "ada"},
	}
	repriced, err := sim.NewOracle(cfg, state.MakeSortedPair[state.Addr]("kat", "ada"))
	require.NoError(t, err)

	n, _ := startNetwork(t, cfg)
	assert.Eventually(t, func() bool { return converged(n, repriced) },
		15*time.Second, 100*time.Millisecond, "mesh never settled after the scheduled outage")
	n.Stop()
}

func TestLinkReprice(t *testing.T) {
	defer goleak.VerifyNone(t)
	cfg := mock.MockCfg()
	oracle, err := sim.NewOracle(cfg)
	require.NoError(t, err)

	n, _ := startNetwork(t, cfg)
	assert.Eventually(t, func() bool { return converged(n, oracle) },
		15*time.Second, 100*time.Millisecond, "mesh never converged")

	// bob~kat becomes expensive enough that bob detours through jeb
	n.ApplyEvent(state.EventCfg{Op: "cost", A: "bob", B: "kat", Cost: 10})
	setCost(&cfg, "bob", "kat", 10)
	repriced, err := sim.NewOracle(cfg)
	require.NoError(t, err)
	assert.Eventually(t, func() bool { return converged(n, repriced) },
		15*time.Second, 100*time.Millisecond, "mesh never settled on the repriced link")

	res := n.Tracer.Trace("bob", "kat")
	assert.True(t, res.Ok)
	assert.Equal(t, []state.Addr{"bob", "jeb", "kat"}, res.Hops)
	n.Stop()
}
