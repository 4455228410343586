package sim

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"os"
	"runtime/pprof"
	"slices"
	"sync"
	"time"

	"github.com/encodeous/tint"
	"github.com/feltnet/felt/core"
	"github.com/feltnet/felt/perf"
	"github.com/feltnet/felt/protocol"
	"github.com/feltnet/felt/state"
)

// VirtualLink joins two node ports. Cost is what the routers see; latency,
// jitter and loss only shape frame delivery.
type VirtualLink struct {
	A, B         state.Addr
	APort, BPort state.Port
	Latency      time.Duration
	Jitter       time.Duration
	Loss         float64

	mu   sync.Mutex
	up   bool
	cost state.Cost
}

func (l *VirtualLink) set(up bool, cost state.Cost) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.up = up
	l.cost = cost
}

func (l *VirtualLink) isUp() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.up
}

func (l *VirtualLink) otherEnd(from state.Addr) (state.Addr, state.Port) {
	if from == l.A {
		return l.B, l.BPort
	}
	return l.A, l.APort
}

// portOf returns the local port of the link at the given endpoint.
func (l *VirtualLink) portOf(node state.Addr) state.Port {
	if node == l.A {
		return l.APort
	}
	return l.BPort
}

func (l *VirtualLink) simulate(n *Network, from state.Addr, pkt *protocol.Packet) {
	if rand.Float64() < l.Loss {
		perf.FramesLost.Add(1)
		return
	}
	if l.Latency != 0 {
		simJitter := rand.Float64() * float64(l.Jitter.Nanoseconds())
		simLat := l.Latency + time.Duration(simJitter)
		go func() { // this is quite costly, but should be fine as long as we don't send frames too fast
			select {
			case <-n.Context.Done():
				return
			case <-time.After(simLat):
				n.deliver(from, l, pkt)
			}
		}()
	} else {
		n.deliver(from, l, pkt)
	}
}

// Network hosts every simulated node in one process and carries all frames
// between them. Topology wiring is fixed at build time; links only flip state.
type Network struct {
	Central state.CentralCfg
	Context context.Context
	Cancel  context.CancelCauseFunc
	Log     *slog.Logger
	States  []*state.State
	Links   []*VirtualLink
	Tracer  *Tracer

	level  slog.Level
	wires  map[state.Addr]map[state.Port]*VirtualLink
	timers []*time.Timer
}

// NewNetwork wires the topology without starting anything. Ports are assigned
// sequentially per node, following the order links appear in the config.
func NewNetwork(cfg state.CentralCfg, level slog.Level) *Network {
	n := &Network{
		Central: cfg,
		Log: slog.New(tint.NewHandler(os.Stderr, &tint.Options{
			Level:        level,
			CustomPrefix: "net",
			ReplaceAttr: func(groups []string, attr slog.Attr) slog.Attr {
				if attr.Key == "time" {
					return slog.Attr{}
				}
				return attr
			},
		})),
		level: level,
		wires: make(map[state.Addr]map[state.Port]*VirtualLink),
	}
	for _, nc := range cfg.Nodes {
		n.wires[nc.Id] = make(map[state.Port]*VirtualLink)
	}
	nextPort := make(map[state.Addr]state.Port)
	for _, lc := range cfg.Links {
		l := &VirtualLink{
			A:       lc.A,
			B:       lc.B,
			APort:   nextPort[lc.A],
			BPort:   nextPort[lc.B],
			Latency: lc.Latency,
			Jitter:  lc.Jitter,
			Loss:    lc.Loss,
			cost:    lc.Cost,
		}
		nextPort[lc.A]++
		nextPort[lc.B]++
		n.wires[lc.A][l.APort] = l
		n.wires[lc.B][l.BPort] = l
		n.Links = append(n.Links, l)
	}
	return n
}

func (n *Network) IndexOf(id state.Addr) int {
	return slices.IndexFunc(n.Central.Nodes, func(cfg state.NodeCfg) bool {
		return cfg.Id == id
	})
}

// State returns the runtime of a node, or nil before it has launched.
func (n *Network) State(id state.Addr) *state.State {
	idx := n.IndexOf(id)
	if idx == -1 {
		return nil
	}
	return n.States[idx]
}

// FindWire returns the link between a and b, in either direction.
func (n *Network) FindWire(a, b state.Addr) *VirtualLink {
	for _, l := range n.Links {
		if l.A == a && l.B == b || l.A == b && l.B == a {
			return l
		}
	}
	return nil
}

// Start launches one runtime per node, waits for all of them to come up,
// brings up the configured links and arms the scheduled events. Errors from
// node runtimes arrive on the returned channel.
func (n *Network) Start() chan error {
	ctx, cancel := context.WithCancelCause(context.Background())
	n.Context = ctx
	n.Cancel = cancel
	n.States = make([]*state.State, len(n.Central.Nodes))
	errChan := make(chan error, 128) // a large number so we dont get blocked
	n.Tracer = NewTracer(n)

	for idx, nc := range n.Central.Nodes {
		lcfg := n.Central.LocalFor(nc.Id)
		go func() {
			labels := pprof.Labels("felt node", string(nc.Id))
			pprof.Do(context.Background(), labels, func(_ context.Context) {
				cErr := core.Start(lcfg, n.level, map[string]any{
					"dataplane": &nodePlane{net: n, node: nc.Id},
				}, &n.States[idx])
				if cErr != nil {
					errChan <- cErr
				}
			})
		}()
	}

	// wait for all nodes to start
	for {
		started := true
		for idx := range n.Central.Nodes {
			if n.States[idx] == nil || !n.States[idx].Started.Load() {
				started = false
				break
			}
		}
		if started {
			break
		}
		select {
		case <-ctx.Done():
			return errChan
		case <-time.After(time.Millisecond * 50):
		case err := <-errChan:
			errChan <- err
			return errChan
		}
	}

	for i, l := range n.Links {
		n.applyUp(l, n.Central.Links[i].Cost)
	}
	n.armScenario()
	n.Log.Debug("network up", "nodes", len(n.States), "links", len(n.Links))
	return errChan
}

func (n *Network) Stop() {
	n.Cancel(errors.New("stopping network"))
	for _, t := range n.timers {
		t.Stop()
	}
	if n.Tracer != nil {
		n.Tracer.Stop()
	}
	for _, s := range n.States {
		if s != nil {
			core.Stop(s)
		}
	}
}

func (n *Network) dispatchTo(id state.Addr, fun func(*state.State) error) {
	if s := n.State(id); s != nil {
		s.Dispatch(fun)
	}
}

func (n *Network) applyUp(l *VirtualLink, cost state.Cost) {
	l.set(true, cost)
	n.dispatchTo(l.A, func(s *state.State) error { return core.LinkUp(s, l.APort, l.B, cost) })
	n.dispatchTo(l.B, func(s *state.State) error { return core.LinkUp(s, l.BPort, l.A, cost) })
}

func (n *Network) applyDown(l *VirtualLink) {
	l.set(false, state.Infinity)
	n.dispatchTo(l.A, func(s *state.State) error { return core.LinkDown(s, l.APort) })
	n.dispatchTo(l.B, func(s *state.State) error { return core.LinkDown(s, l.BPort) })
}

// send carries a frame out of a node's port. Frames on a downed link are lost.
func (n *Network) send(from state.Addr, port state.Port, pkt *protocol.Packet) {
	perf.FramesSent.Add(1)
	l, ok := n.wires[from][port]
	if !ok {
		return
	}
	if !l.isUp() {
		perf.FramesLost.Add(1)
		return
	}
	l.simulate(n, from, pkt)
}

func (n *Network) deliver(from state.Addr, l *VirtualLink, pkt *protocol.Packet) {
	to, toPort := l.otherEnd(from)
	s := n.State(to)
	if s == nil || !s.Started.Load() {
		perf.FramesLost.Add(1)
		return
	}
	perf.FramesDelivered.Add(1)
	if pkt.Kind == protocol.KindTraffic && pkt.Dst == to {
		// traffic has arrived; it never enters the destination's router
		n.Tracer.resolve(pkt)
		return
	}
	s.Dispatch(func(st *state.State) error {
		return core.HandleFrame(st, toPort, pkt)
	})
}

// nodePlane adapts the shared network to the dataplane of one node.
type nodePlane struct {
	net  *Network
	node state.Addr
}

func (p *nodePlane) Send(port state.Port, pkt *protocol.Packet) {
	p.net.send(p.node, port, pkt)
}
