package sim

import (
	"context"
	"slices"
	"time"

	"github.com/dustin/go-broadcast"
	"github.com/feltnet/felt/core"
	"github.com/feltnet/felt/perf"
	"github.com/feltnet/felt/protocol"
	"github.com/feltnet/felt/state"
	"github.com/google/uuid"
	"github.com/jellydator/ttlcache/v3"
)

// TraceResult reports where a traffic probe travelled, or that it never
// arrived.
type TraceResult struct {
	Id      uuid.UUID
	From    state.Addr
	To      state.Addr
	Hops    []state.Addr // forwarding nodes in order, destination last
	Ok      bool
	Elapsed time.Duration
}

type pendingProbe struct {
	from    state.Addr
	to      state.Addr
	started time.Time
}

// Tracer launches traffic probes into the network and reports their fate on a
// broadcast bus. A probe that outlives ProbeTimeout is reported unreachable.
type Tracer struct {
	Bus broadcast.Broadcaster

	net     *Network
	pending *ttlcache.Cache[uuid.UUID, pendingProbe]
}

func NewTracer(n *Network) *Tracer {
	t := &Tracer{
		Bus: broadcast.NewBroadcaster(1024),
		net: n,
		pending: ttlcache.New[uuid.UUID, pendingProbe](
			ttlcache.WithTTL[uuid.UUID, pendingProbe](state.ProbeTimeout),
			ttlcache.WithDisableTouchOnHit[uuid.UUID, pendingProbe](),
		),
	}
	t.pending.OnEviction(func(_ context.Context, reason ttlcache.EvictionReason, item *ttlcache.Item[uuid.UUID, pendingProbe]) {
		if reason != ttlcache.EvictionReasonExpired {
			return
		}
		p := item.Value()
		perf.ProbesExpired.Add(1)
		t.Bus.TrySubmit(TraceResult{Id: item.Key(), From: p.from, To: p.to, Ok: false})
	})
	go t.pending.Start()
	return t
}

func (t *Tracer) Stop() {
	t.pending.Stop()
	t.Bus.Close()
}

// Launch injects one probe at from, addressed to to. The result arrives on Bus.
func (t *Tracer) Launch(from, to state.Addr) uuid.UUID {
	pkt := protocol.NewProbe(from, to)
	t.pending.Set(pkt.ID, pendingProbe{from: from, to: to, started: time.Now()}, ttlcache.DefaultTTL)
	perf.ProbesLaunched.Add(1)
	if from == to {
		t.resolve(pkt)
		return pkt.ID
	}
	t.net.dispatchTo(from, func(s *state.State) error {
		return core.HandleFrame(s, state.NoPort, pkt)
	})
	return pkt.ID
}

func (t *Tracer) resolve(pkt *protocol.Packet) {
	item, ok := t.pending.GetAndDelete(pkt.ID)
	if !ok {
		return // already expired
	}
	p := item.Value()
	perf.ProbesCompleted.Add(1)
	t.Bus.TrySubmit(TraceResult{
		Id:      pkt.ID,
		From:    p.from,
		To:      p.to,
		Hops:    append(slices.Clone(pkt.Hops), pkt.Dst),
		Ok:      true,
		Elapsed: time.Since(p.started),
	})
}

// Trace launches a probe and blocks until its result or the probe timeout.
func (t *Tracer) Trace(from, to state.Addr) TraceResult {
	ch := make(chan any, 16)
	t.Bus.Register(ch)
	defer t.Bus.Unregister(ch)
	id := t.Launch(from, to)
	deadline := time.After(state.ProbeTimeout + time.Second)
	for {
		select {
		case v := <-ch:
			if res, ok := v.(TraceResult); ok && res.Id == id {
				return res
			}
		case <-deadline:
			return TraceResult{Id: id, From: from, To: to, Ok: false}
		case <-t.net.Context.Done():
			return TraceResult{Id: id, From: from, To: to, Ok: false}
		}
	}
}
