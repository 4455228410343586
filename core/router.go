package core

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/feltnet/felt/perf"
	"github.com/feltnet/felt/protocol"
	"github.com/feltnet/felt/state"
)

// Dataplane moves frames out of local ports. Implementations must not block
// the dispatch goroutine.
type Dataplane interface {
	Send(port state.Port, pkt *protocol.Packet)
}

// FeltRouter runs the distance-vector protocol for one node. All state is
// owned by the node's dispatch goroutine.
type FeltRouter struct {
	*state.State
	dp Dataplane
}

func (r *FeltRouter) Init(s *state.State) error {
	s.Log.Debug("init router")
	r.State = s
	dp, ok := s.AuxConfig["dataplane"].(Dataplane)
	if !ok {
		return errors.New("no dataplane configured")
	}
	r.dp = dp
	s.RouterState = state.NewRouterState(s.Id)

	s.Env.RepeatTask(routerTick, state.TickInterval)
	if state.DBG_log_route_table {
		s.Env.RepeatTask(func(s *state.State) error {
			s.Log.Info("tables\n" + Get[*FeltRouter](s).Inspect())
			return nil
		}, state.TableDumpDelay)
	}
	return nil
}

func (r *FeltRouter) Cleanup(s *state.State) error {
	r.State = nil
	r.dp = nil
	return nil
}

func (r *FeltRouter) SendVector(port state.Port, v state.Vector) {
	link, ok := r.RouterState.Links[port]
	if !ok {
		return
	}
	pkt, err := protocol.NewVector(r.RouterState.Id, link.Neighbour, v)
	if err != nil {
		r.Env.Log.Error("failed to encode vector", "error", err)
		return
	}
	r.dp.Send(port, pkt)
	perf.VectorsSent.Add(1)
}

func (r *FeltRouter) Log(event RouterEvent, desc string, args ...any) {
	msg := fmt.Sprintf("%s %s", event.String(), desc)
	switch {
	case event >= UnknownPort:
		r.Env.Log.Warn(msg, args...)
	case state.DBG_log_router:
		r.Env.Log.Info(msg, args...)
	default:
		r.Env.Log.Debug(msg, args...)
	}
	if event < UnknownPort {
		Get[*FeltTrace](r.State).Notify(RouteNotice{Node: r.RouterState.Id, Event: event})
	}
}

func routerTick(s *state.State) error {
	r := Get[*FeltRouter](s)
	HandleTick(s.RouterState, r, time.Now(), s.Heartbeat)
	return nil
}

// LinkUp attaches a neighbour on port. Also used when a link changes cost,
// since the link record is simply overwritten.
func LinkUp(s *state.State, port state.Port, neighbour state.Addr, cost state.Cost) error {
	r := Get[*FeltRouter](s)
	HandleLinkUp(s.RouterState, r, port, neighbour, cost)
	return nil
}

// LinkDown detaches whatever neighbour was on port.
func LinkDown(s *state.State, port state.Port) error {
	r := Get[*FeltRouter](s)
	HandleLinkDown(s.RouterState, r, port)
	return nil
}

// HandleFrame is the entry point for every frame delivered to this node.
func HandleFrame(s *state.State, port state.Port, pkt *protocol.Packet) error {
	r := Get[*FeltRouter](s)
	switch pkt.Kind {
	case protocol.KindVector:
		return routerHandleVector(s, r, port, pkt)
	case protocol.KindTraffic:
		return routerHandleTraffic(s, r, pkt)
	default:
		s.Log.Warn("frame with unknown kind", "kind", pkt.Kind, "from", pkt.Src)
	}
	return nil
}

func routerHandleVector(s *state.State, r *FeltRouter, port state.Port, pkt *protocol.Packet) error {
	v, err := pkt.Vector()
	if err != nil {
		r.Log(MalformedVector, "dropping unparseable vector", "from", pkt.Src, "error", err)
		perf.MalformedFrames.Add(1)
		return nil
	}
	HandleUpdate(s.RouterState, r, port, pkt.Src, v)
	return nil
}

// routerHandleTraffic forwards transit traffic. Frames addressed to this node
// never reach the router; the network resolves them on arrival.
func routerHandleTraffic(s *state.State, r *FeltRouter, pkt *protocol.Packet) error {
	rs := s.RouterState
	if len(pkt.Hops) >= state.MaxHops {
		s.Log.Warn("traffic exceeded hop limit, dropping", "dst", pkt.Dst, "hops", len(pkt.Hops))
		perf.TrafficDropped.Add(1)
		return nil
	}
	out, ok := rs.Forward[pkt.Dst]
	if !ok {
		s.Log.Debug("no route for traffic, dropping", "dst", pkt.Dst)
		perf.TrafficDropped.Add(1)
		return nil
	}
	pkt.Hops = append(pkt.Hops, rs.Id)
	r.dp.Send(out, pkt)
	perf.TrafficForwarded.Add(1)
	return nil
}

// Inspect renders the node's tables, destination-sorted.
func (r *FeltRouter) Inspect() string {
	rs := r.RouterState
	sb := strings.Builder{}

	sb.WriteString("Links:\n")
	rows := make([]string, 0)
	for _, port := range rs.SortedPorts() {
		link := rs.Links[port]
		rows = append(rows, fmt.Sprintf(" - port %d -> %s cost %d", port, link.Neighbour, link.Cost))
	}
	if len(rows) == 0 {
		rows = append(rows, " (none)")
	}
	sb.WriteString(strings.Join(rows, "\n") + "\n")

	sb.WriteString("\nDistance Vector:\n")
	rows = rows[:0]
	for _, dest := range rs.SortedDests() {
		entry := rs.DV[dest]
		switch {
		case dest == rs.Id:
			rows = append(rows, fmt.Sprintf(" - %s cost 0 (self)", dest))
		case !entry.Routed():
			rows = append(rows, fmt.Sprintf(" - %s unreachable", dest))
		default:
			rows = append(rows, fmt.Sprintf(" - %s cost %d via port %d", dest, entry.Cost, entry.Via))
		}
	}
	sb.WriteString(strings.Join(rows, "\n") + "\n")

	sb.WriteString("\nForwarding Table:\n")
	rows = rows[:0]
	for _, dest := range rs.SortedDests() {
		if port, ok := rs.Forward[dest]; ok {
			rows = append(rows, fmt.Sprintf(" - %s -> port %d", dest, port))
		}
	}
	if len(rows) == 0 {
		rows = append(rows, " (none)")
	}
	sb.WriteString(strings.Join(rows, "\n") + "\n")
	return sb.String()
}

// Tables is a point-in-time copy of a node's distance and forwarding tables.
type Tables struct {
	DV      map[state.Addr]state.DistEntry
	Forward map[state.Addr]state.Port
}

// SnapshotTables copies the node's tables from outside the dispatch goroutine.
func SnapshotTables(s *state.State) (Tables, error) {
	res, err := s.DispatchWait(func(st *state.State) (any, error) {
		dv, fwd := st.RouterState.Snapshot()
		return Tables{DV: dv, Forward: fwd}, nil
	})
	if err != nil {
		return Tables{}, err
	}
	return res.(Tables), nil
}

// InspectNode renders the node's tables from outside the dispatch goroutine.
func InspectNode(s *state.State) (string, error) {
	res, err := s.DispatchWait(func(st *state.State) (any, error) {
		return Get[*FeltRouter](st).Inspect(), nil
	})
	if err != nil {
		return "", err
	}
	return res.(string), nil
}
