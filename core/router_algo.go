package core

import (
	"maps"
	"slices"
	"time"

	"github.com/feltnet/felt/state"
)

type RouterEvent int

// trace events

const (
	RouteAdded RouterEvent = iota
	RouteImproved
	RouteChanged
	RouteInvalidated
	RouteRepaired
)

// warn events

const (
	UnknownPort RouterEvent = iota + 1000
	MalformedVector
	MismatchedSource
)

func (e RouterEvent) String() string {
	switch e {
	case RouteAdded:
		return "RouteAdded"
	case RouteImproved:
		return "RouteImproved"
	case RouteChanged:
		return "RouteChanged"
	case RouteInvalidated:
		return "RouteInvalidated"
	case RouteRepaired:
		return "RouteRepaired"
	case UnknownPort:
		return "UnknownPort"
	case MalformedVector:
		return "MalformedVector"
	case MismatchedSource:
		return "MismatchedSource"
	}
	return "UnknownEvent"
}

// Router is an interface that defines the underlying router operations
type Router interface {
	SendVector(port state.Port, v state.Vector)
	Log(event RouterEvent, desc string, args ...any)
}

// HandleUpdate merges a neighbour's advertised vector received on port. The
// vector is cached before anything else, then every advertised destination is
// relaxed against the current table. Returns true when the table changed, in
// which case a triggered broadcast has already been sent.
func HandleUpdate(rs *state.RouterState, r Router, port state.Port, src state.Addr, adv state.Vector) bool {
	rs.Cache[src] = adv

	link, ok := rs.Links[port]
	if !ok {
		r.Log(UnknownPort, "vector received on unknown port", "port", port, "from", src)
		return false
	}
	if link.Neighbour != src {
		r.Log(MismatchedSource, "vector source does not match link", "port", port, "from", src, "expected", link.Neighbour)
		return false
	}

	changed := false
	for _, dest := range slices.Sorted(maps.Keys(adv)) {
		cand := AddCost(link.Cost, adv[dest])
		cur, exists := rs.DV[dest]
		switch {
		case !exists || cand < cur.Cost:
			if cand >= state.Infinity {
				continue // never install an unreachable route
			}
			if !exists {
				r.Log(RouteAdded, "learned new destination", "dest", dest, "cost", cand, "port", port)
			} else {
				r.Log(RouteImproved, "found cheaper route", "dest", dest, "cost", cand, "port", port)
			}
			rs.SetRoute(dest, cand, port)
			changed = true
		case cur.Via == port && cand != cur.Cost:
			// our current route runs through this neighbour, so its word is final
			if cand >= state.Infinity {
				rs.ClearRoute(dest)
				r.Log(RouteInvalidated, "route withdrawn by next hop", "dest", dest, "port", port)
				if cost, alt, ok := recomputeBestRoute(rs, dest, port); ok {
					rs.SetRoute(dest, cost, alt)
					r.Log(RouteRepaired, "alternate route found", "dest", dest, "cost", cost, "port", alt)
				}
			} else {
				rs.SetRoute(dest, cand, port)
				r.Log(RouteChanged, "route cost moved", "dest", dest, "cost", cand, "port", port)
			}
			changed = true
		}
	}

	if changed {
		Broadcast(rs, r)
	}
	return changed
}

// recomputeBestRoute searches the remaining links and cached neighbour
// vectors for the cheapest finite path to dest, skipping excluded. Ports are
// scanned in ascending order and only strictly better candidates win, so the
// result is deterministic.
func recomputeBestRoute(rs *state.RouterState, dest state.Addr, excluded state.Port) (state.Cost, state.Port, bool) {
	best := state.Infinity
	bestPort := state.NoPort
	for _, port := range rs.SortedPorts() {
		if port == excluded {
			continue
		}
		link := rs.Links[port]
		if link.Neighbour == dest && link.Cost < best {
			best = link.Cost
			bestPort = port
		}
		if cached, ok := rs.Cache[link.Neighbour]; ok {
			if advCost, ok := cached[dest]; ok {
				cand := AddCost(link.Cost, advCost)
				if cand < best {
					best = cand
					bestPort = port
				}
			}
		}
	}
	return best, bestPort, bestPort != state.NoPort
}

// BuildAdvert renders the distance table as seen from port. The self entry is
// always 0, the neighbour's own address is pinned to the direct link cost,
// and routes that egress through port are poisoned to Infinity.
func BuildAdvert(rs *state.RouterState, port state.Port) state.Vector {
	link := rs.Links[port]
	adv := make(state.Vector, len(rs.DV))
	for dest, entry := range rs.DV {
		switch {
		case dest == rs.Id:
			adv[dest] = 0
		case dest == link.Neighbour:
			adv[dest] = link.Cost
		case entry.Via == port:
			adv[dest] = state.Infinity
		default:
			adv[dest] = entry.Cost
		}
	}
	return adv
}

// Broadcast advertises the table over every active link.
func Broadcast(rs *state.RouterState, r Router) {
	for _, port := range rs.SortedPorts() {
		r.SendVector(port, BuildAdvert(rs, port))
	}
}

// HandleLinkUp records the new link and installs the direct route when the
// destination is new or the link is strictly cheaper than the current route.
// The broadcast is unconditional so the new neighbour always learns our table.
func HandleLinkUp(rs *state.RouterState, r Router, port state.Port, neighbour state.Addr, cost state.Cost) {
	rs.Links[port] = state.Link{Neighbour: neighbour, Cost: cost}
	cur, exists := rs.DV[neighbour]
	if (!exists || cost < cur.Cost) && cost < state.Infinity {
		if !exists {
			r.Log(RouteAdded, "direct route to new neighbour", "dest", neighbour, "cost", cost, "port", port)
		} else {
			r.Log(RouteImproved, "direct link beats current route", "dest", neighbour, "cost", cost, "port", port)
		}
		rs.SetRoute(neighbour, cost, port)
	}
	Broadcast(rs, r)
}

// HandleLinkDown removes the link, forgets the neighbour's cached vector and
// invalidates every route that egressed through the port, repairing each from
// the remaining links where possible. Returns true when the table changed, in
// which case a triggered broadcast has already been sent.
func HandleLinkDown(rs *state.RouterState, r Router, port state.Port) bool {
	link, ok := rs.Links[port]
	if !ok {
		r.Log(UnknownPort, "link down on unknown port", "port", port)
		return false
	}
	delete(rs.Links, port)
	delete(rs.Cache, link.Neighbour)

	changed := false
	for _, dest := range rs.SortedDests() {
		if rs.DV[dest].Via != port {
			continue
		}
		rs.ClearRoute(dest)
		r.Log(RouteInvalidated, "link down severed route", "dest", dest, "port", port)
		changed = true
		if cost, alt, ok := recomputeBestRoute(rs, dest, state.NoPort); ok {
			rs.SetRoute(dest, cost, alt)
			r.Log(RouteRepaired, "alternate route found", "dest", dest, "cost", cost, "port", alt)
		}
	}

	if changed {
		Broadcast(rs, r)
	}
	return changed
}

// HandleTick refreshes neighbours with a periodic broadcast. Triggered
// broadcasts do not reset the heartbeat clock.
func HandleTick(rs *state.RouterState, r Router, now time.Time, heartbeat time.Duration) {
	if now.Sub(rs.LastBroadcast) >= heartbeat {
		rs.LastBroadcast = now
		Broadcast(rs, r)
	}
}
