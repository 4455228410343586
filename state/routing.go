package state

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"
)

// Addr uniquely identifies a node. Addresses are opaque: they carry no
// structure, locality or ordering semantics.
type Addr string

// Port is a local link identifier. Ports are only meaningful to the node
// that owns them; two nodes may refer to the same link by different ports.
type Port uint16

// NoPort marks the absence of a port, e.g. for the self route.
const NoPort = ^Port(0)

// Cost is a route metric. Costs saturate at Infinity, which means unreachable.
type Cost uint16

// UnmarshalJSON rejects negative costs and clamps anything above Infinity
// down to Infinity, so oversized costs from the wire cannot leak past the
// sentinel.
func (c *Cost) UnmarshalJSON(data []byte) error {
	var v int64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if v < 0 {
		return fmt.Errorf("cost must not be negative, got %d", v)
	}
	if v > int64(Infinity) {
		v = int64(Infinity)
	}
	*c = Cost(v)
	return nil
}

// Vector is a distance vector as advertised between neighbours.
type Vector map[Addr]Cost

// Link is a direct connection to a neighbour, keyed by the local port.
type Link struct {
	Neighbour Addr
	Cost      Cost
}

// DistEntry is one row of the distance table. Via is NoPort exactly when the
// entry is the self route or the destination is unreachable.
type DistEntry struct {
	Cost Cost
	Via  Port
}

// Routed reports whether the entry points out of a real port.
func (e DistEntry) Routed() bool {
	return e.Via != NoPort
}

// RouterState holds everything a node knows about the network. It must only
// be accessed from the owning node's dispatch goroutine.
type RouterState struct {
	Id Addr
	// DV maps every known destination to its current best cost and egress port.
	DV    map[Addr]DistEntry
	Links map[Port]Link
	// Cache holds the last vector received from each neighbour, verbatim.
	Cache map[Addr]Vector
	// Forward mirrors DV: dest is present exactly when DV[dest].Routed().
	Forward       map[Addr]Port
	LastBroadcast time.Time
}

func NewRouterState(id Addr) *RouterState {
	rs := &RouterState{
		Id:      id,
		DV:      make(map[Addr]DistEntry),
		Links:   make(map[Port]Link),
		Cache:   make(map[Addr]Vector),
		Forward: make(map[Addr]Port),
	}
	rs.DV[id] = DistEntry{Cost: 0, Via: NoPort}
	return rs
}

// SetRoute updates the distance table and the forwarding table in the same
// step, so readers never observe one without the other.
func (rs *RouterState) SetRoute(dest Addr, cost Cost, via Port) {
	rs.DV[dest] = DistEntry{Cost: cost, Via: via}
	rs.Forward[dest] = via
}

// ClearRoute marks dest unreachable and drops it from the forwarding table.
// The distance entry is kept so the retraction can still be advertised.
func (rs *RouterState) ClearRoute(dest Addr) {
	rs.DV[dest] = DistEntry{Cost: Infinity, Via: NoPort}
	delete(rs.Forward, dest)
}

// SortedPorts returns the active ports in ascending order.
func (rs *RouterState) SortedPorts() []Port {
	return slices.Sorted(maps.Keys(rs.Links))
}

// SortedDests returns every known destination in ascending order.
func (rs *RouterState) SortedDests() []Addr {
	return slices.Sorted(maps.Keys(rs.DV))
}

// NextHop returns the egress port for dest, or NoPort when there is none.
func (rs *RouterState) NextHop(dest Addr) Port {
	port, ok := rs.Forward[dest]
	if !ok {
		return NoPort
	}
	return port
}

// Snapshot deep-copies the distance and forwarding tables for readers outside
// the dispatch goroutine.
func (rs *RouterState) Snapshot() (map[Addr]DistEntry, map[Addr]Port) {
	return maps.Clone(rs.DV), maps.Clone(rs.Forward)
}

// StringRoutes renders the distance table, one destination per line in
// ascending address order.
func (rs *RouterState) StringRoutes() string {
	out := make([]string, 0)
	for _, dest := range rs.SortedDests() {
		entry := rs.DV[dest]
		switch {
		case dest == rs.Id:
			out = append(out, fmt.Sprintf("%s cost 0 (self)", dest))
		case !entry.Routed():
			out = append(out, fmt.Sprintf("%s unreachable", dest))
		default:
			out = append(out, fmt.Sprintf("%s cost %d via port %d", dest, entry.Cost, entry.Via))
		}
	}
	return strings.Join(out, "\n")
}
