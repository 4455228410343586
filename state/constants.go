package state

import "time"

// Infinity is the cost at which a destination counts as unreachable. Keeping
// it small bounds how long count-to-infinity episodes can last.
const Infinity Cost = 16

var (
	DefaultHeartbeat = time.Second * 1
	TickInterval     = time.Millisecond * 100
	TableDumpDelay   = time.Second * 2

	// ProbeTimeout is how long a traffic probe may stay unanswered before it
	// is reported unreachable.
	ProbeTimeout = time.Second * 3
	// MaxHops bounds frames caught in transient forwarding loops.
	MaxHops = 32

	// debug toggles, bound to CLI flags
	DBG_trace           = false
	DBG_debug           = false
	DBG_log_router      = false
	DBG_log_route_table = false
)
