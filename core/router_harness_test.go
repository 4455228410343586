package core

import (
	"fmt"
	"slices"
	"strings"
	"testing"

	"github.com/feltnet/felt/state"
	"github.com/google/go-cmp/cmp"
)

type HarnessEvent struct {
	Message string
	Args    []any
}

func MakeEvent(msg string, args ...any) HarnessEvent {
	return HarnessEvent{
		Message: msg,
		Args:    args,
	}
}

// RouterHarness records every outbound action of the routing functions, so
// tests can assert on exactly what a node would have put on the wire.
type RouterHarness struct {
	actions []HarnessEvent
}

func (h *RouterHarness) SendVector(port state.Port, v state.Vector) {
	h.actions = append(h.actions, MakeEvent("SEND_VECTOR", port, v))
}

func (h *RouterHarness) Log(event RouterEvent, desc string, args ...any) {
	x := make([]any, 0)
	x = append(x, event)
	x = append(x, desc)
	x = append(x, args...)
	h.actions = append(h.actions, MakeEvent("LOG", x...))
}

func (h *RouterHarness) Update(rs *state.RouterState, port state.Port, src state.Addr, adv state.Vector) bool {
	return HandleUpdate(rs, h, port, src, adv)
}

func (h *RouterHarness) Up(rs *state.RouterState, port state.Port, neighbour state.Addr, cost state.Cost) {
	HandleLinkUp(rs, h, port, neighbour, cost)
}

func (h *RouterHarness) Down(rs *state.RouterState, port state.Port) bool {
	return HandleLinkDown(rs, h, port)
}

type HarnessEvents []HarnessEvent

func (h HarnessEvents) String() string {
	out := make([]string, 0)
	for _, action := range h {
		cur := action.Message
		for _, arg := range action.Args {
			cur += " " + fmt.Sprint(arg)
		}
		out = append(out, cur)
	}
	slices.Sort(out)
	return strings.Join(out, "\n")
}

func (h *RouterHarness) GetActions() HarnessEvents {
	x := make([]HarnessEvent, 0)
	for _, action := range h.actions {
		if action.Message != "LOG" {
			x = append(x, action)
		}
	}

	h.actions = make([]HarnessEvent, 0)
	return x
}

func (e HarnessEvents) contains(msg string, args ...any) bool {
	for _, event := range e {
		if event.Message == msg {
			if len(event.Args) >= len(args) {
				match := true
				for i, arg := range args {
					if !cmp.Equal(event.Args[i], arg) {
						match = false
						break
					}
				}
				if match {
					return true
				}
			}
		}
	}
	return false
}

func (e HarnessEvents) AssertContains(t *testing.T, msg string, args ...any) {
	if e.contains(msg, args...) {
		return
	}
	t.Fatal("Expected event not found: ", msg, " with args: ", args, " in ", e)
}

func (e HarnessEvents) AssertNotContains(t *testing.T, msg string, args ...any) {
	if e.contains(msg, args...) {
		t.Fatal("Unexpected event found: ", msg, " with args: ", args, " in ", e)
	}
}

// checkInvariants asserts the structural properties every table must satisfy
// after any handler runs.
func checkInvariants(t *testing.T, rs *state.RouterState) {
	t.Helper()
	if rs.DV[rs.Id] != (state.DistEntry{Cost: 0, Via: state.NoPort}) {
		t.Fatalf("self route violated: %v", rs.DV[rs.Id])
	}
	for dest, entry := range rs.DV {
		port, ok := rs.Forward[dest]
		if entry.Routed() != ok {
			t.Fatalf("forwarding table out of step for %s: entry %v, forward present %v", dest, entry, ok)
		}
		if ok && port != entry.Via {
			t.Fatalf("forwarding table disagrees for %s: %d != %d", dest, port, entry.Via)
		}
		if !entry.Routed() && dest != rs.Id && entry.Cost != state.Infinity {
			t.Fatalf("unrouted entry for %s has finite cost %d", dest, entry.Cost)
		}
	}
}
