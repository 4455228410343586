package sim

import (
	"time"

	"github.com/feltnet/felt/state"
)

func (n *Network) armScenario() {
	for _, ev := range n.Central.Events {
		n.timers = append(n.timers, time.AfterFunc(ev.At, func() {
			n.ApplyEvent(ev)
		}))
	}
}

// ApplyEvent flips or reprices a configured link on both of its endpoints.
func (n *Network) ApplyEvent(ev state.EventCfg) {
	if n.Context.Err() != nil {
		return
	}
	l := n.FindWire(ev.A, ev.B)
	if l == nil {
		n.Log.Warn("event names an unknown link", "a", ev.A, "b", ev.B)
		return
	}
	n.Log.Info("topology event", "op", ev.Op, "a", ev.A, "b", ev.B, "cost", ev.Cost)
	switch ev.Op {
	case "down":
		n.applyDown(l)
	case "up", "cost":
		n.applyUp(l, ev.Cost)
	}
}
