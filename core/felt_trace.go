package core

import (
	"github.com/dustin/go-broadcast"
	"github.com/feltnet/felt/state"
)

// RouteNotice is published whenever a node's routing table changes shape.
type RouteNotice struct {
	Node  state.Addr
	Event RouterEvent
}

// FeltTrace fans route change notices out to any interested listener, such as
// the live table view or a convergence watcher.
type FeltTrace struct {
	broadcast.Broadcaster
}

func (t *FeltTrace) Init(s *state.State) error {
	t.Broadcaster = broadcast.NewBroadcaster(1024)
	return nil
}

func (t *FeltTrace) Cleanup(s *state.State) error {
	return t.Close()
}

// Notify publishes a notice without ever blocking the dispatch goroutine.
func (t *FeltTrace) Notify(n RouteNotice) {
	if t.Broadcaster != nil {
		t.TrySubmit(n)
	}
}
