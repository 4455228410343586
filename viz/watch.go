package viz

import (
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/feltnet/felt/core"
	"github.com/feltnet/felt/sim"
	"github.com/feltnet/felt/state"
	"github.com/gdamore/tcell/v2"
)

// Watch draws every node's tables live, next to the oracle's expected costs.
// It blocks until q, Escape or Ctrl-C is pressed, or the network stops.
func Watch(n *sim.Network, oracle *sim.Oracle) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()

	events := make(chan tcell.Event, 16)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return // screen finalized
			}
			events <- ev
		}
	}()

	ticker := time.NewTicker(300 * time.Millisecond)
	defer ticker.Stop()

	for {
		render(screen, n, oracle)
		select {
		case <-n.Context.Done():
			return nil
		case <-ticker.C:
		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventResize:
				screen.Sync()
			case *tcell.EventKey:
				if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC || ev.Rune() == 'q' {
					return nil
				}
			}
		}
	}
}

func render(screen tcell.Screen, n *sim.Network, oracle *sim.Oracle) {
	screen.Clear()
	head := tcell.StyleDefault.Bold(true)
	dim := tcell.StyleDefault.Foreground(tcell.ColorGray)
	bad := tcell.StyleDefault.Foreground(tcell.ColorRed)

	row := 0
	drawText(screen, 0, row, head, "felt: distance vectors (q to quit)")
	row += 2
	for _, nc := range n.Central.Nodes {
		s := n.State(nc.Id)
		if s == nil {
			continue
		}
		tables, err := core.SnapshotTables(s)
		if err != nil {
			continue
		}
		drawText(screen, 0, row, head, string(nc.Id))
		row++
		drawText(screen, 2, row, dim, fmt.Sprintf("%-12s %5s %5s %5s", "dest", "cost", "port", "true"))
		row++
		for _, dest := range slices.Sorted(maps.Keys(tables.DV)) {
			entry := tables.DV[dest]
			truth := oracle.Cost(nc.Id, dest)
			cost, port := "inf", "-"
			if dest == nc.Id {
				cost = "0"
			} else if entry.Routed() {
				cost = fmt.Sprintf("%d", entry.Cost)
				port = fmt.Sprintf("%d", entry.Via)
			}
			want := "inf"
			if truth < state.Infinity {
				want = fmt.Sprintf("%d", truth)
			}
			style := tcell.StyleDefault
			if dest != nc.Id && cost != want {
				style = bad // not converged to the oracle yet
			}
			drawText(screen, 2, row, style, fmt.Sprintf("%-12s %5s %5s %5s", dest, cost, port, want))
			row++
		}
		row++
	}
	screen.Show()
}

func drawText(s tcell.Screen, x, y int, style tcell.Style, text string) {
	col := x
	for _, r := range []rune(text) {
		s.SetContent(col, y, r, nil, style)
		col++
	}
}
