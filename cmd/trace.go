package cmd

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/feltnet/felt/core"
	"github.com/feltnet/felt/sim"
	"github.com/feltnet/felt/state"
	"github.com/spf13/cobra"
)

var traceCmd = &cobra.Command{
	Use:   "trace <from> <to>",
	Short: "Probe the forwarding path between two nodes",
	Long:  `Runs the topology, waits for routes to settle, then launches a traffic probe and prints the path it travelled.`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 2 {
			fmt.Println("Usage: felt trace <from> <to>")
			return
		}
		cfg, err := core.ReadTopology(topologyPath)
		if err != nil {
			panic(err)
		}
		err = state.CentralConfigValidator(cfg)
		if err != nil {
			panic(err)
		}
		from, to := state.Addr(args[0]), state.Addr(args[1])
		for _, id := range []state.Addr{from, to} {
			if !cfg.IsNode(id) {
				fmt.Printf("no node named %s in %s\n", id, topologyPath)
				return
			}
		}

		level := slog.LevelWarn
		if ok, _ := cmd.Flags().GetBool("verbose"); ok {
			level = slog.LevelDebug
		}
		settle, _ := cmd.Flags().GetDuration("settle")

		n := sim.NewNetwork(*cfg, level)
		errChan := n.Start()
		defer n.Stop()
		select {
		case err := <-errChan:
			panic(err)
		default:
		}
		time.Sleep(settle)

		res := n.Tracer.Trace(from, to)
		if !res.Ok {
			fmt.Printf("%s -> %s: unreachable\n", from, to)
			return
		}
		hops := make([]string, 0, len(res.Hops))
		for _, h := range res.Hops {
			hops = append(hops, string(h))
		}
		fmt.Printf("%s (%d hops, %s)\n", strings.Join(hops, " -> "), len(res.Hops)-1, res.Elapsed.Round(time.Microsecond))
	},
	GroupID: "felt",
}

func init() {
	rootCmd.AddCommand(traceCmd)
	traceCmd.Flags().BoolP("verbose", "v", false, "Verbose output")
	traceCmd.Flags().DurationP("settle", "s", 3*time.Second, "How long to let routes converge before probing")
}
