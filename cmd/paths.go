package cmd

import (
	"fmt"
	"slices"
	"strings"

	"github.com/feltnet/felt/core"
	"github.com/feltnet/felt/sim"
	"github.com/feltnet/felt/state"
	"github.com/spf13/cobra"
)

var pathsCmd = &cobra.Command{
	Use:   "paths",
	Short: "Print the true shortest costs of the topology",
	Long:  `Computes the all-pairs shortest costs of the topology, independently of the routing protocol. Useful as the reference a converged network should match.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := core.ReadTopology(topologyPath)
		if err != nil {
			panic(err)
		}
		err = state.CentralConfigValidator(cfg)
		if err != nil {
			panic(err)
		}
		oracle, err := sim.NewOracle(*cfg)
		if err != nil {
			panic(err)
		}

		ids := make([]state.Addr, 0, len(cfg.Nodes))
		for _, nc := range cfg.Nodes {
			ids = append(ids, nc.Id)
		}
		slices.Sort(ids)
		for _, from := range ids {
			parts := make([]string, 0, len(ids))
			for _, to := range ids {
				if to == from {
					continue
				}
				if c := oracle.Cost(from, to); c >= state.Infinity {
					parts = append(parts, fmt.Sprintf("%s=unreachable", to))
				} else {
					parts = append(parts, fmt.Sprintf("%s=%d", to, c))
				}
			}
			fmt.Printf("%s: %s\n", from, strings.Join(parts, " "))
		}
	},
	GroupID: "felt",
}

func init() {
	rootCmd.AddCommand(pathsCmd)
}
