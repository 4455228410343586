package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/feltnet/felt/core"
	"github.com/feltnet/felt/sim"
	"github.com/feltnet/felt/state"
	"github.com/feltnet/felt/viz"
	"github.com/spf13/cobra"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a felt network",
	Long:  `This runs every node of the topology in the current process, carrying frames over simulated links until the configured duration elapses or the process is interrupted.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := core.ReadTopology(topologyPath)
		if err != nil {
			panic(err)
		}
		err = state.CentralConfigValidator(cfg)
		if err != nil {
			panic(err)
		}

		level := slog.LevelInfo
		if ok, _ := cmd.Flags().GetBool("verbose"); ok {
			level = slog.LevelDebug
		}

		stopDebug := core.SetupDebugging()
		defer stopDebug()

		n := sim.NewNetwork(*cfg, level)
		errChan := n.Start()
		defer n.Stop()
		select {
		case err := <-errChan:
			panic(err)
		default:
		}

		if ok, _ := cmd.Flags().GetBool("watch"); ok {
			oracle, err := sim.NewOracle(*cfg)
			if err != nil {
				panic(err)
			}
			err = viz.Watch(n, oracle)
			if err != nil {
				panic(err)
			}
			return
		}

		fmt.Println("felt is up. To gracefully exit, send SIGINT or Ctrl+C.")

		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

		var timeout <-chan time.Time
		if cfg.Duration > 0 {
			timeout = time.After(cfg.Duration)
		}
		select {
		case <-sig:
		case <-timeout:
		case err := <-errChan:
			if err != nil {
				panic(err)
			}
		case <-n.Context.Done():
		}
	},
	GroupID: "felt",
}

func init() {
	rootCmd.AddCommand(runCmd)

	// Here you will define your flags and configuration settings.

	// Cobra supports Persistent Flags which will work for this command
	// and all subcommands, e.g.:
	// runCmd.PersistentFlags().String("foo", "", "A help for foo")

	// Cobra supports local flags which will only run when this command
	// is called directly, e.g.:
	// runCmd.Flags().BoolP("toggle", "t", false, "Help message for toggle")

	runCmd.Flags().BoolP("verbose", "v", false, "Verbose output")
	runCmd.Flags().BoolP("watch", "w", false, "Render live route tables next to the true shortest costs")
	runCmd.Flags().BoolVarP(&state.DBG_log_router, "lroute", "r", false, "Write route events to the console")
	runCmd.Flags().BoolVarP(&state.DBG_log_route_table, "ltable", "t", false, "Outputs route tables to the console")
	runCmd.Flags().BoolVarP(&state.DBG_debug, "debug", "d", false, "Serve pprof and metrics on :6060")
	runCmd.Flags().BoolVar(&state.DBG_trace, "trace", false, "Write a runtime trace to trace.out")
}
