package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var topologyPath = "felt.yaml"

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "felt",
	Short: "Felt Distance-Vector Routing CLI",
	Long: `Felt is a distance-vector routing simulator.
It runs every node of a topology inside one process, floods poisoned distance
vectors between them over simulated links, and lets you watch routes converge,
fail over and heal.`,
	// Uncomment the following line if your bare application
	// has an action associated with it:
	// Run: func(cmd *cobra.Command, args []string) { },
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	// Here you will define your flags and configuration settings.
	// Cobra supports persistent flags, which, if defined here,
	// will be global for your application.

	rootCmd.AddGroup(&cobra.Group{
		ID:    "init",
		Title: "Initialize Felt",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "felt",
		Title: "Felt Commands",
	})
	rootCmd.PersistentFlags().StringVarP(&topologyPath, "config", "c", topologyPath, "network topology file")
}
