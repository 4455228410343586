package cmd

import (
	"fmt"
	"os"

	"github.com/feltnet/felt/mock"
	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
)

// newCmd represents the new command
var newCmd = &cobra.Command{
	Use:   "new",
	Short: "Create a starter felt topology",
	Long:  `Writes a five node example topology to the configured path, ready for felt run.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := mock.MockCfg()
		out, err := yaml.Marshal(&cfg)
		if err != nil {
			panic(err)
		}
		err = os.WriteFile(topologyPath, out, 0700)
		if err != nil {
			panic(err)
		}
		fmt.Println("wrote", topologyPath)
	},
	GroupID: "init",
}

func init() {
	rootCmd.AddCommand(newCmd)

	// Here you will define your flags and configuration settings.

	// Cobra supports Persistent Flags which will work for this command
	// and all subcommands, e.g.:
	// newCmd.PersistentFlags().String("foo", "", "A help for foo")

	// Cobra supports local flags which will only run when this command
	// is called directly, e.g.:
	// newCmd.Flags().BoolP("toggle", "t", false, "Help message for toggle")
}
