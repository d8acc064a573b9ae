package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	configFile string
	nodes      int
	seed       int64
	slots      int
	topology   string
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "scpsim",
	Short: "scpsim - Stellar Consensus Protocol node simulator",
	Long: `scpsim runs a discrete-event simulation of many nodes driving
Stellar Consensus Protocol federated voting -- nomination, ballot
preparation, ballot commit, and externalization -- over a configurable
quorum-set and network topology.`,
	Version: "0.1.0-dev",
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "configuration file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")

	runCmd.Flags().IntVar(&nodes, "nodes", 4, "number of nodes to simulate")
	runCmd.Flags().Int64Var(&seed, "seed", 1, "base random seed")
	runCmd.Flags().IntVar(&slots, "slots", 10, "number of slots to externalize before stopping")
	runCmd.Flags().StringVar(&topology, "topology", "fully-connected", "network topology: fully-connected, hub-and-spoke, partitioned")

	rootCmd.AddCommand(runCmd)
}
