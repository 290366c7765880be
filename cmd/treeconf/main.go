package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/edgeflare/treeconf/pkg/config"
)

var cfgFile string
var logLevel string
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "treeconf",
	Short: "treeconf synchronizes a device settings tree over MQTT",
	Long: `treeconf exposes a device's run-time settings as a path-addressable
tree behind <prefix>/settings/ topics and keeps it synchronized with
remote operators.`,
	Run: func(cmd *cobra.Command, args []string) {
		versionFlag, _ := cmd.Flags().GetBool("version")
		if versionFlag {
			fmt.Println(config.Version)
			return
		}

		// If no subcommand is provided, print help
		cmd.Help()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/treeconf.yaml)")
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "L", "info", "log at this level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolP("version", "v", false, "Print the version number")

	rootCmd.AddCommand(runCmd)
}

func initConfig() {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}
}
