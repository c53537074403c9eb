package main

import (
	"fmt"
	"os"

	"github.com/itohio/sndmon/pkg/config"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags.
var Version = "dev"

var (
	configPath string
	portFlag   string
	mockFlag   bool
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "sndmon",
	Short: "Host companion for the line/sound sensor board",
	Long: `sndmon reads the reporting channel of the sensor board over a serial
port (or from a simulated board), plots the smoothed sound level and
highlights line alarms and sound triggers.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			log.SetLevel(log.DebugLevel)
		}
	},
	RunE: runGUI,
}

func init() {
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp: true,
	})

	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("sndmon version {{.Version}}\n")

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "Configuration file path")
	rootCmd.PersistentFlags().StringVarP(&portFlag, "port", "p", "", "Serial port override (e.g., COM3 or /dev/ttyACM0)")
	rootCmd.PersistentFlags().BoolVar(&mockFlag, "mock", false, "Use simulated board instead of serial port")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(guiCmd, tailCmd, portsCmd, configCmd)
}

// loadConfig loads the configuration file and applies flag overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if portFlag != "" {
		cfg.Serial.Port = portFlag
	}
	return cfg, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
