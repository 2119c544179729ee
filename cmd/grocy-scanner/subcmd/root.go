package subcmd

import (
	"github.com/grocyscan/grocy-scanner/kernel/loader"
	"github.com/grocyscan/grocy-scanner/kernel/model"
	"github.com/michaelquigley/pfxlog"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	configPath string
	verbose    bool
)

var RootCmd = &cobra.Command{
	Use:   "grocy-scanner",
	Short: "Barcode scanner bridge for the Grocy Home Assistant add-on",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := logrus.InfoLevel
		if verbose {
			level = logrus.DebugLevel
		}
		pfxlog.GlobalInit(level, pfxlog.DefaultOptions().SetTrimPrefix("github.com/grocyscan/"))
	},
	SilenceUsage: true,
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", model.DefaultConfigLocation, "path to YAML configuration file")
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

func Execute() error {
	return RootCmd.Execute()
}

// loadConfig reads the configuration named by --config and applies its log level unless
// --verbose already raised it.
func loadConfig() (*model.ScannerConfig, error) {
	cfg, err := loader.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	if !verbose {
		if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
			logrus.SetLevel(level)
		} else {
			logrus.Warnf("ignoring unknown log level [%s]", cfg.LogLevel)
		}
	}
	return cfg, nil
}
