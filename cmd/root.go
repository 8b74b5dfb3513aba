package cmd

import (
	"fmt"
	"os"
	"runtime"

	metrics "github.com/armon/go-metrics"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/AnyUserName/squeeze/internal/config"
	"github.com/AnyUserName/squeeze/internal/convert"
)

var (
	version = "0.1.0"
	verbose bool

	cfgFile    string
	logLevel   string
	withMetric bool

	cfg         = config.NewConfig()
	log         = logrus.New()
	metricsSink *metrics.InmemSink
)

var rootCmd = &cobra.Command{
	Use:   "squeeze",
	Short: "Re-compress images with format-aware quality tuning",
	Long: `squeeze decodes PNG, JPEG and WebP images and re-encodes them as JPEG,
PNG or WebP. Encoder parameters are chosen from the source format, the
target format and the pixel count, so a JPEG is not re-encoded at full
quality and large images trade a little quality for size.`,
	Version:           version,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, _ []string) {
		if metricsSink != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), "metrics:")
			config.WriteSummary(cmd.ErrOrStderr(), metricsSink)
		}
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logging)")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "TOML config file (default $"+config.EnvVar+")")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&withMetric, "metrics", false, "print conversion metrics when done")
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"squeeze %s (%s/%s, %s)\n",
		version, runtime.GOOS, runtime.GOARCH, runtime.Version(),
	))

	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	log.SetLevel(logrus.WarnLevel)
}

// setup loads the config file and lets explicit flags override it.
func setup(cmd *cobra.Command, _ []string) error {
	cf, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if logLevel != "" {
		cf.LogLevel = logLevel
	}
	if verbose {
		cf.LogLevel = "debug"
	}
	if withMetric {
		cf.Metrics.Enabled = true
	}

	log.SetOutput(cmd.ErrOrStderr())
	if err := cf.Apply(log); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if metricsSink, err = cf.SetupMetrics(); err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	cfg = cf
	return nil
}

func newConverter(lossy bool) *convert.Converter {
	return convert.New(convert.Options{
		Logger:    log,
		WebPLossy: lossy || cfg.WebPLossy,
	})
}

// logVerbose prints a message only when --verbose is set.
func logVerbose(format string, args ...any) {
	if verbose {
		fmt.Fprintf(os.Stderr, "[squeeze] "+format+"\n", args...)
	}
}
