package config

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	metrics "github.com/armon/go-metrics"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/AnyUserName/squeeze/internal/profile"
)

// EnvVar names the config file when no --config flag is given.
const EnvVar = "SQUEEZE_CONFIG"

type Config struct {
	LogLevel      string `toml:"log_level"`
	Profile       string `toml:"profile"`
	Quality       int    `toml:"quality"`
	Workers       int    `toml:"workers"`
	WebPLossy     bool   `toml:"webp_lossy"`
	NoRegressSize bool   `toml:"no_regress_size"`

	// [metrics]
	Metrics struct {
		Enabled       bool   `toml:"enabled"`
		ServiceName   string `toml:"service_name"`
		StatsdAddress string `toml:"statsd_address"`
	} `toml:"metrics"`
}

var (
	ErrNoConfigFile = errors.New("no configuration file specified")

	DefaultConfig = Config{}
)

func init() {
	cf := Config{
		LogLevel:      "warn",
		Profile:       profile.DefaultName,
		Quality:       0,
		Workers:       0,
		WebPLossy:     false,
		NoRegressSize: true,
	}
	cf.Metrics.ServiceName = "squeeze"

	DefaultConfig = cf
}

func NewConfig() *Config {
	cf := DefaultConfig
	return &cf
}

// NewConfigFromFile decodes confFile, or confEnv when confFile is empty, over
// the defaults. ErrNoConfigFile is returned when both are empty.
func NewConfigFromFile(confFile string, confEnv string) (*Config, error) {
	if confFile == "" {
		confFile = confEnv
	}
	if confFile == "" {
		return nil, ErrNoConfigFile
	}
	if _, err := os.Stat(confFile); err != nil {
		return nil, errors.Wrapf(err, "config %s", confFile)
	}

	cf := NewConfig()
	md, err := toml.DecodeFile(confFile, cf)
	if err != nil {
		return nil, errors.Wrapf(err, "decode config %s", confFile)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.Errorf("config %s: unknown keys %s", confFile, strings.Join(keys, ", "))
	}
	return cf, nil
}

// Load resolves the config from the --config flag value and the environment,
// falling back to defaults when neither names a file.
func Load(confFile string) (*Config, error) {
	cf, err := NewConfigFromFile(confFile, os.Getenv(EnvVar))
	if err == ErrNoConfigFile {
		return NewConfig(), nil
	}
	return cf, err
}

// Apply validates the config and sets the logger level.
func (cf *Config) Apply(log *logrus.Logger) error {
	level, err := logrus.ParseLevel(strings.ToLower(cf.LogLevel))
	if err != nil {
		return errors.Wrap(err, "log_level")
	}
	if cf.Quality < 0 {
		return errors.Errorf("quality must not be negative, got %d", cf.Quality)
	}
	if cf.Workers < 0 {
		return errors.Errorf("workers must not be negative, got %d", cf.Workers)
	}
	if log != nil {
		log.SetLevel(level)
	}
	return nil
}

// SetupMetrics installs the global metrics sink when metrics are enabled. A
// statsd address sends samples there; otherwise an in-memory sink is
// installed and returned so the caller can print a summary.
func (cf *Config) SetupMetrics() (*metrics.InmemSink, error) {
	if !cf.Metrics.Enabled {
		return nil, nil
	}

	config := metrics.DefaultConfig(cf.Metrics.ServiceName)
	config.EnableHostname = false
	config.EnableRuntimeMetrics = false
	config.TimerGranularity = time.Millisecond

	if cf.Metrics.StatsdAddress != "" {
		sink, err := metrics.NewStatsdSink(cf.Metrics.StatsdAddress)
		if err != nil {
			return nil, errors.Wrap(err, "statsd sink")
		}
		_, err = metrics.NewGlobal(config, sink)
		return nil, err
	}

	sink := metrics.NewInmemSink(time.Minute, time.Hour)
	if _, err := metrics.NewGlobal(config, sink); err != nil {
		return nil, err
	}
	return sink, nil
}

// WriteSummary prints the latest interval of sink to w.
func WriteSummary(w io.Writer, sink *metrics.InmemSink) {
	if sink == nil {
		return
	}
	data := sink.Data()
	if len(data) == 0 {
		return
	}
	iv := data[len(data)-1]
	iv.RLock()
	defer iv.RUnlock()

	for _, name := range sortedKeys(iv.Counters) {
		c := iv.Counters[name]
		if c.AggregateSample == nil {
			continue
		}
		fmt.Fprintf(w, "  %-40s count=%d sum=%.0f\n", name, c.Count, c.Sum)
	}
	for _, name := range sortedKeys(iv.Samples) {
		s := iv.Samples[name]
		if s.AggregateSample == nil || s.Count == 0 {
			continue
		}
		fmt.Fprintf(w, "  %-40s count=%d mean=%.2f max=%.2f\n", name, s.Count, s.Sum/float64(s.Count), s.Max)
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
