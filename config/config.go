// Package config holds the command-line configuration of the housing
// workflow. Values come from defaults, then TABEDA_* environment variables,
// then flags.
package config

import (
	"flag"
	"io"
	"strings"

	"github.com/biswajyotidutta/tabeda/pkg/errors"
	"github.com/biswajyotidutta/tabeda/pkg/log"
)

// EnvPrefix prefixes every environment override, e.g. TABEDA_TEST_SIZE.
const EnvPrefix = "TABEDA_"

// Model names accepted by -model.
const (
	ModelFoundation = "foundation"
	ModelLinear     = "linear"
)

// Config is the full workflow configuration.
type Config struct {
	Dataset   string
	Target    string
	TestSize  float64
	Seed      uint64
	TopK      int
	PlotsDir  string
	Format    string
	Model     string
	Artifact  string
	Alpha     float64
	CVFolds   int
	SaveModel string
	Workers   int
	LogLevel  string
	LogFormat string
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		Dataset:   "boston",
		TestSize:  0.5,
		Seed:      42,
		TopK:      5,
		PlotsDir:  "plots",
		Format:    "png",
		Model:     ModelFoundation,
		LogLevel:  "info",
		LogFormat: log.FormatAuto,
	}
}

// LookupFunc reports the value of an environment variable; os.LookupEnv fits.
type LookupFunc func(key string) (string, bool)

// EnvName returns the environment variable overriding flag name.
func EnvName(flagName string) string {
	return EnvPrefix + strings.ToUpper(strings.ReplaceAll(flagName, "-", "_"))
}

func (c *Config) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.StringVar(&c.Dataset, "dataset", c.Dataset, "registered dataset name, http(s) URL or CSV path")
	fs.StringVar(&c.Target, "target", c.Target, "target column, case-insensitive; empty uses the registered target or the last column")
	fs.Float64Var(&c.TestSize, "test-size", c.TestSize, "fraction of rows held out for evaluation, in (0, 1)")
	fs.Uint64Var(&c.Seed, "seed", c.Seed, "random seed for the split and cross-validation shuffle")
	fs.IntVar(&c.TopK, "top-k", c.TopK, "number of target-correlated features to report and plot")
	fs.StringVar(&c.PlotsDir, "plots", c.PlotsDir, "directory for figures; empty disables plotting")
	fs.StringVar(&c.Format, "format", c.Format, "figure format: png|svg")
	fs.StringVar(&c.Model, "model", c.Model, "model: foundation|linear")
	fs.StringVar(&c.Artifact, "artifact", c.Artifact, "pretrained artifact JSON; empty uses the embedded one")
	fs.Float64Var(&c.Alpha, "alpha", c.Alpha, "ridge penalty of the linear model (0 is OLS)")
	fs.IntVar(&c.CVFolds, "cv-folds", c.CVFolds, "k-fold cross-validation on the training split (0 disables)")
	fs.StringVar(&c.SaveModel, "save-model", c.SaveModel, "write the fitted model to this path")
	fs.IntVar(&c.Workers, "workers", c.Workers, "worker goroutines (0 is one per CPU)")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "log level: debug|info|warn|error")
	fs.StringVar(&c.LogFormat, "log-format", c.LogFormat, "log format: auto|console|json")
	return fs
}

// Parse builds a Config from defaults, environment overrides and args (without
// the program name). Usage and flag errors are written to out. The result is
// validated.
func Parse(name string, args []string, lookup LookupFunc, out io.Writer) (Config, error) {
	cfg := Default()
	fs := cfg.flagSet(name)
	fs.SetOutput(out)

	if lookup != nil {
		var envErr error
		fs.VisitAll(func(f *flag.Flag) {
			if envErr != nil {
				return
			}
			key := EnvName(f.Name)
			if v, ok := lookup(key); ok {
				if err := fs.Set(f.Name, v); err != nil {
					envErr = errors.NewValidationError(key, err.Error(), v)
				}
			}
		})
		if envErr != nil {
			return cfg, envErr
		}
	}

	if err := fs.Parse(args); err != nil {
		return cfg, errors.Wrap(err, "failed to parse flags")
	}
	if fs.NArg() > 0 {
		return cfg, errors.NewValidationError("args", "unexpected positional arguments", fs.Args())
	}
	return cfg, cfg.Validate()
}

// Validate rejects out-of-range values.
func (c *Config) Validate() error {
	switch {
	case c.Dataset == "":
		return errors.NewValidationError("dataset", "must not be empty", c.Dataset)
	case !(c.TestSize > 0 && c.TestSize < 1):
		return errors.NewValidationError("test-size", "must be in (0, 1)", c.TestSize)
	case c.TopK < 1:
		return errors.NewValidationError("top-k", "must be at least 1", c.TopK)
	case c.Format != "png" && c.Format != "svg":
		return errors.NewValidationError("format", "must be png or svg", c.Format)
	case c.Model != ModelFoundation && c.Model != ModelLinear:
		return errors.NewValidationError("model", "must be foundation or linear", c.Model)
	case c.Alpha < 0:
		return errors.NewValidationError("alpha", "must be non-negative", c.Alpha)
	case c.CVFolds == 1 || c.CVFolds < 0:
		return errors.NewValidationError("cv-folds", "must be 0 or at least 2", c.CVFolds)
	case c.Workers < 0:
		return errors.NewValidationError("workers", "must be non-negative", c.Workers)
	}
	if _, err := log.ToLogLevel(c.LogLevel); err != nil {
		return errors.NewValidationError("log-level", "must be debug, info, warn or error", c.LogLevel)
	}
	switch c.LogFormat {
	case log.FormatAuto, log.FormatConsole, log.FormatJSON:
	default:
		return errors.NewValidationError("log-format", "must be auto, console or json", c.LogFormat)
	}
	return nil
}
