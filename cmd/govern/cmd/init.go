package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	logging "github.com/inconshreveable/log15"
	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	cmdcommon "boscoin.io/govern/cmd/govern/common"
	"boscoin.io/govern/lib/common"
	"boscoin.io/govern/lib/governance"
	"boscoin.io/govern/lib/ledger"
	"boscoin.io/govern/lib/metrics"
)

const (
	defaultLogLevel   logging.Lvl = logging.LvlInfo
	defaultNTPTimeout             = 5 * time.Second
)

// Env holds the defaults read from the `GOVERN_*` environment; flags
// override them.
type Env struct {
	Storage       string        `envconfig:"STORAGE"`
	LogLevel      string        `envconfig:"LOG_LEVEL"`
	LogFormat     string        `envconfig:"LOG_FORMAT" default:"auto"`
	LogOutput     string        `envconfig:"LOG_OUTPUT"`
	MetricsOutput string        `envconfig:"METRICS_OUTPUT"`
	Output        string        `envconfig:"OUTPUT" default:"prettyjson"`
	NTPServer     string        `envconfig:"NTP_SERVER"`
	Quorum        string        `envconfig:"QUORUM"`
	VotingPeriod  time.Duration `envconfig:"VOTING_PERIOD"`
	From          string        `envconfig:"FROM"`
}

var (
	env = loadEnv()

	flagStorage       string
	flagLogLevel      string
	flagLogFormat     string
	flagLogOutput     string
	flagMetricsOutput string
	flagOutput        string
	flagNTPServer     string

	logLevel logging.Lvl
	log      logging.Logger = logging.New("module", "main")

	clock  common.Clock = common.SystemClock{}
	encode cmdcommon.Encode
)

var rootCmd = &cobra.Command{
	Use:   "govern",
	Short: "token weighted treasury governance",
	PersistentPreRun: func(c *cobra.Command, args []string) {
		if flagName, err := parseFlagsRoot(); err != nil {
			cmdcommon.PrintFlagsError(c, flagName, err)
		}
	},
	Run: func(c *cobra.Command, args []string) {
		if len(args) < 1 {
			c.Usage()
		}
	},
}

func loadEnv() (e Env) {
	if err := envconfig.Process("govern", &e); err != nil {
		fmt.Fprintf(os.Stderr, "error: invalid environment; %v\n", err)
		os.Exit(1)
	}

	if len(e.LogLevel) < 1 {
		e.LogLevel = defaultLogLevel.String()
	}

	return
}

func init() {
	if len(env.Storage) < 1 {
		env.Storage = cmdcommon.GetDefaultStoragePath(rootCmd)
	}

	// "--log_level" is read as "--log-level"
	rootCmd.SetGlobalNormalizationFunc(func(f *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.Replace(name, "_", "-", -1))
	})

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&flagStorage, "storage", env.Storage, "storage uri, 'file:///path' or 'memory://'")
	flags.StringVar(&flagLogLevel, "log-level", env.LogLevel, "log level, {crit, error, warn, info, debug}")
	flags.StringVar(&flagLogFormat, "log-format", env.LogFormat, "log format, {auto, terminal, json}")
	flags.StringVar(&flagLogOutput, "log-output", env.LogOutput, "set log output file")
	flags.StringVar(&flagMetricsOutput, "metrics-output", env.MetricsOutput, "write prometheus metrics to this file after each command")
	flags.StringVar(&flagOutput, "output", env.Output, "output format, {json, prettyjson, yaml}")
	flags.StringVar(&flagNTPServer, "ntp-server", env.NTPServer, "take the current time from this NTP server")
}

// parseFlagsRoot applies the flags shared by every command. It returns the
// name of the failing flag with the error.
func parseFlagsRoot() (string, error) {
	var err error

	if encode, err = cmdcommon.GetEncoder(flagOutput); err != nil {
		return "--output", err
	}

	if logLevel, err = logging.LvlFromString(flagLogLevel); err != nil {
		return "--log-level", err
	}

	var logHandler logging.Handler
	if len(flagLogOutput) > 0 {
		if logHandler, err = logging.FileHandler(flagLogOutput, common.JsonFormatEx(false, true)); err != nil {
			return "--log-output", err
		}
	} else if logHandler, err = common.NewLogHandler(os.Stderr, flagLogFormat); err != nil {
		return "--log-format", err
	}

	common.SetLogging(log, logLevel, logHandler)
	governance.SetLogging(logLevel, logHandler)
	ledger.SetLogging(logLevel, logHandler)

	if len(flagMetricsOutput) > 0 {
		metrics.InitPrometheusMetrics()
		metrics.SetVersion()
	}

	if len(flagNTPServer) > 0 {
		var ntpClock *common.NTPClock
		if ntpClock, err = common.NewNTPClock(flagNTPServer, defaultNTPTimeout); err != nil {
			return "--ntp-server", err
		}
		log.Debug("clock synchronized", "server", flagNTPServer, "offset", ntpClock.Offset())
		clock = ntpClock
	} else {
		clock = common.SystemClock{}
	}

	log.Debug(
		"flags parsed",
		"storage", flagStorage,
		"log-level", flagLogLevel,
		"log-format", flagLogFormat,
		"log-output", flagLogOutput,
		"metrics-output", flagMetricsOutput,
		"output", flagOutput,
		"ntp-server", flagNTPServer,
	)

	return "", nil
}

// run executes `fn` and prints its result with the selected encoder. Metrics
// are written whether the command succeeded or not.
func run(c *cobra.Command, fn func() (interface{}, error)) {
	result, err := fn()

	if len(flagMetricsOutput) > 0 {
		if merr := metrics.WriteTextfile(flagMetricsOutput, nil); merr != nil {
			log.Error("failed to write metrics", "path", flagMetricsOutput, "error", merr)
		}
	}

	if err != nil {
		cmdcommon.PrintError(c, err)
		return
	}

	if result == nil {
		return
	}

	if err = encode(result, c.OutOrStdout()); err != nil {
		cmdcommon.PrintError(c, err)
	}
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		cmdcommon.PrintFlagsError(rootCmd, "", err)
	}
}

func SetArgs(s []string) {
	rootCmd.SetArgs(s)
}
