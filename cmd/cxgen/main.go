package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dimonomid/cxmocklogs/gen"
	"github.com/dimonomid/cxmocklogs/log"
	"github.com/dimonomid/cxmocklogs/version"
	"github.com/juju/errors"
	"github.com/spf13/pflag"
)

const defaultOutput = "coralogix_eks_fargate_logs_1000.json"

func main() {
	err := run(os.Args[1:], os.Stdout)
	log.Sync()

	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err.Error())
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer) error {
	flags := pflag.NewFlagSet("cxgen", pflag.ContinueOnError)

	var (
		flagCount        = flags.IntP("count", "n", gen.DefaultNumLogs, "Number of log records to generate")
		flagOutput       = flags.StringP("output", "o", defaultOutput, "Output file; compressed with gzip if it ends with .gz")
		flagSeed         = flags.Int64("seed", 0, "Random seed; the same seed produces the same file. 0 means seeding from the current time")
		flagStart        = flags.String("start", gen.DefaultStartTime.Format(time.RFC3339), "Timestamp of the beginning of the logs, in RFC3339")
		flagSpan         = flags.Duration("span", gen.DefaultTimeSpan, "Approximate time covered by the logs")
		flagSeverityMode = flags.String("severity-mode", string(gen.SeverityModeFixed), "How severities are chosen: 'fixed' (70% INFO, 20% WARN, 10% ERROR) or 'per-app' (per-application error rates)")
		flagConfig       = flags.StringP("config", "c", "", "Optional YAML config file; flags given explicitly override it")
		flagLogLevel     = flags.String("loglevel", "warning", "Level of diagnostic messages on stderr: error, warning, info, verbose1, verbose2 or verbose3")
		flagVersion      = flags.Bool("version", false, "Print version and exit")
	)

	if err := flags.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return errors.Trace(err)
	}

	if *flagVersion {
		fmt.Fprint(stdout, version.VersionFullDescr("cxgen"))
		return nil
	}

	if flags.NArg() > 0 {
		return errors.Errorf("unexpected arguments: %v", flags.Args())
	}

	logLevel, err := log.ParseLevel(*flagLogLevel)
	if err != nil {
		return errors.Trace(err)
	}
	logger := log.NewLogger(logLevel)

	params := gen.DefaultParams()
	params.Logger = logger
	output := defaultOutput

	if *flagConfig != "" {
		cfg, err := LoadGenConfigFromFile(*flagConfig)
		if err != nil {
			return errors.Trace(err)
		}

		if err := cfg.Apply(&params, &output); err != nil {
			return errors.Annotatef(err, "applying config %s", *flagConfig)
		}

		logger.Infof("Loaded config from %s", *flagConfig)
	}

	if flags.Changed("count") {
		params.NumLogs = *flagCount
	}
	if flags.Changed("output") {
		output = *flagOutput
	}
	if flags.Changed("seed") {
		params.RandomSeed = *flagSeed
	}
	if flags.Changed("start") {
		t, err := time.Parse(time.RFC3339Nano, *flagStart)
		if err != nil {
			return errors.Annotatef(err, "parsing --start")
		}
		params.StartTime = t.UTC()
	}
	if flags.Changed("span") {
		params.TimeSpan = *flagSpan
	}
	if flags.Changed("severity-mode") {
		params.SeverityMode = gen.SeverityMode(*flagSeverityMode)
	}

	fmt.Fprintf(stdout, "Generating Coralogix EKS Fargate mock logs...\n")
	fmt.Fprintf(stdout, "Creating %d log entries spanning %s\n\n", params.NumLogs, params.TimeSpan)

	res, err := gen.GenerateToFile(params, output)
	if err != nil {
		return errors.Trace(err)
	}

	res.WriteSummary(stdout)

	return nil
}
