package main

import (
	"fmt"
	"io"
	"os"

	"github.com/dimonomid/cxmocklogs/analyze"
	"github.com/dimonomid/cxmocklogs/log"
	"github.com/dimonomid/cxmocklogs/version"
	"github.com/juju/errors"
	"github.com/spf13/pflag"
)

const defaultInput = "coralogix_eks_fargate_logs_1000.json"

func main() {
	err := run(os.Args[1:], os.Stdout)
	log.Sync()

	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err.Error())
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer) error {
	flags := pflag.NewFlagSet("cxanalyze", pflag.ContinueOnError)
	flags.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: cxanalyze [flags] [file]\n\nfile defaults to %s\n\n", defaultInput)
		flags.PrintDefaults()
	}

	var (
		flagApps          = flags.StringSliceP("apps", "a", nil, "Only analyze applications matching these comma-separated glob patterns, e.g. '*-service,database'")
		flagSamplesPerApp = flags.Int("samples-per-app", analyze.DefaultSamplesPerApp, "How many sample errors to show for every application")
		flagBin           = flags.Duration("bin", analyze.DefaultVolumeBin, "Initial bin size of the volume histogram; widened if the time range is long")
		flagLogLevel      = flags.String("loglevel", "warning", "Level of diagnostic messages on stderr: error, warning, info, verbose1, verbose2 or verbose3")
		flagVersion       = flags.Bool("version", false, "Print version and exit")
	)

	if err := flags.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return errors.Trace(err)
	}

	if *flagVersion {
		fmt.Fprint(stdout, version.VersionFullDescr("cxanalyze"))
		return nil
	}

	logLevel, err := log.ParseLevel(*flagLogLevel)
	if err != nil {
		return errors.Trace(err)
	}
	logger := log.NewLogger(logLevel).WithNamespaceAppended("analyze")

	path := defaultInput
	switch flags.NArg() {
	case 0:
	case 1:
		path = flags.Arg(0)
	default:
		return errors.Errorf("expected at most one file, got %d", flags.NArg())
	}

	if *flagSamplesPerApp < 0 {
		return errors.Errorf("--samples-per-app must not be negative")
	}

	entries, err := analyze.LoadFile(path)
	if err != nil {
		return errors.Trace(err)
	}
	logger.Infof("Loaded %d logs from %s", len(entries), path)

	opts := analyze.DefaultOptions()
	opts.AppPatterns = *flagApps
	opts.SamplesPerApp = *flagSamplesPerApp
	opts.VolumeBin = *flagBin

	st, err := analyze.Analyze(entries, opts)
	if err != nil {
		return errors.Trace(err)
	}
	logger.Verbose1f("Analyzed %d logs after filtering", st.Total)

	st.WriteReport(stdout)

	return nil
}
