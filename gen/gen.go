// Package gen generates synthetic log records of an EKS Fargate cluster in
// the vendor export format.
package gen

import (
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/dimonomid/cxmocklogs/catalog"
	"github.com/dimonomid/cxmocklogs/fixture"
	"github.com/dimonomid/cxmocklogs/log"
	"github.com/dimonomid/cxmocklogs/record"
	"github.com/juju/errors"
)

const (
	DefaultNumLogs  = 1000
	DefaultTimeSpan = 17 * time.Minute
)

// DefaultStartTime is the start of the demo incident window.
var DefaultStartTime = time.Date(2025, 7, 1, 7, 0, 0, 0, time.UTC)

type SeverityMode string

const (
	// SeverityModeFixed samples severities from SeverityWeights regardless of
	// the application.
	SeverityModeFixed SeverityMode = "fixed"

	// SeverityModePerApp uses catalog.Application.ErrorRate: a problematic
	// record is ERROR or WARN with equal chances, the rest are INFO.
	SeverityModePerApp SeverityMode = "per-app"
)

var AllSeverityModes = map[SeverityMode]struct{}{
	SeverityModeFixed:  {},
	SeverityModePerApp: {},
}

type SeverityWeights struct {
	Info  float64 `yaml:"info"`
	Warn  float64 `yaml:"warn"`
	Error float64 `yaml:"error"`
}

var DefaultSeverityWeights = SeverityWeights{Info: 0.70, Warn: 0.20, Error: 0.10}

func (sw SeverityWeights) sum() float64 {
	return sw.Info + sw.Warn + sw.Error
}

type Params struct {
	NumLogs   int
	StartTime time.Time

	// TimeSpan is roughly the distance between StartTime and the last record.
	TimeSpan time.Duration

	// RandomSeed makes the output reproducible; 0 means seeding from the
	// current time.
	RandomSeed int64

	SeverityMode    SeverityMode
	SeverityWeights SeverityWeights

	// Cloud is put into the aws block of every record; empty fields are
	// replaced with the catalog defaults.
	Cloud record.AWS

	Logger *log.Logger
}

func DefaultParams() Params {
	return Params{
		NumLogs:         DefaultNumLogs,
		StartTime:       DefaultStartTime,
		TimeSpan:        DefaultTimeSpan,
		SeverityMode:    SeverityModeFixed,
		SeverityWeights: DefaultSeverityWeights,
		Cloud: record.AWS{
			Region:         catalog.DefaultRegion,
			ClusterName:    catalog.DefaultClusterName,
			FargateProfile: catalog.DefaultFargateProfile,
		},
	}
}

func (p *Params) Validate() error {
	if p.NumLogs < 0 {
		return errors.Errorf("number of logs must not be negative, got %d", p.NumLogs)
	}

	if p.TimeSpan < 0 {
		return errors.Errorf("time span must not be negative, got %s", p.TimeSpan)
	}

	if _, ok := AllSeverityModes[p.SeverityMode]; !ok {
		return errors.Errorf(
			"invalid severity mode %q, valid options are: %s, %s",
			p.SeverityMode, SeverityModeFixed, SeverityModePerApp,
		)
	}

	sw := p.SeverityWeights
	if sw.Info < 0 || sw.Warn < 0 || sw.Error < 0 {
		return errors.Errorf("severity weights must not be negative: %+v", sw)
	}

	if p.SeverityMode == SeverityModeFixed && sw.sum() <= 0 {
		return errors.Errorf("at least one severity weight must be positive")
	}

	return nil
}

type Result struct {
	Records []record.LogRecord

	// Seed is the seed which was actually used, so that a time-seeded run can
	// be reproduced.
	Seed int64

	SeverityCounts map[record.Severity]int
	AppCounts      map[string]int

	// Path and FileSize are only set by GenerateToFile.
	Path     string
	FileSize int64
}

// Generate returns p.NumLogs records with non-decreasing timestamps.
func Generate(p Params) (*Result, error) {
	if err := p.Validate(); err != nil {
		return nil, errors.Trace(err)
	}

	if p.StartTime.IsZero() {
		p.StartTime = DefaultStartTime
	}
	p.Cloud = cloudWithDefaults(p.Cloud)

	seed := p.RandomSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	logger := p.Logger.WithNamespaceAppended("gen")
	logger.Infof(
		"Generating %d logs from %s over %s, seed %d, severity mode %s",
		p.NumLogs, record.FormatTime(p.StartTime), p.TimeSpan, seed, p.SeverityMode,
	)

	g := newGenerator(p, seed, logger)

	res := &Result{
		Records:        make([]record.LogRecord, 0, p.NumLogs),
		Seed:           seed,
		SeverityCounts: map[record.Severity]int{},
		AppCounts:      map[string]int{},
	}

	for i := 0; i < p.NumLogs; i++ {
		rec, err := g.next()
		if err != nil {
			return nil, errors.Annotatef(err, "generating log #%d", i)
		}

		res.Records = append(res.Records, rec)
		res.SeverityCounts[rec.Severity]++
		res.AppCounts[rec.ApplicationName]++
	}

	return res, nil
}

// GenerateToFile generates records and writes them to the given path,
// overwriting it.
func GenerateToFile(p Params, path string) (*Result, error) {
	res, err := Generate(p)
	if err != nil {
		return nil, errors.Trace(err)
	}

	if err := fixture.Write(path, res.Records); err != nil {
		return nil, errors.Trace(err)
	}

	fi, err := os.Stat(path)
	if err != nil {
		return nil, errors.Trace(err)
	}

	res.Path = path
	res.FileSize = fi.Size()

	p.Logger.WithNamespaceAppended("gen").Infof("Wrote %d logs to %s", len(res.Records), path)

	return res, nil
}

func cloudWithDefaults(c record.AWS) record.AWS {
	if c.Region == "" {
		c.Region = catalog.DefaultRegion
	}
	if c.ClusterName == "" {
		c.ClusterName = catalog.DefaultClusterName
	}
	if c.FargateProfile == "" {
		c.FargateProfile = catalog.DefaultFargateProfile
	}

	return c
}

type generator struct {
	params Params
	rng    *rand.Rand
	logger *log.Logger

	clock time.Time

	// maxStep is the max clock advance per record; steps are uniform in
	// [0, maxStep], so NumLogs steps add up to about TimeSpan.
	maxStep time.Duration

	appWeightsSum int
}

func newGenerator(p Params, seed int64, logger *log.Logger) *generator {
	g := &generator{
		params: p,
		rng:    rand.New(rand.NewSource(seed)),
		logger: logger,
		clock:  p.StartTime.UTC(),
	}

	if p.NumLogs > 0 {
		g.maxStep = 2 * p.TimeSpan / time.Duration(p.NumLogs)
	}

	for _, app := range catalog.Applications {
		g.appWeightsSum += app.Weight
	}

	return g
}

func (g *generator) next() (record.LogRecord, error) {
	g.clock = g.clock.Add(g.randomStep())
	ts := g.clock

	app := g.randomApp()
	container := randomElement(g.rng, app.Containers)
	severity := g.randomSeverity(app)

	candidates := catalog.MessagesFor(app.Name, severity)
	if len(candidates) == 0 {
		return record.LogRecord{}, errors.Errorf("no %s messages for %s", severity, app.Name)
	}
	msg := candidates[g.rng.Intn(len(candidates))]

	text, err := catalog.Expand(msg.Template, g.rng)
	if err != nil {
		return record.LogRecord{}, errors.Trace(err)
	}

	rec := record.LogRecord{
		Timestamp:       record.NewTime(ts),
		ApplicationName: app.Name,
		SubsystemName:   container,
		Severity:        severity,
		Text:            text,
		Metadata: record.Metadata{
			Kubernetes: record.Kubernetes{
				NamespaceName: app.Namespace,
				PodName:       g.podName(app.Name, container),
				ContainerName: container,
				ContainerID:   catalog.RandomHex(g.rng, 64),
				Host:          g.fargateIP(),
				Labels: record.Labels{
					App:         app.Name,
					Version:     app.Version,
					Environment: app.Environment,
					Tier:        app.Tier,
				},
			},
			AWS: g.params.Cloud,
		},
	}

	if severity == record.SeverityError {
		rec.Metadata.ErrorDetails = g.errorDetails(ts, msg)
	}

	g.logger.Verbose3f("%s %s/%s %s: %s", record.FormatTime(ts), app.Name, container, severity, text)

	return rec, nil
}

func (g *generator) randomStep() time.Duration {
	if g.maxStep <= 0 {
		return 0
	}

	return time.Duration(g.rng.Int63n(int64(g.maxStep) + 1))
}

func (g *generator) randomApp() *catalog.Application {
	n := g.rng.Intn(g.appWeightsSum)
	for i := range catalog.Applications {
		app := &catalog.Applications[i]
		if n < app.Weight {
			return app
		}
		n -= app.Weight
	}

	// Unreachable as long as weights are positive.
	panic("random application out of range")
}

func (g *generator) randomSeverity(app *catalog.Application) record.Severity {
	if g.params.SeverityMode == SeverityModePerApp {
		if g.rng.Float64() < app.ErrorRate {
			if g.rng.Float64() < 0.5 {
				return record.SeverityError
			}
			return record.SeverityWarn
		}
		return record.SeverityInfo
	}

	sw := g.params.SeverityWeights
	r := g.rng.Float64() * sw.sum()
	switch {
	case r < sw.Info:
		return record.SeverityInfo
	case r < sw.Info+sw.Warn:
		return record.SeverityWarn
	default:
		return record.SeverityError
	}
}

func (g *generator) errorDetails(ts time.Time, msg *catalog.Message) *record.ErrorDetails {
	minutesAgo := 1 + g.rng.Intn(30)

	details := &record.ErrorDetails{
		ErrorCode:                randomElement(g.rng, catalog.ErrorCodes),
		RetryCount:               1 + g.rng.Intn(5),
		LastSuccessfulConnection: record.NewTime(ts.Add(-time.Duration(minutesAgo) * time.Minute)),
	}

	if msg.Upstream {
		details.UpstreamService = randomElement(g.rng, catalog.UpstreamServices)
		details.StatusCode = catalog.UpstreamStatusCodes[g.rng.Intn(len(catalog.UpstreamStatusCodes))]
		details.ResponseTimeMS = 5000 + g.rng.Intn(25001)
	}

	return details
}

func (g *generator) podName(appName, container string) string {
	return fmt.Sprintf("%s-%s-%s", appName, container, catalog.RandomHex(g.rng, 10))
}

func (g *generator) fargateIP() string {
	return fmt.Sprintf("10.%d.%d.%d", g.rng.Intn(256), g.rng.Intn(256), 1+g.rng.Intn(254))
}

func randomElement(rng *rand.Rand, list []string) string {
	return list[rng.Intn(len(list))]
}
