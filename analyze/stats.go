// Package analyze computes descriptive statistics over a fixture file and
// renders them as a human-readable report.
package analyze

import (
	"sort"
	"strings"
	"time"

	"github.com/dimonomid/cxmocklogs/record"
	"github.com/gobwas/glob"
	"github.com/juju/errors"
)

const (
	DefaultSamplesPerApp = 1
	DefaultVolumeBin     = time.Minute

	// maxVolumeBins limits the volume histogram; the bin size is doubled
	// until the whole time range fits.
	maxVolumeBins = 60
)

type Options struct {
	// AppPatterns are glob patterns like "*-service"; if non-empty, only
	// entries of the matching applications are analyzed.
	AppPatterns []string

	// SamplesPerApp is how many ERROR entries of every application to keep
	// as samples.
	SamplesPerApp int

	// VolumeBin is the initial bin size of the volume histogram.
	VolumeBin time.Duration
}

func DefaultOptions() Options {
	return Options{
		SamplesPerApp: DefaultSamplesPerApp,
		VolumeBin:     DefaultVolumeBin,
	}
}

type Count struct {
	Name  string
	Count int
}

type SeverityCount struct {
	Severity record.Severity
	Count    int
	Percent  float64
}

type PairCount struct {
	App       string
	Container string
	Count     int
}

type ErrorPattern struct {
	Name    string
	Count   int
	Example Entry
}

type VolumeBin struct {
	Start time.Time
	Count int
}

type Stats struct {
	Total int

	// All the counts below are sorted by count, descending, then by name.
	Severities   []SeverityCount
	Applications []Count
	Containers   []Count
	Pairs        []PairCount

	// Start and End are only meaningful if Total > 0.
	Start time.Time
	End   time.Time

	NumErrors     int
	ErrorPatterns []ErrorPattern

	VolumeBinSize time.Duration
	Volume        []VolumeBin

	UniqueNamespaces int
	UniqueHosts      int

	// Samples contains up to SamplesPerApp ERROR entries per application, in
	// the order of the first error of each application.
	Samples []Entry
}

func (s *Stats) Duration() time.Duration {
	return s.End.Sub(s.Start)
}

// SeverityCount returns the number of entries with the given severity.
func (s *Stats) SeverityCount(sev record.Severity) int {
	for _, sc := range s.Severities {
		if sc.Severity == sev {
			return sc.Count
		}
	}

	return 0
}

// Analyze computes stats over the entries. Entries don't have to be sorted.
func Analyze(entries []Entry, opts Options) (*Stats, error) {
	filter, err := newAppFilter(opts.AppPatterns)
	if err != nil {
		return nil, errors.Trace(err)
	}

	if opts.VolumeBin <= 0 {
		opts.VolumeBin = DefaultVolumeBin
	}

	st := &Stats{}

	sevCounts := map[string]int{}
	appCounts := map[string]int{}
	containerCounts := map[string]int{}
	pairCounts := map[[2]string]int{}
	namespaces := map[string]struct{}{}
	hosts := map[string]struct{}{}
	samplesByApp := map[string]int{}

	patterns := make([]ErrorPattern, len(errorPatternDefs))
	for i, def := range errorPatternDefs {
		patterns[i].Name = def.name
	}

	var selected []Entry
	for _, e := range entries {
		if !filter.match(e.ApplicationName) {
			continue
		}

		selected = append(selected, e)

		if st.Total == 0 || e.Timestamp.Before(st.Start) {
			st.Start = e.Timestamp
		}
		if st.Total == 0 || e.Timestamp.After(st.End) {
			st.End = e.Timestamp
		}
		st.Total++

		sevCounts[string(e.Severity)]++
		appCounts[e.ApplicationName]++
		containerCounts[e.SubsystemName]++
		pairCounts[[2]string{e.ApplicationName, e.SubsystemName}]++

		if e.Namespace != "" {
			namespaces[e.Namespace] = struct{}{}
		}
		if e.Host != "" {
			hosts[e.Host] = struct{}{}
		}

		if e.Severity != record.SeverityError {
			continue
		}

		st.NumErrors++

		p := &patterns[classifyError(e.Text)]
		if p.Count == 0 {
			p.Example = e
		}
		p.Count++

		if samplesByApp[e.ApplicationName] < opts.SamplesPerApp {
			samplesByApp[e.ApplicationName]++
			st.Samples = append(st.Samples, e)
		}
	}

	for sev, count := range sevCounts {
		st.Severities = append(st.Severities, SeverityCount{
			Severity: record.Severity(sev),
			Count:    count,
			Percent:  float64(count) * 100 / float64(st.Total),
		})
	}
	sort.Slice(st.Severities, func(i, j int) bool {
		a, b := st.Severities[i], st.Severities[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Severity < b.Severity
	})

	st.Applications = sortedCounts(appCounts)
	st.Containers = sortedCounts(containerCounts)

	for k, count := range pairCounts {
		st.Pairs = append(st.Pairs, PairCount{App: k[0], Container: k[1], Count: count})
	}
	sort.Slice(st.Pairs, func(i, j int) bool {
		a, b := st.Pairs[i], st.Pairs[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		if a.App != b.App {
			return a.App < b.App
		}
		return a.Container < b.Container
	})

	for _, p := range patterns {
		if p.Count > 0 {
			st.ErrorPatterns = append(st.ErrorPatterns, p)
		}
	}

	st.UniqueNamespaces = len(namespaces)
	st.UniqueHosts = len(hosts)

	st.VolumeBinSize, st.Volume = volumeHistogram(selected, st.Start, st.End, opts.VolumeBin)

	return st, nil
}

func sortedCounts(m map[string]int) []Count {
	ret := make([]Count, 0, len(m))
	for name, count := range m {
		ret = append(ret, Count{Name: name, Count: count})
	}

	sort.Slice(ret, func(i, j int) bool {
		if ret[i].Count != ret[j].Count {
			return ret[i].Count > ret[j].Count
		}
		return ret[i].Name < ret[j].Name
	})

	return ret
}

type errorPatternDef struct {
	name     string
	keywords []string
}

// errorPatternDefs are checked in order; the last one catches everything.
var errorPatternDefs = []errorPatternDef{
	{name: "Connection Refused", keywords: []string{"connection refused"}},
	{name: "Timeout", keywords: []string{"timeout"}},
	{name: "Database Issues", keywords: []string{"database", "db"}},
	{name: "Upstream Issues", keywords: []string{"upstream"}},
	{name: "Certificate/TLS Issues", keywords: []string{"certificate", "tls"}},
	{name: "Other Errors"},
}

// classifyError returns an index in errorPatternDefs.
func classifyError(text string) int {
	lower := strings.ToLower(text)
	for i, def := range errorPatternDefs {
		for _, kw := range def.keywords {
			if strings.Contains(lower, kw) {
				return i
			}
		}
	}

	return len(errorPatternDefs) - 1
}

// volumeHistogram counts entries per bin, from the bin containing start to
// the bin containing end, including empty bins.
func volumeHistogram(
	entries []Entry, start, end time.Time, binSize time.Duration,
) (time.Duration, []VolumeBin) {
	if len(entries) == 0 {
		return binSize, nil
	}

	first := start.Truncate(binSize)
	for end.Sub(first)/binSize >= maxVolumeBins {
		binSize *= 2
		first = start.Truncate(binSize)
	}

	numBins := int(end.Sub(first)/binSize) + 1
	bins := make([]VolumeBin, numBins)
	for i := range bins {
		bins[i].Start = first.Add(time.Duration(i) * binSize)
	}

	for _, e := range entries {
		bins[int(e.Timestamp.Sub(first)/binSize)].Count++
	}

	return binSize, bins
}

type appFilter struct {
	globs []glob.Glob
}

func newAppFilter(patterns []string) (*appFilter, error) {
	f := &appFilter{}
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}

		g, err := glob.Compile(p)
		if err != nil {
			return nil, errors.Annotatef(err, "invalid application pattern %q", p)
		}

		f.globs = append(f.globs, g)
	}

	return f, nil
}

func (f *appFilter) match(appName string) bool {
	if len(f.globs) == 0 {
		return true
	}

	for _, g := range f.globs {
		if g.Match(appName) {
			return true
		}
	}

	return false
}
