package analyze

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dimonomid/cxmocklogs/gen"
	"github.com/dimonomid/cxmocklogs/record"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadSample(t *testing.T) []Entry {
	t.Helper()

	entries, err := LoadFile(filepath.Join("testdata", "sample_5.json"))
	require.NoError(t, err)
	return entries
}

func TestLoadSample(t *testing.T) {
	entries := loadSample(t)
	require.Len(t, entries, 5)

	e := entries[1]
	assert.Equal(t, "database", e.ApplicationName)
	assert.Equal(t, "postgres", e.SubsystemName)
	assert.Equal(t, record.SeverityError, e.Severity)
	assert.Equal(t, "database", e.Namespace)
	assert.Equal(t, "10.3.200.41", e.Host)
	assert.True(t, e.HasErrorDetails)
	assert.True(t, e.Timestamp.Equal(time.Date(2025, 7, 1, 7, 0, 42, 100000, time.UTC)))

	assert.False(t, entries[0].HasErrorDetails)
}

func TestLoadErrors(t *testing.T) {
	type testCase struct {
		file    string
		wantErr string
	}

	testCases := []testCase{
		{file: "no_such_file.json", wantErr: "reading"},
		{file: "truncated.json", wantErr: "invalid JSON"},
		{file: "not_array.json", wantErr: "expected a JSON array"},
		{file: "bad_timestamp.json", wantErr: "invalid timestamp"},
		{file: "missing_field.json", wantErr: `missing field "subsystemName"`},
	}

	for _, tc := range testCases {
		t.Run(tc.file, func(t *testing.T) {
			_, err := LoadFile(filepath.Join("testdata", tc.file))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestParseWrongTypes(t *testing.T) {
	_, err := Parse([]byte(`[42]`))
	assert.Error(t, err)

	_, err = Parse([]byte(`[{"timestamp": 1, "applicationName": "a", "subsystemName": "b", "severity": "INFO", "text": ""}]`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `field "timestamp" must be a string`)
}

func TestParseEmptyArray(t *testing.T) {
	entries, err := Parse([]byte("[]\n"))
	require.NoError(t, err)
	assert.Empty(t, entries)

	st, err := Analyze(entries, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 0, st.Total)
	assert.Empty(t, st.Severities)
	assert.Empty(t, st.Volume)

	var buf bytes.Buffer
	st.WriteReport(&buf)
	assert.Contains(t, buf.String(), "Total log entries: 0")
}

func TestAnalyzeSample(t *testing.T) {
	st, err := Analyze(loadSample(t), DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, 5, st.Total)
	assert.Equal(t, []SeverityCount{
		{Severity: record.SeverityError, Count: 2, Percent: 40},
		{Severity: record.SeverityInfo, Count: 2, Percent: 40},
		{Severity: record.SeverityWarn, Count: 1, Percent: 20},
	}, st.Severities)

	assert.Equal(t, []Count{
		{Name: "payment-service", Count: 2},
		{Name: "web-frontend", Count: 2},
		{Name: "database", Count: 1},
	}, st.Applications)

	assert.Equal(t, []Count{
		{Name: "app", Count: 2},
		{Name: "istio-proxy", Count: 1},
		{Name: "nginx", Count: 1},
		{Name: "postgres", Count: 1},
	}, st.Containers)

	assert.Len(t, st.Pairs, 5)
	assert.Equal(t, PairCount{App: "database", Container: "postgres", Count: 1}, st.Pairs[0])

	assert.True(t, st.Start.Equal(time.Date(2025, 7, 1, 7, 0, 1, 250000000, time.UTC)))
	assert.True(t, st.End.Equal(time.Date(2025, 7, 1, 7, 3, 30, 0, time.UTC)))
	assert.Equal(t, 3*time.Minute+28*time.Second+750*time.Millisecond, st.Duration())

	assert.Equal(t, 3, st.UniqueNamespaces)
	assert.Equal(t, 4, st.UniqueHosts)

	assert.Equal(t, 2, st.NumErrors)
	require.Len(t, st.ErrorPatterns, 2)
	assert.Equal(t, "Database Issues", st.ErrorPatterns[0].Name)
	assert.Equal(t, "database", st.ErrorPatterns[0].Example.ApplicationName)
	assert.Equal(t, "Other Errors", st.ErrorPatterns[1].Name)

	require.Len(t, st.Samples, 2)
	assert.Equal(t, "database", st.Samples[0].ApplicationName)
	assert.Equal(t, "payment-service", st.Samples[1].ApplicationName)

	assert.Equal(t, time.Minute, st.VolumeBinSize)
	counts := []int{}
	for _, b := range st.Volume {
		counts = append(counts, b.Count)
	}
	assert.Equal(t, []int{2, 1, 1, 1}, counts)
	assert.True(t, st.Volume[0].Start.Equal(time.Date(2025, 7, 1, 7, 0, 0, 0, time.UTC)))
}

func TestAnalyzeAppFilter(t *testing.T) {
	opts := DefaultOptions()
	opts.AppPatterns = []string{"*-service", " database "}

	st, err := Analyze(loadSample(t), opts)
	require.NoError(t, err)

	assert.Equal(t, 3, st.Total)
	assert.Equal(t, []Count{
		{Name: "payment-service", Count: 2},
		{Name: "database", Count: 1},
	}, st.Applications)
	assert.Equal(t, 2, st.UniqueHosts)

	opts.AppPatterns = []string{"[unclosed"}
	_, err = Analyze(loadSample(t), opts)
	assert.Error(t, err)
}

func TestClassifyError(t *testing.T) {
	type testCase struct {
		text string
		want string
	}

	testCases := []testCase{
		{"dial tcp: connection refused", "Connection Refused"},
		{"Connection timeout (timeout: 12s)", "Timeout"},
		{"Database query timeout (connection_pool_size: 7)", "Timeout"},
		{"Database connection failed", "Database Issues"},
		{"Upstream service unreachable", "Upstream Issues"},
		{"TLS handshake failed", "Certificate/TLS Issues"},
		{"Certificate validation failed", "Certificate/TLS Issues"},
		{"Pod failed to start", "Other Errors"},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.want, errorPatternDefs[classifyError(tc.text)].name, "%q", tc.text)
	}
}

func TestVolumeHistogramWidensBins(t *testing.T) {
	start := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	entries := []Entry{
		{Timestamp: start},
		{Timestamp: start.Add(5 * time.Hour)},
	}

	binSize, bins := volumeHistogram(entries, start, start.Add(5*time.Hour), time.Minute)
	assert.Less(t, len(bins), maxVolumeBins)
	assert.Equal(t, 8*time.Minute, binSize)

	total := 0
	for _, b := range bins {
		total += b.Count
	}
	assert.Equal(t, 2, total)
}

func TestExcerpt(t *testing.T) {
	assert.Equal(t, "short", excerpt("short", 10))
	assert.Equal(t, "abc...", excerpt("abcdef", 3))

	// Combining marks stay with their base character.
	assert.Equal(t, "éé...", excerpt("ééé", 2))
}

func TestWriteReport(t *testing.T) {
	st, err := Analyze(loadSample(t), DefaultOptions())
	require.NoError(t, err)

	var buf bytes.Buffer
	st.WriteReport(&buf)
	out := buf.String()

	for _, want := range []string{
		reportTitle,
		"Total log entries: 5",
		"Applications (3 total):",
		"  payment-service  2 logs\n",
		"  database         1 logs\n",
		"Containers/Subsystems (4 total):",
		"Application/Container pairs (5 total):",
		"  payment-service/istio-proxy  1 logs\n",
		"Severity Distribution:",
		"  WARN   1 logs (20.0%)\n",
		"Error Analysis (2 errors):",
		"  Database Issues: 1 errors",
		"    Example: Database connection failed (connection_pool_size: 17)",
		"  Start: 2025-07-01 07:00:01 UTC",
		"  End: 2025-07-01 07:03:30 UTC",
		"  Duration: 3m28.75s",
		"Volume (per 1m0s):",
		"  07:00 ",
		"Unique namespaces: 3",
		"Unique Fargate hosts: 4",
		"  database/postgres ERROR:",
		"     Time: 2025-07-01T07:02:59.999999Z",
	} {
		assert.Contains(t, out, want)
	}

	assert.Less(t, strings.Index(out, "Applications"), strings.Index(out, "Severity Distribution"))
	assert.Less(t, strings.Index(out, "Time Range"), strings.Index(out, "Sample Error Entries"))
}

func TestRoundTripWithGenerator(t *testing.T) {
	for _, name := range []string{"logs.json", "logs.json.gz"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)

			p := gen.DefaultParams()
			p.NumLogs = 1000
			p.RandomSeed = 99

			res, err := gen.GenerateToFile(p, path)
			require.NoError(t, err)

			entries, err := LoadFile(path)
			require.NoError(t, err)

			st, err := Analyze(entries, DefaultOptions())
			require.NoError(t, err)

			assert.Equal(t, 1000, st.Total)
			for _, sev := range record.AllSeverities {
				assert.Equal(t, res.SeverityCounts[sev], st.SeverityCount(sev), "%s", sev)
			}
			for app, count := range res.AppCounts {
				found := false
				for _, c := range st.Applications {
					if c.Name == app {
						assert.Equal(t, count, c.Count, "%s", app)
						found = true
					}
				}
				assert.True(t, found, "%s", app)
			}

			for _, e := range entries {
				assert.Equal(t, e.Severity == record.SeverityError, e.HasErrorDetails)
			}

			assert.True(t, st.Start.Equal(res.Records[0].Timestamp.Truncate(time.Microsecond)))
		})
	}
}

func TestHundredRecordSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample_100.json")

	p := gen.DefaultParams()
	p.NumLogs = 100
	p.RandomSeed = 100
	_, err := gen.GenerateToFile(p, path)
	require.NoError(t, err)

	var reports []string
	for i := 0; i < 2; i++ {
		entries, err := LoadFile(path)
		require.NoError(t, err)

		st, err := Analyze(entries, DefaultOptions())
		require.NoError(t, err)
		assert.Equal(t, 100, st.Total)

		sum := 0
		for _, sc := range st.Severities {
			sum += sc.Count
		}
		assert.Equal(t, 100, sum)

		var buf bytes.Buffer
		st.WriteReport(&buf)
		reports = append(reports, buf.String())
	}

	assert.Equal(t, reports[0], reports[1])
}

func TestZeroRecordFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.json")

	p := gen.DefaultParams()
	p.NumLogs = 0
	p.RandomSeed = 1
	_, err := gen.GenerateToFile(p, path)
	require.NoError(t, err)

	entries, err := LoadFile(path)
	require.NoError(t, err)

	st, err := Analyze(entries, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 0, st.Total)
}
