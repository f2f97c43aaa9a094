package record

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatTime(t *testing.T) {
	ts := time.Date(2025, 7, 1, 7, 0, 0, 123456789, time.UTC)
	assert.Equal(t, "2025-07-01T07:00:00.123456Z", FormatTime(ts))

	// Non-UTC input is converted, never printed with an offset.
	loc := time.FixedZone("UTC+2", 2*3600)
	assert.Equal(t, "2025-07-01T07:00:00.000000Z", FormatTime(time.Date(2025, 7, 1, 9, 0, 0, 0, loc)))
}

func TestParseTime(t *testing.T) {
	type testCase struct {
		in      string
		want    time.Time
		wantErr bool
	}

	testCases := []testCase{
		{
			in:   "2025-07-01T07:00:00.123456Z",
			want: time.Date(2025, 7, 1, 7, 0, 0, 123456000, time.UTC),
		},
		{
			in:   "2025-07-01T07:00:00Z",
			want: time.Date(2025, 7, 1, 7, 0, 0, 0, time.UTC),
		},
		{
			in:   "2025-07-01T09:00:00.5+02:00",
			want: time.Date(2025, 7, 1, 7, 0, 0, 500000000, time.UTC),
		},
		{in: "Jul 1 07:00:00", wantErr: true},
		{in: "", wantErr: true},
	}

	for i, tc := range testCases {
		got, err := ParseTime(tc.in)
		if tc.wantErr {
			assert.Error(t, err, "testCase #%d (%q)", i, tc.in)
			continue
		}

		require.NoError(t, err, "testCase #%d (%q)", i, tc.in)
		assert.True(t, tc.want.Equal(got), "testCase #%d: want %s, got %s", i, tc.want, got)
	}
}

func TestLogRecordJSONShape(t *testing.T) {
	ts := time.Date(2025, 7, 1, 7, 0, 0, 0, time.UTC)
	rec := LogRecord{
		Timestamp:       NewTime(ts),
		ApplicationName: "database",
		SubsystemName:   "postgres",
		Severity:        SeverityError,
		Text:            "Database connection failed",
		Metadata: Metadata{
			Kubernetes: Kubernetes{
				NamespaceName: "database",
				PodName:       "database-postgres-0123456789",
				ContainerName: "postgres",
				Host:          "10.0.0.1",
				Labels:        Labels{App: "database", Tier: "database"},
			},
			AWS: AWS{Region: "us-west-2"},
			ErrorDetails: &ErrorDetails{
				ErrorCode:                "TIMEOUT",
				RetryCount:               2,
				LastSuccessfulConnection: NewTime(ts.Add(-5 * time.Minute)),
			},
		},
	}

	data, err := json.Marshal(rec)
	require.NoError(t, err)

	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &m))

	assert.Equal(t, "2025-07-01T07:00:00.000000Z", m["timestamp"])
	assert.Equal(t, "database", m["applicationName"])
	assert.Equal(t, "postgres", m["subsystemName"])
	assert.Equal(t, "ERROR", m["severity"])

	meta, ok := m["json"].(map[string]interface{})
	require.True(t, ok, "json should be an object")
	k8s := meta["kubernetes"].(map[string]interface{})
	assert.Equal(t, "database-postgres-0123456789", k8s["pod_name"])
	assert.Equal(t, "us-west-2", meta["aws"].(map[string]interface{})["region"])

	details := meta["error_details"].(map[string]interface{})
	assert.Equal(t, "2025-07-01T06:55:00.000000Z", details["last_successful_connection"])
	assert.NotContains(t, details, "upstream_service")
	assert.NotContains(t, details, "status_code")

	var back LogRecord
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, back.Timestamp.Equal(ts))
	require.NotNil(t, back.Metadata.ErrorDetails)
	assert.Equal(t, "TIMEOUT", back.Metadata.ErrorDetails.ErrorCode)
}

func TestNoErrorDetailsForInfo(t *testing.T) {
	data, err := json.Marshal(LogRecord{Severity: SeverityInfo})
	require.NoError(t, err)
	assert.NotContains(t, string(data), "error_details")
}

func TestSeverityValid(t *testing.T) {
	for _, s := range AllSeverities {
		assert.True(t, s.Valid(), "%s", s)
	}
	assert.False(t, Severity("DEBUG").Valid())
	assert.False(t, Severity("info").Valid())
}
