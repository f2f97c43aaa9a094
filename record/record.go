// Package record defines the log record format of the generated fixtures.
// Field names and nesting follow the vendor export format, so they must not
// be renamed.
package record

import (
	"strconv"
	"time"

	"github.com/juju/errors"
)

// TimeLayout is the layout of all timestamps in the fixtures: UTC with
// microsecond precision and a literal "Z".
const TimeLayout = "2006-01-02T15:04:05.000000Z"

type Severity string

const (
	SeverityInfo  Severity = "INFO"
	SeverityWarn  Severity = "WARN"
	SeverityError Severity = "ERROR"
)

// AllSeverities lists severities in the order used by reports.
var AllSeverities = []Severity{SeverityInfo, SeverityWarn, SeverityError}

func (s Severity) Valid() bool {
	switch s {
	case SeverityInfo, SeverityWarn, SeverityError:
		return true
	}

	return false
}

type LogRecord struct {
	Timestamp       Time     `json:"timestamp"`
	ApplicationName string   `json:"applicationName"`
	SubsystemName   string   `json:"subsystemName"`
	Severity        Severity `json:"severity"`
	Text            string   `json:"text"`
	Metadata        Metadata `json:"json"`
}

type Metadata struct {
	Kubernetes   Kubernetes    `json:"kubernetes"`
	AWS          AWS           `json:"aws"`
	ErrorDetails *ErrorDetails `json:"error_details,omitempty"`
}

type Kubernetes struct {
	NamespaceName string `json:"namespace_name"`
	PodName       string `json:"pod_name"`
	ContainerName string `json:"container_name"`
	ContainerID   string `json:"container_id"`
	Host          string `json:"host"`
	Labels        Labels `json:"labels"`
}

type Labels struct {
	App         string `json:"app"`
	Version     string `json:"version"`
	Environment string `json:"environment"`
	Tier        string `json:"tier"`
}

type AWS struct {
	Region         string `json:"region"`
	ClusterName    string `json:"cluster_name"`
	FargateProfile string `json:"fargate_profile"`
}

// ErrorDetails is attached to ERROR records only. The upstream fields are
// set for upstream failures and omitted otherwise.
type ErrorDetails struct {
	ErrorCode                string `json:"error_code"`
	RetryCount               int    `json:"retry_count"`
	LastSuccessfulConnection Time   `json:"last_successful_connection"`

	UpstreamService string `json:"upstream_service,omitempty"`
	StatusCode      int    `json:"status_code,omitempty"`
	ResponseTimeMS  int    `json:"response_time_ms,omitempty"`
}

// Time is a time.Time which is marshaled using TimeLayout.
type Time struct {
	time.Time
}

func NewTime(t time.Time) Time {
	return Time{Time: t.UTC()}
}

func (t Time) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(FormatTime(t.Time))), nil
}

func (t *Time) UnmarshalJSON(data []byte) error {
	s, err := strconv.Unquote(string(data))
	if err != nil {
		return errors.Annotatef(err, "timestamp %s is not a string", data)
	}

	parsed, err := ParseTime(s)
	if err != nil {
		return errors.Trace(err)
	}

	t.Time = parsed
	return nil
}

func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// ParseTime parses a timestamp in TimeLayout; RFC3339 with any fraction and
// offset is accepted too, so that hand-edited fixtures still load.
func ParseTime(s string) (time.Time, error) {
	t, err := time.Parse(TimeLayout, s)
	if err == nil {
		return t, nil
	}

	t, err2 := time.Parse(time.RFC3339Nano, s)
	if err2 != nil {
		return time.Time{}, errors.Errorf("invalid timestamp %q", s)
	}

	return t.UTC(), nil
}
