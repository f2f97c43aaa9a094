package analyze

import (
	"time"

	"github.com/dimonomid/cxmocklogs/fixture"
	"github.com/dimonomid/cxmocklogs/record"
	"github.com/juju/errors"
	"github.com/valyala/fastjson"
)

// Entry is the part of a log record the analyzer looks at.
type Entry struct {
	Timestamp       time.Time
	ApplicationName string
	SubsystemName   string
	Severity        record.Severity
	Text            string

	// Namespace and Host come from json.kubernetes and are empty if the
	// record has no such metadata.
	Namespace string
	Host      string

	HasErrorDetails bool
}

// LoadFile reads the fixture file (plain or gzipped) and parses all entries.
func LoadFile(path string) ([]Entry, error) {
	data, err := fixture.ReadAll(path)
	if err != nil {
		return nil, errors.Trace(err)
	}

	entries, err := Parse(data)
	if err != nil {
		return nil, errors.Annotatef(err, "loading %s", path)
	}

	return entries, nil
}

// Parse parses a JSON array of log records. Any malformed record fails the
// whole parse.
func Parse(data []byte) ([]Entry, error) {
	var p fastjson.Parser
	v, err := p.ParseBytes(data)
	if err != nil {
		return nil, errors.Annotatef(err, "invalid JSON")
	}

	items, err := v.Array()
	if err != nil {
		return nil, errors.Errorf("expected a JSON array of logs, got %s", v.Type())
	}

	entries := make([]Entry, 0, len(items))
	for i, item := range items {
		entry, err := parseEntry(item)
		if err != nil {
			return nil, errors.Annotatef(err, "log #%d", i)
		}

		entries = append(entries, entry)
	}

	return entries, nil
}

func parseEntry(v *fastjson.Value) (Entry, error) {
	if v.Type() != fastjson.TypeObject {
		return Entry{}, errors.Errorf("expected an object, got %s", v.Type())
	}

	var entry Entry
	var tsStr, sevStr string

	fields := []struct {
		key string
		dst *string
	}{
		{"timestamp", &tsStr},
		{"applicationName", &entry.ApplicationName},
		{"subsystemName", &entry.SubsystemName},
		{"severity", &sevStr},
		{"text", &entry.Text},
	}

	for _, f := range fields {
		s, err := requiredString(v, f.key)
		if err != nil {
			return Entry{}, errors.Trace(err)
		}

		*f.dst = s
	}

	ts, err := record.ParseTime(tsStr)
	if err != nil {
		return Entry{}, errors.Trace(err)
	}

	entry.Timestamp = ts
	entry.Severity = record.Severity(sevStr)

	entry.Namespace = string(v.GetStringBytes("json", "kubernetes", "namespace_name"))
	entry.Host = string(v.GetStringBytes("json", "kubernetes", "host"))

	if details := v.Get("json", "error_details"); details != nil && details.Type() == fastjson.TypeObject {
		entry.HasErrorDetails = true
	}

	return entry, nil
}

func requiredString(v *fastjson.Value, key string) (string, error) {
	fv := v.Get(key)
	if fv == nil {
		return "", errors.Errorf("missing field %q", key)
	}

	b, err := fv.StringBytes()
	if err != nil {
		return "", errors.Errorf("field %q must be a string, got %s", key, fv.Type())
	}

	return string(b), nil
}
