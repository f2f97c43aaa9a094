package testutils

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v2"
)

// MyTime is a time which can be given in test case yaml files as a string
// like "2025-07-01T07:00:00Z".
type MyTime struct {
	time.Time
}

var _ yaml.Unmarshaler = &MyTime{}

func (mt *MyTime) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var str string
	if err := unmarshal(&str); err != nil {
		return err
	}

	if str == "" {
		mt.Time = time.Time{}
		return nil
	}

	t, err := time.Parse(time.RFC3339Nano, str)
	if err != nil {
		return fmt.Errorf("invalid time format: %q", str)
	}

	mt.Time = t.UTC()
	return nil
}
