package main

import (
	"io/ioutil"
	"os"
	"time"

	"github.com/dimonomid/cxmocklogs/gen"
	"github.com/dimonomid/cxmocklogs/record"
	"github.com/juju/errors"
	"gopkg.in/yaml.v2"
)

// GenConfig is the optional YAML config of the generator. Unset fields keep
// the defaults; flags given explicitly override the config.
type GenConfig struct {
	Count  *int   `yaml:"count"`
	Output string `yaml:"output"`
	Seed   int64  `yaml:"seed"`

	// StartTime is in RFC3339, e.g. "2025-07-01T07:00:00Z".
	StartTime string `yaml:"start_time"`
	// TimeSpan is a Go duration, e.g. "17m".
	TimeSpan string `yaml:"time_span"`

	SeverityMode    string               `yaml:"severity_mode"`
	SeverityWeights *gen.SeverityWeights `yaml:"severity_weights"`

	Cloud ConfigCloud `yaml:"cloud"`
}

type ConfigCloud struct {
	Region         string `yaml:"region"`
	ClusterName    string `yaml:"cluster_name"`
	FargateProfile string `yaml:"fargate_profile"`
}

func LoadGenConfigFromFile(path string) (*GenConfig, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Annotatef(err, "opening config file: %s", path)
	}
	defer file.Close()

	data, err := ioutil.ReadAll(file)
	if err != nil {
		return nil, errors.Annotatef(err, "reading config file %s", path)
	}

	var cfg GenConfig
	if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
		return nil, errors.Annotatef(err, "unmarshaling yaml from %s", path)
	}

	// Make sure the config is not obviously invalid before generating
	// anything.
	if cfg.Count != nil && *cfg.Count < 0 {
		return nil, errors.Errorf("%s: count must not be negative", path)
	}

	if cfg.SeverityMode != "" {
		if _, ok := gen.AllSeverityModes[gen.SeverityMode(cfg.SeverityMode)]; !ok {
			return nil, errors.Errorf(
				"%s: invalid severity_mode %q; valid options are: %s, %s",
				path, cfg.SeverityMode, gen.SeverityModeFixed, gen.SeverityModePerApp,
			)
		}
	}

	return &cfg, nil
}

// Apply overrides params and output with the values set in the config.
func (cfg *GenConfig) Apply(p *gen.Params, output *string) error {
	if cfg.Count != nil {
		p.NumLogs = *cfg.Count
	}

	if cfg.Output != "" {
		*output = cfg.Output
	}

	if cfg.Seed != 0 {
		p.RandomSeed = cfg.Seed
	}

	if cfg.StartTime != "" {
		t, err := time.Parse(time.RFC3339Nano, cfg.StartTime)
		if err != nil {
			return errors.Annotatef(err, "parsing start_time")
		}
		p.StartTime = t.UTC()
	}

	if cfg.TimeSpan != "" {
		d, err := time.ParseDuration(cfg.TimeSpan)
		if err != nil {
			return errors.Annotatef(err, "parsing time_span")
		}
		p.TimeSpan = d
	}

	if cfg.SeverityMode != "" {
		p.SeverityMode = gen.SeverityMode(cfg.SeverityMode)
	}

	if cfg.SeverityWeights != nil {
		p.SeverityWeights = *cfg.SeverityWeights
	}

	p.Cloud = mergeCloud(p.Cloud, record.AWS{
		Region:         cfg.Cloud.Region,
		ClusterName:    cfg.Cloud.ClusterName,
		FargateProfile: cfg.Cloud.FargateProfile,
	})

	return nil
}

func mergeCloud(base, override record.AWS) record.AWS {
	if override.Region != "" {
		base.Region = override.Region
	}
	if override.ClusterName != "" {
		base.ClusterName = override.ClusterName
	}
	if override.FargateProfile != "" {
		base.FargateProfile = override.FargateProfile
	}

	return base
}
