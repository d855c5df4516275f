// Package config loads the engine configuration from a YAML file and maps
// it onto the pipeline options. Absent keys fall back to the defaults, so a
// partial file only overrides what it names.
package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/plattline/gencanon/core/document"
	"github.com/plattline/gencanon/core/errors"
	"github.com/plattline/gencanon/core/place"
)

// Config is the on-disk configuration shape. Boolean toggles use pointers
// so that an absent key is distinguishable from an explicit false.
type Config struct {
	EnablePlaceVersions        *bool    `yaml:"enable_place_versions"`
	EnableEventPlaceRefs       *bool    `yaml:"enable_event_place_refs"`
	AllowMultiplePlaceRefs     *bool    `yaml:"allow_multiple_place_refs_per_event"`
	DefaultJurisdictionSystem  string   `yaml:"default_jurisdiction_system"`
	JurisdictionSystemsEnabled []string `yaml:"jurisdiction_systems_enabled"`

	Temporal struct {
		Bucket            string `yaml:"bucket"`
		OpenEndedFallback *bool  `yaml:"open_ended_fallback"`
	} `yaml:"temporal"`

	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"logging"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{}
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read config %s", path)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "parse config %s", path)
	}
	return cfg, nil
}

// VersionOptions maps the configuration onto the version-builder options,
// starting from the defaults and applying only the keys the file set.
func (c *Config) VersionOptions() place.VersionOptions {
	opts := place.DefaultVersionOptions()
	if c == nil {
		return opts
	}
	if c.EnablePlaceVersions != nil {
		opts.EnablePlaceVersions = *c.EnablePlaceVersions
	}
	if c.EnableEventPlaceRefs != nil {
		opts.EnableEventPlaceRefs = *c.EnableEventPlaceRefs
	}
	if c.AllowMultiplePlaceRefs != nil {
		opts.AllowMultiplePlaceRefs = *c.AllowMultiplePlaceRefs
	}
	if c.DefaultJurisdictionSystem != "" {
		opts.DefaultJurisdictionSystem = c.DefaultJurisdictionSystem
	}
	if len(c.JurisdictionSystemsEnabled) > 0 {
		opts.JurisdictionSystemsEnabled = c.JurisdictionSystemsEnabled
	}
	if c.Temporal.Bucket != "" {
		opts.Bucket = document.TemporalBucket(c.Temporal.Bucket)
	}
	if c.Temporal.OpenEndedFallback != nil {
		opts.OpenEndedFallback = *c.Temporal.OpenEndedFallback
	}
	return opts
}
