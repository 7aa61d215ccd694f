// Package config loads run defaults from an optional YAML file and DUPSWEEP_
// environment variables. Command line flags are applied on top by the caller.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/kelseyhightower/envconfig"
	"github.com/yuya-takeyama/dupsweep/pkg/digest"
	"gopkg.in/yaml.v3"
)

const EnvPrefix = "DUPSWEEP"

// Config holds defaults for the command line flags of the same name
type Config struct {
	Workers     int      `envconfig:"DUPSWEEP_WORKERS"       yaml:"workers"`
	Algorithm   string   `envconfig:"DUPSWEEP_ALGORITHM"     yaml:"algorithm"`
	Excludes    []string `envconfig:"DUPSWEEP_EXCLUDES"      yaml:"excludes"`
	Progress    bool     `envconfig:"DUPSWEEP_PROGRESS"      yaml:"progress"`
	ReportFile  string   `envconfig:"DUPSWEEP_REPORT_FILE"   yaml:"reportFile"`
	ReportS3URI string   `envconfig:"DUPSWEEP_REPORT_S3_URI" yaml:"reportS3URI"`
	Profile     string   `envconfig:"DUPSWEEP_PROFILE"       yaml:"profile"`
	Region      string   `envconfig:"DUPSWEEP_REGION"        yaml:"region"`
}

// Load reads the file named by DUPSWEEP_CONFIG_FILE, when set, and then
// overlays the environment.
func Load() (*Config, error) {
	var c Config

	if configFile := os.Getenv(EnvPrefix + "_CONFIG_FILE"); configFile != "" {
		data, err := os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}

		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("unmarshaling config file: %w", err)
		}
	}

	if err := envconfig.Process(EnvPrefix, &c); err != nil {
		return nil, fmt.Errorf("parsing environment variables: %w", err)
	}

	if c.Algorithm == "" {
		c.Algorithm = string(digest.DefaultAlgorithm)
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("invalid configuration: workers must not be negative: %d", c.Workers)
	}
	if _, err := digest.ParseAlgorithm(c.Algorithm); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
