package config

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/c9s/trendplay/pkg/playback"
	"github.com/c9s/trendplay/pkg/trendline"
	"github.com/c9s/trendplay/pkg/types"
)

const (
	FormatBinance = "binance"
	FormatYahoo   = "yahoo"
	FormatParquet = "parquet"
)

type Source struct {
	// Paths are used when no file is given on the command line.
	Paths PathList `json:"paths,omitempty" yaml:"paths,omitempty"`

	// Format is binance, yahoo or parquet. Empty means detect from the
	// file extension.
	Format   string         `json:"format,omitempty" yaml:"format,omitempty"`
	Interval types.Interval `json:"interval,omitempty" yaml:"interval,omitempty"`

	IncludeZeroVolume bool `json:"includeZeroVolume" yaml:"includeZeroVolume"`
}

type Playback struct {
	playback.Config `yaml:",inline"`

	Speed playback.Speed `json:"speed,omitempty" yaml:"speed,omitempty"`

	Width        int    `json:"width" yaml:"width"`
	Height       int    `json:"height" yaml:"height"`
	ShowBaseline bool   `json:"baseline" yaml:"baseline"`
	Output       string `json:"output,omitempty" yaml:"output,omitempty"`
}

// Resolved returns the sequencer config with the speed preset applied.
func (p Playback) Resolved() (playback.Config, error) {
	if p.Speed == "" {
		return p.Config, nil
	}
	return p.Config.WithSpeed(p.Speed)
}

type Config struct {
	Source    Source           `json:"source" yaml:"source"`
	Detection trendline.Config `json:"detection" yaml:"detection"`
	Playback  Playback         `json:"playback" yaml:"playback"`
}

func Default() *Config {
	return &Config{
		Source: Source{
			IncludeZeroVolume: true,
		},
		Detection: trendline.DefaultConfig(),
		Playback: Playback{
			Config: playback.DefaultConfig(),
			Width:  1024,
			Height: 576,
		},
	}
}

// Load reads the YAML file over the defaults, so omitted keys keep their
// default values.
func Load(configFile string) (*Config, error) {
	content, err := os.ReadFile(configFile)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to read config file %s", configFile)
	}

	return Parse(content)
}

func Parse(content []byte) (*Config, error) {
	config := Default()

	decoder := yaml.NewDecoder(bytes.NewReader(content))
	decoder.KnownFields(true)
	if err := decoder.Decode(config); err != nil && err != io.EOF {
		return nil, errors.Wrap(err, "unable to parse config")
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) Validate() (err error) {
	switch c.Source.Format {
	case "", FormatBinance, FormatYahoo, FormatParquet:
	default:
		err = multierr.Append(err, fmt.Errorf("unknown source format %q", c.Source.Format))
	}

	if c.Source.Interval != "" {
		if _, ok := types.SupportedIntervals[c.Source.Interval]; !ok {
			err = multierr.Append(err, fmt.Errorf("unsupported interval %q", c.Source.Interval))
		}
	}

	err = multierr.Append(err, c.Detection.Validate())

	resolved, speedErr := c.Playback.Resolved()
	err = multierr.Append(err, speedErr)
	if speedErr == nil {
		err = multierr.Append(err, resolved.Validate())
	}

	if c.Playback.Width < 0 || c.Playback.Height < 0 {
		err = multierr.Append(err, fmt.Errorf("image size %dx%d must not be negative", c.Playback.Width, c.Playback.Height))
	}

	return err
}

func (c *Config) YAML() ([]byte, error) {
	var buf bytes.Buffer
	var enc = yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	err := enc.Encode(c)
	return buf.Bytes(), err
}
