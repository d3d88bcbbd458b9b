package main

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/panzi/pixbufloader-vtf/export"
	"github.com/panzi/pixbufloader-vtf/loader"
	"github.com/panzi/pixbufloader-vtf/web"
)

// Config is the --config file. Flags given on the command line override
// the file.
type Config struct {
	ListenAddress      string   `yaml:"listen_address"`
	DebugListenAddress string   `yaml:"debug_listen_address"`
	BaseURL            string   `yaml:"base_url"` // used in sitemap.xml
	TexturePath        []string `yaml:"texture_path"`

	Cache struct {
		MaxAge time.Duration `yaml:"max_age"` // e.g. "10h"
	} `yaml:"cache"`

	Decode struct {
		ChunkSize      int    `yaml:"chunk_size"`
		MaxUploadBytes int64  `yaml:"max_upload_bytes"`
		Quantizer      string `yaml:"quantizer"` // mediancut or gogif
	} `yaml:"decode"`

	Limits struct {
		MaxBufferBytes int   `yaml:"max_buffer_bytes"`
		MaxRasterBytes int64 `yaml:"max_raster_bytes"`
	} `yaml:"limits"`
}

func defaultConfig() *Config {
	c := &Config{ListenAddress: ":8080"}
	c.Cache.MaxAge = 10 * time.Hour
	c.Decode.Quantizer = "mediancut"
	return c
}

// LoadConfig reads a YAML config over the defaults.
func LoadConfig(path string) (*Config, error) {
	c := defaultConfig()
	if path == "" {
		return c, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, errors.Wrapf(err, "failed to parse config %s", path)
	}
	if err := c.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid config %s", path)
	}
	return c, nil
}

func (c *Config) Validate() error {
	if c.ListenAddress == "" {
		return errors.New("listen_address is empty")
	}
	if c.Cache.MaxAge < 0 {
		return errors.Errorf("cache.max_age %v is negative", c.Cache.MaxAge)
	}
	if c.Decode.ChunkSize < 0 || c.Decode.MaxUploadBytes < 0 {
		return errors.New("decode sizes must not be negative")
	}
	if c.Limits.MaxBufferBytes < 0 || c.Limits.MaxRasterBytes < 0 {
		return errors.New("limits must not be negative")
	}
	if _, err := export.ParseQuantizer(c.Decode.Quantizer); err != nil {
		return err
	}
	return nil
}

// HandlerOptions translates the decode and cache sections.
func (c *Config) HandlerOptions() web.Options {
	q, _ := export.ParseQuantizer(c.Decode.Quantizer)
	return web.Options{
		MaxAge:         c.Cache.MaxAge,
		ChunkSize:      c.Decode.ChunkSize,
		MaxUploadBytes: c.Decode.MaxUploadBytes,
		Quantizer:      q,
	}
}

// LoaderLimits returns the limits section; zero fields select the loader
// defaults.
func (c *Config) LoaderLimits() loader.Limits {
	return loader.Limits{
		MaxBufferBytes: c.Limits.MaxBufferBytes,
		MaxRasterBytes: c.Limits.MaxRasterBytes,
	}
}
