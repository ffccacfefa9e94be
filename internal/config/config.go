// Package config loads and validates the run configuration of a tile
// reprojection.
package config

import (
	"bytes"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/pspoerri/tilewarp/internal/coord"
	"github.com/pspoerri/tilewarp/internal/encode"
	"github.com/pspoerri/tilewarp/internal/raster"
)

// ErrConfiguration reports an unusable run configuration. It is the only
// error that ends a run with a non-zero exit status.
var ErrConfiguration = errors.New("configuration error")

// ResamplingBilinear is the only supported resampling kind.
const ResamplingBilinear = "bilinear"

// Config holds a reprojection run. Fields mirror the command line flags.
type Config struct {
	InputRoot   string `yaml:"input_root"`
	OutputRoot  string `yaml:"output_root"`
	SrcCRS      string `yaml:"src_crs"`
	DstCRS      string `yaml:"dst_crs"`
	Resampling  string `yaml:"resampling"`
	Engine      string `yaml:"engine"`
	Concurrency int    `yaml:"concurrency"`
	JPEGQuality int    `yaml:"jpeg_quality"`
	WebPQuality int    `yaml:"webp_quality"`

	// WorldFiles writes a sidecar world file next to every output tile.
	WorldFiles bool `yaml:"world_files"`

	// TileMatrix georeferences source tiles that have no world file.
	TileMatrix raster.TileMatrix `yaml:"tile_matrix"`

	// Report is an optional .json, .yaml or .yml file receiving the run summary.
	Report string `yaml:"report"`

	Log Log `yaml:"log"`
}

// Log configures the process logger.
type Log struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// Default returns the stock conversion: UTM zone
// 32N tiles under img/ortho_tiles written as Web Mercator tiles next to them.
func Default() Config {
	return Config{
		InputRoot:   "img/ortho_tiles",
		OutputRoot:  "img/ortho_tiles_3857",
		SrcCRS:      "EPSG:32632",
		DstCRS:      "EPSG:3857",
		Resampling:  ResamplingBilinear,
		Engine:      coord.EngineNative,
		Concurrency: 1,
		JPEGQuality: encode.DefaultJPEGQuality,
		WebPQuality: encode.DefaultWebPQuality,
		WorldFiles:  true,
		Log: Log{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

// Load reads a YAML file over the defaults. Unknown keys are rejected.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrapf(ErrConfiguration, "reading %s: %v", path, err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, errors.Wrapf(ErrConfiguration, "parsing %s: %v", path, err)
	}
	return cfg, nil
}

// Validate checks every field and returns the first problem wrapped in
// ErrConfiguration.
func (c Config) Validate() error {
	if strings.TrimSpace(c.InputRoot) == "" {
		return errors.Wrap(ErrConfiguration, "input root is empty")
	}
	if strings.TrimSpace(c.OutputRoot) == "" {
		return errors.Wrap(ErrConfiguration, "output root is empty")
	}
	if _, err := c.SrcEPSG(); err != nil {
		return err
	}
	if _, err := c.DstEPSG(); err != nil {
		return err
	}
	if c.Resampling != ResamplingBilinear {
		return errors.Wrapf(ErrConfiguration, "resampling %q is not supported (only %s)", c.Resampling, ResamplingBilinear)
	}
	if _, err := coord.NewEngine(c.Engine); err != nil {
		return errors.Wrap(ErrConfiguration, err.Error())
	}
	if c.Concurrency < 1 {
		return errors.Wrapf(ErrConfiguration, "concurrency must be at least 1, got %d", c.Concurrency)
	}
	if c.JPEGQuality < 1 || c.JPEGQuality > 100 {
		return errors.Wrapf(ErrConfiguration, "jpeg quality must be 1-100, got %d", c.JPEGQuality)
	}
	if c.WebPQuality < 0 || c.WebPQuality > 100 {
		return errors.Wrapf(ErrConfiguration, "webp quality must be 0-100, got %d", c.WebPQuality)
	}
	if c.TileMatrix.Resolution < 0 {
		return errors.Wrapf(ErrConfiguration, "tile matrix resolution must be positive, got %g", c.TileMatrix.Resolution)
	}
	if c.Report != "" && ReportFormat(c.Report) == "" {
		return errors.Wrapf(ErrConfiguration, "report %s: extension must be .json, .yaml or .yml", c.Report)
	}
	return nil
}

// SrcEPSG parses SrcCRS.
func (c Config) SrcEPSG() (int, error) { return parseCRS("source", c.SrcCRS) }

// DstEPSG parses DstCRS.
func (c Config) DstEPSG() (int, error) { return parseCRS("destination", c.DstCRS) }

func parseCRS(role, s string) (int, error) {
	code, err := coord.ParseEPSG(s)
	if err != nil {
		return 0, errors.Wrapf(ErrConfiguration, "%s crs: %v", role, err)
	}
	return code, nil
}

// ReportFormat returns "json" or "yaml" for a report path, or "" when the
// extension is not recognised.
func ReportFormat(path string) string {
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".json"):
		return "json"
	case strings.HasSuffix(lower, ".yaml"), strings.HasSuffix(lower, ".yml"):
		return "yaml"
	default:
		return ""
	}
}

// EncodeOptions returns the codec settings.
func (c Config) EncodeOptions() encode.Options {
	return encode.Options{JPEGQuality: c.JPEGQuality, WebPQuality: c.WebPQuality}
}
