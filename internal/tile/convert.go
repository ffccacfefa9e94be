// Package tile drives the reprojection of a tile pyramid: it reads source
// tiles, warps them into the destination CRS, writes them back in their
// source format and tracks the outcome of every tile.
package tile

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/pspoerri/tilewarp/internal/config"
	"github.com/pspoerri/tilewarp/internal/coord"
	"github.com/pspoerri/tilewarp/internal/pyramid"
	"github.com/pspoerri/tilewarp/internal/raster"
	"github.com/pspoerri/tilewarp/internal/warp"
)

// Converter reprojects single tiles.
type Converter struct {
	Reader  *Reader
	Writer  *Writer
	Engine  coord.Engine
	DstEPSG int
	Logger  *slog.Logger
}

// NewConverter builds a converter from a validated configuration.
func NewConverter(cfg config.Config, logger *slog.Logger) (*Converter, error) {
	src, err := cfg.SrcEPSG()
	if err != nil {
		return nil, err
	}
	dst, err := cfg.DstEPSG()
	if err != nil {
		return nil, err
	}
	eng, err := coord.NewEngine(cfg.Engine)
	if err != nil {
		return nil, errors.Wrap(config.ErrConfiguration, err.Error())
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Converter{
		Reader:  &Reader{EPSG: src, TileMatrix: cfg.TileMatrix, Options: cfg.EncodeOptions()},
		Writer:  &Writer{Options: cfg.EncodeOptions(), WorldFiles: cfg.WorldFiles},
		Engine:  eng,
		DstEPSG: dst,
		Logger:  logger,
	}, nil
}

// ConvertTile reads, plans, resamples and writes one tile.
func (c *Converter) ConvertTile(job pyramid.Job) error {
	src, err := c.Reader.Read(job)
	if err != nil {
		return err
	}
	dst, err := warp.Plan(src.Grid, c.DstEPSG, c.Engine)
	if err != nil {
		return err
	}
	out, stats, err := warp.Resample(src, dst, c.Engine)
	if err != nil {
		return err
	}
	c.Logger.Debug("resampled tile",
		"tile", job.String(),
		"src", fmt.Sprintf("%dx%d", src.Width, src.Height),
		"dst", fmt.Sprintf("%dx%d", dst.Width, dst.Height),
		"pixel_size", pixelSize(dst.Transform),
		"nodata", stats.NoData)
	return c.Writer.Write(out, job)
}

func pixelSize(t raster.Affine) string {
	sx, sy := t.PixelSize()
	return fmt.Sprintf("%.3fx%.3f", sx, sy)
}

// Convert reprojects every tile under cfg.InputRoot into cfg.OutputRoot.
//
// Tile failures are recorded in the summary and never stop the run. The
// returned error is non-nil only for configuration problems or when ctx is
// cancelled, in which case the summary covers the tiles attempted so far.
// progress, when non-nil, receives one line per tile.
func Convert(ctx context.Context, cfg config.Config, progress io.Writer, logger *slog.Logger) (Summary, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := cfg.Validate(); err != nil {
		return Summary{OutputRoot: cfg.OutputRoot}, err
	}
	conv, err := NewConverter(cfg, logger)
	if err != nil {
		return Summary{OutputRoot: cfg.OutputRoot}, err
	}

	tracker := NewTracker(func(o Outcome) {
		if progress != nil {
			fmt.Fprintln(progress, ProgressLine(o))
		}
		if o.Status == StatusFailed {
			logger.Warn("tile failed", "tile", o.Tile, "kind", o.Kind, "error", o.Err)
		}
	})
	walker := &pyramid.Walker{InputRoot: cfg.InputRoot, OutputRoot: cfg.OutputRoot, Logger: logger}
	zooms, err := walker.Zooms()
	if err != nil {
		return Summary{OutputRoot: cfg.OutputRoot}, err
	}
	logger.Info("found zoom levels", "input", cfg.InputRoot, "zooms", zooms)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Concurrency)

	zoom := -1
	_, walkErr := walker.Walk(func(job pyramid.Job) error {
		if err := gctx.Err(); err != nil {
			return err
		}
		if z := int(job.Z); z != zoom {
			zoom = z
			logger.Info("converting zoom level", "z", z)
		}
		if cfg.Concurrency == 1 {
			tracker.Record(job.Address, conv.ConvertTile(job))
			return nil
		}
		g.Go(func() error {
			tracker.Record(job.Address, conv.ConvertTile(job))
			return nil
		})
		return nil
	})
	g.Wait()

	summary := tracker.Finalize(cfg.OutputRoot)
	if walkErr != nil {
		return summary, walkErr
	}
	if err := ctx.Err(); err != nil {
		return summary, err
	}
	logger.Info("conversion finished",
		"total", summary.Total,
		"converted", summary.Converted,
		"failed", summary.Failed,
		"elapsed", summary.Elapsed)
	return summary, nil
}
