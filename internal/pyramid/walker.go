// Package pyramid discovers tiles in a <root>/<z>/<x>/<y>.<ext> tree and
// mirrors the directory layout under an output root.
package pyramid

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/paulmach/orb/maptile"
	"github.com/pkg/errors"

	"github.com/pspoerri/tilewarp/internal/config"
	"github.com/pspoerri/tilewarp/internal/encode"
)

// Address identifies a tile by its pyramid position and file extension.
type Address struct {
	maptile.Tile
	Ext string
}

// NewAddress builds an address from raw z/x/y values.
func NewAddress(z, x, y uint32, ext string) Address {
	return Address{Tile: maptile.New(x, y, maptile.Zoom(z)), Ext: ext}
}

// String returns the relative path "z/x/y.ext".
func (a Address) String() string {
	return fmt.Sprintf("%d/%d/%d.%s", a.Z, a.X, a.Y, a.Ext)
}

// Path joins the address to a pyramid root.
func (a Address) Path(root string) string {
	return filepath.Join(root, strconv.FormatUint(uint64(a.Z), 10),
		strconv.FormatUint(uint64(a.X), 10), fmt.Sprintf("%d.%s", a.Y, a.Ext))
}

// Job is one discovered tile with its source and mirrored output paths.
type Job struct {
	Address
	SrcPath string
	OutPath string
}

// Walker walks an input pyramid.
type Walker struct {
	InputRoot  string
	OutputRoot string
	Logger     *slog.Logger
}

func (w *Walker) logger() *slog.Logger {
	if w.Logger != nil {
		return w.Logger
	}
	return slog.Default()
}

type level struct {
	z    uint32
	name string
}

// Zooms lists the integer zoom directories of the input root, ascending.
// A missing root, or one without any zoom directory, is a configuration error.
func (w *Walker) Zooms() ([]uint32, error) {
	levels, err := w.levels()
	if err != nil {
		return nil, err
	}
	zs := make([]uint32, len(levels))
	for i, l := range levels {
		zs[i] = l.z
	}
	return zs, nil
}

func (w *Walker) levels() ([]level, error) {
	info, err := os.Stat(w.InputRoot)
	if err != nil {
		return nil, errors.Wrapf(config.ErrConfiguration, "input root %s: %v", w.InputRoot, err)
	}
	if !info.IsDir() {
		return nil, errors.Wrapf(config.ErrConfiguration, "input root %s is not a directory", w.InputRoot)
	}
	entries, err := os.ReadDir(w.InputRoot)
	if err != nil {
		return nil, errors.Wrapf(config.ErrConfiguration, "input root %s: %v", w.InputRoot, err)
	}

	var levels []level
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		z, ok := parseIndex(e.Name())
		if !ok {
			continue
		}
		levels = append(levels, level{z: z, name: e.Name()})
	}
	if len(levels) == 0 {
		return nil, errors.Wrapf(config.ErrConfiguration, "input root %s has no zoom directories", w.InputRoot)
	}
	sort.Slice(levels, func(i, j int) bool { return levels[i].z < levels[j].z })
	return levels, nil
}

// Walk calls fn for every tile, zoom levels in ascending order. The mirrored
// <out>/<z>/<x> directory exists before the first tile of an x directory is
// yielded. Walk stops at the first error returned by fn and returns it along
// with the number of tiles yielded so far.
func (w *Walker) Walk(fn func(Job) error) (int, error) {
	levels, err := w.levels()
	if err != nil {
		return 0, err
	}
	log := w.logger()

	n := 0
	for _, l := range levels {
		zdir := filepath.Join(w.InputRoot, l.name)
		xdirs, err := os.ReadDir(zdir)
		if err != nil {
			log.Warn("skipping unreadable zoom directory", "dir", zdir, "error", err)
			continue
		}
		for _, xd := range xdirs {
			if !xd.IsDir() {
				continue
			}
			x, ok := parseIndex(xd.Name())
			if !ok {
				log.Warn("skipping non-numeric x directory", "dir", filepath.Join(zdir, xd.Name()))
				continue
			}
			xdir := filepath.Join(zdir, xd.Name())
			tiles, err := tilesIn(xdir)
			if err != nil {
				log.Warn("skipping unreadable x directory", "dir", xdir, "error", err)
				continue
			}
			if len(tiles) == 0 {
				log.Warn("no tiles in x directory", "dir", xdir)
				continue
			}

			outDir := filepath.Join(w.OutputRoot, strconv.FormatUint(uint64(l.z), 10), strconv.FormatUint(uint64(x), 10))
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				// The writes below fail individually and are recorded per tile.
				log.Warn("creating output directory", "dir", outDir, "error", err)
			}

			for _, t := range tiles {
				addr := NewAddress(l.z, x, t.y, t.ext)
				job := Job{
					Address: addr,
					SrcPath: filepath.Join(xdir, t.name),
					OutPath: filepath.Join(outDir, fmt.Sprintf("%d.%s", t.y, t.ext)),
				}
				n++
				if err := fn(job); err != nil {
					return n, err
				}
			}
		}
	}
	return n, nil
}

type tileFile struct {
	name string
	y    uint32
	ext  string
}

func tilesIn(dir string) ([]tileFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var tiles []tileFile
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		ext := filepath.Ext(name)
		if ext == "" || !encode.Supported(ext) {
			continue
		}
		y, ok := parseIndex(strings.TrimSuffix(name, ext))
		if !ok {
			continue
		}
		tiles = append(tiles, tileFile{name: name, y: y, ext: strings.TrimPrefix(ext, ".")})
	}
	return tiles, nil
}

// parseIndex accepts plain non-negative decimal integers.
func parseIndex(s string) (uint32, bool) {
	if s == "" || s[0] == '+' {
		return 0, false
	}
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, false
	}
	return uint32(v), true
}
