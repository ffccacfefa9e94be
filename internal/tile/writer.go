package tile

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/pspoerri/tilewarp/internal/encode"
	"github.com/pspoerri/tilewarp/internal/pyramid"
	"github.com/pspoerri/tilewarp/internal/raster"
)

// ErrWrite reports a tile that could not be encoded or persisted.
var ErrWrite = errors.New("tile write failed")

// Writer persists reprojected rasters in the format of their source tile.
type Writer struct {
	Options encode.Options

	// WorldFiles also writes a sidecar world file (.pgw, .jgw, .wpw) holding
	// the destination transform.
	WorldFiles bool
}

// Write encodes r to job.OutPath. The tile is written to a hidden temporary
// file in the same directory and renamed into place, so readers never see a
// partial tile. On failure nothing is left behind.
func (w *Writer) Write(r *raster.Raster, job pyramid.Job) error {
	codec, err := encode.ForExtension(job.Ext, w.Options)
	if err != nil {
		return errors.Wrapf(ErrWrite, "%s: %v", job.OutPath, err)
	}
	img, err := raster.ToImage(r)
	if err != nil {
		return errors.Wrap(err, job.OutPath)
	}

	dir := filepath.Dir(job.OutPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(ErrWrite, "%v", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(job.OutPath)+".*.tmp")
	if err != nil {
		return errors.Wrapf(ErrWrite, "%v", err)
	}
	tmpPath := tmp.Name()

	err = codec.Encode(tmp, img)
	if err == nil {
		err = tmp.Sync()
	}
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Rename(tmpPath, job.OutPath)
	}
	if err != nil {
		os.Remove(tmpPath)
		return errors.Wrapf(ErrWrite, "writing %s: %v", job.OutPath, err)
	}

	if !w.WorldFiles {
		return nil
	}
	sidecar := WorldFilePath(job.OutPath)
	if err := writeWorldFile(sidecar, r.Transform); err != nil {
		os.Remove(job.OutPath)
		os.Remove(sidecar)
		return errors.Wrapf(ErrWrite, "writing %s: %v", sidecar, err)
	}
	return nil
}

// WorldFilePath returns the conventional sidecar path for a tile path.
func WorldFilePath(tilePath string) string {
	ext := filepath.Ext(tilePath)
	return strings.TrimSuffix(tilePath, ext) + raster.WorldFileExt(ext)
}

func writeWorldFile(path string, t raster.Affine) error {
	var buf bytes.Buffer
	if _, err := raster.WorldFileFor(t).WriteTo(&buf); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}
