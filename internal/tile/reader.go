package tile

import (
	"os"

	"github.com/pkg/errors"

	"github.com/pspoerri/tilewarp/internal/encode"
	"github.com/pspoerri/tilewarp/internal/pyramid"
	"github.com/pspoerri/tilewarp/internal/raster"
)

// ErrRead reports a tile that could not be opened or decoded.
var ErrRead = errors.New("tile read failed")

// Reader decodes source tiles into georeferenced rasters.
//
// Georeferencing comes from a sidecar world file next to the tile. When
// there is none, the tile matrix (if configured) derives the transform from
// the tile address. All tiles of a run share the same CRS.
type Reader struct {
	EPSG       int
	TileMatrix raster.TileMatrix
	Options    encode.Options
}

// Read decodes the tile of job and attaches its georeferencing.
func (r *Reader) Read(job pyramid.Job) (*raster.Raster, error) {
	codec, err := encode.ForExtension(job.Ext, r.Options)
	if err != nil {
		return nil, errors.Wrapf(ErrRead, "%s: %v", job.SrcPath, err)
	}

	f, err := os.Open(job.SrcPath)
	if err != nil {
		return nil, errors.Wrapf(ErrRead, "%v", err)
	}
	defer f.Close()

	img, err := codec.Decode(f)
	if err != nil {
		return nil, errors.Wrapf(ErrRead, "decoding %s as %s: %v", job.SrcPath, codec.Format(), err)
	}

	transform, err := r.georeference(job, img.Bounds().Dx(), img.Bounds().Dy())
	if err != nil {
		return nil, err
	}

	ras, err := raster.FromImage(img, transform, r.EPSG)
	if err != nil {
		return nil, err
	}
	if err := ras.Validate(); err != nil {
		return nil, errors.Wrap(err, job.SrcPath)
	}
	return ras, nil
}

func (r *Reader) georeference(job pyramid.Job, width, height int) (raster.Affine, error) {
	if wld := raster.FindWorldFile(job.SrcPath); wld != "" {
		wf, err := raster.ReadWorldFile(wld)
		if err != nil {
			return raster.Affine{}, errors.Wrapf(raster.ErrInvalidGrid, "%v", err)
		}
		return wf.Affine(), nil
	}
	if !r.TileMatrix.IsZero() {
		return r.TileMatrix.TileTransform(int(job.Z), int(job.X), int(job.Y), width, height), nil
	}
	return raster.Affine{}, errors.Wrapf(raster.ErrInvalidGrid, "%s: no world file and no tile matrix configured", job.SrcPath)
}
