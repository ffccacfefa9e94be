package tile

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pspoerri/tilewarp/internal/config"
	"github.com/pspoerri/tilewarp/internal/raster"
)

const testTileSize = 16

// testMatrix places zoom 15 at 2 m, 16 at 1 m and 17 at 0.5 m pixels just
// west of the zone 32 central meridian, around 47.4°N.
var testMatrix = raster.TileMatrix{OriginX: 499900, OriginY: 5251000, Resolution: 65536}

type testTile struct {
	z, x, y int
	ext     string
	img     image.Image
	corrupt bool
	noWorld bool
	world   *raster.Affine // overrides the tile matrix transform
}

func grayTile(seed int) image.Image {
	img := image.NewGray(image.Rect(0, 0, testTileSize, testTileSize))
	for y := 0; y < testTileSize; y++ {
		for x := 0; x < testTileSize; x++ {
			img.SetGray(x, y, color.Gray{Y: uint8(seed*17 + x*9 + y*5)})
		}
	}
	return img
}

func rgbTile(seed int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, testTileSize, testTileSize))
	for y := 0; y < testTileSize; y++ {
		for x := 0; x < testTileSize; x++ {
			img.SetRGBA(x, y, color.RGBA{R: uint8(seed*30 + x*8), G: uint8(y * 12), B: 90, A: 255})
		}
	}
	return img
}

func nrgbaTile(seed int) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, testTileSize, testTileSize))
	for y := 0; y < testTileSize; y++ {
		for x := 0; x < testTileSize; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(seed + x*10), G: 40, B: uint8(y * 10), A: uint8(128 + x*7)})
		}
	}
	return img
}

// standardTiles is a three zoom pyramid mixing formats and band layouts.
func standardTiles() []testTile {
	return []testTile{
		{z: 15, x: 0, y: 0, ext: "png", img: grayTile(1)},
		{z: 15, x: 1, y: 0, ext: "jpg", img: rgbTile(2)},
		{z: 16, x: 0, y: 0, ext: "png", img: nrgbaTile(3)},
		{z: 16, x: 0, y: 1, ext: "png", img: grayTile(4)},
		{z: 16, x: 1, y: 1, ext: "jpg", img: rgbTile(5)},
		{z: 17, x: 2, y: 2, ext: "png", img: grayTile(6)},
		{z: 17, x: 3, y: 2, ext: "jpg", img: rgbTile(7)},
	}
}

func tilePath(root string, tt testTile) string {
	return filepath.Join(root, strconv.Itoa(tt.z), strconv.Itoa(tt.x), strconv.Itoa(tt.y)+"."+tt.ext)
}

func buildPyramid(t *testing.T, root string, tiles []testTile) {
	t.Helper()
	for _, tt := range tiles {
		path := tilePath(root, tt)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))

		var buf bytes.Buffer
		switch {
		case tt.corrupt:
			buf.WriteString("this is not an image")
		case tt.ext == "png":
			require.NoError(t, png.Encode(&buf, tt.img))
		case tt.ext == "jpg":
			require.NoError(t, jpeg.Encode(&buf, tt.img, &jpeg.Options{Quality: 90}))
		default:
			t.Fatalf("unsupported test format %s", tt.ext)
		}
		require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

		if tt.noWorld {
			continue
		}
		tr := testMatrix.TileTransform(tt.z, tt.x, tt.y, testTileSize, testTileSize)
		if tt.world != nil {
			tr = *tt.world
		}
		require.NoError(t, writeWorldFile(WorldFilePath(path), tr))
	}
}

func testConfig(in, out string) config.Config {
	cfg := config.Default()
	cfg.InputRoot = in
	cfg.OutputRoot = out
	return cfg
}

// readTree returns every regular file under root keyed by relative path.
func readTree(t *testing.T, root string) map[string][]byte {
	t.Helper()
	files := map[string][]byte{}
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		files[filepath.ToSlash(rel)] = data
		return nil
	})
	require.NoError(t, err)
	return files
}
