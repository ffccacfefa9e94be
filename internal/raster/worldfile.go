package raster

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// WorldFile holds the six parameters of an ESRI world file (.pgw, .jgw, .wld …).
//
// Line 1: x-component of the pixel width
// Line 2: y-component of the pixel width (rotation)
// Line 3: x-component of the pixel height (rotation)
// Line 4: y-component of the pixel height (typically negative for north-up)
// Line 5: x-coordinate of the center of the upper-left pixel
// Line 6: y-coordinate of the center of the upper-left pixel
type WorldFile struct {
	A float64 // line 1
	D float64 // line 2
	B float64 // line 3
	E float64 // line 4
	X float64 // line 5
	Y float64 // line 6
}

// ParseWorldFile reads a world file from r.
func ParseWorldFile(r io.Reader) (WorldFile, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return WorldFile{}, err
	}

	lines := strings.Fields(string(data))
	if len(lines) < 6 {
		return WorldFile{}, errors.Errorf("world file: expected 6 values, got %d", len(lines))
	}

	vals := make([]float64, 6)
	for i := 0; i < 6; i++ {
		v, err := strconv.ParseFloat(lines[i], 64)
		if err != nil {
			return WorldFile{}, errors.Wrapf(err, "world file line %d", i+1)
		}
		vals[i] = v
	}

	return WorldFile{A: vals[0], D: vals[1], B: vals[2], E: vals[3], X: vals[4], Y: vals[5]}, nil
}

// ReadWorldFile parses the world file at path.
func ReadWorldFile(path string) (WorldFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return WorldFile{}, err
	}
	defer f.Close()
	wf, err := ParseWorldFile(f)
	if err != nil {
		return WorldFile{}, errors.Wrap(err, path)
	}
	return wf, nil
}

// Affine converts the pixel-center origin of the world file to the corner
// convention used by Affine.
func (w WorldFile) Affine() Affine {
	return Affine{
		A: w.A, B: w.B, C: w.X - w.A/2 - w.B/2,
		D: w.D, E: w.E, F: w.Y - w.D/2 - w.E/2,
	}
}

// WorldFileFor is the inverse of WorldFile.Affine.
func WorldFileFor(t Affine) WorldFile {
	x, y := t.Apply(0.5, 0.5)
	return WorldFile{A: t.A, D: t.D, B: t.B, E: t.E, X: x, Y: y}
}

// WriteTo writes the six lines in world file order.
func (w WorldFile) WriteTo(out io.Writer) (int64, error) {
	n, err := fmt.Fprintf(out, "%s\n%s\n%s\n%s\n%s\n%s\n",
		formatFloat(w.A), formatFloat(w.D), formatFloat(w.B),
		formatFloat(w.E), formatFloat(w.X), formatFloat(w.Y))
	return int64(n), err
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// WorldFileExt returns the conventional sidecar extension for an image
// extension: png -> .pgw, jpg -> .jgw, webp -> .wpw.
func WorldFileExt(imageExt string) string {
	ext := strings.TrimPrefix(strings.ToLower(imageExt), ".")
	if len(ext) < 2 {
		return ".wld"
	}
	return "." + ext[:1] + ext[len(ext)-1:] + "w"
}

// FindWorldFile looks for a world file alongside the given image path.
// Checks the conventional extension and .wld, lower and upper case.
func FindWorldFile(imagePath string) string {
	ext := filepath.Ext(imagePath)
	base := imagePath[:len(imagePath)-len(ext)]

	conventional := WorldFileExt(ext)
	candidates := []string{conventional, strings.ToUpper(conventional), ".wld", ".WLD"}
	for _, c := range candidates {
		p := base + c
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}
