package visualize

import (
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
	"gonum.org/v1/plot/vg/vgsvg"

	"github.com/biswajyotidutta/tabeda/pkg/errors"
)

// Tile is the size of one panel in a grid figure.
const Tile = 2.5 * vg.Inch

// newCanvas picks the backend from the file extension.
func newCanvas(path string, w, h vg.Length) (vg.CanvasWriterTo, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return vgimg.PngCanvas{Canvas: vgimg.New(w, h)}, nil
	case ".svg":
		return vgsvg.New(w, h), nil
	default:
		return nil, errors.NewValidationError("path", "extension must be .png or .svg", path)
	}
}

// saveGrid lays out plots row by row and writes them to path.
func saveGrid(plots [][]*plot.Plot, path string) (err error) {
	rows := len(plots)
	if rows == 0 {
		return errors.NewValueError("saveGrid", "no plots")
	}
	cols := len(plots[0])

	c, err := newCanvas(path, vg.Length(cols)*Tile, vg.Length(rows)*Tile)
	if err != nil {
		return err
	}
	dc := draw.New(c)
	tiles := draw.Tiles{
		Rows: rows, Cols: cols,
		PadX: vg.Millimeter, PadY: vg.Millimeter,
		PadTop: vg.Points(2), PadBottom: vg.Points(2),
		PadLeft: vg.Points(2), PadRight: vg.Points(2),
	}

	canvases := plot.Align(plots, tiles, dc)
	for i := range plots {
		for j, p := range plots[i] {
			p.Draw(canvases[i][j])
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "failed to create %s", path)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = errors.Wrapf(cerr, "failed to close %s", path)
		}
	}()
	if _, err := c.WriteTo(f); err != nil {
		return errors.Wrapf(err, "failed to write %s", path)
	}
	return nil
}

// gridShape returns the rows and columns needed for n tiles at most cols wide.
func gridShape(n, cols int) (int, int) {
	if n == 0 || cols <= 0 {
		return 0, 0
	}
	if n < cols {
		cols = n
	}
	return (n + cols - 1) / cols, cols
}

// layout places plots row-major into a rows × cols grid. Trailing tiles
// get an empty plot with hidden axes.
func layout(plots []*plot.Plot, cols int) [][]*plot.Plot {
	rows, cols := gridShape(len(plots), cols)
	grid := make([][]*plot.Plot, rows)
	for i := range grid {
		grid[i] = make([]*plot.Plot, cols)
		for j := range grid[i] {
			k := i*cols + j
			if k < len(plots) {
				grid[i][j] = plots[k]
				continue
			}
			blank := plot.New()
			blank.HideAxes()
			grid[i][j] = blank
		}
	}
	return grid
}
