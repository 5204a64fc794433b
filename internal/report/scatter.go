package report

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/curbworks/meterclub/internal/meters"
)

// palette cycles through cluster glyph colours in the PNG plot.
var palette = []color.RGBA{
	{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff},
	{R: 0xff, G: 0x7f, B: 0x0e, A: 0xff},
	{R: 0x2c, G: 0xa0, B: 0x2c, A: 0xff},
	{R: 0xd6, G: 0x27, B: 0x28, A: 0xff},
	{R: 0x94, G: 0x67, B: 0xbd, A: 0xff},
	{R: 0x8c, G: 0x56, B: 0x4b, A: 0xff},
	{R: 0xe3, G: 0x77, B: 0xc2, A: 0xff},
	{R: 0x7f, G: 0x7f, B: 0x7f, A: 0xff},
}

// WriteClusterScatterPNG saves a static lon/lat scatter of the membership
// table, one colour per cluster (cycling), to path.
func WriteClusterScatterPNG(path string, members []meters.MemberRow) error {
	p := plot.New()
	p.Title.Text = "Meter schedule clusters"
	p.X.Label.Text = "longitude"
	p.Y.Label.Text = "latitude"

	byCluster := make(map[string]plotter.XYs)
	var order []string
	for _, m := range members {
		if _, seen := byCluster[m.ClusterID]; !seen {
			order = append(order, m.ClusterID)
		}
		byCluster[m.ClusterID] = append(byCluster[m.ClusterID], plotter.XY{X: m.Lon, Y: m.Lat})
	}

	for i, id := range order {
		s, err := plotter.NewScatter(byCluster[id])
		if err != nil {
			return fmt.Errorf("build scatter for cluster %s: %w", id, err)
		}
		s.GlyphStyle.Color = palette[i%len(palette)]
		s.GlyphStyle.Radius = vg.Points(2.5)
		p.Add(s)
	}

	if err := p.Save(8*vg.Inch, 8*vg.Inch, path); err != nil {
		return fmt.Errorf("save cluster plot: %w", err)
	}
	return nil
}
