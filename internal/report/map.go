// Package report renders diagnostic visualizations of a clustering run: an
// interactive HTML scatter map and a static PNG plot. Output only; nothing
// here feeds back into clustering.
package report

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/curbworks/meterclub/internal/meters"
)

// viridis is the colour ramp used for the cluster dimension.
var viridis = []string{
	"#440154", "#482777", "#3e4989", "#31688e", "#26828e",
	"#1f9e89", "#35b779", "#6ece58", "#b5de2b", "#fde725",
}

// WriteClusterMap renders the membership table as an HTML scatter chart,
// X = longitude, Y = latitude, colour = cluster index. runID ties the chart
// back to the producing run's log line.
func WriteClusterMap(w io.Writer, clusters []meters.ClusterRow, members []meters.MemberRow, runID string) error {
	clusterIndex := make(map[string]int, len(clusters))
	for i, c := range clusters {
		clusterIndex[c.ClusterID] = i
	}

	data := make([]opts.ScatterData, 0, len(members))
	var minLat, maxLat, minLon, maxLon float64
	for i, m := range members {
		if i == 0 {
			minLat, maxLat = m.Lat, m.Lat
			minLon, maxLon = m.Lon, m.Lon
		}
		minLat = min(minLat, m.Lat)
		maxLat = max(maxLat, m.Lat)
		minLon = min(minLon, m.Lon)
		maxLon = max(maxLon, m.Lon)
		data = append(data, opts.ScatterData{
			Name:  m.PostID,
			Value: []interface{}{m.Lon, m.Lat, clusterIndex[m.ClusterID]},
		})
	}

	// Pad the axis ranges so edge meters stay visible.
	latPad := (maxLat - minLat) * 0.05
	lonPad := (maxLon - minLon) * 0.05
	if latPad == 0 {
		latPad = 0.0005
	}
	if lonPad == 0 {
		lonPad = 0.0005
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: "Meter Schedule Clusters",
			Width:     "900px",
			Height:    "900px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Meter schedule clusters",
			Subtitle: fmt.Sprintf("run=%s clusters=%d meters=%d", runID, len(clusters), len(members)),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Min: minLon - lonPad, Max: maxLon + lonPad, Name: "longitude"}),
		charts.WithYAxisOpts(opts.YAxis{Min: minLat - latPad, Max: maxLat + latPad, Name: "latitude"}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        0,
			Max:        float32(max(len(clusters)-1, 1)),
			Dimension:  "2",
			InRange:    &opts.VisualMapInRange{Color: viridis},
		}),
	)
	scatter.AddSeries("meters", data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 6}))

	return scatter.Render(w)
}
