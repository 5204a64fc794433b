package cluster

import (
	"errors"
	"math"

	"github.com/curbworks/meterclub/internal/geo"
)

// maxGridLat bounds the flat lat/lon cell grid. Beyond ±85° the longitude
// scaling degenerates, and a dataset spanning the antimeridian would need
// wrap-around cells. Parking meters live nowhere near either limit, but the
// grid declares its envelope instead of quietly mis-binning.
const maxGridLat = 85.0

// ErrOutsideGridEnvelope reports point sets the cell grid cannot represent
// safely. The caller falls back to the exact strategy.
var ErrOutsideGridEnvelope = errors.New("cluster: points outside the grid envelope (|lat| > 85° or lon span >= 180°)")

// cellKey addresses one grid cell.
type cellKey struct {
	Lat int64
	Lon int64
}

// gridIndex buckets points into cells at least radiusM on a side, so every
// neighbour within radiusM of a point sits in its 3x3 cell neighbourhood.
type gridIndex struct {
	latCellDeg float64
	lonCellDeg float64
	cells      map[cellKey][]int
}

// buildGridIndex sizes the grid from the radius and the dataset's latitude
// extent, then buckets every point.
func buildGridIndex(points []Point, radiusM float64) (*gridIndex, error) {
	maxAbsLat := 0.0
	minLon, maxLon := math.Inf(1), math.Inf(-1)
	for _, p := range points {
		if math.Abs(p.Lat) > maxAbsLat {
			maxAbsLat = math.Abs(p.Lat)
		}
		minLon = math.Min(minLon, p.Lon)
		maxLon = math.Max(maxLon, p.Lon)
	}
	if maxAbsLat > maxGridLat || maxLon-minLon >= 180.0 {
		return nil, ErrOutsideGridEnvelope
	}

	// Cell height is the radius in degrees of latitude. Cell width uses the
	// highest dataset latitude, where degrees of longitude are shortest, so a
	// cell is never narrower than the radius anywhere in the dataset.
	g := &gridIndex{
		latCellDeg: geo.DegreesLat(radiusM),
		lonCellDeg: geo.DegreesLon(radiusM, maxAbsLat),
		cells:      make(map[cellKey][]int, len(points)),
	}
	for i, p := range points {
		k := g.key(p)
		g.cells[k] = append(g.cells[k], i)
	}
	return g, nil
}

func (g *gridIndex) key(p Point) cellKey {
	return cellKey{
		Lat: int64(math.Floor(p.Lat / g.latCellDeg)),
		Lon: int64(math.Floor(p.Lon / g.lonCellDeg)),
	}
}

// neighbors returns the indices of all points within radiusM great-circle
// distance of points[idx], including idx itself. Only the 3x3 cell
// neighbourhood needs scanning; cell sizing guarantees nothing closer than
// radiusM lies outside it.
func (g *gridIndex) neighbors(points []Point, idx int, radiusM float64) []int {
	p := points[idx]
	base := g.key(p)

	var out []int
	for dLat := int64(-1); dLat <= 1; dLat++ {
		for dLon := int64(-1); dLon <= 1; dLon++ {
			k := cellKey{Lat: base.Lat + dLat, Lon: base.Lon + dLon}
			for _, j := range g.cells[k] {
				q := points[j]
				if geo.DistanceM(p.Lat, p.Lon, q.Lat, q.Lon) <= radiusM {
					out = append(out, j)
				}
			}
		}
	}
	return out
}
