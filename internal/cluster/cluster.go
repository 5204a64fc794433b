// Package cluster partitions geographic points into single-linkage
// connectivity clusters: two points share a cluster iff a chain of points
// connects them with every hop at most radius metres of great-circle distance.
//
// Two interchangeable strategies satisfy that contract. GridDBSCAN is a
// density-based expansion over a lat/lon cell grid; with a minimum neighbour
// count of one its clusters are exactly the connected components of the
// radius-threshold graph. PairwiseUnionFind is the exact O(N²) fallback. The
// Clusterer wrapper runs the optimized strategy under a guard and falls back
// silently, so callers always get a plain label slice.
package cluster

import (
	"errors"
	"fmt"
	"math"

	"github.com/curbworks/meterclub/internal/monitoring"
)

// Point is a WGS84 coordinate in degrees.
type Point struct {
	Lat float64
	Lon float64
}

// Strategy assigns each point a cluster label 0..K-1. Labels are numbered in
// first-encounter order while scanning points in input order, so equivalent
// partitions from different strategies carry identical numbering.
type Strategy interface {
	Name() string
	Labels(points []Point, radiusM float64) ([]int, error)
}

// ErrBadRadius is returned by New for a radius that is not a positive finite
// number.
var ErrBadRadius = errors.New("cluster: radius must be a positive finite number of metres")

// Clusterer pairs the optimized strategy with the exact fallback behind one
// call. Construct it once per run; the strategy choice never varies mid-run.
type Clusterer struct {
	radiusM  float64
	primary  Strategy
	fallback Strategy
}

// New returns a Clusterer for the given connectivity radius in metres.
func New(radiusM float64) (*Clusterer, error) {
	if math.IsNaN(radiusM) || math.IsInf(radiusM, 0) || radiusM <= 0 {
		return nil, ErrBadRadius
	}
	return &Clusterer{
		radiusM:  radiusM,
		primary:  GridDBSCAN{},
		fallback: PairwiseUnionFind{},
	}, nil
}

// RadiusM returns the connectivity radius the Clusterer was built with.
func (c *Clusterer) RadiusM() float64 { return c.radiusM }

// Labels partitions points into connectivity clusters and returns one label
// per point, 0..K-1. The optimized strategy never surfaces a failure: any
// error or panic switches to the exact fallback for this call, which always
// succeeds.
func (c *Clusterer) Labels(points []Point) []int {
	labels, err := c.tryPrimary(points)
	if err == nil {
		return labels
	}
	monitoring.Logf("cluster: %s unavailable (%v); using %s", c.primary.Name(), err, c.fallback.Name())
	labels, _ = c.fallback.Labels(points, c.radiusM)
	return labels
}

// tryPrimary runs the optimized strategy with a panic guard so that a bug in
// it degrades to the fallback instead of taking down the run.
func (c *Clusterer) tryPrimary(points []Point) (labels []int, err error) {
	defer func() {
		if r := recover(); r != nil {
			labels, err = nil, fmt.Errorf("cluster: %s panicked: %v", c.primary.Name(), r)
		}
	}()
	return c.primary.Labels(points, c.radiusM)
}
