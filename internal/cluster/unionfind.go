package cluster

import "github.com/curbworks/meterclub/internal/geo"

// PairwiseUnionFind is the exact fallback strategy: haversine distance for
// every point pair, union on every pair within the radius, labels from the
// resulting disjoint sets. O(N²) time, which is acceptable for per-city
// signature group sizes.
type PairwiseUnionFind struct{}

// Name identifies the strategy in fallback log lines.
func (PairwiseUnionFind) Name() string { return "pairwise-union-find" }

// Labels clusters by exhaustive pairwise comparison. It cannot fail; the
// error return exists only to satisfy Strategy.
func (PairwiseUnionFind) Labels(points []Point, radiusM float64) ([]int, error) {
	n := len(points)
	uf := newUnionFind(n)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := geo.DistanceM(points[i].Lat, points[i].Lon, points[j].Lat, points[j].Lon)
			if d <= radiusM {
				uf.union(i, j)
			}
		}
	}

	// Collapse roots to labels 0..K-1 in first-encounter input order.
	labels := make([]int, n)
	rootLabel := make(map[int]int, n)
	next := 0
	for i := 0; i < n; i++ {
		root := uf.find(i)
		label, ok := rootLabel[root]
		if !ok {
			label = next
			rootLabel[root] = label
			next++
		}
		labels[i] = label
	}
	return labels, nil
}

var _ Strategy = PairwiseUnionFind{}

// unionFind is a disjoint-set forest with path compression and union by rank.
type unionFind struct {
	parent []int
	rank   []int
}

func newUnionFind(n int) *unionFind {
	uf := &unionFind{
		parent: make([]int, n),
		rank:   make([]int, n),
	}
	for i := range uf.parent {
		uf.parent[i] = i
	}
	return uf
}

// find walks to the root, pointing each visited node at its grandparent to
// keep the trees flat.
func (uf *unionFind) find(x int) int {
	for uf.parent[x] != x {
		uf.parent[x] = uf.parent[uf.parent[x]]
		x = uf.parent[x]
	}
	return x
}

// union merges the sets containing a and b, attaching the shallower tree
// under the deeper root.
func (uf *unionFind) union(a, b int) {
	ra, rb := uf.find(a), uf.find(b)
	if ra == rb {
		return
	}
	switch {
	case uf.rank[ra] < uf.rank[rb]:
		uf.parent[ra] = rb
	case uf.rank[ra] > uf.rank[rb]:
		uf.parent[rb] = ra
	default:
		uf.parent[rb] = ra
		uf.rank[ra]++
	}
}
