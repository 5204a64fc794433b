package meters

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/curbworks/meterclub/internal/cluster"
	"github.com/curbworks/meterclub/internal/geo"
)

// testRow implements RawRow for pipeline tests.
type testRow struct {
	post   string
	lat    float64
	lon    float64
	fields map[string]string
}

func (r testRow) PostID() string { return r.post }

func (r testRow) Coord() (lat, lon float64) { return r.lat, r.lon }

func (r testRow) Field(name string) string { return r.fields[name] }

// near returns coordinates displaced from an SF base by metres north/east.
func near(northM, eastM float64) (lat, lon float64) {
	baseLat, baseLon := 37.7749, -122.4194
	return baseLat + geo.DegreesLat(northM), baseLon + geo.DegreesLon(eastM, baseLat)
}

func row(post string, northM, eastM float64, fields map[string]string) testRow {
	lat, lon := near(northM, eastM)
	if fields == nil {
		fields = map[string]string{}
	}
	return testRow{post: post, lat: lat, lon: lon, fields: fields}
}

func mustClusterer(t *testing.T, radiusM float64) *cluster.Clusterer {
	t.Helper()
	c, err := cluster.New(radiusM)
	require.NoError(t, err)
	return c
}

func TestBuildMeters_GroupsAndAverages(t *testing.T) {
	weekday := map[string]string{"days": "Mo,Tu,We,Th,Fr", "from_time": "9:00 AM", "to_time": "6:00 PM", "street_name": "MAIN ST"}
	saturday := map[string]string{"days": "Sa", "from_time": "9:00 AM", "to_time": "6:00 PM", "street_name": "MAIN ST"}

	r1 := row("M1", 0, 0, weekday)
	r2 := row("M1", 2, 0, saturday)
	r3 := row("M2", 100, 0, weekday)

	ms := BuildMeters([]RawRow{r1, r2, r3}, nil)
	require.Len(t, ms, 2)

	m1 := ms[0]
	assert.Equal(t, "M1", m1.PostID)
	assert.InDelta(t, (r1.lat+r2.lat)/2, m1.Lat, 1e-12)
	assert.InDelta(t, (r1.lon+r2.lon)/2, m1.Lon, 1e-12)
	assert.Equal(t, "MAIN ST", m1.StreetName)
	assert.Len(t, m1.Signature.Entries, 2)

	// M2 has only the weekday slice, so its signature must differ from M1's.
	assert.NotEqual(t, m1.Signature.Hash, ms[1].Signature.Hash)
}

func TestBuildMeters_FirstSeenOrder(t *testing.T) {
	rows := []RawRow{
		row("B", 0, 0, nil),
		row("A", 10, 0, nil),
		row("B", 0, 2, nil),
		row("C", 20, 0, nil),
	}
	ms := BuildMeters(rows, nil)
	require.Len(t, ms, 3)
	assert.Equal(t, "B", ms[0].PostID)
	assert.Equal(t, "A", ms[1].PostID)
	assert.Equal(t, "C", ms[2].PostID)
}

func TestClub_PartitionsEveryMeterExactlyOnce(t *testing.T) {
	weekday := map[string]string{"days": "Mo,Tu,We,Th,Fr", "from_time": "09:00", "to_time": "18:00"}
	sunday := map[string]string{"days": "Su"}

	rows := []RawRow{
		row("A", 0, 0, weekday),
		row("B", 10, 0, weekday),
		row("C", 200, 0, weekday),
		row("D", 0, 5, sunday),
		row("E", 400, 0, sunday),
	}
	ms := BuildMeters(rows, nil)
	clusters, members := Club(ms, mustClusterer(t, 20))

	require.Len(t, members, 5)

	seen := make(map[string]int)
	for _, m := range members {
		seen[m.PostID]++
	}
	for _, pid := range []string{"A", "B", "C", "D", "E"} {
		assert.Equal(t, 1, seen[pid], "meter %s membership count", pid)
	}

	total := 0
	clusterIDs := make(map[string]bool)
	for _, c := range clusters {
		total += c.CountMeters
		clusterIDs[c.ClusterID] = true
	}
	assert.Equal(t, len(members), total)
	for _, m := range members {
		assert.True(t, clusterIDs[m.ClusterID], "member %s references unknown cluster %s", m.PostID, m.ClusterID)
	}

	perCluster := make(map[string]int)
	for _, m := range members {
		perCluster[m.ClusterID]++
	}
	for _, c := range clusters {
		assert.Equal(t, c.CountMeters, perCluster[c.ClusterID], "cluster %s count", c.ClusterID)
	}
}

func TestClub_SignatureSeparatesCoincidentMeters(t *testing.T) {
	weekday := map[string]string{"days": "Mo,Tu,We,Th,Fr"}
	sunday := map[string]string{"days": "Su"}

	// Identical coordinates, different schedules: always separate clusters.
	rows := []RawRow{
		row("A", 0, 0, weekday),
		row("B", 0, 0, sunday),
	}
	ms := BuildMeters(rows, nil)
	clusters, members := Club(ms, mustClusterer(t, 1000))

	require.Len(t, clusters, 2)
	require.Len(t, members, 2)
	assert.NotEqual(t, members[0].ClusterID, members[1].ClusterID)
}

func TestClub_ChainingWithinOneSignature(t *testing.T) {
	weekday := map[string]string{"days": "Mo,Tu,We,Th,Fr"}

	// A-B 10m, B-C 15m, A-C 25m at radius 20: one chained cluster.
	rows := []RawRow{
		row("A", 0, 0, weekday),
		row("B", 10, 0, weekday),
		row("C", 25, 0, weekday),
	}
	ms := BuildMeters(rows, nil)
	clusters, members := Club(ms, mustClusterer(t, 20))

	require.Len(t, clusters, 1)
	assert.Equal(t, 3, clusters[0].CountMeters)
	assert.Equal(t, "A|B|C", clusters[0].PostIDs)
	require.Len(t, members, 3)
}

func TestClub_ClusterIDsAreReproducible(t *testing.T) {
	weekday := map[string]string{"days": "Mo,Tu,We,Th,Fr"}
	sunday := map[string]string{"days": "Su"}
	rows := []RawRow{
		row("A", 0, 0, weekday),
		row("B", 300, 0, weekday),
		row("C", 0, 0, sunday),
	}

	first, _ := Club(BuildMeters(rows, nil), mustClusterer(t, 20))
	second, _ := Club(BuildMeters(rows, nil), mustClusterer(t, 20))

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].ClusterID, second[i].ClusterID)
		assert.Equal(t, first[i].PostIDs, second[i].PostIDs)
	}
	// Weekday signature appears first in the input, so its clusters take the
	// low ids.
	assert.Equal(t, "C00001", first[0].ClusterID)
	assert.Equal(t, "C00003", first[len(first)-1].ClusterID)
}
