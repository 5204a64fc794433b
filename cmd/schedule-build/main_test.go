package main

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/curbworks/meterclub/internal/monitoring"
)

const schedulesFixture = `Post ID,Street and Block,Block Side,Cap Color,Schedule Type,Applied Color Rule,Priority,Days Applied,From Time,To Time,Active Meter Status,Time Limit
100-001,MAIN ST 1200,East,Grey,Operating Schedule,General Metered,2,"Mo,Tu,We,Th,Fr",7:00 AM,6:00 PM,Active,2 Hours
100-002,OAK ST 400,West,Yellow,Operating Schedule,Commercial Loading,2,"Mo,Tu",7:00 AM,11:00 AM,Active,30 minutes
`

const metersFixture = `POST_ID,STREET_NAME,STREET_NUM,LONGITUDE,LATITUDE,BLOCKFACE_ID,CAP_COLOR
100-001,MAIN ST,1200,-122.4194,37.7749,BF1,Green
100-002,OAK ST,400,-122.4301,37.7712,BF2,
`

func TestRun_EndToEnd(t *testing.T) {
	prev := monitoring.Logf
	monitoring.SetLogger(nil)
	defer monitoring.SetLogger(prev)

	dir := t.TempDir()
	schedulesPath := filepath.Join(dir, "schedules.csv")
	metersPath := filepath.Join(dir, "meters.csv")
	outputPath := filepath.Join(dir, "output.csv")
	require.NoError(t, os.WriteFile(schedulesPath, []byte(schedulesFixture), 0o644))
	require.NoError(t, os.WriteFile(metersPath, []byte(metersFixture), 0o644))

	require.NoError(t, run(schedulesPath, metersPath, outputPath, false, true))

	f, err := os.Open(outputPath)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	header := records[0]
	assert.Equal(t, "post_id", header[0])
	assert.Equal(t, "100-001", records[1][0])
	assert.Contains(t, records[1], "General Metered")
	assert.Contains(t, records[1], "-122.4194")
	assert.Contains(t, records[2], "Commercial Loading (metered)")
}

func TestRun_MissingScheduleColumnFails(t *testing.T) {
	dir := t.TempDir()
	schedulesPath := filepath.Join(dir, "schedules.csv")
	metersPath := filepath.Join(dir, "meters.csv")
	outputPath := filepath.Join(dir, "output.csv")
	require.NoError(t, os.WriteFile(schedulesPath, []byte("Post ID,Days Applied\nA,Mo\n"), 0o644))
	require.NoError(t, os.WriteFile(metersPath, []byte(metersFixture), 0o644))

	err := run(schedulesPath, metersPath, outputPath, false, true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing columns in schedule CSV")

	_, statErr := os.Stat(outputPath)
	assert.True(t, os.IsNotExist(statErr))
}
