// Command schedule-build joins a municipal meter operating-schedule export
// with the parking-meter inventory export and writes the tidy per-time-slice
// CSV that the meterclub command consumes.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/curbworks/meterclub/internal/ingest"
	"github.com/curbworks/meterclub/internal/monitoring"
	"github.com/curbworks/meterclub/internal/version"
)

func main() {
	explodeDays := flag.Bool("explode-days", false, "expand one row per weekday with a 'day' column")
	quiet := flag.Bool("quiet", false, "suppress the summary log line")
	showVersion := flag.Bool("version", false, "print version information and exit")

	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(),
			"Usage: %s [flags] schedules.csv meters.csv output.csv\n\nFlags:\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if *showVersion {
		fmt.Printf("schedule-build %s (%s, built %s)\n", version.Version, version.GitSHA, version.BuildTime)
		return
	}
	if flag.NArg() != 3 {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(flag.Arg(0), flag.Arg(1), flag.Arg(2), *explodeDays, *quiet); err != nil {
		fmt.Fprintf(os.Stderr, "schedule-build: %v\n", err)
		os.Exit(1)
	}
}

func run(schedulesPath, metersPath, outputPath string, explodeDays, quiet bool) error {
	schedulesFile, err := os.Open(schedulesPath)
	if err != nil {
		return fmt.Errorf("open schedules: %w", err)
	}
	defer schedulesFile.Close()

	schedules, err := ingest.LoadSchedules(schedulesFile)
	if err != nil {
		return err
	}

	metersFile, err := os.Open(metersPath)
	if err != nil {
		return fmt.Errorf("open meters: %w", err)
	}
	defer metersFile.Close()

	info, err := ingest.LoadMeterInfo(metersFile)
	if err != nil {
		return err
	}

	rows := ingest.BuildTidy(schedules, info)

	out, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := ingest.WriteTidy(out, rows, explodeDays); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close output: %w", err)
	}

	if !quiet {
		posts := make(map[string]bool, len(rows))
		for _, r := range rows {
			posts[r.Schedule.PostID] = true
		}
		monitoring.Logf("wrote %d rows for %d unique post ids -> %s", len(rows), len(posts), outputPath)
	}
	return nil
}
