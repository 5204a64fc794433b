// Command meterclub clubs parking meters that share an identical operating
// schedule into spatial clusters, writing one CSV of cluster summaries and
// one CSV mapping each meter to its cluster.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/curbworks/meterclub/internal/cluster"
	"github.com/curbworks/meterclub/internal/meters"
	"github.com/curbworks/meterclub/internal/metertable"
	"github.com/curbworks/meterclub/internal/monitoring"
	"github.com/curbworks/meterclub/internal/report"
	"github.com/curbworks/meterclub/internal/schedule"
	"github.com/curbworks/meterclub/internal/version"
)

type config struct {
	inputPath       string
	clustersPath    string
	membersPath     string
	radiusM         float64
	signatureFields []string
	mapHTMLPath     string
	plotPNGPath     string
	quiet           bool
}

func main() {
	radiusM := flag.Float64("radius-m", 20.0, "spatial radius in metres for clubbing meters with the same schedule")
	fields := flag.String("signature-fields", strings.Join(schedule.DefaultSignatureFields, ","),
		"comma-separated fields that define the 'same schedule' signature")
	mapHTML := flag.String("map-html", "", "optional path for an interactive HTML scatter map of the clusters")
	plotPNG := flag.String("plot-png", "", "optional path for a static PNG scatter plot of the clusters")
	quiet := flag.Bool("quiet", false, "suppress the summary log line")
	showVersion := flag.Bool("version", false, "print version information and exit")

	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(),
			"Usage: %s [flags] input.csv clusters.csv members.csv\n\nFlags:\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if *showVersion {
		fmt.Printf("meterclub %s (%s, built %s)\n", version.Version, version.GitSHA, version.BuildTime)
		return
	}
	if flag.NArg() != 3 {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config{
		inputPath:       flag.Arg(0),
		clustersPath:    flag.Arg(1),
		membersPath:     flag.Arg(2),
		radiusM:         *radiusM,
		signatureFields: splitFields(*fields),
		mapHTMLPath:     *mapHTML,
		plotPNGPath:     *plotPNG,
		quiet:           *quiet,
	}
	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "meterclub: %v\n", err)
		os.Exit(1)
	}
}

// splitFields parses the -signature-fields value, dropping empty tokens.
func splitFields(s string) []string {
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// run executes one batch: read, cluster, aggregate, write. Nothing is
// written until the input has been read and validated, so a fatal schema
// error leaves no partial outputs behind.
func run(cfg config) error {
	in, err := os.Open(cfg.inputPath)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer in.Close()

	rows, stats, err := metertable.ReadRows(in)
	if err != nil {
		return err
	}

	clusterer, err := cluster.New(cfg.radiusM)
	if err != nil {
		return err
	}

	raw := make([]meters.RawRow, len(rows))
	for i, r := range rows {
		raw[i] = r
	}
	ms := meters.BuildMeters(raw, cfg.signatureFields)
	clusters, members := meters.Club(ms, clusterer)

	if err := writeFile(cfg.clustersPath, func(f *os.File) error {
		return metertable.WriteClusters(f, clusters)
	}); err != nil {
		return err
	}
	if err := writeFile(cfg.membersPath, func(f *os.File) error {
		return metertable.WriteMembers(f, members)
	}); err != nil {
		return err
	}

	runID := uuid.NewString()[:8]
	if cfg.mapHTMLPath != "" {
		if err := writeFile(cfg.mapHTMLPath, func(f *os.File) error {
			return report.WriteClusterMap(f, clusters, members, runID)
		}); err != nil {
			return err
		}
	}
	if cfg.plotPNGPath != "" {
		if err := report.WriteClusterScatterPNG(cfg.plotPNGPath, members); err != nil {
			return err
		}
	}

	if !cfg.quiet {
		monitoring.Logf("run=%s read %d rows (%d dropped), %d meters -> %d clusters, %d members; wrote %s and %s",
			runID, stats.RowsRead, stats.RowsDropped, len(ms), len(clusters), len(members),
			cfg.clustersPath, cfg.membersPath)
	}
	return nil
}

// writeFile creates path and hands it to write, closing on all paths.
func writeFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}
