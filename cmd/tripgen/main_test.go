package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const routeLines = `{"type":"FeatureCollection","features":[
{"type":"Feature","properties":{"vendor":"A"},"geometry":{"type":"LineString","coordinates":[[-74.20986,40.81773],[-74.20987,40.81765],[-74.20998,40.81746]]}},
{"type":"Feature","properties":{"vendor":"B"},"geometry":{"type":"LineString","coordinates":[[2.1,41.3],[2.2,41.4],[2.3,41.5],[2.4,41.6]]}}
]}`

const profile = `
window_start: "2019-06-04 07:00:00"
window_end: "2019-06-04 23:00:00"
timezone: UTC
`

func writeInputs(t *testing.T) (dir string, opts Options) {
	t.Helper()

	dir = t.TempDir()
	in := filepath.Join(dir, "route_lines.json")
	cfg := filepath.Join(dir, "tripgen.yaml")
	if err := os.WriteFile(in, []byte(routeLines), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(cfg, []byte(profile), 0644); err != nil {
		t.Fatal(err)
	}

	return dir, Options{
		Input:       in,
		Output:      filepath.Join(dir, "route_lines_processed.json"),
		ConfigFile:  cfg,
		Seed:        2019,
		Timeout:     time.Second,
		MetricsFile: filepath.Join(dir, "tripgen.prom"),
	}
}

func readCoordinates(t *testing.T, path string) [][][]float64 {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}

	var doc struct {
		Features []struct {
			Geometry struct {
				Coordinates [][]float64 `json:"coordinates"`
			} `json:"geometry"`
		} `json:"features"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("decode output: %v", err)
	}

	out := make([][][]float64, len(doc.Features))
	for i, f := range doc.Features {
		out[i] = f.Geometry.Coordinates
	}
	return out
}

func TestRunWritesTripLayerFile(t *testing.T) {
	dir, opts := writeInputs(t)

	if err := run(opts); err != nil {
		t.Fatalf("run: %v", err)
	}

	routes := readCoordinates(t, opts.Output)
	if len(routes) != 2 {
		t.Fatalf("%d routes written, want 2", len(routes))
	}
	if len(routes[0]) != 5 || len(routes[1]) != 4 {
		t.Errorf("route sizes = %d, %d, want 5, 4", len(routes[0]), len(routes[1]))
	}

	metrics, err := os.ReadFile(filepath.Join(dir, "tripgen.prom"))
	if err != nil {
		t.Fatalf("metrics file: %v", err)
	}
	if !strings.Contains(string(metrics), "tripgen_routes_total 2") {
		t.Errorf("unexpected metrics:\n%s", metrics)
	}
}

func TestRunIsReproducibleWithSeed(t *testing.T) {
	_, opts := writeInputs(t)

	if err := run(opts); err != nil {
		t.Fatalf("first run: %v", err)
	}
	first := readCoordinates(t, opts.Output)

	opts.Output += ".zst"
	opts.Indent = true
	if err := run(opts); err != nil {
		t.Fatalf("second run: %v", err)
	}

	opts.Input = opts.Output
	opts.Output = filepath.Join(filepath.Dir(opts.Input), "again.json")
	if err := run(opts); err != nil {
		t.Fatalf("third run over compressed output: %v", err)
	}
	second := readCoordinates(t, opts.Output)

	// The third run re-augments the second run's 4-tuples, keeping lon/lat only,
	// and draws the same departures from the same seed. Padding from the first
	// pass is now regular points, so only the original points line up.
	original := []int{3, 4}
	for i := range first {
		for j := range original[i] {
			if first[i][j][3] != second[i][j][3] {
				t.Fatalf("route %d point %d: timestamp %v vs %v", i, j, first[i][j][3], second[i][j][3])
			}
		}
	}
}

func TestRunFailsOnShapeError(t *testing.T) {
	dir, opts := writeInputs(t)

	bad := `{"type":"FeatureCollection","features":[{"type":"Feature","properties":{},"geometry":null}]}`
	if err := os.WriteFile(opts.Input, []byte(bad), 0644); err != nil {
		t.Fatal(err)
	}

	if err := run(opts); err == nil {
		t.Fatal("expected error for feature without geometry")
	}
	if _, err := os.Stat(filepath.Join(dir, "route_lines_processed.json")); !os.IsNotExist(err) {
		t.Errorf("output written despite failure: %v", err)
	}
}
