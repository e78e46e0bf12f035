// Command genmock reads a catalog CSV of known source mechanisms and
// generates GeoJSON event fixtures for the ETL test suites. Moment-tensor
// products are synthesized from each nodal plane with the domain package, so
// the fixture decomposes back to the catalog geometry.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -csv data/catalog/mechanisms.csv \
//	  -etl-out data/mock/quake_events.json \
//	  -api-out data/mock/quake_mechanisms.json
package main

import (
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/quake-mechanism-etl/internal/domain"
)

// feature mirrors the GeoJSON event detail layout consumed by the ETL.
type feature struct {
	Type       string            `json:"type"`
	ID         string            `json:"id"`
	Properties featureProperties `json:"properties"`
	Geometry   geometry          `json:"geometry"`
}

type featureProperties struct {
	Mag      float64                     `json:"mag"`
	Place    string                      `json:"place"`
	Time     int64                       `json:"time"`
	Products map[string][]domain.Product `json:"products"`
}

type geometry struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	csvPath := flag.String("csv", "", "catalog CSV of nodal planes")
	etlOut := flag.String("etl-out", "", "output path for the raw GeoJSON feature fixture")
	apiOut := flag.String("api-out", "", "optional output path for decomposed mechanisms")
	flag.Parse()

	if *csvPath == "" || *etlOut == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -csv, -etl-out")
	}

	// Set a fixed clock for reproducible ProcessedAt timestamps.
	domain.SetClock(clockwork.NewFakeClockAt(
		time.Date(2024, time.April, 27, 6, 0, 0, 0, time.UTC),
	))
	defer domain.SetClock(nil)

	features, err := readCatalog(*csvPath)
	if err != nil {
		return fmt.Errorf("processing %s: %w", *csvPath, err)
	}
	log.Printf("total: %d events", len(features))

	if err := writeJSON(*etlOut, features); err != nil {
		return fmt.Errorf("writing ETL fixture: %w", err)
	}
	log.Printf("wrote ETL fixture: %s", *etlOut)

	if *apiOut == "" {
		return nil
	}
	mechanisms, err := decompose(features)
	if err != nil {
		return err
	}
	if err := writeJSON(*apiOut, mechanisms); err != nil {
		return fmt.Errorf("writing API fixture: %w", err)
	}
	log.Printf("wrote API fixture: %s", *apiOut)

	printStats(mechanisms)
	return nil
}

func readCatalog(path string) ([]feature, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("no data rows")
	}

	colIdx := map[string]int{}
	for i, h := range rows[0] {
		colIdx[h] = i
	}

	features := make([]feature, 0, len(rows)-1)
	for line, row := range rows[1:] {
		if len(row) < len(rows[0]) {
			continue
		}
		ft, err := featureFromRow(row, colIdx)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line+2, err)
		}
		features = append(features, ft)
	}
	return features, nil
}

func featureFromRow(row []string, colIdx map[string]int) (feature, error) {
	var nums [6]float64
	for i, col := range []string{"Lat", "Lon", "Depth", "Mag", "Strike", "Dip"} {
		v, err := strconv.ParseFloat(get(row, colIdx, col), 64)
		if err != nil {
			return feature{}, fmt.Errorf("%s: %w", col, err)
		}
		nums[i] = v
	}
	lat, lon, depth, mag, strike, dip := nums[0], nums[1], nums[2], nums[3], nums[4], nums[5]

	rake, err := strconv.ParseFloat(get(row, colIdx, "Rake"), 64)
	if err != nil {
		return feature{}, fmt.Errorf("Rake: %w", err)
	}
	origin, err := time.Parse(time.RFC3339, get(row, colIdx, "Time"))
	if err != nil {
		return feature{}, fmt.Errorf("Time: %w", err)
	}

	id := get(row, colIdx, "EventID")
	network := get(row, colIdx, "Network")
	plane := domain.NodalPlane{Strike: strike, Dip: dip, Rake: rake}

	products := map[string][]domain.Product{}
	for _, kind := range strings.Split(get(row, colIdx, "Products"), "+") {
		switch kind {
		case "mt":
			products[domain.ProductMomentTensor] = append(products[domain.ProductMomentTensor],
				momentTensorProduct(id, plane, mag, depth))
		case "fm":
			products[domain.ProductFocalMechanism] = append(products[domain.ProductFocalMechanism],
				focalMechanismProduct(id, network, plane))
		default:
			return feature{}, fmt.Errorf("unknown product kind %q", kind)
		}
	}

	return feature{
		Type: "Feature",
		ID:   id,
		Properties: featureProperties{
			Mag:      mag,
			Place:    get(row, colIdx, "Place"),
			Time:     origin.UnixMilli(),
			Products: products,
		},
		Geometry: geometry{Type: "Point", Coordinates: []float64{lon, lat, depth}},
	}, nil
}

// momentTensorProduct synthesizes a pure double couple whose scalar moment
// matches the catalog magnitude.
func momentTensorProduct(id string, plane domain.NodalPlane, mag, depth float64) domain.Product {
	m0 := momentFromMagnitude(mag)
	mt := domain.TensorFromNodalPlane(plane, m0)
	aux := domain.AuxiliaryPlane(plane)

	props := map[string]string{
		"derived-magnitude": formatFloat(mag),
		"derived-depth":     formatFloat(depth),
		"scalar-moment":     strconv.FormatFloat(m0, 'e', 4, 64),
		"beachball-source":  "us",
	}
	keys := []string{"tensor-mrr", "tensor-mtt", "tensor-mpp", "tensor-mrt", "tensor-mrp", "tensor-mtp"}
	for i, c := range mt.Components() {
		props[keys[i]] = strconv.FormatFloat(c, 'e', 4, 64)
	}
	addPlanes(props, plane, aux)

	return domain.Product{
		Type:       domain.ProductMomentTensor,
		Source:     "us",
		Code:       "us_" + id + "_mww",
		Properties: props,
	}
}

func focalMechanismProduct(id, network string, plane domain.NodalPlane) domain.Product {
	props := map[string]string{"eventsource": network}
	addPlanes(props, plane, domain.AuxiliaryPlane(plane))
	return domain.Product{
		Type:       domain.ProductFocalMechanism,
		Source:     network,
		Code:       id + "_fm1",
		Properties: props,
	}
}

func addPlanes(props map[string]string, np1, np2 domain.NodalPlane) {
	props["nodal-plane-1-strike"] = formatFloat(np1.Strike)
	props["nodal-plane-1-dip"] = formatFloat(np1.Dip)
	props["nodal-plane-1-rake"] = formatFloat(np1.Rake)
	props["nodal-plane-2-strike"] = strconv.FormatFloat(np2.Strike, 'f', 2, 64)
	props["nodal-plane-2-dip"] = strconv.FormatFloat(np2.Dip, 'f', 2, 64)
	props["nodal-plane-2-rake"] = strconv.FormatFloat(np2.Rake, 'f', 2, 64)
}

// momentFromMagnitude inverts Mw = 2/3·(log10 M0 − 9.1).
func momentFromMagnitude(mw float64) float64 {
	return math.Pow(10, 1.5*mw+9.1)
}

func decompose(features []feature) ([]domain.Mechanism, error) {
	var out []domain.Mechanism
	for _, ft := range features {
		data, err := json.Marshal(ft)
		if err != nil {
			return nil, err
		}
		event, err := domain.ParseRawEvent(domain.RawEvent{Value: data})
		if err != nil {
			return nil, err
		}
		for _, p := range event.Products {
			mt, err := domain.TensorFromProduct(p)
			if err != nil {
				return nil, fmt.Errorf("%s %s: %w", event.ID, p.Type, err)
			}
			d, err := domain.Decompose(mt)
			if err != nil {
				return nil, fmt.Errorf("%s %s: %w", event.ID, p.Type, err)
			}
			out = append(out, domain.EnrichMechanism(domain.NewMechanism(event, p, mt, d)))
		}
	}
	return out, nil
}

func printStats(mechanisms []domain.Mechanism) {
	styles := map[string]int{}
	for _, m := range mechanisms {
		styles[m.FaultingStyle]++
	}
	names := make([]string, 0, len(styles))
	for name := range styles {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Printf("\n%-16s %s\n", "Faulting style", "Count")
	for _, name := range names {
		fmt.Printf("%-16s %d\n", name, styles[name])
	}
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o600)
}

func get(row []string, colIdx map[string]int, col string) string {
	idx, ok := colIdx[col]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
