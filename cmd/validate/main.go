// Command validate performs end-to-end integrity checks across the mock data
// of the mechanism pipeline: the nodal-plane catalog CSV, the GeoJSON event
// fixture generated from it, and (optionally) the decomposed mechanism
// fixture. It verifies row counts, field presence, that every product
// decomposes back to its catalog geometry, and cross-fixture consistency.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -csv data/catalog/mechanisms.csv \
//	  -etl-json data/mock/quake_events.json \
//	  -api-json data/mock/quake_mechanisms.json
package main

import (
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/quake-mechanism-etl/internal/domain"
)

// planeTolerance is the largest strike/dip/rake difference, in degrees,
// accepted between a decomposed plane and its catalog plane.
const planeTolerance = 0.01

var faultingStyles = []string{"strike-slip", "normal", "reverse", "oblique-normal", "oblique-reverse"}

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

// catalogRow is one parsed catalog line.
type catalogRow struct {
	lineNum  int
	eventID  string
	time     time.Time
	lat, lon float64
	depth    float64
	mag      float64
	plane    domain.NodalPlane
	products []string // product type names
}

func main() {
	csvPath := flag.String("csv", "", "catalog CSV of nodal planes")
	etlJSON := flag.String("etl-json", "", "path to the GeoJSON event fixture")
	apiJSON := flag.String("api-json", "", "optional path to the decomposed mechanism fixture")
	flag.Parse()

	if *csvPath == "" || *etlJSON == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*csvPath, *etlJSON, *apiJSON); code != 0 {
		os.Exit(code)
	}
}

func run(csvPath, etlJSONPath, apiJSONPath string) int {
	// Set a fixed clock matching genmock for ID reproducibility.
	domain.SetClock(clockwork.NewFakeClockAt(
		time.Date(2024, time.April, 27, 6, 0, 0, 0, time.UTC),
	))
	defer domain.SetClock(nil)

	fmt.Println("=== Quake Mechanism Data Integrity Validation ===")
	fmt.Println()

	catalog, err := loadCatalog(csvPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load catalog: %v\n", err)
		return 1
	}

	features, err := loadJSON[json.RawMessage](etlJSONPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load ETL JSON: %v\n", err)
		return 1
	}

	events := make([]domain.QuakeEvent, 0, len(features))
	parse := &phase{name: "Fixture parses as GeoJSON events"}
	for i, f := range features {
		ev, err := domain.ParseRawEvent(domain.RawEvent{Value: f})
		if err != nil {
			parse.errorf("feature %d: %v", i, err)
			continue
		}
		events = append(events, ev)
	}

	mechanisms, decomp := validateDecomposition(events, catalog)
	phases := []*phase{
		parse,
		validateCatalogParity(events, catalog),
		decomp,
		validateSchema(mechanisms),
	}

	var apiMechanisms []domain.Mechanism
	if apiJSONPath != "" {
		apiMechanisms, err = loadJSON[domain.Mechanism](apiJSONPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: load API JSON: %v\n", err)
			return 1
		}
		phases = append(phases, validateAPIFixture(apiMechanisms, mechanisms))
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Records: %d catalog rows, %d ETL features, %d mechanisms, %d API mechanisms\n",
		len(catalog), len(features), len(mechanisms), len(apiMechanisms))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// ── Data loading ──

func loadCatalog(path string) ([]catalogRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	all, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(all) < 2 {
		return nil, fmt.Errorf("no data rows in %s", path)
	}

	header := all[0]
	rows := make([]catalogRow, 0, len(all)-1)
	for i, rec := range all[1:] {
		fields := make(map[string]string, len(header))
		for j, h := range header {
			if j < len(rec) {
				fields[h] = strings.TrimSpace(rec[j])
			}
		}
		row, err := parseCatalogRow(fields)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+2, err)
		}
		row.lineNum = i + 2
		rows = append(rows, row)
	}
	return rows, nil
}

func parseCatalogRow(fields map[string]string) (catalogRow, error) {
	var nums [7]float64
	for i, col := range []string{"Lat", "Lon", "Depth", "Mag", "Strike", "Dip", "Rake"} {
		v, err := strconv.ParseFloat(fields[col], 64)
		if err != nil {
			return catalogRow{}, fmt.Errorf("%s: %w", col, err)
		}
		nums[i] = v
	}
	t, err := time.Parse(time.RFC3339, fields["Time"])
	if err != nil {
		return catalogRow{}, fmt.Errorf("Time: %w", err)
	}

	row := catalogRow{
		eventID: fields["EventID"],
		time:    t.UTC(),
		lat:     nums[0],
		lon:     nums[1],
		depth:   nums[2],
		mag:     nums[3],
		plane:   domain.NodalPlane{Strike: nums[4], Dip: nums[5], Rake: nums[6]},
	}
	for _, kind := range strings.Split(fields["Products"], "+") {
		switch kind {
		case "mt":
			row.products = append(row.products, domain.ProductMomentTensor)
		case "fm":
			row.products = append(row.products, domain.ProductFocalMechanism)
		default:
			return catalogRow{}, fmt.Errorf("unknown product kind %q", kind)
		}
	}
	return row, nil
}

func loadJSON[T any](path string) ([]T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var records []T
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// ── Phase 1: Catalog ↔ fixture parity ──

func validateCatalogParity(events []domain.QuakeEvent, catalog []catalogRow) *phase {
	p := &phase{name: "Catalog ↔ ETL fixture parity"}

	if len(events) != len(catalog) {
		p.errorf("count mismatch: %d events vs %d catalog rows", len(events), len(catalog))
	}

	byID := make(map[string]domain.QuakeEvent, len(events))
	for _, ev := range events {
		if _, dup := byID[ev.ID]; dup {
			p.errorf("duplicate event id %s", ev.ID)
		}
		byID[ev.ID] = ev
	}

	for _, row := range catalog {
		ev, ok := byID[row.eventID]
		if !ok {
			p.errorf("line %d: event %s missing from fixture", row.lineNum, row.eventID)
			continue
		}
		if !floatEq(ev.Geo.Lat, row.lat) || !floatEq(ev.Geo.Lon, row.lon) || !floatEq(ev.Depth, row.depth) {
			p.errorf("%s: location (%v, %v, %v) != catalog (%v, %v, %v)",
				row.eventID, ev.Geo.Lat, ev.Geo.Lon, ev.Depth, row.lat, row.lon, row.depth)
		}
		if !floatEq(ev.Magnitude, row.mag) {
			p.errorf("%s: magnitude %v != catalog %v", row.eventID, ev.Magnitude, row.mag)
		}
		if !ev.Time.Equal(row.time) {
			p.errorf("%s: time %s != catalog %s", row.eventID, ev.Time.Format(time.RFC3339Nano), row.time.Format(time.RFC3339Nano))
		}

		got := make([]string, 0, len(ev.Products))
		for _, prod := range ev.Products {
			got = append(got, prod.Type)
		}
		if !slices.Equal(got, row.products) {
			p.errorf("%s: products %v != catalog %v", row.eventID, got, row.products)
		}
	}
	return p
}

// ── Phase 2: Decomposition recovers the catalog geometry ──

func validateDecomposition(events []domain.QuakeEvent, catalog []catalogRow) ([]domain.Mechanism, *phase) {
	p := &phase{name: "Products decompose to catalog planes"}

	rows := make(map[string]catalogRow, len(catalog))
	for _, row := range catalog {
		rows[row.eventID] = row
	}

	var mechanisms []domain.Mechanism
	for _, ev := range events {
		row, known := rows[ev.ID]
		for _, prod := range ev.Products {
			label := ev.ID + " " + prod.Type

			tensor, err := domain.TensorFromProduct(prod)
			if err != nil {
				p.errorf("%s: %v", label, err)
				continue
			}
			d, err := domain.Decompose(tensor)
			if err != nil {
				p.errorf("%s: %v", label, err)
				continue
			}
			m := domain.EnrichMechanism(domain.NewMechanism(ev, prod, tensor, d))
			mechanisms = append(mechanisms, m)

			if d.PercentDC < 99.9 {
				p.errorf("%s: percent DC %.3f, want pure double couple", label, d.PercentDC)
			}
			if !known {
				continue
			}
			if !planesMatch(d.NP1, row.plane) && !planesMatch(d.NP2, row.plane) {
				p.errorf("%s: planes %v / %v do not contain catalog plane %v", label, d.NP1, d.NP2, row.plane)
			}
			switch prod.Type {
			case domain.ProductMomentTensor:
				if math.Abs(m.MomentMagnitude-row.mag) > 0.01 {
					p.errorf("%s: Mw %.2f != catalog %.2f", label, m.MomentMagnitude, row.mag)
				}
			case domain.ProductFocalMechanism:
				if m.MomentMagnitude != 0 {
					p.errorf("%s: nominal tensor reported Mw %.2f", label, m.MomentMagnitude)
				}
			}
		}
	}
	return mechanisms, p
}

// ── Phase 3: API fixture matches a fresh decomposition ──

func validateAPIFixture(api, fresh []domain.Mechanism) *phase {
	p := &phase{name: "API fixture ↔ fresh decomposition"}

	if len(api) != len(fresh) {
		p.errorf("count mismatch: %d API vs %d decomposed", len(api), len(fresh))
	}

	byID := make(map[string]domain.Mechanism, len(fresh))
	for _, m := range fresh {
		byID[m.ID] = m
	}
	for i := range api {
		a := &api[i]
		m, ok := byID[a.ID]
		if !ok {
			p.errorf("API[%d]: id %s has no matching product", i, a.ID)
			continue
		}
		if !planesMatch(a.NP1, m.NP1) || !planesMatch(a.NP2, m.NP2) {
			p.errorf("%s: planes %v / %v != %v / %v", a.ID, a.NP1, a.NP2, m.NP1, m.NP2)
		}
		if a.MomentMagnitude != m.MomentMagnitude {
			p.errorf("%s: Mw %v != %v", a.ID, a.MomentMagnitude, m.MomentMagnitude)
		}
		if a.FaultingStyle != m.FaultingStyle {
			p.errorf("%s: faulting_style %q != %q", a.ID, a.FaultingStyle, m.FaultingStyle)
		}
		if !a.TimeBucket.Equal(m.TimeBucket) {
			p.errorf("%s: time_bucket %s != %s", a.ID, a.TimeBucket, m.TimeBucket)
		}
	}
	return p
}

// ── Phase 4: Schema ──

func validateSchema(mechanisms []domain.Mechanism) *phase {
	p := &phase{name: "Mechanism schema"}
	for i := range mechanisms {
		m := &mechanisms[i]
		pf := func(format string, args ...any) {
			p.errorf("[%d] %s: %s", i, m.ID, fmt.Sprintf(format, args...))
		}

		if m.ID == "" || m.EventID == "" {
			pf("missing id or event_id")
		}
		if m.ProductType != domain.ProductMomentTensor && m.ProductType != domain.ProductFocalMechanism {
			pf("invalid product_type %q", m.ProductType)
		}
		if !slices.Contains(faultingStyles, m.FaultingStyle) {
			pf("invalid faulting_style %q", m.FaultingStyle)
		}
		for _, np := range []domain.NodalPlane{m.NP1, m.NP2} {
			if np.Strike < 0 || np.Strike >= 360 || np.Dip < 0 || np.Dip > 90 || np.Rake <= -180 || np.Rake > 180 {
				pf("plane out of range: %v", np)
			}
		}
		for _, ax := range []domain.PrincipalAxis{m.T, m.N, m.P} {
			if ax.Plunge < 0 || ax.Plunge > math.Pi/2 || ax.Azimuth < 0 || ax.Azimuth >= 2*math.Pi {
				pf("%s axis out of range: az=%v pl=%v", ax.Name, ax.Azimuth, ax.Plunge)
			}
		}
		if m.TimeBucket.IsZero() || !m.TimeBucket.Equal(m.EventTime.Truncate(time.Hour)) {
			pf("time_bucket %s is not the event hour", m.TimeBucket)
		}
	}
	return p
}

// ── Helpers ──

func planesMatch(a, b domain.NodalPlane) bool {
	return angleDiff(a.Strike, b.Strike) <= planeTolerance &&
		math.Abs(a.Dip-b.Dip) <= planeTolerance &&
		angleDiff(a.Rake, b.Rake) <= planeTolerance
}

// angleDiff returns the smallest difference between two angles in degrees.
func angleDiff(a, b float64) float64 {
	d := math.Mod(math.Abs(a-b), 360)
	return math.Min(d, 360-d)
}

func floatEq(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}
