// Command validate performs integrity checks across the mock data of the roof
// spec pipeline: the project scenarios and the generated analyses fixture. It
// verifies scenario expectations, fixture parity with the current domain
// code, and the analysis contract consumed by the document assembler.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -scenarios data/mock/project_scenarios.json \
//	  -analyses data/mock/project_analyses.json
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/couchcryptid/roof-spec-etl/internal/domain"
	"github.com/couchcryptid/roof-spec-etl/internal/scenario"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// fixtureTime must match genmock for AnalyzedAt reproducibility.
var fixtureTime = time.Date(2026, time.March, 2, 15, 0, 0, 0, time.UTC)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	scenariosPath := flag.String("scenarios", "data/mock/project_scenarios.json", "path to the project scenarios")
	analysesPath := flag.String("analyses", "data/mock/project_analyses.json", "path to the generated analyses fixture")
	flag.Parse()

	if code := run(*scenariosPath, *analysesPath); code != 0 {
		os.Exit(code)
	}
}

func run(scenariosPath, analysesPath string) int {
	domain.SetClock(clockwork.NewFakeClockAt(fixtureTime))
	defer domain.SetClock(nil)

	// ── Load all data sources ──
	fmt.Println("=== Roof Spec Data Integrity Validation ===")
	fmt.Println()

	scenarios, err := scenario.Load(scenariosPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load scenarios: %v\n", err)
		return 1
	}

	fixture, err := loadJSON[domain.Analysis](analysesPath)
	if errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "FATAL: %s not found; generate it with: go run ./cmd/genmock -out %s\n", analysesPath, analysesPath)
		return 1
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load analyses: %v\n", err)
		return 1
	}

	catalog := domain.DefaultCatalog()
	matcher := domain.NewMatcher(catalog, slog.Default())

	// ── Run validation phases ──
	phases := []*phase{
		validateScenarios(scenarios, matcher),
		validateFixtureParity(scenarios, fixture, matcher),
		validateContract(fixture, catalog),
	}

	// ── Report results ──
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
	fmt.Printf("Records: %d scenarios, %d fixture analyses, %d catalog entries\n",
		len(scenarios), len(fixture), catalog.Len())

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

func loadJSON[T any](path string) ([]T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// ── Phase 1: Scenario Expectations ──
// Runs every scenario through the domain stages and checks its expectations.

func validateScenarios(scenarios []scenario.Scenario, matcher *domain.Matcher) *phase {
	p := &phase{name: "Phase 1: Scenario Expectations"}

	names := make(map[string]bool, len(scenarios))
	for _, sc := range scenarios {
		if names[sc.Name] {
			p.errorf("%s: duplicate scenario name", sc.Name)
		}
		names[sc.Name] = true

		a, err := domain.Analyze(sc.Request, matcher)
		if err != nil {
			p.errorf("%s: analyze: %v", sc.Name, err)
			continue
		}
		for _, problem := range sc.Expect.Check(a) {
			p.errorf("%s: %s", sc.Name, problem)
		}
	}
	return p
}

// ── Phase 2: Fixture Parity ──
// Validates that the committed analyses match what the current code generates.

func validateFixtureParity(scenarios []scenario.Scenario, fixture []domain.Analysis, matcher *domain.Matcher) *phase {
	p := &phase{name: "Phase 2: Fixture Parity (genmock output)"}

	if len(fixture) != len(scenarios) {
		p.errorf("count mismatch: %d scenarios, %d fixture analyses", len(scenarios), len(fixture))
		return p
	}

	for i, sc := range scenarios {
		want, err := domain.Analyze(sc.Request, matcher)
		if err != nil {
			p.errorf("%s: analyze: %v", sc.Name, err)
			continue
		}
		if diff := cmp.Diff(want, fixture[i], cmpopts.EquateEmpty()); diff != "" {
			p.errorf("%s: fixture is stale, rerun genmock (-want +fixture):\n%s", sc.Name, diff)
		}
	}
	return p
}

// ── Phase 3: Contract Alignment ──
// Validates the fields the document assembler relies on.

func validateContract(fixture []domain.Analysis, catalog *domain.Catalog) *phase {
	p := &phase{name: "Phase 3: Contract Alignment"}

	for i := range fixture {
		a := &fixture[i]
		pf := func(format string, args ...any) {
			p.errorf("analysis[%d] (%s): %s", i, a.Input, fmt.Sprintf(format, args...))
		}
		checkIdentity(pf, a)
		checkWind(pf, a)
		checkMatches(pf, a, catalog)
	}
	return p
}

func checkIdentity(pf func(string, ...any), a *domain.Analysis) {
	id, err := uuid.Parse(a.ID)
	switch {
	case err != nil:
		pf("id %q is not a UUID: %v", a.ID, err)
	case id.Version() != 5:
		pf("id %q is version %d, expected 5", a.ID, id.Version())
	case a.ID != domain.AnalysisID(a.Input):
		pf("id %q does not derive from the input", a.ID)
	}
	if a.AnalyzedAt.IsZero() {
		pf("analyzed_at is zero")
	}
}

func checkWind(pf func(string, ...any), a *domain.Analysis) {
	if a.Wind.WindSpeedSource != domain.WindSpeedSourceFallback {
		pf("wind_speed_source %q, expected %q", a.Wind.WindSpeedSource, domain.WindSpeedSourceFallback)
	}
	if len(a.Wind.DesignPressures) != len(domain.Zones) {
		pf("design_pressures has %d zones, expected %d", len(a.Wind.DesignPressures), len(domain.Zones))
	}
	for _, z := range domain.Zones {
		if v, ok := a.Wind.DesignPressures[z]; !ok || v <= 0 {
			pf("design_pressures[%s] = %g, expected a positive magnitude", z, v)
		}
	}
	if a.MaxPressure != a.Wind.MaxPressure() {
		pf("max_pressure %g does not equal the peak zone pressure %g", a.MaxPressure, a.Wind.MaxPressure())
	}
}

func checkMatches(pf func(string, ...any), a *domain.Analysis, catalog *domain.Catalog) {
	if !a.RequiredApproval.Tier.Valid() {
		pf("required tier %q is not a known tier", a.RequiredApproval.Tier)
	}
	for _, m := range a.Matches {
		if _, ok := catalog.Lookup(m.ManufacturerKey); !ok {
			pf("match %s is not in the catalog", m.ManufacturerKey)
		}
		if !m.ApprovalUsed.Tier.Valid() {
			pf("match %s used unknown tier %q", m.ManufacturerKey, m.ApprovalUsed.Tier)
		}
		if m.PressureMargin < 0 {
			pf("match %s has negative pressure margin %g", m.ManufacturerKey, m.PressureMargin)
		}
		if m.ApprovalUsed.Tier != a.RequiredApproval.Tier && a.RequiredApproval.Mandatory {
			pf("match %s used %s for a mandatory %s requirement", m.ManufacturerKey, m.ApprovalUsed.Tier, a.RequiredApproval.Tier)
		}
	}
}
