// Command genmock runs the project scenarios through the analysis stages and
// writes the resulting analyses as a JSON fixture for downstream consumers.
// It uses the actual domain package so the fixture matches real pipeline
// behavior.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -scenarios data/mock/project_scenarios.json \
//	  -out data/mock/project_analyses.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/couchcryptid/roof-spec-etl/internal/domain"
	"github.com/couchcryptid/roof-spec-etl/internal/scenario"
	"github.com/jonboulle/clockwork"
)

// fixtureTime is the frozen AnalyzedAt of every generated analysis.
var fixtureTime = time.Date(2026, time.March, 2, 15, 0, 0, 0, time.UTC)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	scenariosPath := flag.String("scenarios", "data/mock/project_scenarios.json", "path to the project scenarios")
	out := flag.String("out", "data/mock/project_analyses.json", "output path for the analyses fixture")
	flag.Parse()

	scenarios, err := scenario.Load(*scenariosPath)
	if err != nil {
		return err
	}

	analyses, err := generate(scenarios)
	if err != nil {
		return err
	}

	if err := writeJSON(*out, analyses); err != nil {
		return fmt.Errorf("writing fixture: %w", err)
	}
	log.Printf("wrote %d analyses: %s", len(analyses), *out)

	printStats(analyses)
	return nil
}

func generate(scenarios []scenario.Scenario) ([]domain.Analysis, error) {
	domain.SetClock(clockwork.NewFakeClockAt(fixtureTime))
	defer domain.SetClock(nil)

	matcher := domain.NewMatcher(domain.DefaultCatalog(), slog.Default())

	analyses := make([]domain.Analysis, 0, len(scenarios))
	for _, sc := range scenarios {
		a, err := domain.Analyze(sc.Request, matcher)
		if err != nil {
			return nil, fmt.Errorf("scenario %s: %w", sc.Name, err)
		}
		if problems := sc.Expect.Check(a); len(problems) > 0 {
			log.Printf("scenario %s drifted from expectations: %v", sc.Name, problems)
		}
		analyses = append(analyses, a)
	}
	return analyses, nil
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}

// statsResult holds aggregated counts for printStats reporting.
type statsResult struct {
	tierCounts      map[domain.ApprovalTier]int
	rejectionCounts map[domain.RejectionReason]int
	warningCounts   map[string]int
	stateCounts     map[string]int
	matches         int
	hvhz            int
}

func collectStats(analyses []domain.Analysis) statsResult {
	s := statsResult{
		tierCounts:      map[domain.ApprovalTier]int{},
		rejectionCounts: map[domain.RejectionReason]int{},
		warningCounts:   map[string]int{},
		stateCounts:     map[string]int{},
	}
	for i := range analyses {
		a := &analyses[i]
		s.tierCounts[a.RequiredApproval.Tier]++
		s.matches += len(a.Matches)
		for _, r := range a.Rejections {
			s.rejectionCounts[r.Reason]++
		}
		for _, w := range a.Warnings {
			s.warningCounts[w]++
		}
		state := a.Requirements.Location.State
		if state == "" {
			state = "(none)"
		}
		s.stateCounts[state]++
		if r := a.Requirements.Location.Region; r != nil && r.HVHZ {
			s.hvhz++
		}
	}
	return s
}

func printStats(analyses []domain.Analysis) {
	stats := collectStats(analyses)

	fmt.Println("\n=== Stats for updating test assertions ===")
	fmt.Printf("Total: %d\n", len(analyses))
	fmt.Printf("By tier: miami_dade=%d, florida_statewide=%d, icc_es=%d\n",
		stats.tierCounts[domain.TierMiamiDade], stats.tierCounts[domain.TierFloridaStatewide], stats.tierCounts[domain.TierICCES])
	fmt.Printf("HVHZ: %d\n", stats.hvhz)
	fmt.Printf("Matches: %d\n", stats.matches)
	fmt.Printf("Rejections: not_in_catalog=%d, no_suitable_approval=%d, insufficient_pressure=%d\n",
		stats.rejectionCounts[domain.RejectNotInCatalog],
		stats.rejectionCounts[domain.RejectNoSuitableApproval],
		stats.rejectionCounts[domain.RejectInsufficientPressure])

	states := make([]string, 0, len(stats.stateCounts))
	for s := range stats.stateCounts {
		states = append(states, s)
	}
	sort.Strings(states)
	fmt.Printf("States (%d):", len(states))
	for _, s := range states {
		fmt.Printf(" %s=%d", s, stats.stateCounts[s])
	}
	fmt.Println()

	fmt.Println("Warnings:")
	for _, w := range []string{domain.WarnEstimatedWind, domain.WarnNoLocation, domain.WarnNoManufacturers, domain.WarnNoCompatibleSystems} {
		fmt.Printf("  %d  %s\n", stats.warningCounts[w], w)
	}
}
