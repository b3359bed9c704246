// Package scenario loads the project description fixtures under data/mock and
// checks analyses against their recorded expectations.
package scenario

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"slices"

	"github.com/couchcryptid/roof-spec-etl/internal/domain"
)

// Scenario is one fixture: a project request and what its analysis must show.
type Scenario struct {
	Name    string                `json:"name"`
	Request domain.ProjectRequest `json:"request"`
	Expect  Expectation           `json:"expect"`
}

// Expectation lists the observable analysis outcomes for a scenario.
type Expectation struct {
	Manufacturers []domain.ManufacturerKey                          `json:"manufacturers"`
	City          string                                            `json:"city"`
	State         string                                            `json:"state"`
	HVHZ          bool                                              `json:"hvhz"`
	WindSpeed     float64                                           `json:"wind_speed"`
	RequiredTier  domain.ApprovalTier                               `json:"required_tier"`
	Matched       []domain.ManufacturerKey                          `json:"matched"`
	Rejected      map[domain.ManufacturerKey]domain.RejectionReason `json:"rejected"`
	Warnings      []string                                          `json:"warnings"`
}

// Load reads a scenario fixture file.
func Load(path string) ([]Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenarios: %w", err)
	}
	var scenarios []Scenario
	if err := json.Unmarshal(data, &scenarios); err != nil {
		return nil, fmt.Errorf("decode scenarios: %w", err)
	}
	if len(scenarios) == 0 {
		return nil, fmt.Errorf("decode scenarios: %s has no scenarios", path)
	}
	return scenarios, nil
}

// Check returns one message per expectation the analysis does not meet.
func (e Expectation) Check(a domain.Analysis) []string {
	var problems []string
	fail := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if !slices.Equal(e.Manufacturers, a.Requirements.Manufacturers) {
		fail("manufacturers: expected %v, got %v", e.Manufacturers, a.Requirements.Manufacturers)
	}
	loc := a.Requirements.Location
	if loc.City != e.City {
		fail("city: expected %q, got %q", e.City, loc.City)
	}
	if loc.State != e.State {
		fail("state: expected %q, got %q", e.State, loc.State)
	}
	if hvhz := loc.Region != nil && loc.Region.HVHZ; hvhz != e.HVHZ {
		fail("hvhz: expected %t, got %t", e.HVHZ, hvhz)
	}
	if math.Abs(a.Wind.WindSpeed-e.WindSpeed) > 1e-9 {
		fail("wind_speed: expected %g, got %g", e.WindSpeed, a.Wind.WindSpeed)
	}
	if a.RequiredApproval.Tier != e.RequiredTier {
		fail("required_tier: expected %q, got %q", e.RequiredTier, a.RequiredApproval.Tier)
	}

	matched := make([]domain.ManufacturerKey, 0, len(a.Matches))
	for _, m := range a.Matches {
		matched = append(matched, m.ManufacturerKey)
	}
	if !slices.Equal(e.Matched, matched) {
		fail("matched: expected %v, got %v", e.Matched, matched)
	}

	if len(a.Rejections) != len(e.Rejected) {
		fail("rejections: expected %d, got %d", len(e.Rejected), len(a.Rejections))
	}
	for _, r := range a.Rejections {
		want, ok := e.Rejected[r.ManufacturerKey]
		switch {
		case !ok:
			fail("rejection %s: unexpected (%s)", r.ManufacturerKey, r.Reason)
		case want != r.Reason:
			fail("rejection %s: expected %s, got %s", r.ManufacturerKey, want, r.Reason)
		}
	}

	if !slices.Equal(e.Warnings, a.Warnings) {
		fail("warnings: expected %q, got %q", e.Warnings, a.Warnings)
	}
	return problems
}
