package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// Warnings attached to an analysis for the document assembler to disclose.
const (
	WarnEstimatedWind       = "wind speed is a fallback estimation, not a certified calculation"
	WarnNoLocation          = "no location found; inland default wind speed applied"
	WarnNoManufacturers     = "no manufacturer constraint; suggest alternatives"
	WarnNoCompatibleSystems = "no compatible systems found"
)

// analysisNamespace scopes analysis UUIDs so identical descriptions always
// produce the same ID.
var analysisNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/couchcryptid/roof-spec-etl/analysis"))

// clock stamps Analysis.AnalyzedAt.
var clock = clockwork.NewRealClock()

// SetClock replaces the AnalyzedAt time source so fixtures are reproducible.
// Pass nil to return to the real clock.
func SetClock(c clockwork.Clock) {
	if c == nil {
		c = clockwork.NewRealClock()
	}
	clock = c
}

// Analysis is the composite handed to the document assembler.
type Analysis struct {
	ID               string           `json:"id"`
	RequestID        string           `json:"request_id,omitempty"`
	Input            string           `json:"input"`
	Requirements     Requirements     `json:"requirements"`
	Wind             WindData         `json:"wind"`
	RequiredApproval RequiredApproval `json:"required_approval"`
	MaxPressure      float64          `json:"max_pressure"`
	Matches          []MatchResult    `json:"matches"`
	Rejections       []Rejection      `json:"rejections,omitempty"`
	Warnings         []string         `json:"warnings,omitempty"`
	Geocode          *GeoEnrichment   `json:"geocode,omitempty"`
	AnalyzedAt       time.Time        `json:"analyzed_at"`
}

// Analyze runs extraction, wind estimation and approval matching over one
// request. It fails only when a stage cannot build its output; text with no
// recognizable content yields a low-confidence analysis.
func Analyze(req ProjectRequest, matcher *Matcher) (Analysis, error) {
	if matcher == nil {
		return Analysis{}, stageErr(StageMatch, "matcher", ErrMissingStage)
	}
	requirements, err := ExtractRequirements(req.Description)
	if err != nil {
		return Analysis{}, err
	}

	wind := EstimateWindLoads(requirements)

	outcome, err := matcher.Match(requirements, wind)
	if err != nil {
		return Analysis{}, err
	}

	return Analysis{
		ID:               AnalysisID(req.Description),
		RequestID:        req.ID,
		Input:            req.Description,
		Requirements:     requirements,
		Wind:             wind,
		RequiredApproval: outcome.Required,
		MaxPressure:      outcome.MaxPressure,
		Matches:          outcome.Matches,
		Rejections:       outcome.Rejections,
		Warnings:         analysisWarnings(requirements, wind, outcome),
		AnalyzedAt:       clock.Now().UTC(),
	}, nil
}

// AnalysisID derives a deterministic UUIDv5 from the trimmed description so
// replays of the same description are idempotent downstream.
func AnalysisID(description string) string {
	return uuid.NewSHA1(analysisNamespace, []byte(strings.TrimSpace(description))).String()
}

func analysisWarnings(req Requirements, wind WindData, outcome MatchOutcome) []string {
	var warnings []string
	if wind.IsEstimated() {
		warnings = append(warnings, WarnEstimatedWind)
	}
	if !req.Location.HasRegion() {
		warnings = append(warnings, WarnNoLocation)
	}
	switch {
	case len(req.Manufacturers) == 0:
		warnings = append(warnings, WarnNoManufacturers)
	case len(outcome.Matches) == 0:
		warnings = append(warnings, WarnNoCompatibleSystems)
	}
	return warnings
}
