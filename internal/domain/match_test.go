package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const iccOnlyCatalog = `
manufacturers:
  acme:
    name: Acme Roofing
    approvals:
      icc_es:
        identifier: ESR-9999
        max_design_pressure: 500
`

func analyzeWith(t *testing.T, m *Matcher, text string) (Requirements, WindData, MatchOutcome) {
	t.Helper()
	req, err := ExtractRequirements(text)
	require.NoError(t, err)
	wind := EstimateWindLoads(req)
	outcome, err := m.Match(req, wind)
	require.NoError(t, err)
	return req, wind, outcome
}

func TestDetermineRequiredApproval(t *testing.T) {
	miami := ClassifyRegion("FL", "Miami")
	orlando := ClassifyRegion("FL", "Orlando")
	dallas := ClassifyRegion("TX", "Dallas")

	tests := []struct {
		name string
		loc  Location
		want RequiredApproval
	}{
		{
			name: "HVHZ",
			loc:  Location{City: "Miami", State: "FL", Region: &miami},
			want: RequiredApproval{Tier: TierMiamiDade, Description: "Miami-Dade NOA required for HVHZ", Mandatory: true},
		},
		{
			name: "florida outside HVHZ",
			loc:  Location{City: "Orlando", State: "FL", Region: &orlando},
			want: RequiredApproval{Tier: TierFloridaStatewide, Description: "Florida Product Approval required", Mandatory: true, Fallback: TierICCES},
		},
		{
			name: "elsewhere",
			loc:  Location{City: "Dallas", State: "TX", Region: &dallas},
			want: RequiredApproval{Tier: TierICCES, Description: "ICC-ES Report recommended"},
		},
		{
			name: "no location",
			loc:  Location{},
			want: RequiredApproval{Tier: TierICCES, Description: "ICC-ES Report recommended"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetermineRequiredApproval(tt.loc))
		})
	}
}

func TestMatch_Dallas(t *testing.T) {
	m := NewMatcher(nil, discardLogger())

	_, wind, outcome := analyzeWith(t, m, dallasInput)

	assert.Equal(t, 140.0, wind.WindSpeed)
	assert.Equal(t, TierICCES, outcome.Required.Tier)
	assert.False(t, outcome.Required.Mandatory)
	require.Len(t, outcome.Matches, 1)

	match := outcome.Matches[0]
	assert.Equal(t, GAF, match.ManufacturerKey)
	assert.Equal(t, "GAF", match.ManufacturerName)
	assert.Equal(t, TierICCES, match.ApprovalUsed.Tier)
	assert.Equal(t, "ESR-3957", match.ApprovalUsed.Approval.Identifier)
	assert.InDelta(t, 165-140.4928, match.PressureMargin, 1e-9)
	assert.Equal(t, "EverGuard TPO Fleece-Back", match.Products.Membrane.Name)
	assert.Empty(t, outcome.Rejections)
}

// The HVHZ corner pressure at 175 mph exceeds the 185 psf NOA ratings, so
// both requested manufacturers are rejected on pressure.
func TestMatch_MiamiExceedsNOARatings(t *testing.T) {
	m := NewMatcher(nil, discardLogger())

	req, wind, outcome := analyzeWith(t, m, miamiInput)

	assert.True(t, req.Location.Region.HVHZ)
	assert.Equal(t, 175.0, wind.WindSpeed)
	assert.InDelta(t, 219.52, outcome.MaxPressure, 1e-9)
	assert.Equal(t, TierMiamiDade, outcome.Required.Tier)
	assert.True(t, outcome.Required.Mandatory)
	assert.Empty(t, outcome.Matches)

	require.Len(t, outcome.Rejections, 2)
	assert.Equal(t, JohnsManville, outcome.Rejections[0].ManufacturerKey)
	assert.Equal(t, Carlisle, outcome.Rejections[1].ManufacturerKey)
	for _, r := range outcome.Rejections {
		assert.Equal(t, RejectInsufficientPressure, r.Reason)
		assert.Contains(t, r.Detail, "185.0")
	}
}

func TestMatch_NoManufacturers(t *testing.T) {
	m := NewMatcher(nil, discardLogger())

	req, _, outcome := analyzeWith(t, m, "TPO roof 30ft Dallas TX")

	assert.Empty(t, req.Manufacturers)
	assert.NotNil(t, outcome.Matches)
	assert.Empty(t, outcome.Matches)
	assert.Empty(t, outcome.Rejections)
}

func TestMatch_NotInCatalog(t *testing.T) {
	m := NewMatcher(nil, discardLogger())

	_, _, outcome := analyzeWith(t, m, laInput)

	assert.Empty(t, outcome.Matches)
	require.Len(t, outcome.Rejections, 1)
	assert.Equal(t, Elevate, outcome.Rejections[0].ManufacturerKey)
	assert.Equal(t, RejectNotInCatalog, outcome.Rejections[0].Reason)
}

func TestMatch_NilLoggerUsesDefault(t *testing.T) {
	m := NewMatcher(nil, nil)

	var outcome MatchOutcome
	require.NotPanics(t, func() {
		_, _, outcome = analyzeWith(t, m, laInput)
	})
	require.Len(t, outcome.Rejections, 1)
	assert.Equal(t, RejectNotInCatalog, outcome.Rejections[0].Reason)
}

func TestMatch_FloridaStatewide(t *testing.T) {
	m := NewMatcher(nil, discardLogger())

	_, _, outcome := analyzeWith(t, m, "GAF TPO 30ft Orlando FL, JM alternate")

	assert.Equal(t, TierFloridaStatewide, outcome.Required.Tier)
	require.Len(t, outcome.Matches, 1)
	assert.Equal(t, GAF, outcome.Matches[0].ManufacturerKey)
	assert.Equal(t, TierFloridaStatewide, outcome.Matches[0].ApprovalUsed.Tier)
	assert.InDelta(t, 175-140.4928, outcome.Matches[0].PressureMargin, 1e-9)

	// JM holds only Miami-Dade and ICC-ES approvals.
	require.Len(t, outcome.Rejections, 1)
	assert.Equal(t, JohnsManville, outcome.Rejections[0].ManufacturerKey)
	assert.Equal(t, RejectNoSuitableApproval, outcome.Rejections[0].Reason)
}

func TestMatch_MandatoryNeverSatisfiedByFallback(t *testing.T) {
	catalog, err := ParseCatalog([]byte(iccOnlyCatalog))
	require.NoError(t, err)
	m := NewMatcher(catalog, discardLogger())

	for _, city := range []string{"Miami", "Orlando"} {
		region := ClassifyRegion("FL", city)
		req := Requirements{
			Manufacturers: []ManufacturerKey{"acme"},
			Location:      Location{City: city, State: "FL", Region: &region},
		}

		outcome, err := m.Match(req, EstimateWindLoads(req))
		require.NoError(t, err)

		assert.True(t, outcome.Required.Mandatory, city)
		assert.Empty(t, outcome.Matches, city)
		require.Len(t, outcome.Rejections, 1, city)
		assert.Equal(t, RejectNoSuitableApproval, outcome.Rejections[0].Reason, city)
	}
}

func TestCheckApproval_OptionalFallback(t *testing.T) {
	catalog, err := ParseCatalog([]byte(iccOnlyCatalog))
	require.NoError(t, err)
	entry, ok := catalog.Lookup("acme")
	require.True(t, ok)

	optional := RequiredApproval{Tier: TierFloridaStatewide, Fallback: TierICCES}
	used, satisfied := checkApproval(entry, optional)
	assert.True(t, satisfied)
	assert.Equal(t, TierICCES, used.Tier)

	optional.Mandatory = true
	used, satisfied = checkApproval(entry, optional)
	assert.False(t, satisfied)
	assert.Equal(t, TierICCES, used.Tier)
}

func TestMatch_MarginNeverNegative(t *testing.T) {
	m := NewMatcher(nil, discardLogger())
	all := DefaultCatalog().Keys()
	locations := [][2]string{
		{"FL", "Miami"}, {"FL", "Orlando"}, {"TX", "Houston"},
		{"CA", "San Diego"}, {"CO", "Denver"}, {"", ""},
	}

	for _, l := range locations {
		req := Requirements{Manufacturers: all}
		if l[0] != "" {
			region := ClassifyRegion(l[0], l[1])
			req.Location = Location{City: l[1], State: l[0], Region: &region}
		}

		outcome, err := m.Match(req, EstimateWindLoads(req))
		require.NoError(t, err)
		assert.Equal(t, len(all), len(outcome.Matches)+len(outcome.Rejections))
		for _, match := range outcome.Matches {
			assert.GreaterOrEqual(t, match.PressureMargin, 0.0, "%v %s", l, match.ManufacturerKey)
		}
	}
}

func TestMatch_MissingWindData(t *testing.T) {
	m := NewMatcher(nil, discardLogger())

	_, err := m.Match(Requirements{Manufacturers: []ManufacturerKey{GAF}}, WindData{})
	require.Error(t, err)

	assert.True(t, errors.Is(err, ErrMissingStage))
	var se *StageError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, StageMatch, se.Stage)
	assert.Equal(t, "design_pressures", se.Field)
}
