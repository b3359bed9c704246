package domain

import "strings"

var (
	coastalStates = stateSet(
		"FL", "CA", "TX", "LA", "MS", "AL", "GA", "SC", "NC", "VA", "MD", "DE",
		"NJ", "NY", "CT", "RI", "MA", "NH", "ME", "WA", "OR", "AK", "HI",
	)
	hurricaneStates = stateSet("FL", "TX", "LA", "MS", "AL", "GA", "SC", "NC")
	coldStates      = stateSet("AK", "MN", "WI", "MI", "NY", "VT", "NH", "ME", "MT", "ND", "SD", "WY")
	hotStates       = stateSet("FL", "TX", "AZ", "NV", "CA", "LA", "MS", "AL", "GA")

	// hvhzCounties are the Florida High-Velocity Hurricane Zone counties,
	// matched against the lowercased city in order. First match wins.
	hvhzCounties = []keywordRule[string]{
		{keywords: []string{"miami", "dade"}, value: "miami-dade"},
		{keywords: []string{"fort lauderdale", "broward"}, value: "broward"},
		{keywords: []string{"west palm beach", "palm beach"}, value: "palm beach"},
	}
)

// ClassifyRegion maps a two-letter state code and optional city to its hazard
// profile. It always returns a profile; unknown states are temperate,
// non-coastal and outside hurricane risk.
//
// Climate zones are checked cold first, then hot, so a state listed in both
// tables is classified cold.
func ClassifyRegion(state, city string) RegionProfile {
	state = strings.ToUpper(strings.TrimSpace(state))

	profile := RegionProfile{
		IsCoastal:     coastalStates[state],
		HurricaneRisk: hurricaneStates[state],
		ClimateZone:   climateZone(state),
	}

	if state == "FL" {
		if county, ok := firstKeyword(strings.ToLower(city), hvhzCounties); ok {
			profile.HVHZ = true
			profile.County = county
		}
	}

	return profile
}

func climateZone(state string) ClimateZone {
	switch {
	case coldStates[state]:
		return ClimateCold
	case hotStates[state]:
		return ClimateHot
	default:
		return ClimateTemperate
	}
}

func stateSet(codes ...string) map[string]bool {
	set := make(map[string]bool, len(codes))
	for _, c := range codes {
		set[c] = true
	}
	return set
}
