package domain

// PressureZone identifies a low-slope roof wind zone.
type PressureZone string

const (
	ZoneField     PressureZone = "zone1_prime"
	ZonePerimeter PressureZone = "zone2"
	ZoneCorner    PressureZone = "zone3"
)

// Zones lists the pressure zones from field to corner.
var Zones = []PressureZone{ZoneField, ZonePerimeter, ZoneCorner}

const (
	// WindSpeedSourceFallback tags wind data produced by the regional
	// estimate rather than a certified site-specific calculation.
	WindSpeedSourceFallback = "fallback_estimation"

	defaultHeightFt  = 30
	exposureCategory = "C"
	riskCategory     = "II"

	// velocityPressureFactor is the 0.00256 constant of qz = 0.00256·Kz·Kzt·Kd·V².
	// The K factors are fixed at 1.0.
	velocityPressureFactor = 0.00256
)

// Nominal design wind speeds in mph, highest hazard first.
const (
	windSpeedHVHZ      = 175
	windSpeedHurricane = 140
	windSpeedCoastal   = 110
	windSpeedDefault   = 90
)

var zoneCoefficients = map[PressureZone]float64{
	ZoneField:     -1.2,
	ZonePerimeter: -1.8,
	ZoneCorner:    -2.8,
}

// WindData is the estimated wind loading for a project. Pressures are
// magnitudes in psf.
type WindData struct {
	WindSpeed        float64                  `json:"wind_speed"`
	WindSpeedSource  string                   `json:"wind_speed_source"`
	RiskCategory     string                   `json:"risk_category"`
	ExposureCategory string                   `json:"exposure_category"`
	ASCEStandard     string                   `json:"asce_standard"`
	DesignPressures  map[PressureZone]float64 `json:"design_pressures"`
	Height           int                      `json:"height"`
	Width            *int                     `json:"width,omitempty"`
	Address          string                   `json:"address,omitempty"`
	IsCoastal        bool                     `json:"is_coastal"`
}

// EstimateWindLoads derives a nominal wind speed from the region and scales
// the velocity pressure by fixed zone coefficients. It never fails: a missing
// region yields the inland default and a missing height defaults to 30 ft.
func EstimateWindLoads(req Requirements) WindData {
	region := RegionProfile{}
	if req.Location.Region != nil {
		region = *req.Location.Region
	}

	speed := nominalWindSpeed(region)
	height := defaultHeightFt
	if req.Building.Height != nil {
		height = *req.Building.Height
	}

	standard := req.Compliance.ASCEStandard
	if standard == "" {
		standard = ASCE7_22
	}

	return WindData{
		WindSpeed:        speed,
		WindSpeedSource:  WindSpeedSourceFallback,
		RiskCategory:     riskCategory,
		ExposureCategory: exposureCategory,
		ASCEStandard:     standard,
		DesignPressures:  designPressures(VelocityPressure(speed)),
		Height:           height,
		Width:            req.Building.Width,
		Address:          req.Location.Address,
		IsCoastal:        region.IsCoastal,
	}
}

// VelocityPressure returns qz in psf for a wind speed in mph.
func VelocityPressure(windSpeed float64) float64 {
	return velocityPressureFactor * windSpeed * windSpeed * 1.0
}

// MaxPressure returns the largest zone pressure magnitude.
func (w WindData) MaxPressure() float64 {
	peak := 0.0
	for _, p := range w.DesignPressures {
		if p > peak {
			peak = p
		}
	}
	return peak
}

// IsEstimated reports whether the wind speed came from the regional fallback.
func (w WindData) IsEstimated() bool {
	return w.WindSpeedSource == WindSpeedSourceFallback
}

// nominalWindSpeed checks hazards from most to least severe. Hurricane risk
// outranks plain coastal exposure.
func nominalWindSpeed(region RegionProfile) float64 {
	switch {
	case region.HVHZ:
		return windSpeedHVHZ
	case region.HurricaneRisk:
		return windSpeedHurricane
	case region.IsCoastal:
		return windSpeedCoastal
	default:
		return windSpeedDefault
	}
}

func designPressures(qz float64) map[PressureZone]float64 {
	out := make(map[PressureZone]float64, len(zoneCoefficients))
	for zone, coeff := range zoneCoefficients {
		p := qz * coeff
		if p < 0 {
			p = -p
		}
		out[zone] = p
	}
	return out
}
