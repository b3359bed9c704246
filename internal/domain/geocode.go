package domain

import (
	"context"
	"log/slog"
)

// GeocodingResult is the best place a geocoding provider found for a query.
type GeocodingResult struct {
	Lat              float64
	Lon              float64
	FormattedAddress string
	PlaceName        string
	Confidence       float64 // provider relevance, 0.0 to 1.0
}

// Geocoder resolves an extracted city and state to a place.
type Geocoder interface {
	ForwardGeocode(ctx context.Context, city, state string) (GeocodingResult, error)
}

// Geocode sources.
const (
	GeoSourceForward  = "forward"
	GeoSourceOriginal = "original"
	GeoSourceFailed   = "failed"
)

// GeoEnrichment is the optional geocoded form of the project site. It is
// informational for the document and never feeds region classification.
type GeoEnrichment struct {
	Lat              float64 `json:"lat,omitempty"`
	Lon              float64 `json:"lon,omitempty"`
	FormattedAddress string  `json:"formatted_address,omitempty"`
	PlaceName        string  `json:"place_name,omitempty"`
	Confidence       float64 `json:"confidence,omitempty"`
	Source           string  `json:"source"`
}

// GeocodeLocation forward-geocodes the location's city and state. It returns
// nil when geocoding is disabled, and degrades to GeoSourceOriginal or
// GeoSourceFailed instead of returning an error.
func GeocodeLocation(ctx context.Context, loc Location, geocoder Geocoder, logger *slog.Logger) *GeoEnrichment {
	if geocoder == nil {
		return nil
	}

	if loc.City == "" || loc.State == "" {
		return &GeoEnrichment{Source: GeoSourceOriginal}
	}

	result, err := geocoder.ForwardGeocode(ctx, loc.City, loc.State)
	if err != nil {
		logger.Warn("forward geocoding failed",
			"city", loc.City,
			"state", loc.State,
			"error", err,
		)
		return &GeoEnrichment{Source: GeoSourceFailed}
	}

	if result.Lat == 0 && result.Lon == 0 {
		return &GeoEnrichment{Source: GeoSourceOriginal}
	}

	return &GeoEnrichment{
		Lat:              result.Lat,
		Lon:              result.Lon,
		FormattedAddress: result.FormattedAddress,
		PlaceName:        result.PlaceName,
		Confidence:       result.Confidence,
		Source:           GeoSourceForward,
	}
}
