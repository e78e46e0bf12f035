package domain

import (
	"context"
	"log/slog"
)

// Geocoding outcomes recorded in Mechanism.GeoSource.
const (
	GeoSourceReverse  = "reverse"
	GeoSourceOriginal = "original"
	GeoSourceFailed   = "failed"
)

// Geocoder resolves an epicenter to the place it lies in. Implementations
// return an empty result, not an error, when no place is known.
type Geocoder interface {
	ReverseGeocode(ctx context.Context, lat, lon float64) (GeocodingResult, error)
}

// GeocodingResult is a provider's answer for one epicenter.
type GeocodingResult struct {
	FormattedAddress string
	PlaceName        string
	Confidence       float64 // provider relevance in [0, 1]
}

// EnrichWithGeocoding attempts to attach place details for the epicenter.
// If geocoder is nil the mechanism is returned unchanged; a failed lookup
// only marks GeoSource (graceful degradation).
func EnrichWithGeocoding(ctx context.Context, m Mechanism, geocoder Geocoder, logger *slog.Logger) Mechanism {
	if geocoder == nil {
		return m
	}

	// (0, 0) is treated as missing; the feed never places epicenters there.
	if m.Geo.Lat == 0 && m.Geo.Lon == 0 {
		m.GeoSource = GeoSourceOriginal
		return m
	}

	result, err := geocoder.ReverseGeocode(ctx, m.Geo.Lat, m.Geo.Lon)
	if err != nil {
		logger.Warn("reverse geocoding failed",
			"mechanism_id", m.ID,
			"event_id", m.EventID,
			"lat", m.Geo.Lat,
			"lon", m.Geo.Lon,
			"error", err,
		)
		m.GeoSource = GeoSourceFailed
		return m
	}
	if result.FormattedAddress == "" {
		m.GeoSource = GeoSourceOriginal
		return m
	}

	m.FormattedAddress = result.FormattedAddress
	m.PlaceName = result.PlaceName
	m.GeoConfidence = result.Confidence
	m.GeoSource = GeoSourceReverse
	return m
}
