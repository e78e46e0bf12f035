package domain

import (
	"context"
	"time"
)

// Product types carried by a quake event that this service decomposes.
const (
	ProductMomentTensor   = "moment-tensor"
	ProductFocalMechanism = "focal-mechanism"
)

// RawEvent represents an unprocessed message from the source topic.
type RawEvent struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// Geo represents a WGS-84 latitude/longitude coordinate pair.
type Geo struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Product is one upstream product attached to an event. Properties are kept
// as the strings the feed publishes.
type Product struct {
	Type       string            `json:"type"`
	Source     string            `json:"source"`
	Code       string            `json:"code"`
	Properties map[string]string `json:"properties"`
}

// QuakeEvent is the parsed form of a source GeoJSON feature.
type QuakeEvent struct {
	ID        string
	Magnitude float64
	Place     string
	Time      time.Time
	Geo       Geo
	Depth     float64 // km
	Products  []Product
}

// Mechanism is a decomposed source mechanism for one product of one event,
// the record published to the sink topic.
type Mechanism struct {
	ID            string    `json:"id"`
	EventID       string    `json:"event_id"`
	ProductType   string    `json:"product_type"`
	ProductSource string    `json:"product_source,omitempty"`
	ProductCode   string    `json:"product_code,omitempty"`
	Place         string    `json:"place,omitempty"`
	Geo           Geo       `json:"geo"`
	EventTime     time.Time `json:"event_time"`

	Tensor MomentTensor  `json:"tensor"`
	T      PrincipalAxis `json:"t_axis"`
	N      PrincipalAxis `json:"n_axis"`
	P      PrincipalAxis `json:"p_axis"`
	NP1    NodalPlane    `json:"np1"`
	NP2    NodalPlane    `json:"np2"`

	Moment          float64 `json:"moment"`
	MomentMagnitude float64 `json:"moment_magnitude"`
	PercentDC       float64 `json:"percent_dc"`
	Magnitude       float64 `json:"magnitude"`
	Depth           float64 `json:"depth"`
	Scale           float64 `json:"scale"`
	Exponent        int     `json:"exponent"`
	Units           string  `json:"units"`
	Rotations       int     `json:"jacobi_rotations"`

	FaultingStyle string    `json:"faulting_style,omitempty"`
	TimeBucket    time.Time `json:"time_bucket"`

	// Geocoding enrichment fields.
	FormattedAddress string  `json:"formatted_address,omitempty"`
	PlaceName        string  `json:"place_name,omitempty"`
	GeoConfidence    float64 `json:"geo_confidence,omitempty"`
	GeoSource        string  `json:"geo_source,omitempty"` // "reverse", "original", "failed"

	ProcessedAt time.Time `json:"processed_at"`
}

// OutputEvent is the serialized form destined for the sink topic.
type OutputEvent struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
}
