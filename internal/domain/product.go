package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrMissingEventID is returned for features without an "id".
	ErrMissingEventID = errors.New("event has no id")

	// ErrUnsupportedProduct is returned when a product type carries no mechanism.
	ErrUnsupportedProduct = errors.New("unsupported product type")
)

// decodedProductTypes lists the product types kept from a feature, in the
// order mechanisms are emitted.
var decodedProductTypes = []string{ProductMomentTensor, ProductFocalMechanism}

// tensorComponentKeys are the moment-tensor product properties in
// Mrr, Mtt, Mpp, Mrt, Mrp, Mtp order.
var tensorComponentKeys = []string{
	"tensor-mrr", "tensor-mtt", "tensor-mpp",
	"tensor-mrt", "tensor-mrp", "tensor-mtp",
}

// feature is the subset of a GeoJSON event feature that the service reads.
type feature struct {
	ID         string `json:"id"`
	Properties struct {
		Mag      *float64             `json:"mag"`
		Place    string               `json:"place"`
		Time     int64                `json:"time"` // epoch milliseconds
		Products map[string][]Product `json:"products"`
	} `json:"properties"`
	Geometry struct {
		Coordinates []float64 `json:"coordinates"` // [lon, lat, depth km]
	} `json:"geometry"`
}

// ParseRawEvent decodes a GeoJSON event feature and keeps its
// moment-tensor and focal-mechanism products.
func ParseRawEvent(raw RawEvent) (QuakeEvent, error) {
	var f feature
	if err := json.Unmarshal(raw.Value, &f); err != nil {
		return QuakeEvent{}, fmt.Errorf("parse raw event: %w", err)
	}
	if f.ID == "" {
		return QuakeEvent{}, fmt.Errorf("parse raw event: %w", ErrMissingEventID)
	}

	event := QuakeEvent{
		ID:    f.ID,
		Place: f.Properties.Place,
		Time:  eventTime(f.Properties.Time, raw.Timestamp),
	}
	if f.Properties.Mag != nil {
		event.Magnitude = *f.Properties.Mag
	}
	if c := f.Geometry.Coordinates; len(c) >= 2 {
		event.Geo = Geo{Lat: c[1], Lon: c[0]}
		if len(c) >= 3 {
			event.Depth = c[2]
		}
	}

	for _, typ := range decodedProductTypes {
		for _, p := range f.Properties.Products[typ] {
			if p.Type == "" {
				p.Type = typ
			}
			event.Products = append(event.Products, p)
		}
	}
	return event, nil
}

// eventTime converts epoch milliseconds, falling back to the message time.
func eventTime(ms int64, fallback time.Time) time.Time {
	if ms == 0 {
		return fallback.UTC()
	}
	return time.UnixMilli(ms).UTC()
}

// TensorFromProduct builds the moment tensor described by a product.
// Moment-tensor products must carry all six numeric components; focal
// mechanisms are converted from their first nodal plane.
func TensorFromProduct(p Product) (MomentTensor, error) {
	switch p.Type {
	case ProductMomentTensor:
		return tensorFromComponents(p)
	case ProductFocalMechanism:
		return tensorFromFocalMechanism(p)
	default:
		return MomentTensor{}, fmt.Errorf("%w: %q", ErrUnsupportedProduct, p.Type)
	}
}

func tensorFromComponents(p Product) (MomentTensor, error) {
	components := make([]float64, 0, len(tensorComponentKeys))
	for _, key := range tensorComponentKeys {
		v, err := requiredFloat(p.Properties, key)
		if err != nil {
			return MomentTensor{}, err
		}
		components = append(components, v)
	}
	return NewMomentTensor(components, productMetadata(p))
}

func tensorFromFocalMechanism(p Product) (MomentTensor, error) {
	strike, err := requiredFloat(p.Properties, "nodal-plane-1-strike")
	if err != nil {
		return MomentTensor{}, err
	}
	dip, err := requiredFloat(p.Properties, "nodal-plane-1-dip")
	if err != nil {
		return MomentTensor{}, err
	}
	rakeKey := "nodal-plane-1-rake"
	if _, ok := p.Properties[rakeKey]; !ok {
		rakeKey = "nodal-plane-1-slip"
	}
	rake, err := requiredFloat(p.Properties, rakeKey)
	if err != nil {
		return MomentTensor{}, err
	}

	meta := productMetadata(p)
	m0 := optionalFloat(p.Properties, "scalar-moment")
	if m0 <= 0 {
		m0 = 1
		meta.Nominal = true
	}
	dc := TensorFromNodalPlane(NodalPlane{Strike: strike, Dip: dip, Rake: rake}, m0)
	return NewMomentTensor(dc.Components(), meta)
}

func productMetadata(p Product) TensorMetadata {
	source := p.Properties["beachball-source"]
	if source == "" {
		source = p.Properties["eventsource"]
	}
	if source == "" {
		source = p.Source
	}
	return TensorMetadata{
		Magnitude: optionalFloat(p.Properties, "derived-magnitude"),
		Depth:     optionalFloat(p.Properties, "derived-depth"),
		Units:     UnitsNewtonMeter,
		Type:      p.Type,
		Source:    source,
	}
}

// requiredFloat parses a numeric product property, failing fast when it is
// missing or not a number.
func requiredFloat(props map[string]string, key string) (float64, error) {
	s, ok := props[key]
	if !ok || strings.TrimSpace(s) == "" {
		return 0, fmt.Errorf("%w: missing %s", ErrMalformedTensor, key)
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q is not numeric", ErrMalformedTensor, key, s)
	}
	return v, nil
}

// optionalFloat parses a descriptive property, returning 0 when absent or invalid.
func optionalFloat(props map[string]string, key string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(props[key]), 64)
	if err != nil {
		return 0
	}
	return v
}
