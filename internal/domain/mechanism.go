package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/jonboulle/clockwork"
)

// processingClock stamps ProcessedAt.
var processingClock = clockwork.NewRealClock()

// SetClock replaces the clock used for ProcessedAt, e.g. with a fake clock
// for reproducible fixtures. Nil restores the real clock.
func SetClock(c clockwork.Clock) {
	if c == nil {
		c = clockwork.NewRealClock()
	}
	processingClock = c
}

// NewMechanism assembles the output record for one decomposed product.
// Event magnitude and depth fill in when the product did not derive its own.
func NewMechanism(event QuakeEvent, product Product, tensor MomentTensor, d Decomposition) Mechanism {
	m := Mechanism{
		EventID:       event.ID,
		ProductType:   product.Type,
		ProductSource: product.Source,
		ProductCode:   product.Code,
		Place:         event.Place,
		Geo:           event.Geo,
		EventTime:     event.Time,

		Tensor:    tensor,
		T:         d.T,
		N:         d.N,
		P:         d.P,
		NP1:       d.NP1,
		NP2:       d.NP2,
		Moment:    d.Moment,
		PercentDC: d.PercentDC,
		Magnitude: tensor.Magnitude,
		Depth:     tensor.Depth,
		Scale:     tensor.Scale,
		Exponent:  tensor.Exponent,
		Units:     tensor.Units,
		Rotations: d.Rotations,
	}
	if m.Magnitude == 0 {
		m.Magnitude = event.Magnitude
	}
	if m.Depth == 0 {
		m.Depth = event.Depth
	}
	return m
}

// EnrichMechanism assigns the deterministic ID, moment magnitude, faulting
// style, hourly time bucket and processing time.
func EnrichMechanism(m Mechanism) Mechanism {
	m.ID = generateID(m.EventID, m.ProductType, m.ProductSource, m.ProductCode)
	m.MomentMagnitude = roundTo(MomentMagnitude(m.Moment, m.Units), 2)
	if m.Tensor.Nominal {
		m.MomentMagnitude = 0
	}
	m.FaultingStyle = deriveFaultingStyle(m.NP1.Rake)
	m.TimeBucket = deriveTimeBucket(m.EventTime)
	m.ProcessedAt = processingClock.Now()
	return m
}

// SerializeMechanism marshals a mechanism into a sink message.
func SerializeMechanism(m Mechanism) (OutputEvent, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return OutputEvent{}, fmt.Errorf("serialize mechanism: %w", err)
	}
	return OutputEvent{
		Key:   []byte(m.ID),
		Value: data,
		Headers: map[string]string{
			"product_type": m.ProductType,
			"processed_at": m.ProcessedAt.Format(time.RFC3339),
		},
	}, nil
}

// generateID produces a deterministic ID from the product identity.
// Reprocessing the same product yields the same ID.
func generateID(eventID, productType, source, code string) string {
	input := fmt.Sprintf("%s|%s|%s|%s", eventID, productType, source, code)
	hash := sha256.Sum256([]byte(input))
	short := hex.EncodeToString(hash[:8])
	if productType == "" {
		return short
	}
	return productType + "-" + short
}

// deriveFaultingStyle classifies a rake angle in degrees.
func deriveFaultingStyle(rake float64) string {
	abs := math.Abs(rake)
	switch {
	case abs <= 30 || abs >= 150:
		return "strike-slip"
	case rake >= 60 && rake <= 120:
		return "reverse"
	case rake <= -60 && rake >= -120:
		return "normal"
	case rake > 0:
		return "oblique-reverse"
	default:
		return "oblique-normal"
	}
}

// deriveTimeBucket truncates the event time to the hour in UTC.
func deriveTimeBucket(t time.Time) time.Time {
	if t.IsZero() {
		return time.Time{}
	}
	return t.UTC().Truncate(time.Hour)
}

func roundTo(x float64, places int) float64 {
	p := math.Pow10(places)
	return math.Round(x*p) / p
}
