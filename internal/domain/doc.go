// Package domain models earthquake source mechanisms derived from USGS
// moment-tensor and focal-mechanism products.
//
// # Data Source
//
// Events originate from the USGS ComCat GeoJSON detail feeds
// (https://earthquake.usgs.gov/fdsnws/event/1/). The upstream collector
// fetches event details, and publishes each GeoJSON feature unchanged to the
// Kafka source topic. A feature carries its products under
// properties.products, keyed by product type.
//
// # Product Conventions
//
// Moment-tensor products ("moment-tensor"):
//
//	tensor-mrr, tensor-mtt, tensor-mpp, tensor-mrt, tensor-mrp, tensor-mtp
//	  Six independent components in spherical (r = up, t = south, p = east)
//	  coordinates, as decimal strings in N·m, e.g. "1.23e+17".
//	derived-magnitude, derived-depth (km), scalar-moment (N·m)
//	beachball-source / eventsource: contributing network.
//
// Focal-mechanism products ("focal-mechanism"):
//
//	nodal-plane-1-strike, nodal-plane-1-dip, nodal-plane-1-rake
//	  Degrees. Older products use nodal-plane-1-slip instead of -rake.
//	  A unit double-couple tensor is built from the first plane.
//
// # Axes
//
// The tensor is decomposed in (East, North, Down) axes. Azimuths are bearings
// clockwise from north in radians; plunges are radians below horizontal and
// are always reported non-negative (an upward-pointing axis is flipped).
//
//	T (tension)  eigenvector of the largest eigenvalue
//	N (null)     intermediate eigenvalue
//	P (pressure) smallest (most negative) eigenvalue
//
// Nodal planes use the Aki & Richards convention: strike in [0, 360),
// dip in [0, 90], rake in (-180, 180], all degrees, dip to the right of strike.
//
// Faulting style is classified from the NP1 rake:
//
//	|rake| <= 30 or >= 150   strike-slip
//	60 <= rake <= 120        reverse
//	-120 <= rake <= -60      normal
//	anything else            oblique-reverse / oblique-normal by sign
//
// # ID Generation
//
// Mechanism IDs are deterministic SHA-256 hashes of
// event|product type|source|code, so replays upsert the same row downstream.
// See [generateID].
package domain
