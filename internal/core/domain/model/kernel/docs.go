// Package kernel provides the domain primitives shared by every aggregate of
// the dispatch core:
//   - UUID: validated identifier value object
//   - Position: a bare latitude/longitude sample
//   - Location: a Position with a human-readable address
//   - HaversineKm: the one great-circle distance primitive used by every
//     geofence and proximity check
//   - DomainEvent: the contract aggregates use to expose state changes
//
// All values are immutable and safe for concurrent use.
package kernel
