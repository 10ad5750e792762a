// Package ports defines the contracts between the dispatch core and its
// infrastructure: repositories and the unit of work for state, and the
// external collaborators (geocoder, waypoint optimizer, position sampler,
// proof store, route drafts, event publisher).
package ports
