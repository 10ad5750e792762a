// Package services provides the domain services of the dispatch core: the
// rules that span orders, drivers, and the depot and do not belong to a
// single aggregate.
//
// The package includes:
//   - RouteSequencer: orders a driver's orders by their position in the route
//   - RouteOptimizer: priority partition plus external waypoint optimization with fallback
//   - OrderDispatcher: all-or-nothing batch assignment and route merging
//   - GeofenceSimulator: the per-tick auto-start and movement rules
//   - DeliveryPolicy: delivery and depot geofences and the stale delivery window
//   - AddressResolver: geocoding with service-area validation
//
// Services are stateless apart from injected collaborators and take the
// current time as an argument.
package services
