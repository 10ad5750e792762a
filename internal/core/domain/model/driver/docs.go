// Package driver provides the Driver aggregate: a person who works a shift,
// carries an ordered route of stops, and reports (or simulates) a position.
//
// Key business rules:
//   - A driver is created Inactive and toggled between Inactive and Active by the operator
//   - The route is replaced as a whole; confirming a route sets routeConfirmed
//   - Finishing a shift clears the route and resets routeConfirmed
//   - Position updates that would not change the position are no-ops
package driver
