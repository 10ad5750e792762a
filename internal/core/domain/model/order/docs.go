// Package order provides the Order aggregate of the dispatch core together
// with its lifecycle state machine and delivery priority.
//
// The package includes:
//   - Order: the aggregate root holding customer data, the resolved delivery
//     Location, the assigned driver, priority, and proof of delivery
//   - Status: the state machine PendingAssignment -> Assigned -> EnRoute -> Delivered
//   - Priority: High, Medium (default), or Low
//   - StatusChanged: the domain event recorded on every transition
//
// Key business rules:
//   - An order is assigned to a driver if and only if its status is Assigned,
//     EnRoute, or Delivered
//   - Only orders with a resolved Location can be assigned
//   - Delivered is terminal; deliveredAt is set exactly when status is Delivered
//   - Orders can be edited or deleted only while PendingAssignment
//   - Priority can change only while PendingAssignment or Assigned
package order
