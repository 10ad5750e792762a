// Package errs provides standardized error types for the dispatch service.
//
// Every type wraps a sentinel so callers can classify failures with
// errors.Is while still getting a descriptive message:
//   - ValueIsRequiredError: a required value is missing
//   - ValueIsInvalidError: a value or state transition is invalid
//   - ValueIsOutOfRangeError: a numeric value is outside its bounds
//   - ObjectNotFoundError: a looked-up entity does not exist
//
// Each type has a plain constructor and a WithCause variant.
package errs
