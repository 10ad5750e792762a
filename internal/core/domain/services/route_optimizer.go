package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/model/route"
	"lastmile/internal/core/ports"
)

// DefaultOptimizerTimeout bounds one external optimization call.
const DefaultOptimizerTimeout = 10 * time.Second

// Fallback reasons reported in OptimizerFallbackError.
const (
	FallbackNotConfigured   = "not_configured"
	FallbackTimeout         = "timeout"
	FallbackUpstreamError   = "upstream_error"
	FallbackInvalidResponse = "invalid_response"
)

var ErrInvalidPermutation = errors.New("optimizer returned an invalid permutation")

// OptimizerFallbackError is the warning attached to a result that used the
// fallback sequence instead of the optimizer's answer.
type OptimizerFallbackError struct {
	Reason string
	Cause  error
}

func (e *OptimizerFallbackError) Error() string {
	return fmt.Sprintf("route optimization unavailable (%s), using input order: %v", e.Reason, e.Cause)
}

func (e *OptimizerFallbackError) Unwrap() error {
	return e.Cause
}

// OptimizationResult is always usable. Warning is non-nil when the
// optimizer could not be used.
type OptimizationResult struct {
	Stops     []route.Stop
	Optimized bool
	Warning   *OptimizerFallbackError
}

// Route projects the stops to the driver route.
func (r OptimizationResult) Route() []kernel.Location {
	return route.Locations(r.Stops)
}

// RouteOptimizer sequences stops: High priority stops first in input order,
// then the remaining stops in the order chosen by the external optimizer for
// a round trip from and back to the depot.
//
// The optimizer is never called for zero or one normal stop. Any failure,
// including a missing client, a timeout, or an answer that is not a
// permutation of the normal stops, falls back to the input order.
type RouteOptimizer struct {
	client  ports.WaypointOptimizer
	timeout time.Duration
}

func NewRouteOptimizer(client ports.WaypointOptimizer, timeout time.Duration) RouteOptimizer {
	if timeout <= 0 {
		timeout = DefaultOptimizerTimeout
	}
	return RouteOptimizer{client: client, timeout: timeout}
}

// Optimize never makes the caller fail; errors surface as Warning.
func (o RouteOptimizer) Optimize(ctx context.Context, depot kernel.Location, stops []route.Stop) OptimizationResult {
	high := make([]route.Stop, 0, len(stops))
	normal := make([]route.Stop, 0, len(stops))
	for _, s := range stops {
		if s.Priority.IsHigh() {
			high = append(high, s)
		} else {
			normal = append(normal, s)
		}
	}

	if len(normal) <= 1 {
		return OptimizationResult{Stops: append(high, normal...)}
	}

	fallback := func(reason string, cause error) OptimizationResult {
		return OptimizationResult{
			Stops:   append(high, normal...),
			Warning: &OptimizerFallbackError{Reason: reason, Cause: cause},
		}
	}

	if o.client == nil {
		return fallback(FallbackNotConfigured, ports.ErrNotConfigured)
	}

	waypoints := make([]kernel.Position, 0, len(normal))
	for _, s := range normal {
		waypoints = append(waypoints, s.Location.Position())
	}

	callCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	permutation, err := o.client.OptimizeWaypoints(callCtx, depot.Position(), depot.Position(), waypoints)
	switch {
	case errors.Is(err, ports.ErrNotConfigured):
		return fallback(FallbackNotConfigured, err)
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(callCtx.Err(), context.DeadlineExceeded):
		if err == nil {
			err = callCtx.Err()
		}
		return fallback(FallbackTimeout, err)
	case err != nil:
		return fallback(FallbackUpstreamError, err)
	}

	if !isPermutation(permutation, len(normal)) {
		return fallback(FallbackInvalidResponse,
			fmt.Errorf("%w: %v for %d waypoints", ErrInvalidPermutation, permutation, len(normal)))
	}

	ordered := make([]route.Stop, 0, len(stops))
	ordered = append(ordered, high...)
	for _, i := range permutation {
		ordered = append(ordered, normal[i])
	}
	return OptimizationResult{Stops: ordered, Optimized: true}
}

func isPermutation(p []int, n int) bool {
	if len(p) != n {
		return false
	}
	seen := make([]bool, n)
	for _, i := range p {
		if i < 0 || i >= n || seen[i] {
			return false
		}
		seen[i] = true
	}
	return true
}
