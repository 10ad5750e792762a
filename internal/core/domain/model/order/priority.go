package order

import (
	"fmt"
	"strings"

	"lastmile/internal/pkg/errs"
)

// Priority classifies how urgently an order should be delivered.
// High orders always precede the rest of a route.
type Priority int

const (
	PriorityUnknown Priority = iota
	PriorityHigh
	PriorityMedium
	PriorityLow
)

// DefaultPriority is used when no priority is given.
const DefaultPriority = PriorityMedium

func getPriorityStrings() map[Priority]string {
	//nolint:exhaustive // PriorityUnknown is intentionally excluded as it's invalid
	return map[Priority]string{
		PriorityHigh:   "high",
		PriorityMedium: "medium",
		PriorityLow:    "low",
	}
}

// ParsePriority accepts "high", "medium" or "low"; an empty string yields DefaultPriority.
func ParsePriority(s string) (Priority, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	if normalized == "" {
		return DefaultPriority, nil
	}
	for p, str := range getPriorityStrings() {
		if str == normalized {
			return p, nil
		}
	}
	return PriorityUnknown, errs.NewValueIsInvalidErrorWithCause("priority", fmt.Errorf("%q is not a valid priority", s))
}

func (p Priority) Validate() error {
	if _, ok := getPriorityStrings()[p]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("priority", fmt.Errorf("%d is not a valid priority", p))
	}
	return nil
}

func (p Priority) String() string {
	if str, ok := getPriorityStrings()[p]; ok {
		return str
	}
	return "unknown"
}

func (p Priority) IsHigh() bool {
	return p == PriorityHigh
}
