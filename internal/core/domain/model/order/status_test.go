package order_test

import (
	"testing"

	"lastmile/internal/core/domain/model/order"
	"lastmile/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allStatuses = []order.Status{
	order.Unknown, order.PendingAssignment, order.Assigned, order.EnRoute, order.Delivered,
}

func TestStatus_Validate(t *testing.T) {
	for _, s := range allStatuses {
		t.Run(s.String(), func(t *testing.T) {
			if s == order.Unknown {
				require.ErrorIs(t, s.Validate(), errs.ErrValueIsInvalid)
				return
			}
			require.NoError(t, s.Validate())
		})
	}
	assert.Error(t, order.Status(42).Validate())
}

func TestParseStatus(t *testing.T) {
	for _, s := range allStatuses[1:] {
		parsed, err := order.ParseStatus(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, parsed)
	}

	parsed, err := order.ParseStatus(" EN_ROUTE ")
	require.NoError(t, err)
	assert.Equal(t, order.EnRoute, parsed)

	_, err = order.ParseStatus("completed")
	require.ErrorIs(t, err, errs.ErrValueIsInvalid)
}

// The lifecycle graph: only the three forward edges are legal.
func TestStatus_Transitions(t *testing.T) {
	type transition func(order.Status) (order.Status, error)
	edges := map[string]struct {
		fn   transition
		from order.Status
		to   order.Status
	}{
		"assign":      {fn: order.Status.Assign, from: order.PendingAssignment, to: order.Assigned},
		"start route": {fn: order.Status.StartRoute, from: order.Assigned, to: order.EnRoute},
		"deliver":     {fn: order.Status.Deliver, from: order.EnRoute, to: order.Delivered},
	}

	for name, edge := range edges {
		for _, from := range allStatuses {
			t.Run(name+" from "+from.String(), func(t *testing.T) {
				got, err := edge.fn(from)
				if from == edge.from {
					require.NoError(t, err)
					assert.Equal(t, edge.to, got)
					return
				}
				require.ErrorIs(t, err, errs.ErrValueIsInvalid)
				assert.Equal(t, order.Unknown, got)
			})
		}
	}
}

func TestStatus_ValidateCanHaveDriver(t *testing.T) {
	tests := []struct {
		status     order.Status
		withDriver bool
		wantErr    bool
	}{
		{order.PendingAssignment, false, false},
		{order.PendingAssignment, true, true},
		{order.Assigned, true, false},
		{order.Assigned, false, true},
		{order.EnRoute, true, false},
		{order.EnRoute, false, true},
		{order.Delivered, true, false},
		{order.Delivered, false, true},
	}

	for _, tt := range tests {
		err := tt.status.ValidateCanHaveDriver(tt.withDriver)
		if tt.wantErr {
			assert.Error(t, err, "%s with driver=%v", tt.status, tt.withDriver)
		} else {
			assert.NoError(t, err, "%s with driver=%v", tt.status, tt.withDriver)
		}
	}
}

func TestStatus_EditAndPriorityRules(t *testing.T) {
	assert.NoError(t, order.PendingAssignment.ValidateEditable())
	assert.Error(t, order.Assigned.ValidateEditable())
	assert.Error(t, order.Delivered.ValidateEditable())

	assert.NoError(t, order.PendingAssignment.ValidatePriorityChange())
	assert.NoError(t, order.Assigned.ValidatePriorityChange())
	assert.Error(t, order.EnRoute.ValidatePriorityChange())
	assert.Error(t, order.Delivered.ValidatePriorityChange())

	assert.True(t, order.Delivered.IsTerminal())
	assert.False(t, order.EnRoute.IsTerminal())
}

func TestParsePriority(t *testing.T) {
	p, err := order.ParsePriority("")
	require.NoError(t, err)
	assert.Equal(t, order.PriorityMedium, p)

	p, err = order.ParsePriority("HIGH")
	require.NoError(t, err)
	assert.True(t, p.IsHigh())

	_, err = order.ParsePriority("urgent")
	require.ErrorIs(t, err, errs.ErrValueIsInvalid)

	assert.Error(t, order.PriorityUnknown.Validate())
}
