package orderstatus

import (
	"errors"
	"testing"
	"time"

	"github.com/diewo77/go-tailorshop/internal/apperrors"
	"github.com/diewo77/go-tailorshop/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allStatuses = []models.OrderStatus{
	models.OrderStatusCreated,
	models.OrderStatusCuttingCompleted,
	models.OrderStatusCompleted,
	models.OrderStatusDelivered,
	models.OrderStatusCancelled,
	models.OrderStatusLegacyPending,
	models.OrderStatusLegacyInProgress,
	models.OrderStatusLegacyCompleted,
}

// edges is the full list of legal transitions across both regimes.
var edges = [][2]models.OrderStatus{
	{models.OrderStatusCreated, models.OrderStatusCuttingCompleted},
	{models.OrderStatusCreated, models.OrderStatusCancelled},
	{models.OrderStatusCuttingCompleted, models.OrderStatusCompleted},
	{models.OrderStatusCuttingCompleted, models.OrderStatusCancelled},
	{models.OrderStatusCompleted, models.OrderStatusDelivered},
	{models.OrderStatusLegacyPending, models.OrderStatusLegacyInProgress},
	{models.OrderStatusLegacyPending, models.OrderStatusCancelled},
	{models.OrderStatusLegacyInProgress, models.OrderStatusLegacyCompleted},
	{models.OrderStatusLegacyInProgress, models.OrderStatusCancelled},
	{models.OrderStatusLegacyCompleted, models.OrderStatusDelivered},
}

func isEdge(from, to models.OrderStatus) bool {
	for _, e := range edges {
		if e[0] == from && e[1] == to {
			return true
		}
	}
	return false
}

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func TestApplyOnlyFollowsDefinedEdges(t *testing.T) {
	m := New(fixedClock(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)))

	for _, from := range allStatuses {
		for _, to := range allStatuses {
			order := &models.Order{ID: "o-1", Status: from}
			err := m.Apply(order, to)

			if isEdge(from, to) {
				require.NoError(t, err, "%s -> %s should be allowed", from, to)
				assert.Equal(t, to, order.Status)
				continue
			}
			require.Error(t, err, "%s -> %s should be rejected", from, to)
			assert.True(t, errors.Is(err, apperrors.ErrInvalidTransition))
			assert.Equal(t, from, order.Status, "status must be unchanged after rejection")
		}
	}
}

func TestApplyRejectsCrossRegimeTransitions(t *testing.T) {
	m := New(nil)
	cases := []struct {
		from, to models.OrderStatus
	}{
		{models.OrderStatusLegacyPending, models.OrderStatusCuttingCompleted},
		{models.OrderStatusLegacyInProgress, models.OrderStatusCompleted},
		{models.OrderStatusCreated, models.OrderStatusLegacyInProgress},
		{models.OrderStatusCuttingCompleted, models.OrderStatusLegacyCompleted},
	}
	for _, c := range cases {
		order := &models.Order{Status: c.from}
		err := m.Apply(order, c.to)
		assert.Error(t, err, "%s -> %s", c.from, c.to)
		assert.Equal(t, c.from, order.Status)
	}
}

func TestInvalidTransitionReportsAllowedTargets(t *testing.T) {
	m := New(nil)
	order := &models.Order{Status: models.OrderStatusCreated}

	err := m.Apply(order, models.OrderStatusCompleted)
	require.Error(t, err)

	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeInvalidTransition, appErr.Code)

	details, ok := appErr.Details.(TransitionDetails)
	require.True(t, ok, "details type %T", appErr.Details)
	assert.Equal(t, models.OrderStatusCreated, details.From)
	assert.Equal(t, models.OrderStatusCompleted, details.To)
	assert.Equal(t, []models.OrderStatus{models.OrderStatusCuttingCompleted, models.OrderStatusCancelled}, details.Allowed)
}

func TestInvalidTransitionFromTerminalHasEmptyAllowed(t *testing.T) {
	err := New(nil).Apply(&models.Order{Status: models.OrderStatusDelivered}, models.OrderStatusCancelled)
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	details := appErr.Details.(TransitionDetails)
	assert.NotNil(t, details.Allowed)
	assert.Empty(t, details.Allowed)
}

func TestApplyStampsCuttingCompletedOnce(t *testing.T) {
	first := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	order := &models.Order{Status: models.OrderStatusCreated}

	require.NoError(t, New(fixedClock(first)).Apply(order, models.OrderStatusCuttingCompleted))
	require.NotNil(t, order.CuttingCompletedAt)
	assert.Equal(t, first, *order.CuttingCompletedAt)
	assert.Nil(t, order.CompletedAt)

	// Re-applying the same status is not an edge and must not touch the stamp.
	later := New(fixedClock(first.Add(48 * time.Hour)))
	assert.Error(t, later.Apply(order, models.OrderStatusCuttingCompleted))
	assert.Equal(t, first, *order.CuttingCompletedAt)
}

func TestApplyStampsCompletedAt(t *testing.T) {
	at := time.Date(2026, 3, 2, 18, 30, 0, 0, time.UTC)
	cut := at.Add(-24 * time.Hour)
	order := &models.Order{Status: models.OrderStatusCuttingCompleted, CuttingCompletedAt: &cut}

	require.NoError(t, New(fixedClock(at)).Apply(order, models.OrderStatusCompleted))
	require.NotNil(t, order.CompletedAt)
	assert.Equal(t, at, *order.CompletedAt)
	assert.Equal(t, cut, *order.CuttingCompletedAt)
}

func TestApplyKeepsExistingStamp(t *testing.T) {
	prior := time.Date(2025, 12, 24, 8, 0, 0, 0, time.UTC)
	order := &models.Order{Status: models.OrderStatusCuttingCompleted, CompletedAt: &prior}

	require.NoError(t, New(nil).Apply(order, models.OrderStatusCompleted))
	assert.Equal(t, prior, *order.CompletedAt)
}

func TestApplyDoesNotStampOtherTargets(t *testing.T) {
	order := &models.Order{Status: models.OrderStatusLegacyInProgress}
	require.NoError(t, New(nil).Apply(order, models.OrderStatusLegacyCompleted))
	assert.Nil(t, order.CompletedAt)
	assert.Nil(t, order.CuttingCompletedAt)
}

func TestRegimeOf(t *testing.T) {
	assert.Equal(t, RegimeCurrent, RegimeOf(models.OrderStatusCreated))
	assert.Equal(t, RegimeCurrent, RegimeOf(models.OrderStatusCancelled))
	assert.Equal(t, RegimeLegacy, RegimeOf(models.OrderStatusLegacyPending))
	assert.Equal(t, RegimeLegacy, RegimeOf(models.OrderStatusLegacyCompleted))
	assert.Equal(t, RegimeUnknown, RegimeOf("Shipped"))
	assert.True(t, IsTerminal(models.OrderStatusDelivered))
	assert.True(t, IsTerminal(models.OrderStatusCancelled))
	assert.False(t, IsTerminal(models.OrderStatusLegacyPending))
}

func TestTriggersInvoice(t *testing.T) {
	for _, s := range allStatuses {
		want := s == models.OrderStatusCompleted || s == models.OrderStatusLegacyCompleted
		assert.Equal(t, want, TriggersInvoice(s), string(s))
	}
}

func TestAllowedTargetsReturnsCopy(t *testing.T) {
	got := AllowedTargets(models.OrderStatusCreated)
	got[0] = models.OrderStatusDelivered
	assert.Equal(t, models.OrderStatusCuttingCompleted, AllowedTargets(models.OrderStatusCreated)[0])
}
