// Package orderstatus validates and applies order status transitions.
//
// Statuses live in two disjoint regimes: the current production pipeline
// and the legacy pipeline kept for pre-existing orders. A status is looked up
// in whichever regime lists it, so a transition can never cross regimes.
// Both regimes share the Delivered label, which is terminal in each.
package orderstatus

import (
	"fmt"
	"time"

	"github.com/diewo77/go-tailorshop/internal/apperrors"
	"github.com/diewo77/go-tailorshop/internal/models"
)

// Regime identifies the transition table a status belongs to.
type Regime int

const (
	// RegimeUnknown marks a status absent from both tables.
	RegimeUnknown Regime = iota
	// RegimeCurrent is the OrderCreated → Delivered production pipeline.
	RegimeCurrent
	// RegimeLegacy is the Pending → Delivered pipeline of older orders.
	RegimeLegacy
)

func (r Regime) String() string {
	switch r {
	case RegimeCurrent:
		return "current"
	case RegimeLegacy:
		return "legacy"
	default:
		return "unknown"
	}
}

type table map[models.OrderStatus][]models.OrderStatus

var currentTable = table{
	models.OrderStatusCreated:          {models.OrderStatusCuttingCompleted, models.OrderStatusCancelled},
	models.OrderStatusCuttingCompleted: {models.OrderStatusCompleted, models.OrderStatusCancelled},
	models.OrderStatusCompleted:        {models.OrderStatusDelivered},
	models.OrderStatusDelivered:        {},
	models.OrderStatusCancelled:        {},
}

var legacyTable = table{
	models.OrderStatusLegacyPending:    {models.OrderStatusLegacyInProgress, models.OrderStatusCancelled},
	models.OrderStatusLegacyInProgress: {models.OrderStatusLegacyCompleted, models.OrderStatusCancelled},
	models.OrderStatusLegacyCompleted:  {models.OrderStatusDelivered},
	models.OrderStatusDelivered:        {},
}

// RegimeOf returns the regime whose table lists status.
func RegimeOf(status models.OrderStatus) Regime {
	if _, ok := currentTable[status]; ok {
		return RegimeCurrent
	}
	if _, ok := legacyTable[status]; ok {
		return RegimeLegacy
	}
	return RegimeUnknown
}

func tableFor(status models.OrderStatus) table {
	switch RegimeOf(status) {
	case RegimeCurrent:
		return currentTable
	case RegimeLegacy:
		return legacyTable
	default:
		return nil
	}
}

// AllowedTargets returns the statuses reachable from status, in table order.
// Terminal and unknown statuses yield an empty, non-nil slice.
func AllowedTargets(status models.OrderStatus) []models.OrderStatus {
	targets := tableFor(status)[status]
	out := make([]models.OrderStatus, len(targets))
	copy(out, targets)
	return out
}

// CanTransition reports whether from → to is an edge of from's regime.
func CanTransition(from, to models.OrderStatus) bool {
	for _, t := range tableFor(from)[from] {
		if t == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no transition leaves status.
func IsTerminal(status models.OrderStatus) bool {
	return len(tableFor(status)[status]) == 0
}

// IsKnown reports whether status belongs to either regime.
func IsKnown(status models.OrderStatus) bool {
	return RegimeOf(status) != RegimeUnknown
}

// TriggersInvoice reports whether reaching status is the point at which the
// caller composes the invoice.
func TriggersInvoice(status models.OrderStatus) bool {
	return status == models.OrderStatusCompleted || status == models.OrderStatusLegacyCompleted
}

// TransitionDetails is the caller-facing payload of an invalid transition.
type TransitionDetails struct {
	From    models.OrderStatus   `json:"currentStatus"`
	To      models.OrderStatus   `json:"targetStatus"`
	Allowed []models.OrderStatus `json:"allowedTargets"`
}

// InvalidTransition builds the INVALID_TRANSITION error for from → to.
func InvalidTransition(from, to models.OrderStatus) *apperrors.Error {
	return apperrors.WithDetails(
		apperrors.CodeInvalidTransition,
		fmt.Sprintf("order status transition not allowed: %s -> %s", from, to),
		TransitionDetails{From: from, To: to, Allowed: AllowedTargets(from)},
	)
}

// Machine applies transitions to orders. It has no persistence or billing
// side effects.
type Machine struct {
	now func() time.Time
}

// New returns a Machine stamping timestamps with now (time.Now when nil).
func New(now func() time.Time) *Machine {
	if now == nil {
		now = time.Now
	}
	return &Machine{now: now}
}

// Apply moves order to target. On failure the order is left unchanged.
// CuttingCompletedAt and CompletedAt are stamped only when still unset.
func (m *Machine) Apply(order *models.Order, target models.OrderStatus) error {
	if !CanTransition(order.Status, target) {
		return InvalidTransition(order.Status, target)
	}

	order.Status = target
	at := m.now().UTC()
	switch target {
	case models.OrderStatusCuttingCompleted:
		if order.CuttingCompletedAt == nil {
			order.CuttingCompletedAt = &at
		}
	case models.OrderStatusCompleted:
		if order.CompletedAt == nil {
			order.CompletedAt = &at
		}
	}
	return nil
}
