package statemachine

import (
	"errors"
	"fmt"

	"github.com/yeremiapane/campus-canteen/models"
)

var ErrInvalidTransition = errors.New("invalid status transition")

// validTransitions is the kitchen-side lifecycle. Orders only move forward.
var validTransitions = map[models.OrderStatus]models.OrderStatus{
	models.StatusNew:            models.StatusPreparing,
	models.StatusPreparing:      models.StatusReadyForPickup,
	models.StatusReadyForPickup: models.StatusCompleted,
}

// NextStatus returns the status that follows from, or false for terminal
// and unknown statuses.
func NextStatus(from models.OrderStatus) (models.OrderStatus, bool) {
	next, ok := validTransitions[from]
	return next, ok
}

// CanTransition reports whether from may move directly to to.
func CanTransition(from, to models.OrderStatus) error {
	if next, ok := validTransitions[from]; ok && next == to {
		return nil
	}
	return fmt.Errorf("%w: %s → %s", ErrInvalidTransition, from, to)
}
