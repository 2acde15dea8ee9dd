// Package statemachine maps order statuses onto the customer-facing progress
// tracker and holds the kitchen transition rules.
package statemachine

import "github.com/yeremiapane/campus-canteen/models"

type Stage struct {
	Status      models.OrderStatus
	Label       string
	Description string
}

// Stages is the tracker shown to customers, in order.
var Stages = []Stage{
	{Status: models.StatusNew, Label: "Order Placed", Description: "We have received your order."},
	{Status: models.StatusPreparing, Label: "Preparing", Description: "Our chefs are working their magic."},
	{Status: models.StatusReadyForPickup, Label: "Ready for Pickup", Description: "Your order is ready. Come and get it!"},
}

type StageView struct {
	Status      models.OrderStatus `json:"status"`
	Label       string             `json:"label"`
	Description string             `json:"description"`
	Active      bool               `json:"active"`
}

type StatusView struct {
	Status    models.OrderStatus `json:"status"`
	Stages    []StageView        `json:"stages"`
	Completed bool               `json:"completed"`
}

// StageIndex returns the tracker position of status. Completed shares the
// last stage; unknown statuses return -1.
func StageIndex(status models.OrderStatus) int {
	if status == models.StatusCompleted {
		return len(Stages) - 1
	}
	for i, stage := range Stages {
		if stage.Status == status {
			return i
		}
	}
	return -1
}

// Render marks every stage up to and including the current one as active.
// An unknown status renders with no active stage.
func Render(status models.OrderStatus) StatusView {
	current := StageIndex(status)

	view := StatusView{
		Status:    status,
		Stages:    make([]StageView, len(Stages)),
		Completed: status == models.StatusCompleted,
	}
	for i, stage := range Stages {
		view.Stages[i] = StageView{
			Status:      stage.Status,
			Label:       stage.Label,
			Description: stage.Description,
			Active:      i <= current,
		}
	}
	return view
}
