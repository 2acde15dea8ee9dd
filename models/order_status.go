package models

// OrderStatus is the lifecycle value stored on an order. The string values are
// the external contract and must not change.
type OrderStatus string

const (
	StatusNew            OrderStatus = "New"
	StatusPreparing      OrderStatus = "Preparing"
	StatusReadyForPickup OrderStatus = "Ready for Pickup"
	StatusCompleted      OrderStatus = "Completed"
)

// OrderStatuses lists every known status in forward order.
var OrderStatuses = []OrderStatus{StatusNew, StatusPreparing, StatusReadyForPickup, StatusCompleted}

func (s OrderStatus) Valid() bool {
	for _, known := range OrderStatuses {
		if s == known {
			return true
		}
	}
	return false
}
