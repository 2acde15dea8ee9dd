package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/yeremiapane/campus-canteen/cart"
	"github.com/yeremiapane/campus-canteen/database"
	"github.com/yeremiapane/campus-canteen/models"
	"github.com/yeremiapane/campus-canteen/utils"
)

var (
	ErrOrderCreate    = errors.New("could not create your order in the database")
	ErrOrderItemsSave = errors.New("could not save order items to the database")
)

// ValidationError is returned before anything is written.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// OrderItemsError reports an order row that was created but whose items were
// not. The order row stays in the database.
type OrderItemsError struct {
	OrderID string
	Err     error
}

func (e *OrderItemsError) Error() string {
	return fmt.Sprintf("%s (order %s): %v", ErrOrderItemsSave, e.OrderID, e.Err)
}

func (e *OrderItemsError) Is(target error) bool { return target == ErrOrderItemsSave }

func (e *OrderItemsError) Unwrap() error { return e.Err }

// OrderNotifier is told about every order that was fully placed.
type OrderNotifier interface {
	OrderCreated(order models.Order)
}

type CheckoutRequest struct {
	Name  string
	Phone string
	Lines []cart.Line
}

type OrderReceipt struct {
	OrderID    string             `json:"order_id"`
	PickupCode int                `json:"pickup_code"`
	Total      decimal.Decimal    `json:"total"`
	Status     models.OrderStatus `json:"status"`
}

type OrderService struct {
	Store    database.Store
	Notifier OrderNotifier

	// PickupCode returns the 4-digit code printed on the receipt.
	PickupCode func() int
}

func NewOrderService(store database.Store, notifier OrderNotifier) *OrderService {
	return &OrderService{
		Store:      store,
		Notifier:   notifier,
		PickupCode: RandomPickupCode,
	}
}

// RandomPickupCode is uniform over 1000-9999. Collisions are not checked.
func RandomPickupCode() int {
	return 1000 + rand.Intn(9000)
}

// ValidateCheckout applies the customer field rules. Name is optional.
func ValidateCheckout(name, phone string) error {
	if !utils.ValidPhone(phone) {
		return &ValidationError{Field: "phone", Message: utils.PhoneMessage}
	}
	if strings.TrimSpace(name) != "" && !utils.ValidName(name) {
		return &ValidationError{Field: "name", Message: utils.NameMessage}
	}
	return nil
}

// PlaceOrder writes the order row and then its items from the given cart
// lines. It does not clear any cart.
func (s *OrderService) PlaceOrder(ctx context.Context, req CheckoutRequest) (*OrderReceipt, error) {
	if err := ValidateCheckout(req.Name, req.Phone); err != nil {
		return nil, err
	}

	code := s.PickupCode()
	order := &models.Order{
		OrderedByPhone: req.Phone,
		Status:         models.StatusNew,
		Total:          cart.Total(req.Lines),
		PickupCode:     &code,
	}

	orderID, err := s.Store.CreateOrder(ctx, order)
	if err != nil {
		utils.ErrorLogger.Printf("Error creating order for %s: %v", req.Phone, err)
		return nil, fmt.Errorf("%w: %v", ErrOrderCreate, err)
	}

	items := make([]models.OrderItem, 0, len(req.Lines))
	for _, line := range req.Lines {
		items = append(items, models.OrderItem{
			OrderID:    orderID,
			MenuItemID: line.Item.ID,
			Quantity:   line.Quantity,
			Price:      line.Item.Price,
		})
	}

	if err := s.Store.CreateOrderItems(ctx, items); err != nil {
		utils.ErrorLogger.Printf("Order %s created without items: %v", orderID, err)
		return nil, &OrderItemsError{OrderID: orderID, Err: err}
	}

	if name := strings.TrimSpace(req.Name); name != "" {
		if err := s.Store.UpsertUser(ctx, req.Phone, name); err != nil {
			utils.ErrorLogger.Printf("Error saving name for %s: %v", req.Phone, err)
		}
	}

	utils.InfoLogger.Printf("Order %s placed by %s, total %s", orderID, req.Phone, utils.FormatRupee(order.Total))

	if s.Notifier != nil {
		order.Items = items
		s.Notifier.OrderCreated(*order)
	}

	return &OrderReceipt{
		OrderID:    orderID,
		PickupCode: code,
		Total:      order.Total,
		Status:     order.Status,
	}, nil
}
