package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/yeremiapane/campus-canteen/database"
	"github.com/yeremiapane/campus-canteen/models"
)

// fakeStore is an in-memory database.Store with injectable failures.
type fakeStore struct {
	mu sync.Mutex

	orders    map[string]*models.Order
	items     []models.OrderItem
	users     map[string]string
	nextID    int
	createErr error
	itemsErr  error
	calls     int
}

var _ database.Store = (*fakeStore)(nil)

func newFakeStore() *fakeStore {
	return &fakeStore{orders: map[string]*models.Order{}, users: map[string]string{}}
}

func (f *fakeStore) GetAvailableMenuItems(context.Context) ([]models.MenuItem, error) {
	return nil, nil
}

func (f *fakeStore) GetMenuItem(context.Context, string) (*models.MenuItem, error) {
	return nil, database.ErrNotFound
}

func (f *fakeStore) CreateOrder(_ context.Context, order *models.Order) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.createErr != nil {
		return "", f.createErr
	}
	f.nextID++
	order.ID = fmt.Sprintf("order-%d", f.nextID)
	copied := *order
	f.orders[order.ID] = &copied
	return order.ID, nil
}

func (f *fakeStore) CreateOrderItems(_ context.Context, items []models.OrderItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.itemsErr != nil {
		return f.itemsErr
	}
	f.items = append(f.items, items...)
	return nil
}

func (f *fakeStore) GetOrder(_ context.Context, id string) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	order, ok := f.orders[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	copied := *order
	return &copied, nil
}

func (f *fakeStore) GetLatestOrderForPhone(_ context.Context, phone string) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var latest *models.Order
	for _, o := range f.orders {
		if o.OrderedByPhone == phone && (latest == nil || o.OrderTime.After(latest.OrderTime)) {
			latest = o
		}
	}
	if latest == nil {
		return nil, database.ErrNotFound
	}
	copied := *latest
	return &copied, nil
}

func (f *fakeStore) GetUser(_ context.Context, phone string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	name, ok := f.users[phone]
	if !ok {
		return nil, database.ErrNotFound
	}
	return &models.User{Phone: phone, Name: name}, nil
}

func (f *fakeStore) UpsertUser(_ context.Context, phone, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[phone] = name
	return nil
}

func (f *fakeStore) ListOrdersForPhone(context.Context, string) ([]models.Order, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeStore) ListOpenOrders(context.Context) ([]models.Order, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeStore) UpdateOrderStatus(_ context.Context, id string, from, to models.OrderStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	order, ok := f.orders[id]
	if !ok {
		return database.ErrNotFound
	}
	if order.Status != from {
		return database.ErrStatusConflict
	}
	order.Status = to
	return nil
}
