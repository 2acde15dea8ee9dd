package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/yeremiapane/campus-canteen/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrNotFound = errors.New("record not found")
	// ErrStatusConflict means the order exists but was no longer in the
	// expected status when the update ran.
	ErrStatusConflict = errors.New("order status changed")
)

// Store is the persisted data the ordering flow reads and writes.
type Store interface {
	GetAvailableMenuItems(ctx context.Context) ([]models.MenuItem, error)
	GetMenuItem(ctx context.Context, id string) (*models.MenuItem, error)
	CreateOrder(ctx context.Context, order *models.Order) (string, error)
	CreateOrderItems(ctx context.Context, items []models.OrderItem) error
	GetOrder(ctx context.Context, id string) (*models.Order, error)
	GetLatestOrderForPhone(ctx context.Context, phone string) (*models.Order, error)
	GetUser(ctx context.Context, phone string) (*models.User, error)
	UpsertUser(ctx context.Context, phone, name string) error
	ListOrdersForPhone(ctx context.Context, phone string) ([]models.Order, error)
	ListOpenOrders(ctx context.Context) ([]models.Order, error)
	UpdateOrderStatus(ctx context.Context, id string, from, to models.OrderStatus) error
}

type GormStore struct {
	DB *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{DB: db}
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func (s *GormStore) GetAvailableMenuItems(ctx context.Context) ([]models.MenuItem, error) {
	var items []models.MenuItem
	err := s.DB.WithContext(ctx).
		Where("is_available = ?", true).
		Order("category ASC, name ASC").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("list menu items: %w", err)
	}
	return items, nil
}

func (s *GormStore) GetMenuItem(ctx context.Context, id string) (*models.MenuItem, error) {
	var item models.MenuItem
	if err := s.DB.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &item, nil
}

// CreateOrder inserts the order row only; items are written separately.
func (s *GormStore) CreateOrder(ctx context.Context, order *models.Order) (string, error) {
	if err := s.DB.WithContext(ctx).Omit(clause.Associations).Create(order).Error; err != nil {
		return "", err
	}
	return order.ID, nil
}

func (s *GormStore) CreateOrderItems(ctx context.Context, items []models.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	return s.DB.WithContext(ctx).Omit(clause.Associations).Create(&items).Error
}

func (s *GormStore) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	err := s.DB.WithContext(ctx).
		Preload("Items.MenuItem").
		First(&order, "id = ?", id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &order, nil
}

// GetLatestOrderForPhone returns the most recent order placed by phone.
func (s *GormStore) GetLatestOrderForPhone(ctx context.Context, phone string) (*models.Order, error) {
	var order models.Order
	err := s.DB.WithContext(ctx).
		Where("ordered_by_phone = ?", phone).
		Order("order_time DESC").
		First(&order).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &order, nil
}

func (s *GormStore) GetUser(ctx context.Context, phone string) (*models.User, error) {
	var user models.User
	if err := s.DB.WithContext(ctx).First(&user, "phone = ?", phone).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

// UpsertUser creates the user or overwrites the name of an existing one.
func (s *GormStore) UpsertUser(ctx context.Context, phone, name string) error {
	user := models.User{Phone: phone, Name: name}
	return s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "phone"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "updated_at"}),
	}).Create(&user).Error
}

func (s *GormStore) ListOrdersForPhone(ctx context.Context, phone string) ([]models.Order, error) {
	var orders []models.Order
	err := s.DB.WithContext(ctx).
		Preload("Items.MenuItem").
		Where("ordered_by_phone = ?", phone).
		Order("order_time DESC").
		Find(&orders).Error
	return orders, err
}

// ListOpenOrders returns everything the kitchen still has to finish, oldest first.
func (s *GormStore) ListOpenOrders(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	err := s.DB.WithContext(ctx).
		Preload("Items.MenuItem").
		Where("status <> ?", models.StatusCompleted).
		Order("order_time ASC").
		Find(&orders).Error
	return orders, err
}

// UpdateOrderStatus moves the order from one status to another. The write only
// applies while the row still holds from.
func (s *GormStore) UpdateOrderStatus(ctx context.Context, id string, from, to models.OrderStatus) error {
	db := s.DB.WithContext(ctx)
	result := db.Model(&models.Order{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := db.Model(&models.Order{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFound
	}
	return ErrStatusConflict
}
