// Package cart holds the session-scoped cart and login identity.
package cart

import (
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/yeremiapane/campus-canteen/models"
	"github.com/yeremiapane/campus-canteen/utils"
)

// IdentityTTL is the lifetime of the persisted identity token.
const IdentityTTL = utils.IdentityTTL

// IdentitySink persists the identity token on the client (a cookie in HTTP).
type IdentitySink interface {
	Save(phone string, ttl time.Duration) error
	Delete() error
}

// Line is one menu item with its quantity. Quantity is always >= 1.
type Line struct {
	Item     models.MenuItem `json:"item"`
	Quantity int             `json:"quantity"`
}

func (l Line) Subtotal() decimal.Decimal {
	return l.Item.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Notice is a user-visible confirmation queued by a cart mutation.
type Notice struct {
	Title string `json:"title"`
}

// Snapshot is a copy of the cart taken at checkout time.
type Snapshot struct {
	Phone string `json:"phone,omitempty"`
	Lines []Line `json:"lines"`
}

type Store struct {
	mu         sync.Mutex
	lines      []Line
	phone      string
	notices    []Notice
	submitting bool
}

func NewStore() *Store {
	return &Store{}
}

func (s *Store) indexOf(itemID string) int {
	for i, line := range s.lines {
		if line.Item.ID == itemID {
			return i
		}
	}
	return -1
}

// AddItem increments the line for item or inserts it with quantity 1.
func (s *Store) AddItem(item models.MenuItem) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexOf(item.ID); i >= 0 {
		s.lines[i].Quantity++
	} else {
		s.lines = append(s.lines, Line{Item: item, Quantity: 1})
	}
	s.notices = append(s.notices, Notice{Title: fmt.Sprintf("%s added to cart!", item.Name)})
}

// SetQuantity sets the quantity exactly; zero or below removes the line.
func (s *Store) SetQuantity(itemID string, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if quantity <= 0 {
		s.removeLocked(itemID)
		return
	}
	if i := s.indexOf(itemID); i >= 0 {
		s.lines[i].Quantity = quantity
	}
}

func (s *Store) RemoveItem(itemID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(itemID)
}

func (s *Store) removeLocked(itemID string) {
	i := s.indexOf(itemID)
	if i < 0 {
		return
	}
	s.lines = append(s.lines[:i:i], s.lines[i+1:]...)
}

func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = nil
}

// RemoveOrdered subtracts the quantities of an ordered snapshot. Anything added
// to the cart after the snapshot was taken stays.
func (s *Store) RemoveOrdered(ordered []Line) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, line := range ordered {
		i := s.indexOf(line.Item.ID)
		if i < 0 {
			continue
		}
		s.lines[i].Quantity -= line.Quantity
		if s.lines[i].Quantity <= 0 {
			s.removeLocked(line.Item.ID)
		}
	}
}

// Login sets the identity and persists it through sink. The cart is kept.
func (s *Store) Login(phone string, sink IdentitySink) error {
	if err := sink.Save(phone, IdentityTTL); err != nil {
		return fmt.Errorf("persist identity: %w", err)
	}

	s.mu.Lock()
	s.phone = phone
	s.mu.Unlock()
	return nil
}

// Hydrate restores an identity read back from an already persisted token.
func (s *Store) Hydrate(phone string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.phone = phone
}

// Logout clears identity and cart. The in-memory state is reset even when the
// sink fails, the error is still returned.
func (s *Store) Logout(sink IdentitySink) error {
	s.mu.Lock()
	s.phone = ""
	s.lines = nil
	s.mu.Unlock()

	if err := sink.Delete(); err != nil {
		return fmt.Errorf("delete identity: %w", err)
	}
	return nil
}

// Phone returns the logged-in phone number, or "" and false.
func (s *Store) Phone() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phone, s.phone != ""
}

func (s *Store) Lines() []Line {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyLines()
}

func (s *Store) copyLines() []Line {
	out := make([]Line, len(s.lines))
	copy(out, s.lines)
	return out
}

func (s *Store) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Count(s.lines)
}

// Count sums quantities over lines.
func Count(lines []Line) int {
	count := 0
	for _, line := range lines {
		count += line.Quantity
	}
	return count
}

func (s *Store) Total() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Total(s.lines)
}

// Total is the exact sum of price*quantity over lines.
func Total(lines []Line) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.Subtotal())
	}
	return total
}

func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{Phone: s.phone, Lines: s.copyLines()}
}

// DrainNotices returns and forgets queued notices.
func (s *Store) DrainNotices() []Notice {
	s.mu.Lock()
	defer s.mu.Unlock()

	notices := s.notices
	s.notices = nil
	return notices
}

// BeginCheckout marks a submission as pending. It returns false while another
// submission of this session has not finished.
func (s *Store) BeginCheckout() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.submitting {
		return false
	}
	s.submitting = true
	return true
}

func (s *Store) EndCheckout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.submitting = false
}
