package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/yeremiapane/campus-canteen/database"
	"github.com/yeremiapane/campus-canteen/models"
	"github.com/yeremiapane/campus-canteen/utils"
)

// StatusSnapshot is what a viewer currently knows about an order.
// Found is false when there is no order to show.
type StatusSnapshot struct {
	OrderID string             `json:"order_id,omitempty"`
	Status  models.OrderStatus `json:"status,omitempty"`
	Found   bool               `json:"found"`
}

type StatusFetcher func(ctx context.Context) (StatusSnapshot, error)

// OrderStatusFetcher reads the status of one order.
func OrderStatusFetcher(store database.Store, orderID string) StatusFetcher {
	return func(ctx context.Context) (StatusSnapshot, error) {
		order, err := store.GetOrder(ctx, orderID)
		if errors.Is(err, database.ErrNotFound) {
			return StatusSnapshot{OrderID: orderID}, nil
		}
		if err != nil {
			return StatusSnapshot{}, err
		}
		return StatusSnapshot{OrderID: order.ID, Status: order.Status, Found: true}, nil
	}
}

// LatestOrderFetcher follows whichever order phone placed most recently.
func LatestOrderFetcher(store database.Store, phone string) StatusFetcher {
	return func(ctx context.Context) (StatusSnapshot, error) {
		order, err := store.GetLatestOrderForPhone(ctx, phone)
		if errors.Is(err, database.ErrNotFound) {
			return StatusSnapshot{}, nil
		}
		if err != nil {
			return StatusSnapshot{}, err
		}
		return StatusSnapshot{OrderID: order.ID, Status: order.Status, Found: true}, nil
	}
}

// StatusPoller re-fetches a status every Interval and reports changes.
// Fetches run one at a time on the poller goroutine; ticks that fire during a
// slow fetch are dropped.
type StatusPoller struct {
	Interval     time.Duration
	FetchTimeout time.Duration

	fetch    StatusFetcher
	onChange func(StatusSnapshot)

	mu       sync.Mutex
	latest   StatusSnapshot
	seeded   bool
	StopChan chan struct{}
	stopOnce sync.Once
	done     chan struct{}
	started  bool
}

func NewStatusPoller(fetch StatusFetcher, initial StatusSnapshot, onChange func(StatusSnapshot)) *StatusPoller {
	return &StatusPoller{
		Interval:     1 * time.Second,
		FetchTimeout: 5 * time.Second,
		fetch:        fetch,
		onChange:     onChange,
		latest:       initial,
		seeded:       true,
		StopChan:     make(chan struct{}),
		done:         make(chan struct{}),
	}
}

// NewUnseededStatusPoller is for viewers that have nothing on screen yet: the
// first successful fetch is always reported, whatever it holds.
func NewUnseededStatusPoller(fetch StatusFetcher, onChange func(StatusSnapshot)) *StatusPoller {
	p := NewStatusPoller(fetch, StatusSnapshot{}, onChange)
	p.seeded = false
	return p
}

// Start polls until Stop is called or ctx is cancelled. It returns at once.
func (p *StatusPoller) Start(ctx context.Context) {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return
	}
	p.started = true
	p.mu.Unlock()

	go func() {
		defer close(p.done)

		ticker := time.NewTicker(p.Interval)
		defer ticker.Stop()

		p.poll(ctx)
		for {
			select {
			case <-ticker.C:
				p.poll(ctx)
			case <-p.StopChan:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop ends polling and waits for an in-flight fetch to return. Safe to call
// more than once, and before Start.
func (p *StatusPoller) Stop() {
	p.stopOnce.Do(func() {
		close(p.StopChan)
	})

	p.mu.Lock()
	started := p.started
	p.mu.Unlock()
	if started {
		<-p.done
	}
}

func (p *StatusPoller) Latest() StatusSnapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.latest
}

func (p *StatusPoller) poll(ctx context.Context) {
	select {
	case <-p.StopChan:
		return
	default:
	}

	fetchCtx, cancel := context.WithTimeout(ctx, p.FetchTimeout)
	snapshot, err := p.fetch(fetchCtx)
	cancel()
	if err != nil {
		utils.ErrorLogger.Printf("Error polling order status: %v", err)
		return
	}

	p.mu.Lock()
	changed := !p.seeded || snapshot != p.latest
	if changed {
		p.latest = snapshot
		p.seeded = true
	}
	p.mu.Unlock()

	if changed && p.onChange != nil {
		p.onChange(snapshot)
	}
}
