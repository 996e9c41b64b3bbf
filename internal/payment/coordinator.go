// Package payment drives one checkout attempt to a terminal outcome. The
// coordinator snapshots the cart, requests a provider token from the
// backend, hands control to the external payment widget, and translates its
// out-of-band callbacks into exactly one terminal state per attempt.
package payment

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"

	"github.com/example/storefront-session/internal/apiclient"
	"github.com/example/storefront-session/internal/cart"
	"github.com/example/storefront-session/internal/session"
	"github.com/google/uuid"
)

// Status is the coordinator state for one checkout attempt.
type Status string

const (
	StatusIdle         Status = "idle"
	StatusRequesting   Status = "requesting"
	StatusAwaitingUser Status = "awaiting_user"
	StatusSuccess      Status = "success"
	StatusPending      Status = "pending"
	StatusFailed       Status = "failed"
	StatusCancelled    Status = "cancelled"
)

// Terminal reports whether no further transition can occur.
func (s Status) Terminal() bool {
	switch s {
	case StatusSuccess, StatusPending, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

var (
	// ErrInvalidState rejects a checkout that cannot start: empty cart,
	// anonymous session, or a coordinator that already ran.
	ErrInvalidState = errors.New("invalid checkout state")
	// ErrWidgetUnavailable means the payment widget handle is absent.
	ErrWidgetUnavailable = errors.New("payment widget unavailable")
	// ErrPaymentDeclined is the provider's error callback.
	ErrPaymentDeclined = errors.New("payment declined by provider")
)

// Customer is the payer contact detail sent with the transaction.
type Customer struct {
	Name  string
	Email string
	Phone string
}

// Result is the single terminal outcome of an attempt. Err is set for
// Failed; Cancelled carries no error because none occurred.
type Result struct {
	Status  Status
	OrderID string
	Amount  int64
	Err     error
}

// Coordinator runs one checkout attempt. Build a fresh one per attempt: a
// retry gets a new coordinator and therefore a new order ID, so the backend
// never conflates a failed transaction with its retry.
type Coordinator struct {
	api      *apiclient.Client
	carts    *cart.Store
	sessions *session.Store
	widget   Widget

	mu       sync.Mutex
	status   Status
	orderID  string
	amount   int64
	lines    []cart.Line
	customer Customer

	done chan Result
}

// NewCoordinator creates an idle coordinator. widget may be nil, in which
// case Begin settles as Failed with ErrWidgetUnavailable after the token
// request.
func NewCoordinator(api *apiclient.Client, carts *cart.Store, sessions *session.Store, widget Widget) *Coordinator {
	return &Coordinator{
		api:      api,
		carts:    carts,
		sessions: sessions,
		widget:   widget,
		status:   StatusIdle,
		done:     make(chan Result, 1),
	}
}

// createRequest is the transaction creation body.
type createRequest struct {
	OrderID       string       `json:"orderId"`
	Amount        int64        `json:"amount"`
	Items         []createItem `json:"items"`
	CustomerName  string       `json:"customerName"`
	CustomerEmail string       `json:"customerEmail"`
	CustomerPhone string       `json:"customerPhone"`
}

type createItem struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Quantity int    `json:"quantity"`
}

type createResponse struct {
	Token       string `json:"token"`
	PaymentURL  string `json:"paymentUrl"`
	RedirectURL string `json:"redirectUrl"`
}

// Begin starts the attempt. It fails fast with ErrInvalidState — before any
// network call — when the cart is empty, the session is anonymous, or this
// coordinator already ran. Every other outcome, including a failed token
// request or a missing widget, resolves through the terminal result on
// Done.
func (c *Coordinator) Begin(ctx context.Context, customer Customer) error {
	c.mu.Lock()
	if c.status != StatusIdle {
		c.mu.Unlock()
		return fmt.Errorf("%w: attempt already started", ErrInvalidState)
	}
	if !c.sessions.IsAuthenticated() {
		c.mu.Unlock()
		return fmt.Errorf("%w: session is not authenticated", ErrInvalidState)
	}
	lines := c.carts.Lines()
	if len(lines) == 0 {
		c.mu.Unlock()
		return fmt.Errorf("%w: cart is empty", ErrInvalidState)
	}

	// Freeze the attempt: the snapshot and amount stay fixed even if the
	// cart mutates while the widget is open.
	c.lines = lines
	c.amount = 0
	for _, line := range lines {
		c.amount += line.Subtotal()
	}
	c.customer = customer
	c.orderID = uuid.New().String()
	c.status = StatusRequesting
	c.mu.Unlock()

	log.Printf("[Payment] Creating transaction %s (amount %d, %d lines)", c.orderID, c.amount, len(lines))

	req := createRequest{
		OrderID:       c.orderID,
		Amount:        c.amount,
		CustomerName:  customer.Name,
		CustomerEmail: customer.Email,
		CustomerPhone: customer.Phone,
	}
	for _, line := range lines {
		req.Items = append(req.Items, createItem{
			ID:       line.ProductID,
			Name:     line.Name,
			Price:    line.UnitPrice,
			Quantity: line.Quantity,
		})
	}

	var resp createResponse
	if err := c.api.Do(ctx, http.MethodPost, "/api/external/payment/create", nil, req, &resp); err != nil {
		c.settle(StatusFailed, fmt.Errorf("create transaction: %w", err))
		return nil
	}

	if c.widget == nil {
		c.settle(StatusFailed, ErrWidgetUnavailable)
		return nil
	}

	c.mu.Lock()
	c.status = StatusAwaitingUser
	c.mu.Unlock()

	c.widget.Pay(resp.Token, Callbacks{
		OnSuccess: func() { c.settle(StatusSuccess, nil) },
		OnPending: func() { c.settle(StatusPending, nil) },
		OnError: func(err error) {
			if err == nil {
				err = ErrPaymentDeclined
			} else if !errors.Is(err, ErrPaymentDeclined) {
				err = fmt.Errorf("%w: %v", ErrPaymentDeclined, err)
			}
			c.settle(StatusFailed, err)
		},
		OnClose: func() { c.settle(StatusCancelled, nil) },
	})
	return nil
}

// Done yields the attempt's single terminal result.
func (c *Coordinator) Done() <-chan Result {
	return c.done
}

// Status returns the current attempt state.
func (c *Coordinator) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// OrderID returns the attempt's order ID, or "" before Begin.
func (c *Coordinator) OrderID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.orderID
}

// Amount returns the frozen transaction amount.
func (c *Coordinator) Amount() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.amount
}

// LineItems returns the frozen cart snapshot for this attempt.
func (c *Coordinator) LineItems() []cart.Line {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]cart.Line, len(c.lines))
	copy(out, c.lines)
	return out
}

// settle applies a terminal transition exactly once. A misbehaving widget
// invoking further callbacks hits the guard: the first outcome wins, later
// ones are logged and dropped. A successful settlement clears the cart;
// pending does not, because the order is not paid yet.
func (c *Coordinator) settle(status Status, err error) {
	c.mu.Lock()
	if c.status.Terminal() {
		current := c.status
		c.mu.Unlock()
		log.Printf("[Payment] Ignoring %s callback for order %s: already %s", status, c.orderID, current)
		return
	}
	c.status = status
	result := Result{Status: status, OrderID: c.orderID, Amount: c.amount, Err: err}
	c.mu.Unlock()

	if err != nil {
		log.Printf("[Payment] Order %s settled %s: %v", result.OrderID, status, err)
	} else {
		log.Printf("[Payment] Order %s settled %s", result.OrderID, status)
	}

	if status == StatusSuccess {
		c.carts.Clear(context.Background())
	}

	c.done <- result
}
