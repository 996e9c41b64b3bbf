// Package cart owns the shopping cart: an ordered sequence of lines, one per
// product, each carrying a price snapshot taken when the product was added.
// Every mutation writes through to persisted storage so a reload restores
// exact state; the write is best-effort and never rolls back the in-memory
// mutation. The store subscribes to session changes and empties itself on
// logout — carts are not portable across identities.
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"

	"github.com/example/storefront-session/internal/catalog"
	"github.com/example/storefront-session/internal/session"
	"github.com/example/storefront-session/internal/signal"
	"github.com/example/storefront-session/internal/storage"
)

var ErrLineNotFound = errors.New("cart line not found")

// Line is one product entry in the cart. UnitPrice is the snapshot taken at
// add time, not the live catalog price. Quantity always stays within
// [1, StockLimit].
type Line struct {
	ProductID  string `json:"productId"`
	Name       string `json:"name"`
	UnitPrice  int64  `json:"unitPrice"`
	Quantity   int    `json:"quantity"`
	StockLimit int    `json:"stockLimit"`
	ImageURL   string `json:"imageUrl"`
	Category   string `json:"category"`
}

// Subtotal returns the line contribution to the cart total.
func (l Line) Subtotal() int64 {
	return l.UnitPrice * int64(l.Quantity)
}

// Store owns the cart line sequence, insertion order preserved.
type Store struct {
	storage storage.Storage

	mu    sync.RWMutex
	lines []Line
}

// NewStore creates an empty cart store. When hub is non-nil the store
// subscribes to session changes and clears itself (memory and persisted
// snapshot) whenever the session becomes anonymous.
func NewStore(st storage.Storage, hub *signal.Hub[session.Change]) *Store {
	s := &Store{storage: st}
	if hub != nil {
		hub.Subscribe(s.onSessionChange)
	}
	return s
}

// Restore loads the persisted cart snapshot on process start. A missing or
// unreadable snapshot yields an empty cart, never an error.
func (s *Store) Restore(ctx context.Context) {
	raw, err := s.storage.Get(ctx, storage.KeyCart)
	if err != nil {
		if !errors.Is(err, storage.ErrKeyNotFound) {
			log.Printf("[Cart] Failed to read persisted cart: %v", err)
		}
		return
	}

	var lines []Line
	if err := json.Unmarshal(raw, &lines); err != nil {
		log.Printf("[Cart] Persisted cart is malformed, starting empty: %v", err)
		return
	}

	s.mu.Lock()
	s.lines = lines
	s.mu.Unlock()
}

// AddItem puts a product into the cart. A line for the same product is
// merged by summing quantities; the result is clamped to the stock limit
// rather than rejected. Quantities below 1 count as 1.
func (s *Store) AddItem(ctx context.Context, product catalog.Product, quantity int) {
	if quantity < 1 {
		quantity = 1
	}

	s.mu.Lock()
	if i := s.indexOf(product.ID); i >= 0 {
		s.lines[i].Quantity = clamp(s.lines[i].Quantity+quantity, 1, s.lines[i].StockLimit)
	} else {
		s.lines = append(s.lines, Line{
			ProductID:  product.ID,
			Name:       product.Name,
			UnitPrice:  product.Price,
			Quantity:   clamp(quantity, 1, product.Stock),
			StockLimit: product.Stock,
			ImageURL:   product.ImageURL,
			Category:   product.Category,
		})
	}
	s.mu.Unlock()

	s.persist(ctx)
}

// UpdateQuantity sets the quantity of an existing line, clamped to the stock
// limit. Values below 1 are a deliberate no-op. Returns ErrLineNotFound when
// no line exists for productID.
func (s *Store) UpdateQuantity(ctx context.Context, productID string, quantity int) error {
	if quantity < 1 {
		return nil
	}

	s.mu.Lock()
	i := s.indexOf(productID)
	if i < 0 {
		s.mu.Unlock()
		return ErrLineNotFound
	}
	s.lines[i].Quantity = clamp(quantity, 1, s.lines[i].StockLimit)
	s.mu.Unlock()

	s.persist(ctx)
	return nil
}

// RemoveItem drops a line. Removing an absent product is a no-op, not an
// error.
func (s *Store) RemoveItem(ctx context.Context, productID string) {
	s.mu.Lock()
	i := s.indexOf(productID)
	if i < 0 {
		s.mu.Unlock()
		return
	}
	s.lines = append(s.lines[:i], s.lines[i+1:]...)
	s.mu.Unlock()

	s.persist(ctx)
}

// Clear empties the cart and persists the empty snapshot.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	s.lines = nil
	s.mu.Unlock()

	s.persist(ctx)
}

// Lines returns a copy of the cart in insertion order.
func (s *Store) Lines() []Line {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Line, len(s.lines))
	copy(out, s.lines)
	return out
}

// Len returns the number of lines.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.lines)
}

// Total recomputes the cart total on every read; it is never cached, so it
// cannot drift from the lines.
func (s *Store) Total() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var total int64
	for _, line := range s.lines {
		total += line.Subtotal()
	}
	return total
}

// onSessionChange reacts to the session-changed signal. Logout empties the
// cart and drops the persisted snapshot; login deliberately does not merge
// any prior anonymous cart.
func (s *Store) onSessionChange(change session.Change) {
	if change.State != session.StateAnonymous {
		return
	}

	s.mu.Lock()
	s.lines = nil
	s.mu.Unlock()

	if err := s.storage.Delete(context.Background(), storage.KeyCart); err != nil {
		log.Printf("[Cart] Failed to drop persisted cart: %v", err)
	}
}

// persist writes the full cart snapshot through to storage. A write failure
// is logged and the in-memory state stands: losing a snapshot is better than
// blocking the mutation.
func (s *Store) persist(ctx context.Context) {
	data, err := json.Marshal(s.Lines())
	if err != nil {
		log.Printf("[Cart] Failed to encode cart snapshot: %v", err)
		return
	}
	if err := s.storage.Set(ctx, storage.KeyCart, data); err != nil {
		log.Printf("[Cart] Failed to persist cart snapshot: %v", err)
	}
}

// indexOf returns the position of productID or -1. Caller must hold the
// mutex.
func (s *Store) indexOf(productID string) int {
	for i, line := range s.lines {
		if line.ProductID == productID {
			return i
		}
	}
	return -1
}

func clamp(v, min, max int) int {
	if max < min {
		max = min
	}
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
