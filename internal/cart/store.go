package cart

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
)

const DefaultKey = "cart"

// Storage is the durable key-value store the cart survives reloads in.
type Storage interface {
	// Load returns ErrNotFound when nothing is stored under key.
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, blob []byte) error
	Delete(ctx context.Context, key string) error
}

type Kind string

const (
	KindItemAdded       Kind = "item_added"
	KindQuantityUpdated Kind = "quantity_updated"
	KindItemRemoved     Kind = "item_removed"
)

// Notification is a short user-facing message.
type Notification struct {
	Kind        Kind   `json:"kind"`
	ItemID      string `json:"item_id,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Notifier presents notifications. Implementations must not block the caller
// on delivery.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

type NotifierFunc func(ctx context.Context, n Notification)

func (f NotifierFunc) Notify(ctx context.Context, n Notification) { f(ctx, n) }

type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, Notification) {}

// Listener receives a fresh snapshot after every mutation that changed the cart.
type Listener func(Snapshot)

type Config struct {
	Storage  Storage
	Notifier Notifier
	Logger   *slog.Logger
	Key      string
}

// Store owns the cart. All mutations go through it; readers get copies.
type Store struct {
	mu    sync.Mutex
	items []Item

	storage  Storage
	notifier Notifier
	log      *slog.Logger
	key      string

	lmu       sync.Mutex
	listeners map[uint64]Listener
	nextID    uint64
}

// New builds a Store and restores whatever cart was persisted under cfg.Key.
// A missing or unreadable record yields an empty cart.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Storage == nil {
		return nil, ErrNoStorage
	}
	s := &Store{
		storage:   cfg.Storage,
		notifier:  cfg.Notifier,
		log:       cfg.Logger,
		key:       cfg.Key,
		listeners: make(map[uint64]Listener),
	}
	if s.notifier == nil {
		s.notifier = nopNotifier{}
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	if s.key == "" {
		s.key = DefaultKey
	}
	s.log = s.log.With("component", "cart", "key", s.key)

	s.items = s.restore(ctx)
	return s, nil
}

func (s *Store) restore(ctx context.Context) []Item {
	blob, err := s.storage.Load(ctx, s.key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.log.Warn("cart_load_error", "error", err)
		}
		return []Item{}
	}

	items, err := Decode(blob)
	if err != nil {
		s.log.Warn("cart_load_error", "error", err)
		return []Item{}
	}

	s.log.Debug("cart restored", "lines", len(items))
	return items
}

func (s *Store) Key() string { return s.key }

// AddItem puts one more unit of the candidate in the cart. A book already in
// the cart keeps the title, author, image and price it was first added with.
func (s *Store) AddItem(ctx context.Context, c Candidate) error {
	if err := c.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	var n Notification
	if idx := s.indexOf(c.ID); idx >= 0 {
		s.items[idx].Quantity++
		n = Notification{
			Kind:        KindQuantityUpdated,
			ItemID:      c.ID,
			Title:       "Quantity updated",
			Description: fmt.Sprintf("%s was added to your cart", s.items[idx].Title),
		}
	} else {
		s.items = append(s.items, c.item())
		n = Notification{
			Kind:        KindItemAdded,
			ItemID:      c.ID,
			Title:       "Book added",
			Description: fmt.Sprintf("%s was added to your cart", c.Title),
		}
	}
	s.persistLocked(ctx)
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.notifier.Notify(ctx, n)
	s.publish(snap)
	return nil
}

// RemoveItem drops the line with the given id. Removing an id that is not in
// the cart does nothing, not even a notification.
func (s *Store) RemoveItem(ctx context.Context, id string) {
	s.mu.Lock()
	idx := s.indexOf(id)
	if idx < 0 {
		s.mu.Unlock()
		return
	}
	s.items = append(s.items[:idx:idx], s.items[idx+1:]...)
	s.persistLocked(ctx)
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.notifier.Notify(ctx, Notification{
		Kind:        KindItemRemoved,
		ItemID:      id,
		Title:       "Item removed",
		Description: "The item was removed from your cart",
	})
	s.publish(snap)
}

// UpdateQuantity replaces the quantity of a line. Anything below one removes
// the line.
func (s *Store) UpdateQuantity(ctx context.Context, id string, quantity int) {
	if quantity < 1 {
		s.RemoveItem(ctx, id)
		return
	}

	s.mu.Lock()
	idx := s.indexOf(id)
	if idx < 0 {
		s.mu.Unlock()
		return
	}
	s.items[idx].Quantity = quantity
	s.persistLocked(ctx)
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.publish(snap)
}

// Clear empties the cart and deletes the persisted record.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	s.items = []Item{}
	if err := s.storage.Delete(ctx, s.key); err != nil && !errors.Is(err, ErrNotFound) {
		s.log.Error("cart_clear_error", "error", err)
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.publish(snap)
}

// Settle takes lines read earlier (e.g. by a checkout) out of the cart. Copies
// added since the read stay: a line whose quantity grew keeps the surplus, and
// lines not in the read are untouched. The record is deleted once the cart
// ends up empty. It returns the number of lines left.
func (s *Store) Settle(ctx context.Context, read []Item) (left int) {
	taken := make(map[string]int, len(read))
	for _, it := range read {
		taken[it.ID] += it.Quantity
	}

	s.mu.Lock()
	kept := make([]Item, 0, len(s.items))
	changed := false
	for _, it := range s.items {
		q, ok := taken[it.ID]
		if !ok {
			kept = append(kept, it)
			continue
		}
		changed = true
		if it.Quantity > q {
			it.Quantity -= q
			kept = append(kept, it)
		}
	}
	if !changed {
		left = len(s.items)
		s.mu.Unlock()
		return left
	}
	s.items = kept
	if len(kept) == 0 {
		if err := s.storage.Delete(ctx, s.key); err != nil && !errors.Is(err, ErrNotFound) {
			s.log.Error("cart_clear_error", "error", err)
		}
	} else {
		s.persistLocked(ctx)
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.publish(snap)
	return len(kept)
}

func (s *Store) Items() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyItems()
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func (s *Store) TotalItems() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return TotalItems(s.items)
}

func (s *Store) TotalPrice() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return TotalPrice(s.items)
}

func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Subscribe registers fn to run after each change. The returned func removes it.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	s.lmu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.lmu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.lmu.Lock()
			delete(s.listeners, id)
			s.lmu.Unlock()
		})
	}
}

func (s *Store) publish(snap Snapshot) {
	s.lmu.Lock()
	ids := make([]uint64, 0, len(s.listeners))
	for id := range s.listeners {
		ids = append(ids, id)
	}
	fns := make([]Listener, 0, len(ids))
	slices.Sort(ids)
	for _, id := range ids {
		fns = append(fns, s.listeners[id])
	}
	s.lmu.Unlock()

	for _, fn := range fns {
		fn(Snapshot{
			Items:      append([]Item(nil), snap.Items...),
			TotalItems: snap.TotalItems,
			TotalPrice: snap.TotalPrice,
		})
	}
}

func (s *Store) persistLocked(ctx context.Context) {
	blob, err := Encode(s.items)
	if err != nil {
		s.log.Error("cart_persist_error", "error", err)
		return
	}
	if err := s.storage.Save(ctx, s.key, blob); err != nil {
		s.log.Error("cart_persist_error", "error", err)
	}
}

func (s *Store) snapshotLocked() Snapshot {
	return Snapshot{
		Items:      s.copyItems(),
		TotalItems: TotalItems(s.items),
		TotalPrice: TotalPrice(s.items),
	}
}

func (s *Store) copyItems() []Item {
	out := make([]Item, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Store) indexOf(id string) int {
	for i := range s.items {
		if s.items[i].ID == id {
			return i
		}
	}
	return -1
}
