package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/bookcart/internal/cart"
	"github.com/Skotchmaster/bookcart/internal/logging"
	"github.com/Skotchmaster/bookcart/internal/models"
	"github.com/Skotchmaster/bookcart/internal/pricing"
)

var (
	ErrValidation   = errors.New("validation")
	ErrNotFound     = errors.New("not found")
	ErrEmptyCart    = errors.New("cart is empty")
	ErrUnauthorized = errors.New("unauthorized")
	ErrNoCart       = errors.New("service: cart store is required")
)

const KindOrderPlaced cart.Kind = "order_placed"

type OrderRepo interface {
	SellersFor(ctx context.Context, bookIDs []string) (map[string]uuid.UUID, error)
	CreateOrders(ctx context.Context, orders []models.Order, note *models.Notification) error
	ListOrders(ctx context.Context, buyerID uuid.UUID) ([]models.Order, error)
}

type Session interface {
	UserID(ctx context.Context) (uuid.UUID, error)
}

type Form struct {
	FullName      string               `json:"full_name"`
	Address       string               `json:"address"`
	Phone         string               `json:"phone"`
	PaymentMethod models.PaymentMethod `json:"payment_method"`
}

func (f *Form) normalize() {
	f.FullName = strings.TrimSpace(f.FullName)
	f.Address = strings.TrimSpace(f.Address)
	f.Phone = strings.TrimSpace(f.Phone)
	if f.PaymentMethod == "" {
		f.PaymentMethod = models.PaymentCash
	}
}

func (f Form) Validate() error {
	switch {
	case f.FullName == "":
		return fmt.Errorf("full name is required: %w", ErrValidation)
	case f.Address == "":
		return fmt.Errorf("delivery address is required: %w", ErrValidation)
	case f.Phone == "":
		return fmt.Errorf("phone is required: %w", ErrValidation)
	case !f.PaymentMethod.Valid():
		return fmt.Errorf("unknown payment method %q: %w", f.PaymentMethod, ErrValidation)
	}
	return nil
}

type Receipt struct {
	OrderIDs      []uuid.UUID          `json:"order_ids"`
	Skipped       []string             `json:"skipped,omitempty"`
	PaymentMethod models.PaymentMethod `json:"payment_method"`
	Summary       pricing.Summary      `json:"summary"`
}

type CheckoutService struct {
	Cart     *cart.Store
	Repo     OrderRepo
	Session  Session
	Notifier cart.Notifier
	Pricing  pricing.Policy
	Now      func() time.Time
}

func NewCheckoutService(store *cart.Store, repo OrderRepo, sess Session, notifier cart.Notifier, policy pricing.Policy) (*CheckoutService, error) {
	if store == nil {
		return nil, ErrNoCart
	}
	if repo == nil || sess == nil {
		return nil, errors.New("service: order repo and session are required")
	}
	if notifier == nil {
		notifier = cart.NotifierFunc(func(context.Context, cart.Notification) {})
	}
	return &CheckoutService{
		Cart:     store,
		Repo:     repo,
		Session:  sess,
		Notifier: notifier,
		Pricing:  policy,
		Now:      func() time.Time { return time.Now().UTC() },
	}, nil
}

// PlaceOrder turns the cart into one pending order per line and takes those
// lines out of the cart. Lines whose book is no longer in the catalog are
// skipped. Anything added while the order is being written stays in the cart.
// Any failure before the orders are written leaves the cart untouched.
func (s *CheckoutService) PlaceOrder(ctx context.Context, form Form) (*Receipt, error) {
	l := logging.FromContext(ctx).With("op", "place_order")

	form.normalize()
	if err := form.Validate(); err != nil {
		return nil, err
	}

	items := s.Cart.Items()
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	buyer, err := s.Session.UserID(ctx)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, ErrUnauthorized)
	}

	ids := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ID)
	}
	sellers, err := s.Repo.SellersFor(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("seller lookup: %w", err)
	}

	now := s.Now()
	orders := make([]models.Order, 0, len(items))
	placed := make([]cart.Item, 0, len(items))
	var skipped []string
	for _, it := range items {
		seller, ok := sellers[it.ID]
		if !ok {
			skipped = append(skipped, it.ID)
			continue
		}
		orders = append(orders, models.Order{
			ID:            uuid.New(),
			BuyerID:       buyer,
			SellerID:      seller,
			BookID:        it.ID,
			Title:         it.Title,
			Quantity:      it.Quantity,
			Amount:        pricing.LineTotal(it).InexactFloat64(),
			PaymentMethod: form.PaymentMethod,
			Status:        models.StatusPending,
			FullName:      form.FullName,
			Address:       form.Address,
			Phone:         form.Phone,
			CreatedAt:     now,
		})
		placed = append(placed, it)
	}
	if len(orders) == 0 {
		return nil, fmt.Errorf("none of the books in the cart are still listed: %w", ErrNotFound)
	}

	message := fmt.Sprintf(
		"Your order of %d item(s) has been confirmed. Payment method: %s. You will be notified at each delivery step.",
		len(orders), form.PaymentMethod,
	)
	note := &models.Notification{
		UserID:    buyer,
		Type:      "order",
		Title:     "Order confirmed",
		Message:   message,
		CreatedAt: now,
	}
	if err := s.Repo.CreateOrders(ctx, orders, note); err != nil {
		return nil, fmt.Errorf("create orders: %w", err)
	}

	if left := s.Cart.Settle(ctx, items); left > 0 {
		l.Info("cart kept lines added during checkout", "lines", left)
	}
	s.Notifier.Notify(ctx, cart.Notification{
		Kind:        KindOrderPlaced,
		Title:       "Order confirmed",
		Description: message,
	})

	receipt := &Receipt{
		OrderIDs:      make([]uuid.UUID, 0, len(orders)),
		Skipped:       skipped,
		PaymentMethod: form.PaymentMethod,
		Summary:       pricing.Summarize(placed, s.Pricing),
	}
	for _, o := range orders {
		receipt.OrderIDs = append(receipt.OrderIDs, o.ID)
	}

	l.Info("order placed", "buyer_id", buyer, "orders", len(orders), "skipped", len(skipped))
	return receipt, nil
}

func (s *CheckoutService) ListOrders(ctx context.Context) ([]models.Order, error) {
	buyer, err := s.Session.UserID(ctx)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, ErrUnauthorized)
	}
	return s.Repo.ListOrders(ctx, buyer)
}
