package checkout

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/wichananm65/bookstore-backend/internal/book"
	"github.com/wichananm65/bookstore-backend/internal/cart"
	"github.com/wichananm65/bookstore-backend/internal/order"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultMaxRetries = 3
	defaultBackoff    = 20 * time.Millisecond
)

// Engine converts a user's cart into an order.
type Engine struct {
	repo       Repository
	log        logrus.FieldLogger
	tracer     trace.Tracer
	now        func() time.Time
	maxRetries uint64
	backoff    time.Duration
}

type Option func(*Engine)

func WithLogger(log logrus.FieldLogger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// WithMaxRetries sets how many times a conflicting checkout is retried after
// the first attempt. Zero disables retrying.
func WithMaxRetries(n uint64) Option {
	return func(e *Engine) { e.maxRetries = n }
}

// WithBackoff sets the base delay of the exponential retry backoff.
func WithBackoff(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.backoff = d
		}
	}
}

// WithClock overrides the source of order timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

func NewEngine(repo Repository, opts ...Option) *Engine {
	e := &Engine{
		repo:       repo,
		log:        logrus.StandardLogger(),
		tracer:     otel.Tracer("bookstore/checkout"),
		now:        time.Now,
		maxRetries: defaultMaxRetries,
		backoff:    defaultBackoff,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// PlaceOrder atomically turns the user's cart into an order: stock is
// decremented for every line, the order is appended to the ledger and the
// cart is emptied. On any error none of that happens. A run aborted by
// concurrent access is retried; when retries run out the returned error
// matches ErrStorageConflict.
func (e *Engine) PlaceOrder(ctx context.Context, userID, address string) (order.Order, error) {
	if userID == "" {
		return order.Order{}, ErrInvalidUser
	}

	ctx, span := e.tracer.Start(ctx, "PlaceOrder")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	var (
		placed  order.Order
		attempt int
	)
	backoff := retry.WithMaxRetries(e.maxRetries, retry.NewExponential(e.backoff))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		o, err := e.placeOnce(ctx, userID, address)
		if errors.Is(err, ErrStorageConflict) {
			e.log.WithError(err).WithFields(logrus.Fields{
				"userID":  userID,
				"attempt": attempt,
			}).Warn("checkout conflict")
			return retry.RetryableError(err)
		}
		if err != nil {
			return err
		}
		placed = o
		return nil
	})
	span.SetAttributes(attribute.Int("checkout.attempts", attempt))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		var stockErr *book.InsufficientStockError
		if errors.As(err, &stockErr) {
			e.log.WithFields(logrus.Fields{
				"userID":    userID,
				"bookID":    stockErr.BookID,
				"requested": stockErr.Requested,
				"available": stockErr.Available,
			}).Info("checkout rejected: insufficient stock")
		}
		return order.Order{}, err
	}

	span.SetAttributes(
		attribute.Int64("order.id", placed.ID),
		attribute.Int("order.items.count", len(placed.Items)),
	)
	e.log.WithFields(logrus.Fields{
		"userID":  userID,
		"orderID": placed.ID,
		"items":   len(placed.Items),
		"total":   placed.Total.StringFixed(2),
	}).Info("order placed")
	return placed, nil
}

func (e *Engine) placeOnce(ctx context.Context, userID, address string) (order.Order, error) {
	var placed order.Order
	err := e.repo.WithinTx(ctx, func(ctx context.Context, tx Tx) error {
		c, err := tx.FindCart(ctx, userID)
		if errors.Is(err, cart.ErrCartNotFound) {
			return ErrEmptyCart
		}
		if err != nil {
			return fmt.Errorf("load cart: %w", err)
		}

		items, err := tx.CartItems(ctx, c.ID)
		if err != nil {
			return fmt.Errorf("load cart items: %w", err)
		}
		if len(items) == 0 {
			return ErrEmptyCart
		}

		// ascending ids give every checkout the same lock order
		ids := make([]int64, 0, len(items))
		for _, it := range items {
			ids = append(ids, it.BookID)
		}
		slices.Sort(ids)
		books, err := tx.LockBooks(ctx, slices.Compact(ids))
		if err != nil {
			return fmt.Errorf("lock books: %w", err)
		}

		o, err := e.buildOrder(userID, address, items, books)
		if err != nil {
			return err
		}

		for _, it := range o.Items {
			if _, err := tx.DecrementStock(ctx, it.BookID, it.Quantity); err != nil {
				return fmt.Errorf("decrement stock: %w", err)
			}
		}
		placed, err = tx.CreateOrder(ctx, o)
		if err != nil {
			return fmt.Errorf("create order: %w", err)
		}
		if err := tx.ClearCart(ctx, c.ID); err != nil {
			return fmt.Errorf("clear cart: %w", err)
		}
		return nil
	})
	if err != nil {
		return order.Order{}, err
	}
	return placed, nil
}

// buildOrder validates every line against locked stock before anything is
// written, and snapshots title and price for each line.
func (e *Engine) buildOrder(userID, address string, items []cart.Item, books map[int64]book.Book) (order.Order, error) {
	o := order.Order{
		UserID:    userID,
		Address:   address,
		CreatedAt: e.now().UTC().Truncate(time.Microsecond),
		Items:     make([]order.Item, 0, len(items)),
	}
	total := decimal.Zero
	for _, it := range items {
		b, ok := books[it.BookID]
		if !ok {
			return order.Order{}, fmt.Errorf("book %d: %w", it.BookID, book.ErrNotFound)
		}
		if !b.InStock(it.Quantity) {
			return order.Order{}, &book.InsufficientStockError{
				BookID:    b.ID,
				Requested: it.Quantity,
				Available: b.Stock,
			}
		}
		line := order.Item{
			BookID:    b.ID,
			Title:     b.Title,
			UnitPrice: b.Price,
			Quantity:  it.Quantity,
		}
		o.Items = append(o.Items, line)
		total = total.Add(line.Subtotal())
	}
	o.Total = total
	return o, nil
}
