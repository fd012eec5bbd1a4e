package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/wichananm65/bookstore-backend/internal/book"
	"golang.org/x/sync/singleflight"
)

// BookFinder resolves catalog entries when items are added.
type BookFinder interface {
	GetByID(ctx context.Context, id int64) (book.Book, error)
}

// Service is the cart manager.
type Service struct {
	repo  Repository
	books BookFinder
	cache Cache
	log   logrus.FieldLogger
	sfg   singleflight.Group
}

type Option func(*Service)

// WithCache enables the user→cart cache.
func WithCache(c Cache) Option {
	return func(s *Service) {
		if c != nil {
			s.cache = c
		}
	}
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

func NewService(repo Repository, books BookFinder, opts ...Option) *Service {
	s := &Service{
		repo:  repo,
		books: books,
		cache: nopCache{},
		log:   logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetOrCreateCart returns the user's cart, creating it on first use. Calls for
// the same user always yield the same cart, including when they race.
func (s *Service) GetOrCreateCart(ctx context.Context, userID string) (Cart, error) {
	if userID == "" {
		return Cart{}, ErrInvalidUser
	}

	// collapse concurrent lookups for one user into a single round trip; the
	// shared call must not fail because the first caller went away
	v, err, _ := s.sfg.Do(userID, func() (interface{}, error) {
		ctx := context.WithoutCancel(ctx)
		c, err := s.cache.Get(ctx, userID)
		if err == nil {
			return c, nil
		}
		if !errors.Is(err, ErrCacheMiss) {
			s.log.WithError(err).WithField("userID", userID).Warn("cart cache get failed")
		}

		c, err = s.getOrCreate(ctx, userID)
		if err != nil {
			return Cart{}, err
		}
		if err := s.cache.Set(ctx, c); err != nil {
			s.log.WithError(err).WithField("userID", userID).Warn("cart cache set failed")
		}
		return c, nil
	})
	if err != nil {
		return Cart{}, err
	}
	return v.(Cart), nil
}

func (s *Service) getOrCreate(ctx context.Context, userID string) (Cart, error) {
	c, err := s.repo.FindByUser(ctx, userID)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, ErrCartNotFound) {
		return Cart{}, fmt.Errorf("find cart: %w", err)
	}

	c, err = s.repo.Create(ctx, userID)
	if errors.Is(err, ErrCartExists) {
		// another request created it between our read and insert
		return s.repo.FindByUser(ctx, userID)
	}
	if err != nil {
		return Cart{}, fmt.Errorf("create cart: %w", err)
	}
	return c, nil
}

// AddItem adds qty copies of a book to the cart. Stock is not checked here;
// availability is decided at checkout.
func (s *Service) AddItem(ctx context.Context, c Cart, bookID int64, qty int) (Item, error) {
	if qty <= 0 {
		return Item{}, ErrInvalidQuantity
	}
	if _, err := s.books.GetByID(ctx, bookID); err != nil {
		return Item{}, err
	}

	var it Item
	err := s.withCart(ctx, c, func(c Cart) error {
		var err error
		it, err = s.repo.AddItem(ctx, c, bookID, qty)
		return err
	})
	return it, err
}

func (s *Service) RemoveItem(ctx context.Context, c Cart, bookID int64) error {
	return s.withCart(ctx, c, func(c Cart) error {
		return s.repo.RemoveItem(ctx, c, bookID)
	})
}

// ListItems prices the cart with current catalog data. The total is computed
// on every call.
func (s *Service) ListItems(ctx context.Context, c Cart) (Contents, error) {
	var contents Contents
	err := s.withCart(ctx, c, func(c Cart) error {
		lines, err := s.repo.ListLines(ctx, c)
		if err != nil {
			return err
		}
		contents = newContents(c, lines)
		return nil
	})
	return contents, err
}

// withCart runs fn on c. When the store no longer assigns c to its user, c
// came from a stale cache entry: the entry is dropped and fn runs once more
// on the cart the store resolves for that user.
func (s *Service) withCart(ctx context.Context, c Cart, fn func(Cart) error) error {
	err := fn(c)
	if !errors.Is(err, ErrCartNotFound) {
		return err
	}

	s.log.WithFields(logrus.Fields{"userID": c.UserID, "cartID": c.ID}).Warn("dropping stale cart cache entry")
	if err := s.cache.Delete(ctx, c.UserID); err != nil {
		return fmt.Errorf("drop cached cart: %w", err)
	}
	fresh, err := s.GetOrCreateCart(ctx, c.UserID)
	if err != nil {
		return err
	}
	return fn(fresh)
}
