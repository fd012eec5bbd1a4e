package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/wichananm65/bookstore-backend/internal/address"
	"github.com/wichananm65/bookstore-backend/internal/book"
	"github.com/wichananm65/bookstore-backend/internal/cart"
	"github.com/wichananm65/bookstore-backend/internal/checkout"
	"github.com/wichananm65/bookstore-backend/internal/infrastructure/config"
	"github.com/wichananm65/bookstore-backend/internal/infrastructure/database/inmemory"
	"github.com/wichananm65/bookstore-backend/internal/infrastructure/database/postgres"
	"github.com/wichananm65/bookstore-backend/internal/infrastructure/logger"
	"github.com/wichananm65/bookstore-backend/internal/interface/http/router"
	"github.com/wichananm65/bookstore-backend/internal/order"
)

// stores groups the repositories of whichever backend is configured.
type stores struct {
	books     book.Repository
	carts     cart.Repository
	orders    order.Repository
	checkout  checkout.Repository
	addresses address.Repository
	ready     func(ctx context.Context) error
	close     func() error
}

func main() {
	cfg := config.Load()
	log := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("could not open stores")
	}
	defer st.close()

	bookService := book.NewService(st.books)

	cartOpts := []cart.Option{cart.WithLogger(log)}
	if cfg.RedisURL != "" {
		client, err := newRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			log.WithError(err).Fatal("could not connect to redis")
		}
		defer client.Close()
		cartOpts = append(cartOpts, cart.WithCache(cart.NewRedisCache(client)))
	}
	cartService := cart.NewService(st.carts, bookService, cartOpts...)

	engine := checkout.NewEngine(st.checkout,
		checkout.WithLogger(log),
		checkout.WithMaxRetries(cfg.CheckoutMaxRetries),
	)
	addressService := address.NewService(st.addresses)

	bookHandler := book.NewHandler(bookService)
	app := router.New(
		router.Options{
			JWTSecret:    cfg.JWTSecret,
			AllowOrigins: cfg.AllowOrigins,
			Logger:       log,
			Ready:        st.ready,
		},
		[]router.PublicRoutes{bookHandler},
		[]router.ProtectedRoutes{
			bookHandler,
			cart.NewHandler(cartService),
			checkout.NewHandler(engine, addressService),
			order.NewHandler(order.NewService(st.orders)),
			address.NewHandler(addressService),
		},
	)

	go func() {
		<-ctx.Done()
		log.Info("shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.WithError(err).Warn("shutdown did not complete cleanly")
		}
	}()

	log.WithField("addr", cfg.Addr).Info("starting server")
	if err := app.Listen(cfg.Addr); err != nil {
		log.WithError(err).Error("server stopped")
	}
}

func openStores(ctx context.Context, cfg config.Config, log logrus.FieldLogger) (*stores, error) {
	if cfg.DatabaseURL == "" {
		log.Warn("DATABASE_URL is not set, using the in-memory store")
		mem := inmemory.New()
		if err := seedBooks(ctx, mem.Books()); err != nil {
			return nil, err
		}
		return &stores{
			books:     mem.Books(),
			carts:     mem.Carts(),
			orders:    mem.Orders(),
			checkout:  mem,
			addresses: address.NewInMemoryRepository(nil),
			close:     func() error { return nil },
		}, nil
	}

	db, err := postgres.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := postgres.Migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return &stores{
		books:     book.NewPostgresRepository(db),
		carts:     cart.NewPostgresRepository(db),
		orders:    order.NewPostgresRepository(db),
		checkout:  checkout.NewPostgresRepository(db),
		addresses: address.NewPostgresRepository(db),
		ready:     db.PingContext,
		close:     db.Close,
	}, nil
}

func newRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// seedBooks gives the in-memory store a small catalog to browse.
func seedBooks(ctx context.Context, repo book.Repository) error {
	seed := []book.Book{
		{Title: "Dune", Author: "Frank Herbert", Price: decimal.RequireFromString("12.50"), Stock: 3},
		{Title: "Emma", Author: "Jane Austen", Price: decimal.RequireFromString("8.00"), Stock: 5},
		{Title: "Middlemarch", Author: "George Eliot", Price: decimal.RequireFromString("10.99"), Stock: 1},
	}
	for _, b := range seed {
		if _, err := repo.Create(ctx, b); err != nil {
			return fmt.Errorf("seed %q: %w", b.Title, err)
		}
	}
	return nil
}
