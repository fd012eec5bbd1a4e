package checkout

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/wichananm65/bookstore-backend/internal/book"
	"github.com/wichananm65/bookstore-backend/internal/cart"
	"github.com/wichananm65/bookstore-backend/internal/infrastructure/database/postgres"
	"github.com/wichananm65/bookstore-backend/internal/order"
)

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// WithinTx runs fn in a read-committed transaction. Row locks taken through
// tx, not the isolation level, keep concurrent checkouts from overselling.
func (r *PostgresRepository) WithinTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) (err error) {
	sqlTx, err := r.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return classify(fmt.Errorf("begin checkout tx: %w", err))
	}
	defer func() {
		if err != nil {
			_ = sqlTx.Rollback()
		}
	}()

	tx := &pgTx{
		books:  book.NewPostgresRepository(sqlTx),
		carts:  cart.NewPostgresRepository(sqlTx),
		orders: order.NewPostgresRepository(sqlTx),
	}
	if err = fn(ctx, tx); err != nil {
		return classify(err)
	}
	if err = sqlTx.Commit(); err != nil {
		return classify(fmt.Errorf("commit checkout tx: %w", err))
	}
	return nil
}

func classify(err error) error {
	if postgres.IsConflict(err) {
		return fmt.Errorf("%w: %w", ErrStorageConflict, err)
	}
	return err
}

type pgTx struct {
	books  *book.PostgresRepository
	carts  *cart.PostgresRepository
	orders *order.PostgresRepository
}

func (t *pgTx) FindCart(ctx context.Context, userID string) (cart.Cart, error) {
	return t.carts.LockByUser(ctx, userID)
}

func (t *pgTx) CartItems(ctx context.Context, cartID int64) ([]cart.Item, error) {
	return t.carts.Items(ctx, cartID)
}

func (t *pgTx) LockBooks(ctx context.Context, ids []int64) (map[int64]book.Book, error) {
	return t.books.LockByIDs(ctx, ids)
}

func (t *pgTx) DecrementStock(ctx context.Context, bookID int64, qty int) (int, error) {
	return t.books.DecrementStock(ctx, bookID, qty)
}

func (t *pgTx) CreateOrder(ctx context.Context, o order.Order) (order.Order, error) {
	return t.orders.Create(ctx, o)
}

func (t *pgTx) ClearCart(ctx context.Context, cartID int64) error {
	return t.carts.Clear(ctx, cartID)
}
