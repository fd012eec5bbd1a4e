package order

import (
	"context"
	"fmt"
	"iter"

	"github.com/lib/pq"
	"github.com/wichananm65/bookstore-backend/internal/infrastructure/database/postgres"
)

type PostgresRepository struct {
	db postgres.DBTX
}

const (
	insertOrderQuery = `
		INSERT INTO orders (user_id, address, total, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	// one round trip for all items; position keeps the cart's order
	insertItemsQuery = `
		INSERT INTO order_items (order_id, position, book_id, title, unit_price, quantity)
		SELECT $1, t.ord, t.book_id, t.title, t.unit_price, t.quantity
		FROM unnest($2::bigint[], $3::text[], $4::numeric[], $5::int[])
			WITH ORDINALITY AS t(book_id, title, unit_price, quantity, ord)
	`
	// every order has at least one item, so the inner join loses nothing
	selectOrdersQuery = `
		SELECT o.id, o.user_id, o.address, o.total, o.created_at,
		       oi.book_id, oi.title, oi.unit_price, oi.quantity
		FROM orders o
		JOIN order_items oi ON oi.order_id = o.id
		WHERE o.user_id = $1
		ORDER BY o.created_at DESC, o.id DESC, oi.position
	`
	selectOrderQuery = `
		SELECT o.id, o.user_id, o.address, o.total, o.created_at,
		       oi.book_id, oi.title, oi.unit_price, oi.quantity
		FROM orders o
		JOIN order_items oi ON oi.order_id = o.id
		WHERE o.user_id = $1 AND o.id = $2
		ORDER BY oi.position
	`
)

// NewPostgresRepository accepts a *sql.DB or a *sql.Tx.
func NewPostgresRepository(db postgres.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create must run inside a transaction for the order and its items to be
// written atomically.
func (r *PostgresRepository) Create(ctx context.Context, o Order) (Order, error) {
	if err := r.db.QueryRowContext(ctx, insertOrderQuery, o.UserID, o.Address, o.Total, o.CreatedAt).Scan(&o.ID); err != nil {
		return Order{}, fmt.Errorf("insert order: %w", err)
	}

	bookIDs := make([]int64, len(o.Items))
	titles := make([]string, len(o.Items))
	prices := make([]string, len(o.Items))
	quantities := make([]int64, len(o.Items))
	for i := range o.Items {
		o.Items[i].OrderID = o.ID
		bookIDs[i] = o.Items[i].BookID
		titles[i] = o.Items[i].Title
		prices[i] = o.Items[i].UnitPrice.String()
		quantities[i] = int64(o.Items[i].Quantity)
	}

	_, err := r.db.ExecContext(ctx, insertItemsQuery, o.ID,
		pq.Array(bookIDs), pq.Array(titles), pq.Array(prices), pq.Array(quantities))
	if err != nil {
		return Order{}, fmt.Errorf("insert order items: %w", err)
	}
	return o, nil
}

// ListByUser streams one joined query and folds consecutive rows with the
// same order id into a single Order.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) iter.Seq2[Order, error] {
	return r.query(ctx, selectOrdersQuery, userID)
}

func (r *PostgresRepository) GetByID(ctx context.Context, userID string, id int64) (Order, error) {
	for o, err := range r.query(ctx, selectOrderQuery, userID, id) {
		if err != nil {
			return Order{}, err
		}
		return o, nil
	}
	return Order{}, ErrNotFound
}

func (r *PostgresRepository) query(ctx context.Context, query string, args ...any) iter.Seq2[Order, error] {
	return func(yield func(Order, error) bool) {
		rows, err := r.db.QueryContext(ctx, query, args...)
		if err != nil {
			yield(Order{}, fmt.Errorf("query orders: %w", err))
			return
		}
		defer rows.Close()

		var cur *Order
		for rows.Next() {
			var (
				o  Order
				it Item
			)
			if err := rows.Scan(&o.ID, &o.UserID, &o.Address, &o.Total, &o.CreatedAt,
				&it.BookID, &it.Title, &it.UnitPrice, &it.Quantity); err != nil {
				yield(Order{}, fmt.Errorf("scan order row: %w", err))
				return
			}
			it.OrderID = o.ID

			if cur == nil || cur.ID != o.ID {
				if cur != nil && !yield(*cur, nil) {
					return
				}
				cur = &o
			}
			cur.Items = append(cur.Items, it)
		}
		if err := rows.Err(); err != nil {
			yield(Order{}, fmt.Errorf("iterate orders: %w", err))
			return
		}
		if cur != nil {
			yield(*cur, nil)
		}
	}
}
