package cart

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/wichananm65/bookstore-backend/internal/book"
	"github.com/wichananm65/bookstore-backend/internal/infrastructure/database/postgres"
)

type PostgresRepository struct {
	db postgres.DBTX
}

const (
	findCartQuery = `SELECT id, user_id, created_at FROM carts WHERE user_id = $1`
	lockCartQuery = `SELECT id, user_id, created_at FROM carts WHERE user_id = $1 FOR UPDATE`

	// user_id is UNIQUE; a concurrent creator gets 23505 here
	insertCartQuery = `
		INSERT INTO carts (user_id, created_at)
		VALUES ($1, NOW())
		RETURNING id, user_id, created_at
	`
	// the SELECT yields no row unless the cart still belongs to the user
	upsertItemQuery = `
		INSERT INTO cart_items (cart_id, book_id, quantity, added_at)
		SELECT c.id, $3::bigint, $4::int, NOW()
		FROM carts c
		WHERE c.id = $1 AND c.user_id = $2
		ON CONFLICT (cart_id, book_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity
		RETURNING cart_id, book_id, quantity, added_at
	`
	deleteItemQuery = `
		DELETE FROM cart_items ci
		USING carts c
		WHERE c.id = ci.cart_id AND c.id = $1 AND c.user_id = $2 AND ci.book_id = $3
	`
	listLinesQuery = `
		SELECT ci.cart_id, ci.book_id, ci.quantity, ci.added_at,
		       b.id, b.title, b.author, b.price, b.stock, b.created_at, b.updated_at
		FROM cart_items ci
		JOIN carts c ON c.id = ci.cart_id
		JOIN books b ON b.id = ci.book_id
		WHERE c.id = $1 AND c.user_id = $2
		ORDER BY ci.id
	`
	ownsCartQuery  = `SELECT EXISTS (SELECT 1 FROM carts WHERE id = $1 AND user_id = $2)`
	lockItemsQuery = `
		SELECT cart_id, book_id, quantity, added_at
		FROM cart_items
		WHERE cart_id = $1
		ORDER BY id
		FOR UPDATE
	`
	clearItemsQuery = `DELETE FROM cart_items WHERE cart_id = $1`

	cartFKConstraint = "cart_items_cart_id_fkey"
)

// NewPostgresRepository accepts a *sql.DB or a *sql.Tx.
func NewPostgresRepository(db postgres.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) FindByUser(ctx context.Context, userID string) (Cart, error) {
	return r.findCart(ctx, findCartQuery, userID)
}

// LockByUser reads the user's cart and holds its row lock until the
// surrounding transaction ends.
func (r *PostgresRepository) LockByUser(ctx context.Context, userID string) (Cart, error) {
	return r.findCart(ctx, lockCartQuery, userID)
}

func (r *PostgresRepository) findCart(ctx context.Context, query, userID string) (Cart, error) {
	var c Cart
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&c.ID, &c.UserID, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Cart{}, ErrCartNotFound
	}
	if err != nil {
		return Cart{}, fmt.Errorf("query cart for user %s: %w", userID, err)
	}
	return c, nil
}

func (r *PostgresRepository) Create(ctx context.Context, userID string) (Cart, error) {
	var c Cart
	err := r.db.QueryRowContext(ctx, insertCartQuery, userID).Scan(&c.ID, &c.UserID, &c.CreatedAt)
	if err != nil {
		if postgres.Code(err) == postgres.UniqueViolation {
			return Cart{}, ErrCartExists
		}
		return Cart{}, fmt.Errorf("insert cart: %w", err)
	}
	return c, nil
}

func (r *PostgresRepository) AddItem(ctx context.Context, c Cart, bookID int64, qty int) (Item, error) {
	var it Item
	err := r.db.QueryRowContext(ctx, upsertItemQuery, c.ID, c.UserID, bookID, qty).
		Scan(&it.CartID, &it.BookID, &it.Quantity, &it.AddedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Item{}, ErrCartNotFound
	}
	if err != nil {
		if postgres.Code(err) == postgres.ForeignKeyViolation {
			if postgres.Constraint(err) == cartFKConstraint {
				return Item{}, ErrCartNotFound
			}
			return Item{}, book.ErrNotFound
		}
		return Item{}, fmt.Errorf("upsert cart item: %w", err)
	}
	return it, nil
}

func (r *PostgresRepository) RemoveItem(ctx context.Context, c Cart, bookID int64) error {
	res, err := r.db.ExecContext(ctx, deleteItemQuery, c.ID, c.UserID, bookID)
	if err != nil {
		return fmt.Errorf("delete cart item: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete cart item: %w", err)
	}
	if n > 0 {
		return nil
	}
	if err := r.checkOwner(ctx, c); err != nil {
		return err
	}
	return ErrItemNotFound
}

// checkOwner tells a missing line apart from a cart that is not the user's.
func (r *PostgresRepository) checkOwner(ctx context.Context, c Cart) error {
	var owns bool
	if err := r.db.QueryRowContext(ctx, ownsCartQuery, c.ID, c.UserID).Scan(&owns); err != nil {
		return fmt.Errorf("query cart %d owner: %w", c.ID, err)
	}
	if !owns {
		return ErrCartNotFound
	}
	return nil
}

func (r *PostgresRepository) ListLines(ctx context.Context, c Cart) ([]Line, error) {
	rows, err := r.db.QueryContext(ctx, listLinesQuery, c.ID, c.UserID)
	if err != nil {
		return nil, fmt.Errorf("query cart lines: %w", err)
	}
	defer rows.Close()

	out := make([]Line, 0)
	for rows.Next() {
		var l Line
		if err := rows.Scan(&l.CartID, &l.BookID, &l.Quantity, &l.AddedAt,
			&l.Book.ID, &l.Book.Title, &l.Book.Author, &l.Book.Price, &l.Book.Stock, &l.Book.CreatedAt, &l.Book.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan cart line: %w", err)
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cart lines: %w", err)
	}
	if len(out) == 0 {
		if err := r.checkOwner(ctx, c); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Items returns the cart's items with row locks held, so no line can change
// between checkout reading it and clearing it.
func (r *PostgresRepository) Items(ctx context.Context, cartID int64) ([]Item, error) {
	rows, err := r.db.QueryContext(ctx, lockItemsQuery, cartID)
	if err != nil {
		return nil, fmt.Errorf("query cart items: %w", err)
	}
	defer rows.Close()

	out := make([]Item, 0)
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.CartID, &it.BookID, &it.Quantity, &it.AddedAt); err != nil {
			return nil, fmt.Errorf("scan cart item: %w", err)
		}
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cart items: %w", err)
	}
	return out, nil
}

// Clear removes every item from the cart. The cart row itself is kept.
func (r *PostgresRepository) Clear(ctx context.Context, cartID int64) error {
	if _, err := r.db.ExecContext(ctx, clearItemsQuery, cartID); err != nil {
		return fmt.Errorf("clear cart %d: %w", cartID, err)
	}
	return nil
}
