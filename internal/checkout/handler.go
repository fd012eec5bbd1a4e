package checkout

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/wichananm65/bookstore-backend/internal/address"
	"github.com/wichananm65/bookstore-backend/internal/book"
	"github.com/wichananm65/bookstore-backend/internal/user"
)

// AddressResolver turns a saved address id into the text stored on the order.
type AddressResolver interface {
	Resolve(ctx context.Context, userID string, id int64) (string, error)
}

// Handler places orders for the authenticated user.
type Handler struct {
	engine    *Engine
	addresses AddressResolver
}

// NewHandler builds the checkout handler. addresses may be nil, in which case
// only literal addresses are accepted.
func NewHandler(e *Engine, addresses AddressResolver) *Handler {
	return &Handler{engine: e, addresses: addresses}
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Post("/api/v1/orders", h.placeOrder)
}

type placeOrderRequest struct {
	Address   *string `json:"address"`
	AddressID *int64  `json:"addressId"`
}

func (h *Handler) placeOrder(c *fiber.Ctx) error {
	userID, ok, err := user.RequireUserID(c)
	if !ok {
		return err
	}

	payload := new(placeOrderRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	ctx := c.UserContext()
	var addr string
	switch {
	case payload.Address != nil:
		addr = *payload.Address
	case payload.AddressID != nil:
		if h.addresses == nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "saved addresses are not available"})
		}
		addr, err = h.addresses.Resolve(ctx, userID, *payload.AddressID)
		if errors.Is(err, address.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "address not found"})
		}
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
		}
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "address or addressId is required"})
	}

	o, err := h.engine.PlaceOrder(ctx, userID, addr)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(o)
}

func writeError(c *fiber.Ctx, err error) error {
	var stockErr *book.InsufficientStockError
	switch {
	case errors.As(err, &stockErr):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message":   "insufficient stock",
			"bookID":    stockErr.BookID,
			"requested": stockErr.Requested,
			"available": stockErr.Available,
		})
	case errors.Is(err, ErrEmptyCart):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	case errors.Is(err, book.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "book not found"})
	case errors.Is(err, ErrStorageConflict):
		c.Set(fiber.HeaderRetryAfter, "1")
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"message": ErrStorageConflict.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
}
