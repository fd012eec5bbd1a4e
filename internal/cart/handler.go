package cart

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/wichananm65/bookstore-backend/internal/book"
	"github.com/wichananm65/bookstore-backend/internal/user"
)

// Handler exposes the authenticated user's cart.
type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Get("/api/v1/cart", h.getCart)
	app.Post("/api/v1/cart/items", h.addItem)
	app.Delete("/api/v1/cart/items/:bookID<int>", h.removeItem)
}

type addItemRequest struct {
	BookID   int64 `json:"bookID"`
	Quantity *int  `json:"quantity"`
}

func (h *Handler) getCart(c *fiber.Ctx) error {
	userID, ok, err := user.RequireUserID(c)
	if !ok {
		return err
	}

	ctx := c.UserContext()
	crt, err := h.service.GetOrCreateCart(ctx, userID)
	if err != nil {
		return writeError(c, err)
	}
	contents, err := h.service.ListItems(ctx, crt)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(contents)
}

func (h *Handler) addItem(c *fiber.Ctx) error {
	userID, ok, err := user.RequireUserID(c)
	if !ok {
		return err
	}

	payload := new(addItemRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if payload.BookID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "bookID is required"})
	}
	qty := 1
	if payload.Quantity != nil {
		qty = *payload.Quantity
	}

	ctx := c.UserContext()
	crt, err := h.service.GetOrCreateCart(ctx, userID)
	if err != nil {
		return writeError(c, err)
	}
	item, err := h.service.AddItem(ctx, crt, payload.BookID, qty)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(item)
}

func (h *Handler) removeItem(c *fiber.Ctx) error {
	userID, ok, err := user.RequireUserID(c)
	if !ok {
		return err
	}
	bookID, err := strconv.ParseInt(c.Params("bookID"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid bookID"})
	}

	ctx := c.UserContext()
	crt, err := h.service.GetOrCreateCart(ctx, userID)
	if err != nil {
		return writeError(c, err)
	}
	if err := h.service.RemoveItem(ctx, crt, bookID); err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"message": "removed"})
}

func writeError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, book.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "book not found"})
	case errors.Is(err, ErrItemNotFound), errors.Is(err, ErrCartNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": err.Error()})
	case errors.Is(err, ErrInvalidQuantity), errors.Is(err, ErrInvalidUser):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
}
