package book

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/wichananm65/bookstore-backend/internal/user"
)

// Handler exposes the catalog over HTTP.
type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterPublicRoutes(app *fiber.App) {
	app.Get("/api/v1/books", h.listBooks)
	app.Get("/api/v1/books/:id<int>", h.getBook)
}

// RegisterProtectedRoutes registers the catalog collaborator endpoints. A
// shopper's token is not enough; they need the catalog scope.
func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	catalog := user.RequireScope(user.ScopeCatalog)
	app.Post("/api/v1/books/:id<int>/restock", catalog, h.restock)
	app.Put("/api/v1/books/:id<int>/price", catalog, h.reprice)
}

type restockRequest struct {
	Quantity int `json:"quantity"`
}

type repriceRequest struct {
	Price *decimal.Decimal `json:"price"`
}

func (h *Handler) listBooks(c *fiber.Ctx) error {
	books, err := h.service.List(c.UserContext())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(books)
}

func (h *Handler) getBook(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid id"})
	}

	b, err := h.service.GetByID(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(b)
}

func (h *Handler) restock(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid id"})
	}
	payload := new(restockRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	stock, err := h.service.Restock(c.UserContext(), id, payload.Quantity)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"bookID": id, "stock": stock})
}

func (h *Handler) reprice(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid id"})
	}
	payload := new(repriceRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if payload.Price == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "price is required"})
	}

	b, err := h.service.Reprice(c.UserContext(), id, *payload.Price)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(b)
}

func writeError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "book not found"})
	case errors.Is(err, ErrInvalidQuantity), errors.Is(err, ErrInvalidPrice):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
}
