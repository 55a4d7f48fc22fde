package handlers

import (
	"toko/internal/middleware"
	"toko/internal/models"
	"toko/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// CartHandler handles HTTP requests for the current user's cart.
type CartHandler struct {
	service  *services.CartService
	validate *validator.Validate
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(service *services.CartService) *CartHandler {
	return &CartHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the cart routes, all behind requireSession.
func (h *CartHandler) RegisterRoutes(router fiber.Router, requireSession fiber.Handler) {
	cartRoutes := router.Group("/cart", requireSession)
	cartRoutes.Get("/", h.HandleGetCart)
	cartRoutes.Post("/add", h.HandleAddItem)
	cartRoutes.Post("/remove", h.HandleRemoveItem)
}

// AddItemRequest represents the request body for adding to the cart.
type AddItemRequest struct {
	ProductID string  `json:"productId" validate:"required"`
	Quantity  *int    `json:"quantity" validate:"omitempty,min=1,max=10000"`
	Size      *string `json:"size"`
	Color     *string `json:"color"`
}

// RemoveItemRequest represents the request body for removing a cart line.
type RemoveItemRequest struct {
	ProductID string  `json:"productId" validate:"required"`
	Size      *string `json:"size"`
	Color     *string `json:"color"`
}

// HandleGetCart returns the current user's cart lines.
func (h *CartHandler) HandleGetCart(c *fiber.Ctx) error {
	items, err := h.service.GetCart(c.UserContext(), middleware.CurrentUser(c).ID)
	if err != nil {
		return writeError(c, err)
	}
	return cartResponse(c, items)
}

// HandleAddItem adds a product to the current user's cart.
func (h *CartHandler) HandleAddItem(c *fiber.Ctx) error {
	var req AddItemRequest
	if ok, err := parseBody(c, h.validate, &req); !ok {
		return err
	}

	quantity := 1
	if req.Quantity != nil {
		if *req.Quantity < 1 || *req.Quantity > services.MaxLineQuantity {
			return writeError(c, services.ErrInvalidQuantity)
		}
		quantity = *req.Quantity
	}

	items, err := h.service.AddItem(c.UserContext(), middleware.CurrentUser(c).ID, services.AddItemRequest{
		ProductID: req.ProductID,
		Quantity:  quantity,
		Size:      req.Size,
		Color:     req.Color,
	})
	if err != nil {
		return writeError(c, err)
	}
	return cartResponse(c, items)
}

// HandleRemoveItem removes a line from the current user's cart.
func (h *CartHandler) HandleRemoveItem(c *fiber.Ctx) error {
	var req RemoveItemRequest
	if ok, err := parseBody(c, h.validate, &req); !ok {
		return err
	}

	items, err := h.service.RemoveItem(c.UserContext(), middleware.CurrentUser(c).ID, models.ItemKey{
		ProductID: req.ProductID,
		Size:      req.Size,
		Color:     req.Color,
	})
	if err != nil {
		return writeError(c, err)
	}
	return cartResponse(c, items)
}

func cartResponse(c *fiber.Ctx, items []models.CartItem) error {
	if items == nil {
		items = []models.CartItem{}
	}
	return c.JSON(fiber.Map{
		"success": true,
		"cart":    items,
	})
}
