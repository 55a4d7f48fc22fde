package handlers

import (
	"toko/internal/models"
	"toko/internal/services"

	"github.com/gofiber/fiber/v2"
)

// Category is a storefront section.
type Category struct {
	ID     string        `json:"id"`
	Name   string        `json:"name"`
	Gender models.Gender `json:"gender"`
}

var categories = []Category{
	{ID: "mens", Name: "Men's", Gender: models.GenderMen},
	{ID: "womens", Name: "Women's", Gender: models.GenderWomen},
	{ID: "kids", Name: "Kids", Gender: models.GenderKids},
	{ID: "accessories", Name: "Accessories", Gender: models.GenderUnisex},
}

// CatalogHandler serves the static categories and the sample-data bootstrap.
type CatalogHandler struct {
	loader *services.CatalogLoader
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(loader *services.CatalogLoader) *CatalogHandler {
	return &CatalogHandler{loader: loader}
}

// RegisterRoutes registers the catalog routes.
func (h *CatalogHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/categories", h.HandleCategories)
	router.Post("/init-data", h.HandleInitData)
}

// HandleCategories returns the fixed list of storefront categories.
func (h *CatalogHandler) HandleCategories(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"success":    true,
		"categories": categories,
	})
}

// HandleInitData installs the sample catalog unless products already exist.
func (h *CatalogHandler) HandleInitData(c *fiber.Ctx) error {
	inserted, err := h.loader.LoadSamples(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}

	message := "Sample data initialized"
	if inserted == 0 {
		message = "Data already initialized"
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": message,
	})
}
