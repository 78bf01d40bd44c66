package handlers

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"wooshop/internal/services"
)

type WishlistHandler struct {
	service  *services.WishlistService
	validate *validator.Validate
}

func NewWishlistHandler(service *services.WishlistService) *WishlistHandler {
	return &WishlistHandler{service: service, validate: validator.New()}
}

// RegisterRoutes registers the wishlist routes; all of them require a
// signed-in user.
func (h *WishlistHandler) RegisterRoutes(router fiber.Router, g Guards) {
	wishlist := router.Group("/wishlist", g.Auth)
	wishlist.Get("/", h.HandleList)
	wishlist.Post("/", h.HandleAdd)
	wishlist.Delete("/:product_id", h.HandleRemove)
}

func (h *WishlistHandler) HandleList(c *fiber.Ctx) error {
	items, err := h.service.List(c.UserContext(), actor(c).UserID)
	if err != nil {
		return err
	}
	return c.JSON(items)
}

type wishlistRequest struct {
	ProductID string `json:"product_id" validate:"required"`
}

func (h *WishlistHandler) HandleAdd(c *fiber.Ctx) error {
	var req wishlistRequest
	if err := bind(c, h.validate, &req); err != nil {
		return err
	}
	item, err := h.service.Add(c.UserContext(), actor(c).UserID, req.ProductID)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(item)
}

func (h *WishlistHandler) HandleRemove(c *fiber.Ctx) error {
	productID := c.Params("product_id")
	if err := h.service.Remove(c.UserContext(), actor(c).UserID, productID); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"deleted": true, "product_id": productID})
}
