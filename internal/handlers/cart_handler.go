package handlers

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"wooshop/internal/services"
)

// CartHandler serves the signed-in user's cart.
type CartHandler struct {
	service  *services.CartService
	validate *validator.Validate
}

func NewCartHandler(service *services.CartService) *CartHandler {
	return &CartHandler{service: service, validate: validator.New()}
}

func (h *CartHandler) RegisterRoutes(router fiber.Router, g Guards) {
	cart := router.Group("/cart", g.Auth)
	cart.Get("/", h.HandleGetCart)
	cart.Delete("/", h.HandleClearCart)
	cart.Post("/add-item", h.HandleAddItem)
	cart.Put("/items/:key", h.HandleUpdateItem)
	cart.Delete("/items/:key", h.HandleRemoveItem)
	cart.Post("/apply-coupon", h.HandleApplyCoupon)
	cart.Delete("/coupons/:code", h.HandleRemoveCoupon)
}

type addItemRequest struct {
	ProductID string            `json:"product_id" validate:"required"`
	Quantity  int               `json:"quantity" validate:"omitempty,min=1"`
	Variation map[string]string `json:"variation"`
}

type updateItemRequest struct {
	Quantity *int `json:"quantity" validate:"required,min=0"`
}

type couponRequest struct {
	Code string `json:"code" validate:"required"`
}

func (h *CartHandler) HandleGetCart(c *fiber.Ctx) error {
	cart, err := h.service.GetCart(c.UserContext(), actor(c).UserID)
	if err != nil {
		return err
	}
	return c.JSON(cart)
}

// HandleAddItem adds one unit unless a quantity is given.
func (h *CartHandler) HandleAddItem(c *fiber.Ctx) error {
	var req addItemRequest
	if err := bind(c, h.validate, &req); err != nil {
		return err
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	cart, err := h.service.AddItem(c.UserContext(), actor(c).UserID, req.ProductID, req.Quantity, req.Variation)
	if err != nil {
		return err
	}
	return c.JSON(cart)
}

func (h *CartHandler) HandleUpdateItem(c *fiber.Ctx) error {
	var req updateItemRequest
	if err := bind(c, h.validate, &req); err != nil {
		return err
	}
	cart, err := h.service.UpdateItem(c.UserContext(), actor(c).UserID, c.Params("key"), *req.Quantity)
	if err != nil {
		return err
	}
	return c.JSON(cart)
}

func (h *CartHandler) HandleRemoveItem(c *fiber.Ctx) error {
	cart, err := h.service.RemoveItem(c.UserContext(), actor(c).UserID, c.Params("key"))
	if err != nil {
		return err
	}
	return c.JSON(cart)
}

func (h *CartHandler) HandleClearCart(c *fiber.Ctx) error {
	cart, err := h.service.ClearCart(c.UserContext(), actor(c).UserID)
	if err != nil {
		return err
	}
	return c.JSON(cart)
}

func (h *CartHandler) HandleApplyCoupon(c *fiber.Ctx) error {
	var req couponRequest
	if err := bind(c, h.validate, &req); err != nil {
		return err
	}
	cart, err := h.service.ApplyCoupon(c.UserContext(), actor(c).UserID, req.Code)
	if err != nil {
		return err
	}
	return c.JSON(cart)
}

func (h *CartHandler) HandleRemoveCoupon(c *fiber.Ctx) error {
	cart, err := h.service.RemoveCoupon(c.UserContext(), actor(c).UserID, c.Params("code"))
	if err != nil {
		return err
	}
	return c.JSON(cart)
}
