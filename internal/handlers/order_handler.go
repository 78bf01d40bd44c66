package handlers

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"wooshop/internal/repositories"
	"wooshop/internal/services"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	service  *services.OrderService
	pager    Pager
	validate *validator.Validate
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService, pager Pager) *OrderHandler {
	return &OrderHandler{service: service, pager: pager, validate: validator.New()}
}

// RegisterRoutes registers the order routes.
func (h *OrderHandler) RegisterRoutes(router fiber.Router, g Guards) {
	orderRoutes := router.Group("/orders", g.Auth)
	orderRoutes.Get("/", h.HandleGetOrders)
	orderRoutes.Post("/", h.HandleCreateOrder)
	orderRoutes.Get("/:id", h.HandleGetOrderByID)
	orderRoutes.Put("/:id", g.Admin, h.HandleUpdateOrder)
	orderRoutes.Delete("/:id", g.Admin, h.HandleDeleteOrder)
	orderRoutes.Post("/:id/notes", g.Admin, h.HandleAddNote)
	orderRoutes.Get("/:id/audit", g.Admin, h.HandleAuditTrail)
}

// HandleGetOrders lists the caller's orders, or any customer's for admins.
func (h *OrderHandler) HandleGetOrders(c *fiber.Ctx) error {
	page := h.pager.Page(c)
	orders, total, err := h.service.ListOrders(c.UserContext(), actor(c), repositories.OrderFilter{
		CustomerID: c.Query("customer"),
		Status:     c.Query("status"),
		OrderBy:    c.Query("orderby", "date"),
		Order:      c.Query("order", "desc"),
		Page:       page,
	})
	if err != nil {
		return err
	}
	return paged(c, orders, total, page)
}

func (h *OrderHandler) HandleGetOrderByID(c *fiber.Ctx) error {
	order, err := h.service.GetOrder(c.UserContext(), actor(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(order)
}

// HandleCreateOrder places an order for the caller. Missing checkout fields
// are reported with missing_required_fields before the field rules run.
func (h *OrderHandler) HandleCreateOrder(c *fiber.Ctx) error {
	var in services.CreateOrderInput
	if err := c.BodyParser(&in); err != nil {
		return &requestError{message: "Invalid request body"}
	}
	if err := services.ValidateCheckout(in); err != nil {
		return err
	}
	if err := check(h.validate, &in); err != nil {
		return err
	}
	order, err := h.service.CreateOrder(c.UserContext(), actor(c).UserID, in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(order)
}

func (h *OrderHandler) HandleUpdateOrder(c *fiber.Ctx) error {
	var in services.UpdateOrderInput
	if err := bind(c, h.validate, &in); err != nil {
		return err
	}
	order, err := h.service.UpdateOrder(c.UserContext(), actor(c), c.Params("id"), in)
	if err != nil {
		return err
	}
	return c.JSON(order)
}

func (h *OrderHandler) HandleDeleteOrder(c *fiber.Ctx) error {
	order, err := h.service.DeleteOrder(c.UserContext(), actor(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(order)
}

type noteRequest struct {
	Note         string `json:"note" validate:"required"`
	CustomerNote bool   `json:"customer_note"`
}

func (h *OrderHandler) HandleAddNote(c *fiber.Ctx) error {
	var req noteRequest
	if err := bind(c, h.validate, &req); err != nil {
		return err
	}
	note, err := h.service.AddNote(c.UserContext(), actor(c), c.Params("id"), req.Note, req.CustomerNote)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(note)
}

func (h *OrderHandler) HandleAuditTrail(c *fiber.Ctx) error {
	entries, err := h.service.AuditTrail(c.UserContext(), c.Params("id"), int64(c.QueryInt("limit", 100)))
	if err != nil {
		return err
	}
	return c.JSON(entries)
}
