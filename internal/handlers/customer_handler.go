package handlers

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"wooshop/internal/repositories"
	"wooshop/internal/services"
)

type CustomerHandler struct {
	service  *services.CustomerService
	pager    Pager
	validate *validator.Validate
}

func NewCustomerHandler(service *services.CustomerService, pager Pager) *CustomerHandler {
	return &CustomerHandler{service: service, pager: pager, validate: validator.New()}
}

func (h *CustomerHandler) RegisterRoutes(router fiber.Router, g Guards) {
	customers := router.Group("/customers", g.Auth)
	customers.Get("/", g.Admin, h.HandleListCustomers)
	customers.Get("/:id", h.HandleGetCustomer)
	customers.Put("/:id", h.HandleUpdateCustomer)
}

func (h *CustomerHandler) HandleListCustomers(c *fiber.Ctx) error {
	page := h.pager.Page(c)
	users, total, err := h.service.ListCustomers(c.UserContext(), repositories.UserFilter{
		Search: c.Query("search"),
		Role:   c.Query("role"),
		Page:   page,
	})
	if err != nil {
		return err
	}
	return paged(c, users, total, page)
}

func (h *CustomerHandler) HandleGetCustomer(c *fiber.Ctx) error {
	user, err := h.service.GetCustomer(c.UserContext(), actor(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(user)
}

func (h *CustomerHandler) HandleUpdateCustomer(c *fiber.Ctx) error {
	var changes services.CustomerChanges
	if err := bind(c, h.validate, &changes); err != nil {
		return err
	}
	user, err := h.service.UpdateCustomer(c.UserContext(), actor(c), c.Params("id"), changes)
	if err != nil {
		return err
	}
	return c.JSON(user)
}
