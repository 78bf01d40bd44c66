package handlers

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"wooshop/internal/services"
)

// ShippingHandler serves the static shipping and payment method tables.
type ShippingHandler struct {
	shipping *services.ShippingService
	payment  *services.PaymentService
	validate *validator.Validate
}

func NewShippingHandler(shipping *services.ShippingService, payment *services.PaymentService) *ShippingHandler {
	return &ShippingHandler{shipping: shipping, payment: payment, validate: validator.New()}
}

func (h *ShippingHandler) RegisterRoutes(router fiber.Router, _ Guards) {
	router.Get("/shipping/methods", h.HandleListMethods)
	router.Get("/shipping/methods/:id", h.HandleGetMethod)
	router.Post("/shipping/calculate", h.HandleCalculate)
	router.Get("/shipping/zones", h.HandleZones)
	router.Get("/payment/methods", h.HandleListPaymentMethods)
	router.Get("/payment/methods/:id", h.HandleGetPaymentMethod)
}

// HandleListMethods hides methods whose minimum order amount exceeds the
// optional cart_total.
func (h *ShippingHandler) HandleListMethods(c *fiber.Ctx) error {
	var total *decimal.Decimal
	if raw := c.Query("cart_total"); raw != "" {
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return &requestError{
				message: "Invalid cart_total",
				fields:  map[string]string{"cart_total": "Invalid cart_total"},
			}
		}
		total = &d
	}
	return c.JSON(h.shipping.Methods(total))
}

func (h *ShippingHandler) HandleGetMethod(c *fiber.Ctx) error {
	m, err := h.shipping.Method(c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(m)
}

type calculateRequest struct {
	MethodID string `json:"method_id" validate:"required"`
	Items    []struct {
		ProductID string `json:"product_id"`
		Quantity  int    `json:"quantity"`
	} `json:"items"`
}

// HandleCalculate quotes a shipment; every entry of items counts as one item.
func (h *ShippingHandler) HandleCalculate(c *fiber.Ctx) error {
	var req calculateRequest
	if err := bind(c, h.validate, &req); err != nil {
		return err
	}
	quote, err := h.shipping.Calculate(req.MethodID, len(req.Items))
	if err != nil {
		return err
	}
	return c.JSON(quote)
}

func (h *ShippingHandler) HandleZones(c *fiber.Ctx) error {
	return c.JSON(h.shipping.Zones())
}

func (h *ShippingHandler) HandleListPaymentMethods(c *fiber.Ctx) error {
	return c.JSON(h.payment.Methods())
}

func (h *ShippingHandler) HandleGetPaymentMethod(c *fiber.Ctx) error {
	m, err := h.payment.Method(c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(m)
}
