package handlers

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"wooshop/internal/repositories"
	"wooshop/internal/services"
)

type CouponHandler struct {
	service  *services.CouponService
	pager    Pager
	validate *validator.Validate
}

func NewCouponHandler(service *services.CouponService, pager Pager) *CouponHandler {
	return &CouponHandler{service: service, pager: pager, validate: validator.New()}
}

// RegisterRoutes registers the coupon routes. Validation and application
// are open to any signed-in user; the rest is admin only.
func (h *CouponHandler) RegisterRoutes(router fiber.Router, g Guards) {
	coupons := router.Group("/coupons", g.Auth)
	coupons.Post("/validate", h.HandleValidate)
	coupons.Post("/:id/apply", h.HandleApply)
	coupons.Get("/", g.Admin, h.HandleListCoupons)
	coupons.Get("/:id", g.Admin, h.HandleGetCoupon)
	coupons.Post("/", g.Admin, h.HandleCreateCoupon)
	coupons.Put("/:id", g.Admin, h.HandleUpdateCoupon)
	coupons.Delete("/:id", g.Admin, h.HandleDeleteCoupon)
}

type validateCouponRequest struct {
	Code      string           `json:"code" validate:"required"`
	CartTotal *decimal.Decimal `json:"cart_total" validate:"required"`
}

func (h *CouponHandler) HandleValidate(c *fiber.Ctx) error {
	var req validateCouponRequest
	if err := bind(c, h.validate, &req); err != nil {
		return err
	}
	if req.CartTotal.IsNegative() {
		return &requestError{
			message: "Cart total must not be negative",
			fields:  map[string]string{"cart_total": "Cart total must not be negative"},
		}
	}
	result, err := h.service.Validate(c.UserContext(), req.Code, *req.CartTotal)
	if err != nil {
		return err
	}
	return c.JSON(result)
}

func (h *CouponHandler) HandleApply(c *fiber.Ctx) error {
	coupon, err := h.service.Apply(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success":     true,
		"usage_count": coupon.UsageCount,
		"coupon":      coupon,
	})
}

// HandleListCoupons accepts status=active|inactive.
func (h *CouponHandler) HandleListCoupons(c *fiber.Ctx) error {
	page := h.pager.Page(c)
	f := repositories.CouponFilter{Search: c.Query("search"), Page: page}
	switch c.Query("status") {
	case "active":
		active := true
		f.Active = &active
	case "inactive":
		active := false
		f.Active = &active
	}
	coupons, total, err := h.service.ListCoupons(c.UserContext(), f)
	if err != nil {
		return err
	}
	return paged(c, coupons, total, page)
}

func (h *CouponHandler) HandleGetCoupon(c *fiber.Ctx) error {
	coupon, err := h.service.GetCoupon(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(coupon)
}

func (h *CouponHandler) HandleCreateCoupon(c *fiber.Ctx) error {
	var changes services.CouponChanges
	if err := bind(c, h.validate, &changes); err != nil {
		return err
	}
	coupon, err := h.service.CreateCoupon(c.UserContext(), changes)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(coupon)
}

func (h *CouponHandler) HandleUpdateCoupon(c *fiber.Ctx) error {
	var changes services.CouponChanges
	if err := bind(c, h.validate, &changes); err != nil {
		return err
	}
	coupon, err := h.service.UpdateCoupon(c.UserContext(), c.Params("id"), changes)
	if err != nil {
		return err
	}
	return c.JSON(coupon)
}

func (h *CouponHandler) HandleDeleteCoupon(c *fiber.Ctx) error {
	coupon, err := h.service.DeleteCoupon(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"deleted": true, "previous": coupon})
}
