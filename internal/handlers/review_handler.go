package handlers

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"wooshop/internal/models"
	"wooshop/internal/repositories"
	"wooshop/internal/services"
)

// ReviewHandler serves product reviews.
type ReviewHandler struct {
	service  *services.ReviewService
	pager    Pager
	validate *validator.Validate
}

func NewReviewHandler(service *services.ReviewService, pager Pager) *ReviewHandler {
	return &ReviewHandler{service: service, pager: pager, validate: validator.New()}
}

func (h *ReviewHandler) RegisterRoutes(router fiber.Router, g Guards) {
	reviews := router.Group("/products/reviews")
	reviews.Get("/", h.HandleListReviews)
	reviews.Get("/:id", h.HandleGetReview)
	reviews.Post("/", g.Auth, h.HandleCreateReview)
	reviews.Put("/:id", g.Auth, g.Admin, h.HandleModerateReview)
	reviews.Delete("/:id", g.Auth, h.HandleDeleteReview)
}

// HandleListReviews lists approved reviews unless another status is asked
// for; status=any lists all of them.
func (h *ReviewHandler) HandleListReviews(c *fiber.Ctx) error {
	page := h.pager.Page(c)
	f := repositories.ReviewFilter{
		ProductID:  c.Query("product_id", c.Query("product")),
		CustomerID: c.Query("customer_id"),
		Status:     c.Query("status", string(models.ReviewApproved)),
		Page:       page,
	}
	if f.Status == "any" {
		f.Status = ""
	}
	reviews, total, err := h.service.ListReviews(c.UserContext(), f)
	if err != nil {
		return err
	}
	return paged(c, reviews, total, page)
}

func (h *ReviewHandler) HandleGetReview(c *fiber.Ctx) error {
	review, err := h.service.GetReview(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(review)
}

func (h *ReviewHandler) HandleCreateReview(c *fiber.Ctx) error {
	var in services.ReviewInput
	if err := bind(c, h.validate, &in); err != nil {
		return err
	}
	review, err := h.service.CreateReview(c.UserContext(), actor(c), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(review)
}

func (h *ReviewHandler) HandleModerateReview(c *fiber.Ctx) error {
	var changes services.ReviewChanges
	if err := bind(c, h.validate, &changes); err != nil {
		return err
	}
	review, err := h.service.ModerateReview(c.UserContext(), c.Params("id"), changes)
	if err != nil {
		return err
	}
	return c.JSON(review)
}

func (h *ReviewHandler) HandleDeleteReview(c *fiber.Ctx) error {
	review, err := h.service.DeleteReview(c.UserContext(), actor(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"deleted": true, "previous": review})
}
