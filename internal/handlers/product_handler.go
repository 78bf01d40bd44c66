package handlers

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"wooshop/internal/models"
	"wooshop/internal/repositories"
	"wooshop/internal/services"
)

// ProductHandler handles HTTP requests for products.
type ProductHandler struct {
	service  *services.ProductService
	pager    Pager
	validate *validator.Validate
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService, pager Pager) *ProductHandler {
	return &ProductHandler{service: service, pager: pager, validate: validator.New()}
}

// RegisterRoutes registers the product routes. Routes nested under
// /products (categories, tags, reviews) must be registered before these.
func (h *ProductHandler) RegisterRoutes(router fiber.Router, g Guards) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleListProducts)
	productRoutes.Get("/:id", h.HandleGetProduct)
	productRoutes.Post("/", g.Auth, g.Admin, h.HandleCreateProduct)
	productRoutes.Put("/:id", g.Auth, g.Admin, h.HandleUpdateProduct)
	productRoutes.Delete("/:id", g.Auth, g.Admin, h.HandleDeleteProduct)
}

// HandleListProducts lists published products unless another status is
// requested; status=any lists every product.
func (h *ProductHandler) HandleListProducts(c *fiber.Ctx) error {
	page := h.pager.Page(c)
	f := repositories.ProductFilter{
		Status:     c.Query("status", string(models.ProductPublish)),
		CategoryID: c.Query("category"),
		TagID:      c.Query("tag"),
		Search:     c.Query("search"),
		Featured:   queryBool(c, "featured"),
		OnSale:     queryBool(c, "on_sale"),
		OrderBy:    c.Query("orderby", "date"),
		Order:      c.Query("order", "desc"),
		Page:       page,
	}
	if f.Status == "any" {
		f.Status = ""
	}
	products, total, err := h.service.ListProducts(c.UserContext(), f)
	if err != nil {
		return err
	}
	return paged(c, products, total, page)
}

func (h *ProductHandler) HandleGetProduct(c *fiber.Ctx) error {
	product, err := h.service.GetProductByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(product)
}

func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var changes services.ProductChanges
	if err := bind(c, h.validate, &changes); err != nil {
		return err
	}
	product, err := h.service.CreateProduct(c.UserContext(), changes)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(product)
}

func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	var changes services.ProductChanges
	if err := bind(c, h.validate, &changes); err != nil {
		return err
	}
	product, err := h.service.UpdateProduct(c.UserContext(), c.Params("id"), changes)
	if err != nil {
		return err
	}
	return c.JSON(product)
}

func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	product, err := h.service.DeleteProduct(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(product)
}
