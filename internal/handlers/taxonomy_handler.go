package handlers

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"wooshop/internal/repositories"
	"wooshop/internal/services"
)

// TaxonomyHandler serves product categories and tags.
type TaxonomyHandler struct {
	service  *services.TaxonomyService
	pager    Pager
	validate *validator.Validate
}

func NewTaxonomyHandler(service *services.TaxonomyService, pager Pager) *TaxonomyHandler {
	return &TaxonomyHandler{service: service, pager: pager, validate: validator.New()}
}

func (h *TaxonomyHandler) RegisterRoutes(router fiber.Router, g Guards) {
	categories := router.Group("/products/categories")
	categories.Get("/", h.HandleListCategories)
	categories.Get("/:id", h.HandleGetCategory)
	categories.Post("/", g.Auth, g.Admin, h.HandleCreateCategory)
	categories.Put("/:id", g.Auth, g.Admin, h.HandleUpdateCategory)
	categories.Delete("/:id", g.Auth, g.Admin, h.HandleDeleteCategory)

	tags := router.Group("/products/tags")
	tags.Get("/", h.HandleListTags)
	tags.Get("/:id", h.HandleGetTag)
	tags.Post("/", g.Auth, g.Admin, h.HandleCreateTag)
	tags.Put("/:id", g.Auth, g.Admin, h.HandleUpdateTag)
	tags.Delete("/:id", g.Auth, g.Admin, h.HandleDeleteTag)
}

// HandleListCategories filters by parent when given; parent=0 lists the
// top-level categories.
func (h *TaxonomyHandler) HandleListCategories(c *fiber.Ctx) error {
	page := h.pager.Page(c)
	f := repositories.CategoryFilter{
		Search:    c.Query("search"),
		HideEmpty: c.QueryBool("hide_empty"),
		Page:      page,
	}
	if c.Context().QueryArgs().Has("parent") {
		parent := c.Query("parent")
		if parent == "0" {
			parent = ""
		}
		f.ParentID = &parent
	}
	cats, total, err := h.service.ListCategories(c.UserContext(), f)
	if err != nil {
		return err
	}
	return paged(c, cats, total, page)
}

func (h *TaxonomyHandler) HandleGetCategory(c *fiber.Ctx) error {
	cat, err := h.service.GetCategory(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(cat)
}

func (h *TaxonomyHandler) HandleCreateCategory(c *fiber.Ctx) error {
	var changes services.CategoryChanges
	if err := bind(c, h.validate, &changes); err != nil {
		return err
	}
	cat, err := h.service.CreateCategory(c.UserContext(), changes)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(cat)
}

func (h *TaxonomyHandler) HandleUpdateCategory(c *fiber.Ctx) error {
	var changes services.CategoryChanges
	if err := bind(c, h.validate, &changes); err != nil {
		return err
	}
	cat, err := h.service.UpdateCategory(c.UserContext(), c.Params("id"), changes)
	if err != nil {
		return err
	}
	return c.JSON(cat)
}

func (h *TaxonomyHandler) HandleDeleteCategory(c *fiber.Ctx) error {
	cat, err := h.service.DeleteCategory(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(cat)
}

func (h *TaxonomyHandler) HandleListTags(c *fiber.Ctx) error {
	page := h.pager.Page(c)
	tags, total, err := h.service.ListTags(c.UserContext(), repositories.TagFilter{
		Search:    c.Query("search"),
		HideEmpty: c.QueryBool("hide_empty"),
		Page:      page,
	})
	if err != nil {
		return err
	}
	return paged(c, tags, total, page)
}

func (h *TaxonomyHandler) HandleGetTag(c *fiber.Ctx) error {
	tag, err := h.service.GetTag(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(tag)
}

func (h *TaxonomyHandler) HandleCreateTag(c *fiber.Ctx) error {
	var changes services.TagChanges
	if err := bind(c, h.validate, &changes); err != nil {
		return err
	}
	tag, err := h.service.CreateTag(c.UserContext(), changes)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(tag)
}

func (h *TaxonomyHandler) HandleUpdateTag(c *fiber.Ctx) error {
	var changes services.TagChanges
	if err := bind(c, h.validate, &changes); err != nil {
		return err
	}
	tag, err := h.service.UpdateTag(c.UserContext(), c.Params("id"), changes)
	if err != nil {
		return err
	}
	return c.JSON(tag)
}

func (h *TaxonomyHandler) HandleDeleteTag(c *fiber.Ctx) error {
	tag, err := h.service.DeleteTag(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(tag)
}
