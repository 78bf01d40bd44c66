package services

import (
	"context"

	"github.com/go-faster/errors"

	"wooshop/internal/models"
	"wooshop/internal/repositories"
)

// CategoryChanges carries writable category fields. A Parent of "" or "0"
// makes the category top-level.
type CategoryChanges struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=100"`
	Slug        *string `json:"slug" validate:"omitempty,max=120"`
	Parent      *string `json:"parent"`
	Description *string `json:"description"`
	Display     *string `json:"display" validate:"omitempty,oneof=default products subcategories both"`
	Image       *string `json:"image"`
	MenuOrder   *int    `json:"menu_order"`
}

type TagChanges struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=100"`
	Slug        *string `json:"slug" validate:"omitempty,max=120"`
	Description *string `json:"description"`
}

// TaxonomyService manages product categories and tags.
type TaxonomyService struct {
	categories repositories.CategoryRepository
	tags       repositories.TagRepository
}

func NewTaxonomyService(categories repositories.CategoryRepository, tags repositories.TagRepository) *TaxonomyService {
	return &TaxonomyService{categories: categories, tags: tags}
}

func (s *TaxonomyService) ListCategories(ctx context.Context, f repositories.CategoryFilter) ([]models.Category, int64, error) {
	cats, total, err := s.categories.List(ctx, f)
	if err != nil {
		return nil, 0, errors.Wrap(err, "list categories")
	}
	return cats, total, nil
}

func (s *TaxonomyService) GetCategory(ctx context.Context, id string) (*models.Category, error) {
	c, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrCategoryNotFound, "get category")
	}
	return c, nil
}

func (s *TaxonomyService) CreateCategory(ctx context.Context, changes CategoryChanges) (*models.Category, error) {
	if changes.Name == nil || *changes.Name == "" {
		return nil, ErrValidation.Withf("Category name is required")
	}
	c := models.Category{Display: "default"}
	if err := s.applyCategory(ctx, &c, changes); err != nil {
		return nil, err
	}
	if err := s.categories.Create(ctx, &c); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, ErrCategoryExists
		}
		return nil, errors.Wrap(err, "create category")
	}
	return &c, nil
}

func (s *TaxonomyService) UpdateCategory(ctx context.Context, id string, changes CategoryChanges) (*models.Category, error) {
	c, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrCategoryNotFound, "get category")
	}
	if err := s.applyCategory(ctx, c, changes); err != nil {
		return nil, err
	}
	if err := s.categories.Update(ctx, c); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, ErrCategoryExists
		}
		return nil, notFound(err, ErrCategoryNotFound, "update category")
	}
	return c, nil
}

// DeleteCategory removes a category that has no child categories.
func (s *TaxonomyService) DeleteCategory(ctx context.Context, id string) (*models.Category, error) {
	c, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrCategoryNotFound, "get category")
	}
	children, err := s.categories.CountChildren(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, "count child categories")
	}
	if children > 0 {
		return nil, ErrCategoryChildren
	}
	if err := s.categories.Delete(ctx, id); err != nil {
		return nil, notFound(err, ErrCategoryNotFound, "delete category")
	}
	return c, nil
}

func (s *TaxonomyService) applyCategory(ctx context.Context, c *models.Category, changes CategoryChanges) error {
	if changes.Name != nil && *changes.Name != c.Name {
		c.Name = *changes.Name
		if changes.Slug == nil {
			c.Slug = models.Slugify(c.Name)
		}
	}
	if changes.Slug != nil {
		c.Slug = models.Slugify(*changes.Slug)
	}
	if c.Slug == "" {
		c.Slug = models.Slugify(c.Name)
	}
	if changes.Parent != nil {
		switch parent := *changes.Parent; parent {
		case "", "0":
			c.ParentID = nil
		default:
			if parent == c.ID {
				return ErrValidation.Withf("A category cannot be its own parent")
			}
			if _, err := s.categories.GetByID(ctx, parent); err != nil {
				return notFound(err, ErrCategoryNotFound.Withf("Parent category %s not found", parent), "get parent category")
			}
			c.ParentID = &parent
		}
	}
	set(&c.Description, changes.Description)
	set(&c.Display, changes.Display)
	set(&c.Image, changes.Image)
	set(&c.MenuOrder, changes.MenuOrder)
	return nil
}

func (s *TaxonomyService) ListTags(ctx context.Context, f repositories.TagFilter) ([]models.Tag, int64, error) {
	tags, total, err := s.tags.List(ctx, f)
	if err != nil {
		return nil, 0, errors.Wrap(err, "list tags")
	}
	return tags, total, nil
}

func (s *TaxonomyService) GetTag(ctx context.Context, id string) (*models.Tag, error) {
	t, err := s.tags.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrTagNotFound, "get tag")
	}
	return t, nil
}

func (s *TaxonomyService) CreateTag(ctx context.Context, changes TagChanges) (*models.Tag, error) {
	if changes.Name == nil || *changes.Name == "" {
		return nil, ErrValidation.Withf("Tag name is required")
	}
	var t models.Tag
	applyTag(&t, changes)
	if err := s.tags.Create(ctx, &t); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, ErrTagExists
		}
		return nil, errors.Wrap(err, "create tag")
	}
	return &t, nil
}

func (s *TaxonomyService) UpdateTag(ctx context.Context, id string, changes TagChanges) (*models.Tag, error) {
	t, err := s.tags.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrTagNotFound, "get tag")
	}
	applyTag(t, changes)
	if err := s.tags.Update(ctx, t); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, ErrTagExists
		}
		return nil, notFound(err, ErrTagNotFound, "update tag")
	}
	return t, nil
}

func (s *TaxonomyService) DeleteTag(ctx context.Context, id string) (*models.Tag, error) {
	t, err := s.tags.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrTagNotFound, "get tag")
	}
	if err := s.tags.Delete(ctx, id); err != nil {
		return nil, notFound(err, ErrTagNotFound, "delete tag")
	}
	return t, nil
}

func applyTag(t *models.Tag, changes TagChanges) {
	if changes.Name != nil && *changes.Name != t.Name {
		t.Name = *changes.Name
		t.Slug = models.Slugify(t.Name)
	}
	if changes.Slug != nil {
		t.Slug = models.Slugify(*changes.Slug)
	}
	set(&t.Description, changes.Description)
}
