package services

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"wooshop/internal/models"
	"wooshop/internal/repositories"
)

// ProductChanges carries the writable product fields. Nil fields are left
// untouched; nil CategoryIDs or TagIDs keep the current links. A SalePrice
// of "" removes the sale price.
type ProductChanges struct {
	Name             *string               `json:"name" validate:"omitempty,min=1,max=200"`
	Slug             *string               `json:"slug" validate:"omitempty,max=220"`
	SKU              *string               `json:"sku" validate:"omitempty,max=100"`
	Type             *string               `json:"type" validate:"omitempty,oneof=simple grouped external variable"`
	Status           *models.ProductStatus `json:"status" validate:"omitempty,oneof=publish draft pending private"`
	Featured         *bool                 `json:"featured"`
	Description      *string               `json:"description"`
	ShortDescription *string               `json:"short_description"`
	RegularPrice     *decimal.Decimal      `json:"regular_price"`
	SalePrice        *string               `json:"sale_price"`
	Purchasable      *bool                 `json:"purchasable"`
	ManageStock      *bool                 `json:"manage_stock"`
	StockQuantity    *int                  `json:"stock_quantity"`
	StockStatus      *models.StockStatus   `json:"stock_status" validate:"omitempty,oneof=instock outofstock onbackorder"`
	Backorders       *string               `json:"backorders" validate:"omitempty,oneof=no notify yes"`
	CategoryIDs      []string              `json:"categories"`
	TagIDs           []string              `json:"tags"`
}

func (c ProductChanges) apply(p *models.Product) error {
	if c.Name != nil && *c.Name != p.Name {
		p.Name = *c.Name
		p.Slug = ""
	}
	if c.Slug != nil {
		p.Slug = models.Slugify(*c.Slug)
	}
	set(&p.SKU, c.SKU)
	set(&p.Type, c.Type)
	set(&p.Status, c.Status)
	set(&p.Featured, c.Featured)
	set(&p.Description, c.Description)
	set(&p.ShortDescription, c.ShortDescription)
	set(&p.RegularPrice, c.RegularPrice)
	if c.SalePrice != nil {
		if *c.SalePrice == "" {
			p.SalePrice = decimal.NullDecimal{}
		} else {
			d, err := decimal.NewFromString(*c.SalePrice)
			if err != nil {
				return ErrValidation.Withf("Invalid sale_price %q", *c.SalePrice)
			}
			p.SalePrice = decimal.NewNullDecimal(d)
		}
	}
	set(&p.Purchasable, c.Purchasable)
	set(&p.ManageStock, c.ManageStock)
	set(&p.StockQuantity, c.StockQuantity)
	set(&p.StockStatus, c.StockStatus)
	set(&p.Backorders, c.Backorders)
	return nil
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

// ProductService handles business logic related to the product catalog.
type ProductService struct {
	repo       repositories.ProductRepository
	categories repositories.CategoryRepository
	tags       repositories.TagRepository
	log        *zap.Logger
}

// NewProductService creates a new ProductService.
func NewProductService(
	repo repositories.ProductRepository,
	categories repositories.CategoryRepository,
	tags repositories.TagRepository,
	log *zap.Logger,
) *ProductService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ProductService{repo: repo, categories: categories, tags: tags, log: log}
}

// ListProducts retrieves a filtered page of products and the unpaged total.
func (s *ProductService) ListProducts(ctx context.Context, f repositories.ProductFilter) ([]models.Product, int64, error) {
	products, total, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, 0, errors.Wrap(err, "list products")
	}
	return products, total, nil
}

// GetProductByID retrieves a single product by its ID.
func (s *ProductService) GetProductByID(ctx context.Context, id string) (*models.Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrProductNotFound, "get product")
	}
	return p, nil
}

// CreateProduct builds a product from changes, derives its computed fields
// and stores it. Products are purchasable unless stated otherwise.
func (s *ProductService) CreateProduct(ctx context.Context, changes ProductChanges) (*models.Product, error) {
	if changes.Name == nil || *changes.Name == "" {
		return nil, ErrValidation.Withf("Product name is required")
	}
	p := models.Product{Purchasable: true}
	if err := changes.apply(&p); err != nil {
		return nil, err
	}
	if err := s.link(ctx, &p, changes); err != nil {
		return nil, err
	}
	p = models.DeriveProduct(p)

	if err := s.repo.Create(ctx, &p); err != nil {
		return nil, errors.Wrap(err, "create product")
	}
	s.refreshCounts(ctx, p.Categories, p.Tags)
	return &p, nil
}

// UpdateProduct applies changes to an existing product and re-derives it.
func (s *ProductService) UpdateProduct(ctx context.Context, id string, changes ProductChanges) (*models.Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrProductNotFound, "get product")
	}
	oldCategories, oldTags := p.Categories, p.Tags

	if err := changes.apply(p); err != nil {
		return nil, err
	}
	if err := s.link(ctx, p, changes); err != nil {
		return nil, err
	}
	*p = models.DeriveProduct(*p)

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, notFound(err, ErrProductNotFound, "update product")
	}
	s.refreshCounts(ctx, append(oldCategories, p.Categories...), append(oldTags, p.Tags...))
	return p, nil
}

// DeleteProduct deletes a product by its ID.
func (s *ProductService) DeleteProduct(ctx context.Context, id string) (*models.Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrProductNotFound, "get product")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return nil, notFound(err, ErrProductNotFound, "delete product")
	}
	s.refreshCounts(ctx, p.Categories, p.Tags)
	return p, nil
}

func (s *ProductService) link(ctx context.Context, p *models.Product, changes ProductChanges) error {
	if changes.CategoryIDs != nil {
		cats, err := s.categories.GetByIDs(ctx, unique(changes.CategoryIDs))
		if err != nil {
			return errors.Wrap(err, "resolve categories")
		}
		if len(cats) != len(unique(changes.CategoryIDs)) {
			return ErrCategoryNotFound
		}
		p.Categories = cats
	}
	if changes.TagIDs != nil {
		tags, err := s.tags.GetByIDs(ctx, unique(changes.TagIDs))
		if err != nil {
			return errors.Wrap(err, "resolve tags")
		}
		if len(tags) != len(unique(changes.TagIDs)) {
			return ErrTagNotFound
		}
		p.Tags = tags
	}
	return nil
}

// refreshCounts recomputes product counts of the given terms. Failures are
// logged; counts are repaired by the next product write.
func (s *ProductService) refreshCounts(ctx context.Context, cats []models.Category, tags []models.Tag) {
	seen := make(map[string]bool)
	for _, c := range cats {
		if seen[c.ID] {
			continue
		}
		seen[c.ID] = true
		if err := s.categories.RefreshCount(ctx, c.ID); err != nil {
			s.log.Warn("Refresh category count", zap.String("category_id", c.ID), zap.Error(err))
		}
	}
	for _, t := range tags {
		if seen[t.ID] {
			continue
		}
		seen[t.ID] = true
		if err := s.tags.RefreshCount(ctx, t.ID); err != nil {
			s.log.Warn("Refresh tag count", zap.String("tag_id", t.ID), zap.Error(err))
		}
	}
}

func unique(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
