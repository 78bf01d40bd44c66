package services

import (
	"context"
	"strings"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"wooshop/internal/models"
	"wooshop/internal/repositories"
)

type ReviewInput struct {
	ProductID string              `json:"product_id" validate:"required"`
	Review    string              `json:"review" validate:"required,max=2000"`
	Rating    int                 `json:"rating" validate:"required,min=1,max=5"`
	Status    models.ReviewStatus `json:"status" validate:"omitempty,oneof=approved hold spam trash"`
}

// ReviewChanges is an admin moderation of a review.
type ReviewChanges struct {
	Status *models.ReviewStatus `json:"status" validate:"omitempty,oneof=approved hold spam trash"`
	Review *string              `json:"review" validate:"omitempty,max=2000"`
	Rating *int                 `json:"rating" validate:"omitempty,min=1,max=5"`
}

// ReviewService manages product reviews and keeps product ratings in sync
// with the approved ones.
type ReviewService struct {
	reviews  repositories.ReviewRepository
	products repositories.ProductRepository
	users    repositories.UserRepository
	log      *zap.Logger
}

func NewReviewService(
	reviews repositories.ReviewRepository,
	products repositories.ProductRepository,
	users repositories.UserRepository,
	log *zap.Logger,
) *ReviewService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ReviewService{reviews: reviews, products: products, users: users, log: log}
}

func (s *ReviewService) ListReviews(ctx context.Context, f repositories.ReviewFilter) ([]models.Review, int64, error) {
	reviews, total, err := s.reviews.List(ctx, f)
	if err != nil {
		return nil, 0, errors.Wrap(err, "list reviews")
	}
	return reviews, total, nil
}

func (s *ReviewService) GetReview(ctx context.Context, id string) (*models.Review, error) {
	r, err := s.reviews.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrReviewNotFound, "get review")
	}
	return r, nil
}

// CreateReview stores the actor's review of a product. Reviews of customers
// are held for moderation; only admins may pick another status.
func (s *ReviewService) CreateReview(ctx context.Context, actor Actor, in ReviewInput) (*models.Review, error) {
	if _, err := s.products.GetByID(ctx, in.ProductID); err != nil {
		return nil, notFound(err, ErrProductNotFound, "get product")
	}
	user, err := s.users.GetByID(ctx, actor.UserID)
	if err != nil {
		return nil, notFound(err, ErrCustomerNotFound, "get reviewer")
	}

	status := models.ReviewHold
	if actor.Admin && in.Status != "" {
		status = in.Status
	}
	reviewer := strings.TrimSpace(user.FirstName + " " + user.LastName)
	if reviewer == "" {
		reviewer = user.Username
	}
	r := &models.Review{
		ProductID:     in.ProductID,
		CustomerID:    user.ID,
		Reviewer:      reviewer,
		ReviewerEmail: user.Email,
		Review:        in.Review,
		Rating:        in.Rating,
		Status:        status,
	}
	if err := s.reviews.Create(ctx, r); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, ErrAlreadyReviewed
		}
		return nil, errors.Wrap(err, "create review")
	}
	if err := s.aggregate(ctx, r.ProductID); err != nil {
		return nil, err
	}
	return r, nil
}

// ModerateReview applies admin changes to a review and re-aggregates the
// product rating.
func (s *ReviewService) ModerateReview(ctx context.Context, id string, changes ReviewChanges) (*models.Review, error) {
	r, err := s.reviews.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrReviewNotFound, "get review")
	}
	set(&r.Status, changes.Status)
	set(&r.Review, changes.Review)
	set(&r.Rating, changes.Rating)
	if err := s.reviews.Update(ctx, r); err != nil {
		return nil, notFound(err, ErrReviewNotFound, "update review")
	}
	if err := s.aggregate(ctx, r.ProductID); err != nil {
		return nil, err
	}
	return r, nil
}

// DeleteReview removes a review. Only its author or an admin may do so.
func (s *ReviewService) DeleteReview(ctx context.Context, actor Actor, id string) (*models.Review, error) {
	r, err := s.reviews.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrReviewNotFound, "get review")
	}
	if !actor.CanAccess(r.CustomerID) {
		return nil, ErrForbidden
	}
	if err := s.reviews.Delete(ctx, id); err != nil {
		return nil, notFound(err, ErrReviewNotFound, "delete review")
	}
	if err := s.aggregate(ctx, r.ProductID); err != nil {
		return nil, err
	}
	return r, nil
}

// aggregate recomputes the average rating and rating count of a product
// from its approved reviews. A product deleted in the meantime is skipped.
func (s *ReviewService) aggregate(ctx context.Context, productID string) error {
	ratings, err := s.reviews.ApprovedRatings(ctx, productID)
	if err != nil {
		return errors.Wrap(err, "load ratings")
	}
	avg, count := models.AggregateRatings(ratings)
	if err := s.products.UpdateRating(ctx, productID, avg, count); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			s.log.Debug("Skip rating of deleted product", zap.String("product_id", productID))
			return nil
		}
		return errors.Wrap(err, "update rating")
	}
	return nil
}
