package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wooshop/internal/models"
	"wooshop/internal/repositories"
	"wooshop/internal/services"
)

type reviewFixture struct {
	service  *services.ReviewService
	products *repositories.GORMProductRepository
	users    *repositories.GORMUserRepository
}

func newReviewFixture(t *testing.T) *reviewFixture {
	t.Helper()
	db := newTestDB(t)
	f := &reviewFixture{
		products: repositories.NewGORMProductRepository(db),
		users:    repositories.NewGORMUserRepository(db),
	}
	f.service = services.NewReviewService(repositories.NewGORMReviewRepository(db), f.products, f.users, nil)
	return f
}

func (f *reviewFixture) user(t *testing.T, username string, role string) *models.User {
	t.Helper()
	u := &models.User{Username: username, Email: username + "@example.com", FirstName: "Test", LastName: username, Role: role}
	require.NoError(t, f.users.Create(context.Background(), u))
	return u
}

func (f *reviewFixture) rating(t *testing.T, productID string) (float64, int) {
	t.Helper()
	p, err := f.products.GetByID(context.Background(), productID)
	require.NoError(t, err)
	return p.AverageRating, p.RatingCount
}

func TestReviewService_RatingFollowsApprovedReviews(t *testing.T) {
	f := newReviewFixture(t)
	ctx := context.Background()
	mug := addProduct(t, f.products, stocked("Mug", "10.00", 5))
	alice := f.user(t, "alice", models.RoleCustomer)
	bob := f.user(t, "bob", models.RoleCustomer)
	admin := f.user(t, "admin", models.RoleAdmin)

	r1, err := f.service.CreateReview(ctx, services.Actor{UserID: alice.ID}, services.ReviewInput{
		ProductID: mug.ID, Review: "Great mug", Rating: 5, Status: models.ReviewApproved,
	})
	require.NoError(t, err)
	assert.Equal(t, models.ReviewHold, r1.Status, "customer reviews wait for moderation")
	assert.Equal(t, "Test alice", r1.Reviewer)
	avg, count := f.rating(t, mug.ID)
	assert.Zero(t, avg)
	assert.Zero(t, count)

	_, err = f.service.ModerateReview(ctx, r1.ID, services.ReviewChanges{Status: ptr(models.ReviewApproved)})
	require.NoError(t, err)
	avg, count = f.rating(t, mug.ID)
	assert.Equal(t, 5.0, avg)
	assert.Equal(t, 1, count)

	r2, err := f.service.CreateReview(ctx, services.Actor{UserID: admin.ID, Admin: true}, services.ReviewInput{
		ProductID: mug.ID, Review: "Chipped", Rating: 2, Status: models.ReviewApproved,
	})
	require.NoError(t, err)
	assert.Equal(t, models.ReviewApproved, r2.Status)
	avg, count = f.rating(t, mug.ID)
	assert.Equal(t, 3.5, avg)
	assert.Equal(t, 2, count)

	_, err = f.service.DeleteReview(ctx, services.Actor{UserID: bob.ID}, r1.ID)
	assert.ErrorIs(t, err, services.ErrForbidden)

	_, err = f.service.DeleteReview(ctx, services.Actor{UserID: alice.ID}, r1.ID)
	require.NoError(t, err)
	avg, count = f.rating(t, mug.ID)
	assert.Equal(t, 2.0, avg)
	assert.Equal(t, 1, count)

	_, err = f.service.DeleteReview(ctx, services.Actor{UserID: bob.ID, Admin: true}, r2.ID)
	require.NoError(t, err)
	avg, count = f.rating(t, mug.ID)
	assert.Zero(t, avg, "deleting the last approved review resets the rating")
	assert.Zero(t, count)
}

func TestReviewService_OneReviewPerCustomer(t *testing.T) {
	f := newReviewFixture(t)
	ctx := context.Background()
	mug := addProduct(t, f.products, stocked("Mug", "10.00", 5))
	alice := f.user(t, "alice", models.RoleCustomer)
	actor := services.Actor{UserID: alice.ID}

	_, err := f.service.CreateReview(ctx, actor, services.ReviewInput{ProductID: mug.ID, Review: "Nice", Rating: 4})
	require.NoError(t, err)
	_, err = f.service.CreateReview(ctx, actor, services.ReviewInput{ProductID: mug.ID, Review: "Still nice", Rating: 3})
	assert.ErrorIs(t, err, services.ErrAlreadyReviewed)

	_, err = f.service.CreateReview(ctx, actor, services.ReviewInput{ProductID: "missing", Review: "?", Rating: 3})
	assert.ErrorIs(t, err, services.ErrProductNotFound)

	reviews, total, err := f.service.ListReviews(ctx, repositories.ReviewFilter{ProductID: mug.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "Nice", reviews[0].Review)

	_, err = f.service.ModerateReview(ctx, "missing", services.ReviewChanges{})
	assert.ErrorIs(t, err, services.ErrReviewNotFound)
}
