package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wooshop/internal/repositories"
	"wooshop/internal/services"
)

func TestTaxonomyService_Categories(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	service := services.NewTaxonomyService(repositories.NewGORMCategoryRepository(db), repositories.NewGORMTagRepository(db))

	parent, err := service.CreateCategory(ctx, services.CategoryChanges{Name: ptr("Home & Garden")})
	require.NoError(t, err)
	assert.Equal(t, "home-garden", parent.Slug)
	assert.Equal(t, "default", parent.Display)

	_, err = service.CreateCategory(ctx, services.CategoryChanges{Name: ptr("Home & Garden")})
	assert.ErrorIs(t, err, services.ErrCategoryExists)
	_, err = service.CreateCategory(ctx, services.CategoryChanges{Name: ptr("Orphan"), Parent: ptr("missing")})
	assert.ErrorIs(t, err, services.ErrCategoryNotFound)

	child, err := service.CreateCategory(ctx, services.CategoryChanges{Name: ptr("Kitchen"), Parent: &parent.ID})
	require.NoError(t, err)
	require.NotNil(t, child.ParentID)

	_, err = service.DeleteCategory(ctx, parent.ID)
	assert.ErrorIs(t, err, services.ErrCategoryChildren)

	child, err = service.UpdateCategory(ctx, child.ID, services.CategoryChanges{Parent: ptr("")})
	require.NoError(t, err)
	assert.Nil(t, child.ParentID)

	_, err = service.DeleteCategory(ctx, parent.ID)
	require.NoError(t, err)
	_, err = service.GetCategory(ctx, parent.ID)
	assert.ErrorIs(t, err, services.ErrCategoryNotFound)
}

func TestTaxonomyService_Tags(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	service := services.NewTaxonomyService(repositories.NewGORMCategoryRepository(db), repositories.NewGORMTagRepository(db))

	tag, err := service.CreateTag(ctx, services.TagChanges{Name: ptr("Best Seller")})
	require.NoError(t, err)
	assert.Equal(t, "best-seller", tag.Slug)

	_, err = service.CreateTag(ctx, services.TagChanges{Name: ptr("Best Seller")})
	assert.ErrorIs(t, err, services.ErrTagExists)

	tag, err = service.UpdateTag(ctx, tag.ID, services.TagChanges{Description: ptr("Top picks")})
	require.NoError(t, err)
	assert.Equal(t, "Top picks", tag.Description)

	tags, total, err := service.ListTags(ctx, repositories.TagFilter{Search: "best"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, tag.ID, tags[0].ID)

	_, err = service.DeleteTag(ctx, tag.ID)
	require.NoError(t, err)
	_, err = service.GetTag(ctx, tag.ID)
	assert.ErrorIs(t, err, services.ErrTagNotFound)
}
