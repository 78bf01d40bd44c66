package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"wooshop/internal/models"
	"wooshop/internal/repositories"
	"wooshop/internal/services"
)

func TestCustomerService_GetCustomer(t *testing.T) {
	repo := new(MockUserRepository)
	service := services.NewCustomerService(repo)
	ctx := context.Background()

	repo.On("GetByID", mock.Anything, "u1").Return(&models.User{ID: "u1"}, nil).Twice()
	u, err := service.GetCustomer(ctx, services.Actor{UserID: "u1"}, "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)
	_, err = service.GetCustomer(ctx, services.Actor{UserID: "admin", Admin: true}, "u1")
	assert.NoError(t, err)

	_, err = service.GetCustomer(ctx, services.Actor{UserID: "u2"}, "u1")
	assert.ErrorIs(t, err, services.ErrForbidden)

	repo.On("GetByID", mock.Anything, "gone").Return(nil, repositories.ErrNotFound).Once()
	_, err = service.GetCustomer(ctx, services.Actor{Admin: true}, "gone")
	assert.ErrorIs(t, err, services.ErrCustomerNotFound)
	repo.AssertExpectations(t)
}

func TestCustomerService_UpdateCustomer(t *testing.T) {
	repo := new(MockUserRepository)
	service := services.NewCustomerService(repo)
	ctx := context.Background()

	repo.On("GetByID", mock.Anything, "u1").Return(&models.User{ID: "u1", Role: models.RoleCustomer}, nil).Once()
	repo.On("Update", mock.Anything, mock.AnythingOfType("*models.User")).Return(nil).Once()
	u, err := service.UpdateCustomer(ctx, services.Actor{UserID: "u1"}, "u1", services.CustomerChanges{
		FirstName: ptr("Jane"),
		Billing:   testAddress(),
	})
	require.NoError(t, err)
	assert.Equal(t, "Jane", u.FirstName)
	assert.Equal(t, "New York", u.Billing.City)
	assert.Equal(t, models.RoleCustomer, u.Role)

	_, err = service.UpdateCustomer(ctx, services.Actor{UserID: "u1"}, "u1", services.CustomerChanges{Role: ptr(models.RoleAdmin)})
	assert.ErrorIs(t, err, services.ErrForbidden, "customers cannot promote themselves")

	repo.On("GetByID", mock.Anything, "u1").Return(&models.User{ID: "u1", Role: models.RoleCustomer}, nil).Once()
	repo.On("Update", mock.Anything, mock.AnythingOfType("*models.User")).Return(nil).Once()
	u, err = service.UpdateCustomer(ctx, services.Actor{UserID: "admin", Admin: true}, "u1", services.CustomerChanges{Role: ptr(models.RoleAdmin)})
	require.NoError(t, err)
	assert.True(t, u.IsAdmin())
	repo.AssertExpectations(t)
}
