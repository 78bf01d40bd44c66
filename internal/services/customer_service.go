package services

import (
	"context"

	"github.com/go-faster/errors"

	"wooshop/internal/models"
	"wooshop/internal/repositories"
)

// CustomerChanges carries the editable profile fields of an account.
type CustomerChanges struct {
	FirstName *string         `json:"first_name" validate:"omitempty,max=100"`
	LastName  *string         `json:"last_name" validate:"omitempty,max=100"`
	Billing   *models.Address `json:"billing"`
	Shipping  *models.Address `json:"shipping"`
	Role      *string         `json:"role" validate:"omitempty,oneof=customer admin"`
}

type CustomerService struct {
	users repositories.UserRepository
}

func NewCustomerService(users repositories.UserRepository) *CustomerService {
	return &CustomerService{users: users}
}

func (s *CustomerService) ListCustomers(ctx context.Context, f repositories.UserFilter) ([]models.User, int64, error) {
	users, total, err := s.users.List(ctx, f)
	if err != nil {
		return nil, 0, errors.Wrap(err, "list customers")
	}
	return users, total, nil
}

// GetCustomer returns the account with id if the actor may see it.
func (s *CustomerService) GetCustomer(ctx context.Context, actor Actor, id string) (*models.User, error) {
	if !actor.CanAccess(id) {
		return nil, ErrForbidden
	}
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrCustomerNotFound, "get customer")
	}
	return u, nil
}

// UpdateCustomer edits a profile. Changing the role requires an admin.
func (s *CustomerService) UpdateCustomer(ctx context.Context, actor Actor, id string, changes CustomerChanges) (*models.User, error) {
	if !actor.CanAccess(id) {
		return nil, ErrForbidden
	}
	if changes.Role != nil && !actor.Admin {
		return nil, ErrForbidden.Withf("Only administrators can change roles")
	}
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrCustomerNotFound, "get customer")
	}
	set(&u.FirstName, changes.FirstName)
	set(&u.LastName, changes.LastName)
	set(&u.Billing, changes.Billing)
	set(&u.Shipping, changes.Shipping)
	set(&u.Role, changes.Role)

	if err := s.users.Update(ctx, u); err != nil {
		return nil, notFound(err, ErrCustomerNotFound, "update customer")
	}
	return u, nil
}
