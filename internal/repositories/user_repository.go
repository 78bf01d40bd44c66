package repositories

import (
	"context"

	"github.com/shopspring/decimal"

	"wooshop/internal/models"
)

type UserFilter struct {
	Search string
	Role   string
	Page
}

// UserRepository defines the interface for user data access.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	List(ctx context.Context, f UserFilter) ([]models.User, int64, error)
	Update(ctx context.Context, user *models.User) error
	// RecordOrder bumps the customer's order count and lifetime spend and
	// marks them as a paying customer.
	RecordOrder(ctx context.Context, id string, total decimal.Decimal) error
}
