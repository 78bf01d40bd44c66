package repositories

import (
	"context"

	"gorm.io/gorm"
)

// Tx exposes the repositories that take part in a unit of work. Inside
// Do only these may be used.
type Tx struct {
	Products ProductRepository
	Orders   OrderRepository
	Users    UserRepository
	Coupons  CouponRepository
}

// UnitOfWork runs fn atomically. A non-nil error from fn rolls back every
// write made through tx.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(tx Tx) error) error
}

type GORMUnitOfWork struct {
	db *gorm.DB
}

var _ UnitOfWork = (*GORMUnitOfWork)(nil)

func NewGORMUnitOfWork(db *gorm.DB) *GORMUnitOfWork {
	return &GORMUnitOfWork{db: db}
}

func (u *GORMUnitOfWork) Do(ctx context.Context, fn func(tx Tx) error) error {
	return u.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		return fn(Tx{
			Products: NewGORMProductRepository(db),
			Orders:   NewGORMOrderRepository(db),
			Users:    NewGORMUserRepository(db),
			Coupons:  NewGORMCouponRepository(db),
		})
	})
}

// PassthroughUnitOfWork hands out fixed repositories without a transaction.
// Writes made before a failure are kept; it suits the in-memory stores.
type PassthroughUnitOfWork struct {
	tx Tx
}

var _ UnitOfWork = (*PassthroughUnitOfWork)(nil)

func NewPassthroughUnitOfWork(tx Tx) *PassthroughUnitOfWork {
	return &PassthroughUnitOfWork{tx: tx}
}

func (u *PassthroughUnitOfWork) Do(_ context.Context, fn func(tx Tx) error) error {
	return fn(u.tx)
}
