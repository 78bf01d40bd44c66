package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

// Address is a billing or shipping block.
type Address struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Company   string `json:"company"`
	Address1  string `json:"address_1"`
	Address2  string `json:"address_2"`
	City      string `json:"city"`
	State     string `json:"state"`
	Postcode  string `json:"postcode"`
	Country   string `json:"country"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

// User represents a customer or administrator account.
type User struct {
	ID               string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Username         string          `json:"username" gorm:"uniqueIndex;type:varchar(50)"`
	Email            string          `json:"email" gorm:"uniqueIndex;type:varchar(255)"`
	Password         string          `json:"-" gorm:"type:varchar(255)"`
	FirstName        string          `json:"first_name"`
	LastName         string          `json:"last_name"`
	Role             string          `json:"role" gorm:"type:varchar(20)"`
	Billing          Address         `json:"billing" gorm:"embedded;embeddedPrefix:billing_"`
	Shipping         Address         `json:"shipping" gorm:"embedded;embeddedPrefix:shipping_"`
	IsPayingCustomer bool            `json:"is_paying_customer"`
	OrdersCount      int             `json:"orders_count"`
	TotalSpent       decimal.Decimal `json:"total_spent" gorm:"type:decimal(12,2)"`
	LastLogin        *time.Time      `json:"last_login,omitempty"`
	CreatedAt        time.Time       `json:"date_created"`
	UpdatedAt        time.Time       `json:"date_modified"`
}

// IsAdmin reports whether the user has the administrator role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
