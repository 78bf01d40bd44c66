package services

import (
	"fmt"

	"github.com/go-faster/errors"

	"wooshop/internal/repositories"
)

// Kind classifies a domain error for the transport layer.
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindUnavailable
	KindInsufficientStock
	KindAlreadyExists
	KindInvalid
	KindValidation
	KindUnauthorized
	KindForbidden
)

// Error is a typed, recoverable failure of a use case. Code is the stable
// machine-readable identifier rendered to clients.
type Error struct {
	Kind    Kind
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Code + ": " + e.Message
}

// Is matches any *Error with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// Withf returns a copy of e with a specialised message.
func (e *Error) Withf(format string, args ...any) *Error {
	return &Error{Kind: e.Kind, Code: e.Code, Message: fmt.Sprintf(format, args...)}
}

func newError(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

var (
	ErrValidation    = newError(KindValidation, "validation_error", "Invalid request")
	ErrMissingFields = newError(KindValidation, "missing_required_fields", "Missing required order fields")

	ErrProductNotFound    = newError(KindNotFound, "product_not_found", "Product not found")
	ErrProductUnavailable = newError(KindUnavailable, "product_not_available", "Product is not available")
	ErrInsufficientStock  = newError(KindInsufficientStock, "insufficient_stock", "Insufficient stock")
	ErrCategoryNotFound   = newError(KindNotFound, "category_not_found", "Category not found")
	ErrCategoryExists     = newError(KindAlreadyExists, "category_exists", "A category with this name already exists")
	ErrCategoryChildren   = newError(KindInvalid, "category_has_children", "Category has child categories")
	ErrTagNotFound        = newError(KindNotFound, "tag_not_found", "Tag not found")
	ErrTagExists          = newError(KindAlreadyExists, "tag_exists", "A tag with this name already exists")

	ErrCartNotFound     = newError(KindNotFound, "cart_not_found", "Cart not found")
	ErrCartItemNotFound = newError(KindNotFound, "cart_item_not_found", "Cart item not found")
	ErrCouponApplied    = newError(KindAlreadyExists, "coupon_already_applied", "Coupon is already applied to the cart")

	ErrOrderNotFound = newError(KindNotFound, "order_not_found", "Order not found")
	ErrInvalidStatus = newError(KindValidation, "invalid_order_status", "Invalid order status")

	ErrCouponNotFound        = newError(KindNotFound, "coupon_not_found", "Coupon not found")
	ErrCouponInactive        = newError(KindInvalid, "coupon_inactive", "Coupon is not active")
	ErrCouponExpired         = newError(KindInvalid, "coupon_expired", "Coupon has expired")
	ErrCouponLimitReached    = newError(KindInvalid, "coupon_limit_reached", "Coupon usage limit has been reached")
	ErrMinimumAmountNotMet   = newError(KindInvalid, "minimum_amount_not_met", "Minimum order amount not met")
	ErrMaximumAmountExceeded = newError(KindInvalid, "maximum_amount_exceeded", "Maximum order amount exceeded")
	ErrCouponExists          = newError(KindAlreadyExists, "coupon_exists", "A coupon with this code already exists")

	ErrReviewNotFound  = newError(KindNotFound, "review_not_found", "Review not found")
	ErrAlreadyReviewed = newError(KindAlreadyExists, "already_reviewed", "You have already reviewed this product")

	ErrAlreadyInWishlist = newError(KindAlreadyExists, "already_in_wishlist", "Product is already in wishlist")
	ErrNotInWishlist     = newError(KindNotFound, "not_in_wishlist", "Product is not in wishlist")

	ErrCustomerNotFound   = newError(KindNotFound, "customer_not_found", "Customer not found")
	ErrUsernameExists     = newError(KindAlreadyExists, "username_exists", "Username already exists")
	ErrEmailExists        = newError(KindAlreadyExists, "email_exists", "Email already exists")
	ErrInvalidCredentials = newError(KindUnauthorized, "invalid_credentials", "Invalid credentials")
	ErrInvalidToken       = newError(KindUnauthorized, "invalid_token", "Invalid or expired token")
	ErrForbidden          = newError(KindForbidden, "forbidden", "You are not allowed to access this resource")

	ErrShippingMethodNotFound = newError(KindNotFound, "shipping_method_not_found", "Shipping method not found")
	ErrPaymentMethodNotFound  = newError(KindNotFound, "payment_method_not_found", "Payment method not found")
)

// notFound converts a repository miss into domain, passing other errors
// through with context.
func notFound(err error, domain *Error, op string) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return domain
	}
	return errors.Wrap(err, op)
}

// AsError extracts the domain error from err, if any.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
