package models

import (
	"math"
	"time"
)

type ReviewStatus string

const (
	ReviewApproved ReviewStatus = "approved"
	ReviewHold     ReviewStatus = "hold"
	ReviewSpam     ReviewStatus = "spam"
	ReviewTrash    ReviewStatus = "trash"
)

// Review is a customer's rating of a product. One per customer and product.
type Review struct {
	ID            string       `json:"id" gorm:"primaryKey;type:varchar(36)"`
	ProductID     string       `json:"product_id" gorm:"uniqueIndex:idx_review_customer_product;index;type:varchar(36)"`
	CustomerID    string       `json:"customer_id" gorm:"uniqueIndex:idx_review_customer_product;type:varchar(36)"`
	Reviewer      string       `json:"reviewer"`
	ReviewerEmail string       `json:"reviewer_email"`
	Review        string       `json:"review" gorm:"type:text"`
	Rating        int          `json:"rating"`
	Status        ReviewStatus `json:"status" gorm:"index;type:varchar(20)"`
	Verified      bool         `json:"verified"`
	CreatedAt     time.Time    `json:"date_created"`
	UpdatedAt     time.Time    `json:"-"`
}

// WishlistItem links a user to a saved product.
type WishlistItem struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID    string    `json:"user_id" gorm:"uniqueIndex:idx_wishlist_user_product;type:varchar(36)"`
	ProductID string    `json:"product_id" gorm:"uniqueIndex:idx_wishlist_user_product;type:varchar(36)"`
	Product   *Product  `json:"product,omitempty" gorm:"foreignKey:ProductID"`
	CreatedAt time.Time `json:"date_added"`
}

// AggregateRatings returns the mean of ratings rounded to one decimal and
// the number of ratings. An empty slice yields zeros.
func AggregateRatings(ratings []int) (float64, int) {
	if len(ratings) == 0 {
		return 0, 0
	}
	sum := 0
	for _, r := range ratings {
		sum += r
	}
	avg := float64(sum) / float64(len(ratings))
	return math.Round(avg*10) / 10, len(ratings)
}
