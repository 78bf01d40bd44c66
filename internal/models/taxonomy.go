package models

import "time"

// Category groups products in a tree.
type Category struct {
	ID          string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name        string    `json:"name" gorm:"uniqueIndex;type:varchar(100);not null"`
	Slug        string    `json:"slug" gorm:"uniqueIndex;type:varchar(120)"`
	ParentID    *string   `json:"parent" gorm:"index;type:varchar(36)"`
	Description string    `json:"description"`
	Display     string    `json:"display" gorm:"type:varchar(20)"`
	Image       string    `json:"image"`
	MenuOrder   int       `json:"menu_order" gorm:"index"`
	Count       int       `json:"count"`
	CreatedAt   time.Time `json:"-"`
	UpdatedAt   time.Time `json:"-"`
}

// Tag is a flat product label.
type Tag struct {
	ID          string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name        string    `json:"name" gorm:"uniqueIndex;type:varchar(100);not null"`
	Slug        string    `json:"slug" gorm:"uniqueIndex;type:varchar(120)"`
	Description string    `json:"description"`
	Count       int       `json:"count"`
	CreatedAt   time.Time `json:"-"`
	UpdatedAt   time.Time `json:"-"`
}
