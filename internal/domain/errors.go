package domain

import "errors"

var (
	ErrMenuItemNotFound   = errors.New("menu item not found")
	ErrReviewsUnavailable = errors.New("reviews source not configured")
)
