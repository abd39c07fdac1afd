package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type MenuItem struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	Desc      string    `json:"desc"`
	Quant     int       `json:"quant"`
	ImgSrc    string    `json:"imgSrc"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// MenuItemPatch carries the fields of a partial menu item update.
type MenuItemPatch struct {
	Name   *string  `json:"name,omitempty"`
	Price  *float64 `json:"price,omitempty"`
	Desc   *string  `json:"desc,omitempty"`
	Quant  *int     `json:"quant,omitempty"`
	ImgSrc *string  `json:"imgSrc,omitempty"`
}

type MenuRepository interface {
	List(ctx context.Context) ([]MenuItem, error)
	GetByID(ctx context.Context, id uuid.UUID) (*MenuItem, error)
	Create(ctx context.Context, item MenuItem) (*MenuItem, error)
	Update(ctx context.Context, id uuid.UUID, patch MenuItemPatch) (*MenuItem, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
