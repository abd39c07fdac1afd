package app

import (
	"context"
	"errors"
	"math"
	"strings"

	"github.com/google/uuid"
	"github.com/swamyhotfoods/shopfront/internal/domain"
	apperrors "github.com/swamyhotfoods/shopfront/internal/platform/errors"
)

const (
	msgMenuItemNotFound = "Menu item not found"
	maxNameLength       = 120
	maxDescLength       = 2000
)

var menuItemFields = []string{"name", "price", "desc", "quant", "imgSrc"}

// MenuService is the use-case layer for the menu.
type MenuService struct {
	menu domain.MenuRepository
}

func NewMenuService(menu domain.MenuRepository) *MenuService {
	return &MenuService{menu: menu}
}

func (s *MenuService) List(ctx context.Context) ([]domain.MenuItem, error) {
	items, err := s.menu.List(ctx)
	if err != nil {
		return nil, apperrors.InternalError("failed to list menu items", err)
	}
	if items == nil {
		items = []domain.MenuItem{}
	}
	return items, nil
}

func (s *MenuService) Get(ctx context.Context, id uuid.UUID) (*domain.MenuItem, error) {
	item, err := s.menu.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, id, "failed to get menu item")
	}
	return item, nil
}

// Create requires every field to be present.
func (s *MenuService) Create(ctx context.Context, input domain.MenuItemPatch) (*domain.MenuItem, error) {
	missing := missingFields(input)
	if len(missing) > 0 {
		return nil, apperrors.ValidationError("missing required fields: " + strings.Join(missing, ", ")).
			WithField("fields", missing)
	}
	if err := validatePatch(input); err != nil {
		return nil, err
	}

	item, err := s.menu.Create(ctx, domain.MenuItem{
		Name:   strings.TrimSpace(*input.Name),
		Price:  *input.Price,
		Desc:   strings.TrimSpace(*input.Desc),
		Quant:  *input.Quant,
		ImgSrc: strings.TrimSpace(*input.ImgSrc),
	})
	if err != nil {
		return nil, apperrors.InternalError("failed to create menu item", err)
	}
	return item, nil
}

// Update applies only the fields present in patch.
func (s *MenuService) Update(ctx context.Context, id uuid.UUID, patch domain.MenuItemPatch) (*domain.MenuItem, error) {
	if len(missingFields(patch)) == len(menuItemFields) {
		return nil, apperrors.ValidationError("no fields to update")
	}
	if err := validatePatch(patch); err != nil {
		return nil, err
	}

	item, err := s.menu.Update(ctx, id, trimPatch(patch))
	if err != nil {
		return nil, mapRepoError(err, id, "failed to update menu item")
	}
	return item, nil
}

func (s *MenuService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.menu.Delete(ctx, id); err != nil {
		return mapRepoError(err, id, "failed to delete menu item")
	}
	return nil
}

func mapRepoError(err error, id uuid.UUID, message string) error {
	if errors.Is(err, domain.ErrMenuItemNotFound) {
		return apperrors.NotFoundError(msgMenuItemNotFound).WithField("menu_item_id", id.String())
	}
	return apperrors.InternalError(message, err).WithField("menu_item_id", id.String())
}

func missingFields(p domain.MenuItemPatch) []string {
	var missing []string
	if p.Name == nil {
		missing = append(missing, "name")
	}
	if p.Price == nil {
		missing = append(missing, "price")
	}
	if p.Desc == nil {
		missing = append(missing, "desc")
	}
	if p.Quant == nil {
		missing = append(missing, "quant")
	}
	if p.ImgSrc == nil {
		missing = append(missing, "imgSrc")
	}
	return missing
}

func validatePatch(p domain.MenuItemPatch) error {
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		if name == "" {
			return fieldError("name", "name must not be empty")
		}
		if len(name) > maxNameLength {
			return fieldError("name", "name is too long")
		}
	}
	if p.Price != nil && (*p.Price < 0 || math.IsNaN(*p.Price) || math.IsInf(*p.Price, 0)) {
		return fieldError("price", "price must be a non-negative number")
	}
	if p.Desc != nil {
		desc := strings.TrimSpace(*p.Desc)
		if desc == "" {
			return fieldError("desc", "desc must not be empty")
		}
		if len(desc) > maxDescLength {
			return fieldError("desc", "desc is too long")
		}
	}
	if p.Quant != nil && *p.Quant < 0 {
		return fieldError("quant", "quant must not be negative")
	}
	if p.ImgSrc != nil && strings.TrimSpace(*p.ImgSrc) == "" {
		return fieldError("imgSrc", "imgSrc must not be empty")
	}
	return nil
}

func fieldError(field, message string) error {
	return apperrors.ValidationError(message).WithField("field", field)
}

func trimPatch(p domain.MenuItemPatch) domain.MenuItemPatch {
	trim := func(s *string) *string {
		if s == nil {
			return nil
		}
		v := strings.TrimSpace(*s)
		return &v
	}
	p.Name = trim(p.Name)
	p.Desc = trim(p.Desc)
	p.ImgSrc = trim(p.ImgSrc)
	return p
}
