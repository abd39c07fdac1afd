package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/swamyhotfoods/shopfront/internal/domain"
)

const menuColumns = "id, name, price, descr, quant, img_src, created_at, updated_at"

type MenuRepo struct {
	pool *pgxpool.Pool
}

var _ domain.MenuRepository = (*MenuRepo)(nil)

func NewMenuRepo(pool *pgxpool.Pool) *MenuRepo {
	return &MenuRepo{pool: pool}
}

func scanMenuItem(row pgx.Row) (*domain.MenuItem, error) {
	var item domain.MenuItem
	err := row.Scan(&item.ID, &item.Name, &item.Price, &item.Desc, &item.Quant, &item.ImgSrc, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *MenuRepo) List(ctx context.Context) ([]domain.MenuItem, error) {
	rows, err := r.pool.Query(ctx, "SELECT "+menuColumns+" FROM menu_items ORDER BY created_at, id")
	if err != nil {
		return nil, fmt.Errorf("failed to list menu items: %w", err)
	}

	items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.MenuItem, error) {
		item, err := scanMenuItem(row)
		if err != nil {
			return domain.MenuItem{}, err
		}
		return *item, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan menu items: %w", err)
	}
	return items, nil
}

func (r *MenuRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.MenuItem, error) {
	row := r.pool.QueryRow(ctx, "SELECT "+menuColumns+" FROM menu_items WHERE id = $1", id)
	item, err := scanMenuItem(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrMenuItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get menu item: %w", err)
	}
	return item, nil
}

// Create inserts the item. A nil ID is replaced with a fresh UUID.
func (r *MenuRepo) Create(ctx context.Context, item domain.MenuItem) (*domain.MenuItem, error) {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO menu_items (id, name, price, descr, quant, img_src)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+menuColumns,
		item.ID, item.Name, item.Price, item.Desc, item.Quant, item.ImgSrc)

	created, err := scanMenuItem(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create menu item: %w", err)
	}
	return created, nil
}

// Update applies the non-nil fields of patch and bumps updated_at.
func (r *MenuRepo) Update(ctx context.Context, id uuid.UUID, patch domain.MenuItemPatch) (*domain.MenuItem, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE menu_items SET
			name       = COALESCE($2, name),
			price      = COALESCE($3, price),
			descr      = COALESCE($4, descr),
			quant      = COALESCE($5, quant),
			img_src    = COALESCE($6, img_src),
			updated_at = now()
		WHERE id = $1
		RETURNING `+menuColumns,
		id, patch.Name, patch.Price, patch.Desc, patch.Quant, patch.ImgSrc)

	updated, err := scanMenuItem(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrMenuItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update menu item: %w", err)
	}
	return updated, nil
}

func (r *MenuRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, "DELETE FROM menu_items WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete menu item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrMenuItemNotFound
	}
	return nil
}
