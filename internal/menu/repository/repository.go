package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"teka/internal/domain"
)

type MenuRepositoryInterface interface {
	Create(ctx context.Context, item *domain.MenuItem) error
	Update(ctx context.Context, item *domain.MenuItem) error
	Delete(ctx context.Context, chefID, itemID uuid.UUID) error
	SetAvailability(ctx context.Context, chefID, itemID uuid.UUID, available bool) error
	GetByID(ctx context.Context, id uuid.UUID) (domain.MenuItem, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.MenuItem, error)
	ListForChef(ctx context.Context, chefID uuid.UUID, onlyAvailable bool) ([]domain.MenuItem, error)
}

type MenuRepository struct {
	db *sql.DB
}

func NewMenuRepository(db *sql.DB) MenuRepositoryInterface {
	return &MenuRepository{db: db}
}

const menuColumns = `id, chef_id, name, description, price, category,
	ingredients, allergens, is_vegetarian, is_vegan, is_gluten_free,
	is_available, preparation_minutes, created_at, updated_at`

func (r *MenuRepository) Create(ctx context.Context, item *domain.MenuItem) error {
	ingredients, allergens, err := marshalLists(item)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO menu_items
			(id, chef_id, name, description, price, category,
			 ingredients, allergens, is_vegetarian, is_vegan, is_gluten_free,
			 is_available, preparation_minutes, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,now(),now())
	`, item.ID, item.ChefID, item.Name, item.Description, item.Price, string(item.Category),
		ingredients, allergens, item.IsVegetarian, item.IsVegan, item.IsGlutenFree,
		item.IsAvailable, item.PreparationMinutes)
	if err != nil {
		return fmt.Errorf("insert menu item: %w", err)
	}
	return nil
}

func (r *MenuRepository) Update(ctx context.Context, item *domain.MenuItem) error {
	ingredients, allergens, err := marshalLists(item)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE menu_items SET
			name=$3, description=$4, price=$5, category=$6,
			ingredients=$7, allergens=$8, is_vegetarian=$9, is_vegan=$10,
			is_gluten_free=$11, is_available=$12, preparation_minutes=$13,
			updated_at=now()
		WHERE id=$1 AND chef_id=$2
	`, item.ID, item.ChefID, item.Name, item.Description, item.Price, string(item.Category),
		ingredients, allergens, item.IsVegetarian, item.IsVegan, item.IsGlutenFree,
		item.IsAvailable, item.PreparationMinutes)
	if err != nil {
		return fmt.Errorf("update menu item: %w", err)
	}
	return requireRow(res, "menu item %s", item.ID)
}

func (r *MenuRepository) Delete(ctx context.Context, chefID, itemID uuid.UUID) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM menu_items WHERE id=$1 AND chef_id=$2`, itemID, chefID)
	if err != nil {
		return fmt.Errorf("delete menu item: %w", err)
	}
	return requireRow(res, "menu item %s", itemID)
}

func (r *MenuRepository) SetAvailability(ctx context.Context, chefID, itemID uuid.UUID, available bool) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE menu_items SET is_available=$3, updated_at=now()
		WHERE id=$1 AND chef_id=$2
	`, itemID, chefID, available)
	if err != nil {
		return fmt.Errorf("toggle menu item: %w", err)
	}
	return requireRow(res, "menu item %s", itemID)
}

func (r *MenuRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.MenuItem, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+menuColumns+` FROM menu_items WHERE id=$1`, id)
	item, err := scanMenuItem(row)
	if err == sql.ErrNoRows {
		return domain.MenuItem{}, domain.NotFoundf("menu item %s not found", id)
	}
	if err != nil {
		return domain.MenuItem{}, fmt.Errorf("get menu item: %w", err)
	}
	return item, nil
}

func (r *MenuRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.MenuItem, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+menuColumns+` FROM menu_items WHERE id IN (`+strings.Join(placeholders, ",")+`)`,
		args...)
	if err != nil {
		return nil, fmt.Errorf("get menu items: %w", err)
	}
	defer rows.Close()
	return collectMenuItems(rows)
}

func (r *MenuRepository) ListForChef(ctx context.Context, chefID uuid.UUID, onlyAvailable bool) ([]domain.MenuItem, error) {
	q := `SELECT ` + menuColumns + ` FROM menu_items WHERE chef_id=$1`
	if onlyAvailable {
		q += ` AND is_available`
	}
	q += ` ORDER BY category, name`
	rows, err := r.db.QueryContext(ctx, q, chefID)
	if err != nil {
		return nil, fmt.Errorf("list menu items: %w", err)
	}
	defer rows.Close()
	return collectMenuItems(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMenuItem(row rowScanner) (domain.MenuItem, error) {
	var (
		item                   domain.MenuItem
		category               string
		ingredients, allergens []byte
	)
	err := row.Scan(
		&item.ID, &item.ChefID, &item.Name, &item.Description, &item.Price, &category,
		&ingredients, &allergens, &item.IsVegetarian, &item.IsVegan, &item.IsGlutenFree,
		&item.IsAvailable, &item.PreparationMinutes, &item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return domain.MenuItem{}, err
	}
	item.Category = domain.MenuCategory(category)
	if len(ingredients) > 0 {
		_ = json.Unmarshal(ingredients, &item.Ingredients)
	}
	if len(allergens) > 0 {
		_ = json.Unmarshal(allergens, &item.Allergens)
	}
	return item, nil
}

func collectMenuItems(rows *sql.Rows) ([]domain.MenuItem, error) {
	var items []domain.MenuItem
	for rows.Next() {
		item, err := scanMenuItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan menu item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func marshalLists(item *domain.MenuItem) ([]byte, []byte, error) {
	ingredients, err := json.Marshal(orEmpty(item.Ingredients))
	if err != nil {
		return nil, nil, fmt.Errorf("marshal ingredients: %w", err)
	}
	allergens, err := json.Marshal(orEmpty(item.Allergens))
	if err != nil {
		return nil, nil, fmt.Errorf("marshal allergens: %w", err)
	}
	return ingredients, allergens, nil
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func requireRow(res sql.Result, format string, args ...any) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.NotFoundf(format+" not found", args...)
	}
	return nil
}
