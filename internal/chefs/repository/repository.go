package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"teka/internal/domain"
)

// ChefSearchFilter narrows the discovery listing.
type ChefSearchFilter struct {
	Query         string
	OnlyAvailable bool
	OnlyVerified  bool
	MinRating     decimal.Decimal
}

type ChefRepositoryInterface interface {
	GetByID(ctx context.Context, id uuid.UUID) (domain.ChefProfile, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (domain.ChefProfile, error)
	GetByStripeAccount(ctx context.Context, accountID string) (domain.ChefProfile, error)
	UpdateProfile(ctx context.Context, p *domain.ChefProfile) error
	SetAvailability(ctx context.Context, id uuid.UUID, available bool) error
	SetStripeAccount(ctx context.Context, id uuid.UUID, accountID string) error
	SetStripeConnected(ctx context.Context, id uuid.UUID, connected bool) error
	Search(ctx context.Context, f ChefSearchFilter) ([]domain.ChefProfile, error)
	GetUserEmail(ctx context.Context, userID uuid.UUID) (string, error)
	GetAnalytics(ctx context.Context, chefID uuid.UUID) (domain.ChefAnalytics, error)

	ReplaceSchedule(ctx context.Context, chefID uuid.UUID, slots []domain.AvailabilitySlot) error
	ListSchedule(ctx context.Context, chefID uuid.UUID) ([]domain.AvailabilitySlot, error)
	AddUnavailableDate(ctx context.Context, d *domain.UnavailableDate) error
	RemoveUnavailableDate(ctx context.Context, chefID, id uuid.UUID) error
	ListUnavailableDates(ctx context.Context, chefID uuid.UUID) ([]domain.UnavailableDate, error)
}

type ChefRepository struct {
	db *sql.DB
}

func NewChefRepository(db *sql.DB) ChefRepositoryInterface {
	return &ChefRepository{db: db}
}

const chefColumns = `cp.id, cp.user_id, u.display_name, cp.bio,
	cp.latitude, cp.longitude, cp.address,
	COALESCE(cp.instagram_url,''), COALESCE(cp.facebook_url,''), COALESCE(cp.tiktok_url,''),
	cp.is_available, cp.delivery_radius_km, cp.minimum_order_amount,
	cp.average_rating, cp.total_reviews,
	COALESCE(cp.stripe_account_id,''), cp.stripe_connected, cp.is_verified,
	cp.created_at, cp.updated_at`

const chefFrom = ` FROM chef_profiles cp JOIN users u ON u.id = cp.user_id `

func (r *ChefRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.ChefProfile, error) {
	return r.getOne(ctx, `cp.id=$1`, id)
}

func (r *ChefRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (domain.ChefProfile, error) {
	return r.getOne(ctx, `cp.user_id=$1`, userID)
}

func (r *ChefRepository) GetByStripeAccount(ctx context.Context, accountID string) (domain.ChefProfile, error) {
	return r.getOne(ctx, `cp.stripe_account_id=$1`, accountID)
}

func (r *ChefRepository) getOne(ctx context.Context, where string, arg any) (domain.ChefProfile, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+chefColumns+chefFrom+`WHERE `+where, arg)
	p, err := scanChef(row)
	if err == sql.ErrNoRows {
		return domain.ChefProfile{}, domain.NotFoundf("chef profile not found")
	}
	if err != nil {
		return domain.ChefProfile{}, fmt.Errorf("get chef profile: %w", err)
	}
	return p, nil
}

func (r *ChefRepository) UpdateProfile(ctx context.Context, p *domain.ChefProfile) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE chef_profiles SET
			bio=$2, latitude=$3, longitude=$4, address=$5,
			instagram_url=$6, facebook_url=$7, tiktok_url=$8,
			delivery_radius_km=$9, minimum_order_amount=$10,
			updated_at=now()
		WHERE id=$1
	`, p.ID, p.Bio, p.Latitude, p.Longitude, p.Address,
		p.InstagramURL, p.FacebookURL, p.TikTokURL,
		p.DeliveryRadiusKm, p.MinimumOrderAmount)
	if err != nil {
		return fmt.Errorf("update chef profile: %w", err)
	}
	return requireRow(res)
}

func (r *ChefRepository) SetAvailability(ctx context.Context, id uuid.UUID, available bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE chef_profiles SET is_available=$2, updated_at=now() WHERE id=$1`, id, available)
	if err != nil {
		return fmt.Errorf("set chef availability: %w", err)
	}
	return requireRow(res)
}

func (r *ChefRepository) SetStripeAccount(ctx context.Context, id uuid.UUID, accountID string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE chef_profiles SET stripe_account_id=$2, updated_at=now() WHERE id=$1`, id, accountID)
	if err != nil {
		return fmt.Errorf("set stripe account: %w", err)
	}
	return requireRow(res)
}

func (r *ChefRepository) SetStripeConnected(ctx context.Context, id uuid.UUID, connected bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE chef_profiles SET stripe_connected=$2, updated_at=now() WHERE id=$1`, id, connected)
	if err != nil {
		return fmt.Errorf("set stripe connected: %w", err)
	}
	return requireRow(res)
}

func (r *ChefRepository) Search(ctx context.Context, f ChefSearchFilter) ([]domain.ChefProfile, error) {
	q := `SELECT ` + chefColumns + chefFrom + `WHERE 1=1`
	var args []any
	if f.Query != "" {
		args = append(args, "%"+f.Query+"%")
		q += fmt.Sprintf(` AND (u.display_name ILIKE $%d OR cp.bio ILIKE $%d)`, len(args), len(args))
	}
	if f.OnlyAvailable {
		q += ` AND cp.is_available`
	}
	if f.OnlyVerified {
		q += ` AND cp.is_verified`
	}
	if f.MinRating.IsPositive() {
		args = append(args, f.MinRating)
		q += fmt.Sprintf(` AND cp.average_rating >= $%d`, len(args))
	}
	q += ` ORDER BY cp.average_rating DESC, cp.total_reviews DESC`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("search chefs: %w", err)
	}
	defer rows.Close()

	var out []domain.ChefProfile
	for rows.Next() {
		p, err := scanChef(rows)
		if err != nil {
			return nil, fmt.Errorf("scan chef: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *ChefRepository) GetUserEmail(ctx context.Context, userID uuid.UUID) (string, error) {
	var email string
	err := r.db.QueryRowContext(ctx,
		`SELECT email FROM users WHERE id=$1`, userID).Scan(&email)
	if err == sql.ErrNoRows {
		return "", domain.NotFoundf("user not found")
	}
	if err != nil {
		return "", fmt.Errorf("get user email: %w", err)
	}
	return email, nil
}

const topItemsLimit = 5

// GetAnalytics aggregates the dashboard numbers for one chef. Cancelled and
// rejected orders are left out of every figure.
func (r *ChefRepository) GetAnalytics(ctx context.Context, chefID uuid.UUID) (domain.ChefAnalytics, error) {
	var a domain.ChefAnalytics

	err := r.db.QueryRowContext(ctx,
		`SELECT average_rating, total_reviews FROM chef_profiles WHERE id=$1`, chefID).
		Scan(&a.AverageRating, &a.TotalReviews)
	if err == sql.ErrNoRows {
		return domain.ChefAnalytics{}, domain.NotFoundf("chef profile not found")
	}
	if err != nil {
		return domain.ChefAnalytics{}, fmt.Errorf("analytics rating: %w", err)
	}

	if err := r.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(total_amount),0), COUNT(*), COUNT(DISTINCT client_id)
		FROM orders
		WHERE chef_id=$1 AND status NOT IN ('cancelled','rejected')
	`, chefID).Scan(&a.TotalRevenue, &a.TotalOrders, &a.UniqueClients); err != nil {
		return domain.ChefAnalytics{}, fmt.Errorf("analytics orders: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT oi.menu_item_id, oi.name, SUM(oi.quantity), SUM(oi.quantity * oi.unit_price)
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		WHERE o.chef_id=$1 AND o.status NOT IN ('cancelled','rejected')
		GROUP BY oi.menu_item_id, oi.name
		ORDER BY SUM(oi.quantity) DESC, oi.name
		LIMIT $2
	`, chefID, topItemsLimit)
	if err != nil {
		return domain.ChefAnalytics{}, fmt.Errorf("analytics top items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.TopMenuItem
		if err := rows.Scan(&item.MenuItemID, &item.Name, &item.UnitsSold, &item.Revenue); err != nil {
			return domain.ChefAnalytics{}, fmt.Errorf("scan top item: %w", err)
		}
		a.TopItems = append(a.TopItems, item)
	}
	return a, rows.Err()
}

func (r *ChefRepository) ReplaceSchedule(ctx context.Context, chefID uuid.UUID, slots []domain.AvailabilitySlot) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM chef_availability_slots WHERE chef_id=$1`, chefID); err != nil {
		return fmt.Errorf("clear schedule: %w", err)
	}
	for _, s := range slots {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO chef_availability_slots (id, chef_id, weekday, start_time, end_time, is_active)
			VALUES ($1,$2,$3,$4,$5,$6)
		`, s.ID, chefID, s.Weekday, s.Start, s.End, s.IsActive); err != nil {
			return fmt.Errorf("insert schedule slot: %w", err)
		}
	}
	return tx.Commit()
}

func (r *ChefRepository) ListSchedule(ctx context.Context, chefID uuid.UUID) ([]domain.AvailabilitySlot, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, chef_id, weekday, start_time, end_time, is_active
		FROM chef_availability_slots WHERE chef_id=$1
		ORDER BY weekday, start_time
	`, chefID)
	if err != nil {
		return nil, fmt.Errorf("list schedule: %w", err)
	}
	defer rows.Close()

	var out []domain.AvailabilitySlot
	for rows.Next() {
		var s domain.AvailabilitySlot
		if err := rows.Scan(&s.ID, &s.ChefID, &s.Weekday, &s.Start, &s.End, &s.IsActive); err != nil {
			return nil, fmt.Errorf("scan schedule slot: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *ChefRepository) AddUnavailableDate(ctx context.Context, d *domain.UnavailableDate) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO chef_unavailable_dates (id, chef_id, date, reason)
		VALUES ($1,$2,$3,$4)
		ON CONFLICT (chef_id, date) DO UPDATE SET reason = EXCLUDED.reason
	`, d.ID, d.ChefID, d.Date, d.Reason)
	if err != nil {
		return fmt.Errorf("add unavailable date: %w", err)
	}
	return nil
}

func (r *ChefRepository) RemoveUnavailableDate(ctx context.Context, chefID, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM chef_unavailable_dates WHERE id=$1 AND chef_id=$2`, id, chefID)
	if err != nil {
		return fmt.Errorf("remove unavailable date: %w", err)
	}
	return requireRow(res)
}

func (r *ChefRepository) ListUnavailableDates(ctx context.Context, chefID uuid.UUID) ([]domain.UnavailableDate, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, chef_id, date, COALESCE(reason,'')
		FROM chef_unavailable_dates WHERE chef_id=$1 ORDER BY date
	`, chefID)
	if err != nil {
		return nil, fmt.Errorf("list unavailable dates: %w", err)
	}
	defer rows.Close()

	var out []domain.UnavailableDate
	for rows.Next() {
		var d domain.UnavailableDate
		if err := rows.Scan(&d.ID, &d.ChefID, &d.Date, &d.Reason); err != nil {
			return nil, fmt.Errorf("scan unavailable date: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanChef(row rowScanner) (domain.ChefProfile, error) {
	var p domain.ChefProfile
	err := row.Scan(
		&p.ID, &p.UserID, &p.DisplayName, &p.Bio,
		&p.Latitude, &p.Longitude, &p.Address,
		&p.InstagramURL, &p.FacebookURL, &p.TikTokURL,
		&p.IsAvailable, &p.DeliveryRadiusKm, &p.MinimumOrderAmount,
		&p.AverageRating, &p.TotalReviews,
		&p.StripeAccountID, &p.StripeConnected, &p.IsVerified,
		&p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.NotFoundf("chef profile not found")
	}
	return nil
}
