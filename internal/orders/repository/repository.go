package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"teka/internal/domain"
)

type OrderRepositoryInterface interface {
	CreateTx(ctx context.Context, order *domain.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (domain.Order, error)
	ListForClient(ctx context.Context, clientID uuid.UUID, status *domain.OrderStatus) ([]domain.Order, error)
	ListForChef(ctx context.Context, chefID uuid.UUID, status *domain.OrderStatus) ([]domain.Order, error)

	// TransitionTx applies a lifecycle transition under a row lock. The legal-
	// successor check runs against the locked row, so a writer that lost a race
	// observes the winner's status and gets a ConflictError. Returns the
	// previous status on success.
	TransitionTx(ctx context.Context, id uuid.UUID, target domain.OrderStatus, changedBy string, now time.Time) (domain.OrderStatus, error)

	// MarkPaidTx records a successful payment. If the order is still placed it
	// also moves it to confirmed, stamping confirmed_at; the returned bool
	// reports whether that status change happened.
	MarkPaidTx(ctx context.Context, id uuid.UUID, intentID string, now time.Time) (bool, error)

	SetPaymentIntent(ctx context.Context, id uuid.UUID, intentID string) error
	SetPaymentStatus(ctx context.Context, id uuid.UUID, st domain.PaymentStatus) error

	GetUserDisplayName(ctx context.Context, userID uuid.UUID) (string, error)
}

type OrderRepository struct {
	db *sql.DB
}

func NewOrderRepository(db *sql.DB) OrderRepositoryInterface {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) CreateTx(ctx context.Context, order *domain.Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO orders
			(id, client_id, chef_id, status,
			 subtotal, delivery_fee, platform_fee, discount, total_amount,
			 delivery_address, delivery_instructions,
			 payment_status, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$13)
	`, order.ID, order.ClientID, order.ChefID, string(order.Status),
		order.Subtotal, order.DeliveryFee, order.PlatformFee, order.Discount, order.TotalAmount,
		order.DeliveryAddress, order.DeliveryInstructions,
		string(order.PaymentStatus), order.CreatedAt); err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for _, item := range order.Items {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO order_items (id, order_id, menu_item_id, name, quantity, unit_price)
			VALUES ($1,$2,$3,$4,$5,$6)
		`, item.ID, order.ID, item.MenuItemID, item.Name, item.Quantity, item.UnitPrice); err != nil {
			return fmt.Errorf("insert order item %s: %w", item.Name, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO order_status_log (order_id, status, changed_by, changed_at)
		VALUES ($1,$2,$3,$4)
	`, order.ID, string(order.Status), order.ClientID.String(), order.CreatedAt); err != nil {
		return fmt.Errorf("insert status log: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

const orderColumns = `o.id, o.client_id, o.chef_id, cu.display_name, chu.display_name,
	o.status, o.subtotal, o.delivery_fee, o.platform_fee, o.discount, o.total_amount,
	o.delivery_address, COALESCE(o.delivery_instructions,''),
	COALESCE(o.payment_intent_id,''), o.payment_status,
	o.created_at, o.confirmed_at, o.completed_at`

const orderFrom = ` FROM orders o
	JOIN users cu ON cu.id = o.client_id
	JOIN chef_profiles cp ON cp.id = o.chef_id
	JOIN users chu ON chu.id = cp.user_id `

func (r *OrderRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.Order, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+orderColumns+orderFrom+`WHERE o.id=$1`, id)
	order, err := scanOrder(row)
	if err == sql.ErrNoRows {
		return domain.Order{}, domain.NotFoundf("order %s not found", id)
	}
	if err != nil {
		return domain.Order{}, fmt.Errorf("get order: %w", err)
	}
	if err := r.loadItems(ctx, &order); err != nil {
		return domain.Order{}, err
	}
	return order, nil
}

func (r *OrderRepository) ListForClient(ctx context.Context, clientID uuid.UUID, status *domain.OrderStatus) ([]domain.Order, error) {
	return r.list(ctx, `o.client_id=$1`, clientID, status)
}

func (r *OrderRepository) ListForChef(ctx context.Context, chefID uuid.UUID, status *domain.OrderStatus) ([]domain.Order, error) {
	return r.list(ctx, `o.chef_id=$1`, chefID, status)
}

func (r *OrderRepository) list(ctx context.Context, where string, owner uuid.UUID, status *domain.OrderStatus) ([]domain.Order, error) {
	q := `SELECT ` + orderColumns + orderFrom + `WHERE ` + where
	args := []any{owner}
	if status != nil {
		args = append(args, string(*status))
		q += fmt.Sprintf(` AND o.status=$%d`, len(args))
	}
	q += ` ORDER BY o.created_at DESC`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var out []domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		out = append(out, order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		if err := r.loadItems(ctx, &out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *OrderRepository) TransitionTx(ctx context.Context, id uuid.UUID, target domain.OrderStatus, changedBy string, now time.Time) (domain.OrderStatus, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var current string
	err = tx.QueryRowContext(ctx,
		`SELECT status FROM orders WHERE id=$1 FOR UPDATE`, id).Scan(&current)
	if err == sql.ErrNoRows {
		return "", domain.NotFoundf("order %s not found", id)
	}
	if err != nil {
		return "", fmt.Errorf("lock order: %w", err)
	}

	prev := domain.OrderStatus(current)
	if !prev.CanTransitionTo(target) {
		return "", domain.Conflictf("order %s cannot move from %s to %s", id, prev, target)
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE orders SET
			status=$2,
			updated_at=$3,
			confirmed_at = CASE WHEN $2 = 'confirmed'
				THEN COALESCE(confirmed_at, $3) ELSE confirmed_at END,
			completed_at = CASE WHEN $2 IN ('delivered','cancelled','rejected')
				THEN COALESCE(completed_at, $3) ELSE completed_at END
		WHERE id=$1
	`, id, string(target), now); err != nil {
		return "", fmt.Errorf("update status: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO order_status_log (order_id, status, changed_by, changed_at)
		VALUES ($1,$2,$3,$4)
	`, id, string(target), changedBy, now); err != nil {
		return "", fmt.Errorf("insert status log: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	return prev, nil
}

func (r *OrderRepository) MarkPaidTx(ctx context.Context, id uuid.UUID, intentID string, now time.Time) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var current string
	err = tx.QueryRowContext(ctx,
		`SELECT status FROM orders WHERE id=$1 FOR UPDATE`, id).Scan(&current)
	if err == sql.ErrNoRows {
		return false, domain.NotFoundf("order %s not found", id)
	}
	if err != nil {
		return false, fmt.Errorf("lock order: %w", err)
	}

	confirmed := domain.OrderStatus(current) == domain.StatusPlaced
	if confirmed {
		if _, err := tx.ExecContext(ctx, `
			UPDATE orders SET
				status='confirmed',
				payment_status='paid',
				payment_intent_id=$2,
				confirmed_at=COALESCE(confirmed_at,$3),
				updated_at=$3
			WHERE id=$1
		`, id, intentID, now); err != nil {
			return false, fmt.Errorf("mark paid: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO order_status_log (order_id, status, changed_by, changed_at)
			VALUES ($1,'confirmed','payments',$2)
		`, id, now); err != nil {
			return false, fmt.Errorf("insert status log: %w", err)
		}
	} else {
		if _, err := tx.ExecContext(ctx, `
			UPDATE orders SET payment_status='paid', payment_intent_id=$2, updated_at=$3
			WHERE id=$1
		`, id, intentID, now); err != nil {
			return false, fmt.Errorf("mark paid: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit: %w", err)
	}
	return confirmed, nil
}

func (r *OrderRepository) SetPaymentIntent(ctx context.Context, id uuid.UUID, intentID string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE orders SET payment_intent_id=$2, updated_at=now() WHERE id=$1`, id, intentID)
	if err != nil {
		return fmt.Errorf("set payment intent: %w", err)
	}
	return requireRow(res, id)
}

func (r *OrderRepository) SetPaymentStatus(ctx context.Context, id uuid.UUID, st domain.PaymentStatus) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE orders SET payment_status=$2, updated_at=now() WHERE id=$1`, id, string(st))
	if err != nil {
		return fmt.Errorf("set payment status: %w", err)
	}
	return requireRow(res, id)
}

func (r *OrderRepository) GetUserDisplayName(ctx context.Context, userID uuid.UUID) (string, error) {
	var name string
	err := r.db.QueryRowContext(ctx,
		`SELECT display_name FROM users WHERE id=$1`, userID).Scan(&name)
	if err == sql.ErrNoRows {
		return "", domain.NotFoundf("user %s not found", userID)
	}
	if err != nil {
		return "", fmt.Errorf("get display name: %w", err)
	}
	return name, nil
}

func (r *OrderRepository) loadItems(ctx context.Context, order *domain.Order) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, order_id, menu_item_id, name, quantity, unit_price
		FROM order_items WHERE order_id=$1 ORDER BY name
	`, order.ID)
	if err != nil {
		return fmt.Errorf("load order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.MenuItemID,
			&item.Name, &item.Quantity, &item.UnitPrice); err != nil {
			return fmt.Errorf("scan order item: %w", err)
		}
		order.Items = append(order.Items, item)
	}
	return rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (domain.Order, error) {
	var (
		order                domain.Order
		status, payment      string
		confirmed, completed sql.NullTime
	)
	err := row.Scan(
		&order.ID, &order.ClientID, &order.ChefID, &order.ClientName, &order.ChefName,
		&status, &order.Subtotal, &order.DeliveryFee, &order.PlatformFee, &order.Discount, &order.TotalAmount,
		&order.DeliveryAddress, &order.DeliveryInstructions,
		&order.PaymentIntentID, &payment,
		&order.CreatedAt, &confirmed, &completed,
	)
	if err != nil {
		return domain.Order{}, err
	}
	order.Status = domain.OrderStatus(status)
	order.PaymentStatus = domain.PaymentStatus(payment)
	if confirmed.Valid {
		t := confirmed.Time
		order.ConfirmedAt = &t
	}
	if completed.Valid {
		t := completed.Time
		order.CompletedAt = &t
	}
	return order, nil
}

func requireRow(res sql.Result, id uuid.UUID) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.NotFoundf("order %s not found", id)
	}
	return nil
}
