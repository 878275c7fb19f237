package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"teka/internal/domain"
)

type ReviewRepositoryInterface interface {
	// CreateTx inserts the review and recomputes the chef's aggregate rating
	// fields in the same transaction. A second review for the same order is a
	// ConflictError.
	CreateTx(ctx context.Context, review *domain.Review) error
	ListForChef(ctx context.Context, chefID uuid.UUID) ([]domain.Review, error)
}

type ReviewRepository struct {
	db *sql.DB
}

func NewReviewRepository(db *sql.DB) ReviewRepositoryInterface {
	return &ReviewRepository{db: db}
}

const uniqueViolation = "23505"

func (r *ReviewRepository) CreateTx(ctx context.Context, review *domain.Review) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO reviews (id, order_id, client_id, chef_id, rating, comment, is_approved, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, review.ID, review.OrderID, review.ClientID, review.ChefID,
		review.Rating, review.Comment, review.IsApproved, review.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.Conflictf("order %s already has a review", review.OrderID)
		}
		return fmt.Errorf("insert review: %w", err)
	}

	// Aggregates are maintained on write, never derived at read time.
	if _, err := tx.ExecContext(ctx, `
		UPDATE chef_profiles SET
			average_rating = COALESCE((
				SELECT ROUND(AVG(rating)::numeric, 2) FROM reviews
				WHERE chef_id=$1 AND is_approved
			), 0),
			total_reviews = (
				SELECT COUNT(*) FROM reviews WHERE chef_id=$1 AND is_approved
			),
			updated_at = now()
		WHERE id=$1
	`, review.ChefID); err != nil {
		return fmt.Errorf("recompute chef rating: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (r *ReviewRepository) ListForChef(ctx context.Context, chefID uuid.UUID) ([]domain.Review, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, order_id, client_id, chef_id, rating, COALESCE(comment,''), is_approved, created_at
		FROM reviews WHERE chef_id=$1 AND is_approved
		ORDER BY created_at DESC
	`, chefID)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	var out []domain.Review
	for rows.Next() {
		var rv domain.Review
		if err := rows.Scan(&rv.ID, &rv.OrderID, &rv.ClientID, &rv.ChefID,
			&rv.Rating, &rv.Comment, &rv.IsApproved, &rv.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		out = append(out, rv)
	}
	return out, rows.Err()
}
