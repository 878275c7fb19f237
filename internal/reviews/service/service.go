package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"teka/internal/common/identity"
	"teka/internal/common/logger"
	"teka/internal/domain"
	"teka/internal/notifications"
	"teka/internal/reviews/repository"
)

type SubmitReviewRequest struct {
	OrderID string `json:"order_id" validate:"required,uuid"`
	Rating  int    `json:"rating" validate:"required,gte=1,lte=5"`
	Comment string `json:"comment"`
}

// OrderReader loads the order being reviewed.
type OrderReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (domain.Order, error)
}

// ChefDirectory resolves the chef's user id for the notification channel.
type ChefDirectory interface {
	GetByID(ctx context.Context, id uuid.UUID) (domain.ChefProfile, error)
}

type ReviewServiceInterface interface {
	Submit(ctx context.Context, actor identity.Identity, req SubmitReviewRequest) (domain.Review, error)
	ListForChef(ctx context.Context, chefID uuid.UUID) ([]domain.Review, error)
}

type ReviewService struct {
	repo     repository.ReviewRepositoryInterface
	orders   OrderReader
	chefs    ChefDirectory
	notifier *notifications.Notifier
	log      *logger.Logger

	nowFunc func() time.Time
}

func NewReviewService(repo repository.ReviewRepositoryInterface, orders OrderReader,
	chefs ChefDirectory, notifier *notifications.Notifier, log *logger.Logger) *ReviewService {
	return &ReviewService{
		repo:     repo,
		orders:   orders,
		chefs:    chefs,
		notifier: notifier,
		log:      log,
		nowFunc:  time.Now,
	}
}

func (s *ReviewService) Submit(ctx context.Context, actor identity.Identity, req SubmitReviewRequest) (domain.Review, error) {
	if actor.Role != domain.RoleClient {
		return domain.Review{}, domain.Authorizationf("only clients can submit reviews")
	}
	if req.Rating < 1 || req.Rating > 5 {
		return domain.Review{}, domain.Validationf("rating must be between 1 and 5")
	}
	orderID, err := uuid.Parse(req.OrderID)
	if err != nil {
		return domain.Review{}, domain.Validationf("invalid order id %q", req.OrderID)
	}

	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return domain.Review{}, err
	}
	if order.ClientID != actor.UserID {
		return domain.Review{}, domain.Authorizationf("order %s does not belong to this client", orderID)
	}
	if order.Status != domain.StatusDelivered {
		return domain.Review{}, domain.Validationf("only delivered orders can be reviewed")
	}

	review := domain.Review{
		ID:         uuid.New(),
		OrderID:    order.ID,
		ClientID:   actor.UserID,
		ChefID:     order.ChefID,
		Rating:     req.Rating,
		Comment:    req.Comment,
		IsApproved: true,
		CreatedAt:  s.nowFunc().UTC(),
	}
	if err := s.repo.CreateTx(ctx, &review); err != nil {
		return domain.Review{}, err
	}

	if chef, err := s.chefs.GetByID(ctx, order.ChefID); err == nil {
		s.notifier.Notify(ctx, notifications.ChefChannel(chef.UserID), notifications.Event{
			Kind:    notifications.KindOrderNotification,
			Message: reviewMessage(review),
			OrderID: order.ID.String(),
		})
	}

	s.log.Info("review_submitted", map[string]any{
		"order_id": order.ID.String(),
		"chef_id":  order.ChefID.String(),
		"rating":   review.Rating,
	})
	return review, nil
}

func (s *ReviewService) ListForChef(ctx context.Context, chefID uuid.UUID) ([]domain.Review, error) {
	return s.repo.ListForChef(ctx, chefID)
}

func reviewMessage(r domain.Review) string {
	msg := fmt.Sprintf("You received a %d-star review!", r.Rating)
	if r.Comment != "" {
		excerpt := r.Comment
		if len(excerpt) > 50 {
			excerpt = excerpt[:50]
		}
		msg += fmt.Sprintf(" %q...", excerpt)
	}
	return msg
}
