package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"onethy/models"
)

type BillingService struct {
	db *gorm.DB
}

func NewBillingService(db *gorm.DB) *BillingService {
	return &BillingService{db: db}
}

type SubscribeInput struct {
	PlanID uint `json:"planId" validate:"required"`
}

// ListPlans returns the purchasable plans, cheapest first.
func (s *BillingService) ListPlans(ctx context.Context) ([]models.Plan, error) {
	plans := []models.Plan{}
	err := s.db.WithContext(ctx).Where("is_active = ?", true).Order("price_cents ASC, id ASC").Find(&plans).Error
	return plans, err
}

// Current returns the tenant's latest subscription that is not cancelled.
func (s *BillingService) Current(ctx context.Context, t Tenant) (*models.Subscription, error) {
	var sub models.Subscription
	err := s.db.WithContext(ctx).Preload("Plan").
		Scopes(t.owns("subscriptions")).
		Where("status <> ?", models.SubscriptionCancelled).
		Order("created_at DESC, id DESC").
		First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("subscription")
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// Subscribe moves the tenant to a plan. Free plans are active at once and
// replace whatever the tenant had. Paid plans stay pending until payment is
// confirmed, so only older pending requests are cancelled and the active
// subscription keeps running.
func (s *BillingService) Subscribe(ctx context.Context, t Tenant, in SubscribeInput) (*models.Subscription, error) {
	if !t.IsOwner() {
		return nil, ErrForbidden
	}
	if in.PlanID == 0 {
		return nil, invalid("planId", "planId is required")
	}

	var sub models.Subscription
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var plan models.Plan
		err := tx.Where("id = ? AND is_active = ?", in.PlanID, true).First(&plan).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound("plan")
		}
		if err != nil {
			return err
		}

		replaced := []string{models.SubscriptionPending}
		if plan.PriceCents == 0 {
			replaced = append(replaced, models.SubscriptionActive)
		}
		if err := tx.Model(&models.Subscription{}).
			Where("user_id = ? AND status IN ?", t.ID, replaced).
			Updates(map[string]interface{}{
				"status":       models.SubscriptionCancelled,
				"cancelled_at": time.Now(),
			}).Error; err != nil {
			return err
		}

		sub = models.Subscription{
			UserID: t.ID,
			PlanID: plan.ID,
			Status: models.SubscriptionPending,
		}
		if plan.PriceCents == 0 {
			sub.Status = models.SubscriptionActive
		}
		if err := tx.Create(&sub).Error; err != nil {
			return err
		}
		sub.Plan = &plan
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// Cancel ends the tenant's current subscription.
func (s *BillingService) Cancel(ctx context.Context, t Tenant) (*models.Subscription, error) {
	if !t.IsOwner() {
		return nil, ErrForbidden
	}
	sub, err := s.Current(ctx, t)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	sub.Status = models.SubscriptionCancelled
	sub.CancelledAt = &now
	if err := s.db.WithContext(ctx).Model(sub).Select("status", "cancelled_at", "updated_at").Updates(sub).Error; err != nil {
		return nil, err
	}
	return sub, nil
}
