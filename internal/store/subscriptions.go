package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"homebase/internal/model"
)

// SaveSubscription creates or replaces a push subscription and the set of
// appliances it follows.
func (s *gormStore) SaveSubscription(ctx context.Context, sub *model.PushSubscription, applianceIDs []string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "endpoint"}},
			DoUpdates: clause.AssignmentColumns([]string{"p256dh", "auth"}),
		}).Create(sub).Error; err != nil {
			return fmt.Errorf("failed to upsert subscription: %w", err)
		}

		appliances := []*model.Appliance{}
		if len(applianceIDs) > 0 {
			if err := tx.Where("id IN ?", applianceIDs).Find(&appliances).Error; err != nil {
				return fmt.Errorf("failed to load subscribed appliances: %w", err)
			}
		}

		if err := tx.Model(sub).Association("Appliances").Replace(appliances); err != nil {
			return fmt.Errorf("failed to replace subscribed appliances: %w", err)
		}
		return nil
	})
}

func (s *gormStore) GetSubscription(ctx context.Context, endpoint string) (model.PushSubscription, error) {
	var sub model.PushSubscription
	if err := s.db.WithContext(ctx).Preload("Appliances").First(&sub, "endpoint = ?", endpoint).Error; err != nil {
		return sub, notFound(err, "subscription", endpoint)
	}
	return sub, nil
}

// DeleteSubscription removes the subscription and its appliance links.
func (s *gormStore) DeleteSubscription(ctx context.Context, endpoint string) error {
	sub := model.PushSubscription{Endpoint: endpoint}
	if err := s.db.WithContext(ctx).Select("Appliances").Delete(&sub).Error; err != nil {
		return fmt.Errorf("failed to delete subscription: %w", err)
	}
	return nil
}

func (s *gormStore) SubscriptionsForAppliance(ctx context.Context, applianceID string) ([]model.PushSubscription, error) {
	var subs []model.PushSubscription
	err := s.db.WithContext(ctx).
		Joins("JOIN subscription_appliances sa ON sa.push_subscription_endpoint = push_subscriptions.endpoint").
		Where("sa.appliance_id = ?", applianceID).
		Find(&subs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch subscriptions for appliance %s: %w", applianceID, err)
	}
	return subs, nil
}
