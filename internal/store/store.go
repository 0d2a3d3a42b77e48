package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"homebase/internal/apperr"
	"homebase/internal/calendar"
	"homebase/internal/db"
	"homebase/internal/model"
)

// Store defines the interface for all database operations.
type Store interface {
	ListAppliances(ctx context.Context, f model.ListFilter, today calendar.Date) ([]model.Appliance, error)
	GetAppliance(ctx context.Context, id string) (model.ApplianceDetail, error)
	CreateAppliance(ctx context.Context, a *model.Appliance) error
	UpdateAppliance(ctx context.Context, id string, p model.AppliancePatch) (model.Appliance, error)
	DeleteAppliance(ctx context.Context, id string) error
	ApplianceStats(ctx context.Context, today calendar.Date) (model.ApplianceStats, error)

	ListMaintenance(ctx context.Context, applianceID string) ([]model.MaintenanceTask, error)
	GetMaintenance(ctx context.Context, id string) (model.MaintenanceTask, error)
	CreateMaintenance(ctx context.Context, t *model.MaintenanceTask) error
	UpdateMaintenance(ctx context.Context, id string, p model.MaintenancePatch) (model.MaintenanceTask, error)
	DeleteMaintenance(ctx context.Context, id string) error
	UpcomingMaintenance(ctx context.Context, today calendar.Date, days int) ([]model.UpcomingTask, error)
	DueReminders(ctx context.Context, today calendar.Date) ([]model.UpcomingTask, error)
	MarkReminded(ctx context.Context, ids []string, at time.Time) error

	ListContacts(ctx context.Context, applianceID string) ([]model.Contact, error)
	GetContact(ctx context.Context, id string) (model.Contact, error)
	CreateContact(ctx context.Context, c *model.Contact) error
	UpdateContact(ctx context.Context, id string, p model.ContactPatch) (model.Contact, error)
	DeleteContact(ctx context.Context, id string) error

	SaveSubscription(ctx context.Context, sub *model.PushSubscription, applianceIDs []string) error
	GetSubscription(ctx context.Context, endpoint string) (model.PushSubscription, error)
	DeleteSubscription(ctx context.Context, endpoint string) error
	SubscriptionsForAppliance(ctx context.Context, applianceID string) ([]model.PushSubscription, error)

	Ping(ctx context.Context) error
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) Ping(ctx context.Context) error {
	return db.Ping(ctx, s.db)
}

// notFound translates gorm's missing-row error into the shared sentinel.
func notFound(err error, kind, id string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound(kind, id)
	}
	return err
}

// applianceExists fails with apperr.ErrNotFound when id names no appliance.
func applianceExists(tx *gorm.DB, id string) error {
	var n int64
	if err := tx.Model(&model.Appliance{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return fmt.Errorf("failed to look up appliance %s: %w", id, err)
	}
	if n == 0 {
		return apperr.NotFound("appliance", id)
	}
	return nil
}
